// Package audio implements the beeper that sounds while the sound timer is active.
package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

const (
	// DefaultSampleRate is the output sample rate in Hz.
	DefaultSampleRate = 44100
	// DefaultFrequency is the tone frequency in Hz.
	DefaultFrequency = 440

	amplitude     = 0.25
	bytesPerFloat = 4
)

// squareWave is an io.Reader producing mono float32 little endian samples of
// a square wave while on and silence while off. Read is called from the audio
// goroutine, SetTone from the machine goroutine.
type squareWave struct {
	on     atomic.Bool
	period float64 // samples per wave period
	phase  float64 // position in the current period in samples
}

func newSquareWave(sampleRate, frequency int) *squareWave {
	return &squareWave{
		period: float64(sampleRate) / float64(frequency),
	}
}

// SetTone switches the tone on or off.
func (s *squareWave) SetTone(on bool) {
	s.on.Store(on)
}

func (s *squareWave) Read(p []byte) (int, error) {
	on := s.on.Load()
	samples := len(p) / bytesPerFloat

	for i := range samples {
		var value float32
		if on {
			value = amplitude
			if s.phase >= s.period/2 {
				value = -amplitude
			}
			s.phase++
			if s.phase >= s.period {
				s.phase -= s.period
			}
		}
		binary.LittleEndian.PutUint32(p[i*bytesPerFloat:], math.Float32bits(value))
	}

	if !on {
		s.phase = 0
	}
	return samples * bytesPerFloat, nil
}

// Silent is a beeper that never makes a sound.
type Silent struct{}

// SetTone does nothing.
func (Silent) SetTone(bool) {}
