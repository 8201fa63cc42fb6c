package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Beeper plays a square wave tone on the default audio device.
type Beeper struct {
	wave   *squareWave
	ctx    *oto.Context
	player *oto.Player
	mutex  sync.Mutex
}

// New opens the audio device and starts a player that is silent until the
// tone is switched on.
func New(sampleRate, frequency int) (*Beeper, error) {
	if sampleRate <= 0 || frequency <= 0 || frequency*2 > sampleRate {
		return nil, fmt.Errorf("invalid tone %d Hz at sample rate %d Hz", frequency, sampleRate)
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("creating audio context: %w", err)
	}
	<-ready

	b := &Beeper{
		wave: newSquareWave(sampleRate, frequency),
		ctx:  ctx,
	}
	b.player = ctx.NewPlayer(b.wave)
	b.player.Play()
	return b, nil
}

// SetTone switches the tone on or off.
func (b *Beeper) SetTone(on bool) {
	b.wave.SetTone(on)
}

// Close stops the player.
func (b *Beeper) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.player == nil {
		return nil
	}
	b.wave.SetTone(false)
	err := b.player.Close()
	b.player = nil
	if err != nil {
		return fmt.Errorf("closing audio player: %w", err)
	}
	return nil
}
