// Package headless implements a frontend without window or terminal that
// replays a scripted keypad and records the rendered frames.
package headless

import (
	"cmp"
	"io"
	"slices"

	"github.com/retroenv/chip8emu/internal/chip8"
)

// KeyEvent sets the keypad state starting at the given poll count.
type KeyEvent struct {
	Tick   uint64
	Keypad chip8.Keypad
}

// Frontend is a scripted frontend.
type Frontend struct {
	events []KeyEvent
	next   int
	keypad chip8.Keypad

	polls  uint64
	frames uint64
	last   chip8.Framebuffer
}

// New returns a new headless frontend that replays the given key events.
func New(events ...KeyEvent) *Frontend {
	events = slices.Clone(events)
	slices.SortStableFunc(events, func(a, b KeyEvent) int {
		return cmp.Compare(a.Tick, b.Tick)
	})
	return &Frontend{events: events}
}

// Press returns key events that hold down the given keys from tick start
// until tick end, exclusive.
func Press(start, end uint64, keys ...uint8) []KeyEvent {
	var down chip8.Keypad
	for _, key := range keys {
		down[key&0xF] = true
	}
	return []KeyEvent{
		{Tick: start, Keypad: down},
		{Tick: end},
	}
}

// Poll returns the scripted keypad state of the current tick. It never
// requests to quit.
func (f *Frontend) Poll() (chip8.Keypad, bool) {
	for f.next < len(f.events) && f.events[f.next].Tick <= f.polls {
		f.keypad = f.events[f.next].Keypad
		f.next++
	}
	f.polls++
	return f.keypad, false
}

// Render records the framebuffer.
func (f *Frontend) Render(fb *chip8.Framebuffer) error {
	f.frames++
	f.last = *fb
	return nil
}

// Frames returns the number of rendered frames.
func (f *Frontend) Frames() uint64 {
	return f.frames
}

// LastFrame returns a copy of the last rendered framebuffer.
func (f *Frontend) LastFrame() chip8.Framebuffer {
	return f.last
}

// WriteLastFrame writes the last rendered framebuffer as text.
func (f *Frontend) WriteLastFrame(w io.Writer) error {
	_, err := io.WriteString(w, f.last.String())
	return err
}
