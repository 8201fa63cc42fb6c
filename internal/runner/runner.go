// Package runner drives a CHIP-8 machine at a fixed tick rate and connects it
// to a frontend for input and display and to a beeper for sound.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/retrogolib/log"
)

var (
	// ErrQuit is returned by Step when the frontend requested to quit.
	ErrQuit = errors.New("quit requested")
	// ErrTickLimit is returned by Step when the configured tick budget is used up.
	ErrTickLimit = errors.New("tick limit reached")
)

// Frontend provides the keypad state and displays the framebuffer.
type Frontend interface {
	// Poll returns the current keypad state and whether the user asked to quit.
	Poll() (chip8.Keypad, bool)
	// Render displays a changed framebuffer.
	Render(fb *chip8.Framebuffer) error
}

// Driver is a frontend that owns the main loop, like a window event loop.
// It has to call step once per tick at the given tick rate and return the
// first error that step returns.
type Driver interface {
	Drive(ctx context.Context, tickRate int, step func() error) error
}

// Beeper plays the tone that is on while the sound timer is active.
type Beeper interface {
	SetTone(on bool)
}

// Runner executes a loaded machine.
type Runner struct {
	logger   *log.Logger
	machine  *chip8.Machine
	opts     options.Emulator
	frontend Frontend
	beeper   Beeper

	ticks uint64
	tone  bool
}

// New returns a new runner for the given machine.
func New(logger *log.Logger, machine *chip8.Machine, opts options.Emulator,
	frontend Frontend, beeper Beeper) *Runner {

	return &Runner{
		logger:   logger,
		machine:  machine,
		opts:     opts,
		frontend: frontend,
		beeper:   beeper,
	}
}

// Step executes a single tick: the keypad is polled, the machine ticked, the
// beeper switched and a changed framebuffer rendered.
func (r *Runner) Step() error {
	if r.opts.MaxTicks > 0 && r.ticks >= r.opts.MaxTicks {
		return ErrTickLimit
	}

	keypad, quit := r.frontend.Poll()
	if quit {
		return ErrQuit
	}

	r.ticks++
	if err := r.machine.Tick(keypad); err != nil {
		var decodeErr *chip8.DecodeError
		if !errors.As(err, &decodeErr) || r.opts.HaltOnUnknown {
			return fmt.Errorf("tick %d: %w", r.ticks, err)
		}
	}

	tone := r.machine.SoundTimer() > 0
	if tone != r.tone {
		r.tone = tone
		r.beeper.SetTone(tone)
	}

	if r.machine.Redraw() {
		if err := r.frontend.Render(r.machine.Framebuffer()); err != nil {
			return fmt.Errorf("rendering frame: %w", err)
		}
	}
	return nil
}

// Run executes ticks until the context is canceled, the frontend quits, the
// tick limit is reached or the machine stops with an error.
// Quitting and reaching the tick limit are not reported as errors.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Debug("Starting machine",
		log.Int("tick_rate", r.opts.TickRate),
		log.String("frontend", r.opts.Frontend))

	var err error
	if driver, ok := r.frontend.(Driver); ok {
		err = driver.Drive(ctx, r.opts.TickRate, r.Step)
	} else {
		err = r.loop(ctx)
	}

	if r.tone {
		r.tone = false
		r.beeper.SetTone(false)
	}

	if errors.Is(err, ErrQuit) || errors.Is(err, ErrTickLimit) {
		r.logger.Debug("Machine stopped", log.Int("ticks", int(r.ticks)), log.Err(err))
		return nil
	}
	return err
}

func (r *Runner) loop(ctx context.Context) error {
	ticker := time.NewTicker(r.opts.TickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("running machine: %w", ctx.Err())
		case <-ticker.C:
		}

		if err := r.Step(); err != nil {
			return err
		}
	}
}

// Ticks returns the number of executed ticks.
func (r *Runner) Ticks() uint64 {
	return r.ticks
}
