package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/frontend/headless"
	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

var helloWorld = []byte{
	0x62, 0x78, 0xA5, 0x00, 0x63,
	0x01, 0x64, 0x01, 0xF1, 0x0A,
	0x00, 0xE0, 0xF2, 0x18, 0xF1,
	0x29, 0xD3, 0x45, 0x12, 0x00,
}

type recordingBeeper struct {
	changes []bool
}

func (b *recordingBeeper) SetTone(on bool) {
	b.changes = append(b.changes, on)
}

type quittingFrontend struct {
	polls int
	after int
}

func (f *quittingFrontend) Poll() (chip8.Keypad, bool) {
	f.polls++
	return chip8.Keypad{}, f.polls > f.after
}

func (f *quittingFrontend) Render(*chip8.Framebuffer) error {
	return nil
}

type stepDriver struct {
	quittingFrontend
	steps int
}

func (d *stepDriver) Drive(_ context.Context, _ int, step func() error) error {
	for range d.steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func newTestRunner(t *testing.T, program []byte, opts options.Emulator, frontend Frontend) (*Runner, *chip8.Machine, *recordingBeeper) {
	t.Helper()
	logger := log.NewTestLogger(t)
	machine := chip8.New(logger, chip8.WithSeed(1))
	assert.NoError(t, machine.Load(program))
	beeper := &recordingBeeper{}
	return New(logger, machine, opts, frontend, beeper), machine, beeper
}

func testOptions() options.Emulator {
	opts := options.NewEmulator(options.Headless)
	opts.TickRate = 10000
	return opts
}

func TestRunner_HelloWorld(t *testing.T) {
	opts := testOptions()
	opts.MaxTicks = 10
	frontend := headless.New(headless.Press(4, 6, 7)...)
	r, machine, beeper := newTestRunner(t, helloWorld, opts, frontend)

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, uint64(10), r.Ticks())
	assert.Equal(t, uint8(7), machine.Register(1))

	// cls and drw
	assert.Equal(t, uint64(2), frontend.Frames())
	last := frontend.LastFrame()
	assert.Equal(t, uint8(1), last.Pixel(1, 1))
	assert.Equal(t, uint8(1), last.Pixel(4, 1))
	assert.Equal(t, uint8(0), last.Pixel(5, 1))

	// the tone is turned off when the run ends
	assert.Equal(t, []bool{true, false}, beeper.changes)
}

func TestRunner_Step(t *testing.T) {
	opts := testOptions()
	opts.MaxTicks = 2
	// ld ST, V0 with V0 = 2: the tone stops after two more ticks
	r, machine, beeper := newTestRunner(t, []byte{0x60, 0x02, 0xF0, 0x18, 0x12, 0x04}, opts, headless.New())

	assert.NoError(t, r.Step())
	assert.NoError(t, r.Step())
	assert.Equal(t, uint8(2), machine.SoundTimer())
	assert.Equal(t, []bool{true}, beeper.changes)

	err := r.Step()
	assert.True(t, errors.Is(err, ErrTickLimit))
	assert.Equal(t, uint64(2), r.Ticks())
}

func TestRunner_UnknownOpcode(t *testing.T) {
	program := []byte{0x51, 0x21}

	t.Run("halt", func(t *testing.T) {
		r, machine, _ := newTestRunner(t, program, testOptions(), headless.New())

		err := r.Run(context.Background())
		assert.Error(t, err)
		assert.True(t, errors.Is(err, chip8.ErrUnknownOpcode))
		assert.Equal(t, uint64(1), r.Ticks())
		assert.Equal(t, uint16(chip8.ProgramStart), machine.PC())
	})

	t.Run("continue", func(t *testing.T) {
		opts := testOptions()
		opts.HaltOnUnknown = false
		opts.MaxTicks = 5
		r, machine, _ := newTestRunner(t, program, opts, headless.New())

		assert.NoError(t, r.Run(context.Background()))
		assert.Equal(t, uint64(5), r.Ticks())
		assert.Equal(t, uint16(chip8.ProgramStart), machine.PC())
	})
}

func TestRunner_Fault(t *testing.T) {
	opts := testOptions()
	opts.HaltOnUnknown = false
	r, machine, _ := newTestRunner(t, []byte{0x00, 0xEE}, opts, headless.New())

	err := r.Run(context.Background())
	assert.True(t, chip8.Faulted(err))
	assert.True(t, errors.Is(err, chip8.ErrStackUnderflow))
	assert.ErrorContains(t, err, "tick 1: machine fault at $200 (opcode $00EE): stack underflow")
	assert.Equal(t, uint64(1), r.Ticks())
	assert.Equal(t, uint16(chip8.ProgramStart), machine.PC())
	assert.True(t, errors.Is(machine.Fault(), chip8.ErrStackUnderflow))
}

func TestRunner_Quit(t *testing.T) {
	frontend := &quittingFrontend{after: 3}
	r, _, _ := newTestRunner(t, []byte{0x12, 0x00}, testOptions(), frontend)

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, uint64(3), r.Ticks())
}

func TestRunner_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, _, _ := newTestRunner(t, []byte{0x12, 0x00}, testOptions(), headless.New())

	err := r.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunner_Driver(t *testing.T) {
	driver := &stepDriver{quittingFrontend: quittingFrontend{after: 100}, steps: 4}
	r, _, _ := newTestRunner(t, []byte{0x12, 0x00}, testOptions(), driver)

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, uint64(4), r.Ticks())
}
