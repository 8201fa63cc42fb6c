// Package chip8 implements the CHIP-8 virtual machine execution engine.
package chip8

import (
	"errors"
	"math/rand/v2"

	"github.com/retroenv/retrogolib/log"
)

// Machine is the complete state of a CHIP-8 virtual machine.
// It is not safe for concurrent use, callers have to serialize Tick calls.
type Machine struct {
	logger *log.Logger

	memory  Memory
	regs    Registers
	timers  Timers
	keypad  Keypad
	wait    WaitState
	display Framebuffer
	redraw  bool

	random func() uint8
	trace  bool

	fault       error
	lastUnknown DecodeError // last reported decode failure, to log repeats once
}

// Option configures a Machine.
type Option func(*Machine)

// WithRandom sets the source of the random instruction.
func WithRandom(random func() uint8) Option {
	return func(m *Machine) {
		m.random = random
	}
}

// WithSeed makes the random instruction deterministic.
func WithSeed(seed uint64) Option {
	return func(m *Machine) {
		rng := rand.New(rand.NewPCG(seed, seed))
		m.random = func() uint8 {
			return uint8(rng.UintN(256))
		}
	}
}

// WithTrace enables debug logging of every executed instruction.
func WithTrace(enabled bool) Option {
	return func(m *Machine) {
		m.trace = enabled
	}
}

// New returns a new machine with the glyph table loaded and the program
// counter at the program start address.
func New(logger *log.Logger, options ...Option) *Machine {
	m := &Machine{
		logger: logger,
		memory: newMemory(),
		random: func() uint8 {
			return uint8(rand.UintN(256))
		},
	}
	m.regs.PC = ProgramStart

	for _, option := range options {
		option(m)
	}
	return m
}

// Load writes a program image to the program start address and resets the
// program counter.
func (m *Machine) Load(program []byte) error {
	if err := m.memory.load(program); err != nil {
		return err
	}
	m.regs.PC = ProgramStart
	m.logger.Debug("Program loaded",
		log.Int("size", len(program)),
		log.Hex("address", uint16(ProgramStart)))
	return nil
}

// Tick advances the machine by one time step. The keypad snapshot is used
// for the whole step. A pending wait for key is resolved first, otherwise the
// timers count down and one instruction is executed.
//
// A *DecodeError is returned for an unknown opcode, the program counter is
// not advanced in this case. A *FaultError is returned for a fatal fault,
// the machine does not execute any further instructions after a fault.
func (m *Machine) Tick(keypad Keypad) error {
	m.keypad = keypad
	m.redraw = false

	if m.fault != nil {
		return m.fault
	}

	if m.wait.Waiting {
		register := m.wait.Register
		if m.wait.resolve(keypad, &m.regs) && m.trace {
			m.logger.Debug("Key wait resolved",
				log.Uint8("register", register),
				log.Uint8("key", m.regs.V[register]))
		}
		return nil
	}

	m.timers.decrement()

	address := m.regs.PC
	word, err := m.memory.readWord(address)
	if err != nil {
		return m.raise(address, 0, err)
	}
	return m.execute(Opcode(word))
}

// execute decodes and runs a single opcode located at the program counter.
func (m *Machine) execute(opcode Opcode) error {
	address := m.regs.PC

	ins, err := Decode(opcode)
	if err != nil {
		decodeErr := DecodeError{Address: address, Opcode: opcode}
		if m.lastUnknown != decodeErr {
			m.lastUnknown = decodeErr
			m.logger.Warn("Unknown opcode",
				log.Hex("address", address),
				log.Hex("opcode", uint16(opcode)))
		}
		return &decodeErr
	}

	if m.trace {
		m.logger.Debug("Executing",
			log.Hex("address", address),
			log.Hex("opcode", uint16(opcode)),
			log.String("instruction", ins.String()))
	}

	effect, err := handlers[ins.Op](m, ins)
	if err != nil {
		return m.raise(address, opcode, err)
	}
	m.regs.PC = effect.apply(address)
	return nil
}

// raise latches a fatal fault. Reporting it is left to the caller that
// receives the returned error.
func (m *Machine) raise(address uint16, opcode Opcode, err error) error {
	fault := &FaultError{Address: address, Opcode: opcode, Err: err}
	m.fault = fault
	m.logger.Debug("Machine fault",
		log.Hex("address", address),
		log.Hex("opcode", uint16(opcode)),
		log.Err(err))
	return fault
}

// Fault returns the latched fatal fault or nil.
func (m *Machine) Fault() error {
	return m.fault
}

// Faulted returns whether err is or wraps a fatal machine fault.
func Faulted(err error) bool {
	var fault *FaultError
	return errors.As(err, &fault)
}

// Framebuffer returns the display. It must only be read by the caller.
func (m *Machine) Framebuffer() *Framebuffer {
	return &m.display
}

// Redraw returns whether the framebuffer changed during the last tick.
func (m *Machine) Redraw() bool {
	return m.redraw
}

// SoundTimer returns the sound timer value, a non zero value means the tone is on.
func (m *Machine) SoundTimer() uint8 {
	return m.timers.Sound
}

// DelayTimer returns the delay timer value.
func (m *Machine) DelayTimer() uint8 {
	return m.timers.Delay
}

// PC returns the program counter.
func (m *Machine) PC() uint16 {
	return m.regs.PC
}

// Index returns the index register.
func (m *Machine) Index() uint16 {
	return m.regs.I
}

// Register returns the value of register Vx, x is masked to 0-F.
func (m *Machine) Register(x uint8) uint8 {
	return m.regs.V[x&0xF]
}

// Waiting returns whether the machine is suspended waiting for a key press.
func (m *Machine) Waiting() bool {
	return m.wait.Waiting
}
