package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOpcode is reported for an opcode that matches no instruction pattern.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrStackOverflow is raised by a call with a full call stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is raised by a return with an empty call stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrAddressOutOfRange is raised by a memory access beyond the end of memory.
	ErrAddressOutOfRange = errors.New("address out of range")
	// ErrKeyOutOfRange is raised by a key skip instruction with a register value above 0xF.
	ErrKeyOutOfRange = errors.New("key out of range")

	// ErrProgramTooLarge is returned when a program image does not fit into program space.
	ErrProgramTooLarge = errors.New("program too large")
)

// DecodeError reports an opcode that could not be decoded. It is not fatal,
// the program counter stays at Address.
type DecodeError struct {
	Address uint16
	Opcode  Opcode
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unknown opcode $%04X at $%03X", uint16(e.Opcode), e.Address)
}

func (e *DecodeError) Unwrap() error {
	return ErrUnknownOpcode
}

// FaultError is a fatal machine fault. Once raised the machine refuses to
// execute further instructions and every tick returns the same fault.
type FaultError struct {
	Address uint16
	Opcode  Opcode
	Err     error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("machine fault at $%03X (opcode $%04X): %s", e.Address, uint16(e.Opcode), e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}
