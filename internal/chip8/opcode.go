package chip8

import "fmt"

// Opcode is a packed 16 bit instruction word.
//
//	class: bits 12-15
//	x:     bits 8-11
//	y:     bits 4-7
//	n:     bits 0-3
type Opcode uint16

// Class returns the high nibble that selects the instruction class.
func (o Opcode) Class() uint8 {
	return uint8(o >> 12)
}

// X returns the second nibble, usually a register index.
func (o Opcode) X() uint8 {
	return uint8(o>>8) & 0xF
}

// Y returns the third nibble, usually a register index.
func (o Opcode) Y() uint8 {
	return uint8(o>>4) & 0xF
}

// N returns the lowest nibble.
func (o Opcode) N() uint8 {
	return uint8(o) & 0xF
}

// NNN returns the 12 bit address operand.
func (o Opcode) NNN() uint16 {
	return uint16(o) & 0x0FFF
}

// KK returns the 8 bit immediate operand.
func (o Opcode) KK() uint8 {
	return uint8(o)
}

func (o Opcode) String() string {
	return fmt.Sprintf("%04X", uint16(o))
}

// ProgramCounter describes how an executed instruction moves the program counter.
type ProgramCounter struct {
	action  pcAction
	address uint16
}

type pcAction uint8

const (
	pcNext pcAction = iota
	pcSkip
	pcJump
)

// Next advances the program counter to the following instruction.
func Next() ProgramCounter {
	return ProgramCounter{action: pcNext}
}

// Skip advances the program counter past the following instruction.
func Skip() ProgramCounter {
	return ProgramCounter{action: pcSkip}
}

// Jump sets the program counter to the given address.
func Jump(address uint16) ProgramCounter {
	return ProgramCounter{action: pcJump, address: address}
}

// apply returns the new program counter for an instruction at address pc.
func (p ProgramCounter) apply(pc uint16) uint16 {
	switch p.action {
	case pcSkip:
		return pc + 2*opcodeSize
	case pcJump:
		return p.address
	default:
		return pc + opcodeSize
	}
}

func (p ProgramCounter) String() string {
	switch p.action {
	case pcSkip:
		return "skip"
	case pcJump:
		return fmt.Sprintf("jump $%03X", p.address)
	default:
		return "next"
	}
}
