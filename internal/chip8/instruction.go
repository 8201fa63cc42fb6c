package chip8

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Op identifies one of the 35 instructions.
type Op uint8

// Instruction kinds, named after their opcode pattern.
const (
	OpInvalid Op = iota
	Op0NNN       // SYS addr
	Op00E0       // CLS
	Op00EE       // RET
	Op1NNN       // JP addr
	Op2NNN       // CALL addr
	Op3XKK       // SE Vx, byte
	Op4XKK       // SNE Vx, byte
	Op5XY0       // SE Vx, Vy
	Op6XKK       // LD Vx, byte
	Op7XKK       // ADD Vx, byte
	Op8XY0       // LD Vx, Vy
	Op8XY1       // OR Vx, Vy
	Op8XY2       // AND Vx, Vy
	Op8XY3       // XOR Vx, Vy
	Op8XY4       // ADD Vx, Vy
	Op8XY5       // SUB Vx, Vy
	Op8XY6       // SHR Vx
	Op8XY7       // SUBN Vx, Vy
	Op8XYE       // SHL Vx
	Op9XY0       // SNE Vx, Vy
	OpANNN       // LD I, addr
	OpBNNN       // JP V0, addr
	OpCXKK       // RND Vx, byte
	OpDXYN       // DRW Vx, Vy, nibble
	OpEX9E       // SKP Vx
	OpEXA1       // SKNP Vx
	OpFX07       // LD Vx, DT
	OpFX0A       // LD Vx, K
	OpFX15       // LD DT, Vx
	OpFX18       // LD ST, Vx
	OpFX1E       // ADD I, Vx
	OpFX29       // LD F, Vx
	OpFX33       // LD B, Vx
	OpFX55       // LD [I], Vx
	OpFX65       // LD Vx, [I]

	opCount
)

// opInfo describes the fixed bits of an instruction pattern.
type opInfo struct {
	op       Op
	mask     uint16
	value    uint16
	pattern  string
	mnemonic string // used if the opcode table has no entry
}

// patterns lists the instruction patterns per instruction class. Patterns
// of a class are checked in order, more specific patterns come first.
var patterns = [16][]opInfo{
	0x0: {
		{Op00E0, 0xFFFF, 0x00E0, "00E0", "cls"},
		{Op00EE, 0xFFFF, 0x00EE, "00EE", "ret"},
		{Op0NNN, 0xF000, 0x0000, "0nnn", "sys"},
	},
	0x1: {{Op1NNN, 0xF000, 0x1000, "1nnn", "jp"}},
	0x2: {{Op2NNN, 0xF000, 0x2000, "2nnn", "call"}},
	0x3: {{Op3XKK, 0xF000, 0x3000, "3xkk", "se"}},
	0x4: {{Op4XKK, 0xF000, 0x4000, "4xkk", "sne"}},
	0x5: {{Op5XY0, 0xF00F, 0x5000, "5xy0", "se"}},
	0x6: {{Op6XKK, 0xF000, 0x6000, "6xkk", "ld"}},
	0x7: {{Op7XKK, 0xF000, 0x7000, "7xkk", "add"}},
	0x8: {
		{Op8XY0, 0xF00F, 0x8000, "8xy0", "ld"},
		{Op8XY1, 0xF00F, 0x8001, "8xy1", "or"},
		{Op8XY2, 0xF00F, 0x8002, "8xy2", "and"},
		{Op8XY3, 0xF00F, 0x8003, "8xy3", "xor"},
		{Op8XY4, 0xF00F, 0x8004, "8xy4", "add"},
		{Op8XY5, 0xF00F, 0x8005, "8xy5", "sub"},
		{Op8XY6, 0xF00F, 0x8006, "8xy6", "shr"},
		{Op8XY7, 0xF00F, 0x8007, "8xy7", "subn"},
		{Op8XYE, 0xF00F, 0x800E, "8xyE", "shl"},
	},
	0x9: {{Op9XY0, 0xF00F, 0x9000, "9xy0", "sne"}},
	0xA: {{OpANNN, 0xF000, 0xA000, "Annn", "ld"}},
	0xB: {{OpBNNN, 0xF000, 0xB000, "Bnnn", "jp"}},
	0xC: {{OpCXKK, 0xF000, 0xC000, "Cxkk", "rnd"}},
	0xD: {{OpDXYN, 0xF000, 0xD000, "Dxyn", "drw"}},
	0xE: {
		{OpEX9E, 0xF0FF, 0xE09E, "Ex9E", "skp"},
		{OpEXA1, 0xF0FF, 0xE0A1, "ExA1", "sknp"},
	},
	0xF: {
		{OpFX07, 0xF0FF, 0xF007, "Fx07", "ld"},
		{OpFX0A, 0xF0FF, 0xF00A, "Fx0A", "ld"},
		{OpFX15, 0xF0FF, 0xF015, "Fx15", "ld"},
		{OpFX18, 0xF0FF, 0xF018, "Fx18", "ld"},
		{OpFX1E, 0xF0FF, 0xF01E, "Fx1E", "add"},
		{OpFX29, 0xF0FF, 0xF029, "Fx29", "ld"},
		{OpFX33, 0xF0FF, 0xF033, "Fx33", "ld"},
		{OpFX55, 0xF0FF, 0xF055, "Fx55", "ld"},
		{OpFX65, 0xF0FF, 0xF065, "Fx65", "ld"},
	},
}

// opInfos maps every Op to its pattern description.
var opInfos = func() [opCount]opInfo {
	var infos [opCount]opInfo
	for _, class := range patterns {
		for _, info := range class {
			infos[info.op] = info
		}
	}
	return infos
}()

// String returns the opcode pattern of the instruction kind, like "8xy4".
func (o Op) String() string {
	if o == OpInvalid || o >= opCount {
		return "invalid"
	}
	return opInfos[o].pattern
}

// Instruction is a decoded opcode.
type Instruction struct {
	Op     Op
	Opcode Opcode
}

// Decode maps an opcode to its instruction. Opcodes that match no
// pattern return an error wrapping ErrUnknownOpcode.
func Decode(opcode Opcode) (Instruction, error) {
	word := uint16(opcode)
	for _, info := range patterns[opcode.Class()] {
		if word&info.mask == info.value {
			return Instruction{Op: info.op, Opcode: opcode}, nil
		}
	}
	return Instruction{Opcode: opcode}, fmt.Errorf("decoding $%04X: %w", word, ErrUnknownOpcode)
}

// X returns the x register index of the instruction.
func (i Instruction) X() uint8 { return i.Opcode.X() }

// Y returns the y register index of the instruction.
func (i Instruction) Y() uint8 { return i.Opcode.Y() }

// N returns the nibble operand of the instruction.
func (i Instruction) N() uint8 { return i.Opcode.N() }

// NNN returns the address operand of the instruction.
func (i Instruction) NNN() uint16 { return i.Opcode.NNN() }

// KK returns the byte operand of the instruction.
func (i Instruction) KK() uint8 { return i.Opcode.KK() }

// Name returns the lower case mnemonic of the instruction as listed in the
// CHIP-8 opcode table.
func (i Instruction) Name() string {
	if i.Op == OpInvalid || i.Op >= opCount {
		return ""
	}
	info := opInfos[i.Op]
	for _, op := range chip8.Opcodes[int(i.Opcode.Class())] {
		if op.Instruction != nil && op.Info.Mask == info.mask && op.Info.Value == info.value {
			return strings.ToLower(op.Instruction.Name)
		}
	}
	return info.mnemonic
}

// String returns the instruction in assembly syntax, like "add V0, V1".
func (i Instruction) String() string {
	name := i.Name()
	if operands := i.Operands(); operands != "" {
		return name + " " + operands
	}
	return name
}

// Operands returns the formatted operands of the instruction.
//
//nolint:cyclop // one case per operand layout
func (i Instruction) Operands() string {
	x, y := i.X(), i.Y()
	switch i.Op {
	case Op0NNN, Op1NNN, Op2NNN:
		return fmt.Sprintf("$%03X", i.NNN())
	case Op3XKK, Op4XKK, Op6XKK, Op7XKK, OpCXKK:
		return fmt.Sprintf("V%X, $%02X", x, i.KK())
	case Op5XY0, Op8XY0, Op8XY1, Op8XY2, Op8XY3, Op8XY4, Op8XY5, Op8XY7, Op9XY0:
		return fmt.Sprintf("V%X, V%X", x, y)
	case Op8XY6, Op8XYE, OpEX9E, OpEXA1:
		return fmt.Sprintf("V%X", x)
	case OpANNN:
		return fmt.Sprintf("I, $%03X", i.NNN())
	case OpBNNN:
		return fmt.Sprintf("V0, $%03X", i.NNN())
	case OpDXYN:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, i.N())
	case OpFX07:
		return fmt.Sprintf("V%X, DT", x)
	case OpFX0A:
		return fmt.Sprintf("V%X, K", x)
	case OpFX15:
		return fmt.Sprintf("DT, V%X", x)
	case OpFX18:
		return fmt.Sprintf("ST, V%X", x)
	case OpFX1E:
		return fmt.Sprintf("I, V%X", x)
	case OpFX29:
		return fmt.Sprintf("F, V%X", x)
	case OpFX33:
		return fmt.Sprintf("B, V%X", x)
	case OpFX55:
		return fmt.Sprintf("[I], V%X", x)
	case OpFX65:
		return fmt.Sprintf("V%X, [I]", x)
	default:
		return ""
	}
}

// IsSkip returns whether the instruction conditionally skips the following instruction.
func (i Instruction) IsSkip() bool {
	switch i.Op {
	case Op3XKK, Op4XKK, Op5XY0, Op9XY0, OpEX9E, OpEXA1:
		return true
	default:
		return false
	}
}
