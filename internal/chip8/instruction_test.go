package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		opcode Opcode
		op     Op
		text   string
	}{
		{0x00E0, Op00E0, "cls"},
		{0x00EE, Op00EE, "ret"},
		{0x0123, Op0NNN, "sys $123"},
		{0x1ABC, Op1NNN, "jp $ABC"},
		{0x2ABC, Op2NNN, "call $ABC"},
		{0x3A12, Op3XKK, "se VA, $12"},
		{0x4A12, Op4XKK, "sne VA, $12"},
		{0x5120, Op5XY0, "se V1, V2"},
		{0x6A12, Op6XKK, "ld VA, $12"},
		{0x7A12, Op7XKK, "add VA, $12"},
		{0x8120, Op8XY0, "ld V1, V2"},
		{0x8121, Op8XY1, "or V1, V2"},
		{0x8122, Op8XY2, "and V1, V2"},
		{0x8123, Op8XY3, "xor V1, V2"},
		{0x8124, Op8XY4, "add V1, V2"},
		{0x8125, Op8XY5, "sub V1, V2"},
		{0x8126, Op8XY6, "shr V1"},
		{0x8127, Op8XY7, "subn V1, V2"},
		{0x812E, Op8XYE, "shl V1"},
		{0x9120, Op9XY0, "sne V1, V2"},
		{0xA123, OpANNN, "ld I, $123"},
		{0xB123, OpBNNN, "jp V0, $123"},
		{0xC1FF, OpCXKK, "rnd V1, $FF"},
		{0xD125, OpDXYN, "drw V1, V2, $5"},
		{0xE19E, OpEX9E, "skp V1"},
		{0xE1A1, OpEXA1, "sknp V1"},
		{0xF107, OpFX07, "ld V1, DT"},
		{0xF10A, OpFX0A, "ld V1, K"},
		{0xF115, OpFX15, "ld DT, V1"},
		{0xF118, OpFX18, "ld ST, V1"},
		{0xF11E, OpFX1E, "add I, V1"},
		{0xF129, OpFX29, "ld F, V1"},
		{0xF133, OpFX33, "ld B, V1"},
		{0xF155, OpFX55, "ld [I], V1"},
		{0xF165, OpFX65, "ld V1, [I]"},
	}

	for _, tt := range tests {
		t.Run(tt.opcode.String(), func(t *testing.T) {
			ins, err := Decode(tt.opcode)
			assert.NoError(t, err)
			assert.Equal(t, tt.op, ins.Op)
			assert.Equal(t, tt.opcode, ins.Opcode)
			assert.Equal(t, tt.text, ins.String())
		})
	}
}

func TestDecode_AllOpsCovered(t *testing.T) {
	seen := map[Op]bool{}
	for word := range 0x10000 {
		ins, err := Decode(Opcode(word))
		if err == nil {
			seen[ins.Op] = true
		}
	}
	assert.Len(t, seen, int(opCount)-1)
	assert.False(t, seen[OpInvalid])
}

func TestDecode_Unknown(t *testing.T) {
	opcodes := []Opcode{0x5001, 0x512F, 0x800F, 0x8008, 0x9001, 0xE000, 0xE19F, 0xF0FF, 0xF100, 0xF166}

	for _, opcode := range opcodes {
		ins, err := Decode(opcode)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownOpcode))
		assert.Equal(t, OpInvalid, ins.Op)
		assert.Equal(t, "", ins.Name())
	}
}

func TestOpcode_Fields(t *testing.T) {
	opcode := Opcode(0xD2A7)
	assert.Equal(t, uint8(0xD), opcode.Class())
	assert.Equal(t, uint8(0x2), opcode.X())
	assert.Equal(t, uint8(0xA), opcode.Y())
	assert.Equal(t, uint8(0x7), opcode.N())
	assert.Equal(t, uint16(0x2A7), opcode.NNN())
	assert.Equal(t, uint8(0xA7), opcode.KK())
	assert.Equal(t, "D2A7", opcode.String())
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "8xy4", Op8XY4.String())
	assert.Equal(t, "Fx0A", OpFX0A.String())
	assert.Equal(t, "invalid", OpInvalid.String())
	assert.Equal(t, "invalid", opCount.String())
}

func TestProgramCounter(t *testing.T) {
	tests := []struct {
		effect ProgramCounter
		pc     uint16
		text   string
	}{
		{Next(), 0x202, "next"},
		{Skip(), 0x204, "skip"},
		{Jump(0x345), 0x345, "jump $345"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.pc, tt.effect.apply(0x200))
		assert.Equal(t, tt.text, tt.effect.String())
	}
}

func TestInstruction_IsSkip(t *testing.T) {
	skips := map[Opcode]bool{
		0x3000: true, 0x4000: true, 0x5000: true, 0x9000: true, 0xE09E: true, 0xE0A1: true,
		0x1200: false, 0x2200: false, 0x00EE: false, 0x8004: false, 0xF00A: false,
	}
	for opcode, skip := range skips {
		ins, err := Decode(opcode)
		assert.NoError(t, err)
		assert.Equal(t, skip, ins.IsSkip())
	}
}
