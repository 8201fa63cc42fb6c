package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// helloWorld is a small program that waits for a key and draws its glyph.
var helloWorld = []byte{
	0x62, 0x78, 0xA5, 0x00, 0x63,
	0x01, 0x64, 0x01, 0xF1, 0x0A,
	0x00, 0xE0, 0xF2, 0x18, 0xF1,
	0x29, 0xD3, 0x45, 0x12, 0x00,
}

func newTestMachine(t *testing.T, options ...Option) *Machine {
	t.Helper()
	return New(log.NewTestLogger(t), options...)
}

func TestNew(t *testing.T) {
	m := newTestMachine(t)

	for i, b := range glyphs {
		assert.Equal(t, b, m.memory[GlyphBase+i])
	}
	assert.Equal(t, byte(0), m.memory[GlyphBase-1])
	assert.Equal(t, byte(0), m.memory[GlyphBase+len(glyphs)])
	assert.Equal(t, uint16(ProgramStart), m.PC())
	assert.Equal(t, uint8(0), m.regs.SP)
	assert.False(t, m.Waiting())
	assert.Equal(t, Framebuffer{}, *m.Framebuffer())
}

func TestMachine_Load(t *testing.T) {
	t.Run("program", func(t *testing.T) {
		m := newTestMachine(t)
		m.regs.PC = 0x300

		assert.NoError(t, m.Load(helloWorld))
		for i, b := range helloWorld {
			assert.Equal(t, b, m.memory[ProgramStart+i])
		}
		assert.Equal(t, byte(0), m.memory[ProgramStart+len(helloWorld)])
		assert.Equal(t, uint16(ProgramStart), m.PC())

		word, err := m.memory.readWord(m.PC())
		assert.NoError(t, err)
		assert.Equal(t, uint16(0x6278), word)
	})

	t.Run("largest program", func(t *testing.T) {
		m := newTestMachine(t)
		program := make([]byte, MaxProgramSize)
		program[len(program)-1] = 0xAB

		assert.NoError(t, m.Load(program))
		assert.Equal(t, byte(0xAB), m.memory[MemorySize-1])
	})

	t.Run("too large", func(t *testing.T) {
		m := newTestMachine(t)
		program := make([]byte, MaxProgramSize+1)
		program[0] = 0xFF

		err := m.Load(program)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrProgramTooLarge))
		assert.Equal(t, byte(0), m.memory[ProgramStart])
	})
}

func TestMachine_TickTimers(t *testing.T) {
	m := newTestMachine(t)
	assert.NoError(t, m.Load(helloWorld))
	m.timers.Sound = 10
	m.timers.Delay = 20

	assert.NoError(t, m.Tick(Keypad{}))
	assert.Equal(t, uint8(9), m.SoundTimer())
	assert.Equal(t, uint8(19), m.DelayTimer())
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, uint8(0x78), m.Register(2))

	m.timers.Sound = 0
	m.timers.Delay = 1
	assert.NoError(t, m.Tick(Keypad{}))
	assert.Equal(t, uint8(0), m.SoundTimer())
	assert.Equal(t, uint8(0), m.DelayTimer())
}

func TestMachine_TickKeypadSnapshot(t *testing.T) {
	m := newTestMachine(t)
	// skp V0, skp V0
	assert.NoError(t, m.Load([]byte{0xE0, 0x9E, 0xE0, 0x9E, 0xE0, 0x9E}))

	var keys Keypad
	keys[0] = true
	assert.NoError(t, m.Tick(keys))
	assert.Equal(t, uint16(0x204), m.PC())

	assert.NoError(t, m.Tick(Keypad{}))
	assert.Equal(t, uint16(0x206), m.PC())
}

func TestMachine_WaitForKey(t *testing.T) {
	m := newTestMachine(t)
	// ld V5, K; ld V6, $01
	assert.NoError(t, m.Load([]byte{0xF5, 0x0A, 0x66, 0x01}))
	m.regs.V[5] = 0xAA

	assert.NoError(t, m.Tick(Keypad{}))
	assert.True(t, m.Waiting())
	assert.Equal(t, uint8(5), m.wait.Register)
	assert.Equal(t, uint16(0x202), m.PC())

	m.timers.Delay = 10
	m.timers.Sound = 10
	assert.NoError(t, m.Tick(Keypad{}))
	assert.True(t, m.Waiting())
	assert.Equal(t, uint8(0xAA), m.Register(5))
	assert.Equal(t, uint8(10), m.DelayTimer())
	assert.Equal(t, uint8(10), m.SoundTimer())
	assert.Equal(t, uint16(0x202), m.PC())

	var keys Keypad
	keys[0xC] = true
	keys[0x9] = true
	assert.NoError(t, m.Tick(keys))
	assert.False(t, m.Waiting())
	assert.Equal(t, uint8(0x9), m.Register(5))
	assert.Equal(t, uint8(10), m.DelayTimer())
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, uint8(0), m.Register(6))

	assert.NoError(t, m.Tick(Keypad{}))
	assert.Equal(t, uint8(1), m.Register(6))
	assert.Equal(t, uint8(9), m.DelayTimer())
	assert.Equal(t, uint16(0x204), m.PC())
}

func TestMachine_Redraw(t *testing.T) {
	m := newTestMachine(t)
	// cls; ld V0, $01
	assert.NoError(t, m.Load([]byte{0x00, 0xE0, 0x60, 0x01}))

	assert.NoError(t, m.Tick(Keypad{}))
	assert.True(t, m.Redraw())

	assert.NoError(t, m.Tick(Keypad{}))
	assert.False(t, m.Redraw())
}

func TestMachine_UnknownOpcode(t *testing.T) {
	tests := []struct {
		name   string
		opcode Opcode
	}{
		{"5xy1", 0x5121},
		{"8xyF", 0x812F},
		{"9xy3", 0x9123},
		{"Ex00", 0xE100},
		{"Fx99", 0xF199},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			assert.NoError(t, m.Load([]byte{byte(tt.opcode >> 8), byte(tt.opcode)}))
			m.timers.Delay = 5

			for range 3 {
				err := m.Tick(Keypad{})
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownOpcode))
				assert.False(t, Faulted(err))

				var decodeErr *DecodeError
				assert.True(t, errors.As(err, &decodeErr))
				assert.Equal(t, uint16(ProgramStart), decodeErr.Address)
				assert.Equal(t, tt.opcode, decodeErr.Opcode)
				assert.Equal(t, uint16(ProgramStart), m.PC())
			}
			assert.Equal(t, uint8(2), m.DelayTimer())
			assert.NoError(t, m.Fault())
		})
	}
}

func TestMachine_Faults(t *testing.T) {
	tests := []struct {
		name    string
		program []byte
		setup   func(m *Machine)
		want    error
	}{
		{
			name:    "stack overflow",
			program: []byte{0x22, 0x00}, // call $200
			setup: func(m *Machine) {
				m.regs.SP = StackDepth
			},
			want: ErrStackOverflow,
		},
		{
			name:    "stack underflow",
			program: []byte{0x00, 0xEE},
			want:    ErrStackUnderflow,
		},
		{
			name:    "draw beyond memory",
			program: []byte{0xD0, 0x13},
			setup: func(m *Machine) {
				m.regs.I = MemorySize - 2
			},
			want: ErrAddressOutOfRange,
		},
		{
			name:    "bcd beyond memory",
			program: []byte{0xF0, 0x33},
			setup: func(m *Machine) {
				m.regs.I = MemorySize - 2
			},
			want: ErrAddressOutOfRange,
		},
		{
			name:    "store beyond memory",
			program: []byte{0xF3, 0x55},
			setup: func(m *Machine) {
				m.regs.I = MemorySize - 3
			},
			want: ErrAddressOutOfRange,
		},
		{
			name:    "load beyond memory",
			program: []byte{0xF3, 0x65},
			setup: func(m *Machine) {
				m.regs.I = MemorySize - 3
			},
			want: ErrAddressOutOfRange,
		},
		{
			name:    "key beyond keypad",
			program: []byte{0xE0, 0x9E},
			setup: func(m *Machine) {
				m.regs.V[0] = KeyCount
			},
			want: ErrKeyOutOfRange,
		},
		{
			name:    "fetch beyond memory",
			program: []byte{0x1F, 0xFF},
			want:    ErrAddressOutOfRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t)
			assert.NoError(t, m.Load(tt.program))
			m.timers.Delay = 10
			if tt.setup != nil {
				tt.setup(m)
			}

			var err error
			for range 2 {
				if err = m.Tick(Keypad{}); err != nil {
					break
				}
			}
			assert.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			assert.True(t, Faulted(err))

			before := m.regs
			delay := m.DelayTimer()
			for range 3 {
				again := m.Tick(Keypad{})
				assert.Equal(t, err, again)
			}
			assert.Equal(t, before, m.regs)
			assert.Equal(t, delay, m.DelayTimer())
			assert.Equal(t, err, m.Fault())
		})
	}
}

func TestMachine_CallReturnRoundTrip(t *testing.T) {
	m := newTestMachine(t)
	// $200: call $300
	// $202: ld V1, $01
	// $300: ret
	program := make([]byte, 0x102)
	copy(program, []byte{0x23, 0x00, 0x61, 0x01})
	program[0x100] = 0x00
	program[0x101] = 0xEE
	assert.NoError(t, m.Load(program))

	assert.NoError(t, m.Tick(Keypad{}))
	assert.Equal(t, uint16(0x300), m.PC())
	assert.Equal(t, uint8(1), m.regs.SP)

	assert.NoError(t, m.Tick(Keypad{}))
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, uint8(0), m.regs.SP)

	assert.NoError(t, m.Tick(Keypad{}))
	assert.Equal(t, uint8(1), m.Register(1))
}

func TestMachine_Seed(t *testing.T) {
	program := []byte{0xC0, 0xFF, 0xC1, 0xFF, 0xC2, 0xFF}

	run := func() [3]uint8 {
		m := newTestMachine(t, WithSeed(1234))
		assert.NoError(t, m.Load(program))
		for range 3 {
			assert.NoError(t, m.Tick(Keypad{}))
		}
		return [3]uint8{m.Register(0), m.Register(1), m.Register(2)}
	}

	assert.Equal(t, run(), run())
}

func TestMachine_Trace(t *testing.T) {
	m := newTestMachine(t, WithTrace(true))
	assert.NoError(t, m.Load(helloWorld))

	for range 5 {
		assert.NoError(t, m.Tick(Keypad{}))
	}
	assert.True(t, m.Waiting())

	var keys Keypad
	keys[3] = true
	assert.NoError(t, m.Tick(keys))
	assert.Equal(t, uint8(3), m.Register(1))
}

func TestMachine_HelloWorld(t *testing.T) {
	m := newTestMachine(t)
	assert.NoError(t, m.Load(helloWorld))

	var keys Keypad
	keys[7] = true
	// ld, ld, ld, ld, wait, resolve, cls, ld ST, ld F, drw
	for range 10 {
		assert.NoError(t, m.Tick(keys))
	}

	assert.Equal(t, uint8(7), m.Register(1))
	assert.Equal(t, uint16(GlyphBase+7*GlyphSize), m.Index())
	assert.Equal(t, uint8(0x76), m.SoundTimer())
	assert.True(t, m.Redraw())
	assert.Equal(t, uint16(0x212), m.PC())

	// glyph 7 is drawn at (1, 1): 0xF0 in the first row
	fb := m.Framebuffer()
	for x := 1; x < 5; x++ {
		assert.Equal(t, uint8(1), fb.Pixel(x, 1))
	}
	assert.Equal(t, uint8(0), fb.Pixel(5, 1))
	assert.Equal(t, uint8(0), fb.Pixel(1, 0))

	assert.NoError(t, m.Tick(keys))
	assert.Equal(t, uint16(0x200), m.PC())
}
