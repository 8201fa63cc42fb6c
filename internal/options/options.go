// Package options contains the program options.
package options

import (
	"strings"
	"time"
)

// Frontend names.
const (
	Ebiten   = "ebiten"
	Terminal = "terminal"
	Headless = "headless"
)

// DefaultTickRate is the number of machine ticks per second.
const DefaultTickRate = 500

// Parameters contains file path options.
type Parameters struct {
	Input  string `arg:"positional" usage:"CHIP-8 program file"`
	Output string `flag:"o" usage:"output .asm file (default: stdout)"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend        string `flag:"frontend" usage:"frontend: ebiten, terminal, headless" default:"ebiten"`
	TickRate        int    `flag:"rate" usage:"machine ticks per second" default:"500"`
	Scale           int    `flag:"scale" usage:"window scale factor" default:"20"`
	Ticks           uint64 `flag:"ticks" usage:"stop after the given number of ticks, 0 runs forever"`
	Seed            uint64 `flag:"seed" usage:"seed of the random instruction, 0 uses a random seed"`
	Mute            bool   `flag:"mute" usage:"disable sound"`
	ContinueUnknown bool   `flag:"continue-unknown" usage:"keep running on unknown opcodes"`
	Trace           bool   `flag:"trace" usage:"log every executed instruction"`
	Debug           bool   `flag:"debug" usage:"enable debug logging"`
	Quiet           bool   `flag:"q" usage:"quiet mode"`
}

// OutputFlags contains disassembler output formatting options.
type OutputFlags struct {
	NoHexComments bool `flag:"nohexcomments" usage:"omit hex opcode bytes in comments"`
	NoOffsets     bool `flag:"nooffsets" usage:"omit program offsets in comments"`
	ZeroBytes     bool `flag:"z" usage:"include trailing zero bytes of the program"`
	AutoOutput    bool `flag:"a" usage:"write the output next to the input file with an .asm extension"`
}

// Program options of the emulator and disassembler commands.
type Program struct {
	Parameters
	Flags
	OutputFlags
}

// Emulator defines options to control the machine runner.
type Emulator struct {
	Frontend      string
	TickRate      int    // ticks per second
	Scale         int    // window pixels per display pixel
	MaxTicks      uint64 // 0 means unlimited
	Seed          uint64 // 0 means random
	HaltOnUnknown bool   // stop the run on an opcode that can not be decoded
	Mute          bool
	Trace         bool
}

// NewEmulator returns a new options instance with default options.
func NewEmulator(frontend string) Emulator {
	return Emulator{
		Frontend:      strings.ToLower(frontend),
		TickRate:      DefaultTickRate,
		Scale:         20,
		HaltOnUnknown: true,
	}
}

// TickInterval returns the duration of a single tick.
func (e Emulator) TickInterval() time.Duration {
	if e.TickRate <= 0 {
		return time.Second / DefaultTickRate
	}
	return time.Second / time.Duration(e.TickRate)
}

// Disassembler defines options to control the disassembler.
type Disassembler struct {
	HexComments    bool
	OffsetComments bool
	ZeroBytes      bool
}

// NewDisassembler returns a new options instance with default options.
func NewDisassembler() Disassembler {
	return Disassembler{
		HexComments:    true,
		OffsetComments: true,
	}
}
