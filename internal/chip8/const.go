package chip8

// CHIP-8 memory layout constants.
//
//	0x000-0x04F: unused
//	0x050-0x09F: hexadecimal digit glyphs
//	0x200-0xFFF: program space
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 4096

	// ProgramStart is the address a program image is loaded to and execution starts at.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program image that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart

	// GlyphBase is the address of the built-in hexadecimal digit glyph table.
	GlyphBase = 0x050

	// GlyphSize is the number of bytes (rows) of a single digit glyph.
	GlyphSize = 5
)

// Machine dimensions.
const (
	RegisterCount = 16
	StackDepth    = 16
	KeyCount      = 16

	DisplayWidth  = 64
	DisplayHeight = 32
)

const (
	opcodeSize   = 2
	flagRegister = 0xF

	// indexFlagLimit is the index register value above which ADD I, Vx sets VF.
	indexFlagLimit = 0x0F00
)
