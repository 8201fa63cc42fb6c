package chip8

import "fmt"

// glyphs contains the 4x5 pixel sprites of the hexadecimal digits 0-F.
var glyphs = [16 * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the byte addressable main memory of the machine.
type Memory [MemorySize]byte

func newMemory() Memory {
	var m Memory
	copy(m[GlyphBase:], glyphs[:])
	return m
}

// Read returns the byte at the given address.
func (m *Memory) Read(address uint16) (byte, error) {
	if err := checkRange(address, 1); err != nil {
		return 0, err
	}
	return m[address], nil
}

// Write sets the byte at the given address.
func (m *Memory) Write(address uint16, value byte) error {
	if err := checkRange(address, 1); err != nil {
		return err
	}
	m[address] = value
	return nil
}

// readWord returns the big endian 16 bit word at the given address.
func (m *Memory) readWord(address uint16) (uint16, error) {
	if err := checkRange(address, opcodeSize); err != nil {
		return 0, err
	}
	return uint16(m[address])<<8 | uint16(m[address+1]), nil
}

// load copies a program image to the program start address.
func (m *Memory) load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}
	copy(m[ProgramStart:], program)
	return nil
}

// checkRange verifies that length bytes starting at address are inside memory.
func checkRange(address uint16, length int) error {
	if int(address)+length > MemorySize {
		return fmt.Errorf("accessing %d bytes at $%04X: %w", length, address, ErrAddressOutOfRange)
	}
	return nil
}
