// Package loader handles program file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/chip8emu/internal/chip8"
)

// ErrEmptyProgram is returned for a program file without content.
var ErrEmptyProgram = errors.New("program is empty")

// Loader handles loading program files from disk.
type Loader struct{}

// New creates a new program loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a raw CHIP-8 program image. The image is verified to fit into
// the program space of the machine memory.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	program, err := l.Read(file)
	if err != nil {
		return nil, fmt.Errorf("loading program %s: %w", path, err)
	}
	return program, nil
}

// Read reads a raw CHIP-8 program image from a reader.
func (l *Loader) Read(reader io.Reader) ([]byte, error) {
	// read one byte more than fits to detect oversized images without
	// reading arbitrary large inputs
	program, err := io.ReadAll(io.LimitReader(reader, chip8.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading program: %w", err)
	}

	switch {
	case len(program) == 0:
		return nil, ErrEmptyProgram
	case len(program) > chip8.MaxProgramSize:
		return nil, fmt.Errorf("%w: maximum is %d bytes", chip8.ErrProgramTooLarge, chip8.MaxProgramSize)
	}
	return program, nil
}
