// Package terminal implements a frontend that renders the display with
// block characters in a terminal and reads the keypad from raw stdin.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// DefaultHoldTicks is the number of ticks a key stays pressed after its
// character was read. Terminals do not report key releases.
const DefaultHoldTicks = 50

const (
	keyEscape = 0x1B
	keyCtrlC  = 0x03

	cursorHome = "\x1b[H"
	clearAll   = "\x1b[2J"
	hideCursor = "\x1b[?25l"
	showCursor = "\x1b[?25h"
)

// keyMap maps characters of the left side of a QWERTY keyboard to the
// hexadecimal keypad.
var keyMap = map[byte]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Frontend renders to a terminal. Poll and Render are called by the runner,
// handleInput by the stdin reader goroutine.
type Frontend struct {
	logger    *log.Logger
	in        *os.File
	out       io.Writer
	holdTicks int

	mutex sync.Mutex
	held  [chip8.KeyCount]int // remaining ticks a key is reported as down
	quit  bool

	input inputState
}

// New returns a new terminal frontend reading keys from in and writing
// frames to out.
func New(logger *log.Logger, in *os.File, out io.Writer, holdTicks int) *Frontend {
	if holdTicks <= 0 {
		holdTicks = DefaultHoldTicks
	}
	return &Frontend{
		logger:    logger,
		in:        in,
		out:       out,
		holdTicks: holdTicks,
	}
}

// Open switches the terminal to raw mode and starts reading keys.
func (f *Frontend) Open() error {
	if err := f.input.start(f.logger, f.in, f.handleInput); err != nil {
		return fmt.Errorf("opening terminal input: %w", err)
	}
	if _, err := io.WriteString(f.out, clearAll+hideCursor); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}

// Close stops reading keys and restores the terminal state.
func (f *Frontend) Close() error {
	f.input.stop()
	if _, err := io.WriteString(f.out, showCursor+"\r\n"); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}

// Poll returns the held keys and counts their hold time down.
// Escape or Ctrl+C requests to quit.
func (f *Frontend) Poll() (chip8.Keypad, bool) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	var keypad chip8.Keypad
	for i, ticks := range f.held {
		if ticks > 0 {
			keypad[i] = true
			f.held[i]--
		}
	}
	return keypad, f.quit
}

// Render writes the framebuffer to the terminal.
func (f *Frontend) Render(fb *chip8.Framebuffer) error {
	if _, err := io.WriteString(f.out, frame(fb)); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}

// handleInput processes characters read from the terminal.
func (f *Frontend) handleInput(data []byte) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	for i, b := range data {
		switch {
		case b == keyCtrlC:
			f.quit = true
			return

		case b == keyEscape:
			// a lone escape is the escape key, otherwise an escape
			// sequence like a cursor key follows that is ignored
			if i == len(data)-1 {
				f.quit = true
			}
			return
		}

		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		if key, ok := keyMap[b]; ok {
			f.held[key] = f.holdTicks
		}
	}
}

// frame renders the framebuffer with half block characters, every text line
// covers two pixel rows.
func frame(fb *chip8.Framebuffer) string {
	var sb strings.Builder
	sb.WriteString(cursorHome)

	for y := 0; y < chip8.DisplayHeight; y += 2 {
		for x := range chip8.DisplayWidth {
			top, bottom := fb[y][x] != 0, fb[y+1][x] != 0
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}
