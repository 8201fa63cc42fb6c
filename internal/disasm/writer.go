package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/chip8emu/internal/chip8"
)

const dataBytesPerLine = 8

// write outputs the traced program as assembly.
func (dis *Disasm) write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "; CHIP-8 program disassembly\n; Program starts at $%03X\n\n.org $%03X\n",
		chip8.ProgramStart, chip8.ProgramStart); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	endIndex := dis.endIndex()
	for i := 0; i < endIndex; {
		offsetInfo := dis.offsets[i]

		if offsetInfo.label != "" {
			if _, err := fmt.Fprintf(w, "\n%s:\n", offsetInfo.label); err != nil {
				return fmt.Errorf("writing label %s: %w", offsetInfo.label, err)
			}
		}

		if dis.isCodeStart(i) {
			if err := dis.writeCode(w, i); err != nil {
				return err
			}
			i += len(offsetInfo.data)
			continue
		}

		count, err := dis.writeData(w, i, endIndex)
		if err != nil {
			return err
		}
		i += count
	}
	return nil
}

// writeCode writes an instruction line.
func (dis *Disasm) writeCode(w io.Writer, index int) error {
	offsetInfo := dis.offsets[index]

	var comment []string
	if dis.options.OffsetComments {
		comment = append(comment, fmt.Sprintf("$%04X", chip8.ProgramStart+index))
	}
	if dis.options.HexComments {
		comment = append(comment, fmt.Sprintf("%02X %02X", offsetInfo.data[0], offsetInfo.data[1]))
	}
	return writeLine(w, "    "+offsetInfo.code, comment)
}

// writeData bundles data bytes up to the next label or instruction and
// returns the number of written bytes.
func (dis *Disasm) writeData(w io.Writer, index, endIndex int) (int, error) {
	end := index + 1
	for end < endIndex && end-index < dataBytesPerLine {
		next := dis.offsets[end]
		if next.label != "" || next.isType(codeAsData) || dis.isCodeStart(end) {
			break
		}
		end++
	}

	var buf strings.Builder
	buf.WriteString("    .byte ")
	for i, b := range dis.program[index:end] {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "$%02X", b)
	}

	var comment []string
	if dis.options.OffsetComments {
		comment = append(comment, fmt.Sprintf("$%04X", chip8.ProgramStart+index))
	}
	if c := dis.offsets[index].comment; c != "" {
		comment = append(comment, c)
	}

	if err := writeLine(w, buf.String(), comment); err != nil {
		return 0, err
	}
	return end - index, nil
}

func writeLine(w io.Writer, line string, comment []string) error {
	var err error
	if len(comment) == 0 {
		_, err = fmt.Fprintf(w, "%s\n", line)
	} else {
		_, err = fmt.Fprintf(w, "%-32s ; %s\n", line, strings.Join(comment, " "))
	}
	if err != nil {
		return fmt.Errorf("writing line: %w", err)
	}
	return nil
}

func (dis *Disasm) isCodeStart(index int) bool {
	offsetInfo := dis.offsets[index]
	return offsetInfo.isType(codeOffset) && !offsetInfo.isType(codeAsData) && len(offsetInfo.data) > 0
}

// endIndex finds the end of the last meaningful byte of the program.
func (dis *Disasm) endIndex() int {
	if dis.options.ZeroBytes {
		return len(dis.program)
	}

	for i := len(dis.program) - 1; i >= 0; i-- {
		offsetInfo := dis.offsets[i]
		if dis.program[i] != 0 || offsetInfo.label != "" || offsetInfo.isType(codeOffset) {
			return i + 1
		}
	}
	return 0
}
