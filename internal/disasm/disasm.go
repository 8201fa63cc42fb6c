// Package disasm implements a CHIP-8 program disassembler
package disasm

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// offsetType defines the type of a program offset.
type offsetType uint8

const (
	codeOffset      offsetType = 1 << iota
	dataOffset                 // referenced by an ld I instruction
	codeAsData                 // instruction that contains a branch destination
	callDestination            // destination of a call, indicating a subroutine
)

// offset is a single byte of the program.
type offset struct {
	typ     offsetType
	data    []byte // instruction bytes, only set for the first byte of an instruction
	code    string
	label   string
	comment string

	branchFrom []uint16 // addresses of instructions referencing this offset
}

func (o *offset) isType(typ offsetType) bool {
	return o.typ&typ != 0
}

// Disasm implements a disassembler.
type Disasm struct {
	logger  *log.Logger
	options options.Disassembler

	program []byte
	offsets []offset

	branchDestinations  set.Set[uint16] // set of all addresses that are jumped to or called
	dataReferences      set.Set[uint16] // set of all addresses that are loaded into I
	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
}

// New creates a new disassembler for the given program image.
func New(logger *log.Logger, program []byte, opts options.Disassembler) (*Disasm, error) {
	switch {
	case len(program) == 0:
		return nil, errors.New("program is empty")
	case len(program) > chip8.MaxProgramSize:
		return nil, fmt.Errorf("%w: %d bytes", chip8.ErrProgramTooLarge, len(program))
	}

	return &Disasm{
		logger:              logger,
		options:             opts,
		program:             program,
		offsets:             make([]offset, len(program)),
		branchDestinations:  set.New[uint16](),
		dataReferences:      set.New[uint16](),
		offsetsToParseAdded: set.New[uint16](),
	}, nil
}

// Process traces all code reachable from the program start and writes the
// disassembly to the writer.
func (dis *Disasm) Process(ctx context.Context, w io.Writer) error {
	dis.offsets[0].label = "Start"
	dis.addAddressToParse(chip8.ProgramStart)

	if err := dis.followExecutionFlow(ctx); err != nil {
		return err
	}
	dis.processJumpDestinations()

	if err := dis.write(w); err != nil {
		return fmt.Errorf("writing disassembly: %w", err)
	}
	return nil
}

// followExecutionFlow parses opcodes and follows the execution flow to parse all code.
func (dis *Disasm) followExecutionFlow(ctx context.Context) error {
	for len(dis.offsetsToParse) > 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("tracing code: %w", err)
		}

		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]
		dis.processOffset(address)
	}
	return nil
}

func (dis *Disasm) processOffset(address uint16) {
	index := int(address) - chip8.ProgramStart
	if index+1 >= len(dis.program) {
		return
	}
	offsetInfo := &dis.offsets[index]
	if offsetInfo.isType(codeOffset) || dis.offsets[index+1].isType(codeOffset) {
		return
	}

	word := uint16(dis.program[index])<<8 | uint16(dis.program[index+1])
	ins, err := chip8.Decode(chip8.Opcode(word))
	if err != nil {
		dis.logger.Debug("Unknown opcode in code path",
			log.Hex("address", address),
			log.Hex("opcode", word))
		return
	}

	offsetInfo.typ |= codeOffset
	offsetInfo.data = dis.program[index : index+2]
	offsetInfo.code = ins.String()
	dis.offsets[index+1].typ |= codeOffset

	dis.handleControlFlow(address, ins)
}

// handleControlFlow queues the addresses that can be executed after the instruction.
func (dis *Disasm) handleControlFlow(address uint16, ins chip8.Instruction) {
	next := address + 2

	switch ins.Op {
	case chip8.Op1NNN, chip8.OpBNNN:
		dis.addBranchDestination(address, ins.NNN(), false)

	case chip8.Op2NNN:
		dis.addBranchDestination(address, ins.NNN(), true)
		dis.addAddressToParse(next)

	case chip8.Op00EE:

	case chip8.OpANNN:
		if dis.inProgram(ins.NNN()) {
			dis.dataReferences.Add(ins.NNN())
			target := dis.offsetInfo(ins.NNN())
			target.typ |= dataOffset
			target.branchFrom = append(target.branchFrom, address)
		}
		dis.addAddressToParse(next)

	default:
		dis.addAddressToParse(next)
		if ins.IsSkip() {
			dis.addAddressToParse(next + 2)
		}
	}
}

func (dis *Disasm) addBranchDestination(from, target uint16, call bool) {
	if !dis.inProgram(target) {
		return
	}

	dis.branchDestinations.Add(target)
	offsetInfo := dis.offsetInfo(target)
	offsetInfo.branchFrom = append(offsetInfo.branchFrom, from)
	if call {
		offsetInfo.typ |= callDestination
	}
	dis.addAddressToParse(target)
}

func (dis *Disasm) addAddressToParse(address uint16) {
	if !dis.inProgram(address) || dis.offsetsToParseAdded.Contains(address) {
		return
	}
	dis.offsetsToParseAdded.Add(address)
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

func (dis *Disasm) inProgram(address uint16) bool {
	return int(address) >= chip8.ProgramStart && int(address) < chip8.ProgramStart+len(dis.program)
}

func (dis *Disasm) offsetInfo(address uint16) *offset {
	return &dis.offsets[int(address)-chip8.ProgramStart]
}
