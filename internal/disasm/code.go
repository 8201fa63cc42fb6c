package disasm

import (
	"fmt"
	"slices"
	"strings"
)

const (
	funcNaming  = "_func_%03x"
	labelNaming = "_label_%03x"
	dataNaming  = "_data_%03x"
)

// processJumpDestinations names all referenced addresses and updates the
// referencing instructions with the label name.
func (dis *Disasm) processJumpDestinations() {
	destinations := make([]uint16, 0, len(dis.branchDestinations)+len(dis.dataReferences))
	for dest := range dis.branchDestinations {
		destinations = append(destinations, dest)
	}
	for dest := range dis.dataReferences {
		if !dis.branchDestinations.Contains(dest) {
			destinations = append(destinations, dest)
		}
	}
	slices.Sort(destinations)

	for _, address := range destinations {
		offsetInfo := dis.offsetInfo(address)

		name := offsetInfo.label
		if name == "" {
			switch {
			case offsetInfo.isType(callDestination):
				name = fmt.Sprintf(funcNaming, address)
			case dis.branchDestinations.Contains(address):
				name = fmt.Sprintf(labelNaming, address)
			default:
				name = fmt.Sprintf(dataNaming, address)
			}
			offsetInfo.label = name
		}

		// if the offset is marked as code but does not have opcode bytes, the
		// destination is the second byte of an instruction.
		if offsetInfo.isType(codeOffset) && len(offsetInfo.data) == 0 {
			dis.handleJumpIntoInstruction(address)
		}

		operand := fmt.Sprintf("$%03X", address)
		for _, from := range offsetInfo.branchFrom {
			ref := dis.offsetInfo(from)
			ref.code = strings.Replace(ref.code, operand, name, 1)
		}
	}
}

// handleJumpIntoInstruction converts an instruction that has a destination
// label inside its second byte into data.
func (dis *Disasm) handleJumpIntoInstruction(address uint16) {
	offsetInfo := dis.offsetInfo(address - 1)
	offsetInfo.comment = "branch into instruction detected: " + offsetInfo.code
	offsetInfo.code = ""
	offsetInfo.typ |= codeAsData
}
