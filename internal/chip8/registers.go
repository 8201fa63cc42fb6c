package chip8

// Registers is the register file of the machine.
type Registers struct {
	V     [RegisterCount]uint8 // general purpose registers V0-VF, VF doubles as flag
	I     uint16               // index register
	PC    uint16               // program counter
	SP    uint8                // number of used stack entries
	Stack [StackDepth]uint16   // return addresses
}

func (r *Registers) push(address uint16) error {
	if int(r.SP) >= StackDepth {
		return ErrStackOverflow
	}
	r.Stack[r.SP] = address
	r.SP++
	return nil
}

func (r *Registers) pop() (uint16, error) {
	if r.SP == 0 {
		return 0, ErrStackUnderflow
	}
	r.SP--
	return r.Stack[r.SP], nil
}

// Timers contains the delay and sound countdown timers.
type Timers struct {
	Delay uint8
	Sound uint8
}

// decrement counts both timers down by one, stopping at zero.
func (t *Timers) decrement() {
	if t.Delay > 0 {
		t.Delay--
	}
	if t.Sound > 0 {
		t.Sound--
	}
}
