package chip8

// Keypad is the key down state of the 16 hexadecimal keys 0-F.
type Keypad [KeyCount]bool

// Pressed returns whether the given key is down.
func (k Keypad) Pressed(key uint8) (bool, error) {
	if int(key) >= KeyCount {
		return false, ErrKeyOutOfRange
	}
	return k[key], nil
}

// FirstPressed returns the lowest key index that is down.
func (k Keypad) FirstPressed() (uint8, bool) {
	for i, down := range k {
		if down {
			return uint8(i), true
		}
	}
	return 0, false
}

// WaitState tracks a pending wait for key instruction.
type WaitState struct {
	Waiting  bool
	Register uint8 // register that receives the pressed key
}

// arm suspends execution until a key press is stored into register x.
func (w *WaitState) arm(x uint8) {
	w.Waiting = true
	w.Register = x
}

// resolve latches the lowest pressed key into the target register and
// returns to running state. It returns false if no key is down.
func (w *WaitState) resolve(keypad Keypad, regs *Registers) bool {
	key, ok := keypad.FirstPressed()
	if !ok {
		return false
	}
	regs.V[w.Register] = key
	w.Waiting = false
	w.Register = 0
	return true
}
