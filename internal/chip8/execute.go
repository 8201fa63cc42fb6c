package chip8

// handler executes a decoded instruction and returns the program counter
// effect. A returned error is a fatal fault, the handler must not modify the
// machine state in that case.
type handler func(m *Machine, ins Instruction) (ProgramCounter, error)

var handlers = [opCount]handler{
	OpInvalid: (*Machine).opInvalid,
	Op0NNN:    (*Machine).op0NNN,
	Op00E0:    (*Machine).op00E0,
	Op00EE:    (*Machine).op00EE,
	Op1NNN:    (*Machine).op1NNN,
	Op2NNN:    (*Machine).op2NNN,
	Op3XKK:    (*Machine).op3XKK,
	Op4XKK:    (*Machine).op4XKK,
	Op5XY0:    (*Machine).op5XY0,
	Op6XKK:    (*Machine).op6XKK,
	Op7XKK:    (*Machine).op7XKK,
	Op8XY0:    (*Machine).op8XY0,
	Op8XY1:    (*Machine).op8XY1,
	Op8XY2:    (*Machine).op8XY2,
	Op8XY3:    (*Machine).op8XY3,
	Op8XY4:    (*Machine).op8XY4,
	Op8XY5:    (*Machine).op8XY5,
	Op8XY6:    (*Machine).op8XY6,
	Op8XY7:    (*Machine).op8XY7,
	Op8XYE:    (*Machine).op8XYE,
	Op9XY0:    (*Machine).op9XY0,
	OpANNN:    (*Machine).opANNN,
	OpBNNN:    (*Machine).opBNNN,
	OpCXKK:    (*Machine).opCXKK,
	OpDXYN:    (*Machine).opDXYN,
	OpEX9E:    (*Machine).opEX9E,
	OpEXA1:    (*Machine).opEXA1,
	OpFX07:    (*Machine).opFX07,
	OpFX0A:    (*Machine).opFX0A,
	OpFX15:    (*Machine).opFX15,
	OpFX18:    (*Machine).opFX18,
	OpFX1E:    (*Machine).opFX1E,
	OpFX29:    (*Machine).opFX29,
	OpFX33:    (*Machine).opFX33,
	OpFX55:    (*Machine).opFX55,
	OpFX65:    (*Machine).opFX65,
}

func skipIf(condition bool) ProgramCounter {
	if condition {
		return Skip()
	}
	return Next()
}

func flag(condition bool) uint8 {
	if condition {
		return 1
	}
	return 0
}

// opInvalid is never reached through Decode.
func (m *Machine) opInvalid(Instruction) (ProgramCounter, error) {
	return ProgramCounter{}, ErrUnknownOpcode
}

// 0nnn - SYS addr: machine code routines are not supported, ignored.
func (m *Machine) op0NNN(Instruction) (ProgramCounter, error) {
	return Next(), nil
}

// 00E0 - CLS
func (m *Machine) op00E0(Instruction) (ProgramCounter, error) {
	m.display.Clear()
	m.redraw = true
	return Next(), nil
}

// 00EE - RET: the stack holds the address of the call instruction.
func (m *Machine) op00EE(Instruction) (ProgramCounter, error) {
	address, err := m.regs.pop()
	if err != nil {
		return ProgramCounter{}, err
	}
	return Jump(address + opcodeSize), nil
}

// 1nnn - JP addr
func (m *Machine) op1NNN(ins Instruction) (ProgramCounter, error) {
	return Jump(ins.NNN()), nil
}

// 2nnn - CALL addr
func (m *Machine) op2NNN(ins Instruction) (ProgramCounter, error) {
	if err := m.regs.push(m.regs.PC); err != nil {
		return ProgramCounter{}, err
	}
	return Jump(ins.NNN()), nil
}

// 3xkk - SE Vx, byte
func (m *Machine) op3XKK(ins Instruction) (ProgramCounter, error) {
	return skipIf(m.regs.V[ins.X()] == ins.KK()), nil
}

// 4xkk - SNE Vx, byte
func (m *Machine) op4XKK(ins Instruction) (ProgramCounter, error) {
	return skipIf(m.regs.V[ins.X()] != ins.KK()), nil
}

// 5xy0 - SE Vx, Vy
func (m *Machine) op5XY0(ins Instruction) (ProgramCounter, error) {
	return skipIf(m.regs.V[ins.X()] == m.regs.V[ins.Y()]), nil
}

// 6xkk - LD Vx, byte
func (m *Machine) op6XKK(ins Instruction) (ProgramCounter, error) {
	m.regs.V[ins.X()] = ins.KK()
	return Next(), nil
}

// 7xkk - ADD Vx, byte: no carry flag.
func (m *Machine) op7XKK(ins Instruction) (ProgramCounter, error) {
	m.regs.V[ins.X()] += ins.KK()
	return Next(), nil
}

// 8xy0 - LD Vx, Vy
func (m *Machine) op8XY0(ins Instruction) (ProgramCounter, error) {
	m.regs.V[ins.X()] = m.regs.V[ins.Y()]
	return Next(), nil
}

// 8xy1 - OR Vx, Vy
func (m *Machine) op8XY1(ins Instruction) (ProgramCounter, error) {
	m.regs.V[ins.X()] |= m.regs.V[ins.Y()]
	return Next(), nil
}

// 8xy2 - AND Vx, Vy
func (m *Machine) op8XY2(ins Instruction) (ProgramCounter, error) {
	m.regs.V[ins.X()] &= m.regs.V[ins.Y()]
	return Next(), nil
}

// 8xy3 - XOR Vx, Vy
func (m *Machine) op8XY3(ins Instruction) (ProgramCounter, error) {
	m.regs.V[ins.X()] ^= m.regs.V[ins.Y()]
	return Next(), nil
}

// 8xy4 - ADD Vx, Vy: VF = carry.
func (m *Machine) op8XY4(ins Instruction) (ProgramCounter, error) {
	sum := uint16(m.regs.V[ins.X()]) + uint16(m.regs.V[ins.Y()])
	m.regs.V[ins.X()] = uint8(sum)
	m.regs.V[flagRegister] = flag(sum > 0xFF)
	return Next(), nil
}

// 8xy5 - SUB Vx, Vy: VF = Vx > Vy.
func (m *Machine) op8XY5(ins Instruction) (ProgramCounter, error) {
	vx, vy := m.regs.V[ins.X()], m.regs.V[ins.Y()]
	m.regs.V[ins.X()] = vx - vy
	m.regs.V[flagRegister] = flag(vx > vy)
	return Next(), nil
}

// 8xy6 - SHR Vx: VF = bit shifted out, Vy is ignored.
func (m *Machine) op8XY6(ins Instruction) (ProgramCounter, error) {
	vx := m.regs.V[ins.X()]
	m.regs.V[ins.X()] = vx >> 1
	m.regs.V[flagRegister] = vx & 0x01
	return Next(), nil
}

// 8xy7 - SUBN Vx, Vy: Vx = Vy - Vx, VF = Vy > Vx.
func (m *Machine) op8XY7(ins Instruction) (ProgramCounter, error) {
	vx, vy := m.regs.V[ins.X()], m.regs.V[ins.Y()]
	m.regs.V[ins.X()] = vy - vx
	m.regs.V[flagRegister] = flag(vy > vx)
	return Next(), nil
}

// 8xyE - SHL Vx: VF = bit shifted out, Vy is ignored.
func (m *Machine) op8XYE(ins Instruction) (ProgramCounter, error) {
	vx := m.regs.V[ins.X()]
	m.regs.V[ins.X()] = vx << 1
	m.regs.V[flagRegister] = vx >> 7
	return Next(), nil
}

// 9xy0 - SNE Vx, Vy
func (m *Machine) op9XY0(ins Instruction) (ProgramCounter, error) {
	return skipIf(m.regs.V[ins.X()] != m.regs.V[ins.Y()]), nil
}

// Annn - LD I, addr
func (m *Machine) opANNN(ins Instruction) (ProgramCounter, error) {
	m.regs.I = ins.NNN()
	return Next(), nil
}

// Bnnn - JP V0, addr
func (m *Machine) opBNNN(ins Instruction) (ProgramCounter, error) {
	return Jump(uint16(m.regs.V[0]) + ins.NNN()), nil
}

// Cxkk - RND Vx, byte
func (m *Machine) opCXKK(ins Instruction) (ProgramCounter, error) {
	m.regs.V[ins.X()] = m.random() & ins.KK()
	return Next(), nil
}

// Dxyn - DRW Vx, Vy, nibble
//
// Draws n sprite rows read from I at (Vx, Vy). Pixels are XORed onto the
// display and wrap around at the edges. VF is set to 1 if any set pixel was
// turned off.
func (m *Machine) opDXYN(ins Instruction) (ProgramCounter, error) {
	rows := int(ins.N())
	if err := checkRange(m.regs.I, rows); err != nil {
		return ProgramCounter{}, err
	}

	vx, vy := int(m.regs.V[ins.X()]), int(m.regs.V[ins.Y()])
	var collision uint8
	for row := range rows {
		sprite := m.memory[int(m.regs.I)+row]
		y := (vy + row) % DisplayHeight
		for bit := range 8 {
			x := (vx + bit) % DisplayWidth
			collision |= m.display.xor(x, y, (sprite>>(7-bit))&1)
		}
	}

	m.regs.V[flagRegister] = collision
	m.redraw = true
	return Next(), nil
}

// Ex9E - SKP Vx
func (m *Machine) opEX9E(ins Instruction) (ProgramCounter, error) {
	pressed, err := m.keypad.Pressed(m.regs.V[ins.X()])
	if err != nil {
		return ProgramCounter{}, err
	}
	return skipIf(pressed), nil
}

// ExA1 - SKNP Vx
func (m *Machine) opEXA1(ins Instruction) (ProgramCounter, error) {
	pressed, err := m.keypad.Pressed(m.regs.V[ins.X()])
	if err != nil {
		return ProgramCounter{}, err
	}
	return skipIf(!pressed), nil
}

// Fx07 - LD Vx, DT
func (m *Machine) opFX07(ins Instruction) (ProgramCounter, error) {
	m.regs.V[ins.X()] = m.timers.Delay
	return Next(), nil
}

// Fx0A - LD Vx, K: resolved by a later tick.
func (m *Machine) opFX0A(ins Instruction) (ProgramCounter, error) {
	m.wait.arm(ins.X())
	return Next(), nil
}

// Fx15 - LD DT, Vx
func (m *Machine) opFX15(ins Instruction) (ProgramCounter, error) {
	m.timers.Delay = m.regs.V[ins.X()]
	return Next(), nil
}

// Fx18 - LD ST, Vx
func (m *Machine) opFX18(ins Instruction) (ProgramCounter, error) {
	m.timers.Sound = m.regs.V[ins.X()]
	return Next(), nil
}

// Fx1E - ADD I, Vx: VF = 1 if I ends up above 0x0F00.
func (m *Machine) opFX1E(ins Instruction) (ProgramCounter, error) {
	m.regs.I += uint16(m.regs.V[ins.X()])
	m.regs.V[flagRegister] = flag(m.regs.I > indexFlagLimit)
	return Next(), nil
}

// Fx29 - LD F, Vx: I = address of the glyph of the low nibble of Vx.
func (m *Machine) opFX29(ins Instruction) (ProgramCounter, error) {
	digit := uint16(m.regs.V[ins.X()] & 0xF)
	m.regs.I = GlyphBase + digit*GlyphSize
	return Next(), nil
}

// Fx33 - LD B, Vx: hundreds, tens and ones of Vx to I, I+1, I+2.
func (m *Machine) opFX33(ins Instruction) (ProgramCounter, error) {
	if err := checkRange(m.regs.I, 3); err != nil {
		return ProgramCounter{}, err
	}
	vx := m.regs.V[ins.X()]
	m.memory[m.regs.I] = vx / 100
	m.memory[m.regs.I+1] = vx / 10 % 10
	m.memory[m.regs.I+2] = vx % 10
	return Next(), nil
}

// Fx55 - LD [I], Vx: stores V0 through Vx.
func (m *Machine) opFX55(ins Instruction) (ProgramCounter, error) {
	count := int(ins.X()) + 1
	if err := checkRange(m.regs.I, count); err != nil {
		return ProgramCounter{}, err
	}
	copy(m.memory[m.regs.I:], m.regs.V[:count])
	return Next(), nil
}

// Fx65 - LD Vx, [I]: loads V0 through Vx.
func (m *Machine) opFX65(ins Instruction) (ProgramCounter, error) {
	count := int(ins.X()) + 1
	if err := checkRange(m.regs.I, count); err != nil {
		return ProgramCounter{}, err
	}
	copy(m.regs.V[:count], m.memory[m.regs.I:])
	return Next(), nil
}
