package cpu

// Memory map. The screen is a 512×256 1-bit framebuffer, 32 words per
// row, LSB of each word leftmost. The keyboard register holds the
// character code of the currently pressed key, 0 when none.
const (
	ScreenBase   uint16 = 16384
	KeyboardAddr uint16 = 24576

	ScreenWidth  = 512
	ScreenHeight = 256
	ScreenWords  = 8192
)

// Computer executes Hack machine words: two registers, a program
// counter, word-addressed ROM and RAM. Instructions with the high bit
// clear load A; all others are compute instructions.
type Computer struct {
	A  uint16
	D  uint16
	PC uint16

	ROM [32768]uint16
	RAM [32768]uint16

	// Halted is set when the program reaches a terminal spin loop.
	// The architecture itself has no halt instruction.
	Halted bool
}

func NewComputer() *Computer {
	return &Computer{}
}

// LoadROM copies a program into instruction memory starting at 0 and
// resets execution state. RAM is left alone so inputs staged there
// survive the load.
func (c *Computer) LoadROM(words []uint16) {
	clear(c.ROM[:])
	copy(c.ROM[:], words)
	c.A = 0
	c.D = 0
	c.PC = 0
	c.Halted = false
}

// SetKey stores a key code in the keyboard register. Pass 0 on release.
func (c *Computer) SetKey(code uint16) {
	c.RAM[KeyboardAddr] = code
}

func (c *Computer) Key() uint16 {
	return c.RAM[KeyboardAddr]
}

// alu applies the six control bits zx nx zy ny f no to x and y.
func alu(x, y uint16, bits uint16) uint16 {
	if bits&0x20 != 0 {
		x = 0
	}
	if bits&0x10 != 0 {
		x = ^x
	}
	if bits&0x08 != 0 {
		y = 0
	}
	if bits&0x04 != 0 {
		y = ^y
	}
	var out uint16
	if bits&0x02 != 0 {
		out = x + y
	} else {
		out = x & y
	}
	if bits&0x01 != 0 {
		out = ^out
	}
	return out
}

// Step executes the instruction at PC. For compute instructions the M
// operand, the M destination, and the jump target all use the value A
// held before the instruction, matching the hardware's register file
// clocking.
func (c *Computer) Step() {
	if c.Halted {
		return
	}

	pc := c.PC
	instr := c.ROM[pc&0x7FFF]
	c.PC++

	if instr&0x8000 == 0 {
		c.A = instr
		return
	}

	oldA := c.A

	y := c.A
	if instr&0x1000 != 0 {
		y = c.RAM[oldA&0x7FFF]
	}
	out := alu(c.D, y, (instr>>6)&0x3F)

	if instr&0x0008 != 0 {
		c.RAM[oldA&0x7FFF] = out
	}
	if instr&0x0020 != 0 {
		c.A = out
	}
	if instr&0x0010 != 0 {
		c.D = out
	}

	jump := instr & 0x7
	signed := int16(out)
	taken := (jump&0x4 != 0 && signed < 0) ||
		(jump&0x2 != 0 && signed == 0) ||
		(jump&0x1 != 0 && signed > 0)
	if !taken {
		return
	}
	c.PC = oldA

	// An unconditional dest-less jump back onto itself, or onto the
	// @x / 0;JMP pair it belongs to, can never change state again.
	// Treat the conventional end-of-program spin loop as a halt.
	if jump == 0x7 && instr&0x38 == 0 {
		if oldA == pc {
			c.Halted = true
		} else if oldA+1 == pc && c.ROM[oldA&0x7FFF] == oldA {
			c.Halted = true
		}
	}
}

// Run steps the machine until it halts or maxSteps instructions have
// executed, and returns the number of steps taken.
func (c *Computer) Run(maxSteps int) int {
	steps := 0
	for steps < maxSteps && !c.Halted {
		c.Step()
		steps++
	}
	return steps
}
