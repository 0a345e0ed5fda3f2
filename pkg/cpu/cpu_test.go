package cpu

import "testing"

// ALU comp fields (a bit + c1..c6) for the computations the tests use.
const (
	compZero   = 0b0101010
	compOne    = 0b0111111
	compD      = 0b0001100
	compA      = 0b0110000
	compM      = 0b1110000
	compDplus1 = 0b0011111
	compDplusA = 0b0000010
	compDminsA = 0b0010011
	compMplus1 = 0b1110111
	compDandA  = 0b0000000
	compNotD   = 0b0001101
	compNegD   = 0b0001111
)

// Destination and jump fields.
const (
	destM  = 0b001
	destD  = 0b010
	destA  = 0b100
	destAM = 0b101

	jmpJGT = 0b001
	jmpJEQ = 0b010
	jmpJLT = 0b100
	jmpJMP = 0b111
)

// cinst builds a compute instruction from its comp, dest, and jump
// fields.
func cinst(comp, dest, jump uint16) uint16 {
	return 0xE000 | comp<<6 | dest<<3 | jump
}

func TestAInstruction(t *testing.T) {
	c := NewComputer()
	c.LoadROM([]uint16{21})
	c.Step()
	if c.A != 21 {
		t.Errorf("A = %d; want 21", c.A)
	}
	if c.PC != 1 {
		t.Errorf("PC = %d; want 1", c.PC)
	}
}

func TestALUComputations(t *testing.T) {
	tests := []struct {
		name  string
		prog  []uint16
		wantD uint16
	}{
		{
			"D=A",
			[]uint16{10, cinst(compA, destD, 0)},
			10,
		},
		{
			"D=D+A",
			[]uint16{10, cinst(compA, destD, 0), 3, cinst(compDplusA, destD, 0)},
			13,
		},
		{
			"D=D-A",
			[]uint16{10, cinst(compA, destD, 0), 3, cinst(compDminsA, destD, 0)},
			7,
		},
		{
			"D=D+1",
			[]uint16{41, cinst(compA, destD, 0), cinst(compDplus1, destD, 0)},
			42,
		},
		{
			"D=D&A",
			[]uint16{0x0FF0, cinst(compA, destD, 0), 0x00FF, cinst(compDandA, destD, 0)},
			0x00F0,
		},
		{
			"D=!D",
			[]uint16{0, cinst(compA, destD, 0), cinst(compNotD, destD, 0)},
			0xFFFF,
		},
		{
			"D=-D",
			[]uint16{5, cinst(compA, destD, 0), cinst(compNegD, destD, 0)},
			0xFFFB, // -5
		},
		{
			"D=1",
			[]uint16{cinst(compOne, destD, 0)},
			1,
		},
		{
			"D=0",
			[]uint16{7, cinst(compA, destD, 0), cinst(compZero, destD, 0)},
			0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := NewComputer()
			c.LoadROM(tc.prog)
			for range tc.prog {
				c.Step()
			}
			if c.D != tc.wantD {
				t.Errorf("D = 0x%04X; want 0x%04X", c.D, tc.wantD)
			}
		})
	}
}

func TestMemoryWrite(t *testing.T) {
	// @5 / M=A stores 5 at RAM[5]; then AM=M+1 must write RAM[5]=6
	// using the pre-instruction A even though A itself becomes 6.
	c := NewComputer()
	c.LoadROM([]uint16{
		5,
		cinst(compA, destM, 0),
		cinst(compMplus1, destAM, 0),
	})
	c.Step()
	c.Step()
	if c.RAM[5] != 5 {
		t.Fatalf("RAM[5] = %d after M=A; want 5", c.RAM[5])
	}
	c.Step()
	if c.RAM[5] != 6 {
		t.Errorf("RAM[5] = %d after AM=M+1; want 6", c.RAM[5])
	}
	if c.A != 6 {
		t.Errorf("A = %d after AM=M+1; want 6", c.A)
	}
	if c.RAM[6] != 0 {
		t.Errorf("RAM[6] = %d; want 0 (write must target the old A)", c.RAM[6])
	}
}

func TestJumps(t *testing.T) {
	// unconditional jump lands on the pre-instruction A
	c := NewComputer()
	c.LoadROM([]uint16{8, cinst(compZero, 0, jmpJMP)})
	c.Step()
	c.Step()
	if c.PC != 8 {
		t.Errorf("PC = %d after 0;JMP; want 8", c.PC)
	}

	// D;JGT with D == 0 falls through
	c = NewComputer()
	c.LoadROM([]uint16{8, cinst(compD, 0, jmpJGT)})
	c.Step()
	c.Step()
	if c.PC != 2 {
		t.Errorf("PC = %d after untaken D;JGT; want 2", c.PC)
	}

	// D;JLT with negative D is taken
	c = NewComputer()
	c.LoadROM([]uint16{
		1,
		cinst(compA, destD, 0),
		cinst(compNegD, destD, 0), // D = -1
		6,
		cinst(compD, 0, jmpJLT),
	})
	for i := 0; i < 5; i++ {
		c.Step()
	}
	if c.PC != 6 {
		t.Errorf("PC = %d after taken D;JLT; want 6", c.PC)
	}

	// JEQ on a zero computation
	c = NewComputer()
	c.LoadROM([]uint16{9, cinst(compZero, 0, jmpJEQ)})
	c.Step()
	c.Step()
	if c.PC != 9 {
		t.Errorf("PC = %d after 0;JEQ; want 9", c.PC)
	}
}

func TestHaltDetection(t *testing.T) {
	// conventional end loop: @0 at ROM[0], 0;JMP at ROM[1]
	c := NewComputer()
	c.LoadROM([]uint16{0, cinst(compZero, 0, jmpJMP)})
	steps := c.Run(100)
	if !c.Halted {
		t.Fatal("end spin loop not detected as halt")
	}
	if steps != 2 {
		t.Errorf("steps = %d; want 2", steps)
	}

	// direct self jump
	c = NewComputer()
	c.LoadROM([]uint16{1, cinst(compZero, 0, jmpJMP)})
	c.Run(100)
	if !c.Halted {
		t.Error("self jump not detected as halt")
	}

	// a conditional jump back is a real loop, not a halt
	c = NewComputer()
	c.LoadROM([]uint16{0, cinst(compZero, 0, jmpJGT)})
	c.Run(10)
	if c.Halted {
		t.Error("conditional jump wrongly detected as halt")
	}
}

func TestKeyboardRegister(t *testing.T) {
	c := NewComputer()
	c.SetKey('A')
	c.LoadROM([]uint16{
		KeyboardAddr,
		cinst(compM, destD, 0),
	})
	c.Step()
	c.Step()
	if c.D != 'A' {
		t.Errorf("D = %d; want %d ('A')", c.D, 'A')
	}

	c.SetKey(0)
	if c.Key() != 0 {
		t.Errorf("Key() = %d after release; want 0", c.Key())
	}
}

func TestRunStepLimit(t *testing.T) {
	// an empty ROM never halts; Run must stop at the step limit
	c := NewComputer()
	if steps := c.Run(50); steps != 50 {
		t.Errorf("steps = %d; want 50", steps)
	}
}
