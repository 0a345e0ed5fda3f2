package asm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// compCodes maps each computation mnemonic to its ten instruction bits:
// the three leading opcode bits, the memory-access-mode bit, and the
// six ALU control bits.
var compCodes = map[string]string{
	"0":   "1110101010",
	"1":   "1110111111",
	"-1":  "1110111010",
	"D":   "1110001100",
	"A":   "1110110000",
	"!D":  "1110001101",
	"!A":  "1110110001",
	"-D":  "1110001111",
	"-A":  "1110110011",
	"D+1": "1110011111",
	"A+1": "1110110111",
	"D-1": "1110001110",
	"A-1": "1110110010",
	"D+A": "1110000010",
	"D-A": "1110010011",
	"A-D": "1110000111",
	"D&A": "1110000000",
	"D|A": "1110010101",
	"M":   "1111110000",
	"!M":  "1111110001",
	"-M":  "1111110011",
	"M+1": "1111110111",
	"M-1": "1111110010",
	"D+M": "1111000010",
	"D-M": "1111010011",
	"M-D": "1111000111",
	"D&M": "1111000000",
	"D|M": "1111010101",
}

var destCodes = map[string]string{
	"":    "000",
	"M":   "001",
	"D":   "010",
	"MD":  "011",
	"A":   "100",
	"AM":  "101",
	"AD":  "110",
	"AMD": "111",
}

var jumpCodes = map[string]string{
	"":    "000",
	"JGT": "001",
	"JEQ": "010",
	"JGE": "011",
	"JLT": "100",
	"JNE": "101",
	"JLE": "110",
	"JMP": "111",
}

// Token lists ordered longest-first so that greedy matching prefers
// D+1 over D and AMD over AM.
var compTokens = []string{
	"D+1", "A+1", "M+1", "D-1", "A-1", "M-1",
	"D+A", "D-A", "A-D", "D&A", "D|A",
	"D+M", "D-M", "M-D", "D&M", "D|M",
	"!D", "!A", "!M", "-D", "-A", "-M", "-1",
	"0", "1", "D", "A", "M",
}

var destTokens = []string{"AMD", "AD", "AM", "MD", "A", "M", "D"}

var jumpTokens = []string{"JGT", "JEQ", "JGE", "JLT", "JNE", "JLE", "JMP"}

// ErrorKind identifies why a line failed to translate.
type ErrorKind int

const (
	// UnknownInstruction marks a non-empty line that matches neither
	// the address grammar nor the compute grammar.
	UnknownInstruction ErrorKind = iota
	// UnboundSymbol marks a symbolic address operand encountered with
	// no symbol table to resolve it against.
	UnboundSymbol
)

// ParseError reports a line that could not be translated. Constructing
// one has no side effects; reporting is the caller's business.
type ParseError struct {
	Kind    ErrorKind
	Line    string
	LineLoc int
}

func (e *ParseError) Error() string {
	if e.Kind == UnboundSymbol {
		return fmt.Sprintf("line %d: symbolic address in %q with no symbol table", e.LineLoc, e.Line)
	}
	return fmt.Sprintf("line %d: unrecognised instruction %q", e.LineLoc, e.Line)
}

// InstructionKind tags an encoded instruction as address-type or
// compute-type.
type InstructionKind int

const (
	AInstruction InstructionKind = iota
	CInstruction
)

// Instruction is one encoded machine word: 16 '0'/'1' characters in
// MSB-first order.
type Instruction struct {
	Kind   InstructionKind
	Binary string
}

// Word returns the instruction as a machine word.
func (i Instruction) Word() uint16 {
	v, _ := strconv.ParseUint(i.Binary, 2, 16)
	return uint16(v)
}

// Words converts an instruction sequence into ROM words.
func Words(program []Instruction) []uint16 {
	out := make([]uint16, len(program))
	for i, inst := range program {
		out[i] = inst.Word()
	}
	return out
}

// ParseLine classifies and encodes one sanitized, label-stripped line.
// ok is false, with a nil error, for lines that yield no instruction:
// empties and label shapes that slipped past the symbol table's
// filtering are tolerated here rather than rejected.
func ParseLine(line string, lineLoc int, symbols *SymbolTable) (Instruction, bool, error) {
	if line == "" {
		return Instruction{}, false, nil
	}

	if line[0] == '@' {
		binary, err := parseAddress(line[1:], line, lineLoc, symbols)
		if err != nil {
			return Instruction{}, false, err
		}
		return Instruction{Kind: AInstruction, Binary: binary}, true, nil
	}

	if binary, ok := parseCompute(line); ok {
		return Instruction{Kind: CInstruction, Binary: binary}, true, nil
	}

	if line[0] == '(' && line[len(line)-1] == ')' {
		return Instruction{}, false, nil
	}

	return Instruction{}, false, &ParseError{Kind: UnknownInstruction, Line: line, LineLoc: lineLoc}
}

// parseAddress encodes an @ operand: a decimal literal directly, and
// anything else as a symbolic name through the table. Legal ROM and
// RAM addresses leave the high bit 0, so the value is the whole word.
func parseAddress(operand, line string, lineLoc int, symbols *SymbolTable) (string, error) {
	value, err := strconv.ParseUint(operand, 10, 16)
	if err == nil {
		return toBinary(uint16(value)), nil
	}
	if errors.Is(err, strconv.ErrRange) {
		// all digits but too large for one machine word
		return "", &ParseError{Kind: UnknownInstruction, Line: line, LineLoc: lineLoc}
	}
	if symbols == nil {
		return "", &ParseError{Kind: UnboundSymbol, Line: line, LineLoc: lineLoc}
	}
	return symbols.Resolve(operand), nil
}

// parseCompute matches the dest=comp;jump grammar against the front of
// line, preferring the longest token at each position. Failing to bind
// a computation term is a normal negative result, not an error: the
// caller falls through to its next classification rule.
//
// Matching stops at the first unrecognised character, so trailing
// garbage is silently ignored and a bare register name is a legal
// no-destination, no-jump instruction. "Memory=Address" therefore
// encodes as a plain M computation. Kept for compatibility with the
// established toolchain behaviour.
func parseCompute(line string) (string, bool) {
	rest := line

	dest := ""
	for _, t := range destTokens {
		if strings.HasPrefix(rest, t) && strings.HasPrefix(rest[len(t):], "=") {
			dest = t
			rest = rest[len(t)+1:]
			break
		}
	}

	comp := ""
	for _, t := range compTokens {
		if strings.HasPrefix(rest, t) {
			comp = t
			rest = rest[len(t):]
			break
		}
	}
	if comp == "" {
		return "", false
	}

	jump := ""
	if strings.HasPrefix(rest, ";") {
		for _, t := range jumpTokens {
			if strings.HasPrefix(rest[1:], t) {
				jump = t
				break
			}
		}
	}

	return compCodes[comp] + destCodes[dest] + jumpCodes[jump], true
}

// Assembler runs the two-pass translation and keeps the symbol table
// it populated for inspection afterwards.
type Assembler struct {
	symbols *SymbolTable
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble translates source into its ordered instruction stream.
func Assemble(source string) ([]Instruction, []*ParseError) {
	return NewAssembler().Assemble(source)
}

// Assemble runs both passes over source. Label discovery completes
// before any line is encoded, so forward references resolve. The
// encoding pass is best-effort: a malformed line is returned as a
// ParseError and contributes no instruction, while every other line is
// still encoded, so the output may be shorter than the instruction
// count. Error locations are 1-based positions in the label-stripped
// instruction stream.
func (a *Assembler) Assemble(source string) ([]Instruction, []*ParseError) {
	a.symbols = NewSymbolTable(strings.Split(source, "\n"))

	var program []Instruction
	var errs []*ParseError

	for i, line := range a.symbols.Instructions() {
		inst, ok, err := ParseLine(line, i+1, a.symbols)
		if err != nil {
			var perr *ParseError
			if !errors.As(err, &perr) {
				perr = &ParseError{Kind: UnknownInstruction, Line: line, LineLoc: i + 1}
			}
			errs = append(errs, perr)
			continue
		}
		if ok {
			program = append(program, inst)
		}
	}

	return program, errs
}

// Symbols returns the table populated by the last Assemble call, nil
// before the first.
func (a *Assembler) Symbols() *SymbolTable {
	return a.symbols
}
