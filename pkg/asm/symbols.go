package asm

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// reservedSymbols are the platform names every program can address
// without declaring them. SCREEN and KBD are the memory-mapped I/O
// regions; SP through THAT are the VM translator's runtime pointers.
var reservedSymbols = map[string]uint16{
	"SP":     0,
	"LCL":    1,
	"ARG":    2,
	"THIS":   3,
	"THAT":   4,
	"SCREEN": 16384,
	"KBD":    24576,
}

// Sanitize strips an inline // comment and every whitespace character
// from a raw source line. The result may be empty.
func Sanitize(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	var b strings.Builder
	for _, r := range line {
		if !unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SymbolTable maps symbolic names to 16-bit addresses. It is built in
// one pass over the sanitized source: label declarations are recorded
// against the index of the instruction that follows them, and every
// other non-empty line is retained as the instruction sequence for the
// encoding pass. Variables are assigned lazily through Resolve.
type SymbolTable struct {
	table        map[string]uint16
	instructions []string

	// next free variable address; the first 16 slots belong to R0-R15
	next uint16
}

// NewSymbolTable sanitizes lines and performs the label-discovery pass.
// R0-R15 and the reserved platform names are seeded first, so a label
// declaration reusing one of those names overwrites it (last write
// wins; duplicates are not an error).
func NewSymbolTable(lines []string) *SymbolTable {
	s := &SymbolTable{
		table: make(map[string]uint16, len(reservedSymbols)+16),
		next:  16,
	}

	for i := uint16(0); i < 16; i++ {
		s.table["R"+strconv.Itoa(int(i))] = i
	}
	for name, addr := range reservedSymbols {
		s.table[name] = addr
	}

	for _, raw := range lines {
		line := Sanitize(raw)
		if line == "" {
			continue
		}
		if line[0] == '(' && line[len(line)-1] == ')' {
			s.table[line[1:len(line)-1]] = uint16(len(s.instructions))
			continue
		}
		s.instructions = append(s.instructions, line)
	}

	return s
}

// Resolve returns name's address as a 16-character binary string. An
// unknown name is treated as a new variable: it is assigned the next
// free address and the assignment is permanent for the rest of the
// run, so repeated lookups always agree.
func (s *SymbolTable) Resolve(name string) string {
	addr, ok := s.table[name]
	if !ok {
		addr = s.next
		s.table[name] = addr
		s.next++
	}
	return toBinary(addr)
}

// Addr reports the resolved address of name without assigning anything.
func (s *SymbolTable) Addr(name string) (uint16, bool) {
	addr, ok := s.table[name]
	return addr, ok
}

// Instructions returns the label-stripped instruction sequence, in
// original source order, ready for the encoding pass.
func (s *SymbolTable) Instructions() []string {
	return s.instructions
}

func toBinary(v uint16) string {
	return fmt.Sprintf("%016b", v)
}
