package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of every sequence in the
// program, entry first.
func (p *Program) Disassemble() string {
	return p.DisassembleWithName("")
}

// DisassembleWithName returns the listing with a name header.
func (p *Program) DisassembleWithName(name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; lispbc bytecode v%d\n", ImageVersion))
	sb.WriteString(fmt.Sprintf("; Sequences: %d, instructions: %d\n", len(p.seqs), p.Len()))

	for _, sym := range p.Symbols() {
		sb.WriteString("\n")
		sb.WriteString(DisassembleSequence(sym, p.seqs[sym]))
	}

	return sb.String()
}

// DisassembleSequence lists one named sequence.
func DisassembleSequence(sym string, seq []Instruction) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s:\n", sym))
	if len(seq) == 0 {
		sb.WriteString("  ; empty\n")
		return sb.String()
	}
	for i, in := range seq {
		sb.WriteString(fmt.Sprintf("%04d  %s\n", i, in))
	}
	return sb.String()
}
