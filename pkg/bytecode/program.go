package bytecode

import (
	"errors"
	"fmt"
	"sort"
)

// EntrySymbol names a Program's implicit top-level sequence.
const EntrySymbol = "entry"

// ErrNoEntry is returned when a program has no entry sequence to run.
var ErrNoEntry = errors.New("no entry")

// RedefinitionError reports a named sequence defined by both sides of a merge.
type RedefinitionError struct {
	Symbol string
}

func (e *RedefinitionError) Error() string {
	return fmt.Sprintf("redefinition of function symbol: %s", e.Symbol)
}

// Program maps symbol names to instruction sequences. It is built once by
// the compiler and then only read by the VM.
type Program struct {
	seqs map[string][]Instruction
}

// NewProgram returns a program holding only an empty entry sequence.
func NewProgram() *Program {
	return &Program{
		seqs: map[string][]Instruction{EntrySymbol: {}},
	}
}

// Append adds instructions to the entry sequence.
func (p *Program) Append(ins ...Instruction) {
	p.seqs[EntrySymbol] = append(p.seqs[EntrySymbol], ins...)
}

// AddEntry appends seq to the sequence bound to sym, creating it if needed.
func (p *Program) AddEntry(sym string, seq []Instruction) {
	if p.seqs == nil {
		p.seqs = make(map[string][]Instruction)
	}
	p.seqs[sym] = append(p.seqs[sym], seq...)
}

// Define binds a new named sequence. Redefining a non-entry symbol fails;
// the entry sequence is extended instead.
func (p *Program) Define(sym string, seq []Instruction) error {
	if sym != EntrySymbol {
		if _, exists := p.seqs[sym]; exists {
			return &RedefinitionError{Symbol: sym}
		}
	}
	p.AddEntry(sym, seq)
	return nil
}

// Merge folds other into p. The entry sequences are concatenated; any
// other symbol present in both programs is a redefinition, in which case
// p is left unchanged.
func (p *Program) Merge(other *Program) error {
	for sym := range other.seqs {
		if sym == EntrySymbol {
			continue
		}
		if _, exists := p.seqs[sym]; exists {
			return &RedefinitionError{Symbol: sym}
		}
	}
	for _, sym := range other.Symbols() {
		p.AddEntry(sym, other.seqs[sym])
	}
	return nil
}

// Entry returns the entry sequence.
func (p *Program) Entry() ([]Instruction, error) {
	seq, ok := p.seqs[EntrySymbol]
	if !ok {
		return nil, ErrNoEntry
	}
	return seq, nil
}

// Lookup returns the sequence bound to sym.
func (p *Program) Lookup(sym string) ([]Instruction, bool) {
	seq, ok := p.seqs[sym]
	return seq, ok
}

// Symbols returns the bound symbols, entry first, the rest sorted.
func (p *Program) Symbols() []string {
	syms := make([]string, 0, len(p.seqs))
	for sym := range p.seqs {
		if sym != EntrySymbol {
			syms = append(syms, sym)
		}
	}
	sort.Strings(syms)
	if _, ok := p.seqs[EntrySymbol]; ok {
		syms = append([]string{EntrySymbol}, syms...)
	}
	return syms
}

// Len returns the total number of instructions across all sequences.
func (p *Program) Len() int {
	n := 0
	for _, seq := range p.seqs {
		n += len(seq)
	}
	return n
}
