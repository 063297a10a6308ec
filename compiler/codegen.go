package compiler

import (
	"fmt"
	"sort"

	"github.com/tliron/commonlog"

	"github.com/chazu/lispbc/pkg/bytecode"
	"github.com/chazu/lispbc/value"
)

var log = commonlog.GetLogger("lispbc.compiler")

// ---------------------------------------------------------------------------
// Code generation: value tree -> bytecode.Program
// ---------------------------------------------------------------------------

// CallHeadError is returned in strict mode for a list whose head is not a
// bare symbol.
type CallHeadError struct {
	Head value.Value
}

func (e *CallHeadError) Error() string {
	return fmt.Sprintf("call head must be a symbol, got %s", value.Format(e.Head))
}

// Compiler lowers value trees to bytecode.
type Compiler struct {
	// StrictCallHead rejects lists whose head is not a symbol. When false
	// such lists compile their operands and emit no call.
	StrictCallHead bool
}

// New returns a compiler with default settings.
func New() *Compiler {
	return &Compiler{}
}

// Compile lowers a single node. The rules are tried in order:
//
//  1. a literal becomes PushConst of itself
//  2. an Expression becomes PushConst of its inner value, even a list or
//     symbol
//  3. a symbol becomes Push (a variable reference)
//  4. a list compiles its operands inline, left to right, then emits
//     Call of its head symbol
func (c *Compiler) Compile(node value.Value) (*bytecode.Program, error) {
	res := bytecode.NewProgram()

	if value.IsLiteral(node) {
		res.Append(bytecode.PushConst(value.Values.EmbedRecord(node)))
		return res, nil
	}

	if inner, ok := value.Unquote(node); ok {
		res.Append(bytecode.PushConst(value.Values.EmbedRecord(inner)))
		return res, nil
	}

	switch n := node.(type) {
	case value.Symbol:
		res.Append(bytecode.Push(string(n)))

	case value.List:
		if len(n) == 0 {
			return res, nil
		}
		for _, arg := range n[1:] {
			sub, err := c.Compile(arg)
			if err != nil {
				return nil, err
			}
			if err := res.Merge(sub); err != nil {
				return nil, err
			}
		}
		if head, ok := n[0].(value.Symbol); ok {
			res.Append(bytecode.Call(string(head)))
		} else if c.StrictCallHead {
			return nil, &CallHeadError{Head: n[0]}
		} else {
			log.Warningf("call head %s is not a symbol; no call emitted", value.Format(n[0]))
		}
	}

	return res, nil
}

// CompileAll lowers a sequence of top-level nodes. Entry instructions are
// concatenated in source order; named sequences are merged with the
// redefinition check.
func (c *Compiler) CompileAll(nodes []value.Value) (*bytecode.Program, error) {
	res := bytecode.NewProgram()
	for i, node := range nodes {
		sub, err := c.Compile(node)
		if err != nil {
			return nil, fmt.Errorf("form %d: %w", i+1, err)
		}
		if err := res.Merge(sub); err != nil {
			return nil, fmt.Errorf("form %d: %w", i+1, err)
		}
	}
	log.Debugf("compiled %d forms into %d instructions", len(nodes), res.Len())
	return res, nil
}

// CompileSource parses and compiles source text.
func (c *Compiler) CompileSource(src string) (*bytecode.Program, error) {
	forms, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return c.CompileAll(forms)
}

// Compile lowers a single node with default settings.
func Compile(node value.Value) (*bytecode.Program, error) {
	return New().Compile(node)
}

// CompileAll lowers top-level nodes with default settings.
func CompileAll(nodes []value.Value) (*bytecode.Program, error) {
	return New().CompileAll(nodes)
}

// CompileSource parses and compiles src with default settings.
func CompileSource(src string) (*bytecode.Program, error) {
	return New().CompileSource(src)
}

// Globals returns a program whose entry stores each record at its symbol,
// in symbol order.
func Globals(globals map[string]value.Record) *bytecode.Program {
	syms := make([]string, 0, len(globals))
	for sym := range globals {
		syms = append(syms, sym)
	}
	sort.Strings(syms)

	p := bytecode.NewProgram()
	for _, sym := range syms {
		p.Append(bytecode.StoreConst(globals[sym], sym))
	}
	return p
}
