package vm

import (
	"github.com/chazu/lispbc/pkg/bytecode"
)

// preludeOps binds operator symbols to the instruction implementing them.
var preludeOps = map[string]bytecode.Opcode{
	"+":   bytecode.OpAdd,
	"-":   bytecode.OpSub,
	"*":   bytecode.OpMul,
	"/":   bytecode.OpDiv,
	"<=":  bytecode.OpLte,
	"=":   bytecode.OpEqu,
	"not": bytecode.OpNot,
}

// Prelude returns a program that binds each operator symbol to a
// one-instruction sequence, so that (+ 1 2) compiled as
// PUSH_CONST 1, PUSH_CONST 2, CALL + ends up executing ADD.
func Prelude() *bytecode.Program {
	p := bytecode.NewProgram()
	for sym, op := range preludeOps {
		p.AddEntry(sym, []bytecode.Instruction{bytecode.Simple(op)})
	}
	return p
}

// WithPrelude returns a new program holding the prelude and prog. A prog
// that defines an operator symbol itself fails with a redefinition error.
func WithPrelude(prog *bytecode.Program) (*bytecode.Program, error) {
	out := Prelude()
	if err := out.Merge(prog); err != nil {
		return nil, err
	}
	return out, nil
}

// PreludeSymbols returns the symbols the prelude binds.
func PreludeSymbols() []string {
	syms := Prelude().Symbols()
	return syms[1:] // drop entry
}
