package bytecode

import (
	"fmt"

	"github.com/chazu/lispbc/value"
)

// Instruction is one decoded bytecode instruction. Symbol and Const are
// only meaningful for the opcodes whose OperandKind names them.
type Instruction struct {
	Op     Opcode
	Symbol string
	Const  value.Record
}

// PushConst pushes r.
func PushConst(r value.Record) Instruction {
	return Instruction{Op: OpPushConst, Const: r}
}

// Push pushes the heap record bound to sym.
func Push(sym string) Instruction {
	return Instruction{Op: OpPush, Symbol: sym}
}

// Load is operationally identical to Push.
func Load(sym string) Instruction {
	return Instruction{Op: OpLoad, Symbol: sym}
}

// Pop stores the top of stack at sym.
func Pop(sym string) Instruction {
	return Instruction{Op: OpPop, Symbol: sym}
}

// StoreConst stores r at sym.
func StoreConst(r value.Record, sym string) Instruction {
	return Instruction{Op: OpStoreConst, Symbol: sym, Const: r}
}

// Call runs the sequence bound to sym.
func Call(sym string) Instruction {
	return Instruction{Op: OpCall, Symbol: sym}
}

// Simple returns an operand-less instruction such as OpAdd.
func Simple(op Opcode) Instruction {
	return Instruction{Op: op}
}

// Equal compares opcode and the operands the opcode uses.
func (in Instruction) Equal(other Instruction) bool {
	if in.Op != other.Op {
		return false
	}
	switch GetOpcodeInfo(in.Op).Operands {
	case OperandSymbol:
		return in.Symbol == other.Symbol
	case OperandConst:
		return in.Const.Equal(other.Const)
	case OperandConstSymbol:
		return in.Symbol == other.Symbol && in.Const.Equal(other.Const)
	default:
		return true
	}
}

// String formats the instruction the way the disassembler prints it.
func (in Instruction) String() string {
	info := GetOpcodeInfo(in.Op)
	switch info.Operands {
	case OperandSymbol:
		return fmt.Sprintf("%-12s %s", info.Name, in.Symbol)
	case OperandConst:
		return fmt.Sprintf("%-12s %s", info.Name, in.Const)
	case OperandConstSymbol:
		return fmt.Sprintf("%-12s %s -> %s", info.Name, in.Const, in.Symbol)
	default:
		return info.Name
	}
}
