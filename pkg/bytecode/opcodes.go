package bytecode

import "fmt"

// Opcode represents a bytecode instruction.
type Opcode byte

const (
	// ========================================================================
	// Stack and heap (0x00-0x0F)
	// ========================================================================

	OpPushConst  Opcode = 0x00 // Push the instruction's constant
	OpPush       Opcode = 0x01 // Push heap[sym], or the default record
	OpPop        Opcode = 0x02 // Pop (or default) and store at heap[sym]
	OpStoreConst Opcode = 0x03 // Store the constant at heap[sym]
	OpLoad       Opcode = 0x04 // Same as OpPush

	// ========================================================================
	// Calls (0x10-0x1F)
	// ========================================================================

	OpCall Opcode = 0x10 // Run the sequence bound to sym on the same stack

	// ========================================================================
	// Arithmetic (0x20-0x2F)
	// ========================================================================

	OpAdd Opcode = 0x20 // Pop a, pop b, push a + b
	OpSub Opcode = 0x21 // Pop a, pop b, push a - b
	OpMul Opcode = 0x22 // Pop a, pop b, push a * b
	OpDiv Opcode = 0x23 // Pop a, pop b, push a / b

	// ========================================================================
	// Comparison and logic (0x30-0x3F)
	// ========================================================================

	OpLte Opcode = 0x30 // Pop a, pop b, push a <= b
	OpEqu Opcode = 0x31 // Pop a, pop b, push a == b (record equality)
	OpNot Opcode = 0x32 // Pop a, push !a
)

// OperandKind says which Instruction fields an opcode uses.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandSymbol
	OperandConst
	OperandConstSymbol
)

// OpcodeInfo provides metadata about each opcode for debugging and validation.
type OpcodeInfo struct {
	Name      string      // Human-readable name
	StackPop  int         // How many values popped from stack
	StackPush int         // How many values pushed to stack
	Operands  OperandKind // Which operands the instruction carries
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpPushConst:  {"PUSH_CONST", 0, 1, OperandConst},
	OpPush:       {"PUSH", 0, 1, OperandSymbol},
	OpPop:        {"POP", 1, 0, OperandSymbol},
	OpStoreConst: {"STORE_CONST", 0, 0, OperandConstSymbol},
	OpLoad:       {"LOAD", 0, 1, OperandSymbol},

	OpCall: {"CALL", -1, -1, OperandSymbol}, // Net effect is the callee's

	OpAdd: {"ADD", 2, 1, OperandNone},
	OpSub: {"SUB", 2, 1, OperandNone},
	OpMul: {"MUL", 2, 1, OperandNone},
	OpDiv: {"DIV", 2, 1, OperandNone},

	OpLte: {"LTE", 2, 1, OperandNone},
	OpEqu: {"EQU", 2, 1, OperandNone},
	OpNot: {"NOT", 1, 1, OperandNone},
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// IsBinary returns true for opcodes that pop two operands.
func (op Opcode) IsBinary() bool {
	return op >= OpAdd && op <= OpEqu
}

// AllOpcodes returns a slice of all defined opcodes.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}
