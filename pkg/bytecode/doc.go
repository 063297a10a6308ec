// Package bytecode defines the instruction set executed by the lispbc VM
// and the Program container the compiler produces.
//
// # Architecture Overview
//
//   - Opcodes: thirteen stack instructions covering constants, heap access,
//     calls, arithmetic, comparison and negation. Each opcode has an
//     OpcodeInfo entry describing its stack effect and operands.
//
//   - Instruction: an opcode plus its symbol and/or constant Record operand.
//     Instructions are kept decoded; there is no byte-level encoding in
//     memory.
//
//   - Program: a mapping from symbol name to instruction sequence. The
//     distinguished "entry" sequence is the program's implicit top level and
//     always exists in a freshly constructed Program. Merging two programs
//     concatenates their entry sequences and rejects any other symbol bound
//     on both sides.
//
//   - Image: a Program serialized as "LSBC" magic followed by canonical
//     CBOR, for storage and transport of compiled programs.
//
// # Call Semantics
//
// OpCall runs the named sequence against the caller's stack and heap.
// There are no call frames and no return instruction: whatever the callee
// leaves on the stack is immediately visible to the caller.
//
// # Operand Order
//
// Binary operators pop a first and b second, then compute "a op b".
// Because the compiler evaluates operands left to right, a is the last
// source operand and b the first: (- 10 3) evaluates 3 - 10.
package bytecode
