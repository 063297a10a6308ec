// Package vm implements the lispbc virtual machine.
//
// This package contains:
//   - Heap: the symbol -> Record store with property-preserving insert
//   - Stack: the shared value stack
//   - Context: one execution's program, stack and heap, threaded through
//     every call
//   - Interpreter: the instruction loop and call recursion
//   - Prelude: the operator bindings (+, -, *, /, <=, =, not)
//
// Calls recurse on the Go stack. Context enforces VM.MaxCallDepth so a
// runaway recursive program fails with ErrCallDepth instead of exhausting
// the goroutine stack.
package vm
