package vm

import (
	"errors"
	"fmt"

	"github.com/chazu/lispbc/pkg/bytecode"
)

var (
	// ErrNotEnoughArguments means an operator found fewer stack values
	// than it pops.
	ErrNotEnoughArguments = errors.New("not enough arguments")

	// ErrWrongArgumentType means an operand could not be projected to the
	// type the operator needs.
	ErrWrongArgumentType = errors.New("wrong argument type")

	// ErrCallDepth means nested calls exceeded VM.MaxCallDepth.
	ErrCallDepth = errors.New("call depth exceeded")

	errUnknownOpcode = errors.New("unknown opcode")
)

// RuntimeError aborts an execution. Err is one of the sentinel errors
// above; Cause, when set, is the underlying *value.ConversionError.
type RuntimeError struct {
	Op    bytecode.Opcode
	Err   error
	Cause error
}

func (e *RuntimeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v - %v", e.Op, e.Err, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RuntimeError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func notEnoughArguments(op bytecode.Opcode) error {
	return &RuntimeError{Op: op, Err: ErrNotEnoughArguments}
}

func wrongArgumentType(op bytecode.Opcode, cause error) error {
	return &RuntimeError{Op: op, Err: ErrWrongArgumentType, Cause: cause}
}
