// Package value defines the tagged union that flows through the compiler
// and the VM: the parse tree is made of Values, and the VM stack and heap
// hold Records wrapping them.
package value

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the closed sum of value kinds. The unexported marker method
// keeps the set of variants fixed to the types in this package.
type Value interface {
	isValue()
}

// List is an ordered sequence of values.
type List []Value

// Number is a 64-bit float.
type Number float64

// String is text data.
type String string

// Symbol is an identifier rather than data.
type Symbol string

// Char is a single Unicode scalar.
type Char rune

// Expression wraps a value that is quoted: it compiles to a constant push
// of Inner instead of being evaluated.
type Expression struct {
	Inner Value
}

func (List) isValue()       {}
func (Number) isValue()     {}
func (String) isValue()     {}
func (Symbol) isValue()     {}
func (Char) isValue()       {}
func (Expression) isValue() {}

// Quote wraps v in an Expression.
func Quote(v Value) Expression {
	return Expression{Inner: v}
}

// Default returns the value used when a lookup misses.
func Default() Value {
	return Symbol("undefined")
}

// Equal reports structural equality. An Expression only equals another
// Expression with an equal inner value.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Expression:
		y, ok := b.(Expression)
		return ok && Equal(x.Inner, y.Inner)
	case nil:
		return b == nil
	default:
		return a == b
	}
}

// Copy returns a value that shares no list storage with v.
func Copy(v Value) Value {
	switch x := v.(type) {
	case List:
		out := make(List, len(x))
		for i, item := range x {
			out[i] = Copy(item)
		}
		return out
	case Expression:
		return Expression{Inner: Copy(x.Inner)}
	default:
		return v
	}
}

// Format renders v in the reader's surface syntax.
func Format(v Value) string {
	var sb strings.Builder
	format(&sb, v)
	return sb.String()
}

func format(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case List:
		sb.WriteByte('(')
		for i, item := range x {
			if i > 0 {
				sb.WriteByte(' ')
			}
			format(sb, item)
		}
		sb.WriteByte(')')
	case Number:
		sb.WriteString(strconv.FormatFloat(float64(x), 'g', -1, 64))
	case String:
		sb.WriteString(strconv.Quote(string(x)))
	case Symbol:
		sb.WriteString(string(x))
	case Char:
		sb.WriteString(strconv.QuoteRune(rune(x)))
	case Expression:
		sb.WriteByte('`')
		format(sb, x.Inner)
	case nil:
		sb.WriteString("<nil>")
	default:
		fmt.Fprintf(sb, "%v", x)
	}
}
