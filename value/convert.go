package value

import "fmt"

// ConversionError reports a failed projection. Target is for diagnostics
// only; two errors are equal when their sources are equal.
type ConversionError struct {
	Source Value
	Target string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s to %s", Format(e.Source), e.Target)
}

// Equal compares the rejected source values.
func (e *ConversionError) Equal(other *ConversionError) bool {
	if e == nil || other == nil {
		return e == other
	}
	return Equal(e.Source, other.Source)
}

// Projection pairs a total embedding of T into Value with a failable
// extraction back out of it.
type Projection[T any] struct {
	Target  string
	embed   func(T) Value
	extract func(Value) (T, bool)
}

// NewProjection builds a projection from an embedding and a matching
// extractor. extract must return false for every value embed cannot
// produce.
func NewProjection[T any](target string, embed func(T) Value, extract func(Value) (T, bool)) Projection[T] {
	return Projection[T]{Target: target, embed: embed, extract: extract}
}

// Embed converts x into a Value.
func (p Projection[T]) Embed(x T) Value {
	return p.embed(x)
}

// Extract converts v back, failing with a *ConversionError carrying v.
func (p Projection[T]) Extract(v Value) (T, error) {
	x, ok := p.extract(v)
	if !ok {
		var zero T
		return zero, &ConversionError{Source: v, Target: p.Target}
	}
	return x, nil
}

// EmbedRecord wraps x in a Record with no properties.
func (p Projection[T]) EmbedRecord(x T) Record {
	return RecordOf(p.embed(x))
}

// ExtractRecord projects the record's value.
func (p Projection[T]) ExtractRecord(r Record) (T, error) {
	return p.Extract(r.Val)
}

var (
	Numbers = NewProjection("number",
		func(f float64) Value { return Number(f) },
		func(v Value) (float64, bool) {
			n, ok := v.(Number)
			return float64(n), ok
		})

	Strings = NewProjection("string",
		func(s string) Value { return String(s) },
		func(v Value) (string, bool) {
			s, ok := v.(String)
			return string(s), ok
		})

	Chars = NewProjection("char",
		func(r rune) Value { return Char(r) },
		func(v Value) (rune, bool) {
			c, ok := v.(Char)
			return rune(c), ok
		})

	// Bools encodes booleans as the symbols true and false.
	Bools = NewProjection("bool",
		func(b bool) Value {
			if b {
				return Symbol("true")
			}
			return Symbol("false")
		},
		func(v Value) (bool, bool) {
			switch v {
			case Symbol("true"):
				return true, true
			case Symbol("false"):
				return false, true
			}
			return false, false
		})

	// Values is the identity projection; extraction never fails.
	Values = NewProjection("value",
		func(v Value) Value { return v },
		func(v Value) (Value, bool) { return v, true })
)
