package value

import (
	"maps"
	"sort"
	"strings"
)

// Record is a value with an order-irrelevant property map attached.
type Record struct {
	Val        Value
	Properties map[string]Value
}

// RecordOf wraps v with no properties.
func RecordOf(v Value) Record {
	return Record{Val: v}
}

// DefaultRecord is pushed when a heap lookup misses.
func DefaultRecord() Record {
	return RecordOf(Default())
}

// Property returns the named property.
func (r Record) Property(key string) (Value, bool) {
	v, ok := r.Properties[key]
	return v, ok
}

// WithProperty returns a copy of r with key set to v.
func (r Record) WithProperty(key string, v Value) Record {
	out := r.Clone()
	if out.Properties == nil {
		out.Properties = make(map[string]Value)
	}
	out.Properties[key] = v
	return out
}

// Clone returns a record sharing no mutable storage with r.
func (r Record) Clone() Record {
	out := Record{Val: Copy(r.Val)}
	if len(r.Properties) > 0 {
		out.Properties = make(map[string]Value, len(r.Properties))
		for k, v := range r.Properties {
			out.Properties[k] = Copy(v)
		}
	}
	return out
}

// Equal compares the values and the property maps. A nil and an empty
// property map are equal.
func (r Record) Equal(other Record) bool {
	if !Equal(r.Val, other.Val) {
		return false
	}
	return maps.EqualFunc(r.Properties, other.Properties, Equal)
}

// String renders the value followed by its properties in key order.
func (r Record) String() string {
	if len(r.Properties) == 0 {
		return Format(r.Val)
	}
	keys := make([]string, 0, len(r.Properties))
	for k := range r.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(Format(r.Val))
	sb.WriteString(" {")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(Format(r.Properties[k]))
	}
	sb.WriteByte('}')
	return sb.String()
}
