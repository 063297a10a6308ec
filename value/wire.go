package value

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("value: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	// The encoder has no nesting limit, so the decoder must accept any
	// depth it can produce. Each list level costs two CBOR levels.
	dm, err := cbor.DecOptions{
		MaxNestedLevels:  65535,
		MaxArrayElements: 2147483647,
		MaxMapPairs:      2147483647,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("value: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// Wire kinds. The numbering is part of the image format.
const (
	wireList       uint8 = 1
	wireNumber     uint8 = 2
	wireString     uint8 = 3
	wireSymbol     uint8 = 4
	wireChar       uint8 = 5
	wireExpression uint8 = 6
)

// WireValue is the CBOR form of a Value.
type WireValue struct {
	Kind  uint8       `cbor:"1,keyasint"`
	Num   float64     `cbor:"2,keyasint"`
	Text  string      `cbor:"3,keyasint,omitempty"`
	Items []WireValue `cbor:"4,keyasint,omitempty"`
	Inner *WireValue  `cbor:"5,keyasint,omitempty"`
}

// WireRecord is the CBOR form of a Record.
type WireRecord struct {
	Val        WireValue            `cbor:"1,keyasint"`
	Properties map[string]WireValue `cbor:"2,keyasint,omitempty"`
}

// ToWire converts v to its wire form.
func ToWire(v Value) WireValue {
	switch x := v.(type) {
	case List:
		items := make([]WireValue, len(x))
		for i, item := range x {
			items[i] = ToWire(item)
		}
		return WireValue{Kind: wireList, Items: items}
	case Number:
		return WireValue{Kind: wireNumber, Num: float64(x)}
	case String:
		return WireValue{Kind: wireString, Text: string(x)}
	case Symbol:
		return WireValue{Kind: wireSymbol, Text: string(x)}
	case Char:
		return WireValue{Kind: wireChar, Num: float64(x)}
	case Expression:
		inner := ToWire(x.Inner)
		return WireValue{Kind: wireExpression, Inner: &inner}
	default:
		return ToWire(Default())
	}
}

// FromWire converts a wire value back to a Value.
func FromWire(w WireValue) (Value, error) {
	switch w.Kind {
	case wireList:
		out := make(List, len(w.Items))
		for i, item := range w.Items {
			v, err := FromWire(item)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case wireNumber:
		return Number(w.Num), nil
	case wireString:
		return String(w.Text), nil
	case wireSymbol:
		return Symbol(w.Text), nil
	case wireChar:
		return Char(rune(w.Num)), nil
	case wireExpression:
		if w.Inner == nil {
			return nil, fmt.Errorf("value: expression without inner value")
		}
		inner, err := FromWire(*w.Inner)
		if err != nil {
			return nil, err
		}
		return Expression{Inner: inner}, nil
	default:
		return nil, fmt.Errorf("value: unknown wire kind %d", w.Kind)
	}
}

// RecordToWire converts r to its wire form.
func RecordToWire(r Record) WireRecord {
	out := WireRecord{Val: ToWire(r.Val)}
	if len(r.Properties) > 0 {
		out.Properties = make(map[string]WireValue, len(r.Properties))
		for k, v := range r.Properties {
			out.Properties[k] = ToWire(v)
		}
	}
	return out
}

// RecordFromWire converts a wire record back to a Record.
func RecordFromWire(w WireRecord) (Record, error) {
	val, err := FromWire(w.Val)
	if err != nil {
		return Record{}, err
	}
	r := Record{Val: val}
	if len(w.Properties) > 0 {
		r.Properties = make(map[string]Value, len(w.Properties))
		for k, wv := range w.Properties {
			v, err := FromWire(wv)
			if err != nil {
				return Record{}, fmt.Errorf("property %q: %w", k, err)
			}
			r.Properties[k] = v
		}
	}
	return r, nil
}

// MarshalRecord serializes a Record to canonical CBOR bytes.
func MarshalRecord(r Record) ([]byte, error) {
	return cborEncMode.Marshal(RecordToWire(r))
}

// UnmarshalRecord deserializes a Record from CBOR bytes.
func UnmarshalRecord(data []byte) (Record, error) {
	var w WireRecord
	if err := cborDecMode.Unmarshal(data, &w); err != nil {
		return Record{}, fmt.Errorf("value: unmarshal record: %w", err)
	}
	return RecordFromWire(w)
}

// Marshal serializes any CBOR-encodable wire structure with the canonical
// encoder shared by this module.
func Marshal(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

// Unmarshal decodes CBOR produced by Marshal, with limits that match what
// the encoder can emit.
func Unmarshal(data []byte, v any) error {
	return cborDecMode.Unmarshal(data, v)
}
