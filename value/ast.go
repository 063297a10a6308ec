package value

// Type classifies a value. Expression has no type of its own: it reports
// the type of the value it wraps.
type Type uint8

const (
	TypeList Type = iota
	TypeNumber
	TypeString
	TypeSymbol
	TypeChar
)

var typeNames = map[Type]string{
	TypeList:   "list",
	TypeNumber: "number",
	TypeString: "string",
	TypeSymbol: "symbol",
	TypeChar:   "char",
}

// String returns the lower-case type name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// TypeOf returns the type of v, looking through any Expression wrappers.
func TypeOf(v Value) Type {
	switch x := v.(type) {
	case List:
		return TypeList
	case Number:
		return TypeNumber
	case String:
		return TypeString
	case Char:
		return TypeChar
	case Expression:
		return TypeOf(x.Inner)
	default:
		return TypeSymbol
	}
}

// IsLiteral reports whether v denotes itself: anything but a List or a
// Symbol. Expression defers to its inner value.
func IsLiteral(v Value) bool {
	switch x := v.(type) {
	case List, Symbol:
		return false
	case Expression:
		return IsLiteral(x.Inner)
	case nil:
		return false
	default:
		return true
	}
}

// Unquote strips one Expression wrapper. The second result is false when
// v is not an Expression.
func Unquote(v Value) (Value, bool) {
	if e, ok := v.(Expression); ok {
		return e.Inner, true
	}
	return v, false
}
