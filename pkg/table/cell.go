package table

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the active variant of a Value.
type Kind uint8

// Value kinds.
const (
	KindEmpty Kind = iota
	KindInt
	KindFloat
	KindText
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "empty"
	}
}

// Value is a typed cell value. The zero Value is empty.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
}

// Empty returns the empty value.
func Empty() Value { return Value{} }

// Int returns an integer value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float returns a floating-point value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Text returns a text value. Text is stored as given.
func Text(v string) Value { return Value{kind: KindText, s: v} }

// Parse types a raw token. The token is trimmed first; a blank token is
// empty, otherwise the first of integer, float and text that accepts it wins.
// Hexadecimal float literals such as 0x1p4 stay text.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Empty()
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i)
	}
	if !isHex(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return Float(f)
		}
	}
	return Text(s)
}

func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// Kind returns the active variant.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value carries nothing.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// AsInt returns the integer payload when the value is an integer.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

// AsFloat returns the float payload when the value is a float.
func (v Value) AsFloat() (float64, bool) {
	return v.f, v.kind == KindFloat
}

// Equal compares kind and payload. Two NaN floats are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindText:
		return v.s == o.s
	default:
		return true
	}
}

// String renders the value so that Parse(v.String()) reproduces v.
// Floats without a fraction keep a trailing ".0".
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		s := strconv.FormatFloat(v.f, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eEnNIi") {
			s += ".0"
		}
		return s
	case KindText:
		return v.s
	default:
		return ""
	}
}

// Interface returns the payload as a plain Go value for serialization
// (int64, float64, string or nil).
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindText:
		return v.s
	default:
		return nil
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Value) UnmarshalText(b []byte) error {
	*v = Parse(string(b))
	return nil
}
