package transform

import "strings"

// Kind tells which side of a Value is populated.
type Kind int

const (
	KindScalar Kind = iota
	KindArray
)

// Value is the state threaded through a transform chain.
type Value struct {
	kind   Kind
	scalar string
	items  []string
}

// Scalar returns a scalar Value.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// Array returns an array Value holding a copy of items.
func Array(items []string) Value {
	return Value{kind: KindArray, items: append([]string(nil), items...)}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsArray() bool { return v.kind == KindArray }

// Items returns the array elements, or the scalar as a single element.
func (v Value) Items() []string {
	if v.kind == KindArray {
		return append([]string(nil), v.items...)
	}
	return []string{v.scalar}
}

// IsEmpty reports an empty scalar or an array with no elements.
func (v Value) IsEmpty() bool {
	if v.kind == KindArray {
		return len(v.items) == 0
	}
	return v.scalar == ""
}

// String renders the value for substitution; arrays are joined with ", ".
func (v Value) String() string {
	if v.kind == KindArray {
		return strings.Join(v.items, ", ")
	}
	return v.scalar
}

// mapScalar applies fn to a scalar, or to every element of an array.
func (v Value) mapScalar(fn func(string) (string, error)) (Value, error) {
	if v.kind == KindScalar {
		s, err := fn(v.scalar)
		if err != nil {
			return Value{}, err
		}
		return Scalar(s), nil
	}
	out := make([]string, len(v.items))
	for i, item := range v.items {
		s, err := fn(item)
		if err != nil {
			return Value{}, err
		}
		out[i] = s
	}
	return Value{kind: KindArray, items: out}, nil
}
