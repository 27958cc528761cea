package state

import "fmt"

// Kind is the value type a declared field accepts.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindBool
	KindString
	KindPoint
	KindSize
	KindVector
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindPoint:
		return "point"
	case KindSize:
		return "size"
	case KindVector:
		return "vector"
	default:
		return "unknown"
	}
}

// ParseKind maps a config kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "float", "ratio", "number":
		return KindFloat, nil
	case "int", "index":
		return KindInt, nil
	case "bool", "flag":
		return KindBool, nil
	case "string":
		return KindString, nil
	case "point":
		return KindPoint, nil
	case "size":
		return KindSize, nil
	case "vector":
		return KindVector, nil
	default:
		return 0, fmt.Errorf("state: unknown field kind %q", s)
	}
}

// Point is a 2D position record (pointer location and the like).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height record (viewport dimensions).
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Field declares one named slot in the runtime state.
type Field struct {
	Name    string
	Kind    Kind
	Default any
}

func zeroFor(k Kind) any {
	switch k {
	case KindFloat:
		return float64(0)
	case KindInt:
		return 0
	case KindBool:
		return false
	case KindString:
		return ""
	case KindPoint:
		return Point{}
	case KindSize:
		return Size{}
	case KindVector:
		return []float64(nil)
	default:
		return nil
	}
}

// accepts reports whether v is a legal value for kind k. Ints are accepted
// for float fields since YAML and script values arrive untyped.
func accepts(k Kind, v any) bool {
	switch k {
	case KindFloat:
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
	case KindInt:
		switch v.(type) {
		case int, int64:
			return true
		}
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindString:
		_, ok := v.(string)
		return ok
	case KindPoint:
		_, ok := v.(Point)
		return ok
	case KindSize:
		_, ok := v.(Size)
		return ok
	case KindVector:
		_, ok := v.([]float64)
		return ok
	}
	return false
}

func coerce(k Kind, v any) any {
	if k != KindFloat {
		return v
	}
	switch n := v.(type) {
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return v
}
