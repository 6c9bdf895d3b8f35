package types

import "storevec/pkg/vector"

// Type is the kind of a tuple field.
type Type int

const (
	IntType Type = iota
	RealType
	StringType
	VectorType
)

// String returns a string representation of the type
func (t Type) String() string {
	switch t {
	case IntType:
		return "INT_TYPE"
	case RealType:
		return "REAL_TYPE"
	case StringType:
		return "STRING_TYPE"
	case VectorType:
		return "VECTOR_TYPE"
	default:
		return "UNKNOWN_TYPE"
	}
}

// IsValid reports whether t is a supported field kind.
func (t Type) IsValid() bool {
	return t >= IntType && t <= VectorType
}

// Size returns the serialized width of a field of this type. width is the
// declared byte width of string columns and is ignored for other kinds.
// Unknown kinds have size 0.
func (t Type) Size(width int) int {
	switch t {
	case IntType, RealType:
		return 8
	case StringType:
		return 4 + width
	case VectorType:
		return vector.EncodedSize
	default:
		return 0
	}
}
