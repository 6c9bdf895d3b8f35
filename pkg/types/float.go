package types

import (
	"io"
	"math"
	"strconv"

	"storevec/pkg/primitives"
)

// Float64Field is a real-valued field.
type Float64Field struct {
	Value float64
}

func NewFloat64Field(value float64) *Float64Field {
	return &Float64Field{Value: value}
}

func (f *Float64Field) Serialize(w io.Writer) error {
	return serializeUint64(w, math.Float64bits(f.Value))
}

func (f *Float64Field) Type() Type {
	return RealType
}

func (f *Float64Field) String() string {
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// Equals is exact; real values are never compared with a tolerance.
func (f *Float64Field) Equals(other Field) bool {
	otherFloat, ok := other.(*Float64Field)
	if !ok {
		return false
	}
	return f.Value == otherFloat.Value
}

func (f *Float64Field) Hash() primitives.HashCode {
	return fnvHash(toBytes64(math.Float64bits(f.Value)))
}
