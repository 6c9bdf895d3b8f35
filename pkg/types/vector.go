package types

import (
	"io"

	"storevec/pkg/primitives"
	"storevec/pkg/vector"
)

// VectorField holds a vector.Vector.
type VectorField struct {
	Value vector.Vector
}

func NewVectorField(v vector.Vector) *VectorField {
	return &VectorField{Value: v}
}

func (f *VectorField) Serialize(w io.Writer) error {
	buf := make([]byte, vector.EncodedSize)
	f.Value.Encode(buf, 0)
	_, err := w.Write(buf)
	return err
}

func (f *VectorField) Type() Type {
	return VectorType
}

func (f *VectorField) String() string {
	return f.Value.String()
}

func (f *VectorField) Equals(other Field) bool {
	otherVec, ok := other.(*VectorField)
	if !ok {
		return false
	}
	return f.Value.Equals(otherVec.Value)
}

func (f *VectorField) Hash() primitives.HashCode {
	return f.Value.Hash()
}
