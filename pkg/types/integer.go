package types

import (
	"encoding/binary"
	"io"
	"strconv"

	"storevec/pkg/primitives"
)

// IntField is a 64-bit signed integer field.
type IntField struct {
	Value int64
}

func NewIntField(value int64) *IntField {
	return &IntField{Value: value}
}

func (f *IntField) Serialize(w io.Writer) error {
	return serializeUint64(w, uint64(f.Value)) // #nosec G115
}

func (f *IntField) Type() Type {
	return IntType
}

func (f *IntField) String() string {
	return strconv.FormatInt(f.Value, 10)
}

func (f *IntField) Equals(other Field) bool {
	otherInt, ok := other.(*IntField)
	if !ok {
		return false
	}
	return f.Value == otherInt.Value
}

func (f *IntField) Hash() primitives.HashCode {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(f.Value)) // #nosec G115
	return fnvHash(b[:])
}
