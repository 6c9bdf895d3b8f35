package index

import (
	"cmp"
	"strconv"

	"storevec/pkg/dberror"
	"storevec/pkg/types"
	"storevec/pkg/vector"
)

// Key is an orderable index key. Keys of different kinds do not compare.
type Key interface {
	Type() types.Type

	// Compare returns -1, 0 or 1. It fails with a type mismatch when other
	// is a different kind of key.
	Compare(other Key) (int, error)

	// Field materializes the key as a tuple field.
	Field() types.Field

	String() string
}

func keyMismatch(want types.Type, got Key) error {
	return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeTypeMismatch,
		"cannot compare %v key with %v key", want, got.Type())
}

type IntKey struct {
	Value int64
}

func (k IntKey) Type() types.Type { return types.IntType }

func (k IntKey) Compare(other Key) (int, error) {
	o, ok := other.(IntKey)
	if !ok {
		return 0, keyMismatch(types.IntType, other)
	}
	return cmp.Compare(k.Value, o.Value), nil
}

func (k IntKey) Field() types.Field { return types.NewIntField(k.Value) }

func (k IntKey) String() string { return strconv.FormatInt(k.Value, 10) }

type RealKey struct {
	Value float64
}

func (k RealKey) Type() types.Type { return types.RealType }

func (k RealKey) Compare(other Key) (int, error) {
	o, ok := other.(RealKey)
	if !ok {
		return 0, keyMismatch(types.RealType, other)
	}
	return cmp.Compare(k.Value, o.Value), nil
}

func (k RealKey) Field() types.Field { return types.NewFloat64Field(k.Value) }

func (k RealKey) String() string { return strconv.FormatFloat(k.Value, 'g', -1, 64) }

// StringKey orders by byte-wise string comparison.
type StringKey struct {
	Value string
}

func (k StringKey) Type() types.Type { return types.StringType }

func (k StringKey) Compare(other Key) (int, error) {
	o, ok := other.(StringKey)
	if !ok {
		return 0, keyMismatch(types.StringType, other)
	}
	return cmp.Compare(k.Value, o.Value), nil
}

func (k StringKey) Field() types.Field { return types.NewStringField(k.Value, max(len(k.Value), 1)) }

func (k StringKey) String() string { return strconv.Quote(k.Value) }

// VectorKey wraps a vector for index placement. Keys are ordered by the
// wrapped vector's distance from the origin, so two different vectors of
// equal magnitude compare equal.
type VectorKey struct {
	v vector.Vector
}

// NewVectorKey copies v into a new key.
func NewVectorKey(v vector.Vector) VectorKey {
	return VectorKey{v: v}
}

// Vector returns a copy of the wrapped vector.
func (k VectorKey) Vector() vector.Vector { return k.v }

func (k VectorKey) Type() types.Type { return types.VectorType }

func (k VectorKey) Compare(other Key) (int, error) {
	o, ok := other.(VectorKey)
	if !ok {
		return 0, keyMismatch(types.VectorType, other)
	}
	return cmp.Compare(k.v.Norm(), o.v.Norm()), nil
}

func (k VectorKey) Field() types.Field { return types.NewVectorField(k.v) }

func (k VectorKey) String() string { return k.v.String() }

// Encode writes the key's vector.EncodedSize bytes at buf[off:].
func (k VectorKey) Encode(buf []byte, off int) {
	k.v.Encode(buf, off)
}

// DecodeVectorKey reads a key written by VectorKey.Encode.
func DecodeVectorKey(buf []byte, off int) (VectorKey, error) {
	v, err := vector.Decode(buf, off)
	if err != nil {
		return VectorKey{}, err
	}
	return VectorKey{v: v}, nil
}

// KeyFromField converts a tuple field into the key of the same kind.
func KeyFromField(f types.Field) (Key, error) {
	switch v := f.(type) {
	case *types.IntField:
		return IntKey{Value: v.Value}, nil
	case *types.Float64Field:
		return RealKey{Value: v.Value}, nil
	case *types.StringField:
		return StringKey{Value: v.Value}, nil
	case *types.VectorField:
		return NewVectorKey(v.Value), nil
	case nil:
		return nil, dberror.New(dberror.ErrCategoryUser, dberror.CodeNullArgument, "cannot build a key from a nil field")
	default:
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeUnknownKeyType,
			"no index key for %v fields", f.Type())
	}
}
