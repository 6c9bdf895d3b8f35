// Package vector implements the fixed-dimension integer vector stored in
// vector-typed columns and vector-keyed indexes.
package vector

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"storevec/pkg/dberror"
	"storevec/pkg/primitives"
)

const (
	// Dim is the number of components of every vector.
	Dim = 100

	MinComponent int32 = -10000
	MaxComponent int32 = 10000

	// EncodedSize is the on-page width: Dim big-endian 4-byte signed integers,
	// no header and no length prefix.
	EncodedSize = Dim * 4
)

// Vector is an immutable point in Dim-dimensional integer space whose
// components all lie in [MinComponent, MaxComponent].
//
// The zero value is the origin and is valid.
type Vector struct {
	c [Dim]int32
}

// New builds a Vector from exactly Dim components, copying them.
func New(components []int32) (Vector, error) {
	if len(components) != Dim {
		return Vector{}, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeRange,
			"vector must have %d components, got %d", Dim, len(components))
	}

	var v Vector
	for i, x := range components {
		if err := checkComponent(i, x); err != nil {
			return Vector{}, err
		}
		v.c[i] = x
	}
	return v, nil
}

// MustNew is New that panics on error. Intended for tests and fixtures.
func MustNew(components []int32) Vector {
	v, err := New(components)
	if err != nil {
		panic(err)
	}
	return v
}

// Fill returns a vector whose components all equal x.
func Fill(x int32) (Vector, error) {
	if err := checkComponent(0, x); err != nil {
		return Vector{}, err
	}
	var v Vector
	for i := range v.c {
		v.c[i] = x
	}
	return v, nil
}

func checkComponent(i int, x int32) error {
	if x < MinComponent || x > MaxComponent {
		return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeRange,
			"component %d value %d outside [%d, %d]", i, x, MinComponent, MaxComponent)
	}
	return nil
}

func checkIndex(i int) error {
	if i < 0 || i >= Dim {
		return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeIndex,
			"component index %d outside [0, %d]", i, Dim-1)
	}
	return nil
}

// At returns component i.
func (v Vector) At(i int) (int32, error) {
	if err := checkIndex(i); err != nil {
		return 0, err
	}
	return v.c[i], nil
}

// With returns a copy of v with component i replaced by x. v is unchanged.
func (v Vector) With(i int, x int32) (Vector, error) {
	if err := checkIndex(i); err != nil {
		return Vector{}, err
	}
	if err := checkComponent(i, x); err != nil {
		return Vector{}, err
	}
	v.c[i] = x
	return v, nil
}

// Components returns a fresh copy of the components.
func (v Vector) Components() []int32 {
	out := make([]int32, Dim)
	copy(out, v.c[:])
	return out
}

// DistanceTo returns the Euclidean distance between v and other.
func (v Vector) DistanceTo(other *Vector) (float64, error) {
	if other == nil {
		return 0, dberror.New(dberror.ErrCategoryUser, dberror.CodeNullArgument,
			"distance target vector is nil")
	}
	return v.distance(other), nil
}

func (v Vector) distance(other *Vector) float64 {
	var sum int64
	for i := range v.c {
		d := int64(v.c[i]) - int64(other.c[i])
		sum += d * d
	}
	return math.Sqrt(float64(sum))
}

// Norm is the distance from the origin.
func (v Vector) Norm() float64 {
	var origin Vector
	return v.distance(&origin)
}

func (v Vector) Equals(other Vector) bool {
	return v.c == other.c
}

func (v Vector) Hash() primitives.HashCode {
	var buf [EncodedSize]byte
	v.Encode(buf[:], 0)
	h := fnv.New64a()
	_, _ = h.Write(buf[:])
	return primitives.HashCode(h.Sum64())
}

// Encode writes the EncodedSize-byte layout of v at buf[off:].
// buf must have at least off+EncodedSize bytes.
func (v Vector) Encode(buf []byte, off int) {
	for i, x := range v.c {
		binary.BigEndian.PutUint32(buf[off+i*4:], uint32(x)) // #nosec G115
	}
}

// Decode reads the EncodedSize-byte layout at buf[off:]. It is the exact
// inverse of Encode; components outside the allowed range are rejected.
// buf must have at least off+EncodedSize bytes.
func Decode(buf []byte, off int) (Vector, error) {
	var v Vector
	for i := range v.c {
		x := int32(binary.BigEndian.Uint32(buf[off+i*4:])) // #nosec G115
		if err := checkComponent(i, x); err != nil {
			return Vector{}, dberror.Wrap(err, dberror.CodeCorruptRecord, "vector decode", "vector")
		}
		v.c[i] = x
	}
	return v, nil
}

// String renders the first few components, e.g. "[1 2 3 ... 0](100)".
func (v Vector) String() string {
	const shown = 4
	var b strings.Builder
	b.WriteByte('[')
	for i := 0; i < shown; i++ {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", v.c[i])
	}
	fmt.Fprintf(&b, " ...](%d)", Dim)
	return b.String()
}
