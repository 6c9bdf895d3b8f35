package types

import (
	"io"

	"storevec/pkg/primitives"
)

// Field is one typed value of a tuple.
type Field interface {
	Serialize(w io.Writer) error

	Type() Type

	String() string

	Equals(other Field) bool

	Hash() primitives.HashCode
}
