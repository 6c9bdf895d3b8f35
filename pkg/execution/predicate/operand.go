package predicate

import (
	"fmt"
	"strconv"

	"storevec/pkg/tuple"
	"storevec/pkg/vector"
)

// Operand is one side of a Comparison. The set of variants is closed:
// IntLiteral, RealLiteral, StringLiteral, VectorLiteral, FieldRef and
// VectorFieldRef.
type Operand interface {
	isOperand()
	String() string
}

type IntLiteral struct {
	Value int64
}

type RealLiteral struct {
	Value float64
}

type StringLiteral struct {
	Value string
}

// VectorLiteral is a constant query vector, compared by distance.
type VectorLiteral struct {
	Value vector.Vector
}

// FieldRef reads a field of the outer (t1) or inner (t2) tuple by 1-based offset.
type FieldRef struct {
	Side   tuple.Side
	Offset int
}

// VectorFieldRef reads a vector field by 1-based offset. Its side is fixed by
// position: as the left operand it reads t1, as the right operand t2.
type VectorFieldRef struct {
	Offset int
}

func (IntLiteral) isOperand()     {}
func (RealLiteral) isOperand()    {}
func (StringLiteral) isOperand()  {}
func (VectorLiteral) isOperand()  {}
func (FieldRef) isOperand()       {}
func (VectorFieldRef) isOperand() {}

func (o IntLiteral) String() string { return strconv.FormatInt(o.Value, 10) }

func (o RealLiteral) String() string { return strconv.FormatFloat(o.Value, 'g', -1, 64) }

func (o StringLiteral) String() string { return strconv.Quote(o.Value) }

func (o VectorLiteral) String() string { return o.Value.String() }

func (o FieldRef) String() string { return fmt.Sprintf("%s.$%d", o.Side, o.Offset) }

func (o VectorFieldRef) String() string { return fmt.Sprintf("vec.$%d", o.Offset) }

// Outer returns a reference to field offset (1-based) of t1.
func Outer(offset int) FieldRef {
	return FieldRef{Side: tuple.Outer, Offset: offset}
}

// Inner returns a reference to field offset (1-based) of t2.
func Inner(offset int) FieldRef {
	return FieldRef{Side: tuple.Inner, Offset: offset}
}
