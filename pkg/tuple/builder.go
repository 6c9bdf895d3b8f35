package tuple

import (
	"fmt"

	"storevec/pkg/types"
	"storevec/pkg/vector"
)

// Builder provides a fluent interface for constructing tuples
type Builder struct {
	tuple        *Tuple
	currentIndex int
	err          error
}

// NewBuilder creates a new tuple builder with the given schema
func NewBuilder(td *TupleDescription) *Builder {
	return &Builder{tuple: NewTuple(td)}
}

func (b *Builder) AddInt(value int64) *Builder {
	return b.AddField(types.NewIntField(value))
}

func (b *Builder) AddReal(value float64) *Builder {
	return b.AddField(types.NewFloat64Field(value))
}

// AddString adds a string field sized to the schema's declared width.
func (b *Builder) AddString(value string) *Builder {
	width := types.StringMaxSize
	if b.currentIndex < len(b.tuple.TupleDesc.Widths) && b.tuple.TupleDesc.Widths[b.currentIndex] > 0 {
		width = b.tuple.TupleDesc.Widths[b.currentIndex]
	}
	return b.AddField(types.NewStringField(value, width))
}

func (b *Builder) AddVector(value vector.Vector) *Builder {
	return b.AddField(types.NewVectorField(value))
}

// AddField adds a generic field at the current index
func (b *Builder) AddField(field types.Field) *Builder {
	if b.err != nil {
		return b
	}
	if err := b.tuple.SetField(b.currentIndex, field); err != nil {
		b.err = err
		return b
	}
	b.currentIndex++
	return b
}

// Build returns the constructed tuple or an error if any operation failed
func (b *Builder) Build() (*Tuple, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.currentIndex != b.tuple.TupleDesc.NumFields() {
		return nil, fmt.Errorf("incomplete tuple: expected %d fields, got %d",
			b.tuple.TupleDesc.NumFields(), b.currentIndex)
	}

	return b.tuple, nil
}

// MustBuild returns the tuple or panics on error (use only when errors are impossible)
func (b *Builder) MustBuild() *Tuple {
	t, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("tuple builder error: %v", err))
	}
	return t
}
