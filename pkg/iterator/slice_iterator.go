package iterator

import (
	"fmt"

	"storevec/pkg/tuple"
)

// SliceIterator provides a generic iterator over a slice of any type T.
// It has no lifecycle: it is ready after construction and not safe for
// concurrent use.
type SliceIterator[T any] struct {
	data         []T
	currentIndex int
}

func NewSliceIterator[T any](data []T) *SliceIterator[T] {
	return &SliceIterator[T]{data: data}
}

func (it *SliceIterator[T]) HasNext() bool {
	return it.currentIndex < len(it.data)
}

// Next returns the next element and advances the position.
func (it *SliceIterator[T]) Next() (T, error) {
	var zero T

	if it.currentIndex >= len(it.data) {
		return zero, fmt.Errorf("no more elements in slice iterator")
	}

	element := it.data[it.currentIndex]
	it.currentIndex++
	return element, nil
}

// Rewind resets the read position to the beginning of the slice.
func (it *SliceIterator[T]) Rewind() {
	it.currentIndex = 0
}

// Remaining returns the number of elements left to iterate.
func (it *SliceIterator[T]) Remaining() int {
	return len(it.data) - it.currentIndex
}

// FromTuples returns a Source over already materialized tuples.
func FromTuples(tuples []*tuple.Tuple) Source {
	it := NewSliceIterator(tuples)
	return SourceFunc(func() (Result, error) {
		if !it.HasNext() {
			return EndOfScan(), nil
		}
		t, err := it.Next()
		if err != nil {
			return Result{}, err
		}
		return Row(t), nil
	})
}
