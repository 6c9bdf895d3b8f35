package tuple

import (
	"cmp"
	"fmt"
	"math"

	"storevec/pkg/dberror"
	"storevec/pkg/types"
)

// ResultKind tells an ordering result from a distance result.
type ResultKind int

const (
	OrderResult ResultKind = iota
	DistanceResult
)

// CompareResult is the outcome of CompareField. Scalar kinds produce an Order
// in {-1, 0, 1}; the vector kind produces a Distance.
type CompareResult struct {
	kind     ResultKind
	order    int
	distance float64
}

func Order(o int) CompareResult {
	return CompareResult{kind: OrderResult, order: o}
}

func Distance(d float64) CompareResult {
	return CompareResult{kind: DistanceResult, distance: d}
}

func (r CompareResult) Kind() ResultKind { return r.kind }

func (r CompareResult) IsDistance() bool { return r.kind == DistanceResult }

// Order is meaningful only for OrderResult.
func (r CompareResult) Order() int { return r.order }

// Distance is meaningful only for DistanceResult.
func (r CompareResult) Distance() float64 { return r.distance }

// Equal reports a zero order or a zero distance.
func (r CompareResult) Equal() bool {
	if r.kind == DistanceResult {
		return r.distance == 0
	}
	return r.order == 0
}

func (r CompareResult) String() string {
	if r.kind == DistanceResult {
		return fmt.Sprintf("Distance(%g)", r.distance)
	}
	return fmt.Sprintf("Order(%d)", r.order)
}

// fieldAt returns the fieldNo-th (1-based) field of t.
func fieldAt(t *Tuple, fieldNo int) (types.Field, error) {
	if t == nil {
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeFieldOutOfBounds,
			"field %d requested from a missing tuple", fieldNo)
	}
	if fieldNo < 1 || fieldNo > t.NumFields() {
		return nil, outOfBounds(fieldNo, t.NumFields())
	}
	f := t.fields[fieldNo-1]
	if f == nil {
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeTypeMismatch, "field %d is unset", fieldNo)
	}
	return f, nil
}

// CompareField compares field fieldA (1-based) of a against field fieldB of b
// as values of kind typ.
//
// Integer, real and string kinds yield Order(-1|0|1). The vector kind yields
// the Euclidean distance between the two vectors, rounded to the nearest
// integer, as Distance. Integer fields are accepted where the kind is real.
func CompareField(typ types.Type, a *Tuple, fieldA int, b *Tuple, fieldB int) (CompareResult, error) {
	if !typ.IsValid() {
		return CompareResult{}, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeUnknownAttributeType,
			"cannot compare fields of unknown type %d", int(typ))
	}

	fa, err := fieldAt(a, fieldA)
	if err != nil {
		return CompareResult{}, err
	}
	fb, err := fieldAt(b, fieldB)
	if err != nil {
		return CompareResult{}, err
	}

	switch typ {
	case types.IntType:
		x, errA := asInt(fa)
		y, errB := asInt(fb)
		if err := firstErr(errA, errB); err != nil {
			return CompareResult{}, err
		}
		return Order(cmp.Compare(x, y)), nil

	case types.RealType:
		x, errA := asReal(fa)
		y, errB := asReal(fb)
		if err := firstErr(errA, errB); err != nil {
			return CompareResult{}, err
		}
		return Order(cmp.Compare(x, y)), nil

	case types.StringType:
		x, errA := asString(fa)
		y, errB := asString(fb)
		if err := firstErr(errA, errB); err != nil {
			return CompareResult{}, err
		}
		return Order(cmp.Compare(x, y)), nil

	default:
		x, errA := asVector(fa)
		y, errB := asVector(fb)
		if err := firstErr(errA, errB); err != nil {
			return CompareResult{}, err
		}
		d, err := x.Value.DistanceTo(&y.Value)
		if err != nil {
			return CompareResult{}, err
		}
		return Distance(math.Round(d)), nil
	}
}

// CompareAllFields reports whether the first count fields of a and b are
// pairwise equal under CompareField with the given kinds.
func CompareAllFields(a, b *Tuple, fieldTypes []types.Type, count int) (bool, error) {
	if count > len(fieldTypes) {
		return false, outOfBounds(count, len(fieldTypes))
	}
	for i := 1; i <= count; i++ {
		r, err := CompareField(fieldTypes[i-1], a, i, b, i)
		if err != nil {
			return false, err
		}
		if !r.Equal() {
			return false, nil
		}
	}
	return true, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func mismatch(want types.Type, f types.Field) error {
	return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeTypeMismatch,
		"expected %v field, got %v", want, f.Type())
}

func asInt(f types.Field) (int64, error) {
	if v, ok := f.(*types.IntField); ok {
		return v.Value, nil
	}
	return 0, mismatch(types.IntType, f)
}

func asReal(f types.Field) (float64, error) {
	switch v := f.(type) {
	case *types.Float64Field:
		return v.Value, nil
	case *types.IntField:
		return float64(v.Value), nil
	default:
		return 0, mismatch(types.RealType, f)
	}
}

func asString(f types.Field) (string, error) {
	if v, ok := f.(*types.StringField); ok {
		return v.Value, nil
	}
	return "", mismatch(types.StringType, f)
}

func asVector(f types.Field) (*types.VectorField, error) {
	if v, ok := f.(*types.VectorField); ok {
		return v, nil
	}
	return nil, mismatch(types.VectorType, f)
}
