package predicate

import (
	"storevec/pkg/dberror"
	"storevec/pkg/tuple"
	"storevec/pkg/types"
)

// operandRef locates a resolved operand: a tuple, a 1-based field number and
// the field's kind.
type operandRef struct {
	tup     *tuple.Tuple
	fieldNo int
	typ     types.Type
}

// resolve turns an operand into an operandRef. position is 1 for the left
// operand and 2 for the right one. Literals are placed in a fresh one-field
// tuple owned by this call.
func resolve(o Operand, position int, t1, t2 *tuple.Tuple) (operandRef, error) {
	switch v := o.(type) {
	case IntLiteral:
		return literal(types.IntType, 0, types.NewIntField(v.Value))
	case RealLiteral:
		return literal(types.RealType, 0, types.NewFloat64Field(v.Value))
	case StringLiteral:
		width := max(len(v.Value), 1)
		return literal(types.StringType, width, types.NewStringField(v.Value, width))
	case VectorLiteral:
		return literal(types.VectorType, 0, types.NewVectorField(v.Value))

	case FieldRef:
		var src *tuple.Tuple
		switch v.Side {
		case tuple.Outer:
			src = t1
		case tuple.Inner:
			src = t2
		default:
			return operandRef{}, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeInvalidRelation,
				"operand %s names an unknown side", v)
		}
		return field(src, v.Offset)

	case VectorFieldRef:
		src := t1
		if position == 2 {
			src = t2
		}
		ref, err := field(src, v.Offset)
		if err != nil {
			return operandRef{}, err
		}
		ref.typ = types.VectorType
		return ref, nil

	case nil:
		return operandRef{}, dberror.New(dberror.ErrCategoryUser, dberror.CodeNullArgument, "comparison operand is nil")

	default:
		return operandRef{}, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeUnknownAttributeType,
			"unsupported operand %T", o)
	}
}

func literal(typ types.Type, width int, f types.Field) (operandRef, error) {
	td, err := tuple.NewTupleDesc([]types.Type{typ}, []int{width}, nil)
	if err != nil {
		return operandRef{}, err
	}
	scratch := tuple.NewTuple(td)
	if err := scratch.SetField(0, f); err != nil {
		return operandRef{}, err
	}
	return operandRef{tup: scratch, fieldNo: 1, typ: typ}, nil
}

func field(src *tuple.Tuple, offset int) (operandRef, error) {
	if src == nil {
		return operandRef{}, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeFieldOutOfBounds,
			"field %d referenced on a missing tuple", offset)
	}
	typ, err := src.TupleDesc.TypeAtIndex(offset - 1)
	if err != nil {
		return operandRef{}, err
	}
	return operandRef{tup: src, fieldNo: offset, typ: typ}, nil
}
