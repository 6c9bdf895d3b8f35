package scanner

import (
	"storevec/pkg/execution/predicate"
	"storevec/pkg/primitives"
	"storevec/pkg/storage/index"
	"storevec/pkg/tuple"
	"storevec/pkg/types"
)

// deriveRange computes the cursor range implied by p on the indexed field
// (1-based). Only disjunctions with a single comparison of the form
// "outer.field OP literal" (either operand order) narrow the range, and only
// when the literal has the index key's kind. Everything else, including !=
// and distance comparisons, leaves the range unchanged; the full predicate is
// still applied to every fetched record.
func deriveRange(p predicate.Predicate, fieldNo int, keyType types.Type) (index.Range, error) {
	r := index.FullRange()
	for _, d := range p {
		if len(d) != 1 {
			continue
		}
		op, lit, ok := boundingTerm(d[0], fieldNo)
		if !ok {
			continue
		}
		key, ok := literalKey(lit, keyType)
		if !ok {
			continue
		}

		var err error
		if r, err = r.Restrict(op, key); err != nil {
			return index.FullRange(), err
		}
	}
	return r, nil
}

// boundingTerm returns the operator and literal of c, oriented as
// "field OP literal", when c compares the indexed outer field to a literal.
func boundingTerm(c predicate.Comparison, fieldNo int) (primitives.Predicate, predicate.Operand, bool) {
	if !c.Op.IsValid() || c.Op == primitives.NotEqual {
		return 0, nil, false
	}
	if isIndexedField(c.Left, fieldNo) && isLiteral(c.Right) {
		return c.Op, c.Right, true
	}
	if isIndexedField(c.Right, fieldNo) && isLiteral(c.Left) {
		return c.Op.Flip(), c.Left, true
	}
	return 0, nil, false
}

func isIndexedField(o predicate.Operand, fieldNo int) bool {
	ref, ok := o.(predicate.FieldRef)
	return ok && ref.Side == tuple.Outer && ref.Offset == fieldNo
}

func isLiteral(o predicate.Operand) bool {
	switch o.(type) {
	case predicate.IntLiteral, predicate.RealLiteral, predicate.StringLiteral:
		return true
	default:
		return false
	}
}

func literalKey(o predicate.Operand, keyType types.Type) (index.Key, bool) {
	switch v := o.(type) {
	case predicate.IntLiteral:
		return index.IntKey{Value: v.Value}, keyType == types.IntType
	case predicate.RealLiteral:
		return index.RealKey{Value: v.Value}, keyType == types.RealType
	case predicate.StringLiteral:
		return index.StringKey{Value: v.Value}, keyType == types.StringType
	default:
		return nil, false
	}
}
