// Package predicate evaluates AND-of-ORs predicates over one or two tuples.
//
// A Predicate is a list of disjunctions that must all hold. A disjunction
// holds when any of its comparisons does. Scalar comparisons test the
// ordering of their operands; comparisons with a vector operand test the
// distance between the two vectors against the comparison's threshold.
package predicate

import (
	"strings"

	"storevec/pkg/dberror"
	"storevec/pkg/primitives"
	"storevec/pkg/tuple"
	"storevec/pkg/types"
)

// Comparison is one atomic condition "Left Op Right". Threshold is only read
// when an operand is vector typed; the condition is then
// "distance(Left, Right) Op Threshold".
type Comparison struct {
	Left      Operand
	Right     Operand
	Op        primitives.Predicate
	Threshold float64
}

// Compare builds a scalar comparison.
func Compare(left Operand, op primitives.Predicate, right Operand) Comparison {
	return Comparison{Left: left, Right: right, Op: op}
}

// Distance builds a vector comparison "distance(left, right) op threshold".
func Distance(left Operand, right Operand, op primitives.Predicate, threshold float64) Comparison {
	return Comparison{Left: left, Right: right, Op: op, Threshold: threshold}
}

func (c Comparison) String() string {
	l, r := operandString(c.Left), operandString(c.Right)
	if isVectorOperand(c.Left) || isVectorOperand(c.Right) {
		return "dist(" + l + ", " + r + ") " + c.Op.String() + " " + RealLiteral{Value: c.Threshold}.String()
	}
	return l + " " + c.Op.String() + " " + r
}

func operandString(o Operand) string {
	if o == nil {
		return "<nil>"
	}
	return o.String()
}

// Disjunction holds when any of its comparisons holds.
type Disjunction []Comparison

// Predicate holds when every disjunction holds. A nil or empty Predicate
// matches everything.
type Predicate []Disjunction

// And builds a predicate from disjunctions.
func And(ds ...Disjunction) Predicate {
	return Predicate(ds)
}

// Or builds a disjunction from comparisons.
func Or(cs ...Comparison) Disjunction {
	return Disjunction(cs)
}

func (p Predicate) String() string {
	if len(p) == 0 {
		return "TRUE"
	}
	parts := make([]string, len(p))
	for i, d := range p {
		alts := make([]string, len(d))
		for j, c := range d {
			alts[j] = c.String()
		}
		parts[i] = "(" + strings.Join(alts, " OR ") + ")"
	}
	return strings.Join(parts, " AND ")
}

// Evaluate reports whether t1 and t2 satisfy p. t2 may be nil for
// single-input operators. Evaluation short-circuits inside a disjunction on
// the first true comparison and across disjunctions on the first false one.
//
// An empty tuple set (both t1 and t2 nil) satisfies only the empty predicate.
//
// Failures keep their original code (field out of bounds, unknown attribute
// type, type mismatch) and are wrapped with a predicate evaluation error.
func Evaluate(p Predicate, t1, t2 *tuple.Tuple) (bool, error) {
	if len(p) > 0 && t1 == nil && t2 == nil {
		return false, nil
	}
	for _, d := range p {
		ok, err := evalDisjunction(d, t1, t2)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func evalDisjunction(d Disjunction, t1, t2 *tuple.Tuple) (bool, error) {
	for _, c := range d {
		ok, err := EvaluateComparison(c, t1, t2)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// EvaluateComparison evaluates a single comparison.
func EvaluateComparison(c Comparison, t1, t2 *tuple.Tuple) (bool, error) {
	if !c.Op.IsValid() {
		return false, dberror.Newf(dberror.ErrCategoryUser, dberror.CodePredicateEval,
			"unsupported operator %d", int(c.Op))
	}

	left, err := resolve(c.Left, 1, t1, t2)
	if err != nil {
		return false, wrapEval(err, c)
	}
	right, err := resolve(c.Right, 2, t1, t2)
	if err != nil {
		return false, wrapEval(err, c)
	}

	typ, err := comparisonType(left.typ, right.typ)
	if err != nil {
		return false, wrapEval(err, c)
	}

	res, err := tuple.CompareField(typ, left.tup, left.fieldNo, right.tup, right.fieldNo)
	if err != nil {
		return false, wrapEval(err, c)
	}

	if res.IsDistance() {
		return c.Op.Apply(res.Distance(), c.Threshold), nil
	}
	return c.Op.Apply(float64(res.Order()), 0), nil
}

// comparisonType picks the kind both operands are compared as. Integers
// and reals compare as reals; any other mix is a type mismatch.
func comparisonType(a, b types.Type) (types.Type, error) {
	if a == b {
		return a, nil
	}
	if (a == types.IntType && b == types.RealType) || (a == types.RealType && b == types.IntType) {
		return types.RealType, nil
	}
	return 0, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeTypeMismatch,
		"cannot compare %v with %v", a, b)
}

func wrapEval(err error, c Comparison) error {
	return dberror.Wrap(err, dberror.CodePredicateEval, "predicate evaluation", "predicate").
		WithDetail(c.String())
}

func isVectorOperand(o Operand) bool {
	switch o.(type) {
	case VectorLiteral, VectorFieldRef:
		return true
	default:
		return false
	}
}
