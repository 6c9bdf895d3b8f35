package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storevec/pkg/dberror"
	"storevec/pkg/primitives"
	"storevec/pkg/tuple"
	"storevec/pkg/types"
	"storevec/pkg/vector"
)

func itemDesc() *tuple.TupleDescription {
	return tuple.MustNewTupleDesc(
		[]types.Type{types.IntType, types.IntType, types.StringType, types.RealType, types.VectorType},
		[]int{0, 0, 10, 0, 0},
		[]string{"a", "b", "name", "price", "embedding"},
	)
}

func item(t *testing.T, a, b int64, name string, price float64, v vector.Vector) *tuple.Tuple {
	t.Helper()
	return tuple.NewBuilder(itemDesc()).AddInt(a).AddInt(b).AddString(name).AddReal(price).AddVector(v).MustBuild()
}

func axis(t *testing.T, i int, x int32) vector.Vector {
	t.Helper()
	v, err := vector.Vector{}.With(i, x)
	require.NoError(t, err)
	return v
}

func eval(t *testing.T, p Predicate, t1, t2 *tuple.Tuple) bool {
	t.Helper()
	ok, err := Evaluate(p, t1, t2)
	require.NoError(t, err)
	return ok
}

func TestEvaluate_EmptyPredicateMatchesEverything(t *testing.T) {
	tup := item(t, 1, 2, "x", 1, vector.Vector{})

	assert.True(t, eval(t, nil, nil, nil))
	assert.True(t, eval(t, Predicate{}, tup, nil))
	assert.True(t, eval(t, And(), tup, tup))
	assert.Equal(t, "TRUE", Predicate(nil).String())
}

func TestEvaluate_Disjunction(t *testing.T) {
	p := And(Or(
		Compare(Outer(1), primitives.Equals, IntLiteral{5}),
		Compare(Outer(1), primitives.Equals, IntLiteral{7}),
	))

	assert.True(t, eval(t, p, item(t, 5, 0, "", 0, vector.Vector{}), nil))
	assert.True(t, eval(t, p, item(t, 7, 0, "", 0, vector.Vector{}), nil))
	assert.False(t, eval(t, p, item(t, 6, 0, "", 0, vector.Vector{}), nil))
	assert.Equal(t, "(outer.$1 = 5 OR outer.$1 = 7)", p.String())
}

func TestEvaluate_EmptyTupleSetFailsNonEmptyPredicate(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate
	}{
		{"field disjunction", And(Or(
			Compare(Outer(1), primitives.Equals, IntLiteral{5}),
			Compare(Outer(1), primitives.Equals, IntLiteral{7}),
		))},
		{"inner field", And(Or(Compare(Inner(2), primitives.LessThan, IntLiteral{3})))},
		{"vector field", And(Or(Distance(VectorFieldRef{5}, VectorLiteral{}, primitives.LessThan, 10)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Evaluate(tt.pred, nil, nil)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}

	_, err := Evaluate(And(Or(Compare(Outer(9), primitives.Equals, IntLiteral{5}))),
		item(t, 5, 0, "", 0, vector.Vector{}), nil)
	assert.True(t, dberror.HasCode(err, dberror.CodePredicateEval))
	assert.True(t, dberror.HasCode(err, dberror.CodeFieldOutOfBounds), "bad offsets on a present tuple still fail")
}

func TestEvaluate_ConjunctionShortCircuits(t *testing.T) {
	// The second disjunction references a field that does not exist; it must
	// never be evaluated once the first one fails.
	p := And(
		Or(Compare(Outer(1), primitives.Equals, IntLiteral{1})),
		Or(Compare(Outer(99), primitives.Equals, IntLiteral{2})),
	)

	assert.False(t, eval(t, p, item(t, 0, 2, "", 0, vector.Vector{}), nil))

	_, err := Evaluate(p, item(t, 1, 2, "", 0, vector.Vector{}), nil)
	assert.True(t, dberror.HasCode(err, dberror.CodeFieldOutOfBounds))
}

func TestEvaluate_DisjunctionShortCircuits(t *testing.T) {
	p := And(Or(
		Compare(Outer(1), primitives.Equals, IntLiteral{1}),
		Compare(Outer(99), primitives.Equals, IntLiteral{2}),
	))
	assert.True(t, eval(t, p, item(t, 1, 0, "", 0, vector.Vector{}), nil))
}

func TestEvaluate_AllTrueConjunction(t *testing.T) {
	p := And(
		Or(Compare(Outer(1), primitives.Equals, IntLiteral{1})),
		Or(Compare(Outer(2), primitives.Equals, IntLiteral{2})),
	)
	assert.True(t, eval(t, p, item(t, 1, 2, "", 0, vector.Vector{}), nil))
	assert.False(t, eval(t, p, item(t, 1, 3, "", 0, vector.Vector{}), nil))
}

func TestEvaluate_ScalarOperators(t *testing.T) {
	tup := item(t, 10, 20, "mango", 2.5, vector.Vector{})

	tests := []struct {
		name     string
		cmp      Comparison
		expected bool
	}{
		{"int less", Compare(Outer(1), primitives.LessThan, IntLiteral{11}), true},
		{"int less fails", Compare(Outer(1), primitives.LessThan, IntLiteral{10}), false},
		{"int less-equal", Compare(Outer(1), primitives.LessThanOrEqual, IntLiteral{10}), true},
		{"int greater", Compare(Outer(2), primitives.GreaterThan, IntLiteral{19}), true},
		{"int greater-equal fails", Compare(Outer(2), primitives.GreaterThanOrEqual, IntLiteral{21}), false},
		{"int not-equal", Compare(Outer(1), primitives.NotEqual, IntLiteral{3}), true},
		{"literal on the left", Compare(IntLiteral{3}, primitives.LessThan, Outer(1)), true},
		{"field to field", Compare(Outer(1), primitives.LessThan, Outer(2)), true},
		{"string equal", Compare(Outer(3), primitives.Equals, StringLiteral{"mango"}), true},
		{"string order", Compare(Outer(3), primitives.GreaterThan, StringLiteral{"apple"}), true},
		{"long string literal", Compare(Outer(3), primitives.LessThan, StringLiteral{"mangosteen-and-more"}), true},
		{"real less", Compare(Outer(4), primitives.LessThan, RealLiteral{3}), true},
		{"int against real", Compare(Outer(1), primitives.GreaterThan, RealLiteral{9.5}), true},
		{"real against int", Compare(Outer(4), primitives.Equals, IntLiteral{2}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := EvaluateComparison(tt.cmp, tup, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}
}

func TestEvaluate_JoinSides(t *testing.T) {
	left := item(t, 4, 0, "l", 0, vector.Vector{})
	right := item(t, 4, 9, "r", 0, vector.Vector{})

	p := And(Or(Compare(Outer(1), primitives.Equals, Inner(1))))
	assert.True(t, eval(t, p, left, right))

	p = And(Or(Compare(Outer(2), primitives.Equals, Inner(2))))
	assert.False(t, eval(t, p, left, right))

	_, err := Evaluate(p, left, nil)
	assert.True(t, dberror.HasCode(err, dberror.CodeFieldOutOfBounds))
}

func TestEvaluate_VectorThreshold(t *testing.T) {
	v := axis(t, 3, 100)
	a := item(t, 1, 0, "", 0, v)
	b := item(t, 2, 0, "", 0, v)

	within := func(threshold float64) Predicate {
		return And(Or(Distance(VectorFieldRef{5}, VectorFieldRef{5}, primitives.LessThan, threshold)))
	}

	for _, th := range []float64{0.5, 1, 1000} {
		assert.True(t, eval(t, within(th), a, b), "identical vectors within %v", th)
	}
	for _, th := range []float64{0, -1} {
		assert.False(t, eval(t, within(th), a, b), "identical vectors not within %v", th)
	}
}

func TestEvaluate_VectorFieldRefSidesArePositional(t *testing.T) {
	a := item(t, 1, 0, "", 0, axis(t, 0, 3))
	b := item(t, 2, 0, "", 0, axis(t, 1, 4))

	p := And(Or(Distance(VectorFieldRef{5}, VectorFieldRef{5}, primitives.Equals, 5)))
	assert.True(t, eval(t, p, a, b))

	p = And(Or(Distance(VectorFieldRef{5}, VectorFieldRef{5}, primitives.Equals, 0)))
	assert.False(t, eval(t, p, a, b))

	_, err := Evaluate(p, a, nil)
	assert.True(t, dberror.HasCode(err, dberror.CodeFieldOutOfBounds))
}

func TestEvaluate_VectorLiteral(t *testing.T) {
	doc := item(t, 1, 0, "", 0, axis(t, 7, 10))
	query := axis(t, 7, 13)

	near := Distance(VectorFieldRef{5}, VectorLiteral{query}, primitives.LessThanOrEqual, 3)
	far := Distance(VectorFieldRef{5}, VectorLiteral{query}, primitives.GreaterThan, 3)

	assert.True(t, eval(t, And(Or(near)), doc, nil))
	assert.False(t, eval(t, And(Or(far)), doc, nil))

	viaFieldRef := Distance(Outer(5), VectorLiteral{query}, primitives.Equals, 3)
	assert.True(t, eval(t, And(Or(viaFieldRef)), doc, nil))
}

func TestEvaluate_DistanceIsRounded(t *testing.T) {
	v, err := vector.New(append([]int32{1, 1}, make([]int32, vector.Dim-2)...))
	require.NoError(t, err)
	doc := item(t, 1, 0, "", 0, v)

	// sqrt(2) rounds to 1.
	p := And(Or(Distance(VectorFieldRef{5}, VectorLiteral{vector.Vector{}}, primitives.Equals, 1)))
	assert.True(t, eval(t, p, doc, nil))
}

func TestEvaluate_Errors(t *testing.T) {
	tup := item(t, 1, 2, "x", 0, vector.Vector{})

	tests := []struct {
		name string
		cmp  Comparison
		code string
	}{
		{"offset zero", Compare(Outer(0), primitives.Equals, IntLiteral{1}), dberror.CodeFieldOutOfBounds},
		{"offset past end", Compare(Outer(6), primitives.Equals, IntLiteral{1}), dberror.CodeFieldOutOfBounds},
		{"string against int", Compare(Outer(3), primitives.Equals, IntLiteral{1}), dberror.CodeTypeMismatch},
		{"vector ref on int field", Distance(VectorFieldRef{1}, VectorLiteral{}, primitives.LessThan, 1), dberror.CodeTypeMismatch},
		{"vector against scalar", Distance(Outer(5), IntLiteral{1}, primitives.LessThan, 1), dberror.CodeTypeMismatch},
		{"unknown side", Compare(FieldRef{Side: tuple.Side(5), Offset: 1}, primitives.Equals, IntLiteral{1}), dberror.CodeInvalidRelation},
		{"nil operand", Compare(nil, primitives.Equals, IntLiteral{1}), dberror.CodeNullArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EvaluateComparison(tt.cmp, tup, nil)
			require.Error(t, err)
			assert.True(t, dberror.HasCode(err, dberror.CodePredicateEval), "wrapped as predicate error: %v", err)
			assert.True(t, dberror.HasCode(err, tt.code), "keeps inner code %s: %v", tt.code, err)
		})
	}

	_, err := EvaluateComparison(Compare(Outer(1), primitives.Predicate(42), IntLiteral{1}), tup, nil)
	assert.True(t, dberror.HasCode(err, dberror.CodePredicateEval))
}

func TestComparison_String(t *testing.T) {
	c := Distance(VectorFieldRef{2}, VectorFieldRef{3}, primitives.LessThan, 12.5)
	assert.Equal(t, "dist(vec.$2, vec.$3) < 12.5", c.String())

	c = Compare(Inner(2), primitives.GreaterThanOrEqual, StringLiteral{"a"})
	assert.Equal(t, `inner.$2 >= "a"`, c.String())
}
