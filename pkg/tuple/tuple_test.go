package tuple

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storevec/pkg/dberror"
	"storevec/pkg/types"
	"storevec/pkg/vector"
)

func peopleDesc() *TupleDescription {
	return MustNewTupleDesc(
		[]types.Type{types.IntType, types.StringType, types.RealType, types.VectorType},
		[]int{0, 12, 0, 0},
		[]string{"id", "name", "score", "embedding"},
	)
}

func TestNewTupleDesc(t *testing.T) {
	t.Run("defaults string width", func(t *testing.T) {
		td, err := NewTupleDesc([]types.Type{types.IntType, types.StringType}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{0, types.StringMaxSize}, td.Widths)
		assert.Equal(t, 8+4+types.StringMaxSize, td.GetSize())
	})

	tests := []struct {
		name   string
		types  []types.Type
		widths []int
		names  []string
		code   string
	}{
		{"empty", nil, nil, nil, dberror.CodeSchema},
		{"unknown type", []types.Type{types.Type(17)}, nil, nil, dberror.CodeUnknownAttributeType},
		{"widths length", []types.Type{types.IntType}, []int{1, 2}, nil, dberror.CodeSchema},
		{"zero string width", []types.Type{types.StringType}, []int{0}, nil, dberror.CodeSchema},
		{"names length", []types.Type{types.IntType}, nil, []string{"a", "b"}, dberror.CodeSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTupleDesc(tt.types, tt.widths, tt.names)
			require.Error(t, err)
			assert.True(t, dberror.HasCode(err, tt.code))
		})
	}
}

func TestTupleDescription_Accessors(t *testing.T) {
	td := peopleDesc()

	assert.Equal(t, 4, td.NumFields())
	typ, err := td.TypeAtIndex(3)
	require.NoError(t, err)
	assert.Equal(t, types.VectorType, typ)

	w, err := td.WidthAtIndex(1)
	require.NoError(t, err)
	assert.Equal(t, 12, w)

	_, err = td.TypeAtIndex(4)
	assert.True(t, dberror.HasCode(err, dberror.CodeFieldOutOfBounds))

	idx, err := td.FindFieldIndex("score")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	_, err = td.FindFieldIndex("missing")
	assert.Error(t, err)

	assert.Equal(t, "INT_TYPE(id),STRING_TYPE(name),REAL_TYPE(score),VECTOR_TYPE(embedding)", td.String())
	assert.True(t, td.Equals(peopleDesc()))
	assert.False(t, td.Equals(nil))
}

func TestTuple_SetGetField(t *testing.T) {
	tup := NewTuple(peopleDesc())

	require.NoError(t, tup.SetField(0, types.NewIntField(1)))
	err := tup.SetField(0, types.NewStringField("x", 4))
	assert.True(t, dberror.HasCode(err, dberror.CodeTypeMismatch))

	err = tup.SetField(9, types.NewIntField(1))
	assert.True(t, dberror.HasCode(err, dberror.CodeFieldOutOfBounds))

	f, err := tup.GetField(1)
	require.NoError(t, err)
	assert.Nil(t, f)
	assert.Equal(t, "1\tnull\tnull\tnull", tup.String())
}

func TestTuple_SetTupleDesc(t *testing.T) {
	intDesc := MustNewTupleDesc([]types.Type{types.IntType}, nil, nil)
	strDesc := MustNewTupleDesc([]types.Type{types.StringType}, nil, nil)

	empty := NewTuple(peopleDesc())
	require.NoError(t, empty.SetTupleDesc(intDesc))
	assert.Equal(t, 1, empty.NumFields())

	require.NoError(t, empty.SetField(0, types.NewIntField(3)))
	err := empty.SetTupleDesc(strDesc)
	assert.True(t, dberror.HasCode(err, dberror.CodeSchema))

	err = empty.SetTupleDesc(peopleDesc())
	assert.True(t, dberror.HasCode(err, dberror.CodeSchema))

	assert.Error(t, empty.SetTupleDesc(nil))
}

func TestSerializeDeserialize(t *testing.T) {
	vec, err := vector.Fill(9)
	require.NoError(t, err)

	tup := NewBuilder(peopleDesc()).
		AddInt(42).
		AddString("ada").
		AddReal(-1.5).
		AddVector(vec).
		MustBuild()

	data, err := tup.Serialize()
	require.NoError(t, err)
	assert.Len(t, data, peopleDesc().GetSize())

	got, err := Deserialize(data, peopleDesc())
	require.NoError(t, err)

	ok, err := CompareAllFields(tup, got, peopleDesc().Types, 4)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeserialize_Errors(t *testing.T) {
	_, err := Deserialize([]byte{1, 2, 3}, peopleDesc())
	assert.True(t, dberror.HasCode(err, dberror.CodeSchema))

	_, err = Deserialize(nil, nil)
	assert.True(t, dberror.HasCode(err, dberror.CodeSchema))

	td := MustNewTupleDesc([]types.Type{types.StringType}, []int{2}, nil)
	_, err = Deserialize([]byte{0, 0, 0, 5, 'a', 'b'}, td)
	assert.True(t, dberror.HasCode(err, dberror.CodeSchema))
}

func TestSerialize_UnsetField(t *testing.T) {
	_, err := NewTuple(peopleDesc()).Serialize()
	assert.True(t, dberror.HasCode(err, dberror.CodeSchema))
}

func TestBuilder_Errors(t *testing.T) {
	_, err := NewBuilder(peopleDesc()).AddInt(1).Build()
	assert.Error(t, err)

	_, err = NewBuilder(peopleDesc()).AddString("wrong").Build()
	assert.True(t, dberror.HasCode(err, dberror.CodeTypeMismatch))

	assert.Panics(t, func() { NewBuilder(peopleDesc()).MustBuild() })
}
