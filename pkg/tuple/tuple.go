package tuple

import (
	"strings"

	"storevec/pkg/dberror"
	"storevec/pkg/types"
)

// Tuple represents a row of data in the database
type Tuple struct {
	TupleDesc *TupleDescription
	fields    []types.Field
	RecordID  *RecordID // Where this tuple is stored (can be nil)
}

// NewTuple creates a new tuple with the given schema and all fields unset.
func NewTuple(td *TupleDescription) *Tuple {
	return &Tuple{
		TupleDesc: td,
		fields:    make([]types.Field, td.NumFields()),
	}
}

// SetField sets the ith (0-based) field. The field's type must match the schema.
func (t *Tuple) SetField(i int, field types.Field) error {
	if i < 0 || i >= len(t.fields) {
		return outOfBounds(i+1, len(t.fields))
	}

	expectedType := t.TupleDesc.Types[i]
	if field.Type() != expectedType {
		return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeTypeMismatch,
			"field %d: expected %v, got %v", i+1, expectedType, field.Type())
	}

	t.fields[i] = field
	return nil
}

// GetField returns the ith (0-based) field; nil when unset.
func (t *Tuple) GetField(i int) (types.Field, error) {
	if i < 0 || i >= len(t.fields) {
		return nil, outOfBounds(i+1, len(t.fields))
	}
	return t.fields[i], nil
}

// NumFields returns the number of fields declared by the tuple's schema.
func (t *Tuple) NumFields() int {
	return len(t.fields)
}

// SetTupleDesc assigns a new schema to the tuple. Fields that are already set
// must agree in count and type with td.
func (t *Tuple) SetTupleDesc(td *TupleDescription) error {
	if td == nil {
		return dberror.New(dberror.ErrCategoryUser, dberror.CodeSchema, "cannot assign a nil schema")
	}

	if len(t.fields) != td.NumFields() {
		for i, f := range t.fields {
			if f != nil {
				return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSchema,
					"schema has %d fields but tuple has %d (field %d already set)", td.NumFields(), len(t.fields), i+1)
			}
		}
		t.fields = make([]types.Field, td.NumFields())
		t.TupleDesc = td
		return nil
	}

	for i, f := range t.fields {
		if f != nil && f.Type() != td.Types[i] {
			return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSchema,
				"field %d holds %v but schema declares %v", i+1, f.Type(), td.Types[i])
		}
	}
	t.TupleDesc = td
	return nil
}

// String returns the fields separated by tabs, "null" for unset ones.
func (t *Tuple) String() string {
	parts := make([]string, 0, len(t.fields))
	for _, field := range t.fields {
		if field != nil {
			parts = append(parts, field.String())
		} else {
			parts = append(parts, "null")
		}
	}
	return strings.Join(parts, "\t")
}
