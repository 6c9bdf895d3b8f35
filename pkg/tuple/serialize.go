package tuple

import (
	"bytes"

	"storevec/pkg/dberror"
	"storevec/pkg/types"
)

// Serialize encodes all fields in schema order into a record image of
// TupleDesc.GetSize() bytes. Every field must be set.
func (t *Tuple) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(t.TupleDesc.GetSize())

	for i, f := range t.fields {
		if f == nil {
			return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSchema, "field %d is unset", i+1)
		}
		if sf, ok := f.(*types.StringField); ok && sf.MaxSize != t.TupleDesc.Widths[i] {
			f = types.NewStringField(sf.Value, t.TupleDesc.Widths[i])
		}
		if err := f.Serialize(&buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a record image produced by Serialize using td.
// A record whose length does not match td is rejected as a schema error.
func Deserialize(data []byte, td *TupleDescription) (*Tuple, error) {
	if td == nil {
		return nil, dberror.New(dberror.ErrCategoryUser, dberror.CodeSchema, "cannot decode a record without a schema")
	}
	if len(data) != td.GetSize() {
		return nil, dberror.Newf(dberror.ErrCategoryData, dberror.CodeSchema,
			"record is %d bytes but schema %s needs %d", len(data), td, td.GetSize())
	}

	t := NewTuple(td)
	r := bytes.NewReader(data)
	for i, typ := range td.Types {
		f, err := types.ParseField(r, typ, td.Widths[i])
		if err != nil {
			return nil, dberror.Wrap(err, dberror.CodeSchema, "record decode", "tuple").
				WithDetail("field " + typ.String())
		}
		t.fields[i] = f
	}
	return t, nil
}
