package tuple

import (
	"fmt"
	"strings"

	"storevec/pkg/dberror"
	"storevec/pkg/types"
)

// TupleDescription describes the schema of a tuple: the type of each field,
// the byte width of string fields and optional field names.
type TupleDescription struct {
	Types []types.Type
	// Widths holds the declared byte width of each field. Only string fields use it.
	Widths []int
	// FieldNames contains the name of each field (optional, may be nil)
	FieldNames []string
}

// NewTupleDesc creates a schema. widths may be nil, in which case string
// fields get types.StringMaxSize; fieldNames may be nil.
func NewTupleDesc(fieldTypes []types.Type, widths []int, fieldNames []string) (*TupleDescription, error) {
	if len(fieldTypes) < 1 {
		return nil, dberror.New(dberror.ErrCategoryUser, dberror.CodeSchema, "must provide at least one field type")
	}

	typesCopy := make([]types.Type, len(fieldTypes))
	for i, t := range fieldTypes {
		if !t.IsValid() {
			return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeUnknownAttributeType,
				"field %d has unknown type %d", i+1, int(t))
		}
		typesCopy[i] = t
	}

	widthsCopy := make([]int, len(fieldTypes))
	if widths != nil {
		if len(widths) != len(fieldTypes) {
			return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSchema,
				"widths length (%d) must match field types length (%d)", len(widths), len(fieldTypes))
		}
		copy(widthsCopy, widths)
	}
	for i, t := range typesCopy {
		if t != types.StringType {
			widthsCopy[i] = 0
			continue
		}
		if widths == nil {
			widthsCopy[i] = types.StringMaxSize
		}
		if widthsCopy[i] < 1 {
			return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSchema,
				"string field %d needs a positive width, got %d", i+1, widthsCopy[i])
		}
	}

	var namesCopy []string
	if fieldNames != nil {
		if len(fieldNames) != len(fieldTypes) {
			return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSchema,
				"field names length (%d) must match field types length (%d)", len(fieldNames), len(fieldTypes))
		}
		namesCopy = make([]string, len(fieldNames))
		copy(namesCopy, fieldNames)
	}

	return &TupleDescription{
		Types:      typesCopy,
		Widths:     widthsCopy,
		FieldNames: namesCopy,
	}, nil
}

// MustNewTupleDesc panics on error. Intended for fixtures.
func MustNewTupleDesc(fieldTypes []types.Type, widths []int, fieldNames []string) *TupleDescription {
	td, err := NewTupleDesc(fieldTypes, widths, fieldNames)
	if err != nil {
		panic(err)
	}
	return td
}

func (td *TupleDescription) NumFields() int {
	return len(td.Types)
}

// TypeAtIndex returns the type of the ith (0-based) field.
func (td *TupleDescription) TypeAtIndex(i int) (types.Type, error) {
	if i < 0 || i >= len(td.Types) {
		return 0, outOfBounds(i+1, len(td.Types))
	}
	return td.Types[i], nil
}

// WidthAtIndex returns the declared width of the ith (0-based) field.
func (td *TupleDescription) WidthAtIndex(i int) (int, error) {
	if i < 0 || i >= len(td.Widths) {
		return 0, outOfBounds(i+1, len(td.Widths))
	}
	return td.Widths[i], nil
}

// GetFieldName returns the name of the ith field, or "" when names were not provided.
func (td *TupleDescription) GetFieldName(i int) (string, error) {
	if i < 0 || i >= len(td.Types) {
		return "", outOfBounds(i+1, len(td.Types))
	}
	if td.FieldNames == nil {
		return "", nil
	}
	return td.FieldNames[i], nil
}

// FindFieldIndex locates a field by name and returns its 0-based index.
func (td *TupleDescription) FindFieldIndex(fieldName string) (int, error) {
	for i, name := range td.FieldNames {
		if name == fieldName {
			return i, nil
		}
	}
	return -1, fmt.Errorf("column %s not found", fieldName)
}

// GetSize returns the serialized record size in bytes.
func (td *TupleDescription) GetSize() int {
	size := 0
	for i, t := range td.Types {
		size += t.Size(td.Widths[i])
	}
	return size
}

// Equals compares types and widths; names are ignored.
func (td *TupleDescription) Equals(other *TupleDescription) bool {
	if other == nil || len(td.Types) != len(other.Types) {
		return false
	}
	for i := range td.Types {
		if td.Types[i] != other.Types[i] || td.Widths[i] != other.Widths[i] {
			return false
		}
	}
	return true
}

// String returns "Type1(name1),Type2(name2),...", using "null" for unnamed fields.
func (td *TupleDescription) String() string {
	parts := make([]string, 0, len(td.Types))
	for i, fieldType := range td.Types {
		fieldName := "null"
		if td.FieldNames != nil && td.FieldNames[i] != "" {
			fieldName = td.FieldNames[i]
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", fieldType.String(), fieldName))
	}
	return strings.Join(parts, ",")
}

func outOfBounds(fieldNo, numFields int) *dberror.DBError {
	return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeFieldOutOfBounds,
		"field %d out of bounds [1, %d]", fieldNo, numFields)
}
