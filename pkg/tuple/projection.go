package tuple

import (
	"fmt"

	"storevec/pkg/dberror"
	"storevec/pkg/types"
)

// Side selects one of the (up to) two inputs of an operator.
type Side int

const (
	Outer Side = iota
	Inner
)

func (s Side) String() string {
	switch s {
	case Outer:
		return "outer"
	case Inner:
		return "inner"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// FieldRef names a field of one input by side and 1-based offset.
type FieldRef struct {
	Side   Side
	Offset int
}

func (r FieldRef) String() string {
	return fmt.Sprintf("%s.%d", r.Side, r.Offset)
}

// BuildProjectionSchema derives the output schema named by proj over the
// outer and inner input schemas and assigns it onto out. inner may be nil
// for single-input operators, in which case any Inner reference fails with
// an invalid-relation error.
func BuildProjectionSchema(out *Tuple, outer, inner *TupleDescription, proj []FieldRef) (*TupleDescription, error) {
	if len(proj) == 0 {
		return nil, dberror.New(dberror.ErrCategoryUser, dberror.CodeSetup, "projection list is empty")
	}

	outTypes := make([]types.Type, len(proj))
	outWidths := make([]int, len(proj))
	var outNames []string
	if (outer != nil && outer.FieldNames != nil) || (inner != nil && inner.FieldNames != nil) {
		outNames = make([]string, len(proj))
	}

	for i, ref := range proj {
		src, err := projectionSource(ref, outer, inner)
		if err != nil {
			return nil, err
		}
		if ref.Offset < 1 || ref.Offset > src.NumFields() {
			return nil, outOfBounds(ref.Offset, src.NumFields())
		}
		outTypes[i] = src.Types[ref.Offset-1]
		outWidths[i] = src.Widths[ref.Offset-1]
		if outNames != nil && src.FieldNames != nil {
			outNames[i] = src.FieldNames[ref.Offset-1]
		}
	}

	td, err := NewTupleDesc(outTypes, outWidths, outNames)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSetup, "projection schema", "tuple")
	}

	if out != nil {
		if err := out.SetTupleDesc(td); err != nil {
			return nil, dberror.Wrap(err, dberror.CodeSetup, "projection schema", "tuple")
		}
	}
	return td, nil
}

// BuildSingleProjectionSchema is BuildProjectionSchema for operators with one input.
func BuildSingleProjectionSchema(out *Tuple, input *TupleDescription, proj []FieldRef) (*TupleDescription, error) {
	return BuildProjectionSchema(out, input, nil, proj)
}

func projectionSource(ref FieldRef, outer, inner *TupleDescription) (*TupleDescription, error) {
	switch ref.Side {
	case Outer:
		if outer == nil {
			return nil, dberror.New(dberror.ErrCategoryUser, dberror.CodeInvalidRelation,
				"projection references the outer relation, which is absent")
		}
		return outer, nil
	case Inner:
		if inner == nil {
			return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeInvalidRelation,
				"projection entry %s references an inner relation on a single-input operator", ref)
		}
		return inner, nil
	default:
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeInvalidRelation, "unknown side %d", int(ref.Side))
	}
}

// Project builds a fresh tuple of schema outDesc whose fields are copied from
// outer and inner as named by proj. The result carries outer's RecordID.
func Project(outDesc *TupleDescription, outer, inner *Tuple, proj []FieldRef) (*Tuple, error) {
	if len(proj) != outDesc.NumFields() {
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSchema,
			"projection list has %d entries but output schema has %d fields", len(proj), outDesc.NumFields())
	}

	out := NewTuple(outDesc)
	for i, ref := range proj {
		src := outer
		if ref.Side == Inner {
			src = inner
		}
		f, err := fieldAt(src, ref.Offset)
		if err != nil {
			return nil, err
		}
		if err := out.SetField(i, f); err != nil {
			return nil, err
		}
	}
	if outer != nil {
		out.RecordID = outer.RecordID
	}
	return out, nil
}
