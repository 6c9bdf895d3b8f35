package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"storevec/pkg/config"
	"storevec/pkg/execution/predicate"
	"storevec/pkg/execution/scanner"
	"storevec/pkg/iterator"
	"storevec/pkg/primitives"
	"storevec/pkg/storage/index"
	"storevec/pkg/tuple"
	"storevec/pkg/types"
	"storevec/pkg/vector"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7D56F4"}).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D32F2F", Dark: "#FF6B6B"}).
			Bold(true)
)

type scanOptions struct {
	rows    int
	min     int64
	max     int64
	near    int32
	within  float64
	keyOnly bool
	where   []string

	hasMin, hasMax, hasNear bool
}

// whereTerm parses "name=value" into an equality on the named field of td.
// The value is read as a constant of the field's type.
func whereTerm(td *tuple.TupleDescription, term string) (predicate.Comparison, error) {
	name, raw, ok := strings.Cut(term, "=")
	if !ok {
		return predicate.Comparison{}, fmt.Errorf("--where %q: want name=value", term)
	}
	i, err := td.FindFieldIndex(strings.TrimSpace(name))
	if err != nil {
		return predicate.Comparison{}, fmt.Errorf("--where %q: %w", term, err)
	}
	typ, _ := td.TypeAtIndex(i)
	width, _ := td.WidthAtIndex(i)

	f, err := types.CreateFieldFromConstant(typ, raw, width)
	if err != nil {
		return predicate.Comparison{}, fmt.Errorf("--where %q: %w", term, err)
	}

	field := predicate.Outer(i + 1)
	switch v := f.(type) {
	case *types.IntField:
		return predicate.Compare(field, primitives.Equals, predicate.IntLiteral{Value: v.Value}), nil
	case *types.Float64Field:
		return predicate.Compare(field, primitives.Equals, predicate.RealLiteral{Value: v.Value}), nil
	case *types.StringField:
		return predicate.Compare(field, primitives.Equals, predicate.StringLiteral{Value: v.Value}), nil
	case *types.VectorField:
		return predicate.Distance(predicate.VectorFieldRef{Offset: i + 1}, predicate.VectorLiteral{Value: v.Value}, primitives.Equals, 0), nil
	default:
		return predicate.Comparison{}, fmt.Errorf("--where %q: unsupported field type %v", term, typ)
	}
}

// buildPredicate turns the flags into a conjunction over td.
func buildPredicate(o scanOptions, td *tuple.TupleDescription) (predicate.Predicate, error) {
	var p predicate.Predicate
	for _, term := range o.where {
		c, err := whereTerm(td, term)
		if err != nil {
			return nil, err
		}
		p = append(p, predicate.Or(c))
	}
	if o.hasMin {
		p = append(p, predicate.Or(predicate.Compare(predicate.Outer(1), primitives.GreaterThanOrEqual, predicate.IntLiteral{Value: o.min})))
	}
	if o.hasMax {
		p = append(p, predicate.Or(predicate.Compare(predicate.Outer(1), primitives.LessThanOrEqual, predicate.IntLiteral{Value: o.max})))
	}
	if o.hasNear {
		q, err := vector.Vector{}.With(0, o.near)
		if err != nil {
			return nil, err
		}
		p = append(p, predicate.Or(predicate.Distance(
			predicate.VectorFieldRef{Offset: 3}, predicate.VectorLiteral{Value: q}, primitives.LessThanOrEqual, o.within)))
	}
	return p, nil
}

func runScan(ctx context.Context, cfg *config.Config, o scanOptions, w io.Writer) error {
	if o.keyOnly && o.hasNear {
		return fmt.Errorf("--near needs record fields and cannot be combined with --key-only")
	}

	data, err := seed(ctx, cfg, o.rows)
	if err != nil {
		return err
	}
	defer data.Close()

	pred, err := buildPredicate(o, data.schema)
	if err != nil {
		return err
	}

	scan, err := scanner.NewIndexScan(scanner.IndexScanConfig{
		Catalog:    data.catalog,
		IndexKind:  index.BTreeIndex,
		StoreName:  storeName,
		IndexName:  indexName,
		BaseSchema: data.schema,
		Projection: []tuple.FieldRef{
			{Side: tuple.Outer, Offset: 1},
			{Side: tuple.Outer, Offset: 2},
		},
		Predicate:    pred,
		IndexedField: 1,
		KeyOnly:      o.keyOnly,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("scan %s over %s", scan.Range(), indexName)))
	fmt.Fprintln(w, mutedStyle.Render("where "+pred.String()))
	fmt.Fprintln(w, headerStyle.Render(strings.Join(scan.TupleDesc().FieldNames, "\t")))

	n := 0
	err = iterator.ForEach(scan, func(t *tuple.Tuple) error {
		n++
		_, werr := fmt.Fprintln(w, t.String())
		return werr
	})
	closeErr := scan.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}

	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d row(s), %d page(s) still pinned", n, data.index.PinnedPages())))
	return nil
}
