package iterator

import "storevec/pkg/tuple"

// Result is the outcome of one pull from a Source: either a tuple or the
// end-of-scan signal. The zero value is not meaningful; use Row or EndOfScan.
type Result struct {
	tuple *tuple.Tuple
	end   bool
}

// Row wraps a produced tuple.
func Row(t *tuple.Tuple) Result {
	return Result{tuple: t}
}

// EndOfScan signals that the source has no more tuples. It is not an error.
func EndOfScan() Result {
	return Result{end: true}
}

// Done reports whether r is the end-of-scan signal.
func (r Result) Done() bool {
	return r.end
}

// Tuple returns the produced tuple, or nil at end of scan.
func (r Result) Tuple() *tuple.Tuple {
	return r.tuple
}

func (r Result) String() string {
	if r.end {
		return "EndOfScan"
	}
	if r.tuple == nil {
		return "Row(<nil>)"
	}
	return "Row(" + r.tuple.String() + ")"
}

// Source is a single-step pull interface over a stream of tuples.
//
// Next returns either a Row or EndOfScan. Once a source reports EndOfScan it
// keeps doing so on later calls. Errors are never used to signal exhaustion.
type Source interface {
	Next() (Result, error)
}

// SourceFunc adapts a plain function to the Source interface.
type SourceFunc func() (Result, error)

func (f SourceFunc) Next() (Result, error) {
	return f()
}
