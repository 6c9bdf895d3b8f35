// Package scanner implements the indexed scan operator: it walks an index
// cursor, fetches the records it names, filters them with a predicate and
// projects the requested fields.
package scanner

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"storevec/pkg/dberror"
	"storevec/pkg/execution/predicate"
	"storevec/pkg/iterator"
	"storevec/pkg/logging"
	"storevec/pkg/storage/heap"
	"storevec/pkg/storage/index"
	"storevec/pkg/tuple"
	"storevec/pkg/types"
)

const component = "index scan"

// Stage names recorded as the Operation of scan errors.
const (
	StageCursorOpen         = "cursor open"
	StageCursorPull         = "cursor pull"
	StageRecordFetch        = "record fetch"
	StageSchemaAssignment   = "schema assignment"
	StagePredicate          = "predicate evaluation"
	StageProjection         = "projection"
	StageKeyMaterialization = "key materialization"
	StageCursorRelease      = "cursor release"
	StageIndexRelease       = "index release"
)

// Catalog resolves the names an IndexScan is configured with.
type Catalog interface {
	OpenStore(name string) (heap.RecordStore, error)
	OpenIndex(kind index.IndexType, name string) (index.Handle, error)
}

// IndexScanConfig holds everything needed to construct an IndexScan.
type IndexScanConfig struct {
	Catalog   Catalog
	IndexKind index.IndexType
	StoreName string
	IndexName string

	// BaseSchema describes the records in the store.
	BaseSchema *tuple.TupleDescription

	// Projection names the output fields; every entry must be on the Outer side.
	Projection []tuple.FieldRef

	// Predicate filters fetched records. nil matches everything.
	Predicate predicate.Predicate

	// IndexedField is the 1-based field of BaseSchema the index is built on.
	IndexedField int

	// KeyOnly makes the scan return one-field tuples holding the index key
	// without touching the record store.
	KeyOnly bool
}

type scanState int

const (
	stateUnopened scanState = iota
	stateScanning
	stateExhausted
	stateClosed
)

func (s scanState) String() string {
	switch s {
	case stateUnopened:
		return "unopened"
	case stateScanning:
		return "scanning"
	case stateExhausted:
		return "exhausted"
	case stateClosed:
		return "closed"
	default:
		return fmt.Sprintf("scanState(%d)", int(s))
	}
}

// IndexScan produces the tuples of a record store in index order.
//
// The scan owns one index handle (opened at construction) and one cursor
// (opened on the first Next). Both are released by Close, which must be
// called exactly once the caller is done, whether or not the scan was
// drained. IndexScan is not safe for concurrent use.
type IndexScan struct {
	id         string
	state      scanState
	store      heap.RecordStore
	handle     index.Handle
	cursor     index.Cursor
	keyRange   index.Range
	baseDesc   *tuple.TupleDescription
	outDesc    *tuple.TupleDescription
	keyDesc    *tuple.TupleDescription
	projection []tuple.FieldRef
	pred       predicate.Predicate
	keyOnly    bool
	log        *slog.Logger

	produced int
	skipped  int
}

// NewIndexScan validates cfg, builds the output schema, opens the record
// store and the index and derives the cursor range from the predicate.
//
// Construction errors carry one of the codes UNKNOWN_INDEX_TYPE, SCHEMA_ERROR,
// STORE_NOT_FOUND, INDEX_NOT_FOUND or INDEX_SETUP_ERROR. A scan that failed
// to construct holds no resources.
func NewIndexScan(cfg IndexScanConfig) (*IndexScan, error) {
	if cfg.Catalog == nil {
		return nil, dberror.New(dberror.ErrCategorySetup, dberror.CodeIndexSetup, "index scan needs a catalog")
	}
	if cfg.IndexKind != index.BTreeIndex {
		return nil, dberror.Newf(dberror.ErrCategorySetup, dberror.CodeUnknownIndexType,
			"index scan supports %s indexes only, got %q", index.BTreeIndex, cfg.IndexKind)
	}
	if cfg.BaseSchema == nil {
		return nil, dberror.New(dberror.ErrCategorySetup, dberror.CodeSchema, "index scan needs a base schema")
	}

	keyType, err := cfg.BaseSchema.TypeAtIndex(cfg.IndexedField - 1)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeIndexSetup, "indexed field", component)
	}

	outDesc, err := tuple.BuildSingleProjectionSchema(nil, cfg.BaseSchema, cfg.Projection)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSchema, "output schema", component)
	}
	keyDesc, err := tuple.BuildSingleProjectionSchema(nil, cfg.BaseSchema,
		[]tuple.FieldRef{{Side: tuple.Outer, Offset: cfg.IndexedField}})
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSchema, "key schema", component)
	}

	keyRange, err := deriveRange(cfg.Predicate, cfg.IndexedField, keyType)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeIndexSetup, "range derivation", component)
	}

	store, err := cfg.Catalog.OpenStore(cfg.StoreName)
	if err != nil {
		return nil, setupError(err, "open store")
	}

	handle, err := cfg.Catalog.OpenIndex(cfg.IndexKind, cfg.IndexName)
	if err != nil {
		return nil, setupError(err, "open index")
	}
	if handle.KeyType() != keyType {
		closeErr := handle.Close()
		e := dberror.Newf(dberror.ErrCategorySetup, dberror.CodeIndexSetup,
			"index %s holds %v keys but field %d is %v", cfg.IndexName, handle.KeyType(), cfg.IndexedField, keyType)
		if closeErr != nil {
			e = e.WithDetail("index release also failed: " + closeErr.Error())
		}
		return nil, e
	}

	id := uuid.NewString()
	s := &IndexScan{
		id:         id,
		state:      stateUnopened,
		store:      store,
		handle:     handle,
		keyRange:   keyRange,
		baseDesc:   cfg.BaseSchema,
		outDesc:    outDesc,
		keyDesc:    keyDesc,
		projection: cfg.Projection,
		pred:       cfg.Predicate,
		keyOnly:    cfg.KeyOnly,
		log:        logging.WithScan(id, cfg.IndexName),
	}
	s.log.Debug("index scan opened",
		"store", cfg.StoreName,
		"range", keyRange.String(),
		"predicate", cfg.Predicate.String(),
		"key_only", cfg.KeyOnly)
	return s, nil
}

// setupError keeps coded errors from the catalog as they are and labels
// anything else as an index setup failure.
func setupError(err error, operation string) error {
	if dberror.CodeOf(err) != "" {
		return err
	}
	return dberror.Wrap(err, dberror.CodeIndexSetup, operation, component)
}

// ID returns the scan instance id used in log records.
func (s *IndexScan) ID() string { return s.id }

// TupleDesc returns the schema of produced tuples.
func (s *IndexScan) TupleDesc() *tuple.TupleDescription {
	if s.keyOnly {
		return s.keyDesc
	}
	return s.outDesc
}

// Range returns the cursor range derived from the predicate.
func (s *IndexScan) Range() index.Range { return s.keyRange }

// Next returns the next qualifying tuple or EndOfScan. After EndOfScan,
// further calls keep returning EndOfScan. After Close, Next fails with
// SCAN_CLOSED.
//
// Lower-layer failures are returned as INDEX_SCAN_ERROR with the failing
// stage as Operation and the original error as Cause. They are not retried.
func (s *IndexScan) Next() (iterator.Result, error) {
	switch s.state {
	case stateClosed:
		return iterator.Result{}, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeScanClosed, "scan %s is closed", s.id)
	case stateExhausted:
		return iterator.EndOfScan(), nil
	case stateUnopened:
		c, err := s.handle.OpenCursor(s.keyRange)
		if err != nil {
			return iterator.Result{}, scanError(err, StageCursorOpen)
		}
		s.cursor = c
		s.state = stateScanning
	}

	for {
		entry, ok, err := s.cursor.Next()
		if err != nil {
			return iterator.Result{}, scanError(err, StageCursorPull)
		}
		if !ok {
			s.state = stateExhausted
			s.log.Debug("index scan exhausted", "produced", s.produced, "skipped", s.skipped)
			return iterator.EndOfScan(), nil
		}

		if s.keyOnly {
			t, err := s.materializeKey(entry)
			if err != nil {
				return iterator.Result{}, scanError(err, StageKeyMaterialization)
			}
			s.produced++
			return iterator.Row(t), nil
		}

		t, err := s.process(entry)
		if err != nil {
			return iterator.Result{}, err
		}
		if t == nil {
			continue
		}
		s.produced++
		return iterator.Row(t), nil
	}
}

// process fetches, filters and projects the record behind entry. It returns
// a nil tuple when the record is dangling or fails the predicate.
func (s *IndexScan) process(entry index.Entry) (*tuple.Tuple, error) {
	rec, err := s.store.Fetch(entry.RID)
	if errors.Is(err, heap.ErrDanglingRecord) {
		s.skipped++
		s.log.Debug("dangling record skipped", "rid", entry.RID.String(), "key", entry.Key.String())
		return nil, nil
	}
	if err != nil {
		return nil, scanError(err, StageRecordFetch)
	}

	base, err := tuple.Deserialize(rec, s.baseDesc)
	if err != nil {
		return nil, scanError(err, StageSchemaAssignment)
	}
	rid := entry.RID
	base.RecordID = &rid

	pass, err := predicate.Evaluate(s.pred, base, nil)
	if err != nil {
		return nil, scanError(err, StagePredicate)
	}
	if !pass {
		return nil, nil
	}

	out, err := tuple.Project(s.outDesc, base, nil, s.projection)
	if err != nil {
		return nil, scanError(err, StageProjection)
	}
	return out, nil
}

// materializeKey builds the one-field key-only output tuple. Only integer
// and string keys are supported.
func (s *IndexScan) materializeKey(entry index.Entry) (*tuple.Tuple, error) {
	var f types.Field
	switch k := entry.Key.(type) {
	case index.IntKey:
		f = types.NewIntField(k.Value)
	case index.StringKey:
		f = types.NewStringField(k.Value, s.keyDesc.Widths[0])
	default:
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeUnknownKeyType,
			"key-only scan cannot materialize %T keys", entry.Key)
	}

	t := tuple.NewTuple(s.keyDesc)
	if err := t.SetField(0, f); err != nil {
		return nil, err
	}
	rid := entry.RID
	t.RecordID = &rid
	return t, nil
}

func scanError(err error, stage string) error {
	return dberror.Wrap(err, dberror.CodeIndexScan, stage, component)
}

// Close releases the cursor and then the index handle. Both releases are
// attempted and each reference is dropped after its attempt. When both fail,
// the index release error is returned and the cursor failure is recorded in
// its Detail and logged. Closing an already closed scan is a no-op.
func (s *IndexScan) Close() error {
	if s.state == stateClosed {
		return nil
	}
	prev := s.state
	s.state = stateClosed

	var cursorErr, handleErr error
	if s.cursor != nil {
		cursorErr = s.cursor.Close()
		s.cursor = nil
	}
	if s.handle != nil {
		handleErr = s.handle.Close()
		s.handle = nil
	}
	s.store = nil

	switch {
	case cursorErr != nil && handleErr != nil:
		s.log.Warn("cursor release failed while closing scan", "error", cursorErr)
		return dberror.Wrap(handleErr, dberror.CodeIndexScan, StageIndexRelease, component).
			WithDetail("cursor release also failed: " + cursorErr.Error())
	case handleErr != nil:
		return scanError(handleErr, StageIndexRelease)
	case cursorErr != nil:
		return scanError(cursorErr, StageCursorRelease)
	}

	s.log.Debug("index scan closed", "from", prev.String(), "produced", s.produced, "skipped", s.skipped)
	return nil
}

var _ iterator.Source = (*IndexScan)(nil)
