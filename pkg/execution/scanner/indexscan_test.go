package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storevec/pkg/catalog"
	"storevec/pkg/dberror"
	"storevec/pkg/execution/predicate"
	"storevec/pkg/iterator"
	"storevec/pkg/primitives"
	"storevec/pkg/storage/heap"
	"storevec/pkg/storage/index"
	"storevec/pkg/tuple"
	"storevec/pkg/types"
	"storevec/pkg/vector"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

func docDesc() *tuple.TupleDescription {
	return tuple.MustNewTupleDesc(
		[]types.Type{types.IntType, types.StringType, types.VectorType},
		[]int{0, 12, 0},
		[]string{"id", "title", "embedding"},
	)
}

func axis(t *testing.T, i int, x int32) vector.Vector {
	t.Helper()
	v, err := vector.Vector{}.With(i, x)
	require.NoError(t, err)
	return v
}

func doc(t *testing.T, id int64, title string, v vector.Vector) *tuple.Tuple {
	t.Helper()
	return tuple.NewBuilder(docDesc()).AddInt(id).AddString(title).AddVector(v).MustBuild()
}

type fixture struct {
	catalog *catalog.Catalog
	store   *heap.MemStore
	byID    *index.BTree
	byTitle *index.BTree
	rids    map[int64]tuple.RecordID
}

// newFixture stores one document per id, with title "doc-<id>" and an
// embedding of length id along axis 0, indexed by id and by title.
func newFixture(t *testing.T, ids ...int64) *fixture {
	t.Helper()
	store, err := heap.NewMemStore("docs", docDesc())
	require.NoError(t, err)
	byID, err := index.NewBTree("docs_by_id", types.IntType, 3)
	require.NoError(t, err)
	byTitle, err := index.NewBTree("docs_by_title", types.StringType, 3)
	require.NoError(t, err)

	f := &fixture{catalog: catalog.New(), store: store, byID: byID, byTitle: byTitle, rids: map[int64]tuple.RecordID{}}
	for _, id := range ids {
		d := doc(t, id, "doc-"+string(rune('a'+id%26)), axis(t, 0, int32(id)))
		rid, err := store.Insert(d)
		require.NoError(t, err)
		require.NoError(t, byID.InsertTuple(d, 1))
		require.NoError(t, byTitle.InsertTuple(d, 2))
		f.rids[id] = rid
	}

	require.NoError(t, f.catalog.RegisterStore(store))
	require.NoError(t, f.catalog.RegisterIndex("docs_by_id", index.BTreeIndex, byID))
	require.NoError(t, f.catalog.RegisterIndex("docs_by_title", index.BTreeIndex, byTitle))
	return f
}

func (f *fixture) config(p predicate.Predicate, proj ...tuple.FieldRef) IndexScanConfig {
	if len(proj) == 0 {
		proj = []tuple.FieldRef{{Side: tuple.Outer, Offset: 1}, {Side: tuple.Outer, Offset: 2}}
	}
	return IndexScanConfig{
		Catalog:      f.catalog,
		IndexKind:    index.BTreeIndex,
		StoreName:    "docs",
		IndexName:    "docs_by_id",
		BaseSchema:   docDesc(),
		Projection:   proj,
		Predicate:    p,
		IndexedField: 1,
	}
}

func ids(t *testing.T, tuples []*tuple.Tuple) []int64 {
	t.Helper()
	out := make([]int64, 0, len(tuples))
	for _, tup := range tuples {
		f, err := tup.GetField(0)
		require.NoError(t, err)
		out = append(out, f.(*types.IntField).Value)
	}
	return out
}

func openScan(t *testing.T, cfg IndexScanConfig) *IndexScan {
	t.Helper()
	s, err := NewIndexScan(cfg)
	require.NoError(t, err)
	return s
}

// ============================================================================
// SCANNING
// ============================================================================

func TestIndexScan_ReturnsAllInKeyOrder(t *testing.T) {
	f := newFixture(t, 5, 3, 9, 1, 7)
	s := openScan(t, f.config(nil))

	got, err := iterator.Collect(s)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 5, 7, 9}, ids(t, got))
	assert.Equal(t, "1\tdoc-b", got[0].String())
	assert.Equal(t, f.rids[1], *got[0].RecordID)

	for range 3 {
		res, err := s.Next()
		require.NoError(t, err)
		assert.True(t, res.Done(), "end of scan repeats")
	}

	require.NoError(t, s.Close())
	assert.Zero(t, f.byID.PinnedPages())
}

func TestIndexScan_PredicateFilters(t *testing.T) {
	f := newFixture(t, 1, 2, 3, 4, 5, 6)

	p := predicate.And(
		predicate.Or(predicate.Compare(predicate.Outer(1), primitives.GreaterThan, predicate.IntLiteral{Value: 1})),
		predicate.Or(
			predicate.Compare(predicate.Outer(1), primitives.Equals, predicate.IntLiteral{Value: 2}),
			predicate.Compare(predicate.Outer(1), primitives.Equals, predicate.IntLiteral{Value: 5}),
		),
	)
	s := openScan(t, f.config(p))
	defer s.Close()

	got, err := iterator.Collect(s)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5}, ids(t, got))
	assert.Equal(t, "(1, +inf)", s.Range().String())
}

func TestIndexScan_VectorDistancePredicate(t *testing.T) {
	f := newFixture(t, 10, 20, 30, 40)
	query := axis(t, 0, 22)

	p := predicate.And(predicate.Or(
		predicate.Distance(predicate.VectorFieldRef{Offset: 3}, predicate.VectorLiteral{Value: query}, primitives.LessThanOrEqual, 8),
	))
	s := openScan(t, f.config(p))
	defer s.Close()

	got, err := iterator.Collect(s)
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 30}, ids(t, got))
	assert.Equal(t, "(-inf, +inf)", s.Range().String(), "distance comparisons never bound the range")
}

func TestIndexScan_Projection(t *testing.T) {
	f := newFixture(t, 3)
	s := openScan(t, f.config(nil,
		tuple.FieldRef{Side: tuple.Outer, Offset: 2},
		tuple.FieldRef{Side: tuple.Outer, Offset: 3},
	))
	defer s.Close()

	assert.Equal(t, []string{"title", "embedding"}, s.TupleDesc().FieldNames)

	res, err := s.Next()
	require.NoError(t, err)
	require.False(t, res.Done())
	assert.Equal(t, 2, res.Tuple().NumFields())
	f0, err := res.Tuple().GetField(0)
	require.NoError(t, err)
	assert.Equal(t, "doc-d", f0.String())
}

func TestIndexScan_SkipsDanglingRecords(t *testing.T) {
	f := newFixture(t, 1, 2, 3, 4)
	require.NoError(t, f.store.Delete(f.rids[2]))
	require.NoError(t, f.store.Delete(f.rids[3]))

	s := openScan(t, f.config(nil))
	defer s.Close()

	got, err := iterator.Collect(s)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 4}, ids(t, got))
	assert.Equal(t, 2, s.skipped)
}

func TestIndexScan_EmptyIndex(t *testing.T) {
	f := newFixture(t)
	s := openScan(t, f.config(nil))

	res, err := s.Next()
	require.NoError(t, err)
	assert.True(t, res.Done())
	require.NoError(t, s.Close())
}

// ============================================================================
// RANGE DERIVATION
// ============================================================================

func TestIndexScan_RangeFromPredicate(t *testing.T) {
	f := newFixture(t, 1, 2, 3, 4, 5, 6, 7, 8)

	p := predicate.And(
		predicate.Or(predicate.Compare(predicate.Outer(1), primitives.GreaterThanOrEqual, predicate.IntLiteral{Value: 3})),
		predicate.Or(predicate.Compare(predicate.IntLiteral{Value: 6}, primitives.GreaterThan, predicate.Outer(1))),
		predicate.Or(predicate.Compare(predicate.Outer(1), primitives.NotEqual, predicate.IntLiteral{Value: 4})),
	)
	s := openScan(t, f.config(p))
	defer s.Close()

	assert.Equal(t, "[3, 6)", s.Range().String())

	store := &countingStore{RecordStore: f.store}
	s.store = store
	got, err := iterator.Collect(s)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5}, ids(t, got))
	assert.Equal(t, 3, store.fetches, "only keys inside the range are fetched")
}

type countingStore struct {
	heap.RecordStore
	fetches int
}

func (c *countingStore) Fetch(rid tuple.RecordID) ([]byte, error) {
	c.fetches++
	return c.RecordStore.Fetch(rid)
}

func TestDeriveRange(t *testing.T) {
	eq := func(field int, lit predicate.Operand) predicate.Disjunction {
		return predicate.Or(predicate.Compare(predicate.Outer(field), primitives.Equals, lit))
	}

	tests := []struct {
		name     string
		pred     predicate.Predicate
		keyType  types.Type
		expected string
	}{
		{"nil predicate", nil, types.IntType, "(-inf, +inf)"},
		{"equality", predicate.And(eq(1, predicate.IntLiteral{Value: 4})), types.IntType, "[4, 4]"},
		{"other field ignored", predicate.And(eq(2, predicate.IntLiteral{Value: 4})), types.IntType, "(-inf, +inf)"},
		{"literal kind must match key", predicate.And(eq(1, predicate.RealLiteral{Value: 4})), types.IntType, "(-inf, +inf)"},
		{"string key", predicate.And(eq(1, predicate.StringLiteral{Value: "m"})), types.StringType, `["m", "m"]`},
		{"real key", predicate.And(predicate.Or(
			predicate.Compare(predicate.Outer(1), primitives.LessThanOrEqual, predicate.RealLiteral{Value: 2.5}),
		)), types.RealType, "(-inf, 2.5]"},
		{"multi-term disjunction ignored", predicate.And(predicate.Or(
			predicate.Compare(predicate.Outer(1), primitives.Equals, predicate.IntLiteral{Value: 1}),
			predicate.Compare(predicate.Outer(1), primitives.Equals, predicate.IntLiteral{Value: 2}),
		)), types.IntType, "(-inf, +inf)"},
		{"inner side ignored", predicate.And(predicate.Or(
			predicate.Compare(predicate.Inner(1), primitives.Equals, predicate.IntLiteral{Value: 1}),
		)), types.IntType, "(-inf, +inf)"},
		{"field to field ignored", predicate.And(predicate.Or(
			predicate.Compare(predicate.Outer(1), primitives.Equals, predicate.Outer(2)),
		)), types.IntType, "(-inf, +inf)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := deriveRange(tt.pred, 1, tt.keyType)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, r.String())
		})
	}
}

// ============================================================================
// KEY-ONLY
// ============================================================================

func TestIndexScan_KeyOnlyInt(t *testing.T) {
	f := newFixture(t, 2, 1)
	require.NoError(t, f.store.Delete(f.rids[2]))

	cfg := f.config(nil)
	cfg.KeyOnly = true
	s := openScan(t, cfg)
	defer s.Close()

	got, err := iterator.Collect(s)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids(t, got), "key-only scans never consult the store")
	assert.Equal(t, 1, s.TupleDesc().NumFields())
	assert.Equal(t, f.rids[2], *got[1].RecordID)
}

func TestIndexScan_KeyOnlyString(t *testing.T) {
	f := newFixture(t, 1, 2)
	cfg := f.config(nil)
	cfg.KeyOnly = true
	cfg.IndexName = "docs_by_title"
	cfg.IndexedField = 2
	s := openScan(t, cfg)
	defer s.Close()

	got, err := iterator.Collect(s)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "doc-b", got[0].String())
	assert.Equal(t, []int{12}, s.TupleDesc().Widths)
}

func TestIndexScan_KeyOnlyUnsupportedKey(t *testing.T) {
	handle := &fakeHandle{
		keyType: types.VectorType,
		cursor: &fakeCursor{entries: []index.Entry{
			{Key: index.NewVectorKey(vector.Vector{}), RID: tuple.NewRecordID(0, 0)},
		}},
	}
	cfg := IndexScanConfig{
		Catalog:      &fakeCatalog{store: &fakeStore{}, handle: handle},
		IndexKind:    index.BTreeIndex,
		BaseSchema:   docDesc(),
		Projection:   []tuple.FieldRef{{Side: tuple.Outer, Offset: 1}},
		IndexedField: 3,
		KeyOnly:      true,
	}
	s := openScan(t, cfg)
	defer s.Close()

	_, err := s.Next()
	require.Error(t, err)
	assert.True(t, dberror.HasCode(err, dberror.CodeIndexScan))
	assert.True(t, dberror.HasCode(err, dberror.CodeUnknownKeyType))
}

// ============================================================================
// CLOSE
// ============================================================================

func TestIndexScan_CloseIsIdempotent(t *testing.T) {
	f := newFixture(t, 1, 2)
	s := openScan(t, f.config(nil))

	res, err := s.Next()
	require.NoError(t, err)
	require.False(t, res.Done())
	assert.Equal(t, int64(2), f.byID.PinnedPages())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Zero(t, f.byID.PinnedPages())
}

func TestIndexScan_CloseBeforeFirstNext(t *testing.T) {
	f := newFixture(t, 1)
	s := openScan(t, f.config(nil))
	assert.Equal(t, int64(1), f.byID.HeaderPins())
	assert.Zero(t, f.byID.LeafPins())

	require.NoError(t, s.Close())
	assert.Zero(t, f.byID.PinnedPages())
}

func TestIndexScan_NextAfterCloseFailsFast(t *testing.T) {
	f := newFixture(t, 1, 2)
	s := openScan(t, f.config(nil))
	require.NoError(t, s.Close())

	res, err := s.Next()
	assert.True(t, dberror.HasCode(err, dberror.CodeScanClosed))
	assert.Nil(t, res.Tuple())
}

func newFakeScan(t *testing.T, cursor *fakeCursor, handle *fakeHandle, store *fakeStore) *IndexScan {
	t.Helper()
	handle.keyType = types.IntType
	handle.cursor = cursor
	cfg := IndexScanConfig{
		Catalog:      &fakeCatalog{store: store, handle: handle},
		IndexKind:    index.BTreeIndex,
		BaseSchema:   docDesc(),
		Projection:   []tuple.FieldRef{{Side: tuple.Outer, Offset: 1}},
		IndexedField: 1,
	}
	return openScan(t, cfg)
}

func TestIndexScan_CloseErrorPriority(t *testing.T) {
	tests := []struct {
		name        string
		cursorErr   error
		handleErr   error
		stage       string
		detailEmpty bool
	}{
		{"cursor only", errDisk, nil, StageCursorRelease, true},
		{"handle only", nil, errDisk, StageIndexRelease, true},
		{"both", errDisk, dberror.New(dberror.ErrCategorySystem, dberror.CodeIndex, "header unpin failed"), StageIndexRelease, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cursor := &fakeCursor{closeErr: tt.cursorErr}
			handle := &fakeHandle{closeErr: tt.handleErr}
			s := newFakeScan(t, cursor, handle, &fakeStore{})

			res, err := s.Next()
			require.NoError(t, err)
			require.True(t, res.Done())

			err = s.Close()
			require.Error(t, err)
			assert.Equal(t, 1, cursor.closes, "cursor release attempted once")
			assert.Equal(t, 1, handle.closes, "handle release attempted even after a cursor failure")

			var dbErr *dberror.DBError
			require.ErrorAs(t, err, &dbErr)
			assert.Equal(t, dberror.CodeIndexScan, dbErr.Code)
			assert.Equal(t, tt.stage, dbErr.Operation)
			if tt.detailEmpty {
				assert.Empty(t, dbErr.Detail)
			} else {
				assert.Contains(t, dbErr.Detail, "disk on fire")
				assert.True(t, dberror.HasCode(err, dberror.CodeIndex))
			}

			require.NoError(t, s.Close(), "second close is a no-op")
			assert.Equal(t, 1, cursor.closes)
			assert.Equal(t, 1, handle.closes)
		})
	}
}

// ============================================================================
// STAGE FAILURES
// ============================================================================

func TestIndexScan_StageErrors(t *testing.T) {
	good, err := doc(t, 1, "x", vector.Vector{}).Serialize()
	require.NoError(t, err)
	rid := tuple.NewRecordID(0, 0)
	entries := []index.Entry{{Key: index.IntKey{Value: 1}, RID: rid}}

	tests := []struct {
		name      string
		cursor    *fakeCursor
		handle    *fakeHandle
		store     *fakeStore
		stage     string
		innerCode string
	}{
		{
			name:   "cursor open",
			cursor: &fakeCursor{},
			handle: &fakeHandle{openErr: errDisk},
			store:  &fakeStore{},
			stage:  StageCursorOpen,
		},
		{
			name:   "cursor pull",
			cursor: &fakeCursor{entries: entries, nextErr: errDisk},
			handle: &fakeHandle{},
			store:  &fakeStore{},
			stage:  StageCursorPull,
		},
		{
			name:   "record fetch",
			cursor: &fakeCursor{entries: entries},
			handle: &fakeHandle{},
			store:  &fakeStore{fetchErr: errDisk},
			stage:  StageRecordFetch,
		},
		{
			name:      "schema assignment",
			cursor:    &fakeCursor{entries: entries},
			handle:    &fakeHandle{},
			store:     &fakeStore{records: map[tuple.RecordID][]byte{rid: good[:10]}},
			stage:     StageSchemaAssignment,
			innerCode: dberror.CodeSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeScan(t, tt.cursor, tt.handle, tt.store)
			defer s.Close()

			_, err := s.Next()
			require.Error(t, err)

			var dbErr *dberror.DBError
			require.ErrorAs(t, err, &dbErr)
			assert.Equal(t, dberror.CodeIndexScan, dbErr.Code)
			assert.Equal(t, tt.stage, dbErr.Operation)
			if tt.innerCode != "" {
				assert.True(t, dberror.HasCode(err, tt.innerCode))
			} else {
				assert.ErrorIs(t, err, errDisk)
			}
		})
	}
}

func TestIndexScan_PredicateStageError(t *testing.T) {
	f := newFixture(t, 1)
	p := predicate.And(predicate.Or(
		predicate.Compare(predicate.Outer(2), primitives.Equals, predicate.IntLiteral{Value: 1}),
	))
	s := openScan(t, f.config(p))
	defer s.Close()

	_, err := s.Next()
	var dbErr *dberror.DBError
	require.ErrorAs(t, err, &dbErr)
	assert.Equal(t, StagePredicate, dbErr.Operation)
	assert.True(t, dberror.HasCode(err, dberror.CodePredicateEval))
	assert.True(t, dberror.HasCode(err, dberror.CodeTypeMismatch))
}

func TestIndexScan_DanglingThenMatch(t *testing.T) {
	good, err := doc(t, 2, "kept", vector.Vector{}).Serialize()
	require.NoError(t, err)
	kept := tuple.NewRecordID(0, 1)

	cursor := &fakeCursor{entries: []index.Entry{
		{Key: index.IntKey{Value: 1}, RID: tuple.NewRecordID(0, 0)},
		{Key: index.IntKey{Value: 2}, RID: kept},
	}}
	store := &fakeStore{records: map[tuple.RecordID][]byte{kept: good}}
	s := newFakeScan(t, cursor, &fakeHandle{}, store)
	defer s.Close()

	got, err := iterator.Collect(s)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(t, got))
	assert.Equal(t, 2, store.fetches)
}

// ============================================================================
// CONSTRUCTION
// ============================================================================

func TestNewIndexScan_SetupErrors(t *testing.T) {
	f := newFixture(t, 1)

	tests := []struct {
		name   string
		mutate func(*IndexScanConfig)
		code   string
	}{
		{"hash index", func(c *IndexScanConfig) { c.IndexKind = index.HashIndex }, dberror.CodeUnknownIndexType},
		{"unknown kind", func(c *IndexScanConfig) { c.IndexKind = "RTREE" }, dberror.CodeUnknownIndexType},
		{"missing store", func(c *IndexScanConfig) { c.StoreName = "nope" }, dberror.CodeStoreNotFound},
		{"missing index", func(c *IndexScanConfig) { c.IndexName = "nope" }, dberror.CodeIndexNotFound},
		{"nil schema", func(c *IndexScanConfig) { c.BaseSchema = nil }, dberror.CodeSchema},
		{"nil catalog", func(c *IndexScanConfig) { c.Catalog = nil }, dberror.CodeIndexSetup},
		{"indexed field out of range", func(c *IndexScanConfig) { c.IndexedField = 4 }, dberror.CodeIndexSetup},
		{"empty projection", func(c *IndexScanConfig) { c.Projection = nil }, dberror.CodeSchema},
		{"inner projection", func(c *IndexScanConfig) {
			c.Projection = []tuple.FieldRef{{Side: tuple.Inner, Offset: 1}}
		}, dberror.CodeInvalidRelation},
		{"projection out of range", func(c *IndexScanConfig) {
			c.Projection = []tuple.FieldRef{{Side: tuple.Outer, Offset: 9}}
		}, dberror.CodeFieldOutOfBounds},
		{"key type mismatch", func(c *IndexScanConfig) { c.IndexName = "docs_by_title" }, dberror.CodeIndexSetup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := f.config(nil)
			tt.mutate(&cfg)

			s, err := NewIndexScan(cfg)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.True(t, dberror.HasCode(err, tt.code), "expected %s in %v", tt.code, err)
			assert.Zero(t, f.byID.PinnedPages())
			assert.Zero(t, f.byTitle.PinnedPages())
		})
	}
}

func TestNewIndexScan_WrapsUncodedCatalogErrors(t *testing.T) {
	cfg := IndexScanConfig{
		Catalog:      &fakeCatalog{storeErr: errDisk},
		IndexKind:    index.BTreeIndex,
		BaseSchema:   docDesc(),
		Projection:   []tuple.FieldRef{{Side: tuple.Outer, Offset: 1}},
		IndexedField: 1,
	}
	_, err := NewIndexScan(cfg)
	assert.True(t, dberror.HasCode(err, dberror.CodeIndexSetup))
	assert.ErrorIs(t, err, errDisk)
}

func TestNewIndexScan_AssignsScanID(t *testing.T) {
	f := newFixture(t, 1)
	a := openScan(t, f.config(nil))
	b := openScan(t, f.config(nil))
	defer a.Close()
	defer b.Close()

	assert.Len(t, a.ID(), 36)
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestScanState_String(t *testing.T) {
	assert.Equal(t, "unopened", stateUnopened.String())
	assert.Equal(t, "scanning", stateScanning.String())
	assert.Equal(t, "exhausted", stateExhausted.String())
	assert.Equal(t, "closed", stateClosed.String())
	assert.Equal(t, "scanState(9)", scanState(9).String())
}
