package index

import (
	"sync"
	"sync/atomic"

	"github.com/google/btree"

	"storevec/pkg/dberror"
	"storevec/pkg/logging"
	"storevec/pkg/tuple"
	"storevec/pkg/types"
)

// BTree is an ordered index of (key, record id) entries kept in a
// google/btree. Entries are ordered by key, then by record id, so duplicate
// keys are allowed.
//
// The index models page pins: every open Handle pins the header page and
// every open cursor pins a leaf page. PinnedPages returns to zero once all
// handles and cursors are closed.
type BTree struct {
	name    string
	keyType types.Type
	tree    *btree.BTreeG[Entry]
	mutex   sync.RWMutex

	headerPins atomic.Int64
	leafPins   atomic.Int64
}

// NewBTree creates an empty index over keys of keyType.
func NewBTree(name string, keyType types.Type, degree int) (*BTree, error) {
	if !keyType.IsValid() {
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeUnknownKeyType,
			"index %s: unsupported key type %d", name, int(keyType))
	}
	if degree < 2 {
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeIndexSetup,
			"index %s: btree degree must be at least 2, got %d", name, degree)
	}

	logging.WithIndex(name).Debug("btree index created", "key_type", keyType.String(), "degree", degree)
	return &BTree{
		name:    name,
		keyType: keyType,
		tree:    btree.NewG(degree, entryLess),
	}, nil
}

// entryLess orders by key, then record id. Keys in one tree share a kind,
// which Insert enforces.
func entryLess(a, b Entry) bool {
	c, err := a.Key.Compare(b.Key)
	if err != nil {
		return a.Key.Type() < b.Key.Type()
	}
	if c != 0 {
		return c < 0
	}
	return a.RID.Compare(b.RID) < 0
}

func (ix *BTree) Name() string { return ix.name }

func (ix *BTree) IndexType() IndexType { return BTreeIndex }

func (ix *BTree) KeyType() types.Type { return ix.keyType }

// Len returns the number of entries.
func (ix *BTree) Len() int {
	ix.mutex.RLock()
	defer ix.mutex.RUnlock()
	return ix.tree.Len()
}

func (ix *BTree) checkKey(k Key) error {
	if k == nil {
		return dberror.New(dberror.ErrCategoryUser, dberror.CodeNullArgument, "index key is nil")
	}
	if k.Type() != ix.keyType {
		return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeTypeMismatch,
			"index %s holds %v keys, got %v", ix.name, ix.keyType, k.Type())
	}
	return nil
}

// Insert adds (key, rid). Inserting an identical entry twice keeps one copy.
func (ix *BTree) Insert(key Key, rid tuple.RecordID) error {
	if err := ix.checkKey(key); err != nil {
		return err
	}
	ix.mutex.Lock()
	defer ix.mutex.Unlock()
	ix.tree.ReplaceOrInsert(Entry{Key: key, RID: rid})
	return nil
}

// InsertTuple indexes field fieldNo (1-based) of a stored tuple.
func (ix *BTree) InsertTuple(t *tuple.Tuple, fieldNo int) error {
	if t.RecordID == nil {
		return dberror.New(dberror.ErrCategoryUser, dberror.CodeNullArgument, "tuple has no record id")
	}
	f, err := t.GetField(fieldNo - 1)
	if err != nil {
		return err
	}
	key, err := KeyFromField(f)
	if err != nil {
		return err
	}
	return ix.Insert(key, *t.RecordID)
}

// Delete removes (key, rid). It reports false when the entry was absent.
func (ix *BTree) Delete(key Key, rid tuple.RecordID) (bool, error) {
	if err := ix.checkKey(key); err != nil {
		return false, err
	}
	ix.mutex.Lock()
	defer ix.mutex.Unlock()
	_, found := ix.tree.Delete(Entry{Key: key, RID: rid})
	return found, nil
}

// HeaderPins returns the number of handles currently holding the header page.
func (ix *BTree) HeaderPins() int64 { return ix.headerPins.Load() }

// LeafPins returns the number of cursors currently holding a leaf page.
func (ix *BTree) LeafPins() int64 { return ix.leafPins.Load() }

// PinnedPages returns the total number of pinned pages.
func (ix *BTree) PinnedPages() int64 {
	return ix.headerPins.Load() + ix.leafPins.Load()
}

// Open returns a new handle on the index and pins the header page.
func (ix *BTree) Open() (Handle, error) {
	ix.headerPins.Add(1)
	return &btreeHandle{ix: ix}, nil
}

type btreeHandle struct {
	ix     *BTree
	closed bool
}

func (h *btreeHandle) KeyType() types.Type { return h.ix.keyType }

func (h *btreeHandle) OpenCursor(r Range) (Cursor, error) {
	if h.closed {
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeIndex, "index %s: handle is closed", h.ix.name)
	}
	for _, b := range []*Bound{r.Lo, r.Hi} {
		if b == nil {
			continue
		}
		if err := h.ix.checkKey(b.Key); err != nil {
			return nil, err
		}
	}

	h.ix.leafPins.Add(1)
	return &btreeCursor{ix: h.ix, rng: r}, nil
}

func (h *btreeHandle) Close() error {
	if h.closed {
		return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeIndex, "index %s: handle already closed", h.ix.name)
	}
	h.closed = true
	h.ix.headerPins.Add(-1)
	return nil
}

// btreeCursor re-seeks the tree on every Next, starting after the last
// returned entry, so concurrent inserts and deletes never invalidate it.
type btreeCursor struct {
	ix      *BTree
	rng     Range
	last    Entry
	started bool
	done    bool
	closed  bool
}

func (c *btreeCursor) Next() (Entry, bool, error) {
	if c.closed {
		return Entry{}, false, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeIndex, "index %s: cursor is closed", c.ix.name)
	}
	if c.done {
		return Entry{}, false, nil
	}

	var (
		found  Entry
		ok     bool
		cmpErr error
	)
	visit := func(e Entry) bool {
		if c.started && !entryLess(c.last, e) {
			return true
		}
		if !c.started {
			below, err := c.rng.belowLo(e.Key)
			if err != nil {
				cmpErr = err
				return false
			}
			if below {
				return true
			}
		}
		above, err := c.rng.aboveHi(e.Key)
		if err != nil {
			cmpErr = err
			return false
		}
		if above {
			return false
		}
		found, ok = e, true
		return false
	}

	c.ix.mutex.RLock()
	switch {
	case c.started:
		c.ix.tree.AscendGreaterOrEqual(c.last, visit)
	case c.rng.Lo != nil:
		c.ix.tree.AscendGreaterOrEqual(Entry{Key: c.rng.Lo.Key, RID: minRID}, visit)
	default:
		c.ix.tree.Ascend(visit)
	}
	c.ix.mutex.RUnlock()

	if cmpErr != nil {
		return Entry{}, false, cmpErr
	}
	if !ok {
		c.done = true
		return Entry{}, false, nil
	}
	c.last, c.started = found, true
	return found, true, nil
}

func (c *btreeCursor) Close() error {
	if c.closed {
		return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeIndex, "index %s: cursor already closed", c.ix.name)
	}
	c.closed = true
	c.ix.leafPins.Add(-1)
	return nil
}
