package scanner

import (
	"errors"

	"storevec/pkg/storage/heap"
	"storevec/pkg/storage/index"
	"storevec/pkg/tuple"
	"storevec/pkg/types"
)

// fakeCursor replays a fixed list of entries and can fail on demand.
type fakeCursor struct {
	entries  []index.Entry
	pos      int
	nextErr  error
	failAt   int
	closeErr error
	closes   int
}

func (c *fakeCursor) Next() (index.Entry, bool, error) {
	if c.nextErr != nil && c.pos == c.failAt {
		return index.Entry{}, false, c.nextErr
	}
	if c.pos >= len(c.entries) {
		return index.Entry{}, false, nil
	}
	e := c.entries[c.pos]
	c.pos++
	return e, true, nil
}

func (c *fakeCursor) Close() error {
	c.closes++
	return c.closeErr
}

type fakeHandle struct {
	keyType   types.Type
	cursor    *fakeCursor
	openErr   error
	closeErr  error
	closes    int
	openedFor *index.Range
}

func (h *fakeHandle) KeyType() types.Type { return h.keyType }

func (h *fakeHandle) OpenCursor(r index.Range) (index.Cursor, error) {
	if h.openErr != nil {
		return nil, h.openErr
	}
	h.openedFor = &r
	return h.cursor, nil
}

func (h *fakeHandle) Close() error {
	h.closes++
	return h.closeErr
}

// fakeStore serves records from a map; missing ids are dangling.
type fakeStore struct {
	records  map[tuple.RecordID][]byte
	fetchErr error
	fetches  int
}

func (s *fakeStore) Name() string { return "fake" }

func (s *fakeStore) Fetch(rid tuple.RecordID) ([]byte, error) {
	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	rec, ok := s.records[rid]
	if !ok {
		return nil, heap.ErrDanglingRecord
	}
	return rec, nil
}

type fakeCatalog struct {
	store    heap.RecordStore
	handle   index.Handle
	storeErr error
	indexErr error
}

func (c *fakeCatalog) OpenStore(string) (heap.RecordStore, error) {
	if c.storeErr != nil {
		return nil, c.storeErr
	}
	return c.store, nil
}

func (c *fakeCatalog) OpenIndex(index.IndexType, string) (index.Handle, error) {
	if c.indexErr != nil {
		return nil, c.indexErr
	}
	return c.handle, nil
}

var errDisk = errors.New("disk on fire")
