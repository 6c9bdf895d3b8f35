package heap

import (
	"fmt"
	"sync"

	"storevec/pkg/dberror"
	"storevec/pkg/primitives"
	"storevec/pkg/storage"
	"storevec/pkg/tuple"
)

// MemStore is an in-memory RecordStore made of slotted pages. Every record
// has the serialized size of the store's schema.
//
// Thread-safe: reads take a read lock, Insert and Delete a write lock.
type MemStore struct {
	name      string
	tupleDesc *tuple.TupleDescription
	pages     []*Page
	numLive   int
	mutex     sync.RWMutex
}

// NewMemStore creates an empty store for records of schema td.
func NewMemStore(name string, td *tuple.TupleDescription) (*MemStore, error) {
	if td == nil {
		return nil, dberror.New(dberror.ErrCategoryUser, dberror.CodeSchema, "record store needs a schema")
	}
	if size := td.GetSize(); size > storage.PageSize {
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSchema,
			"record size %d exceeds page size %d", size, storage.PageSize)
	}
	return &MemStore{name: name, tupleDesc: td}, nil
}

func (s *MemStore) Name() string {
	return s.name
}

func (s *MemStore) TupleDesc() *tuple.TupleDescription {
	return s.tupleDesc
}

// NumRecords returns the number of live records.
func (s *MemStore) NumRecords() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.numLive
}

// NumPages returns the number of allocated pages.
func (s *MemStore) NumPages() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.pages)
}

// Insert serializes t, stores it in the first page with a free slot and sets
// t.RecordID to its new location.
func (s *MemStore) Insert(t *tuple.Tuple) (tuple.RecordID, error) {
	if !t.TupleDesc.Equals(s.tupleDesc) {
		return tuple.RecordID{}, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSchema,
			"tuple schema %s does not match store schema %s", t.TupleDesc, s.tupleDesc)
	}

	rec, err := t.Serialize()
	if err != nil {
		return tuple.RecordID{}, err
	}

	rid, err := s.InsertRecord(rec)
	if err != nil {
		return tuple.RecordID{}, err
	}
	t.RecordID = &rid
	return rid, nil
}

// InsertRecord stores an already serialized record image.
func (s *MemStore) InsertRecord(rec []byte) (tuple.RecordID, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p := s.pageWithSpace()
	slot, err := p.insert(rec)
	if err != nil {
		return tuple.RecordID{}, dberror.Wrap(err, dberror.CodeSchema, "insert", "heap").WithDetail(s.name)
	}
	s.numLive++
	return tuple.NewRecordID(p.id, slot), nil
}

func (s *MemStore) pageWithSpace() *Page {
	for _, p := range s.pages {
		if p.NumEmptySlots() > 0 {
			return p
		}
	}
	p := newPage(primitives.PageID(len(s.pages)), s.tupleDesc.GetSize()) // #nosec G115
	s.pages = append(s.pages, p)
	return p
}

// Delete frees the slot named by rid. Deleting a dangling id returns an
// error wrapping ErrDanglingRecord.
func (s *MemStore) Delete(rid tuple.RecordID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	p := s.page(rid.PageID)
	if p == nil || !p.remove(rid.Slot) {
		return fmt.Errorf("delete %s from %s: %w", rid, s.name, ErrDanglingRecord)
	}
	s.numLive--
	return nil
}

// Fetch returns a copy of the record named by rid.
func (s *MemStore) Fetch(rid tuple.RecordID) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	p := s.page(rid.PageID)
	if p == nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", rid, s.name, ErrDanglingRecord)
	}
	rec, ok := p.get(rid.Slot)
	if !ok {
		return nil, fmt.Errorf("fetch %s from %s: %w", rid, s.name, ErrDanglingRecord)
	}
	return rec, nil
}

// RecordIDs returns the ids of all live records in (page, slot) order.
func (s *MemStore) RecordIDs() []tuple.RecordID {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]tuple.RecordID, 0, s.numLive)
	for _, p := range s.pages {
		for _, slot := range p.liveSlots() {
			out = append(out, tuple.NewRecordID(p.id, slot))
		}
	}
	return out
}

func (s *MemStore) page(id primitives.PageID) *Page {
	if id < 0 || int(id) >= len(s.pages) {
		return nil
	}
	return s.pages[id]
}
