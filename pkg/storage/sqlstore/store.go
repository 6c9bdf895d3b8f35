// Package sqlstore is a RecordStore backed by SQLite. Records of several
// stores share one table keyed by (store, page, slot), where store is the
// FileID hashed from the store name.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"storevec/pkg/dberror"
	"storevec/pkg/primitives"
	"storevec/pkg/storage/heap"
	"storevec/pkg/tuple"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS records (
	store INTEGER NOT NULL,
	page INTEGER NOT NULL,
	slot INTEGER NOT NULL,
	data BLOB NOT NULL,
	PRIMARY KEY (store, page, slot)
);`

// Store keeps the records of one named store in a SQLite database. Record ids
// are assigned densely: the nth inserted record lands on page n/perPage, slot
// n%perPage, using the same page geometry as heap.MemStore.
type Store struct {
	db        *sql.DB
	ownsDB    bool
	name      string
	fileID    primitives.FileID
	tupleDesc *tuple.TupleDescription
	perPage   int64
	next      int64
	mu        sync.Mutex
}

// Open opens (or creates) the database at dsn and returns the store called name.
// The returned store owns the database handle and closes it on Close.
func Open(ctx context.Context, dsn, name string, td *tuple.TupleDescription) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Each connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	s, err := New(ctx, db, name, td)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// New returns the store called name inside an already opened database.
func New(ctx context.Context, db *sql.DB, name string, td *tuple.TupleDescription) (*Store, error) {
	if td == nil {
		return nil, dberror.New(dberror.ErrCategoryUser, dberror.CodeSchema, "record store needs a schema")
	}
	perPage := int64(heap.SlotsPerPage(td.GetSize()))
	if perPage < 1 {
		return nil, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSchema,
			"record size %d does not fit on a page", td.GetSize())
	}

	fileID := primitives.NewFileID(name)

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create records table: %w", err)
	}

	var count int64
	err := db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(page * ? + slot) + 1, 0) FROM records WHERE store = ?", perPage, storeKey(fileID)).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to read record count: %w", err)
	}

	return &Store{
		db:        db,
		name:      name,
		fileID:    fileID,
		tupleDesc: td,
		perPage:   perPage,
		next:      count,
	}, nil
}

func (s *Store) Name() string {
	return s.name
}

// FileID returns the id the store's rows are keyed by.
func (s *Store) FileID() primitives.FileID {
	return s.fileID
}

// storeKey reinterprets the id as a signed integer; database/sql rejects
// uint64 values with the high bit set.
func storeKey(id primitives.FileID) int64 {
	return int64(id) // #nosec G115
}

func (s *Store) TupleDesc() *tuple.TupleDescription {
	return s.tupleDesc
}

// Insert serializes t, stores it under the next record id and sets t.RecordID.
func (s *Store) Insert(ctx context.Context, t *tuple.Tuple) (tuple.RecordID, error) {
	if !t.TupleDesc.Equals(s.tupleDesc) {
		return tuple.RecordID{}, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSchema,
			"tuple schema %s does not match store schema %s", t.TupleDesc, s.tupleDesc)
	}
	rec, err := t.Serialize()
	if err != nil {
		return tuple.RecordID{}, err
	}

	rid, err := s.InsertRecord(ctx, rec)
	if err != nil {
		return tuple.RecordID{}, err
	}
	t.RecordID = &rid
	return rid, nil
}

// InsertRecord stores an already serialized record image.
func (s *Store) InsertRecord(ctx context.Context, rec []byte) (tuple.RecordID, error) {
	if len(rec) != s.tupleDesc.GetSize() {
		return tuple.RecordID{}, dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSchema,
			"record is %d bytes, store %s expects %d", len(rec), s.name, s.tupleDesc.GetSize())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rid := tuple.NewRecordID(
		primitives.PageID(s.next/s.perPage), // #nosec G115
		primitives.SlotID(s.next%s.perPage), // #nosec G115
	)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO records (store, page, slot, data) VALUES (?, ?, ?, ?)",
		storeKey(s.fileID), int64(rid.PageID), int64(rid.Slot), rec)
	if err != nil {
		return tuple.RecordID{}, fmt.Errorf("failed to insert record into %s: %w", s.name, err)
	}
	s.next++
	return rid, nil
}

// Delete removes the record named by rid.
func (s *Store) Delete(ctx context.Context, rid tuple.RecordID) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE store = ? AND page = ? AND slot = ?",
		storeKey(s.fileID), int64(rid.PageID), int64(rid.Slot))
	if err != nil {
		return fmt.Errorf("failed to delete %s from %s: %w", rid, s.name, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s from %s: %w", rid, s.name, heap.ErrDanglingRecord)
	}
	return nil
}

// Fetch implements heap.RecordStore.
func (s *Store) Fetch(rid tuple.RecordID) ([]byte, error) {
	return s.FetchContext(context.Background(), rid)
}

// FetchContext returns the record image named by rid.
func (s *Store) FetchContext(ctx context.Context, rid tuple.RecordID) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM records WHERE store = ? AND page = ? AND slot = ?",
		storeKey(s.fileID), int64(rid.PageID), int64(rid.Slot)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("fetch %s from %s: %w", rid, s.name, heap.ErrDanglingRecord)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s from %s: %w", rid, s.name, err)
	}
	return data, nil
}

// Count returns the number of records in the store.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE store = ?", storeKey(s.fileID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Close closes the database if the store opened it.
func (s *Store) Close() error {
	if !s.ownsDB || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

var _ heap.RecordStore = (*Store)(nil)
