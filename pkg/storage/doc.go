// Package storage is the root of the record and index storage used by the
// indexed scan.
//
// Records are fixed-width byte images grouped into PageSize pages and named by
// tuple.RecordID. The sub-packages are the collaborators the scan consumes:
//
//   - [storevec/pkg/storage/heap]      – the RecordStore contract and an
//     in-memory slotted store.
//   - [storevec/pkg/storage/sqlstore]  – a SQLite-backed RecordStore.
//   - [storevec/pkg/storage/index]     – index keys and an ordered B-tree
//     index with a pull cursor and pin accounting.
package storage

// PageSize is the size of each page in bytes (4KB).
const PageSize = 4096
