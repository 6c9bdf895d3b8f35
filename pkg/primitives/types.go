package primitives

import (
	"fmt"
	"hash/fnv"
)

// PageID names a page inside a record store or index file. It is encoded as a
// 4-byte signed integer wherever it appears on disk.
type PageID int32

// SlotID represents a slot number within a page (for tuple storage)
type SlotID int32

// FileID identifies a record store or index file. It is derived from the
// object's name so the same name always maps to the same id.
type FileID uint64

// HashCode represents a hash value (e.g., for keys, page IDs, etc.)
type HashCode uint64

// Sentinel values for invalid/unset identifiers
const (
	// InvalidPageID represents an invalid or unset page id
	InvalidPageID PageID = -1

	// InvalidSlotID represents an invalid or unset slot
	InvalidSlotID SlotID = -1

	InvalidFileID FileID = 0
)

func (p PageID) String() string {
	return fmt.Sprintf("PageID(%d)", int32(p))
}

func (f FileID) IsValid() bool {
	return f != InvalidFileID
}

func (f FileID) String() string {
	return fmt.Sprintf("FileID(%d)", uint64(f))
}

// NewFileID hashes an object name into a FileID using FNV-1a.
func NewFileID(name string) FileID {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return FileID(h.Sum64())
}
