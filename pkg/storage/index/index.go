// Package index provides index keys, key ranges and an in-memory ordered
// B-tree index whose cursors are pulled one entry at a time.
package index

import (
	"strings"

	"storevec/pkg/dberror"
	"storevec/pkg/types"
)

type IndexType string

const (
	BTreeIndex IndexType = "BTREE"
	HashIndex  IndexType = "HASH"
)

func ParseIndexType(str string) (IndexType, error) {
	switch strings.ToUpper(str) {
	case "BTREE":
		return BTreeIndex, nil

	case "HASH":
		return HashIndex, nil

	default:
		return "", dberror.Newf(dberror.ErrCategoryUser, dberror.CodeUnknownIndexType,
			"unknown index type %q", str)
	}
}

// Handle is an open index. While open it holds the index header page pinned.
type Handle interface {
	// KeyType returns the kind of keys this index holds.
	KeyType() types.Type

	// OpenCursor positions a new cursor at the first entry inside r.
	OpenCursor(r Range) (Cursor, error)

	// Close releases the handle and unpins the header page.
	Close() error
}

// Cursor yields index entries in ascending (key, record id) order.
type Cursor interface {
	// Next returns the next entry, or ok=false when the range is exhausted.
	Next() (e Entry, ok bool, err error)

	// Close releases the cursor and unpins its leaf page.
	Close() error
}
