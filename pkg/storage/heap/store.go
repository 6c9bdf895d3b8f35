// Package heap defines how the scan reaches stored records and provides an
// in-memory slotted record store.
package heap

import (
	"errors"

	"storevec/pkg/tuple"
)

// ErrDanglingRecord is returned by RecordStore.Fetch when the record id no
// longer names a live record, typically because it was deleted after the
// index entry was written.
var ErrDanglingRecord = errors.New("dangling record id")

// RecordStore is the read side of a backing record store.
type RecordStore interface {
	// Name returns the name the store is registered under.
	Name() string

	// Fetch returns a copy of the record image named by rid. It returns an
	// error wrapping ErrDanglingRecord when rid does not resolve.
	Fetch(rid tuple.RecordID) ([]byte, error)
}
