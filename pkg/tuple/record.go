package tuple

import (
	"encoding/binary"
	"fmt"

	"storevec/pkg/primitives"
)

// RecordIDSize is the on-page width of an encoded RecordID.
const RecordIDSize = 8

// RecordID names one record slot: the page containing the record and the slot
// within that page. It does not own the record's bytes.
type RecordID struct {
	PageID primitives.PageID
	Slot   primitives.SlotID
}

func NewRecordID(pageID primitives.PageID, slot primitives.SlotID) RecordID {
	return RecordID{PageID: pageID, Slot: slot}
}

func (rid RecordID) Equals(other RecordID) bool {
	return rid == other
}

// Compare orders record ids by page, then slot.
func (rid RecordID) Compare(other RecordID) int {
	switch {
	case rid.PageID < other.PageID:
		return -1
	case rid.PageID > other.PageID:
		return 1
	case rid.Slot < other.Slot:
		return -1
	case rid.Slot > other.Slot:
		return 1
	default:
		return 0
	}
}

func (rid RecordID) Hash() primitives.HashCode {
	return primitives.HashCode(uint64(uint32(rid.PageID))<<32 | uint64(uint32(rid.Slot))) // #nosec G115
}

func (rid RecordID) String() string {
	return fmt.Sprintf("RecordID(page=%d, slot=%d)", rid.PageID, rid.Slot)
}

// Encode writes the 8-byte layout at buf[off:]: bytes 0-3 hold the slot,
// bytes 4-7 the page id, both big-endian signed 32-bit integers.
// buf must have at least off+RecordIDSize bytes.
func (rid RecordID) Encode(buf []byte, off int) {
	binary.BigEndian.PutUint32(buf[off:], uint32(rid.Slot))     // #nosec G115
	binary.BigEndian.PutUint32(buf[off+4:], uint32(rid.PageID)) // #nosec G115
}

// DecodeRecordID is the inverse of RecordID.Encode.
func DecodeRecordID(buf []byte, off int) RecordID {
	return RecordID{
		Slot:   primitives.SlotID(int32(binary.BigEndian.Uint32(buf[off:]))),     // #nosec G115
		PageID: primitives.PageID(int32(binary.BigEndian.Uint32(buf[off+4:]))), // #nosec G115
	}
}
