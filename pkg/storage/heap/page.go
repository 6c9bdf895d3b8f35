package heap

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"storevec/pkg/primitives"
	"storevec/pkg/storage"
)

// Page is one fixed-size page of equally sized record slots. Slot i occupies
// bytes [i*recordSize, (i+1)*recordSize) of data. The live bitmap tracks
// which slots hold a record; deleting a slot only clears its bit.
type Page struct {
	id         primitives.PageID
	data       []byte
	recordSize int
	numSlots   primitives.SlotID
	live       *roaring.Bitmap
}

// SlotsPerPage returns how many records of recordSize bytes fit on one page.
func SlotsPerPage(recordSize int) primitives.SlotID {
	if recordSize <= 0 {
		return 0
	}
	return primitives.SlotID(storage.PageSize / recordSize) // #nosec G115
}

func newPage(id primitives.PageID, recordSize int) *Page {
	return &Page{
		id:         id,
		data:       make([]byte, storage.PageSize),
		recordSize: recordSize,
		numSlots:   SlotsPerPage(recordSize),
		live:       roaring.New(),
	}
}

func (p *Page) ID() primitives.PageID {
	return p.id
}

// NumEmptySlots returns the count of unoccupied slots on this page.
func (p *Page) NumEmptySlots() primitives.SlotID {
	return p.numSlots - primitives.SlotID(p.live.GetCardinality()) // #nosec G115
}

func (p *Page) isSlotUsed(slot primitives.SlotID) bool {
	return slot >= 0 && slot < p.numSlots && p.live.Contains(uint32(slot)) // #nosec G115
}

func (p *Page) findFirstEmptySlot() (primitives.SlotID, error) {
	for i := primitives.SlotID(0); i < p.numSlots; i++ {
		if !p.live.Contains(uint32(i)) { // #nosec G115
			return i, nil
		}
	}
	return primitives.InvalidSlotID, fmt.Errorf("page %d is full", p.id)
}

// insert copies rec into the first free slot.
func (p *Page) insert(rec []byte) (primitives.SlotID, error) {
	if len(rec) != p.recordSize {
		return primitives.InvalidSlotID, fmt.Errorf("record is %d bytes, page slots are %d", len(rec), p.recordSize)
	}
	slot, err := p.findFirstEmptySlot()
	if err != nil {
		return primitives.InvalidSlotID, err
	}
	off := int(slot) * p.recordSize
	copy(p.data[off:off+p.recordSize], rec)
	p.live.Add(uint32(slot)) // #nosec G115
	return slot, nil
}

// get returns a copy of the record in slot, or false when the slot is empty.
func (p *Page) get(slot primitives.SlotID) ([]byte, bool) {
	if !p.isSlotUsed(slot) {
		return nil, false
	}
	off := int(slot) * p.recordSize
	out := make([]byte, p.recordSize)
	copy(out, p.data[off:off+p.recordSize])
	return out, true
}

func (p *Page) remove(slot primitives.SlotID) bool {
	if !p.isSlotUsed(slot) {
		return false
	}
	p.live.Remove(uint32(slot)) // #nosec G115
	return true
}

// liveSlots returns the occupied slots in ascending order.
func (p *Page) liveSlots() []primitives.SlotID {
	out := make([]primitives.SlotID, 0, p.live.GetCardinality())
	it := p.live.Iterator()
	for it.HasNext() {
		out = append(out, primitives.SlotID(it.Next())) // #nosec G115
	}
	return out
}
