package index

import (
	"fmt"
	"math"

	"storevec/pkg/primitives"
	"storevec/pkg/tuple"
)

// Entry is one (key, record id) pair stored in an index.
type Entry struct {
	Key Key
	RID tuple.RecordID
}

// Equals checks if this entry is identical to another.
// Compares both the key value and the record location.
func (e Entry) Equals(other Entry) bool {
	if e.Key == nil || other.Key == nil {
		return e.Key == nil && other.Key == nil && e.RID == other.RID
	}
	c, err := e.Key.Compare(other.Key)
	return err == nil && c == 0 && e.RID == other.RID
}

func (e Entry) String() string {
	return fmt.Sprintf("(%v, %s)", e.Key, e.RID)
}

// minRID sorts before every real record id.
var minRID = tuple.NewRecordID(primitives.PageID(math.MinInt32), primitives.SlotID(math.MinInt32))

// Bound is one end of a key range.
type Bound struct {
	Key       Key
	Inclusive bool
}

// Range is a key interval. A nil Lo or Hi leaves that side unbounded.
type Range struct {
	Lo *Bound
	Hi *Bound
}

// FullRange matches every key.
func FullRange() Range {
	return Range{}
}

func (r Range) String() string {
	lo, hi := "(-inf", "+inf)"
	if r.Lo != nil {
		lo = fmt.Sprintf("(%v", r.Lo.Key)
		if r.Lo.Inclusive {
			lo = fmt.Sprintf("[%v", r.Lo.Key)
		}
	}
	if r.Hi != nil {
		hi = fmt.Sprintf("%v)", r.Hi.Key)
		if r.Hi.Inclusive {
			hi = fmt.Sprintf("%v]", r.Hi.Key)
		}
	}
	return lo + ", " + hi
}

// Restrict narrows r by the condition "key OP k". NotEqual leaves r unchanged.
func (r Range) Restrict(op primitives.Predicate, k Key) (Range, error) {
	var err error
	switch op {
	case primitives.Equals:
		if r.Lo, err = tighterLo(r.Lo, &Bound{Key: k, Inclusive: true}); err != nil {
			return r, err
		}
		r.Hi, err = tighterHi(r.Hi, &Bound{Key: k, Inclusive: true})
	case primitives.GreaterThan:
		r.Lo, err = tighterLo(r.Lo, &Bound{Key: k})
	case primitives.GreaterThanOrEqual:
		r.Lo, err = tighterLo(r.Lo, &Bound{Key: k, Inclusive: true})
	case primitives.LessThan:
		r.Hi, err = tighterHi(r.Hi, &Bound{Key: k})
	case primitives.LessThanOrEqual:
		r.Hi, err = tighterHi(r.Hi, &Bound{Key: k, Inclusive: true})
	}
	return r, err
}

func tighterLo(cur, next *Bound) (*Bound, error) {
	if cur == nil {
		return next, nil
	}
	c, err := next.Key.Compare(cur.Key)
	if err != nil {
		return cur, err
	}
	if c > 0 || (c == 0 && !next.Inclusive) {
		return next, nil
	}
	return cur, nil
}

func tighterHi(cur, next *Bound) (*Bound, error) {
	if cur == nil {
		return next, nil
	}
	c, err := next.Key.Compare(cur.Key)
	if err != nil {
		return cur, err
	}
	if c < 0 || (c == 0 && !next.Inclusive) {
		return next, nil
	}
	return cur, nil
}

// belowLo reports whether k sorts before the range's lower end.
func (r Range) belowLo(k Key) (bool, error) {
	if r.Lo == nil {
		return false, nil
	}
	c, err := k.Compare(r.Lo.Key)
	if err != nil {
		return false, err
	}
	return c < 0 || (c == 0 && !r.Lo.Inclusive), nil
}

// aboveHi reports whether k sorts after the range's upper end.
func (r Range) aboveHi(k Key) (bool, error) {
	if r.Hi == nil {
		return false, nil
	}
	c, err := k.Compare(r.Hi.Key)
	if err != nil {
		return false, err
	}
	return c > 0 || (c == 0 && !r.Hi.Inclusive), nil
}

// Contains reports whether k lies inside r.
func (r Range) Contains(k Key) (bool, error) {
	below, err := r.belowLo(k)
	if err != nil || below {
		return false, err
	}
	above, err := r.aboveHi(k)
	return !above, err
}
