// Package catalog maps store and index names to the open collaborators an
// indexed scan consumes.
package catalog

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"storevec/pkg/dberror"
	"storevec/pkg/logging"
	"storevec/pkg/storage/heap"
	"storevec/pkg/storage/index"
)

// Opener opens a new handle on a registered index.
type Opener interface {
	Open() (index.Handle, error)
}

type indexInfo struct {
	kind   index.IndexType
	opener Opener
}

// lookupMetrics tracks lookup outcomes for observability
type lookupMetrics struct {
	hits   atomic.Int64
	misses atomic.Int64
}

// Catalog is a thread-safe registry of record stores and indexes by name.
type Catalog struct {
	mutex   sync.RWMutex
	stores  map[string]heap.RecordStore
	indexes map[string]indexInfo
	metrics lookupMetrics
}

func New() *Catalog {
	return &Catalog{
		stores:  make(map[string]heap.RecordStore),
		indexes: make(map[string]indexInfo),
	}
}

// RegisterStore adds s under s.Name(). Names must be unique.
func (c *Catalog) RegisterStore(s heap.RecordStore) error {
	if s == nil {
		return dberror.New(dberror.ErrCategoryUser, dberror.CodeNullArgument, "cannot register a nil store")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.stores[s.Name()]; exists {
		return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSetup, "store %q already registered", s.Name())
	}
	c.stores[s.Name()] = s
	logging.WithComponent("catalog").Debug("store registered", "store", s.Name())
	return nil
}

// RegisterIndex adds an index of the given kind under name.
func (c *Catalog) RegisterIndex(name string, kind index.IndexType, ix Opener) error {
	if ix == nil {
		return dberror.New(dberror.ErrCategoryUser, dberror.CodeNullArgument, "cannot register a nil index")
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, exists := c.indexes[name]; exists {
		return dberror.Newf(dberror.ErrCategoryUser, dberror.CodeSetup, "index %q already registered", name)
	}
	c.indexes[name] = indexInfo{kind: kind, opener: ix}
	logging.WithComponent("catalog").Debug("index registered", "index", name, "kind", string(kind))
	return nil
}

// OpenStore returns the store registered under name.
func (c *Catalog) OpenStore(name string) (heap.RecordStore, error) {
	c.mutex.RLock()
	s, ok := c.stores[name]
	c.mutex.RUnlock()

	if !ok {
		c.metrics.misses.Add(1)
		return nil, dberror.Newf(dberror.ErrCategorySetup, dberror.CodeStoreNotFound, "no record store named %q", name)
	}
	c.metrics.hits.Add(1)
	return s, nil
}

// OpenIndex opens a new handle on the index registered under name. The
// registered kind must match kind.
func (c *Catalog) OpenIndex(kind index.IndexType, name string) (index.Handle, error) {
	c.mutex.RLock()
	info, ok := c.indexes[name]
	c.mutex.RUnlock()

	if !ok {
		c.metrics.misses.Add(1)
		return nil, dberror.Newf(dberror.ErrCategorySetup, dberror.CodeIndexNotFound, "no index named %q", name)
	}
	c.metrics.hits.Add(1)

	if info.kind != kind {
		return nil, dberror.Newf(dberror.ErrCategorySetup, dberror.CodeIndexSetup,
			"index %q is %s, not %s", name, info.kind, kind)
	}

	h, err := info.opener.Open()
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeIndexSetup, "open index", "catalog").WithDetail(name)
	}
	return h, nil
}

// StoreNames returns the registered store names in sorted order.
func (c *Catalog) StoreNames() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return slices.Sorted(maps.Keys(c.stores))
}

// IndexNames returns the registered index names in sorted order.
func (c *Catalog) IndexNames() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return slices.Sorted(maps.Keys(c.indexes))
}

// LookupStats returns the number of successful and failed lookups.
func (c *Catalog) LookupStats() (hits, misses int64) {
	return c.metrics.hits.Load(), c.metrics.misses.Load()
}
