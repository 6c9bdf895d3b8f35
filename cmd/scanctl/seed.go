package main

import (
	"context"
	"fmt"

	"storevec/pkg/catalog"
	"storevec/pkg/config"
	"storevec/pkg/logging"
	"storevec/pkg/storage/heap"
	"storevec/pkg/storage/index"
	"storevec/pkg/storage/sqlstore"
	"storevec/pkg/tuple"
	"storevec/pkg/types"
	"storevec/pkg/vector"
)

const (
	storeName = "docs"
	indexName = "docs_by_id"
)

func docSchema(width int) *tuple.TupleDescription {
	return tuple.MustNewTupleDesc(
		[]types.Type{types.IntType, types.StringType, types.VectorType},
		[]int{0, width, 0},
		[]string{"id", "title", "embedding"},
	)
}

// demoDoc returns document i. Its embedding sits at distance i from the
// origin along the first axis, with a small wobble on the second.
func demoDoc(td *tuple.TupleDescription, i int) (*tuple.Tuple, error) {
	v, err := vector.Vector{}.With(0, int32(i))
	if err != nil {
		return nil, err
	}
	if v, err = v.With(1, int32(i%3)); err != nil {
		return nil, err
	}
	return tuple.NewBuilder(td).
		AddInt(int64(i)).
		AddString(fmt.Sprintf("doc-%03d", i)).
		AddVector(v).
		Build()
}

type inserter func(context.Context, *tuple.Tuple) (tuple.RecordID, error)

// seeded holds the demo catalog and what must be released afterwards.
type seeded struct {
	catalog *catalog.Catalog
	schema  *tuple.TupleDescription
	index   *index.BTree
	closeFn func() error
}

func (s *seeded) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// seed builds the demo store, in memory or in SQLite depending on cfg, and
// indexes every document by id.
func seed(ctx context.Context, cfg *config.Config, rows int) (*seeded, error) {
	td := docSchema(cfg.Storage.StringWidth)
	out := &seeded{catalog: catalog.New(), schema: td}

	var (
		store  heap.RecordStore
		insert inserter
	)
	if cfg.Storage.SQLitePath != "" {
		s, err := sqlstore.Open(ctx, cfg.Storage.SQLitePath, storeName, td)
		if err != nil {
			return nil, err
		}
		store, insert, out.closeFn = s, s.Insert, s.Close
	} else {
		s, err := heap.NewMemStore(storeName, td)
		if err != nil {
			return nil, err
		}
		store = s
		insert = func(_ context.Context, t *tuple.Tuple) (tuple.RecordID, error) { return s.Insert(t) }
	}

	ix, err := index.NewBTree(indexName, types.IntType, cfg.Storage.BTreeDegree)
	if err != nil {
		out.Close()
		return nil, err
	}
	out.index = ix

	for i := 1; i <= rows; i++ {
		doc, err := demoDoc(td, i)
		if err != nil {
			out.Close()
			return nil, err
		}
		if _, err := insert(ctx, doc); err != nil {
			out.Close()
			return nil, err
		}
		if err := ix.InsertTuple(doc, 1); err != nil {
			out.Close()
			return nil, err
		}
	}

	if err := out.catalog.RegisterStore(store); err != nil {
		out.Close()
		return nil, err
	}
	if err := out.catalog.RegisterIndex(indexName, index.BTreeIndex, ix); err != nil {
		out.Close()
		return nil, err
	}

	logging.WithStore(storeName).Info("demo table seeded", "rows", rows, "index", indexName, "degree", cfg.Storage.BTreeDegree)
	return out, nil
}
