// Package catalog implements the named-index collection that fans
// index_doc/unindex_doc/reset across every registered index, and the
// CatalogQuery façade that parses-or-accepts a query, executes it,
// optionally sorts, and truncates to a limit.
package catalog

import "docindex/query"

// Index is the capability every concrete index satisfies regardless of
// what it's indexed on (§6.1): document fan-out, bookkeeping
// introspection, and a flush hook for dropping derived caches. A
// geometry-valued index (spatial.Index) belongs in a Catalog and
// participates in IndexDoc/UnindexDoc/Reset fan-out and Stats() just
// like a scalar attribute index, even though "Eq"/"Lt"/etc. have no
// meaning for it — it answers geometric queries through its own
// Apply/KNN surface instead of the query algebra.
type Index interface {
	IndexDoc(docid int64, obj any) error
	UnindexDoc(docid int64)
	ReindexDoc(docid int64, obj any) error
	Reset()

	Indexed() []int64
	NotIndexed() []int64
	IndexedCount() int
	DocidsCount() int

	Flush(deep bool)
}

// QueryableIndex is the subset of registered indexes that also
// participate in the boolean query algebra (§4.3): comparator dispatch
// via query.ComparableIndex. CatalogQuery.resolve requires this capability
// for any index name referenced from a parsed or built query tree.
type QueryableIndex interface {
	Index
	query.ComparableIndex
}

// Sorter is satisfied by an Index that can also order a set of docids;
// not every index is sort-capable (e.g. a pure membership index), so it
// is kept separate from Index rather than folded in.
type Sorter interface {
	Sort(docids []int64, reverse bool, limit *int, sortType string) ([]int64, error)
}
