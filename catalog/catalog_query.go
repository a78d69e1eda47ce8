package catalog

import (
	"fmt"

	"docindex/query"
	"docindex/queryparse"
)

// CatalogQuery runs a string or pre-built query tree against a Catalog's
// indexes: parse (if needed), execute, optionally sort, optionally limit.
type CatalogQuery struct {
	catalog *Catalog
}

// NewCatalogQuery binds a façade to catalog.
func NewCatalogQuery(catalog *Catalog) *CatalogQuery {
	return &CatalogQuery{catalog: catalog}
}

func (q *CatalogQuery) resolve(name string) (query.ComparableIndex, error) {
	idx, ok := q.catalog.Index(name)
	if !ok {
		return nil, fmt.Errorf("catalog: unknown index %q", name)
	}
	queryable, ok := idx.(query.ComparableIndex)
	if !ok {
		return nil, fmt.Errorf("catalog: index %q does not support the query algebra", name)
	}
	return queryable, nil
}

// Options configures a single CatalogQuery.Run call.
type Options struct {
	Optimize bool
	Bindings query.Bindings
	Resolver query.Resolver

	SortBy   string // index name to sort by, "" for no sort
	Reverse  bool
	SortType string
	Limit    int // negative means unlimited
}

// Run accepts either a query string (parsed against the catalog's
// indexes) or an already-built query.Node, executes it, optionally sorts
// by a named index, and truncates to opts.Limit. It returns the
// pre-truncation docid count when truncation occurred, and the count
// after otherwise — the spec fixes numdocs as the pre-limit count on
// truncation rather than min(numdocs, limit).
func (q *CatalogQuery) Run(queryOrExpr any, opts Options) (numDocs int, docids []int64, err error) {
	node, err := q.toNode(queryOrExpr)
	if err != nil {
		return 0, nil, err
	}

	rs, err := query.Execute(node, query.ExecuteOptions{
		Optimize: opts.Optimize,
		Bindings: opts.Bindings,
		Resolver: opts.Resolver,
	})
	if err != nil {
		return 0, nil, err
	}

	if opts.SortBy != "" {
		idx, ok := q.catalog.Index(opts.SortBy)
		if !ok {
			return 0, nil, fmt.Errorf("catalog: unknown sort index %q", opts.SortBy)
		}
		sorter, ok := idx.(Sorter)
		if !ok {
			return 0, nil, fmt.Errorf("catalog: index %q is not sort-capable", opts.SortBy)
		}
		// The index's Sort accepts its own limit hint, but CatalogQuery
		// applies the authoritative numdocs-aware limit itself below, so
		// no limit is passed through here.
		if err := rs.Sort(sorter, opts.Reverse, nil, opts.SortType); err != nil {
			return 0, nil, err
		}
	}

	numDocs = rs.Len()
	if opts.Limit >= 0 {
		numDocs = rs.Limit(opts.Limit)
	}
	return numDocs, rs.All(), nil
}

func (q *CatalogQuery) toNode(queryOrExpr any) (query.Node, error) {
	switch v := queryOrExpr.(type) {
	case query.Node:
		return v, nil
	case string:
		return queryparse.Parse(v, q.resolve)
	default:
		return nil, fmt.Errorf("catalog: query must be a string or a query.Node, got %T", queryOrExpr)
	}
}
