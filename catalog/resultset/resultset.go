// Package resultset implements the result set that wraps a query's final
// docid set: intersect/union/difference, sort-with-stability, limit, and
// iteration. It is split out from package catalog so that package query
// can build a ResultSet directly (via Execute) without importing catalog
// and creating an import cycle; catalog uses the type from here.
package resultset

import "sort"

// DocId is a document identifier.
type DocId = int64

// Resolver maps a docid to its underlying object.
type Resolver func(DocId) (any, error)

// Sorter is satisfied by any index capable of ordering a set of docids;
// ResultSet.Sort delegates to it.
type Sorter interface {
	Sort(docids []DocId, reverse bool, limit *int, sortType string) ([]DocId, error)
}

// ResultSet is a docid container plus an optional resolver.
type ResultSet struct {
	docids   []DocId
	resolver Resolver
}

// New builds a ResultSet over ids, in the given order.
func New(ids []DocId, resolver Resolver) *ResultSet {
	return &ResultSet{docids: append([]DocId{}, ids...), resolver: resolver}
}

// Len returns numids, the current docid count.
func (r *ResultSet) Len() int { return len(r.docids) }

// All returns the ordered docid list.
func (r *ResultSet) All() []DocId { return append([]DocId{}, r.docids...) }

// Resolve looks up the object behind a docid, if a resolver was supplied.
func (r *ResultSet) Resolve(id DocId) (any, error) {
	if r.resolver == nil {
		return nil, nil
	}
	return r.resolver(id)
}

func toSet(ids []DocId) map[DocId]struct{} {
	s := make(map[DocId]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Intersect returns a new ResultSet holding only docids present in both.
func (r *ResultSet) Intersect(other *ResultSet) *ResultSet {
	otherSet := toSet(other.docids)
	var out []DocId
	for _, id := range r.docids {
		if _, ok := otherSet[id]; ok {
			out = append(out, id)
		}
	}
	return &ResultSet{docids: out, resolver: r.resolver}
}

// Union returns a new ResultSet holding every docid present in either,
// preserving r's order first, then other's not-already-present ids.
func (r *ResultSet) Union(other *ResultSet) *ResultSet {
	seen := toSet(r.docids)
	out := append([]DocId{}, r.docids...)
	for _, id := range other.docids {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return &ResultSet{docids: out, resolver: r.resolver}
}

// Difference returns a new ResultSet holding r's docids that are not in
// other.
func (r *ResultSet) Difference(other *ResultSet) *ResultSet {
	otherSet := toSet(other.docids)
	var out []DocId
	for _, id := range r.docids {
		if _, ok := otherSet[id]; !ok {
			out = append(out, id)
		}
	}
	return &ResultSet{docids: out, resolver: r.resolver}
}

// Sort delegates to index's Sort capability. A second and subsequent
// sort on the same ResultSet keeps ties in the prior order only if the
// index itself sorts stably within equal keys (StableSortByKey below is
// a helper for that); that is the index's contract, not this package's.
// ResultSet only feeds it the already-ordered docids and keeps them in
// the order the index returns.
func (r *ResultSet) Sort(index Sorter, reverse bool, limit *int, sortType string) error {
	sorted, err := index.Sort(r.docids, reverse, limit, sortType)
	if err != nil {
		return err
	}
	r.docids = sorted
	return nil
}

// Limit truncates the result set to at most n docids, returning the
// pre-truncation count.
func (r *ResultSet) Limit(n int) (numDocs int) {
	numDocs = len(r.docids)
	if n >= 0 && n < len(r.docids) {
		r.docids = append([]DocId{}, r.docids[:n]...)
	}
	return numDocs
}

// StableSortByKey is a helper for Sorter implementations: it sorts ids by
// a comparison key while leaving equal-key entries in their incoming
// relative order, satisfying the second-sort stability requirement.
func StableSortByKey(ids []DocId, less func(a, b DocId) bool) []DocId {
	out := append([]DocId{}, ids...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
