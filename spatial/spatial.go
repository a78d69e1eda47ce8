// Package spatial wraps the R-tree engine with document bookkeeping: a
// discriminator that extracts a Geometry from an indexed object, a
// reverse index from docid to geometry, a not-indexed set, and a
// concurrency-safe document counter. It satisfies catalog.Index; it has no
// comparator methods, so it does not satisfy query.ComparableIndex.
package spatial

import (
	"errors"
	"fmt"
	"sync/atomic"

	"docindex/bbox"
	"docindex/rtree"
)

// ErrNotGeometry is returned when the discriminator yields a value that
// does not implement bbox.Geometry.
var ErrNotGeometry = errors.New("spatial: discriminated value is not a geometry")

// ErrInvalidPredicate is returned by Apply for an unrecognized predicate
// name.
var ErrInvalidPredicate = errors.New("spatial: invalid predicate")

// Discriminator extracts an indexable value from obj. Returning ok=false
// means "do not index this object".
type Discriminator func(obj any) (value any, ok bool)

// AttributeDiscriminator builds a Discriminator that reads a struct field
// via a getter, for the common "index by attribute" case; it's supplied
// as a convenience since Go has no dynamic attribute lookup.
func AttributeDiscriminator(get func(obj any) (any, bool)) Discriminator {
	return Discriminator(get)
}

// Index is a spatial index over bbox.Geometry-valued objects.
type Index struct {
	name          string
	discriminator Discriminator
	evaluator     bbox.PredicateEvaluator

	tree       *rtree.Tree
	revIndex   map[int64]bbox.Geometry
	notIndexed map[int64]struct{}
	count      int64 // atomic
}

// New creates an empty spatial index. maxEntries is forwarded to the
// underlying R-tree (§4.1); evaluator backs Apply's predicate filtering.
func New(name string, discriminator Discriminator, evaluator bbox.PredicateEvaluator, maxEntries int) *Index {
	return &Index{
		name:          name,
		discriminator: discriminator,
		evaluator:     evaluator,
		tree:          rtree.New(maxEntries),
		revIndex:      make(map[int64]bbox.Geometry),
		notIndexed:    make(map[int64]struct{}),
	}
}

// Name returns the index's bound name.
func (idx *Index) Name() string { return idx.name }

// discriminate runs the discriminator and validates its result is a
// Geometry when present.
func (idx *Index) discriminate(obj any) (bbox.Geometry, bool, error) {
	v, ok := idx.discriminator(obj)
	if !ok || v == nil {
		return nil, false, nil
	}
	g, ok := v.(bbox.Geometry)
	if !ok {
		return nil, false, fmt.Errorf("%w: %T", ErrNotGeometry, v)
	}
	return g, true, nil
}

// IndexDoc indexes obj under docid, using reindex semantics: any prior
// BBox for docid is removed from the tree before the new one is
// inserted.
func (idx *Index) IndexDoc(docid int64, obj any) error {
	geom, ok, err := idx.discriminate(obj)
	if err != nil {
		return err
	}

	_, wasIndexed := idx.revIndex[docid]
	if wasIndexed {
		idx.tree.Remove(rtree.BBox{Key: docid, Box: idx.revIndex[docid].Bounds()})
		delete(idx.revIndex, docid)
		atomic.AddInt64(&idx.count, -1)
	} else if _, wasNotIndexed := idx.notIndexed[docid]; wasNotIndexed {
		delete(idx.notIndexed, docid)
	}

	if !ok {
		idx.notIndexed[docid] = struct{}{}
		return nil
	}

	idx.tree.Insert(rtree.BBox{Key: docid, Box: geom.Bounds()})
	idx.revIndex[docid] = geom
	atomic.AddInt64(&idx.count, 1)
	return nil
}

// ReindexDoc is IndexDoc under another name, matching the capability
// interface's separate verb for "this object already exists, refresh
// it" call sites.
func (idx *Index) ReindexDoc(docid int64, obj any) error { return idx.IndexDoc(docid, obj) }

// UnindexDoc removes docid from the index entirely.
func (idx *Index) UnindexDoc(docid int64) {
	if geom, ok := idx.revIndex[docid]; ok {
		idx.tree.Remove(rtree.BBox{Key: docid, Box: geom.Bounds()})
		delete(idx.revIndex, docid)
		atomic.AddInt64(&idx.count, -1)
		return
	}
	delete(idx.notIndexed, docid)
}

// Reset returns the index to its empty state.
func (idx *Index) Reset() {
	idx.tree = rtree.New(idx.tree.MaxEntries())
	idx.revIndex = make(map[int64]bbox.Geometry)
	idx.notIndexed = make(map[int64]struct{})
	atomic.StoreInt64(&idx.count, 0)
}

// Indexed returns every currently indexed docid.
func (idx *Index) Indexed() []int64 {
	out := make([]int64, 0, len(idx.revIndex))
	for id := range idx.revIndex {
		out = append(out, id)
	}
	return out
}

// NotIndexed returns every docid whose discriminant is absent.
func (idx *Index) NotIndexed() []int64 {
	out := make([]int64, 0, len(idx.notIndexed))
	for id := range idx.notIndexed {
		out = append(out, id)
	}
	return out
}

// IndexedCount returns the number of currently indexed docids.
func (idx *Index) IndexedCount() int { return int(atomic.LoadInt64(&idx.count)) }

// DocidsCount returns the total number of docids this index has an
// opinion about, indexed or not.
func (idx *Index) DocidsCount() int { return len(idx.revIndex) + len(idx.notIndexed) }

// Flush drops any transient accelerator; the R-tree's own derived state
// (none currently cached beyond the tree itself) already self-invalidates
// on every mutating call, so this is a pass-through hook for callers that
// expect the capability interface's flush verb to exist.
func (idx *Index) Flush(deep bool) {}

// Intersection yields docids whose BBox intersects bounds — cheap,
// R-tree-only, no exact geometry evaluation.
func (idx *Index) Intersection(bounds bbox.Box) []int64 {
	hits := idx.tree.Search(bounds)
	out := make([]int64, len(hits))
	for i, h := range hits {
		out[i] = h.Key
	}
	return out
}

// Apply fetches BBox-intersecting candidates, then filters them against
// the named geometric predicate using the configured evaluator.
func (idx *Index) Apply(geom bbox.Geometry, predicate bbox.Predicate) ([]int64, error) {
	if !predicate.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPredicate, predicate)
	}
	candidateIds := idx.Intersection(geom.Bounds())
	candidates := make([]bbox.Geometry, len(candidateIds))
	for i, id := range candidateIds {
		candidates[i] = idx.revIndex[id]
	}
	matches, err := idx.evaluator.Evaluate(predicate, geom, candidates)
	if err != nil {
		return nil, err
	}
	var out []int64
	for i, ok := range matches {
		if ok {
			out = append(out, candidateIds[i])
		}
	}
	return out, nil
}

// Neighbor pairs a docid with its distance from a KNN query point.
type Neighbor struct {
	DocId    int64
	Distance float64
}

// KNN is a thin wrapper over the tree's best-first k-NN traversal.
// count <= 0 means unbounded count; maxDistance < 0 means unbounded
// radius.
func (idx *Index) KNN(point bbox.Point, count int, maxDistance float64) []Neighbor {
	hits := idx.tree.KNN(point, count, maxDistance)
	out := make([]Neighbor, len(hits))
	for i, h := range hits {
		out[i] = Neighbor{DocId: h.Entry.Key, Distance: h.Distance}
	}
	return out
}

// ApplyNear is an alias for KNN kept for symmetry with the spec's naming.
func (idx *Index) ApplyNear(point bbox.Point, count int, maxDistance float64) []Neighbor {
	return idx.KNN(point, count, maxDistance)
}

// KNNIndex returns the matching docid set alongside an ephemeral
// field-capable sort index mapping each docid to its distance, so a
// caller can intersect it with another query's result and then sort the
// combination by proximity.
func (idx *Index) KNNIndex(point bbox.Point, count int, maxDistance float64) (map[int64]struct{}, *DistanceSortIndex) {
	hits := idx.KNN(point, count, maxDistance)
	docids := make(map[int64]struct{}, len(hits))
	distances := make(map[int64]float64, len(hits))
	for _, h := range hits {
		docids[h.DocId] = struct{}{}
		distances[h.DocId] = h.Distance
	}
	return docids, &DistanceSortIndex{distances: distances}
}
