package rtree

import (
	"container/heap"

	"docindex/bbox"
)

// Neighbor is one result of a k-NN traversal: the matched entry and its
// distance from the query point.
type Neighbor struct {
	Entry    BBox
	Distance float64
}

// knnItem is either a pending node or a pending leaf entry, ordered by the
// lower-bound distance from the query point to its box. Entries always sort
// before nodes of the same distance, since an entry's distance is exact and
// a node's is only a lower bound on its descendants.
type knnItem struct {
	dist  float64
	entry *BBox
	node  *node
}

type knnQueue []knnItem

func (q knnQueue) Len() int { return len(q) }
func (q knnQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].entry != nil && q[j].entry == nil
}
func (q knnQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *knnQueue) Push(x any)        { *q = append(*q, x.(knnItem)) }
func (q *knnQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// KNN performs a best-first nearest-neighbor traversal from point (§4.1.5),
// returning matches in non-decreasing distance order. count <= 0 means no
// limit; maxDistance < 0 means no cutoff. Either bound, or both, may apply.
func (t *Tree) KNN(point bbox.Point, count int, maxDistance float64) []Neighbor {
	if isEmpty(t.root) {
		return nil
	}

	q := &knnQueue{}
	heap.Init(q)
	heap.Push(q, knnItem{dist: t.root.mbr.DistanceToPoint(point), node: t.root})

	var out []Neighbor
	for q.Len() > 0 {
		if count > 0 && len(out) >= count {
			break
		}
		item := heap.Pop(q).(knnItem)
		if maxDistance >= 0 && item.dist > maxDistance {
			break
		}

		if item.entry != nil {
			out = append(out, Neighbor{Entry: *item.entry, Distance: item.dist})
			continue
		}

		n := item.node
		if n.leaf {
			for i := range n.entries {
				e := n.entries[i]
				heap.Push(q, knnItem{dist: e.Box.DistanceToPoint(point), entry: &e})
			}
			continue
		}
		for _, c := range n.children {
			heap.Push(q, knnItem{dist: c.mbr.DistanceToPoint(point), node: c})
		}
	}
	return out
}
