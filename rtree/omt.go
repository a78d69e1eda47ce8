package rtree

import "math"

// Load bulk-loads items using Overlap-Minimizing Top-down (OMT, §4.1.4).
// Inputs shorter than MinEntries fall back to one-by-one Insert, since OMT
// isn't worth the bookkeeping for a handful of items. Otherwise the new
// subtree is merged with whatever is already in the tree per §4.1.1: an
// empty tree is replaced outright, equal-height trees get a fresh shared
// root, and otherwise the smaller tree is inserted as a sub-node of the
// larger at the matching level.
func (t *Tree) Load(items []BBox) {
	if len(items) == 0 {
		return
	}
	if len(items) < t.minEntries {
		for _, item := range items {
			t.Insert(item)
		}
		return
	}

	built := t.buildOMT(items, t.maxEntries)
	t.size += len(items)
	defer t.invalidateDerived()

	switch {
	case isEmpty(t.root):
		t.root = built
	case built.height == t.root.height:
		newRoot := &node{
			leaf:     false,
			height:   built.height + 1,
			children: []*node{t.root, built},
		}
		newRoot.mbr = recalcMBR(newRoot)
		t.root = newRoot
	case built.height < t.root.height:
		t.insertSubtree(t.root, built)
	default:
		old := t.root
		t.root = built
		t.insertSubtree(built, old)
	}
}

// insertSubtree grafts small (shorter) into a node of large at the level
// matching small's height, choosing the child needing least enlargement at
// each level above that, then re-fitting MBRs on the way back up.
func (t *Tree) insertSubtree(large *node, small *node) {
	path := []*node{large}
	n := large
	for n.height > small.height+1 {
		best := 0
		bestEnlargement := math.Inf(1)
		for i, c := range n.children {
			enlargement := c.mbr.Enlargement(small.mbr)
			if enlargement < bestEnlargement {
				bestEnlargement = enlargement
				best = i
			}
		}
		n = n.children[best]
		path = append(path, n)
	}
	n.children = append(n.children, small)
	var split *node
	if len(n.children) > t.maxEntries {
		split = t.splitInternal(n)
	}
	t.adjustTree(path, split)
}

// buildOMT constructs a balanced subtree over items from scratch and
// returns its root.
func (t *Tree) buildOMT(items []BBox, m int) *node {
	n := len(items)
	if n <= m {
		leaf := &node{leaf: true, height: 1, entries: append([]BBox{}, items...)}
		leaf.mbr = recalcMBR(leaf)
		return leaf
	}

	height := int(math.Ceil(logBase(float64(n), float64(m))))
	if height < 1 {
		height = 1
	}
	mPrime := int(math.Ceil(float64(n) / math.Pow(float64(m), float64(height-1))))
	n1 := int(math.Ceil(float64(n)/float64(mPrime)) * math.Ceil(math.Sqrt(float64(mPrime))))
	n2 := int(math.Ceil(float64(n) / float64(mPrime)))
	if n1 < 1 {
		n1 = 1
	}
	if n2 < 1 {
		n2 = 1
	}

	children := make([]*node, 0, mPrime)
	for _, slab := range partitionBySlabs(items, n1) {
		for _, tile := range partitionByTiles(slab, n2) {
			children = append(children, t.buildOMT(tile, m))
		}
	}

	internal := &node{leaf: false, height: height, children: children}
	internal.mbr = recalcMBR(internal)
	return internal
}

// logBase is log_base(x); used for the target-height computation.
func logBase(x, base float64) float64 {
	if x <= 1 {
		return 0
	}
	return math.Log(x) / math.Log(base)
}

// partitionBySlabs splits items into ceil(n/slabSize) contiguous groups
// ordered by min_x, each of size slabSize (the last may be shorter), using
// a partial quickselect rather than a full sort.
func partitionBySlabs(items []BBox, slabSize int) [][]BBox {
	return partitionInto(items, slabSize, func(a, b BBox) bool { return a.Box.MinX < b.Box.MinX })
}

// partitionByTiles is partitionBySlabs over min_y, applied within a slab.
func partitionByTiles(items []BBox, tileSize int) [][]BBox {
	return partitionInto(items, tileSize, func(a, b BBox) bool { return a.Box.MinY < b.Box.MinY })
}

func partitionInto(items []BBox, groupSize int, less func(a, b BBox) bool) [][]BBox {
	if groupSize < 1 {
		groupSize = 1
	}
	work := append([]BBox{}, items...)
	var groups [][]BBox
	lo := 0
	for lo < len(work) {
		hi := len(work)
		remaining := hi - lo
		if remaining <= groupSize {
			groups = append(groups, work[lo:hi])
			break
		}
		k := lo + groupSize
		partialSort(work, lo, hi, k, less)
		groups = append(groups, work[lo:k])
		lo = k
	}
	return groups
}
