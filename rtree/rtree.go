// Package rtree implements an R-tree variant supporting bulk loading via
// Overlap-Minimizing Top-down (OMT) construction, incremental insert and
// delete with R*-style splits, bounding-box search, and best-first k-NN
// traversal. It is the spatial engine underneath the spatial index
// package; it has no notion of documents, discriminators, or a persistent
// store, only bounding boxes tagged with an integer key.
package rtree

import (
	"math"

	"docindex/bbox"
)

// DefaultMaxEntries is used when a non-positive value is given to New.
const DefaultMaxEntries = 9

// minMaxEntries is the absolute floor below which a tree degenerates into a
// linked list; the spec clamps max_entries to at least 4.
const minMaxEntries = 4

// BBox is a single leaf entry: the DocId of the referenced document plus
// its bounding rectangle.
type BBox struct {
	Key int64
	Box bbox.Box
}

// node is either a leaf (entries populated) or an internal node (children
// populated). height 1 is a leaf; the root's height is the tree depth.
type node struct {
	mbr      bbox.Box
	height   int
	leaf     bool
	entries  []BBox
	children []*node
}

// Tree is an R-tree over integer-keyed bounding boxes.
type Tree struct {
	root        *node
	maxEntries  int
	minEntries  int
	size        int
}

// New creates an empty tree. maxEntries below 4 is clamped to 4; zero or
// negative uses DefaultMaxEntries.
func New(maxEntries int) *Tree {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if maxEntries < minMaxEntries {
		maxEntries = minMaxEntries
	}
	minEntries := int(math.Ceil(float64(maxEntries) * 0.4))
	if minEntries < 2 {
		minEntries = 2
	}
	return &Tree{
		root:       &node{leaf: true, height: 1},
		maxEntries: maxEntries,
		minEntries: minEntries,
	}
}

// Len returns the number of leaf entries currently in the tree.
func (t *Tree) Len() int { return t.size }

// Height returns the tree's current depth (a single-leaf tree has height 1).
func (t *Tree) Height() int { return t.root.height }

// MaxEntries returns the configured fanout.
func (t *Tree) MaxEntries() int { return t.maxEntries }

// MinEntries returns the derived minimum fanout.
func (t *Tree) MinEntries() int { return t.minEntries }

func isEmpty(n *node) bool {
	if n.leaf {
		return len(n.entries) == 0
	}
	return len(n.children) == 0
}

func recalcMBR(n *node) bbox.Box {
	if n.leaf {
		if len(n.entries) == 0 {
			return bbox.Box{}
		}
		b := n.entries[0].Box
		for _, e := range n.entries[1:] {
			b = b.Expand(e.Box)
		}
		return b
	}
	if len(n.children) == 0 {
		return bbox.Box{}
	}
	b := n.children[0].mbr
	for _, c := range n.children[1:] {
		b = b.Expand(c.mbr)
	}
	return b
}

// Insert adds bbox to the tree, splitting nodes and growing the tree's
// height as needed.
func (t *Tree) Insert(box BBox) {
	path := t.chooseSubtreePath(box.Box)
	leaf := path[len(path)-1]
	leaf.entries = append(leaf.entries, box)
	t.size++

	var split *node
	if len(leaf.entries) > t.maxEntries {
		split = t.splitLeaf(leaf)
	}
	t.adjustTree(path, split)
	t.invalidateDerived()
}

// chooseSubtreePath walks from the root to the leaf that should receive
// box, returning every node visited (root first, leaf last). At each level
// it picks the child requiring least MBR enlargement, breaking ties by
// smallest current area.
func (t *Tree) chooseSubtreePath(box bbox.Box) []*node {
	path := []*node{t.root}
	n := t.root
	for !n.leaf {
		best := 0
		bestEnlargement := math.Inf(1)
		bestArea := math.Inf(1)
		for i, c := range n.children {
			enlargement := c.mbr.Enlargement(box)
			area := c.mbr.Area()
			if enlargement < bestEnlargement || (enlargement == bestEnlargement && area < bestArea) {
				bestEnlargement = enlargement
				bestArea = area
				best = i
			}
		}
		n = n.children[best]
		path = append(path, n)
	}
	return path
}

// adjustTree refits MBRs along path (root first, leaf last) and, if a split
// occurred at the bottom, propagates new siblings upward, growing the tree
// by one level if the root itself splits.
func (t *Tree) adjustTree(path []*node, split *node) {
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		n.mbr = recalcMBR(n)
		if split == nil {
			continue
		}
		if i == 0 {
			// The root split; grow the tree.
			newRoot := &node{
				leaf:     false,
				height:   n.height + 1,
				children: []*node{n, split},
			}
			newRoot.mbr = recalcMBR(newRoot)
			t.root = newRoot
			split = nil
			continue
		}
		parent := path[i-1]
		parent.children = append(parent.children, split)
		split = nil
		if len(parent.children) > t.maxEntries {
			split = t.splitInternal(parent)
		}
	}
}

// Remove deletes the leaf entry whose Key matches box.Key, reporting
// whether an entry was removed.
func (t *Tree) Remove(box BBox) bool {
	removed, _ := t.remove(t.root, box)
	if removed {
		t.size--
		if isEmpty(t.root) {
			t.root = &node{leaf: true, height: 1}
		}
		t.invalidateDerived()
	}
	return removed
}

// remove performs the depth-first search-and-condense described in
// §4.1.1: it only descends into nodes whose MBR intersects the target,
// drops empty children on the way back up, and refits MBRs.
func (t *Tree) remove(n *node, box BBox) (bool, bool) {
	if n.leaf {
		for i, e := range n.entries {
			if e.Key == box.Key {
				n.entries = append(n.entries[:i], n.entries[i+1:]...)
				n.mbr = recalcMBR(n)
				return true, len(n.entries) == 0
			}
		}
		return false, false
	}

	for i, c := range n.children {
		if !c.mbr.Contains(box.Box) && !c.mbr.Intersects(box.Box) {
			continue
		}
		removed, childEmpty := t.remove(c, box)
		if !removed {
			continue
		}
		if childEmpty {
			n.children = append(n.children[:i], n.children[i+1:]...)
		}
		n.mbr = recalcMBR(n)
		return true, len(n.children) == 0
	}
	return false, false
}

// Search returns every leaf entry whose box intersects the query
// rectangle, with no duplicates.
func (t *Tree) Search(query bbox.Box) []BBox {
	var out []BBox
	t.search(t.root, query, &out)
	return out
}

func (t *Tree) search(n *node, query bbox.Box, out *[]BBox) {
	if n.leaf {
		for _, e := range n.entries {
			if e.Box.Intersects(query) {
				*out = append(*out, e)
			}
		}
		return
	}
	for _, c := range n.children {
		if !c.mbr.Intersects(query) {
			continue
		}
		if query.Contains(c.mbr) {
			// The query fully covers this subtree: every descendant
			// matches, so stream them without further intersection tests.
			t.collectAll(c, out)
			continue
		}
		t.search(c, query, out)
	}
}

func (t *Tree) collectAll(n *node, out *[]BBox) {
	if n.leaf {
		*out = append(*out, n.entries...)
		return
	}
	for _, c := range n.children {
		t.collectAll(c, out)
	}
}

// All streams every leaf entry in the tree.
func (t *Tree) All() []BBox {
	var out []BBox
	t.collectAll(t.root, &out)
	return out
}

// invalidateDerived is the hook mutating operations call to drop any
// cached accelerator. Insert/Remove/Load all route through it; there is
// currently nothing to invalidate, so it is a single choke point for a
// future accelerator.
func (t *Tree) invalidateDerived() {}
