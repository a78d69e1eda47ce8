package rtree

import (
	"math"
	"sort"

	"docindex/bbox"
)

// splitLeaf splits an overflowing leaf (R*-style, §4.1.2) and returns the
// new sibling; n is mutated in place to hold the first group.
func (t *Tree) splitLeaf(n *node) *node {
	entries := n.entries
	boxes := make([]bbox.Box, len(entries))
	for i, e := range entries {
		boxes[i] = e.Box
	}
	axis := t.chooseSplitAxis(boxes)
	sortEntriesByAxis(entries, axis)
	index := t.chooseSplitIndex(boxesOf(entries))

	left := append([]BBox{}, entries[:index]...)
	right := append([]BBox{}, entries[index:]...)

	n.entries = left
	n.mbr = recalcMBR(n)
	sibling := &node{leaf: true, height: n.height, entries: right}
	sibling.mbr = recalcMBR(sibling)
	return sibling
}

// splitInternal splits an overflowing internal node the same way, over its
// children's MBRs.
func (t *Tree) splitInternal(n *node) *node {
	children := n.children
	boxes := make([]bbox.Box, len(children))
	for i, c := range children {
		boxes[i] = c.mbr
	}
	axis := t.chooseSplitAxis(boxes)
	sortChildrenByAxis(children, axis)
	index := t.chooseSplitIndex(childBoxesOf(children))

	left := append([]*node{}, children[:index]...)
	right := append([]*node{}, children[index:]...)

	n.children = left
	n.mbr = recalcMBR(n)
	sibling := &node{leaf: false, height: n.height, children: right}
	sibling.mbr = recalcMBR(sibling)
	return sibling
}

type axis int

const (
	axisX axis = iota
	axisY
)

func sortEntriesByAxis(entries []BBox, a axis) {
	sort.Slice(entries, func(i, j int) bool {
		if a == axisX {
			return entries[i].Box.MinX < entries[j].Box.MinX
		}
		return entries[i].Box.MinY < entries[j].Box.MinY
	})
}

func sortChildrenByAxis(children []*node, a axis) {
	sort.Slice(children, func(i, j int) bool {
		if a == axisX {
			return children[i].mbr.MinX < children[j].mbr.MinX
		}
		return children[i].mbr.MinY < children[j].mbr.MinY
	})
}

func boxesOf(entries []BBox) []bbox.Box {
	boxes := make([]bbox.Box, len(entries))
	for i, e := range entries {
		boxes[i] = e.Box
	}
	return boxes
}

func childBoxesOf(children []*node) []bbox.Box {
	boxes := make([]bbox.Box, len(children))
	for i, c := range children {
		boxes[i] = c.mbr
	}
	return boxes
}

// chooseSplitAxis implements phase 1 of §4.1.2: for each axis, sort by
// min_* and sum the margins of every valid left/right split; the axis with
// the smaller sum wins.
func (t *Tree) chooseSplitAxis(boxes []bbox.Box) axis {
	sx := t.marginSum(boxes, axisX)
	sy := t.marginSum(boxes, axisY)
	if sx <= sy {
		return axisX
	}
	return axisY
}

func (t *Tree) marginSum(boxes []bbox.Box, a axis) float64 {
	sorted := append([]bbox.Box{}, boxes...)
	sort.Slice(sorted, func(i, j int) bool {
		if a == axisX {
			return sorted[i].MinX < sorted[j].MinX
		}
		return sorted[i].MinY < sorted[j].MinY
	})
	m := t.minEntries
	total := 0.0
	for i := m; i <= len(sorted)-m; i++ {
		left := unionBoxes(sorted[:i])
		right := unionBoxes(sorted[i:])
		total += left.Margin() + right.Margin()
	}
	return total
}

// chooseSplitIndex implements phase 2: among the valid split positions,
// pick the one minimising overlap between the two groups, breaking ties by
// smaller total area.
func (t *Tree) chooseSplitIndex(sorted []bbox.Box) int {
	m := t.minEntries
	bestIndex := m
	bestOverlap := math.Inf(1)
	bestArea := math.Inf(1)
	for i := m; i <= len(sorted)-m; i++ {
		left := unionBoxes(sorted[:i])
		right := unionBoxes(sorted[i:])
		overlap := left.IntersectionArea(right)
		area := left.Area() + right.Area()
		if overlap < bestOverlap || (overlap == bestOverlap && area < bestArea) {
			bestOverlap = overlap
			bestArea = area
			bestIndex = i
		}
	}
	return bestIndex
}

func unionBoxes(boxes []bbox.Box) bbox.Box {
	b := boxes[0]
	for _, other := range boxes[1:] {
		b = b.Expand(other)
	}
	return b
}
