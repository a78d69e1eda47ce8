package rtree

import (
	"math/rand"
	"sort"
	"testing"

	"docindex/bbox"
)

func box(minX, minY, maxX, maxY float64) bbox.Box {
	return bbox.Box{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
}

func genBoxes(n int, seed int64) []BBox {
	r := rand.New(rand.NewSource(seed))
	items := make([]BBox, n)
	for i := 0; i < n; i++ {
		x := r.Float64() * 1000
		y := r.Float64() * 1000
		items[i] = BBox{Key: int64(i), Box: box(x, y, x+r.Float64()*5, y+r.Float64()*5)}
	}
	return items
}

func keysOf(entries []BBox) []int64 {
	keys := make([]int64, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// checkInvariants walks the tree verifying fanout bounds, child-MBR
// containment, and leaf-depth uniformity.
func checkInvariants(t *testing.T, tr *Tree) {
	t.Helper()
	var walk func(n *node, depth int) int
	leafDepth := -1
	walk = func(n *node, depth int) int {
		if n.leaf {
			if leafDepth == -1 {
				leafDepth = depth
			} else if leafDepth != depth {
				t.Errorf("leaf depth mismatch: got %d, want %d", depth, leafDepth)
			}
			if n != tr.root && (len(n.entries) < tr.minEntries || len(n.entries) > tr.maxEntries) {
				t.Errorf("leaf fanout %d out of [%d,%d]", len(n.entries), tr.minEntries, tr.maxEntries)
			}
			return len(n.entries)
		}
		count := 0
		for _, c := range n.children {
			if !n.mbr.Contains(c.mbr) {
				t.Errorf("parent mbr does not contain child mbr: %v / %v", n.mbr, c.mbr)
			}
			count += walk(c, depth+1)
		}
		if n != tr.root && (len(n.children) < tr.minEntries || len(n.children) > tr.maxEntries) {
			t.Errorf("internal node fanout %d out of [%d,%d]", len(n.children), tr.minEntries, tr.maxEntries)
		}
		return count
	}
	total := walk(tr.root, 0)
	if total != tr.Len() {
		t.Errorf("leaf entry count %d != tr.Len() %d", total, tr.Len())
	}
}

func TestInsertInvariants(t *testing.T) {
	tr := New(8)
	for _, item := range genBoxes(500, 1) {
		tr.Insert(item)
	}
	checkInvariants(t, tr)
}

func TestSearchMatchesBruteForce(t *testing.T) {
	items := genBoxes(300, 2)
	tr := New(8)
	for _, item := range items {
		tr.Insert(item)
	}

	query := box(200, 200, 400, 400)
	var want []int64
	for _, it := range items {
		if it.Box.Intersects(query) {
			want = append(want, it.Key)
		}
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

	got := keysOf(tr.Search(query))
	if len(got) != len(want) {
		t.Fatalf("got %d results, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("result mismatch at %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestRemove(t *testing.T) {
	items := genBoxes(200, 3)
	tr := New(6)
	for _, item := range items {
		tr.Insert(item)
	}
	for i := 0; i < 50; i++ {
		if !tr.Remove(items[i]) {
			t.Fatalf("expected Remove to find key %d", items[i].Key)
		}
	}
	if tr.Len() != 150 {
		t.Fatalf("got len %d, want 150", tr.Len())
	}
	checkInvariants(t, tr)
	if tr.Remove(BBox{Key: -1, Box: box(0, 0, 0, 0)}) {
		t.Fatalf("Remove should report false for an absent key")
	}
}

func TestLoadMatchesOneByOneInsert(t *testing.T) {
	items := genBoxes(1000, 4)

	bulk := New(16)
	bulk.Load(items)
	checkInvariants(t, bulk)

	sequential := New(16)
	for _, item := range items {
		sequential.Insert(item)
	}

	query := box(100, 100, 600, 600)
	bulkKeys := keysOf(bulk.Search(query))
	seqKeys := keysOf(sequential.Search(query))
	if len(bulkKeys) != len(seqKeys) {
		t.Fatalf("bulk found %d, sequential found %d", len(bulkKeys), len(seqKeys))
	}
	for i := range bulkKeys {
		if bulkKeys[i] != seqKeys[i] {
			t.Fatalf("mismatch at %d: bulk %d, sequential %d", i, bulkKeys[i], seqKeys[i])
		}
	}
}

func TestLoadSmallFallsBackToInsert(t *testing.T) {
	tr := New(8)
	items := genBoxes(2, 5)
	tr.Load(items)
	if tr.Len() != 2 {
		t.Fatalf("got len %d, want 2", tr.Len())
	}
}

func TestLoadIntoExistingTree(t *testing.T) {
	tr := New(8)
	for _, item := range genBoxes(100, 6) {
		tr.Insert(item)
	}
	more := genBoxes(900, 7)
	for i := range more {
		more[i].Key += 1000
	}
	tr.Load(more)
	if tr.Len() != 1000 {
		t.Fatalf("got len %d, want 1000", tr.Len())
	}
	checkInvariants(t, tr)
}

func TestKNNOrderedByDistance(t *testing.T) {
	tr := New(8)
	points := []BBox{
		{Key: 1, Box: box(0, 0, 0, 0)},
		{Key: 2, Box: box(1, 0, 1, 0)},
		{Key: 3, Box: box(5, 0, 5, 0)},
		{Key: 4, Box: box(10, 10, 10, 10)},
	}
	for _, p := range points {
		tr.Insert(p)
	}

	results := tr.KNN(bbox.Point{X: 0, Y: 0}, 3, -1)
	if len(results) != 3 {
		t.Fatalf("got %d neighbors, want 3", len(results))
	}
	wantOrder := []int64{1, 2, 3}
	for i, r := range results {
		if r.Entry.Key != wantOrder[i] {
			t.Errorf("neighbor %d: got key %d, want %d", i, r.Entry.Key, wantOrder[i])
		}
		if i > 0 && r.Distance < results[i-1].Distance {
			t.Errorf("distances not non-decreasing at %d", i)
		}
	}
}

func TestKNNRespectsMaxDistance(t *testing.T) {
	tr := New(8)
	tr.Insert(BBox{Key: 1, Box: box(0, 0, 0, 0)})
	tr.Insert(BBox{Key: 2, Box: box(100, 0, 100, 0)})

	results := tr.KNN(bbox.Point{X: 0, Y: 0}, 10, 10)
	if len(results) != 1 || results[0].Entry.Key != 1 {
		t.Fatalf("got %v, want only key 1 within distance 10", results)
	}
}

func TestKNNEmptyTree(t *testing.T) {
	tr := New(8)
	if got := tr.KNN(bbox.Point{X: 0, Y: 0}, 5, -1); got != nil {
		t.Fatalf("got %v, want nil for empty tree", got)
	}
}
