package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"docindex/bbox"
	"docindex/catalog"
	"docindex/spatial"
	"docindex/store"
	"docindex/store/boltstore"
	"docindex/store/memstore"
)

type place struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func (p place) Bounds() bbox.Box { return bbox.Point{X: p.X, Y: p.Y}.Bounds() }

func main() {
	count := flag.Int("docs", 5000, "number of synthetic documents to index")
	entries := flag.Int("entries", 16, "R-tree max entries per node")
	dbPath := flag.String("db", "", "bbolt db path; empty uses the in-process memstore")
	seed := flag.Int64("seed", 1, "random seed for synthetic document generation")
	flag.Parse()

	near := os.Getenv("NEAR")
	if near == "" {
		near = "0,0"
	}
	nx, ny := parsePoint(near)

	backing, closeStore, err := openStore(*dbPath)
	if err != nil {
		log.Fatalf("opening store: %v", err)
	}
	defer closeStore()

	rawDocs, err := backing.OrderedMap("docs")
	if err != nil {
		log.Fatalf("opening docs container: %v", err)
	}

	cat := catalog.New()
	locationIndex := spatial.New("location", placeDiscriminator, bbox.BoxEvaluator{}, *entries)
	cat.SetIndex("location", locationIndex)

	rng := rand.New(rand.NewSource(*seed))
	for i := 0; i < *count; i++ {
		docid := int64(i)
		p := place{
			Name: fmt.Sprintf("place-%d", i),
			X:    rng.Float64()*360 - 180,
			Y:    rng.Float64()*180 - 90,
		}
		blob, err := json.Marshal(p)
		if err != nil {
			log.Fatalf("marshal doc %d: %v", docid, err)
		}
		if err := rawDocs.Set(docid, blob); err != nil {
			log.Fatalf("persist doc %d: %v", docid, err)
		}
		if err := cat.IndexDoc(docid, p); err != nil {
			log.Fatalf("index doc %d: %v", docid, err)
		}
	}

	fmt.Printf("Indexed %d documents\n", *count)
	for _, s := range cat.Stats() {
		fmt.Printf("  index %-10s indexed=%-6d not-indexed=%-6d\n", s.Name, s.IndexedCount, s.DocidsCount-s.IndexedCount)
	}

	fmt.Println(strings.Repeat("-", 44))
	fmt.Printf("Nearest neighbors of (%.2f, %.2f)\n", nx, ny)
	fmt.Println(strings.Repeat("-", 44))
	neighbors := locationIndex.KNN(bbox.Point{X: nx, Y: ny}, 5, -1)
	fmt.Printf("| %-10s | %-8s |\n", "DocID", "Distance")
	for _, n := range neighbors {
		fmt.Printf("| %-10d | %8.2f |\n", n.DocId, n.Distance)
	}

	bounds := bbox.Box{MinX: nx - 10, MinY: ny - 10, MaxX: nx + 10, MaxY: ny + 10}
	inRange := locationIndex.Intersection(bounds)
	fmt.Println(strings.Repeat("-", 44))
	fmt.Printf("%d documents within %.0f degrees of (%.2f, %.2f)\n", len(inRange), 10.0, nx, ny)
}

func placeDiscriminator(obj any) (any, bool) {
	p, ok := obj.(place)
	if !ok {
		return nil, false
	}
	return p, true
}

func openStore(path string) (store.Store, func(), error) {
	if path == "" {
		s := memstore.New(64)
		return s, func() { _ = s.Close() }, nil
	}
	s, err := boltstore.Open(path, 64)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

func parsePoint(s string) (float64, float64) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	x, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return x, y
}
