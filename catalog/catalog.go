package catalog

import "fmt"

// Catalog is a named collection of indexes. Duplicate names overwrite;
// insertion order is not preserved since nothing in the spec relies on
// it.
type Catalog struct {
	indexes map[string]Index
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{indexes: make(map[string]Index)}
}

// SetIndex registers index under name, replacing any index already
// registered under it. The index itself is not told the name: Index has
// no name setter, so an index's own Name (where it has one) is whatever
// it was constructed with.
func (c *Catalog) SetIndex(name string, index Index) {
	c.indexes[name] = index
}

// Index looks up a registered index by name.
func (c *Catalog) Index(name string) (Index, bool) {
	idx, ok := c.indexes[name]
	return idx, ok
}

// Names returns every registered index name.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.indexes))
	for name := range c.indexes {
		out = append(out, name)
	}
	return out
}

// IndexDoc fans out to every contained index.
func (c *Catalog) IndexDoc(docid int64, obj any) error {
	for name, idx := range c.indexes {
		if err := idx.IndexDoc(docid, obj); err != nil {
			return fmt.Errorf("catalog: index %q: %w", name, err)
		}
	}
	return nil
}

// ReindexDoc fans out to every contained index.
func (c *Catalog) ReindexDoc(docid int64, obj any) error {
	for name, idx := range c.indexes {
		if err := idx.ReindexDoc(docid, obj); err != nil {
			return fmt.Errorf("catalog: index %q: %w", name, err)
		}
	}
	return nil
}

// UnindexDoc fans out to every contained index.
func (c *Catalog) UnindexDoc(docid int64) {
	for _, idx := range c.indexes {
		idx.UnindexDoc(docid)
	}
}

// Reset returns every contained index to its empty state.
func (c *Catalog) Reset() {
	for _, idx := range c.indexes {
		idx.Reset()
	}
}

// IndexStats reports one index's bookkeeping counts, read-only.
type IndexStats struct {
	Name         string
	IndexedCount int
	DocidsCount  int
}

// Stats reports per-index doc counts without exposing any index's private
// discriminant data — a read-only summary in the spirit of the teacher's
// segment reporting.
func (c *Catalog) Stats() []IndexStats {
	out := make([]IndexStats, 0, len(c.indexes))
	for name, idx := range c.indexes {
		out = append(out, IndexStats{
			Name:         name,
			IndexedCount: idx.IndexedCount(),
			DocidsCount:  idx.DocidsCount(),
		})
	}
	return out
}
