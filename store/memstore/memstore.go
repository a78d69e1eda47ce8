// Package memstore is an in-process reference implementation of the
// store.Store contract, playing the role the teacher's in-memory Segment
// plays for the full-text engine: no file I/O, commit/abort are tracked
// in-memory only, and MarkTransient just leaves the marked container out
// of the snapshot Begin takes, so an Abort discards it rather than
// restoring it.
package memstore

import (
	"fmt"
	"sort"
	"sync"

	"docindex/store"
)

// Store is an in-process, non-durable store.Store. It is safe for the
// single-actor usage model the core assumes (no internal locking beyond
// what's needed to let Go's race detector stay quiet across goroutines
// that never actually interleave mutation).
type Store struct {
	mu         sync.Mutex
	keyWidth   int
	maps       map[string]*orderedMap
	sets       map[string]*intSet
	counters   map[string]*counter
	transient  map[string]struct{}
	closed     bool
	inTx       bool
	snapshot   *snapshot
}

// New creates an empty memstore with the given key width (32 or 64).
func New(keyWidth int) *Store {
	if keyWidth != 32 && keyWidth != 64 {
		keyWidth = 64
	}
	return &Store{
		keyWidth:  keyWidth,
		maps:      map[string]*orderedMap{},
		sets:      map[string]*intSet{},
		counters:  map[string]*counter{},
		transient: map[string]struct{}{},
	}
}

func (s *Store) KeyWidth() int { return s.keyWidth }

func (s *Store) OrderedMap(name string) (store.OrderedMap, error) {
	if s.closed {
		return nil, store.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.maps[name]
	if !ok {
		m = &orderedMap{entries: map[int64][]byte{}}
		s.maps[name] = m
	}
	return m, nil
}

func (s *Store) IntSet(name string) (store.IntSet, error) {
	if s.closed {
		return nil, store.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sets[name]
	if !ok {
		set = &intSet{bitmap: newRoaringSet()}
		s.sets[name] = set
	}
	return set, nil
}

func (s *Store) Counter(name string) (store.Counter, error) {
	if s.closed {
		return nil, store.ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.counters[name]
	if !ok {
		c = &counter{}
		s.counters[name] = c
	}
	return c, nil
}

// MarkTransient flags name (a map, set, or counter) as non-persistent:
// Begin leaves it out of the snapshot, so Abort drops it and a later
// lookup starts it fresh, matching the R-tree accelerator's "must not
// persist" discipline. Commit keeps it as it is.
func (s *Store) MarkTransient(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transient[name] = struct{}{}
	return nil
}

// snapshot is the pre-transaction copy Abort restores.
type snapshot struct {
	maps     map[string]*orderedMap
	sets     map[string]*intSet
	counters map[string]*counter
}

// Begin opens a transaction by snapshotting every non-transient
// container so Abort can restore it.
func (s *Store) Begin() (store.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, store.ErrClosed
	}
	if s.inTx {
		return nil, fmt.Errorf("memstore: transaction already in progress")
	}
	s.inTx = true
	s.snapshot = &snapshot{
		maps:     cloneMaps(s.maps, s.transient),
		sets:     cloneSets(s.sets, s.transient),
		counters: cloneCounters(s.counters, s.transient),
	}
	return &tx{store: s}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type tx struct{ store *Store }

func (t *tx) Commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if !t.store.inTx {
		return store.ErrNoTransaction
	}
	t.store.inTx = false
	t.store.snapshot = nil
	return nil
}

func (t *tx) Abort() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if !t.store.inTx {
		return store.ErrNoTransaction
	}
	t.store.maps = t.store.snapshot.maps
	t.store.sets = t.store.snapshot.sets
	t.store.counters = t.store.snapshot.counters
	t.store.inTx = false
	t.store.snapshot = nil
	return nil
}

func cloneMaps(src map[string]*orderedMap, transient map[string]struct{}) map[string]*orderedMap {
	out := make(map[string]*orderedMap, len(src))
	for name, m := range src {
		if _, skip := transient[name]; skip {
			continue
		}
		entries := make(map[int64][]byte, len(m.entries))
		for k, v := range m.entries {
			cp := append([]byte{}, v...)
			entries[k] = cp
		}
		out[name] = &orderedMap{entries: entries}
	}
	return out
}

func cloneSets(src map[string]*intSet, transient map[string]struct{}) map[string]*intSet {
	out := make(map[string]*intSet, len(src))
	for name, s := range src {
		if _, skip := transient[name]; skip {
			continue
		}
		out[name] = &intSet{bitmap: s.bitmap.clone()}
	}
	return out
}

func cloneCounters(src map[string]*counter, transient map[string]struct{}) map[string]*counter {
	out := make(map[string]*counter, len(src))
	for name, c := range src {
		if _, skip := transient[name]; skip {
			continue
		}
		out[name] = &counter{value: c.value}
	}
	return out
}

type orderedMap struct {
	mu      sync.Mutex
	entries map[int64][]byte
}

func (m *orderedMap) Get(key int64) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *orderedMap) Set(key int64, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]byte{}, value...)
	return nil
}

func (m *orderedMap) Delete(key int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *orderedMap) Iterate(fn func(key int64, value []byte) (bool, error)) error {
	m.mu.Lock()
	keys := make([]int64, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	m.mu.Unlock()
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, k := range keys {
		m.mu.Lock()
		v, ok := m.entries[k]
		m.mu.Unlock()
		if !ok {
			continue
		}
		keepGoing, err := fn(k, v)
		if err != nil {
			return err
		}
		if !keepGoing {
			return nil
		}
	}
	return nil
}

func (m *orderedMap) Len() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

// intSet is store.IntSet backed by a roaringSet: the same array/bitmap
// container split the teacher's full-text segment index used to pack
// posting lists, adapted here to back a generic int64 id set instead of
// document-frequency postings.
type intSet struct {
	mu     sync.Mutex
	bitmap *roaringSet
}

func (s *intSet) Add(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bitmap.add(id)
	return nil
}

func (s *intSet) Remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bitmap.remove(id)
	return nil
}

func (s *intSet) Contains(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bitmap.contains(id), nil
}

func (s *intSet) Members() ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bitmap.sortedMembers(), nil
}

func (s *intSet) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bitmap.len(), nil
}

type counter struct {
	mu    sync.Mutex
	value int64
}

func (c *counter) Value() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, nil
}

func (c *counter) Increment(delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value += delta
	return c.value, nil
}

func (c *counter) Set(v int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = v
	return nil
}
