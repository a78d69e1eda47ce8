// Package boltstore is a go.etcd.io/bbolt-backed store.Store
// implementation: one top-level bucket per named container, int64 keys
// encoded big-endian so bbolt's natural byte-order cursor traversal is
// also numeric order, grounded on go-leia's bucket-per-index, cursor-
// based iteration style. A container marked transient never touches
// bbolt at all — it lives in an in-memory shadow map for the lifetime of
// the process, which is what "must not persist, rebuilt lazily on
// access" means in a real backing engine.
package boltstore

import (
	"encoding/binary"
	"fmt"
	"sync"

	"go.etcd.io/bbolt"

	"docindex/store"
)

var countersBucket = []byte("__counters__")

// Store wraps a single bbolt database file.
type Store struct {
	db       *bbolt.DB
	keyWidth int

	mu        sync.Mutex
	transient map[string]struct{}
	shadow    map[string]*shadowContainer

	txMu     sync.Mutex
	activeTx *bbolt.Tx
}

// shadowContainer is the in-memory stand-in for a transient container.
type shadowContainer struct {
	entries map[int64][]byte
	counter int64
}

// Open opens (creating if absent) a bbolt database at path.
func Open(path string, keyWidth int) (*Store, error) {
	if keyWidth != 32 && keyWidth != 64 {
		keyWidth = 64
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}
	return &Store{
		db:        db,
		keyWidth:  keyWidth,
		transient: map[string]struct{}{},
		shadow:    map[string]*shadowContainer{},
	}, nil
}

func (s *Store) KeyWidth() int { return s.keyWidth }

func (s *Store) MarkTransient(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transient[name] = struct{}{}
	if _, ok := s.shadow[name]; !ok {
		s.shadow[name] = &shadowContainer{entries: map[int64][]byte{}}
	}
	return nil
}

func (s *Store) isTransient(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.transient[name]
	return ok
}

func encodeKey(key int64) []byte {
	b := make([]byte, 8)
	// Offsetting by the sign bit keeps bbolt's lexicographic byte order
	// consistent with signed numeric order across negative keys.
	binary.BigEndian.PutUint64(b, uint64(key)^(1<<63))
	return b
}

func decodeKey(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63))
}

// withUpdate runs fn against the transaction opened by Begin, if one is
// currently open, so container writes issued between Begin and
// Commit/Abort land in that same transaction instead of racing it with
// their own auto-commit. Outside of an open transaction each call gets
// its own auto-committing bbolt transaction, matching bbolt's normal
// single-statement usage.
func (s *Store) withUpdate(fn func(tx *bbolt.Tx) error) error {
	s.txMu.Lock()
	tx := s.activeTx
	s.txMu.Unlock()
	if tx != nil {
		return fn(tx)
	}
	return s.db.Update(fn)
}

func (s *Store) withView(fn func(tx *bbolt.Tx) error) error {
	s.txMu.Lock()
	tx := s.activeTx
	s.txMu.Unlock()
	if tx != nil {
		return fn(tx)
	}
	return s.db.View(fn)
}

func (s *Store) OrderedMap(name string) (store.OrderedMap, error) {
	if s.isTransient(name) {
		return &shadowMap{store: s, name: name}, nil
	}
	err := s.withUpdate(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(name))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: create bucket %q: %w", name, err)
	}
	return &boltMap{store: s, bucket: []byte(name)}, nil
}

func (s *Store) IntSet(name string) (store.IntSet, error) {
	m, err := s.OrderedMap(name)
	if err != nil {
		return nil, err
	}
	return &intSet{m: m}, nil
}

func (s *Store) Counter(name string) (store.Counter, error) {
	if s.isTransient(name) {
		return &shadowCounter{store: s, name: name}, nil
	}
	err := s.withUpdate(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(countersBucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: create counters bucket: %w", err)
	}
	return &boltCounter{store: s, name: name}, nil
}

// Begin opens a writable bbolt transaction and holds it as the active
// transaction: every OrderedMap/IntSet/Counter write issued before
// Commit/Abort is folded into it, so an Abort genuinely discards them.
func (s *Store) Begin() (store.Tx, error) {
	s.txMu.Lock()
	if s.activeTx != nil {
		s.txMu.Unlock()
		return nil, fmt.Errorf("boltstore: transaction already in progress")
	}
	tx, err := s.db.Begin(true)
	if err != nil {
		s.txMu.Unlock()
		return nil, fmt.Errorf("boltstore: begin: %w", err)
	}
	s.activeTx = tx
	s.txMu.Unlock()
	return &boltTx{store: s, tx: tx}, nil
}

func (s *Store) Close() error { return s.db.Close() }

type boltTx struct {
	store *Store
	tx    *bbolt.Tx
}

func (t *boltTx) Commit() error {
	t.store.txMu.Lock()
	t.store.activeTx = nil
	t.store.txMu.Unlock()
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("boltstore: commit: %w", err)
	}
	return nil
}

func (t *boltTx) Abort() error {
	t.store.txMu.Lock()
	t.store.activeTx = nil
	t.store.txMu.Unlock()
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("boltstore: rollback: %w", err)
	}
	return nil
}

// boltMap is store.OrderedMap backed by a bbolt bucket.
type boltMap struct {
	store  *Store
	bucket []byte
}

func (m *boltMap) Get(key int64) ([]byte, bool, error) {
	var out []byte
	err := m.store.withView(func(tx *bbolt.Tx) error {
		b := tx.Bucket(m.bucket)
		if b == nil {
			return nil
		}
		v := b.Get(encodeKey(key))
		if v != nil {
			out = append([]byte{}, v...)
		}
		return nil
	})
	return out, out != nil, err
}

func (m *boltMap) Set(key int64, value []byte) error {
	return m.store.withUpdate(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(m.bucket)
		if err != nil {
			return err
		}
		return b.Put(encodeKey(key), value)
	})
}

func (m *boltMap) Delete(key int64) error {
	return m.store.withUpdate(func(tx *bbolt.Tx) error {
		b := tx.Bucket(m.bucket)
		if b == nil {
			return nil
		}
		return b.Delete(encodeKey(key))
	})
}

func (m *boltMap) Iterate(fn func(key int64, value []byte) (bool, error)) error {
	return m.store.withView(func(tx *bbolt.Tx) error {
		b := tx.Bucket(m.bucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			keepGoing, err := fn(decodeKey(k), v)
			if err != nil {
				return err
			}
			if !keepGoing {
				return nil
			}
		}
		return nil
	})
}

func (m *boltMap) Len() (int, error) {
	n := 0
	err := m.store.withView(func(tx *bbolt.Tx) error {
		b := tx.Bucket(m.bucket)
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}

// intSet layers store.IntSet over an OrderedMap, using a single-byte
// sentinel value per present key — the same "presence bucket" idiom
// go-leia uses for reference sets.
type intSet struct{ m store.OrderedMap }

var setMember = []byte{1}

func (s *intSet) Add(id int64) error      { return s.m.Set(id, setMember) }
func (s *intSet) Remove(id int64) error   { return s.m.Delete(id) }
func (s *intSet) Contains(id int64) (bool, error) {
	_, ok, err := s.m.Get(id)
	return ok, err
}
func (s *intSet) Members() ([]int64, error) {
	var out []int64
	err := s.m.Iterate(func(key int64, _ []byte) (bool, error) {
		out = append(out, key)
		return true, nil
	})
	return out, err
}
func (s *intSet) Len() (int, error) { return s.m.Len() }

// boltCounter stores its value as an 8-byte big-endian entry under its
// own name in the shared counters bucket.
type boltCounter struct {
	store *Store
	name  string
}

func (c *boltCounter) Value() (int64, error) {
	var v int64
	err := c.store.withView(func(tx *bbolt.Tx) error {
		b := tx.Bucket(countersBucket)
		if b == nil {
			return nil
		}
		raw := b.Get([]byte(c.name))
		if raw != nil {
			v = decodeKey(raw)
		}
		return nil
	})
	return v, err
}

func (c *boltCounter) Increment(delta int64) (int64, error) {
	var v int64
	err := c.store.withUpdate(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(countersBucket)
		if err != nil {
			return err
		}
		raw := b.Get([]byte(c.name))
		if raw != nil {
			v = decodeKey(raw)
		}
		v += delta
		return b.Put([]byte(c.name), encodeKey(v))
	})
	return v, err
}

func (c *boltCounter) Set(v int64) error {
	return c.store.withUpdate(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(countersBucket)
		if err != nil {
			return err
		}
		return b.Put([]byte(c.name), encodeKey(v))
	})
}

// shadowMap/shadowCounter implement the same interfaces entirely in
// memory for a transient container name.
type shadowMap struct {
	store *Store
	name  string
}

func (m *shadowMap) Get(key int64) ([]byte, bool, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	v, ok := m.store.shadow[m.name].entries[key]
	return v, ok, nil
}

func (m *shadowMap) Set(key int64, value []byte) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	m.store.shadow[m.name].entries[key] = append([]byte{}, value...)
	return nil
}

func (m *shadowMap) Delete(key int64) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	delete(m.store.shadow[m.name].entries, key)
	return nil
}

func (m *shadowMap) Iterate(fn func(key int64, value []byte) (bool, error)) error {
	m.store.mu.Lock()
	keys := make([]int64, 0, len(m.store.shadow[m.name].entries))
	for k := range m.store.shadow[m.name].entries {
		keys = append(keys, k)
	}
	entries := m.store.shadow[m.name].entries
	m.store.mu.Unlock()

	sortInt64s(keys)
	for _, k := range keys {
		keepGoing, err := fn(k, entries[k])
		if err != nil {
			return err
		}
		if !keepGoing {
			return nil
		}
	}
	return nil
}

func (m *shadowMap) Len() (int, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	return len(m.store.shadow[m.name].entries), nil
}

type shadowCounter struct {
	store *Store
	name  string
}

func (c *shadowCounter) Value() (int64, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.store.shadow[c.name].counter, nil
}

func (c *shadowCounter) Increment(delta int64) (int64, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.shadow[c.name].counter += delta
	return c.store.shadow[c.name].counter, nil
}

func (c *shadowCounter) Set(v int64) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.shadow[c.name].counter = v
	return nil
}

func sortInt64s(xs []int64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
