package boltstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docindex.db")
	s, err := Open(path, 64)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOrderedMapOrderingAcrossNegativeKeys(t *testing.T) {
	s := openTestStore(t)
	m, err := s.OrderedMap("docs")
	require.NoError(t, err)

	require.NoError(t, m.Set(5, []byte("e")))
	require.NoError(t, m.Set(-3, []byte("neg")))
	require.NoError(t, m.Set(0, []byte("zero")))
	require.NoError(t, m.Set(-100, []byte("very-neg")))

	var order []int64
	require.NoError(t, m.Iterate(func(key int64, value []byte) (bool, error) {
		order = append(order, key)
		return true, nil
	}))
	assert.Equal(t, []int64{-100, -3, 0, 5}, order)
}

func TestOrderedMapGetSetDelete(t *testing.T) {
	s := openTestStore(t)
	m, err := s.OrderedMap("docs")
	require.NoError(t, err)

	_, ok, err := m.Get(1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(1, []byte("a")))
	v, ok, err := m.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("a"), v)

	require.NoError(t, m.Delete(1))
	n, err := m.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestIntSetPersistsAcrossLookups(t *testing.T) {
	s := openTestStore(t)
	set, err := s.IntSet("ids")
	require.NoError(t, err)

	require.NoError(t, set.Add(1))
	require.NoError(t, set.Add(2))
	require.NoError(t, set.Add(2))

	n, err := set.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	members, err := set.Members()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, members)

	require.NoError(t, set.Remove(1))
	ok, err := set.Contains(1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCounterIncrementAndSet(t *testing.T) {
	s := openTestStore(t)
	c, err := s.Counter("docs")
	require.NoError(t, err)

	v, err := c.Increment(3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	require.NoError(t, c.Set(10))
	v, err = c.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)

	v, err = c.Increment(-4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)
}

func TestTransactionCommitKeepsWrites(t *testing.T) {
	s := openTestStore(t)
	m, err := s.OrderedMap("docs")
	require.NoError(t, err)
	require.NoError(t, m.Set(1, []byte("before")))

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, m.Set(1, []byte("during-commit")))
	require.NoError(t, tx.Commit())

	v, ok, err := m.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("during-commit"), v)
}

func TestTransactionAbortDiscardsWrites(t *testing.T) {
	s := openTestStore(t)
	m, err := s.OrderedMap("docs")
	require.NoError(t, err)
	require.NoError(t, m.Set(1, []byte("before")))

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, m.Set(1, []byte("during-abort")))
	require.NoError(t, tx.Abort())

	v, ok, err := m.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("before"), v)
}

func TestMarkTransientNeverTouchesDisk(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.MarkTransient("scratch"))

	m, err := s.OrderedMap("scratch")
	require.NoError(t, err)
	require.NoError(t, m.Set(1, []byte("x")))

	v, ok, err := m.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("x"), v)

	require.NoError(t, s.MarkTransient("scratch-counter"))
	c, err := s.Counter("scratch-counter")
	require.NoError(t, err)
	_, err = c.Increment(1)
	require.NoError(t, err)
}

func TestReopenPersistsDurableContainers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := Open(path, 64)
	require.NoError(t, err)

	m, err := s.OrderedMap("docs")
	require.NoError(t, err)
	require.NoError(t, m.Set(7, []byte("durable")))
	require.NoError(t, s.Close())

	s2, err := Open(path, 64)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s2.Close() })

	m2, err := s2.OrderedMap("docs")
	require.NoError(t, err)
	v, ok, err := m2.Get(7)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("durable"), v)
}
