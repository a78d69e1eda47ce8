package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedMapBasics(t *testing.T) {
	s := New(64)
	m, err := s.OrderedMap("docs")
	require.NoError(t, err)

	require.NoError(t, m.Set(3, []byte("c")))
	require.NoError(t, m.Set(1, []byte("a")))
	require.NoError(t, m.Set(2, []byte("b")))

	var order []int64
	require.NoError(t, m.Iterate(func(key int64, value []byte) (bool, error) {
		order = append(order, key)
		return true, nil
	}))
	assert.Equal(t, []int64{1, 2, 3}, order)

	require.NoError(t, m.Delete(2))
	n, err := m.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestIntSet(t *testing.T) {
	s := New(64)
	set, err := s.IntSet("ids")
	require.NoError(t, err)

	require.NoError(t, set.Add(1))
	require.NoError(t, set.Add(2))
	ok, err := set.Contains(1)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, set.Remove(1))
	ok, err = set.Contains(1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCounter(t *testing.T) {
	s := New(64)
	c, err := s.Counter("docs")
	require.NoError(t, err)

	v, err := c.Increment(5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v, err = c.Increment(-2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestTransactionAbortRestoresSnapshot(t *testing.T) {
	s := New(64)
	m, err := s.OrderedMap("docs")
	require.NoError(t, err)
	require.NoError(t, m.Set(1, []byte("before")))

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, m.Set(1, []byte("after")))

	require.NoError(t, tx.Abort())

	m2, err := s.OrderedMap("docs")
	require.NoError(t, err)
	v, ok, err := m2.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("before"), v)
}

func TestTransactionCommitKeepsChanges(t *testing.T) {
	s := New(64)
	m, err := s.OrderedMap("docs")
	require.NoError(t, err)

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, m.Set(1, []byte("value")))
	require.NoError(t, tx.Commit())

	v, ok, err := m.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("value"), v)
}

func TestMarkTransientExcludedFromSnapshot(t *testing.T) {
	s := New(64)
	require.NoError(t, s.MarkTransient("scratch"))
	m, err := s.OrderedMap("scratch")
	require.NoError(t, err)
	require.NoError(t, m.Set(1, []byte("x")))

	tx, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, m.Set(1, []byte("y")))
	require.NoError(t, tx.Abort())

	// Aborting restores every container from the snapshot except
	// transient ones, which simply start fresh.
	m2, err := s.OrderedMap("scratch")
	require.NoError(t, err)
	_, ok, err := m2.Get(1)
	require.NoError(t, err)
	assert.False(t, ok)
}
