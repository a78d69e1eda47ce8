package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoaringSetAddContainsRemove(t *testing.T) {
	s := newRoaringSet()
	require.True(t, s.add(10))
	require.False(t, s.add(10))
	assert.True(t, s.contains(10))
	assert.False(t, s.contains(11))
	assert.Equal(t, 1, s.len())

	require.True(t, s.remove(10))
	require.False(t, s.remove(10))
	assert.False(t, s.contains(10))
	assert.Equal(t, 0, s.len())
}

func TestRoaringSetSortedMembersAcrossNegativeValues(t *testing.T) {
	s := newRoaringSet()
	for _, v := range []int64{5, -3, 0, 100000, -100000, 1} {
		s.add(v)
	}
	assert.Equal(t, []int64{-100000, -3, 0, 1, 5, 100000}, s.sortedMembers())
}

func TestRoaringSetPromotesArrayToBitmap(t *testing.T) {
	s := newRoaringSet()
	for i := int64(0); i < containerConversionThreshold+10; i++ {
		s.add(i)
	}
	// all values share the same high-48-bit container key, so the slot
	// must have crossed into a bitmapContainer.
	var c roaringContainer
	for _, cc := range s.containers {
		c = cc
	}
	_, isBitmap := c.(*bitmapContainer)
	assert.True(t, isBitmap)
	assert.Equal(t, containerConversionThreshold+10, s.len())

	for i := int64(0); i < containerConversionThreshold+10; i++ {
		assert.True(t, s.contains(i))
	}
	assert.False(t, s.contains(containerConversionThreshold+10))
}

func TestRoaringSetClonedIsIndependent(t *testing.T) {
	s := newRoaringSet()
	s.add(1)
	s.add(2)

	clone := s.clone()
	clone.add(3)
	require.True(t, s.remove(1))

	assert.False(t, s.contains(1))
	assert.True(t, clone.contains(1))
	assert.True(t, clone.contains(3))
	assert.False(t, s.contains(3))
}
