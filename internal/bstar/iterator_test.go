package bstar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIterEmptyTree(t *testing.T) {
	tree, _ := newTree(t, 2)

	it, err := tree.Iter()
	require.NoError(t, err)
	require.Empty(t, drain(t, it))

	it, err = tree.IterStartAt(5)
	require.NoError(t, err)
	require.Empty(t, drain(t, it))
}

func TestIterAcrossLeaves(t *testing.T) {
	tree, _ := newTree(t, 2)
	for k := uint64(1); k <= 20; k++ {
		mustInsert(t, tree, k, k*10)
	}

	it, err := tree.Iter()
	require.NoError(t, err)

	want := make([]uint64, 0, 20)
	for k := uint64(1); k <= 20; k++ {
		want = append(want, k)
	}
	require.Equal(t, want, drain(t, it))

	// Exhausted iterators stay exhausted.
	v, err := it.Next()
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestIterYieldsAddresses(t *testing.T) {
	tree, _ := newTree(t, 2)
	for k := uint64(1); k <= 6; k++ {
		mustInsert(t, tree, k, k*10)
	}

	it, err := tree.Iter()
	require.NoError(t, err)
	for k := uint64(1); k <= 6; k++ {
		v, err := it.Next()
		require.NoError(t, err)
		require.NotNil(t, v)
		require.Equal(t, KeyAddr[Uint64]{Key: Uint64(k), Addr: k * 10}, *v)
	}
}

func TestIterStartAtExistingKey(t *testing.T) {
	tree, _ := newTree(t, 2)
	for k := uint64(1); k <= 16; k++ {
		mustInsert(t, tree, k, k)
	}

	it, err := tree.IterStartAt(9)
	require.NoError(t, err)
	require.Equal(t, []uint64{9, 10, 11, 12, 13, 14, 15, 16}, drain(t, it))
}

func TestIterStartAtMissingKey(t *testing.T) {
	tree, _ := newTree(t, 2)
	for k := uint64(1); k <= 8; k++ {
		mustInsert(t, tree, k, k*10)
	}
	removed, err := tree.DeleteKey(4)
	require.NoError(t, err)
	require.NotNil(t, removed)

	// A missing key starts at its insertion point.
	it, err := tree.IterStartAt(4)
	require.NoError(t, err)
	require.Equal(t, []uint64{5, 6, 7, 8}, drain(t, it))
}

func TestIterStartAtBounds(t *testing.T) {
	tree, _ := newTree(t, 2)
	for k := uint64(10); k <= 20; k++ {
		mustInsert(t, tree, k, k)
	}

	// Below the smallest key: everything.
	it, err := tree.IterStartAt(1)
	require.NoError(t, err)
	require.Len(t, drain(t, it), 11)

	// Beyond the largest key: nothing.
	it, err = tree.IterStartAt(99)
	require.NoError(t, err)
	require.Empty(t, drain(t, it))
}

func TestIterDoesNotMutateTree(t *testing.T) {
	tree, _ := newTree(t, 2)
	for k := uint64(1); k <= 10; k++ {
		mustInsert(t, tree, k, k)
	}

	it, err := tree.Iter()
	require.NoError(t, err)
	drain(t, it)

	require.Equal(t, uint64(10), tree.Len())
	it, err = tree.Iter()
	require.NoError(t, err)
	require.Len(t, drain(t, it), 10)
	verifyTree(t, tree)
}
