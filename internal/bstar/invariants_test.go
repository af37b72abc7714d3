package bstar

import (
	"sort"
	"testing"

	"github.com/starsql/starsql/internal/utils"
	"github.com/stretchr/testify/require"
)

// verifyTree checks the structural invariants that must hold after every
// successful operation: node fill, reaching keys, parent pointers, the leaf
// chain order and count, the free-list chain, and the file length.
func verifyTree(t *testing.T, tr *Tree[Uint64]) {
	t.Helper()

	live := map[uint64]bool{}

	if tr.elementCount > 0 {
		var walk func(addr, fatherAddr uint64, isRoot bool) Uint64
		walk = func(addr, fatherAddr uint64, isRoot bool) Uint64 {
			require.False(t, live[addr], "page %d reached twice", addr)
			live[addr] = true

			n, err := readNode[Uint64](tr.dat, &addr)
			require.NoError(t, err)
			require.Equal(t, isRoot, n.isRoot, "root flag of page %d", addr)
			require.LessOrEqual(t, n.list.Len(), int(2*tr.order))
			if isRoot {
				require.GreaterOrEqual(t, n.list.Len(), 1)
			} else {
				require.Equal(t, fatherAddr, n.father, "parent pointer of page %d", addr)
				require.GreaterOrEqual(t, n.list.Len(), int(tr.order), "fill of page %d", addr)
			}

			if n.isLeaf {
				return n.min().Key
			}
			for i := 0; i < n.list.Len(); i++ {
				entry, _ := n.list.Get(i)
				childMin := walk(entry.Addr, addr, false)
				require.Equal(t, entry.Key, childMin, "reaching key for child %d of page %d", entry.Addr, addr)
			}
			return n.min().Key
		}
		walk(tr.root, 0, true)

		// Walk the leaf chain: keys must come out non-decreasing and the
		// total must match the element count.
		addr := tr.root
		n, err := readNode[Uint64](tr.dat, &addr)
		require.NoError(t, err)
		for !n.isLeaf {
			addr = n.min().Addr
			n, err = readNode[Uint64](tr.dat, &addr)
			require.NoError(t, err)
		}
		var keys []uint64
		for {
			for i := 0; i < n.list.Len(); i++ {
				ka, _ := n.list.Get(i)
				keys = append(keys, uint64(ka.Key))
			}
			if !n.rightBrother.Valid {
				break
			}
			addr = n.rightBrother.Addr
			n, err = readNode[Uint64](tr.dat, &addr)
			require.NoError(t, err)
		}
		require.True(t, sort.SliceIsSorted(keys, func(i, j int) bool { return keys[i] < keys[j] }), "leaf chain out of order: %v", keys)
		require.Equal(t, tr.elementCount, uint64(len(keys)), "element count mismatch")
	}

	// Free-list chain: terminates at eof, visits no address twice, holds no
	// live page.
	seen := map[uint64]bool{}
	for addr := tr.freeAddr; addr != tr.eof; {
		require.False(t, seen[addr], "free list cycles through %d", addr)
		require.False(t, live[addr], "live page %d on the free list", addr)
		require.Less(t, addr, tr.eof, "free page %d beyond eof", addr)
		seen[addr] = true

		link, err := utils.ReadUint64(tr.dat, int64(addr))
		require.NoError(t, err)
		addr = link
	}

	info, err := tr.dat.Stat()
	require.NoError(t, err)
	require.Equal(t, int64(tr.eof), info.Size(), "data file length differs from eof")
}

func TestInvariantsUnderAscendingInserts(t *testing.T) {
	tree, _ := newTree(t, 2)
	for k := uint64(1); k <= 60; k++ {
		mustInsert(t, tree, k, k*10)
		verifyTree(t, tree)
	}
	require.Equal(t, uint64(60), tree.Len())
}

func TestInvariantsUnderDescendingInserts(t *testing.T) {
	tree, _ := newTree(t, 2)
	for k := uint64(60); k >= 1; k-- {
		mustInsert(t, tree, k, k*10)
		verifyTree(t, tree)
	}

	it, err := tree.Iter()
	require.NoError(t, err)
	keys := drain(t, it)
	require.Len(t, keys, 60)
	require.Equal(t, uint64(1), keys[0])
	require.Equal(t, uint64(60), keys[59])
}

func TestInvariantsUnderMixedInserts(t *testing.T) {
	tree, _ := newTree(t, 3)

	// Deterministic scatter over [0, 97).
	for i := uint64(0); i < 97; i++ {
		k := (i*61 + 13) % 97
		mustInsert(t, tree, k, k)
		verifyTree(t, tree)
	}
	require.Equal(t, uint64(97), tree.Len())
}

func TestInvariantsUnderDeletes(t *testing.T) {
	tree, _ := newTree(t, 2)
	for k := uint64(1); k <= 40; k++ {
		mustInsert(t, tree, k, k*10)
	}

	// Delete in a scattered order, checking after every removal.
	for i := uint64(0); i < 40; i++ {
		k := (i*23+7)%40 + 1
		removed, err := tree.DeleteKey(Uint64(k))
		require.NoError(t, err)
		require.NotNil(t, removed, "key %d", k)
		require.Equal(t, k*10, removed.Addr)
		verifyTree(t, tree)
	}
	require.Equal(t, uint64(0), tree.Len())
}

func TestInvariantsUnderChurn(t *testing.T) {
	tree, _ := newTree(t, 2)

	for k := uint64(1); k <= 30; k++ {
		mustInsert(t, tree, k, k)
	}
	// Alternate deletes and re-inserts so merges free pages that later
	// inserts reclaim.
	for round := uint64(0); round < 3; round++ {
		for k := uint64(1); k <= 30; k += 2 {
			removed, err := tree.DeleteKey(Uint64(k))
			require.NoError(t, err)
			require.NotNil(t, removed)
			verifyTree(t, tree)
		}
		for k := uint64(1); k <= 30; k += 2 {
			mustInsert(t, tree, k, k+round)
			verifyTree(t, tree)
		}
	}
	require.Equal(t, uint64(30), tree.Len())
}

func TestDeleteToUnderflowBoundary(t *testing.T) {
	tree, _ := newTree(t, 2)
	for k := uint64(1); k <= 8; k++ {
		mustInsert(t, tree, k, k)
	}

	// Tree of three leaves under a root after splits; delete down to the
	// minimum fill and one past it.
	for _, k := range []uint64{8, 7, 6, 5, 3} {
		removed, err := tree.DeleteKey(Uint64(k))
		require.NoError(t, err)
		require.NotNil(t, removed, "key %d", k)
		verifyTree(t, tree)
	}
	require.Equal(t, uint64(3), tree.Len())
}
