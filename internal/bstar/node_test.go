package bstar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageSize(t *testing.T) {
	// 2*order slots of (8 key + 8 addr) bytes plus the 44 byte header.
	require.Equal(t, uint64(2*2*16+44), pageSize[Uint64](2))
	require.Equal(t, uint64(2*7*16+44), pageSize[Uint64](7))
}

func TestNodeRoundTrip(t *testing.T) {
	f := tempFile(t)

	n := &node[Uint64]{
		father:       128,
		leftBrother:  pageRef{Valid: true, Addr: 64},
		rightBrother: pageRef{},
		isLeaf:       true,
		isRoot:       false,
		order:        2,
	}
	n.list.Insert(ka(10, 100))
	n.list.Insert(ka(20, 200))
	n.list.Insert(ka(30, 300))

	require.NoError(t, n.write(f, at(0)))

	got, err := readNode[Uint64](f, at(0))
	require.NoError(t, err)
	require.Equal(t, uint64(128), got.father)
	require.Equal(t, pageRef{Valid: true, Addr: 64}, got.leftBrother)
	require.False(t, got.rightBrother.Valid)
	require.True(t, got.isLeaf)
	require.False(t, got.isRoot)
	require.Equal(t, uint64(2), got.order)
	require.Equal(t, []uint64{10, 20, 30}, listKeys(&got.list))

	addr, _ := got.list.Get(1)
	require.Equal(t, uint64(200), addr.Addr)
}

func TestNodeReadConsumesOnlyElementCount(t *testing.T) {
	f := tempFile(t)

	full := &node[Uint64]{isLeaf: true, isRoot: true, order: 2}
	for _, k := range []uint64{1, 2, 3, 4} {
		full.list.Insert(ka(k, k))
	}
	require.NoError(t, full.write(f, at(0)))

	// Shrink the element count; the trailing slots stay on disk and must
	// be ignored by the reader.
	full.list.DeleteAt(3)
	full.list.DeleteAt(2)
	require.NoError(t, full.write(f, at(0)))

	got, err := readNode[Uint64](f, at(0))
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2}, listKeys(&got.list))
}

func TestNodeReadDetectsCorruption(t *testing.T) {
	f := tempFile(t)

	n := &node[Uint64]{isLeaf: true, isRoot: true, order: 2}
	n.list.Insert(ka(1, 1))
	require.NoError(t, n.write(f, at(0)))

	corrupt := func(off int64, b byte) {
		t.Helper()
		_, err := f.WriteAt([]byte{b}, off)
		require.NoError(t, err)
	}

	// Leaf flag outside {0,1}.
	corrupt(nodeLeafOff, 7)
	_, err := readNode[Uint64](f, at(0))
	require.ErrorIs(t, err, ErrCorruptPage)
	corrupt(nodeLeafOff, 1)

	// Element count above capacity.
	corrupt(nodeCountOff+7, 200)
	_, err = readNode[Uint64](f, at(0))
	require.ErrorIs(t, err, ErrCorruptPage)
	corrupt(nodeCountOff+7, 1)

	// Zero order.
	corrupt(nodeOrderOff+7, 0)
	_, err = readNode[Uint64](f, at(0))
	require.ErrorIs(t, err, ErrCorruptPage)
	corrupt(nodeOrderOff+7, 2)

	got, err := readNode[Uint64](f, at(0))
	require.NoError(t, err)
	require.Equal(t, []uint64{1}, listKeys(&got.list))
}
