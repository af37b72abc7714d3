package bstar

import (
	"encoding/binary"
	"errors"
	"io"
	"os"

	"github.com/starsql/starsql/internal/utils"
)

// ErrCorruptPage is returned when a node page read yields values that
// violate the page invariants.
var ErrCorruptPage = errors.New("corrupt index page")

// Node page header layout, in order: father u64, left-brother presence tag
// u8, left-brother u64, right-brother presence tag u8, right-brother u64,
// leaf flag u8, root flag u8, element count u64, order u64. The brother u64
// is always written, meaningful only when its tag is 1.
const (
	nodeFatherOff = 0
	nodeLeftOff   = 8
	nodeRightOff  = 17
	nodeLeafOff   = 26
	nodeRootOff   = 27
	nodeCountOff  = 28
	nodeOrderOff  = 36

	nodeHeaderSize = 44
)

// pageRef is an optional page address.
type pageRef struct {
	Valid bool
	Addr  uint64
}

// node is the in-memory form of one page: a sorted run of key/address slots
// plus the navigation header. Nodes are read fresh from the file at each
// descent and written back after mutation.
type node[K Fixed[K]] struct {
	list         SortedList[KeyAddr[K]]
	father       uint64
	leftBrother  pageRef
	rightBrother pageRef
	isLeaf       bool
	isRoot       bool
	order        uint64
}

// pageSize returns the fixed byte size of a node page for the given order.
// It is the quantum of the free list: freed pages are reused verbatim.
func pageSize[K Fixed[K]](order uint64) uint64 {
	var zero KeyAddr[K]
	return 2*order*zero.Size() + nodeHeaderSize
}

func flagByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// readNode reads one page, seeking first when at is non-nil. Only the first
// elementcount slots are consumed; trailing slots are unspecified on disk.
func readNode[K Fixed[K]](f *os.File, at *uint64) (*node[K], error) {
	if err := seekMaybe(f, at); err != nil {
		return nil, err
	}

	buf := utils.GetBuffer(nodeHeaderSize)
	defer utils.ReleaseBuffer(buf)

	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, utils.WrapError("node header read failed", err)
	}

	ltag := buf[nodeLeftOff]
	rtag := buf[nodeRightOff]
	leaf := buf[nodeLeafOff]
	root := buf[nodeRootOff]
	count := binary.BigEndian.Uint64(buf[nodeCountOff : nodeCountOff+8])
	order := binary.BigEndian.Uint64(buf[nodeOrderOff : nodeOrderOff+8])

	if ltag > 1 || rtag > 1 || leaf > 1 || root > 1 || order == 0 || count > 2*order {
		return nil, utils.WrapError("node header invalid", ErrCorruptPage)
	}

	n := &node[K]{
		father:       binary.BigEndian.Uint64(buf[nodeFatherOff : nodeFatherOff+8]),
		leftBrother:  pageRef{Valid: ltag == 1, Addr: binary.BigEndian.Uint64(buf[nodeLeftOff+1 : nodeLeftOff+9])},
		rightBrother: pageRef{Valid: rtag == 1, Addr: binary.BigEndian.Uint64(buf[nodeRightOff+1 : nodeRightOff+9])},
		isLeaf:       leaf == 1,
		isRoot:       root == 1,
		order:        order,
	}

	var zero KeyAddr[K]
	for i := uint64(0); i < count; i++ {
		ka, err := zero.Read(f, nil)
		if err != nil {
			return nil, utils.WrapError("node slot read failed", err)
		}
		// Slots are stored in key order; append keeps it.
		n.list.InsertAt(n.list.Len(), ka)
	}
	return n, nil
}

// write serializes the node at the page offset. Slots beyond the element
// count keep whatever bytes the page held before.
func (n *node[K]) write(f *os.File, at *uint64) error {
	if err := seekMaybe(f, at); err != nil {
		return err
	}

	buf := utils.GetBuffer(nodeHeaderSize)
	defer utils.ReleaseBuffer(buf)

	binary.BigEndian.PutUint64(buf[nodeFatherOff:nodeFatherOff+8], n.father)
	buf[nodeLeftOff] = flagByte(n.leftBrother.Valid)
	binary.BigEndian.PutUint64(buf[nodeLeftOff+1:nodeLeftOff+9], n.leftBrother.Addr)
	buf[nodeRightOff] = flagByte(n.rightBrother.Valid)
	binary.BigEndian.PutUint64(buf[nodeRightOff+1:nodeRightOff+9], n.rightBrother.Addr)
	buf[nodeLeafOff] = flagByte(n.isLeaf)
	buf[nodeRootOff] = flagByte(n.isRoot)
	binary.BigEndian.PutUint64(buf[nodeCountOff:nodeCountOff+8], uint64(n.list.Len()))
	binary.BigEndian.PutUint64(buf[nodeOrderOff:nodeOrderOff+8], n.order)

	if _, err := f.Write(buf); err != nil {
		return utils.WrapError("node header write failed", err)
	}

	for i := 0; i < n.list.Len(); i++ {
		ka, _ := n.list.Get(i)
		if err := ka.Write(f, nil); err != nil {
			return utils.WrapError("node slot write failed", err)
		}
	}
	return nil
}

// min returns the smallest element. Valid only on a non-empty node.
func (n *node[K]) min() KeyAddr[K] {
	ka, _ := n.list.Get(0)
	return ka
}
