package bstar

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/starsql/starsql/internal/utils"
)

const (
	dataExt = "bsdat"
	metaExt = "bsmet"
)

// Metadata header layout (big-endian): root offset, element count, order,
// first free page, end of file, one duplicates byte, then the target string
// to end of file.
const (
	metaRootOff  = 0
	metaCountOff = 8
	metaOrderOff = 16
	metaFreeOff  = 24
	metaEOFOff   = 32
	metaDupOff   = 40

	metaHeaderSize = 41
)

// Tree is a persistent B*-tree mapping fixed-size keys to payload addresses.
// It owns two files: <name>.bsmet (header) and <name>.bsdat (node pages).
// A tree is a single-owner object; concurrent use must be serialized by the
// caller.
type Tree[K Fixed[K]] struct {
	root            uint64
	elementCount    uint64
	order           uint64
	freeAddr        uint64
	eof             uint64
	allowDuplicates bool
	target          string

	meta *os.File
	dat  *os.File
}

func dataPath(name string) string { return name + "." + dataExt }
func metaPath(name string) string { return name + "." + metaExt }

// Create creates a new tree with the given order. Duplicate keys are
// refused; use CreateWithDuplicates to permit them. Existing files with the
// same name are truncated. The target string is stored opaquely in the
// header, typically the name of the heap file the tree indexes.
func Create[K Fixed[K]](name, target string, order uint64) (*Tree[K], error) {
	return create[K](name, target, order, false)
}

// CreateWithDuplicates is Create with the duplicate-keys flag set.
func CreateWithDuplicates[K Fixed[K]](name, target string, order uint64) (*Tree[K], error) {
	return create[K](name, target, order, true)
}

func create[K Fixed[K]](name, target string, order uint64, allowDuplicates bool) (*Tree[K], error) {
	if order == 0 {
		return nil, errors.New("tree order must be at least 1")
	}
	var zero KeyAddr[K]
	if _, err := utils.SafeMultiply(2*order, zero.Size()); err != nil {
		return nil, utils.WrapError("page size", err)
	}

	dat, err := os.OpenFile(dataPath(name), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, utils.WrapError("creating data file", err)
	}
	meta, err := os.OpenFile(metaPath(name), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		dat.Close()
		return nil, utils.WrapError("creating metadata file", err)
	}

	t := &Tree[K]{
		order:           order,
		allowDuplicates: allowDuplicates,
		target:          target,
		meta:            meta,
		dat:             dat,
	}
	if err := t.writeHeader(); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

func (t *Tree[K]) writeHeader() error {
	buf := make([]byte, metaHeaderSize, metaHeaderSize+len(t.target))
	putUint64(buf[metaRootOff:], t.root)
	putUint64(buf[metaCountOff:], t.elementCount)
	putUint64(buf[metaOrderOff:], t.order)
	putUint64(buf[metaFreeOff:], t.freeAddr)
	putUint64(buf[metaEOFOff:], t.eof)
	buf[metaDupOff] = flagByte(t.allowDuplicates)
	buf = append(buf, t.target...)

	if _, err := t.meta.WriteAt(buf, 0); err != nil {
		return utils.WrapError("writing tree header", err)
	}
	return nil
}

// Load reopens an existing tree.
func Load[K Fixed[K]](name string) (*Tree[K], error) {
	dat, err := os.OpenFile(dataPath(name), os.O_RDWR, 0)
	if err != nil {
		return nil, utils.WrapError("opening data file", err)
	}
	meta, err := os.OpenFile(metaPath(name), os.O_RDWR, 0)
	if err != nil {
		dat.Close()
		return nil, utils.WrapError("opening metadata file", err)
	}

	buf := make([]byte, metaHeaderSize)
	if _, err := io.ReadFull(meta, buf); err != nil {
		dat.Close()
		meta.Close()
		return nil, utils.WrapError("reading tree header", err)
	}
	rest, err := io.ReadAll(meta)
	if err != nil {
		dat.Close()
		meta.Close()
		return nil, utils.WrapError("reading tree target", err)
	}

	return &Tree[K]{
		root:            getUint64(buf[metaRootOff:]),
		elementCount:    getUint64(buf[metaCountOff:]),
		order:           getUint64(buf[metaOrderOff:]),
		freeAddr:        getUint64(buf[metaFreeOff:]),
		eof:             getUint64(buf[metaEOFOff:]),
		allowDuplicates: buf[metaDupOff] == 1,
		target:          string(rest),
		meta:            meta,
		dat:             dat,
	}, nil
}

// Remove deletes the tree's files.
func Remove(name string) error {
	if err := os.Remove(dataPath(name)); err != nil {
		return err
	}
	return os.Remove(metaPath(name))
}

// Close releases both file handles. The files persist until Remove.
func (t *Tree[K]) Close() error {
	err := t.dat.Close()
	if merr := t.meta.Close(); err == nil {
		err = merr
	}
	return err
}

// Reset empties the tree: the data file is truncated and the header offsets
// and element count are zeroed.
func (t *Tree[K]) Reset() error {
	if err := t.dat.Truncate(0); err != nil {
		return utils.WrapError("truncating data file", err)
	}
	if err := t.setRoot(0); err != nil {
		return err
	}
	if err := t.setFreeAddr(0); err != nil {
		return err
	}
	if err := t.setEOF(0); err != nil {
		return err
	}
	return t.setElementCount(0)
}

// Order returns the tree's order: the minimum fill of a non-root node.
// Node capacity is twice the order.
func (t *Tree[K]) Order() uint64 { return t.order }

// Len returns the number of keys in the tree.
func (t *Tree[K]) Len() uint64 { return t.elementCount }

// Target returns the opaque target string stored at creation.
func (t *Tree[K]) Target() string { return t.target }

// AllowsDuplicates reports whether duplicate keys are permitted.
func (t *Tree[K]) AllowsDuplicates() bool { return t.allowDuplicates }

// header field writers: every counter mutation is persisted immediately at
// its fixed offset.

func (t *Tree[K]) setRoot(v uint64) error {
	t.root = v
	return utils.WriteUint64(t.meta, metaRootOff, v)
}

func (t *Tree[K]) setElementCount(v uint64) error {
	t.elementCount = v
	return utils.WriteUint64(t.meta, metaCountOff, v)
}

func (t *Tree[K]) setFreeAddr(v uint64) error {
	t.freeAddr = v
	return utils.WriteUint64(t.meta, metaFreeOff, v)
}

func (t *Tree[K]) setEOF(v uint64) error {
	t.eof = v
	return utils.WriteUint64(t.meta, metaEOFOff, v)
}

// useFreeAddr hands out the next page address: the head of the free list if
// one exists, otherwise a fresh page at the end of the file. The data file
// is kept exactly eof bytes long.
func (t *Tree[K]) useFreeAddr() (uint64, error) {
	if t.freeAddr != t.eof {
		next, err := utils.ReadUint64(t.dat, int64(t.freeAddr))
		if err != nil {
			return 0, utils.WrapError("reading free-list link", err)
		}
		addr := t.freeAddr
		return addr, t.setFreeAddr(next)
	}

	addr := t.eof
	newEOF := addr + pageSize[K](t.order)
	if err := t.dat.Truncate(int64(newEOF)); err != nil {
		return 0, utils.WrapError("growing data file", err)
	}
	if err := t.setFreeAddr(newEOF); err != nil {
		return 0, err
	}
	return addr, t.setEOF(newEOF)
}

// updateFreeAddr returns a page to the free list. The caller guarantees the
// page contents are no longer referenced; its first eight bytes become the
// next-free link. The last page is given back to the file system instead,
// but only while the free list is empty, so that every stored link still
// terminates at eof.
func (t *Tree[K]) updateFreeAddr(page uint64) error {
	if t.freeAddr == t.eof && page+pageSize[K](t.order) == t.eof {
		if err := t.dat.Truncate(int64(page)); err != nil {
			return utils.WrapError("truncating data file", err)
		}
		if err := t.setEOF(page); err != nil {
			return err
		}
		return t.setFreeAddr(page)
	}

	if err := utils.WriteUint64(t.dat, int64(page), t.freeAddr); err != nil {
		return utils.WrapError("writing free-list link", err)
	}
	return t.setFreeAddr(page)
}

// internalLookup is the result of a descent: the leaf that holds or would
// hold the key, its page address, and the slot index.
type internalLookup[K Fixed[K]] struct {
	found  bool
	node   *node[K]
	addr   uint64
	index  int
	target uint64
}

// lookupInternal descends from the root to the leaf responsible for key. At
// each internal node it follows the child whose reaching key is the largest
// one not above the key, child 0 if none. The tree must not be empty.
func (t *Tree[K]) lookupInternal(key KeyAddr[K]) (*internalLookup[K], error) {
	addr := t.root
	n, err := readNode[K](t.dat, &addr)
	if err != nil {
		return nil, err
	}
	found, idx := n.list.Search(key)

	for !n.isLeaf {
		i := idx
		if ka, ok := n.list.Get(i); ok && i != 0 && key.Less(ka) {
			i--
		}
		child, ok := n.list.Get(i)
		if !ok {
			return nil, utils.WrapError("descent slot missing", ErrCorruptPage)
		}
		addr = child.Addr
		if n, err = readNode[K](t.dat, &addr); err != nil {
			return nil, err
		}
		found, idx = n.list.Search(key)
	}

	res := &internalLookup[K]{found: found, node: n, addr: addr, index: idx}
	if found {
		ka, _ := n.list.Get(idx)
		res.target = ka.Addr
	}
	return res, nil
}

// Lookup returns the stored pair for key, or nil if the key is absent.
func (t *Tree[K]) Lookup(key K) (*KeyAddr[K], error) {
	if t.elementCount == 0 {
		return nil, nil
	}
	lookup, err := t.lookupInternal(KeyAddr[K]{Key: key})
	if err != nil {
		return nil, err
	}
	if !lookup.found {
		return nil, nil
	}
	return &KeyAddr[K]{Key: key, Addr: lookup.target}, nil
}

// Insert adds a key/address pair. It returns false without modifying the
// tree when the key already exists and duplicates are disallowed.
func (t *Tree[K]) Insert(ka KeyAddr[K]) (bool, error) {
	if t.elementCount == 0 {
		addr, err := t.useFreeAddr()
		if err != nil {
			return false, err
		}
		n := &node[K]{isLeaf: true, isRoot: true, order: t.order}
		n.list.Insert(ka)
		if err := n.write(t.dat, &addr); err != nil {
			return false, err
		}
		if err := t.setRoot(addr); err != nil {
			return false, err
		}
		return true, t.setElementCount(t.elementCount + 1)
	}

	lookup, err := t.lookupInternal(ka)
	if err != nil {
		return false, err
	}
	if lookup.found && !t.allowDuplicates {
		return false, nil
	}

	n := lookup.node
	if n.list.Insert(ka) == 0 {
		// The leaf minimum changed; its reaching key moves up the tree.
		old, _ := n.list.Get(1)
		if err := t.delegateReachingKey(n, old.Key); err != nil {
			return false, err
		}
	}
	if err := t.delegateOverflow(n, lookup.addr); err != nil {
		return false, err
	}
	return true, t.setElementCount(t.elementCount + 1)
}

// delegateReachingKey replaces the parent entry that referenced this node
// under oldKey with the node's current minimum, recursing while the change
// keeps landing on slot 0.
func (t *Tree[K]) delegateReachingKey(n *node[K], oldKey K) error {
	if n.isRoot || n.list.Empty() {
		return nil
	}
	newKey := n.min().Key

	father, err := readNode[K](t.dat, &n.father)
	if err != nil {
		return err
	}
	removed, ok := father.list.DeleteByKey(KeyAddr[K]{Key: oldKey})
	if !ok {
		return utils.WrapError("reaching key missing in parent", ErrCorruptPage)
	}
	pos := father.list.Insert(KeyAddr[K]{Key: newKey, Addr: removed.Addr})
	if err := father.write(t.dat, &n.father); err != nil {
		return err
	}
	if pos == 0 {
		return t.delegateReachingKey(father, oldKey)
	}
	return nil
}

// delegateOverflow writes the node back, splitting first if it exceeds
// capacity. A split allocates one page for the upper half and hands its
// reaching key to the parent, which may overflow in turn. A root split
// allocates a second page for the new root.
func (t *Tree[K]) delegateOverflow(n *node[K], addr uint64) error {
	if n.list.Len() <= int(2*t.order) {
		return n.write(t.dat, &addr)
	}

	fatherAddr := n.father
	mid := n.list.Len() / 2
	rightList := n.list.SplitAt(mid)

	rightAddr, err := t.useFreeAddr()
	if err != nil {
		return err
	}
	rightSon := &node[K]{
		list:         rightList,
		father:       fatherAddr,
		leftBrother:  pageRef{Valid: true, Addr: addr},
		rightBrother: n.rightBrother,
		isLeaf:       n.isLeaf,
		order:        t.order,
	}
	oldRight := n.rightBrother
	n.rightBrother = pageRef{Valid: true, Addr: rightAddr}

	if !rightSon.isLeaf {
		// The moved half's children now live under the new page.
		for i := 0; i < rightSon.list.Len(); i++ {
			child, _ := rightSon.list.Get(i)
			if err := utils.WriteUint64(t.dat, int64(child.Addr+nodeFatherOff), rightAddr); err != nil {
				return utils.WrapError("repointing child parent", err)
			}
		}
	} else if oldRight.Valid {
		if err := t.patchBrother(oldRight.Addr, nodeLeftOff, pageRef{Valid: true, Addr: rightAddr}); err != nil {
			return err
		}
	}

	rightKA := KeyAddr[K]{Key: rightSon.min().Key, Addr: rightAddr}

	if n.isRoot {
		newRootAddr, err := t.useFreeAddr()
		if err != nil {
			return err
		}
		n.father = newRootAddr
		n.isRoot = false
		rightSon.father = newRootAddr

		newRoot := &node[K]{isRoot: true, order: t.order}
		newRoot.list.Insert(KeyAddr[K]{Key: n.min().Key, Addr: addr})
		newRoot.list.Insert(rightKA)

		if err := t.setRoot(newRootAddr); err != nil {
			return err
		}
		if err := newRoot.write(t.dat, &newRootAddr); err != nil {
			return err
		}
		if err := n.write(t.dat, &addr); err != nil {
			return err
		}
		return rightSon.write(t.dat, &rightAddr)
	}

	father, err := readNode[K](t.dat, &fatherAddr)
	if err != nil {
		return err
	}
	father.list.Insert(rightKA)
	rightSon.father = fatherAddr
	if err := rightSon.write(t.dat, &rightAddr); err != nil {
		return err
	}
	if err := n.write(t.dat, &addr); err != nil {
		return err
	}
	return t.delegateOverflow(father, fatherAddr)
}

// patchBrother overwrites one sibling field of the page at addr in place.
func (t *Tree[K]) patchBrother(addr uint64, fieldOff uint64, ref pageRef) error {
	buf := utils.GetBuffer(9)
	defer utils.ReleaseBuffer(buf)

	buf[0] = flagByte(ref.Valid)
	putUint64(buf[1:], ref.Addr)
	if _, err := t.dat.WriteAt(buf, int64(addr+fieldOff)); err != nil {
		return utils.WrapError("patching sibling link", err)
	}
	return nil
}

// DeleteKey removes key and returns the stored pair, or nil if absent.
func (t *Tree[K]) DeleteKey(key K) (*KeyAddr[K], error) {
	if t.elementCount == 0 {
		return nil, nil
	}
	lookup, err := t.lookupInternal(KeyAddr[K]{Key: key})
	if err != nil {
		return nil, err
	}
	if !lookup.found {
		return nil, nil
	}
	if err := t.delegateUnderflow(lookup.node, lookup.index, lookup.addr); err != nil {
		return nil, err
	}
	if err := t.setElementCount(t.elementCount - 1); err != nil {
		return nil, err
	}
	return &KeyAddr[K]{Key: key, Addr: lookup.target}, nil
}

type side int

const (
	sideLeft side = iota
	sideRight
)

// delegateUnderflow removes the entry at keyIndex from the node at
// nodeAddr, then repairs the tree: comfortable nodes are written back,
// underflowing nodes borrow from or merge with a sibling, and the root
// shrinks or empties the tree when it runs out.
func (t *Tree[K]) delegateUnderflow(n *node[K], keyIndex int, nodeAddr uint64) error {
	order := int(t.order)

	if n.list.Len() > order {
		removed, _ := n.list.DeleteAt(keyIndex)
		if keyIndex == 0 {
			if err := t.delegateReachingKey(n, removed.Key); err != nil {
				return err
			}
		}
		return n.write(t.dat, &nodeAddr)
	}

	if n.isRoot {
		return t.underflowRoot(n, keyIndex, nodeAddr)
	}

	removed, _ := n.list.DeleteAt(keyIndex)

	father, err := readNode[K](t.dat, &n.father)
	if err != nil {
		return err
	}
	// Locate the node's reaching-key slot on the father.
	_, pos := father.list.Search(KeyAddr[K]{Key: removed.Key})
	if ka, ok := father.list.Get(pos); ok && pos != 0 && removed.Key.Less(ka.Key) {
		pos--
	}

	if keyIndex == 0 && !n.list.Empty() {
		if err := t.delegateReachingKey(n, removed.Key); err != nil {
			return err
		}
		if father, err = readNode[K](t.dat, &n.father); err != nil {
			return err
		}
	}

	if father.list.Len() < 2 {
		// An only child has nobody to borrow from or merge with; it stays
		// underfilled. Reachable only with order 1.
		return n.write(t.dat, &nodeAddr)
	}

	peer, peerSide, peerAddr, err := t.pickPeer(father, pos)
	if err != nil {
		return err
	}

	if peer.list.Len() <= order {
		return t.mergePeers(n, nodeAddr, peer, peerSide, peerAddr, father, pos)
	}
	return t.redistribute(n, nodeAddr, peer, peerSide, peerAddr, father, pos)
}

// underflowRoot handles deletion when the node is the root: small leaf
// roots shrink in place or empty the tree, and an internal root with a
// single surviving child hands the root role down one level.
func (t *Tree[K]) underflowRoot(n *node[K], keyIndex int, nodeAddr uint64) error {
	if n.list.Len() > 2 {
		n.list.DeleteAt(keyIndex)
		return n.write(t.dat, &nodeAddr)
	}

	if n.isLeaf {
		if n.list.Len() == 2 {
			n.list.DeleteAt(keyIndex)
			return n.write(t.dat, &nodeAddr)
		}
		// Deleting the last element empties the tree.
		if err := t.dat.Truncate(0); err != nil {
			return utils.WrapError("truncating data file", err)
		}
		if err := t.setRoot(0); err != nil {
			return err
		}
		if err := t.setFreeAddr(0); err != nil {
			return err
		}
		return t.setEOF(0)
	}

	// Internal root with two children: the survivor becomes the root.
	n.list.DeleteAt(keyIndex)
	surviving := n.min()
	if err := t.updateFreeAddr(nodeAddr); err != nil {
		return err
	}
	if err := t.setRoot(surviving.Addr); err != nil {
		return err
	}
	newRoot, err := readNode[K](t.dat, &t.root)
	if err != nil {
		return err
	}
	newRoot.isRoot = true
	newRoot.father = 0
	return newRoot.write(t.dat, &t.root)
}

// pickPeer chooses the sibling to borrow from or merge with: the larger of
// the two adjacent siblings on the father, or the only one that exists.
func (t *Tree[K]) pickPeer(father *node[K], pos int) (*node[K], side, uint64, error) {
	var leftAddr, rightAddr *uint64
	if ka, ok := father.list.Get(pos + 1); ok {
		rightAddr = &ka.Addr
	}
	if pos > 0 {
		ka, _ := father.list.Get(pos - 1)
		leftAddr = &ka.Addr
	}

	switch {
	case leftAddr != nil && rightAddr != nil:
		rightNode, err := readNode[K](t.dat, rightAddr)
		if err != nil {
			return nil, 0, 0, err
		}
		leftNode, err := readNode[K](t.dat, leftAddr)
		if err != nil {
			return nil, 0, 0, err
		}
		if rightNode.list.Len() > leftNode.list.Len() {
			return rightNode, sideRight, *rightAddr, nil
		}
		return leftNode, sideLeft, *leftAddr, nil
	case rightAddr == nil:
		leftNode, err := readNode[K](t.dat, leftAddr)
		return leftNode, sideLeft, *leftAddr, err
	default:
		rightNode, err := readNode[K](t.dat, rightAddr)
		return rightNode, sideRight, *rightAddr, err
	}
}

// mergePeers concatenates the underflowing node and its sibling into the
// left member of the pair, frees the right member's page, mends the leaf
// chain across the freed page, and removes the freed page's reaching key
// from the father by recursion.
func (t *Tree[K]) mergePeers(n *node[K], nodeAddr uint64, peer *node[K], peerSide side, peerAddr uint64, father *node[K], pos int) error {
	if peerSide == sideLeft {
		for !n.list.Empty() {
			v, _ := n.list.DeleteAt(0)
			peer.list.InsertAt(peer.list.Len(), v)
			if !peer.isLeaf {
				if err := utils.WriteUint64(t.dat, int64(v.Addr+nodeFatherOff), peerAddr); err != nil {
					return utils.WrapError("repointing child parent", err)
				}
			}
		}
		peer.rightBrother = n.rightBrother
		if n.rightBrother.Valid {
			if err := t.patchBrother(n.rightBrother.Addr, nodeLeftOff, pageRef{Valid: true, Addr: peerAddr}); err != nil {
				return err
			}
		}
		if err := peer.write(t.dat, &peerAddr); err != nil {
			return err
		}
		if err := t.updateFreeAddr(nodeAddr); err != nil {
			return err
		}
		return t.delegateUnderflow(father, pos, n.father)
	}

	for !peer.list.Empty() {
		v, _ := peer.list.DeleteAt(0)
		n.list.InsertAt(n.list.Len(), v)
		if !n.isLeaf {
			if err := utils.WriteUint64(t.dat, int64(v.Addr+nodeFatherOff), nodeAddr); err != nil {
				return utils.WrapError("repointing child parent", err)
			}
		}
	}
	n.rightBrother = peer.rightBrother
	if peer.rightBrother.Valid {
		if err := t.patchBrother(peer.rightBrother.Addr, nodeLeftOff, pageRef{Valid: true, Addr: nodeAddr}); err != nil {
			return err
		}
	}
	if err := n.write(t.dat, &nodeAddr); err != nil {
		return err
	}
	if err := t.updateFreeAddr(peerAddr); err != nil {
		return err
	}
	return t.delegateUnderflow(father, pos+1, n.father)
}

// redistribute moves elements across the sibling boundary so both ends are
// roughly equally filled, then fixes the reaching key of whichever side of
// the pair got a new minimum.
func (t *Tree[K]) redistribute(n *node[K], nodeAddr uint64, peer *node[K], peerSide side, peerAddr uint64, father *node[K], pos int) error {
	move := (peer.list.Len() - n.list.Len()) / 2

	if peerSide == sideLeft {
		for i := 0; i < move; i++ {
			v, _ := peer.list.DeleteAt(peer.list.Len() - 1)
			n.list.InsertAt(0, v)
			if !n.isLeaf {
				if err := utils.WriteUint64(t.dat, int64(v.Addr+nodeFatherOff), nodeAddr); err != nil {
					return utils.WrapError("repointing child parent", err)
				}
			}
		}
		ka, _ := father.list.Get(pos)
		father.list.Set(pos, KeyAddr[K]{Key: n.min().Key, Addr: ka.Addr})
	} else {
		for i := 0; i < move; i++ {
			v, _ := peer.list.DeleteAt(0)
			n.list.InsertAt(n.list.Len(), v)
			if !n.isLeaf {
				if err := utils.WriteUint64(t.dat, int64(v.Addr+nodeFatherOff), nodeAddr); err != nil {
					return utils.WrapError("repointing child parent", err)
				}
			}
		}
		ka, _ := father.list.Get(pos + 1)
		father.list.Set(pos+1, KeyAddr[K]{Key: peer.min().Key, Addr: ka.Addr})
	}

	if err := peer.write(t.dat, &peerAddr); err != nil {
		return err
	}
	if err := n.write(t.dat, &nodeAddr); err != nil {
		return err
	}
	return father.write(t.dat, &n.father)
}

// DumpTo writes a human-readable rendering of the tree, one node per line,
// children indented below their parent.
func (t *Tree[K]) DumpTo(w io.Writer) error {
	if t.elementCount == 0 {
		_, err := fmt.Fprintln(w, "<empty>")
		return err
	}
	return t.dumpRec(w, t.root, "")
}

func (t *Tree[K]) dumpRec(w io.Writer, addr uint64, delim string) error {
	n, err := readNode[K](t.dat, &addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s%d:  ", delim, addr)
	for i := 0; i < n.list.Len(); i++ {
		ka, _ := n.list.Get(i)
		fmt.Fprintf(w, "%v => %v ;  ", ka.Key, ka.Addr)
	}
	fmt.Fprintln(w)

	if !n.isLeaf {
		for i := 0; i < n.list.Len(); i++ {
			ka, _ := n.list.Get(i)
			if err := t.dumpRec(w, ka.Addr, delim+"|----"); err != nil {
				return err
			}
		}
	}
	return nil
}
