package bstar

import "os"

// Iterator yields the tree's pairs in ascending key order by walking the
// leaf right-sibling chain. It is lazy, finite and non-restartable, and
// consumes only its in-memory leaf copy; the file is never mutated.
// Mutating the tree while an iterator is live is not supported.
type Iterator[K Fixed[K]] struct {
	dat  *os.File
	node *node[K]
}

// Next returns the next pair, or nil once the iteration is exhausted.
func (it *Iterator[K]) Next() (*KeyAddr[K], error) {
	for it.node.list.Empty() {
		if !it.node.rightBrother.Valid {
			return nil, nil
		}
		addr := it.node.rightBrother.Addr
		n, err := readNode[K](it.dat, &addr)
		if err != nil {
			return nil, err
		}
		it.node = n
	}
	ka, _ := it.node.list.DeleteAt(0)
	return &ka, nil
}

// Iter iterates the whole tree starting at the smallest key.
func (t *Tree[K]) Iter() (*Iterator[K], error) {
	if t.elementCount == 0 {
		return &Iterator[K]{dat: t.dat, node: &node[K]{}}, nil
	}

	addr := t.root
	n, err := readNode[K](t.dat, &addr)
	if err != nil {
		return nil, err
	}
	for !n.isLeaf {
		addr = n.min().Addr
		if n, err = readNode[K](t.dat, &addr); err != nil {
			return nil, err
		}
	}
	return &Iterator[K]{dat: t.dat, node: n}, nil
}

// IterStartAt iterates starting at the first key not below key. A missing
// key positions the iterator at its insertion point.
func (t *Tree[K]) IterStartAt(key K) (*Iterator[K], error) {
	if t.elementCount == 0 {
		return &Iterator[K]{dat: t.dat, node: &node[K]{}}, nil
	}

	lookup, err := t.lookupInternal(KeyAddr[K]{Key: key})
	if err != nil {
		return nil, err
	}
	n := lookup.node
	for !n.list.Empty() && n.min().Key.Less(key) {
		n.list.DeleteAt(0)
	}
	return &Iterator[K]{dat: t.dat, node: n}, nil
}
