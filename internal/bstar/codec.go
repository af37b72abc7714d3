// Package bstar implements a persistent B*-tree index over two files: a
// metadata file carrying the tree header and a data file holding fixed-size
// node pages. Keys are fixed-width values encoded big-endian; leaf entries
// carry an opaque address into the caller's payload file.
package bstar

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/starsql/starsql/internal/utils"
)

// Fixed is the contract a key type must satisfy to be indexed: a
// compile-time-fixed on-disk size, a total order, and big-endian
// encode/decode against a seekable file. Size must return the same non-zero
// constant for every value of the type. When at is non-nil, Read/Write seek
// to that absolute offset first; otherwise they operate at the current
// position.
type Fixed[K any] interface {
	Size() uint64
	Less(other K) bool
	Equal(other K) bool
	Read(f *os.File, at *uint64) (K, error)
	Write(f *os.File, at *uint64) error
	WriteDefault(f *os.File, at *uint64) error
}

// seekMaybe positions f at an absolute offset when one is supplied.
func seekMaybe(f *os.File, at *uint64) error {
	if at == nil {
		return nil
	}
	_, err := f.Seek(int64(*at), io.SeekStart)
	return err
}

func putUint64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }
func getUint64(b []byte) uint64    { return binary.BigEndian.Uint64(b) }

func readUint64(f *os.File) (uint64, error) {
	buf := utils.GetBuffer(8)
	defer utils.ReleaseBuffer(buf)

	if _, err := io.ReadFull(f, buf); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

func writeUint64(f *os.File, v uint64) error {
	buf := utils.GetBuffer(8)
	defer utils.ReleaseBuffer(buf)

	binary.BigEndian.PutUint64(buf, v)
	_, err := f.Write(buf)
	return err
}

// Uint64 is the built-in 8-byte big-endian key type.
type Uint64 uint64

// Size implements Fixed.
func (Uint64) Size() uint64 { return 8 }

// Less implements Fixed.
func (k Uint64) Less(other Uint64) bool { return k < other }

// Equal implements Fixed.
func (k Uint64) Equal(other Uint64) bool { return k == other }

// Read implements Fixed.
func (Uint64) Read(f *os.File, at *uint64) (Uint64, error) {
	if err := seekMaybe(f, at); err != nil {
		return 0, err
	}
	v, err := readUint64(f)
	return Uint64(v), err
}

// Write implements Fixed.
func (k Uint64) Write(f *os.File, at *uint64) error {
	if err := seekMaybe(f, at); err != nil {
		return err
	}
	return writeUint64(f, uint64(k))
}

// WriteDefault implements Fixed. It writes Size() zero bytes.
func (Uint64) WriteDefault(f *os.File, at *uint64) error {
	if err := seekMaybe(f, at); err != nil {
		return err
	}
	return writeUint64(f, 0)
}

// KeyAddr pairs a key with the address of its payload: the byte offset of a
// row in the indexed heap file for a leaf entry, or the byte offset of a
// child page for an internal entry. Ordering and equality are defined on Key
// alone; Addr never participates in comparisons.
type KeyAddr[K Fixed[K]] struct {
	Key  K
	Addr uint64
}

// Size implements Fixed.
func (ka KeyAddr[K]) Size() uint64 {
	return ka.Key.Size() + 8
}

// Less implements Fixed.
func (ka KeyAddr[K]) Less(other KeyAddr[K]) bool {
	return ka.Key.Less(other.Key)
}

// Equal implements Fixed.
func (ka KeyAddr[K]) Equal(other KeyAddr[K]) bool {
	return ka.Key.Equal(other.Key)
}

// Read implements Fixed.
func (KeyAddr[K]) Read(f *os.File, at *uint64) (KeyAddr[K], error) {
	var zero K
	key, err := zero.Read(f, at)
	if err != nil {
		return KeyAddr[K]{}, err
	}
	addr, err := readUint64(f)
	if err != nil {
		return KeyAddr[K]{}, err
	}
	return KeyAddr[K]{Key: key, Addr: addr}, nil
}

// Write implements Fixed.
func (ka KeyAddr[K]) Write(f *os.File, at *uint64) error {
	if err := ka.Key.Write(f, at); err != nil {
		return err
	}
	return writeUint64(f, ka.Addr)
}

// WriteDefault implements Fixed.
func (KeyAddr[K]) WriteDefault(f *os.File, at *uint64) error {
	var zero K
	if err := zero.WriteDefault(f, at); err != nil {
		return err
	}
	return writeUint64(f, 0)
}
