package bstar

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func tempFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.OpenFile(filepath.Join(t.TempDir(), "codec.bin"), os.O_RDWR|os.O_CREATE, 0o666)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func at(v uint64) *uint64 { return &v }

func TestUint64RoundTrip(t *testing.T) {
	f := tempFile(t)

	require.NoError(t, Uint64(0xCAFEBABE).Write(f, at(0)))
	require.NoError(t, Uint64(7).Write(f, nil))

	var zero Uint64
	v, err := zero.Read(f, at(0))
	require.NoError(t, err)
	require.Equal(t, Uint64(0xCAFEBABE), v)

	v, err = zero.Read(f, nil)
	require.NoError(t, err)
	require.Equal(t, Uint64(7), v)
}

func TestUint64WriteDefault(t *testing.T) {
	f := tempFile(t)

	require.NoError(t, Uint64(99).Write(f, at(0)))
	require.NoError(t, Uint64(0).WriteDefault(f, at(0)))

	var zero Uint64
	v, err := zero.Read(f, at(0))
	require.NoError(t, err)
	require.Equal(t, Uint64(0), v)
}

func TestUint64Encoding(t *testing.T) {
	f := tempFile(t)
	require.NoError(t, Uint64(1).Write(f, at(0)))

	buf := make([]byte, 8)
	_, err := f.ReadAt(buf, 0)
	require.NoError(t, err)
	// Big-endian on disk.
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1}, buf)
}

func TestKeyAddrSize(t *testing.T) {
	var ka KeyAddr[Uint64]
	require.Equal(t, uint64(16), ka.Size())
}

func TestKeyAddrOrderingIgnoresAddr(t *testing.T) {
	a := KeyAddr[Uint64]{Key: 1, Addr: 500}
	b := KeyAddr[Uint64]{Key: 1, Addr: 900}
	c := KeyAddr[Uint64]{Key: 2, Addr: 100}

	require.True(t, a.Equal(b))
	require.False(t, a.Less(b))
	require.True(t, a.Less(c))
	require.False(t, c.Less(a))
	require.False(t, a.Equal(c))
}

func TestKeyAddrRoundTrip(t *testing.T) {
	f := tempFile(t)

	in := KeyAddr[Uint64]{Key: 42, Addr: 4096}
	require.NoError(t, in.Write(f, at(16)))

	var zero KeyAddr[Uint64]
	out, err := zero.Read(f, at(16))
	require.NoError(t, err)
	require.Equal(t, in, out)
}
