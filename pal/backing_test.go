package pal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// memBacking is a trivial in-memory ReadWriterAt, standing in for an
// *os.File in tests.
type memBacking struct {
	buf []byte
}

func newMemBacking(size int) *memBacking {
	return &memBacking{buf: make([]byte, size)}
}

func (m *memBacking) ReadAt(p []byte, off int64) (int, error) {
	return copy(p, m.buf[off:]), nil
}

func (m *memBacking) WriteAt(p []byte, off int64) (int, error) {
	return copy(m.buf[off:], p), nil
}

func TestFileBackedWritePersistsToBacking(t *testing.T) {
	backing := newMemBacking(4 * 8)
	p := NewFileBacked(4, 2, 4, DefaultLatencies(), backing)

	data := []byte{1, 2, 3, 4}
	var tick uint64
	require.NoError(t, p.Write(Request{BlockIndex: 2, PageIndex: 1, IOFlag: true}, &tick, data))

	got := make([]byte, 4)
	_, err := backing.ReadAt(got, int64(2*8+1*4))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestFileBackedEraseZeroesBackingRegion(t *testing.T) {
	backing := newMemBacking(2 * 8)
	p := NewFileBacked(2, 2, 4, DefaultLatencies(), backing)

	data := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	var tick uint64
	require.NoError(t, p.Write(Request{BlockIndex: 0, PageIndex: 0, IOFlag: true}, &tick, data))
	require.NoError(t, p.Erase(Request{BlockIndex: 0}, &tick))

	got := make([]byte, 8)
	_, err := backing.ReadAt(got, 0)
	require.NoError(t, err)
	require.Equal(t, make([]byte, 8), got)
}
