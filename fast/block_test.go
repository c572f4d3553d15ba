package fast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewBlockStartsFullyErased(t *testing.T) {
	b := newBlock(0, 4)
	require.True(t, b.isCleanBlock())
	require.Equal(t, 0, b.validPageCount())
	require.Equal(t, 4, b.erasedPageCount())
	require.Equal(t, uint32(0), b.getEraseCount())
	require.Equal(t, 0, b.nextWritePageIndex())
}

func TestWriteRequiresErasedPage(t *testing.T) {
	b := newBlock(0, 4)
	b.write(0, 100, 1)

	require.True(t, b.isValid(0))
	require.False(t, b.isErased(0))
	require.Equal(t, 1, b.nextWritePageIndex())

	lpn, valid, erased := b.getPageInfo(0)
	require.Equal(t, uint64(100), lpn)
	require.True(t, valid)
	require.False(t, erased)

	require.Panics(t, func() { b.write(0, 200, 2) })
}

func TestInvalidateLeavesPageDirtyNotErased(t *testing.T) {
	b := newBlock(0, 4)
	b.write(0, 1, 1)
	b.invalidate(0)

	require.False(t, b.isValid(0))
	require.False(t, b.isErased(0))
	require.Equal(t, 1, b.dirtyPageCount())
}

func TestEraseResetsBlockAndBumpsCounter(t *testing.T) {
	b := newBlock(0, 4)
	b.write(0, 1, 1)
	b.write(1, 2, 2)
	b.invalidate(0)

	b.erase()

	require.True(t, b.isCleanBlock())
	require.Equal(t, 0, b.validPageCount())
	require.Equal(t, 0, b.dirtyPageCount())
	require.Equal(t, 0, b.nextWritePageIndex())
	require.Equal(t, uint32(1), b.getEraseCount())
}

func TestIdempotentEraseStillIncrementsCounter(t *testing.T) {
	b := newBlock(0, 4)
	require.True(t, b.isCleanBlock())

	b.erase()
	b.erase()

	require.True(t, b.isCleanBlock())
	require.Equal(t, uint32(2), b.getEraseCount())
}

func TestReadRecordsLastAccessedOnlyOnHit(t *testing.T) {
	b := newBlock(0, 4)
	require.False(t, b.read(0, 5))
	require.Equal(t, uint64(0), b.lastAccessed)

	b.write(0, 1, 1)
	require.True(t, b.read(0, 5))
	require.Equal(t, uint64(5), b.lastAccessed)
}
