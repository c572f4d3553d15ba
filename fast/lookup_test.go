package fast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindValidPageMissOnUnwrittenLPN(t *testing.T) {
	f := newTestFTL()
	_, ok := f.findValidPage(42)
	require.False(t, ok)
}

func TestFindValidPageHitsDataBlockAfterFreshWrite(t *testing.T) {
	f := newTestFTL()
	f.write(0)

	loc, ok := f.findValidPage(0)
	require.True(t, ok)
	require.Equal(t, KindData, loc.kind)
}

func TestFindValidPageHitsSWBlockAfterOwnedAppend(t *testing.T) {
	f := newTestFTL()
	f.write(0)
	f.write(1)
	f.write(2)
	f.write(3)

	// Claim the SW block for lbn 0, then append page 1 into it.
	f.write(0)
	f.write(1)

	loc, ok := f.findValidPage(1)
	require.True(t, ok)
	require.Equal(t, KindSW, loc.kind)
	require.Equal(t, f.tables.swBlock, loc.pbn)
}

func TestFindValidPageHitsRWLogWhenSWOwnedByAnotherBlock(t *testing.T) {
	f := newTestFTL()

	// Claim SW for lbn 2 (LPN 8, off 0) via two writes.
	f.write(8)
	f.write(8)

	// lbn 0 needs a non-zero-offset write while SW belongs to lbn 2.
	f.write(1)
	f.write(1)

	loc, ok := f.findValidPage(1)
	require.True(t, ok)
	require.Equal(t, KindRW, loc.kind)
}
