package fast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// RW recycling: once every page across the six-block RW pool has been
// consumed, the next RW-routed write must recycle the FIFO head via
// merge rather than panicking, and the pool must stay exactly
// kRWBlockCnt blocks afterwards.
func TestRWPoolRecyclesHeadWhenExhausted(t *testing.T) {
	f := newTestFTL()

	// Claim the SW block for a logical block that never collides with
	// the writes below, so every non-zero-offset write to lbn 0 routes
	// through the RW pool instead of the SW log.
	f.write(8)
	f.write(8)

	f.write(1) // fresh write into lbn 0's data block, Case 1.

	require.Equal(t, kRWBlockCnt, f.tables.rwBlocks.Len())

	capacity := kRWBlockCnt * f.param.PagesInBlock
	for i := 0; i < capacity+1; i++ {
		f.write(1)
	}

	require.Equal(t, kRWBlockCnt, f.tables.rwBlocks.Len(), "pool size must stay fixed across recycling")

	loc, ok := f.findValidPage(1)
	require.True(t, ok)
	require.Equal(t, KindRW, loc.kind)

	lpn, valid, _ := f.blocks[loc.pbn].getPageInfo(loc.page)
	require.True(t, valid)
	require.Equal(t, uint64(1), lpn)
}
