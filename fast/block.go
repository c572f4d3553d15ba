package fast

import "github.com/ssdsim/fastftl/fast/bitset"

// block is the per-physical-block state the FAST mapping engine tracks:
// which pages are valid, which are erased (programmable), which LPN
// each valid page holds, and the write cursor. It owns its storage
// directly; there is no copy/move constructor to write because Go value
// semantics and slice/pointer ownership already express the transfer
// the original C++ BlockFast needed hand-written constructors for.
type block struct {
	index     int
	pageCount int

	validBits  *bitset.Bitset
	erasedBits *bitset.Bitset
	lpns       []uint64

	nextWrite    int
	lastAccessed uint64
	eraseCount   uint32
}

func newBlock(index, pageCount int) *block {
	b := &block{
		index:     index,
		pageCount: pageCount,
		lpns:      make([]uint64, pageCount),
	}
	b.validBits = bitset.New(pageCount)
	b.erasedBits = bitset.New(pageCount)
	b.erase()
	b.eraseCount = 0
	return b
}

func (b *block) getBlockIndex() int      { return b.index }
func (b *block) getEraseCount() uint32   { return b.eraseCount }
func (b *block) validPageCount() int     { return b.validBits.Count() }
func (b *block) erasedPageCount() int    { return b.erasedBits.Count() }
func (b *block) dirtyPageCount() int     { return b.validBits.NorCount(b.erasedBits) }
func (b *block) nextWritePageIndex() int { return b.nextWrite }

func (b *block) isCleanBlock() bool {
	return b.erasedBits.Count() == b.pageCount
}

// getPageInfo returns the LPN stored at pageIndex (meaningful only
// when valid), and whether the page is currently valid or erased.
func (b *block) getPageInfo(pageIndex int) (lpn uint64, valid, erased bool) {
	valid = b.validBits.Test(pageIndex)
	erased = b.erasedBits.Test(pageIndex)
	if valid {
		lpn = b.lpns[pageIndex]
	}
	return
}

func (b *block) isValid(pageIndex int) bool  { return b.validBits.Test(pageIndex) }
func (b *block) isErased(pageIndex int) bool { return b.erasedBits.Test(pageIndex) }

// read reports whether pageIndex currently holds a valid page; on a
// hit it records the access tick. It never touches PAL state itself.
func (b *block) read(pageIndex int, tick uint64) bool {
	ok := b.validBits.Test(pageIndex)
	if ok {
		b.lastAccessed = tick
	}
	return ok
}

// write programs pageIndex with lpn. The page must currently be
// erased; writing a non-erased page is a fatal policy error, since the
// router is responsible for never attempting it.
func (b *block) write(pageIndex int, lpn uint64, tick uint64) {
	if !b.erasedBits.Test(pageIndex) {
		panic("fast: write to non-erased page")
	}

	b.erasedBits.Clear(pageIndex)
	b.validBits.Set(pageIndex)
	b.lpns[pageIndex] = lpn
	b.lastAccessed = tick
	b.nextWrite = pageIndex + 1
}

// erase resets the block to the fully-erased, zero-cursor state and
// bumps the erase counter. Idempotent for mapping-table purposes: an
// already-clean block returns to the same state but still counts the
// erase, matching the original FTL's erase() semantics.
func (b *block) erase() {
	b.validBits.ClearAll()
	b.erasedBits.SetAll()
	b.nextWrite = 0
	b.eraseCount++
}

// invalidate clears the valid bit for pageIndex; the page remains
// dirty (neither valid nor erased) until the block is erased.
func (b *block) invalidate(pageIndex int) {
	b.validBits.Clear(pageIndex)
}
