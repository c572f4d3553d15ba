package fast

import (
	"log"

	"github.com/ssdsim/fastftl/pal"
)

// writeInternal is the write router: it ensures an L2P entry
// exists, classifies the request against findValidPage, and routes a
// fresh copy directly, through the SW log, or through the RW log
// pool, triggering a merge whenever the chosen destination would
// otherwise be overwritten without an erase in between. data is the
// page content to program at the resolved destination; it is only
// dereferenced when sendToPAL is true.
func (f *FTL) writeInternal(req Request, tick *uint64, sendToPAL bool, data []byte) {
	palReq := pal.Request{IOFlag: true}
	finishedAt := *tick

	lbn, off := f.blockToOffset(req.LPN)

	pbn := f.tables.l2p[lbn]
	if pbn == unmapped {
		pbn = f.tables.getFreeBlock()
		f.tables.l2p[lbn] = pbn
		f.tables.p2l[pbn] = lbn
	}

	loc, found := f.findValidPage(req.LPN)
	if !found {
		// Case 1: fresh write, no prior valid copy.
		target := f.blocks[pbn]
		target.write(off, req.LPN, *tick)

		if sendToPAL {
			palReq.BlockIndex = pbn
			palReq.PageIndex = off
			if err := f.pal.Write(palReq, &finishedAt, data); err != nil {
				log.Printf("fast: pal write failed for block %d page %d: %v", pbn, off, err)
			}
		}

		*tick = finishedAt + f.cpu.WriteInternal
		return
	}

	// Case 2: a prior valid copy exists; invalidate it before routing
	// the new write.
	f.blocks[loc.pbn].invalidate(loc.page)
	if loc.kind == KindRW {
		delete(f.tables.rwLog, req.LPN)
	}

	switch {
	case off == 0:
		finishedAt = f.routeSWStart(req, tick, sendToPAL, lbn, finishedAt, data)
	case f.tables.swBlock != unmapped && f.tables.p2l[f.tables.swBlock] == lbn:
		finishedAt = f.routeSWAppend(req, tick, sendToPAL, off, finishedAt, data)
	default:
		finishedAt = f.routeRW(req, tick, sendToPAL, finishedAt, data)
	}

	*tick = finishedAt + f.cpu.WriteInternal
}

// routeSWStart handles Case 2a: the write is the first page of its
// logical block, so the SW log can (re)start cleanly for this owner.
func (f *FTL) routeSWStart(req Request, tick *uint64, sendToPAL bool, lbn int, finishedAt uint64, data []byte) uint64 {
	sw := f.blocks[f.tables.swBlock]

	if !sw.isCleanBlock() {
		startTick := *tick
		f.mergeLogBlock(f.tables.swBlock, KindSW, nil, &startTick, sendToPAL)
		finishedAt = max64(finishedAt, startTick)

		sw = f.blocks[f.tables.swBlock]
	}

	sw.write(0, req.LPN, *tick)
	f.tables.p2l[f.tables.swBlock] = lbn

	if sendToPAL {
		startTick := *tick
		palReq := pal.Request{BlockIndex: f.tables.swBlock, PageIndex: 0, IOFlag: true}
		if err := f.pal.Write(palReq, &startTick, data); err != nil {
			log.Printf("fast: pal write failed for block %d page %d: %v", f.tables.swBlock, 0, err)
		}
		finishedAt = max64(finishedAt, startTick)
	}

	return finishedAt
}

// routeSWAppend handles Case 2b: the SW block already belongs to this
// logical block, so the new page either slots into an erased SW page
// directly, or forces a full merge carrying the incoming page along.
func (f *FTL) routeSWAppend(req Request, tick *uint64, sendToPAL bool, off int, finishedAt uint64, data []byte) uint64 {
	sw := f.blocks[f.tables.swBlock]

	if sw.isErased(off) {
		sw.write(off, req.LPN, *tick)

		if sendToPAL {
			startTick := *tick
			palReq := pal.Request{BlockIndex: f.tables.swBlock, PageIndex: off, IOFlag: true}
			if err := f.pal.Write(palReq, &startTick, data); err != nil {
				log.Printf("fast: pal write failed for block %d page %d: %v", f.tables.swBlock, off, err)
			}
			finishedAt = max64(finishedAt, startTick)
		}
		return finishedAt
	}

	startTick := *tick
	extra := &mergeExtra{pageOffset: off, lpn: req.LPN, data: data}
	f.mergeLogBlock(f.tables.swBlock, KindSW, extra, &startTick, sendToPAL)
	finishedAt = max64(finishedAt, startTick)

	return finishedAt
}

// routeRW handles Case 2c: the write lands in the RW log pool, either
// in an already-open RW block or, if the pool is full, after recycling
// the head of the FIFO via merge.
func (f *FTL) routeRW(req Request, tick *uint64, sendToPAL bool, finishedAt uint64, data []byte) uint64 {
	target := -1
	for _, pbn := range f.tables.rwBlockIndices() {
		if f.blocks[pbn].erasedPageCount() > 0 {
			target = pbn
			break
		}
	}

	if target == -1 {
		victim := f.tables.popRWHead()

		startTick := *tick
		target = f.mergeLogBlock(victim, KindRW, nil, &startTick, sendToPAL)
		finishedAt = max64(finishedAt, startTick)
	}

	rwBlock := f.blocks[target]
	page := rwBlock.nextWritePageIndex()
	rwBlock.write(page, req.LPN, *tick)
	f.tables.rwLog[req.LPN] = rwLocation{pbn: target, page: page}

	if sendToPAL {
		startTick := *tick
		palReq := pal.Request{BlockIndex: target, PageIndex: page, IOFlag: true}
		if err := f.pal.Write(palReq, &startTick, data); err != nil {
			log.Printf("fast: pal write failed for block %d page %d: %v", target, page, err)
		}
		finishedAt = max64(finishedAt, startTick)
	}

	return finishedAt
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
