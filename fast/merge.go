package fast

import (
	"log"
	"sort"

	"github.com/ssdsim/fastftl/pal"
)

// mergeExtra carries the "additional page" the router was in the
// middle of writing when it discovered a conflict in the SW log
// block, along with its content so the merge's write list actually
// programs it rather than just reserving its slot.
type mergeExtra struct {
	pageOffset int
	lpn        uint64
	data       []byte
}

// readOp is one page of a merge's read phase. buf, when non-nil, is
// filled with the page's current content and is the same slice the
// paired writeOp below carries forward, so a page's bytes move from
// its old physical home to its new one without the plan functions
// needing to align reads and writes by position.
type readOp struct {
	pbn, page int
	buf       []byte
}

// writeOp is one page of a merge's write phase. data is either a
// buffer shared with a readOp (relocating an existing valid page) or
// the caller-supplied payload of an incoming write folded in via
// mergeExtra.
type writeOp struct {
	pbn, page int
	lpn       uint64
	data      []byte
}

// mergeLogBlock garbage-collects the log block at logPbn (kind SW or
// RW), emitting PAL sub-operations and rewriting the mapping tables so
// that, on return, every valid page is findable at its new home. The
// victim log block is either promoted to the owner's data block (SW
// switching merge) or erased and returned to the free queue.
// It also allocates the single replacement log block the victim's role
// needs and reinserts it itself (SWBlock is reassigned, or the new RW
// block is pushed onto RWBlocks) so ownership transitions stay local
// to the merge engine instead of being split across two call sites.
func (f *FTL) mergeLogBlock(logPbn int, kind BlockKind, extra *mergeExtra, tick *uint64, sendToPAL bool) int {
	var reads []readOp
	var writes []writeOp
	var erases []int

	var replacement int

	switch kind {
	case KindRW:
		reads, writes, erases, replacement = f.planRWMerge(logPbn, sendToPAL)
	case KindSW:
		reads, writes, erases, replacement = f.planSWMerge(logPbn, extra, sendToPAL)
	default:
		panic("fast: merge called with unknown block kind")
	}

	f.runMergePhases(reads, writes, erases, tick, sendToPAL)

	switch kind {
	case KindRW:
		f.tables.pushRWTail(replacement)
	case KindSW:
		f.tables.swBlock = replacement
	}

	return replacement
}

// mergePageBuf returns a fresh page-sized buffer when sendToPAL is
// true, or nil otherwise: when a merge isn't touching the PAL (the
// warmup driver's fast-forward mode), relocated pages never need their
// bytes actually copied, so there's no reason to allocate for them.
func (f *FTL) mergePageBuf(sendToPAL bool) []byte {
	if !sendToPAL {
		return nil
	}
	return make([]byte, f.pal.PageSize())
}

// planRWMerge handles the RW-merge case: the victim RW block may
// hold valid pages belonging to several distinct logical blocks, each
// of which gets a fresh data block before the victim is erased.
func (f *FTL) planRWMerge(logPbn int, sendToPAL bool) (reads []readOp, writes []writeOp, erases []int, replacement int) {
	logBlock := f.blocks[logPbn]

	lbnSet := map[int]struct{}{}
	for i := 0; i < f.param.PagesInBlock; i++ {
		lpn, valid, _ := logBlock.getPageInfo(i)
		if valid {
			lbn, _ := f.blockToOffset(lpn)
			lbnSet[lbn] = struct{}{}
			delete(f.tables.rwLog, lpn)
		}
	}

	lbns := make([]int, 0, len(lbnSet))
	for lbn := range lbnSet {
		lbns = append(lbns, lbn)
	}
	sort.Ints(lbns)

	newPbnOf := make(map[int]int, len(lbns))
	oldPbnOf := make(map[int]int, len(lbns))
	for _, lbn := range lbns {
		newPbn := f.tables.getFreeBlock()
		oldPbn := f.tables.l2p[lbn]
		newPbnOf[lbn] = newPbn
		oldPbnOf[lbn] = oldPbn

		f.tables.p2l[newPbn] = lbn
		f.tables.l2p[lbn] = newPbn
	}

	for _, lbn := range lbns {
		oldPbn := oldPbnOf[lbn]
		oldBlock := f.blocks[oldPbn]

		for i := 0; i < f.param.PagesInBlock; i++ {
			if oldBlock.isValid(i) {
				buf := f.mergePageBuf(sendToPAL)
				reads = append(reads, readOp{pbn: oldPbn, page: i, buf: buf})
				writes = append(writes, writeOp{
					pbn:  newPbnOf[lbn],
					page: i,
					lpn:  toLPN(lbn, i, f.param.PagesInBlock),
					data: buf,
				})
			}
		}
		erases = append(erases, oldPbn)
	}

	for i := 0; i < f.param.PagesInBlock; i++ {
		lpn, valid, _ := logBlock.getPageInfo(i)
		if !valid {
			continue
		}
		buf := f.mergePageBuf(sendToPAL)
		reads = append(reads, readOp{pbn: logPbn, page: i, buf: buf})
		ownerLbn, ownerOff := f.blockToOffset(lpn)
		writes = append(writes, writeOp{pbn: newPbnOf[ownerLbn], page: ownerOff, lpn: lpn, data: buf})
	}
	erases = append(erases, logPbn)

	replacement = f.tables.getFreeBlock()
	f.tables.p2l[replacement] = unmapped

	return
}

// planSWMerge handles the SW-merge case, including the switching
// optimization when the log block is fully valid.
func (f *FTL) planSWMerge(logPbn int, extra *mergeExtra, sendToPAL bool) (reads []readOp, writes []writeOp, erases []int, replacement int) {
	logBlock := f.blocks[logPbn]
	owner := f.tables.p2l[logPbn]
	oldPbn := f.tables.l2p[owner]

	if logBlock.validPageCount() == f.param.PagesInBlock {
		// Switching optimization: the log now holds the owner's full
		// content, so promote it to data and erase the stale copy.
		erases = append(erases, oldPbn)
		f.tables.l2p[owner] = logPbn

		replacement = f.tables.getFreeBlock()
		f.tables.p2l[replacement] = unmapped
		return
	}

	oldBlock := f.blocks[oldPbn]
	newPbn := f.tables.getFreeBlock()
	f.tables.p2l[newPbn] = owner
	f.tables.l2p[owner] = newPbn

	for i := 0; i < f.param.PagesInBlock; i++ {
		if extra != nil && i == extra.pageOffset {
			writes = append(writes, writeOp{pbn: newPbn, page: i, lpn: extra.lpn, data: extra.data})
			continue
		}

		logValid := logBlock.isValid(i)
		oldValid := oldBlock.isValid(i)
		if !logValid && !oldValid {
			continue
		}

		src := oldPbn
		if logValid {
			src = logPbn
		}
		buf := f.mergePageBuf(sendToPAL)
		reads = append(reads, readOp{pbn: src, page: i, buf: buf})
		writes = append(writes, writeOp{pbn: newPbn, page: i, lpn: toLPN(owner, i, f.param.PagesInBlock), data: buf})
	}

	erases = append(erases, oldPbn, logPbn)

	replacement = f.tables.getFreeBlock()
	f.tables.p2l[replacement] = unmapped

	return
}

// toLPN is a tiny readability helper: owner block number * pagesInBlock + offset.
func toLPN(lbn, off, pagesInBlock int) uint64 {
	return uint64(lbn)*uint64(pagesInBlock) + uint64(off)
}

// runMergePhases executes a merge's three-phase timing composition:
// reads run serially against the simulated block state but in
// parallel for tick purposes, then writes and erases both start from
// the read phase's finish tick and run in parallel with each other.
func (f *FTL) runMergePhases(reads []readOp, writes []writeOp, erases []int, tick *uint64, sendToPAL bool) {
	readFinishAt := *tick
	for _, r := range reads {
		start := *tick
		f.blocks[r.pbn].read(r.page, start)
		if sendToPAL {
			req := pal.Request{BlockIndex: r.pbn, PageIndex: r.page, IOFlag: true}
			if err := f.pal.Read(req, &start, r.buf); err != nil {
				log.Printf("fast: pal read failed for block %d page %d: %v", r.pbn, r.page, err)
			}
		}
		if start > readFinishAt {
			readFinishAt = start
		}
	}

	writeFinishAt := readFinishAt
	for _, w := range writes {
		start := readFinishAt
		f.blocks[w.pbn].write(w.page, w.lpn, start)
		if sendToPAL {
			req := pal.Request{BlockIndex: w.pbn, PageIndex: w.page, IOFlag: true}
			if err := f.pal.Write(req, &start, w.data); err != nil {
				log.Printf("fast: pal write failed for block %d page %d: %v", w.pbn, w.page, err)
			}
		}
		if start > writeFinishAt {
			writeFinishAt = start
		}
	}

	eraseFinishAt := readFinishAt
	for _, pbn := range erases {
		start := readFinishAt
		f.eraseInternal(pbn, &start, sendToPAL)
		if start > eraseFinishAt {
			eraseFinishAt = start
		}
	}

	if writeFinishAt > eraseFinishAt {
		*tick = writeFinishAt
	} else {
		*tick = eraseFinishAt
	}
}
