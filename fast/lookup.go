package fast

// findValidPage locates the unique physical page currently backing
// lpn by checking, in order, the data block, the SW log, and the RW
// log map. Returns ok == false if no valid copy exists anywhere.
func (f *FTL) findValidPage(lpn uint64) (loc pageLocation, ok bool) {
	lbn, off := f.blockToOffset(lpn)
	if lbn < 0 || lbn >= len(f.tables.l2p) {
		return pageLocation{}, false
	}

	pbn := f.tables.l2p[lbn]
	if pbn == unmapped {
		return pageLocation{}, false
	}

	b := f.blocks[pbn]
	if _, valid, _ := b.getPageInfo(off); valid {
		return pageLocation{pbn: pbn, page: off, kind: KindData}, true
	}

	if f.tables.swBlock != unmapped {
		sw := f.blocks[f.tables.swBlock]
		storedLPN, valid, _ := sw.getPageInfo(off)
		if valid && storedLPN == lpn {
			return pageLocation{pbn: f.tables.swBlock, page: off, kind: KindSW}, true
		}
	}

	if rw, found := f.tables.rwLog[lpn]; found {
		rwBlock := f.blocks[rw.pbn]
		storedLPN, valid, _ := rwBlock.getPageInfo(rw.page)
		if !valid || storedLPN != lpn {
			panic("fast: RW log map points at a stale page")
		}
		return pageLocation{pbn: rw.pbn, page: rw.page, kind: KindRW}, true
	}

	return pageLocation{}, false
}
