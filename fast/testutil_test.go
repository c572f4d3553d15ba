package fast

import "github.com/ssdsim/fastftl/pal"

// newTestFTL builds an FTL sized to exercise the merge and routing
// edge cases with small, easy-to-reason-about numbers:
// pagesInBlock=4, totalLogicalBlocks=4, totalPhysicalBlocks=16
// (1 SW + 6 RW + 9 free on boot).
func newTestFTL() *FTL {
	param := Parameter{
		TotalLogicalBlocks:  4,
		TotalPhysicalBlocks: 16,
		PagesInBlock:        4,
		IOUnitInPage:        1,
	}
	p := pal.New(param.TotalPhysicalBlocks, param.PagesInBlock, 4096, pal.DefaultLatencies())
	return New(param, p, DefaultCPULatencies())
}

func (f *FTL) write(lpn uint64) uint64 {
	var tick uint64
	f.writeInternal(Request{LPN: lpn, IOFlag: true}, &tick, true, nil)
	return tick
}

func (f *FTL) readTick(lpn uint64) uint64 {
	var tick uint64
	f.readInternal(Request{LPN: lpn, IOFlag: true}, &tick, nil)
	return tick
}
