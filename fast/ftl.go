// Package fast implements the FAST (Fully Associative Sector
// Translation) block-mapping FTL: a coarse logical-to-physical block
// map backed by a sequential-write log block and a small pool of
// random-write log blocks, garbage-collected by merging.
package fast

import (
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/ssdsim/fastftl/pal"
)

// kRWBlockCnt is the fixed size of the RW log block pool.
const kRWBlockCnt = 6

// Parameter describes the logical/physical geometry the FTL is
// configured for. ioUnitInPage is carried for interface fidelity with
// the source FTL family but this engine hard-requires it to be 1.
type Parameter struct {
	TotalLogicalBlocks  int
	TotalPhysicalBlocks int
	PagesInBlock        int
	IOUnitInPage        int
}

// CPULatencies are the fixed FTL-internal CPU overheads folded into
// tick on every read/write/erase, independent of PAL latency.
type CPULatencies struct {
	ReadInternal  uint64
	WriteInternal uint64
	EraseInternal uint64
}

// DefaultCPULatencies mirrors the flat per-operation overhead the
// source simulator applies via its CPU cost model.
func DefaultCPULatencies() CPULatencies {
	return CPULatencies{
		ReadInternal:  100,
		WriteInternal: 100,
		EraseInternal: 100,
	}
}

// FTL is the FAST mapping engine. Read, Write and Initialize are safe
// for concurrent host calls: each runs under a single mutex, since the
// mapping tables and block array are not internally synchronized and
// the algorithm itself is defined as executing to completion in one
// flow (no suspension, no background threads). ValidDirtyCounts and
// FreeBlockRatio do not take the mutex.
type FTL struct {
	mu sync.Mutex

	param Parameter
	cpu   CPULatencies
	pal   *pal.PAL

	blocks []*block
	tables *tables
}

// New constructs an FTL over the given PAL. All physical blocks start
// fully erased; block 0 becomes the initial SW block, blocks 1..6
// become the initial RW pool, and the remainder are pushed onto the
// free queue in index order, exactly matching the fixed layout the
// mapping policy assumes at boot.
func New(param Parameter, p *pal.PAL, cpu CPULatencies) *FTL {
	if param.IOUnitInPage != 1 {
		panic(errors.New("fast: ioUnitInPage must be 1"))
	}
	if param.TotalPhysicalBlocks <= 1+kRWBlockCnt {
		panic(errors.New("fast: totalPhysicalBlocks too small for SW+RW reservation"))
	}

	f := &FTL{
		param:  param,
		cpu:    cpu,
		pal:    p,
		blocks: make([]*block, param.TotalPhysicalBlocks),
		tables: newTables(param.TotalLogicalBlocks, param.TotalPhysicalBlocks),
	}

	for i := range f.blocks {
		f.blocks[i] = newBlock(i, param.PagesInBlock)
	}

	f.tables.swBlock = 0
	for i := 1; i <= kRWBlockCnt; i++ {
		f.tables.pushRWTail(i)
	}
	for i := kRWBlockCnt + 1; i < param.TotalPhysicalBlocks; i++ {
		f.tables.pushFree(i)
	}

	return f
}

func (f *FTL) blockToOffset(lpn uint64) (lbn int, off int) {
	return int(lpn) / f.param.PagesInBlock, int(lpn) % f.param.PagesInBlock
}

// Read services a host read request, advancing tick by the PAL
// latency (on a hit) plus the fixed FTL CPU overhead. On a hit, the
// resolved page's bytes are copied into data, which must be at least
// PageSize bytes; a miss leaves data untouched.
func (f *FTL) Read(req Request, tick *uint64, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	begin := *tick
	if req.IOFlag {
		f.readInternal(req, tick, data)
		log.Printf("fast: READ  | LPN %d | %d - %d (%d)", req.LPN, begin, *tick, *tick-begin)
	} else {
		log.Printf("fast: got empty ioFlag request, LPN %d", req.LPN)
	}
}

// Write services a host write request, applying the write router and
// advancing tick accordingly. data is the page content to program at
// the resolved destination and must be at least PageSize bytes.
func (f *FTL) Write(req Request, tick *uint64, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()

	begin := *tick
	if req.IOFlag {
		f.writeInternal(req, tick, true, data)
		log.Printf("fast: WRITE | LPN %d | %d - %d (%d)", req.LPN, begin, *tick, *tick-begin)
	} else {
		log.Printf("fast: got empty ioFlag request, LPN %d", req.LPN)
	}
}

// Trim is declared unimplemented by the source FTL and fails loudly.
func (f *FTL) Trim(req Request, tick *uint64) {
	panic(errors.New("fast: trim not implemented"))
}

// Format is declared unimplemented by the source FTL and fails loudly.
func (f *FTL) Format(lpnBegin, lpnEnd uint64, tick *uint64) {
	panic(errors.New("fast: format not implemented"))
}

// GetStatus is declared unimplemented by the source FTL and fails
// loudly.
func (f *FTL) GetStatus(lpnBegin, lpnEnd uint64) {
	panic(errors.New("fast: getStatus not implemented"))
}

// GetStatList is a silent no-op, matching the source FTL.
func (f *FTL) GetStatList() []string { return nil }

// GetStatValues is a silent no-op, matching the source FTL.
func (f *FTL) GetStatValues() []float64 { return nil }

// ResetStatValues is a silent no-op, matching the source FTL.
func (f *FTL) ResetStatValues() {}

// ValidDirtyCounts sums valid and dirty page counts across every
// physical block; used by the warmup driver to report fill accuracy.
func (f *FTL) ValidDirtyCounts() (valid, dirty int) {
	for _, b := range f.blocks {
		valid += b.validPageCount()
		dirty += b.dirtyPageCount()
	}
	return
}

// FreeBlockRatio reports the fraction of physical blocks currently
// sitting in the free queue.
func (f *FTL) FreeBlockRatio() float64 {
	return float64(f.tables.freeBlockCount()) / float64(f.param.TotalPhysicalBlocks)
}
