// Package pal implements the Physical Abstraction Layer: the
// collaborator that reports NAND read/program/erase latencies and, for
// this in-memory simulator, also owns the backing byte storage that the
// FTL's blocks are programmed into.
package pal

import (
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Request describes a single-page or whole-block physical operation.
// IOFlag mirrors the SSD simulator's per-subpage validity bitmap; this
// FTL always operates with ioUnitInPage == 1 so the flag is always
// fully set.
type Request struct {
	BlockIndex int
	PageIndex  int
	IOFlag     bool
}

// Latencies holds the fixed per-operation cost, in ticks, applied by
// the simulated PAL. Real SSD simulators derive these from a detailed
// timing model; this one uses flat per-op constants, which is enough
// to exercise the FTL's parallel-phase tick composition.
type Latencies struct {
	Read    uint64
	Program uint64
	Erase   uint64
}

// DefaultLatencies returns a representative set of flash timings.
func DefaultLatencies() Latencies {
	return Latencies{
		Read:    40000,   // 40us
		Program: 200000,  // 200us
		Erase:   1500000, // 1.5ms
	}
}

// ReadWriterAt is the storage interface a PAL backing medium must
// implement; satisfied by both an in-memory buffer and an *os.File.
type ReadWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

// zeroBuf is reused across Erase calls to fill a backing medium's
// block region without allocating per erase.
var zeroBuf = make([]byte, 65536)

// PAL simulates a NAND chip: blockCount physical blocks, each with
// pageCount pages of pageSize bytes, backed by plain memory and, when
// built by NewFileBacked, also by a backing medium.
type PAL struct {
	lat        Latencies
	pageSize   int
	pageCount  int
	blockCount int

	mu     sync.Mutex
	blocks [][]byte

	// Set only by NewFileBacked; when non-nil, reads/writes/erases also
	// apply to the backing medium at blockOffset(BlockIndex)+PageIndex*pageSize,
	// so content survives process restarts.
	backing ReadWriterAt
}

// New creates a PAL with blockCount physical blocks of pageCount pages
// each, pageSize bytes per page.
func New(blockCount, pageCount, pageSize int, lat Latencies) *PAL {
	if blockCount <= 0 || pageCount <= 0 || pageSize <= 0 {
		panic("pal: dimensions must be positive")
	}

	p := &PAL{
		lat:        lat,
		pageSize:   pageSize,
		pageCount:  pageCount,
		blockCount: blockCount,
		blocks:     make([][]byte, blockCount),
	}
	for i := range p.blocks {
		p.blocks[i] = make([]byte, pageCount*pageSize)
	}
	return p
}

// NewFileBacked returns a PAL whose page contents are persisted in
// backing instead of held purely in process memory. Erase zero-fills
// the block's region of backing, mirroring how a real NAND array
// returns 0xFF/0x00 after erase.
func NewFileBacked(blockCount, pageCount, pageSize int, lat Latencies, backing ReadWriterAt) *PAL {
	p := New(blockCount, pageCount, pageSize, lat)
	p.backing = backing
	return p
}

func (p *PAL) checkTarget(req Request) {
	if req.BlockIndex < 0 || req.BlockIndex >= p.blockCount {
		panic(errors.Errorf("pal: block index %d out of range", req.BlockIndex))
	}
	if req.PageIndex < 0 || req.PageIndex >= p.pageCount {
		panic(errors.Errorf("pal: page index %d out of range", req.PageIndex))
	}
}

// blockOffset returns the byte offset of blockIndex's region within
// the backing medium, derived from this PAL's page geometry.
func (p *PAL) blockOffset(blockIndex int) int64 {
	return int64(blockIndex) * int64(p.pageCount) * int64(p.pageSize)
}

// Read advances *tick by the read latency and, if data != nil, copies
// the stored page contents into it.
func (p *PAL) Read(req Request, tick *uint64, data []byte) error {
	p.checkTarget(req)

	if data != nil {
		p.mu.Lock()
		off := req.PageIndex * p.pageSize
		copy(data, p.blocks[req.BlockIndex][off:off+p.pageSize])
		if p.backing != nil {
			absOff := p.blockOffset(req.BlockIndex) + int64(off)
			if _, err := p.backing.ReadAt(data, absOff); err != nil {
				p.mu.Unlock()
				return err
			}
		}
		p.mu.Unlock()
	}

	*tick += p.lat.Read
	return nil
}

// Write advances *tick by the program latency and, if data != nil,
// stores it into the target page.
func (p *PAL) Write(req Request, tick *uint64, data []byte) error {
	p.checkTarget(req)

	if data != nil {
		p.mu.Lock()
		off := req.PageIndex * p.pageSize
		copy(p.blocks[req.BlockIndex][off:off+p.pageSize], data)
		if p.backing != nil {
			absOff := p.blockOffset(req.BlockIndex) + int64(off)
			if _, err := p.backing.WriteAt(data, absOff); err != nil {
				p.mu.Unlock()
				return err
			}
		}
		p.mu.Unlock()
	}

	*tick += p.lat.Program
	return nil
}

// Erase advances *tick by the erase latency and zeroes the block.
func (p *PAL) Erase(req Request, tick *uint64) error {
	if req.BlockIndex < 0 || req.BlockIndex >= p.blockCount {
		panic(errors.Errorf("pal: block index %d out of range", req.BlockIndex))
	}

	p.mu.Lock()
	b := p.blocks[req.BlockIndex]
	for i := range b {
		b[i] = 0
	}
	if p.backing != nil {
		absOff := p.blockOffset(req.BlockIndex)
		length := int64(p.pageCount) * int64(p.pageSize)
		for length > 0 {
			writeLen := int64(len(zeroBuf))
			if writeLen > length {
				writeLen = length
			}
			written, err := p.backing.WriteAt(zeroBuf[:writeLen], absOff)
			absOff += int64(written)
			length -= int64(written)
			if err != nil {
				p.mu.Unlock()
				return err
			}
		}
	}
	p.mu.Unlock()

	*tick += p.lat.Erase
	return nil
}

// PageSize returns the configured page size in bytes.
func (p *PAL) PageSize() int { return p.pageSize }
