package fast

import (
	"log"

	"github.com/ssdsim/fastftl/pal"
)

// eraseInternal erases a physical block and returns it to service.
//
// The source FTL guards the return-to-freeBlocks step behind a
// wear-leveling erase-count threshold that is commented out, so every
// call in the original leaks the block: it is erased and orphaned from
// physicalToLogicalBlockMapping but never rejoins freeBlocks. This
// rewrite pushes the block back unconditionally instead, since nothing
// here implements wear-leveling block selection and leaking physical
// blocks would eventually starve getFreeBlock on any sufficiently
// long-running simulation.
func (f *FTL) eraseInternal(pbn int, tick *uint64, sendToPAL bool) {
	f.blocks[pbn].erase()

	if sendToPAL {
		req := pal.Request{BlockIndex: pbn, PageIndex: 0, IOFlag: true}
		if err := f.pal.Erase(req, tick); err != nil {
			log.Printf("fast: pal erase failed for block %d: %v", pbn, err)
		}
	}

	f.tables.p2l[pbn] = unmapped
	f.tables.pushFree(pbn)

	*tick += f.cpu.EraseInternal
}
