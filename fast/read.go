package fast

import (
	"log"

	"github.com/ssdsim/fastftl/pal"
)

// readInternal resolves the read through findValidPage and, on a hit,
// issues a PAL read that copies the stored page into data. A miss is a
// deliberate no-op: the FTL returns whatever the host already has (or
// zeros), mirroring the page-mapping FTL's behaviour for reads of
// never-written LPNs.
func (f *FTL) readInternal(req Request, tick *uint64, data []byte) {
	loc, ok := f.findValidPage(req.LPN)
	if ok {
		f.blocks[loc.pbn].read(loc.page, *tick)

		palReq := pal.Request{BlockIndex: loc.pbn, PageIndex: loc.page, IOFlag: true}
		if err := f.pal.Read(palReq, tick, data); err != nil {
			log.Printf("fast: pal read failed for block %d page %d: %v", loc.pbn, loc.page, err)
		}
	}

	*tick += f.cpu.ReadInternal
}
