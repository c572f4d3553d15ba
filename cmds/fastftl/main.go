// Command fastftl exposes a FAST-mapped simulated NAND device as an
// NBD block device, the way the flashblock command line tool exposes
// its simpler FTL.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"

	nbd "github.com/akmistry/go-nbd"
	"golang.org/x/sync/errgroup"

	"github.com/ssdsim/fastftl/config"
	"github.com/ssdsim/fastftl/fast"
	"github.com/ssdsim/fastftl/pal"
)

var (
	nbdDeviceFlag = flag.String("nbd-device", "/dev/nbd0", "Path to the /dev/nbdX device to attach to.")
	backingFlag   = flag.String("backing", "", "Optional backing file; page contents persist here instead of only in memory.")
)

// device adapts the FAST FTL's logical page space to the byte-offset
// ReadAt/WriteAt surface an NBD export needs.
type device struct {
	ftl      *fast.FTL
	pageSize int
	size     int64
}

func (d *device) Size() int64 { return d.size }

func (d *device) ReadAt(p []byte, off int64) (int, error) {
	n := 0
	buf := make([]byte, d.pageSize)
	for len(p) > 0 {
		lpn := uint64(off) / uint64(d.pageSize)
		pageOff := int(off % int64(d.pageSize))
		chunk := d.pageSize - pageOff
		if chunk > len(p) {
			chunk = len(p)
		}

		var tick uint64
		d.ftl.Read(fast.Request{LPN: lpn, IOFlag: true}, &tick, buf)
		copy(p[:chunk], buf[pageOff:pageOff+chunk])

		p = p[chunk:]
		off += int64(chunk)
		n += chunk
	}
	return n, nil
}

func (d *device) WriteAt(p []byte, off int64) (int, error) {
	n := 0
	buf := make([]byte, d.pageSize)
	for len(p) > 0 {
		lpn := uint64(off) / uint64(d.pageSize)
		pageOff := int(off % int64(d.pageSize))
		chunk := d.pageSize - pageOff
		if chunk > len(p) {
			chunk = len(p)
		}

		var tick uint64
		if chunk < d.pageSize {
			// Partial page: read-modify-write so the untouched portion of
			// the page survives.
			d.ftl.Read(fast.Request{LPN: lpn, IOFlag: true}, &tick, buf)
			tick = 0
		}
		copy(buf[pageOff:pageOff+chunk], p[:chunk])
		d.ftl.Write(fast.Request{LPN: lpn, IOFlag: true}, &tick, buf)

		p = p[chunk:]
		off += int64(chunk)
		n += chunk
	}
	return n, nil
}

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	var p *pal.PAL
	if *backingFlag != "" {
		f, err := os.OpenFile(*backingFlag, os.O_RDWR|os.O_CREATE, 0644)
		if err != nil {
			log.Fatalf("Error opening backing file: %v", err)
		}
		defer f.Close()
		p = pal.NewFileBacked(cfg.Parameter.TotalPhysicalBlocks, cfg.Parameter.PagesInBlock, cfg.PageSize, cfg.Latencies, f)
	} else {
		p = pal.New(cfg.Parameter.TotalPhysicalBlocks, cfg.Parameter.PagesInBlock, cfg.PageSize, cfg.Latencies)
	}

	ftl := fast.New(cfg.Parameter, p, cfg.CPU)
	if cfg.Warmup.FillRatio > 0 {
		ftl.Initialize(cfg.Warmup, rand.New(rand.NewSource(1)))
	}

	dev := &device{
		ftl:      ftl,
		pageSize: cfg.PageSize,
		size:     int64(cfg.Parameter.TotalLogicalBlocks) * int64(cfg.Parameter.PagesInBlock) * int64(cfg.PageSize),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	server, err := nbd.NewServer(*nbdDeviceFlag, dev, dev.Size(), nbd.BlockDeviceOptions{})
	if err != nil {
		log.Fatalf("Error creating nbd server: %v", err)
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return server.Run()
	})
	group.Go(func() error {
		<-ctx.Done()
		return server.Disconnect()
	})

	if err := group.Wait(); err != nil && ctx.Err() == nil {
		log.Fatalf("nbd serve failed: %v", err)
	}
}
