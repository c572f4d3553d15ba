package fast

import (
	"log"
	"math/rand"

	"github.com/pkg/errors"
)

// FillingMode selects the warmup access pattern.
type FillingMode int

const (
	// FillingModeSequential fills and then overwrites sequentially.
	FillingModeSequential FillingMode = 0
	// FillingModeSequentialThenBoundedRandom fills sequentially, then
	// overwrites with offsets restricted to the filled range so the
	// target invalid-page count is exactly reachable.
	FillingModeSequentialThenBoundedRandom FillingMode = 1
	// FillingModeRandom fills and overwrites uniformly at random across
	// the whole LPN space; any value 2 or above selects this mode.
	FillingModeRandom FillingMode = 2
)

// WarmupConfig configures the pre-boot fill driver.
type WarmupConfig struct {
	FillRatio        float64
	InvalidPageRatio float64
	FillingMode      FillingMode
	UseRandomIOTweak bool
}

// Initialize pre-populates the device before the simulation proper
// starts. Ticks are reset to zero for every injected write and
// sendToPAL is false throughout, so warmup completes without
// accumulating simulated latency.
func (f *FTL) Initialize(cfg WarmupConfig, rng *rand.Rand) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cfg.UseRandomIOTweak {
		panic(errors.New("fast: random I/O tweak is not supported"))
	}
	if cfg.InvalidPageRatio != 0 {
		panic(errors.New("fast: pre-invalidating pages during warmup is not supported"))
	}

	totalLogicalPages := uint64(f.param.TotalLogicalBlocks) * uint64(f.param.PagesInBlock)
	pagesToWarmup := uint64(float64(totalLogicalPages) * cfg.FillRatio)
	pagesToInvalidate := uint64(float64(totalLogicalPages) * cfg.InvalidPageRatio)

	log.Printf("fast: warmup starting, total logical pages %d, filling %d (%.2f%%)",
		totalLogicalPages, pagesToWarmup, float64(pagesToWarmup)*100/float64(totalLogicalPages))

	switch cfg.FillingMode {
	case FillingModeSequential, FillingModeSequentialThenBoundedRandom:
		for i := uint64(0); i < pagesToWarmup; i++ {
			f.injectWrite(i)
		}
	default:
		for i := uint64(0); i < pagesToWarmup; i++ {
			f.injectWrite(rng.Uint64() % totalLogicalPages)
		}
	}

	switch cfg.FillingMode {
	case FillingModeSequential:
		for i := uint64(0); i < pagesToInvalidate; i++ {
			f.injectWrite(i)
		}
	case FillingModeSequentialThenBoundedRandom:
		if pagesToWarmup > 0 {
			for i := uint64(0); i < pagesToInvalidate; i++ {
				f.injectWrite(rng.Uint64() % pagesToWarmup)
			}
		}
	default:
		for i := uint64(0); i < pagesToInvalidate; i++ {
			f.injectWrite(rng.Uint64() % totalLogicalPages)
		}
	}

	valid, invalid := f.ValidDirtyCounts()
	log.Printf("fast: warmup finished, valid pages %d (target %d), invalid pages %d (target %d)",
		valid, pagesToWarmup, invalid, pagesToInvalidate)
}

func (f *FTL) injectWrite(lpn uint64) {
	var tick uint64
	f.writeInternal(Request{LPN: lpn, IOFlag: true}, &tick, false, nil)
}
