// Package config wires command-line flags to the FTL's geometry and
// warmup parameters, in the same flat style the flashblock command
// line tool uses for device geometry.
package config

import (
	"flag"

	"github.com/ssdsim/fastftl/fast"
	"github.com/ssdsim/fastftl/pal"
)

// Config is the full set of knobs the fastftl binary exposes. The
// warmup flags' usage strings name the FTL_* configuration keys the
// source simulator reads from its ini-style config reader.
type Config struct {
	Parameter fast.Parameter
	Warmup    fast.WarmupConfig
	Latencies pal.Latencies
	CPU       fast.CPULatencies

	PageSize int
}

// Default returns a Config sized for a small simulated device: enough
// physical blocks to hold the SW block, the RW pool, and a useful
// number of data blocks besides.
func Default() Config {
	return Config{
		Parameter: fast.Parameter{
			TotalLogicalBlocks:  1024,
			TotalPhysicalBlocks: 2048,
			PagesInBlock:        256,
			IOUnitInPage:        1,
		},
		Warmup: fast.WarmupConfig{
			FillRatio:        0,
			InvalidPageRatio: 0,
			FillingMode:      fast.FillingModeSequential,
			UseRandomIOTweak: false,
		},
		Latencies: pal.DefaultLatencies(),
		CPU:       fast.DefaultCPULatencies(),
		PageSize:  4096,
	}
}

// RegisterFlags binds c's fields to flags on fs, using c's current
// values as defaults. Call Default() first to get sane defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Parameter.TotalLogicalBlocks, "total-logical-blocks",
		c.Parameter.TotalLogicalBlocks, "number of logical blocks exposed to the host")
	fs.IntVar(&c.Parameter.TotalPhysicalBlocks, "total-physical-blocks",
		c.Parameter.TotalPhysicalBlocks, "number of physical NAND blocks backing the device")
	fs.IntVar(&c.Parameter.PagesInBlock, "pages-in-block",
		c.Parameter.PagesInBlock, "pages per physical block")
	fs.IntVar(&c.PageSize, "page-size", c.PageSize, "page size in bytes")

	fs.Float64Var(&c.Warmup.FillRatio, "fill-ratio",
		c.Warmup.FillRatio, "fraction of logical pages to warm up at boot (FTL_FILL_RATIO)")
	fs.Float64Var(&c.Warmup.InvalidPageRatio, "invalid-page-ratio",
		c.Warmup.InvalidPageRatio, "fraction of logical pages to invalidate during warmup, must be 0 (FTL_INVALID_PAGE_RATIO)")
	fs.IntVar((*int)(&c.Warmup.FillingMode), "filling-mode",
		int(c.Warmup.FillingMode), "warmup pattern: 0 sequential, 1 sequential+bounded-random, 2+ random (FTL_FILLING_MODE)")
	fs.BoolVar(&c.Warmup.UseRandomIOTweak, "use-random-io-tweak",
		c.Warmup.UseRandomIOTweak, "must be false (FTL_USE_RANDOM_IO_TWEAK)")

	fs.Uint64Var(&c.Latencies.Read, "read-latency-ticks", c.Latencies.Read, "PAL read latency in ticks")
	fs.Uint64Var(&c.Latencies.Program, "program-latency-ticks", c.Latencies.Program, "PAL program latency in ticks")
	fs.Uint64Var(&c.Latencies.Erase, "erase-latency-ticks", c.Latencies.Erase, "PAL erase latency in ticks")
}
