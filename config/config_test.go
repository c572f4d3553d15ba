package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterFlagsOverridesDefaults(t *testing.T) {
	c := Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	err := fs.Parse([]string{
		"-total-logical-blocks=16",
		"-pages-in-block=32",
		"-fill-ratio=0.5",
	})
	require.NoError(t, err)

	require.Equal(t, 16, c.Parameter.TotalLogicalBlocks)
	require.Equal(t, 32, c.Parameter.PagesInBlock)
	require.Equal(t, 0.5, c.Warmup.FillRatio)
}

func TestDefaultIsInternallyConsistent(t *testing.T) {
	c := Default()
	require.Greater(t, c.Parameter.TotalPhysicalBlocks, c.Parameter.TotalLogicalBlocks)
	require.Equal(t, 1, c.Parameter.IOUnitInPage)
	require.False(t, c.Warmup.UseRandomIOTweak)
}
