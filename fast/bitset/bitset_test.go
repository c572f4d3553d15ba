package bitset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetClearTest(t *testing.T) {
	b := New(10)
	require.Equal(t, 0, b.Count())

	b.Set(3)
	b.Set(9)
	require.True(t, b.Test(3))
	require.True(t, b.Test(9))
	require.False(t, b.Test(4))
	require.Equal(t, 2, b.Count())

	b.Clear(3)
	require.False(t, b.Test(3))
	require.Equal(t, 1, b.Count())
}

func TestSetAllClearAllRespectsLength(t *testing.T) {
	b := New(5)
	b.SetAll()
	require.Equal(t, 5, b.Count())

	b.ClearAll()
	require.Equal(t, 0, b.Count())
}

func TestNorCountTracksDirtyPages(t *testing.T) {
	valid := New(4)
	erased := New(4)
	erased.SetAll()

	// Page 0 becomes valid (programmed).
	erased.Clear(0)
	valid.Set(0)

	// Page 1 becomes dirty: was programmed then invalidated, never erased.
	erased.Clear(1)

	require.Equal(t, 1, valid.AndNotCount(erased))
	require.Equal(t, 1, valid.NorCount(erased))
}

func TestDisjoint(t *testing.T) {
	a := New(8)
	b := New(8)
	a.Set(1)
	b.Set(2)
	require.True(t, a.Disjoint(b))

	b.Set(1)
	require.False(t, a.Disjoint(b))
}

func TestIndexOutOfRangePanics(t *testing.T) {
	b := New(4)
	require.Panics(t, func() { b.Test(4) })
	require.Panics(t, func() { b.Set(-1) })
}
