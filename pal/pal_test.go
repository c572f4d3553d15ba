package pal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteThenReadRoundTrips(t *testing.T) {
	p := New(4, 8, 16, DefaultLatencies())

	data := make([]byte, 16)
	for i := range data {
		data[i] = byte(i)
	}

	var tick uint64
	require.NoError(t, p.Write(Request{BlockIndex: 1, PageIndex: 2, IOFlag: true}, &tick, data))
	require.Equal(t, DefaultLatencies().Program, tick)

	out := make([]byte, 16)
	require.NoError(t, p.Read(Request{BlockIndex: 1, PageIndex: 2, IOFlag: true}, &tick, out))
	require.Equal(t, data, out)
	require.Equal(t, DefaultLatencies().Program+DefaultLatencies().Read, tick)
}

func TestEraseZeroesBlockAndAdvancesTick(t *testing.T) {
	p := New(2, 4, 8, DefaultLatencies())

	data := make([]byte, 8)
	for i := range data {
		data[i] = 0xAB
	}
	var tick uint64
	require.NoError(t, p.Write(Request{BlockIndex: 0, PageIndex: 0, IOFlag: true}, &tick, data))

	require.NoError(t, p.Erase(Request{BlockIndex: 0}, &tick))

	out := make([]byte, 8)
	require.NoError(t, p.Read(Request{BlockIndex: 0, PageIndex: 0, IOFlag: true}, &tick, out))
	require.Equal(t, make([]byte, 8), out)
}

func TestOutOfRangeTargetPanics(t *testing.T) {
	p := New(2, 4, 8, DefaultLatencies())
	var tick uint64
	require.Panics(t, func() {
		_ = p.Read(Request{BlockIndex: 5, PageIndex: 0}, &tick, nil)
	})
	require.Panics(t, func() {
		_ = p.Write(Request{BlockIndex: 0, PageIndex: 99}, &tick, nil)
	})
}
