package virtual_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/rhi/memutils"
	"github.com/vkngwrapper/rhi/memutils/virtual"
)

func requireNotEmptyAndFull(t *testing.T, ring *virtual.RingBuffer) {
	require.False(t, ring.IsEmpty() && ring.IsFull())
	require.NoError(t, ring.Validate())
}

func TestRingFillAndDrain(t *testing.T) {
	const count = 8
	ring, err := virtual.NewRingBuffer(256, count)
	require.NoError(t, err)
	require.True(t, ring.IsEmpty())

	// Go around several times so head and tail wrap
	for pass := 0; pass < 3; pass++ {
		for i := 0; i < count; i++ {
			offset, err := ring.Allocate()
			require.NoError(t, err)
			require.Equal(t, ((pass*count+i)%count)*256, offset)
			requireNotEmptyAndFull(t, ring)
		}

		require.True(t, ring.IsFull())
		_, err = ring.Allocate()
		require.ErrorIs(t, err, memutils.ErrOutOfSpace)

		for i := 0; i < count; i++ {
			offset, err := ring.Pop()
			require.NoError(t, err)
			require.Equal(t, i*256, offset)
			requireNotEmptyAndFull(t, ring)
		}

		require.True(t, ring.IsEmpty())
		_, err = ring.Pop()
		require.ErrorIs(t, err, memutils.ErrEmpty)
	}
}

func TestRingInterleaved(t *testing.T) {
	ring, err := virtual.NewRingBuffer(1, 3)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err = ring.Allocate()
		require.NoError(t, err)
		_, err = ring.Allocate()
		require.NoError(t, err)
		require.Equal(t, 2, ring.Len())

		_, err = ring.Pop()
		require.NoError(t, err)
		_, err = ring.Pop()
		require.NoError(t, err)
		require.True(t, ring.IsEmpty())
		requireNotEmptyAndFull(t, ring)
	}
}

func TestRingRunPadsAtEnd(t *testing.T) {
	ring, err := virtual.NewRingBuffer(256, 6)
	require.NoError(t, err)

	offset, reserved, err := ring.AllocateRun(4)
	require.NoError(t, err)
	require.Equal(t, 0, offset)
	require.Equal(t, 4, reserved)

	require.NoError(t, ring.PopRun(2))

	// Two elements remain at the end, so a run of 2 fits without padding
	offset, reserved, err = ring.AllocateRun(2)
	require.NoError(t, err)
	require.Equal(t, 4*256, offset)
	require.Equal(t, 2, reserved)
	require.Equal(t, 4, ring.Len())

	require.NoError(t, ring.PopRun(2))

	offset, reserved, err = ring.AllocateRun(2)
	require.NoError(t, err)
	require.Equal(t, 0, offset)
	require.Equal(t, 2, reserved)

	require.NoError(t, ring.PopRun(2))
	require.NoError(t, ring.PopRun(2))

	// An empty ring restarts at the beginning, so no padding is needed
	offset, reserved, err = ring.AllocateRun(5)
	require.NoError(t, err)
	require.Equal(t, 0, offset)
	require.Equal(t, 5, reserved)
	require.NoError(t, ring.PopRun(5))

	ring2, err := virtual.NewRingBuffer(1, 4)
	require.NoError(t, err)
	_, _, err = ring2.AllocateRun(3)
	require.NoError(t, err)
	require.NoError(t, ring2.PopRun(2))

	// Head at 3, tail at 2: one element of padding then elements 0-1
	offset, reserved, err = ring2.AllocateRun(2)
	require.NoError(t, err)
	require.Equal(t, 0, offset)
	require.Equal(t, 3, reserved)
	require.True(t, ring2.IsFull())

	_, _, err = ring2.AllocateRun(1)
	require.ErrorIs(t, err, memutils.ErrOutOfSpace)
	requireNotEmptyAndFull(t, ring2)
}

func TestRingRunErrors(t *testing.T) {
	ring, err := virtual.NewRingBuffer(16, 4)
	require.NoError(t, err)

	_, _, err = ring.AllocateRun(5)
	require.ErrorIs(t, err, memutils.ErrOutOfSpace)

	_, _, err = ring.AllocateRun(0)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)

	err = ring.PopRun(1)
	require.ErrorIs(t, err, memutils.ErrEmpty)
}

func TestRingStatistics(t *testing.T) {
	ring, err := virtual.NewRingBuffer(10, 10)
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		_, err = ring.Allocate()
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err = ring.Pop()
		require.NoError(t, err)
	}

	var stats memutils.DetailedStatistics
	stats.Clear()
	ring.AddDetailedStatistics(&stats)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			BlockCount:      1,
			BlockBytes:      100,
			AllocationCount: 4,
			AllocationBytes: 40,
		},
		UnusedRangeCount:   2,
		AllocationSizeMin:  10,
		AllocationSizeMax:  10,
		UnusedRangeSizeMin: 30,
		UnusedRangeSizeMax: 30,
	}, stats)
}
