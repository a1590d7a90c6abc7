package garbage_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/rhi/garbage"
)

func newBin(t *testing.T, frames int) *garbage.Bin {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bin, err := garbage.New(logger, frames)
	require.NoError(t, err)
	return bin
}

type fakeRetirement struct {
	done chan struct{}
}

func newFakeRetirement() *fakeRetirement {
	return &fakeRetirement{done: make(chan struct{})}
}

func (r *fakeRetirement) Ready() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *fakeRetirement) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestBinDefersUntilSlotReuse(t *testing.T) {
	bin := newBin(t, 3)
	ctx := context.Background()

	var ran []string
	require.NoError(t, bin.BeginFrame(ctx))
	bin.PushDeferredDeletion(func() { ran = append(ran, "frame0") })
	bin.EndFrame(nil)

	require.NoError(t, bin.BeginFrame(ctx))
	bin.PushDeferredDeletion(func() { ran = append(ran, "frame1") })
	bin.EndFrame(nil)

	require.NoError(t, bin.BeginFrame(ctx))
	require.Empty(t, ran)
	bin.EndFrame(nil)

	// Frame slot 0 comes around again
	require.Equal(t, 0, bin.CurrentFrame())
	require.NoError(t, bin.BeginFrame(ctx))
	require.Equal(t, []string{"frame0"}, ran)
	bin.EndFrame(nil)

	require.NoError(t, bin.BeginFrame(ctx))
	require.Equal(t, []string{"frame0", "frame1"}, ran)
	require.Zero(t, bin.Pending())
}

func TestBinRunsInPushOrder(t *testing.T) {
	bin := newBin(t, 1)
	ctx := context.Background()

	var ran []int
	for i := 0; i < 5; i++ {
		i := i
		bin.PushDeferredDeletion(func() { ran = append(ran, i) })
	}
	bin.EndFrame(nil)

	require.NoError(t, bin.BeginFrame(ctx))
	require.Equal(t, []int{0, 1, 2, 3, 4}, ran)
}

func TestBinConcurrentPushes(t *testing.T) {
	bin := newBin(t, 2)
	ctx := context.Background()

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bin.PushDeferredDeletion(func() { count.Add(1) })
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1600, bin.Pending())

	bin.EndFrame(nil)
	require.NoError(t, bin.BeginFrame(ctx))
	require.Zero(t, count.Load())
	bin.EndFrame(nil)

	require.NoError(t, bin.BeginFrame(ctx))
	require.Equal(t, int32(1600), count.Load())
}

func TestBinDeletionMayPush(t *testing.T) {
	bin := newBin(t, 1)
	ctx := context.Background()

	ran := 0
	bin.PushDeferredDeletion(func() {
		ran++
		bin.PushDeferredDeletion(func() { ran++ })
	})
	bin.EndFrame(nil)

	require.NoError(t, bin.BeginFrame(ctx))
	require.Equal(t, 1, ran)
	require.Equal(t, 1, bin.Pending())

	bin.EndFrame(nil)
	require.NoError(t, bin.BeginFrame(ctx))
	require.Equal(t, 2, ran)
}

func TestBinInFlightBudget(t *testing.T) {
	bin := newBin(t, 2)
	ctx := context.Background()

	ran := false
	retirement := newFakeRetirement()
	require.NoError(t, bin.BeginFrame(ctx))
	bin.PushDeferredDeletion(func() { ran = true })
	bin.EndFrame(retirement)

	require.NoError(t, bin.BeginFrame(ctx))
	bin.EndFrame(nil)

	err := bin.BeginFrame(ctx)
	require.ErrorIs(t, err, garbage.ErrInFlightBudgetExceeded)
	require.False(t, ran)

	timeout, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, bin.WaitFrame(timeout), context.DeadlineExceeded)

	close(retirement.done)
	require.NoError(t, bin.WaitFrame(ctx))
	require.NoError(t, bin.BeginFrame(ctx))
	require.True(t, ran)
}

func TestBinFlush(t *testing.T) {
	bin := newBin(t, 3)

	ran := 0
	bin.PushDeferredDeletion(func() { ran++ })
	bin.EndFrame(newFakeRetirement())
	bin.PushDeferredDeletion(func() { ran++ })

	bin.Flush()
	require.Equal(t, 2, ran)
	require.Zero(t, bin.Pending())
}

func TestBinRejectsBadFrameCount(t *testing.T) {
	_, err := garbage.New(slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
	require.Error(t, err)
}
