// Package garbage defers the destruction of GPU-visible resources until the frames that might still be
// reading them have retired.
package garbage

import (
	"context"
	"log/slog"
	"sync"

	cerrors "github.com/cockroachdb/errors"
)

// ErrInFlightBudgetExceeded is returned by BeginFrame when the frame slot about to be reused still belongs
// to work the GPU has not finished. Call WaitFrame to block until it completes.
var ErrInFlightBudgetExceeded error = cerrors.New("all frames in flight are still executing")

// Retirement reports when the GPU work submitted for a frame has finished
type Retirement interface {
	Ready() bool
	Wait(ctx context.Context) error
}

type entry struct {
	frame    uint32
	deletion func()
}

// Bin is a frame-tagged FIFO of deferred deletions. A deletion pushed during frame N runs at the start of
// the next frame that reuses slot N, maxFramesInFlight frames later. PushDeferredDeletion may be called
// from any goroutine; the frame methods belong to the goroutine driving the frame loop.
type Bin struct {
	logger            *slog.Logger
	maxFramesInFlight uint32

	mutex        sync.Mutex
	currentFrame uint32
	entries      []entry
	retirements  []Retirement
}

func New(logger *slog.Logger, maxFramesInFlight int) (*Bin, error) {
	if logger == nil {
		return nil, cerrors.New("logger must not be nil")
	}
	if maxFramesInFlight <= 0 {
		return nil, cerrors.Newf("max frames in flight must be greater than zero, but was %d", maxFramesInFlight)
	}

	return &Bin{
		logger:            logger,
		maxFramesInFlight: uint32(maxFramesInFlight),
		retirements:       make([]Retirement, maxFramesInFlight),
	}, nil
}

// PushDeferredDeletion queues deletion to run when the current frame slot comes around again
func (b *Bin) PushDeferredDeletion(deletion func()) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.entries = append(b.entries, entry{frame: b.currentFrame, deletion: deletion})
}

// BeginFrame runs the deletions queued the last time the current frame slot was in use. If that frame's
// Retirement has not completed, ErrInFlightBudgetExceeded is returned and nothing runs.
func (b *Bin) BeginFrame(ctx context.Context) error {
	b.mutex.Lock()
	frame := b.currentFrame
	retirement := b.retirements[frame]
	b.mutex.Unlock()

	if retirement != nil {
		if !retirement.Ready() {
			return cerrors.Wrapf(ErrInFlightBudgetExceeded, "frame slot %d", frame)
		}

		err := retirement.Wait(ctx)
		if err != nil {
			return err
		}

		b.mutex.Lock()
		b.retirements[frame] = nil
		b.mutex.Unlock()
	}

	b.drain(frame)
	return nil
}

// WaitFrame blocks until the current frame slot's retirement completes, so that BeginFrame can proceed
func (b *Bin) WaitFrame(ctx context.Context) error {
	b.mutex.Lock()
	frame := b.currentFrame
	retirement := b.retirements[frame]
	b.mutex.Unlock()

	if retirement == nil {
		return nil
	}

	err := retirement.Wait(ctx)
	if err != nil {
		return cerrors.Wrapf(err, "waiting for frame slot %d", frame)
	}

	b.mutex.Lock()
	b.retirements[frame] = nil
	b.mutex.Unlock()

	return nil
}

// EndFrame records the retirement of the frame's GPU work and moves to the next frame slot. retirement may
// be nil when the caller paces frames by other means.
func (b *Bin) EndFrame(retirement Retirement) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.retirements[b.currentFrame] = retirement
	b.currentFrame = (b.currentFrame + 1) % b.maxFramesInFlight
}

func (b *Bin) drain(frame uint32) {
	b.mutex.Lock()
	count := 0
	for count < len(b.entries) && b.entries[count].frame == frame {
		count++
	}

	ready := make([]func(), count)
	for i := 0; i < count; i++ {
		ready[i] = b.entries[i].deletion
	}
	b.entries = append(b.entries[:0], b.entries[count:]...)
	b.mutex.Unlock()

	if count > 0 {
		b.logger.LogAttrs(context.Background(), slog.LevelDebug, "Running deferred deletions",
			slog.Int("frame", int(frame)),
			slog.Int("count", count),
		)
	}

	// Deletions may push further deletions, so they run outside the lock
	for _, deletion := range ready {
		deletion()
	}
}

// Flush runs every queued deletion regardless of frame. It is intended for shutdown, after the GPU is idle.
func (b *Bin) Flush() {
	b.mutex.Lock()
	ready := b.entries
	b.entries = nil
	clear(b.retirements)
	b.mutex.Unlock()

	if len(ready) > 0 {
		b.logger.LogAttrs(context.Background(), slog.LevelDebug, "Flushing deferred deletions",
			slog.Int("count", len(ready)),
		)
	}

	for _, e := range ready {
		e.deletion()
	}
}

// Pending is the number of queued deletions
func (b *Bin) Pending() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return len(b.entries)
}

func (b *Bin) CurrentFrame() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	return int(b.currentFrame)
}

func (b *Bin) MaxFramesInFlight() int {
	return int(b.maxFramesInFlight)
}
