package soft

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/driver"
)

type submission struct {
	serial uint64
	wait   *fence
	ops    []op
	signal *fence
}

// queue executes submissions in serial order, either on its own goroutine or when stepped manually
type queue struct {
	driver    *Driver
	queueType rhi.QueueType

	mutex     sync.Mutex
	submitted uint64
	stopped   bool
	pending   []submission
	work      chan submission

	completed atomic.Uint64
}

var _ driver.Queue = &queue{}

func newQueue(d *Driver, queueType rhi.QueueType) *queue {
	q := &queue{
		driver:    d,
		queueType: queueType,
	}

	if !d.options.ManualExecution {
		q.work = make(chan submission, defaultQueueDepth)
		d.workers.Add(1)
		go q.worker()
	}

	return q
}

func (q *queue) Type() rhi.QueueType { return q.queueType }

func (q *queue) CompletedSerial() uint64 { return q.completed.Load() }

func (q *queue) Execute(batch driver.Batch) (uint64, error) {
	sub := submission{}

	for _, nativeBuffer := range batch.Buffers {
		buffer, ok := nativeBuffer.(*commandBuffer)
		if !ok {
			return 0, errors.Newf("command buffer of type %T does not belong to the software driver", nativeBuffer)
		}
		if !buffer.closed {
			return 0, errors.New("command buffer must be closed before it is executed")
		}
		if buffer.queue != q.queueType {
			return 0, errors.Newf("%s command buffer executed on the %s queue", buffer.queue, q.queueType)
		}

		sub.ops = append(sub.ops, buffer.ops...)
	}

	if batch.Wait != nil {
		wait, ok := batch.Wait.(*fence)
		if !ok {
			return 0, errors.Newf("fence of type %T does not belong to the software driver", batch.Wait)
		}
		sub.wait = wait
	}

	if batch.Signal != nil {
		signal, ok := batch.Signal.(*fence)
		if !ok {
			return 0, errors.Newf("fence of type %T does not belong to the software driver", batch.Signal)
		}
		sub.signal = signal
	}

	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.stopped {
		return 0, errors.Newf("the %s queue has been shut down", q.queueType)
	}

	q.submitted++
	sub.serial = q.submitted

	if q.work == nil {
		q.pending = append(q.pending, sub)
	} else {
		// Sent under the lock so that channel order matches serial order
		q.work <- sub
	}

	return sub.serial, nil
}

// Flush submits an empty batch and waits for it, which implies every earlier batch has completed. On a
// manually executed queue this blocks until the batch is stepped or ctx is done.
func (q *queue) Flush(ctx context.Context) error {
	marker := newFence()

	_, err := q.Execute(driver.Batch{Signal: marker})
	if err != nil {
		return err
	}

	return marker.Wait(ctx)
}

func (q *queue) worker() {
	defer q.driver.workers.Done()

	for sub := range q.work {
		if sub.wait != nil {
			err := sub.wait.Wait(q.driver.ctx)
			if err != nil {
				// The driver is shutting down
				return
			}
		}

		q.run(sub)
	}
}

func (q *queue) run(sub submission) {
	for _, o := range sub.ops {
		if o.run != nil {
			err := o.run()
			if err != nil {
				q.driver.executionError(errors.Wrapf(err, "%s queue serial %d", q.queueType, sub.serial))
			}
		}

		q.driver.record(Event{
			Queue:     q.queueType,
			Serial:    sub.serial,
			Command:   o.command,
			Label:     o.label,
			Constants: o.constants,
		})
	}

	q.completed.Store(sub.serial)
	if sub.signal != nil {
		sub.signal.signal()
	}
}

func (q *queue) step(count int) int {
	executed := 0

	for count < 0 || executed < count {
		q.mutex.Lock()
		if len(q.pending) == 0 || (q.pending[0].wait != nil && !q.pending[0].wait.Signaled()) {
			q.mutex.Unlock()
			break
		}

		sub := q.pending[0]
		q.pending = q.pending[1:]
		q.mutex.Unlock()

		q.run(sub)
		executed++
	}

	return executed
}

func (q *queue) pendingCount() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	return len(q.pending)
}

func (q *queue) stop() {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	if q.stopped {
		return
	}
	q.stopped = true

	if q.work != nil {
		close(q.work)
	}

	if len(q.pending) > 0 {
		q.driver.logger.LogAttrs(context.Background(), slog.LevelWarn, "Dropping batches that were never executed",
			slog.String("queue", q.queueType.String()),
			slog.Int("count", len(q.pending)),
		)
		q.pending = nil
	}
}
