package device

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/driver"
	"github.com/vkngwrapper/rhi/handle"
)

// acquireFence must be called with the write lock held
func (d *Device) acquireFence() (driver.Fence, error) {
	d.sweepRetiringFences()

	if len(d.fencePool) > 0 {
		fence := d.fencePool[len(d.fencePool)-1]
		d.fencePool = d.fencePool[:len(d.fencePool)-1]
		return fence, nil
	}

	fence, err := d.driver.CreateFence()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fence")
	}

	return fence, nil
}

// recycleFence must be called with the write lock held
func (d *Device) recycleFence(fence driver.Fence) {
	err := fence.Reset()
	if err != nil {
		fence.Destroy()
		return
	}

	d.fencePool = append(d.fencePool, fence)
}

// waitersDone reports whether every batch in waiters has completed on its queue
func (d *Device) waitersDone(waiters []queueSerial) bool {
	for _, waiter := range waiters {
		queue, err := d.queue(waiter.queue)
		if err != nil {
			continue
		}

		if queue.CompletedSerial() < waiter.serial {
			return false
		}
	}

	return true
}

// retireFence recycles a consumed fence, or parks it until the batches waiting on it have run. Must be
// called with the write lock held.
func (d *Device) retireFence(fence driver.Fence, waiters []queueSerial) {
	if d.waitersDone(waiters) {
		d.recycleFence(fence)
		return
	}

	d.retiringFences = append(d.retiringFences, retiringFence{fence: fence, waiters: waiters})
}

// sweepRetiringFences must be called with the write lock held
func (d *Device) sweepRetiringFences() {
	kept := d.retiringFences[:0]
	for _, retiring := range d.retiringFences {
		if d.waitersDone(retiring.waiters) {
			d.recycleFence(retiring.fence)
			continue
		}

		kept = append(kept, retiring)
	}

	clear(d.retiringFences[len(kept):])
	d.retiringFences = kept
}

// WaitForGPU blocks until the submission that produced receipt has completed, or ctx is done. A successful
// wait consumes the receipt and the handle becomes stale. Its fence goes back to the pool once every batch
// submitted with the receipt as its incoming sync has completed. Only one goroutine may wait on a given
// receipt.
func (d *Device) WaitForGPU(ctx context.Context, receipt rhi.SyncReceipt) error {
	if receipt == rhi.NoSync {
		return nil
	}

	d.mutex.RLock()
	record, err := d.syncs.Get(receipt)
	if err != nil {
		d.mutex.RUnlock()
		return err
	}
	fence := record.fence
	d.mutex.RUnlock()

	err = fence.Wait(ctx)
	if err != nil {
		return errors.Wrapf(err, "waiting for %s", receipt)
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	removed, err := d.syncs.Remove(receipt)
	if err != nil {
		return err
	}

	d.retireFence(fence, removed.waiters)
	return nil
}

// SyncCompleted polls a receipt without consuming it
func (d *Device) SyncCompleted(receipt rhi.SyncReceipt) (bool, error) {
	if receipt == rhi.NoSync {
		return true, nil
	}

	d.mutex.RLock()
	defer d.mutex.RUnlock()

	record, err := d.syncs.Get(receipt)
	if err != nil {
		return false, err
	}

	return record.fence.Signaled(), nil
}

// Retirement adapts a receipt for frame pacing in the garbage bin
func (d *Device) Retirement(receipt rhi.SyncReceipt) *SyncRetirement {
	return &SyncRetirement{device: d, receipt: receipt}
}

// SyncRetirement is a frame retirement backed by a SyncReceipt. A receipt that has already been consumed
// counts as retired.
type SyncRetirement struct {
	device  *Device
	receipt rhi.SyncReceipt
}

func (r *SyncRetirement) Ready() bool {
	if r == nil || r.receipt == rhi.NoSync {
		return true
	}

	done, err := r.device.SyncCompleted(r.receipt)
	if err != nil {
		return consumed(err)
	}

	return done
}

func (r *SyncRetirement) Wait(ctx context.Context) error {
	if r == nil || r.receipt == rhi.NoSync {
		return nil
	}

	err := r.device.WaitForGPU(ctx, r.receipt)
	if consumed(err) {
		return nil
	}

	return err
}

func consumed(err error) bool {
	return errors.Is(err, handle.ErrStaleHandle) || errors.Is(err, handle.ErrAlreadyFreed)
}
