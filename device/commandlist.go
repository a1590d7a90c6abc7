package device

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/driver"
)

// CommandListState tracks a command list through its life cycle
type CommandListState int32

const (
	// CommandListRecording lists accept a compile
	CommandListRecording CommandListState = iota
	// CommandListCompiled lists have been translated and closed, and may be submitted
	CommandListCompiled
	// CommandListSubmitted lists are executing, or waiting to execute, on their queue
	CommandListSubmitted
	// CommandListRetired lists have finished executing and may be recycled
	CommandListRetired
	// CommandListFailed lists hit an error while compiling and can only be recycled
	CommandListFailed
)

var commandListStateMapping = map[CommandListState]string{
	CommandListRecording: "Recording",
	CommandListCompiled:  "Compiled",
	CommandListSubmitted: "Submitted",
	CommandListRetired:   "Retired",
	CommandListFailed:    "Failed",
}

func (s CommandListState) String() string {
	str, ok := commandListStateMapping[s]
	if !ok {
		return "CommandListState(" + strconv.Itoa(int(s)) + ")"
	}
	return str
}

// AllocateCommandList returns a command list for queue in the recording state. Native command buffers are
// reused from lists that were recycled.
func (d *Device) AllocateCommandList(queue rhi.QueueType) (rhi.CommandList, error) {
	err := validQueue(queue)
	if err != nil {
		return 0, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	var buffer driver.CommandBuffer
	pool := d.commandBufferPools[queue]
	if len(pool) > 0 {
		buffer = pool[len(pool)-1]
		d.commandBufferPools[queue] = pool[:len(pool)-1]
	} else {
		buffer, err = d.driver.CreateCommandBuffer(queue)
		if err != nil {
			return 0, errors.Wrapf(err, "failed to create a %s command buffer", queue)
		}

		d.logger.LogAttrs(context.Background(), slog.LevelDebug, "Created command buffer",
			slog.String("queue", queue.String()),
		)
	}

	err = buffer.Begin()
	if err != nil {
		d.commandBufferPools[queue] = append(d.commandBufferPools[queue], buffer)
		return 0, errors.Wrap(err, "failed to begin recording")
	}

	return d.commandLists.Insert(commandListRecord{
		queue:  queue,
		buffer: buffer,
		state:  CommandListRecording,
	}), nil
}

// CompileCommandList translates every command of commands, in order, into the list's native command buffer
// and closes it. A list can be compiled once; if translation fails the list moves to CommandListFailed.
func (d *Device) CompileCommandList(list rhi.CommandList, commands *rhi.RenderCommandList) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	record, err := d.commandLists.Get(list)
	if err != nil {
		return err
	}

	if record.state != CommandListRecording {
		return errors.Wrapf(rhi.ErrAlreadyCompiled, "%s is %s", list, record.state)
	}

	for index, cmd := range commands.Commands() {
		err = d.translate(record.buffer, cmd)
		if err != nil {
			record.state = CommandListFailed
			return errors.Wrapf(err, "command %d (%s)", index, cmd.CommandType())
		}
	}

	err = record.buffer.End()
	if err != nil {
		record.state = CommandListFailed
		return errors.Wrapf(err, "failed to close %s", list)
	}

	record.state = CommandListCompiled
	return nil
}

// translate must be called with the write lock held
func (d *Device) translate(t driver.Translator, cmd rhi.RenderCommand) error {
	switch c := cmd.(type) {
	case rhi.Draw:
		return t.Draw(c)

	case rhi.DrawIndexed:
		indexBuffer, err := d.buffers.Get(c.IndexBuffer)
		if err != nil {
			return err
		}
		return t.DrawIndexed(indexBuffer.native, c)

	case rhi.SetPipeline:
		pipeline, err := d.pipelines.Get(c.Pipeline)
		if err != nil {
			return err
		}
		return t.SetPipeline(pipeline.native)

	case rhi.BeginRenderPass:
		pass, err := d.renderPasses.Get(c.RenderPass)
		if err != nil {
			return err
		}
		return t.BeginRenderPass(pass.native, c)

	case rhi.EndRenderPass:
		return t.EndRenderPass()

	case rhi.Barrier:
		barriers := make([]driver.Barrier, 0, len(c.Barriers))
		for _, barrier := range c.Barriers {
			resolved, err := d.resolveBarrier(barrier)
			if err != nil {
				return err
			}
			barriers = append(barriers, resolved)
		}
		return t.Barriers(barriers)

	case rhi.CopyBuffer:
		src, err := d.buffers.Get(c.Src)
		if err != nil {
			return err
		}
		dst, err := d.buffers.Get(c.Dst)
		if err != nil {
			return err
		}
		if c.Size <= 0 || c.SrcOffset < 0 || c.DstOffset < 0 ||
			c.SrcOffset+c.Size > src.desc.Size || c.DstOffset+c.Size > dst.desc.Size {
			return errors.Wrapf(rhi.ErrOutOfBounds, "copy of %d bytes from %q+%d to %q+%d", c.Size, src.desc.Label, c.SrcOffset, dst.desc.Label, c.DstOffset)
		}
		return t.CopyBuffer(src.native, c.SrcOffset, dst.native, c.DstOffset, c.Size)

	case rhi.CopyBufferToImage:
		src, err := d.buffers.Get(c.Src)
		if err != nil {
			return err
		}
		dst, err := d.textures.Get(c.Dst)
		if err != nil {
			return err
		}
		if c.DstSubresource >= dst.desc.MipLevels {
			return errors.Wrapf(rhi.ErrOutOfBounds, "subresource %d of texture %q with %d mips", c.DstSubresource, dst.desc.Label, dst.desc.MipLevels)
		}
		return t.CopyBufferToImage(src.native, dst.native, c)

	case rhi.UpdateShaderArgs:
		return t.UpdateShaderArgs(c.Constants)

	default:
		return errors.Wrapf(rhi.ErrUnknownCommand, "%T", cmd)
	}
}

func (d *Device) resolveBarrier(barrier rhi.ResourceBarrier) (driver.Barrier, error) {
	resolved := driver.Barrier{
		Type:        barrier.Type,
		Before:      barrier.Before,
		After:       barrier.After,
		Subresource: barrier.Subresource,
	}

	if barrier.Buffer != 0 {
		buffer, err := d.buffers.Get(barrier.Buffer)
		if err != nil {
			return resolved, err
		}
		resolved.Buffer = buffer.native
	}

	if barrier.Texture != 0 {
		texture, err := d.textures.Get(barrier.Texture)
		if err != nil {
			return resolved, err
		}
		resolved.Texture = texture.native
	}

	if barrier.AliasAfter != 0 {
		texture, err := d.textures.Get(barrier.AliasAfter)
		if err != nil {
			return resolved, err
		}
		resolved.AliasAfter = texture.native
	}

	if resolved.Buffer == nil && resolved.Texture == nil && barrier.Type != rhi.BarrierAliasing {
		return resolved, errors.Wrapf(rhi.ErrInvalidDescriptor, "%s barrier names no resource", barrier.Type)
	}

	return resolved, nil
}

// SubmitCommandLists executes lists, in array order, on the queue. If incoming is not rhi.NoSync the GPU
// waits for it before starting. If generateSync is true the returned receipt is signaled once every list
// has finished; otherwise rhi.NoSync is returned.
func (d *Device) SubmitCommandLists(lists []rhi.CommandList, queueType rhi.QueueType, incoming rhi.SyncReceipt, generateSync bool) (rhi.SyncReceipt, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	queue, err := d.queue(queueType)
	if err != nil {
		return rhi.NoSync, err
	}

	records := make([]*commandListRecord, 0, len(lists))
	buffers := make([]driver.CommandBuffer, 0, len(lists))
	seen := make(map[rhi.CommandList]struct{}, len(lists))
	for _, list := range lists {
		if _, duplicate := seen[list]; duplicate {
			return rhi.NoSync, errors.Newf("%s was submitted more than once in the same batch", list)
		}
		seen[list] = struct{}{}

		record, err := d.commandLists.Get(list)
		if err != nil {
			return rhi.NoSync, err
		}
		if record.state != CommandListCompiled {
			return rhi.NoSync, errors.Wrapf(rhi.ErrNotCompiled, "%s is %s", list, record.state)
		}
		if record.queue != queueType {
			return rhi.NoSync, errors.Wrapf(rhi.ErrQueueMismatch, "%s was allocated for the %s queue, not %s", list, record.queue, queueType)
		}

		records = append(records, record)
		buffers = append(buffers, record.buffer)
	}

	batch := driver.Batch{Buffers: buffers}

	var waitOn *syncRecord
	if incoming != rhi.NoSync {
		waitOn, err = d.syncs.Get(incoming)
		if err != nil {
			return rhi.NoSync, errors.Wrap(err, "incoming sync receipt")
		}
		batch.Wait = waitOn.fence
	}

	if generateSync {
		batch.Signal, err = d.acquireFence()
		if err != nil {
			return rhi.NoSync, err
		}
	}

	serial, err := queue.Execute(batch)
	if err != nil {
		if batch.Signal != nil {
			d.fencePool = append(d.fencePool, batch.Signal)
		}
		return rhi.NoSync, errors.Wrapf(err, "failed to execute %d command lists on the %s queue", len(lists), queueType)
	}

	for _, record := range records {
		record.state = CommandListSubmitted
		record.serial = serial
	}

	if waitOn != nil {
		// The fence stays out of the pool until this batch has gotten past it
		waitOn.waiters = append(waitOn.waiters, queueSerial{queue: queueType, serial: serial})
	}

	if !generateSync {
		return rhi.NoSync, nil
	}

	return d.syncs.Insert(syncRecord{
		fence:  batch.Signal,
		queue:  queueType,
		serial: serial,
	}), nil
}

// RecycleCommandList returns a list's native command buffer to the pool for its queue. Submitted lists can
// only be recycled once the GPU has finished them.
func (d *Device) RecycleCommandList(list rhi.CommandList) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	record, err := d.commandLists.Get(list)
	if err != nil {
		return err
	}

	if record.state == CommandListSubmitted {
		queue, err := d.queue(record.queue)
		if err != nil {
			return err
		}

		if queue.CompletedSerial() < record.serial {
			return errors.Wrapf(rhi.ErrStillExecuting, "%s is serial %d on the %s queue, which has completed %d", list, record.serial, record.queue, queue.CompletedSerial())
		}
	}

	removed, err := d.commandLists.Remove(list)
	if err != nil {
		return err
	}

	d.commandBufferPools[removed.queue] = append(d.commandBufferPools[removed.queue], removed.buffer)

	d.logger.LogAttrs(context.Background(), slog.LevelDebug, "Recycled command list",
		slog.String("queue", removed.queue.String()),
		slog.Int("pooled", len(d.commandBufferPools[removed.queue])),
	)

	return nil
}

// CommandListState reports where a list is in its life cycle
func (d *Device) CommandListState(list rhi.CommandList) (CommandListState, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	record, err := d.commandLists.Get(list)
	if err != nil {
		return 0, err
	}

	if record.state == CommandListSubmitted {
		queue := d.queues[record.queue]
		if queue != nil && queue.CompletedSerial() >= record.serial {
			return CommandListRetired, nil
		}
	}

	return record.state, nil
}
