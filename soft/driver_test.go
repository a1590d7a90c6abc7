package soft_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/driver"
	"github.com/vkngwrapper/rhi/soft"
)

func newDriver(t *testing.T, manual bool) *soft.Driver {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	drv, err := soft.New(logger, soft.Options{ManualExecution: manual, MaxDescriptors: 8})
	require.NoError(t, err)
	t.Cleanup(drv.Destroy)
	return drv
}

func uploadBuffer(t *testing.T, drv *soft.Driver, label string, contents []byte) driver.Buffer {
	buffer, err := drv.CreateBuffer(rhi.BufferDesc{Label: label, Size: len(contents), Memory: rhi.MemoryUpload})
	require.NoError(t, err)

	mapped, err := buffer.Map()
	require.NoError(t, err)
	copy(mapped, contents)
	require.NoError(t, buffer.Unmap())

	return buffer
}

func recordCopy(t *testing.T, drv *soft.Driver, queue rhi.QueueType, src, dst driver.Buffer, size int) driver.CommandBuffer {
	commands, err := drv.CreateCommandBuffer(queue)
	require.NoError(t, err)
	require.NoError(t, commands.Begin())
	require.NoError(t, commands.CopyBuffer(src, 0, dst, 0, size))
	require.NoError(t, commands.End())
	return commands
}

func TestAsyncCopyCompletes(t *testing.T) {
	drv := newDriver(t, false)

	src := uploadBuffer(t, drv, "src", []byte{1, 2, 3, 4})
	dst, err := drv.CreateBuffer(rhi.BufferDesc{Label: "dst", Size: 4, Memory: rhi.MemoryReadback})
	require.NoError(t, err)

	queue, err := drv.Queue(rhi.QueueCopy)
	require.NoError(t, err)

	done, err := drv.CreateFence()
	require.NoError(t, err)

	serial, err := queue.Execute(driver.Batch{
		Buffers: []driver.CommandBuffer{recordCopy(t, drv, rhi.QueueCopy, src, dst, 4)},
		Signal:  done,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), serial)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, done.Wait(ctx))
	require.True(t, done.Signaled())
	require.Equal(t, uint64(1), queue.CompletedSerial())

	mapped, err := dst.Map()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, mapped)
	require.NoError(t, dst.Unmap())

	events := drv.Executed()
	require.Len(t, events, 1)
	require.Equal(t, rhi.CommandCopyBuffer, events[0].Command)
	require.Equal(t, rhi.QueueCopy, events[0].Queue)
	require.NoError(t, drv.Err())
}

func TestAsyncFlush(t *testing.T) {
	drv := newDriver(t, false)

	queue, err := drv.Queue(rhi.QueueGraphics)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		commands, err := drv.CreateCommandBuffer(rhi.QueueGraphics)
		require.NoError(t, err)
		require.NoError(t, commands.Begin())
		require.NoError(t, commands.UpdateShaderArgs([]uint32{uint32(i)}))
		require.NoError(t, commands.End())

		_, err = queue.Execute(driver.Batch{Buffers: []driver.CommandBuffer{commands}})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, queue.Flush(ctx))
	require.GreaterOrEqual(t, queue.CompletedSerial(), uint64(5))

	events := drv.Executed()
	require.Len(t, events, 5)
	for i, event := range events {
		require.Equal(t, uint64(i+1), event.Serial)
		require.Equal(t, []uint32{uint32(i)}, event.Constants)
	}
}

func TestManualStep(t *testing.T) {
	drv := newDriver(t, true)

	src := uploadBuffer(t, drv, "src", []byte{9, 8, 7, 6})
	dst, err := drv.CreateBuffer(rhi.BufferDesc{Label: "dst", Size: 4, Memory: rhi.MemoryReadback})
	require.NoError(t, err)

	queue, err := drv.Queue(rhi.QueueCopy)
	require.NoError(t, err)

	_, err = queue.Execute(driver.Batch{Buffers: []driver.CommandBuffer{recordCopy(t, drv, rhi.QueueCopy, src, dst, 2)}})
	require.NoError(t, err)
	_, err = queue.Execute(driver.Batch{Buffers: []driver.CommandBuffer{recordCopy(t, drv, rhi.QueueCopy, src, dst, 4)}})
	require.NoError(t, err)

	require.Equal(t, 2, drv.Pending(rhi.QueueCopy))
	require.Equal(t, uint64(0), queue.CompletedSerial())

	require.Equal(t, 1, drv.Step(rhi.QueueCopy, 1))
	require.Equal(t, uint64(1), queue.CompletedSerial())

	mapped, err := dst.Map()
	require.NoError(t, err)
	require.Equal(t, []byte{9, 8, 0, 0}, mapped)

	require.Equal(t, 1, drv.StepAll())
	require.Equal(t, []byte{9, 8, 7, 6}, mapped)
	require.Equal(t, 0, drv.Pending(rhi.QueueCopy))
	require.Equal(t, 0, drv.StepAll())
}

func TestManualCrossQueueWait(t *testing.T) {
	drv := newDriver(t, true)

	copyQueue, err := drv.Queue(rhi.QueueCopy)
	require.NoError(t, err)
	graphicsQueue, err := drv.Queue(rhi.QueueGraphics)
	require.NoError(t, err)

	uploaded, err := drv.CreateFence()
	require.NoError(t, err)

	_, err = graphicsQueue.Execute(driver.Batch{Wait: uploaded})
	require.NoError(t, err)
	_, err = copyQueue.Execute(driver.Batch{Signal: uploaded})
	require.NoError(t, err)

	require.Equal(t, 0, drv.Step(rhi.QueueGraphics, -1))
	require.Equal(t, 1, drv.Step(rhi.QueueCopy, -1))
	require.True(t, uploaded.Signaled())
	require.Equal(t, 1, drv.Step(rhi.QueueGraphics, -1))
	require.Equal(t, uint64(1), graphicsQueue.CompletedSerial())

	require.NoError(t, uploaded.Reset())
	require.False(t, uploaded.Signaled())
}

func TestManualFlushHonorsContext(t *testing.T) {
	drv := newDriver(t, true)

	queue, err := drv.Queue(rhi.QueueCompute)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = queue.Flush(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, drv.Pending(rhi.QueueCompute))
}

func TestExecutionErrorsAreCollected(t *testing.T) {
	drv := newDriver(t, true)

	src := uploadBuffer(t, drv, "src", []byte{1, 2})
	dst, err := drv.CreateBuffer(rhi.BufferDesc{Label: "dst", Size: 2, Memory: rhi.MemoryReadback})
	require.NoError(t, err)

	queue, err := drv.Queue(rhi.QueueCopy)
	require.NoError(t, err)

	_, err = queue.Execute(driver.Batch{Buffers: []driver.CommandBuffer{recordCopy(t, drv, rhi.QueueCopy, src, dst, 8)}})
	require.NoError(t, err)

	drv.StepAll()
	require.True(t, errors.Is(drv.Err(), rhi.ErrOutOfBounds))
	require.Equal(t, uint64(1), queue.CompletedSerial())
}

func TestCommandBufferValidation(t *testing.T) {
	drv := newDriver(t, true)

	copyCommands, err := drv.CreateCommandBuffer(rhi.QueueCopy)
	require.NoError(t, err)

	require.Error(t, copyCommands.Draw(rhi.Draw{VertsPerInstance: 3, InstanceCount: 1}))

	require.NoError(t, copyCommands.Begin())
	require.Error(t, copyCommands.Draw(rhi.Draw{VertsPerInstance: 3, InstanceCount: 1}))
	require.Error(t, copyCommands.UpdateShaderArgs([]uint32{1}))
	require.Error(t, copyCommands.EndRenderPass())
	require.NoError(t, copyCommands.End())
	require.Error(t, copyCommands.End())

	graphicsCommands, err := drv.CreateCommandBuffer(rhi.QueueGraphics)
	require.NoError(t, err)

	queue, err := drv.Queue(rhi.QueueGraphics)
	require.NoError(t, err)
	_, err = queue.Execute(driver.Batch{Buffers: []driver.CommandBuffer{graphicsCommands}})
	require.Error(t, err)

	_, err = queue.Execute(driver.Batch{Buffers: []driver.CommandBuffer{copyCommands}})
	require.Error(t, err)

	pass, err := drv.CreateRenderPass(driver.RenderPassDesc{Label: "empty"})
	require.NoError(t, err)

	require.NoError(t, graphicsCommands.Begin())
	require.NoError(t, graphicsCommands.BeginRenderPass(pass, rhi.BeginRenderPass{Width: 4, Height: 4}))
	require.Error(t, graphicsCommands.BeginRenderPass(pass, rhi.BeginRenderPass{Width: 4, Height: 4}))
	require.Error(t, graphicsCommands.End())
	require.NoError(t, graphicsCommands.EndRenderPass())
	require.NoError(t, graphicsCommands.End())

	_, err = queue.Execute(driver.Batch{Buffers: []driver.CommandBuffer{graphicsCommands}})
	require.NoError(t, err)
	drv.StepAll()

	events := drv.Executed()
	require.Len(t, events, 2)
	require.Equal(t, rhi.CommandBeginRenderPass, events[0].Command)
	require.Equal(t, rhi.CommandEndRenderPass, events[1].Command)
}

func TestDescriptorReuse(t *testing.T) {
	drv := newDriver(t, true)

	buffer := uploadBuffer(t, drv, "constants", []byte{0, 1, 2, 3, 4, 5, 6, 7})

	first, err := drv.CreateBufferView(buffer, rhi.BufferViewDesc{Type: rhi.ViewConstantBuffer, Offset: 0, Size: 4})
	require.NoError(t, err)
	second, err := drv.CreateBufferView(buffer, rhi.BufferViewDesc{Type: rhi.ViewConstantBuffer, Offset: 4, Size: 4})
	require.NoError(t, err)

	firstIndex, ok := first.DescriptorIndex()
	require.True(t, ok)
	secondIndex, ok := second.DescriptorIndex()
	require.True(t, ok)
	require.Equal(t, uint32(0), firstIndex)
	require.Equal(t, uint32(1), secondIndex)
	require.Equal(t, 2, drv.DescriptorsInUse())

	contents, err := drv.ReadDescriptor(secondIndex)
	require.NoError(t, err)
	require.Equal(t, []byte{4, 5, 6, 7}, contents)

	first.Destroy()
	require.Equal(t, 1, drv.DescriptorsInUse())
	_, err = drv.ReadDescriptor(firstIndex)
	require.Error(t, err)

	third, err := drv.CreateBufferView(buffer, rhi.BufferViewDesc{Type: rhi.ViewShaderResource, Offset: 2, Size: 2})
	require.NoError(t, err)
	thirdIndex, ok := third.DescriptorIndex()
	require.True(t, ok)
	require.Equal(t, firstIndex, thirdIndex)

	contents, err = drv.ReadDescriptor(thirdIndex)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3}, contents)
}

func TestDescriptorTableExhaustion(t *testing.T) {
	drv := newDriver(t, true)

	buffer := uploadBuffer(t, drv, "constants", make([]byte, 16))
	for i := 0; i < 8; i++ {
		_, err := drv.CreateBufferView(buffer, rhi.BufferViewDesc{Type: rhi.ViewConstantBuffer, Size: 16})
		require.NoError(t, err)
	}

	_, err := drv.CreateBufferView(buffer, rhi.BufferViewDesc{Type: rhi.ViewConstantBuffer, Size: 16})
	require.Error(t, err)
}

func TestDefaultMemoryIsNotMappable(t *testing.T) {
	drv := newDriver(t, true)

	buffer, err := drv.CreateBuffer(rhi.BufferDesc{Label: "local", Size: 64, Memory: rhi.MemoryDefault})
	require.NoError(t, err)

	_, err = buffer.Map()
	require.ErrorIs(t, err, rhi.ErrNotMappable)
	require.Error(t, buffer.Unmap())
}

func TestLargeBuffersBypassTheHeap(t *testing.T) {
	drv := newDriver(t, true)

	buffer, err := drv.CreateBuffer(rhi.BufferDesc{Label: "large", Size: 1 << 20, Memory: rhi.MemoryUpload})
	require.NoError(t, err)
	require.Equal(t, 1<<20, buffer.Size())

	mapped, err := buffer.Map()
	require.NoError(t, err)
	require.Len(t, mapped, 1<<20)
	buffer.Destroy()
}

func TestCopyBufferToImage(t *testing.T) {
	drv := newDriver(t, true)

	// Two rows of two RGBA8 pixels, padded to an 8 byte row pitch plus 4 bytes of slack
	staging := uploadBuffer(t, drv, "staging", []byte{
		1, 1, 1, 1, 2, 2, 2, 2, 0, 0, 0, 0,
		3, 3, 3, 3, 4, 4, 4, 4, 0, 0, 0, 0,
	})

	texture, err := drv.CreateTexture(rhi.TextureDesc{
		Label:     "target",
		Size:      gputypes.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1},
		Dimension: gputypes.TextureDimension2D,
		Format:    gputypes.TextureFormatRGBA8Unorm,
		MipLevels: 2,
	})
	require.NoError(t, err)

	commands, err := drv.CreateCommandBuffer(rhi.QueueCopy)
	require.NoError(t, err)
	require.NoError(t, commands.Begin())
	require.NoError(t, commands.CopyBufferToImage(staging, texture, rhi.CopyBufferToImage{
		SrcRowPitch:    12,
		Extent:         gputypes.Extent3D{Width: 2, Height: 2, DepthOrArrayLayers: 1},
		Format:         gputypes.TextureFormatRGBA8Unorm,
		DstSubresource: 1,
	}))
	require.NoError(t, commands.End())

	queue, err := drv.Queue(rhi.QueueCopy)
	require.NoError(t, err)
	_, err = queue.Execute(driver.Batch{Buffers: []driver.CommandBuffer{commands}})
	require.NoError(t, err)
	drv.StepAll()
	require.NoError(t, drv.Err())

	view, err := drv.CreateTextureView(texture, rhi.TextureViewDesc{
		Type:      rhi.ViewShaderResource,
		Format:    gputypes.TextureFormatRGBA8Unorm,
		Dimension: gputypes.TextureViewDimension2D,
		BaseMip:   1,
		MipCount:  1,
	})
	require.NoError(t, err)

	index, ok := view.DescriptorIndex()
	require.True(t, ok)

	contents, err := drv.ReadDescriptor(index)
	require.NoError(t, err)
	require.Equal(t, []byte{
		1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4,
	}, contents)
}

func TestRenderTargetViewsAreNotBindless(t *testing.T) {
	drv := newDriver(t, true)

	texture, err := drv.CreateTexture(rhi.TextureDesc{
		Label:     "color",
		Size:      gputypes.Extent3D{Width: 8, Height: 8, DepthOrArrayLayers: 1},
		Dimension: gputypes.TextureDimension2D,
		Format:    gputypes.TextureFormatBGRA8Unorm,
		MipLevels: 1,
	})
	require.NoError(t, err)

	view, err := drv.CreateTextureView(texture, rhi.TextureViewDesc{Type: rhi.ViewRenderTarget})
	require.NoError(t, err)

	_, ok := view.DescriptorIndex()
	require.False(t, ok)
	require.Equal(t, 0, drv.DescriptorsInUse())
}
