package device_test

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/device"
	"github.com/vkngwrapper/rhi/driver"
	"github.com/vkngwrapper/rhi/driver/mocks"
	"go.uber.org/mock/gomock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newMockDevice(t *testing.T) (*gomock.Controller, *mocks.MockDriver, *device.Device) {
	ctrl := gomock.NewController(t)
	drv := mocks.NewMockDriver(ctrl)
	drv.EXPECT().Name().Return("mock").AnyTimes()

	dev, err := device.New(discardLogger(), drv, device.CreateOptions{})
	require.NoError(t, err)

	return ctrl, drv, dev
}

type batchMatcher struct {
	buffers []driver.CommandBuffer
	wait    driver.Fence
	signal  driver.Fence
}

func (m batchMatcher) Matches(x any) bool {
	batch, ok := x.(driver.Batch)
	if !ok || len(batch.Buffers) != len(m.buffers) {
		return false
	}
	for i := range m.buffers {
		if batch.Buffers[i] != m.buffers[i] {
			return false
		}
	}
	return batch.Wait == m.wait && batch.Signal == m.signal
}

func (m batchMatcher) String() string {
	return fmt.Sprintf("batch of %d buffers", len(m.buffers))
}

func TestCompileTranslatesInOrder(t *testing.T) {
	ctrl, drv, dev := newMockDevice(t)

	nativePipeline := mocks.NewMockPipeline(ctrl)
	drv.EXPECT().CreateGraphicsPipeline(gomock.Any()).Return(nativePipeline, nil)

	pipeline, err := dev.CreateGraphicsPipeline(rhi.GraphicsPipelineDesc{Label: "opaque", VertexShader: []byte{1}})
	require.NoError(t, err)

	commandBuffer := mocks.NewMockCommandBuffer(ctrl)
	drv.EXPECT().CreateCommandBuffer(rhi.QueueGraphics).Return(commandBuffer, nil)

	gomock.InOrder(
		commandBuffer.EXPECT().Begin().Return(nil),
		commandBuffer.EXPECT().SetPipeline(nativePipeline).Return(nil),
		commandBuffer.EXPECT().UpdateShaderArgs([]uint32{4, 2}).Return(nil),
		commandBuffer.EXPECT().Draw(rhi.Draw{VertsPerInstance: 3, InstanceCount: 1}).Return(nil),
		commandBuffer.EXPECT().End().Return(nil),
	)

	list, err := dev.AllocateCommandList(rhi.QueueGraphics)
	require.NoError(t, err)

	state, err := dev.CommandListState(list)
	require.NoError(t, err)
	require.Equal(t, device.CommandListRecording, state)

	var commands rhi.RenderCommandList
	commands.Submit(rhi.SetPipeline{Pipeline: pipeline})
	commands.Submit(rhi.UpdateShaderArgs{Constants: []uint32{4, 2}})
	commands.Submit(rhi.Draw{VertsPerInstance: 3, InstanceCount: 1})

	require.NoError(t, dev.CompileCommandList(list, &commands))

	state, err = dev.CommandListState(list)
	require.NoError(t, err)
	require.Equal(t, device.CommandListCompiled, state)

	err = dev.CompileCommandList(list, &commands)
	require.ErrorIs(t, err, rhi.ErrAlreadyCompiled)
}

func TestCompileFailureMarksListFailed(t *testing.T) {
	ctrl, drv, dev := newMockDevice(t)

	commandBuffer := mocks.NewMockCommandBuffer(ctrl)
	drv.EXPECT().CreateCommandBuffer(rhi.QueueGraphics).Return(commandBuffer, nil)
	commandBuffer.EXPECT().Begin().Return(nil)

	list, err := dev.AllocateCommandList(rhi.QueueGraphics)
	require.NoError(t, err)

	var commands rhi.RenderCommandList
	commands.Submit(rhi.SetPipeline{Pipeline: rhi.Pipeline(12)})

	require.Error(t, dev.CompileCommandList(list, &commands))

	state, err := dev.CommandListState(list)
	require.NoError(t, err)
	require.Equal(t, device.CommandListFailed, state)

	_, err = dev.SubmitCommandLists([]rhi.CommandList{list}, rhi.QueueGraphics, rhi.NoSync, false)
	require.ErrorIs(t, err, rhi.ErrNotCompiled)

	require.NoError(t, dev.RecycleCommandList(list))
}

func TestCompileRejectsOutOfBoundsCopy(t *testing.T) {
	ctrl, drv, dev := newMockDevice(t)

	drv.EXPECT().CreateBuffer(gomock.Any()).Return(mocks.NewMockBuffer(ctrl), nil).Times(2)
	src, err := dev.CreateBuffer(rhi.BufferDesc{Label: "src", Size: 16, Memory: rhi.MemoryUpload})
	require.NoError(t, err)
	dst, err := dev.CreateBuffer(rhi.BufferDesc{Label: "dst", Size: 8})
	require.NoError(t, err)

	commandBuffer := mocks.NewMockCommandBuffer(ctrl)
	drv.EXPECT().CreateCommandBuffer(rhi.QueueCopy).Return(commandBuffer, nil)
	commandBuffer.EXPECT().Begin().Return(nil)

	list, err := dev.AllocateCommandList(rhi.QueueCopy)
	require.NoError(t, err)

	var commands rhi.RenderCommandList
	commands.Submit(rhi.CopyBuffer{Src: src, Dst: dst, Size: 16})

	err = dev.CompileCommandList(list, &commands)
	require.ErrorIs(t, err, rhi.ErrOutOfBounds)
}

func TestBarriersAreResolved(t *testing.T) {
	ctrl, drv, dev := newMockDevice(t)

	nativeBuffer := mocks.NewMockBuffer(ctrl)
	drv.EXPECT().CreateBuffer(gomock.Any()).Return(nativeBuffer, nil)
	buffer, err := dev.CreateBuffer(rhi.BufferDesc{Label: "vertices", Size: 64})
	require.NoError(t, err)

	commandBuffer := mocks.NewMockCommandBuffer(ctrl)
	drv.EXPECT().CreateCommandBuffer(rhi.QueueGraphics).Return(commandBuffer, nil)

	gomock.InOrder(
		commandBuffer.EXPECT().Begin().Return(nil),
		commandBuffer.EXPECT().Barriers([]driver.Barrier{{
			Type:   rhi.BarrierTransition,
			Buffer: nativeBuffer,
			Before: rhi.StateCopyDest,
			After:  rhi.StateVertexAndConstantBuffer,
		}}).Return(nil),
		commandBuffer.EXPECT().End().Return(nil),
	)

	list, err := dev.AllocateCommandList(rhi.QueueGraphics)
	require.NoError(t, err)

	var commands rhi.RenderCommandList
	commands.Submit(rhi.Barrier{Barriers: []rhi.ResourceBarrier{
		rhi.TransitionBuffer(buffer, rhi.StateCopyDest, rhi.StateVertexAndConstantBuffer),
	}})
	require.NoError(t, dev.CompileCommandList(list, &commands))
}

func TestSubmitPreservesListOrder(t *testing.T) {
	ctrl, drv, dev := newMockDevice(t)

	first := mocks.NewMockCommandBuffer(ctrl)
	second := mocks.NewMockCommandBuffer(ctrl)
	queue := mocks.NewMockQueue(ctrl)
	fence := mocks.NewMockFence(ctrl)

	gomock.InOrder(
		drv.EXPECT().CreateCommandBuffer(rhi.QueueGraphics).Return(first, nil),
		drv.EXPECT().CreateCommandBuffer(rhi.QueueGraphics).Return(second, nil),
	)
	for _, buffer := range []*mocks.MockCommandBuffer{first, second} {
		buffer.EXPECT().Begin().Return(nil)
		buffer.EXPECT().End().Return(nil)
	}

	drv.EXPECT().Queue(rhi.QueueGraphics).Return(queue, nil)
	drv.EXPECT().CreateFence().Return(fence, nil)
	queue.EXPECT().Execute(batchMatcher{buffers: []driver.CommandBuffer{second, first}, signal: fence}).Return(uint64(7), nil)

	firstList, err := dev.AllocateCommandList(rhi.QueueGraphics)
	require.NoError(t, err)
	secondList, err := dev.AllocateCommandList(rhi.QueueGraphics)
	require.NoError(t, err)

	var empty rhi.RenderCommandList
	require.NoError(t, dev.CompileCommandList(firstList, &empty))
	require.NoError(t, dev.CompileCommandList(secondList, &empty))

	receipt, err := dev.SubmitCommandLists([]rhi.CommandList{secondList, firstList}, rhi.QueueGraphics, rhi.NoSync, true)
	require.NoError(t, err)
	require.NotEqual(t, rhi.NoSync, receipt)

	queue.EXPECT().CompletedSerial().Return(uint64(6)).AnyTimes()
	state, err := dev.CommandListState(firstList)
	require.NoError(t, err)
	require.Equal(t, device.CommandListSubmitted, state)

	err = dev.RecycleCommandList(firstList)
	require.ErrorIs(t, err, rhi.ErrStillExecuting)

	fence.EXPECT().Signaled().Return(false)
	done, err := dev.SyncCompleted(receipt)
	require.NoError(t, err)
	require.False(t, done)
}

func TestRecycleReusesCommandBuffers(t *testing.T) {
	ctrl, drv, dev := newMockDevice(t)

	commandBuffer := mocks.NewMockCommandBuffer(ctrl)
	queue := mocks.NewMockQueue(ctrl)

	drv.EXPECT().CreateCommandBuffer(rhi.QueueCompute).Return(commandBuffer, nil).Times(1)
	commandBuffer.EXPECT().Begin().Return(nil).Times(2)
	commandBuffer.EXPECT().End().Return(nil)
	drv.EXPECT().Queue(rhi.QueueCompute).Return(queue, nil)
	queue.EXPECT().Execute(batchMatcher{buffers: []driver.CommandBuffer{commandBuffer}}).Return(uint64(3), nil)
	queue.EXPECT().CompletedSerial().Return(uint64(3)).AnyTimes()

	list, err := dev.AllocateCommandList(rhi.QueueCompute)
	require.NoError(t, err)

	var empty rhi.RenderCommandList
	require.NoError(t, dev.CompileCommandList(list, &empty))

	receipt, err := dev.SubmitCommandLists([]rhi.CommandList{list}, rhi.QueueCompute, rhi.NoSync, false)
	require.NoError(t, err)
	require.Equal(t, rhi.NoSync, receipt)

	state, err := dev.CommandListState(list)
	require.NoError(t, err)
	require.Equal(t, device.CommandListRetired, state)

	require.NoError(t, dev.RecycleCommandList(list))
	require.Equal(t, 1, dev.Statistics().PooledCommandBuffers)

	_, err = dev.CommandListState(list)
	require.Error(t, err)

	reused, err := dev.AllocateCommandList(rhi.QueueCompute)
	require.NoError(t, err)
	require.NotEqual(t, list, reused)
	require.Equal(t, 0, dev.Statistics().PooledCommandBuffers)
}

func TestSubmitValidation(t *testing.T) {
	ctrl, drv, dev := newMockDevice(t)

	graphicsBuffer := mocks.NewMockCommandBuffer(ctrl)
	copyBuffer := mocks.NewMockCommandBuffer(ctrl)
	drv.EXPECT().CreateCommandBuffer(rhi.QueueGraphics).Return(graphicsBuffer, nil)
	drv.EXPECT().CreateCommandBuffer(rhi.QueueCopy).Return(copyBuffer, nil)
	graphicsBuffer.EXPECT().Begin().Return(nil)
	graphicsBuffer.EXPECT().End().Return(nil)
	copyBuffer.EXPECT().Begin().Return(nil)
	drv.EXPECT().Queue(gomock.Any()).Return(mocks.NewMockQueue(ctrl), nil).AnyTimes()

	graphicsList, err := dev.AllocateCommandList(rhi.QueueGraphics)
	require.NoError(t, err)
	copyList, err := dev.AllocateCommandList(rhi.QueueCopy)
	require.NoError(t, err)

	var empty rhi.RenderCommandList
	require.NoError(t, dev.CompileCommandList(graphicsList, &empty))

	_, err = dev.SubmitCommandLists([]rhi.CommandList{copyList}, rhi.QueueCopy, rhi.NoSync, false)
	require.ErrorIs(t, err, rhi.ErrNotCompiled)

	_, err = dev.SubmitCommandLists([]rhi.CommandList{graphicsList}, rhi.QueueCompute, rhi.NoSync, false)
	require.ErrorIs(t, err, rhi.ErrQueueMismatch)

	_, err = dev.SubmitCommandLists([]rhi.CommandList{graphicsList, graphicsList}, rhi.QueueGraphics, rhi.NoSync, false)
	require.Error(t, err)

	_, err = dev.SubmitCommandLists([]rhi.CommandList{graphicsList}, rhi.QueueGraphics, rhi.SyncReceipt(99), false)
	require.Error(t, err)

	_, err = dev.AllocateCommandList(rhi.QueueType(9))
	require.Error(t, err)
}
