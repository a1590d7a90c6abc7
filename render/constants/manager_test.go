package constants_test

import (
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/device"
	"github.com/vkngwrapper/rhi/garbage"
	"github.com/vkngwrapper/rhi/handle"
	"github.com/vkngwrapper/rhi/memutils"
	"github.com/vkngwrapper/rhi/render/constants"
	"github.com/vkngwrapper/rhi/soft"
)

type fixture struct {
	driver  *soft.Driver
	device  *device.Device
	bin     *garbage.Bin
	manager *constants.Manager
}

func newFixture(t *testing.T, options constants.Options) *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	drv, err := soft.New(logger, soft.Options{ManualExecution: true})
	require.NoError(t, err)

	dev, err := device.New(logger, drv, device.CreateOptions{})
	require.NoError(t, err)

	bin, err := garbage.New(logger, 2)
	require.NoError(t, err)

	manager, err := constants.New(logger, dev, bin, options)
	require.NoError(t, err)

	return &fixture{driver: drv, device: dev, bin: bin, manager: manager}
}

func (f *fixture) close(t *testing.T) {
	f.driver.StepAll()
	f.bin.Flush()
	require.NoError(t, f.manager.Close(context.Background()))
	require.NoError(t, f.device.Destroy())
}

func TestTransientConstantReachesTheDraw(t *testing.T) {
	f := newFixture(t, constants.Options{TransientSize: 1024, PersistentSize: 4096})
	ctx := context.Background()

	require.NoError(t, f.bin.BeginFrame(ctx))

	mem, index, err := f.manager.AllocateTransient(64)
	require.NoError(t, err)
	require.Len(t, mem, 64)
	for i, value := range []float32{0.25, 0.5, 0.75, 1} {
		binary.LittleEndian.PutUint32(mem[i*4:], math.Float32bits(value))
	}

	list, err := f.device.AllocateCommandList(rhi.QueueGraphics)
	require.NoError(t, err)

	var commands rhi.RenderCommandList
	commands.Submit(rhi.UpdateShaderArgs{Constants: []uint32{index}})
	commands.Submit(rhi.Draw{VertsPerInstance: 3, InstanceCount: 1})
	require.NoError(t, f.device.CompileCommandList(list, &commands))

	receipt, err := f.device.SubmitCommandLists([]rhi.CommandList{list}, rhi.QueueGraphics, rhi.NoSync, true)
	require.NoError(t, err)
	f.bin.EndFrame(f.device.Retirement(receipt))

	require.Equal(t, 1, f.driver.StepAll())

	events := f.driver.Executed()
	require.Len(t, events, 2)
	require.Equal(t, rhi.CommandUpdateShaderArgs, events[0].Command)
	require.Equal(t, []uint32{index}, events[0].Constants)
	require.Equal(t, rhi.CommandDraw, events[1].Command)

	contents, err := f.driver.ReadDescriptor(events[0].Constants[0])
	require.NoError(t, err)
	require.Len(t, contents, 256)
	require.Equal(t, mem, contents[:64])

	// Fill the rest of the ring during the next frame
	require.NoError(t, f.bin.BeginFrame(ctx))
	_, secondIndex, err := f.manager.AllocateTransient(768)
	require.NoError(t, err)
	require.NotEqual(t, index, secondIndex)

	_, _, err = f.manager.AllocateTransient(1)
	require.ErrorIs(t, err, memutils.ErrOutOfSpace)
	f.bin.EndFrame(nil)

	// Reusing the first frame slot releases the first allocation
	require.NoError(t, f.bin.BeginFrame(ctx))
	_, reusedIndex, err := f.manager.AllocateTransient(200)
	require.NoError(t, err)
	require.Equal(t, index, reusedIndex)
	f.bin.EndFrame(nil)

	require.NoError(t, f.device.RecycleCommandList(list))
	f.close(t)
}

func TestTransientValidation(t *testing.T) {
	f := newFixture(t, constants.Options{})

	_, _, err := f.manager.AllocateTransient(0)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)

	_, _, err = f.manager.AllocateTransient(constants.DefaultMaxConstantSize + 1)
	require.ErrorIs(t, err, constants.ErrTooLarge)

	f.close(t)
}

func TestBinBudgetBlocksUntilGPURetires(t *testing.T) {
	f := newFixture(t, constants.Options{TransientSize: 1024, PersistentSize: 4096})
	ctx := context.Background()

	for frame := 0; frame < 2; frame++ {
		require.NoError(t, f.bin.BeginFrame(ctx))

		_, index, err := f.manager.AllocateTransient(64)
		require.NoError(t, err)

		list, err := f.device.AllocateCommandList(rhi.QueueGraphics)
		require.NoError(t, err)
		var commands rhi.RenderCommandList
		commands.Submit(rhi.UpdateShaderArgs{Constants: []uint32{index}})
		require.NoError(t, f.device.CompileCommandList(list, &commands))

		receipt, err := f.device.SubmitCommandLists([]rhi.CommandList{list}, rhi.QueueGraphics, rhi.NoSync, true)
		require.NoError(t, err)
		f.bin.PushDeferredDeletion(func() { _ = f.device.RecycleCommandList(list) })
		f.bin.EndFrame(f.device.Retirement(receipt))
	}

	err := f.bin.BeginFrame(ctx)
	require.ErrorIs(t, err, garbage.ErrInFlightBudgetExceeded)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	err = f.bin.WaitFrame(waitCtx)
	cancel()
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.Equal(t, 2, f.driver.StepAll())
	require.NoError(t, f.bin.BeginFrame(ctx))
	f.bin.EndFrame(nil)

	f.close(t)
}

func TestPersistentVersionsNeverClearUnconfirmedStaging(t *testing.T) {
	f := newFixture(t, constants.Options{MaxVersions: 2, TransientSize: 1024, PersistentSize: 4096, StagingSize: 1024})
	ctx := context.Background()

	first := make([]byte, 64)
	second := make([]byte, 64)
	third := make([]byte, 64)
	for i := range first {
		first[i] = 1
		second[i] = 2
		third[i] = 3
	}

	constant, err := f.manager.AllocatePersistent(64, first, false)
	require.NoError(t, err)
	require.Equal(t, 1, f.manager.PendingUploads())
	require.ErrorIs(t, f.manager.Upload(constant, second), constants.ErrUploadPending)

	receipt, err := f.manager.ExecuteCopies(ctx, rhi.NoSync, false, rhi.QueueCopy)
	require.NoError(t, err)
	require.Equal(t, rhi.NoSync, receipt)
	require.Equal(t, 1, f.manager.CurrentVersion())
	require.Equal(t, 0, f.manager.PendingUploads())

	require.NoError(t, f.manager.Upload(constant, second))
	_, err = f.manager.ExecuteCopies(ctx, rhi.NoSync, false, rhi.QueueCopy)
	require.NoError(t, err)
	require.Equal(t, 0, f.manager.CurrentVersion())

	require.NoError(t, f.manager.Upload(constant, third))

	// Version 0's copies have not run, so its staging must not be touched
	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	_, err = f.manager.ExecuteCopies(waitCtx, rhi.NoSync, false, rhi.QueueCopy)
	cancel()
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 0, f.manager.CurrentVersion())
	require.Equal(t, 1, f.manager.PendingUploads())
	require.Equal(t, 64, f.manager.Statistics().Versions[0].Staging.AllocationBytes)

	require.Equal(t, 2, f.driver.StepAll())

	_, err = f.manager.ExecuteCopies(ctx, rhi.NoSync, false, rhi.QueueCopy)
	require.NoError(t, err)
	require.Equal(t, 1, f.manager.CurrentVersion())
	require.Equal(t, 1, f.driver.StepAll())

	index, err := f.manager.GlobalView(constant)
	require.NoError(t, err)
	contents, err := f.driver.ReadDescriptor(index)
	require.NoError(t, err)
	require.Equal(t, third, contents[:64])

	require.NoError(t, f.manager.FreePersistent(constant))
	f.close(t)
}

func TestExecuteCopiesSync(t *testing.T) {
	f := newFixture(t, constants.Options{TransientSize: 1024, PersistentSize: 4096})
	ctx := context.Background()

	receipt, err := f.manager.ExecuteCopies(ctx, rhi.NoSync, true, rhi.QueueCopy)
	require.NoError(t, err)
	require.Equal(t, rhi.NoSync, receipt)
	require.Equal(t, 0, f.manager.CurrentVersion())

	constant, err := f.manager.AllocatePersistent(100, []byte{7, 7, 7}, true)
	require.NoError(t, err)

	receipt, err = f.manager.ExecuteCopies(ctx, rhi.NoSync, true, rhi.QueueCopy)
	require.NoError(t, err)
	require.NotEqual(t, rhi.NoSync, receipt)

	done, err := f.device.SyncCompleted(receipt)
	require.NoError(t, err)
	require.False(t, done)

	require.Equal(t, 2, f.driver.StepAll())
	require.NoError(t, f.device.WaitForGPU(ctx, receipt))

	index, err := f.manager.GlobalView(constant)
	require.NoError(t, err)
	contents, err := f.driver.ReadDescriptor(index)
	require.NoError(t, err)
	require.Equal(t, []byte{7, 7, 7}, contents[:3])

	require.ErrorIs(t, f.manager.Upload(constant, []byte{1}), constants.ErrImmutable)

	require.NoError(t, f.manager.FreePersistent(constant))
	f.close(t)
}

func TestPersistentValidation(t *testing.T) {
	f := newFixture(t, constants.Options{TransientSize: 1024, PersistentSize: 4096, StagingSize: 256})

	_, err := f.manager.AllocatePersistent(0, nil, false)
	require.ErrorIs(t, err, memutils.ErrInvalidSize)
	_, err = f.manager.AllocatePersistent(4, make([]byte, 8), false)
	require.ErrorIs(t, err, constants.ErrTooLarge)
	_, err = f.manager.AllocatePersistent(2048, nil, false)
	require.ErrorIs(t, err, constants.ErrTooLarge)

	constant, err := f.manager.AllocatePersistent(16, nil, false)
	require.NoError(t, err)
	require.Equal(t, 0, f.manager.PendingUploads())

	require.ErrorIs(t, f.manager.Upload(constant, nil), constants.ErrEmptyUpload)
	require.ErrorIs(t, f.manager.Upload(constant, make([]byte, 512)), constants.ErrTooLarge)

	// Staging for one version holds 256 bytes
	big, err := f.manager.AllocatePersistent(256, make([]byte, 256), false)
	require.NoError(t, err)
	err = f.manager.Upload(constant, []byte{1})
	require.ErrorIs(t, err, memutils.ErrOutOfSpace)

	require.NoError(t, f.manager.FreePersistent(big))
	require.NoError(t, f.manager.Upload(constant, []byte{1}))

	require.NoError(t, f.manager.FreePersistent(constant))
	_, err = f.manager.GlobalView(constant)
	require.ErrorIs(t, err, handle.ErrAlreadyFreed)
	require.ErrorIs(t, f.manager.FreePersistent(constant), handle.ErrAlreadyFreed)

	// Both uploads were dropped with their constants
	receipt, err := f.manager.ExecuteCopies(context.Background(), rhi.NoSync, true, rhi.QueueCopy)
	require.NoError(t, err)
	require.Equal(t, rhi.NoSync, receipt)
	require.Equal(t, 0, f.manager.CurrentVersion())

	f.close(t)
}

func TestStatisticsJson(t *testing.T) {
	f := newFixture(t, constants.Options{MaxVersions: 2, TransientSize: 1024, PersistentSize: 4096})

	constant, err := f.manager.AllocatePersistent(300, nil, false)
	require.NoError(t, err)

	stats := f.manager.Statistics()
	require.Equal(t, 1, stats.LiveConstants)
	require.Len(t, stats.Versions, 2)
	require.Equal(t, 512, stats.Versions[0].Persistent.AllocationBytes)
	require.Equal(t, 0, stats.Versions[1].Persistent.AllocationBytes)

	json := f.manager.BuildStatsString()
	require.Contains(t, json, `"LiveConstants":1`)
	require.Contains(t, json, `"Versions":[`)

	require.NoError(t, f.manager.FreePersistent(constant))
	f.close(t)
}
