package texture_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/device"
	"github.com/vkngwrapper/rhi/garbage"
	"github.com/vkngwrapper/rhi/handle"
	"github.com/vkngwrapper/rhi/memutils"
	"github.com/vkngwrapper/rhi/render/texture"
	"github.com/vkngwrapper/rhi/soft"
)

type fixture struct {
	driver  *soft.Driver
	device  *device.Device
	bin     *garbage.Bin
	manager *texture.Manager
}

func newFixture(t *testing.T, options texture.Options) *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	drv, err := soft.New(logger, soft.Options{})
	require.NoError(t, err)

	dev, err := device.New(logger, drv, device.CreateOptions{})
	require.NoError(t, err)

	bin, err := garbage.New(logger, 2)
	require.NoError(t, err)

	manager, err := texture.New(logger, dev, bin, options)
	require.NoError(t, err)

	f := &fixture{driver: drv, device: dev, bin: bin, manager: manager}
	t.Cleanup(func() {
		f.bin.Flush()
		require.NoError(t, f.manager.Close(context.Background()))
		require.NoError(t, f.device.Destroy())
	})
	return f
}

func image(width, height uint32, seed byte) texture.MipData {
	data := make([]byte, width*height*4)
	for index := range data {
		data[index] = seed + byte(index)
	}
	return texture.MipData{Width: width, Height: height, Data: data}
}

func TestRowPitch(t *testing.T) {
	require.Equal(t, 256, texture.RowPitch(1))
	require.Equal(t, 256, texture.RowPitch(64))
	require.Equal(t, 512, texture.RowPitch(65))
	require.Equal(t, 256*4+511+256*2+511, texture.StagingSize([]texture.MipData{image(4, 4, 0), image(2, 2, 0)}))
}

func TestAllocateCopiesTheBaseMip(t *testing.T) {
	f := newFixture(t, texture.Options{StagingSize: 8192})
	ctx := context.Background()

	mips := []texture.MipData{image(4, 2, 1), image(2, 1, 100), image(1, 1, 200)}

	loaded, descriptor, err := f.manager.Allocate(ctx, "bricks", mips)
	require.NoError(t, err)
	require.Equal(t, 1, f.manager.Count())

	base, err := f.driver.ReadDescriptor(descriptor)
	require.NoError(t, err)
	require.Equal(t, mips[0].Data, base)

	lookedUp, ok := f.manager.Lookup("bricks")
	require.True(t, ok)
	require.Equal(t, loaded, lookedUp)

	again, againDescriptor, err := f.manager.Allocate(ctx, "bricks", nil)
	require.NoError(t, err)
	require.Equal(t, loaded, again)
	require.Equal(t, descriptor, againDescriptor)

	var copies int
	for _, event := range f.driver.Executed() {
		require.Equal(t, rhi.QueueCopy, event.Queue)
		if event.Command == rhi.CommandCopyBufferToImage {
			copies++
		}
	}
	require.Equal(t, 3, copies)
	require.NoError(t, f.driver.Err())

	require.NoError(t, f.manager.Free(loaded))
}

func TestAllocateValidation(t *testing.T) {
	f := newFixture(t, texture.Options{StagingSize: 2048})
	ctx := context.Background()

	_, _, err := f.manager.Allocate(ctx, "empty", nil)
	require.ErrorIs(t, err, texture.ErrInvalidImage)

	_, _, err = f.manager.Allocate(ctx, "wrong mip", []texture.MipData{image(4, 4, 0), image(3, 2, 0)})
	require.ErrorIs(t, err, texture.ErrInvalidImage)

	short := image(4, 4, 0)
	short.Data = short.Data[:60]
	_, _, err = f.manager.Allocate(ctx, "short", []texture.MipData{short})
	require.ErrorIs(t, err, texture.ErrInvalidImage)

	// 65536*65536*4 wraps to zero in 32 bits
	_, _, err = f.manager.Allocate(ctx, "wrapped", []texture.MipData{{Width: 65536, Height: 65536}})
	require.ErrorIs(t, err, texture.ErrInvalidImage)
	require.ErrorContains(t, err, "17179869184")

	_, _, err = f.manager.Allocate(ctx, "too many", []texture.MipData{image(1, 1, 0), image(1, 1, 0)})
	require.ErrorIs(t, err, texture.ErrInvalidImage)

	_, _, err = f.manager.Allocate(ctx, "huge", []texture.MipData{image(8, 8, 0)})
	require.ErrorIs(t, err, memutils.ErrOutOfSpace)

	_, ok := f.manager.Lookup("huge")
	require.False(t, ok)
	require.Equal(t, 0, f.manager.Count())
	require.Empty(t, f.driver.Executed())
}

func TestFreeIsDeferred(t *testing.T) {
	f := newFixture(t, texture.Options{StagingSize: 4096})
	ctx := context.Background()

	loaded, descriptor, err := f.manager.Allocate(ctx, "grass", []texture.MipData{image(2, 2, 7)})
	require.NoError(t, err)

	require.NoError(t, f.manager.Free(loaded))
	require.ErrorIs(t, f.manager.Free(loaded), handle.ErrAlreadyFreed)

	_, ok := f.manager.Lookup("grass")
	require.False(t, ok)

	_, err = f.manager.Descriptor(loaded)
	require.ErrorIs(t, err, handle.ErrAlreadyFreed)

	// The view stays readable until the bin runs the deletion
	_, err = f.driver.ReadDescriptor(descriptor)
	require.NoError(t, err)

	f.bin.Flush()

	_, err = f.driver.ReadDescriptor(descriptor)
	require.Error(t, err)

	reloaded, _, err := f.manager.Allocate(ctx, "grass", []texture.MipData{image(2, 2, 9)})
	require.NoError(t, err)
	require.NotEqual(t, loaded, reloaded)

	require.NoError(t, f.manager.Free(reloaded))
}
