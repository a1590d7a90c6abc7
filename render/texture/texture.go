// Package texture loads mipped 2D images into device-local textures and hands out bindless descriptors
// for them. Textures are keyed by name, so loading the same name twice returns the first texture.
package texture

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/gogpu/gputypes"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/device"
	"github.com/vkngwrapper/rhi/garbage"
	"github.com/vkngwrapper/rhi/handle"
	"github.com/vkngwrapper/rhi/memory"
	"github.com/vkngwrapper/rhi/memutils"
)

const (
	DefaultStagingSize int = 16 << 20

	// RowPitchAlignment is the alignment of each row of a mip in the staging buffer
	RowPitchAlignment int = 256
	// PlacementAlignment is the alignment of the start of each mip in the staging buffer
	PlacementAlignment int = 512

	bytesPerPixel = 4
)

// Format is the format of every texture the manager loads
var Format = gputypes.TextureFormatRGBA8Unorm

var ErrInvalidImage = errors.New("invalid image data")

// LoadedTexture names a texture owned by a Manager
type LoadedTexture handle.Handle

func (t LoadedTexture) String() string {
	return "LoadedTexture(" + handle.Handle(t).String() + ")"
}

// MipData is one tightly packed RGBA8 mip level
type MipData struct {
	Width  uint32
	Height uint32
	Data   []byte
}

// RowPitch is the staged distance between rows of a mip that is width pixels wide
func RowPitch(width uint32) int {
	return memutils.AlignUp(int(width)*bytesPerPixel, RowPitchAlignment)
}

// StagingSize is the amount of staging space a load of mips needs in the worst case
func StagingSize(mips []MipData) int {
	var size int
	for _, mip := range mips {
		size += RowPitch(mip.Width)*int(mip.Height) + PlacementAlignment - 1
	}
	return size
}

type Options struct {
	StagingSize int
}

type storage struct {
	name    string
	texture rhi.Texture
	view    rhi.TextureView
}

// Manager owns the textures it loads. It belongs to a single goroutine.
type Manager struct {
	logger *slog.Logger
	device *device.Device
	bin    *garbage.Bin

	stagingBuffer rhi.Buffer
	staging       *memory.Bump

	inflight     rhi.SyncReceipt
	inflightList rhi.CommandList

	textures handle.Table[LoadedTexture, storage]
	names    *swiss.Map[string, LoadedTexture]
}

func New(logger *slog.Logger, dev *device.Device, bin *garbage.Bin, options Options) (*Manager, error) {
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}
	if dev == nil || bin == nil {
		return nil, errors.New("device and garbage bin must not be nil")
	}
	if options.StagingSize == 0 {
		options.StagingSize = DefaultStagingSize
	}
	if options.StagingSize < PlacementAlignment {
		return nil, errors.Newf("staging size %d is smaller than one %d byte placement", options.StagingSize, PlacementAlignment)
	}

	m := &Manager{
		logger: logger,
		device: dev,
		bin:    bin,
		names:  swiss.NewMap[string, LoadedTexture](16),
	}

	var err error
	m.stagingBuffer, err = dev.CreateBuffer(rhi.BufferDesc{
		Label:  "texture staging",
		Size:   options.StagingSize,
		Usage:  gputypes.BufferUsageCopySrc,
		Memory: rhi.MemoryUpload,
	})
	if err != nil {
		return nil, err
	}

	mapped, err := dev.Map(m.stagingBuffer)
	if err == nil {
		m.staging, err = memory.NewBump(options.StagingSize, mapped)
	}
	if err != nil {
		m.release()
		return nil, err
	}

	return m, nil
}

func validate(mips []MipData) error {
	if len(mips) == 0 {
		return errors.Wrap(ErrInvalidImage, "no mips")
	}
	if mips[0].Width == 0 || mips[0].Height == 0 {
		return errors.Wrapf(ErrInvalidImage, "base mip is %dx%d", mips[0].Width, mips[0].Height)
	}

	for level, mip := range mips {
		width, height := max(1, mips[0].Width>>level), max(1, mips[0].Height>>level)
		if mip.Width != width || mip.Height != height {
			return errors.Wrapf(ErrInvalidImage, "mip %d is %dx%d but should be %dx%d", level, mip.Width, mip.Height, width, height)
		}
		size := int(width) * int(height) * bytesPerPixel
		if len(mip.Data) != size {
			return errors.Wrapf(ErrInvalidImage, "mip %d has %d bytes but a %dx%d RGBA8 image has %d", level, len(mip.Data), width, height, size)
		}
		if width == 1 && height == 1 && level < len(mips)-1 {
			return errors.Wrapf(ErrInvalidImage, "%d mips given but the chain ends at mip %d", len(mips), level)
		}
	}

	return nil
}

// Allocate loads an image under name and returns it with the global descriptor index of its view. The
// call blocks until the copy has finished. If name is already loaded, the existing texture is returned and
// mips is ignored.
func (m *Manager) Allocate(ctx context.Context, name string, mips []MipData) (LoadedTexture, uint32, error) {
	if existing, ok := m.names.Get(name); ok {
		descriptor, err := m.Descriptor(existing)
		return existing, descriptor, err
	}

	err := validate(mips)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "texture %q", name)
	}

	if needed := StagingSize(mips); needed > len(m.staging.Memory()) {
		return 0, 0, errors.Wrapf(memutils.ErrOutOfSpace, "texture %q needs up to %d bytes of staging but the manager has %d", name, needed, len(m.staging.Memory()))
	}

	err = m.retireInflight(ctx)
	if err != nil {
		return 0, 0, err
	}

	texture, err := m.device.CreateTexture(rhi.TextureDesc{
		Label:        name,
		Size:         gputypes.Extent3D{Width: mips[0].Width, Height: mips[0].Height, DepthOrArrayLayers: 1},
		Dimension:    gputypes.TextureDimension2D,
		Format:       Format,
		MipLevels:    uint32(len(mips)),
		Usage:        gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
		InitialState: rhi.StateCopyDest,
	})
	if err != nil {
		return 0, 0, err
	}

	err = m.upload(ctx, texture, mips)
	if err != nil {
		if m.inflight != rhi.NoSync {
			// The copy may still be writing into the texture
			m.bin.PushDeferredDeletion(func() { _ = m.device.FreeTexture(texture) })
		} else {
			_ = m.device.FreeTexture(texture)
		}
		return 0, 0, errors.Wrapf(err, "texture %q", name)
	}

	view, err := m.device.CreateTextureView(texture, rhi.TextureViewDesc{
		Type:      rhi.ViewShaderResource,
		Format:    Format,
		Dimension: gputypes.TextureViewDimension2D,
		MipCount:  uint32(len(mips)),
	})
	if err != nil {
		_ = m.device.FreeTexture(texture)
		return 0, 0, err
	}

	h := m.textures.Insert(storage{name: name, texture: texture, view: view})
	m.names.Put(name, h)

	descriptor, err := m.device.GlobalTextureDescriptor(view)
	if err != nil {
		return 0, 0, err
	}

	m.logger.LogAttrs(ctx, slog.LevelDebug, "Loaded texture",
		slog.String("name", name),
		slog.String("handle", h.String()),
		slog.Int("width", int(mips[0].Width)),
		slog.Int("height", int(mips[0].Height)),
		slog.Int("mips", len(mips)),
		slog.Int("descriptor", int(descriptor)),
	)

	return h, descriptor, nil
}

func (m *Manager) upload(ctx context.Context, texture rhi.Texture, mips []MipData) error {
	var commands rhi.RenderCommandList

	for level, mip := range mips {
		pitch := RowPitch(mip.Width)
		rowBytes := int(mip.Width) * bytesPerPixel

		mem, offset, err := m.staging.Allocate(pitch*int(mip.Height), PlacementAlignment)
		if err != nil {
			m.staging.Clear()
			return err
		}

		for row := 0; row < int(mip.Height); row++ {
			copy(mem[row*pitch:row*pitch+rowBytes], mip.Data[row*rowBytes:(row+1)*rowBytes])
		}

		commands.Submit(rhi.CopyBufferToImage{
			Src:            m.stagingBuffer,
			SrcOffset:      offset,
			SrcRowPitch:    uint32(pitch),
			Extent:         gputypes.Extent3D{Width: mip.Width, Height: mip.Height, DepthOrArrayLayers: 1},
			Format:         Format,
			Dst:            texture,
			DstSubresource: uint32(level),
		})
	}

	commands.Submit(rhi.Barrier{Barriers: []rhi.ResourceBarrier{
		rhi.TransitionTexture(texture, rhi.StateCopyDest, rhi.StateShaderResource, rhi.AllSubresources),
	}})

	list, err := m.device.AllocateCommandList(rhi.QueueCopy)
	if err != nil {
		m.staging.Clear()
		return err
	}

	err = m.device.CompileCommandList(list, &commands)
	if err == nil {
		m.inflight, err = m.device.SubmitCommandLists([]rhi.CommandList{list}, rhi.QueueCopy, rhi.NoSync, true)
	}
	if err != nil {
		_ = m.device.RecycleCommandList(list)
		m.staging.Clear()
		return err
	}
	m.inflightList = list

	return m.retireInflight(ctx)
}

func (m *Manager) retireInflight(ctx context.Context) error {
	if m.inflight == rhi.NoSync {
		return nil
	}

	err := m.device.WaitForGPU(ctx, m.inflight)
	if err != nil {
		return errors.Wrap(err, "waiting for texture copies")
	}
	m.inflight = rhi.NoSync

	m.staging.Clear()

	err = m.device.RecycleCommandList(m.inflightList)
	m.inflightList = 0
	return err
}

// Lookup returns the texture loaded under name
func (m *Manager) Lookup(name string) (LoadedTexture, bool) {
	return m.names.Get(name)
}

// Descriptor returns the global descriptor index of a texture's shader resource view
func (m *Manager) Descriptor(h LoadedTexture) (uint32, error) {
	record, err := m.textures.Get(h)
	if err != nil {
		return 0, err
	}

	return m.device.GlobalTextureDescriptor(record.view)
}

// Free forgets the texture's name immediately and destroys its view and texture once the garbage bin
// reaches the current frame slot again
func (m *Manager) Free(h LoadedTexture) error {
	record, err := m.textures.Remove(h)
	if err != nil {
		return err
	}
	m.names.Delete(record.name)

	m.bin.PushDeferredDeletion(func() {
		_ = m.device.FreeTextureView(record.view)
		_ = m.device.FreeTexture(record.texture)
	})
	return nil
}

func (m *Manager) Count() int { return m.textures.Len() }

// Close waits for an outstanding load, destroys every texture still loaded and releases the staging
// buffer
func (m *Manager) Close(ctx context.Context) error {
	err := m.retireInflight(ctx)
	if err != nil {
		return err
	}

	m.textures.Each(func(h LoadedTexture, record *storage) bool {
		m.logger.LogAttrs(ctx, slog.LevelError, "[UNRELEASED TEXTURE] texture was not freed before the manager was closed",
			slog.String("name", record.name),
			slog.String("handle", h.String()),
		)
		_ = m.device.FreeTextureView(record.view)
		_ = m.device.FreeTexture(record.texture)
		return true
	})
	m.textures = handle.Table[LoadedTexture, storage]{}
	m.names.Clear()

	m.release()
	return nil
}

func (m *Manager) release() {
	if m.stagingBuffer == 0 {
		return
	}

	_ = m.device.Unmap(m.stagingBuffer)
	_ = m.device.FreeBuffer(m.stagingBuffer)
	m.stagingBuffer = 0
}
