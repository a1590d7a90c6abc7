package rhi

import (
	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
)

// BufferDesc describes a linear GPU allocation
type BufferDesc struct {
	Label  string
	Size   int
	Usage  gputypes.BufferUsage
	Memory MemoryType
	// InitialState is the state the buffer is in after creation
	InitialState ResourceState
}

func (d BufferDesc) Validate() error {
	if d.Size <= 0 {
		return errors.Wrapf(ErrInvalidDescriptor, "buffer %q has size %d", d.Label, d.Size)
	}
	return nil
}

// TextureDesc describes an image
type TextureDesc struct {
	Label        string
	Size         gputypes.Extent3D
	Dimension    gputypes.TextureDimension
	Format       gputypes.TextureFormat
	MipLevels    uint32
	Usage        gputypes.TextureUsage
	InitialState ResourceState
}

func (d TextureDesc) Validate() error {
	if d.Size.Width == 0 || d.Size.Height == 0 || d.Size.DepthOrArrayLayers == 0 {
		return errors.Wrapf(ErrInvalidDescriptor, "texture %q has extent %dx%dx%d", d.Label, d.Size.Width, d.Size.Height, d.Size.DepthOrArrayLayers)
	}
	if d.MipLevels == 0 {
		return errors.Wrapf(ErrInvalidDescriptor, "texture %q has no mip levels", d.Label)
	}
	if d.Format == gputypes.TextureFormatUndefined {
		return errors.Wrapf(ErrInvalidDescriptor, "texture %q has no format", d.Label)
	}
	return nil
}

// BufferViewDesc selects a byte range of a buffer. For structured views Stride is the element size and
// Size must be a multiple of it; a Stride of 0 makes a raw view.
type BufferViewDesc struct {
	Type   ViewType
	Offset int
	Size   int
	Stride int
}

// ElementCount is the number of Stride-sized elements the view covers, or 1 for raw views
func (d BufferViewDesc) ElementCount() int {
	if d.Stride == 0 {
		return 1
	}
	return d.Size / d.Stride
}

// ValidateFor checks that the view fits inside a buffer of bufferSize bytes
func (d BufferViewDesc) ValidateFor(bufferSize int) error {
	if d.Offset < 0 || d.Size <= 0 || d.Offset+d.Size > bufferSize {
		return errors.Wrapf(ErrInvalidDescriptor, "view of %d bytes at offset %d does not fit a %d byte buffer", d.Size, d.Offset, bufferSize)
	}
	if d.Stride < 0 || (d.Stride > 0 && d.Size%d.Stride != 0) {
		return errors.Wrapf(ErrInvalidDescriptor, "view of %d bytes is not a multiple of its %d byte stride", d.Size, d.Stride)
	}
	if d.Type == ViewRenderTarget || d.Type == ViewDepthStencil {
		return errors.Wrapf(ErrInvalidDescriptor, "buffers cannot be viewed as %s", d.Type)
	}
	return nil
}

// TextureViewDesc selects a mip range of a texture. A MipCount of 0 covers every mip from BaseMip on.
type TextureViewDesc struct {
	Type      ViewType
	Format    gputypes.TextureFormat
	Dimension gputypes.TextureViewDimension
	BaseMip   uint32
	MipCount  uint32
}

func (d TextureViewDesc) ValidateFor(texture TextureDesc) error {
	if d.BaseMip >= texture.MipLevels || d.BaseMip+d.MipCount > texture.MipLevels {
		return errors.Wrapf(ErrInvalidDescriptor, "view of mips %d+%d does not fit texture %q with %d mips", d.BaseMip, d.MipCount, texture.Label, texture.MipLevels)
	}
	if d.Type == ViewConstantBuffer {
		return errors.Wrapf(ErrInvalidDescriptor, "textures cannot be viewed as %s", d.Type)
	}
	return nil
}

// GraphicsPipelineDesc holds compiled shader bytecode and the fixed-function state a draw needs
type GraphicsPipelineDesc struct {
	Label               string
	VertexShader        []byte
	PixelShader         []byte
	Topology            gputypes.PrimitiveTopology
	CullMode            gputypes.CullMode
	RenderTargetFormats []gputypes.TextureFormat
	DepthFormat         gputypes.TextureFormat
	DepthCompare        gputypes.CompareFunction
}

func (d GraphicsPipelineDesc) Validate() error {
	if len(d.VertexShader) == 0 {
		return errors.Wrapf(ErrInvalidDescriptor, "pipeline %q has no vertex shader", d.Label)
	}
	return nil
}

// RenderTargetAttachment binds a render target view to a render pass
type RenderTargetAttachment struct {
	View       TextureView
	Load       gputypes.LoadOp
	Store      gputypes.StoreOp
	ClearColor gputypes.Color
}

// DepthStencilAttachment binds a depth stencil view to a render pass
type DepthStencilAttachment struct {
	View         TextureView
	DepthLoad    gputypes.LoadOp
	DepthStore   gputypes.StoreOp
	ClearDepth   float32
	StencilLoad  gputypes.LoadOp
	StencilStore gputypes.StoreOp
	ClearStencil uint8
}

type RenderPassDesc struct {
	Label         string
	RenderTargets []RenderTargetAttachment
	DepthStencil  *DepthStencilAttachment
	Flags         RenderPassFlags
}

func (d RenderPassDesc) Validate() error {
	if len(d.RenderTargets) == 0 && d.DepthStencil == nil {
		return errors.Wrapf(ErrInvalidDescriptor, "render pass %q has no attachments", d.Label)
	}
	return nil
}

// RenderPassBuilder assembles a RenderPassDesc
type RenderPassBuilder struct {
	desc RenderPassDesc
}

func NewRenderPassBuilder(label string) *RenderPassBuilder {
	return &RenderPassBuilder{desc: RenderPassDesc{Label: label}}
}

// AddRenderTarget appends a color attachment that is loaded and stored as specified
func (b *RenderPassBuilder) AddRenderTarget(view TextureView, load gputypes.LoadOp, store gputypes.StoreOp) *RenderPassBuilder {
	b.desc.RenderTargets = append(b.desc.RenderTargets, RenderTargetAttachment{
		View:  view,
		Load:  load,
		Store: store,
	})
	return b
}

// AddClearedRenderTarget appends a color attachment that is cleared to color and stored
func (b *RenderPassBuilder) AddClearedRenderTarget(view TextureView, color gputypes.Color) *RenderPassBuilder {
	b.desc.RenderTargets = append(b.desc.RenderTargets, RenderTargetAttachment{
		View:       view,
		Load:       gputypes.LoadOpClear,
		Store:      gputypes.StoreOpStore,
		ClearColor: color,
	})
	return b
}

// SetDepthStencil attaches a depth buffer that is cleared to depth and stored, with the stencil ignored
func (b *RenderPassBuilder) SetDepthStencil(view TextureView, depth float32) *RenderPassBuilder {
	b.desc.DepthStencil = &DepthStencilAttachment{
		View:         view,
		DepthLoad:    gputypes.LoadOpClear,
		DepthStore:   gputypes.StoreOpStore,
		ClearDepth:   depth,
		StencilLoad:  gputypes.LoadOpLoad,
		StencilStore: gputypes.StoreOpDiscard,
	}
	return b
}

func (b *RenderPassBuilder) AllowUnorderedAccessWrites() *RenderPassBuilder {
	b.desc.Flags |= RenderPassAllowUnorderedAccessWrites
	return b
}

func (b *RenderPassBuilder) Build() RenderPassDesc {
	desc := b.desc
	desc.RenderTargets = append([]RenderTargetAttachment(nil), b.desc.RenderTargets...)
	if b.desc.DepthStencil != nil {
		depth := *b.desc.DepthStencil
		desc.DepthStencil = &depth
	}
	return desc
}
