// Package driver is the contract between the device front end and a backend. A backend owns native GPU
// objects; the device owns handles and lifetimes and only ever calls into the backend through these
// interfaces.
package driver

import (
	"context"

	"github.com/gogpu/gputypes"
	"github.com/vkngwrapper/rhi"
)

//go:generate mockgen -source driver.go -destination ./mocks/mocks.go -package mocks

// Buffer is a native buffer
type Buffer interface {
	Size() int
	// Map returns the buffer's memory for CPU access. Only host-visible buffers can be mapped. Mapping is
	// persistent: the returned slice stays valid until Unmap.
	Map() ([]byte, error)
	Unmap() error
	Destroy()
}

// Texture is a native texture
type Texture interface {
	Desc() rhi.TextureDesc
	Destroy()
}

// View is a native buffer or texture view. Bindless views occupy a slot in the global descriptor table.
type View interface {
	DescriptorIndex() (uint32, bool)
	Destroy()
}

type Pipeline interface {
	Destroy()
}

type RenderPass interface {
	Destroy()
}

// Fence is signaled by a queue when a batch completes
type Fence interface {
	Wait(ctx context.Context) error
	Signaled() bool
	// Reset returns a signaled fence to the unsignaled state so it can be reused
	Reset() error
	Destroy()
}

// Barrier is a ResourceBarrier with its handles resolved
type Barrier struct {
	Type        rhi.BarrierType
	Buffer      Buffer
	Texture     Texture
	AliasAfter  Texture
	Before      rhi.ResourceState
	After       rhi.ResourceState
	Subresource uint32
}

// RenderTargetAttachment is a rhi.RenderTargetAttachment with its view resolved
type RenderTargetAttachment struct {
	View       View
	Load       gputypes.LoadOp
	Store      gputypes.StoreOp
	ClearColor gputypes.Color
}

// DepthStencilAttachment is a rhi.DepthStencilAttachment with its view resolved
type DepthStencilAttachment struct {
	View         View
	DepthLoad    gputypes.LoadOp
	DepthStore   gputypes.StoreOp
	ClearDepth   float32
	StencilLoad  gputypes.LoadOp
	StencilStore gputypes.StoreOp
	ClearStencil uint8
}

// RenderPassDesc is a rhi.RenderPassDesc with its views resolved
type RenderPassDesc struct {
	Label         string
	RenderTargets []RenderTargetAttachment
	DepthStencil  *DepthStencilAttachment
	Flags         rhi.RenderPassFlags
}

// Translator records commands into a native command buffer, one method per command type. Handles have
// already been resolved to native objects by the device.
type Translator interface {
	Draw(cmd rhi.Draw) error
	DrawIndexed(indexBuffer Buffer, cmd rhi.DrawIndexed) error
	SetPipeline(pipeline Pipeline) error
	BeginRenderPass(renderPass RenderPass, cmd rhi.BeginRenderPass) error
	EndRenderPass() error
	Barriers(barriers []Barrier) error
	CopyBuffer(src Buffer, srcOffset int, dst Buffer, dstOffset int, size int) error
	CopyBufferToImage(src Buffer, dst Texture, cmd rhi.CopyBufferToImage) error
	UpdateShaderArgs(constants []uint32) error
}

// CommandBuffer is a native command buffer for one queue type. Begin resets it and starts recording; End
// closes it so it can be executed.
type CommandBuffer interface {
	Translator

	QueueType() rhi.QueueType
	Begin() error
	End() error
	Destroy()
}

// Batch is a set of command buffers executed in order, optionally waiting on a fence before starting and
// signaling a fence when done
type Batch struct {
	Wait    Fence
	Buffers []CommandBuffer
	Signal  Fence
}

// Queue executes batches in submission order. Each batch receives a serial number one higher than the
// previous; CompletedSerial reports the highest serial the GPU has finished.
type Queue interface {
	Type() rhi.QueueType
	Execute(batch Batch) (uint64, error)
	CompletedSerial() uint64
	// Flush blocks until all batches submitted before the call have completed
	Flush(ctx context.Context) error
}

// Driver creates native objects
type Driver interface {
	Name() string

	CreateBuffer(desc rhi.BufferDesc) (Buffer, error)
	CreateTexture(desc rhi.TextureDesc) (Texture, error)
	CreateBufferView(buffer Buffer, desc rhi.BufferViewDesc) (View, error)
	CreateTextureView(texture Texture, desc rhi.TextureViewDesc) (View, error)
	CreateGraphicsPipeline(desc rhi.GraphicsPipelineDesc) (Pipeline, error)
	CreateRenderPass(desc RenderPassDesc) (RenderPass, error)
	CreateFence() (Fence, error)
	CreateCommandBuffer(queue rhi.QueueType) (CommandBuffer, error)

	Queue(queue rhi.QueueType) (Queue, error)
	Destroy()
}
