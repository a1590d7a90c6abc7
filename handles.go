// Package rhi is the vocabulary shared by the device front end, the backend drivers and the resource
// managers: typed resource handles, resource descriptors, barriers and the recorded render commands.
package rhi

import "github.com/vkngwrapper/rhi/handle"

// Every resource kind is its own handle type, so each gets an independent slot pool and a Buffer can never
// be passed where a Texture is expected.
type (
	Buffer      handle.Handle
	Texture     handle.Handle
	BufferView  handle.Handle
	TextureView handle.Handle
	Pipeline    handle.Handle
	RenderPass  handle.Handle
	CommandList handle.Handle
	// SyncReceipt names a fence signaled when a submission completes. It is consumed by the wait that
	// observes it.
	SyncReceipt handle.Handle
)

// NoSync is the SyncReceipt returned by submissions that did not ask for one, and passed to submissions
// that should not wait on anything
const NoSync SyncReceipt = SyncReceipt(handle.Invalid)

func (h Buffer) String() string      { return "Buffer(" + handle.Handle(h).String() + ")" }
func (h Texture) String() string     { return "Texture(" + handle.Handle(h).String() + ")" }
func (h BufferView) String() string  { return "BufferView(" + handle.Handle(h).String() + ")" }
func (h TextureView) String() string { return "TextureView(" + handle.Handle(h).String() + ")" }
func (h Pipeline) String() string    { return "Pipeline(" + handle.Handle(h).String() + ")" }
func (h RenderPass) String() string  { return "RenderPass(" + handle.Handle(h).String() + ")" }
func (h CommandList) String() string { return "CommandList(" + handle.Handle(h).String() + ")" }
func (h SyncReceipt) String() string { return "SyncReceipt(" + handle.Handle(h).String() + ")" }
