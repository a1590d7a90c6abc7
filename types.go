package rhi

import "strconv"

// QueueType selects one of the device's hardware queues
type QueueType int32

const (
	QueueGraphics QueueType = iota
	QueueCompute
	QueueCopy

	// QueueTypeCount is the number of queue types, for sizing per-queue tables
	QueueTypeCount int = iota
)

var queueTypeMapping = map[QueueType]string{
	QueueGraphics: "Graphics",
	QueueCompute:  "Compute",
	QueueCopy:     "Copy",
}

func (q QueueType) String() string {
	str, ok := queueTypeMapping[q]
	if !ok {
		return "QueueType(" + strconv.Itoa(int(q)) + ")"
	}
	return str
}

// MemoryType selects where a buffer lives and whether the CPU can map it
type MemoryType int32

const (
	// MemoryDefault is device-local memory the CPU cannot map
	MemoryDefault MemoryType = iota
	// MemoryUpload is host-visible memory optimized for CPU writes and GPU reads
	MemoryUpload
	// MemoryReadback is host-visible memory optimized for GPU writes and CPU reads
	MemoryReadback
)

var memoryTypeMapping = map[MemoryType]string{
	MemoryDefault:  "Default",
	MemoryUpload:   "Upload",
	MemoryReadback: "Readback",
}

func (m MemoryType) String() string {
	str, ok := memoryTypeMapping[m]
	if !ok {
		return "MemoryType(" + strconv.Itoa(int(m)) + ")"
	}
	return str
}

// HostVisible reports whether buffers of this memory type can be mapped
func (m MemoryType) HostVisible() bool {
	return m == MemoryUpload || m == MemoryReadback
}

// ViewType is the way a shader or the fixed-function pipeline accesses a resource through a view
type ViewType int32

const (
	ViewConstantBuffer ViewType = iota
	ViewShaderResource
	ViewUnorderedAccess
	ViewRenderTarget
	ViewDepthStencil
)

var viewTypeMapping = map[ViewType]string{
	ViewConstantBuffer:  "ConstantBuffer",
	ViewShaderResource:  "ShaderResource",
	ViewUnorderedAccess: "UnorderedAccess",
	ViewRenderTarget:    "RenderTarget",
	ViewDepthStencil:    "DepthStencil",
}

func (v ViewType) String() string {
	str, ok := viewTypeMapping[v]
	if !ok {
		return "ViewType(" + strconv.Itoa(int(v)) + ")"
	}
	return str
}

// Bindless reports whether views of this type occupy a slot in the global descriptor table
func (v ViewType) Bindless() bool {
	return v == ViewConstantBuffer || v == ViewShaderResource || v == ViewUnorderedAccess
}

// ResourceState is the usage a resource is prepared for. Transition barriers move resources between
// states.
type ResourceState int32

const (
	StateCommon ResourceState = iota
	StateVertexAndConstantBuffer
	StateIndexBuffer
	StateRenderTarget
	StateUnorderedAccess
	StateDepthWrite
	StateDepthRead
	StateShaderResource
	StateCopyDest
	StateCopySource
	StatePresent
)

var resourceStateMapping = map[ResourceState]string{
	StateCommon:                  "Common",
	StateVertexAndConstantBuffer: "VertexAndConstantBuffer",
	StateIndexBuffer:             "IndexBuffer",
	StateRenderTarget:            "RenderTarget",
	StateUnorderedAccess:         "UnorderedAccess",
	StateDepthWrite:              "DepthWrite",
	StateDepthRead:               "DepthRead",
	StateShaderResource:          "ShaderResource",
	StateCopyDest:                "CopyDest",
	StateCopySource:              "CopySource",
	StatePresent:                 "Present",
}

func (s ResourceState) String() string {
	str, ok := resourceStateMapping[s]
	if !ok {
		return "ResourceState(" + strconv.Itoa(int(s)) + ")"
	}
	return str
}
