package rhi

import "strconv"

type BarrierType int32

const (
	// BarrierTransition moves a resource from one state to another
	BarrierTransition BarrierType = iota
	// BarrierAliasing marks a switch between two resources sharing the same memory
	BarrierAliasing
	// BarrierUnorderedAccess orders unordered access writes before later reads or writes
	BarrierUnorderedAccess
)

var barrierTypeMapping = map[BarrierType]string{
	BarrierTransition:      "Transition",
	BarrierAliasing:        "Aliasing",
	BarrierUnorderedAccess: "UnorderedAccess",
}

func (t BarrierType) String() string {
	str, ok := barrierTypeMapping[t]
	if !ok {
		return "BarrierType(" + strconv.Itoa(int(t)) + ")"
	}
	return str
}

// AllSubresources selects every mip and layer of a texture in a transition
const AllSubresources uint32 = 0xffffffff

// ResourceBarrier targets exactly one of Buffer or Texture. Aliasing barriers use Texture as the resource
// being retired and AliasAfter as the one taking over the memory.
type ResourceBarrier struct {
	Type        BarrierType
	Buffer      Buffer
	Texture     Texture
	AliasAfter  Texture
	Before      ResourceState
	After       ResourceState
	Subresource uint32
}

func TransitionBuffer(buffer Buffer, before, after ResourceState) ResourceBarrier {
	return ResourceBarrier{
		Type:   BarrierTransition,
		Buffer: buffer,
		Before: before,
		After:  after,
	}
}

func TransitionTexture(texture Texture, before, after ResourceState, subresource uint32) ResourceBarrier {
	return ResourceBarrier{
		Type:        BarrierTransition,
		Texture:     texture,
		Before:      before,
		After:       after,
		Subresource: subresource,
	}
}

func UAVBufferBarrier(buffer Buffer) ResourceBarrier {
	return ResourceBarrier{
		Type:   BarrierUnorderedAccess,
		Buffer: buffer,
	}
}

func UAVTextureBarrier(texture Texture) ResourceBarrier {
	return ResourceBarrier{
		Type:    BarrierUnorderedAccess,
		Texture: texture,
	}
}

func AliasingBarrier(before, after Texture) ResourceBarrier {
	return ResourceBarrier{
		Type:       BarrierAliasing,
		Texture:    before,
		AliasAfter: after,
	}
}
