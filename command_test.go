package rhi_test

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/rhi"
)

func TestCommandListKeepsOrder(t *testing.T) {
	var list rhi.RenderCommandList
	require.True(t, list.Empty())

	list.Submit(rhi.SetPipeline{Pipeline: 1})
	list.Submit(rhi.UpdateShaderArgs{Constants: []uint32{4}})
	list.Submit(rhi.Draw{VertsPerInstance: 3, InstanceCount: 1})

	var types []rhi.CommandType
	for _, cmd := range list.Commands() {
		types = append(types, cmd.CommandType())
	}
	require.Equal(t, []rhi.CommandType{rhi.CommandSetPipeline, rhi.CommandUpdateShaderArgs, rhi.CommandDraw}, types)
	require.Equal(t, 3, list.Len())

	list.Reset()
	require.True(t, list.Empty())
}

func TestEnumStrings(t *testing.T) {
	require.Equal(t, "Copy", rhi.QueueCopy.String())
	require.Equal(t, "QueueType(9)", rhi.QueueType(9).String())
	require.Equal(t, "CopyBufferToImage", rhi.CommandCopyBufferToImage.String())
	require.Contains(t, rhi.RenderPassAllowUnorderedAccessWrites.String(), "RenderPassAllowUnorderedAccessWrites")
	require.Equal(t, "Buffer(3#1)", rhi.Buffer(1<<32|3).String())
	require.Equal(t, "SyncReceipt(Invalid)", rhi.NoSync.String())
}

func TestRenderPassBuilder(t *testing.T) {
	builder := rhi.NewRenderPassBuilder("main").
		AddClearedRenderTarget(5, gputypes.Color{R: 1, A: 1}).
		SetDepthStencil(6, 1).
		AllowUnorderedAccessWrites()

	desc := builder.Build()
	require.NoError(t, desc.Validate())
	require.Len(t, desc.RenderTargets, 1)
	require.Equal(t, rhi.TextureView(5), desc.RenderTargets[0].View)
	require.Equal(t, gputypes.LoadOpClear, desc.RenderTargets[0].Load)
	require.Equal(t, rhi.TextureView(6), desc.DepthStencil.View)
	require.Equal(t, float32(1), desc.DepthStencil.ClearDepth)
	require.Equal(t, rhi.RenderPassAllowUnorderedAccessWrites, desc.Flags)

	// Later builder changes do not leak into a built description
	builder.AddRenderTarget(7, gputypes.LoadOpLoad, gputypes.StoreOpStore)
	require.Len(t, desc.RenderTargets, 1)

	require.ErrorIs(t, rhi.NewRenderPassBuilder("empty").Build().Validate(), rhi.ErrInvalidDescriptor)
}

func TestBarrierConstructors(t *testing.T) {
	transition := rhi.TransitionTexture(3, rhi.StateCopyDest, rhi.StateShaderResource, rhi.AllSubresources)
	require.Equal(t, rhi.BarrierTransition, transition.Type)
	require.Equal(t, rhi.Texture(3), transition.Texture)
	require.Equal(t, rhi.AllSubresources, transition.Subresource)

	alias := rhi.AliasingBarrier(1, 2)
	require.Equal(t, rhi.BarrierAliasing, alias.Type)
	require.Equal(t, rhi.Texture(2), alias.AliasAfter)

	uav := rhi.UAVBufferBarrier(9)
	require.Equal(t, rhi.BarrierUnorderedAccess, uav.Type)
	require.Equal(t, rhi.Buffer(9), uav.Buffer)
}

func TestDescriptorValidation(t *testing.T) {
	require.ErrorIs(t, rhi.BufferDesc{Label: "zero"}.Validate(), rhi.ErrInvalidDescriptor)

	view := rhi.BufferViewDesc{Type: rhi.ViewShaderResource, Offset: 16, Size: 48, Stride: 12}
	require.NoError(t, view.ValidateFor(64))
	require.Equal(t, 4, view.ElementCount())
	require.ErrorIs(t, view.ValidateFor(63), rhi.ErrInvalidDescriptor)

	view.Stride = 10
	require.ErrorIs(t, view.ValidateFor(64), rhi.ErrInvalidDescriptor)

	texture := rhi.TextureDesc{
		Label:     "albedo",
		Size:      gputypes.Extent3D{Width: 4, Height: 4, DepthOrArrayLayers: 1},
		Dimension: gputypes.TextureDimension2D,
		Format:    gputypes.TextureFormatRGBA8Unorm,
		MipLevels: 3,
	}
	require.NoError(t, texture.Validate())
	require.NoError(t, rhi.TextureViewDesc{Type: rhi.ViewShaderResource, BaseMip: 1}.ValidateFor(texture))
	require.ErrorIs(t, rhi.TextureViewDesc{Type: rhi.ViewShaderResource, BaseMip: 1, MipCount: 3}.ValidateFor(texture), rhi.ErrInvalidDescriptor)
}
