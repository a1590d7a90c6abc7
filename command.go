package rhi

import (
	"strconv"

	"github.com/gogpu/gputypes"
)

type CommandType int32

const (
	CommandDraw CommandType = iota
	CommandDrawIndexed
	CommandSetPipeline
	CommandBeginRenderPass
	CommandEndRenderPass
	CommandBarrier
	CommandCopyBuffer
	CommandCopyBufferToImage
	CommandUpdateShaderArgs
)

var commandTypeMapping = map[CommandType]string{
	CommandDraw:              "Draw",
	CommandDrawIndexed:       "DrawIndexed",
	CommandSetPipeline:       "SetPipeline",
	CommandBeginRenderPass:   "BeginRenderPass",
	CommandEndRenderPass:     "EndRenderPass",
	CommandBarrier:           "Barrier",
	CommandCopyBuffer:        "CopyBuffer",
	CommandCopyBufferToImage: "CopyBufferToImage",
	CommandUpdateShaderArgs:  "UpdateShaderArgs",
}

func (t CommandType) String() string {
	str, ok := commandTypeMapping[t]
	if !ok {
		return "CommandType(" + strconv.Itoa(int(t)) + ")"
	}
	return str
}

// RenderCommand is one recorded GPU command. The set of commands is closed: only the types in this
// package implement it, and the device translates each of them.
type RenderCommand interface {
	CommandType() CommandType
	renderCommand()
}

// Draw issues a non-indexed draw with the current pipeline
type Draw struct {
	VertsPerInstance uint32
	InstanceCount    uint32
	VertStart        uint32
	InstanceStart    uint32
}

// DrawIndexed issues an indexed draw reading 32-bit indices from IndexBuffer
type DrawIndexed struct {
	IndexBuffer        Buffer
	IndicesPerInstance uint32
	InstanceCount      uint32
	IndexStart         uint32
	VertexStart        int32
	InstanceStart      uint32
}

type SetPipeline struct {
	Pipeline Pipeline
}

// BeginRenderPass opens a render pass whose viewport and scissor cover Width by Height pixels
type BeginRenderPass struct {
	RenderPass RenderPass
	Width      uint32
	Height     uint32
}

type EndRenderPass struct{}

// Barrier records one or more resource barriers as a single batch
type Barrier struct {
	Barriers []ResourceBarrier
}

// CopyBuffer copies Size bytes between two buffers
type CopyBuffer struct {
	Src       Buffer
	SrcOffset int
	Dst       Buffer
	DstOffset int
	Size      int
}

// CopyBufferToImage copies a linear image from a buffer into one subresource of a texture. SrcRowPitch is
// the distance in bytes between rows in the source buffer.
type CopyBufferToImage struct {
	Src            Buffer
	SrcOffset      int
	SrcRowPitch    uint32
	Extent         gputypes.Extent3D
	Format         gputypes.TextureFormat
	Dst            Texture
	DstSubresource uint32
	DstOrigin      gputypes.Origin3D
}

// UpdateShaderArgs sets the 32-bit root constants read by the following draws or dispatches. Shaders use
// them as indices into the global descriptor table.
type UpdateShaderArgs struct {
	Constants []uint32
}

func (Draw) CommandType() CommandType              { return CommandDraw }
func (DrawIndexed) CommandType() CommandType       { return CommandDrawIndexed }
func (SetPipeline) CommandType() CommandType       { return CommandSetPipeline }
func (BeginRenderPass) CommandType() CommandType   { return CommandBeginRenderPass }
func (EndRenderPass) CommandType() CommandType     { return CommandEndRenderPass }
func (Barrier) CommandType() CommandType           { return CommandBarrier }
func (CopyBuffer) CommandType() CommandType        { return CommandCopyBuffer }
func (CopyBufferToImage) CommandType() CommandType { return CommandCopyBufferToImage }
func (UpdateShaderArgs) CommandType() CommandType  { return CommandUpdateShaderArgs }

func (Draw) renderCommand()              {}
func (DrawIndexed) renderCommand()       {}
func (SetPipeline) renderCommand()       {}
func (BeginRenderPass) renderCommand()   {}
func (EndRenderPass) renderCommand()     {}
func (Barrier) renderCommand()           {}
func (CopyBuffer) renderCommand()        {}
func (CopyBufferToImage) renderCommand() {}
func (UpdateShaderArgs) renderCommand()  {}

// RenderCommandList is an ordered, append-only sequence of commands. It is plain data owned by the
// goroutine recording it; independent lists may be recorded on different goroutines.
type RenderCommandList struct {
	commands []RenderCommand
}

// Submit appends cmd. Commands execute in the order they were submitted.
func (l *RenderCommandList) Submit(cmd RenderCommand) {
	l.commands = append(l.commands, cmd)
}

func (l *RenderCommandList) Commands() []RenderCommand { return l.commands }
func (l *RenderCommandList) Len() int                  { return len(l.commands) }
func (l *RenderCommandList) Empty() bool               { return len(l.commands) == 0 }

// Reset empties the list, keeping its storage
func (l *RenderCommandList) Reset() {
	clear(l.commands)
	l.commands = l.commands[:0]
}
