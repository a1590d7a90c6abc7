package soft

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/driver"
	"golang.org/x/exp/slices"
)

// op is one recorded command. run performs the command's memory effects on the executing queue's
// goroutine; commands with no memory effects leave it nil.
type op struct {
	command   rhi.CommandType
	label     string
	constants []uint32
	run       func() error
}

type commandBuffer struct {
	driver       *Driver
	queue        rhi.QueueType
	recording    bool
	closed       bool
	inRenderPass bool
	ops          []op
}

var _ driver.CommandBuffer = &commandBuffer{}

func (c *commandBuffer) QueueType() rhi.QueueType { return c.queue }

func (c *commandBuffer) Begin() error {
	c.ops = nil
	c.recording = true
	c.closed = false
	c.inRenderPass = false
	return nil
}

func (c *commandBuffer) End() error {
	if !c.recording {
		return errors.New("command buffer is not recording")
	}
	if c.inRenderPass {
		return errors.New("command buffer was closed inside a render pass")
	}

	c.recording = false
	c.closed = true
	return nil
}

func (c *commandBuffer) Destroy() {
	c.ops = nil
	c.recording = false
	c.closed = false
}

func (c *commandBuffer) append(o op) error {
	if !c.recording {
		return errors.Newf("%s recorded into a command buffer that is not recording", o.command)
	}

	c.ops = append(c.ops, o)
	return nil
}

func (c *commandBuffer) requireGraphics(command rhi.CommandType) error {
	if c.queue != rhi.QueueGraphics {
		return errors.Newf("%s is not supported on the %s queue", command, c.queue)
	}
	return nil
}

func (c *commandBuffer) Draw(cmd rhi.Draw) error {
	err := c.requireGraphics(rhi.CommandDraw)
	if err != nil {
		return err
	}

	return c.append(op{
		command: rhi.CommandDraw,
		label:   fmt.Sprintf("%d verts x %d instances", cmd.VertsPerInstance, cmd.InstanceCount),
	})
}

func (c *commandBuffer) DrawIndexed(indexBuffer driver.Buffer, cmd rhi.DrawIndexed) error {
	err := c.requireGraphics(rhi.CommandDrawIndexed)
	if err != nil {
		return err
	}

	indices, ok := indexBuffer.(*buffer)
	if !ok {
		return errors.Newf("buffer of type %T does not belong to the software driver", indexBuffer)
	}

	end := (int(cmd.IndexStart) + int(cmd.IndicesPerInstance)) * 4
	return c.append(op{
		command: rhi.CommandDrawIndexed,
		label:   fmt.Sprintf("%d indices x %d instances", cmd.IndicesPerInstance, cmd.InstanceCount),
		run: func() error {
			if end > len(indices.data) {
				return errors.Wrapf(rhi.ErrOutOfBounds, "draw reads indices up to byte %d of buffer %q", end, indices.desc.Label)
			}
			return nil
		},
	})
}

func (c *commandBuffer) SetPipeline(nativePipeline driver.Pipeline) error {
	err := c.requireGraphics(rhi.CommandSetPipeline)
	if err != nil {
		return err
	}

	p, ok := nativePipeline.(*pipeline)
	if !ok {
		return errors.Newf("pipeline of type %T does not belong to the software driver", nativePipeline)
	}

	return c.append(op{command: rhi.CommandSetPipeline, label: p.label})
}

func (c *commandBuffer) BeginRenderPass(nativePass driver.RenderPass, cmd rhi.BeginRenderPass) error {
	err := c.requireGraphics(rhi.CommandBeginRenderPass)
	if err != nil {
		return err
	}
	if c.inRenderPass {
		return errors.New("render passes cannot be nested")
	}

	pass, ok := nativePass.(*renderPass)
	if !ok {
		return errors.Newf("render pass of type %T does not belong to the software driver", nativePass)
	}

	c.inRenderPass = true
	return c.append(op{
		command: rhi.CommandBeginRenderPass,
		label:   fmt.Sprintf("%s %dx%d", pass.label, cmd.Width, cmd.Height),
	})
}

func (c *commandBuffer) EndRenderPass() error {
	err := c.requireGraphics(rhi.CommandEndRenderPass)
	if err != nil {
		return err
	}
	if !c.inRenderPass {
		return errors.New("no render pass is open")
	}

	c.inRenderPass = false
	return c.append(op{command: rhi.CommandEndRenderPass})
}

func (c *commandBuffer) Barriers(barriers []driver.Barrier) error {
	return c.append(op{
		command: rhi.CommandBarrier,
		label:   fmt.Sprintf("%d barriers", len(barriers)),
	})
}

func (c *commandBuffer) CopyBuffer(nativeSrc driver.Buffer, srcOffset int, nativeDst driver.Buffer, dstOffset int, size int) error {
	src, ok := nativeSrc.(*buffer)
	if !ok {
		return errors.Newf("buffer of type %T does not belong to the software driver", nativeSrc)
	}
	dst, ok := nativeDst.(*buffer)
	if !ok {
		return errors.Newf("buffer of type %T does not belong to the software driver", nativeDst)
	}

	return c.append(op{
		command: rhi.CommandCopyBuffer,
		label:   fmt.Sprintf("%q+%d -> %q+%d (%d bytes)", src.desc.Label, srcOffset, dst.desc.Label, dstOffset, size),
		run: func() error {
			if srcOffset+size > len(src.data) || dstOffset+size > len(dst.data) {
				return errors.Wrapf(rhi.ErrOutOfBounds, "copy of %d bytes from %q+%d to %q+%d", size, src.desc.Label, srcOffset, dst.desc.Label, dstOffset)
			}

			copy(dst.data[dstOffset:dstOffset+size], src.data[srcOffset:srcOffset+size])
			return nil
		},
	})
}

func (c *commandBuffer) CopyBufferToImage(nativeSrc driver.Buffer, nativeDst driver.Texture, cmd rhi.CopyBufferToImage) error {
	src, ok := nativeSrc.(*buffer)
	if !ok {
		return errors.Newf("buffer of type %T does not belong to the software driver", nativeSrc)
	}
	dst, ok := nativeDst.(*texture)
	if !ok {
		return errors.Newf("texture of type %T does not belong to the software driver", nativeDst)
	}
	if cmd.Extent.DepthOrArrayLayers > 1 {
		return errors.New("copies into more than one depth slice or array layer are not supported")
	}

	return c.append(op{
		command: rhi.CommandCopyBufferToImage,
		label:   fmt.Sprintf("%q+%d -> %q mip %d (%dx%d)", src.desc.Label, cmd.SrcOffset, dst.desc.Label, cmd.DstSubresource, cmd.Extent.Width, cmd.Extent.Height),
		run: func() error {
			mipWidth, mipHeight := mipExtent(dst.desc, cmd.DstSubresource)
			if cmd.DstOrigin.X+cmd.Extent.Width > mipWidth || cmd.DstOrigin.Y+cmd.Extent.Height > mipHeight {
				return errors.Wrapf(rhi.ErrOutOfBounds, "copy of %dx%d at (%d,%d) into a %dx%d mip", cmd.Extent.Width, cmd.Extent.Height, cmd.DstOrigin.X, cmd.DstOrigin.Y, mipWidth, mipHeight)
			}

			pixelSize := dst.bytesPerPixel
			rowBytes := int(cmd.Extent.Width) * pixelSize
			mip := dst.mips[cmd.DstSubresource]

			for row := 0; row < int(cmd.Extent.Height); row++ {
				srcStart := cmd.SrcOffset + row*int(cmd.SrcRowPitch)
				if srcStart+rowBytes > len(src.data) {
					return errors.Wrapf(rhi.ErrOutOfBounds, "row %d reads past the end of buffer %q", row, src.desc.Label)
				}

				dstStart := ((int(cmd.DstOrigin.Y)+row)*int(mipWidth) + int(cmd.DstOrigin.X)) * pixelSize
				copy(mip[dstStart:dstStart+rowBytes], src.data[srcStart:srcStart+rowBytes])
			}

			return nil
		},
	})
}

func (c *commandBuffer) UpdateShaderArgs(constants []uint32) error {
	if c.queue == rhi.QueueCopy {
		return errors.Newf("%s is not supported on the %s queue", rhi.CommandUpdateShaderArgs, c.queue)
	}

	return c.append(op{
		command:   rhi.CommandUpdateShaderArgs,
		constants: slices.Clone(constants),
	})
}
