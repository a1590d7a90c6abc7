package device

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/driver"
)

func (d *Device) CreateBuffer(desc rhi.BufferDesc) (rhi.Buffer, error) {
	err := desc.Validate()
	if err != nil {
		return 0, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	native, err := d.driver.CreateBuffer(desc)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create buffer %q", desc.Label)
	}

	return d.buffers.Insert(bufferRecord{native: native, desc: desc}), nil
}

func (d *Device) CreateTexture(desc rhi.TextureDesc) (rhi.Texture, error) {
	err := desc.Validate()
	if err != nil {
		return 0, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	native, err := d.driver.CreateTexture(desc)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create texture %q", desc.Label)
	}

	return d.textures.Insert(textureRecord{native: native, desc: desc}), nil
}

func (d *Device) CreateBufferView(buffer rhi.Buffer, desc rhi.BufferViewDesc) (rhi.BufferView, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	record, err := d.buffers.Get(buffer)
	if err != nil {
		return 0, err
	}

	err = desc.ValidateFor(record.desc.Size)
	if err != nil {
		return 0, errors.Wrapf(err, "buffer %q", record.desc.Label)
	}

	native, err := d.driver.CreateBufferView(record.native, desc)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create %s view of buffer %q", desc.Type, record.desc.Label)
	}

	return d.bufferViews.Insert(bufferViewRecord{native: native, buffer: buffer, desc: desc}), nil
}

func (d *Device) CreateTextureView(texture rhi.Texture, desc rhi.TextureViewDesc) (rhi.TextureView, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	record, err := d.textures.Get(texture)
	if err != nil {
		return 0, err
	}

	err = desc.ValidateFor(record.desc)
	if err != nil {
		return 0, err
	}

	native, err := d.driver.CreateTextureView(record.native, desc)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create %s view of texture %q", desc.Type, record.desc.Label)
	}

	return d.textureViews.Insert(textureViewRecord{native: native, texture: texture, desc: desc}), nil
}

func (d *Device) CreateGraphicsPipeline(desc rhi.GraphicsPipelineDesc) (rhi.Pipeline, error) {
	err := desc.Validate()
	if err != nil {
		return 0, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	native, err := d.driver.CreateGraphicsPipeline(desc)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create pipeline %q", desc.Label)
	}

	return d.pipelines.Insert(pipelineRecord{native: native, label: desc.Label}), nil
}

func (d *Device) CreateRenderPass(desc rhi.RenderPassDesc) (rhi.RenderPass, error) {
	err := desc.Validate()
	if err != nil {
		return 0, err
	}

	d.mutex.Lock()
	defer d.mutex.Unlock()

	native := driver.RenderPassDesc{
		Label: desc.Label,
		Flags: desc.Flags,
	}

	for _, target := range desc.RenderTargets {
		view, err := d.textureViews.Get(target.View)
		if err != nil {
			return 0, errors.Wrapf(err, "render pass %q", desc.Label)
		}
		if view.desc.Type != rhi.ViewRenderTarget {
			return 0, errors.Wrapf(rhi.ErrInvalidDescriptor, "render pass %q uses a %s view as a render target", desc.Label, view.desc.Type)
		}

		native.RenderTargets = append(native.RenderTargets, driver.RenderTargetAttachment{
			View:       view.native,
			Load:       target.Load,
			Store:      target.Store,
			ClearColor: target.ClearColor,
		})
	}

	if desc.DepthStencil != nil {
		view, err := d.textureViews.Get(desc.DepthStencil.View)
		if err != nil {
			return 0, errors.Wrapf(err, "render pass %q", desc.Label)
		}
		if view.desc.Type != rhi.ViewDepthStencil {
			return 0, errors.Wrapf(rhi.ErrInvalidDescriptor, "render pass %q uses a %s view as a depth stencil", desc.Label, view.desc.Type)
		}

		native.DepthStencil = &driver.DepthStencilAttachment{
			View:         view.native,
			DepthLoad:    desc.DepthStencil.DepthLoad,
			DepthStore:   desc.DepthStencil.DepthStore,
			ClearDepth:   desc.DepthStencil.ClearDepth,
			StencilLoad:  desc.DepthStencil.StencilLoad,
			StencilStore: desc.DepthStencil.StencilStore,
			ClearStencil: desc.DepthStencil.ClearStencil,
		}
	}

	pass, err := d.driver.CreateRenderPass(native)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create render pass %q", desc.Label)
	}

	return d.renderPasses.Insert(renderPassRecord{native: pass, label: desc.Label}), nil
}

// FreeBuffer destroys a buffer immediately. Buffers the GPU may still read should be freed through the
// garbage bin.
func (d *Device) FreeBuffer(buffer rhi.Buffer) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	record, err := d.buffers.Remove(buffer)
	if err != nil {
		return err
	}

	if record.mapCount > 0 {
		d.logger.LogAttrs(context.Background(), slog.LevelWarn, "Freeing a buffer that is still mapped",
			slog.String("buffer", buffer.String()),
			slog.String("label", record.desc.Label),
		)
		_ = record.native.Unmap()
	}

	record.native.Destroy()
	return nil
}

func (d *Device) FreeTexture(texture rhi.Texture) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	record, err := d.textures.Remove(texture)
	if err != nil {
		return err
	}

	record.native.Destroy()
	return nil
}

func (d *Device) FreeBufferView(view rhi.BufferView) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	record, err := d.bufferViews.Remove(view)
	if err != nil {
		return err
	}

	record.native.Destroy()
	return nil
}

func (d *Device) FreeTextureView(view rhi.TextureView) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	record, err := d.textureViews.Remove(view)
	if err != nil {
		return err
	}

	record.native.Destroy()
	return nil
}

func (d *Device) FreePipeline(pipeline rhi.Pipeline) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	record, err := d.pipelines.Remove(pipeline)
	if err != nil {
		return err
	}

	record.native.Destroy()
	return nil
}

func (d *Device) FreeRenderPass(renderPass rhi.RenderPass) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	record, err := d.renderPasses.Remove(renderPass)
	if err != nil {
		return err
	}

	record.native.Destroy()
	return nil
}

func (d *Device) BufferDesc(buffer rhi.Buffer) (rhi.BufferDesc, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	record, err := d.buffers.Get(buffer)
	if err != nil {
		return rhi.BufferDesc{}, err
	}

	return record.desc, nil
}

func (d *Device) TextureDesc(texture rhi.Texture) (rhi.TextureDesc, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	record, err := d.textures.Get(texture)
	if err != nil {
		return rhi.TextureDesc{}, err
	}

	return record.desc, nil
}

// Map returns the memory of a host-visible buffer. Mapping is reference counted and persistent: the slice
// stays valid until the matching number of Unmap calls.
func (d *Device) Map(buffer rhi.Buffer) ([]byte, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	record, err := d.buffers.Get(buffer)
	if err != nil {
		return nil, err
	}

	if !record.desc.Memory.HostVisible() {
		return nil, errors.Wrapf(rhi.ErrNotMappable, "buffer %q lives in %s memory", record.desc.Label, record.desc.Memory)
	}

	if record.mapCount == 0 {
		mapped, err := record.native.Map()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to map buffer %q", record.desc.Label)
		}
		record.mapped = mapped
	}

	record.mapCount++
	return record.mapped, nil
}

func (d *Device) Unmap(buffer rhi.Buffer) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	record, err := d.buffers.Get(buffer)
	if err != nil {
		return err
	}

	if record.mapCount == 0 {
		return errors.Newf("buffer %q is not mapped", record.desc.Label)
	}

	record.mapCount--
	if record.mapCount == 0 {
		record.mapped = nil
		return record.native.Unmap()
	}

	return nil
}

// UploadToBuffer copies data into a host-visible buffer at offset
func (d *Device) UploadToBuffer(buffer rhi.Buffer, offset int, data []byte) error {
	mapped, err := d.Map(buffer)
	if err != nil {
		return err
	}

	if offset < 0 || offset+len(data) > len(mapped) {
		_ = d.Unmap(buffer)
		return errors.Wrapf(rhi.ErrOutOfBounds, "upload of %d bytes at offset %d into a %d byte buffer", len(data), offset, len(mapped))
	}

	copy(mapped[offset:], data)
	return d.Unmap(buffer)
}

// GlobalDescriptor returns the index of a buffer view in the global descriptor table. Shaders receive it
// through UpdateShaderArgs.
func (d *Device) GlobalDescriptor(view rhi.BufferView) (uint32, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	record, err := d.bufferViews.Get(view)
	if err != nil {
		return 0, err
	}

	index, ok := record.native.DescriptorIndex()
	if !ok {
		return 0, errors.Wrapf(rhi.ErrNotBindless, "%s view", record.desc.Type)
	}

	return index, nil
}

// GlobalTextureDescriptor returns the index of a texture view in the global descriptor table
func (d *Device) GlobalTextureDescriptor(view rhi.TextureView) (uint32, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	record, err := d.textureViews.Get(view)
	if err != nil {
		return 0, err
	}

	index, ok := record.native.DescriptorIndex()
	if !ok {
		return 0, errors.Wrapf(rhi.ErrNotBindless, "%s view", record.desc.Type)
	}

	return index, nil
}
