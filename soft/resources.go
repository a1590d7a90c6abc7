package soft

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/vkngwrapper/rhi"
)

type buffer struct {
	driver *Driver
	desc   rhi.BufferDesc
	data   []byte
	pooled bool
	mapped bool
}

func (b *buffer) Size() int { return b.desc.Size }

func (b *buffer) Map() ([]byte, error) {
	if !b.desc.Memory.HostVisible() {
		return nil, errors.Wrapf(rhi.ErrNotMappable, "buffer %q", b.desc.Label)
	}

	b.mapped = true
	return b.data, nil
}

func (b *buffer) Unmap() error {
	if !b.mapped {
		return errors.Newf("buffer %q is not mapped", b.desc.Label)
	}

	b.mapped = false
	return nil
}

func (b *buffer) Destroy() {
	if b.pooled {
		b.driver.releaseHeap(b.data)
	}
	b.data = nil
}

type texture struct {
	desc          rhi.TextureDesc
	bytesPerPixel int
	mips          [][]byte
}

func (t *texture) Desc() rhi.TextureDesc { return t.desc }
func (t *texture) Destroy()              { t.mips = nil }

func formatSize(format gputypes.TextureFormat) int {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return 1
	default:
		return 4
	}
}

func mipExtent(desc rhi.TextureDesc, mip uint32) (uint32, uint32) {
	return max(1, desc.Size.Width>>mip), max(1, desc.Size.Height>>mip)
}

type view struct {
	driver   *Driver
	index    uint32
	bindless bool

	buffer     *buffer
	bufferDesc rhi.BufferViewDesc

	texture     *texture
	textureDesc rhi.TextureViewDesc
}

func (v *view) DescriptorIndex() (uint32, bool) { return v.index, v.bindless }

func (v *view) Destroy() {
	if v.bindless {
		v.driver.descriptors.release(v.index)
		v.bindless = false
	}
}

type pipeline struct {
	label string
}

func (p *pipeline) Destroy() {}

type renderPass struct {
	label   string
	targets int
}

func (p *renderPass) Destroy() {}

// descriptorTable is the global table bindless views are placed in. Freed slots are reused last in,
// first out.
type descriptorTable struct {
	mutex   sync.Mutex
	entries []*view
	free    []uint32
	max     int
}

func newDescriptorTable(max int) *descriptorTable {
	return &descriptorTable{max: max}
}

func (t *descriptorTable) acquire(v *view) (uint32, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if len(t.free) > 0 {
		index := t.free[len(t.free)-1]
		t.free = t.free[:len(t.free)-1]
		t.entries[index] = v
		return index, nil
	}

	if len(t.entries) >= t.max {
		return 0, errors.Newf("all %d descriptors are in use", t.max)
	}

	t.entries = append(t.entries, v)
	return uint32(len(t.entries) - 1), nil
}

func (t *descriptorTable) release(index uint32) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.entries[index] = nil
	t.free = append(t.free, index)
}

func (t *descriptorTable) lookup(index uint32) (*view, bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if int(index) >= len(t.entries) || t.entries[index] == nil {
		return nil, false
	}

	return t.entries[index], true
}

func (t *descriptorTable) inUse() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	return len(t.entries) - len(t.free)
}
