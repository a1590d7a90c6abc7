// Package mesh keeps mesh data in device-local buffers. Every vertex attribute has its own buffer, shared by
// all meshes and addressed through one bindless view, and submeshes are described to shaders through a
// metadata buffer indexed by a global submesh index.
package mesh

import (
	"context"
	"encoding/binary"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/google/uuid"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/device"
	"github.com/vkngwrapper/rhi/garbage"
	"github.com/vkngwrapper/rhi/handle"
	"github.com/vkngwrapper/rhi/memory"
	"github.com/vkngwrapper/rhi/memutils"
	"github.com/vkngwrapper/rhi/memutils/virtual"
)

const (
	DefaultMaxSubmeshes    int = 10_000
	DefaultIndexBufferSize int = 1 << 20
	DefaultStagingSize     int = 1 << 20

	indexSize int = 4
	// submeshRecordSize is the size of a submesh's entry in the metadata buffer: index start, index count,
	// vertex count, then the first vertex of the submesh in each attribute buffer
	submeshRecordSize int = 32
	stagingAlignment  int = 16

	// NoAttribute marks an attribute the submesh does not have in its metadata record
	NoAttribute uint32 = 0xffffffff
)

var ErrInvalidMesh = errors.New("invalid mesh specification")

type region struct {
	offset int
	size   int
}

type deviceLocalBuffer struct {
	buffer    rhi.Buffer
	view      rhi.BufferView
	allocator *virtual.BlockAllocator
}

type submeshStorage struct {
	metadata    SubmeshMetadata
	globalIndex uint32
}

type meshRecord struct {
	attributes [attributeCount]*region
	indices    region
	metadata   region
	submeshes  []submeshStorage
}

// Manager loads meshes into device-local buffers through a staging buffer on the copy queue. It belongs to
// a single goroutine.
type Manager struct {
	id     uuid.UUID
	logger *slog.Logger
	device *device.Device
	bin    *garbage.Bin

	attributes [attributeCount]*deviceLocalBuffer
	indices    deviceLocalBuffer
	metadata   deviceLocalBuffer

	stagingBuffer rhi.Buffer
	staging       *memory.Bump

	inflight     rhi.SyncReceipt
	inflightList rhi.CommandList

	meshes handle.Table[Mesh, meshRecord]
}

func New(logger *slog.Logger, dev *device.Device, bin *garbage.Bin, sizes SizeSpecification) (*Manager, error) {
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}
	if dev == nil || bin == nil {
		return nil, errors.New("device and garbage bin must not be nil")
	}
	if len(sizes.BufferSizes) == 0 {
		return nil, errors.New("at least one vertex attribute must be given a buffer size")
	}

	if sizes.MaxSubmeshes == 0 {
		sizes.MaxSubmeshes = DefaultMaxSubmeshes
	}
	if sizes.IndexBufferSize == 0 {
		sizes.IndexBufferSize = DefaultIndexBufferSize
	}
	if sizes.StagingSize == 0 {
		sizes.StagingSize = DefaultStagingSize
	}

	m := &Manager{
		id:     uuid.New(),
		device: dev,
		bin:    bin,
	}
	m.logger = logger.With(slog.String("mesh.manager", m.id.String()))

	err := m.init(sizes)
	if err != nil {
		m.release()
		return nil, err
	}

	m.logger.LogAttrs(context.Background(), slog.LevelDebug, "Mesh manager created",
		slog.Int("attributes", len(sizes.BufferSizes)),
		slog.Int("indexBufferSize", sizes.IndexBufferSize),
		slog.Int("stagingSize", sizes.StagingSize),
		slog.Int("maxSubmeshes", sizes.MaxSubmeshes),
	)

	return m, nil
}

func (m *Manager) createDeviceLocal(target *deviceLocalBuffer, label string, stride int, count int, usage gputypes.BufferUsage) error {
	if count <= 0 {
		return errors.Newf("%s buffer cannot hold a single %d byte element", label, stride)
	}

	var err error
	target.buffer, err = m.device.CreateBuffer(rhi.BufferDesc{
		Label:  label,
		Size:   stride * count,
		Usage:  usage | gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
		Memory: rhi.MemoryDefault,
	})
	if err != nil {
		return err
	}

	target.view, err = m.device.CreateBufferView(target.buffer, rhi.BufferViewDesc{
		Type:   rhi.ViewShaderResource,
		Size:   stride * count,
		Stride: stride,
	})
	if err != nil {
		return err
	}

	target.allocator, err = virtual.NewBlockAllocator(stride, count)
	return err
}

func (m *Manager) init(sizes SizeSpecification) error {
	for attribute, size := range sizes.BufferSizes {
		stride := attribute.Stride()
		if stride == 0 {
			return errors.Wrapf(ErrInvalidMesh, "unknown vertex attribute %s", attribute)
		}

		m.attributes[attribute] = &deviceLocalBuffer{}
		err := m.createDeviceLocal(m.attributes[attribute], attribute.String()+" vertices", stride, size/stride, gputypes.BufferUsageVertex)
		if err != nil {
			return err
		}
	}

	err := m.createDeviceLocal(&m.indices, "indices", indexSize, sizes.IndexBufferSize/indexSize, gputypes.BufferUsageIndex)
	if err != nil {
		return err
	}

	err = m.createDeviceLocal(&m.metadata, "submesh metadata", submeshRecordSize, sizes.MaxSubmeshes, 0)
	if err != nil {
		return err
	}

	m.stagingBuffer, err = m.device.CreateBuffer(rhi.BufferDesc{
		Label:  "mesh staging",
		Size:   sizes.StagingSize,
		Usage:  gputypes.BufferUsageCopySrc,
		Memory: rhi.MemoryUpload,
	})
	if err != nil {
		return err
	}

	mapped, err := m.device.Map(m.stagingBuffer)
	if err != nil {
		return err
	}

	m.staging, err = memory.NewBump(sizes.StagingSize, mapped)
	return err
}

func (m *Manager) ID() uuid.UUID { return m.id }

func (m *Manager) validate(spec MeshSpecification) (vertexCount int, err error) {
	if len(spec.Data) == 0 {
		return 0, errors.Wrap(ErrInvalidMesh, "mesh has no vertex data")
	}
	if len(spec.Indices) == 0 {
		return 0, errors.Wrap(ErrInvalidMesh, "mesh has no indices")
	}
	if len(spec.Submeshes) == 0 {
		return 0, errors.Wrap(ErrInvalidMesh, "mesh has no submeshes")
	}

	vertexCount = -1
	for attribute, data := range spec.Data {
		if attribute < 0 || int(attribute) >= attributeCount || m.attributes[attribute] == nil {
			return 0, errors.Wrapf(ErrInvalidMesh, "this manager has no buffer for %s data", attribute)
		}

		stride := attribute.Stride()
		if len(data) == 0 || len(data)%stride != 0 {
			return 0, errors.Wrapf(ErrInvalidMesh, "%d bytes of %s data is not a whole number of %d byte vertices", len(data), attribute, stride)
		}

		count := len(data) / stride
		if vertexCount >= 0 && count != vertexCount {
			return 0, errors.Wrapf(ErrInvalidMesh, "%s data holds %d vertices but other attributes hold %d", attribute, count, vertexCount)
		}
		vertexCount = count
	}

	for index, submesh := range spec.Submeshes {
		if int(submesh.VertStart)+int(submesh.VertCount) > vertexCount {
			return 0, errors.Wrapf(ErrInvalidMesh, "submesh %d covers vertices %d+%d of %d", index, submesh.VertStart, submesh.VertCount, vertexCount)
		}
		if int(submesh.IndexStart)+int(submesh.IndexCount) > len(spec.Indices) {
			return 0, errors.Wrapf(ErrInvalidMesh, "submesh %d covers indices %d+%d of %d", index, submesh.IndexStart, submesh.IndexCount, len(spec.Indices))
		}
	}

	return vertexCount, nil
}

// LoadMesh copies a mesh into the device-local buffers and blocks until the copy has finished. On failure
// nothing stays allocated.
func (m *Manager) LoadMesh(ctx context.Context, spec MeshSpecification) (MeshContainer, error) {
	vertexCount, err := m.validate(spec)
	if err != nil {
		return MeshContainer{}, err
	}

	staged := len(spec.Data)*stagingAlignment + len(spec.Indices)*indexSize + len(spec.Submeshes)*submeshRecordSize + 2*stagingAlignment
	for _, data := range spec.Data {
		staged += len(data)
	}
	if staged > len(m.staging.Memory()) {
		return MeshContainer{}, errors.Wrapf(memutils.ErrOutOfSpace, "mesh needs up to %d bytes of staging but the manager has %d", staged, len(m.staging.Memory()))
	}

	err = m.retireInflight(ctx)
	if err != nil {
		return MeshContainer{}, err
	}

	record := meshRecord{}
	err = m.reserve(&record, spec, vertexCount)
	if err != nil {
		m.releaseRecord(&record)
		return MeshContainer{}, err
	}

	var commands rhi.RenderCommandList
	err = m.stage(&commands, &record, spec)
	if err != nil {
		m.staging.Clear()
		m.releaseRecord(&record)
		return MeshContainer{}, err
	}

	list, err := m.device.AllocateCommandList(rhi.QueueCopy)
	if err != nil {
		m.staging.Clear()
		m.releaseRecord(&record)
		return MeshContainer{}, err
	}

	err = m.device.CompileCommandList(list, &commands)
	if err != nil {
		_ = m.device.RecycleCommandList(list)
		m.staging.Clear()
		m.releaseRecord(&record)
		return MeshContainer{}, err
	}

	receipt, err := m.device.SubmitCommandLists([]rhi.CommandList{list}, rhi.QueueCopy, rhi.NoSync, true)
	if err != nil {
		_ = m.device.RecycleCommandList(list)
		m.staging.Clear()
		m.releaseRecord(&record)
		return MeshContainer{}, err
	}

	m.inflight = receipt
	m.inflightList = list

	err = m.retireInflight(ctx)
	if err != nil {
		// The copy may still be writing into the reserved regions
		m.bin.PushDeferredDeletion(func() { m.releaseRecord(&record) })
		return MeshContainer{}, err
	}

	h := m.meshes.Insert(record)

	m.logger.LogAttrs(ctx, slog.LevelDebug, "Loaded mesh",
		slog.String("mesh", h.String()),
		slog.Int("vertices", vertexCount),
		slog.Int("indices", len(spec.Indices)),
		slog.Int("submeshes", len(spec.Submeshes)),
	)

	return MeshContainer{
		Mesh:         h,
		SubmeshCount: len(spec.Submeshes),
		ManagerID:    m.id,
	}, nil
}

// retireInflight waits for the last submitted load, then clears staging and recycles its command list
func (m *Manager) retireInflight(ctx context.Context) error {
	if m.inflight == rhi.NoSync {
		return nil
	}

	err := m.device.WaitForGPU(ctx, m.inflight)
	if err != nil {
		return errors.Wrap(err, "waiting for mesh copies")
	}
	m.inflight = rhi.NoSync

	m.staging.Clear()

	err = m.device.RecycleCommandList(m.inflightList)
	m.inflightList = 0
	return err
}

func (m *Manager) reserve(record *meshRecord, spec MeshSpecification, vertexCount int) error {
	for attribute := range spec.Data {
		target := m.attributes[attribute]
		size := vertexCount * attribute.Stride()

		offset, err := target.allocator.Allocate(size)
		if err != nil {
			return errors.Wrapf(err, "%s buffer", attribute)
		}
		record.attributes[attribute] = &region{offset: offset, size: size}
	}

	size := len(spec.Indices) * indexSize
	offset, err := m.indices.allocator.Allocate(size)
	if err != nil {
		return errors.Wrap(err, "index buffer")
	}
	record.indices = region{offset: offset, size: size}

	size = len(spec.Submeshes) * submeshRecordSize
	offset, err = m.metadata.allocator.Allocate(size)
	if err != nil {
		return errors.Wrap(err, "submesh metadata buffer")
	}
	record.metadata = region{offset: offset, size: size}

	record.submeshes = make([]submeshStorage, len(spec.Submeshes))
	for index, submesh := range spec.Submeshes {
		record.submeshes[index] = submeshStorage{
			metadata:    submesh,
			globalIndex: uint32(offset/submeshRecordSize + index),
		}
	}

	return nil
}

func (m *Manager) stageCopy(commands *rhi.RenderCommandList, dst rhi.Buffer, dstOffset int, size int) ([]byte, error) {
	mem, stagingOffset, err := m.staging.Allocate(size, stagingAlignment)
	if err != nil {
		return nil, errors.Wrap(err, "mesh staging")
	}

	commands.Submit(rhi.CopyBuffer{
		Src:       m.stagingBuffer,
		SrcOffset: stagingOffset,
		Dst:       dst,
		DstOffset: dstOffset,
		Size:      size,
	})

	return mem, nil
}

func (m *Manager) stage(commands *rhi.RenderCommandList, record *meshRecord, spec MeshSpecification) error {
	for attribute := 0; attribute < attributeCount; attribute++ {
		data, ok := spec.Data[VertexAttribute(attribute)]
		if !ok {
			continue
		}

		mem, err := m.stageCopy(commands, m.attributes[attribute].buffer, record.attributes[attribute].offset, len(data))
		if err != nil {
			return err
		}
		copy(mem, data)
	}

	mem, err := m.stageCopy(commands, m.indices.buffer, record.indices.offset, record.indices.size)
	if err != nil {
		return err
	}
	for index, value := range spec.Indices {
		binary.LittleEndian.PutUint32(mem[index*indexSize:], value)
	}

	mem, err = m.stageCopy(commands, m.metadata.buffer, record.metadata.offset, record.metadata.size)
	if err != nil {
		return err
	}

	indexBase := uint32(record.indices.offset / indexSize)
	for index, submesh := range spec.Submeshes {
		entry := mem[index*submeshRecordSize : (index+1)*submeshRecordSize]
		binary.LittleEndian.PutUint32(entry[0:], indexBase+submesh.IndexStart)
		binary.LittleEndian.PutUint32(entry[4:], submesh.IndexCount)
		binary.LittleEndian.PutUint32(entry[8:], submesh.VertCount)

		for attribute := 0; attribute < attributeCount; attribute++ {
			base := NoAttribute
			if allocation := record.attributes[attribute]; allocation != nil {
				base = uint32(allocation.offset/VertexAttribute(attribute).Stride()) + submesh.VertStart
			}
			binary.LittleEndian.PutUint32(entry[12+attribute*4:], base)
		}

		binary.LittleEndian.PutUint32(entry[28:], 0)
	}

	return nil
}

func (m *Manager) releaseRecord(record *meshRecord) {
	release := func(allocator *virtual.BlockAllocator, r region) {
		if r.size == 0 {
			return
		}
		err := allocator.Free(r.offset, r.size)
		if err != nil {
			m.logger.LogAttrs(context.Background(), slog.LevelError, "Failed to release mesh memory", slog.Any("error", err))
		}
	}

	for attribute, allocation := range record.attributes {
		if allocation != nil {
			release(m.attributes[attribute].allocator, *allocation)
		}
	}
	release(m.indices.allocator, record.indices)
	release(m.metadata.allocator, record.metadata)
	*record = meshRecord{}
}

// FreeMesh releases a mesh's regions once the current frame slot comes around again in the garbage bin
func (m *Manager) FreeMesh(h Mesh) error {
	record, err := m.meshes.Remove(h)
	if err != nil {
		return err
	}

	m.bin.PushDeferredDeletion(func() { m.releaseRecord(&record) })
	return nil
}

// AttributeBuffer returns the global descriptor index of the view over every mesh's data for attribute
func (m *Manager) AttributeBuffer(attribute VertexAttribute) (uint32, error) {
	if attribute < 0 || int(attribute) >= attributeCount || m.attributes[attribute] == nil {
		return 0, errors.Newf("this manager has no buffer for %s data", attribute)
	}

	return m.device.GlobalDescriptor(m.attributes[attribute].view)
}

// IndexBuffer is bound for indexed draws
func (m *Manager) IndexBuffer() rhi.Buffer { return m.indices.buffer }

func (m *Manager) SubmeshMetadataBuffer() (uint32, error) {
	return m.device.GlobalDescriptor(m.metadata.view)
}

func (m *Manager) submesh(h Mesh, submesh int) (*submeshStorage, error) {
	record, err := m.meshes.Get(h)
	if err != nil {
		return nil, err
	}

	if submesh < 0 || submesh >= len(record.submeshes) {
		return nil, errors.Newf("%s has %d submeshes, not %d", h, len(record.submeshes), submesh+1)
	}

	return &record.submeshes[submesh], nil
}

// SubmeshMetadataIndex is the index of a submesh's record in the metadata buffer
func (m *Manager) SubmeshMetadataIndex(h Mesh, submesh int) (uint32, error) {
	storage, err := m.submesh(h, submesh)
	if err != nil {
		return 0, err
	}

	return storage.globalIndex, nil
}

// SubmeshMetadata returns the submesh as it was given to LoadMesh
func (m *Manager) SubmeshMetadata(h Mesh, submesh int) (SubmeshMetadata, error) {
	storage, err := m.submesh(h, submesh)
	if err != nil {
		return SubmeshMetadata{}, err
	}

	return storage.metadata, nil
}

// IndexStart is the position of a submesh's first index in the shared index buffer
func (m *Manager) IndexStart(h Mesh, submesh int) (uint32, error) {
	record, err := m.meshes.Get(h)
	if err != nil {
		return 0, err
	}

	storage, err := m.submesh(h, submesh)
	if err != nil {
		return 0, err
	}

	return uint32(record.indices.offset/indexSize) + storage.metadata.IndexStart, nil
}

// Close waits for any outstanding load and releases the manager's buffers. Meshes that were never freed are
// logged.
func (m *Manager) Close(ctx context.Context) error {
	err := m.retireInflight(ctx)
	if err != nil {
		return err
	}

	m.meshes.Each(func(h Mesh, record *meshRecord) bool {
		m.logger.LogAttrs(ctx, slog.LevelError, "[UNRELEASED MESH] mesh was not freed before the manager was closed",
			slog.String("handle", h.String()),
			slog.Int("submeshes", len(record.submeshes)),
		)
		return true
	})
	m.meshes = handle.Table[Mesh, meshRecord]{}

	m.release()
	return nil
}

func (m *Manager) release() {
	freeDeviceLocal := func(target *deviceLocalBuffer) {
		if target.view != 0 {
			_ = m.device.FreeBufferView(target.view)
			target.view = 0
		}
		if target.buffer != 0 {
			_ = m.device.FreeBuffer(target.buffer)
			target.buffer = 0
		}
	}

	for _, target := range m.attributes {
		if target != nil {
			freeDeviceLocal(target)
		}
	}
	freeDeviceLocal(&m.indices)
	freeDeviceLocal(&m.metadata)

	if m.stagingBuffer != 0 {
		_ = m.device.Unmap(m.stagingBuffer)
		_ = m.device.FreeBuffer(m.stagingBuffer)
		m.stagingBuffer = 0
	}
}
