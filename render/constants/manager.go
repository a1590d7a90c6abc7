// Package constants manages shader constants in GPU memory. Transient constants are written once by the CPU
// and read once by the GPU; they are carved from a mapped upload ring and released through the garbage
// bin. Persistent constants live in device-local memory, are filled through staging copies, and rotate
// through a fixed number of versions so an upload never overwrites memory the GPU may be reading.
package constants

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/gogpu/gputypes"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/device"
	"github.com/vkngwrapper/rhi/garbage"
	"github.com/vkngwrapper/rhi/handle"
	"github.com/vkngwrapper/rhi/memory"
	"github.com/vkngwrapper/rhi/memutils"
	"github.com/vkngwrapper/rhi/memutils/virtual"
	"golang.org/x/exp/slices"
)

var (
	ErrImmutable     = errors.New("persistent constant is immutable")
	ErrUploadPending = errors.New("persistent constant already has an upload waiting for ExecuteCopies")
	ErrTooLarge      = errors.New("constant data is larger than its allocation")
	ErrEmptyUpload   = errors.New("upload contains no data")
)

// PersistentConstant names a constant that lives in device-local memory until it is freed
type PersistentConstant handle.Handle

func (c PersistentConstant) String() string {
	return "PersistentConstant(" + handle.Handle(c).String() + ")"
}

// copyRequest is a staged copy waiting for ExecuteCopies. It owns its bytes.
type copyRequest struct {
	data      []byte
	dstOffset int
}

type persistentRecord struct {
	version    int
	offset     int
	size       int
	view       rhi.BufferView
	descriptor uint32
	immutable  bool

	pending bool
	request copyRequest
}

type version struct {
	buffer    rhi.Buffer
	allocator *virtual.BlockAllocator

	stagingBuffer rhi.Buffer
	staging       *memory.Bump

	sync        rhi.SyncReceipt
	commandList rhi.CommandList
}

// Manager owns the constant buffers. It belongs to a single goroutine: the one driving the frame loop and
// the garbage bin it was created with.
type Manager struct {
	logger  *slog.Logger
	device  *device.Device
	bin     *garbage.Bin
	options Options

	transientBuffer rhi.Buffer
	transient       *memory.Ring

	versions       []version
	currentVersion int

	persistent  handle.Table[PersistentConstant, persistentRecord]
	requests    []PersistentConstant
	stagedBytes int
}

func New(logger *slog.Logger, dev *device.Device, bin *garbage.Bin, options Options) (*Manager, error) {
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}
	if dev == nil || bin == nil {
		return nil, errors.New("device and garbage bin must not be nil")
	}

	options = options.withDefaults()
	err := options.validate()
	if err != nil {
		return nil, err
	}

	m := &Manager{
		logger:  logger,
		device:  dev,
		bin:     bin,
		options: options,
	}

	err = m.init()
	if err != nil {
		m.release()
		return nil, err
	}

	m.logger.LogAttrs(context.Background(), slog.LevelDebug, "Constant manager created",
		slog.Int("versions", options.MaxVersions),
		slog.Int("quantum", options.Quantum),
		slog.Int("transientSize", options.TransientSize),
		slog.Int("persistentSize", options.PersistentSize),
	)

	return m, nil
}

func (m *Manager) init() error {
	var err error
	m.transientBuffer, err = m.device.CreateBuffer(rhi.BufferDesc{
		Label:  "transient constants",
		Size:   m.options.TransientSize,
		Usage:  gputypes.BufferUsageUniform,
		Memory: rhi.MemoryUpload,
	})
	if err != nil {
		return err
	}

	mapped, err := m.device.Map(m.transientBuffer)
	if err != nil {
		return err
	}

	m.transient, err = memory.NewRing(m.options.Quantum, m.options.TransientSize/m.options.Quantum, mapped)
	if err != nil {
		return err
	}

	m.versions = make([]version, m.options.MaxVersions)
	for index := range m.versions {
		v := &m.versions[index]

		v.buffer, err = m.device.CreateBuffer(rhi.BufferDesc{
			Label:        "persistent constants",
			Size:         m.options.PersistentSize,
			Usage:        gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
			Memory:       rhi.MemoryDefault,
			InitialState: rhi.StateVertexAndConstantBuffer,
		})
		if err != nil {
			return err
		}

		v.allocator, err = virtual.NewBlockAllocator(m.options.Quantum, m.options.PersistentSize/m.options.Quantum)
		if err != nil {
			return err
		}

		v.stagingBuffer, err = m.device.CreateBuffer(rhi.BufferDesc{
			Label:  "persistent constant staging",
			Size:   m.options.StagingSize,
			Usage:  gputypes.BufferUsageCopySrc,
			Memory: rhi.MemoryUpload,
		})
		if err != nil {
			return err
		}

		mapped, err := m.device.Map(v.stagingBuffer)
		if err != nil {
			return err
		}

		v.staging, err = memory.NewBump(m.options.StagingSize, mapped)
		if err != nil {
			return err
		}
	}

	return nil
}

// AllocateTransient returns writable memory for a constant of size bytes and the index of its view in the
// global descriptor table. The memory and view stay valid until the current frame slot comes around again
// in the garbage bin.
func (m *Manager) AllocateTransient(size int) ([]byte, uint32, error) {
	if size <= 0 {
		return nil, 0, errors.Wrapf(memutils.ErrInvalidSize, "transient constant of %d bytes", size)
	}
	if size > m.options.MaxConstantSize {
		return nil, 0, errors.Wrapf(ErrTooLarge, "transient constant of %d bytes exceeds the %d byte maximum", size, m.options.MaxConstantSize)
	}

	count := memutils.DivideRoundingUp(size, m.options.Quantum)
	mem, offset, reserved, err := m.transient.AllocateRun(count)
	if err != nil {
		return nil, 0, errors.Wrap(err, "transient constant ring is full")
	}

	view, err := m.device.CreateBufferView(m.transientBuffer, rhi.BufferViewDesc{
		Type:   rhi.ViewConstantBuffer,
		Offset: offset,
		Size:   count * m.options.Quantum,
	})
	if err != nil {
		// The ring is FIFO, so the elements can only be returned in order
		m.bin.PushDeferredDeletion(func() { m.popTransient(reserved) })
		return nil, 0, err
	}

	index, err := m.device.GlobalDescriptor(view)
	if err != nil {
		_ = m.device.FreeBufferView(view)
		m.bin.PushDeferredDeletion(func() { m.popTransient(reserved) })
		return nil, 0, err
	}

	m.bin.PushDeferredDeletion(func() {
		err := m.device.FreeBufferView(view)
		if err != nil {
			m.logger.LogAttrs(context.Background(), slog.LevelError, "Failed to free transient constant view", slog.Any("error", err))
		}
		m.popTransient(reserved)
	})

	return mem[:size:size], index, nil
}

func (m *Manager) popTransient(reserved int) {
	err := m.transient.PopRun(reserved)
	if err != nil {
		m.logger.LogAttrs(context.Background(), slog.LevelError, "Failed to release transient constant memory", slog.Any("error", err))
	}
}

// AllocatePersistent reserves size bytes of device-local constant memory. If init is not empty it is
// copied in by the next ExecuteCopies. Immutable constants reject Upload.
func (m *Manager) AllocatePersistent(size int, init []byte, immutable bool) (PersistentConstant, error) {
	if size <= 0 {
		return 0, errors.Wrapf(memutils.ErrInvalidSize, "persistent constant of %d bytes", size)
	}
	if size > m.options.MaxConstantSize {
		return 0, errors.Wrapf(ErrTooLarge, "persistent constant of %d bytes exceeds the %d byte maximum", size, m.options.MaxConstantSize)
	}
	if len(init) > size {
		return 0, errors.Wrapf(ErrTooLarge, "%d bytes of initial data for a %d byte constant", len(init), size)
	}

	if len(init) > 0 {
		err := m.checkStaging(len(init))
		if err != nil {
			return 0, err
		}
	}

	record := persistentRecord{
		size:      memutils.AlignUp(size, m.options.Quantum),
		immutable: immutable,
	}

	err := m.place(&record)
	if err != nil {
		return 0, err
	}

	if len(init) > 0 {
		m.queueCopy(&record, init)
	}

	h := m.persistent.Insert(record)
	if record.pending {
		m.requests = append(m.requests, h)
	}

	return h, nil
}

// Upload replaces the contents of a persistent constant. The data is copied into a fresh region of the
// current version when ExecuteCopies runs; the old region is released through the garbage bin, so frames
// in flight keep reading the old contents.
func (m *Manager) Upload(h PersistentConstant, data []byte) error {
	record, err := m.persistent.Get(h)
	if err != nil {
		return err
	}

	if record.immutable {
		return errors.Wrapf(ErrImmutable, "%s", h)
	}
	if record.pending {
		return errors.Wrapf(ErrUploadPending, "%s", h)
	}
	if len(data) == 0 {
		return errors.Wrapf(ErrEmptyUpload, "%s", h)
	}
	if len(data) > record.size {
		return errors.Wrapf(ErrTooLarge, "%d bytes uploaded to %s, which holds %d", len(data), h, record.size)
	}

	err = m.checkStaging(len(data))
	if err != nil {
		return err
	}

	replacement := *record
	err = m.place(&replacement)
	if err != nil {
		return err
	}

	m.retire(*record)
	m.queueCopy(&replacement, data)
	*record = replacement
	m.requests = append(m.requests, h)

	return nil
}

// FreePersistent releases a persistent constant through the garbage bin. A pending upload is dropped.
func (m *Manager) FreePersistent(h PersistentConstant) error {
	record, err := m.persistent.Remove(h)
	if err != nil {
		return err
	}

	if record.pending {
		m.stagedBytes -= memutils.AlignUp(len(record.request.data), stagingAlignment)
	}

	m.retire(record)
	return nil
}

// GlobalView returns the global descriptor index of a persistent constant's current region
func (m *Manager) GlobalView(h PersistentConstant) (uint32, error) {
	record, err := m.persistent.Get(h)
	if err != nil {
		return 0, err
	}

	return record.descriptor, nil
}

// PendingUploads is the number of persistent constants waiting for ExecuteCopies
func (m *Manager) PendingUploads() int {
	count := 0
	for _, h := range m.requests {
		record, err := m.persistent.Get(h)
		if err == nil && record.pending {
			count++
		}
	}
	return count
}

func (m *Manager) CurrentVersion() int { return m.currentVersion }

func (m *Manager) checkStaging(size int) error {
	needed := memutils.AlignUp(size, stagingAlignment)
	if m.stagedBytes+needed > m.options.StagingSize {
		return errors.Wrapf(memutils.ErrOutOfSpace, "%d bytes are already waiting for ExecuteCopies and staging holds %d", m.stagedBytes, m.options.StagingSize)
	}
	return nil
}

// place reserves record.size bytes in the current version and creates a view over them
func (m *Manager) place(record *persistentRecord) error {
	v := &m.versions[m.currentVersion]

	offset, err := v.allocator.Allocate(record.size)
	if err != nil {
		return errors.Wrapf(err, "constant version %d", m.currentVersion)
	}

	view, err := m.device.CreateBufferView(v.buffer, rhi.BufferViewDesc{
		Type:   rhi.ViewConstantBuffer,
		Offset: offset,
		Size:   record.size,
	})
	if err != nil {
		_ = v.allocator.Free(offset, record.size)
		return err
	}

	descriptor, err := m.device.GlobalDescriptor(view)
	if err != nil {
		_ = m.device.FreeBufferView(view)
		_ = v.allocator.Free(offset, record.size)
		return err
	}

	record.version = m.currentVersion
	record.offset = offset
	record.view = view
	record.descriptor = descriptor
	return nil
}

func (m *Manager) queueCopy(record *persistentRecord, data []byte) {
	record.pending = true
	record.request = copyRequest{
		data:      slices.Clone(data),
		dstOffset: record.offset,
	}
	m.stagedBytes += memutils.AlignUp(len(data), stagingAlignment)
}

// retire releases a record's region and view once the current frame slot comes around again
func (m *Manager) retire(record persistentRecord) {
	m.bin.PushDeferredDeletion(func() {
		err := m.device.FreeBufferView(record.view)
		if err != nil {
			m.logger.LogAttrs(context.Background(), slog.LevelError, "Failed to free persistent constant view", slog.Any("error", err))
		}

		err = m.versions[record.version].allocator.Free(record.offset, record.size)
		if err != nil {
			m.logger.LogAttrs(context.Background(), slog.LevelError, "Failed to release persistent constant memory",
				slog.Int("version", record.version),
				slog.Int("offset", record.offset),
				slog.Any("error", err),
			)
		}
	})
}

// ExecuteCopies records every queued upload into one command list and submits it on queue, waiting on
// readSync GPU-side first so that readers of this version on another queue have finished. Before staging,
// it blocks until the copies last submitted for the current version have completed, which is the only
// point staging memory is reused. The version then advances. A receipt for the copies is returned when
// generateSync is set; with nothing queued it returns rhi.NoSync and the version does not advance.
func (m *Manager) ExecuteCopies(ctx context.Context, readSync rhi.SyncReceipt, generateSync bool, queue rhi.QueueType) (rhi.SyncReceipt, error) {
	v := &m.versions[m.currentVersion]

	if v.sync != rhi.NoSync {
		err := m.device.WaitForGPU(ctx, v.sync)
		if err != nil {
			return rhi.NoSync, errors.Wrapf(err, "waiting for constant version %d", m.currentVersion)
		}
		v.sync = rhi.NoSync
	}

	v.staging.Clear()

	if v.commandList != 0 {
		err := m.device.RecycleCommandList(v.commandList)
		if err != nil {
			return rhi.NoSync, err
		}
		v.commandList = 0
	}

	var commands rhi.RenderCommandList
	var recorded []*persistentRecord
	for _, h := range m.requests {
		record, err := m.persistent.Get(h)
		if err != nil || !record.pending {
			// Freed since the upload was queued
			continue
		}

		if record.version != m.currentVersion {
			panic("persistent constant upload was queued for a version other than the current one")
		}

		staged, stagingOffset, err := v.staging.Allocate(len(record.request.data), stagingAlignment)
		if err != nil {
			return rhi.NoSync, errors.Wrap(err, "constant staging")
		}
		copy(staged, record.request.data)

		commands.Submit(rhi.CopyBuffer{
			Src:       v.stagingBuffer,
			SrcOffset: stagingOffset,
			Dst:       v.buffer,
			DstOffset: record.request.dstOffset,
			Size:      len(record.request.data),
		})
		recorded = append(recorded, record)
	}

	if commands.Empty() {
		m.requests = m.requests[:0]
		m.stagedBytes = 0
		return rhi.NoSync, nil
	}

	list, err := m.device.AllocateCommandList(queue)
	if err != nil {
		return rhi.NoSync, err
	}

	err = m.device.CompileCommandList(list, &commands)
	if err != nil {
		_ = m.device.RecycleCommandList(list)
		return rhi.NoSync, err
	}

	receipt, err := m.device.SubmitCommandLists([]rhi.CommandList{list}, queue, readSync, true)
	if err != nil {
		_ = m.device.RecycleCommandList(list)
		return rhi.NoSync, err
	}

	for _, record := range recorded {
		record.pending = false
		record.request = copyRequest{}
	}
	clear(m.requests)
	m.requests = m.requests[:0]
	m.stagedBytes = 0

	v.sync = receipt
	v.commandList = list

	m.logger.LogAttrs(ctx, slog.LevelDebug, "Executed constant copies",
		slog.Int("version", m.currentVersion),
		slog.Int("copies", len(recorded)),
		slog.Int("stagingBytes", v.staging.Metadata().Head()),
	)

	m.currentVersion = (m.currentVersion + 1) % len(m.versions)

	if !generateSync {
		return rhi.NoSync, nil
	}

	// The version keeps its own receipt, so the caller's is a separate marker submitted behind the copies
	return m.device.SubmitCommandLists(nil, queue, rhi.NoSync, true)
}

// Close waits for every version's outstanding copies and releases the manager's buffers. The garbage bin
// should be flushed first so that deferred releases do not outlive the manager. Constants that were never
// freed are logged and released.
func (m *Manager) Close(ctx context.Context) error {
	var result error

	for index := range m.versions {
		v := &m.versions[index]

		if v.sync != rhi.NoSync {
			err := m.device.WaitForGPU(ctx, v.sync)
			if err != nil {
				return errors.Wrapf(err, "waiting for constant version %d", index)
			}
			v.sync = rhi.NoSync
		}

		if v.commandList != 0 {
			result = errors.CombineErrors(result, m.device.RecycleCommandList(v.commandList))
			v.commandList = 0
		}
	}

	m.persistent.Each(func(h PersistentConstant, record *persistentRecord) bool {
		m.logger.LogAttrs(ctx, slog.LevelError, "[UNRELEASED CONSTANT] persistent constant was not freed before the manager was closed",
			slog.String("handle", h.String()),
			slog.Int("size", record.size),
		)
		result = errors.CombineErrors(result, m.device.FreeBufferView(record.view))
		return true
	})
	m.persistent = handle.Table[PersistentConstant, persistentRecord]{}
	m.requests = nil

	m.release()
	return result
}

func (m *Manager) release() {
	freeMapped := func(buffer rhi.Buffer) {
		if buffer == 0 {
			return
		}
		_ = m.device.Unmap(buffer)
		err := m.device.FreeBuffer(buffer)
		if err != nil {
			m.logger.LogAttrs(context.Background(), slog.LevelError, "Failed to free constant buffer", slog.Any("error", err))
		}
	}

	freeMapped(m.transientBuffer)
	m.transientBuffer = 0

	for index := range m.versions {
		v := &m.versions[index]
		if v.buffer != 0 {
			err := m.device.FreeBuffer(v.buffer)
			if err != nil {
				m.logger.LogAttrs(context.Background(), slog.LevelError, "Failed to free constant buffer", slog.Any("error", err))
			}
			v.buffer = 0
		}
		freeMapped(v.stagingBuffer)
		v.stagingBuffer = 0
	}
}
