// Package device is the front end of the runtime. It hands out typed handles for native objects created by
// a driver, owns their lifetimes, and implements the command list life cycle: allocate, compile, submit,
// wait and recycle.
package device

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/driver"
	"github.com/vkngwrapper/rhi/handle"
	"github.com/vkngwrapper/rhi/internal/utils"
)

// CreateFlags indicate specific device behaviors to activate or deactivate
type CreateFlags int32

var deviceCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	deviceCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return deviceCreateFlagsMapping.FlagsToString(f)
}

const (
	// CreateExternallySynchronized ensures that the device will not be synchronized internally. The consumer
	// must guarantee it is used from only one goroutine at a time or is synchronized by some other mechanism.
	CreateExternallySynchronized CreateFlags = 1 << iota
)

func init() {
	CreateExternallySynchronized.Register("CreateExternallySynchronized")
}

// CreateOptions contains optional settings when creating a device
type CreateOptions struct {
	// Flags indicates specific device behaviors to activate or deactivate
	Flags CreateFlags
}

type bufferRecord struct {
	native   driver.Buffer
	desc     rhi.BufferDesc
	mapped   []byte
	mapCount int
}

type textureRecord struct {
	native driver.Texture
	desc   rhi.TextureDesc
}

type bufferViewRecord struct {
	native driver.View
	buffer rhi.Buffer
	desc   rhi.BufferViewDesc
}

type textureViewRecord struct {
	native  driver.View
	texture rhi.Texture
	desc    rhi.TextureViewDesc
}

type pipelineRecord struct {
	native driver.Pipeline
	label  string
}

type renderPassRecord struct {
	native driver.RenderPass
	label  string
}

type commandListRecord struct {
	queue  rhi.QueueType
	buffer driver.CommandBuffer
	state  CommandListState
	serial uint64
}

type syncRecord struct {
	fence   driver.Fence
	queue   rhi.QueueType
	serial  uint64
	waiters []queueSerial
}

// queueSerial names a batch that waits on a fence from another submission
type queueSerial struct {
	queue  rhi.QueueType
	serial uint64
}

// retiringFence has been waited on by the CPU but still has batches queued behind it
type retiringFence struct {
	fence   driver.Fence
	waiters []queueSerial
}

// Device owns every object created through it. It is safe for concurrent use unless created with
// CreateExternallySynchronized.
type Device struct {
	id     uuid.UUID
	logger *slog.Logger
	driver driver.Driver
	mutex  utils.OptionalRWMutex

	handles      *handle.Allocator
	buffers      handle.Table[rhi.Buffer, bufferRecord]
	textures     handle.Table[rhi.Texture, textureRecord]
	bufferViews  handle.Table[rhi.BufferView, bufferViewRecord]
	textureViews handle.Table[rhi.TextureView, textureViewRecord]
	pipelines    handle.Table[rhi.Pipeline, pipelineRecord]
	renderPasses handle.Table[rhi.RenderPass, renderPassRecord]
	commandLists handle.Table[rhi.CommandList, commandListRecord]
	syncs        handle.Table[rhi.SyncReceipt, syncRecord]

	queues             [rhi.QueueTypeCount]driver.Queue
	commandBufferPools [rhi.QueueTypeCount][]driver.CommandBuffer
	fencePool          []driver.Fence
	retiringFences     []retiringFence
}

// New creates a device on top of drv. The device takes ownership of drv and destroys it in Destroy.
func New(logger *slog.Logger, drv driver.Driver, options CreateOptions) (*Device, error) {
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}
	if drv == nil {
		return nil, errors.New("driver must not be nil")
	}

	d := &Device{
		id:     uuid.New(),
		driver: drv,
		mutex: utils.OptionalRWMutex{
			UseMutex: options.Flags&CreateExternallySynchronized == 0,
		},
	}
	d.logger = logger.With(slog.String("device.id", d.id.String()))

	d.handles = handle.NewAllocator()
	d.buffers = handle.NewTable[rhi.Buffer, bufferRecord](d.handles)
	d.textures = handle.NewTable[rhi.Texture, textureRecord](d.handles)
	d.bufferViews = handle.NewTable[rhi.BufferView, bufferViewRecord](d.handles)
	d.textureViews = handle.NewTable[rhi.TextureView, textureViewRecord](d.handles)
	d.pipelines = handle.NewTable[rhi.Pipeline, pipelineRecord](d.handles)
	d.renderPasses = handle.NewTable[rhi.RenderPass, renderPassRecord](d.handles)
	d.commandLists = handle.NewTable[rhi.CommandList, commandListRecord](d.handles)
	d.syncs = handle.NewTable[rhi.SyncReceipt, syncRecord](d.handles)

	d.logger.LogAttrs(context.Background(), slog.LevelDebug, "Device created",
		slog.String("driver", drv.Name()),
		slog.String("flags", options.Flags.String()),
	)

	return d, nil
}

func (d *Device) ID() uuid.UUID { return d.id }

func (d *Device) Logger() *slog.Logger { return d.logger }

func validQueue(queue rhi.QueueType) error {
	if queue < 0 || int(queue) >= rhi.QueueTypeCount {
		return errors.Newf("unknown queue type %d", queue)
	}
	return nil
}

// queue must be called with the write lock held
func (d *Device) queue(queueType rhi.QueueType) (driver.Queue, error) {
	err := validQueue(queueType)
	if err != nil {
		return nil, err
	}

	if d.queues[queueType] == nil {
		queue, err := d.driver.Queue(queueType)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to retrieve the %s queue", queueType)
		}
		d.queues[queueType] = queue
	}

	return d.queues[queueType], nil
}

// Flush blocks until every queue has finished all work submitted before the call
func (d *Device) Flush(ctx context.Context) error {
	d.mutex.Lock()
	queues := d.queues
	d.mutex.Unlock()

	for _, queue := range queues {
		if queue == nil {
			continue
		}

		err := queue.Flush(ctx)
		if err != nil {
			return errors.Wrapf(err, "failed to flush the %s queue", queue.Type())
		}
	}

	return nil
}

// Destroy releases every native object still owned by the device, logging each one that was never freed,
// and destroys the driver. The GPU must be idle.
func (d *Device) Destroy() error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	leaks := 0
	logLeak := func(kind string, h handle.Handle, label string) {
		leaks++
		d.logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED RESOURCE] object was not freed before device destruction",
			slog.String("kind", kind),
			slog.String("handle", h.String()),
			slog.String("label", label),
		)
	}

	d.bufferViews.Each(func(h rhi.BufferView, record *bufferViewRecord) bool {
		logLeak("BufferView", handle.Handle(h), record.desc.Type.String())
		record.native.Destroy()
		return true
	})
	d.textureViews.Each(func(h rhi.TextureView, record *textureViewRecord) bool {
		logLeak("TextureView", handle.Handle(h), record.desc.Type.String())
		record.native.Destroy()
		return true
	})
	d.buffers.Each(func(h rhi.Buffer, record *bufferRecord) bool {
		logLeak("Buffer", handle.Handle(h), record.desc.Label)
		if record.mapCount > 0 {
			_ = record.native.Unmap()
		}
		record.native.Destroy()
		return true
	})
	d.textures.Each(func(h rhi.Texture, record *textureRecord) bool {
		logLeak("Texture", handle.Handle(h), record.desc.Label)
		record.native.Destroy()
		return true
	})
	d.pipelines.Each(func(h rhi.Pipeline, record *pipelineRecord) bool {
		logLeak("Pipeline", handle.Handle(h), record.label)
		record.native.Destroy()
		return true
	})
	d.renderPasses.Each(func(h rhi.RenderPass, record *renderPassRecord) bool {
		logLeak("RenderPass", handle.Handle(h), record.label)
		record.native.Destroy()
		return true
	})
	d.commandLists.Each(func(h rhi.CommandList, record *commandListRecord) bool {
		logLeak("CommandList", handle.Handle(h), record.queue.String())
		record.buffer.Destroy()
		return true
	})
	d.syncs.Each(func(h rhi.SyncReceipt, record *syncRecord) bool {
		// Receipts nobody waited on are common for fire-and-forget submissions
		record.fence.Destroy()
		return true
	})

	for queue := range d.commandBufferPools {
		for _, buffer := range d.commandBufferPools[queue] {
			buffer.Destroy()
		}
		d.commandBufferPools[queue] = nil
	}

	for _, fence := range d.fencePool {
		fence.Destroy()
	}
	d.fencePool = nil

	for _, retiring := range d.retiringFences {
		retiring.fence.Destroy()
	}
	d.retiringFences = nil

	d.buffers = handle.Table[rhi.Buffer, bufferRecord]{}
	d.textures = handle.Table[rhi.Texture, textureRecord]{}
	d.bufferViews = handle.Table[rhi.BufferView, bufferViewRecord]{}
	d.textureViews = handle.Table[rhi.TextureView, textureViewRecord]{}
	d.pipelines = handle.Table[rhi.Pipeline, pipelineRecord]{}
	d.renderPasses = handle.Table[rhi.RenderPass, renderPassRecord]{}
	d.commandLists = handle.Table[rhi.CommandList, commandListRecord]{}
	d.syncs = handle.Table[rhi.SyncReceipt, syncRecord]{}
	d.queues = [rhi.QueueTypeCount]driver.Queue{}

	d.driver.Destroy()

	if leaks > 0 {
		return errors.Newf("%d objects were not freed before the destruction of this device", leaks)
	}

	return nil
}
