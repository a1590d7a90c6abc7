// Package soft is a driver that executes command buffers on the CPU. Queues run on their own goroutines,
// buffers live in host memory and views occupy slots of a descriptor table, so the device front end and
// the managers can be exercised end to end without a GPU.
package soft

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/rhi"
	"github.com/vkngwrapper/rhi/driver"
	"github.com/vkngwrapper/rhi/memory"
	"github.com/vkngwrapper/rhi/memutils"
	"golang.org/x/exp/slices"
)

const (
	defaultMaxDescriptors int = 4096
	defaultQueueDepth     int = 64
)

// DefaultHeapClasses back small buffers. Buffers that do not fit get their own allocation.
var DefaultHeapClasses = []memory.BlockSpec{
	{BlockSize: 256, BlockCount: 1024},
	{BlockSize: 64 * 1024, BlockCount: 64},
}

// Options contains optional settings when creating a driver
type Options struct {
	// ManualExecution leaves submitted batches pending until Step is called, so tests control GPU progress
	ManualExecution bool
	// MaxDescriptors is the size of the global descriptor table
	MaxDescriptors int
	// HeapClasses are the size classes of the pooled host heap buffers are placed in
	HeapClasses []memory.BlockSpec
}

// Event is one command as it was executed by a queue
type Event struct {
	Queue     rhi.QueueType
	Serial    uint64
	Command   rhi.CommandType
	Label     string
	Constants []uint32
}

type Driver struct {
	id      uuid.UUID
	logger  *slog.Logger
	options Options

	ctx    context.Context
	cancel context.CancelFunc

	heapMutex sync.Mutex
	heap      *memory.Pool

	descriptors *descriptorTable
	queues      [rhi.QueueTypeCount]*queue
	workers     sync.WaitGroup

	eventMutex sync.Mutex
	events     []Event
	errs       error
}

var _ driver.Driver = &Driver{}

func New(logger *slog.Logger, options Options) (*Driver, error) {
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}

	if options.MaxDescriptors == 0 {
		options.MaxDescriptors = defaultMaxDescriptors
	}
	if len(options.HeapClasses) == 0 {
		options.HeapClasses = DefaultHeapClasses
	}

	heap, err := memory.NewPool(options.HeapClasses...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create the host heap")
	}

	d := &Driver{
		id:          uuid.New(),
		options:     options,
		heap:        heap,
		descriptors: newDescriptorTable(options.MaxDescriptors),
	}
	d.logger = logger.With(slog.String("driver.id", d.id.String()))
	d.ctx, d.cancel = context.WithCancel(context.Background())

	for queueType := range d.queues {
		d.queues[queueType] = newQueue(d, rhi.QueueType(queueType))
	}

	d.logger.LogAttrs(context.Background(), slog.LevelDebug, "Software driver created",
		slog.Bool("manual", options.ManualExecution),
		slog.Int("descriptors", options.MaxDescriptors),
	)

	return d, nil
}

func (d *Driver) Name() string { return "soft" }

func (d *Driver) ID() uuid.UUID { return d.id }

func (d *Driver) CreateBuffer(desc rhi.BufferDesc) (driver.Buffer, error) {
	b := &buffer{driver: d, desc: desc}

	d.heapMutex.Lock()
	data, err := d.heap.Allocate(desc.Size)
	d.heapMutex.Unlock()

	switch {
	case err == nil:
		clear(data)
		b.data = data
		b.pooled = true
	case errors.Is(err, memutils.ErrOutOfSpace):
		b.data = make([]byte, desc.Size)
	default:
		return nil, err
	}

	return b, nil
}

func (d *Driver) releaseHeap(data []byte) {
	d.heapMutex.Lock()
	defer d.heapMutex.Unlock()

	err := d.heap.Free(data)
	if err != nil {
		d.logger.LogAttrs(context.Background(), slog.LevelError, "Failed to release buffer memory", slog.Any("error", err))
	}
}

func (d *Driver) CreateTexture(desc rhi.TextureDesc) (driver.Texture, error) {
	t := &texture{desc: desc, bytesPerPixel: formatSize(desc.Format)}

	for mip := uint32(0); mip < desc.MipLevels; mip++ {
		width, height := mipExtent(desc, mip)
		t.mips = append(t.mips, make([]byte, int(width*height*desc.Size.DepthOrArrayLayers)*t.bytesPerPixel))
	}

	return t, nil
}

func (d *Driver) CreateBufferView(nativeBuffer driver.Buffer, desc rhi.BufferViewDesc) (driver.View, error) {
	b, ok := nativeBuffer.(*buffer)
	if !ok {
		return nil, errors.Newf("buffer of type %T does not belong to the software driver", nativeBuffer)
	}

	v := &view{driver: d, buffer: b, bufferDesc: desc, bindless: desc.Type.Bindless()}
	if v.bindless {
		index, err := d.descriptors.acquire(v)
		if err != nil {
			return nil, err
		}
		v.index = index
	}

	return v, nil
}

func (d *Driver) CreateTextureView(nativeTexture driver.Texture, desc rhi.TextureViewDesc) (driver.View, error) {
	t, ok := nativeTexture.(*texture)
	if !ok {
		return nil, errors.Newf("texture of type %T does not belong to the software driver", nativeTexture)
	}

	v := &view{driver: d, texture: t, textureDesc: desc, bindless: desc.Type.Bindless()}
	if v.bindless {
		index, err := d.descriptors.acquire(v)
		if err != nil {
			return nil, err
		}
		v.index = index
	}

	return v, nil
}

func (d *Driver) CreateGraphicsPipeline(desc rhi.GraphicsPipelineDesc) (driver.Pipeline, error) {
	return &pipeline{label: desc.Label}, nil
}

func (d *Driver) CreateRenderPass(desc driver.RenderPassDesc) (driver.RenderPass, error) {
	for _, target := range desc.RenderTargets {
		if _, ok := target.View.(*view); !ok {
			return nil, errors.Newf("view of type %T does not belong to the software driver", target.View)
		}
	}

	return &renderPass{label: desc.Label, targets: len(desc.RenderTargets)}, nil
}

func (d *Driver) CreateFence() (driver.Fence, error) {
	return newFence(), nil
}

func (d *Driver) CreateCommandBuffer(queueType rhi.QueueType) (driver.CommandBuffer, error) {
	if queueType < 0 || int(queueType) >= rhi.QueueTypeCount {
		return nil, errors.Newf("unknown queue type %d", queueType)
	}

	return &commandBuffer{driver: d, queue: queueType}, nil
}

func (d *Driver) Queue(queueType rhi.QueueType) (driver.Queue, error) {
	if queueType < 0 || int(queueType) >= rhi.QueueTypeCount {
		return nil, errors.Newf("unknown queue type %d", queueType)
	}

	return d.queues[queueType], nil
}

// Destroy stops the queue goroutines. Batches that have not started are dropped.
func (d *Driver) Destroy() {
	d.cancel()
	for _, q := range d.queues {
		q.stop()
	}
	d.workers.Wait()

	d.logger.LogAttrs(context.Background(), slog.LevelDebug, "Software driver destroyed")
}

// Step executes up to count pending batches on a queue created with ManualExecution, and returns how many
// ran. It stops early at a batch whose wait fence is not yet signaled.
func (d *Driver) Step(queueType rhi.QueueType, count int) int {
	return d.queues[queueType].step(count)
}

// StepAll executes pending batches on every queue until none can make progress
func (d *Driver) StepAll() int {
	total := 0
	for {
		progress := 0
		for _, q := range d.queues {
			progress += q.step(-1)
		}
		if progress == 0 {
			return total
		}
		total += progress
	}
}

// Pending is the number of batches waiting for Step on a queue
func (d *Driver) Pending(queueType rhi.QueueType) int {
	return d.queues[queueType].pendingCount()
}

// Executed returns every command executed so far, in execution order
func (d *Driver) Executed() []Event {
	d.eventMutex.Lock()
	defer d.eventMutex.Unlock()

	return slices.Clone(d.events)
}

func (d *Driver) ResetExecuted() {
	d.eventMutex.Lock()
	defer d.eventMutex.Unlock()

	d.events = nil
}

// Err returns every error hit while executing batches. Execution errors cannot be returned from Execute
// because batches run asynchronously.
func (d *Driver) Err() error {
	d.eventMutex.Lock()
	defer d.eventMutex.Unlock()

	return d.errs
}

func (d *Driver) record(event Event) {
	d.eventMutex.Lock()
	defer d.eventMutex.Unlock()

	d.events = append(d.events, event)
}

func (d *Driver) executionError(err error) {
	d.logger.LogAttrs(context.Background(), slog.LevelError, "Command failed during execution", slog.Any("error", err))

	d.eventMutex.Lock()
	defer d.eventMutex.Unlock()

	d.errs = errors.CombineErrors(d.errs, err)
}

// ReadDescriptor returns a copy of the memory behind a slot of the global descriptor table. For texture
// views it is the view's base mip.
func (d *Driver) ReadDescriptor(index uint32) ([]byte, error) {
	v, ok := d.descriptors.lookup(index)
	if !ok {
		return nil, errors.Newf("descriptor %d is not in use", index)
	}

	if v.buffer != nil {
		return slices.Clone(v.buffer.data[v.bufferDesc.Offset : v.bufferDesc.Offset+v.bufferDesc.Size]), nil
	}

	return slices.Clone(v.texture.mips[v.textureDesc.BaseMip]), nil
}

// DescriptorsInUse is the number of occupied descriptor table slots
func (d *Driver) DescriptorsInUse() int {
	return d.descriptors.inUse()
}
