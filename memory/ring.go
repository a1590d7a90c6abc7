package memory

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/rhi/memutils/virtual"
)

// Ring is a FIFO of fixed-size elements over a byte region
type Ring struct {
	metadata *virtual.RingBuffer
	memory   []byte
}

// NewRing creates a ring of elementCount elements of elementSize bytes. If memory is nil the region is
// allocated, otherwise memory is used and must be large enough.
func NewRing(elementSize, elementCount int, memory []byte) (*Ring, error) {
	metadata, err := virtual.NewRingBuffer(elementSize, elementCount)
	if err != nil {
		return nil, err
	}

	size := metadata.Size()
	if memory == nil {
		memory = make([]byte, size)
	} else if len(memory) < size {
		return nil, cerrors.Newf("ring of %d bytes was given only %d bytes of memory", size, len(memory))
	}

	return &Ring{
		metadata: metadata,
		memory:   memory[:size:size],
	}, nil
}

// Allocate reserves one element and returns its memory and byte offset
func (r *Ring) Allocate() ([]byte, int, error) {
	offset, err := r.metadata.Allocate()
	if err != nil {
		return nil, 0, err
	}

	end := offset + r.metadata.ElementSize()
	return r.memory[offset:end:end], offset, nil
}

// AllocateRun reserves count contiguous elements. reserved includes any padding skipped at the end of the
// ring and is the count to hand back to PopRun.
func (r *Ring) AllocateRun(count int) (mem []byte, offset int, reserved int, err error) {
	offset, reserved, err = r.metadata.AllocateRun(count)
	if err != nil {
		return nil, 0, 0, err
	}

	end := offset + count*r.metadata.ElementSize()
	return r.memory[offset:end:end], offset, reserved, nil
}

// Pop releases the oldest element
func (r *Ring) Pop() error {
	_, err := r.metadata.Pop()
	return err
}

// PopRun releases the oldest count elements
func (r *Ring) PopRun(count int) error {
	return r.metadata.PopRun(count)
}

func (r *Ring) ElementSize() int              { return r.metadata.ElementSize() }
func (r *Ring) Memory() []byte                { return r.memory }
func (r *Ring) Metadata() *virtual.RingBuffer { return r.metadata }
