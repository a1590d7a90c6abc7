package virtual

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/rhi/memutils"
)

// RingBuffer is a FIFO of fixed-size elements. Elements are allocated at the head and released from the
// tail. The full flag distinguishes a full ring from an empty one when head and tail coincide.
type RingBuffer struct {
	metadataBase

	elementSize  int
	elementCount int

	head int
	tail int
	full bool
}

var _ Metadata = &RingBuffer{}

func NewRingBuffer(elementSize, elementCount int) (*RingBuffer, error) {
	if elementSize <= 0 {
		return nil, cerrors.Newf("element size must be greater than zero, but was %d", elementSize)
	}
	if elementCount <= 0 {
		return nil, cerrors.Newf("element count must be greater than zero, but was %d", elementCount)
	}

	return &RingBuffer{
		metadataBase: metadataBase{size: elementSize * elementCount},
		elementSize:  elementSize,
		elementCount: elementCount,
	}, nil
}

func (r *RingBuffer) ElementSize() int  { return r.elementSize }
func (r *RingBuffer) ElementCount() int { return r.elementCount }
func (r *RingBuffer) IsEmpty() bool     { return !r.full && r.head == r.tail }
func (r *RingBuffer) IsFull() bool      { return r.full }
func (r *RingBuffer) SumFreeSize() int  { return (r.elementCount - r.Len()) * r.elementSize }

// Len is the number of occupied elements
func (r *RingBuffer) Len() int {
	if r.full {
		return r.elementCount
	}

	return (r.head - r.tail + r.elementCount) % r.elementCount
}

// Allocate reserves the element at the head and returns its byte offset
func (r *RingBuffer) Allocate() (int, error) {
	if r.full {
		return 0, cerrors.Wrapf(memutils.ErrOutOfSpace, "all %d elements of the ring are in use", r.elementCount)
	}

	offset := r.head * r.elementSize
	r.head = (r.head + 1) % r.elementCount
	r.full = r.head == r.tail

	return offset, nil
}

// Pop releases the element at the tail and returns its byte offset
func (r *RingBuffer) Pop() (int, error) {
	if r.IsEmpty() {
		return 0, cerrors.Wrap(memutils.ErrEmpty, "pop from an empty ring")
	}

	offset := r.tail * r.elementSize
	r.tail = (r.tail + 1) % r.elementCount
	r.full = false

	return offset, nil
}

// AllocateRun reserves count contiguous elements and returns the byte offset of the first one. When the run
// would straddle the end of the ring, the elements up to the end are consumed as padding and the run starts
// at offset 0. The returned reserved count includes that padding and is what must be passed to PopRun.
func (r *RingBuffer) AllocateRun(count int) (offset int, reserved int, err error) {
	if count <= 0 {
		return 0, 0, cerrors.Wrapf(memutils.ErrInvalidSize, "requested %d elements", count)
	}
	if count > r.elementCount {
		return 0, 0, cerrors.Wrapf(memutils.ErrOutOfSpace, "requested %d elements from a ring of %d", count, r.elementCount)
	}

	if r.IsEmpty() {
		r.head = 0
		r.tail = 0
	}

	padding := 0
	if r.head+count > r.elementCount {
		padding = r.elementCount - r.head
	}

	reserved = padding + count
	free := r.elementCount - r.Len()
	if reserved > free {
		return 0, 0, cerrors.Wrapf(memutils.ErrOutOfSpace, "requested %d elements (%d with padding) but only %d are free", count, reserved, free)
	}

	start := (r.head + padding) % r.elementCount
	r.head = (r.head + reserved) % r.elementCount
	r.full = r.head == r.tail

	return start * r.elementSize, reserved, nil
}

// PopRun releases count elements from the tail
func (r *RingBuffer) PopRun(count int) error {
	if count <= 0 {
		return cerrors.Wrapf(memutils.ErrInvalidSize, "popped %d elements", count)
	}
	if count > r.Len() {
		return cerrors.Wrapf(memutils.ErrEmpty, "popped %d elements but only %d are in use", count, r.Len())
	}

	r.tail = (r.tail + count) % r.elementCount
	r.full = false

	return nil
}

func (r *RingBuffer) Validate() error {
	if r.head < 0 || r.head >= r.elementCount {
		return errors.Errorf("head %d is outside of the ring's %d elements", r.head, r.elementCount)
	}

	if r.tail < 0 || r.tail >= r.elementCount {
		return errors.Errorf("tail %d is outside of the ring's %d elements", r.tail, r.elementCount)
	}

	if r.full && r.head != r.tail {
		return errors.Errorf("ring is marked full but head %d and tail %d differ", r.head, r.tail)
	}

	return nil
}

// VisitAllRegions reports the occupied elements as a single allocation per contiguous span
func (r *RingBuffer) VisitAllRegions(handleRegion func(offset int, size int, free bool) error) error {
	type region struct {
		start, end int
		free       bool
	}

	var regions []region
	switch {
	case r.full:
		regions = append(regions, region{0, r.elementCount, false})
	case r.head == r.tail:
		regions = append(regions, region{0, r.elementCount, true})
	case r.tail < r.head:
		regions = append(regions,
			region{0, r.tail, true},
			region{r.tail, r.head, false},
			region{r.head, r.elementCount, true})
	default:
		regions = append(regions,
			region{0, r.head, false},
			region{r.head, r.tail, true},
			region{r.tail, r.elementCount, false})
	}

	for _, reg := range regions {
		if reg.end <= reg.start {
			continue
		}

		err := handleRegion(reg.start*r.elementSize, (reg.end-reg.start)*r.elementSize, reg.free)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *RingBuffer) AddStatistics(stats *memutils.Statistics) {
	stats.BlockCount++
	stats.BlockBytes += r.size
	stats.AllocationCount += r.Len()
	stats.AllocationBytes += r.Len() * r.elementSize
}

// AddDetailedStatistics counts every occupied element as its own allocation
func (r *RingBuffer) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.BlockCount++
	stats.BlockBytes += r.size

	used := r.Len()
	if used > 0 {
		stats.AllocationCount += used
		stats.AllocationBytes += used * r.elementSize
		if r.elementSize < stats.AllocationSizeMin {
			stats.AllocationSizeMin = r.elementSize
		}
		if r.elementSize > stats.AllocationSizeMax {
			stats.AllocationSizeMax = r.elementSize
		}
	}

	_ = r.VisitAllRegions(func(offset int, size int, free bool) error {
		if free {
			stats.AddUnusedRange(size)
		}
		return nil
	})
}

func (r *RingBuffer) BlockJsonData(json jwriter.ObjectState) {
	var unusedRanges int
	_ = r.VisitAllRegions(func(offset int, size int, free bool) error {
		if free {
			unusedRanges++
		}
		return nil
	})

	r.writeBlockJson(json, "Ring", r.SumFreeSize(), r.Len(), unusedRanges)
	json.Name("ElementSize").Int(r.elementSize)
	json.Name("Head").Int(r.head)
	json.Name("Tail").Int(r.tail)
}
