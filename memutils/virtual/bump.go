package virtual

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/rhi/memutils"
)

// BumpAllocator hands out monotonically increasing offsets. Individual allocations cannot be freed; the
// whole allocator is reset with Clear. Its used prefix is reported as a single allocation in statistics.
type BumpAllocator struct {
	metadataBase

	head            int
	peak            int
	allocationCount int
}

var _ Metadata = &BumpAllocator{}

func NewBumpAllocator(size int) (*BumpAllocator, error) {
	if size <= 0 {
		return nil, cerrors.Newf("bump allocator size must be greater than zero, but was %d", size)
	}

	return &BumpAllocator{
		metadataBase: metadataBase{size: size},
	}, nil
}

// Head is the offset the next unaligned allocation would start at
func (a *BumpAllocator) Head() int { return a.head }

// Peak is the highest head reached since the allocator was created
func (a *BumpAllocator) Peak() int { return a.peak }

func (a *BumpAllocator) AllocationCount() int { return a.allocationCount }
func (a *BumpAllocator) IsEmpty() bool        { return a.head == 0 }
func (a *BumpAllocator) SumFreeSize() int     { return a.size - a.head }

// Allocate advances the head past size bytes starting at the next multiple of alignment, and returns the
// aligned offset. A wrapped memutils.ErrOutOfSpace is returned if the allocation would pass the end.
func (a *BumpAllocator) Allocate(size int, alignment int) (int, error) {
	if size <= 0 {
		return 0, cerrors.Wrapf(memutils.ErrInvalidSize, "requested %d bytes", size)
	}
	if alignment < 0 {
		return 0, cerrors.Newf("alignment must not be negative, but was %d", alignment)
	}

	offset := memutils.AlignUp(a.head, alignment)
	if offset+size > a.size {
		return 0, cerrors.Wrapf(memutils.ErrOutOfSpace, "requested %d bytes at offset %d in a %d byte allocator", size, offset, a.size)
	}

	a.head = offset + size
	a.allocationCount++
	if a.head > a.peak {
		a.peak = a.head
	}

	return offset, nil
}

// Clear resets the head to 0
func (a *BumpAllocator) Clear() {
	a.head = 0
	a.allocationCount = 0
}

func (a *BumpAllocator) Validate() error {
	if a.head < 0 || a.head > a.size {
		return errors.Errorf("head %d is outside of the allocator's %d bytes", a.head, a.size)
	}

	if a.head == 0 && a.allocationCount != 0 {
		return errors.Errorf("allocator is empty but records %d allocations", a.allocationCount)
	}

	if a.peak < a.head {
		return errors.Errorf("peak %d is below head %d", a.peak, a.head)
	}

	return nil
}

func (a *BumpAllocator) VisitAllRegions(handleRegion func(offset int, size int, free bool) error) error {
	if a.head > 0 {
		err := handleRegion(0, a.head, false)
		if err != nil {
			return err
		}
	}

	if a.head < a.size {
		return handleRegion(a.head, a.size-a.head, true)
	}

	return nil
}

func (a *BumpAllocator) AddStatistics(stats *memutils.Statistics) {
	stats.BlockCount++
	stats.BlockBytes += a.size
	if a.head > 0 {
		stats.AllocationCount++
		stats.AllocationBytes += a.head
	}
}

func (a *BumpAllocator) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	detailedStatisticsFromRegions(a, stats)
}

func (a *BumpAllocator) BlockJsonData(json jwriter.ObjectState) {
	blockJsonFromRegions(a, json, "Bump", &a.metadataBase)
	json.Name("Peak").Int(a.peak)
}
