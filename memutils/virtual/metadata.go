package virtual

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/rhi/memutils"
)

// Metadata is the bookkeeping side of an allocator: it hands out offsets into a region of Size() bytes
// without ever touching the memory itself. The memory package pairs a Metadata implementation with real
// bytes; the GPU constant and mesh managers pair one with a device-local buffer.
type Metadata interface {
	// Size retrieves the number of bytes the allocator manages
	Size() int
	// Validate performs internal consistency checks. When the implementation is functioning correctly it
	// should not be possible for this method to return an error.
	Validate() error
	// IsEmpty returns true if there are no live allocations
	IsEmpty() bool
	// SumFreeSize returns the number of bytes not covered by a live allocation
	SumFreeSize() int
	// VisitAllRegions calls the provided callback once for each allocation and each free region, in
	// ascending offset order
	VisitAllRegions(handleRegion func(offset int, size int, free bool) error) error

	// AddStatistics sums this allocator's statistics into the provided object
	AddStatistics(stats *memutils.Statistics)
	// AddDetailedStatistics sums this allocator's statistics into the provided object
	AddDetailedStatistics(stats *memutils.DetailedStatistics)
	// BlockJsonData populates a json object with information about this allocator
	BlockJsonData(json jwriter.ObjectState)
}

type metadataBase struct {
	size int
}

func (m *metadataBase) Size() int { return m.size }

func (m *metadataBase) writeBlockJson(json jwriter.ObjectState, kind string, unusedBytes, allocationCount, unusedRangeCount int) {
	json.Name("Kind").String(kind)
	json.Name("TotalBytes").Int(m.size)
	json.Name("UnusedBytes").Int(unusedBytes)
	json.Name("Allocations").Int(allocationCount)
	json.Name("UnusedRanges").Int(unusedRangeCount)
}

// detailedStatisticsFromRegions is shared by the allocators whose regions are cheap to enumerate
func detailedStatisticsFromRegions(m Metadata, stats *memutils.DetailedStatistics) {
	stats.BlockCount++
	stats.BlockBytes += m.Size()

	_ = m.VisitAllRegions(func(offset int, size int, free bool) error {
		if free {
			stats.AddUnusedRange(size)
		} else {
			stats.AddAllocation(size)
		}
		return nil
	})
}

func blockJsonFromRegions(m Metadata, json jwriter.ObjectState, kind string, base *metadataBase) {
	var unusedRangeCount, usedBytes, allocCount int

	_ = m.VisitAllRegions(func(offset int, size int, free bool) error {
		if free {
			unusedRangeCount++
		} else {
			usedBytes += size
			allocCount++
		}
		return nil
	})

	base.writeBlockJson(json, kind, m.Size()-usedBytes, allocCount, unusedRangeCount)
}
