package virtual

import (
	"math/bits"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/rhi/memutils"
)

const ledgerWordBits = 64

// BlockAllocator divides a region into fixed-size blocks and tracks occupancy with one ledger bit per
// block. Requests are rounded up to a whole number of blocks and placed first-fit at the lowest run of
// contiguous free blocks. Because the ledger itself is the free map, releasing a run needs no merge
// step; fragmentation is bounded by the block size.
type BlockAllocator struct {
	metadataBase

	blockSize  int
	blockCount int

	// ledger holds one bit per block, set while the block is occupied
	ledger []uint64
	// runs holds the length in blocks of the allocation starting at each block, or 0
	runs []int32

	occupiedBlocks  int
	allocationCount int
}

var _ Metadata = &BlockAllocator{}

// NewBlockAllocator creates an allocator managing blockSize*blockCount bytes
func NewBlockAllocator(blockSize, blockCount int) (*BlockAllocator, error) {
	if blockSize <= 0 {
		return nil, cerrors.Newf("block size must be greater than zero, but was %d", blockSize)
	}
	if blockCount <= 0 {
		return nil, cerrors.Newf("block count must be greater than zero, but was %d", blockCount)
	}

	return &BlockAllocator{
		metadataBase: metadataBase{size: blockSize * blockCount},
		blockSize:    blockSize,
		blockCount:   blockCount,
		ledger:       make([]uint64, memutils.DivideRoundingUp(blockCount, ledgerWordBits)),
		runs:         make([]int32, blockCount),
	}, nil
}

func (a *BlockAllocator) BlockSize() int       { return a.blockSize }
func (a *BlockAllocator) BlockCount() int      { return a.blockCount }
func (a *BlockAllocator) AllocationCount() int { return a.allocationCount }
func (a *BlockAllocator) IsEmpty() bool        { return a.allocationCount == 0 }
func (a *BlockAllocator) SumFreeSize() int     { return (a.blockCount - a.occupiedBlocks) * a.blockSize }

// AllocationSize returns the number of bytes that will actually be reserved for a request of size bytes
func (a *BlockAllocator) AllocationSize(size int) int {
	return memutils.DivideRoundingUp(size, a.blockSize) * a.blockSize
}

func (a *BlockAllocator) isOccupied(block int) bool {
	return a.ledger[block/ledgerWordBits]&(1<<uint(block%ledgerWordBits)) != 0
}

func (a *BlockAllocator) setRange(first, count int, occupied bool) {
	for block := first; block < first+count; block++ {
		mask := uint64(1) << uint(block%ledgerWordBits)
		if occupied {
			a.ledger[block/ledgerWordBits] |= mask
		} else {
			a.ledger[block/ledgerWordBits] &^= mask
		}
	}
}

func (a *BlockAllocator) findContiguous(count int) (int, bool) {
	run := 0
	for block := 0; block < a.blockCount; block++ {
		if block%ledgerWordBits == 0 && a.ledger[block/ledgerWordBits] == ^uint64(0) {
			// Whole word occupied
			run = 0
			block += ledgerWordBits - 1
			continue
		}

		if a.isOccupied(block) {
			run = 0
			continue
		}

		run++
		if run == count {
			return block - count + 1, true
		}
	}

	return 0, false
}

// Allocate reserves enough contiguous blocks to hold size bytes and returns the byte offset of the first
// one. If no run is long enough, a wrapped memutils.ErrOutOfSpace is returned.
func (a *BlockAllocator) Allocate(size int) (int, error) {
	if size <= 0 {
		return 0, cerrors.Wrapf(memutils.ErrInvalidSize, "requested %d bytes", size)
	}

	count := memutils.DivideRoundingUp(size, a.blockSize)
	if count > a.blockCount-a.occupiedBlocks {
		return 0, cerrors.Wrapf(memutils.ErrOutOfSpace, "requested %d blocks of %d bytes but only %d are free", count, a.blockSize, a.blockCount-a.occupiedBlocks)
	}

	first, found := a.findContiguous(count)
	if !found {
		return 0, cerrors.Wrapf(memutils.ErrOutOfSpace, "no run of %d contiguous blocks of %d bytes", count, a.blockSize)
	}

	a.setRange(first, count, true)
	a.runs[first] = int32(count)
	a.occupiedBlocks += count
	a.allocationCount++

	memutils.DebugValidate(a)
	return first * a.blockSize, nil
}

// Free releases an allocation previously returned by Allocate. The offset and size must match the
// original request, otherwise memutils.ErrInvalidFree is returned and nothing changes.
func (a *BlockAllocator) Free(offset, size int) error {
	if offset < 0 || offset%a.blockSize != 0 || offset >= a.size {
		return cerrors.Wrapf(memutils.ErrInvalidFree, "offset %d is not the start of a block", offset)
	}

	first := offset / a.blockSize
	count := memutils.DivideRoundingUp(size, a.blockSize)
	if a.runs[first] == 0 {
		return cerrors.Wrapf(memutils.ErrInvalidFree, "no allocation begins at offset %d", offset)
	}
	if int(a.runs[first]) != count {
		return cerrors.Wrapf(memutils.ErrInvalidFree, "allocation at offset %d covers %d blocks, but %d bytes were freed", offset, a.runs[first], size)
	}

	a.setRange(first, count, false)
	a.runs[first] = 0
	a.occupiedBlocks -= count
	a.allocationCount--

	memutils.DebugValidate(a)
	return nil
}

// Clear releases every allocation at once
func (a *BlockAllocator) Clear() {
	clear(a.ledger)
	clear(a.runs)
	a.occupiedBlocks = 0
	a.allocationCount = 0
}

func (a *BlockAllocator) Validate() error {
	var occupied, allocations int
	covered := 0

	for block := 0; block < a.blockCount; block++ {
		run := int(a.runs[block])
		if run < 0 {
			return errors.Errorf("block %d has a negative run length %d", block, run)
		}

		if run > 0 {
			if block < covered {
				return errors.Errorf("allocation at block %d overlaps the allocation ending at block %d", block, covered)
			}
			if block+run > a.blockCount {
				return errors.Errorf("allocation at block %d runs %d blocks past the end of the allocator", block, block+run-a.blockCount)
			}
			allocations++
			occupied += run
			covered = block + run
		}

		if a.isOccupied(block) != (block < covered) {
			return errors.Errorf("ledger bit for block %d does not match the allocation runs", block)
		}
	}

	var ledgerBits int
	for _, word := range a.ledger {
		ledgerBits += bits.OnesCount64(word)
	}

	if ledgerBits != occupied {
		return errors.Errorf("ledger has %d occupied blocks but allocations cover %d", ledgerBits, occupied)
	}

	if occupied != a.occupiedBlocks {
		return errors.Errorf("allocator records %d occupied blocks but allocations cover %d", a.occupiedBlocks, occupied)
	}

	if allocations != a.allocationCount {
		return errors.Errorf("allocator records %d allocations but %d were found", a.allocationCount, allocations)
	}

	return nil
}

func (a *BlockAllocator) VisitAllRegions(handleRegion func(offset int, size int, free bool) error) error {
	block := 0
	for block < a.blockCount {
		if run := int(a.runs[block]); run > 0 {
			err := handleRegion(block*a.blockSize, run*a.blockSize, false)
			if err != nil {
				return err
			}
			block += run
			continue
		}

		freeStart := block
		for block < a.blockCount && a.runs[block] == 0 && !a.isOccupied(block) {
			block++
		}

		if block == freeStart {
			return errors.Errorf("block %d is occupied but belongs to no allocation", block)
		}

		err := handleRegion(freeStart*a.blockSize, (block-freeStart)*a.blockSize, true)
		if err != nil {
			return err
		}
	}

	return nil
}

func (a *BlockAllocator) AddStatistics(stats *memutils.Statistics) {
	stats.BlockCount++
	stats.BlockBytes += a.size
	stats.AllocationCount += a.allocationCount
	stats.AllocationBytes += a.occupiedBlocks * a.blockSize
}

func (a *BlockAllocator) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	detailedStatisticsFromRegions(a, stats)
}

func (a *BlockAllocator) BlockJsonData(json jwriter.ObjectState) {
	blockJsonFromRegions(a, json, "Block", &a.metadataBase)
	json.Name("BlockSize").Int(a.blockSize)
}
