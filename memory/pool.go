package memory

import (
	"cmp"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/rhi/memutils"
	"golang.org/x/exp/slices"
)

// BlockSpec describes one size class of a Pool
type BlockSpec struct {
	BlockSize  int
	BlockCount int
	// Memory is optional backing for the class. If nil, the class allocates its own.
	Memory []byte
}

// Pool is a set of Blocks with different block sizes. An allocation is served by the smallest class whose
// block size fits it, falling back to larger classes and finally to a multi-block run in the largest class.
type Pool struct {
	classes []*Block
}

func NewPool(specs ...BlockSpec) (*Pool, error) {
	if len(specs) == 0 {
		return nil, cerrors.New("a pool needs at least one block size class")
	}

	sorted := slices.Clone(specs)
	slices.SortFunc(sorted, func(a, b BlockSpec) int {
		return cmp.Compare(a.BlockSize, b.BlockSize)
	})

	pool := &Pool{}
	for i, spec := range sorted {
		if i > 0 && sorted[i-1].BlockSize == spec.BlockSize {
			return nil, cerrors.Newf("block size %d was specified more than once", spec.BlockSize)
		}

		block, err := NewBlock(spec.BlockSize, spec.BlockCount, spec.Memory)
		if err != nil {
			return nil, cerrors.Wrapf(err, "size class %d", spec.BlockSize)
		}
		pool.classes = append(pool.classes, block)
	}

	return pool, nil
}

// Allocate returns exactly size bytes from the first class that can hold them
func (p *Pool) Allocate(size int) ([]byte, error) {
	if size <= 0 {
		return nil, cerrors.Wrapf(memutils.ErrInvalidSize, "requested %d bytes", size)
	}

	start, found := slices.BinarySearchFunc(p.classes, size, func(class *Block, target int) int {
		return cmp.Compare(class.Metadata().BlockSize(), target)
	})
	if !found && start == len(p.classes) {
		// Larger than any block: only a multi-block run of the largest class can serve it
		start = len(p.classes) - 1
	}

	for _, class := range p.classes[start:] {
		mem, _, err := class.Allocate(size)
		if err == nil {
			return mem, nil
		}
		if !cerrors.Is(err, memutils.ErrOutOfSpace) {
			return nil, err
		}
	}

	return nil, cerrors.Wrapf(memutils.ErrOutOfSpace, "no size class could hold %d bytes", size)
}

// Free returns memory previously returned by Allocate. The full slice must be passed back.
func (p *Pool) Free(mem []byte) error {
	for _, class := range p.classes {
		offset, owned := class.OffsetOf(mem)
		if owned {
			return class.Free(offset, len(mem))
		}
	}

	return cerrors.Wrap(memutils.ErrInvalidFree, "memory does not belong to this pool")
}

// Owns reports whether mem was allocated from this pool
func (p *Pool) Owns(mem []byte) bool {
	for _, class := range p.classes {
		if _, owned := class.OffsetOf(mem); owned {
			return true
		}
	}

	return false
}

func (p *Pool) IsEmpty() bool {
	for _, class := range p.classes {
		if !class.Metadata().IsEmpty() {
			return false
		}
	}

	return true
}

func (p *Pool) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	for _, class := range p.classes {
		class.Metadata().AddDetailedStatistics(stats)
	}
}

func (p *Pool) PrintJson(json jwriter.ObjectState) {
	var stats memutils.DetailedStatistics
	stats.Clear()
	p.AddDetailedStatistics(&stats)

	totalObj := json.Name("Total").Object()
	stats.PrintJson(totalObj)
	totalObj.End()

	classArray := json.Name("Classes").Array()
	for _, class := range p.classes {
		classObj := classArray.Object()
		class.BlockJsonData(classObj)
		classObj.End()
	}
	classArray.End()
}
