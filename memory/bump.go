package memory

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/vkngwrapper/rhi/memutils"
	"github.com/vkngwrapper/rhi/memutils/virtual"
)

// Bump is a linear allocator over a byte region. It is used for staging memory that is filled during a
// frame and released all at once with Clear after the GPU has consumed it.
type Bump struct {
	metadata *virtual.BumpAllocator
	memory   []byte
}

// NewBump creates a Bump of size bytes. If memory is nil the region is allocated, otherwise memory (for
// instance a mapped upload buffer) is used and must be at least size bytes.
func NewBump(size int, memory []byte) (*Bump, error) {
	metadata, err := virtual.NewBumpAllocator(size)
	if err != nil {
		return nil, err
	}

	if memory == nil {
		memory = make([]byte, size)
	} else if len(memory) < size {
		return nil, cerrors.Newf("bump allocator of %d bytes was given only %d bytes of memory", size, len(memory))
	}

	return &Bump{
		metadata: metadata,
		memory:   memory[:size:size],
	}, nil
}

// Allocate returns size bytes starting at the next multiple of alignment, and their offset in the region
func (b *Bump) Allocate(size int, alignment int) ([]byte, int, error) {
	offset, err := b.metadata.Allocate(size, alignment)
	if err != nil {
		return nil, 0, err
	}

	return b.memory[offset : offset+size : offset+size], offset, nil
}

// Clear releases every allocation
func (b *Bump) Clear() {
	memutils.DebugPoison(b.memory[:b.metadata.Head()])
	b.metadata.Clear()
}

func (b *Bump) Memory() []byte                   { return b.memory }
func (b *Bump) Metadata() *virtual.BumpAllocator { return b.metadata }
