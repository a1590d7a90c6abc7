package memory

import (
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/rhi/memutils"
	"github.com/vkngwrapper/rhi/memutils/virtual"
)

// Block hands out block-aligned sub-slices of a byte region using a virtual.BlockAllocator
type Block struct {
	metadata *virtual.BlockAllocator
	memory   []byte
}

// NewBlock creates a Block of blockSize*blockCount bytes. If memory is nil, the region is allocated,
// otherwise the provided memory is used and must be at least that large.
func NewBlock(blockSize, blockCount int, memory []byte) (*Block, error) {
	metadata, err := virtual.NewBlockAllocator(blockSize, blockCount)
	if err != nil {
		return nil, err
	}

	size := metadata.Size()
	if memory == nil {
		memory = make([]byte, size)
	} else if len(memory) < size {
		return nil, cerrors.Newf("block of %d bytes was given only %d bytes of memory", size, len(memory))
	}

	return &Block{
		metadata: metadata,
		memory:   memory[:size:size],
	}, nil
}

// Allocate returns a slice of exactly size bytes and its offset within the block
func (b *Block) Allocate(size int) ([]byte, int, error) {
	offset, err := b.metadata.Allocate(size)
	if err != nil {
		return nil, 0, err
	}

	return b.memory[offset : offset+size : offset+size], offset, nil
}

// Free releases the allocation of size bytes at offset
func (b *Block) Free(offset, size int) error {
	err := b.metadata.Free(offset, size)
	if err != nil {
		return err
	}

	memutils.DebugPoison(b.memory[offset : offset+size])
	return nil
}

// OffsetOf returns the offset of the first byte of mem within this block, if mem points into it
func (b *Block) OffsetOf(mem []byte) (int, bool) {
	if len(mem) == 0 {
		return 0, false
	}

	base := uintptr(unsafe.Pointer(unsafe.SliceData(b.memory)))
	ptr := uintptr(unsafe.Pointer(unsafe.SliceData(mem)))
	if ptr < base || ptr >= base+uintptr(len(b.memory)) {
		return 0, false
	}

	return int(ptr - base), true
}

func (b *Block) Memory() []byte                    { return b.memory }
func (b *Block) Metadata() *virtual.BlockAllocator { return b.metadata }

func (b *Block) BlockJsonData(json jwriter.ObjectState) {
	b.metadata.BlockJsonData(json)
}
