package handle_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/rhi/handle"
)

type bufferHandle handle.Handle
type textureHandle handle.Handle

func TestHandleLayout(t *testing.T) {
	h := handle.New(7, 3)
	require.Equal(t, uint32(7), h.Index())
	require.Equal(t, uint32(3), h.Generation())
	require.Equal(t, handle.Handle(3<<32|7), h)
	require.True(t, h.IsValid())
	require.False(t, handle.Invalid.IsValid())
	require.Equal(t, "7#3", h.String())
}

func TestPoolReusesWithNewGeneration(t *testing.T) {
	var pool handle.Pool[bufferHandle]

	a := pool.Allocate()
	b := pool.Allocate()
	require.NotEqual(t, a, b)
	require.Equal(t, 2, pool.Len())

	require.NoError(t, pool.Free(a))
	require.False(t, pool.Valid(a))

	c := pool.Allocate()
	require.Equal(t, handle.Handle(a).Index(), handle.Handle(c).Index())
	require.NotEqual(t, a, c)
	require.Equal(t, uint32(2), handle.Handle(c).Generation())

	err := pool.Check(a)
	require.ErrorIs(t, err, handle.ErrStaleHandle)

	require.NoError(t, pool.Free(c))
	require.ErrorIs(t, pool.Free(c), handle.ErrAlreadyFreed)
	require.ErrorIs(t, pool.Free(bufferHandle(handle.Invalid)), handle.ErrStaleHandle)
	require.ErrorIs(t, pool.Free(bufferHandle(handle.New(99, 1))), handle.ErrStaleHandle)
	require.Equal(t, 1, pool.Len())
	require.Equal(t, 2, pool.Capacity())
}

func TestPoolReusesMostRecentlyFreed(t *testing.T) {
	var pool handle.Pool[bufferHandle]

	handles := []bufferHandle{pool.Allocate(), pool.Allocate(), pool.Allocate()}
	require.NoError(t, pool.Free(handles[0]))
	require.NoError(t, pool.Free(handles[2]))

	require.Equal(t, uint32(2), handle.Handle(pool.Allocate()).Index())
	require.Equal(t, uint32(0), handle.Handle(pool.Allocate()).Index())
	require.Equal(t, uint32(3), handle.Handle(pool.Allocate()).Index())
}

func TestAllocatorSeparatesKinds(t *testing.T) {
	alloc := handle.NewAllocator()

	buffer := handle.Allocate[bufferHandle](alloc)
	texture := handle.Allocate[textureHandle](alloc)

	// Both kinds start at slot 0
	require.Equal(t, uint32(0), handle.Handle(buffer).Index())
	require.Equal(t, uint32(0), handle.Handle(texture).Index())
	require.Equal(t, 2, alloc.Kinds())

	require.NoError(t, handle.Free(alloc, buffer))
	require.True(t, handle.Valid(alloc, texture))
	require.False(t, handle.Valid(alloc, buffer))
	require.Equal(t, 0, handle.Live[bufferHandle](alloc))
	require.Equal(t, 1, handle.Live[textureHandle](alloc))
}

func TestTable(t *testing.T) {
	var table handle.Table[bufferHandle, string]

	a := table.Insert("a")
	b := table.Insert("b")

	value, err := table.Get(a)
	require.NoError(t, err)
	require.Equal(t, "a", *value)

	*value = "a2"
	value, err = table.Get(a)
	require.NoError(t, err)
	require.Equal(t, "a2", *value)

	removed, err := table.Remove(a)
	require.NoError(t, err)
	require.Equal(t, "a2", removed)

	_, err = table.Get(a)
	require.ErrorIs(t, err, handle.ErrAlreadyFreed)

	c := table.Insert("c")
	_, err = table.Get(a)
	require.ErrorIs(t, err, handle.ErrStaleHandle)

	var seen []string
	table.Each(func(h bufferHandle, value *string) bool {
		seen = append(seen, *value)
		return true
	})
	require.Equal(t, []string{"c", "b"}, seen)
	require.Equal(t, 2, table.Len())
	require.True(t, table.Valid(b))
	require.True(t, table.Valid(c))
}

func TestTableBoundToAllocator(t *testing.T) {
	alloc := handle.NewAllocator()
	buffers := handle.NewTable[bufferHandle, string](alloc)
	textures := handle.NewTable[textureHandle, int](alloc)
	require.Equal(t, 2, alloc.Kinds())

	b := buffers.Insert("vertices")
	tex := textures.Insert(4)
	require.True(t, handle.Valid(alloc, b))
	require.True(t, handle.Valid(alloc, tex))
	require.Equal(t, 1, handle.Live[bufferHandle](alloc))

	removed, err := buffers.Remove(b)
	require.NoError(t, err)
	require.Equal(t, "vertices", removed)
	require.False(t, handle.Valid(alloc, b))
	require.Equal(t, 0, handle.Live[bufferHandle](alloc))
	require.Equal(t, 1, handle.Live[textureHandle](alloc))

	// The slot comes back with a new generation whichever side allocates it
	again := buffers.Insert("indices")
	require.Equal(t, handle.Handle(b).Index(), handle.Handle(again).Index())
	require.NotEqual(t, b, again)
	_, err = buffers.Get(b)
	require.ErrorIs(t, err, handle.ErrStaleHandle)
}

func TestTableGuardedByCallerMutex(t *testing.T) {
	var mutex sync.Mutex
	var table handle.Table[bufferHandle, int]

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mutex.Lock()
				h := table.Insert(i)
				_, err := table.Remove(h)
				mutex.Unlock()
				require.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	require.Zero(t, table.Len())
}
