package handle

import (
	"reflect"

	"github.com/dolthub/swiss"
)

// Allocator keeps one Pool per handle kind, so that allocating a Buffer never consumes a Texture slot.
// Allocator is not safe for concurrent use.
type Allocator struct {
	pools *swiss.Map[reflect.Type, any]
}

func NewAllocator() *Allocator {
	return &Allocator{
		pools: swiss.NewMap[reflect.Type, any](8),
	}
}

func poolFor[H Value](a *Allocator) *Pool[H] {
	key := reflect.TypeFor[H]()

	existing, ok := a.pools.Get(key)
	if ok {
		return existing.(*Pool[H])
	}

	pool := &Pool[H]{}
	a.pools.Put(key, pool)
	return pool
}

// Allocate returns a fresh handle of kind H
func Allocate[H Value](a *Allocator) H {
	return poolFor[H](a).Allocate()
}

// Free releases a handle of kind H
func Free[H Value](a *Allocator, h H) error {
	return poolFor[H](a).Free(h)
}

// Valid reports whether h is a live handle of kind H
func Valid[H Value](a *Allocator, h H) bool {
	return poolFor[H](a).Valid(h)
}

// Live returns the number of live handles of kind H
func Live[H Value](a *Allocator) int {
	return poolFor[H](a).Len()
}

// Kinds returns the number of handle kinds that have been used with this allocator
func (a *Allocator) Kinds() int {
	return a.pools.Count()
}
