// Package handle provides generational handles: opaque 64-bit values naming a slot in a pool. The low 32
// bits hold the slot index and the high 32 bits hold the slot's generation, which is bumped every time
// the slot is reused so that handles to a previous occupant can be detected.
package handle

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrStaleHandle is returned when a handle's generation no longer matches its slot, or its slot does not
// exist in the pool it was presented to
var ErrStaleHandle error = errors.New("stale handle")

// ErrAlreadyFreed is returned when freeing a handle whose slot is already free
var ErrAlreadyFreed error = errors.New("handle was already freed")

// Handle is the untyped representation shared by every handle kind. Resource handles are declared as
// distinct types over Handle so that each kind gets its own pool and cannot be mixed up.
type Handle uint64

// Invalid is never returned by a pool
const Invalid Handle = 0

// Value is satisfied by Handle and every type declared over it
type Value interface {
	~uint64
}

func New(index, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(index))
}

func (h Handle) Index() uint32      { return uint32(h) }
func (h Handle) Generation() uint32 { return uint32(h >> 32) }

// IsValid reports whether h could name a live slot. It does not consult any pool.
func (h Handle) IsValid() bool { return h.Generation() != 0 }

func (h Handle) String() string {
	if !h.IsValid() {
		return "Invalid"
	}

	return fmt.Sprintf("%d#%d", h.Index(), h.Generation())
}

// Untyped converts any handle kind back to a Handle
func Untyped[H Value](h H) Handle {
	return Handle(h)
}
