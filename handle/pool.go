package handle

import (
	"math"

	cerrors "github.com/cockroachdb/errors"
)

type slot struct {
	generation uint32
	alive      bool
}

// Pool hands out handles of a single kind. Freed slots are reused most-recently-freed first, with their
// generation bumped. Pool is not safe for concurrent use.
type Pool[H Value] struct {
	slots []slot
	free  []uint32
	live  int
}

// Allocate returns a handle to a fresh slot
func (p *Pool[H]) Allocate() H {
	if len(p.free) > 0 {
		index := p.free[len(p.free)-1]
		p.free = p.free[:len(p.free)-1]

		s := &p.slots[index]
		s.generation++
		if s.generation == 0 {
			s.generation = 1
		}
		s.alive = true
		p.live++

		return H(New(index, s.generation))
	}

	if len(p.slots) >= math.MaxUint32 {
		panic("handle pool exhausted all 32-bit slot indices")
	}

	index := uint32(len(p.slots))
	p.slots = append(p.slots, slot{generation: 1, alive: true})
	p.live++

	return H(New(index, 1))
}

// Check returns nil if h names a live slot, or the reason it does not
func (p *Pool[H]) Check(h H) error {
	untyped := Handle(h)
	index := untyped.Index()

	if !untyped.IsValid() || int(index) >= len(p.slots) {
		return cerrors.Wrapf(ErrStaleHandle, "handle %s", untyped)
	}

	s := p.slots[index]
	if s.generation != untyped.Generation() {
		return cerrors.Wrapf(ErrStaleHandle, "handle %s, slot is at generation %d", untyped, s.generation)
	}

	if !s.alive {
		return cerrors.Wrapf(ErrAlreadyFreed, "handle %s", untyped)
	}

	return nil
}

// Valid reports whether h names a live slot
func (p *Pool[H]) Valid(h H) bool {
	return p.Check(h) == nil
}

// Free releases h's slot for reuse
func (p *Pool[H]) Free(h H) error {
	err := p.Check(h)
	if err != nil {
		return err
	}

	index := Handle(h).Index()
	p.slots[index].alive = false
	p.free = append(p.free, index)
	p.live--

	return nil
}

// Len is the number of live handles
func (p *Pool[H]) Len() int { return p.live }

// Capacity is the number of slots ever created
func (p *Pool[H]) Capacity() int { return len(p.slots) }

// handleAt returns the current handle for slot index, and whether it is live
func (p *Pool[H]) handleAt(index int) (H, bool) {
	s := p.slots[index]
	return H(New(uint32(index), s.generation)), s.alive
}
