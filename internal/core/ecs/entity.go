package ecs

import "fmt"

// EntityID encodes a 32-bit index in the lower bits and a 32-bit generation
// in the upper bits. Generation increments on destroy to invalidate stale refs,
// so a removed agent's id never matches a later agent reusing the same slot.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

func (id EntityID) String() string {
	return fmt.Sprintf("%d:%d", id.Index(), id.Generation())
}

// EntityPool hands out generational ids. Freed slots are reused oldest
// first, so a destroyed agent's slot stays unused for as long as possible.
// Slot 0 is never handed out and the zero EntityID never names a live entity.
type EntityPool struct {
	gen  []uint32 // current generation per slot
	free []uint32 // FIFO of released slots
	head int      // next slot to reuse in free
	live int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		gen:  make([]uint32, 1, 256),
		free: make([]uint32, 0, 64),
	}
}

func (p *EntityPool) Create() EntityID {
	p.live++
	if p.head < len(p.free) {
		idx := p.free[p.head]
		p.head++
		if p.head == len(p.free) {
			p.free, p.head = p.free[:0], 0
		}
		return NewEntityID(idx, p.gen[idx])
	}
	idx := uint32(len(p.gen))
	p.gen = append(p.gen, 0)
	return NewEntityID(idx, 0)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	return idx != 0 && int(idx) < len(p.gen) && p.gen[idx] == id.Generation()
}

// Destroy bumps the slot generation. Stale and unknown ids are ignored.
func (p *EntityPool) Destroy(id EntityID) {
	if !p.Alive(id) {
		return
	}
	idx := id.Index()
	p.gen[idx]++
	p.free = append(p.free, idx)
	p.live--
}

// Live returns the number of entities created and not yet destroyed.
func (p *EntityPool) Live() int { return p.live }
