package core

import "fmt"

// Entity is a generation-checked handle into an owning registry
// Low 32 bits hold the slot index, high 32 bits the slot generation
// Zero is never issued and reads as "no entity"
type Entity uint64

// NoEntity is the zero handle
const NoEntity Entity = 0

// NewEntity packs a slot index and generation into a handle
func NewEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index returns the registry slot
func (e Entity) Index() uint32 {
	return uint32(e)
}

// Generation returns the slot generation the handle was issued for
func (e Entity) Generation() uint32 {
	return uint32(e >> 32)
}

// Valid reports whether the handle is non-zero; liveness is checked by the registry
func (e Entity) Valid() bool {
	return e != NoEntity
}

func (e Entity) String() string {
	if e == NoEntity {
		return "entity(none)"
	}
	return fmt.Sprintf("entity(%d@%d)", e.Index(), e.Generation())
}
