package ecs

import (
	"fmt"

	"github.com/TheBitDrifter/mask"
)

// EntityId encodes both the slot generation (upper 32 bits) and the slot index (lower 32 bits).
// Generations start at 1, so the zero EntityId never refers to a live entity.
type EntityId uint64

// NewEntityId creates an EntityId from a slot index and generation
func NewEntityId(slot uint32, generation uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(slot))
}

// Slot extracts the slot index from the entity ID
func (e EntityId) Slot() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Generation extracts the slot generation from the entity ID
func (e EntityId) Generation() uint32 {
	return uint32(e >> 32)
}

// IsNull reports whether the id is the zero id.
func (e EntityId) IsNull() bool {
	return e == 0
}

func (e EntityId) String() string {
	return fmt.Sprintf("%d:%d", e.Slot(), e.Generation())
}

var emptyMask mask.Mask

// entityTable is a generational arena of entity slots.
type entityTable struct {
	generations []uint32
	alive       []bool
	occupancy   []mask.Mask
	free        []uint32
	live        int
}

func newEntityTable(capacity int) *entityTable {
	return &entityTable{
		generations: make([]uint32, 0, capacity),
		alive:       make([]bool, 0, capacity),
		occupancy:   make([]mask.Mask, 0, capacity),
	}
}

// add allocates a slot, preferring the most recently freed one.
func (t *entityTable) add() EntityId {
	t.live++
	if n := len(t.free); n > 0 {
		slot := t.free[n-1]
		t.free = t.free[:n-1]
		t.alive[slot] = true
		t.occupancy[slot] = emptyMask
		return NewEntityId(slot, t.generations[slot])
	}

	slot := uint32(len(t.generations))
	t.generations = append(t.generations, 1)
	t.alive = append(t.alive, true)
	t.occupancy = append(t.occupancy, emptyMask)
	return NewEntityId(slot, 1)
}

// remove frees the slot of a live id and bumps its generation.
func (t *entityTable) remove(id EntityId) bool {
	if !t.isAlive(id) {
		return false
	}
	slot := id.Slot()
	t.alive[slot] = false
	t.occupancy[slot] = emptyMask
	t.generations[slot]++
	if t.generations[slot] == 0 {
		// Wrapped around; zero is reserved for the null id
		t.generations[slot] = 1
	}
	t.free = append(t.free, slot)
	t.live--
	return true
}

func (t *entityTable) isAlive(id EntityId) bool {
	slot := id.Slot()
	if int(slot) >= len(t.generations) {
		return false
	}
	return t.alive[slot] && t.generations[slot] == id.Generation()
}

// idAt returns the current id for a slot and whether it is live.
func (t *entityTable) idAt(slot uint32) (EntityId, bool) {
	if int(slot) >= len(t.generations) || !t.alive[slot] {
		return 0, false
	}
	return NewEntityId(slot, t.generations[slot]), true
}

func (t *entityTable) mark(slot uint32, kind uint32) {
	t.occupancy[slot].Mark(kind)
}

func (t *entityTable) unmark(slot uint32, kind uint32) {
	t.occupancy[slot].Unmark(kind)
}

func (t *entityTable) slots() int {
	return len(t.generations)
}
