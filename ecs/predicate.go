package ecs

import (
	"reflect"

	"github.com/TheBitDrifter/mask"
	"github.com/kamstrup/intmap"
)

// PredicateHandle identifies a predicate registered with a World.
type PredicateHandle uint32

// Occupancy is a read-only view of which component kinds an entity carries.
type Occupancy struct {
	bits     mask.Mask
	registry *ComponentRegistry
}

// Has reports whether the entity carries a component of type t.
func (o Occupancy) Has(t reflect.Type) bool {
	kind, ok := o.registry.Kind(t)
	if !ok {
		return false
	}
	return o.bits.Contains(kind)
}

// Mask returns the raw occupancy bitmask, one bit per component kind.
func (o Occupancy) Mask() mask.Mask {
	return o.bits
}

// Holds reports whether the occupancy includes component type T.
func Holds[T any](o Occupancy) bool {
	return o.Has(reflect.TypeFor[T]())
}

// Predicate selects entities by their component occupancy. Predicates must be pure.
type Predicate func(Occupancy) bool

// And matches when every predicate matches.
func And(preds ...Predicate) Predicate {
	return func(o Occupancy) bool {
		for _, p := range preds {
			if !p(o) {
				return false
			}
		}
		return true
	}
}

// Or matches when any predicate matches.
func Or(preds ...Predicate) Predicate {
	return func(o Occupancy) bool {
		for _, p := range preds {
			if p(o) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(pred Predicate) Predicate {
	return func(o Occupancy) bool {
		return !pred(o)
	}
}

// buildMask marks the kind bit of every given type. Unregistered types panic.
func (r *ComponentRegistry) buildMask(types []reflect.Type) mask.Mask {
	var m mask.Mask
	for _, t := range types {
		kind, ok := r.Kind(t)
		if !ok {
			panic("component type " + t.String() + " not registered")
		}
		m.Mark(kind)
	}
	return m
}

// predicateCache is the materialized match list for one predicate.
type predicateCache struct {
	handle   PredicateHandle
	pred     Predicate
	ids      []EntityId
	dirty    bool
	rebuilds int
}

// predicateRegistry owns all predicates registered with a World. Handles are never reused.
type predicateRegistry struct {
	byHandle *intmap.Map[PredicateHandle, *predicateCache]
	caches   []*predicateCache
	next     PredicateHandle
}

func newPredicateRegistry() *predicateRegistry {
	return &predicateRegistry{
		byHandle: intmap.New[PredicateHandle, *predicateCache](16),
		next:     1,
	}
}

func (r *predicateRegistry) add(pred Predicate) PredicateHandle {
	handle := r.next
	r.next++

	cache := &predicateCache{
		handle: handle,
		pred:   pred,
		dirty:  true,
	}
	r.byHandle.Put(handle, cache)
	r.caches = append(r.caches, cache)
	return handle
}

func (r *predicateRegistry) get(handle PredicateHandle) (*predicateCache, bool) {
	return r.byHandle.Get(handle)
}

// invalidate marks every cache dirty after a structural change.
func (r *predicateRegistry) invalidate() {
	for _, cache := range r.caches {
		cache.dirty = true
	}
}

func (r *predicateRegistry) len() int {
	return len(r.caches)
}

// rebuilds returns the number of cache rebuilds across all predicates.
func (r *predicateRegistry) rebuilds() int {
	total := 0
	for _, cache := range r.caches {
		total += cache.rebuilds
	}
	return total
}

// refresh rescans all live entities if the cache is dirty. Matches are kept in ascending slot order.
func (c *predicateCache) refresh(table *entityTable, registry *ComponentRegistry) {
	if !c.dirty {
		return
	}

	c.ids = c.ids[:0]
	for slot := range uint32(table.slots()) {
		id, alive := table.idAt(slot)
		if !alive {
			continue
		}
		if c.pred(Occupancy{bits: table.occupancy[slot], registry: registry}) {
			c.ids = append(c.ids, id)
		}
	}

	c.dirty = false
	c.rebuilds++
}
