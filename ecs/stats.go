package ecs

import "reflect"

// WorldStats is a snapshot of a world's population and predicate caches.
type WorldStats struct {
	EntityCount     int
	SlotCount       int
	FreeSlots       int
	PredicateCount  int
	DirtyPredicates int
	Components      []ComponentStats
	Predicates      []PredicateStats
}

// ComponentStats describes one component storage.
type ComponentStats struct {
	Type  reflect.Type
	Kind  uint32
	Count int
}

// PredicateStats describes one predicate cache. Matches reflects the last rebuild.
type PredicateStats struct {
	Handle   PredicateHandle
	Matches  int
	Dirty    bool
	Rebuilds int
}

// CollectStats gathers statistics about the world without refreshing any cache.
func (w *World) CollectStats() WorldStats {
	stats := WorldStats{
		EntityCount:    w.entities.live,
		SlotCount:      w.entities.slots(),
		FreeSlots:      len(w.entities.free),
		PredicateCount: w.predicates.len(),
		Components:     make([]ComponentStats, len(w.storages)),
		Predicates:     make([]PredicateStats, 0, w.predicates.len()),
	}

	for kind, storage := range w.storages {
		stats.Components[kind] = ComponentStats{
			Type:  w.registry.kinds[kind].typ,
			Kind:  uint32(kind),
			Count: storage.Len(),
		}
	}

	for _, cache := range w.predicates.caches {
		if cache.dirty {
			stats.DirtyPredicates++
		}
		stats.Predicates = append(stats.Predicates, PredicateStats{
			Handle:   cache.handle,
			Matches:  len(cache.ids),
			Dirty:    cache.dirty,
			Rebuilds: cache.rebuilds,
		})
	}

	return stats
}
