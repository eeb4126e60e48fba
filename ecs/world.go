// Package ecs stores a dynamic population of entities, each a bundle of typed components,
// and iterates the entities selected by registered predicates.
//
// A World is built over a closed ComponentRegistry. Predicates are registered once with
// AddPred and their match lists are cached; any structural change marks every cache dirty and
// the next iteration over a predicate rescans the live entities before yielding anything.
package ecs

import (
	"errors"
	"iter"
	"reflect"

	"github.com/rotisserie/eris"
)

const defaultInitialCapacity = 256

// World owns all entities, their component storages and the registered predicates.
// A World is not safe for concurrent use.
type World struct {
	registry   *ComponentRegistry
	entities   *entityTable
	storages   []iComponentStorage
	predicates *predicateRegistry

	// locks counts live iterations; structural mutation is rejected while it is non-zero
	locks    int
	pending  *Commands
	flushErr error
}

type worldConfig struct {
	initialCapacity int
}

// Option configures a World.
type Option func(*worldConfig)

// WithInitialCapacity preallocates entity slots.
func WithInitialCapacity(n int) Option {
	return func(c *worldConfig) {
		if n > 0 {
			c.initialCapacity = n
		}
	}
}

// NewWorld creates an empty world over the given component registry. The registry is
// sealed: no further component kinds may be registered with it.
func NewWorld(registry *ComponentRegistry, opts ...Option) *World {
	cfg := worldConfig{initialCapacity: defaultInitialCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}

	registry.seal()
	storages := make([]iComponentStorage, len(registry.kinds))
	for kind, k := range registry.kinds {
		storages[kind] = k.factory()
	}

	return &World{
		registry:   registry,
		entities:   newEntityTable(cfg.initialCapacity),
		storages:   storages,
		predicates: newPredicateRegistry(),
		pending:    newCommands(),
	}
}

// NewWorldFrom creates a world and adds one entity per bundle, in order.
func NewWorldFrom(registry *ComponentRegistry, bundles [][]any, opts ...Option) (*World, error) {
	w := NewWorld(registry, opts...)
	for i, bundle := range bundles {
		if _, err := w.Add(bundle...); err != nil {
			return nil, eris.Wrapf(err, "bundle %d", i)
		}
	}
	return w, nil
}

// Registry returns the component registry the world was built over.
func (w *World) Registry() *ComponentRegistry {
	return w.registry
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.entities.live
}

// IsAlive reports whether id refers to a live entity.
func (w *World) IsAlive(id EntityId) bool {
	return w.entities.isAlive(id)
}

// Locked reports whether an iteration is in progress.
func (w *World) Locked() bool {
	return w.locks > 0
}

// Add creates an entity carrying the given components. Components may be passed by value or
// by pointer; a later component of the same type replaces an earlier one.
func (w *World) Add(components ...any) (EntityId, error) {
	if w.Locked() {
		return 0, eris.Wrap(ErrConcurrentMutation, "add entity")
	}

	kinds := make([]uint32, len(components))
	for i, component := range components {
		kind, err := w.kindOf(component)
		if err != nil {
			return 0, eris.Wrap(err, "add entity")
		}
		kinds[i] = kind
	}

	id := w.entities.add()
	for i, component := range components {
		w.storages[kinds[i]].Insert(id.Slot(), component)
		w.entities.mark(id.Slot(), kinds[i])
	}
	w.predicates.invalidate()
	return id, nil
}

// Remove destroys an entity and all of its components.
func (w *World) Remove(id EntityId) error {
	if w.Locked() {
		return eris.Wrapf(ErrConcurrentMutation, "remove entity %s", id)
	}
	if !w.entities.isAlive(id) {
		return eris.Wrapf(ErrStaleEntity, "remove entity %s", id)
	}

	for _, storage := range w.storages {
		storage.Remove(id.Slot())
	}
	w.entities.remove(id)
	w.predicates.invalidate()
	return nil
}

// AddComponent attaches a component to a live entity, replacing any existing value of that type.
func (w *World) AddComponent(id EntityId, component any) error {
	if w.Locked() {
		return eris.Wrapf(ErrConcurrentMutation, "add component to %s", id)
	}
	if !w.entities.isAlive(id) {
		return eris.Wrapf(ErrStaleEntity, "add component to %s", id)
	}
	kind, err := w.kindOf(component)
	if err != nil {
		return eris.Wrapf(err, "add component to %s", id)
	}

	w.storages[kind].Insert(id.Slot(), component)
	w.entities.mark(id.Slot(), kind)
	w.predicates.invalidate()
	return nil
}

// RemoveComponent detaches the component of type t from a live entity and returns it.
func (w *World) RemoveComponent(id EntityId, t reflect.Type) (any, error) {
	if w.Locked() {
		return nil, eris.Wrapf(ErrConcurrentMutation, "remove component from %s", id)
	}
	if !w.entities.isAlive(id) {
		return nil, eris.Wrapf(ErrStaleEntity, "remove component from %s", id)
	}
	kind, ok := w.registry.Kind(t)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownComponent, "remove %s from %s", t, id)
	}

	value, ok := w.storages[kind].Remove(id.Slot())
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotFound, "remove %s from %s", t, id)
	}
	w.entities.unmark(id.Slot(), kind)
	w.predicates.invalidate()
	return value, nil
}

// Detach removes the component of type T from a live entity and returns its value.
func Detach[T any](w *World, id EntityId) (T, error) {
	var zero T
	value, err := w.RemoveComponent(id, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	return value.(T), nil
}

// Has reports whether a live entity carries a component of type T.
func Has[T any](w *World, id EntityId) bool {
	if !w.entities.isAlive(id) {
		return false
	}
	storage, ok := storageOf[T](w)
	if !ok {
		return false
	}
	return storage.Has(id.Slot())
}

// Get returns a copy of the entity's component of type T.
func Get[T any](w *World, id EntityId) (T, error) {
	var zero T
	ptr, err := GetMut[T](w, id)
	if err != nil {
		return zero, err
	}
	return *ptr, nil
}

// GetMut returns a pointer to the entity's component of type T. The pointer is only valid
// until the next structural change to the world.
func GetMut[T any](w *World, id EntityId) (*T, error) {
	if !w.entities.isAlive(id) {
		return nil, eris.Wrapf(ErrStaleEntity, "get %s", id)
	}
	storage, ok := storageOf[T](w)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownComponent, "get %s", reflect.TypeFor[T]())
	}
	ptr := storage.get(id.Slot())
	if ptr == nil {
		return nil, eris.Wrapf(ErrComponentNotFound, "get %s on %s", reflect.TypeFor[T](), id)
	}
	return ptr, nil
}

// AddPred registers a predicate and returns its handle. The cache starts dirty and is
// built on first iteration.
func (w *World) AddPred(pred Predicate) PredicateHandle {
	if pred == nil {
		panic("cannot register a nil predicate")
	}
	return w.predicates.add(pred)
}

// PredicateCount returns the number of registered predicates.
func (w *World) PredicateCount() int {
	return w.predicates.len()
}

// MatchAll builds a predicate matching entities that carry every given component type.
func (w *World) MatchAll(types ...reflect.Type) Predicate {
	want := w.registry.buildMask(types)
	return func(o Occupancy) bool {
		return o.bits.ContainsAll(want)
	}
}

// MatchAny builds a predicate matching entities that carry at least one given component type.
func (w *World) MatchAny(types ...reflect.Type) Predicate {
	want := w.registry.buildMask(types)
	return func(o Occupancy) bool {
		return o.bits.ContainsAny(want)
	}
}

// MatchNone builds a predicate matching entities that carry none of the given component types.
func (w *World) MatchNone(types ...reflect.Type) Predicate {
	want := w.registry.buildMask(types)
	return func(o Occupancy) bool {
		return o.bits.ContainsNone(want)
	}
}

// PredIter returns a sequence of read-only views over the entities matching the predicate,
// in ascending slot order. The cache is rebuilt at the start of ranging if it is dirty.
// The world rejects structural changes until ranging finishes; use the Enqueue methods instead.
func (w *World) PredIter(handle PredicateHandle) (iter.Seq[*EntityView], error) {
	cache, ok := w.predicates.get(handle)
	if !ok {
		return nil, eris.Wrapf(ErrInvalidHandle, "handle %d", handle)
	}

	return func(yield func(*EntityView) bool) {
		w.lock()
		defer w.unlock()

		cache.refresh(w.entities, w.registry)
		view := &EntityView{world: w}
		for _, id := range cache.ids {
			if !w.entities.isAlive(id) {
				continue
			}
			view.id = id
			if !yield(view) {
				return
			}
		}
	}, nil
}

// PredIterMut is PredIter with views that can hand out mutable component pointers.
func (w *World) PredIterMut(handle PredicateHandle) (iter.Seq[*EntityViewMut], error) {
	cache, ok := w.predicates.get(handle)
	if !ok {
		return nil, eris.Wrapf(ErrInvalidHandle, "handle %d", handle)
	}

	return func(yield func(*EntityViewMut) bool) {
		w.lock()
		defer w.unlock()

		cache.refresh(w.entities, w.registry)
		view := &EntityViewMut{EntityView{world: w}}
		for _, id := range cache.ids {
			if !w.entities.isAlive(id) {
				continue
			}
			view.id = id
			if !yield(view) {
				return
			}
		}
	}, nil
}

// IterAll returns a sequence over every live entity in ascending slot order.
func (w *World) IterAll() iter.Seq[*EntityView] {
	return func(yield func(*EntityView) bool) {
		view := &EntityView{world: w}
		w.walkLive(func(id EntityId) bool {
			view.id = id
			return yield(view)
		})
	}
}

// IterAllMut is IterAll with views that can hand out mutable component pointers and queue
// structural changes.
func (w *World) IterAllMut() iter.Seq[*EntityViewMut] {
	return func(yield func(*EntityViewMut) bool) {
		view := &EntityViewMut{EntityView{world: w}}
		w.walkLive(func(id EntityId) bool {
			view.id = id
			return yield(view)
		})
	}
}

func (w *World) walkLive(visit func(EntityId) bool) {
	w.lock()
	defer w.unlock()

	for slot := range uint32(w.entities.slots()) {
		id, alive := w.entities.idAt(slot)
		if !alive {
			continue
		}
		if !visit(id) {
			return
		}
	}
}

// EnqueueAdd adds an entity now, or once the current iteration finishes.
func (w *World) EnqueueAdd(components ...any) error {
	if !w.Locked() {
		_, err := w.Add(components...)
		return err
	}
	w.pending.Spawn(components...)
	return nil
}

// EnqueueRemove removes an entity now, or once the current iteration finishes.
func (w *World) EnqueueRemove(id EntityId) error {
	if !w.Locked() {
		return w.Remove(id)
	}
	w.pending.Delete(id)
	return nil
}

// EnqueueAddComponent attaches a component now, or once the current iteration finishes.
func (w *World) EnqueueAddComponent(id EntityId, component any) error {
	if !w.Locked() {
		return w.AddComponent(id, component)
	}
	w.pending.AddComponent(id, component)
	return nil
}

// EnqueueRemoveComponent detaches a component now, or once the current iteration finishes.
func (w *World) EnqueueRemoveComponent(id EntityId, t reflect.Type) error {
	if !w.Locked() {
		_, err := w.RemoveComponent(id, t)
		return err
	}
	w.pending.RemoveComponent(id, t)
	return nil
}

// FlushErr returns and clears the errors produced while applying queued operations
// after iteration.
func (w *World) FlushErr() error {
	err := w.flushErr
	w.flushErr = nil
	return err
}

func (w *World) lock() {
	w.locks++
}

func (w *World) unlock() {
	w.locks--
	if w.locks == 0 && w.pending.Len() > 0 {
		if err := w.pending.Flush(w); err != nil {
			w.flushErr = errors.Join(w.flushErr, err)
		}
	}
}

func (w *World) kindOf(component any) (uint32, error) {
	t := componentType(component)
	if t == nil {
		return 0, eris.Wrap(ErrUnknownComponent, "nil component")
	}
	if v := reflect.ValueOf(component); v.Kind() == reflect.Ptr && v.IsNil() {
		return 0, eris.Wrapf(ErrUnknownComponent, "nil *%s", t)
	}
	kind, ok := w.registry.Kind(t)
	if !ok {
		return 0, eris.Wrapf(ErrUnknownComponent, "%s", t)
	}
	return kind, nil
}

func storageOf[T any](w *World) (*genericComponentStorage[T], bool) {
	kind, ok := w.registry.Kind(reflect.TypeFor[T]())
	if !ok {
		return nil, false
	}
	return w.storages[kind].(*genericComponentStorage[T]), true
}
