package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

var entityIdType = reflect.TypeFor[EntityId]()

// Query is a typed iteration over a predicate built from a struct type.
// The type T should be a struct with embedded pointer fields for each required component type.
// Named pointer fields can be marked as optional using the `ecs:"optional"` struct tag, and a
// field of type EntityId receives the id of the yielded entity.
type Query[T any] struct {
	world       *World
	handle      PredicateHandle
	kinds       []uint32
	optional    []bool
	fieldOffset []uintptr
	idOffset    uintptr
	hasId       bool
}

// NewQuery creates a Query over the given world and registers its predicate.
func NewQuery[T any](world *World) *Query[T] {
	q := &Query[T]{}
	q.Init(world)
	return q
}

// Init initializes the Query with a world and registers its predicate.
// Called by the Scheduler during system registration. Re-initializing against the same
// world keeps the existing predicate.
func (q *Query[T]) Init(world *World) {
	structType := reflect.TypeFor[T]()
	if structType.Kind() != reflect.Struct {
		panic("Query type parameter must be a struct")
	}
	if q.world == world && q.handle != 0 {
		return
	}

	q.world = world
	q.kinds = q.kinds[:0]
	q.optional = q.optional[:0]
	q.fieldOffset = q.fieldOffset[:0]
	q.hasId = false

	required := make([]reflect.Type, 0, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)

		if field.Type == entityIdType {
			q.idOffset = field.Offset
			q.hasId = true
			continue
		}
		if field.Type.Kind() != reflect.Ptr {
			panic("Query struct fields must be pointer types or EntityId")
		}

		componentType := field.Type.Elem()
		kind, ok := world.registry.Kind(componentType)
		if !ok {
			panic("component type " + componentType.String() + " not registered")
		}

		// Embedded fields (field.Anonymous) are always required
		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}
		if !isOptional {
			required = append(required, componentType)
		}

		q.kinds = append(q.kinds, kind)
		q.optional = append(q.optional, isOptional)
		q.fieldOffset = append(q.fieldOffset, field.Offset)
	}

	q.handle = world.AddPred(world.MatchAll(required...))
}

// Handle returns the predicate handle backing the query.
func (q *Query[T]) Handle() PredicateHandle {
	return q.handle
}

// fill points the struct's fields at the entity's components. It returns false if a
// required component is missing.
func (q *Query[T]) fill(id EntityId, resultPtr unsafe.Pointer) bool {
	slot := id.Slot()
	for i, kind := range q.kinds {
		fieldPtr := unsafe.Add(resultPtr, q.fieldOffset[i])

		component := q.world.storages[kind].Get(slot)
		if component == nil {
			if q.optional[i] {
				*(*unsafe.Pointer)(fieldPtr) = nil
				continue
			}
			return false
		}

		componentPtr := (*iface)(unsafe.Pointer(&component)).data
		*(*unsafe.Pointer)(fieldPtr) = componentPtr
	}
	if q.hasId {
		*(*EntityId)(unsafe.Add(resultPtr, q.idOffset)) = id
	}
	return true
}

// Get returns a populated struct for a live entity, or nil if it does not match.
func (q *Query[T]) Get(id EntityId) *T {
	if q.world == nil || !q.world.IsAlive(id) {
		return nil
	}
	var result T
	if !q.fill(id, unsafe.Pointer(&result)) {
		return nil
	}
	return &result
}

// Iter returns an iterator over entity IDs and populated structs, in ascending slot order.
// The component pointers are only valid during the iteration step.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	if q.world == nil {
		panic("Query.Iter() called before Query.Init()")
	}

	seq, err := q.world.PredIterMut(q.handle)
	if err != nil {
		panic(err)
	}

	return func(yield func(EntityId, T) bool) {
		var result T
		resultPtr := unsafe.Pointer(&result)

		for view := range seq {
			if !q.fill(view.id, resultPtr) {
				continue
			}
			if !yield(view.id, result) {
				return
			}
		}
	}
}

// Values returns an iterator over the populated structs only.
func (q *Query[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range q.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Count returns the number of entities currently matching the query.
func (q *Query[T]) Count() int {
	n := 0
	for range q.Iter() {
		n++
	}
	return n
}
