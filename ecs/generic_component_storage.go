package ecs

import (
	"fmt"
	"reflect"
)

// MaxComponentKinds is the largest number of component types a registry can hold.
const MaxComponentKinds = 64

// ComponentRegistry is the closed list of component kinds a World is built over.
// Each registered type gets a fixed storage slot in registration order. The registry
// is sealed when the first World is created from it; registering afterwards panics.
type ComponentRegistry struct {
	kinds  []componentKind
	byType map[reflect.Type]uint32
	sealed bool
}

type componentKind struct {
	typ     reflect.Type
	factory func() iComponentStorage
}

// NewComponentRegistry creates a new, empty component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		byType: make(map[reflect.Type]uint32),
	}
}

// RegisterComponent registers a component type with the given registry and returns its
// storage slot. Registering the same type twice returns the existing slot.
func RegisterComponent[T any](r *ComponentRegistry) uint32 {
	t := reflect.TypeFor[T]()
	if kind, ok := r.byType[t]; ok {
		return kind
	}
	if r.sealed {
		panic("component registry is sealed, cannot register " + t.String())
	}
	if len(r.kinds) >= MaxComponentKinds {
		panic(fmt.Sprintf("component registry full (%d kinds), cannot register %s", MaxComponentKinds, t))
	}
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		panic("components cannot be pointers, maps, channels, functions or interfaces: " + t.String())
	}

	kind := uint32(len(r.kinds))
	r.kinds = append(r.kinds, componentKind{
		typ: t,
		factory: func() iComponentStorage {
			return &genericComponentStorage[T]{}
		},
	})
	r.byType[t] = kind
	return kind
}

// Kind returns the storage slot assigned to a component type.
func (r *ComponentRegistry) Kind(t reflect.Type) (uint32, bool) {
	kind, ok := r.byType[t]
	return kind, ok
}

// Types returns the registered component types in slot order.
func (r *ComponentRegistry) Types() []reflect.Type {
	types := make([]reflect.Type, len(r.kinds))
	for i, k := range r.kinds {
		types[i] = k.typ
	}
	return types
}

// Len returns the number of registered component kinds.
func (r *ComponentRegistry) Len() int {
	return len(r.kinds)
}

func (r *ComponentRegistry) seal() {
	r.sealed = true
}

// componentType resolves the registered type of a component value, dereferencing pointers.
func componentType(component any) reflect.Type {
	t := reflect.TypeOf(component)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

const (
	genericBlockSize = 64
)

// genericComponentStorage stores components of type T in fixed-size blocks indexed by entity slot.
// The filled flags are the explicit empty marker for slots without a component.
type genericComponentStorage[T any] struct {
	blocks [][genericBlockSize]T
	filled [][genericBlockSize]bool
	count  int
}

func (cs *genericComponentStorage[T]) locate(slot uint32) (int, int) {
	return int(slot) / genericBlockSize, int(slot) % genericBlockSize
}

// Insert attaches or replaces the component for a slot. It returns false if the item is not a T.
func (cs *genericComponentStorage[T]) Insert(slot uint32, item any) bool {
	var concreteItem T
	if ptr, ok := item.(*T); ok && ptr != nil {
		concreteItem = *ptr
	} else if val, ok := item.(T); ok {
		concreteItem = val
	} else {
		return false
	}
	cs.insert(slot, concreteItem)
	return true
}

func (cs *genericComponentStorage[T]) insert(slot uint32, item T) {
	blockIdx, slotIdx := cs.locate(slot)
	for blockIdx >= len(cs.blocks) {
		cs.blocks = append(cs.blocks, [genericBlockSize]T{})
		cs.filled = append(cs.filled, [genericBlockSize]bool{})
	}

	if !cs.filled[blockIdx][slotIdx] {
		cs.count++
	}
	cs.blocks[blockIdx][slotIdx] = item
	cs.filled[blockIdx][slotIdx] = true
}

// Remove detaches the component for a slot and returns the prior value.
func (cs *genericComponentStorage[T]) Remove(slot uint32) (any, bool) {
	value, ok := cs.remove(slot)
	if !ok {
		return nil, false
	}
	return value, true
}

func (cs *genericComponentStorage[T]) remove(slot uint32) (T, bool) {
	var zero T
	if !cs.Has(slot) {
		return zero, false
	}
	blockIdx, slotIdx := cs.locate(slot)
	value := cs.blocks[blockIdx][slotIdx]
	cs.blocks[blockIdx][slotIdx] = zero
	cs.filled[blockIdx][slotIdx] = false
	cs.count--
	return value, true
}

// Get returns a pointer to the component at the given slot, or nil.
func (cs *genericComponentStorage[T]) Get(slot uint32) any {
	ptr := cs.get(slot)
	if ptr == nil {
		return nil
	}
	return ptr
}

func (cs *genericComponentStorage[T]) get(slot uint32) *T {
	if !cs.Has(slot) {
		return nil
	}
	blockIdx, slotIdx := cs.locate(slot)
	return &cs.blocks[blockIdx][slotIdx]
}

// Has checks if a component exists at the given slot.
func (cs *genericComponentStorage[T]) Has(slot uint32) bool {
	blockIdx, slotIdx := cs.locate(slot)
	if blockIdx >= len(cs.blocks) {
		return false
	}
	return cs.filled[blockIdx][slotIdx]
}

// Len returns the number of occupied slots.
func (cs *genericComponentStorage[T]) Len() int {
	return cs.count
}
