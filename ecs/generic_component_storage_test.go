package ecs

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
}

func TestComponentStorageInsertGetRemove(t *testing.T) {
	cs := &genericComponentStorage[point]{}

	assert.False(t, cs.Has(0))
	assert.Nil(t, cs.Get(0))

	require.True(t, cs.Insert(3, point{1, 2}))
	assert.True(t, cs.Has(3))
	assert.False(t, cs.Has(2))
	assert.Equal(t, 1, cs.Len())
	assert.Equal(t, &point{1, 2}, cs.Get(3))

	// Insert overwrites
	require.True(t, cs.Insert(3, &point{5, 6}))
	assert.Equal(t, 1, cs.Len())
	assert.Equal(t, point{5, 6}, *cs.get(3))

	value, ok := cs.Remove(3)
	require.True(t, ok)
	assert.Equal(t, point{5, 6}, value)
	assert.False(t, cs.Has(3))
	assert.Equal(t, 0, cs.Len())

	_, ok = cs.Remove(3)
	assert.False(t, ok)
}

func TestComponentStorageRejectsWrongType(t *testing.T) {
	cs := &genericComponentStorage[point]{}
	assert.False(t, cs.Insert(0, "not a point"))
	assert.False(t, cs.Insert(0, (*point)(nil)))
	assert.Equal(t, 0, cs.Len())
}

func TestComponentStorageGrowsAcrossBlocks(t *testing.T) {
	cs := &genericComponentStorage[int]{}
	far := uint32(genericBlockSize*3 + 5)

	require.True(t, cs.Insert(far, 42))
	assert.Len(t, cs.blocks, 4)
	assert.True(t, cs.Has(far))
	assert.False(t, cs.Has(far-1))
	assert.False(t, cs.Has(far+genericBlockSize))
}

func TestComponentRegistry(t *testing.T) {
	r := NewComponentRegistry()
	a := RegisterComponent[point](r)
	b := RegisterComponent[int](r)

	assert.Equal(t, uint32(0), a)
	assert.Equal(t, uint32(1), b)
	assert.Equal(t, a, RegisterComponent[point](r), "re-registering keeps the slot")
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []reflect.Type{reflect.TypeFor[point](), reflect.TypeFor[int]()}, r.Types())

	kind, ok := r.Kind(reflect.TypeFor[int]())
	assert.True(t, ok)
	assert.Equal(t, b, kind)

	_, ok = r.Kind(reflect.TypeFor[string]())
	assert.False(t, ok)
}

func TestComponentRegistrySealed(t *testing.T) {
	r := NewComponentRegistry()
	RegisterComponent[point](r)
	NewWorld(r)

	assert.NotPanics(t, func() { RegisterComponent[point](r) })
	assert.Panics(t, func() { RegisterComponent[int](r) })
}

func TestComponentRegistryRejectsPointers(t *testing.T) {
	r := NewComponentRegistry()
	assert.Panics(t, func() { RegisterComponent[*point](r) })
	assert.Panics(t, func() { RegisterComponent[map[string]int](r) })
}

func TestComponentRegistryFull(t *testing.T) {
	r := NewComponentRegistry()
	for i := 0; i < MaxComponentKinds; i++ {
		r.kinds = append(r.kinds, componentKind{})
	}
	assert.Panics(t, func() { RegisterComponent[point](r) })
}
