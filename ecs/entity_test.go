package ecs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityIdEncoding(t *testing.T) {
	tests := []struct {
		slot       uint32
		generation uint32
	}{
		{0, 1},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{1, 0},
		{0x12345678, 0x9ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("slot=%d,gen=%d", tt.slot, tt.generation), func(t *testing.T) {
			id := NewEntityId(tt.slot, tt.generation)
			assert.Equal(t, tt.slot, id.Slot())
			assert.Equal(t, tt.generation, id.Generation())
		})
	}

	assert.True(t, EntityId(0).IsNull())
	assert.Equal(t, "3:7", NewEntityId(3, 7).String())
}

func TestEntityTableAllocation(t *testing.T) {
	table := newEntityTable(4)

	a := table.add()
	b := table.add()
	assert.Equal(t, uint32(0), a.Slot())
	assert.Equal(t, uint32(1), b.Slot())
	assert.Equal(t, uint32(1), a.Generation())
	assert.False(t, a.IsNull())
	assert.Equal(t, 2, table.live)
	assert.True(t, table.isAlive(a))
	assert.True(t, table.isAlive(b))
}

func TestEntityTableSlotReuse(t *testing.T) {
	table := newEntityTable(0)

	a := table.add()
	table.mark(a.Slot(), 3)
	require.True(t, table.remove(a))
	assert.False(t, table.isAlive(a))
	assert.False(t, table.remove(a), "removing a stale id must fail")

	b := table.add()
	assert.Equal(t, a.Slot(), b.Slot(), "freed slot is reused")
	assert.Equal(t, a.Generation()+1, b.Generation())
	assert.NotEqual(t, a, b)
	assert.False(t, table.isAlive(a))
	assert.True(t, table.isAlive(b))

	assert.Equal(t, emptyMask, table.occupancy[b.Slot()], "reused slot starts with no components")
}

func TestEntityTableUnknownSlot(t *testing.T) {
	table := newEntityTable(0)
	assert.False(t, table.isAlive(NewEntityId(10, 1)))

	_, alive := table.idAt(10)
	assert.False(t, alive)
}

func TestEntityTableGenerationWrap(t *testing.T) {
	table := newEntityTable(0)
	a := table.add()
	table.generations[a.Slot()] = 0xFFFFFFFF
	a = NewEntityId(a.Slot(), 0xFFFFFFFF)

	require.True(t, table.remove(a))
	b := table.add()
	assert.Equal(t, uint32(1), b.Generation(), "generation skips the null value")
}
