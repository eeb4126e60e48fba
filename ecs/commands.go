package ecs

import (
	"errors"
	"reflect"

	"github.com/rotisserie/eris"
)

type commandType int

const (
	cmdSpawn commandType = iota
	cmdDelete
	cmdAddComponent
	cmdRemoveComponent
)

// Commands provides a buffer for deferred structural operations. Structural operations are
// replayed in the order they were queued; deferred functions run after all of them.
type Commands struct {
	ops    []command
	defers []func()
}

type command struct {
	typ        commandType
	entity     EntityId
	components []any
	compType   reflect.Type
}

func newCommands() *Commands {
	return &Commands{}
}

// Defer queues a function to run after every structural operation has been applied.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.ops = append(c.ops, command{typ: cmdSpawn, components: components})
}

// Delete queues an entity deletion operation.
func (c *Commands) Delete(entity EntityId) {
	c.ops = append(c.ops, command{typ: cmdDelete, entity: entity})
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.ops = append(c.ops, command{
		typ:        cmdAddComponent,
		entity:     entity,
		components: []any{component},
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.ops = append(c.ops, command{
		typ:      cmdRemoveComponent,
		entity:   entity,
		compType: compType,
	})
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.ops) + len(c.defers)
}

// Flush applies all queued operations to the world in queue order and resets the buffer.
// Operations that target an entity deleted earlier in the same flush are dropped; every
// other failure is returned.
func (c *Commands) Flush(w *World) error {
	if w.Locked() {
		return eris.Wrap(ErrConcurrentMutation, "flush commands")
	}

	ops, defers := c.ops, c.defers
	c.ops, c.defers = nil, nil

	var errs []error
	deleted := make(map[EntityId]bool)

	for _, op := range ops {
		if op.typ != cmdSpawn && deleted[op.entity] {
			continue
		}

		var err error
		switch op.typ {
		case cmdSpawn:
			_, err = w.Add(op.components...)
		case cmdDelete:
			if err = w.Remove(op.entity); err == nil {
				deleted[op.entity] = true
			}
		case cmdAddComponent:
			err = w.AddComponent(op.entity, op.components[0])
		case cmdRemoveComponent:
			_, err = w.RemoveComponent(op.entity, op.compType)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	for _, fn := range defers {
		fn()
	}

	return errors.Join(errs...)
}
