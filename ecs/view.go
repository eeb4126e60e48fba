package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// View is implemented by the accessors yielded during iteration.
type View interface {
	Id() EntityId
	entityView() *EntityView
}

// EntityView is a read-only accessor for one entity, valid only for the iteration
// step that yielded it. The same view value is reused for every step.
type EntityView struct {
	world *World
	id    EntityId
}

// Id returns the entity the view is bound to.
func (v *EntityView) Id() EntityId {
	return v.id
}

// Occupancy returns the component kinds the entity carries.
func (v *EntityView) Occupancy() Occupancy {
	return Occupancy{
		bits:     v.world.entities.occupancy[v.id.Slot()],
		registry: v.world.registry,
	}
}

func (v *EntityView) entityView() *EntityView {
	return v
}

// EntityViewMut is an EntityView that can also hand out mutable component pointers and
// queue structural changes for the entity.
type EntityViewMut struct {
	EntityView
}

// Remove queues destruction of the entity; it takes effect when iteration finishes.
func (v *EntityViewMut) Remove() error {
	return v.world.EnqueueRemove(v.id)
}

// AddComponent queues attaching a component to the entity.
func (v *EntityViewMut) AddComponent(component any) error {
	return v.world.EnqueueAddComponent(v.id, component)
}

// RemoveComponent queues detaching the component of type t from the entity.
func (v *EntityViewMut) RemoveComponent(t reflect.Type) error {
	return v.world.EnqueueRemoveComponent(v.id, t)
}

// ViewHas reports whether the viewed entity carries a component of type T.
func ViewHas[T any](v View) bool {
	ev := v.entityView()
	return Has[T](ev.world, ev.id)
}

// ViewGet returns a copy of the viewed entity's component of type T.
func ViewGet[T any](v View) (T, error) {
	ev := v.entityView()
	return Get[T](ev.world, ev.id)
}

// ViewGetMut returns a pointer to the viewed entity's component of type T.
// Only mutable views can be used.
func ViewGetMut[T any](v *EntityViewMut) (*T, error) {
	if v == nil {
		return nil, eris.Wrap(ErrStaleEntity, "nil view")
	}
	return GetMut[T](v.world, v.id)
}
