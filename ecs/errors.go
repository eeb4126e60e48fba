package ecs

import "github.com/rotisserie/eris"

var (
	// ErrStaleEntity is returned when an EntityId no longer refers to a live entity.
	ErrStaleEntity = eris.New("stale entity")

	// ErrComponentNotFound is returned when an entity does not carry the requested component kind.
	ErrComponentNotFound = eris.New("component not found")

	// ErrInvalidHandle is returned for a PredicateHandle the world never issued.
	ErrInvalidHandle = eris.New("invalid predicate handle")

	// ErrConcurrentMutation is returned when a structural change is attempted while
	// a predicate sequence is being iterated.
	ErrConcurrentMutation = eris.New("structural mutation during iteration")

	// ErrUnknownComponent is returned when a component type was never registered.
	ErrUnknownComponent = eris.New("component type not registered")
)
