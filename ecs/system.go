package ecs

// System represents a behavior that operates on entities with specific components.
// User-defined systems implement this interface and can include Query fields, which the
// Scheduler initializes on registration, as well as custom state that persists between frames.
type System interface {
	Execute(frame *UpdateFrame)
}
