package ecs

import "unsafe"

// iface mirrors the runtime layout of an interface value. For a boxed *T the data word
// is the pointer itself.
type iface struct {
	typ  unsafe.Pointer
	data unsafe.Pointer
}
