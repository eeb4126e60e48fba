package ecs

// iComponentStorage is an interface for a type-erased, slot-indexed component storage.
type iComponentStorage interface {
	Insert(slot uint32, item any) bool
	Remove(slot uint32) (any, bool)
	Get(slot uint32) any
	Has(slot uint32) bool
	Len() int
}
