package main

import (
	"math/rand"

	"github.com/plus3/pecs/ecs"
)

type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Health struct {
	Current, Max int
}

type Lifetime struct {
	Remaining float64
}

type Team uint8

// RegisterStressComponents registers every component kind the stress test spawns.
func RegisterStressComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Health](registry)
	ecs.RegisterComponent[Lifetime](registry)
	ecs.RegisterComponent[Team](registry)
}

// SpawnRandomEntity adds an entity with a Position and a random subset of the other components.
func SpawnRandomEntity(world *ecs.World, rng *rand.Rand) error {
	components := []any{Position{X: rng.Float64() * 1000, Y: rng.Float64() * 1000}}
	if rng.Intn(2) == 0 {
		components = append(components, Velocity{DX: rng.Float64() - 0.5, DY: rng.Float64() - 0.5})
	}
	if rng.Intn(3) == 0 {
		components = append(components, Health{Current: rng.Intn(100), Max: 100})
	}
	if rng.Intn(4) == 0 {
		components = append(components, Lifetime{Remaining: rng.Float64() * 5})
	}
	if rng.Intn(2) == 0 {
		components = append(components, Team(rng.Intn(4)))
	}
	return world.EnqueueAdd(components...)
}
