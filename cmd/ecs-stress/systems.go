package main

import (
	"math/rand"

	"github.com/plus3/pecs/ecs"
)

type movementSystem struct {
	Entities ecs.Query[struct {
		*Position
		*Velocity
	}]
}

func (s *movementSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Entities.Values() {
		item.Position.X += item.Velocity.DX * frame.DeltaTime
		item.Position.Y += item.Velocity.DY * frame.DeltaTime
	}
}

type regenSystem struct {
	Entities ecs.Query[struct{ *Health }]
}

func (s *regenSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Entities.Values() {
		if item.Health.Current < item.Health.Max {
			item.Health.Current++
		}
	}
}

type lifetimeSystem struct {
	Entities ecs.Query[struct {
		Id ecs.EntityId
		*Lifetime
	}]
}

func (s *lifetimeSystem) Execute(frame *ecs.UpdateFrame) {
	for item := range s.Entities.Values() {
		item.Lifetime.Remaining -= frame.DeltaTime
		if item.Lifetime.Remaining <= 0 {
			frame.Commands.Delete(item.Id)
		}
	}
}

// churnSystem destroys entities matched by a hand-written predicate and spawns replacements,
// forcing every predicate cache to rebuild each frame.
type churnSystem struct {
	amount  int
	handle  ecs.PredicateHandle
	rng     *rand.Rand
	started bool
}

func (s *churnSystem) Execute(frame *ecs.UpdateFrame) {
	if !s.started {
		s.handle = frame.World.AddPred(func(o ecs.Occupancy) bool {
			return ecs.Holds[Team](o) && !ecs.Holds[Lifetime](o)
		})
		s.started = true
	}

	seq, err := frame.World.PredIter(s.handle)
	if err != nil {
		panic(err)
	}

	removed := 0
	for view := range seq {
		if removed >= s.amount {
			break
		}
		if s.rng.Intn(10) == 0 {
			frame.Commands.Delete(view.Id())
			removed++
		}
	}

	for i := 0; i < s.amount; i++ {
		frame.Commands.Defer(func() {
			if err := SpawnRandomEntity(frame.World, s.rng); err != nil {
				panic(err)
			}
		})
	}
}

// RegisterStressSystems registers the systems exercised every frame.
func RegisterStressSystems(scheduler *ecs.Scheduler, churn int) {
	scheduler.Register(&movementSystem{})
	scheduler.Register(&regenSystem{})
	scheduler.Register(&lifetimeSystem{})
	scheduler.Register(&churnSystem{amount: churn, rng: rand.New(rand.NewSource(2))})
}
