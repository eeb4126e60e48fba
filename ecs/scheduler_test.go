package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/pecs/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MovementSystem struct {
	Entities ecs.Query[struct {
		*Position
		*Velocity
	}]
	ExecuteCount int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	for item := range s.Entities.Values() {
		item.Position.X += item.Velocity.DX * float32(frame.DeltaTime)
		item.Position.Y += item.Velocity.DY * float32(frame.DeltaTime)
	}
}

type HealthSystem struct {
	Entities ecs.Query[struct {
		*Health
	}]
	ExecuteCount int
	TotalHealth  float64
}

func (s *HealthSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	s.TotalHealth = 0
	for item := range s.Entities.Values() {
		s.TotalHealth += float64(item.Health.Current)
	}
}

func TestScheduler(t *testing.T) {
	t.Run("system execution and query initialization", func(t *testing.T) {
		world := newTestWorld()
		scheduler := ecs.NewScheduler(world)

		movement := &MovementSystem{}
		health := &HealthSystem{}

		scheduler.Register(movement)
		scheduler.Register(health)
		assert.Equal(t, 2, world.PredicateCount(), "each Query field registers a predicate")

		mover, _ := world.Add(Position{X: 0, Y: 0}, Velocity{DX: 1, DY: 2})
		_, _ = world.Add(Health{Current: 100, Max: 100})

		require.NoError(t, scheduler.Once(1.0))

		assert.Equal(t, 1, movement.ExecuteCount)
		assert.Equal(t, 1, health.ExecuteCount)
		assert.Equal(t, 100.0, health.TotalHealth)

		pos, err := ecs.Get[Position](world, mover)
		require.NoError(t, err)
		assert.Equal(t, Position{X: 1, Y: 2}, pos)
	})

	t.Run("stats", func(t *testing.T) {
		world := newTestWorld()
		scheduler := ecs.NewScheduler(world)

		stats := scheduler.GetStats()
		assert.Equal(t, 0, stats.SystemCount)
		assert.Equal(t, int64(0), stats.TotalExecutions)

		scheduler.Register(&MovementSystem{})
		scheduler.Register(&HealthSystem{})

		for i := 0; i < 3; i++ {
			require.NoError(t, scheduler.Once(0.016))
		}

		stats = scheduler.GetStats()
		assert.Equal(t, 2, stats.SystemCount)
		assert.Equal(t, int64(6), stats.TotalExecutions)
		require.Len(t, stats.Systems, 2)
		assert.Equal(t, "MovementSystem", stats.Systems[0].Name)
		assert.Equal(t, "HealthSystem", stats.Systems[1].Name)
		for _, sys := range stats.Systems {
			assert.Equal(t, int64(3), sys.ExecutionCount)
			assert.LessOrEqual(t, sys.MinDuration, sys.MaxDuration)
		}
	})

	t.Run("predicate rebuilds and applied commands", func(t *testing.T) {
		world := newTestWorld()
		scheduler := ecs.NewScheduler(world)
		scheduler.Register(&MovementSystem{})
		scheduler.Register(&testSpawnSystem{})
		_, _ = world.Add(Position{}, Velocity{DX: 1})

		require.NoError(t, scheduler.Once(0.016))
		require.NoError(t, scheduler.Once(0.016))

		stats := scheduler.GetStats()
		assert.Equal(t, int64(4), stats.CommandsApplied)
		assert.Equal(t, 2, stats.Systems[0].PredicateRebuilds, "spawns from the previous frame dirty the cache")
		assert.Equal(t, 1, stats.Systems[0].LastRebuilds)
		assert.Equal(t, 0, stats.Systems[1].PredicateRebuilds)
		assert.Equal(t, 5, world.Len())
	})

	t.Run("run until cancelled", func(t *testing.T) {
		world := newTestWorld()
		scheduler := ecs.NewScheduler(world)
		movement := &MovementSystem{}
		scheduler.Register(movement)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		require.NoError(t, scheduler.Run(ctx, 5*time.Millisecond))
		assert.Greater(t, movement.ExecuteCount, 0)
	})
}
