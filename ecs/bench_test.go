package ecs_test

import (
	"reflect"
	"testing"

	"github.com/plus3/pecs/ecs"
)

func BenchmarkAdd(b *testing.B) {
	world := newTestWorld()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = world.Add(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})
	}
}

func BenchmarkAddWithMultipleComponents(b *testing.B) {
	world := newTestWorld()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = world.Add(
			Position{X: 1.0, Y: 2.0},
			Velocity{DX: 0.5, DY: 0.5},
			Health{Current: 100, Max: 100},
			Name{Value: "Entity"},
		)
	}
}

func BenchmarkRemove(b *testing.B) {
	world := newTestWorld()

	ids := make([]ecs.EntityId, b.N)
	for i := 0; i < b.N; i++ {
		ids[i], _ = world.Add(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = world.Remove(ids[i])
	}
}

func BenchmarkGet(b *testing.B) {
	world := newTestWorld()
	id, _ := world.Add(Position{X: 1.0, Y: 2.0}, Velocity{DX: 0.5, DY: 0.5})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ecs.GetMut[Position](world, id)
	}
}

func populate(world *ecs.World, n int) {
	for i := 0; i < n; i++ {
		switch i % 3 {
		case 0:
			_, _ = world.Add(Position{X: float32(i)}, Velocity{DX: 1, DY: 1})
		case 1:
			_, _ = world.Add(Position{X: float32(i)})
		default:
			_, _ = world.Add(Position{X: float32(i)}, Velocity{DX: 1}, Health{Current: i})
		}
	}
}

func BenchmarkPredIterMutClean(b *testing.B) {
	world := newTestWorld()
	populate(world, 10000)
	moving := movingPredicate(world)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		seq, _ := world.PredIterMut(moving)
		for view := range seq {
			pos, _ := ecs.ViewGetMut[Position](view)
			vel, _ := ecs.ViewGet[Velocity](view)
			pos.X += vel.DX
			pos.Y += vel.DY
		}
	}
}

func BenchmarkPredIterDirty(b *testing.B) {
	world := newTestWorld()
	populate(world, 10000)
	moving := world.AddPred(world.MatchAll(reflect.TypeFor[Position](), reflect.TypeFor[Velocity]()))
	id, _ := world.Add(Name{Value: "toggle"})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = world.AddComponent(id, Score(i))
		seq, _ := world.PredIter(moving)
		for range seq {
		}
	}
}

func BenchmarkQueryValues(b *testing.B) {
	world := newTestWorld()
	populate(world, 10000)
	query := ecs.NewQuery[struct {
		*Position
		*Velocity
	}](world)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for item := range query.Values() {
			item.Position.X += item.Velocity.DX
		}
	}
}
