package system

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collision/collision"
	"github.com/milk9111/collision/ecs"
	"github.com/milk9111/collision/ecs/component"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func playerEnemyLayers(t *testing.T) collision.LayerMatrix {
	t.Helper()
	m, err := collision.NewLayerMatrix(
		collision.LayerPair{A: collision.LayerPlayer, B: collision.LayerEnemy},
		collision.LayerPair{A: collision.LayerPlayer, B: collision.LayerTrigger},
		collision.LayerPair{A: collision.LayerPlayer, B: collision.LayerEnvironment},
	)
	if err != nil {
		t.Fatalf("layer matrix: %v", err)
	}
	return m
}

func spawnCircle(t *testing.T, w *ecs.World, pos cp.Vector, radius float64, layer collision.Layer, trigger bool) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: pos.X, Y: pos.Y, ScaleX: 1, ScaleY: 1}); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	c := component.NewCollider(collision.MustCircle(cp.Vector{}, radius), layer)
	c.Trigger = trigger
	if err := ecs.Add(w, e, component.ColliderComponent.Kind(), c); err != nil {
		t.Fatalf("add collider: %v", err)
	}
	return e
}

func spawnGrid(t *testing.T, w *ecs.World, origin cp.Vector, g collision.Grid) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{X: origin.X, Y: origin.Y}); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	if err := ecs.Add(w, e, component.ColliderComponent.Kind(), component.NewCollider(g, collision.LayerEnvironment)); err != nil {
		t.Fatalf("add collider: %v", err)
	}
	return e
}

func moveTo(t *testing.T, w *ecs.World, e ecs.Entity, pos cp.Vector) {
	t.Helper()
	tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		t.Fatalf("entity %v has no transform", e)
	}
	tr.SetPosition(pos)
}

func collider(t *testing.T, w *ecs.World, e ecs.Entity) *component.Collider {
	t.Helper()
	c, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
	if !ok {
		t.Fatalf("entity %v has no collider", e)
	}
	return c
}

func addRecorder(t *testing.T, w *ecs.World, e ecs.Entity) *component.TriggerRecorder {
	t.Helper()
	r := &component.TriggerRecorder{}
	if err := ecs.Add(w, e, component.TriggerRecorderComponent.Kind(), r); err != nil {
		t.Fatalf("add recorder: %v", err)
	}
	return r
}

func equalPhases(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
