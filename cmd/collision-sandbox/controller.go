package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collision/collision"
	"github.com/milk9111/collision/ecs"
	"github.com/milk9111/collision/ecs/component"
	"github.com/milk9111/collision/ecs/system"
)

// positionChecker is the part of the collision system the controller needs.
type positionChecker interface {
	IsPositionValid(w *ecs.World, e ecs.Entity, proposed cp.Vector) (bool, error)
}

// playerController moves player-layer colliders, one axis at a time, so they
// slide along walls instead of sticking.
type playerController struct {
	checker positionChecker
	axis    func() cp.Vector
	speed   float64
}

var _ ecs.System = (*playerController)(nil)

func newPlayerController(checker positionChecker, axis func() cp.Vector, speed float64) *playerController {
	return &playerController{checker: checker, axis: axis, speed: speed}
}

func (c *playerController) Update(w *ecs.World) {
	dir := c.axis()
	if dir.X == 0 && dir.Y == 0 {
		return
	}
	step := dir.Normalize().Mult(c.speed)

	var players []ecs.Entity
	ecs.ForEach2(w, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, _ *component.Transform, col *component.Collider) {
		if col.Layer == collision.LayerPlayer && col.Enabled && !col.Trigger {
			players = append(players, e)
		}
	})

	for _, e := range players {
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		col, _ := ecs.Get(w, e, component.ColliderComponent.Kind())
		for _, delta := range [2]cp.Vector{{X: step.X}, {Y: step.Y}} {
			if delta.X == 0 && delta.Y == 0 {
				continue
			}
			// The check takes the collider's world position, not the transform's.
			ok, err := c.checker.IsPositionValid(w, e, col.WorldPosition(t).Add(delta))
			if err != nil {
				panic("player controller: " + err.Error())
			}
			if ok {
				t.SetPosition(t.Position().Add(delta))
			}
		}
	}
}

func keyboardAxis() cp.Vector {
	var v cp.Vector
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		v.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		v.X++
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v.Y--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v.Y++
	}
	return v
}

var _ positionChecker = (*system.CollisionSystem)(nil)
