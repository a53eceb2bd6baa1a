package main

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collision/collision"
	"github.com/milk9111/collision/ecs"
	"github.com/milk9111/collision/ecs/component"
	"github.com/milk9111/collision/ecs/system"
	"golang.org/x/image/colornames"
)

var layerColors = [collision.LayerCount]color.RGBA{
	collision.LayerPlayer:      colornames.Lightskyblue,
	collision.LayerEnemy:       colornames.Orange,
	collision.LayerEnvironment: colornames.Slategray,
	collision.LayerTrigger:     colornames.Gold,
	collision.LayerProjectile:  colornames.Violet,
}

func layerColor(l collision.Layer) color.RGBA {
	if !l.Valid() {
		return colornames.White
	}
	return layerColors[l]
}

// drawWorld renders every collider from the published snapshot's point of
// view: shapes in a confirmed pair are tinted and contacts drawn.
func drawWorld(screen *ebiten.Image, w *ecs.World, state *system.CollisionState) {
	screen.Fill(colornames.Black)
	frame := state.Frame()

	hit := make(map[ecs.Entity]bool)
	for _, p := range frame.Collisions {
		hit[p.A] = true
		hit[p.B] = true
	}
	for _, p := range frame.Triggers {
		hit[p.A] = true
		hit[p.B] = true
	}

	ecs.ForEach2(w, component.TransformComponent.Kind(), component.ColliderComponent.Kind(), func(e ecs.Entity, t *component.Transform, c *component.Collider) {
		clr := layerColor(c.Layer)
		if !c.Enabled {
			clr.A = 64
		}
		pos := c.WorldPosition(t)
		switch s := c.Shape.(type) {
		case collision.Grid:
			drawGrid(screen, s, pos, clr)
		case collision.Circle:
			center := s.Center(pos)
			width := float32(1)
			if hit[e] {
				width = 2
				if !c.Trigger {
					clr = colornames.Red
				}
			}
			vector.StrokeCircle(screen, float32(center.X), float32(center.Y), float32(s.Radius()), width, clr, true)
		}
	})

	for _, p := range frame.Collisions {
		end := p.Contact.Point.Add(p.Contact.Normal.Mult(p.Contact.Depth + 4))
		vector.StrokeLine(screen, float32(p.Contact.Point.X), float32(p.Contact.Point.Y), float32(end.X), float32(end.Y), 1, colornames.Lime, true)
	}
}

func drawGrid(screen *ebiten.Image, g collision.Grid, origin cp.Vector, clr color.RGBA) {
	fill := clr
	fill.A = 160
	cols, rows := g.Size()
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if !g.Solid(col, row) {
				continue
			}
			bb := g.CellBounds(origin, col, row)
			vector.FillRect(screen, float32(bb.L), float32(bb.B), float32(bb.R-bb.L), float32(bb.T-bb.B), fill, false)
		}
	}
}
