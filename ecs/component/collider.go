package component

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collision/collision"
)

// Collider attaches a collision shape to an entity. The shape is placed at
// the entity transform position plus Offset.
type Collider struct {
	Shape collision.Shape
	Layer collision.Layer
	// Trigger colliders report enter/stay/exit but never block movement.
	Trigger bool
	Enabled bool
	Offset  cp.Vector
}

// NewCollider returns an enabled, non-trigger collider.
func NewCollider(shape collision.Shape, layer collision.Layer) *Collider {
	return &Collider{Shape: shape, Layer: layer, Enabled: true}
}

// WorldPosition returns where the shape sits for transform t.
func (c *Collider) WorldPosition(t *Transform) cp.Vector {
	if t == nil {
		return c.Offset
	}
	return t.Position().Add(c.Offset)
}

// Bounds returns the world-space bounding box for transform t.
func (c *Collider) Bounds(t *Transform) cp.BB {
	if c.Shape == nil {
		p := c.WorldPosition(t)
		return cp.BB{L: p.X, B: p.Y, R: p.X, T: p.Y}
	}
	return c.Shape.Bounds(c.WorldPosition(t))
}

var ColliderComponent = NewComponent[Collider]()
