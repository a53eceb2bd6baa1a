package system

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collision/collision"
	"github.com/milk9111/collision/ecs"
	"github.com/milk9111/collision/ecs/component"
	"golang.org/x/time/rate"
)

// NarrowPhase confirms potential pairs with exact shape tests and answers
// position probes for movement code.
type NarrowPhase struct {
	solver *collision.Solver
	layers atomic.Pointer[collision.LayerMatrix]
	logger *log.Logger

	probeMu sync.Mutex
	skipLog rate.Sometimes
}

func NewNarrowPhase(solver *collision.Solver, layers collision.LayerMatrix, logger *log.Logger) *NarrowPhase {
	if solver == nil {
		solver = collision.NewSolver()
	}
	if logger == nil {
		logger = log.Default()
	}
	n := &NarrowPhase{
		solver:  solver,
		logger:  logger,
		skipLog: rate.Sometimes{First: 5, Interval: time.Second},
	}
	n.layers.Store(&layers)
	return n
}

func (n *NarrowPhase) Layers() collision.LayerMatrix {
	return *n.layers.Load()
}

// SetLayers swaps the matrix. Ticks already running keep the old one.
func (n *NarrowPhase) SetLayers(m collision.LayerMatrix) {
	n.layers.Store(&m)
}

// DetectCollisions re-reads each potential pair from the world and keeps the
// ones whose shapes actually overlap. Pairs whose entities vanished or lost
// a component are dropped quietly. Only a solver configuration error stops
// the pass.
func (n *NarrowPhase) DetectCollisions(w *ecs.World, potential []Pair) ([]Pair, error) {
	if w == nil || len(potential) == 0 {
		return nil, nil
	}
	layers := n.Layers()
	seen := make(map[PairKey]struct{}, len(potential))
	confirmed := make([]Pair, 0, len(potential))
	rejected := 0

	for _, p := range potential {
		if p.A == p.B {
			continue
		}
		key := p.Key()
		if _, dup := seen[key]; dup {
			continue
		}

		ca, ta, okA := n.lookup(w, p.A)
		cb, tb, okB := n.lookup(w, p.B)
		if !okA || !okB {
			n.skipLog.Do(func() {
				n.logger.Debug("skip pair", "pair", key, "reason", "entity or component missing")
			})
			continue
		}
		if !ca.Enabled || !cb.Enabled {
			continue
		}
		if !layers.CanCollide(ca.Layer, cb.Layer) {
			rejected++
			continue
		}

		contact, hit, err := n.solver.Solve(ca.Shape, ca.WorldPosition(ta), cb.Shape, cb.WorldPosition(tb))
		if err != nil {
			recordLayerRejects(rejected)
			return nil, fmt.Errorf("pair %s (%s/%s): %w", key, ca.Layer, cb.Layer, err)
		}
		if !hit {
			continue
		}

		pair, err := NewPair(p.A, *ca, p.B, *cb)
		if err != nil {
			continue
		}
		if pair.A != p.A {
			contact = contact.Flip()
		}
		pair.Contact = contact
		seen[key] = struct{}{}
		confirmed = append(confirmed, pair)
	}

	recordLayerRejects(rejected)
	return confirmed, nil
}

func (n *NarrowPhase) lookup(w *ecs.World, e ecs.Entity) (*component.Collider, *component.Transform, bool) {
	if !w.IsAlive(e) {
		return nil, nil, false
	}
	c, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
	if !ok || c.Shape == nil {
		return nil, nil, false
	}
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return nil, nil, false
	}
	return c, t, true
}

// IsPositionValid reports whether e's collider could sit at proposed without
// overlapping a blocking collider. Trigger colliders never block, on either
// side. The entity transform is moved for the duration of the probe and is
// always put back.
func (n *NarrowPhase) IsPositionValid(w *ecs.World, e ecs.Entity, proposed cp.Vector) (bool, error) {
	if w == nil {
		return true, nil
	}
	col, t, ok := n.lookup(w, e)
	if !ok || !col.Enabled || col.Trigger {
		return true, nil
	}

	n.probeMu.Lock()
	defer n.probeMu.Unlock()

	probe := beginTransformProbe(t, proposed.Sub(col.Offset))
	defer probe.restore()

	layers := n.Layers()
	pos := col.WorldPosition(t)
	for _, other := range w.Query(component.ColliderComponent.Kind(), component.TransformComponent.Kind()) {
		if other == e {
			continue
		}
		oc, ot, ok := n.lookup(w, other)
		if !ok || !oc.Enabled || oc.Trigger {
			continue
		}
		if !layers.CanCollide(col.Layer, oc.Layer) {
			continue
		}
		_, hit, err := n.solver.Solve(col.Shape, pos, oc.Shape, oc.WorldPosition(ot))
		if err != nil {
			recordPositionProbe(probeError)
			return false, fmt.Errorf("probe %s against %s: %w", e, other, err)
		}
		if hit {
			recordPositionProbe(probeBlocked)
			return false, nil
		}
	}
	recordPositionProbe(probeValid)
	return true, nil
}

// transformProbe moves a transform temporarily. restore must run on every
// exit path, so callers defer it right after creating the probe.
type transformProbe struct {
	t     *component.Transform
	saved cp.Vector
}

func beginTransformProbe(t *component.Transform, pos cp.Vector) transformProbe {
	p := transformProbe{t: t, saved: t.Position()}
	t.SetPosition(pos)
	return p
}

func (p transformProbe) restore() {
	p.t.SetPosition(p.saved)
}
