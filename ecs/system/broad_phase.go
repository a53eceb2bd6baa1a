package system

import (
	"slices"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collision/ecs"
	"github.com/milk9111/collision/ecs/component"
)

// BroadPhase finds potentially overlapping colliders with a sweep and prune
// along X. Endpoints are kept between ticks in their sorted order, so the
// insertion sort only has to fix up what moved.
type BroadPhase struct {
	endpoints []sapEndpoint
	entries   []broadEntry
	index     map[ecs.Entity]int
	seen      map[ecs.Entity]bool
	active    []int
	pairs     []Pair
}

type sapEndpoint struct {
	value  float64
	entity ecs.Entity
	isMin  bool
}

type broadEntry struct {
	entity   ecs.Entity
	collider component.Collider
	bounds   cp.BB
}

func NewBroadPhase(capacity int) *BroadPhase {
	if capacity < 0 {
		capacity = 0
	}
	return &BroadPhase{
		endpoints: make([]sapEndpoint, 0, capacity*2),
		entries:   make([]broadEntry, 0, capacity),
		index:     make(map[ecs.Entity]int, capacity),
		seen:      make(map[ecs.Entity]bool, capacity),
	}
}

// Collect returns the potential pairs for the current world state, sorted by
// pair key. The returned slice is reused by the next call.
func (b *BroadPhase) Collect(w *ecs.World) []Pair {
	b.pairs = b.pairs[:0]
	b.entries = b.entries[:0]
	clear(b.index)
	clear(b.seen)
	if w == nil {
		b.endpoints = b.endpoints[:0]
		return b.pairs
	}

	ecs.ForEach2(w, component.ColliderComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, c *component.Collider, t *component.Transform) {
		if !c.Enabled || c.Shape == nil {
			return
		}
		b.index[e] = len(b.entries)
		b.entries = append(b.entries, broadEntry{entity: e, collider: *c, bounds: c.Bounds(t)})
	})

	// Refresh surviving endpoints in place, then append newcomers.
	kept := b.endpoints[:0]
	for _, ep := range b.endpoints {
		i, ok := b.index[ep.entity]
		if !ok {
			continue
		}
		if ep.isMin {
			ep.value = b.entries[i].bounds.L
		} else {
			ep.value = b.entries[i].bounds.R
		}
		b.seen[ep.entity] = true
		kept = append(kept, ep)
	}
	for _, en := range b.entries {
		if b.seen[en.entity] {
			continue
		}
		kept = append(kept,
			sapEndpoint{value: en.bounds.L, entity: en.entity, isMin: true},
			sapEndpoint{value: en.bounds.R, entity: en.entity, isMin: false},
		)
	}
	b.endpoints = kept
	insertionSortEndpoints(b.endpoints)

	b.active = b.active[:0]
	for _, ep := range b.endpoints {
		idx := b.index[ep.entity]
		if !ep.isMin {
			for i, a := range b.active {
				if a == idx {
					b.active[i] = b.active[len(b.active)-1]
					b.active = b.active[:len(b.active)-1]
					break
				}
			}
			continue
		}
		cur := b.entries[idx]
		for _, a := range b.active {
			other := b.entries[a]
			if !cur.bounds.Intersects(other.bounds) {
				continue
			}
			p, err := NewPair(cur.entity, cur.collider, other.entity, other.collider)
			if err != nil {
				continue
			}
			b.pairs = append(b.pairs, p)
		}
		b.active = append(b.active, idx)
	}

	slices.SortFunc(b.pairs, comparePairs)
	return b.pairs
}

// endpointLess puts starts before ends at equal coordinates so touching
// boxes still reach the narrow phase.
func endpointLess(a, b sapEndpoint) bool {
	if a.value != b.value {
		return a.value < b.value
	}
	return a.isMin && !b.isMin
}

func insertionSortEndpoints(eps []sapEndpoint) {
	for i := 1; i < len(eps); i++ {
		key := eps[i]
		j := i - 1
		for j >= 0 && endpointLess(key, eps[j]) {
			eps[j+1] = eps[j]
			j--
		}
		eps[j+1] = key
	}
}

func comparePairs(a, b Pair) int {
	switch {
	case a.A < b.A:
		return -1
	case a.A > b.A:
		return 1
	case a.B < b.B:
		return -1
	case a.B > b.B:
		return 1
	default:
		return 0
	}
}
