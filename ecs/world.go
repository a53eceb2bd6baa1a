package ecs

import (
	"slices"

	"github.com/milk9111/collision/ecs/component"
)

// World owns entities, component stores, and system order.
type World struct {
	entities  entityStore
	stores    []componentStore
	systems   []System
	events    EventQueue
	onDestroy []func(Entity)
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{}
}

// CreateEntity allocates a new entity.
func (w *World) CreateEntity() Entity {
	return w.entities.create()
}

// DestroyEntity runs the destroy hooks, drops every component the entity
// owns and invalidates the handle. It returns false for dead handles.
func (w *World) DestroyEntity(e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, fn := range w.onDestroy {
		fn(e)
	}
	for _, s := range w.stores {
		if s != nil {
			s.remove(e.id())
		}
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func (w *World) IsAlive(e Entity) bool {
	if w == nil {
		return false
	}
	return w.entities.isAlive(e)
}

// Entities returns every live entity in id order.
func (w *World) Entities() []Entity {
	if w == nil {
		return nil
	}
	return w.entities.list()
}

// OnDestroy registers fn to run before an entity's components are dropped.
func (w *World) OnDestroy(fn func(Entity)) {
	if w == nil || fn == nil {
		return
	}
	w.onDestroy = append(w.onDestroy, fn)
}

// Query returns the live entities that own every listed component kind,
// sorted by handle. No kinds means no entities.
func (w *World) Query(kinds ...component.Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return nil
	}
	stores := make([]componentStore, 0, len(kinds))
	for _, k := range kinds {
		s := w.storeByID(k.ID())
		if s == nil {
			return nil
		}
		stores = append(stores, s)
	}
	// iterate the smallest store
	slices.SortFunc(stores, func(a, b componentStore) int { return a.size() - b.size() })

	out := make([]Entity, 0, stores[0].size())
next:
	for _, id := range stores[0].ids() {
		for _, s := range stores[1:] {
			if !s.has(id) {
				continue next
			}
		}
		if e, ok := w.entities.handle(id); ok {
			out = append(out, e)
		}
	}
	slices.Sort(out)
	return out
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if s == nil {
		return
	}
	w.systems = append(w.systems, s)
}

// Update runs all systems once, then drops undrained events.
func (w *World) Update() {
	if w == nil {
		return
	}
	for _, s := range w.systems {
		if s != nil {
			s.Update(w)
		}
	}
	w.events.flush()
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

func (w *World) storeByID(id component.ComponentID) componentStore {
	if int(id) >= len(w.stores) {
		return nil
	}
	return w.stores[id]
}

func storeFor[T any](w *World, kind component.ComponentKind[T], create bool) *sparseSet[T] {
	id := kind.ID()
	if existing := w.storeByID(id); existing != nil {
		s, _ := existing.(*sparseSet[T])
		return s
	}
	if !create {
		return nil
	}
	for int(id) >= len(w.stores) {
		w.stores = append(w.stores, nil)
	}
	s := newSparseSet[T]()
	w.stores[id] = s
	return s
}
