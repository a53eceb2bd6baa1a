package system

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/milk9111/collision/ecs"
)

var (
	ErrNotUpdating     = errors.New("collision state: not inside an update window")
	ErrAlreadyUpdating = errors.New("collision state: update already in progress")
)

// Frame is one published set of confirmed pairs.
type Frame struct {
	Tick       uint64
	Collisions []Pair
	Triggers   []Pair
}

func (f Frame) clone() Frame {
	return Frame{
		Tick:       f.Tick,
		Collisions: slices.Clone(f.Collisions),
		Triggers:   slices.Clone(f.Triggers),
	}
}

// CollisionState is the per-scene snapshot of confirmed collisions and
// triggers. One goroutine writes between BeginUpdate and EndUpdate; any
// number of goroutines may read at any time and only ever see the last
// published frame.
type CollisionState struct {
	updating atomic.Bool
	frame    atomic.Pointer[Frame]

	// staged is only touched by the writer inside the update window.
	staged Frame

	cleanupMu  sync.Mutex
	cleanup    []ecs.Entity
	cleanupSet map[ecs.Entity]struct{}
}

func NewCollisionState() *CollisionState {
	s := &CollisionState{}
	s.frame.Store(&Frame{})
	return s
}

// BeginUpdate opens the mutation window. The staged frame starts as a copy of
// the published one.
func (s *CollisionState) BeginUpdate() error {
	if !s.updating.CompareAndSwap(false, true) {
		return ErrAlreadyUpdating
	}
	s.staged = s.published().clone()
	return nil
}

// EndUpdate publishes the staged frame and closes the window.
func (s *CollisionState) EndUpdate() error {
	if !s.updating.Load() {
		return ErrNotUpdating
	}
	next := s.staged
	next.Tick = s.published().Tick + 1
	s.frame.Store(&next)
	s.staged = Frame{}
	s.updating.Store(false)
	return nil
}

// AbortUpdate closes the window without publishing anything.
func (s *CollisionState) AbortUpdate() {
	s.staged = Frame{}
	s.updating.Store(false)
}

func (s *CollisionState) Updating() bool {
	return s.updating.Load()
}

// SetCurrentCollisions replaces the staged solid pairs. pairs is copied.
func (s *CollisionState) SetCurrentCollisions(pairs []Pair) error {
	if !s.updating.Load() {
		return ErrNotUpdating
	}
	s.staged.Collisions = slices.Clone(pairs)
	return nil
}

// SetCurrentTriggers replaces the staged trigger pairs. pairs is copied.
func (s *CollisionState) SetCurrentTriggers(pairs []Pair) error {
	if !s.updating.Load() {
		return ErrNotUpdating
	}
	s.staged.Triggers = slices.Clone(pairs)
	return nil
}

// MarkForCleanup queues e for removal from tracked state on the next update.
// Safe from any goroutine, in or out of the window.
func (s *CollisionState) MarkForCleanup(e ecs.Entity) {
	s.cleanupMu.Lock()
	defer s.cleanupMu.Unlock()
	if s.cleanupSet == nil {
		s.cleanupSet = make(map[ecs.Entity]struct{})
	}
	if _, ok := s.cleanupSet[e]; ok {
		return
	}
	s.cleanupSet[e] = struct{}{}
	s.cleanup = append(s.cleanup, e)
}

// DrainCleanup returns the queued entities in mark order and empties the
// queue.
func (s *CollisionState) DrainCleanup() ([]ecs.Entity, error) {
	if !s.updating.Load() {
		return nil, ErrNotUpdating
	}
	s.cleanupMu.Lock()
	defer s.cleanupMu.Unlock()
	out := s.cleanup
	s.cleanup = nil
	clear(s.cleanupSet)
	return out, nil
}

// PendingCleanup reports how many entities wait for the next drain.
func (s *CollisionState) PendingCleanup() int {
	s.cleanupMu.Lock()
	defer s.cleanupMu.Unlock()
	return len(s.cleanup)
}

func (s *CollisionState) published() *Frame {
	if f := s.frame.Load(); f != nil {
		return f
	}
	return &Frame{}
}

// Frame returns a copy of the last published frame.
func (s *CollisionState) Frame() Frame {
	return s.published().clone()
}

func (s *CollisionState) CurrentCollisions() []Pair {
	return slices.Clone(s.published().Collisions)
}

func (s *CollisionState) CurrentTriggers() []Pair {
	return slices.Clone(s.published().Triggers)
}

// Tick is the number of frames published since the last Clear.
func (s *CollisionState) Tick() uint64 {
	return s.published().Tick
}

// IsColliding reports whether a and b form a published pair of either kind.
func (s *CollisionState) IsColliding(a, b ecs.Entity) bool {
	key := MakePairKey(a, b)
	f := s.published()
	for _, list := range [][]Pair{f.Collisions, f.Triggers} {
		for _, p := range list {
			if p.Key() == key {
				return true
			}
		}
	}
	return false
}

// PairsOf returns every published pair involving e, solids first.
func (s *CollisionState) PairsOf(e ecs.Entity) []Pair {
	f := s.published()
	var out []Pair
	for _, list := range [][]Pair{f.Collisions, f.Triggers} {
		for _, p := range list {
			if p.Involves(e) {
				out = append(out, p)
			}
		}
	}
	return out
}

// Clear drops every frame and queued cleanup. Call it on scene teardown, not
// while a writer is inside the window.
func (s *CollisionState) Clear() {
	s.cleanupMu.Lock()
	s.cleanup = nil
	clear(s.cleanupSet)
	s.cleanupMu.Unlock()

	s.staged = Frame{}
	s.frame.Store(&Frame{})
	s.updating.Store(false)
}
