package system

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/collision/collision"
	"github.com/milk9111/collision/ecs"
)

// CollisionSystem drives one detection pass per tick: broad phase, narrow
// phase, snapshot publication and trigger dispatch. It never moves anything.
type CollisionSystem struct {
	state      *CollisionState
	broad      *BroadPhase
	narrow     *NarrowPhase
	dispatcher *TriggerDispatcher
	logger     *log.Logger
}

type CollisionOption func(*collisionOptions)

type collisionOptions struct {
	logger   *log.Logger
	solver   *collision.Solver
	state    *CollisionState
	capacity int
}

// WithLogger sets the logger shared by the detector and dispatcher.
func WithLogger(l *log.Logger) CollisionOption {
	return func(o *collisionOptions) { o.logger = l }
}

// WithSolver replaces the default solver, e.g. one with extra shape pairs.
func WithSolver(s *collision.Solver) CollisionOption {
	return func(o *collisionOptions) { o.solver = s }
}

// WithState makes the system publish into an existing snapshot.
func WithState(s *CollisionState) CollisionOption {
	return func(o *collisionOptions) { o.state = s }
}

// WithCapacity preallocates broad phase buffers for n colliders.
func WithCapacity(n int) CollisionOption {
	return func(o *collisionOptions) { o.capacity = n }
}

func NewCollisionSystem(layers collision.LayerMatrix, opts ...CollisionOption) *CollisionSystem {
	o := collisionOptions{capacity: 64}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "collision"})
	}
	if o.state == nil {
		o.state = NewCollisionState()
	}
	return &CollisionSystem{
		state:      o.state,
		broad:      NewBroadPhase(o.capacity),
		narrow:     NewNarrowPhase(o.solver, layers, o.logger),
		dispatcher: NewTriggerDispatcher(o.logger),
		logger:     o.logger,
	}
}

func (s *CollisionSystem) State() *CollisionState { return s.state }

func (s *CollisionSystem) Dispatcher() *TriggerDispatcher { return s.dispatcher }

func (s *CollisionSystem) Layers() collision.LayerMatrix { return s.narrow.Layers() }

// SetLayers swaps the layer matrix; the next tick uses it.
func (s *CollisionSystem) SetLayers(m collision.LayerMatrix) {
	s.narrow.SetLayers(m)
	s.logger.Info("layer matrix updated", "pairs", len(m.Pairs()))
}

// Attach hooks entity destruction so destroyed entities are purged from
// trigger state on the next tick.
func (s *CollisionSystem) Attach(w *ecs.World) {
	if w == nil {
		return
	}
	w.OnDestroy(s.state.MarkForCleanup)
}

// Update runs Tick and panics when the tick fails; a failed tick means the
// collision setup is broken.
func (s *CollisionSystem) Update(w *ecs.World) {
	if err := s.Tick(w); err != nil {
		panic("collision system: " + err.Error())
	}
}

// Tick runs one detection pass and publishes its frame. On error nothing is
// published and trigger state is left as it was after cleanup.
func (s *CollisionSystem) Tick(w *ecs.World) error {
	if w == nil {
		return nil
	}
	start := time.Now()
	if err := s.state.BeginUpdate(); err != nil {
		return err
	}
	published := false
	defer func() {
		if !published {
			s.state.AbortUpdate()
			recordTickFailure()
		}
	}()

	stale, err := s.state.DrainCleanup()
	if err != nil {
		return err
	}
	for _, e := range stale {
		if n := s.dispatcher.RemoveEntityCollisions(e); n > 0 {
			s.logger.Debug("purged trigger pairs", "entity", e, "pairs", n)
		}
	}

	potential := s.broad.Collect(w)
	confirmed, err := s.narrow.DetectCollisions(w, potential)
	if err != nil {
		return fmt.Errorf("detect collisions: %w", err)
	}

	solid, triggers := splitPairs(confirmed)
	if err := s.state.SetCurrentCollisions(solid); err != nil {
		return err
	}
	if err := s.state.SetCurrentTriggers(triggers); err != nil {
		return err
	}

	s.dispatcher.Dispatch(w, triggers)

	if err := s.state.EndUpdate(); err != nil {
		return err
	}
	published = true
	recordTick(time.Since(start), len(potential), len(solid), len(triggers))
	return nil
}

// IsPositionValid reports whether e could move its collider to proposed
// without hitting a blocking collider.
func (s *CollisionSystem) IsPositionValid(w *ecs.World, e ecs.Entity, proposed cp.Vector) (bool, error) {
	return s.narrow.IsPositionValid(w, e, proposed)
}

// RemoveEntityCollisions drops e from trigger tracking right away, without
// exit notifications.
func (s *CollisionSystem) RemoveEntityCollisions(e ecs.Entity) int {
	return s.dispatcher.RemoveEntityCollisions(e)
}

// Reset clears the snapshot and all trigger state, for scene teardown.
func (s *CollisionSystem) Reset() {
	s.state.Clear()
	s.dispatcher.Clear()
}

func splitPairs(pairs []Pair) (solid, triggers []Pair) {
	for _, p := range pairs {
		if p.Trigger {
			triggers = append(triggers, p)
		} else {
			solid = append(solid, p)
		}
	}
	return solid, triggers
}
