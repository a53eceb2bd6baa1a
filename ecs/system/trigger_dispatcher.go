package system

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/milk9111/collision/ecs"
	"github.com/milk9111/collision/ecs/component"
	"golang.org/x/time/rate"
)

// DispatchStats counts the notifications of one Dispatch call, per pair.
type DispatchStats struct {
	Enter int
	Stay  int
	Exit  int
}

// TriggerDispatcher turns per-frame trigger pairs into enter/stay/exit
// notifications. A pair enters the first frame it shows up, stays every
// following frame it is still present, and exits the first frame it is
// missing, after which its state is gone.
type TriggerDispatcher struct {
	active  map[PairKey]Pair
	present map[PairKey]struct{}
	logger  *log.Logger
	skipLog rate.Sometimes
}

func NewTriggerDispatcher(logger *log.Logger) *TriggerDispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &TriggerDispatcher{
		active:  make(map[PairKey]Pair),
		present: make(map[PairKey]struct{}),
		logger:  logger,
		skipLog: rate.Sometimes{First: 5, Interval: time.Second},
	}
}

// Dispatch processes one frame of trigger pairs. Duplicates collapse into a
// single pair. Enter and stay go out in input order, exits after them in key
// order.
func (d *TriggerDispatcher) Dispatch(w *ecs.World, triggers []Pair) DispatchStats {
	var stats DispatchStats
	clear(d.present)

	for _, p := range triggers {
		key := p.Key()
		if _, dup := d.present[key]; dup {
			continue
		}
		d.present[key] = struct{}{}

		phase := ecs.TriggerStay
		if _, ok := d.active[key]; !ok {
			phase = ecs.TriggerEnter
			stats.Enter++
		} else {
			stats.Stay++
		}
		d.active[key] = p
		d.notifyPair(w, key, phase)
	}

	var gone []PairKey
	for key := range d.active {
		if _, ok := d.present[key]; !ok {
			gone = append(gone, key)
		}
	}
	slices.SortFunc(gone, compareKeys)
	for _, key := range gone {
		delete(d.active, key)
		stats.Exit++
		d.notifyPair(w, key, ecs.TriggerExit)
	}

	recordTriggerEvents(stats)
	return stats
}

func (d *TriggerDispatcher) notifyPair(w *ecs.World, key PairKey, phase ecs.TriggerPhase) {
	d.notify(w, key.A, key.B, phase)
	d.notify(w, key.B, key.A, phase)
}

func (d *TriggerDispatcher) notify(w *ecs.World, e, other ecs.Entity, phase ecs.TriggerPhase) {
	if w == nil {
		d.skipLog.Do(func() {
			d.logger.Debug("skip trigger notify", "entity", e, "phase", phase, "reason", "no world")
		})
		return
	}
	if !w.IsAlive(e) {
		d.skipLog.Do(func() {
			d.logger.Debug("skip trigger notify", "entity", e, "phase", phase, "reason", "entity gone")
		})
		return
	}

	for _, l := range ecs.Implementing[component.TriggerListener](w, e) {
		switch phase {
		case ecs.TriggerEnter:
			l.OnTriggerEnter(uint64(other))
		case ecs.TriggerStay:
			l.OnTriggerStay(uint64(other))
		case ecs.TriggerExit:
			l.OnTriggerExit(uint64(other))
		}
	}
	w.Events().Push(ecs.Event{
		Type: ecs.EventTrigger,
		Data: ecs.TriggerEvent{Entity: e, Other: other, Phase: phase},
	})
}

// RemoveEntityCollisions forgets every active pair that references e without
// sending exits. It returns how many pairs were dropped.
func (d *TriggerDispatcher) RemoveEntityCollisions(e ecs.Entity) int {
	n := 0
	for key := range d.active {
		if key.Involves(e) {
			delete(d.active, key)
			n++
		}
	}
	return n
}

// IsActive reports whether a and b are currently inside each other.
func (d *TriggerDispatcher) IsActive(a, b ecs.Entity) bool {
	_, ok := d.active[MakePairKey(a, b)]
	return ok
}

func (d *TriggerDispatcher) ActiveCount() int {
	return len(d.active)
}

// ActivePairs returns the active pairs in key order.
func (d *TriggerDispatcher) ActivePairs() []Pair {
	out := make([]Pair, 0, len(d.active))
	for _, p := range d.active {
		out = append(out, p)
	}
	slices.SortFunc(out, comparePairs)
	return out
}

// Clear drops all tracked pairs without notifying anyone.
func (d *TriggerDispatcher) Clear() {
	clear(d.active)
	clear(d.present)
}

func compareKeys(a, b PairKey) int {
	return comparePairs(Pair{A: a.A, B: a.B}, Pair{A: b.A, B: b.B})
}
