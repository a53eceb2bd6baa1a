package system

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collision/collision"
	"github.com/milk9111/collision/ecs"
	"github.com/milk9111/collision/ecs/component"
)

func TestTriggerDispatcherLifecycle(t *testing.T) {
	w := ecs.NewWorld()
	trig := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerTrigger, true)
	solid := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerPlayer, false)
	trigRec := addRecorder(t, w, trig)
	solidRec := addRecorder(t, w, solid)

	d := NewTriggerDispatcher(quietLogger())
	pair := testPair(trig, solid, true)

	frames := []struct {
		name    string
		present []Pair
		want    DispatchStats
	}{
		{"enter", []Pair{pair}, DispatchStats{Enter: 1}},
		{"stay", []Pair{pair}, DispatchStats{Stay: 1}},
		{"stay_again", []Pair{pair}, DispatchStats{Stay: 1}},
		{"exit", nil, DispatchStats{Exit: 1}},
		{"idle", nil, DispatchStats{}},
	}
	for _, f := range frames {
		if got := d.Dispatch(w, f.present); got != f.want {
			t.Fatalf("%s: expected %+v, got %+v", f.name, f.want, got)
		}
	}

	want := []string{"enter", "stay", "stay", "exit"}
	if got := trigRec.Phases(uint64(solid)); !equalPhases(got, want...) {
		t.Fatalf("trigger saw %v", got)
	}
	if got := solidRec.Phases(uint64(trig)); !equalPhases(got, want...) {
		t.Fatalf("solid saw %v", got)
	}
	if d.ActiveCount() != 0 {
		t.Fatalf("exit must discard pair state")
	}
}

func TestTriggerDispatcherDuplicatesCollapse(t *testing.T) {
	w := ecs.NewWorld()
	a := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerTrigger, true)
	b := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerPlayer, false)
	rec := addRecorder(t, w, a)

	d := NewTriggerDispatcher(quietLogger())
	stats := d.Dispatch(w, []Pair{testPair(a, b, true), testPair(b, a, true), testPair(a, b, true)})
	if stats.Enter != 1 || len(rec.Records) != 1 {
		t.Fatalf("expected a single enter, got %+v / %v", stats, rec.Records)
	}
}

func TestTriggerDispatcherRemoveEntityCollisions(t *testing.T) {
	w := ecs.NewWorld()
	a := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerTrigger, true)
	b := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerPlayer, false)
	c := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerPlayer, false)
	recA := addRecorder(t, w, a)

	d := NewTriggerDispatcher(quietLogger())
	d.Dispatch(w, []Pair{testPair(a, b, true), testPair(a, c, true)})

	if n := d.RemoveEntityCollisions(b); n != 1 {
		t.Fatalf("expected one purged pair, got %d", n)
	}
	if d.IsActive(a, b) || !d.IsActive(c, a) {
		t.Fatalf("only pairs with b should be purged")
	}

	// b is gone from the next frame too: no exit may follow the purge.
	d.Dispatch(w, []Pair{testPair(a, c, true)})
	if got := recA.Phases(uint64(b)); !equalPhases(got, "enter") {
		t.Fatalf("purged pair must not exit, saw %v", got)
	}
	if got := recA.Phases(uint64(c)); !equalPhases(got, "enter", "stay") {
		t.Fatalf("untouched pair saw %v", got)
	}
}

func TestTriggerDispatcherSkipsDeadAndNilWorld(t *testing.T) {
	w := ecs.NewWorld()
	a := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerTrigger, true)
	b := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerPlayer, false)
	recB := addRecorder(t, w, b)

	d := NewTriggerDispatcher(quietLogger())
	d.Dispatch(w, []Pair{testPair(a, b, true)})
	ecs.DestroyEntity(w, a)

	stats := d.Dispatch(w, nil)
	if stats.Exit != 1 {
		t.Fatalf("expected exit, got %+v", stats)
	}
	if got := recB.Phases(uint64(a)); !equalPhases(got, "enter", "exit") {
		t.Fatalf("survivor saw %v", got)
	}

	d.Dispatch(nil, []Pair{testPair(a, b, true)})
	if !d.IsActive(a, b) {
		t.Fatalf("state still advances without a world")
	}
}

func TestTriggerDispatcherPushesEvents(t *testing.T) {
	w := ecs.NewWorld()
	a := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerTrigger, true)
	b := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerPlayer, false)

	d := NewTriggerDispatcher(quietLogger())
	d.Dispatch(w, []Pair{testPair(a, b, true)})

	evts := w.Events().Drain()
	if len(evts) != 2 {
		t.Fatalf("expected one event per side, got %d", len(evts))
	}
	for i, want := range []ecs.TriggerEvent{
		{Entity: a, Other: b, Phase: ecs.TriggerEnter},
		{Entity: b, Other: a, Phase: ecs.TriggerEnter},
	} {
		if evts[i].Type != ecs.EventTrigger || evts[i].Data.(ecs.TriggerEvent) != want {
			t.Fatalf("event %d = %+v, want %+v", i, evts[i], want)
		}
	}
}

func TestTriggerDispatcherClear(t *testing.T) {
	w := ecs.NewWorld()
	a := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerTrigger, true)
	b := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerPlayer, false)
	rec := addRecorder(t, w, b)

	d := NewTriggerDispatcher(quietLogger())
	d.Dispatch(w, []Pair{testPair(a, b, true)})
	d.Clear()
	d.Dispatch(w, nil)
	if len(d.ActivePairs()) != 0 || len(rec.Records) != 1 {
		t.Fatalf("clear must drop pairs silently, recorder saw %v", rec.Records)
	}
}

// checkPhaseStream verifies phases against (enter stay* exit)*, with an
// unfinished enter stay* allowed at the end. inside says whether the pair was
// present in the last frame.
func checkPhaseStream(phases []string, inside bool) error {
	open := false
	for i, ph := range phases {
		switch ph {
		case "enter":
			if open {
				return fmt.Errorf("enter at %d without exit: %v", i, phases)
			}
			open = true
		case "stay", "exit":
			if !open {
				return fmt.Errorf("%s at %d before enter: %v", ph, i, phases)
			}
			open = ph == "stay"
		default:
			return fmt.Errorf("unknown phase %q", ph)
		}
	}
	if open != inside {
		return fmt.Errorf("stream open=%v but pair present=%v: %v", open, inside, phases)
	}
	return nil
}

// runPresence dispatches one frame per row of present, where present[f][i]
// says whether the i-th of three fixed pairs overlaps in frame f. Every
// partner stream on both sides is checked after each frame.
func runPresence(t *testing.T, present [][3]bool) {
	t.Helper()
	w := ecs.NewWorld()
	trigA := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerTrigger, true)
	trigB := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerTrigger, true)
	player := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerPlayer, false)
	enemy := spawnCircle(t, w, cp.Vector{}, 1, collision.LayerEnemy, false)
	recs := make(map[ecs.Entity]*component.TriggerRecorder)
	for _, e := range []ecs.Entity{trigA, trigB, player, enemy} {
		recs[e] = addRecorder(t, w, e)
	}
	pairs := [3]Pair{
		testPair(trigA, player, true),
		testPair(trigA, enemy, true),
		testPair(trigB, player, true),
	}

	d := NewTriggerDispatcher(quietLogger())
	for f, row := range present {
		var frame []Pair
		for i, in := range row {
			if in {
				frame = append(frame, pairs[i])
			}
		}
		d.Dispatch(w, frame)

		for i, p := range pairs {
			for _, s := range [2][2]ecs.Entity{{p.A, p.B}, {p.B, p.A}} {
				phases := recs[s[0]].Phases(uint64(s[1]))
				if err := checkPhaseStream(phases, row[i]); err != nil {
					t.Fatalf("frame %d, %v seeing %v: %v", f, s[0], s[1], err)
				}
			}
		}
	}
}

func TestTriggerDispatcherPhaseOrdering(t *testing.T) {
	tests := []struct {
		name    string
		present [][3]bool
	}{
		{
			name: "reenter after exit",
			present: [][3]bool{
				{true, false, false},
				{false, false, false},
				{true, false, false},
				{true, false, false},
				{false, false, false},
			},
		},
		{
			name: "staggered pairs sharing entities",
			present: [][3]bool{
				{true, true, false},
				{true, false, true},
				{false, true, true},
				{false, false, true},
				{true, true, false},
				{true, true, true},
			},
		},
		{
			name: "flicker every frame",
			present: [][3]bool{
				{true, false, true},
				{false, true, false},
				{true, false, true},
				{false, true, false},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runPresence(t, tt.present)
		})
	}
}

func TestTriggerDispatcherPhaseOrderingRandom(t *testing.T) {
	for seed := uint64(1); seed <= 8; seed++ {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, 0x5eed))
			present := make([][3]bool, 60)
			for f := range present {
				for i := range present[f] {
					present[f][i] = rng.IntN(3) > 0
				}
			}
			runPresence(t, present)
		})
	}
}
