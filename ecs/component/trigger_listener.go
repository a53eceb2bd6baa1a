package component

// TriggerListener is implemented by components that want trigger
// notifications. other is the raw ecs.Entity of the partner.
type TriggerListener interface {
	OnTriggerEnter(other uint64)
	OnTriggerStay(other uint64)
	OnTriggerExit(other uint64)
}

// TriggerRecord is one notification seen by a TriggerRecorder.
type TriggerRecord struct {
	Phase string
	Other uint64
}

// TriggerRecorder keeps every notification it receives, in order. Handy for
// debugging overlays and tests.
type TriggerRecorder struct {
	Records []TriggerRecord
	// Inside holds the partners currently overlapping.
	Inside map[uint64]int
}

func (r *TriggerRecorder) OnTriggerEnter(other uint64) {
	r.push("enter", other)
	if r.Inside == nil {
		r.Inside = make(map[uint64]int)
	}
	r.Inside[other]++
}

func (r *TriggerRecorder) OnTriggerStay(other uint64) {
	r.push("stay", other)
}

func (r *TriggerRecorder) OnTriggerExit(other uint64) {
	r.push("exit", other)
	if r.Inside[other] <= 1 {
		delete(r.Inside, other)
		return
	}
	r.Inside[other]--
}

// Phases returns the recorded phases for one partner.
func (r *TriggerRecorder) Phases(other uint64) []string {
	var out []string
	for _, rec := range r.Records {
		if rec.Other == other {
			out = append(out, rec.Phase)
		}
	}
	return out
}

func (r *TriggerRecorder) Reset() {
	r.Records = nil
	r.Inside = nil
}

func (r *TriggerRecorder) push(phase string, other uint64) {
	r.Records = append(r.Records, TriggerRecord{Phase: phase, Other: other})
}

var TriggerRecorderComponent = NewComponent[TriggerRecorder]()
