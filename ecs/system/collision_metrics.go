package system

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Labels are fixed sets; nothing per entity.
var (
	collisionTickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "collision_tick_duration_seconds",
		Help:    "Time spent in one collision tick",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.02},
	})

	collisionTickFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collision_tick_failures_total",
		Help: "Collision ticks aborted by a configuration error",
	})

	collisionPotentialPairs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "collision_potential_pairs",
		Help: "Pairs produced by the broad phase in the last tick",
	})

	collisionConfirmedPairs = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "collision_confirmed_pairs",
		Help: "Pairs confirmed by the narrow phase in the last tick",
	}, []string{"kind"}) // "solid", "trigger"

	collisionLayerRejects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collision_layer_rejects_total",
		Help: "Potential pairs dropped by the layer matrix",
	})

	collisionTriggerEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collision_trigger_events_total",
		Help: "Trigger pair transitions",
	}, []string{"phase"}) // "enter", "stay", "exit"

	collisionPositionProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "collision_position_probes_total",
		Help: "IsPositionValid calls by outcome",
	}, []string{"result"})
)

type probeResult string

const (
	probeValid   probeResult = "valid"
	probeBlocked probeResult = "blocked"
	probeError   probeResult = "error"
)

func recordTick(d time.Duration, potential, solid, triggers int) {
	collisionTickDuration.Observe(d.Seconds())
	collisionPotentialPairs.Set(float64(potential))
	collisionConfirmedPairs.WithLabelValues("solid").Set(float64(solid))
	collisionConfirmedPairs.WithLabelValues("trigger").Set(float64(triggers))
}

func recordTickFailure() {
	collisionTickFailures.Inc()
}

func recordLayerRejects(n int) {
	if n > 0 {
		collisionLayerRejects.Add(float64(n))
	}
}

func recordTriggerEvents(s DispatchStats) {
	if s.Enter > 0 {
		collisionTriggerEvents.WithLabelValues("enter").Add(float64(s.Enter))
	}
	if s.Stay > 0 {
		collisionTriggerEvents.WithLabelValues("stay").Add(float64(s.Stay))
	}
	if s.Exit > 0 {
		collisionTriggerEvents.WithLabelValues("exit").Add(float64(s.Exit))
	}
}

func recordPositionProbe(r probeResult) {
	collisionPositionProbes.WithLabelValues(string(r)).Inc()
}
