package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/milk9111/collision/collision"
	"github.com/milk9111/collision/config"
	"github.com/milk9111/collision/ecs/system"
	"github.com/milk9111/collision/prefabs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// snapshotSource is what the debug server reads. Both calls are safe from
// any goroutine.
type snapshotSource interface {
	State() *system.CollisionState
	Layers() collision.LayerMatrix
}

type snapshotPair struct {
	A       uint64          `json:"a"`
	B       uint64          `json:"b"`
	LayerA  collision.Layer `json:"layer_a"`
	LayerB  collision.Layer `json:"layer_b"`
	Trigger bool            `json:"trigger"`
	Depth   float64         `json:"depth,omitempty"`
	Normal  [2]float64      `json:"normal"`
}

type snapshotView struct {
	Tick       uint64         `json:"tick"`
	Collisions []snapshotPair `json:"collisions"`
	Triggers   []snapshotPair `json:"triggers"`
}

func viewOf(f system.Frame) snapshotView {
	convert := func(pairs []system.Pair) []snapshotPair {
		out := make([]snapshotPair, 0, len(pairs))
		for _, p := range pairs {
			out = append(out, snapshotPair{
				A:       uint64(p.A),
				B:       uint64(p.B),
				LayerA:  p.ColliderA.Layer,
				LayerB:  p.ColliderB.Layer,
				Trigger: p.Trigger,
				Depth:   p.Contact.Depth,
				Normal:  [2]float64{p.Contact.Normal.X, p.Contact.Normal.Y},
			})
		}
		return out
	}
	return snapshotView{
		Tick:       f.Tick,
		Collisions: convert(f.Collisions),
		Triggers:   convert(f.Triggers),
	}
}

func newDebugRouter(src snapshotSource, cfg config.DebugConfig) *chi.Mux {
	limit := cfg.SnapshotRate
	if limit <= 0 {
		limit = 10
	}
	limiter := rate.NewLimiter(rate.Limit(limit), int(limit)+1)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/snapshot", func(w http.ResponseWriter, _ *http.Request) {
		if !limiter.Allow() {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(viewOf(src.State().Frame()))
	})

	r.Get("/layers", func(w http.ResponseWriter, _ *http.Request) {
		out, err := yaml.Marshal(prefabs.MatrixSpec(src.Layers()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(out)
	})

	return r
}

func startDebugServer(cfg config.DebugConfig, handler http.Handler, logger *log.Logger) *http.Server {
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: handler}
	go func() {
		logger.Info("debug server listening", "addr", cfg.ListenAddr, "routes", "/health /metrics /snapshot /layers")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("debug server stopped", "err", err)
		}
	}()
	return srv
}
