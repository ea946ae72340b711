// Package admin exposes health, pool statistics and Prometheus metrics over HTTP.
package admin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yongpi/fpool"
)

// StatsSource is the read-only view of a pool the admin endpoints report on.
type StatsSource interface {
	State() fpool.State
	Size() int
	Workers() int
	Active() int
	Pending() int
}

type Stats struct {
	State   string `json:"state"`
	Size    int    `json:"size"`
	Workers int    `json:"workers"`
	Active  int    `json:"active"`
	Pending int    `json:"pending"`
}

func NewRouter(pool StatsSource, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if pool.State() != fpool.StateAccepting {
			http.Error(w, pool.State().String(), http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Stats{
			State:   pool.State().String(),
			Size:    pool.Size(),
			Workers: pool.Workers(),
			Active:  pool.Active(),
			Pending: pool.Pending(),
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
