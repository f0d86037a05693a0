package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Checker probes a dependency the service needs to serve traffic.
type Checker interface {
	Ping(ctx context.Context, timeout time.Duration) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, timeout time.Duration) error

// Ping calls f.
func (f CheckerFunc) Ping(ctx context.Context, timeout time.Duration) error {
	return f(ctx, timeout)
}

var ready atomic.Bool

func init() {
	ready.Store(true)
}

// SetReady flips readiness. It is cleared while the server drains.
func SetReady(v bool) {
	ready.Store(v)
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checks  map[string]Checker
	Timeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !ready.Load() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	ctx := r.Context()
	status := make(map[string]string, len(h.Checks))
	healthy := true
	for name, check := range h.Checks {
		if check == nil {
			continue
		}
		if err := check.Ping(ctx, h.timeout()); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}

func (h Handler) timeout() time.Duration {
	if h.Timeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.Timeout
}
