package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/heartmarshall/journalfeed/internal/service/feed"
)

const probeTimeout = 3 * time.Second

// sourceProber reports the reachability of every configured source.
type sourceProber interface {
	Probe(ctx context.Context) []feed.SourceStatus
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	prober  sourceProber
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(prober sourceProber, version string) *HealthHandler {
	return &HealthHandler{prober: prober, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual source.
type CompStatus struct {
	Status  string `json:"status"`
	Role    string `json:"role"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe: 200 while at least one source can serve a
// feed, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	status, _ := h.check(r.Context())
	code := http.StatusOK
	if status == "down" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
	})
}

// Health is the full health check with per-source status and latency.
// A failing source with a working one left reports "degraded".
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status, components := h.check(r.Context())
	code := http.StatusOK
	if status == "down" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:     status,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func (h *HealthHandler) check(ctx context.Context) (string, map[string]CompStatus) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	results := h.prober.Probe(ctx)
	components := make(map[string]CompStatus, len(results))
	up := 0
	for _, res := range results {
		c := CompStatus{Status: "ok", Role: res.Role, Latency: res.Latency.String()}
		if !res.OK {
			c = CompStatus{Status: "down", Role: res.Role}
			if res.Err != nil {
				c.Error = res.Err.Error()
			}
		} else {
			up++
		}
		components[res.Name] = c
	}

	switch {
	case up == 0:
		return "down", components
	case up < len(results):
		return "degraded", components
	}
	return "ok", components
}
