package api

import (
	"context"
	"net/http"
	"time"
)

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"` // "pass" or "fail"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status    string           `json:"status"` // "healthy" or "degraded"
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Messages  int              `json:"messages"`
	Observers int              `json:"observers"`
	Memory    int              `json:"memory_entries"`
	Timestamp string           `json:"timestamp"`
}

// Health handles the health check endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]Check{
		"store": {Status: "pass"},
		"hub":   {Status: "pass"},
	}
	allHealthy := true

	if h.memory != nil {
		checks["memory"] = Check{Status: "pass", Message: h.memory.Backend()}
	}
	if h.pinger != nil {
		start := time.Now()
		if err := h.pinger.Ping(ctx); err != nil {
			checks["redis"] = Check{Status: "fail", Message: "connection failed"}
			allHealthy = false
		} else {
			checks["redis"] = Check{Status: "pass", Latency: time.Since(start).String()}
		}
	}

	resp := HealthResponse{
		Status:    "healthy",
		Version:   version,
		Checks:    checks,
		Messages:  h.store.Len(),
		Observers: h.hub.Len(),
		Timestamp: h.timestamp(),
	}
	if h.memory != nil {
		resp.Memory = h.memory.Stats().Total
	}
	status := http.StatusOK
	if !allHealthy {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	h.JSON(w, status, resp)
}

type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, RootResponse{Name: "Sales AI Brain monitor", Version: version, Status: "running"})
}
