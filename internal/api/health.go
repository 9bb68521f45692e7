package api

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// healthCheckTimeout bounds each component check.
const healthCheckTimeout = 2 * time.Second

// HealthStatus is the data of a /health response.
type HealthStatus struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	Account       string            `json:"account"`
	LoggedIn      bool              `json:"logged_in"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Components    map[string]string `json:"components,omitempty"`
}

// handleHealth reports liveness, session state and optional components.
// It never calls the native library.
//
// status is "ok" when the session is live and every component is healthy,
// "degraded" when a component fails, and "down" without a session. Only
// "down" is served with 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:        "ok",
		Version:       s.version,
		Account:       s.trading.Account(),
		LoggedIn:      s.trading.LoggedIn(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}

	if len(s.components) > 0 {
		names := make([]string, 0, len(s.components))
		for name := range s.components {
			names = append(names, name)
		}
		sort.Strings(names)

		status.Components = make(map[string]string, len(names))
		for _, name := range names {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			err := s.components[name].HealthCheck(ctx)
			cancel()
			if err != nil {
				status.Components[name] = err.Error()
				status.Status = "degraded"
				continue
			}
			status.Components[name] = "ok"
		}
	}

	if !status.LoggedIn {
		status.Status = "down"
		writeJSON(w, http.StatusServiceUnavailable, Response{Success: false, Data: status})
		return
	}
	writeData(w, status)
}
