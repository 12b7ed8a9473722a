package http

import (
	"context"
	"net/http"
	"time"
)

type HealthResponseDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponseDTO{Status: "ok", Checks: make(map[string]string, len(s.healthChecks))}
	status := http.StatusOK

	for name, check := range s.healthChecks {
		if err := check(ctx); err != nil {
			s.logger.Warn("Health check failed", "dependency", name, "error", err)
			response.Checks[name] = err.Error()
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		response.Checks[name] = "ok"
	}

	writeJSON(w, status, response)
}
