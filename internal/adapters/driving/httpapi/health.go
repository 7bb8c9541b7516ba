package httpapi

import (
	"net/http"
	"time"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	statuses := []domain.HealthStatus{}
	if s.ports.Health != nil {
		statuses = s.ports.Health.Check(r.Context())
	}

	status := "healthy"
	services := make(map[string]bool, len(statuses))
	for _, st := range statuses {
		services[st.Name] = st.Healthy
		if !st.Healthy {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"services":  services,
		"details":   statuses,
		"timestamp": s.now().Format(time.RFC3339),
	})
}
