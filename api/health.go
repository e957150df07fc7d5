package api

import (
	"net/http"

	"github.com/go-chi/render"
)

/* =========================
   HEALTH CHECK ENDPOINT
========================= */

// HandleHealthCheck reports every configured backing store
// GET /api/health
func (s *Server) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	healthy := true
	checks := make(map[string]string, len(s.health))
	for name, hc := range s.health {
		if err := hc.HealthCheck(ctx); err != nil {
			checks[name] = "error: " + err.Error()
			healthy = false
			continue
		}
		checks[name] = "ok"
	}

	status := http.StatusOK
	message := "Health check completed"
	if !healthy {
		status = http.StatusServiceUnavailable
		message = "One or more dependencies are unhealthy"
	}

	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"success": healthy,
		"checks":  checks,
		"message": message,
	})
}
