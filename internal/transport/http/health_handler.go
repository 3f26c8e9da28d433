package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler serves liveness checks.
type HealthHandler struct {
	version   string
	startTime time.Time
}

// NewHealthHandler creates the handler.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
	}
}

// Routes returns the handler's routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.Check)
	return r
}

// Check handles GET /healthz.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.startTime).String(),
	})
}
