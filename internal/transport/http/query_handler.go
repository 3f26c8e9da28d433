// Package http holds the HTTP transport layer: thin chi handlers that
// translate between requests and the attendance service.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "attendcli/internal/errors"
	"attendcli/internal/middleware"
	"attendcli/internal/services"
)

// QueryHandler serves participant search, snapshot stats and on-demand
// ingestion.
type QueryHandler struct {
	service      AttendanceServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryHandler creates the handler.
func NewQueryHandler(service AttendanceServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryHandler {
	return &QueryHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "query_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the handler's routes.
func (h *QueryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/search", h.Search)
	r.Get("/stats", h.GetStats)
	r.Post("/refresh", h.Refresh)
	return r
}

// Search handles GET /api/search?q=. The single entry point takes free
// text: queries containing '@' resolve as emails, the rest as fuzzy names.
func (h *QueryHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrMissingQuery)
		return
	}

	h.logger.InfoContext(r.Context(), "participant search",
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	result, err := h.service.Search(r.Context(), q)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyQuery):
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("q", "query must not be blank"))
		case errors.Is(err, services.ErrTableNotLoaded):
			h.errorHandler.HandleError(w, r, apierrors.ErrTableNotLoaded)
		default:
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
	})
}

// GetStats handles GET /api/stats.
func (h *QueryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := h.service.Stats(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stats,
	})
}

// Refresh handles POST /api/refresh: a full ingestion run. A fetch-level
// failure surfaces as 502; the previous snapshot, if any, stays in place.
func (h *QueryHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "ingestion run requested",
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.service.Refresh(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.IngestionError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Stats(r.Context()),
	})
}
