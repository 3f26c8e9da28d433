package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"attendcli/internal/infrastructure"
)

// ErrorHandler provides centralized error handling for HTTP handlers.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates an error handler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError logs the error and writes the structured JSON response.
// Non-API errors become opaque 500s; context cancellation becomes a 504.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("trace_id", infrastructure.GetTraceID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	apiErr := h.toAPIError(err)
	render.Render(w, r, NewErrorResponse(apiErr))
}

func (h *ErrorHandler) toAPIError(err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return New(http.StatusGatewayTimeout, "TIMEOUT", "The request took too long to process and was cancelled")
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternalServer
}
