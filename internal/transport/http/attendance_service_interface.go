package http

import (
	"context"

	"attendcli/internal/query"
	"attendcli/internal/services"
)

// AttendanceServiceInterface is what the handlers need from the service
// layer; tests substitute stubs.
type AttendanceServiceInterface interface {
	Refresh(ctx context.Context) error
	Search(ctx context.Context, q string) (query.Result, error)
	Stats(ctx context.Context) services.Stats
}
