package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "attendcli/internal/errors"
	"attendcli/internal/query"
	"attendcli/internal/services"
)

type stubAttendanceService struct {
	searchResult query.Result
	searchErr    error
	refreshErr   error
	stats        services.Stats
}

func (s *stubAttendanceService) Refresh(ctx context.Context) error { return s.refreshErr }

func (s *stubAttendanceService) Search(ctx context.Context, q string) (query.Result, error) {
	return s.searchResult, s.searchErr
}

func (s *stubAttendanceService) Stats(ctx context.Context) services.Stats { return s.stats }

func newTestHandler(svc AttendanceServiceInterface) *QueryHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewQueryHandler(svc, logger, apierrors.NewErrorHandler(logger))
}

func TestQueryHandler_Search(t *testing.T) {
	svc := &stubAttendanceService{
		searchResult: query.Result{
			Kind:             query.KindEmail,
			Query:            "a@x.com",
			MeetingsAttended: 1,
			TotalMeetings:    2,
		},
	}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/search?q=a%40x.com", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string       `json:"status"`
		Data   query.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, query.KindEmail, body.Data.Kind)
	assert.Equal(t, 1, body.Data.MeetingsAttended)
	assert.Equal(t, 2, body.Data.TotalMeetings)
}

func TestQueryHandler_SearchMissingQuery(t *testing.T) {
	handler := newTestHandler(&stubAttendanceService{})

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "error")
}

func TestQueryHandler_SearchTableNotLoaded(t *testing.T) {
	svc := &stubAttendanceService{searchErr: services.ErrTableNotLoaded}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/search?q=alice", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestQueryHandler_SearchBlankQuery(t *testing.T) {
	svc := &stubAttendanceService{searchErr: services.ErrEmptyQuery}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/search?q=%20%20", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandler_GetStats(t *testing.T) {
	svc := &stubAttendanceService{
		stats: services.Stats{
			Loaded:        true,
			TotalMeetings: 3,
			Records:       42,
			RefreshedAt:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		},
	}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string         `json:"status"`
		Data   services.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Data.Loaded)
	assert.Equal(t, 3, body.Data.TotalMeetings)
	assert.Equal(t, 42, body.Data.Records)
}

func TestQueryHandler_Refresh(t *testing.T) {
	svc := &stubAttendanceService{
		stats: services.Stats{Loaded: true, TotalMeetings: 2, Records: 10},
	}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string         `json:"status"`
		Data   services.Stats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 2, body.Data.TotalMeetings)
}

func TestQueryHandler_RefreshFailure(t *testing.T) {
	svc := &stubAttendanceService{refreshErr: errors.New("storage listing failed")}
	handler := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHealthHandler_Check(t *testing.T) {
	handler := NewHealthHandler("dev")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "dev", body["version"])
}
