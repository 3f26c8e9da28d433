// Package services sits between HTTP transport and the core: it owns the
// cached attendance table snapshot and orchestrates ingestion runs.
package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"attendcli/internal/dataprocessing"
	"attendcli/internal/infrastructure"
	"attendcli/internal/query"
	"attendcli/pkg/contracts/domain"
)

// ErrTableNotLoaded means no ingestion run has succeeded yet.
var ErrTableNotLoaded = errors.New("attendance table not loaded")

// ErrEmptyQuery means the free-text query was blank.
var ErrEmptyQuery = errors.New("query must not be empty")

// SourceProvider lists the available export files as report sources. The
// Bunny client implements it; tests inject stubs.
type SourceProvider interface {
	Sources(ctx context.Context, folder string) ([]dataprocessing.ReportSource, error)
}

// Stats summarizes the current snapshot.
type Stats struct {
	Loaded        bool      `json:"loaded"`
	TotalMeetings int       `json:"total_meetings"`
	Records       int       `json:"records"`
	RefreshedAt   time.Time `json:"refreshed_at"`
}

// AttendanceService answers participant queries against the most recent
// ingestion snapshot. The table is rebuilt fully on every Refresh and
// swapped in atomically; queries are idempotent reads.
type AttendanceService struct {
	provider   SourceProvider
	folder     string
	aggregator *dataprocessing.Aggregator
	engine     *query.Engine
	metrics    *infrastructure.Metrics
	logger     *slog.Logger

	mu          sync.RWMutex
	table       *domain.AttendanceTable
	refreshedAt time.Time
}

// NewAttendanceService creates the service. Metrics may be nil.
func NewAttendanceService(provider SourceProvider, folder string, engine *query.Engine, metrics *infrastructure.Metrics, logger *slog.Logger) *AttendanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceService{
		provider:   provider,
		folder:     folder,
		aggregator: dataprocessing.NewAggregator(logger),
		engine:     engine,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "attendance_service")),
	}
}

// Refresh performs a full ingestion run: list the remote exports, aggregate
// them into a fresh table, and swap the snapshot. A listing (fetch-level)
// failure is fatal to the run and leaves the previous snapshot in place;
// per-file anomalies are absorbed by the aggregator.
func (s *AttendanceService) Refresh(ctx context.Context) error {
	start := time.Now()

	sources, err := s.provider.Sources(ctx, s.folder)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IngestionRunErrs.Inc()
		}
		s.logger.ErrorContext(ctx, "ingestion run failed",
			slog.String("folder", s.folder),
			slog.String("error", err.Error()))
		return err
	}

	table, err := s.aggregator.Aggregate(ctx, sources)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IngestionRunErrs.Inc()
		}
		return err
	}

	s.mu.Lock()
	s.table = table
	s.refreshedAt = time.Now()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.IngestionRuns.Inc()
		s.metrics.FilesIngested.Add(float64(len(sources)))
		s.metrics.RecordsIngested.Add(float64(table.Len()))
	}

	s.logger.InfoContext(ctx, "ingestion run complete",
		slog.Int("files", len(sources)),
		slog.Int("records", table.Len()),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Search resolves a free-text participant query against the snapshot.
func (s *AttendanceService) Search(ctx context.Context, q string) (query.Result, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return query.Result{}, ErrEmptyQuery
	}

	table, err := s.snapshot()
	if err != nil {
		return query.Result{}, err
	}

	res := s.engine.Search(table, q)
	if s.metrics != nil {
		s.metrics.Queries.WithLabelValues(res.Kind).Inc()
	}

	s.logger.DebugContext(ctx, "query served",
		slog.String("kind", res.Kind),
		slog.Int("matches", len(res.Matches)))
	return res, nil
}

// Stats reports on the current snapshot.
func (s *AttendanceService) Stats(_ context.Context) Stats {
	s.mu.RLock()
	table, refreshedAt := s.table, s.refreshedAt
	s.mu.RUnlock()

	if table == nil {
		return Stats{}
	}
	return Stats{
		Loaded:        true,
		TotalMeetings: s.engine.TotalMeetings(table),
		Records:       table.Len(),
		RefreshedAt:   refreshedAt,
	}
}

// Table returns the current snapshot for callers that want to run their own
// queries (the collector CLI's exporters do).
func (s *AttendanceService) Table() (*domain.AttendanceTable, error) {
	return s.snapshot()
}

func (s *AttendanceService) snapshot() (*domain.AttendanceTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.table == nil {
		return nil, ErrTableNotLoaded
	}
	return s.table, nil
}
