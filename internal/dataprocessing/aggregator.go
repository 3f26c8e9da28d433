package dataprocessing

import (
	"context"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"attendcli/pkg/contracts/domain"
)

// ReportSource is one raw export file, wherever it lives. The aggregator
// only ever consumes the byte stream, so remote objects, local files and
// in-memory fixtures all plug in the same way.
type ReportSource interface {
	Name() string
	Open(ctx context.Context) (io.ReadCloser, error)
}

// defaultConcurrency bounds how many sources are fetched and parsed at once.
const defaultConcurrency = 4

// Aggregator merges parsed records from all available export files into one
// attendance table. A source that fails to open or parse contributes zero
// rows and does not abort aggregation of the others.
type Aggregator struct {
	logger      *slog.Logger
	concurrency int
}

// NewAggregator creates an aggregator. A nil logger falls back to
// slog.Default.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		logger:      logger.With(slog.String("component", "aggregator")),
		concurrency: defaultConcurrency,
	}
}

// Aggregate parses every source and concatenates the per-file record lists.
// Sources are processed concurrently but results are assembled by input
// position, so the resulting multiset of records is invariant under source
// ordering. The only error returned is context cancellation.
func (a *Aggregator) Aggregate(ctx context.Context, sources []ReportSource) (*domain.AttendanceTable, error) {
	results := make([][]domain.AttendanceRecord, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.collect(gctx, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := &domain.AttendanceTable{}
	for _, recs := range results {
		table.Records = append(table.Records, recs...)
	}

	a.logger.InfoContext(ctx, "aggregation complete",
		slog.Int("sources", len(sources)),
		slog.Int("records", table.Len()))
	return table, nil
}

// collect parses a single source into attendance records. Failures are
// logged and the source contributes nothing.
func (a *Aggregator) collect(ctx context.Context, src ReportSource) []domain.AttendanceRecord {
	rc, err := src.Open(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "skipping unreadable export",
			slog.String("source", src.Name()),
			slog.String("error", err.Error()))
		return nil
	}
	defer rc.Close()

	report, err := ParseReport(rc)
	if err != nil {
		a.logger.WarnContext(ctx, "skipping unparseable export",
			slog.String("source", src.Name()),
			slog.String("error", err.Error()))
		return nil
	}

	if !report.HasStartTime() {
		a.logger.WarnContext(ctx, "export has no parseable start timestamp",
			slog.String("source", src.Name()))
	}

	records := make([]domain.AttendanceRecord, 0, len(report.Attendees))
	for _, row := range report.Attendees {
		records = append(records, domain.AttendanceRecord{
			Name:             row.Name,
			Email:            row.Email,
			MinutesInSession: row.MinutesInSession,
			MeetingDate:      report.StartDate,
			MeetingTime:      report.StartTime,
			Attended:         row.MinutesInSession > 0,
		})
	}
	return records
}
