package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the application's Prometheus collectors.
type Metrics struct {
	IngestionRuns    prometheus.Counter
	IngestionRunErrs prometheus.Counter
	FilesIngested    prometheus.Counter
	RecordsIngested  prometheus.Counter
	Queries          *prometheus.CounterVec
}

// NewMetrics registers the collectors on the given registerer (nil means
// the default registry).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		IngestionRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "attendance_ingestion_runs_total",
			Help: "Completed attendance ingestion runs.",
		}),
		IngestionRunErrs: factory.NewCounter(prometheus.CounterOpts{
			Name: "attendance_ingestion_run_errors_total",
			Help: "Ingestion runs aborted by a fetch-level failure.",
		}),
		FilesIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "attendance_files_ingested_total",
			Help: "Export files processed across all ingestion runs.",
		}),
		RecordsIngested: factory.NewCounter(prometheus.CounterOpts{
			Name: "attendance_records_ingested_total",
			Help: "Attendance records produced across all ingestion runs.",
		}),
		Queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_queries_total",
			Help: "Participant queries served, by result kind.",
		}, []string{"kind"}),
	}
}
