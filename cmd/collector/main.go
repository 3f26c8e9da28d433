package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"attendcli/internal/bunny"
	"attendcli/internal/config"
	"attendcli/internal/dataprocessing"
	"attendcli/internal/exporter"
	"attendcli/internal/infrastructure"
	"attendcli/pkg/contracts/domain"
)

func main() {
	inDir := flag.String("in", "", "local directory of attendance exports; when empty, files are fetched from the configured storage zone")
	folder := flag.String("folder", "", "storage zone folder override")
	outPath := flag.String("out", "attendance.csv", "output file path")
	format := flag.String("format", "csv", "output format: csv or xlsx")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	flag.Parse()

	if *format != "csv" && *format != "xlsx" {
		slog.Error("Unknown output format", slog.String("format", *format))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sources, err := discoverSources(ctx, cfg, logger, *inDir, *folder)
	if err != nil {
		logger.Error("Failed to discover attendance exports", "error", err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		logger.Error("No attendance exports found")
		os.Exit(1)
	}

	table, err := dataprocessing.NewAggregator(logger).Aggregate(ctx, sources)
	if err != nil {
		logger.Error("Aggregation failed", "error", err)
		os.Exit(1)
	}

	if err := export(logger, *format, *outPath, table); err != nil {
		logger.Error("Export failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Aggregated %d records from %d files across %d meetings -> %s\n",
		table.Len(), len(sources), len(table.MeetingKeys()), *outPath)
}

func discoverSources(ctx context.Context, cfg *config.Config, logger *slog.Logger, inDir, folder string) ([]dataprocessing.ReportSource, error) {
	if inDir != "" {
		return dataprocessing.DiscoverLocalReports(inDir)
	}

	client, err := bunny.NewClient(bunny.Config{
		StorageZone:       cfg.Bunny.StorageZone,
		AccessKey:         cfg.Bunny.AccessKey,
		StorageEndpoint:   cfg.Bunny.StorageEndpoint,
		PullZoneURL:       cfg.Bunny.PullZoneURL,
		RequestsPerSecond: cfg.Bunny.RequestsPerSecond,
		Timeout:           cfg.Bunny.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if folder == "" {
		folder = cfg.Bunny.FolderPath
	}
	return client.Sources(ctx, folder)
}

func export(logger *slog.Logger, format, outPath string, table *domain.AttendanceTable) error {
	switch format {
	case "xlsx":
		return exporter.NewExcelWriter(logger).WriteTable(outPath, table)
	default:
		return exporter.NewCSVWriter(logger).WriteSimpleCSV(outPath, exporter.AttendanceHeaders(), exporter.AttendanceRows(table))
	}
}
