package dataprocessing

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalSource is a report source backed by a file on disk.
type LocalSource struct {
	Path string
}

// Name returns the base filename.
func (s LocalSource) Name() string { return filepath.Base(s.Path) }

// Open opens the underlying file.
func (s LocalSource) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

// DiscoverLocalReports lists the .csv export files in dir as report sources,
// sorted by filename for stable processing order.
func DiscoverLocalReports(dir string) ([]ReportSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var sources []ReportSource
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		sources = append(sources, LocalSource{Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name() < sources[j].Name() })
	return sources, nil
}
