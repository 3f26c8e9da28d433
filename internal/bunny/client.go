// Package bunny is the remote source adapter: it lists and fetches raw
// attendance export files from a Bunny CDN storage zone. The core only ever
// sees the byte streams it hands out.
package bunny

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"attendcli/internal/dataprocessing"
)

const defaultStorageEndpoint = "https://storage.bunnycdn.com"

// ErrMissingAccessKey means the operator-supplied credential was not found
// in the environment. This is a fetch-level failure, fatal to the ingestion
// run.
var ErrMissingAccessKey = errors.New("bunny: access key not configured")

// Config holds the storage zone coordinates and credential.
type Config struct {
	// StorageZone is the Bunny storage zone name.
	StorageZone string
	// AccessKey authenticates both listing and fetching.
	AccessKey string
	// StorageEndpoint overrides the storage API base URL; defaults to the
	// public endpoint. Tests point this at a local server.
	StorageEndpoint string
	// PullZoneURL, when set, serves file downloads instead of the storage
	// API (a CDN-cached path).
	PullZoneURL string
	// RequestsPerSecond throttles file fetches; zero means 4/s.
	RequestsPerSecond float64
	// Timeout bounds each HTTP request; zero means 30s.
	Timeout time.Duration
}

// Client talks to the Bunny storage API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// FileDescriptor is one object in a storage zone listing.
type FileDescriptor struct {
	ObjectName  string `json:"ObjectName"`
	Length      int64  `json:"Length"`
	IsDirectory bool   `json:"IsDirectory"`
}

// NewClient returns a ready client. The access key is checked on first
// use, not here, so a server can boot without a credential and report the
// failure when ingestion runs.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.StorageZone == "" {
		return nil, errors.New("bunny: storage zone not configured")
	}
	if cfg.StorageEndpoint == "" {
		cfg.StorageEndpoint = defaultStorageEndpoint
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     logger.With(slog.String("component", "bunny_client")),
	}, nil
}

// ListFiles lists the objects under folder in the storage zone.
func (c *Client) ListFiles(ctx context.Context, folder string) ([]FileDescriptor, error) {
	if c.cfg.AccessKey == "" {
		return nil, ErrMissingAccessKey
	}
	listURL := fmt.Sprintf("%s/%s/%s/",
		strings.TrimSuffix(c.cfg.StorageEndpoint, "/"),
		url.PathEscape(c.cfg.StorageZone),
		escapePath(folder))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("bunny: build list request: %w", err)
	}
	req.Header.Set("AccessKey", c.cfg.AccessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bunny: list %q: %w", folder, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bunny: list %q: unexpected status %s", folder, resp.Status)
	}

	var files []FileDescriptor
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return nil, fmt.Errorf("bunny: decode listing: %w", err)
	}

	c.logger.DebugContext(ctx, "listed storage folder",
		slog.String("folder", folder),
		slog.Int("objects", len(files)))
	return files, nil
}

// FetchFile streams one object's bytes. The caller owns the returned
// ReadCloser. Fetches are rate limited.
func (c *Client) FetchFile(ctx context.Context, folder, name string) (io.ReadCloser, error) {
	if c.cfg.AccessKey == "" {
		return nil, ErrMissingAccessKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	fileURL := c.fileURL(folder, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("bunny: build fetch request: %w", err)
	}
	req.Header.Set("AccessKey", c.cfg.AccessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bunny: fetch %q: %w", name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("bunny: fetch %q: unexpected status %s", name, resp.Status)
	}
	return resp.Body, nil
}

// Sources lists folder and wraps every .csv object as a report source for
// the aggregator. Listing failure is fatal; per-file fetch failures are
// isolated later, when the aggregator opens each source.
func (c *Client) Sources(ctx context.Context, folder string) ([]dataprocessing.ReportSource, error) {
	files, err := c.ListFiles(ctx, folder)
	if err != nil {
		return nil, err
	}

	var sources []dataprocessing.ReportSource
	for _, f := range files {
		if f.IsDirectory || !strings.HasSuffix(strings.ToLower(f.ObjectName), ".csv") {
			continue
		}
		sources = append(sources, remoteSource{client: c, folder: folder, name: f.ObjectName})
	}

	c.logger.InfoContext(ctx, "discovered remote exports",
		slog.String("folder", folder),
		slog.Int("csv_files", len(sources)))
	return sources, nil
}

func (c *Client) fileURL(folder, name string) string {
	if c.cfg.PullZoneURL != "" {
		return fmt.Sprintf("%s/%s/%s",
			strings.TrimSuffix(c.cfg.PullZoneURL, "/"),
			escapePath(folder),
			url.PathEscape(name))
	}
	return fmt.Sprintf("%s/%s/%s/%s",
		strings.TrimSuffix(c.cfg.StorageEndpoint, "/"),
		url.PathEscape(c.cfg.StorageZone),
		escapePath(folder),
		url.PathEscape(name))
}

// escapePath escapes each segment of a folder path while keeping the
// separators.
func escapePath(folder string) string {
	parts := strings.Split(strings.Trim(folder, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// remoteSource adapts one stored object to the aggregator's source
// interface.
type remoteSource struct {
	client *Client
	folder string
	name   string
}

func (s remoteSource) Name() string { return s.name }

func (s remoteSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return s.client.FetchFile(ctx, s.folder, s.name)
}
