package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"attendcli/internal/config"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	a := &Application{
		Config: config.Default(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	require.NoError(t, a.initializeServices())
	a.setupRouter()
	a.createServer()
	return a
}

func TestApplication_Routes(t *testing.T) {
	a := newTestApplication(t)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		// No ingestion has run yet.
		{http.MethodGet, "/api/search?q=alice", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/stats", http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		a.Router.ServeHTTP(rec, req)
		require.Equal(t, tt.status, rec.Code, "%s %s", tt.method, tt.path)
	}
}

func TestApplication_ServerConfig(t *testing.T) {
	a := newTestApplication(t)

	require.Equal(t, ":8080", a.Server.Addr)
	require.Equal(t, a.Config.Server.ReadTimeout, a.Server.ReadTimeout)
	require.Equal(t, a.Config.Server.WriteTimeout, a.Server.WriteTimeout)
}
