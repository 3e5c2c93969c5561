package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/dds2/internal/api/store/drivers/sqlite"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.DatabaseFile = sqlite.MemoryDSN
	cfg.PepperFile = filepath.Join(dir, "pepper")
	cfg.LogLevel = "error"
	cfg.Blob.Dir = filepath.Join(dir, "media")
	cfg.NumKeys = 1
	return cfg
}

func TestNew_ServesHealthAndJWKS(t *testing.T) {
	application, err := New(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.db.Close() })

	srv := httptest.NewServer(application.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/.well-known/jwks.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var jwks struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&jwks))
	require.Len(t, jwks.Keys, 1)
}

func TestNew_UnknownBlobDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Blob.Driver = "ftp"

	_, err := New(cfg)
	require.ErrorContains(t, err, "unknown blob driver")
}

func TestNew_BadAlgorithm(t *testing.T) {
	cfg := testConfig(t)
	cfg.Algorithm = "HS256"

	_, err := New(cfg)
	require.Error(t, err)
}

func TestShutdown_StopsCleanly(t *testing.T) {
	application, err := New(testConfig(t))
	require.NoError(t, err)

	application.housekeepingService.Start()
	require.NoError(t, application.Shutdown())
}
