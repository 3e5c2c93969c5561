package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadConfig reads so the host environment
// cannot leak into assertions.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		ConfigFileEnv, "API_ISSUER", "API_ALGORITHM", "API_NUM_KEYS", "API_DATABASE_FILE",
		"API_PEPPER_FILE", "BOOTSTRAP_TOKEN", "ENV", "LOG_LEVEL", "LOG_FORMAT", "PORT",
		"SHUTDOWN_GRACE_PERIOD", "HOUSEKEEPING_INTERVAL", "MAX_UPLOAD_BYTES",
		"BLOB_DRIVER", "BLOB_DIR", "S3_BUCKET", "S3_REGION", "S3_ENDPOINT",
		"S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Layering(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	yamlFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte(`
issuer: from-yaml
port: 9000
shutdown_grace_period: 30s
blob:
  driver: s3
  s3:
    bucket: media
    endpoint: http://127.0.0.1:9000
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=debug\nPORT=7000\n"), 0o600))

	// godotenv only fills variables that are absent, not ones set to "".
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	t.Setenv(ConfigFileEnv, yamlFile)
	t.Setenv("PORT", "8181")
	t.Setenv("HOUSEKEEPING_INTERVAL", "15")
	t.Setenv("S3_REGION", "ap-southeast-2")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "from-yaml", cfg.Issuer)
	require.Equal(t, 30*time.Second, cfg.ShutdownGracePeriod)
	require.Equal(t, "s3", cfg.Blob.Driver)
	require.Equal(t, "media", cfg.Blob.S3.Bucket)
	require.Equal(t, "http://127.0.0.1:9000", cfg.Blob.S3.Endpoint)

	// The process environment beats .env, which beats YAML.
	require.Equal(t, 8181, cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 15*time.Minute, cfg.HousekeepingInterval)
	require.Equal(t, "ap-southeast-2", cfg.Blob.S3.Region)

	// Untouched fields keep their defaults.
	require.Equal(t, "EdDSA", cfg.Algorithm)
	require.Equal(t, int64(32<<20), cfg.MaxUploadBytes)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yamlFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(yamlFile, []byte("port: [not-a-number\n"), 0o600))
	t.Setenv(ConfigFileEnv, yamlFile)

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_MissingYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigFileEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestEnvDuration(t *testing.T) {
	d := time.Hour

	t.Setenv("TEST_DURATION", "90s")
	envDuration("TEST_DURATION", &d)
	require.Equal(t, 90*time.Second, d)

	t.Setenv("TEST_DURATION", "5")
	envDuration("TEST_DURATION", &d)
	require.Equal(t, 5*time.Minute, d)

	t.Setenv("TEST_DURATION", "soon")
	envDuration("TEST_DURATION", &d)
	require.Equal(t, 5*time.Minute, d)
}
