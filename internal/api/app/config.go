package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnv names an optional YAML file layered between the defaults and
// the environment.
const ConfigFileEnv = "APP_CONFIG_FILE"

type Config struct {
	Issuer         string `yaml:"issuer"`          // issuer claim for access tokens (default: dds2-api)
	BootstrapToken string `yaml:"bootstrap_token"` // Optional: token required to perform bootstrap

	Algorithm            string        `yaml:"algorithm"`             // JWT signing algorithm (EdDSA, ES256) (default: EdDSA)
	NumKeys              int           `yaml:"num_keys"`              // number of signing keys to generate (default: 3, min: 1, max: 10)
	DatabaseFile         string        `yaml:"database_file"`         // path to SQLite database file (default: ./dds2.db)
	PepperFile           string        `yaml:"pepper_file"`           // path to file containing pepper for password hashing (default: ./pepper)
	Env                  string        `yaml:"env"`                   // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        `yaml:"log_level"`             // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        `yaml:"log_format"`            // Log format (json, text) (default: json)
	Port                 int           `yaml:"port"`                  // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration `yaml:"shutdown_grace_period"` // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"` // Housekeeping interval (default: 1h)
	MaxUploadBytes       int64         `yaml:"max_upload_bytes"`      // multipart upload cap (default: 32 MiB)

	Blob BlobConfig `yaml:"blob"`
}

// BlobConfig selects where uploaded attachment and dataset files live.
type BlobConfig struct {
	Driver string   `yaml:"driver"` // fs or s3 (default: fs)
	Dir    string   `yaml:"dir"`    // root directory for the fs driver (default: ./media)
	S3     S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"` // set for MinIO and other S3-compatible stores
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// DefaultConfig is the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Issuer:               "dds2-api",
		Algorithm:            "EdDSA",
		NumKeys:              3,
		DatabaseFile:         "dds2.db",
		PepperFile:           "pepper",
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: 1 * time.Hour,
		MaxUploadBytes:       32 << 20,
		Blob: BlobConfig{
			Driver: "fs",
			Dir:    "./media",
			S3:     S3Config{Region: "us-east-1"},
		},
	}
}

// LoadConfig layers the defaults, the YAML file named by APP_CONFIG_FILE, a
// .env file and finally the process environment.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	// Variables already set in the environment win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	envString("API_ISSUER", &cfg.Issuer)
	envString("API_ALGORITHM", &cfg.Algorithm)
	envInt("API_NUM_KEYS", &cfg.NumKeys)
	envString("API_DATABASE_FILE", &cfg.DatabaseFile)
	envString("API_PEPPER_FILE", &cfg.PepperFile)
	envString("BOOTSTRAP_TOKEN", &cfg.BootstrapToken)
	envString("ENV", &cfg.Env)
	envString("LOG_LEVEL", &cfg.LogLevel)
	envString("LOG_FORMAT", &cfg.LogFormat)
	envInt("PORT", &cfg.Port)
	envDuration("SHUTDOWN_GRACE_PERIOD", &cfg.ShutdownGracePeriod)
	envDuration("HOUSEKEEPING_INTERVAL", &cfg.HousekeepingInterval)
	envInt64("MAX_UPLOAD_BYTES", &cfg.MaxUploadBytes)

	envString("BLOB_DRIVER", &cfg.Blob.Driver)
	envString("BLOB_DIR", &cfg.Blob.Dir)
	envString("S3_BUCKET", &cfg.Blob.S3.Bucket)
	envString("S3_REGION", &cfg.Blob.S3.Region)
	envString("S3_ENDPOINT", &cfg.Blob.S3.Endpoint)
	envString("S3_ACCESS_KEY_ID", &cfg.Blob.S3.AccessKeyID)
	envString("S3_SECRET_ACCESS_KEY", &cfg.Blob.S3.SecretAccessKey)
}

func envString(key string, dst *string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func envInt(key string, dst *int) {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			*dst = intValue
		}
	}
}

func envInt64(key string, dst *int64) {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue > 0 {
			*dst = intValue
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	value := os.Getenv(key)
	if value == "" {
		return
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		*dst = duration
		return
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		*dst = time.Duration(minutes) * time.Minute
	}
}
