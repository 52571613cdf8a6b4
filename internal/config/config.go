// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"orgdirectory/internal/blob"
	"orgdirectory/internal/core"
	"orgdirectory/internal/infra/persistence/sqlstore"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "ORGDIR_"

// Metrics exporters.
const (
	MetricsPrometheus = "prometheus"
	MetricsExpvar     = "expvar"
	MetricsNone       = "none"
)

// Config holds every runtime setting.
type Config struct {
	// HTTP
	HTTPAddr        string
	APIVersion      string
	APIAuthKey      string
	MaxInFlight     int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Observability
	LogLevel  string
	LogFormat string
	Metrics   string

	// Storage
	StorageDriver     core.StorageDriver
	SQLitePath        string
	PostgresDSN       string
	PostgresMigrate   bool
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Blob storage for seed datasets
	BlobDriver      blob.Driver
	BlobFSRoot      string
	BlobS3Bucket    string
	BlobS3Region    string
	BlobS3Endpoint  string
	BlobS3PathStyle bool
	DatasetKey      string
}

// Load reads files (default .env, ignored when missing) and then the
// environment. Variables already set in the environment win over file values.
// The result is not validated; callers apply their overrides and then call
// Validate.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8000"),
		APIVersion:      getEnv("API_VERSION", "v1"),
		APIAuthKey:      getEnv("API_AUTH_KEY", "0000"),
		MaxInFlight:     getEnvAsInt("MAX_IN_FLIGHT", 450),
		RequestTimeout:  getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		Metrics:   strings.ToLower(getEnv("METRICS", MetricsPrometheus)),

		StorageDriver:     core.StorageDriver(strings.ToLower(getEnv("STORAGE_DRIVER", string(core.StorageSQLite)))),
		SQLitePath:        getEnv("SQLITE_PATH", "orgdirectory.db"),
		PostgresDSN:       getEnv("POSTGRES_DSN", "postgres://localhost/orgdirectory?sslmode=disable"),
		PostgresMigrate:   getEnvAsBool("POSTGRES_MIGRATE", false),
		DBMaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 40),
		DBMaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 240*time.Second),

		BlobDriver:      blob.Driver(strings.ToLower(getEnv("BLOB_DRIVER", string(blob.DriverFilesystem)))),
		BlobFSRoot:      getEnv("BLOB_FS_ROOT", "./blobdata"),
		BlobS3Bucket:    getEnv("BLOB_S3_BUCKET", ""),
		BlobS3Region:    getEnv("BLOB_S3_REGION", "us-east-1"),
		BlobS3Endpoint:  getEnv("BLOB_S3_ENDPOINT", ""),
		BlobS3PathStyle: getEnvAsBool("BLOB_S3_PATH_STYLE", false),
		DatasetKey:      getEnv("DATASET_KEY", "datasets/directory.json.gz"),
	}
	return cfg, nil
}

// Validate rejects enumerated settings outside their allowed values.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.LogFormat)
	}
	switch c.Metrics {
	case MetricsPrometheus, MetricsExpvar, MetricsNone:
	default:
		return fmt.Errorf("invalid metrics exporter %q: must be one of prometheus, expvar, none", c.Metrics)
	}
	switch c.StorageDriver {
	case core.StorageMemory, core.StorageSQLite, core.StoragePostgres:
	default:
		return fmt.Errorf("invalid storage driver %q", c.StorageDriver)
	}
	switch c.BlobDriver {
	case blob.DriverFilesystem, blob.DriverMemory, blob.DriverS3:
	default:
		return fmt.Errorf("invalid blob driver %q", c.BlobDriver)
	}
	if c.MaxInFlight <= 0 {
		return fmt.Errorf("max in flight must be positive, got %d", c.MaxInFlight)
	}
	return nil
}

// Storage returns the read store selection.
func (c *Config) Storage() core.StorageConfig {
	return core.StorageConfig{
		Driver:      c.StorageDriver,
		SQLitePath:  c.SQLitePath,
		PostgresDSN: c.PostgresDSN,
		Pool: sqlstore.PoolOptions{
			MaxOpenConns:    c.DBMaxOpenConns,
			MaxIdleConns:    c.DBMaxIdleConns,
			ConnMaxLifetime: c.DBConnMaxLifetime,
		},
		ApplySchema: c.PostgresMigrate,
	}
}

// Blob returns the dataset blob store selection. S3 credentials come from the
// default AWS chain unless the standard AWS_ variables are set.
func (c *Config) Blob() blob.Config {
	return blob.Config{
		Driver: c.BlobDriver,
		FSRoot: c.BlobFSRoot,
		S3: blob.S3Config{
			Bucket:    c.BlobS3Bucket,
			Region:    c.BlobS3Region,
			Endpoint:  c.BlobS3Endpoint,
			PathStyle: c.BlobS3PathStyle,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
