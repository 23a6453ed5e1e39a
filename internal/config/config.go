// Package config defines the service configuration and how it is loaded.
package config

import (
	"fmt"
	"regexp"
	"runtime"
	"slices"
	"time"
)

// MinAuthSecretLength is the shortest auth_secret serve and seed accept.
const MinAuthSecretLength = 32

var metricNamePart = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Supported storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Drivers lists every accepted db_driver value.
func Drivers() []string {
	return []string{DriverMemory, DriverSQLite, DriverPostgres, DriverMySQL}
}

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr is the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`
	// RequestTimeoutMS bounds every HTTP request. Zero disables the limit.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`
	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string `koanf:"cors_origins"`
	// MaxPageLimit caps the limit query parameter of listings.
	MaxPageLimit int `koanf:"max_page_limit"`

	// DBDriver selects the athlete store.
	DBDriver string `koanf:"db_driver"`
	// DBDSN is passed to the SQL driver; ignored by the memory store.
	DBDSN string `koanf:"db_dsn"`

	// AuthSecret is the HS256 key used to verify bearer tokens. It has no
	// default; commands that sign or verify tokens call CheckAuthSecret.
	AuthSecret string `koanf:"auth_secret"`

	// Prometheus naming. Labels are attached to every series.
	MetricsNamespace        string            `koanf:"metrics_namespace"`
	MetricsSubsystem        string            `koanf:"metrics_subsystem"`
	MetricsLabels           map[string]string `koanf:"metrics_labels"`
	MetricsLatencyBucketsMS []float64         `koanf:"metrics_latency_buckets_ms"`

	// Backfill tuning.
	BackfillWorkers   int `koanf:"backfill_workers"`
	BackfillQueueSize int `koanf:"backfill_queue_size"`
	BackfillPageSize  int `koanf:"backfill_page_size"`
	DedupeSize        int `koanf:"dedupe_size"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		RequestTimeoutMS:  10_000,
		CORSOrigins:       []string{"*"},
		MaxPageLimit:      100,
		DBDriver:          DriverMemory,
		DBDSN:             "",
		MetricsNamespace:  "prospect",
		MetricsSubsystem:  "rating",
		BackfillWorkers:   runtime.NumCPU(),
		BackfillQueueSize: 1_024,
		BackfillPageSize:  500,
		DedupeSize:        100_000,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains(Drivers(), c.DBDriver):
		return fmt.Errorf("%w: unknown db_driver %q", ErrInvalidConfig, c.DBDriver)
	case c.DBDriver != DriverMemory && c.DBDSN == "":
		return fmt.Errorf("%w: db_dsn is required for %s", ErrInvalidConfig, c.DBDriver)
	case c.MaxPageLimit <= 0:
		return fmt.Errorf("%w: max_page_limit must be positive", ErrInvalidConfig)
	case c.BackfillWorkers <= 0:
		return fmt.Errorf("%w: backfill_workers must be positive", ErrInvalidConfig)
	case c.BackfillQueueSize <= 0:
		return fmt.Errorf("%w: backfill_queue_size must be positive", ErrInvalidConfig)
	case c.BackfillPageSize <= 0:
		return fmt.Errorf("%w: backfill_page_size must be positive", ErrInvalidConfig)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.RequestTimeoutMS < 0:
		return fmt.Errorf("%w: request_timeout_ms must not be negative", ErrInvalidConfig)
	case !metricNamePart.MatchString(c.MetricsNamespace):
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name", ErrInvalidConfig, c.MetricsNamespace)
	case c.MetricsSubsystem != "" && !metricNamePart.MatchString(c.MetricsSubsystem):
		return fmt.Errorf("%w: metrics_subsystem %q is not a valid metric name", ErrInvalidConfig, c.MetricsSubsystem)
	case !increasing(c.MetricsLatencyBucketsMS):
		return fmt.Errorf("%w: metrics_latency_buckets_ms must be strictly increasing", ErrInvalidConfig)
	}
	return nil
}

// CheckAuthSecret rejects a missing or short auth_secret.
func (c *Config) CheckAuthSecret() error {
	switch n := len(c.AuthSecret); {
	case n == 0:
		return fmt.Errorf("%w: auth_secret is required", ErrInvalidConfig)
	case n < MinAuthSecretLength:
		return fmt.Errorf("%w: auth_secret must be at least %d bytes, got %d", ErrInvalidConfig, MinAuthSecretLength, n)
	}
	return nil
}

func increasing(buckets []float64) bool {
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return false
		}
	}
	return true
}
