// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and the environment on top of those defaults.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// FetchTimeoutMS bounds each biometric sample query.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// FetchConcurrency caps concurrent sample queries per aggregation.
	FetchConcurrency int `koanf:"fetch_concurrency"`

	// WorkerCount sets the number of calorie job workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// MaxResults caps how many job results are retained.
	MaxResults int `koanf:"max_results"`

	// MaxJobsLimit caps GET /v1/jobs?limit.
	MaxJobsLimit int `koanf:"max_jobs_limit"`

	// ModelDir overrides the bundled model artifacts when non-empty.
	ModelDir string `koanf:"model_dir"`

	// SampleDBPath is the SQLite file backing the host biometric store.
	SampleDBPath string `koanf:"sample_db_path"`

	// AnswerCachePath is the bbolt file holding saved questionnaire answers.
	AnswerCachePath string `koanf:"answer_cache_path"`

	// MetricsNamespace and MetricsSubsystem prefix every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// LatencyBucketsMS are the histogram bounds for all latency metrics.
	LatencyBucketsMS []float64 `koanf:"latency_buckets_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		FetchTimeoutMS:   5000,
		FetchConcurrency: 5,
		WorkerCount:      runtime.NumCPU(),
		QueueSize:        1024,
		MaxResults:       10_000,
		MaxJobsLimit:     100,
		SampleDBPath:     "data/samples.db",
		AnswerCachePath:  "data/answers.db",
		MetricsNamespace: "wellness",
		MetricsSubsystem: "advisor",
		LatencyBucketsMS: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.FetchTimeoutMS <= 0:
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	case c.FetchConcurrency <= 0:
		return fmt.Errorf("%w: fetch_concurrency must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.MaxResults <= 0:
		return fmt.Errorf("%w: max_results must be positive", ErrInvalidConfig)
	case c.MaxJobsLimit <= 0:
		return fmt.Errorf("%w: max_jobs_limit must be positive", ErrInvalidConfig)
	case c.SampleDBPath == "":
		return fmt.Errorf("%w: sample_db_path must not be empty", ErrInvalidConfig)
	case c.AnswerCachePath == "":
		return fmt.Errorf("%w: answer_cache_path must not be empty", ErrInvalidConfig)
	case c.MetricsNamespace == "":
		return fmt.Errorf("%w: metrics_namespace must not be empty", ErrInvalidConfig)
	case !ascending(c.LatencyBucketsMS):
		return fmt.Errorf("%w: latency_buckets_ms must be non-empty and ascending", ErrInvalidConfig)
	}
	return nil
}

func ascending(bounds []float64) bool {
	if len(bounds) == 0 {
		return false
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] {
			return false
		}
	}
	return true
}
