// Package config provides YAML-backed configuration for goproc.
package config

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/victoralfred/goproc/observability"
	"github.com/victoralfred/goproc/pool"
	"github.com/victoralfred/goproc/resilience"
	"github.com/victoralfred/goproc/sigmon"
)

// Duration wraps time.Duration for YAML round-tripping in the usual
// "500ms" / "30s" notation.
type Duration struct {
	time.Duration
}

// UnmarshalYAML unmarshals a duration from YAML.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	d.Duration = duration
	return nil
}

// MarshalYAML marshals a duration to YAML.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Config is the main configuration for goproc.
type Config struct {
	Process   ProcessConfig   `yaml:"process"`
	Pool      PoolConfig      `yaml:"pool"`
	Signals   SignalsConfig   `yaml:"signals"`
	Retry     RetryConfig     `yaml:"retry"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Audit     AuditConfig     `yaml:"audit"`
}

// ProcessConfig configures process defaults.
type ProcessConfig struct {
	// DefaultTimeout bounds execution when a caller sets none. Zero
	// means unbounded.
	DefaultTimeout Duration `yaml:"default_timeout"`

	// GracePeriod is the SIGTERM-to-SIGKILL window during shutdown.
	GracePeriod Duration `yaml:"grace_period"`
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxWorkers   int      `yaml:"max_workers"`
	SpawnRate    float64  `yaml:"spawn_rate"`
	SpawnBurst   int      `yaml:"spawn_burst"`
	ReapInterval Duration `yaml:"reap_interval"`
}

// SignalsConfig configures the signal monitor.
type SignalsConfig struct {
	// Shutdown lists the signal names that flip the shutdown flag.
	Shutdown []string `yaml:"shutdown"`
}

// RetryConfig configures spawn retries.
type RetryConfig struct {
	MaxRetries      int      `yaml:"max_retries"`
	InitialInterval Duration `yaml:"initial_interval"`
	MaxInterval     Duration `yaml:"max_interval"`
	Multiplier      float64  `yaml:"multiplier"`
	Jitter          bool     `yaml:"jitter"`
}

// TelemetryConfig configures telemetry export.
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name"`
	EnableTracing bool   `yaml:"enable_tracing"`
	EnableMetrics bool   `yaml:"enable_metrics"`
	MetricsPrefix string `yaml:"metrics_prefix"`
}

// AuditConfig configures audit logging.
type AuditConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BasePath string `yaml:"base_path"`
	FilePath string `yaml:"file_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Process: ProcessConfig{
			GracePeriod: Duration{500 * time.Millisecond},
		},
		Pool: PoolConfig{
			MaxWorkers: 32,
		},
		Signals: SignalsConfig{
			Shutdown: []string{"interrupt", "terminate"},
		},
		Retry: RetryConfig{
			MaxRetries:      3,
			InitialInterval: Duration{100 * time.Millisecond},
			MaxInterval:     Duration{5 * time.Second},
			Multiplier:      2.0,
			Jitter:          true,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "goproc",
			EnableTracing: true,
			EnableMetrics: true,
			MetricsPrefix: "goproc_",
		},
		Audit: AuditConfig{
			Enabled:  false,
			BasePath: "/var/log",
			FilePath: "goproc/audit.log",
		},
	}
}

// DevelopmentConfig returns configuration suitable for development.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.Process.DefaultTimeout = Duration{60 * time.Second}
	cfg.Pool.MaxWorkers = 8
	cfg.Telemetry.EnableTracing = false
	return cfg
}

// ProductionConfig returns configuration suitable for production.
func ProductionConfig() Config {
	cfg := DefaultConfig()
	cfg.Process.DefaultTimeout = Duration{30 * time.Second}
	cfg.Pool.SpawnRate = 100
	cfg.Pool.SpawnBurst = 150
	cfg.Pool.ReapInterval = Duration{time.Second}
	cfg.Audit.Enabled = true
	return cfg
}

// Validate checks the configuration and fills safe defaults for missing
// values.
func (c *Config) Validate() error {
	if c.Process.GracePeriod.Duration < 0 {
		return fmt.Errorf("process.grace_period must not be negative")
	}
	if c.Process.GracePeriod.Duration == 0 {
		c.Process.GracePeriod = Duration{500 * time.Millisecond}
	}

	if c.Pool.MaxWorkers <= 0 {
		c.Pool.MaxWorkers = 32
	}
	if c.Pool.SpawnRate < 0 {
		return fmt.Errorf("pool.spawn_rate must not be negative")
	}

	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative")
	}
	if c.Retry.Multiplier < 1 {
		c.Retry.Multiplier = 2.0
	}

	if c.Audit.Enabled && c.Audit.BasePath == "" {
		return fmt.Errorf("audit.base_path is required when audit is enabled")
	}

	return nil
}

// SignalKinds resolves the configured shutdown signal names.
func (c *Config) SignalKinds() ([]sigmon.Kind, error) {
	names := map[string]sigmon.Kind{
		"interrupt": sigmon.Interrupt,
		"terminate": sigmon.Terminate,
		"hangup":    sigmon.Hangup,
		"quit":      sigmon.Quit,
		"user1":     sigmon.User1,
		"user2":     sigmon.User2,
	}

	kinds := make([]sigmon.Kind, 0, len(c.Signals.Shutdown))
	for _, name := range c.Signals.Shutdown {
		kind, ok := names[name]
		if !ok {
			return nil, fmt.Errorf("unknown shutdown signal %q", name)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// PoolConfig converts the YAML view into the pool's runtime config.
func (c *Config) PoolConfig() pool.Config {
	return pool.Config{
		MaxWorkers:   c.Pool.MaxWorkers,
		SpawnRate:    rate.Limit(c.Pool.SpawnRate),
		SpawnBurst:   c.Pool.SpawnBurst,
		ReapInterval: c.Pool.ReapInterval.Duration,
	}
}

// BackoffConfig converts the retry section into backoff settings.
func (c *Config) BackoffConfig() resilience.BackoffConfig {
	return resilience.BackoffConfig{
		InitialInterval: c.Retry.InitialInterval.Duration,
		MaxInterval:     c.Retry.MaxInterval.Duration,
		Multiplier:      c.Retry.Multiplier,
		MaxRetries:      c.Retry.MaxRetries,
		Jitter:          c.Retry.Jitter,
		JitterFactor:    0.1,
	}
}

// TelemetryConfig converts the telemetry section for the observability
// package.
func (c *Config) TelemetryConfig() observability.TelemetryConfig {
	return observability.TelemetryConfig{
		ServiceName:   c.Telemetry.ServiceName,
		EnableTracing: c.Telemetry.EnableTracing,
		EnableMetrics: c.Telemetry.EnableMetrics,
		MetricsPrefix: c.Telemetry.MetricsPrefix,
	}
}

// AuditConfig converts the audit section for the observability package.
func (c *Config) AuditConfig() observability.AuditConfig {
	return observability.AuditConfig{
		Enabled:  c.Audit.Enabled,
		BasePath: c.Audit.BasePath,
		FilePath: c.Audit.FilePath,
	}
}
