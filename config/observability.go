package config

import (
	"log/slog"
	"strings"
)

// MetricsBackend selects where metrics are emitted.
type MetricsBackend string

const (
	// MetricsBackendStatsd pushes metrics to a StatsD agent over UDP.
	MetricsBackendStatsd MetricsBackend = "statsd"
	// MetricsBackendPrometheus exposes metrics on /metrics for scraping.
	MetricsBackendPrometheus MetricsBackend = "prometheus"
)

// ObservabilityConfig groups configuration that controls metrics and logging.
type ObservabilityConfig struct {
	Metrics  ObservabilityMetricsConfig
	LogLevel string `env:"OBSERVABILITY_LOG_LEVEL" envDefault:"info"`
}

// Sanitize applies guardrails to observability sub-configs.
func (c *ObservabilityConfig) Sanitize() {
	c.Metrics.Sanitize()
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// SlogLevel converts LogLevel to a slog.Level, defaulting to info.
func (c *ObservabilityConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ObservabilityMetricsConfig controls emission of metrics to StatsD or Prometheus.
type ObservabilityMetricsConfig struct {
	Enabled       bool           `env:"OBSERVABILITY_METRICS_ENABLED"        envDefault:"false"`
	Backend       MetricsBackend `env:"OBSERVABILITY_METRICS_BACKEND"        envDefault:"statsd"`
	StatsdAddress string         `env:"OBSERVABILITY_METRICS_STATSD_ADDRESS" envDefault:"127.0.0.1:8125"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *ObservabilityMetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	switch MetricsBackend(strings.ToLower(strings.TrimSpace(string(c.Backend)))) {
	case MetricsBackendPrometheus:
		c.Backend = MetricsBackendPrometheus
	default:
		c.Backend = MetricsBackendStatsd
	}
	if c.Backend == MetricsBackendStatsd && c.StatsdAddress == "" {
		c.Enabled = false
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *ObservabilityMetricsConfig) IsEnabled() bool {
	if !c.Enabled {
		return false
	}
	return c.Backend == MetricsBackendPrometheus || c.StatsdAddress != ""
}
