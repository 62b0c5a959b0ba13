// Package prom adapts the statsd.Sink metrics port to Prometheus collectors
// served from a dedicated registry.
package prom

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"

	"github.com/target/gatekeeper/internal/observability/statsd"
)

// Config controls collector naming.
type Config struct {
	Namespace string
	Logger    *slog.Logger
	// WithRuntime registers the Go runtime and process collectors.
	WithRuntime bool
}

// Sink turns Count/Gauge/Timing calls into lazily registered CounterVec,
// GaugeVec and HistogramVec collectors. Label names are fixed by the first
// observation of a metric; later observations with a different tag set are dropped.
type Sink struct {
	namespace string
	registry  *prometheus.Registry
	factory   promauto.Factory
	logger    *slog.Logger

	mu         sync.Mutex
	counters   map[string]labeled[*prometheus.CounterVec]
	gauges     map[string]labeled[*prometheus.GaugeVec]
	histograms map[string]labeled[*prometheus.HistogramVec]
}

type labeled[V any] struct {
	vec    V
	labels []string
}

var _ statsd.Sink = (*Sink)(nil)

// NewSink creates a Sink backed by a fresh registry.
func NewSink(cfg Config) *Sink {
	reg := prometheus.NewRegistry()
	if cfg.WithRuntime {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return &Sink{
		namespace:  sanitizeName(cfg.Namespace),
		registry:   reg,
		factory:    promauto.With(reg),
		logger:     lo.Ternary(cfg.Logger != nil, cfg.Logger, slog.Default()),
		counters:   make(map[string]labeled[*prometheus.CounterVec]),
		gauges:     make(map[string]labeled[*prometheus.GaugeVec]),
		histograms: make(map[string]labeled[*prometheus.HistogramVec]),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (s *Sink) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (s *Sink) Registry() *prometheus.Registry { return s.registry }

// Count adds value to the counter <namespace>_<name>_total.
func (s *Sink) Count(name string, value int64, tags map[string]string) {
	if s == nil || value < 0 {
		return
	}
	labels, values := splitTags(tags)
	s.mu.Lock()
	defer s.mu.Unlock()

	full := s.metricName(name, "total")
	entry, ok := s.counters[full]
	if !ok {
		entry = labeled[*prometheus.CounterVec]{
			vec:    s.factory.NewCounterVec(prometheus.CounterOpts{Name: full, Help: "Count of " + name + "."}, labels),
			labels: labels,
		}
		s.counters[full] = entry
	}
	if !slices.Equal(entry.labels, labels) {
		s.dropped(full, labels, entry.labels)
		return
	}
	entry.vec.WithLabelValues(values...).Add(float64(value))
}

// Gauge sets the gauge <namespace>_<name>.
func (s *Sink) Gauge(name string, value float64, tags map[string]string) {
	if s == nil {
		return
	}
	labels, values := splitTags(tags)
	s.mu.Lock()
	defer s.mu.Unlock()

	full := s.metricName(name, "")
	entry, ok := s.gauges[full]
	if !ok {
		entry = labeled[*prometheus.GaugeVec]{
			vec:    s.factory.NewGaugeVec(prometheus.GaugeOpts{Name: full, Help: "Current " + name + "."}, labels),
			labels: labels,
		}
		s.gauges[full] = entry
	}
	if !slices.Equal(entry.labels, labels) {
		s.dropped(full, labels, entry.labels)
		return
	}
	entry.vec.WithLabelValues(values...).Set(value)
}

// Timing observes value in the histogram <namespace>_<name>_seconds.
func (s *Sink) Timing(name string, value time.Duration, tags map[string]string) {
	if s == nil {
		return
	}
	labels, values := splitTags(tags)
	s.mu.Lock()
	defer s.mu.Unlock()

	full := s.metricName(name, "seconds")
	entry, ok := s.histograms[full]
	if !ok {
		entry = labeled[*prometheus.HistogramVec]{
			vec: s.factory.NewHistogramVec(prometheus.HistogramOpts{
				Name:    full,
				Help:    "Duration of " + name + ".",
				Buckets: prometheus.DefBuckets,
			}, labels),
			labels: labels,
		}
		s.histograms[full] = entry
	}
	if !slices.Equal(entry.labels, labels) {
		s.dropped(full, labels, entry.labels)
		return
	}
	entry.vec.WithLabelValues(values...).Observe(value.Seconds())
}

func (s *Sink) dropped(metric string, got, want []string) {
	s.logger.Debug("prometheus label mismatch, observation dropped",
		"metric", metric, "labels", got, "expected", want)
}

func (s *Sink) metricName(name, suffix string) string {
	parts := lo.Compact([]string{s.namespace, sanitizeName(name), suffix})
	return strings.Join(parts, "_")
}

// splitTags returns sanitized label names in sorted order and their values.
func splitTags(tags map[string]string) ([]string, []string) {
	clean := make(map[string]string, len(tags))
	for k, v := range tags {
		if key := sanitizeName(k); key != "" {
			clean[key] = strings.TrimSpace(v)
		}
	}
	labels := lo.Keys(clean)
	slices.Sort(labels)
	return labels, lo.Map(labels, func(k string, _ int) string { return clean[k] })
}

// sanitizeName maps a dotted StatsD name onto the Prometheus name charset.
func sanitizeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(s))
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	s = strings.Trim(s, "_")
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}
	return s
}
