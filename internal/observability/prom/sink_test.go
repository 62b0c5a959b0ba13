package prom

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"gate.check":     "gate_check",
		" gate..check ":  "gate_check",
		"9lives":         "_9lives",
		"redirect-path/": "redirect_path",
		"":               "",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeName(in), "sanitizeName(%q)", in)
	}
}

func TestSink_CountRegistersCounterVec(t *testing.T) {
	s := NewSink(Config{Namespace: "gatekeeper"})

	s.Count("gate.check", 1, map[string]string{"outcome": "created"})
	s.Count("gate.check", 2, map[string]string{"outcome": "created"})
	s.Count("gate.check", 1, map[string]string{"outcome": "allowed"})

	entry := s.counters["gatekeeper_gate_check_total"]
	require.NotNil(t, entry.vec)
	assert.InDelta(t, 3, testutil.ToFloat64(entry.vec.WithLabelValues("created")), 0.0001)
	assert.InDelta(t, 1, testutil.ToFloat64(entry.vec.WithLabelValues("allowed")), 0.0001)
}

func TestSink_DropsMismatchedLabels(t *testing.T) {
	s := NewSink(Config{Namespace: "gatekeeper"})

	s.Count("gate.check", 1, map[string]string{"outcome": "created"})
	s.Count("gate.check", 1, map[string]string{"outcome": "created", "extra": "x"})

	entry := s.counters["gatekeeper_gate_check_total"]
	assert.Equal(t, []string{"outcome"}, entry.labels)
	assert.InDelta(t, 1, testutil.ToFloat64(entry.vec.WithLabelValues("created")), 0.0001)
}

func TestSink_GaugeAndTiming(t *testing.T) {
	s := NewSink(Config{Namespace: "gatekeeper"})

	s.Gauge("verdict.cache.size", 7, nil)
	s.Timing("gate.check", 250*time.Millisecond, map[string]string{"outcome": "allowed"})

	gauge := s.gauges["gatekeeper_verdict_cache_size"]
	require.NotNil(t, gauge.vec)
	assert.InDelta(t, 7, testutil.ToFloat64(gauge.vec.WithLabelValues()), 0.0001)

	count, err := testutil.GatherAndCount(s.Registry(), "gatekeeper_gate_check_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSink_HandlerServesExposition(t *testing.T) {
	s := NewSink(Config{Namespace: "gatekeeper"})
	s.Count("gate.check", 1, map[string]string{"outcome": "denied"})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gatekeeper_gate_check_total{outcome="denied"} 1`)
}

func TestSink_NilIsNoop(t *testing.T) {
	var s *Sink
	s.Count("x", 1, nil)
	s.Gauge("x", 1, nil)
	s.Timing("x", time.Second, nil)
}
