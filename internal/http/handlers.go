package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

type appMetrics struct {
	started          time.Time
	expensesRecorded int64
	writeFailures    int64
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.metrics.started).Round(time.Second).String(),
	})
}

// handleReady checks templates and, when configured, the backing store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]any{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	l, rev := s.session.Snapshot()
	checks["ledger"] = map[string]any{"records": l.Len(), "revision": rev}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	l, _ := s.session.Snapshot()
	security := s.detector.GetMetrics()
	limits := s.rateLimiter.GetMetrics()
	traces := s.tracer.GetMetrics()
	hits, misses := s.chartCache.Stats()

	metrics := []struct {
		name, help, kind string
		value            any
	}{
		{"http_requests_total", "Total number of HTTP requests", "counter", traces.TotalRequests},
		{"http_request_duration_avg_ms", "Average request duration", "gauge", traces.AverageResponseTime.Milliseconds()},
		{"ledger_records", "Records in the session ledger", "gauge", l.Len()},
		{"expenses_recorded_total", "Expenses recorded by this process", "counter", atomic.LoadInt64(&s.metrics.expensesRecorded)},
		{"ledger_write_failures_total", "Appends kept in memory after a failed write", "counter", atomic.LoadInt64(&s.metrics.writeFailures)},
		{"chart_cache_hits_total", "Chart cache hits", "counter", hits},
		{"chart_cache_misses_total", "Chart cache misses", "counter", misses},
		{"rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", limits.TotalHits},
		{"active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", limits.ClientCount},
		{"suspicious_requests_total", "Suspicious requests detected", "counter", security.SuspiciousRequests},
		{"uptime_seconds", "Application uptime in seconds", "gauge", int64(s.now().Sub(s.metrics.started).Seconds())},
	}

	w.WriteHeader(http.StatusOK)
	for _, m := range metrics {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", m.name, m.help, m.name, m.kind, m.name, m.value)
	}
}
