package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"findash/internal/log"
)

// pinger is implemented by stores with a cheap liveness probe.
type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.started).Round(time.Second).String(),
	})
}

// handleReady checks templates and the transaction source.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	fail := func(name string, err error) {
		checks[name] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.templates == nil {
		fail("templates", fmt.Errorf("templates not loaded"))
	} else {
		checks["templates"] = "ok"
	}

	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			fail("source", err)
		} else {
			checks["source"] = "ok"
		}
	} else if _, err := s.snapshot(ctx); err != nil {
		fail("source", err)
	} else {
		checks["source"] = "ok"
	}

	stats := s.txCache.Stats()
	checks["cache"] = map[string]any{
		"entries": stats.Size,
		"hits":    stats.Hits,
		"misses":  stats.Misses,
	}
	checks["async_export"] = s.exports.AsyncEnabled()

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	tm := s.trace.GetMetrics()
	rl := s.rateLimiter.GetMetrics()
	cs := s.txCache.Stats()

	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n", name, help, name, kind, name, value)
	}

	metric("findash_http_requests_total", "Total number of HTTP requests", "counter", tm.TotalRequests)
	fmt.Fprintf(w, "# HELP findash_http_responses_total HTTP responses by status class\n# TYPE findash_http_responses_total counter\n")
	fmt.Fprintf(w, "findash_http_responses_total{class=\"2xx\"} %d\n", tm.Status2xx)
	fmt.Fprintf(w, "findash_http_responses_total{class=\"4xx\"} %d\n", tm.Status4xx)
	fmt.Fprintf(w, "findash_http_responses_total{class=\"5xx\"} %d\n", tm.Status5xx)
	metric("findash_http_in_flight", "Requests currently being served", "gauge", tm.InFlight)
	metric("findash_http_request_duration_ms_avg", "Average request duration in milliseconds", "gauge", fmt.Sprintf("%.3f", tm.AverageDurationMs))

	metric("findash_exports_total", "Completed synchronous exports", "counter", s.appMetrics.exports.Load())
	metric("findash_export_errors_total", "Failed synchronous exports", "counter", s.appMetrics.exportErrors.Load())
	metric("findash_export_requests_total", "Export requests queued for the worker", "counter", s.appMetrics.asyncRequests.Load())

	metric("findash_cache_hits_total", "Transaction snapshot cache hits", "counter", cs.Hits)
	metric("findash_cache_misses_total", "Transaction snapshot cache misses", "counter", cs.Misses)
	metric("findash_cache_entries", "Transaction snapshot cache entries", "gauge", cs.Size)

	metric("findash_rate_limit_rejected_total", "Requests rejected by the rate limiter", "counter", rl.Rejected)
	metric("findash_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rl.ClientCount)

	metric("findash_uptime_seconds", "Application uptime in seconds", "gauge", fmt.Sprintf("%.0f", time.Since(s.appMetrics.started).Seconds()))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/transactions", http.StatusFound)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(context.Background()).Error("Encode JSON response failed", log.FieldError, err)
	}
}
