package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"grana/internal/core"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).String(),
	})
}

// handleReady reports whether the store answers. Load balancers poll
// this; a failing store flips the instance out of rotation.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK
	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = "unavailable: " + err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]any{
		"status": state,
		"checks": checks,
	})
}

// handleMetrics exposes counters in Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	traceMetrics := s.tracer.GetMetrics()
	detection := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests served.\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_response_time_avg_microseconds Rolling average response time.\n")
	fmt.Fprintf(w, "# TYPE http_response_time_avg_microseconds gauge\n")
	fmt.Fprintf(w, "http_response_time_avg_microseconds %d\n\n", traceMetrics.AverageResponseTime)

	fmt.Fprintf(w, "# HELP expenses_created_total Expenses created since startup.\n")
	fmt.Fprintf(w, "# TYPE expenses_created_total counter\n")
	fmt.Fprintf(w, "expenses_created_total %d\n\n", s.totalExpenses.Load())

	fmt.Fprintf(w, "# HELP plans_created_total Installment plans created since startup.\n")
	fmt.Fprintf(w, "# TYPE plans_created_total counter\n")
	fmt.Fprintf(w, "plans_created_total %d\n\n", s.totalPlans.Load())

	fmt.Fprintf(w, "# HELP cache_entries Current entries per view cache.\n")
	fmt.Fprintf(w, "# TYPE cache_entries gauge\n")
	fmt.Fprintf(w, "cache_entries{cache=\"dashboard\"} %d\n", s.dashCache.Size())
	fmt.Fprintf(w, "cache_entries{cache=\"report\"} %d\n\n", s.reportCache.Size())

	fmt.Fprintf(w, "# HELP suspicious_requests_total Requests flagged by the security detector.\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", detection.SuspiciousRequests)

	fmt.Fprintf(w, "# HELP ratelimit_active_clients Clients currently tracked by the rate limiter.\n")
	fmt.Fprintf(w, "# TYPE ratelimit_active_clients gauge\n")
	fmt.Fprintf(w, "ratelimit_active_clients %d\n\n", s.limiter.ActiveClients())

	fmt.Fprintf(w, "# HELP uptime_seconds Seconds since the server started.\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.startedAt).Seconds())
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": core.KnownCategories(),
	})
}
