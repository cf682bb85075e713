// Package http exposes the budget ledger as a JSON API: expense and
// installment CRUD, salary settings, appointments, and the derived
// calendar, dashboard, and period report views.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"grana/internal/cache"
	"grana/internal/categorize"
	"grana/internal/core"
	"grana/internal/ledger"
	applog "grana/internal/log"
	"grana/internal/middleware/ratelimit"
	"grana/internal/middleware/security"
	"grana/internal/middleware/trace"
)

// storeTimeout bounds every store round trip issued by a handler.
const storeTimeout = 7 * time.Second

type Server struct {
	http.Server

	store      ledger.Store
	classifier *categorize.KeywordClassifier
	loc        *time.Location
	now        func() time.Time

	// Derived views are cached per user; calendar views are not, because
	// their day partition shifts with the clock.
	dashCache   *cache.LRUCache[dashboardView]
	reportCache *cache.LRUCache[core.PeriodReport]
	cacheMgr    *cache.Manager
	flight      singleflight.Group

	limiter  *ratelimit.Limiter
	detector *security.Detector
	headers  *security.HeadersMiddleware
	tracer   *trace.Middleware

	startedAt     time.Time
	totalExpenses atomic.Int64
	totalPlans    atomic.Int64

	shutdownOnce sync.Once
}

// NewServer wires routes, caches, and middleware, returning a
// ready-to-run server. loc is the timezone all "today" decisions use; a
// nil loc falls back to UTC.
func NewServer(addr string, store ledger.Store, loc *time.Location) *Server {
	if loc == nil {
		loc = time.UTC
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:       store,
		classifier:  categorize.NewKeywordClassifier(),
		loc:         loc,
		now:         time.Now,
		dashCache:   cache.NewLRUCache[dashboardView](100, 5*time.Minute),
		reportCache: cache.NewLRUCache[core.PeriodReport](200, 5*time.Minute),
		cacheMgr:    cache.NewManager(),
		limiter:     ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:    security.NewDetector(),
		headers:     security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		startedAt:   time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP)

	s.cacheMgr.Register(s.dashCache)
	s.cacheMgr.Register(s.reportCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	mux.HandleFunc("/categories", s.handleCategories)
	mux.HandleFunc("/expenses", s.handleExpenses)
	mux.HandleFunc("/expenses/", s.handleExpenseByID)
	mux.HandleFunc("/plans", s.handlePlans)
	mux.HandleFunc("/plans/", s.handlePlanByID)
	mux.HandleFunc("/installments", s.handleInstallments)
	mux.HandleFunc("/salary", s.handleSalary)
	mux.HandleFunc("/appointments", s.handleAppointments)
	mux.HandleFunc("/appointments/", s.handleAppointmentByID)
	mux.HandleFunc("/calendar", s.handleCalendar)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/report", s.handleReport)

	s.Handler = s.middleware(mux)
	return s
}

// middleware layers tracing, security headers, suspicious request
// detection, and mutation rate limiting around the mux.
func (s *Server) middleware(next http.Handler) http.Handler {
	h := s.rateLimitMutations(next)
	h = s.logSuspicious(h)
	h = s.headers.Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

// rateLimitMutations applies the per-client limiter to writes only;
// read endpoints stay unthrottled.
func (s *Server) rateLimitMutations(next http.Handler) http.Handler {
	limited := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		slog.WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldComponent, applog.ComponentRateLimit,
			applog.FieldClientIP, s.detector.ExtractClientIP(r),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		w.Header().Set("Retry-After", "60")
		writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded, retry later")
	})(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			limited.ServeHTTP(w, r)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// logSuspicious records scanner-looking traffic without blocking it.
func (s *Server) logSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request detected",
				applog.FieldComponent, applog.ComponentSecurity,
				applog.FieldClientIP, s.detector.ExtractClientIP(r),
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

// fetchStream loads direct expenses and installment entries
// concurrently and merges them into one chronological stream. Every
// monetary view reads from this stream so direct and derived charges
// are never counted differently.
func (s *Server) fetchStream(ctx context.Context, userID string) ([]core.LedgerEntry, error) {
	var (
		expenses []core.Expense
		entries  []core.InstallmentEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.ListExpenses(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		entries, err = s.store.ListPlanEntries(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return core.MergeStream(expenses, entries), nil
}

// invalidateUser drops the cached views for one user so the next read
// recomputes from the store.
func (s *Server) invalidateUser(userID string) {
	s.dashCache.Delete(dashboardCacheKey(userID))
	s.reportCache.DeletePrefix(reportCachePrefix(userID))
}

func dashboardCacheKey(userID string) string { return "dash:" + userID }

func reportCachePrefix(userID string) string { return "report:" + userID + ":" }

// Shutdown stops the cache and limiter housekeeping goroutines before
// draining the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
