package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spendlog/internal/ai"
	"spendlog/internal/cache"
	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/records"
)

const dashboardCacheKey = "dashboard"

// ExpenseService is the write/read surface the handlers run against.
type ExpenseService interface {
	CreateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error)
	ListExpenses(ctx context.Context, limit int) ([]core.ExpenseRecord, error)
	UpdateExpense(ctx context.Context, e core.ExpenseRecord) error
	DeleteExpense(ctx context.Context, id string) error
}

// Analyzer extracts structured expense data from a free-form description.
type Analyzer interface {
	AnalyzeExpense(ctx context.Context, description string) (ai.Analysis, error)
}

// Config holds server tuning knobs.
type Config struct {
	Addr     string
	CacheTTL time.Duration
}

type Server struct {
	http.Server
	svc         ExpenseService
	analyzer    Analyzer
	snapshots   records.SnapshotStore
	rateLimiter *rateLimiter
	logger      *log.Logger
	httpLog     *log.HTTPLogger
	now         func() time.Time

	// Composed dashboards are cached briefly so bursts of reads don't
	// recompute the same aggregation.
	dashCache *cache.LRUCache[core.DashboardSummary]

	cacheManager *cache.Manager
	shutdownOnce sync.Once
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(cfg Config, svc ExpenseService, analyzer Analyzer, snapshots records.SnapshotStore, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    cfg.Addr,
			Handler: mux,
		},
		svc:          svc,
		analyzer:     analyzer,
		snapshots:    snapshots,
		rateLimiter:  newRateLimiter(),
		logger:       logger,
		httpLog:      log.NewHTTPLogger(logger),
		now:          time.Now,
		dashCache:    cache.NewLRUCache[core.DashboardSummary](8, ttl),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.dashCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/dashboard", s.withMiddleware(s.handleDashboard))
	mux.HandleFunc("GET /api/dashboard/snapshot", s.withMiddleware(s.handleDashboardSnapshot))
	mux.HandleFunc("POST /api/analyze-expense", s.withMiddleware(s.handleAnalyzeExpense))
	mux.HandleFunc("GET /api/expenses", s.withMiddleware(s.handleListExpenses))
	mux.HandleFunc("PUT /api/expense/{id}", s.withMiddleware(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expense/{id}", s.withMiddleware(s.handleDeleteExpense))

	return s
}

// WithClock overrides the time source. Intended for tests.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ip := clientIP(r)
		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), log.LoggerContextKey, s.logger.With(log.FieldRequestID, requestID))
		r = r.WithContext(ctx)

		s.httpLog.LogStart(ctx, r, ip)

		// Rate limit mutating requests only.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(ip) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, ip,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.httpLog.LogEnd(ctx, r, rw.statusCode, time.Since(start).Milliseconds(), ip)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
