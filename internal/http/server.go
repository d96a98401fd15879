package http

import (
	"context"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	appweb "expensetracker/web"
)

// LedgerSession is the process-wide ledger the handlers read and append to.
type LedgerSession interface {
	Snapshot() (ledger.Ledger, uint64)
	Record(ctx context.Context, e core.Expense) (ledger.Ledger, error)
}

// Exporter writes a ledger in its file format.
type Exporter interface {
	Export(w io.Writer, l ledger.Ledger) error
}

// Options tune a Server. Zero values fall back to defaults.
type Options struct {
	Budget      ledger.Budget
	RecentLimit int
	Logger      *applog.Logger
	// Ready reports whether the backing store is reachable.
	Ready func(ctx context.Context) error
	Now   func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template

	session     LedgerSession
	exporter    Exporter
	budget      ledger.Budget
	recentLimit int
	ready       func(ctx context.Context) error
	now         func() time.Time
	logger      *applog.Logger

	chartCache   *cache.LRUCache[[]byte]
	cacheManager *cache.Manager
	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
	metrics      appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, sess LedgerSession, exp Exporter, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RecentLimit < 1 {
		opts.RecentLimit = 50
	}
	if opts.Budget == (ledger.Budget{}) {
		opts.Budget = ledger.DefaultBudget()
	}
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		session:      sess,
		exporter:     exp,
		budget:       opts.Budget,
		recentLimit:  opts.RecentLimit,
		ready:        opts.Ready,
		now:          opts.Now,
		logger:       logger,
		chartCache:   cache.NewLRUCache[[]byte](32, 10*time.Minute),
		cacheManager: cache.NewManager(logger.Logger),
		rateLimiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     security.NewDetector(),
		metrics:      appMetrics{started: opts.Now()},
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	s.cacheManager.Register(s.chartCache)
	s.cacheManager.StartCleanup(5 * time.Minute)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/expenses", s.handleCreateExpense)
	mux.HandleFunc("/export.csv", s.handleExport)

	// UI partials
	mux.HandleFunc("/ui/recent", s.handleRecent)
	mux.HandleFunc("/ui/summary", s.handleSummary)
	mux.HandleFunc("/ui/budget", s.handleBudget)

	// Chart.js series
	mux.HandleFunc("/api/charts/daily", s.handleChart(chartDaily))
	mux.HandleFunc("/api/charts/monthly", s.handleChart(chartMonthly))
	mux.HandleFunc("/api/charts/categories", s.handleChart(chartCategories))

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)(handler)
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)
	s.Handler = handler

	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldPath, r.URL.Path,
		applog.FieldClientIP, s.detector.ExtractClientIP(r))
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again later.").
		TriggerErrorNotification("Too many requests").
		Write(w)
}

// Shutdown stops background goroutines and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// render executes a template, answering 500 when templates are missing or
// execution fails.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		InternalServerError("templates not loaded").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, name)
	}
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}
