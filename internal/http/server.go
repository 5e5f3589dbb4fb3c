package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"findash/internal/cache"
	"findash/internal/config"
	"findash/internal/core"
	"findash/internal/export"
	"findash/internal/log"
	"findash/internal/middleware/ratelimit"
	"findash/internal/middleware/security"
	"findash/internal/middleware/trace"
	"findash/internal/services"
	"findash/internal/source"
	appweb "findash/web"
)

const (
	snapshotKey   = "transactions"
	categoriesKey = "categories"

	maxBodyBytes = 64 << 10
)

// Deps are the collaborators a server renders and exports from.
type Deps struct {
	Store source.Store
	// Sheet, when set, lets POST /export write the CSV into a new
	// spreadsheet tab instead of downloading it.
	Sheet export.Sink
	// Publisher, when set, enables POST /exports.
	Publisher services.Publisher
	Logger    *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	logger    *log.Logger

	store    source.Store
	sheet    export.Sink
	exports  *services.ExportService
	pageSize int

	txCache      *cache.LRUCache[[]core.Transaction]
	catCache     *cache.LRUCache[[]string]
	cacheManager *cache.Manager

	clientIP    *security.ClientIP
	rateLimiter *ratelimit.Limiter
	trace       *trace.Middleware

	appMetrics appMetrics

	shutdownOnce sync.Once
}

type appMetrics struct {
	started       time.Time
	exports       atomic.Int64
	exportErrors  atomic.Int64
	asyncRequests atomic.Int64
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              ":" + cfg.Port,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:       logger,
		store:        deps.Store,
		sheet:        deps.Sheet,
		pageSize:     cfg.PageSize,
		txCache:      cache.NewLRUCache[[]core.Transaction](4, cfg.CacheTTL),
		catCache:     cache.NewLRUCache[[]string](4, cfg.CacheTTL),
		cacheManager: cache.NewManager(logger),
		clientIP:     security.NewClientIP(),
		rateLimiter:  ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
	}
	s.appMetrics.started = time.Now()
	s.trace = trace.NewMiddleware(logger, s.clientIP.Extract)

	opts := export.Options{
		DateLayout:   cfg.ExportDateLayout,
		EscapeQuotes: cfg.ExportEscapeQuotes,
		Delay:        cfg.ExportDelay,
	}
	s.exports = services.NewExportService(snapshotLister{s}, deps.Store, deps.Publisher, opts,
		export.WithLogger(logger.WithComponent(log.ComponentExport)))

	s.cacheManager.Register(s.txCache)
	s.cacheManager.Register(s.catCache)
	s.cacheManager.StartCleanup(time.Minute)

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /transactions", s.handleTransactionsPage)
	mux.HandleFunc("GET /ui/transactions", s.handleTransactionsTable)
	mux.HandleFunc("GET /ui/export", s.handleExportDialog)
	mux.HandleFunc("POST /ui/export/columns", s.handleToggleColumns)
	mux.HandleFunc("POST /export", s.handleExport)
	mux.HandleFunc("POST /exports", s.handleRequestExport)
	mux.HandleFunc("GET /api/transactions", s.handleAPITransactions)
	mux.HandleFunc("GET /api/exports", s.handleAPIExports)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	var h http.Handler = mux
	h = s.rateLimiter.Middleware(s.clientIP.Extract, s.onRateLimited, http.MethodPost)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.trace.Middleware(h)
	s.Handler = h

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// snapshot returns the cached transaction set. Concurrent misses share one
// load from the store.
func (s *Server) snapshot(ctx context.Context) ([]core.Transaction, error) {
	return s.txCache.GetOrLoad(ctx, snapshotKey, s.store.ListTransactions)
}

func (s *Server) categories(ctx context.Context) ([]string, error) {
	return s.catCache.GetOrLoad(ctx, categoriesKey, s.store.Categories)
}

// snapshotLister feeds the export service from the server's cache so the
// export matches what the table shows.
type snapshotLister struct{ s *Server }

func (l snapshotLister) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return l.s.snapshot(ctx)
}

// render executes a template into a buffer first so a failing template never
// sends a partial page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed", "template", name, log.FieldError, err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.clientIP.Extract(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		TriggerErrorNotification("Too many requests. Please try again later.").
		BodyString(fmt.Sprintf("rate limit exceeded, retry after %s seconds\n", w.Header().Get("Retry-After"))).
		Write(w)
}
