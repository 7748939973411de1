package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	appweb "fintrack/web"
)

const allowedTransactionMethods = "GET, POST"

type (
	// TransactionService is what the handlers need from the service layer.
	TransactionService interface {
		List(ctx context.Context) ([]core.Transaction, error)
		Create(ctx context.Context, c core.Candidate) (core.Transaction, error)
		Created() int64
		CacheStats() cache.Stats
	}

	// Pinger reports whether the database answers.
	Pinger interface {
		Ping(ctx context.Context) error
	}

	// Options configure the server. The zero value serves with defaults.
	Options struct {
		Logger             *applog.Logger
		RateLimitPerMinute int
		ReadTimeout        time.Duration
		WriteTimeout       time.Duration
		IdleTimeout        time.Duration
		// CacheManager is stopped on Shutdown when set.
		CacheManager *cache.Manager
	}
)

// Server serves the JSON API, the htmx page and the operational endpoints.
type Server struct {
	http.Server
	templates *template.Template
	service   TransactionService
	db        Pinger
	logger    *applog.Logger
	log       *applog.StructuredLogger

	tracer       *trace.Middleware
	rateLimiter  *ratelimit.Limiter
	detector     *security.Detector
	cacheManager *cache.Manager
	startedAt    time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, svc TransactionService, db Pinger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector(logger)
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadTimeout:       opts.ReadTimeout,
			ReadHeaderTimeout: opts.ReadTimeout,
			WriteTimeout:      opts.WriteTimeout,
			IdleTimeout:       opts.IdleTimeout,
		},
		service:  svc,
		db:       db,
		logger:   logger,
		log:      applog.NewStructuredLogger(logger),
		tracer:   trace.NewMiddleware(logger, detector.ExtractClientIP),
		detector: detector,
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			Methods:           []string{http.MethodPost},
		}),
		cacheManager: opts.CacheManager,
		startedAt:    time.Now(),
	}

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpParse,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
	}
	s.templates = t

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/metrics", s.handleMetrics).Methods(http.MethodGet)

	// Every method reaches the handler so unsupported ones get the JSON 405.
	r.HandleFunc("/api/transactions", s.handleTransactions)

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/ui/transactions", s.handleLedger)

	r.Use(
		s.tracer.Middleware,
		s.detector.Middleware,
		security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware,
		s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited),
	)
	return r
}

// handleRateLimited answers a refused POST in the shape its caller expects.
func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)

	if isHTMX(r) {
		ErrorResponse(http.StatusTooManyRequests, msgTooManyRequests).Write(w)
		return
	}
	writeError(w, http.StatusTooManyRequests, msgTooManyRequests)
}

// Shutdown stops background work and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		if s.cacheManager != nil {
			s.cacheManager.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
