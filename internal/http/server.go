package http

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetapp/internal/core"
	applog "budgetapp/internal/log"
	appweb "budgetapp/web"
)

const requestIDHeader = "X-Request-ID"

// ReceiptService is the receipt workflow exposed over HTTP.
type ReceiptService interface {
	CreateReceipt(ctx context.Context, image []byte) (core.ReceiptSummary, error)
	ListReceipts(ctx context.Context) ([]core.ReceiptSummary, error)
	GetReceipt(ctx context.Context, id int64) (core.Receipt, error)
	ExportCSV(ctx context.Context, w io.Writer) error
}

// BudgetService is the budget ledger exposed over HTTP.
type BudgetService interface {
	ListBudgets(ctx context.Context) ([]core.Budget, error)
	UpsertBudget(ctx context.Context, category string, monthlyLimit, spent, priorBalance float64) (core.Budget, error)
	ImportBudgets(ctx context.Context, filename string, data []byte) (core.ImportResult, error)
	ImportBudgetsFromSheet(ctx context.Context) (core.ImportResult, error)
}

// Options tunes the server. Zero values pick defaults.
type Options struct {
	MaxUploadBytes    int64
	RequestsPerMinute int
	Logger            *applog.Logger
	// Ready reports whether backing stores are reachable; nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	receipts       ReceiptService
	budgets        BudgetService
	ready          func(ctx context.Context) error
	logger         *applog.Logger
	events         *applog.StructuredLogger
	rateLimiter    *rateLimiter
	metrics        *securityMetrics
	maxUploadBytes int64
	shutdownOnce   sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, receipts ReceiptService, budgets BudgetService, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = 60
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	logger := opts.Logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		receipts:       receipts,
		budgets:        budgets,
		ready:          opts.Ready,
		logger:         logger,
		events:         applog.NewStructuredLogger(opts.Logger),
		rateLimiter:    newRateLimiter(opts.RequestsPerMinute, time.Minute),
		metrics:        &securityMetrics{},
		maxUploadBytes: opts.MaxUploadBytes,
	}

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /receipts", s.handleCreateReceipt)
	mux.HandleFunc("GET /receipts", s.handleListReceipts)
	mux.HandleFunc("GET /receipts/{id}", s.handleGetReceipt)
	mux.HandleFunc("GET /export", s.handleExport)

	mux.HandleFunc("GET /budgets", s.handleListBudgets)
	mux.HandleFunc("POST /budgets", s.handleUpsertBudget)
	mux.HandleFunc("POST /budgets/import", s.handleImportBudgets)
	mux.HandleFunc("POST /budgets/import/sheet", s.handleImportBudgetSheet)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.withSecurity(applog.Middleware(opts.Logger, requestID)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		// OCR runs inside the request, so writes get a generous budget.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}
	return s
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		s.logger.InfoContext(ctx, "Security counters at shutdown", s.metrics.snapshot()...)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func requestID(r *http.Request) string {
	return r.Header.Get(requestIDHeader)
}

// withSecurity assigns a request id, rate limits POSTs, sets security
// headers and logs request completion.
func (s *Server) withSecurity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)

		if detectSuspiciousRequest(r, s.metrics) {
			s.logger.WarnContext(r.Context(), "Suspicious request",
				applog.FieldRequestID, id,
				applog.FieldClientIP, clientIP,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path)
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP, s.metrics) {
			w.Header().Set("Retry-After", "60")
			writeDetail(rw, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
		} else {
			next.ServeHTTP(rw, r)
		}

		s.events.LogHTTPEnd(r.Context(), r, rw.statusCode, time.Since(start).Milliseconds(), clientIP)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			writeDetail(w, http.StatusServiceUnavailable, "Not ready")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(appweb.StaticFS, "static/index.html")
	if err != nil {
		slog.ErrorContext(r.Context(), "Static UI missing", applog.FieldError, err)
		writeDetail(w, http.StatusInternalServerError, "Static UI not found")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
