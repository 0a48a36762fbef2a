package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"kharcha/internal/core"
	applog "kharcha/internal/log"
	"kharcha/internal/middleware/ratelimit"
	"kharcha/internal/middleware/security"
	"kharcha/internal/middleware/trace"
	"kharcha/internal/ports"
	appweb "kharcha/web"
)

// Options tune the server's middleware.
type Options struct {
	RateLimitRPM int
	Logger       *applog.Logger
	// TrustedProxies are CIDRs, beyond loopback and private ranges, whose
	// X-Forwarded-For header names the client.
	TrustedProxies []string
}

type Server struct {
	http.Server
	templates *template.Template
	store     ports.ExpenseStore
	clock     core.Clock
	limiter   *ratelimit.Limiter

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, store ports.ExpenseStore, clock core.Clock, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	mux := http.NewServeMux()
	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", "cidr", cidr, "error", err)
		}
	}
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM})

	s := &Server{
		store:   store,
		clock:   clock,
		limiter: limiter,
	}

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)

	// Log Expense
	mux.HandleFunc("/expenses", s.handleCreateExpense)
	// View / Export
	mux.HandleFunc("/ui/records", s.handleRecords)
	mux.Handle("/export.csv", security.NoStore(http.HandlerFunc(s.handleExport)))
	// Visualize
	mux.HandleFunc("/ui/charts", s.handleCharts)
	// Update
	mux.HandleFunc("/ui/record", s.handleRecord)
	mux.HandleFunc("/expenses/update", s.handleUpdate)
	// Delete
	mux.HandleFunc("/expenses/delete", s.handleDelete)
	mux.HandleFunc("/expenses/delete-range", s.handleDeleteRange)
	mux.HandleFunc("/expenses/delete-all", s.handleDeleteAll)

	var handler http.Handler = mux
	handler = limiter.Middleware(detector.ExtractClientIP, http.MethodPost, http.MethodDelete)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = detector.Middleware(handler)
	handler = trace.NewMiddleware(logger, detector.ExtractClientIP).Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady pings the store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "Readiness check failed", "error", err)
		ServiceUnavailableError("storage unavailable").Write(w)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// view executes a template into a buffer so a failing template never
// leaves a half-written response. Callers may add triggers before Write.
func (s *Server) view(r *http.Request, name string, data any) *HTMXResponseBuilder {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		return InternalServerError("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		return InternalServerError(genericFailure)
	}
	return NewHTMXResponse().BodyHTML(buf.String())
}
