// Package http provides the web server: server-rendered pages, HTMX
// partials and the ledger mutation endpoints.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finanzas/internal/auth"
	"finanzas/internal/cache"
	"finanzas/internal/charts"
	"finanzas/internal/ledger"
	"finanzas/internal/metrics"
	appweb "finanzas/web"
)

const (
	partialCacheSize = 500
	partialCacheTTL  = 2 * time.Minute
)

type Server struct {
	http.Server
	templates   *template.Template
	ledger      *ledger.Service
	identity    auth.Identity
	gate        *auth.SupabaseGate // nil in static mode
	charts      *charts.ChartGenerator
	rateLimiter *rateLimiter

	// Rendered partials keyed "<user>:<view>" so one user's mutation
	// never flushes anyone else's entries.
	partials *cache.LRUCache[string]
	caches   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run
// server. gate may be nil when identities come from a static gate.
func NewServer(addr string, svc *ledger.Service, identity auth.Identity, gate *auth.SupabaseGate) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:      svc,
		identity:    identity,
		gate:        gate,
		charts:      charts.NewChartGenerator(),
		rateLimiter: newRateLimiter(),
		partials:    cache.NewLRUCache[string](partialCacheSize, partialCacheTTL),
		caches:      cache.NewManager(),
	}

	s.caches.Register(s.partials)
	if gate != nil {
		s.caches.Register(gate.TokenCache())
	}
	s.caches.StartCleanup(10 * time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html", "templates/partials/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600, immutable")
			static.ServeHTTP(w, r)
		}))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /{$}", s.instrument("/", s.handleIndex))
	mux.HandleFunc("GET /login", s.instrument("/login", s.handleLoginPage))
	mux.HandleFunc("POST /login", s.instrument("/login", s.handleLogin))
	mux.HandleFunc("POST /logout", s.instrument("/logout", s.handleLogout))

	mux.HandleFunc("POST /accounts", s.instrument("/accounts", s.withUser(s.handleCreateAccount)))
	mux.HandleFunc("POST /accounts/{id}", s.instrument("/accounts/{id}", s.withUser(s.handleUpdateAccount)))
	mux.HandleFunc("DELETE /accounts/{id}", s.instrument("/accounts/{id}", s.withUser(s.handleDeleteAccount)))

	mux.HandleFunc("POST /categories", s.instrument("/categories", s.withUser(s.handleCreateCategory)))

	mux.HandleFunc("POST /transactions", s.instrument("/transactions", s.withUser(s.handleCreateTransaction)))
	mux.HandleFunc("POST /transactions/{id}", s.instrument("/transactions/{id}", s.withUser(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /transactions/{id}", s.instrument("/transactions/{id}", s.withUser(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /ui/balances", s.instrument("/ui/balances", s.withUser(s.handleBalancesPartial)))
	mux.HandleFunc("GET /ui/transactions", s.instrument("/ui/transactions", s.withUser(s.handleTransactionsPartial)))
	mux.HandleFunc("GET /ui/balances/chart.png", s.instrument("/ui/balances/chart.png", s.withUser(s.handleBalanceChart)))

	return s
}

// instrument adds request logging, rate limiting on mutations, security
// headers and metrics to a handler.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			metrics.ObserveRequest(route, http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' https://unpkg.com 'unsafe-eval'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		metrics.ObserveRequest(route, rw.statusCode)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// withUser resolves the caller's identity and refuses the request when
// there is none. Handlers behind it never see an empty user id.
func (s *Server) withUser(next func(w http.ResponseWriter, r *http.Request, userID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.identity.Resolve(r.Context(), r)
		if !ok {
			slog.WarnContext(r.Context(), "Unauthenticated request", "url", r.URL.Path)
			ErrorResponse(http.StatusUnauthorized, "Sign in to continue").
				Header("HX-Redirect", "/login").
				Write(w)
			return
		}
		next(w, r, userID)
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

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidatePartials drops every cached view of one user.
func (s *Server) invalidatePartials(userID string) {
	s.partials.DeletePrefix(userID + ":")
}

func (s *Server) partialKey(userID, view string) string {
	return userID + ":" + view
}

// Shutdown stops the HTTP server and the cache cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
