// Package http exposes the household finance API: auth, expense and
// contribution records, market duty, and the dashboard.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"messbook/internal/auth"
	"messbook/internal/core"
	"messbook/internal/service"
)

type Server struct {
	http.Server

	sessions  *service.SessionService
	records   *service.RecordService
	duty      *service.DutyService
	dashboard *service.DashboardService
	tokens    *auth.JWTManager

	rateLimiter *rateLimiter

	// today is injectable so handler tests can pin the clock.
	today func() core.Date

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, sessions *service.SessionService, records *service.RecordService, duty *service.DutyService, dashboard *service.DashboardService, tokens *auth.JWTManager) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		sessions:    sessions,
		records:     records,
		duty:        duty,
		dashboard:   dashboard,
		tokens:      tokens,
		rateLimiter: newRateLimiter(),
		today:       func() core.Date { return core.DateOf(time.Now()) },
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("POST /api/auth/signup", s.withSecurityHeaders(s.handleSignUp))
	mux.HandleFunc("POST /api/auth/signin", s.withSecurityHeaders(s.handleSignIn))
	mux.HandleFunc("POST /api/auth/google", s.withSecurityHeaders(s.handleGoogleSignIn))
	mux.HandleFunc("POST /api/auth/signout", s.withSecurityHeaders(s.withAuth(s.handleSignOut)))

	mux.HandleFunc("GET /api/expenses", s.withSecurityHeaders(s.withAuth(s.handleListExpenses)))
	mux.HandleFunc("POST /api/expenses", s.withSecurityHeaders(s.withAuth(s.handleCreateExpense)))
	mux.HandleFunc("GET /api/contributions", s.withSecurityHeaders(s.withAuth(s.handleListContributions)))
	mux.HandleFunc("POST /api/contributions", s.withSecurityHeaders(s.withAuth(s.handleCreateContribution)))

	mux.HandleFunc("GET /api/duty", s.withSecurityHeaders(s.withAuth(s.handleGetDuty)))
	mux.HandleFunc("PUT /api/duty/days", s.withSecurityHeaders(s.withAuth(s.handleReplaceDutyDays)))
	mux.HandleFunc("POST /api/duty/toggle", s.withSecurityHeaders(s.withAuth(s.handleToggleDutyDay)))
	mux.HandleFunc("GET /api/duty/next", s.withSecurityHeaders(s.withAuth(s.handleNextDuty)))

	mux.HandleFunc("GET /api/dashboard", s.withSecurityHeaders(s.withAuth(s.handleDashboard)))

	return s
}

// Shutdown stops the server and the rate limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting on writes, and
// request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type contextKey string

const requestIDKey contextKey = "request_id"

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
