package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mcass/internal/types"
)

// defaultRequestTimeout is the soft per-request deadline used when the
// config does not provide one. Slightly under the 30-second cutoff common
// to upstream proxies so our timeout fires first.
const defaultRequestTimeout = 29 * time.Second

// defaultRedactedHeaders are masked in request logs so credentials and
// session cookies never reach log storage.
var defaultRedactedHeaders = []string{
	"Authorization",
	"Cookie",
}

// MountRoutes assembles the routing tree: global middleware, the versioned
// JSON API under /v1, the health endpoint, and whatever root-level pages
// the entry point registered (dashboard HTML, metrics).
func (s *Server) MountRoutes() {
	s.registerGlobalMiddleware()

	s.router.Route("/v1", s.mountV1)

	s.router.Get("/health", s.HandleHealth)
	for _, registrar := range s.RootRouteRegistrars {
		registrar(s.router)
	}
}

// registerGlobalMiddleware wires the chain in its required order: Recoverer
// first so panics anywhere below are contained, the request deadline and
// correlation ID before anything that logs, security headers before a
// handler can write, then logging, CORS, and metrics.
func (s *Server) registerGlobalMiddleware() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(s.requestTimeout()))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(s.SecurityHeadersMiddleware)
	s.router.Use(RequestLogger(s.Logger, s.redactedHeaders()))
	s.router.Use(NewCORSMiddleware(s.corsAllowedOrigins()))
	s.router.Use(s.MetricsMiddleware)
}

// mountV1 hands the /v1 group to the handler registrars collected by the
// entry point. The indirection keeps this package free of handler imports.
func (s *Server) mountV1(r chi.Router) {
	for _, registrar := range s.V1RouteRegistrars {
		registrar(r)
	}
}

func (s *Server) requestTimeout() time.Duration {
	if s.Config != nil && s.Config.Server.RequestTimeout > 0 {
		return s.Config.Server.RequestTimeout
	}
	return defaultRequestTimeout
}

func (s *Server) redactedHeaders() []string {
	return defaultRedactedHeaders
}

func (s *Server) corsAllowedOrigins() []string {
	if s.Config != nil && len(s.Config.Security.CorsAllowedOrigins) > 0 {
		return s.Config.Security.CorsAllowedOrigins
	}
	return []string{"*"}
}

// ContextTimeoutMiddleware derives each request context with a deadline.
// Enforcement is left to handlers observing the cancelled context.
func ContextTimeoutMiddleware(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware attaches a correlation ID to the request. An inbound
// X-Request-Id header is reused so IDs survive proxy hops; otherwise a
// fresh one is generated. The ID rides in the context and is echoed back
// in the response header.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = generateRequestID()
		}

		ctx := types.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-Id", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// generateRequestID returns 16 random bytes rendered as 32 hex characters.
func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the system is in bad shape; fall back
		// to a time-derived ID so correlation still works.
		return "clk-" + hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(b)
}
