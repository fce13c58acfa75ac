package server

import (
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teranos/mechrelay/logger"
)

// routes registers every endpoint and wraps the mux in the shared middleware
func (s *RelayServer) routes() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "GET /get-prompt", "/get-prompt", s.HandleGetPrompt)
	s.handle(mux, "GET /health", "/health", s.HandleHealth)
	s.handle(mux, "GET /api/interactions", "/api/interactions", s.HandleInteractions)
	s.handle(mux, "GET /api/interactions/stats", "/api/interactions/stats", s.HandleInteractionStats)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.handler())
	}

	return s.corsMiddleware(s.requestIDMiddleware(mux))
}

// handle registers h under pattern, instrumented and logged under route
func (s *RelayServer) handle(mux *http.ServeMux, pattern, route string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(route, h))
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records access logs and HTTP metrics for one route
func (s *RelayServer) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		elapsed := time.Since(start)
		s.metrics.observeRequest(route, r.Method, rec.status, elapsed)
		logger.FromContext(r.Context(), s.logger).Debugw("HTTP request",
			logger.FieldMethod, r.Method,
			logger.FieldPath, route,
			logger.FieldStatus, rec.status,
			logger.FieldRemoteAddr, r.RemoteAddr,
			logger.FieldDurationMS, elapsed.Milliseconds())
	})
}

const maxRequestIDLen = 64

// requestIDMiddleware propagates or assigns X-Request-ID and puts it on the context
func (s *RelayServer) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" || len(id) > maxRequestIDLen || strings.ContainsAny(id, "\r\n") {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}

// corsMiddleware sets CORS headers and answers preflight requests
func (s *RelayServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		origins := *s.origins.Load()

		switch {
		case allowsAnyOrigin(origins):
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
				w.Header().Set("Access-Control-Allow-Headers", requested)
			} else {
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
			}
			w.Header().Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func allowsAnyOrigin(origins []string) bool {
	return len(origins) == 0 || slices.Contains(origins, "*")
}

// clientKey identifies a caller for rate limiting
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
