package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// Handler returns the fully wrapped HTTP handler: routes, OpenTelemetry
// instrumentation and request ids.
func (s *Server) Handler() http.Handler {
	mux := s.setupRoutes()
	return s.requestIDMiddleware(s.Observability.HTTPMiddleware()(mux))
}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	rateLimitHandler := s.rateLimitMiddleware()
	requestLimitHandler := s.requestSizeLimitMiddleware()
	protect := func(h http.HandlerFunc) http.HandlerFunc {
		return rateLimitHandler(s.authMiddleware(requestLimitHandler(h)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)
	mux.HandleFunc("GET /companies", protect(s.companiesHandler))
	mux.HandleFunc("POST /analyze", protect(s.analyzeHandler))
	mux.HandleFunc("POST /analyze/upload", protect(s.uploadHandler))
	mux.HandleFunc("POST /compare", protect(s.compareHandler))

	if h := s.Observability.MetricsHandler(); h != nil {
		mux.Handle("GET "+s.Observability.MetricsEndpoint(), h)
	}

	return mux
}

// requestIDMiddleware propagates an incoming X-Request-ID or assigns a new
// one, echoes it on the response and logs the completed request.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))

		s.Logger.Debug("HTTP request completed",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapper.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

// requestIDFrom returns the request id stored by requestIDMiddleware.
func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication if no API keys are configured
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := apiKeyFrom(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"request_id", requestIDFrom(r.Context()))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.APIKeys[apiKey] {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", maskAPIKey(apiKey),
				"request_id", requestIDFrom(r.Context()))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// apiKeyFrom reads the X-API-Key header, falling back to a Bearer token.
func apiKeyFrom(r *http.Request) string {
	if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
		return apiKey
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	return ""
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}

			next(w, r)
		}
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
