package server

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"resuin/internal/errors"
)

// limiterIdleTimeout is how long an unused bucket is kept.
const limiterIdleTimeout = 10 * time.Minute

// bucket is one client's token bucket.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client key ("ip:<addr>" or
// "api_key:<key>") and evicts buckets left idle.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	logger  *errors.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewRateLimiter allows requestsPerMin sustained requests per key with
// bursts of up to burstCapacity.
func NewRateLimiter(requestsPerMin int, burstCapacity int, logger *errors.Logger) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(float64(requestsPerMin) / 60.0),
		burst:   burstCapacity,
		logger:  logger,
		done:    make(chan struct{}),
	}
	go rl.evictLoop(limiterIdleTimeout)
	return rl
}

// Allow takes a token from key's bucket without blocking.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = time.Now()
	rl.mu.Unlock()

	return b.limiter.Allow()
}

// GetStats reports the limiter settings and the number of live buckets.
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]any{
		"active_limiters": len(rl.buckets),
		"rate_per_second": float64(rl.rate),
		"rate_per_minute": float64(rl.rate) * 60.0,
		"burst_capacity":  rl.burst,
	}
}

// Close stops background eviction. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) evictLoop(idle time.Duration) {
	ticker := time.NewTicker(idle)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(idle)
		case <-rl.done:
			return
		}
	}
}

// evictIdle drops buckets unused for longer than idle.
func (rl *RateLimiter) evictIdle(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-idle)
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
	if rl.logger != nil {
		rl.logger.Debug("Rate limiter eviction completed", "remaining_limiters", len(rl.buckets))
	}
}

// rateLimitMiddleware rejects requests over the per-key rate with 429 and
// counts each rejection on the rate limit metric.
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled || s.RateLimiter == nil {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key == "" || s.RateLimiter.Allow(key) {
				next(w, r)
				return
			}

			limitType, _, _ := strings.Cut(key, ":")
			s.Observability.RecordRateLimitHit(r.Context(), limitType)
			s.Logger.Info("Rate limit exceeded",
				"key_type", limitType,
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"request_id", requestIDFrom(r.Context()))
			writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
		}
	}
}

// getRateLimitKey returns "api_key:<key>" or "ip:<addr>", or "" when
// neither applies.
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		if apiKey := apiKeyFrom(r); apiKey != "" {
			return "api_key:" + apiKey
		}
	}
	if byIP {
		return "ip:" + getClientIP(r)
	}
	return ""
}

// getClientIP prefers the first valid X-Forwarded-For address, then
// X-Real-IP, then the connection's remote address.
func getClientIP(r *http.Request) string {
	if ip := parseFirstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
		return ip
	}
	if ip := parseFirstIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// parseFirstIP returns the first valid address of a comma-separated list.
func parseFirstIP(ips string) string {
	for candidate := range strings.SplitSeq(ips, ",") {
		candidate = strings.TrimSpace(candidate)
		if _, err := netip.ParseAddr(candidate); err == nil {
			return candidate
		}
	}
	return ""
}
