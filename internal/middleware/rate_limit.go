package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimitConfig holds transport-level rate limiting configuration.
// This is a coarse per-IP request cap in front of the login endpoint;
// the credential lockout logic lives in internal/ratelimit.
type RateLimitConfig struct {
	RequestsPerMinute int
}

// DefaultLoginRateLimit caps raw request volume on /login (the lockout
// threshold below it is per failed attempt, not per request)
func DefaultLoginRateLimit() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
	}
}

// RateLimitByIP creates a middleware that rate limits requests keyed by
// clientIP. The key function must come from the trusted-proxy-aware
// extractor; keying on raw forwarded headers would let a caller reset
// the counter per request.
func RateLimitByIP(config RateLimitConfig, clientIP func(*http.Request) string) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return clientIP(r), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate_limit_exceeded","message":"too many requests"}`))
		}),
	)
}
