package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vntrieu/avalon-engine/internal/auth"
	"github.com/vntrieu/avalon-engine/internal/httpapi/handler"
	"github.com/vntrieu/avalon-engine/internal/ratelimit"
)

// RateLimitMiddleware returns a middleware that limits by key extracted from the request (e.g. IP).
// When over limit, responds with 429 and optional Retry-After header.
func RateLimitMiddleware(limiter ratelimit.Limiter, keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				key = "unknown"
			}
			allowed, retryAfter := limiter.Allow(key)
			if !allowed {
				if retryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				}
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitKeyByIP returns the client IP from the request (using X-Real-IP / X-Forwarded-For when set).
func RateLimitKeyByIP(r *http.Request) string {
	if x := r.Header.Get("X-Real-IP"); x != "" {
		return "ip:" + x
	}
	if x := r.Header.Get("X-Forwarded-For"); x != "" {
		return "ip:" + strings.TrimSpace(strings.Split(x, ",")[0])
	}
	return "ip:" + r.RemoteAddr
}

// RateLimitKeyByPlayer keys on the authenticated player. Use after RequirePlayer.
func RateLimitKeyByPlayer(r *http.Request) string {
	if p, ok := handler.PlayerFromRequest(r); ok {
		return "player:" + p.ID
	}
	return RateLimitKeyByIP(r)
}

// DefaultMaxBodyBytes caps JSON request bodies.
const DefaultMaxBodyBytes = 64 << 10 // 64KB

// LimitRequestBody returns middleware that limits request body size; over-size requests get 413.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePlayer returns middleware that requires a valid player session token.
// If absent or invalid, responds with 401 and does not call next.
func RequirePlayer(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const prefix = "Bearer "
			bearer := r.Header.Get("Authorization")
			if !strings.HasPrefix(bearer, prefix) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			token := strings.TrimSpace(bearer[len(prefix):])
			if token == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			claims, err := verifier.Verify(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(handler.WithPlayer(r.Context(), claims)))
		})
	}
}
