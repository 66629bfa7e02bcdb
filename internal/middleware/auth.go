// File: internal/middleware/auth.go
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/iyunix/go-study-bridge/internal/ratelimit"
	"github.com/iyunix/go-study-bridge/internal/services"
)

// NewAPIKeyMiddleware rejects requests whose X-API-Key does not exactly match
// the configured key. A correct key always passes. Failed attempts are counted
// per client when a limiter is given, and a banned client's failures get 429.
func NewAPIKeyMiddleware(apiKey string, limiter *ratelimit.MemoryRateLimiter, logger services.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := ratelimit.GetClientIP(r, false)
			if limiter != nil {
				clientIP = limiter.Identify(r)
			}

			presented := r.Header.Get(APIKeyHeader)
			if validAPIKey(presented, apiKey) {
				if limiter != nil {
					limiter.RecordSuccess(clientIP)
				}
				next.ServeHTTP(w, r)
				return
			}

			if limiter != nil {
				if info := limiter.Check(clientIP); !info.Allowed {
					logger.Warn("[AuthMiddleware] blocked banned client", "client_ip", clientIP, "path", r.URL.Path)
					rejectRateLimited(w, info)
					return
				}
			}

			// Never log the presented value.
			logger.Warn("[AuthMiddleware] rejected invalid API key",
				"client_ip", clientIP, "path", r.URL.Path, "key_present", presented != "")
			if limiter != nil {
				if info := limiter.RecordFailure(clientIP); !info.Allowed {
					logger.Warn("[AuthMiddleware] client banned after repeated failures",
						"client_ip", clientIP, "retry_after", info.RetryAfter.String())
				}
			}
			writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		})
	}
}

// validAPIKey fails closed when no key is configured.
func validAPIKey(presented, expected string) bool {
	if expected == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}
