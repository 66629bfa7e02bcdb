// File: internal/middleware/ratelimit.go
package middleware

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"github.com/iyunix/go-study-bridge/internal/ratelimit"
)

// rejectRateLimited answers 429 with a Retry-After in whole seconds.
func rejectRateLimited(w http.ResponseWriter, info *ratelimit.RateLimitInfo) {
	seconds := int(math.Ceil(info.RetryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set(RetryAfterHeader, fmt.Sprintf("%d", seconds))
	writeJSONError(w, http.StatusTooManyRequests,
		fmt.Sprintf("Too many failed attempts. Try again in %d seconds.", seconds))
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set(ContentType, JSONContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
