// File: internal/middleware/constants.go
package middleware

// Header names the bridge reads or writes
const (
	APIKeyHeader     = "X-API-Key"
	RetryAfterHeader = "Retry-After"
	ContentType      = "Content-Type"
	JSONContentType  = "application/json"
)
