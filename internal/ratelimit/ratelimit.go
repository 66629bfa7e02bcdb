// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds failure limiting configuration
type Config struct {
	MaxFailures   int           // Failures tolerated before a ban
	WindowSize    time.Duration // Time to earn back the full failure budget
	BanDuration   time.Duration // How long to ban after exceeding the budget
	CleanupPeriod time.Duration // How often to clean up old entries

	// Only behind a reverse proxy that overwrites X-Forwarded-For/X-Real-IP.
	TrustProxyHeaders bool
}

// DefaultAuthConfig returns sensible defaults for the API key guard
func DefaultAuthConfig() *Config {
	return &Config{
		MaxFailures:   5,
		WindowSize:    15 * time.Minute,
		BanDuration:   30 * time.Minute,
		CleanupPeriod: 30 * time.Minute,
	}
}

// failureRecord tracks failed attempts for an IP/identifier
type failureRecord struct {
	limiter     *rate.Limiter
	lastSeen    time.Time
	bannedUntil time.Time
}

// MemoryRateLimiter bans identifiers that fail authentication too often.
// Each identifier gets a token bucket of MaxFailures tokens refilled over
// WindowSize; a failure that finds the bucket empty starts a ban.
type MemoryRateLimiter struct {
	config    *Config
	records   map[string]*failureRecord
	mu        sync.Mutex
	stopCh    chan struct{}
	closeOnce sync.Once
	now       func() time.Time
}

// NewMemoryRateLimiter creates a new in-memory limiter and starts its cleanup loop
func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	limiter := &MemoryRateLimiter{
		config:  config,
		records: make(map[string]*failureRecord),
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	go limiter.cleanupLoop()

	return limiter
}

// RateLimitInfo contains information about rate limit status
type RateLimitInfo struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Check reports whether the identifier is currently allowed to try.
func (rl *MemoryRateLimiter) Check(identifier string) *RateLimitInfo {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	record, exists := rl.records[identifier]
	if !exists || !now.Before(record.bannedUntil) {
		return &RateLimitInfo{Allowed: true}
	}
	return &RateLimitInfo{Allowed: false, RetryAfter: record.bannedUntil.Sub(now)}
}

// RecordFailure spends one failure token, banning the identifier when none is left.
func (rl *MemoryRateLimiter) RecordFailure(identifier string) *RateLimitInfo {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	record, exists := rl.records[identifier]
	if !exists {
		every := rl.config.WindowSize / time.Duration(rl.config.MaxFailures)
		record = &failureRecord{limiter: rate.NewLimiter(rate.Every(every), rl.config.MaxFailures)}
		rl.records[identifier] = record
	}
	record.lastSeen = now

	if record.limiter.AllowN(now, 1) {
		return &RateLimitInfo{Allowed: true}
	}

	record.bannedUntil = now.Add(rl.config.BanDuration)
	return &RateLimitInfo{Allowed: false, RetryAfter: rl.config.BanDuration}
}

// RecordSuccess forgets earlier failures of an identifier that is not banned.
func (rl *MemoryRateLimiter) RecordSuccess(identifier string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if record, exists := rl.records[identifier]; exists && !rl.now().Before(record.bannedUntil) {
		delete(rl.records, identifier)
	}
}

// cleanupLoop periodically removes old records
func (rl *MemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup removes records whose window and ban have both expired
func (rl *MemoryRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for identifier, record := range rl.records {
		idle := now.Sub(record.lastSeen) > rl.config.WindowSize
		if idle && !now.Before(record.bannedUntil) {
			delete(rl.records, identifier)
		}
	}
}

// Close stops the cleanup goroutine
func (rl *MemoryRateLimiter) Close() {
	rl.closeOnce.Do(func() { close(rl.stopCh) })
}

// Identify returns the identifier failures are counted under for r.
func (rl *MemoryRateLimiter) Identify(r *http.Request) string {
	return GetClientIP(r, rl.config.TrustProxyHeaders)
}

// GetClientIP extracts the client IP from request. Forwarding headers are
// client supplied and only honoured when trustProxy is set.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := parseFirstIP(r.Header.Get("X-Forwarded-For")); ip != "" {
			return ip
		}
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
			return realIP
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// parseFirstIP extracts the first IP from a comma-separated list
func parseFirstIP(forwarded string) string {
	first, _, _ := strings.Cut(forwarded, ",")
	return strings.TrimSpace(first)
}
