// File: internal/services/bridge/config.go
package bridge

import (
	"fmt"
	"time"
)

type Config struct {
	// Chat directory
	ChatPageSize int // Number of chats enumerated at bootstrap

	// Read path
	DefaultReadLimit int
	MaxReadLimit     int

	// Write path
	MaxTextLength int // In characters, not bytes

	// Identity fetch at bootstrap
	IdentityRetry *RetryConfig
}

func DefaultConfig() *Config {
	return &Config{
		ChatPageSize:     200,
		DefaultReadLimit: 50,
		MaxReadLimit:     100,
		MaxTextLength:    1500,
		IdentityRetry: &RetryConfig{
			MaxAttempts: 10,
			Delay:       time.Second,
		},
	}
}

func (c *Config) Validate() error {
	if c.ChatPageSize <= 0 {
		return fmt.Errorf("chat_page_size must be positive")
	}
	if c.MaxReadLimit <= 0 {
		return fmt.Errorf("max_read_limit must be positive")
	}
	if c.DefaultReadLimit <= 0 || c.DefaultReadLimit > c.MaxReadLimit {
		return fmt.Errorf("default_read_limit must be between 1 and max_read_limit")
	}
	if c.MaxTextLength <= 0 {
		return fmt.Errorf("max_text_length must be positive")
	}
	if c.IdentityRetry == nil || c.IdentityRetry.MaxAttempts < 1 {
		return fmt.Errorf("identity retry needs at least 1 attempt")
	}
	return nil
}
