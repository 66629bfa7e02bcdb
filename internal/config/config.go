// File: internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerHost  string
	ServerPort  string
	Environment string
	LogLevel    string

	// Shared secret the agent presents in X-API-Key
	AgentAPIKey string

	// MTProto account
	TelegramAPIID       int
	TelegramAPIHash     string
	TelegramPhoneNumber string
	TelegramPassword    string // 2FA password, optional
	TelegramSessionName string
	SessionDBPath       string

	// Optional bot relay; used for sending only when both are set
	TelegramBotToken     string
	TelegramTargetChatID string

	// Credential brute-force protection
	AuthMaxFailures int
	AuthBanDuration time.Duration

	// Count failures per X-Forwarded-For client; only behind a proxy that sets it
	TrustProxyHeaders bool
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerHost:           getEnv("SERVER_HOST", "127.0.0.1"),
		ServerPort:           getEnv("SERVER_PORT", "8000"),
		Environment:          env,
		LogLevel:             getEnv("LOG_LEVEL", "INFO"),
		AgentAPIKey:          getEnv("AGENT_API_KEY", ""),
		TelegramAPIID:        getEnvAsInt("TELEGRAM_API_ID", 0),
		TelegramAPIHash:      getEnv("TELEGRAM_API_HASH", ""),
		TelegramPhoneNumber:  getEnv("TELEGRAM_PHONE_NUMBER", ""),
		TelegramPassword:     getEnv("TELEGRAM_PASSWORD", ""),
		TelegramSessionName:  getEnv("TELEGRAM_SESSION_NAME", "study_bridge_session"),
		SessionDBPath:        getEnv("SESSION_DB_PATH", "telegram_session.db"),
		TelegramBotToken:     getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramTargetChatID: getEnv("TELEGRAM_TARGET_CHAT_ID", ""),
		AuthMaxFailures:      getEnvAsInt("AUTH_MAX_FAILURES", 5),
		AuthBanDuration:      time.Duration(getEnvAsInt("AUTH_BAN_MINUTES", 30)) * time.Minute,
		TrustProxyHeaders:    getEnvAsBool("TRUST_PROXY_HEADERS", false),
	}

	if cfg.AgentAPIKey == "" {
		log.Println("Warning: AGENT_API_KEY is empty; every request will be rejected")
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		if missing := cfg.MissingRequired(); len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// MissingRequired lists the required variables that are not set.
func (c *Config) MissingRequired() []string {
	missing := []string{}
	if c.AgentAPIKey == "" {
		missing = append(missing, "AGENT_API_KEY")
	}
	if c.TelegramAPIID == 0 {
		missing = append(missing, "TELEGRAM_API_ID")
	}
	if c.TelegramAPIHash == "" {
		missing = append(missing, "TELEGRAM_API_HASH")
	}
	if c.TelegramPhoneNumber == "" {
		missing = append(missing, "TELEGRAM_PHONE_NUMBER")
	}
	return missing
}

// BotRelayEnabled reports whether sends go through the Bot API instead of the account.
func (c *Config) BotRelayEnabled() bool {
	if c.TelegramBotToken == "" || c.TelegramTargetChatID == "" {
		return false
	}
	_, err := c.TargetChatID()
	return err == nil
}

// TargetChatID parses TELEGRAM_TARGET_CHAT_ID.
func (c *Config) TargetChatID() (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.TelegramTargetChatID), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid TELEGRAM_TARGET_CHAT_ID %q: %w", c.TelegramTargetChatID, err)
	}
	return id, nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

// getEnvAsBool gets an env var as a boolean, with a fallback.
func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as boolean. Using default value.", key)
		return defaultValue
	}
	return boolValue
}
