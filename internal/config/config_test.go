package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "test")
	// Empty integers fall back to their defaults.
	for _, key := range []string{
		"AGENT_API_KEY", "TELEGRAM_API_ID", "TELEGRAM_BOT_TOKEN", "TELEGRAM_TARGET_CHAT_ID",
		"AUTH_MAX_FAILURES", "AUTH_BAN_MINUTES", "TRUST_PROXY_HEADERS",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "8000")
	t.Setenv("TELEGRAM_SESSION_NAME", "study_bridge_session")

	cfg := Load()

	assert.Equal(t, "127.0.0.1:8000", cfg.Addr())
	assert.Equal(t, 0, cfg.TelegramAPIID)
	assert.Equal(t, "study_bridge_session", cfg.TelegramSessionName)
	assert.Equal(t, 5, cfg.AuthMaxFailures)
	assert.Equal(t, 30*time.Minute, cfg.AuthBanDuration)
	assert.False(t, cfg.BotRelayEnabled())
	assert.False(t, cfg.TrustProxyHeaders)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AGENT_API_KEY", "secret")
	t.Setenv("TELEGRAM_API_ID", "12345")
	t.Setenv("TELEGRAM_API_HASH", "hash")
	t.Setenv("TELEGRAM_PHONE_NUMBER", "+34600123456")
	t.Setenv("AUTH_MAX_FAILURES", "not-a-number")
	t.Setenv("AUTH_BAN_MINUTES", "5")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg := Load()

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "secret", cfg.AgentAPIKey)
	assert.Equal(t, 12345, cfg.TelegramAPIID)
	assert.Equal(t, 5, cfg.AuthMaxFailures, "unparsable integers fall back to the default")
	assert.Equal(t, 5*time.Minute, cfg.AuthBanDuration)
	assert.True(t, cfg.TrustProxyHeaders)
	assert.Empty(t, cfg.MissingRequired())
}

func TestConfig_MissingRequired(t *testing.T) {
	cfg := &Config{TelegramAPIHash: "hash"}

	assert.Equal(t, []string{"AGENT_API_KEY", "TELEGRAM_API_ID", "TELEGRAM_PHONE_NUMBER"}, cfg.MissingRequired())
}

func TestConfig_BotRelay(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		chatID  string
		enabled bool
	}{
		{"both set", "123:abc", "-1001234", true},
		{"no token", "", "-1001234", false},
		{"no chat", "123:abc", "", false},
		{"bad chat id", "123:abc", "@channel", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{TelegramBotToken: tt.token, TelegramTargetChatID: tt.chatID}
			assert.Equal(t, tt.enabled, cfg.BotRelayEnabled())
		})
	}

	cfg := &Config{TelegramTargetChatID: " -1001234 "}
	id, err := cfg.TargetChatID()
	require.NoError(t, err)
	assert.Equal(t, int64(-1001234), id)
}
