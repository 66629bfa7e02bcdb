package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/iyunix/go-study-bridge/internal/config"
	"github.com/iyunix/go-study-bridge/internal/domain"
	"github.com/iyunix/go-study-bridge/internal/services"
	"github.com/iyunix/go-study-bridge/internal/services/botrelay"
	"github.com/iyunix/go-study-bridge/internal/services/bridge"
)

func testConfig() *config.Config {
	return &config.Config{
		AgentAPIKey:         "agent-secret",
		TelegramAPIID:       1,
		TelegramAPIHash:     "hash",
		TelegramPhoneNumber: "+34600123456",
		TelegramSessionName: "test_session",
		AuthMaxFailures:     3,
		AuthBanDuration:     time.Minute,
	}
}

func TestInitializeApplication(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.TelegramSession{}))

	app, err := InitializeApplication(testConfig(), &services.NoOpLogger{}, zap.NewNop(), db)
	require.NoError(t, err)
	defer app.Limiter.Close()

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/telegram/chats", nil)
	req.Header.Set("X-API-Key", "agent-secret")
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "not ready before bootstrap")
}

func TestProvideDeliverer_SelfChatNeedsClient(t *testing.T) {
	deliverer, err := ProvideDeliverer(testConfig(), nil, bridge.NewState(), &services.NoOpLogger{})

	assert.Error(t, err)
	assert.Nil(t, deliverer)
}

func TestProvideDeliverer_BotRelay(t *testing.T) {
	cfg := testConfig()
	cfg.TelegramBotToken = "123:abc"
	cfg.TelegramTargetChatID = "-100123"

	// No client and no network: the relay is built without calling Telegram.
	deliverer, err := ProvideDeliverer(cfg, nil, bridge.NewState(), &services.NoOpLogger{})

	require.NoError(t, err)
	assert.IsType(t, &botrelay.Provider{}, deliverer)
}

func TestProvideRouter_LogsUnmatchedRoutes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := services.NewProductionLogger(zap.New(core))
	limiter := ProvideRateLimiter(testConfig())
	defer limiter.Close()
	router := ProvideRouter(testConfig(), nil, limiter, logger)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/nope", entries[0].ContextMap()["path"])
	assert.Equal(t, int64(http.StatusNotFound), entries[0].ContextMap()["status"])
}

func TestProvideRateLimiter(t *testing.T) {
	limiter := ProvideRateLimiter(testConfig())
	defer limiter.Close()

	for i := 0; i < 3; i++ {
		require.True(t, limiter.RecordFailure("ip").Allowed)
	}
	info := limiter.RecordFailure("ip")
	assert.False(t, info.Allowed)
	assert.Equal(t, time.Minute, info.RetryAfter)
	assert.Equal(t, "192.0.2.1", limiter.Identify(forwardedRequest()), "proxy headers untrusted by default")

	cfg := testConfig()
	cfg.TrustProxyHeaders = true
	trusting := ProvideRateLimiter(cfg)
	defer trusting.Close()
	assert.Equal(t, "203.0.113.7", trusting.Identify(forwardedRequest()))
}

func forwardedRequest() *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/telegram/me", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	return req
}
