// File: cmd/server/providers.go
package main

import (
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iyunix/go-study-bridge/internal/config"
	"github.com/iyunix/go-study-bridge/internal/handlers"
	"github.com/iyunix/go-study-bridge/internal/middleware"
	"github.com/iyunix/go-study-bridge/internal/ratelimit"
	"github.com/iyunix/go-study-bridge/internal/repository/session"
	"github.com/iyunix/go-study-bridge/internal/services"
	"github.com/iyunix/go-study-bridge/internal/services/botrelay"
	"github.com/iyunix/go-study-bridge/internal/services/bridge"
	"github.com/iyunix/go-study-bridge/internal/services/mtproto"
)

// Application aggregates everything main needs to run and stop the bridge
type Application struct {
	Config       *config.Config
	Logger       services.Logger
	Router       http.Handler
	Bootstrapper *bridge.Bootstrapper
	Limiter      *ratelimit.MemoryRateLimiter
}

func ProvideSessionStorage(cfg *config.Config, db *gorm.DB) *session.Storage {
	return session.NewStorage(session.NewGormSessionRepository(db), cfg.TelegramSessionName)
}

func ProvideMTProtoConfig(cfg *config.Config) *mtproto.Config {
	return &mtproto.Config{
		AppID:    cfg.TelegramAPIID,
		AppHash:  cfg.TelegramAPIHash,
		Phone:    cfg.TelegramPhoneNumber,
		Password: cfg.TelegramPassword,
	}
}

func ProvideMTProtoClient(mtCfg *mtproto.Config, storage *session.Storage, zapLogger *zap.Logger) (*mtproto.Client, error) {
	return mtproto.NewClient(mtCfg, storage, zapLogger.Named("mtproto"))
}

func ProvideBridgeClient(client *mtproto.Client) bridge.Client {
	return client
}

func ProvideBridgeConfig() *bridge.Config {
	return bridge.DefaultConfig()
}

func ProvideBridgeLogger(logger services.Logger) bridge.Logger {
	return logger
}

// ProvideDeliverer picks the send strategy once: the bot relay when it is
// fully configured, the account's own private chat otherwise.
func ProvideDeliverer(cfg *config.Config, client bridge.Client, state *bridge.State, logger bridge.Logger) (bridge.Deliverer, error) {
	if !cfg.BotRelayEnabled() {
		delivery, err := bridge.NewSelfChatDelivery(client, state, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("send strategy selected", "via", bridge.ViaTDLib)
		return delivery, nil
	}
	targetChatID, err := cfg.TargetChatID()
	if err != nil {
		return nil, err
	}
	relay, err := botrelay.NewProvider(&botrelay.Config{Token: cfg.TelegramBotToken, TargetChatID: targetChatID}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("send strategy selected", "via", bridge.ViaBot, "target_chat_id", targetChatID)
	return relay, nil
}

func ProvideGateway(gateway *bridge.Gateway) handlers.Gateway {
	return gateway
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.MemoryRateLimiter {
	limiterCfg := ratelimit.DefaultAuthConfig()
	if cfg.AuthMaxFailures > 0 {
		limiterCfg.MaxFailures = cfg.AuthMaxFailures
	}
	if cfg.AuthBanDuration > 0 {
		limiterCfg.BanDuration = cfg.AuthBanDuration
	}
	limiterCfg.TrustProxyHeaders = cfg.TrustProxyHeaders
	return ratelimit.NewMemoryRateLimiter(limiterCfg)
}

func ProvideRouter(cfg *config.Config, h *handlers.TelegramHandler, limiter *ratelimit.MemoryRateLimiter, logger services.Logger) http.Handler {
	r := handlers.NewRouter(h, middleware.NewAPIKeyMiddleware(cfg.AgentAPIKey, limiter, logger))
	// Wrapped outside mux so unmatched routes are logged and recovered too.
	return middleware.RecoverPanic(logger)(middleware.LoggingMiddleware(logger)(r))
}
