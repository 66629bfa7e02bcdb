//go:build wireinject
// +build wireinject

// File: cmd/server/wire.go
package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/iyunix/go-study-bridge/internal/config"
	"github.com/iyunix/go-study-bridge/internal/handlers"
	"github.com/iyunix/go-study-bridge/internal/services"
	"github.com/iyunix/go-study-bridge/internal/services/bridge"
)

func InitializeApplication(cfg *config.Config, logger services.Logger, zapLogger *zap.Logger, db *gorm.DB) (*Application, error) {
	wire.Build(
		// Session persistence and MTProto adapter
		ProvideSessionStorage,
		ProvideMTProtoConfig,
		ProvideMTProtoClient,
		ProvideBridgeClient,

		// Bridge core
		ProvideBridgeConfig,
		ProvideBridgeLogger,
		bridge.NewState,
		bridge.NewBootstrapper,
		ProvideDeliverer,
		bridge.NewGateway,

		// HTTP
		ProvideGateway,
		handlers.NewTelegramHandler,
		ProvideRateLimiter,
		ProvideRouter,

		wire.Struct(new(Application), "*"),
	)
	return &Application{}, nil
}
