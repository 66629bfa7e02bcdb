// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iyunix/go-study-bridge/internal/config"
	"github.com/iyunix/go-study-bridge/internal/domain"
	"github.com/iyunix/go-study-bridge/internal/services"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()

	zapLogger, err := services.NewZapLogger("study_bridge", cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Printf("Logger Error: %v", err)
		return 1
	}
	defer func() { _ = zapLogger.Sync() }()
	logger := services.NewProductionLogger(zapLogger)

	db, err := gorm.Open(sqlite.Open(cfg.SessionDBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Error("DB Error", "path", cfg.SessionDBPath, "error", err)
		return 1
	}
	if err := db.AutoMigrate(&domain.TelegramSession{}); err != nil {
		logger.Error("DB Migration Error", "error", err)
		return 1
	}

	app, err := InitializeApplication(cfg, logger, zapLogger, db)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		return 1
	}
	defer app.Limiter.Close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	logger.Info("server listening", "addr", cfg.Addr())

	// Gated routes answer 503 until bootstrap completes.
	bootCtx, cancelBoot := context.WithCancel(context.Background())
	defer cancelBoot()
	bootErr := make(chan error, 1)
	bootstrap := func() {
		go func() {
			if err := app.Bootstrapper.Run(bootCtx); err != nil {
				bootErr <- err
			}
		}()
	}
	bootstrap()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	running := true
	for running {
		select {
		case sig := <-stop:
			logger.Info("shutting down", "signal", sig.String())
			running = false
		case err := <-serverErr:
			logger.Error("server startup failed", "error", err)
			exitCode, running = 1, false
		case err := <-bootErr:
			logger.Error("telegram bootstrap failed", "error", err)
			exitCode, running = 1, false
		case <-app.Bootstrapper.ConnectionLost():
			logger.Warn("reconnecting to telegram")
			bootstrap()
		}
	}
	cancelBoot()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		exitCode = 1
	}
	if err := app.Bootstrapper.Shutdown(ctx); err != nil {
		exitCode = 1
	}
	logger.Info("server stopped")
	return exitCode
}
