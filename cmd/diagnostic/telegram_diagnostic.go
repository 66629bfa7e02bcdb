// File: cmd/diagnostic/telegram_diagnostic.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/iyunix/go-study-bridge/internal/config"
	"github.com/iyunix/go-study-bridge/internal/domain"
	"github.com/iyunix/go-study-bridge/internal/repository/session"
	"github.com/iyunix/go-study-bridge/internal/services"
	"github.com/iyunix/go-study-bridge/internal/services/bridge"
	"github.com/iyunix/go-study-bridge/internal/services/mtproto"
)

// Logs in with the configured account, runs one bootstrap pass and prints
// what the bridge would expose. Useful for the first interactive login.
func main() {
	timeout := flag.Duration("timeout", 5*time.Minute, "overall time limit")
	showAll := flag.Bool("all", false, "also list chats outside the study set")
	flag.Parse()

	cfg := config.Load()
	if missing := cfg.MissingRequired(); len(missing) > 0 {
		log.Fatalf("Missing required environment variables: %v", missing)
	}

	zapLogger, err := services.NewZapLogger("study_bridge_diagnostic", cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Logger Error: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	logger := services.NewProductionLogger(zapLogger)

	db, err := gorm.Open(sqlite.Open(cfg.SessionDBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}
	if err := db.AutoMigrate(&domain.TelegramSession{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}
	storage := session.NewStorage(session.NewGormSessionRepository(db), cfg.TelegramSessionName)

	client, err := mtproto.NewClient(&mtproto.Config{
		AppID:    cfg.TelegramAPIID,
		AppHash:  cfg.TelegramAPIHash,
		Phone:    cfg.TelegramPhoneNumber,
		Password: cfg.TelegramPassword,
	}, storage, zapLogger.Named("mtproto"))
	if err != nil {
		log.Fatalf("Client Error: %v", err)
	}

	state := bridge.NewState()
	bootstrapper, err := bridge.NewBootstrapper(client, state, bridge.DefaultConfig(), logger)
	if err != nil {
		log.Fatalf("Bootstrap Error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Println("Connecting to Telegram...")
	start := time.Now()
	if err := bootstrapper.Run(ctx); err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	fmt.Printf("Bootstrap finished in %v\n", time.Since(start).Round(time.Millisecond))
	defer func() { _ = bootstrapper.Shutdown(context.Background()) }()

	identity := state.Identity()
	if identity == nil {
		fmt.Println("Identity: unavailable")
	} else {
		fmt.Printf("Identity: %d %s %s\n", identity.UserID, identity.FirstName, identity.LastName)
	}
	if chatID, ok := state.SelfChatID(); ok {
		fmt.Printf("Self chat: %d\n", chatID)
	} else {
		fmt.Println("Self chat: not resolved")
	}

	directory := state.Directory()
	all, study := directory.AllChats(), directory.StudyChats()
	fmt.Printf("Chats: %d visible, %d study\n", len(all), len(study))
	for _, chat := range study {
		fmt.Printf("  [study] %d %s\n", chat.ID, chat.Title)
	}
	if *showAll {
		for _, chat := range all {
			if !directory.IsStudyChat(chat.ID) {
				fmt.Printf("  [other] %d %s\n", chat.ID, chat.Title)
			}
		}
	}
}
