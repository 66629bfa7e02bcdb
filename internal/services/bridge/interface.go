// File: internal/services/bridge/interface.go
package bridge

import (
	"context"

	"github.com/iyunix/go-study-bridge/internal/domain"
)

// Client is the messaging client the bridge is built on. Chat ids use the
// TDLib marked convention: users positive, basic groups negative, channels -100...
type Client interface {
	Connect(ctx context.Context) error
	Close(ctx context.Context) error
	// Done yields once when the current connection ends; nil when not connected.
	Done() <-chan error
	Self(ctx context.Context) (*domain.Identity, error)
	ListChatIDs(ctx context.Context, limit int) ([]int64, error)
	GetChat(ctx context.Context, chatID int64) (*domain.ChatInfo, error)
	OpenChat(ctx context.Context, chatID int64) error
	// ChatHistory returns up to limit messages, newest first.
	ChatHistory(ctx context.Context, chatID int64, limit int) ([]domain.Message, error)
	SendText(ctx context.Context, chatID int64, text string) error
	// CreatePrivateChat returns the private chat with userID, creating it if needed.
	CreatePrivateChat(ctx context.Context, userID int64) (int64, error)
}

// Deliverer delivers text to the account owner's configured destination.
type Deliverer interface {
	Deliver(ctx context.Context, text string) (*Delivery, error)
}

// Delivery channels reported back to the caller.
const (
	ViaBot   = "bot"
	ViaTDLib = "tdlib"
)

// Delivery describes where a message ended up.
type Delivery struct {
	Status string `json:"status"`
	Via    string `json:"via"`
	ChatID *int64 `json:"chat_id,omitempty"`
}

// Logger interface for bridge operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func loggerOrNop(logger Logger) Logger {
	if logger == nil {
		return nopLogger{}
	}
	return logger
}
