package session

import (
	"context"

	"github.com/iyunix/go-study-bridge/internal/domain"
)

// SessionRepository persists MTProto session blobs by session name.
type SessionRepository interface {
	FindByName(ctx context.Context, name string) (*domain.TelegramSession, error)
	Save(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}
