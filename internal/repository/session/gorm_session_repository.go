// File: internal/repository/session/gorm_session_repository.go
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgsession "github.com/gotd/td/session"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iyunix/go-study-bridge/internal/domain"
)

var ErrSessionNotFound = errors.New("telegram session not found")

type gormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) SessionRepository {
	return &gormSessionRepository{db: db}
}

func (r *gormSessionRepository) FindByName(ctx context.Context, name string) (*domain.TelegramSession, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	var record domain.TelegramSession
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database error loading session: %w", err)
	}
	return &record, nil
}

// Save inserts the session or overwrites the data of an existing one.
func (r *gormSessionRepository) Save(ctx context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}

	record := domain.TelegramSession{Name: name, Data: data}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("database error saving session: %w", err)
	}
	return nil
}

func (r *gormSessionRepository) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("name = ?", name).Delete(&domain.TelegramSession{}).Error
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("session name cannot be empty")
	}
	return nil
}

// Storage adapts a SessionRepository to the MTProto client's session storage.
type Storage struct {
	repo SessionRepository
	name string
}

var _ tgsession.Storage = (*Storage)(nil)

func NewStorage(repo SessionRepository, name string) *Storage {
	return &Storage{repo: repo, name: name}
}

func (s *Storage) LoadSession(ctx context.Context) ([]byte, error) {
	record, err := s.repo.FindByName(ctx, s.name)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, tgsession.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(record.Data) == 0 {
		return nil, tgsession.ErrNotFound
	}
	return record.Data, nil
}

func (s *Storage) StoreSession(ctx context.Context, data []byte) error {
	return s.repo.Save(ctx, s.name, data)
}

// ResetSession deletes the stored session so the next connect logs in again.
func (s *Storage) ResetSession(ctx context.Context) error {
	return s.repo.Delete(ctx, s.name)
}
