// File: internal/domain/session.go
package domain

import "time"

// TelegramSession stores the serialized MTProto session of the bridged account.
type TelegramSession struct {
	ID        uint   `gorm:"primarykey"`
	Name      string `gorm:"uniqueIndex;not null"`
	Data      []byte `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
