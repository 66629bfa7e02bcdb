// File: internal/services/bridge/directory.go
package bridge

import "github.com/iyunix/go-study-bridge/internal/domain"

const untitledChat = "Untitled"

// Directory is an immutable snapshot of the account's chats and the study subset.
type Directory struct {
	all      []domain.Chat
	study    []domain.Chat
	studyIDs map[int64]struct{}
}

// NewDirectory classifies chats and builds a snapshot. Order is preserved.
func NewDirectory(chats []domain.Chat) *Directory {
	d := &Directory{
		all:      make([]domain.Chat, 0, len(chats)),
		study:    []domain.Chat{},
		studyIDs: make(map[int64]struct{}),
	}
	for _, chat := range chats {
		d.all = append(d.all, chat)
		if IsStudyChat(chat.Title) {
			d.study = append(d.study, chat)
			d.studyIDs[chat.ID] = struct{}{}
		}
	}
	return d
}

// AllChats returns a copy of every chat in the snapshot.
func (d *Directory) AllChats() []domain.Chat {
	if d == nil {
		return []domain.Chat{}
	}
	return append([]domain.Chat{}, d.all...)
}

// StudyChats returns a copy of the study chats in the snapshot.
func (d *Directory) StudyChats() []domain.Chat {
	if d == nil {
		return []domain.Chat{}
	}
	return append([]domain.Chat{}, d.study...)
}

func (d *Directory) IsStudyChat(chatID int64) bool {
	if d == nil {
		return false
	}
	_, ok := d.studyIDs[chatID]
	return ok
}

// chatRecord turns raw metadata into a chat, falling back from title to the
// person's first name and then to a placeholder.
func chatRecord(info *domain.ChatInfo) domain.Chat {
	title := info.Title
	if title == "" {
		title = info.FirstName
	}
	if title == "" {
		title = untitledChat
	}
	return domain.Chat{ID: info.ID, Title: title}
}
