// File: internal/domain/chat.go
package domain

// Chat is a chat visible to the bridged account, as exposed to the agent.
type Chat struct {
	ID    int64  `json:"id"`
	Title string `json:"title"` // Chat title, or the person's first name for one-to-one chats
}

// ChatInfo is the raw chat metadata returned by the messaging client.
// Title is empty for one-to-one chats, where FirstName carries the display name.
type ChatInfo struct {
	ID        int64
	Title     string
	FirstName string
}
