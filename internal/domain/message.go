// File: internal/domain/message.go
package domain

// Message is a single message fetched from a chat history.
type Message struct {
	ID      int64
	Text    string
	HasText bool // false for media, service messages and anything without a plain text body
}
