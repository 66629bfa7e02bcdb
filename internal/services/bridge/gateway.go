// File: internal/services/bridge/gateway.go
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"unicode/utf8"

	"github.com/iyunix/go-study-bridge/internal/domain"
)

// Gateway exposes the account to the agent: identity, study chats, reads
// limited to study chats and writes limited to the owner's destination.
type Gateway struct {
	client   Client
	state    *State
	delivery Deliverer
	config   *Config
	logger   Logger
}

func NewGateway(client Client, state *State, delivery Deliverer, config *Config, logger Logger) (*Gateway, error) {
	if client == nil {
		return nil, NewConfigError("telegram client is required")
	}
	if state == nil {
		return nil, NewConfigError("bridge state is required")
	}
	if delivery == nil {
		return nil, NewConfigError("delivery strategy is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	return &Gateway{
		client:   client,
		state:    state,
		delivery: delivery,
		config:   config,
		logger:   loggerOrNop(logger),
	}, nil
}

// Profile is the identity view returned to the agent.
type Profile struct {
	ID                int64   `json:"id"`
	FirstName         string  `json:"first_name"`
	LastName          string  `json:"last_name"`
	PhoneEndsWith     *string `json:"phone_ends_with"`
	SelfPrivateChatID *int64  `json:"self_private_chat_id"`
}

// Me returns the live identity, falling back to the one captured at bootstrap.
func (g *Gateway) Me(ctx context.Context) (*Profile, error) {
	if !g.state.Ready() {
		return nil, ErrNotReady
	}

	identity, err := g.client.Self(ctx)
	if err != nil {
		g.logger.Warn("live identity fetch failed, using bootstrap identity", "kind", KindOf(err), "error", err)
		identity = g.state.Identity()
	}
	if identity == nil {
		return nil, ErrIdentityUnavailable
	}

	profile := &Profile{
		ID:            identity.UserID,
		FirstName:     identity.FirstName,
		LastName:      identity.LastName,
		PhoneEndsWith: identity.PhoneSuffix(),
	}
	if chatID, ok := g.state.SelfChatID(); ok {
		profile.SelfPrivateChatID = &chatID
	}
	return profile, nil
}

// StudyChats returns the study chats from the last bootstrap snapshot.
func (g *Gateway) StudyChats(ctx context.Context) ([]domain.Chat, error) {
	if !g.state.Ready() {
		return nil, ErrNotReady
	}
	return g.state.Directory().StudyChats(), nil
}

// MessagesResult is the read response. Error is set when the history could
// not be fetched; Messages is then empty.
type MessagesResult struct {
	ChatID   int64    `json:"chat_id"`
	Messages []string `json:"messages"`
	Count    int      `json:"count"`
	Error    string   `json:"error,omitempty"`
}

// Messages reads the latest text messages of a study chat.
func (g *Gateway) Messages(ctx context.Context, chatID int64, limit int) (*MessagesResult, error) {
	if !g.state.Ready() {
		return nil, ErrNotReady
	}
	if !g.state.Directory().IsStudyChat(chatID) {
		g.logger.Warn("read rejected for chat outside study set", "chat_id", chatID)
		return nil, NewForbiddenChatError(chatID)
	}
	limit = g.clampLimit(limit)

	if err := g.client.OpenChat(ctx, chatID); err != nil {
		g.logger.Warn("open chat failed", "chat_id", chatID, "kind", KindOf(err), "error", err)
	}

	history, err := g.client.ChatHistory(ctx, chatID, limit)
	if err != nil {
		g.logger.Error("failed to fetch chat history", "chat_id", chatID, "kind", KindOf(err), "error", err)
		return &MessagesResult{ChatID: chatID, Messages: []string{}, Error: err.Error()}, nil
	}

	texts := make([]string, 0, len(history))
	for _, msg := range history {
		if !msg.HasText {
			continue
		}
		texts = append(texts, msg.Text)
		if len(texts) == limit {
			break
		}
	}
	return &MessagesResult{ChatID: chatID, Messages: texts, Count: len(texts)}, nil
}

func (g *Gateway) clampLimit(limit int) int {
	if limit <= 0 {
		return g.config.DefaultReadLimit
	}
	if limit > g.config.MaxReadLimit {
		return g.config.MaxReadLimit
	}
	return limit
}

// Send delivers the text in body to the owner's destination. The body must be
// a JSON object with a single "text" key; the destination is never taken from
// the caller.
func (g *Gateway) Send(ctx context.Context, body io.Reader) (*Delivery, error) {
	if !g.state.Ready() {
		return nil, ErrNotReady
	}

	text, err := g.parseSendBody(body)
	if err != nil {
		return nil, err
	}

	delivery, err := g.delivery.Deliver(ctx, text)
	if err != nil {
		return nil, err
	}
	g.logger.Info("message sent", "via", delivery.Via, "preview", preview(text, 80))
	return delivery, nil
}

func (g *Gateway) parseSendBody(body io.Reader) (string, error) {
	var fields map[string]json.RawMessage
	dec := json.NewDecoder(body)
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return "", NewValidationError("body must be a JSON object")
	}
	// Exactly one value; anything after the object is rejected.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return "", NewValidationError("body must be a JSON object")
	}
	for key := range fields {
		if key != "text" {
			return "", NewValidationError("Only 'text' is allowed")
		}
	}

	raw, ok := fields["text"]
	if !ok {
		return "", NewValidationError("text is required")
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", NewValidationError("text must be a string")
	}
	if text == "" {
		return "", NewValidationError("text is required")
	}
	if utf8.RuneCountInString(text) > g.config.MaxTextLength {
		return "", NewValidationError("text too long")
	}
	return text, nil
}

func preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
