// File: internal/services/botrelay/provider.go
package botrelay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/iyunix/go-study-bridge/internal/services/bridge"
)

// Sender is the part of the Bot API client the relay needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Config holds bot relay settings
type Config struct {
	Token        string
	TargetChatID int64
	Timeout      time.Duration
	APIEndpoint  string // format with token and method; tgbotapi.APIEndpoint when empty
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("bot token is required")
	}
	if c.TargetChatID == 0 {
		return errors.New("target chat id is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.APIEndpoint == "" {
		c.APIEndpoint = tgbotapi.APIEndpoint
	}
	return nil
}

// Provider delivers text to a fixed chat through the Telegram Bot API.
type Provider struct {
	sender       Sender
	targetChatID int64
	logger       bridge.Logger
}

var _ bridge.Deliverer = (*Provider)(nil)

// NewProvider builds a Bot API client without contacting Telegram, so startup
// never depends on api.telegram.org. A bad token surfaces on the first send.
func NewProvider(config *Config, logger bridge.Logger) (*Provider, error) {
	if config == nil {
		return nil, errors.New("bot relay config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bot relay config: %w", err)
	}

	api := &tgbotapi.BotAPI{
		Token:  config.Token,
		Client: &http.Client{Timeout: config.Timeout},
		Buffer: 100,
	}
	api.SetAPIEndpoint(config.APIEndpoint)
	return NewProviderWithSender(api, config.TargetChatID, logger)
}

// NewProviderWithSender builds a Provider on an existing Sender.
func NewProviderWithSender(sender Sender, targetChatID int64, logger bridge.Logger) (*Provider, error) {
	if sender == nil {
		return nil, errors.New("sender cannot be nil")
	}
	if targetChatID == 0 {
		return nil, errors.New("target chat id is required")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	return &Provider{sender: sender, targetChatID: targetChatID, logger: logger}, nil
}

// Deliver sends text as Markdown to the target chat. The Bot API call is not
// context aware; ctx is only checked before sending.
func (p *Provider) Deliver(ctx context.Context, text string) (*bridge.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, &bridge.DeliveryError{Via: bridge.ViaBot, Message: "request cancelled", Cause: err}
	}

	msg := tgbotapi.NewMessage(p.targetChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := p.sender.Send(msg); err != nil {
		p.logger.Error("bot relay send failed", "target_chat_id", p.targetChatID, "error", err)
		return nil, &bridge.DeliveryError{Via: bridge.ViaBot, Message: "bot API rejected the message", Cause: err}
	}

	p.logger.Debug("bot relay message sent", "target_chat_id", p.targetChatID)
	return &bridge.Delivery{Status: "sent", Via: bridge.ViaBot}, nil
}
