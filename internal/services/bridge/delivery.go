// File: internal/services/bridge/delivery.go
package bridge

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"
)

// SelfChatDelivery sends text to the account's private chat with itself.
// A failed send is treated as a stale chat handle: the handle is recreated
// once and the send retried once.
type SelfChatDelivery struct {
	client Client
	state  *State
	logger Logger
	group  singleflight.Group
}

func NewSelfChatDelivery(client Client, state *State, logger Logger) (*SelfChatDelivery, error) {
	if client == nil {
		return nil, NewConfigError("telegram client is required")
	}
	if state == nil {
		return nil, NewConfigError("bridge state is required")
	}
	return &SelfChatDelivery{
		client: client,
		state:  state,
		logger: loggerOrNop(logger),
	}, nil
}

func (d *SelfChatDelivery) Deliver(ctx context.Context, text string) (*Delivery, error) {
	chatID, err := d.resolveChat(ctx)
	if err != nil {
		return nil, err
	}

	if err := d.client.SendText(ctx, chatID, text); err != nil {
		d.logger.Warn("send to self chat failed, recreating private chat",
			"chat_id", chatID, "kind", KindOf(err), "error", err)
		d.state.ClearSelfChatID()

		chatID, err = d.recreateChat(ctx)
		if err != nil {
			return nil, d.failure("could not recreate private self chat", err)
		}
		if err := d.client.SendText(ctx, chatID, text); err != nil {
			return nil, d.failure("send failed after recreating private self chat", err)
		}
	}

	return &Delivery{Status: "sent", Via: ViaTDLib, ChatID: &chatID}, nil
}

// resolveChat returns the current handle, deriving it from the stored
// identity when unset.
func (d *SelfChatDelivery) resolveChat(ctx context.Context) (int64, error) {
	if chatID, ok := d.state.SelfChatID(); ok {
		return chatID, nil
	}
	chatID, err := d.recreateChat(ctx)
	if err != nil {
		if errors.Is(err, ErrIdentityUnavailable) {
			return 0, err
		}
		return 0, d.failure("could not create private self chat", err)
	}
	return chatID, nil
}

// recreateChat calls the client's create-or-fetch for the own user id.
// Concurrent callers share one call.
func (d *SelfChatDelivery) recreateChat(ctx context.Context) (int64, error) {
	identity := d.state.Identity()
	if identity == nil {
		return 0, ErrIdentityUnavailable
	}

	v, err, _ := d.group.Do("self-chat", func() (interface{}, error) {
		chatID, err := d.client.CreatePrivateChat(ctx, identity.UserID)
		if err != nil {
			return int64(0), err
		}
		d.state.SetSelfChatID(chatID)
		d.logger.Info("re-created private self chat", "chat_id", chatID)
		return chatID, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (d *SelfChatDelivery) failure(msg string, cause error) *DeliveryError {
	d.logger.Error(msg, "kind", KindOf(cause), "error", cause)
	return &DeliveryError{Via: ViaTDLib, Message: msg, Cause: cause}
}
