// File: internal/services/mtproto/client.go
package mtproto

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"go.uber.org/zap"

	"github.com/iyunix/go-study-bridge/internal/domain"
	"github.com/iyunix/go-study-bridge/internal/services/bridge"
)

// Client implements bridge.Client on a gotd MTProto user session.
type Client struct {
	config  *Config
	storage session.Storage
	log     *zap.Logger
	peers   *peerCache

	connMu sync.Mutex // serializes Connect and Close

	mu     sync.RWMutex
	tg     *telegram.Client
	api    *tg.Client
	sender *message.Sender
	cancel context.CancelFunc
	lost   chan error
}

// SessionResetter is implemented by session storages that can forget the
// stored authorization once Telegram revokes it.
type SessionResetter interface {
	ResetSession(ctx context.Context) error
}

// Errors after which the stored auth key is useless.
var revokedSessionErrors = []string{
	"AUTH_KEY_UNREGISTERED",
	"AUTH_KEY_INVALID",
	"SESSION_REVOKED",
	"SESSION_EXPIRED",
}

var _ bridge.Client = (*Client)(nil)

func NewClient(config *Config, storage session.Storage, log *zap.Logger) (*Client, error) {
	if config == nil {
		return nil, errors.New("mtproto config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mtproto config: %w", err)
	}
	if storage == nil {
		return nil, errors.New("session storage cannot be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		config:  config,
		storage: storage,
		log:     log,
		peers:   newPeerCache(),
	}, nil
}

// Connect starts the MTProto connection in the background and returns once
// the account is authorized. It is a no-op while already connected.
func (c *Client) Connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()
	if c.Done() != nil {
		return nil
	}

	client := telegram.NewClient(c.config.AppID, c.config.AppHash, telegram.Options{
		SessionStorage: c.storage,
		Logger:         c.log.Named("gotd"),
	})

	runCtx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	runErr := make(chan error, 1)

	go func() {
		runErr <- client.Run(runCtx, func(ctx context.Context) error {
			if err := c.authenticate(ctx, client); err != nil {
				return err
			}
			close(ready)
			<-ctx.Done()
			return ctx.Err()
		})
	}()

	select {
	case <-ready:
	case err := <-runErr:
		cancel()
		if err == nil {
			err = errors.New("connection closed during login")
		}
		return c.fail(ctx, "connect", err)
	case <-ctx.Done():
		// runErr is buffered; the run goroutine exits on its own.
		cancel()
		return classify("connect", ctx.Err())
	}

	api := client.API()
	lost := make(chan error, 1)
	c.mu.Lock()
	c.tg = client
	c.api = api
	c.sender = message.NewSender(api)
	c.cancel = cancel
	c.lost = lost
	c.mu.Unlock()

	go c.watch(runErr, lost, cancel)
	c.log.Info("telegram client connected")
	return nil
}

// watch waits for the run goroutine to exit. An exit that Close did not ask
// for drops the connection so the next Connect starts a new one.
func (c *Client) watch(runErr <-chan error, lost chan error, cancel context.CancelFunc) {
	err := <-runErr
	cancel()

	c.mu.Lock()
	current := c.lost == lost
	if current {
		c.tg, c.api, c.sender = nil, nil, nil
		c.cancel, c.lost = nil, nil
	}
	c.mu.Unlock()

	if current {
		c.peers.clear()
		if err == nil {
			err = errors.New("connection closed")
		}
		c.log.Error("telegram connection lost", zap.Error(err))
		err = c.fail(context.Background(), "run", err)
	}
	lost <- err
	close(lost)
}

// Done yields once when the current connection ends and is then closed. It
// is nil while not connected.
func (c *Client) Done() <-chan error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.lost == nil {
		return nil
	}
	return c.lost
}

// fail classifies an RPC error and clears the stored session when Telegram
// has revoked it, so the next login starts from scratch.
func (c *Client) fail(ctx context.Context, operation string, err error) error {
	if tgerr.Is(err, revokedSessionErrors...) {
		if resetter, ok := c.storage.(SessionResetter); ok {
			if resetErr := resetter.ResetSession(ctx); resetErr != nil {
				c.log.Error("could not clear revoked session", zap.String("operation", operation), zap.Error(resetErr))
			} else {
				c.log.Warn("telegram session revoked, stored session cleared", zap.String("operation", operation))
			}
		}
	}
	return classify(operation, err)
}

func (c *Client) authenticate(ctx context.Context, client *telegram.Client) error {
	flow := auth.NewFlow(
		auth.Constant(c.config.Phone, c.config.Password, auth.CodeAuthenticatorFunc(c.config.CodePrompt)),
		auth.SendCodeOptions{},
	)
	if err := client.Auth().IfNecessary(ctx, flow); err != nil {
		return fmt.Errorf("telegram login: %w", err)
	}
	return nil
}

// Close stops the background connection and waits for it to exit.
func (c *Client) Close(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	c.mu.Lock()
	cancel, lost := c.cancel, c.lost
	c.tg, c.api, c.sender = nil, nil, nil
	c.cancel, c.lost = nil, nil
	c.mu.Unlock()

	c.peers.clear()
	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case err := <-lost:
		if err != nil && !errors.Is(err, context.Canceled) {
			return classify("close", err)
		}
		c.log.Info("telegram client disconnected")
		return nil
	case <-ctx.Done():
		return classify("close", ctx.Err())
	}
}

func (c *Client) rpc() (*telegram.Client, *tg.Client, *message.Sender, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.api == nil {
		return nil, nil, nil, errNotConnected
	}
	return c.tg, c.api, c.sender, nil
}

func (c *Client) Self(ctx context.Context) (*domain.Identity, error) {
	client, _, _, err := c.rpc()
	if err != nil {
		return nil, classify("self", err)
	}
	user, err := client.Self(ctx)
	if err != nil {
		return nil, c.fail(ctx, "self", err)
	}
	c.peers.put(markedUserID(user.ID), &tg.InputPeerSelf{})
	return &domain.Identity{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
	}, nil
}
