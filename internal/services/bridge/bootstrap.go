// File: internal/services/bridge/bootstrap.go
package bridge

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/iyunix/go-study-bridge/internal/domain"
)

// Bootstrapper brings the bridge from disconnected to ready: it connects the
// client, resolves the account identity and its private self chat, and loads
// the chat directory.
type Bootstrapper struct {
	client Client
	state  *State
	config *Config
	logger Logger

	group singleflight.Group
	mu    sync.Mutex // serializes Run and Shutdown

	// Guarded by mu. generation changes whenever the watched connection does.
	generation uint64
	stopWatch  chan struct{}

	lost chan struct{}
}

func NewBootstrapper(client Client, state *State, config *Config, logger Logger) (*Bootstrapper, error) {
	if client == nil {
		return nil, NewConfigError("telegram client is required")
	}
	if state == nil {
		return nil, NewConfigError("bridge state is required")
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	return &Bootstrapper{
		client: client,
		state:  state,
		config: config,
		logger: loggerOrNop(logger),
		lost:   make(chan struct{}, 1),
	}, nil
}

// ConnectionLost signals after the connection ended on its own and the bridge
// left the ready state. Run reconnects.
func (b *Bootstrapper) ConnectionLost() <-chan struct{} {
	return b.lost
}

// Run executes the bootstrap sequence. It is a no-op once the bridge is ready,
// and concurrent calls share a single run. Only a connection failure is
// returned; every later step degrades instead of failing.
func (b *Bootstrapper) Run(ctx context.Context) error {
	_, err, _ := b.group.Do("bootstrap", func() (interface{}, error) {
		return nil, b.run(ctx)
	})
	return err
}

func (b *Bootstrapper) run(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.Ready() {
		b.logger.Debug("bootstrap already completed")
		return nil
	}

	if !b.state.connected.Load() {
		b.logger.Info("starting telegram client")
		if err := b.client.Connect(ctx); err != nil {
			return fmt.Errorf("connect telegram client: %w", err)
		}
		b.state.connected.Store(true)
		b.watchConnection(b.client.Done())
	}

	if identity := b.fetchIdentity(ctx); identity != nil {
		b.state.setIdentity(identity)
		b.ensureSelfChat(ctx, identity.UserID)
	}

	b.loadDirectory(ctx)

	b.state.ready.Store(true)
	b.logger.Info("bridge ready")
	return nil
}

// watchConnection marks the bridge disconnected when the connection ends on
// its own, so the next Run reconnects. Callers hold b.mu.
func (b *Bootstrapper) watchConnection(done <-chan error) {
	b.stopWatching()
	if done == nil {
		return
	}
	generation := b.generation
	stop := make(chan struct{})
	b.stopWatch = stop

	go func() {
		var err error
		select {
		case err = <-done:
		case <-stop:
			return
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if generation != b.generation {
			return
		}
		b.stopWatch = nil
		if b.state.connected.CompareAndSwap(true, false) {
			b.state.ready.Store(false)
			b.logger.Error("telegram connection lost, bridge not ready", "kind", KindOf(err), "error", err)
			select {
			case b.lost <- struct{}{}:
			default:
			}
		}
	}()
}

func (b *Bootstrapper) stopWatching() {
	b.generation++
	if b.stopWatch != nil {
		close(b.stopWatch)
		b.stopWatch = nil
	}
}

func (b *Bootstrapper) fetchIdentity(ctx context.Context) *domain.Identity {
	var identity *domain.Identity
	attempts := 0

	err := Retry(ctx, b.config.IdentityRetry, func(ctx context.Context) error {
		attempts++
		me, err := b.client.Self(ctx)
		if err != nil {
			b.logger.Debug("waiting for telegram client", "attempt", attempts, "error", err)
			return err
		}
		identity = me
		return nil
	})
	if err != nil {
		b.logger.Warn("could not fetch current user, continuing without identity",
			"attempts", attempts, "kind", KindOf(err), "error", err)
		return nil
	}

	b.logger.Info("connected to telegram", "first_name", identity.FirstName, "user_id", identity.UserID)
	return identity
}

func (b *Bootstrapper) ensureSelfChat(ctx context.Context, userID int64) {
	chatID, err := b.client.CreatePrivateChat(ctx, userID)
	if err != nil {
		b.logger.Error("could not create private chat with own account", "user_id", userID, "kind", KindOf(err), "error", err)
		return
	}
	b.state.SetSelfChatID(chatID)
	b.logger.Info("private self chat ready", "chat_id", chatID)
}

// loadDirectory enumerates chats and swaps in a new directory. Chats whose
// metadata cannot be fetched are left out of both collections.
func (b *Bootstrapper) loadDirectory(ctx context.Context) {
	chatIDs, err := b.client.ListChatIDs(ctx, b.config.ChatPageSize)
	if err != nil {
		b.logger.Error("failed to preload chats", "kind", KindOf(err), "error", err)
		return
	}

	chats := make([]domain.Chat, 0, len(chatIDs))
	failed := 0
	for _, chatID := range chatIDs {
		info, err := b.client.GetChat(ctx, chatID)
		if err != nil {
			failed++
			b.logger.Warn("could not load chat", "chat_id", chatID, "kind", KindOf(err), "error", err)
			continue
		}
		chats = append(chats, chatRecord(info))
	}

	directory := NewDirectory(chats)
	b.state.setDirectory(directory)

	study := directory.StudyChats()
	b.logger.Info("chat directory loaded", "total_chats", len(chats), "study_chats", len(study))
	for _, chat := range study {
		b.logger.Debug("study chat", "chat_id", chat.ID, "title", chat.Title)
	}

	// A systemic outage during enumeration looks like an account with few chats.
	switch {
	case failed > 0 && failed == len(chatIDs):
		b.logger.Error("every chat fetch failed, directory is empty", "failed_chats", failed)
	case failed > 0:
		b.logger.Warn("some chats could not be loaded", "failed_chats", failed, "listed_chats", len(chatIDs))
	}
}

// Shutdown releases the client connection. Safe to call repeatedly or
// without a prior Run.
func (b *Bootstrapper) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopWatching()
	b.state.ready.Store(false)
	if !b.state.connected.CompareAndSwap(true, false) {
		return nil
	}

	b.logger.Info("closing telegram client")
	if err := b.client.Close(ctx); err != nil {
		b.logger.Warn("error closing telegram client", "error", err)
		return err
	}
	b.logger.Info("telegram client closed")
	return nil
}
