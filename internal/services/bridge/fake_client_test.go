package bridge

import (
	"context"
	"errors"
	"sync"

	"github.com/iyunix/go-study-bridge/internal/domain"
)

var errUpstream = NewAdapterError(KindConnectivity, "test", errors.New("upstream unavailable"))

type sentMessage struct {
	ChatID int64
	Text   string
}

// fakeClient is a scripted Client that records every call.
type fakeClient struct {
	mu sync.Mutex

	connectErr error
	closeErr   error

	identity     *domain.Identity
	selfErr      error // returned while selfFailures > 0, or always when selfFailures < 0
	selfFailures int

	chatIDs  []int64
	listErr  error
	chats    map[int64]*domain.ChatInfo
	chatErrs map[int64]error

	history    []domain.Message
	historyErr error
	openErr    error

	sendErrs  []error // consumed one per SendText call
	createIDs []int64 // consumed one per CreatePrivateChat call, last one repeats
	createErr error

	done chan error // current connection, set by a successful Connect

	connectCalls int
	closeCalls   int
	selfCalls    int
	listCalls    int
	getChatCalls int
	openCalls    int
	historyLimit int
	createCalls  int
	sends        []sentMessage
}

func (f *fakeClient) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectCalls++
	if f.connectErr != nil {
		return f.connectErr
	}
	f.done = make(chan error, 1)
	return nil
}

func (f *fakeClient) Done() <-chan error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done == nil {
		return nil
	}
	return f.done
}

// dropConnection ends the current connection as if the network went away.
func (f *fakeClient) dropConnection(err error) {
	f.mu.Lock()
	done := f.done
	f.done = nil
	f.mu.Unlock()
	done <- err
	close(done)
}

func (f *fakeClient) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	f.done = nil
	return f.closeErr
}

func (f *fakeClient) Self(ctx context.Context) (*domain.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selfCalls++
	if f.selfFailures < 0 {
		return nil, f.selfErr
	}
	if f.selfFailures > 0 {
		f.selfFailures--
		return nil, f.selfErr
	}
	if f.identity == nil {
		return nil, errUpstream
	}
	identity := *f.identity
	return &identity, nil
}

func (f *fakeClient) ListChatIDs(ctx context.Context, limit int) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.chatIDs) > limit {
		return f.chatIDs[:limit], nil
	}
	return f.chatIDs, nil
}

func (f *fakeClient) GetChat(ctx context.Context, chatID int64) (*domain.ChatInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getChatCalls++
	if err, ok := f.chatErrs[chatID]; ok {
		return nil, err
	}
	info, ok := f.chats[chatID]
	if !ok {
		return nil, NewAdapterError(KindNotFound, "get_chat", errors.New("chat not found"))
	}
	return info, nil
}

func (f *fakeClient) OpenChat(ctx context.Context, chatID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openCalls++
	return f.openErr
}

func (f *fakeClient) ChatHistory(ctx context.Context, chatID int64, limit int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyLimit = limit
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	return f.history, nil
}

func (f *fakeClient) SendText(ctx context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, sentMessage{ChatID: chatID, Text: text})
	if len(f.sendErrs) > 0 {
		err := f.sendErrs[0]
		f.sendErrs = f.sendErrs[1:]
		return err
	}
	return nil
}

func (f *fakeClient) CreatePrivateChat(ctx context.Context, userID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return 0, f.createErr
	}
	if len(f.createIDs) == 0 {
		return userID, nil
	}
	id := f.createIDs[0]
	if len(f.createIDs) > 1 {
		f.createIDs = f.createIDs[1:]
	}
	return id, nil
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.IdentityRetry.Delay = 0
	return cfg
}

func testIdentity() *domain.Identity {
	return &domain.Identity{UserID: 777, FirstName: "María", LastName: "López", Phone: "34600123456"}
}

// readyState returns a State as left by a successful bootstrap.
func readyState(identity *domain.Identity, selfChatID *int64, chats []domain.Chat) *State {
	s := NewState()
	s.connected.Store(true)
	s.ready.Store(true)
	if identity != nil {
		s.setIdentity(identity)
	}
	if selfChatID != nil {
		s.SetSelfChatID(*selfChatID)
	}
	s.setDirectory(NewDirectory(chats))
	return s
}
