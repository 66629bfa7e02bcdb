// File: internal/services/bridge/state.go
package bridge

import (
	"sync/atomic"

	"github.com/iyunix/go-study-bridge/internal/domain"
)

// State is the process-wide bridge state shared by bootstrap, gateway and
// delivery. Every field is replaced as a whole, never mutated in place.
type State struct {
	connected  atomic.Bool
	ready      atomic.Bool
	identity   atomic.Pointer[domain.Identity]
	selfChatID atomic.Pointer[int64]
	directory  atomic.Pointer[Directory]
}

func NewState() *State {
	s := &State{}
	s.directory.Store(NewDirectory(nil))
	return s
}

// Ready reports whether bootstrap completed and the client is connected.
func (s *State) Ready() bool {
	return s.ready.Load() && s.connected.Load()
}

func (s *State) Identity() *domain.Identity {
	return s.identity.Load()
}

func (s *State) SelfChatID() (int64, bool) {
	id := s.selfChatID.Load()
	if id == nil {
		return 0, false
	}
	return *id, true
}

func (s *State) SetSelfChatID(chatID int64) {
	s.selfChatID.Store(&chatID)
}

func (s *State) ClearSelfChatID() {
	s.selfChatID.Store(nil)
}

func (s *State) Directory() *Directory {
	return s.directory.Load()
}

func (s *State) setIdentity(identity *domain.Identity) {
	s.identity.Store(identity)
}

func (s *State) setDirectory(d *Directory) {
	s.directory.Store(d)
}
