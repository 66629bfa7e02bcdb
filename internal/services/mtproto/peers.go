// File: internal/services/mtproto/peers.go
package mtproto

import (
	"sync"

	"github.com/gotd/td/constant"
	"github.com/gotd/td/tg"
)

func markedUserID(id int64) int64 {
	var p constant.TDLibPeerID
	p.User(id)
	return int64(p)
}

func markedChatID(id int64) int64 {
	var p constant.TDLibPeerID
	p.Chat(id)
	return int64(p)
}

func markedChannelID(id int64) int64 {
	var p constant.TDLibPeerID
	p.Channel(id)
	return int64(p)
}

// markedPeerID converts a dialog peer to a marked chat id.
func markedPeerID(peer tg.PeerClass) (int64, bool) {
	switch p := peer.(type) {
	case *tg.PeerUser:
		return markedUserID(p.UserID), true
	case *tg.PeerChat:
		return markedChatID(p.ChatID), true
	case *tg.PeerChannel:
		return markedChannelID(p.ChannelID), true
	default:
		return 0, false
	}
}

// peerCache maps marked chat ids to input peers. MTProto needs access hashes
// for users and channels, which are only learned from dialogs and lookups.
type peerCache struct {
	mu    sync.RWMutex
	peers map[int64]tg.InputPeerClass
}

func newPeerCache() *peerCache {
	return &peerCache{peers: make(map[int64]tg.InputPeerClass)}
}

func (c *peerCache) get(chatID int64) (tg.InputPeerClass, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	peer, ok := c.peers[chatID]
	return peer, ok
}

func (c *peerCache) put(chatID int64, peer tg.InputPeerClass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peers[chatID] = peer
}

func (c *peerCache) storeUsers(users []tg.UserClass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range users {
		user, ok := u.(*tg.User)
		if !ok {
			continue
		}
		id := markedUserID(user.ID)
		if _, isSelf := c.peers[id].(*tg.InputPeerSelf); isSelf {
			continue
		}
		c.peers[id] = &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}
	}
}

func (c *peerCache) storeChats(chats []tg.ChatClass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range chats {
		switch chat := ch.(type) {
		case *tg.Chat:
			c.peers[markedChatID(chat.ID)] = &tg.InputPeerChat{ChatID: chat.ID}
		case *tg.ChatForbidden:
			c.peers[markedChatID(chat.ID)] = &tg.InputPeerChat{ChatID: chat.ID}
		case *tg.Channel:
			c.peers[markedChannelID(chat.ID)] = &tg.InputPeerChannel{ChannelID: chat.ID, AccessHash: chat.AccessHash}
		case *tg.ChannelForbidden:
			c.peers[markedChannelID(chat.ID)] = &tg.InputPeerChannel{ChannelID: chat.ID, AccessHash: chat.AccessHash}
		}
	}
}

func (c *peerCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peers = make(map[int64]tg.InputPeerClass)
}
