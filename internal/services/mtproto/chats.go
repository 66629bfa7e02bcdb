// File: internal/services/mtproto/chats.go
package mtproto

import (
	"context"
	"strings"

	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/iyunix/go-study-bridge/internal/domain"
)

// ListChatIDs returns up to limit marked chat ids in dialog order.
func (c *Client) ListChatIDs(ctx context.Context, limit int) ([]int64, error) {
	_, api, _, err := c.rpc()
	if err != nil {
		return nil, c.fail(ctx, "list chats", err)
	}

	ids := make([]int64, 0, limit)
	seen := make(map[int64]struct{}, limit)
	req := &tg.MessagesGetDialogsRequest{OffsetPeer: &tg.InputPeerEmpty{}}

	for len(ids) < limit {
		req.Limit = min(limit-len(ids), c.config.DialogPageSize)
		res, err := api.MessagesGetDialogs(ctx, req)
		if err != nil {
			return nil, c.fail(ctx, "list chats", err)
		}
		page, ok := res.AsModified()
		if !ok {
			break
		}
		c.peers.storeUsers(page.GetUsers())
		c.peers.storeChats(page.GetChats())

		var last *tg.Dialog
		for _, d := range page.GetDialogs() {
			dialog, ok := d.(*tg.Dialog)
			if !ok {
				continue
			}
			last = dialog
			id, ok := markedPeerID(dialog.Peer)
			if !ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
			if len(ids) == limit {
				break
			}
		}

		if _, more := res.(*tg.MessagesDialogsSlice); !more || last == nil {
			break
		}
		if !c.advance(req, last, page.GetMessages()) {
			break
		}
	}

	c.log.Debug("listed dialogs", zap.Int("count", len(ids)))
	return ids, nil
}

// advance moves the dialogs offset past the last dialog of a page.
func (c *Client) advance(req *tg.MessagesGetDialogsRequest, last *tg.Dialog, messages []tg.MessageClass) bool {
	id, ok := markedPeerID(last.Peer)
	if !ok {
		return false
	}
	peer, ok := c.peers.get(id)
	if !ok {
		return false
	}
	date := 0
	for _, m := range messages {
		dated, ok := m.(interface{ GetDate() int })
		if ok && m.GetID() == last.TopMessage {
			date = dated.GetDate()
			break
		}
	}
	if req.OffsetID == last.TopMessage && req.OffsetDate == date {
		return false
	}
	req.OffsetPeer = peer
	req.OffsetID = last.TopMessage
	req.OffsetDate = date
	return true
}

// GetChat fetches current metadata for a chat learned from the dialog list.
func (c *Client) GetChat(ctx context.Context, chatID int64) (*domain.ChatInfo, error) {
	client, api, _, err := c.rpc()
	if err != nil {
		return nil, c.fail(ctx, "get chat", err)
	}
	peer, ok := c.peers.get(chatID)
	if !ok {
		return nil, classify("get chat", errPeerNotCached)
	}

	switch p := peer.(type) {
	case *tg.InputPeerSelf:
		user, err := client.Self(ctx)
		if err != nil {
			return nil, c.fail(ctx, "get chat", err)
		}
		return userChat(chatID, user), nil
	case *tg.InputPeerUser:
		users, err := api.UsersGetUsers(ctx, []tg.InputUserClass{&tg.InputUser{UserID: p.UserID, AccessHash: p.AccessHash}})
		if err != nil {
			return nil, c.fail(ctx, "get chat", err)
		}
		for _, u := range users {
			if user, ok := u.(*tg.User); ok {
				return userChat(chatID, user), nil
			}
		}
		return nil, classify("get chat", errEmptyResult)
	case *tg.InputPeerChat:
		res, err := api.MessagesGetChats(ctx, []int64{p.ChatID})
		if err != nil {
			return nil, c.fail(ctx, "get chat", err)
		}
		return groupChat(chatID, res.GetChats())
	case *tg.InputPeerChannel:
		res, err := api.ChannelsGetChannels(ctx, []tg.InputChannelClass{
			&tg.InputChannel{ChannelID: p.ChannelID, AccessHash: p.AccessHash},
		})
		if err != nil {
			return nil, c.fail(ctx, "get chat", err)
		}
		return groupChat(chatID, res.GetChats())
	default:
		return nil, classify("get chat", errPeerNotCached)
	}
}

func userChat(chatID int64, user *tg.User) *domain.ChatInfo {
	title := strings.TrimSpace(user.FirstName + " " + user.LastName)
	return &domain.ChatInfo{ID: chatID, Title: title, FirstName: user.FirstName}
}

func groupChat(chatID int64, chats []tg.ChatClass) (*domain.ChatInfo, error) {
	for _, ch := range chats {
		switch chat := ch.(type) {
		case *tg.Chat:
			return &domain.ChatInfo{ID: chatID, Title: chat.Title}, nil
		case *tg.ChatForbidden:
			return &domain.ChatInfo{ID: chatID, Title: chat.Title}, nil
		case *tg.Channel:
			return &domain.ChatInfo{ID: chatID, Title: chat.Title}, nil
		case *tg.ChannelForbidden:
			return &domain.ChatInfo{ID: chatID, Title: chat.Title}, nil
		}
	}
	return nil, classify("get chat", errEmptyResult)
}

// OpenChat refreshes the dialog for a chat before reading it.
func (c *Client) OpenChat(ctx context.Context, chatID int64) error {
	_, api, _, err := c.rpc()
	if err != nil {
		return c.fail(ctx, "open chat", err)
	}
	peer, ok := c.peers.get(chatID)
	if !ok {
		return classify("open chat", errPeerNotCached)
	}
	if _, err := api.MessagesGetPeerDialogs(ctx, []tg.InputDialogPeerClass{&tg.InputDialogPeer{Peer: peer}}); err != nil {
		return c.fail(ctx, "open chat", err)
	}
	return nil
}

// ChatHistory returns up to limit messages, newest first.
func (c *Client) ChatHistory(ctx context.Context, chatID int64, limit int) ([]domain.Message, error) {
	_, api, _, err := c.rpc()
	if err != nil {
		return nil, c.fail(ctx, "chat history", err)
	}
	peer, ok := c.peers.get(chatID)
	if !ok {
		return nil, classify("chat history", errPeerNotCached)
	}

	res, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{Peer: peer, Limit: limit})
	if err != nil {
		return nil, c.fail(ctx, "chat history", err)
	}
	page, ok := res.AsModified()
	if !ok {
		return []domain.Message{}, nil
	}
	c.peers.storeUsers(page.GetUsers())
	c.peers.storeChats(page.GetChats())

	raw := page.GetMessages()
	messages := make([]domain.Message, 0, len(raw))
	for _, m := range raw {
		messages = append(messages, toDomainMessage(m))
	}
	return messages, nil
}

// toDomainMessage marks plain text messages. Link previews still count as text.
func toDomainMessage(m tg.MessageClass) domain.Message {
	msg, ok := m.(*tg.Message)
	if !ok {
		return domain.Message{ID: int64(m.GetID())}
	}
	hasText := msg.Message != ""
	switch msg.Media.(type) {
	case nil, *tg.MessageMediaWebPage:
	default:
		hasText = false
	}
	return domain.Message{ID: int64(msg.ID), Text: msg.Message, HasText: hasText}
}

func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	_, _, sender, err := c.rpc()
	if err != nil {
		return c.fail(ctx, "send", err)
	}
	peer, ok := c.peers.get(chatID)
	if !ok {
		return classify("send", errPeerNotCached)
	}
	if _, err := sender.To(peer).NoWebpage().Text(ctx, text); err != nil {
		return c.fail(ctx, "send", err)
	}
	return nil
}

// CreatePrivateChat returns the private chat id with userID. Private chats
// always exist in MTProto, so this only makes sure the peer is resolvable.
func (c *Client) CreatePrivateChat(ctx context.Context, userID int64) (int64, error) {
	client, _, _, err := c.rpc()
	if err != nil {
		return 0, c.fail(ctx, "create private chat", err)
	}
	chatID := markedUserID(userID)
	if _, ok := c.peers.get(chatID); ok {
		return chatID, nil
	}

	self, err := client.Self(ctx)
	if err != nil {
		return 0, c.fail(ctx, "create private chat", err)
	}
	if self.ID != userID {
		return 0, classify("create private chat", errPeerNotCached)
	}
	c.peers.put(chatID, &tg.InputPeerSelf{})
	return chatID, nil
}
