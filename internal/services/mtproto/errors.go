// File: internal/services/mtproto/errors.go
package mtproto

import (
	"errors"

	"github.com/gotd/td/tgerr"

	"github.com/iyunix/go-study-bridge/internal/services/bridge"
)

var (
	errNotConnected  = errors.New("client is not connected")
	errPeerNotCached = errors.New("chat is not among the known dialogs")
	errEmptyResult   = errors.New("empty result")
)

var notFoundErrors = []string{
	"PEER_ID_INVALID",
	"CHANNEL_INVALID",
	"CHAT_ID_INVALID",
	"USER_ID_INVALID",
	"MSG_ID_INVALID",
	"INPUT_USER_DEACTIVATED",
}

var permissionErrors = []string{
	"CHAT_WRITE_FORBIDDEN",
	"CHANNEL_PRIVATE",
	"CHAT_ADMIN_REQUIRED",
	"CHAT_RESTRICTED",
	"USER_BANNED_IN_CHANNEL",
	"CHAT_FORBIDDEN",
}

// classify wraps err in a bridge.AdapterError. Anything that is not clearly a
// missing chat or a permission problem is treated as connectivity.
func classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	kind := bridge.KindConnectivity
	switch {
	case errors.Is(err, errPeerNotCached), errors.Is(err, errEmptyResult), tgerr.Is(err, notFoundErrors...):
		kind = bridge.KindNotFound
	case tgerr.Is(err, permissionErrors...):
		kind = bridge.KindPermission
	}
	return bridge.NewAdapterError(kind, operation, err)
}
