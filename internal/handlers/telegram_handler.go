// File: internal/handlers/telegram_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/iyunix/go-study-bridge/internal/domain"
	"github.com/iyunix/go-study-bridge/internal/services"
	"github.com/iyunix/go-study-bridge/internal/services/bridge"
)

// Gateway is the bridge surface served over HTTP.
type Gateway interface {
	Me(ctx context.Context) (*bridge.Profile, error)
	StudyChats(ctx context.Context) ([]domain.Chat, error)
	Messages(ctx context.Context, chatID int64, limit int) (*bridge.MessagesResult, error)
	Send(ctx context.Context, body io.Reader) (*bridge.Delivery, error)
}

type TelegramHandler struct {
	gateway Gateway
	logger  services.Logger
}

func NewTelegramHandler(gateway Gateway, logger services.Logger) *TelegramHandler {
	return &TelegramHandler{gateway: gateway, logger: logger}
}

// Me handles GET /telegram/me.
func (h *TelegramHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.gateway.Me(r.Context())
	if err != nil {
		h.writeBridgeError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Chats handles GET /telegram/chats.
func (h *TelegramHandler) Chats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.gateway.StudyChats(r.Context())
	if err != nil {
		h.writeBridgeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"chats": chats})
}

// Messages handles GET /telegram/messages?chat_id=&limit=.
func (h *TelegramHandler) Messages(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	rawChatID := query.Get("chat_id")
	if rawChatID == "" {
		writeError(w, "chat_id is required", http.StatusBadRequest)
		return
	}
	chatID, err := strconv.ParseInt(rawChatID, 10, 64)
	if err != nil {
		writeError(w, "Invalid chat_id", http.StatusBadRequest)
		return
	}

	// Zero means "use the default"; the gateway clamps the rest.
	limit := 0
	if rawLimit := query.Get("limit"); rawLimit != "" {
		limit, err = strconv.Atoi(rawLimit)
		if err != nil {
			writeError(w, "Invalid limit", http.StatusBadRequest)
			return
		}
	}

	result, err := h.gateway.Messages(r.Context(), chatID, limit)
	if err != nil {
		h.writeBridgeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Send handles POST /telegram/send.
func (h *TelegramHandler) Send(w http.ResponseWriter, r *http.Request) {
	delivery, err := h.gateway.Send(r.Context(), r.Body)
	if err != nil {
		h.writeBridgeError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, delivery)
}

// writeBridgeError maps bridge errors to HTTP statuses. A missing identity is
// reported with identityStatus since its meaning differs per route.
func (h *TelegramHandler) writeBridgeError(w http.ResponseWriter, r *http.Request, err error, identityStatus int) {
	var policyErr *bridge.PolicyError
	var deliveryErr *bridge.DeliveryError

	switch {
	case errors.Is(err, bridge.ErrNotReady):
		writeError(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, bridge.ErrIdentityUnavailable):
		writeError(w, err.Error(), identityStatus)
	case errors.As(err, &policyErr):
		status := http.StatusBadRequest
		if policyErr.Type == bridge.ErrTypeForbiddenChat {
			status = http.StatusForbidden
		}
		writeError(w, policyErr.Message, status)
	case errors.As(err, &deliveryErr):
		h.logger.Error("delivery failed", "path", r.URL.Path, "via", deliveryErr.Via, "error", err)
		writeError(w, "Failed to send message: "+deliveryErr.Message, http.StatusInternalServerError)
	default:
		h.logger.Error("unexpected bridge error", "path", r.URL.Path, "error", err)
		writeError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Health is the unauthenticated liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
