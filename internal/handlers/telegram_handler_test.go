package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-study-bridge/internal/domain"
	"github.com/iyunix/go-study-bridge/internal/middleware"
	"github.com/iyunix/go-study-bridge/internal/services"
	"github.com/iyunix/go-study-bridge/internal/services/bridge"
)

type stubGateway struct {
	profile  *bridge.Profile
	chats    []domain.Chat
	result   *bridge.MessagesResult
	delivery *bridge.Delivery
	err      error

	gotChatID int64
	gotLimit  int
	gotBody   string
}

func (s *stubGateway) Me(ctx context.Context) (*bridge.Profile, error) {
	return s.profile, s.err
}

func (s *stubGateway) StudyChats(ctx context.Context) ([]domain.Chat, error) {
	return s.chats, s.err
}

func (s *stubGateway) Messages(ctx context.Context, chatID int64, limit int) (*bridge.MessagesResult, error) {
	s.gotChatID, s.gotLimit = chatID, limit
	return s.result, s.err
}

func (s *stubGateway) Send(ctx context.Context, body io.Reader) (*bridge.Delivery, error) {
	raw, _ := io.ReadAll(body)
	s.gotBody = string(raw)
	return s.delivery, s.err
}

const testAPIKey = "agent-secret"

func newTestRouter(gw Gateway) http.Handler {
	h := NewTelegramHandler(gw, &services.NoOpLogger{})
	return NewRouter(h, middleware.NewAPIKeyMiddleware(testAPIKey, nil, nil))
}

func serve(t *testing.T, router http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(middleware.APIKeyHeader, testAPIKey)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func int64Ptr(v int64) *int64 { return &v }

func TestTelegramHandler_Me(t *testing.T) {
	suffix := "3456"
	gw := &stubGateway{profile: &bridge.Profile{
		ID: 777, FirstName: "María", LastName: "López",
		PhoneEndsWith: &suffix, SelfPrivateChatID: int64Ptr(777),
	}}

	rec, body := serve(t, newTestRouter(gw), http.MethodGet, "/telegram/me", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(777), body["id"])
	assert.Equal(t, "3456", body["phone_ends_with"])
	assert.Equal(t, float64(777), body["self_private_chat_id"])
}

func TestTelegramHandler_MeNullableFields(t *testing.T) {
	gw := &stubGateway{profile: &bridge.Profile{ID: 777}}

	_, body := serve(t, newTestRouter(gw), http.MethodGet, "/telegram/me", "")

	assert.Contains(t, body, "phone_ends_with")
	assert.Nil(t, body["phone_ends_with"])
	assert.Nil(t, body["self_private_chat_id"])
}

func TestTelegramHandler_Chats(t *testing.T) {
	gw := &stubGateway{chats: []domain.Chat{{ID: -100, Title: "UNED Psicología"}}}

	rec, body := serve(t, newTestRouter(gw), http.MethodGet, "/telegram/chats", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	chats := body["chats"].([]interface{})
	require.Len(t, chats, 1)
	assert.Equal(t, "UNED Psicología", chats[0].(map[string]interface{})["title"])
}

func TestTelegramHandler_Messages(t *testing.T) {
	gw := &stubGateway{result: &bridge.MessagesResult{ChatID: -100, Messages: []string{"a", "b"}, Count: 2}}
	router := newTestRouter(gw)

	rec, body := serve(t, router, http.MethodGet, "/telegram/messages?chat_id=-100&limit=20", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(-100), gw.gotChatID)
	assert.Equal(t, 20, gw.gotLimit)
	assert.Equal(t, float64(2), body["count"])
	assert.NotContains(t, body, "error")

	serve(t, router, http.MethodGet, "/telegram/messages?chat_id=-100", "")
	assert.Equal(t, 0, gw.gotLimit, "missing limit defers to the gateway default")
}

func TestTelegramHandler_MessagesBadQuery(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"missing chat_id", "/telegram/messages"},
		{"non numeric chat_id", "/telegram/messages?chat_id=abc"},
		{"non numeric limit", "/telegram/messages?chat_id=1&limit=many"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(t, newTestRouter(&stubGateway{}), http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestTelegramHandler_MessagesDegraded(t *testing.T) {
	gw := &stubGateway{result: &bridge.MessagesResult{ChatID: -100, Messages: []string{}, Error: "telegram CONNECTIVITY error"}}

	rec, body := serve(t, newTestRouter(gw), http.MethodGet, "/telegram/messages?chat_id=-100", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["messages"])
	assert.Equal(t, float64(0), body["count"])
	assert.NotEmpty(t, body["error"])
}

func TestTelegramHandler_Send(t *testing.T) {
	gw := &stubGateway{delivery: &bridge.Delivery{Status: "sent", Via: bridge.ViaTDLib, ChatID: int64Ptr(777)}}

	rec, body := serve(t, newTestRouter(gw), http.MethodPost, "/telegram/send", `{"text":"resumen"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"text":"resumen"}`, gw.gotBody)
	assert.Equal(t, "sent", body["status"])
	assert.Equal(t, "tdlib", body["via"])
	assert.Equal(t, float64(777), body["chat_id"])
}

func TestTelegramHandler_SendViaBotOmitsChatID(t *testing.T) {
	gw := &stubGateway{delivery: &bridge.Delivery{Status: "sent", Via: bridge.ViaBot}}

	_, body := serve(t, newTestRouter(gw), http.MethodPost, "/telegram/send", `{"text":"x"}`)

	assert.Equal(t, "bot", body["via"])
	assert.NotContains(t, body, "chat_id")
}

func TestTelegramHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		err    error
		want   int
	}{
		{"me not ready", http.MethodGet, "/telegram/me", bridge.ErrNotReady, http.StatusServiceUnavailable},
		{"chats not ready", http.MethodGet, "/telegram/chats", bridge.ErrNotReady, http.StatusServiceUnavailable},
		{"messages not ready", http.MethodGet, "/telegram/messages?chat_id=1", bridge.ErrNotReady, http.StatusServiceUnavailable},
		{"send not ready", http.MethodPost, "/telegram/send", bridge.ErrNotReady, http.StatusServiceUnavailable},
		{"me without identity", http.MethodGet, "/telegram/me", bridge.ErrIdentityUnavailable, http.StatusServiceUnavailable},
		{"send without identity", http.MethodPost, "/telegram/send", bridge.ErrIdentityUnavailable, http.StatusInternalServerError},
		{"forbidden chat", http.MethodGet, "/telegram/messages?chat_id=5", bridge.NewForbiddenChatError(5), http.StatusForbidden},
		{"invalid body", http.MethodPost, "/telegram/send", bridge.NewValidationError("Only 'text' is allowed"), http.StatusBadRequest},
		{"delivery failure", http.MethodPost, "/telegram/send", &bridge.DeliveryError{Via: bridge.ViaTDLib, Message: "send failed"}, http.StatusInternalServerError},
		{"unexpected", http.MethodGet, "/telegram/chats", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := serve(t, newTestRouter(&stubGateway{err: tt.err}), tt.method, tt.target, `{}`)
			assert.Equal(t, tt.want, rec.Code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestTelegramHandler_ValidationMessage(t *testing.T) {
	gw := &stubGateway{err: bridge.NewValidationError("Only 'text' is allowed")}

	_, body := serve(t, newTestRouter(gw), http.MethodPost, "/telegram/send", `{"text":"a","chat_id":1}`)

	assert.Equal(t, "Only 'text' is allowed", body["error"])
}

func TestRouter_AuthAndHealth(t *testing.T) {
	router := newTestRouter(&stubGateway{chats: []domain.Chat{}})

	req := httptest.NewRequest(http.MethodGet, "/telegram/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec, _ = serve(t, router, http.MethodGet, "/telegram/send", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
