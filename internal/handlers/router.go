// File: internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter registers the bridge routes. guards wrap every /telegram route;
// /health stays open.
func NewRouter(h *TelegramHandler, guards ...mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	api := r.PathPrefix("/telegram").Subrouter()
	api.Use(guards...)
	api.HandleFunc("/me", h.Me).Methods(http.MethodGet)
	api.HandleFunc("/chats", h.Chats).Methods(http.MethodGet)
	api.HandleFunc("/messages", h.Messages).Methods(http.MethodGet)
	api.HandleFunc("/send", h.Send).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	return r
}
