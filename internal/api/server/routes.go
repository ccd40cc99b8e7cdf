package server

import (
	"net/http"

	"github.com/bz888/agent-relay/internal/api/server/handlers"
)

func registerRoutes(mux *http.ServeMux, handler *handlers.Handler) {
	mux.HandleFunc("/api/chat", handler.ChatHandler)
	mux.HandleFunc("/status", handler.StatusHandler)
}
