package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/bz888/agent-relay/internal/api/server/relay"
	"github.com/bz888/agent-relay/internal/logger"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const internalErrorMessage = "Internal Server Error"

// ChatRelay is the part of the relay the HTTP layer depends on.
type ChatRelay interface {
	HandleChatTurn(ctx context.Context, req relay.ChatTurnRequest) ([]relay.ChatTurnResponse, error)
}

type Handler struct {
	relay ChatRelay
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandler(chatRelay ChatRelay) *Handler {
	return &Handler{
		relay: chatRelay,
	}
}

// ChatHandler serves /api/chat. Every failure maps to the same 500 body; the
// cause is only logged.
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	switch r.Method {
	case http.MethodOptions:
		writeJSON(w, http.StatusOK, struct{}{})
	case http.MethodPost:
		h.processChatTurn(w, r)
	default:
		w.Header().Set("Allow", "POST, OPTIONS")
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method Not Allowed"})
	}
}

func (h *Handler) processChatTurn(w http.ResponseWriter, r *http.Request) {
	turnID := uuid.New().String()
	localLogger := logger.NewLogger("ChatHandler").With("turn", turnID)
	w.Header().Set("X-Request-ID", turnID)
	defer r.Body.Close()

	clientReq, err := decodeChatTurn(r.Body)
	if err != nil {
		localLogger.Err(errors.Wrap(err, "failed to decode chat request")).Error("API error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: internalErrorMessage})
		return
	}

	ctx := relay.WithTurnID(r.Context(), turnID)
	resp, err := h.relay.HandleChatTurn(ctx, clientReq)
	if err != nil {
		localLogger.Err(err).Error("API error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: internalErrorMessage})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeChatTurn accepts exactly one JSON object and nothing after it.
func decodeChatTurn(body io.Reader) (relay.ChatTurnRequest, error) {
	dec := json.NewDecoder(body)

	var req *relay.ChatTurnRequest
	if err := dec.Decode(&req); err != nil {
		return relay.ChatTurnRequest{}, err
	}
	if req == nil {
		return relay.ChatTurnRequest{}, errors.New("request body is null")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return relay.ChatTurnRequest{}, errors.New("unexpected data after request body")
	}
	return *req, nil
}

func (h *Handler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	status := struct {
		PortWorking   bool `json:"port_working"`
		ServerWorking bool `json:"server_working"`
	}{
		PortWorking:   true,
		ServerWorking: true,
	}
	writeJSON(w, http.StatusOK, status)
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.NewLogger("handlers").Err(err).Error("Failed to encode response")
	}
}
