package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/models"
	"github.com/ekaya-inc/schemaforge/pkg/services"
)

// MessagesHandler streams user-facing log messages.
type MessagesHandler struct {
	hub    *services.MessageHub
	logger *zap.Logger
}

// NewMessagesHandler creates a messages handler.
func NewMessagesHandler(hub *services.MessageHub, logger *zap.Logger) *MessagesHandler {
	return &MessagesHandler{hub: hub, logger: logger}
}

// RegisterRoutes registers the messages handler's routes on the given mux.
func (h *MessagesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/messages", h.Recent)
	mux.HandleFunc("GET /api/messages/stream", h.Stream)
}

// Recent handles GET /api/messages
func (h *MessagesHandler) Recent(w http.ResponseWriter, r *http.Request) {
	writeOK(w, h.hub.Recent(), h.logger)
}

// Stream handles GET /api/messages/stream
// Replays recent messages, then streams new ones until the client leaves.
func (h *MessagesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher := startSSE(w, h.logger)
	if flusher == nil {
		return
	}

	history, messages, unsubscribe := h.hub.SubscribeWithHistory(64)
	defer unsubscribe()

	for _, msg := range history {
		h.send(w, msg)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			h.send(w, msg)
			flusher.Flush()
		}
	}
}

func (h *MessagesHandler) send(w http.ResponseWriter, msg models.LogMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
}
