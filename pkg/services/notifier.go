package services

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/schemaforge/pkg/logging"
	"github.com/ekaya-inc/schemaforge/pkg/models"
)

// Message senders shown in the log pane.
const (
	SenderCatalog     = "Salesforce"
	SenderLoader      = "Loader"
	SenderSchema      = "Schema"
	SenderRecipe      = "Recipe"
	SenderSave        = "Save"
	SenderFile        = "File"
	SenderPreferences = "Preferences"
	SenderMigration   = "Migration"
)

// Notifier delivers user-facing messages.
type Notifier interface {
	Publish(msg models.LogMessage)
}

// notify formats and publishes one message. Text passes through the
// sanitizer so tokens never reach the UI.
func notify(n Notifier, sender string, severity models.Severity, format string, args ...any) {
	if n == nil {
		return
	}
	n.Publish(models.LogMessage{
		Sender:   sender,
		Severity: severity,
		Message:  logging.SanitizeText(fmt.Sprintf(format, args...)),
		Time:     time.Now().UTC(),
	})
}

// MessageHub fans messages out to subscribers and keeps a short history for
// late joiners. Slow subscribers miss messages rather than block publishers.
type MessageHub struct {
	mu          sync.Mutex
	subscribers map[int]chan models.LogMessage
	nextID      int
	history     []models.LogMessage
	historySize int
	logger      *zap.Logger
}

// NewMessageHub creates a hub that remembers the last historySize messages.
func NewMessageHub(historySize int, logger *zap.Logger) *MessageHub {
	return &MessageHub{
		subscribers: make(map[int]chan models.LogMessage),
		historySize: historySize,
		logger:      logger.Named("messages"),
	}
}

// Publish records msg, mirrors it to the process log and hands it to every
// subscriber.
func (h *MessageHub) Publish(msg models.LogMessage) {
	if msg.Time.IsZero() {
		msg.Time = time.Now().UTC()
	}

	fields := []zap.Field{zap.String("sender", msg.Sender), zap.String("message", msg.Message)}
	switch msg.Severity {
	case models.SeverityError:
		h.logger.Error("user message", fields...)
	case models.SeverityWarning:
		h.logger.Warn("user message", fields...)
	default:
		h.logger.Debug("user message", fields...)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.historySize > 0 {
		h.history = append(h.history, msg)
		if over := len(h.history) - h.historySize; over > 0 {
			h.history = append([]models.LogMessage(nil), h.history[over:]...)
		}
	}

	for id, ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			h.logger.Debug("dropping message for slow subscriber", zap.Int("subscriber", id))
		}
	}
}

// SubscribeWithHistory returns the remembered messages, oldest first, and a
// channel of every message published after them. The returned function ends
// the subscription and closes the channel.
func (h *MessageHub) SubscribeWithHistory(buffer int) ([]models.LogMessage, <-chan models.LogMessage, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan models.LogMessage, buffer)
	h.subscribers[id] = ch
	history := append([]models.LogMessage(nil), h.history...)

	var once sync.Once
	return history, ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subscribers, id)
			close(ch)
		})
	}
}

// Recent returns the remembered messages, oldest first.
func (h *MessageHub) Recent() []models.LogMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.LogMessage(nil), h.history...)
}

var _ Notifier = (*MessageHub)(nil)
