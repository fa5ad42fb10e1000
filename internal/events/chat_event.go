package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInfo    EventType = "info"
	EventWarn    EventType = "warn"
	EventSuccess EventType = "success"
	EventError   EventType = "error"
)

// Event names emitted by the conversation core. Token events carry the
// cumulative assistant text streamed so far; done/summary events mark the
// end of a turn or of a whole conversation.
const (
	ChatEventToken   = "events:chat:token"
	ChatEventDone    = "events:chat:done"
	ChatEventError   = "events:chat:error"
	ChatEventSummary = "events:chat:summary"
)

// ChatEvent is a simple struct representing a backend event payload
type ChatEvent struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	Message    string            `json:"message"`
	Timestamp  time.Time         `json:"timestamp"`
	SessionKey string            `json:"sessionKey,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type contextKey string

const sessionContextKey contextKey = "stillpoint/events/session"

// WithSession returns a derived context annotated with the given session key
// so event emitters can automatically scope payloads.
func WithSession(ctx context.Context, sessionKey string) context.Context {
	if strings.TrimSpace(sessionKey) == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionContextKey, sessionKey)
}

// SessionFromContext extracts the session key associated with ctx.
func SessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(sessionContextKey).(string); ok {
		return v
	}
	return ""
}

func CreateChatEvent(eventType EventType, message string) ChatEvent {
	return ChatEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// NewInfo creates an info ChatEvent.
func NewInfo(message string) ChatEvent {
	return CreateChatEvent(EventInfo, message)
}

// NewWarn creates a warn ChatEvent.
func NewWarn(message string) ChatEvent {
	return CreateChatEvent(EventWarn, message)
}

// NewError creates an error ChatEvent.
func NewError(message string) ChatEvent {
	return CreateChatEvent(EventError, message)
}

// NewSuccess creates a success ChatEvent.
func NewSuccess(message string) ChatEvent {
	return CreateChatEvent(EventSuccess, message)
}
