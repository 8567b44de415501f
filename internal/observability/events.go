package observability

import (
	"strings"

	"mockchat/internal/models"
)

type EventEnvelope struct {
	EventType string `json:"event_type"`
	EventName string `json:"event_name"`
	ChatID    string `json:"chat_id,omitempty"`
	Payload   any    `json:"payload"`
}

// NewStoreEnvelope wraps a store event for the broker.
func NewStoreEnvelope(ev models.StoreEvent) EventEnvelope {
	return EventEnvelope{
		EventType: "store_event",
		EventName: string(ev.Type),
		ChatID:    ev.ChatID,
		Payload:   ev,
	}
}

// RoutingKey maps an event type to a topic routing key, e.g. "chat.message.added".
func RoutingKey(t models.EventType) string {
	name := string(t)
	switch {
	case strings.HasPrefix(name, "chat_"):
		return "chat." + strings.TrimPrefix(name, "chat_")
	case strings.HasPrefix(name, "status_"):
		return "chat.status." + strings.TrimPrefix(name, "status_")
	case strings.HasPrefix(name, "user_"):
		return "chat.user." + strings.TrimPrefix(name, "user_")
	default:
		return "chat." + strings.ReplaceAll(name, "_", ".")
	}
}

func BuildHeaders(requestID, traceID string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	return headers
}
