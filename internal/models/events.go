package models

import (
	"encoding/json"
	"time"
)

// EventType names a change committed to the store or produced by the simulation.
type EventType string

const (
	EventMessageAdded   EventType = "message_added"
	EventMessagesRead   EventType = "messages_read"
	EventMessageDeleted EventType = "message_deleted"
	EventMessageUpdated EventType = "message_updated"
	EventChatCreated    EventType = "chat_created"
	EventChatUpdated    EventType = "chat_updated"
	EventChatDeleted    EventType = "chat_deleted"
	EventStatusAdded    EventType = "status_added"
	EventStatusUpdated  EventType = "status_updated"
	EventUserAdded      EventType = "user_added"
	EventUserUpdated    EventType = "user_updated"
	EventUserRemoved    EventType = "user_removed"
	EventTypingStarted  EventType = "typing_started"
	EventTypingStopped  EventType = "typing_stopped"
)

// StoreEvent describes one committed change. Only the fields relevant to Type are set.
type StoreEvent struct {
	Type     EventType `json:"type"`
	ChatID   string    `json:"chat_id,omitempty"`
	StatusID string    `json:"status_id,omitempty"`
	UserID   string    `json:"user_id,omitempty"`
	Message  *Message  `json:"message,omitempty"`
	Chat     *Chat     `json:"chat,omitempty"`
	Status   *Status   `json:"status,omitempty"`
	User     *User     `json:"user,omitempty"`
	At       time.Time `json:"at"`
}

// ChatEvent is broadcast through websockets to viewers of a chat.
type ChatEvent struct {
	Type      EventType `json:"type"`
	ChatID    string    `json:"chat_id"`
	Message   *Message  `json:"message,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	UserID    string    `json:"user_id,omitempty"`
	Chat      *Chat     `json:"chat,omitempty"`
}

// JournalEntry is a persisted store event.
type JournalEntry struct {
	ID         int64           `db:"id" json:"id"`
	EventType  string          `db:"event_type" json:"event_type"`
	ChatID     string          `db:"chat_id" json:"chat_id"`
	UserID     string          `db:"user_id" json:"user_id"`
	Payload    json.RawMessage `db:"payload" json:"payload"`
	OccurredAt time.Time       `db:"occurred_at" json:"occurred_at"`
}
