package models

import "slices"

// ChatType distinguishes group conversations from direct ones.
type ChatType string

const (
	ChatDirect ChatType = "direct"
	ChatGroup  ChatType = "group"
)

// Chat is a conversation. Name, Description, Avatar and AdminIDs are only used by groups.
type Chat struct {
	ID              string    `json:"id"`
	Type            ChatType  `json:"type"`
	Name            string    `json:"name,omitempty"`
	Description     string    `json:"description,omitempty"`
	Avatar          string    `json:"avatar,omitempty"`
	Participants    []string  `json:"participants"`
	AdminIDs        []string  `json:"admin_ids,omitempty"`
	Messages        []Message `json:"messages"`
	IsPinned        bool      `json:"is_pinned"`
	IsMuted         bool      `json:"is_muted"`
	IsBlocked       bool      `json:"is_blocked"`
	IsPrivate       bool      `json:"is_private,omitempty"`
	PinnedMessageID string    `json:"pinned_message_id,omitempty"`
}

// IsGroup reports whether the chat is a group.
func (c Chat) IsGroup() bool {
	return c.Type == ChatGroup
}

// IsParticipant checks whether a user belongs to the chat.
func (c Chat) IsParticipant(userID string) bool {
	return slices.Contains(c.Participants, userID)
}

// IsAdmin checks whether a user administers the group.
func (c Chat) IsAdmin(userID string) bool {
	return c.IsGroup() && slices.Contains(c.AdminIDs, userID)
}

// IsSavedMessages reports whether the chat is the owner's personal notes chat.
func (c Chat) IsSavedMessages(ownerID string) bool {
	return c.Type == ChatDirect && len(c.Participants) == 1 && c.Participants[0] == ownerID
}

// IsDirectBetween reports whether the chat is the two-party direct chat of a and b.
func (c Chat) IsDirectBetween(a, b string) bool {
	return c.Type == ChatDirect && len(c.Participants) == 2 && c.IsParticipant(a) && c.IsParticipant(b)
}

// Counterparts returns the participants other than userID.
func (c Chat) Counterparts(userID string) []string {
	out := make([]string, 0, len(c.Participants))
	for _, id := range c.Participants {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}

// LastMessage returns the most recent message, if any.
func (c Chat) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// MessageIndex returns the position of a message or -1.
func (c Chat) MessageIndex(messageID string) int {
	return slices.IndexFunc(c.Messages, func(m Message) bool { return m.ID == messageID })
}

// Clone returns a deep copy of the chat.
func (c Chat) Clone() Chat {
	out := c
	out.Participants = append([]string(nil), c.Participants...)
	if c.AdminIDs != nil {
		out.AdminIDs = append([]string(nil), c.AdminIDs...)
	}
	out.Messages = make([]Message, len(c.Messages))
	for i, m := range c.Messages {
		out.Messages[i] = m.Clone()
	}
	return out
}

// ChatSummary is the chat list entry returned to clients.
type ChatSummary struct {
	ID          string   `json:"id"`
	Type        ChatType `json:"type"`
	Title       string   `json:"title"`
	Avatar      string   `json:"avatar,omitempty"`
	IsPinned    bool     `json:"is_pinned"`
	IsMuted     bool     `json:"is_muted"`
	IsBlocked   bool     `json:"is_blocked"`
	IsPrivate   bool     `json:"is_private,omitempty"`
	UnreadCount int      `json:"unread_count"`
	LastMessage *Message `json:"last_message,omitempty"`
}
