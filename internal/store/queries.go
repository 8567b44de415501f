package store

import (
	"slices"
	"strings"
	"time"

	"mockchat/internal/models"
)

// savedMessagesIntro opens every saved-messages chat.
const savedMessagesIntro = "This is your personal space. Use it for notes, reminders, or to save messages."

// Users returns copies of all users.
func (s *Store) Users() []models.User {
	snap := s.Snapshot()
	out := make([]models.User, len(snap.Users))
	for i, u := range snap.Users {
		out[i] = u.Clone()
	}
	return out
}

// User returns a copy of one user.
func (s *Store) User(userID string) (models.User, error) {
	for _, u := range s.Snapshot().Users {
		if u.ID == userID {
			return u.Clone(), nil
		}
	}
	return models.User{}, ErrUserNotFound
}

// Chat returns a copy of one chat.
func (s *Store) Chat(chatID string) (models.Chat, error) {
	for _, c := range s.Snapshot().Chats {
		if c.ID == chatID {
			return c.Clone(), nil
		}
	}
	return models.Chat{}, ErrChatNotFound
}

// Message returns a copy of one message.
func (s *Store) Message(chatID, messageID string) (models.Message, error) {
	for _, c := range s.Snapshot().Chats {
		if c.ID != chatID {
			continue
		}
		if i := c.MessageIndex(messageID); i >= 0 {
			return c.Messages[i].Clone(), nil
		}
		return models.Message{}, ErrMessageNotFound
	}
	return models.Message{}, ErrChatNotFound
}

// ChatsForUser lists the chats userID takes part in, pinned chats first and then by latest
// activity. Chats without messages keep their list order.
func (s *Store) ChatsForUser(userID string) []models.Chat {
	var out []models.Chat
	for _, c := range s.Snapshot().Chats {
		if c.IsParticipant(userID) {
			out = append(out, c.Clone())
		}
	}
	slices.SortStableFunc(out, func(a, b models.Chat) int {
		if a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		return lastActivity(b).Compare(lastActivity(a))
	})
	return out
}

func lastActivity(c models.Chat) time.Time {
	if m, ok := c.LastMessage(); ok {
		return m.Timestamp
	}
	return time.Time{}
}

// Summaries renders the chat list of userID.
func (s *Store) Summaries(userID string) []models.ChatSummary {
	chats := s.ChatsForUser(userID)
	snap := s.Snapshot()
	out := make([]models.ChatSummary, 0, len(chats))
	for _, c := range chats {
		out = append(out, summarize(snap, c, userID))
	}
	return out
}

// SearchSummaries returns the chat list entries of userID whose title contains term,
// ignoring case. An empty term matches every chat.
func (s *Store) SearchSummaries(userID, term string) []models.ChatSummary {
	all := s.Summaries(userID)
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return all
	}
	out := make([]models.ChatSummary, 0, len(all))
	for _, sum := range all {
		if strings.Contains(strings.ToLower(sum.Title), term) {
			out = append(out, sum)
		}
	}
	return out
}

func summarize(snap *Snapshot, c models.Chat, viewerID string) models.ChatSummary {
	sum := models.ChatSummary{
		ID:        c.ID,
		Type:      c.Type,
		Title:     c.Name,
		Avatar:    c.Avatar,
		IsPinned:  c.IsPinned,
		IsMuted:   c.IsMuted,
		IsBlocked: c.IsBlocked,
		IsPrivate: c.IsPrivate,
	}
	switch {
	case c.IsGroup():
	case c.IsSavedMessages(viewerID):
		sum.Title = "Saved Messages"
		if u, ok := findUser(snap, viewerID); ok {
			sum.Avatar = u.Avatar
		}
	default:
		if others := c.Counterparts(viewerID); len(others) > 0 {
			if u, ok := findUser(snap, others[0]); ok {
				sum.Title = u.Name
				sum.Avatar = u.Avatar
			} else {
				sum.Title = "Unknown user"
			}
		}
		if c.IsPrivate {
			sum.Title = "Private Chat - " + sum.Title
		}
	}
	for _, m := range c.Messages {
		if m.SenderID != viewerID && !m.IsRead {
			sum.UnreadCount++
		}
	}
	if m, ok := c.LastMessage(); ok {
		sum.LastMessage = &m
	}
	return sum
}

func findUser(snap *Snapshot, userID string) (models.User, bool) {
	for _, u := range snap.Users {
		if u.ID == userID {
			return u, true
		}
	}
	return models.User{}, false
}

// SavedMessagesChat returns the personal notes chat of ownerID, creating a pinned one with an
// introduction message if the user has none.
func (s *Store) SavedMessagesChat(ownerID string) (models.Chat, error) {
	for _, c := range s.Snapshot().Chats {
		if c.IsSavedMessages(ownerID) {
			return c.Clone(), nil
		}
	}
	var chat models.Chat
	err := s.mutate("saved_messages", func(t *tx) error {
		for _, c := range t.next.Chats {
			if c.IsSavedMessages(ownerID) {
				chat = c.Clone()
				return nil
			}
		}
		if !t.userExists(ownerID) {
			return ErrUserNotFound
		}
		c := models.Chat{
			ID:           t.newID(),
			Type:         models.ChatDirect,
			Participants: []string{ownerID},
			Messages:     []models.Message{},
			IsPinned:     true,
		}
		t.appendSystemMessage(&c, savedMessagesIntro)
		t.prependChat(c)
		out := c.Clone()
		t.emit(models.StoreEvent{Type: models.EventChatCreated, ChatID: c.ID, UserID: ownerID, Chat: &out})
		chat = c.Clone()
		return nil
	})
	return chat, err
}

// Statuses returns copies of all statuses, newest first.
func (s *Store) Statuses() []models.Status {
	snap := s.Snapshot()
	out := make([]models.Status, len(snap.Statuses))
	for i, st := range snap.Statuses {
		out[i] = st.Clone()
	}
	return out
}

// StatusAuthors groups the current statuses by author. Authors keep the user list order.
func (s *Store) StatusAuthors() []models.StatusAuthor {
	snap := s.Snapshot()
	byUser := make(map[string][]models.Status)
	for _, st := range snap.Statuses {
		byUser[st.UserID] = append(byUser[st.UserID], st.Clone())
	}
	out := make([]models.StatusAuthor, 0, len(byUser))
	for _, u := range snap.Users {
		if statuses, ok := byUser[u.ID]; ok {
			out = append(out, models.StatusAuthor{User: u.Clone(), Statuses: statuses})
		}
	}
	return out
}

// Status returns a copy of one status.
func (s *Store) Status(statusID string) (models.Status, error) {
	for _, st := range s.Snapshot().Statuses {
		if st.ID == statusID {
			return st.Clone(), nil
		}
	}
	return models.Status{}, ErrStatusNotFound
}
