package store

import (
	"fmt"
	"strings"

	"mockchat/internal/models"
)

// AddChat creates a chat with a fresh id and no messages. The creator is always a participant;
// for groups it is also the only admin. onCreated, if set, runs after the chat is visible.
func (s *Store) AddChat(draft ChatDraft, creatorID string, onCreated func(models.Chat)) (models.Chat, error) {
	var created models.Chat
	err := s.mutate("add_chat", func(t *tx) error {
		c, err := t.addChat(draft, creatorID)
		created = c
		return err
	})
	if err != nil {
		return models.Chat{}, err
	}
	if onCreated != nil {
		onCreated(created.Clone())
	}
	return created, nil
}

func (t *tx) addChat(draft ChatDraft, creatorID string) (models.Chat, error) {
	if !t.userExists(creatorID) {
		return models.Chat{}, ErrUserNotFound
	}
	participants := []string{creatorID}
	for _, id := range draft.Participants {
		if id == creatorID || containsID(participants, id) {
			continue
		}
		if !t.userExists(id) {
			return models.Chat{}, fmt.Errorf("participant %s: %w", id, ErrUserNotFound)
		}
		participants = append(participants, id)
	}

	c := models.Chat{
		ID:           t.newID(),
		Type:         draft.Type,
		Participants: participants,
		Messages:     []models.Message{},
		IsPrivate:    draft.IsPrivate,
	}
	switch draft.Type {
	case models.ChatGroup:
		if containsID(participants, models.AssistantUserID) {
			return models.Chat{}, errAssistantMember
		}
		name := strings.TrimSpace(draft.Name)
		if name == "" {
			return models.Chat{}, invalid("group name is required")
		}
		c.Name = name
		c.Description = draft.Description
		c.Avatar = draft.Avatar
		c.AdminIDs = []string{creatorID}
	case models.ChatDirect:
		if len(participants) > 2 {
			return models.Chat{}, invalid("a direct chat has at most two participants")
		}
	default:
		return models.Chat{}, invalid(fmt.Sprintf("unknown chat type %q", draft.Type))
	}

	t.prependChat(c)
	out := c.Clone()
	t.emit(models.StoreEvent{Type: models.EventChatCreated, ChatID: c.ID, UserID: creatorID, Chat: &out})
	return c.Clone(), nil
}

// CreateConversation applies the "new chat" dialog rule: one selected user yields a private
// direct chat, two or more yield a named group. The assistant cannot be selected.
func (s *Store) CreateConversation(creatorID, name string, participantIDs []string, onCreated func(models.Chat)) (models.Chat, error) {
	others := make([]string, 0, len(participantIDs))
	for _, id := range participantIDs {
		if id == models.AssistantUserID {
			return models.Chat{}, errAssistantMember
		}
		if id != creatorID && !containsID(others, id) {
			others = append(others, id)
		}
	}
	switch len(others) {
	case 0:
		return models.Chat{}, invalid("select at least one user")
	case 1:
		return s.AddChat(ChatDraft{Type: models.ChatDirect, Participants: others, IsPrivate: true}, creatorID, onCreated)
	default:
		if strings.TrimSpace(name) == "" {
			return models.Chat{}, invalid("group name is required")
		}
		return s.AddChat(ChatDraft{Type: models.ChatGroup, Name: name, Participants: others}, creatorID, onCreated)
	}
}

// FindOrCreateDirectChat returns the two-party direct chat between ownerID and otherUserID,
// creating it if needed. Lookup and creation happen in one mutation so concurrent callers
// never produce two chats for the same pair.
func (s *Store) FindOrCreateDirectChat(ownerID, otherUserID string, onReady func(models.Chat)) (models.Chat, error) {
	if ownerID == otherUserID {
		return models.Chat{}, invalid("cannot open a direct chat with yourself")
	}
	var chat models.Chat
	err := s.mutate("find_or_create_direct_chat", func(t *tx) error {
		for _, c := range t.next.Chats {
			if c.IsDirectBetween(ownerID, otherUserID) {
				chat = c.Clone()
				return nil
			}
		}
		if !t.userExists(otherUserID) {
			return ErrUserNotFound
		}
		c, err := t.addChat(ChatDraft{Type: models.ChatDirect, Participants: []string{otherUserID}}, ownerID)
		chat = c
		return err
	})
	if err != nil {
		return models.Chat{}, err
	}
	if onReady != nil {
		onReady(chat.Clone())
	}
	return chat, nil
}

// TogglePinChat flips the pinned flag and returns the new value.
func (s *Store) TogglePinChat(chatID string) (bool, error) {
	return s.toggleChatFlag("toggle_pin_chat", chatID, func(c *models.Chat) *bool { return &c.IsPinned })
}

// ToggleMuteChat flips the muted flag and returns the new value.
func (s *Store) ToggleMuteChat(chatID string) (bool, error) {
	return s.toggleChatFlag("toggle_mute_chat", chatID, func(c *models.Chat) *bool { return &c.IsMuted })
}

func (s *Store) toggleChatFlag(op, chatID string, field func(*models.Chat) *bool) (bool, error) {
	var value bool
	err := s.mutate(op, func(t *tx) error {
		i, c, err := t.chat(chatID)
		if err != nil {
			return err
		}
		f := field(&c)
		*f = !*f
		value = *f
		t.putChat(i, c)
		t.emitChatUpdated(c)
		return nil
	})
	return value, err
}

// BlockChat blocks a chat for good and narrates it. There is no unblock; blocking an already
// blocked chat changes nothing.
func (s *Store) BlockChat(chatID, actorID string) error {
	return s.mutate("block_chat", func(t *tx) error {
		i, c, err := t.chat(chatID)
		if err != nil {
			return err
		}
		if !c.IsParticipant(actorID) {
			return ErrNotParticipant
		}
		if c.IsBlocked {
			return nil
		}
		var text string
		if c.IsGroup() {
			text = fmt.Sprintf("You blocked the group %q. You can no longer send messages.", c.Name)
		} else {
			others := c.Counterparts(actorID)
			if len(others) == 0 {
				return invalid("cannot block your own saved messages")
			}
			text = fmt.Sprintf("You blocked %s.", t.userName(others[0]))
		}
		c.IsBlocked = true
		t.appendSystemMessage(&c, text)
		t.putChat(i, c)
		t.emitChatUpdated(c)
		return nil
	})
}

// DeleteChat removes a chat and its messages.
func (s *Store) DeleteChat(chatID string) error {
	return s.mutate("delete_chat", func(t *tx) error {
		i := t.chatIndex(chatID)
		if i < 0 {
			return ErrChatNotFound
		}
		t.removeChat(i)
		t.emit(models.StoreEvent{Type: models.EventChatDeleted, ChatID: chatID})
		return nil
	})
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
