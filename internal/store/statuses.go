package store

import (
	"fmt"
	"strings"

	"mockchat/internal/models"
)

// AddStatus publishes a new status with no viewers or reactions. Newest statuses come first.
func (s *Store) AddStatus(draft StatusDraft) (models.Status, error) {
	var created models.Status
	err := s.mutate("add_status", func(t *tx) error {
		if !t.userExists(draft.UserID) {
			return ErrUserNotFound
		}
		if strings.TrimSpace(draft.Content) == "" {
			return invalid("status content is empty")
		}
		switch draft.Type {
		case models.StatusText, models.StatusImage:
		default:
			return invalid(fmt.Sprintf("unknown status type %q", draft.Type))
		}
		created = models.Status{
			ID:        t.newID(),
			UserID:    draft.UserID,
			Type:      draft.Type,
			Content:   draft.Content,
			Timestamp: t.now,
			Viewers:   []string{},
			Reactions: []models.Reaction{},
		}
		t.prependStatus(created)
		out := created.Clone()
		t.emit(models.StoreEvent{Type: models.EventStatusAdded, StatusID: created.ID, UserID: draft.UserID, Status: &out})
		return nil
	})
	return created, err
}

// MarkStatusAsViewed adds viewerID to the status viewers. Viewers only ever grow.
func (s *Store) MarkStatusAsViewed(statusID, viewerID string) error {
	return s.mutate("view_status", func(t *tx) error {
		i, st, err := t.status(statusID)
		if err != nil {
			return err
		}
		if containsID(st.Viewers, viewerID) {
			return nil
		}
		st.Viewers = append(st.Viewers, viewerID)
		t.putStatus(i, st)
		out := st.Clone()
		t.emit(models.StoreEvent{Type: models.EventStatusUpdated, StatusID: statusID, UserID: viewerID, Status: &out})
		return nil
	})
}

// AddReactionToStatus sets userID's reaction. Reacting with the current emoji removes the
// reaction and a different emoji replaces it.
func (s *Store) AddReactionToStatus(statusID, userID, emoji string) (models.Status, error) {
	if strings.TrimSpace(emoji) == "" {
		return models.Status{}, invalid("emoji is empty")
	}
	var result models.Status
	err := s.mutate("react_status", func(t *tx) error {
		i, st, err := t.status(statusID)
		if err != nil {
			return err
		}
		j := -1
		for k, r := range st.Reactions {
			if r.UserID == userID {
				j = k
				break
			}
		}
		switch {
		case j < 0:
			st.Reactions = append(st.Reactions, models.Reaction{UserID: userID, Emoji: emoji})
		case st.Reactions[j].Emoji == emoji:
			st.Reactions = append(st.Reactions[:j], st.Reactions[j+1:]...)
		default:
			st.Reactions[j].Emoji = emoji
		}
		t.putStatus(i, st)
		out := st.Clone()
		t.emit(models.StoreEvent{Type: models.EventStatusUpdated, StatusID: statusID, UserID: userID, Status: &out})
		result = st.Clone()
		return nil
	})
	return result, err
}

// ReplyToStatus sends text to the status owner in the direct chat between them, creating the
// chat if it does not exist yet.
func (s *Store) ReplyToStatus(statusID, senderID, text string) (models.Chat, models.Message, error) {
	st, err := s.Status(statusID)
	if err != nil {
		return models.Chat{}, models.Message{}, err
	}
	if st.UserID == senderID {
		return models.Chat{}, models.Message{}, invalid("cannot reply to your own status")
	}
	chat, err := s.FindOrCreateDirectChat(senderID, st.UserID, nil)
	if err != nil {
		return models.Chat{}, models.Message{}, err
	}
	msg, err := s.AddMessage(chat.ID, MessageDraft{SenderID: senderID, Text: text})
	if err != nil {
		return models.Chat{}, models.Message{}, err
	}
	return chat, msg, nil
}
