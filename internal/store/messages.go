package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"mockchat/internal/models"
)

// AddMessage appends a message to a chat with a generated id and timestamp, unread.
func (s *Store) AddMessage(chatID string, draft MessageDraft) (models.Message, error) {
	var added models.Message
	err := s.mutate("add_message", func(t *tx) error {
		m, err := t.addMessage(chatID, draft)
		added = m
		return err
	})
	return added, err
}

func (t *tx) addMessage(chatID string, draft MessageDraft) (models.Message, error) {
	i, c, err := t.chat(chatID)
	if err != nil {
		return models.Message{}, err
	}
	system := draft.SenderID == models.SystemSenderID
	if !system {
		if !t.userExists(draft.SenderID) {
			return models.Message{}, ErrUserNotFound
		}
		if !c.IsParticipant(draft.SenderID) {
			return models.Message{}, ErrNotParticipant
		}
		if c.IsBlocked {
			return models.Message{}, ErrChatBlocked
		}
	}
	if err := validatePayload(draft); err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		SenderID:    draft.SenderID,
		Text:        draft.Text,
		IsForwarded: draft.IsForwarded,
	}
	if draft.Payload != nil {
		msg.Payload = models.Message{Payload: draft.Payload}.Clone().Payload
		if p, ok := msg.Payload.(*models.Poll); ok {
			t.normalizePoll(p)
		}
	}
	msg = t.appendMessage(&c, msg)
	t.putChat(i, c)
	return msg.Clone(), nil
}

func validatePayload(draft MessageDraft) error {
	switch p := draft.Payload.(type) {
	case nil:
		if strings.TrimSpace(draft.Text) == "" {
			return invalid("message text is empty")
		}
	case *models.Poll:
		if strings.TrimSpace(p.Question) == "" {
			return invalid("poll question is empty")
		}
		valid := 0
		for _, opt := range p.Options {
			if strings.TrimSpace(opt.Text) != "" {
				valid++
			}
		}
		if valid < 2 {
			return invalid("a poll needs at least two options")
		}
	case *models.Attachment:
		if p.URL == "" {
			return invalid("attachment url is empty")
		}
		switch p.Type {
		case models.AttachmentImage, models.AttachmentFile, models.AttachmentGIF:
		default:
			return invalid(fmt.Sprintf("unknown attachment type %q", p.Type))
		}
	}
	return nil
}

// normalizePoll drops blank options, trims text and gives every option a unique id.
func (t *tx) normalizePoll(p *models.Poll) {
	p.Question = strings.TrimSpace(p.Question)
	seen := make(map[string]bool, len(p.Options))
	opts := p.Options[:0]
	for _, opt := range p.Options {
		opt.Text = strings.TrimSpace(opt.Text)
		if opt.Text == "" {
			continue
		}
		if opt.ID == "" || seen[opt.ID] {
			opt.ID = "opt-" + t.newID()
		}
		seen[opt.ID] = true
		if opt.Votes == nil {
			opt.Votes = []string{}
		}
		opts = append(opts, opt)
	}
	p.Options = opts
}

// MarkMessagesAsRead marks every message not sent by readerID as read and returns how many
// changed. Calling it again is a no-op that leaves the snapshot untouched.
func (s *Store) MarkMessagesAsRead(chatID, readerID string) (int, error) {
	var changed int
	err := s.mutate("mark_read", func(t *tx) error {
		i := t.chatIndex(chatID)
		if i < 0 {
			return ErrChatNotFound
		}
		for _, m := range t.next.Chats[i].Messages {
			if m.SenderID != readerID && !m.IsRead {
				changed++
			}
		}
		if changed == 0 {
			return nil
		}
		c := t.next.Chats[i].Clone()
		for j := range c.Messages {
			if c.Messages[j].SenderID != readerID {
				c.Messages[j].IsRead = true
			}
		}
		t.putChat(i, c)
		t.emit(models.StoreEvent{Type: models.EventMessagesRead, ChatID: chatID, UserID: readerID})
		return nil
	})
	return changed, err
}

// DeleteMessage tombstones a message: the record stays in place with replaced text and no
// payload. Deleting a tombstone again changes nothing.
func (s *Store) DeleteMessage(chatID, messageID string) error {
	return s.mutate("delete_message", func(t *tx) error {
		i, c, err := t.chat(chatID)
		if err != nil {
			return err
		}
		j := c.MessageIndex(messageID)
		if j < 0 {
			return ErrMessageNotFound
		}
		if c.Messages[j].IsDeleted {
			return nil
		}
		c.Messages[j].IsDeleted = true
		c.Messages[j].Text = models.DeletedMessageText
		c.Messages[j].Payload = nil
		t.putChat(i, c)
		out := c.Messages[j].Clone()
		t.emit(models.StoreEvent{Type: models.EventMessageDeleted, ChatID: chatID, Message: &out})
		return nil
	})
}

// ForwardMessage copies the content of msg into every target chat as a forwarded message from
// senderID. Targets that reject the message are reported together; the others still receive it.
func (s *Store) ForwardMessage(senderID string, msg models.Message, targetChatIDs []string) ([]models.Message, error) {
	if len(targetChatIDs) == 0 {
		return nil, invalid("select at least one chat to forward to")
	}
	if msg.IsDeleted {
		return nil, ErrMessageDeleted
	}
	draft := MessageDraft{
		SenderID:    senderID,
		Text:        msg.Text,
		Payload:     msg.Clone().Payload,
		IsForwarded: true,
	}
	var (
		out  []models.Message
		errs []error
	)
	for _, chatID := range targetChatIDs {
		m, err := s.AddMessage(chatID, draft)
		if err != nil {
			errs = append(errs, fmt.Errorf("forward to %s: %w", chatID, err))
			continue
		}
		out = append(out, m)
	}
	return out, errors.Join(errs...)
}

// HandleVote toggles userID's vote on optionID: voting for the current choice retracts it,
// voting for another option moves it. A user never holds two votes in one poll.
func (s *Store) HandleVote(chatID, messageID, optionID, userID string) (*models.Poll, error) {
	var result *models.Poll
	err := s.mutate("vote", func(t *tx) error {
		i, c, err := t.chat(chatID)
		if err != nil {
			return err
		}
		if !c.IsParticipant(userID) {
			return ErrNotParticipant
		}
		j := c.MessageIndex(messageID)
		if j < 0 {
			return ErrMessageNotFound
		}
		if c.Messages[j].IsDeleted {
			return ErrMessageDeleted
		}
		poll, ok := c.Messages[j].Poll()
		if !ok {
			return ErrNotAPoll
		}
		target := poll.Option(optionID)
		if target < 0 {
			return ErrOptionNotFound
		}

		retract := false
		for k := range poll.Options {
			votes := poll.Options[k].Votes[:0]
			for _, v := range poll.Options[k].Votes {
				if v == userID {
					if k == target {
						retract = true
					}
					continue
				}
				votes = append(votes, v)
			}
			poll.Options[k].Votes = votes
		}
		if !retract {
			poll.Options[target].Votes = append(poll.Options[target].Votes, userID)
		}

		t.putChat(i, c)
		out := c.Messages[j].Clone()
		t.emit(models.StoreEvent{Type: models.EventMessageUpdated, ChatID: chatID, UserID: userID, Message: &out})
		result = poll.Clone()
		return nil
	})
	return result, err
}

// TogglePinMessage pins messageID or unpins it if it is already pinned, narrating the change.
func (s *Store) TogglePinMessage(chatID, messageID, actorID string) (bool, error) {
	var pinned bool
	err := s.mutate("toggle_pin_message", func(t *tx) error {
		i, c, err := t.chat(chatID)
		if err != nil {
			return err
		}
		if !c.IsParticipant(actorID) {
			return ErrNotParticipant
		}
		if c.MessageIndex(messageID) < 0 {
			return ErrMessageNotFound
		}
		verb := "pinned"
		if c.PinnedMessageID == messageID {
			c.PinnedMessageID = ""
			verb = "unpinned"
		} else {
			c.PinnedMessageID = messageID
			pinned = true
		}
		t.appendSystemMessage(&c, fmt.Sprintf("%s %s a message.", t.userName(actorID), verb))
		t.putChat(i, c)
		t.emitChatUpdated(c)
		return nil
	})
	return pinned, err
}

// RecordCallEnded narrates the end of a call in the chat.
func (s *Store) RecordCallEnded(chatID string, kind CallKind, duration time.Duration) (models.Message, error) {
	label := "Audio"
	switch kind {
	case CallVideo:
		label = "Video"
	case CallAudio:
	default:
		return models.Message{}, invalid(fmt.Sprintf("unknown call kind %q", kind))
	}
	return s.AddMessage(chatID, MessageDraft{
		SenderID: models.SystemSenderID,
		Text:     fmt.Sprintf("%s call ended. Duration: %s", label, FormatCallDuration(duration)),
	})
}
