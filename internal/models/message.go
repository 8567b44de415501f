package models

import (
	"encoding/json"
	"errors"
	"time"
)

// SystemSenderID is the reserved sender of narration messages.
const SystemSenderID = "system"

// DeletedMessageText replaces the text of a tombstoned message.
const DeletedMessageText = "This message was deleted"

// Payload is the non-text content of a message. It is implemented by *Poll and *Attachment
// only, so a message can never carry both.
type Payload interface {
	payloadKind() string
	clonePayload() Payload
}

// PollOption is one answer of a poll with the ids of users who picked it.
type PollOption struct {
	ID    string   `json:"id"`
	Text  string   `json:"text"`
	Votes []string `json:"votes"`
}

// Poll is a single-choice poll.
type Poll struct {
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
}

func (*Poll) payloadKind() string { return "poll" }

func (p *Poll) clonePayload() Payload { return p.Clone() }

// Clone deep-copies the poll.
func (p *Poll) Clone() *Poll {
	out := &Poll{Question: p.Question, Options: make([]PollOption, len(p.Options))}
	for i, opt := range p.Options {
		out.Options[i] = PollOption{ID: opt.ID, Text: opt.Text, Votes: append([]string{}, opt.Votes...)}
	}
	return out
}

// Option returns the index of the option with the given id or -1.
func (p *Poll) Option(optionID string) int {
	for i, opt := range p.Options {
		if opt.ID == optionID {
			return i
		}
	}
	return -1
}

// VoteOf returns the option a user voted for.
func (p *Poll) VoteOf(userID string) (string, bool) {
	for _, opt := range p.Options {
		for _, v := range opt.Votes {
			if v == userID {
				return opt.ID, true
			}
		}
	}
	return "", false
}

// AttachmentType is the kind of attached media.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentFile  AttachmentType = "file"
	AttachmentGIF   AttachmentType = "gif"
)

// Attachment is a file, image or GIF referenced by URL (often a data URL).
type Attachment struct {
	Type AttachmentType `json:"type"`
	URL  string         `json:"url"`
	Name string         `json:"name,omitempty"`
	Size int64          `json:"size,omitempty"`
}

func (*Attachment) payloadKind() string { return "attachment" }

func (a *Attachment) clonePayload() Payload {
	c := *a
	return &c
}

// Message is a single chat message.
type Message struct {
	ID          string
	SenderID    string
	Text        string
	Timestamp   time.Time
	IsRead      bool
	IsDeleted   bool
	IsForwarded bool
	Payload     Payload
}

// IsSystem reports whether the message is a narration message.
func (m Message) IsSystem() bool {
	return m.SenderID == SystemSenderID
}

// Poll returns the poll payload, if any.
func (m Message) Poll() (*Poll, bool) {
	p, ok := m.Payload.(*Poll)
	return p, ok
}

// Attachment returns the attachment payload, if any.
func (m Message) Attachment() (*Attachment, bool) {
	a, ok := m.Payload.(*Attachment)
	return a, ok
}

// IsPlainText reports whether the message carries no poll or attachment.
func (m Message) IsPlainText() bool {
	return m.Payload == nil
}

// Clone deep-copies the message including its payload.
func (m Message) Clone() Message {
	out := m
	if m.Payload != nil {
		out.Payload = m.Payload.clonePayload()
	}
	return out
}

type messageJSON struct {
	ID          string      `json:"id"`
	SenderID    string      `json:"sender_id"`
	Text        string      `json:"text"`
	Timestamp   time.Time   `json:"timestamp"`
	IsRead      bool        `json:"is_read"`
	IsDeleted   bool        `json:"is_deleted,omitempty"`
	IsForwarded bool        `json:"is_forwarded,omitempty"`
	Poll        *Poll       `json:"poll,omitempty"`
	Attachment  *Attachment `json:"attachment,omitempty"`
}

// MarshalJSON flattens the payload into "poll" or "attachment".
func (m Message) MarshalJSON() ([]byte, error) {
	out := messageJSON{
		ID:          m.ID,
		SenderID:    m.SenderID,
		Text:        m.Text,
		Timestamp:   m.Timestamp,
		IsRead:      m.IsRead,
		IsDeleted:   m.IsDeleted,
		IsForwarded: m.IsForwarded,
	}
	switch p := m.Payload.(type) {
	case *Poll:
		out.Poll = p
	case *Attachment:
		out.Attachment = p
	}
	return json.Marshal(out)
}

// ErrAmbiguousPayload is returned when a message carries both a poll and an attachment.
var ErrAmbiguousPayload = errors.New("message cannot carry both a poll and an attachment")

// UnmarshalJSON accepts at most one of "poll" and "attachment".
func (m *Message) UnmarshalJSON(data []byte) error {
	var in messageJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Poll != nil && in.Attachment != nil {
		return ErrAmbiguousPayload
	}
	*m = Message{
		ID:          in.ID,
		SenderID:    in.SenderID,
		Text:        in.Text,
		Timestamp:   in.Timestamp,
		IsRead:      in.IsRead,
		IsDeleted:   in.IsDeleted,
		IsForwarded: in.IsForwarded,
	}
	switch {
	case in.Poll != nil:
		m.Payload = in.Poll
	case in.Attachment != nil:
		m.Payload = in.Attachment
	}
	return nil
}
