package store

import (
	"fmt"
	"time"

	"mockchat/internal/models"
)

// Snapshot is an immutable view of the whole store. Callers must not modify it.
type Snapshot struct {
	Version  uint64
	Users    []models.User
	Chats    []models.Chat
	Statuses []models.Status
}

// MessageDraft is the caller-supplied part of a new message.
type MessageDraft struct {
	SenderID    string
	Text        string
	Payload     models.Payload
	IsForwarded bool
}

// ChatDraft is the caller-supplied part of a new chat.
type ChatDraft struct {
	Type         models.ChatType
	Name         string
	Description  string
	Avatar       string
	Participants []string
	IsPrivate    bool
}

// GroupDetails carries the group fields to change; nil means unchanged.
type GroupDetails struct {
	Name        *string
	Description *string
}

// StatusDraft is the caller-supplied part of a new status.
type StatusDraft struct {
	UserID  string
	Type    models.StatusType
	Content string
}

// ProfileUpdate carries the profile fields to change; nil means unchanged.
type ProfileUpdate struct {
	Name       *string
	Avatar     *string
	About      *string
	Notes      []string
	Music      *models.Music
	ClearMusic bool
}

// CallKind is the media kind of a finished call.
type CallKind string

const (
	CallVideo CallKind = "video"
	CallAudio CallKind = "audio"
)

// FormatCallDuration renders a call length as [h:]mm:ss.
func FormatCallDuration(d time.Duration) string {
	total := int(d / time.Second)
	if total < 0 {
		total = 0
	}
	h := (total / 3600) % 24
	m := (total / 60) % 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
