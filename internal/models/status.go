package models

import "time"

// StatusType is the kind of status content.
type StatusType string

const (
	StatusText  StatusType = "text"
	StatusImage StatusType = "image"
)

// Reaction is one user's emoji on a status.
type Reaction struct {
	UserID string `json:"user_id"`
	Emoji  string `json:"emoji"`
}

// Status is an ephemeral per-user broadcast. Content is the text or an image URL.
type Status struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Type      StatusType `json:"type"`
	Content   string     `json:"content"`
	Timestamp time.Time  `json:"timestamp"`
	Viewers   []string   `json:"viewers"`
	Reactions []Reaction `json:"reactions"`
}

// ReactionOf returns the emoji a user reacted with.
func (s Status) ReactionOf(userID string) (string, bool) {
	for _, r := range s.Reactions {
		if r.UserID == userID {
			return r.Emoji, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the status.
func (s Status) Clone() Status {
	out := s
	out.Viewers = append([]string{}, s.Viewers...)
	out.Reactions = append([]Reaction{}, s.Reactions...)
	return out
}

// StatusAuthor is a user together with their current statuses, newest first.
type StatusAuthor struct {
	User     User     `json:"user"`
	Statuses []Status `json:"statuses"`
}
