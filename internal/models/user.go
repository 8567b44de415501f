package models

import "time"

// Role is the account role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Presence is the online state shown next to a user.
type Presence string

const (
	PresenceOnline  Presence = "online"
	PresenceOffline Presence = "offline"
)

// AssistantUserID is the AI assistant participant. It never takes part in simulated replies
// and its presence never changes.
const AssistantUserID = "meta-ai"

// Music is the "now playing" card of a profile.
type Music struct {
	Artist   string `json:"artist"`
	Song     string `json:"song"`
	AlbumArt string `json:"album_art"`
}

// User represents a chat user.
type User struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	Email    string    `json:"email"`
	Role     Role      `json:"role"`
	Status   Presence  `json:"status"`
	LastSeen time.Time `json:"last_seen"`
	About    string    `json:"about,omitempty"`
	Notes    []string  `json:"notes"`
	Music    *Music    `json:"music,omitempty"`
	Likes    int       `json:"likes"`
}

// IsAdmin reports whether the user may use the admin dashboard.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Clone returns a copy that shares no slices or pointers with u.
func (u User) Clone() User {
	out := u
	out.Notes = append([]string(nil), u.Notes...)
	if u.Music != nil {
		m := *u.Music
		out.Music = &m
	}
	return out
}
