package store

import (
	"fmt"
	"strings"

	"mockchat/internal/models"
)

// AddUser registers a user from the admin dashboard. A missing id is generated; role and
// presence default to user and offline.
func (s *Store) AddUser(u models.User) (models.User, error) {
	var created models.User
	err := s.mutate("add_user", func(t *tx) error {
		u.Name = strings.TrimSpace(u.Name)
		u.Email = strings.TrimSpace(u.Email)
		if u.Name == "" || u.Email == "" {
			return invalid("name and email are required")
		}
		if u.ID == "" {
			u.ID = "user-" + t.newID()
		}
		if u.ID == models.SystemSenderID || t.userExists(u.ID) {
			return ErrUserExists
		}
		switch u.Role {
		case "":
			u.Role = models.RoleUser
		case models.RoleUser, models.RoleAdmin:
		default:
			return invalid(fmt.Sprintf("unknown role %q", u.Role))
		}
		if u.Status == "" {
			u.Status = models.PresenceOffline
		}
		if u.LastSeen.IsZero() {
			u.LastSeen = t.now
		}
		if u.Notes == nil {
			u.Notes = []string{}
		}
		created = u.Clone()
		t.appendUser(created)
		out := created.Clone()
		t.emit(models.StoreEvent{Type: models.EventUserAdded, UserID: u.ID, User: &out})
		return nil
	})
	return created, err
}

// RemoveUser deletes a user account. Chats and messages that reference the user are kept.
func (s *Store) RemoveUser(userID string) error {
	return s.mutate("remove_user", func(t *tx) error {
		i := t.userIndex(userID)
		if i < 0 {
			return ErrUserNotFound
		}
		t.removeUser(i)
		t.emit(models.StoreEvent{Type: models.EventUserRemoved, UserID: userID})
		return nil
	})
}

// UpdateUser applies a profile edit.
func (s *Store) UpdateUser(userID string, upd ProfileUpdate) (models.User, error) {
	var updated models.User
	err := s.mutate("update_user", func(t *tx) error {
		i, u, err := t.user(userID)
		if err != nil {
			return err
		}
		if upd.Name != nil {
			name := strings.TrimSpace(*upd.Name)
			if name == "" {
				return invalid("name cannot be empty")
			}
			u.Name = name
		}
		if upd.Avatar != nil {
			u.Avatar = *upd.Avatar
		}
		if upd.About != nil {
			u.About = *upd.About
		}
		if upd.Notes != nil {
			u.Notes = append([]string{}, upd.Notes...)
		}
		switch {
		case upd.ClearMusic:
			u.Music = nil
		case upd.Music != nil:
			m := *upd.Music
			u.Music = &m
		}
		t.putUser(i, u)
		out := u.Clone()
		t.emit(models.StoreEvent{Type: models.EventUserUpdated, UserID: userID, User: &out})
		updated = u.Clone()
		return nil
	})
	return updated, err
}

// LikeUserProfile increments a profile's like counter and returns the new count.
func (s *Store) LikeUserProfile(userID string) (int, error) {
	var likes int
	err := s.mutate("like_user", func(t *tx) error {
		i, u, err := t.user(userID)
		if err != nil {
			return err
		}
		u.Likes++
		likes = u.Likes
		t.putUser(i, u)
		out := u.Clone()
		t.emit(models.StoreEvent{Type: models.EventUserUpdated, UserID: userID, User: &out})
		return nil
	})
	return likes, err
}

// SetPresence changes a user's online state. Going offline records LastSeen.
func (s *Store) SetPresence(userID string, presence models.Presence) error {
	if presence != models.PresenceOnline && presence != models.PresenceOffline {
		return invalid(fmt.Sprintf("unknown presence %q", presence))
	}
	return s.mutate("set_presence", func(t *tx) error {
		i, u, err := t.user(userID)
		if err != nil {
			return err
		}
		if u.Status == presence {
			return nil
		}
		u.Status = presence
		if presence == models.PresenceOffline {
			u.LastSeen = t.now
		}
		t.putUser(i, u)
		out := u.Clone()
		t.emit(models.StoreEvent{Type: models.EventUserUpdated, UserID: userID, User: &out})
		return nil
	})
}
