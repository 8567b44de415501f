package store

import (
	"fmt"
	"strings"

	"mockchat/internal/models"
)

// groupForAdmin loads a group and checks that actorID administers it.
func (t *tx) groupForAdmin(chatID, actorID string) (int, models.Chat, error) {
	i, c, err := t.chat(chatID)
	if err != nil {
		return -1, models.Chat{}, err
	}
	if !c.IsGroup() {
		return -1, models.Chat{}, ErrNotGroup
	}
	if !c.IsAdmin(actorID) {
		return -1, models.Chat{}, ErrNotAdmin
	}
	return i, c, nil
}

// AddMembersToGroup adds known users to a group. Unknown ids and existing members are skipped;
// if nobody is left to add the call fails. The assistant is never a group member.
func (s *Store) AddMembersToGroup(chatID string, userIDs []string, actorID string) ([]string, error) {
	var added []string
	err := s.mutate("add_members", func(t *tx) error {
		i, c, err := t.groupForAdmin(chatID, actorID)
		if err != nil {
			return err
		}
		var names []string
		for _, id := range userIDs {
			if id == models.AssistantUserID {
				return errAssistantMember
			}
			if !t.userExists(id) || c.IsParticipant(id) {
				continue
			}
			c.Participants = append(c.Participants, id)
			added = append(added, id)
			names = append(names, t.userName(id))
		}
		if len(added) == 0 {
			return invalid("no new members to add")
		}
		t.appendSystemMessage(&c, fmt.Sprintf("%s added %s to the group.", t.userName(actorID), strings.Join(names, ", ")))
		t.putChat(i, c)
		t.emitChatUpdated(c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveUserFromGroup removes a member (and their admin rights) from a group.
func (s *Store) RemoveUserFromGroup(chatID, userID, actorID string) error {
	return s.mutate("remove_member", func(t *tx) error {
		i, c, err := t.groupForAdmin(chatID, actorID)
		if err != nil {
			return err
		}
		if !c.IsParticipant(userID) {
			return ErrNotParticipant
		}
		c.Participants = removeID(c.Participants, userID)
		c.AdminIDs = removeID(c.AdminIDs, userID)
		t.appendSystemMessage(&c, fmt.Sprintf("%s removed %s from the group.", t.userName(actorID), t.userName(userID)))
		t.putChat(i, c)
		t.emitChatUpdated(c)
		return nil
	})
}

// UpdateGroupDetails renames a group and/or changes its description, appending one
// narration message per field that actually changed.
func (s *Store) UpdateGroupDetails(chatID string, details GroupDetails, actorID string) error {
	return s.mutate("update_group", func(t *tx) error {
		i, c, err := t.groupForAdmin(chatID, actorID)
		if err != nil {
			return err
		}
		actor := t.userName(actorID)
		changed := false
		if details.Name != nil {
			name := strings.TrimSpace(*details.Name)
			if name == "" {
				return invalid("group name cannot be empty")
			}
			if name != c.Name {
				c.Name = name
				t.appendSystemMessage(&c, fmt.Sprintf("%s renamed the group to %q.", actor, name))
				changed = true
			}
		}
		if details.Description != nil && *details.Description != c.Description {
			c.Description = *details.Description
			t.appendSystemMessage(&c, fmt.Sprintf("%s updated the group description.", actor))
			changed = true
		}
		if !changed {
			return nil
		}
		t.putChat(i, c)
		t.emitChatUpdated(c)
		return nil
	})
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
