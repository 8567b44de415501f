package store

import "errors"

var (
	// ErrChatNotFound indicates the chat does not exist.
	ErrChatNotFound = errors.New("chat not found")
	// ErrMessageNotFound indicates the message does not exist in the chat.
	ErrMessageNotFound = errors.New("message not found")
	// ErrUserNotFound indicates the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrStatusNotFound indicates the status does not exist.
	ErrStatusNotFound = errors.New("status not found")
	// ErrUserExists indicates a user id is already taken.
	ErrUserExists = errors.New("user already exists")
	// ErrNotAdmin indicates an admin-only group action by a non-admin.
	ErrNotAdmin = errors.New("only admins can perform this action")
	// ErrNotParticipant indicates the user is not a member of the chat.
	ErrNotParticipant = errors.New("not a chat participant")
	// ErrNotGroup indicates a group-only action on a direct chat.
	ErrNotGroup = errors.New("chat is not a group")
	// ErrChatBlocked indicates a message was sent to a blocked chat.
	ErrChatBlocked = errors.New("chat is blocked")
	// ErrNotAPoll indicates a vote on a message without a poll.
	ErrNotAPoll = errors.New("message has no poll")
	// ErrOptionNotFound indicates a vote for an unknown poll option.
	ErrOptionNotFound = errors.New("poll option not found")
	// ErrMessageDeleted indicates an action on a tombstoned message.
	ErrMessageDeleted = errors.New("message was deleted")
	// ErrInvalidInput wraps every validation failure.
	ErrInvalidInput = errors.New("invalid input")
)

var errAssistantMember = invalid("the assistant cannot be added to a conversation")

func invalid(reason string) error {
	return &validationError{reason: reason}
}

type validationError struct {
	reason string
}

func (e *validationError) Error() string { return "invalid input: " + e.reason }

func (e *validationError) Unwrap() error { return ErrInvalidInput }
