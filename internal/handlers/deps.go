package handlers

import (
	"context"
	"time"

	"mockchat/internal/models"
	"mockchat/internal/store"
)

// Store is the data store surface used by the HTTP API. *store.Store implements it.
type Store interface {
	Users() []models.User
	User(userID string) (models.User, error)
	Chat(chatID string) (models.Chat, error)
	Message(chatID, messageID string) (models.Message, error)
	Summaries(userID string) []models.ChatSummary
	SearchSummaries(userID, term string) []models.ChatSummary
	SavedMessagesChat(ownerID string) (models.Chat, error)
	Statuses() []models.Status
	StatusAuthors() []models.StatusAuthor
	Status(statusID string) (models.Status, error)

	AddMessage(chatID string, draft store.MessageDraft) (models.Message, error)
	MarkMessagesAsRead(chatID, readerID string) (int, error)
	DeleteMessage(chatID, messageID string) error
	ForwardMessage(senderID string, msg models.Message, targetChatIDs []string) ([]models.Message, error)
	HandleVote(chatID, messageID, optionID, userID string) (*models.Poll, error)
	TogglePinMessage(chatID, messageID, actorID string) (bool, error)
	RecordCallEnded(chatID string, kind store.CallKind, duration time.Duration) (models.Message, error)

	CreateConversation(creatorID, name string, participantIDs []string, onCreated func(models.Chat)) (models.Chat, error)
	FindOrCreateDirectChat(ownerID, otherUserID string, onReady func(models.Chat)) (models.Chat, error)
	TogglePinChat(chatID string) (bool, error)
	ToggleMuteChat(chatID string) (bool, error)
	BlockChat(chatID, actorID string) error
	DeleteChat(chatID string) error

	AddMembersToGroup(chatID string, userIDs []string, actorID string) ([]string, error)
	RemoveUserFromGroup(chatID, userID, actorID string) error
	UpdateGroupDetails(chatID string, details store.GroupDetails, actorID string) error

	AddStatus(draft store.StatusDraft) (models.Status, error)
	MarkStatusAsViewed(statusID, viewerID string) error
	AddReactionToStatus(statusID, userID, emoji string) (models.Status, error)
	ReplyToStatus(statusID, senderID, text string) (models.Chat, models.Message, error)

	AddUser(u models.User) (models.User, error)
	RemoveUser(userID string) error
	UpdateUser(userID string, upd store.ProfileUpdate) (models.User, error)
	LikeUserProfile(userID string) (int, error)
}

// Simulation is the viewer-facing part of the chat simulator.
type Simulation interface {
	Activate(viewerID, chatID string)
	Deactivate(viewerID string)
	TypingUsers(chatID string) []string
}

// Journal reads persisted store events.
type Journal interface {
	ListForChat(ctx context.Context, chatID string, limit int) ([]models.JournalEntry, error)
}

var _ Store = (*store.Store)(nil)
