package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mockchat/internal/models"
)

// DefaultJournalLimit caps ListForChat when the caller passes no limit.
const DefaultJournalLimit = 100

// EventJournal persists store events for later inspection.
type EventJournal interface {
	Append(ctx context.Context, ev models.StoreEvent) error
	ListForChat(ctx context.Context, chatID string, limit int) ([]models.JournalEntry, error)
}

// JournalRepo is a sqlx implementation of EventJournal.
type JournalRepo struct {
	db *sqlx.DB
}

// NewJournalRepo constructs a JournalRepo.
func NewJournalRepo(db *sqlx.DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Append stores one event with its full JSON body.
func (r *JournalRepo) Append(ctx context.Context, ev models.StoreEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO chat_events (event_type, chat_id, user_id, payload, occurred_at) VALUES ($1, $2, $3, $4, $5)`,
		string(ev.Type), ev.ChatID, ev.UserID, payload, ev.At)
	return err
}

// ListForChat returns the most recent events of a chat, oldest first.
func (r *JournalRepo) ListForChat(ctx context.Context, chatID string, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 {
		limit = DefaultJournalLimit
	}
	query := `SELECT id, event_type, chat_id, user_id, payload, occurred_at FROM (
            SELECT id, event_type, chat_id, user_id, payload, occurred_at
            FROM chat_events WHERE chat_id=$1 ORDER BY id DESC LIMIT $2
        ) recent ORDER BY id ASC`
	var entries []models.JournalEntry
	if err := r.db.SelectContext(ctx, &entries, query, chatID, limit); err != nil {
		return nil, err
	}
	return entries, nil
}
