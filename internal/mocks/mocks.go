package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mockchat/internal/models"
	"mockchat/internal/repositories"
)

type SimulatorMock struct {
	mock.Mock
}

func (m *SimulatorMock) Activate(viewerID, chatID string) {
	m.Called(viewerID, chatID)
}

func (m *SimulatorMock) Deactivate(viewerID string) {
	m.Called(viewerID)
}

func (m *SimulatorMock) Leave(viewerID, chatID string) {
	m.Called(viewerID, chatID)
}

func (m *SimulatorMock) TypingUsers(chatID string) []string {
	args := m.Called(chatID)
	var ids []string
	if val := args.Get(0); val != nil {
		ids = val.([]string)
	}
	return ids
}

type EventJournalMock struct {
	mock.Mock
}

func (m *EventJournalMock) Append(ctx context.Context, ev models.StoreEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *EventJournalMock) ListForChat(ctx context.Context, chatID string, limit int) ([]models.JournalEntry, error) {
	args := m.Called(ctx, chatID, limit)
	var entries []models.JournalEntry
	if val := args.Get(0); val != nil {
		entries = val.([]models.JournalEntry)
	}
	return entries, args.Error(1)
}

var _ repositories.EventJournal = (*EventJournalMock)(nil)
var _ interface {
	Activate(string, string)
	Deactivate(string)
	Leave(string, string)
	TypingUsers(string) []string
} = (*SimulatorMock)(nil)
