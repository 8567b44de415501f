package repositories_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"mockchat/internal/mocks"
	"mockchat/internal/models"
	"mockchat/internal/repositories"
)

func TestJournalWriterAppendsInOrder(t *testing.T) {
	journal := new(mocks.EventJournalMock)
	var mu sync.Mutex
	var got []models.EventType
	journal.On("Append", mock.Anything, mock.AnythingOfType("models.StoreEvent")).
		Run(func(args mock.Arguments) {
			mu.Lock()
			got = append(got, args.Get(1).(models.StoreEvent).Type)
			mu.Unlock()
		}).
		Return(nil)

	w := repositories.NewJournalWriter(journal, 8, time.Second, zap.NewNop())
	w.OnStoreEvent(models.StoreEvent{Type: models.EventChatCreated, ChatID: "c1"})
	w.OnStoreEvent(models.StoreEvent{Type: models.EventMessageAdded, ChatID: "c1"})
	w.OnStoreEvent(models.StoreEvent{Type: models.EventMessagesRead, ChatID: "c1"})
	w.Close()

	assert.Equal(t, []models.EventType{models.EventChatCreated, models.EventMessageAdded, models.EventMessagesRead}, got)
	journal.AssertNumberOfCalls(t, "Append", 3)
}

func TestJournalWriterSkipsTypingEvents(t *testing.T) {
	journal := new(mocks.EventJournalMock)

	w := repositories.NewJournalWriter(journal, 8, time.Second, zap.NewNop())
	w.OnStoreEvent(models.StoreEvent{Type: models.EventTypingStarted, ChatID: "c1", UserID: "u1"})
	w.OnStoreEvent(models.StoreEvent{Type: models.EventTypingStopped, ChatID: "c1", UserID: "u1"})
	w.Close()

	journal.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestJournalWriterSurvivesAppendErrors(t *testing.T) {
	journal := new(mocks.EventJournalMock)
	journal.On("Append", mock.Anything, mock.Anything).Return(assert.AnError).Once()
	journal.On("Append", mock.Anything, mock.Anything).Return(nil).Once()

	w := repositories.NewJournalWriter(journal, 8, time.Second, nil)
	w.OnStoreEvent(models.StoreEvent{Type: models.EventMessageAdded, ChatID: "c1"})
	w.OnStoreEvent(models.StoreEvent{Type: models.EventMessageDeleted, ChatID: "c1"})
	w.Close()

	journal.AssertExpectations(t)
}

func TestJournalWriterIgnoresEventsAfterClose(t *testing.T) {
	journal := new(mocks.EventJournalMock)

	w := repositories.NewJournalWriter(journal, 1, time.Second, zap.NewNop())
	w.Close()
	w.Close()
	w.OnStoreEvent(models.StoreEvent{Type: models.EventMessageAdded, ChatID: "c1"})

	journal.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}
