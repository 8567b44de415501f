package repositories

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"mockchat/internal/models"
	"mockchat/internal/observability"
)

const journalSink = "journal"

// JournalWriter feeds store events into an EventJournal from a background worker. Typing
// markers are transient and are not journaled.
type JournalWriter struct {
	journal EventJournal
	timeout time.Duration
	log     *zap.Logger
	events  chan models.StoreEvent

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewJournalWriter starts the worker.
func NewJournalWriter(journal EventJournal, buffer int, timeout time.Duration, log *zap.Logger) *JournalWriter {
	if log == nil {
		log = zap.NewNop()
	}
	w := &JournalWriter{
		journal: journal,
		timeout: timeout,
		log:     log,
		events:  make(chan models.StoreEvent, buffer),
		done:    make(chan struct{}),
	}
	go w.run()
	return w
}

// OnStoreEvent queues an event. A full queue drops the event.
func (w *JournalWriter) OnStoreEvent(ev models.StoreEvent) {
	if ev.Type == models.EventTypingStarted || ev.Type == models.EventTypingStopped {
		return
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}
	select {
	case w.events <- ev:
	default:
		observability.IncDroppedEvent(journalSink)
		w.log.Warn("journal queue full, dropping event", zap.String("event", string(ev.Type)))
	}
}

func (w *JournalWriter) run() {
	defer close(w.done)
	for ev := range w.events {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := w.journal.Append(ctx, ev)
		cancel()
		if err != nil {
			observability.IncJournalWriteError()
			w.log.Error("journal append failed", zap.String("event", string(ev.Type)), zap.String("chat_id", ev.ChatID), zap.Error(err))
		}
	}
}

// Close flushes queued events and stops the worker.
func (w *JournalWriter) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.events)
	}
	w.mu.Unlock()
	<-w.done
}
