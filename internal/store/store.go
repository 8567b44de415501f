// Package store holds the in-memory users, chats and statuses of the mock chat app.
//
// The store keeps an immutable Snapshot behind an atomic pointer. Mutations are serialized by
// a single mutex, work on copies of the collections they touch and publish the new snapshot in
// one pointer swap, so readers never observe a partially applied change. Listeners receive the
// resulting events in commit order after the mutation is visible.
package store

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mockchat/internal/models"
	"mockchat/internal/observability"
)

// Listener receives committed store events. Listeners must not call store mutations
// synchronously from OnStoreEvent.
type Listener interface {
	OnStoreEvent(event models.StoreEvent)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(event models.StoreEvent)

// OnStoreEvent calls f.
func (f ListenerFunc) OnStoreEvent(event models.StoreEvent) { f(event) }

// Store is the single source of truth for users, chats and statuses.
type Store struct {
	mu    sync.Mutex
	pubMu sync.Mutex
	snap  atomic.Pointer[Snapshot]

	lmu       sync.RWMutex
	listeners []Listener

	now   func() time.Time
	newID func() string
	log   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithSeed sets the initial contents.
func WithSeed(seed Snapshot) Option {
	return func(s *Store) {
		snap := seed
		s.snap.Store(&snap)
	}
}

// New builds a store. Without WithSeed the store starts empty.
func New(opts ...Option) *Store {
	s := &Store{
		now:   time.Now,
		newID: uuid.NewString,
		log:   zap.NewNop(),
	}
	s.snap.Store(&Snapshot{})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a listener for committed events.
func (s *Store) Subscribe(l Listener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Snapshot returns the current state. The result is shared and must not be modified.
func (s *Store) Snapshot() *Snapshot {
	return s.snap.Load()
}

// mutate runs fn against a copy-on-write transaction and commits it atomically.
func (s *Store) mutate(op string, fn func(t *tx) error) error {
	s.mu.Lock()
	t := newTx(s.snap.Load(), s.now(), s.newID)
	err := fn(t)
	committed := err == nil && t.changed
	if committed {
		next := t.next
		next.Version = t.base.Version + 1
		s.snap.Store(&next)
	}
	// pubMu is taken before mu is released so events leave in commit order.
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	observability.ObserveStoreMutation(op, err)
	if err != nil {
		s.log.Debug("store mutation rejected", zap.String("op", op), zap.Error(err))
		return err
	}
	if !committed {
		return nil
	}
	s.log.Debug("store mutation committed", zap.String("op", op), zap.Int("events", len(t.events)))

	s.lmu.RLock()
	listeners := s.listeners
	s.lmu.RUnlock()
	for _, ev := range t.events {
		for _, l := range listeners {
			l.OnStoreEvent(ev)
		}
	}
	return nil
}

// tx is the working copy of one mutation. Each collection is cloned the first time it is
// written so the base snapshot stays untouched.
type tx struct {
	base  *Snapshot
	next  Snapshot
	now   time.Time
	newID func() string

	usersCopied    bool
	chatsCopied    bool
	statusesCopied bool
	changed        bool
	events         []models.StoreEvent
}

func newTx(base *Snapshot, now time.Time, newID func() string) *tx {
	return &tx{base: base, next: *base, now: now, newID: newID}
}

func (t *tx) emit(ev models.StoreEvent) {
	ev.At = t.now
	t.events = append(t.events, ev)
}

func (t *tx) userIndex(id string) int {
	for i, u := range t.next.Users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (t *tx) user(id string) (int, models.User, error) {
	i := t.userIndex(id)
	if i < 0 {
		return -1, models.User{}, ErrUserNotFound
	}
	return i, t.next.Users[i].Clone(), nil
}

func (t *tx) userExists(id string) bool {
	return t.userIndex(id) >= 0
}

// userName resolves a display name, falling back to "Someone".
func (t *tx) userName(id string) string {
	if i := t.userIndex(id); i >= 0 {
		return t.next.Users[i].Name
	}
	return "Someone"
}

func (t *tx) copyUsers() {
	if !t.usersCopied {
		t.next.Users = append([]models.User(nil), t.next.Users...)
		t.usersCopied = true
	}
	t.changed = true
}

func (t *tx) putUser(i int, u models.User) {
	t.copyUsers()
	t.next.Users[i] = u
}

func (t *tx) appendUser(u models.User) {
	t.copyUsers()
	t.next.Users = append(t.next.Users, u)
}

func (t *tx) removeUser(i int) {
	t.copyUsers()
	t.next.Users = append(t.next.Users[:i], t.next.Users[i+1:]...)
}

func (t *tx) chatIndex(id string) int {
	for i, c := range t.next.Chats {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// chat returns a private clone of the chat that can be edited and put back.
func (t *tx) chat(id string) (int, models.Chat, error) {
	i := t.chatIndex(id)
	if i < 0 {
		return -1, models.Chat{}, ErrChatNotFound
	}
	return i, t.next.Chats[i].Clone(), nil
}

func (t *tx) copyChats() {
	if !t.chatsCopied {
		t.next.Chats = append([]models.Chat(nil), t.next.Chats...)
		t.chatsCopied = true
	}
	t.changed = true
}

func (t *tx) putChat(i int, c models.Chat) {
	t.copyChats()
	t.next.Chats[i] = c
}

// prependChat puts new chats first so the newest conversation leads the list.
func (t *tx) prependChat(c models.Chat) {
	t.copyChats()
	t.next.Chats = append([]models.Chat{c}, t.next.Chats...)
}

func (t *tx) removeChat(i int) {
	t.copyChats()
	t.next.Chats = append(t.next.Chats[:i], t.next.Chats[i+1:]...)
}

func (t *tx) status(id string) (int, models.Status, error) {
	for i, st := range t.next.Statuses {
		if st.ID == id {
			return i, st.Clone(), nil
		}
	}
	return -1, models.Status{}, ErrStatusNotFound
}

func (t *tx) copyStatuses() {
	if !t.statusesCopied {
		t.next.Statuses = append([]models.Status(nil), t.next.Statuses...)
		t.statusesCopied = true
	}
	t.changed = true
}

func (t *tx) putStatus(i int, st models.Status) {
	t.copyStatuses()
	t.next.Statuses[i] = st
}

func (t *tx) prependStatus(st models.Status) {
	t.copyStatuses()
	t.next.Statuses = append([]models.Status{st}, t.next.Statuses...)
}

// appendMessage stamps a message and appends it to c. Timestamps never go backwards within a
// chat even if the clock does.
func (t *tx) appendMessage(c *models.Chat, m models.Message) models.Message {
	m.ID = t.newID()
	m.Timestamp = t.now
	if last, ok := c.LastMessage(); ok && m.Timestamp.Before(last.Timestamp) {
		m.Timestamp = last.Timestamp
	}
	m.IsRead = false
	c.Messages = append(c.Messages, m)
	out := m.Clone()
	t.emit(models.StoreEvent{Type: models.EventMessageAdded, ChatID: c.ID, UserID: m.SenderID, Message: &out})
	return m
}

func (t *tx) appendSystemMessage(c *models.Chat, text string) models.Message {
	return t.appendMessage(c, models.Message{SenderID: models.SystemSenderID, Text: text})
}

func (t *tx) emitChatUpdated(c models.Chat) {
	out := c.Clone()
	t.emit(models.StoreEvent{Type: models.EventChatUpdated, ChatID: c.ID, Chat: &out})
}
