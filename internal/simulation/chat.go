package simulation

import (
	"slices"
	"sync"

	"go.uber.org/zap"

	"mockchat/internal/models"
	"mockchat/internal/observability"
	"mockchat/internal/store"
)

// ChatStore is the part of the store the chat simulation reads and writes.
type ChatStore interface {
	Chat(chatID string) (models.Chat, error)
	MarkMessagesAsRead(chatID, readerID string) (int, error)
	AddMessage(chatID string, draft store.MessageDraft) (models.Message, error)
}

// session is one viewer looking at one conversation.
type session struct {
	viewerID  string
	chatID    string
	gen       uint64
	lastMsgID string
	muted     bool
	blocked   bool
	typing    []string
}

func (s *session) key() string { return s.chatID + "/" + s.viewerID }

// ChatSimulator plays the counterparts of the conversation each viewer has open. When the
// viewer's own message is the last unread one it schedules a read receipt and, for plain
// text, maybe a typed canned reply. A new last message or a conversation switch cancels
// everything pending for that viewer.
type ChatSimulator struct {
	store ChatStore
	sched *Scheduler
	rng   Random
	cfg   Config
	log   *zap.Logger

	// switchMu orders conversation switches against simulated deliveries: a delivery checks
	// its session and writes to the store under it, so a switch never lands in between.
	// Store listeners must not take it.
	switchMu sync.Mutex
	mu       sync.Mutex
	sessions map[string]*session
	typing   map[string]map[string]int

	lmu       sync.RWMutex
	listeners []store.Listener
}

// NewChatSimulator builds a simulator. Subscribe it to the store to follow new messages.
func NewChatSimulator(st ChatStore, sched *Scheduler, rng Random, cfg Config, log *zap.Logger) *ChatSimulator {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatSimulator{
		store:    st,
		sched:    sched,
		rng:      rng,
		cfg:      cfg,
		log:      log,
		sessions: make(map[string]*session),
		typing:   make(map[string]map[string]int),
	}
}

// Subscribe registers a listener for typing_started and typing_stopped events.
func (s *ChatSimulator) Subscribe(l store.Listener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *ChatSimulator) publish(events []models.StoreEvent) {
	if len(events) == 0 {
		return
	}
	s.lmu.RLock()
	listeners := s.listeners
	s.lmu.RUnlock()
	for _, ev := range events {
		for _, l := range listeners {
			l.OnStoreEvent(ev)
		}
	}
}

// Activate makes chatID the viewer's active conversation. Re-activating the same chat is a
// no-op; switching cancels whatever was pending for the previous one.
func (s *ChatSimulator) Activate(viewerID, chatID string) {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()
	s.mu.Lock()
	var events []models.StoreEvent
	if cur, ok := s.sessions[viewerID]; ok {
		if cur.chatID == chatID {
			s.mu.Unlock()
			return
		}
		events = s.resetLocked(cur)
	}
	sess := &session{viewerID: viewerID, chatID: chatID}
	s.sessions[viewerID] = sess
	events = append(events, s.evaluateLocked(sess, true)...)
	s.mu.Unlock()
	s.publish(events)
}

// Deactivate closes the viewer's conversation.
func (s *ChatSimulator) Deactivate(viewerID string) {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()
	s.deactivate(viewerID, "")
}

// Leave closes the viewer's conversation only if chatID is still the active one.
func (s *ChatSimulator) Leave(viewerID, chatID string) {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()
	s.deactivate(viewerID, chatID)
}

// deactivate ends the viewer's session. A non-empty chatID must match the active chat.
func (s *ChatSimulator) deactivate(viewerID, chatID string) {
	s.mu.Lock()
	var events []models.StoreEvent
	if cur, ok := s.sessions[viewerID]; ok && (chatID == "" || cur.chatID == chatID) {
		events = s.resetLocked(cur)
		delete(s.sessions, viewerID)
	}
	s.mu.Unlock()
	s.publish(events)
}

// ActiveChat returns the viewer's active conversation.
func (s *ChatSimulator) ActiveChat(viewerID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.sessions[viewerID]; ok {
		return cur.chatID, true
	}
	return "", false
}

// ActiveViewers lists users that currently have a conversation open.
func (s *ChatSimulator) ActiveViewers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// TypingUsers lists the simulated users typing in chatID.
func (s *ChatSimulator) TypingUsers(chatID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.typing[chatID]))
	for id := range s.typing[chatID] {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Close cancels every session.
func (s *ChatSimulator) Close() {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()
	s.mu.Lock()
	var events []models.StoreEvent
	for id, sess := range s.sessions {
		events = append(events, s.resetLocked(sess)...)
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	s.publish(events)
}

// OnStoreEvent re-evaluates sessions whose conversation changed. It only schedules work and
// never mutates the store itself.
func (s *ChatSimulator) OnStoreEvent(ev models.StoreEvent) {
	switch ev.Type {
	case models.EventMessageAdded, models.EventMessageDeleted, models.EventChatUpdated:
	case models.EventChatDeleted:
		s.mu.Lock()
		var events []models.StoreEvent
		for id, sess := range s.sessions {
			if sess.chatID == ev.ChatID {
				events = append(events, s.resetLocked(sess)...)
				delete(s.sessions, id)
			}
		}
		s.mu.Unlock()
		s.publish(events)
		return
	default:
		return
	}

	s.mu.Lock()
	var events []models.StoreEvent
	for _, sess := range s.sessions {
		if sess.chatID == ev.ChatID {
			events = append(events, s.evaluateLocked(sess, false)...)
		}
	}
	s.mu.Unlock()
	s.publish(events)
}

// resetLocked cancels the session's tasks and clears the typing markers it set.
func (s *ChatSimulator) resetLocked(sess *session) []models.StoreEvent {
	sess.gen++
	s.sched.Cancel(sess.key())
	var events []models.StoreEvent
	for _, userID := range sess.typing {
		if ev, ok := s.stopTypingLocked(sess.chatID, userID); ok {
			events = append(events, ev)
		}
	}
	sess.typing = nil
	return events
}

func (s *ChatSimulator) startTypingLocked(sess *session, userID string) models.StoreEvent {
	if s.typing[sess.chatID] == nil {
		s.typing[sess.chatID] = make(map[string]int)
	}
	s.typing[sess.chatID][userID]++
	sess.typing = append(sess.typing, userID)
	return models.StoreEvent{Type: models.EventTypingStarted, ChatID: sess.chatID, UserID: userID}
}

func (s *ChatSimulator) stopTypingLocked(chatID, userID string) (models.StoreEvent, bool) {
	users := s.typing[chatID]
	if users[userID] == 0 {
		return models.StoreEvent{}, false
	}
	users[userID]--
	if users[userID] > 0 {
		return models.StoreEvent{}, false
	}
	delete(users, userID)
	if len(users) == 0 {
		delete(s.typing, chatID)
	}
	return models.StoreEvent{Type: models.EventTypingStopped, ChatID: chatID, UserID: userID}, true
}

// evaluateLocked schedules the read receipt and reply for the session's current last message.
// Unless force is set nothing happens while the last message and chat flags are unchanged, so
// the read receipt itself does not restart the cycle.
func (s *ChatSimulator) evaluateLocked(sess *session, force bool) []models.StoreEvent {
	chat, err := s.store.Chat(sess.chatID)
	if err != nil {
		return s.resetLocked(sess)
	}
	last, hasLast := chat.LastMessage()
	if !force && last.ID == sess.lastMsgID && chat.IsMuted == sess.muted && chat.IsBlocked == sess.blocked {
		return nil
	}
	events := s.resetLocked(sess)
	sess.lastMsgID = last.ID
	sess.muted = chat.IsMuted
	sess.blocked = chat.IsBlocked

	if !hasLast || chat.IsMuted || chat.IsBlocked {
		return events
	}
	if last.SenderID != sess.viewerID || last.IsRead {
		return events
	}
	counterparts := chat.Counterparts(sess.viewerID)
	if len(counterparts) == 0 {
		return events
	}

	gen := sess.gen
	reader := counterparts[s.rng.Intn(len(counterparts))]
	s.sched.Schedule(sess.key(), between(s.rng, s.cfg.ReadReceiptDelay), func() {
		s.readReceipt(sess, gen, reader)
	})

	var repliers []string
	for _, id := range counterparts {
		if id != models.AssistantUserID {
			repliers = append(repliers, id)
		}
	}
	plain := last.IsPlainText()
	s.sched.Schedule(sess.key(), between(s.rng, s.cfg.ReplyDelay), func() {
		s.startReply(sess, gen, repliers, plain)
	})
	return events
}

func (s *ChatSimulator) current(sess *session, gen uint64) bool {
	cur, ok := s.sessions[sess.viewerID]
	return ok && cur == sess && sess.gen == gen
}

func (s *ChatSimulator) readReceipt(sess *session, gen uint64, reader string) {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()
	s.mu.Lock()
	ok := s.current(sess, gen)
	s.mu.Unlock()
	if !ok {
		return
	}
	if _, err := s.store.MarkMessagesAsRead(sess.chatID, reader); err != nil {
		s.log.Debug("simulated read receipt failed", zap.String("chat_id", sess.chatID), zap.Error(err))
		return
	}
	observability.IncSimulationEvent("read_receipt")
}

func (s *ChatSimulator) startReply(sess *session, gen uint64, repliers []string, plain bool) {
	s.mu.Lock()
	if !s.current(sess, gen) || len(repliers) == 0 || !plain || s.rng.Float64() >= s.cfg.ReplyProbability {
		s.mu.Unlock()
		return
	}
	replier := repliers[s.rng.Intn(len(repliers))]
	ev := s.startTypingLocked(sess, replier)
	s.sched.Schedule(sess.key(), between(s.rng, s.cfg.TypingDuration), func() {
		s.finishReply(sess, gen, replier)
	})
	s.mu.Unlock()

	observability.IncSimulationEvent("typing")
	s.publish([]models.StoreEvent{ev})
}

func (s *ChatSimulator) finishReply(sess *session, gen uint64, replier string) {
	s.switchMu.Lock()
	defer s.switchMu.Unlock()
	s.mu.Lock()
	if !s.current(sess, gen) {
		s.mu.Unlock()
		return
	}
	var events []models.StoreEvent
	if ev, ok := s.stopTypingLocked(sess.chatID, replier); ok {
		events = append(events, ev)
	}
	sess.typing = slices.DeleteFunc(sess.typing, func(id string) bool { return id == replier })
	text := s.cfg.CannedResponses[s.rng.Intn(len(s.cfg.CannedResponses))]
	s.mu.Unlock()
	s.publish(events)

	// The store notifies this simulator synchronously, so mu must be released here. switchMu
	// stays held until the reply is stored.
	if _, err := s.store.AddMessage(sess.chatID, store.MessageDraft{SenderID: replier, Text: text}); err != nil {
		s.log.Debug("simulated reply failed", zap.String("chat_id", sess.chatID), zap.String("user_id", replier), zap.Error(err))
		return
	}
	observability.IncSimulationEvent("reply")
}
