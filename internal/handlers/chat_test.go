package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mockchat/internal/middleware"
	"mockchat/internal/mocks"
	"mockchat/internal/models"
	"mockchat/internal/store"
	"mockchat/internal/telemetry"
)

const auditKey = "audit.mockchat"

type testEnv struct {
	store     *store.Store
	sim       *mocks.SimulatorMock
	journal   *mocks.EventJournalMock
	publisher *mocks.PublisherMock
	router    *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := &testEnv{
		store:     store.New(store.WithSeed(store.Seed(time.Now()))),
		sim:       new(mocks.SimulatorMock),
		journal:   new(mocks.EventJournalMock),
		publisher: new(mocks.PublisherMock),
	}
	env.publisher.On("Publish", mock.Anything, auditKey, mock.Anything, mock.Anything).Return(nil).Maybe()
	audit := telemetry.NewAuditEmitter(env.publisher, auditKey, "mockchat", "test", zap.NewNop())

	env.router = gin.New()
	NewAPI(env.store, env.sim, env.journal, audit).Register(env.router, middleware.AuthMiddleware(env.store))
	return env
}

func (e *testEnv) do(t *testing.T, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set(middleware.UserHeader, userID)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) auditedLevel(level string) bool {
	for _, call := range e.publisher.Calls {
		if env, ok := call.Arguments.Get(2).(telemetry.AuditEnvelope); ok && env.Payload.Level == level {
			return true
		}
	}
	return false
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestRequestsWithoutIdentityAreRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/chats", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/chats", "ghost", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListChatsPinnedFirst(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/chats", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Chats []models.ChatSummary `json:"chats"`
	}](t, rec)

	require.Len(t, resp.Chats, 4)
	assert.True(t, resp.Chats[0].IsPinned)
	assert.True(t, resp.Chats[1].IsPinned)
	assert.False(t, resp.Chats[2].IsPinned)
}

func TestListChatsSearchByTitle(t *testing.T) {
	env := newTestEnv(t)

	titles := func(query string) []string {
		rec := env.do(t, http.MethodGet, "/chats?q="+query, "user-1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[struct {
			Chats []models.ChatSummary `json:"chats"`
		}](t, rec)
		out := []string{}
		for _, sum := range resp.Chats {
			out = append(out, sum.Title)
		}
		return out
	}

	assert.Equal(t, []string{"Sam Smith"}, titles("SAM"))
	assert.Equal(t, []string{"Project Team"}, titles("team"))
	assert.Equal(t, []string{"Saved Messages"}, titles("saved"))
	assert.Empty(t, titles("nobody"))
}

func TestCreateChatGroup(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/chats", "user-1", `{"name":"Weekend","participant_ids":["user-2","user-3"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	chat := decode[models.Chat](t, rec)
	assert.Equal(t, models.ChatGroup, chat.Type)
	assert.Equal(t, []string{"user-1", "user-2", "user-3"}, chat.Participants)
	assert.Equal(t, []string{"user-1"}, chat.AdminIDs)
	assert.True(t, env.auditedLevel("INFO"))
}

func TestCreateChatWithoutParticipants(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/chats", "user-1", `{"name":"Alone","participant_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/chats", "user-1", `{"name":5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/chats", "user-1", `{"name":"Bots","participant_ids":["user-3","meta-ai"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartDirectChatReusesExisting(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/chats/direct", "user-1", `{"user_id":"user-2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chat-1", decode[models.Chat](t, rec).ID)

	rec = env.do(t, http.MethodPost, "/chats/direct", "user-1", `{"user_id":"user-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/chats/direct", "user-1", `{"user_id":"ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetChatAccess(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/chats/chat-2", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Project Team", decode[models.Chat](t, rec).Name)

	rec = env.do(t, http.MethodGet, "/chats/chat-2", "user-2", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.True(t, env.auditedLevel("ERROR"))

	rec = env.do(t, http.MethodGet, "/chats/nope", "user-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOpenChatActivatesSimulation(t *testing.T) {
	env := newTestEnv(t)
	env.sim.On("Activate", "user-1", "chat-2").Return().Once()

	rec := env.do(t, http.MethodPost, "/chats/chat-2/open", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), resp["marked_read"])
	env.sim.AssertExpectations(t)

	rec = env.do(t, http.MethodPost, "/chats/chat-2/read", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode[map[string]any](t, rec)["marked_read"])
}

func TestToggleChatFlags(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/chats/chat-2/pin", "user-3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["is_pinned"])

	rec = env.do(t, http.MethodPost, "/chats/chat-2/mute", "user-3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["is_muted"])

	rec = env.do(t, http.MethodPost, "/chats/chat-2/mute", "user-3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["is_muted"])
}

func TestBlockChatStopsMessages(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/chats/chat-1/block", "user-1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodPost, "/chats/chat-1/messages", "user-1", `{"text":"hello?"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	chat, err := env.store.Chat("chat-1")
	require.NoError(t, err)
	last, _ := chat.LastMessage()
	assert.Equal(t, "You blocked Sam Smith.", last.Text)
}

func TestDeleteGroupRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/chats/chat-2", "user-3", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodDelete, "/chats/chat-2", "user-1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, err := env.store.Chat("chat-2")
	assert.ErrorIs(t, err, store.ErrChatNotFound)
}

func TestEndCallNarrates(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/chats/chat-1/calls", "user-1", `{"kind":"video","duration_seconds":75}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	msg := decode[models.Message](t, rec)
	assert.Equal(t, models.SystemSenderID, msg.SenderID)
	assert.Equal(t, "Video call ended. Duration: 01:15", msg.Text)

	rec = env.do(t, http.MethodPost, "/chats/chat-1/calls", "user-1", `{"kind":"hologram"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTypingUsers(t *testing.T) {
	env := newTestEnv(t)
	env.sim.On("TypingUsers", "chat-2").Return([]string{"user-3"}).Once()
	env.sim.On("TypingUsers", "chat-1").Return(nil).Once()

	rec := env.do(t, http.MethodGet, "/chats/chat-2/typing", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"user-3"}, decode[map[string]any](t, rec)["typing"])

	rec = env.do(t, http.MethodGet, "/chats/chat-1/typing", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode[map[string]any](t, rec)["typing"])
	env.sim.AssertExpectations(t)
}

func TestChatEvents(t *testing.T) {
	env := newTestEnv(t)
	entries := []models.JournalEntry{{ID: 1, EventType: "message_added", ChatID: "chat-1", UserID: "user-2", Payload: json.RawMessage(`{}`)}}
	env.journal.On("ListForChat", mock.Anything, "chat-1", 5).Return(entries, nil).Once()
	env.journal.On("ListForChat", mock.Anything, "chat-1", 0).Return(nil, assert.AnError).Once()

	rec := env.do(t, http.MethodGet, "/chats/chat-1/events?limit=5", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Events []models.JournalEntry `json:"events"`
	}](t, rec)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "message_added", resp.Events[0].EventType)

	rec = env.do(t, http.MethodGet, "/chats/chat-1/events", "user-1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = env.do(t, http.MethodGet, "/chats/chat-1/events?limit=-1", "user-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env.journal.AssertExpectations(t)
}

func TestChatEventsWithoutJournal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.New(store.WithSeed(store.Seed(time.Now())))
	handler := NewChatHandler(st, nil, nil, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "user-1")
		c.Next()
	})
	r.GET("/chats/:chat_id/events", handler.Events)
	r.GET("/chats/:chat_id/typing", handler.Typing)

	req := httptest.NewRequest(http.MethodGet, "/chats/chat-1/events", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/chats/chat-1/typing", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
