package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mockchat/internal/mocks"
	"mockchat/internal/models"
	"mockchat/internal/store"
)

func TestHubAddAndRemoveClient(t *testing.T) {
	hub := NewHub(nil)

	hub.AddClient("chat-1", nil, ConnInfo{})
	assert.Equal(t, 1, hub.Clients("chat-1"))

	hub.RemoveClient("chat-1", nil)
	assert.Equal(t, 0, hub.Clients("chat-1"))
	assert.Empty(t, hub.rooms)
}

func TestHubJoinAndPartCountSockets(t *testing.T) {
	hub := NewHub(nil)
	activated, left := 0, 0

	hub.Join("user-1", "chat-1", func() { activated++ })
	hub.Join("user-1", "chat-1", func() { activated++ })
	assert.Equal(t, 2, activated)

	assert.False(t, hub.Part("user-1", "chat-1", func() { left++ }))
	assert.Zero(t, left)
	assert.True(t, hub.Part("user-1", "chat-1", func() { left++ }))
	assert.Equal(t, 1, left)

	assert.False(t, hub.Part("user-1", "chat-1", func() { left++ }))
	assert.Equal(t, 1, left)
	assert.Empty(t, hub.viewers)
}

func TestBroadcastDropsClientWithFullQueue(t *testing.T) {
	hub := NewHub(nil)
	stalled := &client{send: make(chan []byte, 1), done: make(chan struct{})}
	hub.rooms["chat-1"] = map[*websocket.Conn]*client{nil: stalled}

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			hub.Broadcast("chat-1", models.ChatEvent{Type: models.EventMessageAdded, ChatID: "chat-1"})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a stalled client")
	}
	assert.Len(t, stalled.send, 1)
	assert.Equal(t, 0, hub.Clients("chat-1"))
	select {
	case <-stalled.done:
	default:
		t.Fatal("stalled client was not stopped")
	}
}

func TestChatEventFrom(t *testing.T) {
	msg := models.Message{ID: "m1", SenderID: "user-1", Text: "hi"}

	added := chatEventFrom(models.StoreEvent{Type: models.EventMessageAdded, ChatID: "c1", UserID: "user-1", Message: &msg})
	assert.Equal(t, "m1", added.MessageID)
	require.NotNil(t, added.Message)
	assert.Equal(t, "hi", added.Message.Text)

	deleted := chatEventFrom(models.StoreEvent{Type: models.EventMessageDeleted, ChatID: "c1", Message: &msg})
	assert.Equal(t, "m1", deleted.MessageID)
	assert.Nil(t, deleted.Message)
}

func newSeededStore() *store.Store {
	return store.New(store.WithSeed(store.Seed(time.Now())))
}

func dial(t *testing.T, srv *httptest.Server, path string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	return websocket.DefaultDialer.Dial(url, nil)
}

func setupWSServer(t *testing.T, st *store.Store, sim Simulation) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := NewHub(zap.NewNop())
	st.Subscribe(hub)
	handler := NewChatWebSocketHandler(hub, st, sim, zap.NewNop())
	r := gin.New()
	r.GET("/ws/chats/:chat_id", handler.Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, srv
}

func TestChatWebSocketReceivesStoreEvents(t *testing.T) {
	st := newSeededStore()
	sim := new(mocks.SimulatorMock)
	sim.On("Activate", "user-1", "chat-1").Return().Once()
	sim.On("Leave", "user-1", "chat-1").Return().Maybe()
	hub, srv := setupWSServer(t, st, sim)

	conn, _, err := dial(t, srv, "/ws/chats/chat-1?user_id=user-1")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Clients("chat-1") == 1 }, time.Second, 10*time.Millisecond)
	sim.AssertCalled(t, "Activate", "user-1", "chat-1")

	_, err = st.AddMessage("chat-1", store.MessageDraft{SenderID: "user-2", Text: "ping"})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event models.ChatEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, models.EventMessageAdded, event.Type)
	assert.Equal(t, "chat-1", event.ChatID)
	require.NotNil(t, event.Message)
	assert.Equal(t, "ping", event.Message.Text)
}

func TestChatWebSocketMarksChatRead(t *testing.T) {
	st := newSeededStore()
	_, err := st.AddMessage("chat-1", store.MessageDraft{SenderID: "user-2", Text: "unread"})
	require.NoError(t, err)
	_, srv := setupWSServer(t, st, nil)

	conn, _, err := dial(t, srv, "/ws/chats/chat-1?user_id=user-1")
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		chat, err := st.Chat("chat-1")
		if err != nil {
			return false
		}
		last, _ := chat.LastMessage()
		return last.IsRead
	}, time.Second, 10*time.Millisecond)
}

func TestChatWebSocketRejectsUnknownUser(t *testing.T) {
	_, srv := setupWSServer(t, newSeededStore(), nil)

	_, resp, err := dial(t, srv, "/ws/chats/chat-1?user_id=nobody")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatWebSocketRejectsNonParticipant(t *testing.T) {
	_, srv := setupWSServer(t, newSeededStore(), nil)

	_, resp, err := dial(t, srv, "/ws/chats/chat-1?user_id=user-3")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestChatWebSocketLeavesOnClose(t *testing.T) {
	st := newSeededStore()
	left := make(chan struct{})
	sim := new(mocks.SimulatorMock)
	sim.On("Activate", "user-1", "chat-2").Return()
	sim.On("Leave", "user-1", "chat-2").Run(func(mock.Arguments) { close(left) }).Return().Once()
	hub, srv := setupWSServer(t, st, sim)

	conn, _, err := dial(t, srv, "/ws/chats/chat-2?user_id=user-1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients("chat-2") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()

	select {
	case <-left:
	case <-time.After(2 * time.Second):
		t.Fatal("simulation was not left after close")
	}
	assert.Equal(t, 0, hub.Clients("chat-2"))
	sim.AssertExpectations(t)
}

func TestChatWebSocketSecondSocketKeepsChatActive(t *testing.T) {
	st := newSeededStore()
	left := make(chan struct{})
	sim := new(mocks.SimulatorMock)
	sim.On("Activate", "user-1", "chat-1").Return().Twice()
	sim.On("Leave", "user-1", "chat-1").Run(func(mock.Arguments) { close(left) }).Return().Once()
	hub, srv := setupWSServer(t, st, sim)

	first, _, err := dial(t, srv, "/ws/chats/chat-1?user_id=user-1")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Clients("chat-1") == 1 }, time.Second, 10*time.Millisecond)
	second, _, err := dial(t, srv, "/ws/chats/chat-1?user_id=user-1")
	require.NoError(t, err)
	defer second.Close()
	require.Eventually(t, func() bool { return hub.Clients("chat-1") == 2 }, time.Second, 10*time.Millisecond)

	first.Close()
	require.Eventually(t, func() bool { return hub.Clients("chat-1") == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool {
		select {
		case <-left:
			return true
		default:
			return false
		}
	}, 200*time.Millisecond, 20*time.Millisecond)

	_, err = st.AddMessage("chat-1", store.MessageDraft{SenderID: "user-2", Text: "still here?"})
	require.NoError(t, err)
	require.NoError(t, second.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := second.ReadMessage()
	require.NoError(t, err)
	var event models.ChatEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, models.EventMessageAdded, event.Type)

	second.Close()
	select {
	case <-left:
	case <-time.After(2 * time.Second):
		t.Fatal("simulation was not left after the last socket closed")
	}
	sim.AssertExpectations(t)
}
