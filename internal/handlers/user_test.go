package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockchat/internal/models"
	"mockchat/internal/store"
)

func TestListAndGetUsers(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/users", "user-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[struct {
		Users []models.User `json:"users"`
	}](t, rec)
	assert.Len(t, resp.Users, 12)

	rec = env.do(t, http.MethodGet, "/users/user-11", "user-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Dana Scully", decode[models.User](t, rec).Name)

	rec = env.do(t, http.MethodGet, "/users/ghost", "user-2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLikeUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/users/user-2/like", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(43), decode[map[string]any](t, rec)["likes"])
}

func TestUpdateMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/me", "user-2", `{"about":"Dog person.","notes":["walk Rex"],"clear_music":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	user := decode[models.User](t, rec)
	assert.Equal(t, "Sam Smith", user.Name)
	assert.Equal(t, "Dog person.", user.About)
	assert.Equal(t, []string{"walk Rex"}, user.Notes)
	assert.Nil(t, user.Music)

	rec = env.do(t, http.MethodPut, "/me", "user-2", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSavedMessages(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/me/saved", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chat-saved", decode[models.Chat](t, rec).ID)

	rec = env.do(t, http.MethodGet, "/me/saved", "user-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	created := decode[models.Chat](t, rec)
	assert.True(t, created.IsSavedMessages("user-2"))
	assert.True(t, created.IsPinned)
	require.Len(t, created.Messages, 1)
	assert.Equal(t, models.SystemSenderID, created.Messages[0].SenderID)

	rec = env.do(t, http.MethodGet, "/me/saved", "user-2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[models.Chat](t, rec).ID)
}

func TestCloseActiveChat(t *testing.T) {
	env := newTestEnv(t)
	env.sim.On("Deactivate", "user-1").Return().Once()

	rec := env.do(t, http.MethodDelete, "/me/active-chat", "user-1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	env.sim.AssertExpectations(t)
}

func TestAdminCreateAndDeleteUser(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/admin/users", "user-2", `{"name":"Eve","email":"eve@example.com"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/admin/users", "user-1", `{"name":"Eve","email":"eve@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.User](t, rec)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.Equal(t, models.PresenceOffline, created.Status)

	rec = env.do(t, http.MethodPost, "/admin/users", "user-1", `{"name":"Mallory"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/admin/users/"+created.ID, "user-1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	_, err := env.store.User(created.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	rec = env.do(t, http.MethodDelete, "/admin/users/user-1", "user-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/admin/users/ghost", "user-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, env.auditedLevel("INFO"))
}

func TestDebugRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := store.New(store.WithSeed(store.Seed(time.Now())))

	disabled := gin.New()
	RegisterDebugRoutes(disabled, st, nil, nil, false)
	rec := httptest.NewRecorder()
	disabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/users", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	enabled := gin.New()
	RegisterDebugRoutes(enabled, st, nil, nil, true)
	rec = httptest.NewRecorder()
	enabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, float64(12), resp["users"])
	assert.Equal(t, float64(7), resp["online"])

	rec = httptest.NewRecorder()
	enabled.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/audit-test", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
