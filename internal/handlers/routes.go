package handlers

import (
	"github.com/gin-gonic/gin"

	"mockchat/internal/middleware"
	"mockchat/internal/telemetry"
)

// API bundles the HTTP handlers of the service.
type API struct {
	Chats    *ChatHandler
	Messages *MessageHandler
	Groups   *GroupHandler
	Statuses *StatusHandler
	Users    *UserHandler
}

// NewAPI builds every handler over the same store. sim and journal may be nil.
func NewAPI(st Store, sim Simulation, journal Journal, audit *telemetry.AuditEmitter) *API {
	return &API{
		Chats:    NewChatHandler(st, sim, journal, audit),
		Messages: NewMessageHandler(st, audit),
		Groups:   NewGroupHandler(st, audit),
		Statuses: NewStatusHandler(st, audit),
		Users:    NewUserHandler(st, sim, audit),
	}
}

// Register mounts the authenticated routes.
func (a *API) Register(router gin.IRouter, auth gin.HandlerFunc) {
	api := router.Group("/", auth)

	api.GET("/users", a.Users.ListUsers)
	api.GET("/users/:user_id", a.Users.GetUser)
	api.POST("/users/:user_id/like", a.Users.LikeUser)
	api.PUT("/me", a.Users.UpdateMe)
	api.GET("/me/saved", a.Users.SavedMessages)
	api.DELETE("/me/active-chat", a.Users.CloseActiveChat)

	admin := api.Group("/admin", middleware.RequireAdmin())
	admin.POST("/users", a.Users.CreateUser)
	admin.DELETE("/users/:user_id", a.Users.DeleteUser)

	api.GET("/chats", a.Chats.ListChats)
	api.POST("/chats", a.Chats.CreateChat)
	api.POST("/chats/direct", a.Chats.StartDirectChat)
	api.GET("/chats/:chat_id", a.Chats.GetChat)
	api.DELETE("/chats/:chat_id", a.Chats.DeleteChat)
	api.POST("/chats/:chat_id/open", a.Chats.OpenChat)
	api.POST("/chats/:chat_id/read", a.Chats.MarkRead)
	api.POST("/chats/:chat_id/pin", a.Chats.TogglePin)
	api.POST("/chats/:chat_id/mute", a.Chats.ToggleMute)
	api.POST("/chats/:chat_id/block", a.Chats.Block)
	api.POST("/chats/:chat_id/calls", a.Chats.EndCall)
	api.GET("/chats/:chat_id/typing", a.Chats.Typing)
	api.GET("/chats/:chat_id/events", a.Chats.Events)

	api.GET("/chats/:chat_id/messages", a.Messages.ListMessages)
	api.POST("/chats/:chat_id/messages", a.Messages.PostMessage)
	api.DELETE("/chats/:chat_id/messages/:message_id", a.Messages.DeleteMessage)
	api.POST("/chats/:chat_id/messages/:message_id/forward", a.Messages.ForwardMessage)
	api.POST("/chats/:chat_id/messages/:message_id/pin", a.Messages.TogglePin)
	api.POST("/chats/:chat_id/messages/:message_id/vote", a.Messages.Vote)

	api.POST("/groups/:chat_id/members", a.Groups.AddMembers)
	api.DELETE("/groups/:chat_id/members/:user_id", a.Groups.RemoveMember)
	api.PATCH("/groups/:chat_id", a.Groups.UpdateDetails)

	api.GET("/statuses", a.Statuses.ListStatuses)
	api.POST("/statuses", a.Statuses.PostStatus)
	api.POST("/statuses/:status_id/view", a.Statuses.View)
	api.POST("/statuses/:status_id/reactions", a.Statuses.React)
	api.POST("/statuses/:status_id/reply", a.Statuses.Reply)
}
