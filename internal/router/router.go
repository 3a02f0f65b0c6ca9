// Package router wires handlers and middleware onto the Echo
// instance. Route layout: /healthz is public, /v1/auth carries the
// credential endpoints (rate limited), everything else under /v1
// requires a session, and /v1/admin additionally requires the admin
// role.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/client-portal/internal/auth"
	"github.com/iliyamo/client-portal/internal/config"
	"github.com/iliyamo/client-portal/internal/handler"
	"github.com/iliyamo/client-portal/internal/middleware"
	"github.com/iliyamo/client-portal/internal/model"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Projects *handler.ProjectHandler
	Tasks    *handler.TaskHandler
	Messages *handler.MessageHandler
	Finance  *handler.FinanceHandler
	Tickets  *handler.TicketHandler
	Admin    *handler.AdminHandler
}

// Register mounts all routes. rdb may be nil, in which case the
// credential endpoints run unthrottled.
func Register(e *echo.Echo, h Handlers, sessions *auth.SessionManager, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(rlCfg, rdb)

	ag := e.Group("/v1/auth")
	ag.POST("/register", h.Auth.Register, limiter)
	ag.POST("/login", h.Auth.Login, limiter)
	ag.POST("/forgot-password", h.Auth.ForgotPassword, limiter)

	v1 := e.Group("/v1")
	v1.Use(middleware.SessionAuth(sessions))

	v1.POST("/auth/logout", h.Auth.Logout)
	v1.POST("/auth/change-password", h.Auth.ChangePassword)
	v1.GET("/me", h.Auth.Me)

	v1.GET("/projects", h.Projects.List)
	v1.POST("/projects", h.Projects.Create)
	v1.GET("/projects/:id", h.Projects.Get)
	v1.PATCH("/projects/:id", h.Projects.Update)
	v1.GET("/projects/:id/phases", h.Projects.ListPhases)
	v1.POST("/projects/:id/phases", h.Projects.CreatePhase)
	v1.GET("/projects/:id/files", h.Projects.ListFiles)
	v1.POST("/projects/:id/files", h.Projects.CreateFile)
	v1.GET("/projects/:id/tasks", h.Projects.ListTasks)
	v1.GET("/projects/:id/messages", h.Projects.ListMessages)
	v1.GET("/projects/:id/activities", h.Projects.ListActivities)
	v1.GET("/activities", h.Projects.Feed)

	v1.POST("/tasks", h.Tasks.Create)
	v1.GET("/tasks/:id", h.Tasks.Get)
	v1.PATCH("/tasks/:id", h.Tasks.Update)
	v1.GET("/tasks/:id/comments", h.Tasks.ListComments)
	v1.POST("/tasks/:id/comments", h.Tasks.CreateComment)

	v1.POST("/messages", h.Messages.Send)
	v1.GET("/messages", h.Messages.ListConversation)
	v1.POST("/messages/:id/read", h.Messages.MarkRead)

	v1.GET("/finance", h.Finance.List)
	v1.POST("/finance", h.Finance.Create)
	v1.PATCH("/finance/:id", h.Finance.Update)

	v1.GET("/tickets", h.Tickets.List)
	v1.POST("/tickets", h.Tickets.Create)
	v1.PATCH("/tickets/:id", h.Tickets.Update)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/users", h.Admin.ListUsers)
	admin.POST("/users", h.Admin.CreateUser)
	admin.PATCH("/users/:id", h.Admin.UpdateUser)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)
}
