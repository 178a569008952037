// Package v1 exposes the REST and streaming chat API.
package v1

import (
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/campusmind/campusmind/internal/profile"
	"github.com/campusmind/campusmind/plugin/ai/agent"
	"github.com/campusmind/campusmind/server/middleware"
	"github.com/campusmind/campusmind/store"
)

// maxConcurrentChatTurns bounds in-flight agent turns across all clients.
const maxConcurrentChatTurns = 8

// APIV1Service wires the v1 route group.
type APIV1Service struct {
	profile *profile.Profile
	store   *store.Store
	agent   *agent.Agent

	rateLimiter *middleware.RateLimiter
	chatTurns   *semaphore.Weighted
}

func NewAPIV1Service(profile *profile.Profile, s *store.Store, a *agent.Agent) *APIV1Service {
	return &APIV1Service{
		profile: profile,
		store:   s,
		agent:   a,
		// 10 requests per second with a burst of 20, per client IP.
		rateLimiter: middleware.NewRateLimiter(time.Second/10, 20),
		chatTurns:   semaphore.NewWeighted(maxConcurrentChatTurns),
	}
}

// Register mounts all v1 routes on the echo server.
func (s *APIV1Service) Register(e *echo.Echo) {
	group := e.Group("/api/v1", s.rateLimiter.Middleware())

	group.POST("/auth/signup", s.SignUp)
	group.POST("/auth/login", s.LogIn)

	authed := group.Group("", middleware.JWTAuth(s.profile.JWTSecret, s.store))
	authed.GET("/auth/me", s.Me)
	authed.PUT("/auth/me", s.UpdateMe)
	authed.POST("/auth/refresh", s.Refresh)
	authed.POST("/auth/verify", s.Verify)

	authed.POST("/students", s.CreateStudent, middleware.RequireRole(store.UserRoleAdmin, store.UserRoleStaff))
	authed.GET("/students", s.ListStudents)
	authed.GET("/students/:id", s.GetStudent)
	authed.PUT("/students/:id", s.UpdateStudent, middleware.RequireRole(store.UserRoleAdmin, store.UserRoleStaff))
	authed.DELETE("/students/:id", s.DeleteStudent, middleware.RequireRole(store.UserRoleAdmin))

	authed.GET("/analytics", s.Analytics)

	authed.POST("/chat", s.Chat)
	authed.POST("/chat/stream", s.ChatStream)
	authed.GET("/chat/stream", s.ChatStream)
	authed.GET("/chat/:sessionID/messages", s.ChatHistory)
}
