// Package server assembles the HTTP server from its parts.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/campusmind/campusmind/internal/profile"
	"github.com/campusmind/campusmind/plugin/ai"
	"github.com/campusmind/campusmind/plugin/ai/agent"
	apiv1 "github.com/campusmind/campusmind/server/router/api/v1"
	"github.com/campusmind/campusmind/store"
)

type Server struct {
	echoServer *echo.Echo
	profile    *profile.Profile
	store      *store.Store
}

// NewServer wires the store, the agent, and the API routes together.
func NewServer(ctx context.Context, profile *profile.Profile, s *store.Store) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	server := &Server{
		echoServer: e,
		profile:    profile,
		store:      s,
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	holder := ai.NewHolder(profile)
	chatAgent := agent.New(holder, s, agent.DefaultRegistry(s), agent.DefaultConfig())
	apiv1.NewAPIV1Service(profile, s, chatAgent).Register(e)

	return server, nil
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	slog.Info("server started", slog.String("address", address), slog.String("mode", s.profile.Mode))
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	if err := s.store.Close(); err != nil {
		slog.Error("failed to close store", slog.String("error", err.Error()))
	}
	slog.Info("server shutdown")
}
