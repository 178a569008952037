package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusmind/campusmind/server/internal/observability"
	"github.com/campusmind/campusmind/server/middleware"
	"github.com/campusmind/campusmind/store"
)

const maxChatMessageLength = 4000

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

type chatMessageResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (s *APIV1Service) bindChatRequest(c echo.Context) (*chatRequest, error) {
	request := &chatRequest{}
	if c.Request().Method == http.MethodGet {
		// EventSource clients cannot POST; accept query parameters.
		request.SessionID = c.QueryParam("session_id")
		request.Message = c.QueryParam("message")
	} else if err := c.Bind(request); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	request.Message = strings.TrimSpace(request.Message)
	if request.SessionID == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "session_id required")
	}
	if request.Message == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "message required")
	}
	if len(request.Message) > maxChatMessageLength {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "message too long")
	}
	return request, nil
}

// Chat runs one synchronous agent turn and returns the reply.
func (s *APIV1Service) Chat(c echo.Context) error {
	request, err := s.bindChatRequest(c)
	if err != nil {
		return err
	}
	if !s.chatTurns.TryAcquire(1) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "assistant is busy, try again shortly")
	}
	defer s.chatTurns.Release(1)

	user := middleware.UserFromContext(c)
	rc := observability.NewRequestContext(slog.Default(), user.ID)
	rc.Info("chat turn started",
		slog.String(observability.LogFieldSessionID, request.SessionID),
		slog.Int(observability.LogFieldMessageLen, len(request.Message)))

	reply, err := s.agent.Run(c.Request().Context(), request.SessionID, request.Message)
	if err != nil {
		rc.Error("chat turn failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "chat turn failed")
	}
	rc.Info("chat turn finished",
		slog.String(observability.LogFieldSessionID, request.SessionID),
		slog.Int64(observability.LogFieldDuration, rc.Elapsed()))

	return c.JSON(http.StatusOK, chatResponse{SessionID: request.SessionID, Reply: reply})
}

// ChatStream runs one agent turn and emits the reply as server-sent events.
func (s *APIV1Service) ChatStream(c echo.Context) error {
	request, err := s.bindChatRequest(c)
	if err != nil {
		return err
	}
	if !s.chatTurns.TryAcquire(1) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "assistant is busy, try again shortly")
	}
	defer s.chatTurns.Release(1)

	user := middleware.UserFromContext(c)
	rc := observability.NewRequestContext(slog.Default(), user.ID)
	rc.Info("chat stream started",
		slog.String(observability.LogFieldSessionID, request.SessionID),
		slog.Int(observability.LogFieldMessageLen, len(request.Message)))

	events, err := s.agent.Stream(c.Request().Context(), request.SessionID, request.Message)
	if err != nil {
		rc.Error("chat stream failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "chat turn failed")
	}

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set(echo.HeaderCacheControl, "no-cache")
	response.Header().Set(echo.HeaderConnection, "keep-alive")
	response.WriteHeader(http.StatusOK)

	for event := range events {
		frame, err := json.Marshal(event)
		if err != nil {
			rc.Error("encode stream event failed", slog.String("error", err.Error()))
			break
		}
		if _, err := response.Write([]byte("data: " + string(frame) + "\n\n")); err != nil {
			rc.Warn("client disconnected", slog.String(observability.LogFieldSessionID, request.SessionID))
			break
		}
		response.Flush()
	}

	rc.Info("chat stream finished",
		slog.String(observability.LogFieldSessionID, request.SessionID),
		slog.Int64(observability.LogFieldDuration, rc.Elapsed()))
	return nil
}

// ChatHistory returns the recent transcript of a session.
func (s *APIV1Service) ChatHistory(c echo.Context) error {
	sessionID := c.Param("sessionID")
	messages, err := s.store.ListRecentConversationMessages(c.Request().Context(), sessionID, store.DefaultRecentMessageLimit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load messages")
	}

	response := make([]chatMessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, chatMessageResponse{
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: time.Unix(m.CreatedTs, 0).UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, response)
}
