package main

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"

	"github.com/chatwarden/warden/moderation"
)

type messageBody struct {
	MessageID string `json:"message_id"`
	UserID    string `json:"user_id"`
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	Text      string `json:"text"`
}

func (s *Server) buildAPI() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(s.logger))
	e.Use(middleware.Recover())

	e.GET("/_health", s.handleHealthCheck)
	e.POST("/messages", s.handleMessage)
	e.GET("/admin/users/:id", s.handleGetUser)
	e.POST("/admin/users/:id/unmute", s.handleUnmute)
	return e
}

func (s *Server) handleHealthCheck(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ok"})
}

// Accepts one inbound chat message and moderates it asynchronously: one
// goroutine per message, so a slow judge call for one user never blocks
// ingestion for others.
func (s *Server) handleMessage(c echo.Context) error {
	var body messageBody
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid message body")
	}
	if body.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}

	evt := moderation.MessageEvent{
		MessageID: body.MessageID,
		UserID:    body.UserID,
		GuildID:   body.GuildID,
		ChannelID: body.ChannelID,
		Text:      body.Text,
	}
	go func() {
		if err := s.pipeline.ProcessMessage(context.Background(), evt); err != nil {
			s.logger.Error("message processing failed", "user", evt.UserID, "err", err)
		}
	}()
	return c.NoContent(http.StatusAccepted)
}

func (s *Server) handleGetUser(c echo.Context) error {
	rec, err := s.pipeline.Ledger.Record(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "user record unavailable")
	}
	out := map[string]any{
		"record": rec,
		"muted":  false,
	}
	if expiry, ok := s.pipeline.Sanctions.MuteExpiry(rec.UserID); ok {
		out["muted"] = true
		out["mute_expires_at"] = expiry
	}
	return c.JSON(200, out)
}

func (s *Server) handleUnmute(c echo.Context) error {
	userID := c.Param("id")
	if !s.pipeline.Sanctions.Muted(userID) {
		return echo.NewHTTPError(http.StatusNotFound, "user is not muted")
	}
	s.pipeline.Sanctions.Release(c.Request().Context(), userID)
	return c.NoContent(http.StatusOK)
}
