package moderation

import (
	"context"
	"log/slog"
	"time"
)

// LogGateway is a dry-run ChatGateway: every enforcement action is logged and
// reported as successful, nothing touches a real platform. Used when the
// daemon runs without a platform adapter configured.
type LogGateway struct {
	Logger *slog.Logger
}

var _ ChatGateway = (*LogGateway)(nil)

func NewLogGateway(logger *slog.Logger) *LogGateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogGateway{Logger: logger.With("system", "gateway-dryrun")}
}

func (g *LogGateway) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	g.Logger.Info("would delete message", "channel", channelID, "message", messageID)
	return nil
}

func (g *LogGateway) SendNotice(ctx context.Context, channelID, text string, autoDeleteAfter time.Duration) error {
	g.Logger.Info("would send notice", "channel", channelID, "text", text, "ttl", autoDeleteAfter)
	return nil
}

func (g *LogGateway) ApplyRestriction(ctx context.Context, userID, guildID string) error {
	g.Logger.Info("would apply restriction", "user", userID, "guild", guildID)
	return nil
}

func (g *LogGateway) RevokeRestriction(ctx context.Context, userID, guildID string) error {
	g.Logger.Info("would revoke restriction", "user", userID, "guild", guildID)
	return nil
}
