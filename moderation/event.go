package moderation

// MessageEvent is one inbound chat message, as delivered by a platform
// consumer. References are opaque platform identifiers; the pipeline only
// passes them back through the gateway.
type MessageEvent struct {
	MessageID string
	UserID    string
	GuildID   string
	ChannelID string
	Text      string
}
