package moderation

import (
	"context"
	"time"
)

type ChannelType string

const (
	ChannelText     ChannelType = "text"
	ChannelVoice    ChannelType = "voice"
	ChannelCategory ChannelType = "category"
)

// ParseChannelType maps user input to a channel type; anything unknown is text.
func ParseChannelType(s string) ChannelType {
	switch ChannelType(s) {
	case ChannelVoice, ChannelCategory:
		return ChannelType(s)
	}
	return ChannelText
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a platform-neutral rich message.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
	Thumbnail   string
	Timestamp   time.Time
}

// Platform is the outbound half of the chat platform. Each method is a
// single remote call; none of them touch guild state.
type Platform interface {
	SendMessage(ctx context.Context, channelID, content string) error
	SendEmbed(ctx context.Context, channelID string, e Embed) error
	SendDM(ctx context.Context, userID string, e Embed) error

	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string) error
	Unban(ctx context.Context, guildID, userID, reason string) error
	// Timeout with a nil until lifts an active timeout.
	Timeout(ctx context.Context, guildID, userID string, until *time.Time, reason string) error

	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error

	CreateChannel(ctx context.Context, guildID, name string, kind ChannelType) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error

	// BulkDelete removes up to count recent messages and reports how many went.
	BulkDelete(ctx context.Context, channelID string, count int) (int, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}
