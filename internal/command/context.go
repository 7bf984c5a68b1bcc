// Package command holds the prefix commands of the bot. Commands are
// transport-agnostic pkg/cmd commands that expect a *MessageContext in the
// invocation data.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/keshon/server-warden/internal/moderation"
	"github.com/keshon/server-warden/internal/storage"
	"github.com/keshon/server-warden/pkg/cmd"
)

var ErrNoMessageContext = errors.New("invocation carries no message context")

const noReason = "No reason provided"

type User struct {
	ID  string
	Tag string
}

type Role struct {
	ID   string
	Name string
}

// Chat is everything commands need from the platform: the outbound actions
// plus replies and a few cached lookups.
type Chat interface {
	moderation.Platform

	Reply(ctx context.Context, channelID, messageID, content string) error
	ReplyEmbed(ctx context.Context, channelID, messageID string, e moderation.Embed) error
	// SendTransient posts content and deletes it again after ttl.
	SendTransient(ctx context.Context, channelID, content string, ttl time.Duration) error

	FindRole(guildID, name string) (Role, bool)
	ChannelName(channelID string) string
	UserTag(userID string) string
	GuildName(guildID string) string
	IsAdministrator(guildID, userID string) bool
}

// Services are shared by every invocation.
type Services struct {
	Store       *storage.Storage
	Dispatcher  *moderation.Dispatcher
	Chat        Chat
	Registry    *cmd.Registry
	InviteLink  string
	DeveloperID string
}

// MessageContext is one prefix command as it arrived in a guild channel.
type MessageContext struct {
	*Services

	GuildID   string
	ChannelID string
	MessageID string
	Prefix    string

	Author      User
	AuthorRoles []string

	Mentions        []User   // mentioned users, in message order
	ChannelMentions []string // mentioned channel IDs, in message order

	Args []string
}

// Category groups commands in the help embed.
type Category interface {
	Category() string
}

const (
	CategoryModeration = "Moderation"
	CategoryRoles      = "Role Management"
	CategoryChannels   = "Channel Management"
	CategorySettings   = "Settings"
	CategoryUtility    = "Utility"
)

// Categories in help order.
var Categories = []string{CategoryModeration, CategoryRoles, CategoryChannels, CategorySettings, CategoryUtility}

// From extracts the message context of an invocation.
func From(inv *cmd.Invocation) (*MessageContext, error) {
	m, ok := inv.Data.(*MessageContext)
	if !ok || m == nil {
		return nil, ErrNoMessageContext
	}
	return m, nil
}

func (m *MessageContext) Reply(ctx context.Context, format string, args ...any) error {
	return m.Chat.Reply(ctx, m.ChannelID, m.MessageID, fmt.Sprintf(format, args...))
}

func (m *MessageContext) ReplyEmbed(ctx context.Context, e moderation.Embed) error {
	return m.Chat.ReplyEmbed(ctx, m.ChannelID, m.MessageID, e)
}

// Arg returns the i-th argument or "".
func (m *MessageContext) Arg(i int) string {
	if i < len(m.Args) {
		return m.Args[i]
	}
	return ""
}

// Rest joins the arguments from index i on.
func (m *MessageContext) Rest(i int) string {
	if i >= len(m.Args) {
		return ""
	}
	return strings.Join(m.Args[i:], " ")
}

// Reason is Rest(i), or the stock reason when empty.
func (m *MessageContext) Reason(i int) string {
	if r := m.Rest(i); r != "" {
		return r
	}
	return noReason
}

func (m *MessageContext) FirstMention() (User, bool) {
	if len(m.Mentions) == 0 {
		return User{}, false
	}
	return m.Mentions[0], true
}

func (m *MessageContext) FirstChannel() (string, bool) {
	if len(m.ChannelMentions) == 0 {
		return "", false
	}
	return m.ChannelMentions[0], true
}

// Record audits a settings-style change made by the author.
func (m *MessageContext) Record(ctx context.Context, kind moderation.Kind, format string, args ...any) {
	m.Dispatcher.Record(ctx, m.GuildID, kind, fmt.Sprintf(format, args...))
}

// action pre-fills the fields every moderator action shares.
func (m *MessageContext) action(kind moderation.Kind) moderation.Action {
	return moderation.Action{
		Kind:      kind,
		GuildID:   m.GuildID,
		Moderator: m.Author.Tag,
		GuildName: m.Chat.GuildName(m.GuildID),
	}
}

// IsChannelMention reports tokens of the form <#id>.
func IsChannelMention(s string) bool {
	return strings.HasPrefix(s, "<#") && strings.HasSuffix(s, ">")
}
