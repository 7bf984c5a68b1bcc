// Package router turns prefixed guild messages into command invocations.
package router

import (
	"context"
	"strings"

	"github.com/keshon/server-warden/internal/command"
	"github.com/keshon/server-warden/internal/middleware"
	"github.com/keshon/server-warden/pkg/cmd"

	"github.com/rs/zerolog/log"
)

// Message is an inbound guild message, already stripped of platform types.
type Message struct {
	GuildID   string
	ChannelID string
	MessageID string
	Content   string

	Author      command.User
	AuthorRoles []string

	Mentions        []command.User
	ChannelMentions []string
}

type Router struct {
	services    *command.Services
	middlewares []cmd.Middleware
}

// New builds a router over services. A nil registry is replaced by one
// holding the built-in commands.
func New(services *command.Services) *Router {
	if services.Registry == nil {
		services.Registry = cmd.NewRegistry()
		services.Registry.Register(command.Builtins()...)
	}
	return &Router{
		services: services,
		middlewares: []cmd.Middleware{
			middleware.WithRecovery(),
			middleware.WithGuildOnly(),
			middleware.WithPermissionCheck(),
			middleware.WithCommandLogger(),
		},
	}
}

// Handle runs msg as a command if it starts with the guild's prefix and
// reports whether it did. Names that are not built in fall back to the
// guild's custom commands. The permission check covers both.
func (r *Router) Handle(ctx context.Context, msg Message) bool {
	prefix := r.services.Store.DefaultPrefix()
	if msg.GuildID != "" {
		prefix = r.services.Store.Prefix(msg.GuildID)
	}
	if !strings.HasPrefix(msg.Content, prefix) {
		return false
	}

	var name string
	var args []string
	if fields := strings.Fields(msg.Content[len(prefix):]); len(fields) > 0 {
		name, args = strings.ToLower(fields[0]), fields[1:]
	}

	target := r.services.Registry.Get(name)
	if target == nil {
		target = command.NewStaticReply(name)
	}

	inv := &cmd.Invocation{
		Args: args,
		Data: &command.MessageContext{
			Services:        r.services,
			GuildID:         msg.GuildID,
			ChannelID:       msg.ChannelID,
			MessageID:       msg.MessageID,
			Prefix:          prefix,
			Author:          msg.Author,
			AuthorRoles:     msg.AuthorRoles,
			Mentions:        msg.Mentions,
			ChannelMentions: msg.ChannelMentions,
			Args:            args,
		},
	}
	if err := cmd.Apply(target, r.middlewares...).Run(ctx, inv); err != nil {
		log.Error().Err(err).Str("guild", msg.GuildID).Str("command", name).Msg("command failed")
	}
	return true
}
