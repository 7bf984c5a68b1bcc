package middleware

import (
	"context"
	"slices"

	"github.com/keshon/server-warden/internal/command"
	"github.com/keshon/server-warden/pkg/cmd"

	"github.com/rs/zerolog/log"
)

const deniedReply = "You do not have permission to use bot commands."

// WithPermissionCheck lets through administrators, the guild owner, the
// configured developer and members holding the guild's allowed role.
// Everybody else gets a refusal.
func WithPermissionCheck() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			m, ok := inv.Data.(*command.MessageContext)
			if !ok {
				return c.Run(ctx, inv)
			}
			if !Allowed(m) {
				log.Debug().Str("guild", m.GuildID).Str("user", m.Author.ID).Str("command", c.Name()).Msg("command refused")
				return m.Reply(ctx, deniedReply)
			}
			return c.Run(ctx, inv)
		})
	}
}

// Allowed reports whether the author may use bot commands in the guild.
func Allowed(m *command.MessageContext) bool {
	if m.DeveloperID != "" && m.Author.ID == m.DeveloperID {
		return true
	}
	if m.Chat.IsAdministrator(m.GuildID, m.Author.ID) {
		return true
	}
	allowed := m.Store.Settings(m.GuildID).AllowedRole
	return allowed != "" && slices.Contains(m.AuthorRoles, allowed)
}
