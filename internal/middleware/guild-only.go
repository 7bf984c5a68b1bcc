package middleware

import (
	"context"

	"github.com/keshon/server-warden/internal/command"
	"github.com/keshon/server-warden/pkg/cmd"
)

// WithGuildOnly drops invocations that did not come from a guild channel.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if m, ok := inv.Data.(*command.MessageContext); ok && m.GuildID == "" {
				return nil
			}
			return c.Run(ctx, inv)
		})
	}
}
