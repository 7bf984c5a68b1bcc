package middleware

import (
	"context"
	"time"

	"github.com/keshon/server-warden/internal/command"
	"github.com/keshon/server-warden/pkg/cmd"

	"github.com/rs/zerolog/log"
)

// WithCommandLogger logs every command that ran, with its outcome.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			ev := log.Info()
			if err != nil {
				ev = log.Warn().Err(err)
			}
			if m, ok := inv.Data.(*command.MessageContext); ok {
				ev = ev.Str("guild", m.GuildID).Str("channel", m.ChannelID).Str("user", m.Author.ID)
			}
			ev.Str("command", c.Name()).Dur("took", time.Since(start)).Msg("command executed")
			return err
		})
	}
}
