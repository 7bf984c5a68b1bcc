package middleware

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/keshon/server-warden/internal/command"
	"github.com/keshon/server-warden/pkg/cmd"

	"github.com/rs/zerolog/log"
)

const failedReply = "An error occurred while executing the command."

// WithRecovery logs errors and panics from the command and answers them with
// a generic reply. The error does not propagate further.
func WithRecovery() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v", r)
					log.Error().Str("command", c.Name()).Interface("panic", r).Bytes("stack", debug.Stack()).Msg("command panicked")
				}
				if err == nil {
					return
				}
				log.Error().Err(err).Str("command", c.Name()).Msg("error executing command")
				if m, ok := inv.Data.(*command.MessageContext); ok {
					if replyErr := m.Reply(ctx, failedReply); replyErr != nil {
						log.Warn().Err(replyErr).Msg("could not send error reply")
					}
				}
				err = nil
			}()
			return c.Run(ctx, inv)
		})
	}
}
