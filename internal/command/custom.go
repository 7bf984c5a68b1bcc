package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/keshon/server-warden/internal/moderation"
	"github.com/keshon/server-warden/internal/storage"
	"github.com/keshon/server-warden/pkg/cmd"
)

type CustomCommandCommand struct{}

func (c *CustomCommandCommand) Name() string { return "customcommand" }
func (c *CustomCommandCommand) Description() string {
	return "Manage static replies: customcommand <add/remove/list> [name] [response]"
}
func (c *CustomCommandCommand) Category() string { return CategoryUtility }

func (c *CustomCommandCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	name := strings.ToLower(m.Arg(1))

	switch strings.ToLower(m.Arg(0)) {
	case "add":
		response := m.Rest(2)
		if name == "" || response == "" {
			return m.Reply(ctx, "Please provide a name and a response.")
		}
		if m.Registry.Has(name) {
			return m.Reply(ctx, "Cannot override built-in command %s.", name)
		}
		if err := m.Store.SetCustomCommand(m.GuildID, name, response); err != nil {
			return err
		}
		m.Record(ctx, moderation.KindSettingChange, "%s added custom command %s", m.Author.Tag, name)
		return m.Reply(ctx, "Custom command %s saved.", name)

	case "remove":
		if name == "" {
			return m.Reply(ctx, "Please provide a command name.")
		}
		switch err := m.Store.RemoveCustomCommand(m.GuildID, name); {
		case errors.Is(err, storage.ErrNoCustomCommand):
			return m.Reply(ctx, "Custom command not found.")
		case err != nil:
			return err
		}
		m.Record(ctx, moderation.KindSettingChange, "%s removed custom command %s", m.Author.Tag, name)
		return m.Reply(ctx, "Custom command %s removed.", name)

	case "list":
		commands := m.Store.CustomCommands(m.GuildID)
		if len(commands) == 0 {
			return m.Reply(ctx, "No custom commands configured.")
		}
		names := make([]string, 0, len(commands))
		for n := range commands {
			names = append(names, fmt.Sprintf("`%s%s`", m.Prefix, n))
		}
		sort.Strings(names)
		return m.ReplyEmbed(ctx, moderation.Embed{
			Title:       "Custom Commands",
			Description: strings.Join(names, "\n"),
			Color:       colorInfo,
		})
	}
	return m.Reply(ctx, "Usage: `%scustomcommand <add/remove/list> [name] [response]`", m.Prefix)
}

// StaticReply answers a guild's custom command with its stored text. Unknown
// names are silently ignored.
type StaticReply struct {
	name string
}

func NewStaticReply(name string) *StaticReply { return &StaticReply{name: name} }

func (c *StaticReply) Name() string        { return c.name }
func (c *StaticReply) Description() string { return "Custom command" }

func (c *StaticReply) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	response, ok := m.Store.CustomCommand(m.GuildID, c.name)
	if !ok {
		return nil
	}
	return m.Chat.SendMessage(ctx, m.ChannelID, response)
}
