package command

import (
	"context"
	"strings"

	"github.com/keshon/server-warden/internal/moderation"
	st "github.com/keshon/server-warden/internal/storagetypes"
	"github.com/keshon/server-warden/pkg/cmd"
)

// BindChannelCommand binds one of the guild's notification channels.
type BindChannelCommand struct {
	name  string
	kind  st.ChannelKind
	label string
}

func NewSetWelcomeCommand() *BindChannelCommand {
	return &BindChannelCommand{name: "setwelcome", kind: st.ChannelWelcome, label: "welcome"}
}

func NewSetLeaveCommand() *BindChannelCommand {
	return &BindChannelCommand{name: "setleave", kind: st.ChannelLeave, label: "leave"}
}

func NewSetLogsCommand() *BindChannelCommand {
	return &BindChannelCommand{name: "setlogs", kind: st.ChannelLogs, label: "logs"}
}

func (c *BindChannelCommand) Name() string { return c.name }
func (c *BindChannelCommand) Description() string {
	return "Set the " + c.label + " channel: " + c.name + " #channel"
}
func (c *BindChannelCommand) Category() string { return CategoryChannels }

func (c *BindChannelCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	channelID, ok := m.FirstChannel()
	if !ok {
		return m.Reply(ctx, "Please mention a channel.")
	}
	if err := m.Store.SetChannel(m.GuildID, c.kind, channelID); err != nil {
		return err
	}

	name := m.Chat.ChannelName(channelID)
	m.Record(ctx, moderation.KindSettingChange, "%s set %s channel to %s", m.Author.Tag, c.label, name)
	return m.Reply(ctx, "Successfully set %s channel to %s", c.label, name)
}

type CreateChannelCommand struct{}

func (c *CreateChannelCommand) Name() string { return "createchannel" }
func (c *CreateChannelCommand) Description() string {
	return "Create a channel: createchannel <name> [text|voice|category]"
}
func (c *CreateChannelCommand) Category() string { return CategoryChannels }

func (c *CreateChannelCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	name := m.Arg(0)
	if name == "" {
		return m.Reply(ctx, "Please provide a channel name.")
	}

	a := m.action(moderation.KindChannelCreate)
	a.Name, a.Type = name, moderation.ParseChannelType(strings.ToLower(m.Arg(1)))
	if _, err := m.Dispatcher.Dispatch(ctx, a); err != nil {
		return m.Reply(ctx, "Failed to create channel.")
	}
	return m.Reply(ctx, "Successfully created %s channel %s", a.Type, name)
}

type DeleteChannelCommand struct{}

func (c *DeleteChannelCommand) Name() string { return "deletechannel" }
func (c *DeleteChannelCommand) Description() string {
	return "Delete a channel: deletechannel #channel"
}
func (c *DeleteChannelCommand) Category() string { return CategoryChannels }

func (c *DeleteChannelCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	channelID, ok := m.FirstChannel()
	if !ok {
		return m.Reply(ctx, "Please mention a channel to delete.")
	}

	a := m.action(moderation.KindChannelDelete)
	a.ChannelID, a.Channel = channelID, m.Chat.ChannelName(channelID)
	if _, err := m.Dispatcher.Dispatch(ctx, a); err != nil {
		return m.Reply(ctx, "Failed to delete channel.")
	}
	return m.Reply(ctx, "Successfully deleted channel %s", a.Channel)
}
