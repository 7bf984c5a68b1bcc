package command

import (
	"context"
	"errors"
	"strings"

	"github.com/keshon/server-warden/internal/moderation"
	"github.com/keshon/server-warden/internal/storage"
	"github.com/keshon/server-warden/pkg/cmd"
)

type SetPrefixCommand struct{}

func (c *SetPrefixCommand) Name() string { return "setprefix" }
func (c *SetPrefixCommand) Description() string {
	return "Change the command prefix: setprefix <1-3 chars>"
}
func (c *SetPrefixCommand) Category() string { return CategorySettings }

func (c *SetPrefixCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	prefix := m.Arg(0)

	switch err := m.Store.SetPrefix(m.GuildID, prefix); {
	case errors.Is(err, storage.ErrEmptyPrefix):
		return m.Reply(ctx, "Please provide a new prefix.")
	case errors.Is(err, storage.ErrPrefixTooLong):
		return m.Reply(ctx, "Prefix must be 3 characters or less.")
	case err != nil:
		return err
	}

	m.Record(ctx, moderation.KindSettingChange, "%s changed prefix to %s", m.Author.Tag, prefix)
	return m.Reply(ctx, "Server prefix set to: %s", prefix)
}

type ToggleSettingCommand struct{}

func (c *ToggleSettingCommand) Name() string { return "togglesetting" }
func (c *ToggleSettingCommand) Description() string {
	return "Switch an auto-moderation filter on or off: togglesetting <" + strings.Join(storage.SettingNames, "|") + ">"
}
func (c *ToggleSettingCommand) Category() string { return CategorySettings }

func (c *ToggleSettingCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	setting := m.Arg(0)
	if !storage.IsValidSetting(setting) {
		return m.Reply(ctx, "Usage: %stogglesetting <%s>", m.Prefix, strings.Join(storage.SettingNames, "|"))
	}

	enabled, err := m.Store.ToggleSetting(m.GuildID, setting)
	if err != nil {
		return err
	}
	status := "disabled"
	if enabled {
		status = "enabled"
	}
	m.Record(ctx, moderation.KindSettingChange, "%s %s %s", m.Author.Tag, status, setting)
	return m.Reply(ctx, "%s is now %s.", setting, status)
}
