package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/keshon/server-warden/internal/moderation"
	"github.com/keshon/server-warden/internal/storage"
	"github.com/keshon/server-warden/pkg/cmd"
	"github.com/keshon/server-warden/pkg/util"
)

const (
	defaultLogLimit = 10
	maxEmbedFields  = 25

	colorInfo   = 0x0099ff
	colorGreen  = 0x00ff00
	colorOrange = 0xff9900
	colorBrand  = 0x7289da
)

type LogsCommand struct{}

func (c *LogsCommand) Name() string        { return "logs" }
func (c *LogsCommand) Description() string { return "Show the audit log: logs [type|all] [limit]" }
func (c *LogsCommand) Category() string    { return CategoryUtility }

func (c *LogsCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	kind := strings.ToLower(m.Arg(0))
	limit, err := strconv.Atoi(m.Arg(1))
	if err != nil || limit <= 0 {
		limit = defaultLogLimit
	}
	limit = min(limit, maxEmbedFields)

	var entries []moderation.EmbedField
	for _, e := range m.Store.Get(m.GuildID).Logs {
		if kind != "" && kind != "all" && !strings.Contains(strings.ToLower(e.Action), kind) {
			continue
		}
		entries = append(entries, moderation.EmbedField{
			Name:  e.Action + " - " + util.FormatDateTpl(e.Timestamp, "YYYY-MM-DD hh:mm:ss"),
			Value: e.Details,
		})
	}
	if len(entries) == 0 {
		return m.Reply(ctx, "No logs found.")
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	return m.ReplyEmbed(ctx, moderation.Embed{
		Title:  "Server Logs",
		Color:  colorInfo,
		Fields: entries,
	})
}

type WhitelistCommand struct{}

func (c *WhitelistCommand) Name() string { return "whitelist" }
func (c *WhitelistCommand) Description() string {
	return "Exempt members from auto-moderation: whitelist <add/remove/list> [@user]"
}
func (c *WhitelistCommand) Category() string { return CategoryUtility }

func (c *WhitelistCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	user, hasUser := m.FirstMention()

	switch strings.ToLower(m.Arg(0)) {
	case "add":
		if !hasUser {
			return m.Reply(ctx, "Please mention a user to add to whitelist.")
		}
		switch err := m.Store.AddToWhitelist(m.GuildID, user.ID); {
		case errors.Is(err, storage.ErrAlreadyWhitelisted):
			return m.Reply(ctx, "User is already whitelisted.")
		case err != nil:
			return err
		}
		m.Record(ctx, moderation.KindWhitelist, "%s added %s to whitelist", m.Author.Tag, user.Tag)
		return m.Reply(ctx, "Added %s to whitelist.", user.Tag)

	case "remove":
		if !hasUser {
			return m.Reply(ctx, "Please mention a user to remove from whitelist.")
		}
		switch err := m.Store.RemoveFromWhitelist(m.GuildID, user.ID); {
		case errors.Is(err, storage.ErrNotWhitelisted):
			return m.Reply(ctx, "User is not whitelisted.")
		case err != nil:
			return err
		}
		m.Record(ctx, moderation.KindWhitelist, "%s removed %s from whitelist", m.Author.Tag, user.Tag)
		return m.Reply(ctx, "Removed %s from whitelist.", user.Tag)

	case "list":
		ids := m.Store.Whitelist(m.GuildID)
		if len(ids) == 0 {
			return m.Reply(ctx, "Whitelist is empty.")
		}
		lines := make([]string, 0, len(ids))
		for _, id := range ids {
			tag := m.Chat.UserTag(id)
			if tag == "" {
				tag = fmt.Sprintf("Unknown User (%s)", id)
			}
			lines = append(lines, tag)
		}
		return m.ReplyEmbed(ctx, moderation.Embed{
			Title:       "Whitelisted Users",
			Description: strings.Join(lines, "\n"),
			Color:       colorGreen,
		})
	}
	return m.Reply(ctx, "Usage: `%swhitelist <add/remove/list> [@user]`", m.Prefix)
}

type AutoPurgeCommand struct{}

func (c *AutoPurgeCommand) Name() string { return "autopurge" }
func (c *AutoPurgeCommand) Description() string {
	return "Purge a channel on a schedule: autopurge <start/stop/list> [#channel] [interval]"
}
func (c *AutoPurgeCommand) Category() string { return CategoryUtility }

func (c *AutoPurgeCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	channelID, ok := m.FirstChannel()
	if !ok {
		channelID = m.ChannelID
	}
	channel := m.Chat.ChannelName(channelID)

	switch strings.ToLower(m.Arg(0)) {
	case "start":
		interval := autoPurgeInterval(m.Args)
		if interval == "" {
			return m.Reply(ctx, "Please provide an interval (e.g., 1h, 30m).")
		}
		millis, err := util.ParseDuration(interval)
		if err != nil {
			return m.Reply(ctx, "Invalid interval format.")
		}
		if err := m.Store.StartAutoPurge(m.GuildID, channelID, millis); err != nil {
			return err
		}
		m.Record(ctx, moderation.KindAutoPurge, "%s enabled auto purge in %s every %s", m.Author.Tag, channel, interval)
		return m.Reply(ctx, "Auto purge enabled in %s every %s", channel, interval)

	case "stop":
		switch err := m.Store.StopAutoPurge(m.GuildID, channelID); {
		case errors.Is(err, storage.ErrNoAutoPurge):
			return m.Reply(ctx, "Auto purge is not enabled in this channel.")
		case err != nil:
			return err
		}
		m.Record(ctx, moderation.KindAutoPurge, "%s disabled auto purge in %s", m.Author.Tag, channel)
		return m.Reply(ctx, "Auto purge disabled in %s", channel)

	case "list":
		rules := m.Store.AutoPurgeRules(m.GuildID)
		if len(rules) == 0 {
			return m.Reply(ctx, "No auto purge channels configured.")
		}
		ids := make([]string, 0, len(rules))
		for id := range rules {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		lines := make([]string, 0, len(ids))
		for _, id := range ids {
			name := m.Chat.ChannelName(id)
			if name == "" {
				name = "Unknown Channel"
			}
			lines = append(lines, fmt.Sprintf("%s: every %s", name, util.FormatInterval(rules[id].IntervalMillis)))
		}
		return m.ReplyEmbed(ctx, moderation.Embed{
			Title:       "Auto Purge Channels",
			Description: strings.Join(lines, "\n"),
			Color:       colorOrange,
		})
	}
	return m.Reply(ctx, "Usage: `%sautopurge <start/stop/list> [#channel] [interval]`", m.Prefix)
}

// autoPurgeInterval picks the first argument after the subcommand that is
// not a channel mention, so the channel may be left out.
func autoPurgeInterval(args []string) string {
	for _, a := range args[1:] {
		if !IsChannelMention(a) {
			return a
		}
	}
	return ""
}

type InviteCommand struct{}

func (c *InviteCommand) Name() string        { return "invite" }
func (c *InviteCommand) Description() string { return "Get the link to add the bot to a server" }
func (c *InviteCommand) Category() string    { return CategoryUtility }

func (c *InviteCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	return m.ReplyEmbed(ctx, moderation.Embed{
		Title:       "Invite Me to Your Server!",
		Description: fmt.Sprintf("[Click here to invite me](%s)", m.InviteLink),
		Color:       colorBrand,
		Footer:      "Thank you for using this bot!",
	})
}

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List the bot commands" }
func (c *HelpCommand) Category() string    { return CategoryUtility }

func (c *HelpCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}

	byCategory := map[string][]string{}
	for _, entry := range m.Registry.GetAll() {
		cat := CategoryUtility
		if meta, ok := cmd.Root(entry).(Category); ok {
			cat = meta.Category()
		}
		byCategory[cat] = append(byCategory[cat], "`"+entry.Name()+"`")
	}

	var fields []moderation.EmbedField
	for _, cat := range Categories {
		if names := byCategory[cat]; len(names) > 0 {
			fields = append(fields, moderation.EmbedField{Name: cat, Value: strings.Join(names, " ")})
		}
	}
	fields = append(fields, moderation.EmbedField{
		Name:  "Auto Moderation",
		Value: "Anti-spam, Anti-caps, Anti-invites, Anti-mention, Anti-raid",
	})

	return m.ReplyEmbed(ctx, moderation.Embed{
		Title:       "Bot Commands",
		Description: fmt.Sprintf("Server prefix: `%s`", m.Prefix),
		Color:       colorInfo,
		Fields:      fields,
		Footer:      fmt.Sprintf("Use %scommand for each command", m.Prefix),
	})
}
