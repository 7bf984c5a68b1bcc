package router_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/keshon/server-warden/datastore"
	"github.com/keshon/server-warden/internal/command"
	"github.com/keshon/server-warden/internal/moderation"
	"github.com/keshon/server-warden/internal/moderation/moderationtest"
	"github.com/keshon/server-warden/internal/router"
	"github.com/keshon/server-warden/internal/storage"
	"github.com/keshon/server-warden/pkg/cmd"
	"github.com/keshon/server-warden/pkg/retrylimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.UnixMilli(1_700_000_000_000)

type fakeChat struct {
	*moderationtest.Platform

	mu      sync.Mutex
	replies []string
	embeds  []moderation.Embed
	notices []string

	admins map[string]bool
	roles  map[string]command.Role
}

func (c *fakeChat) Reply(ctx context.Context, channelID, messageID, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replies = append(c.replies, content)
	return nil
}

func (c *fakeChat) ReplyEmbed(ctx context.Context, channelID, messageID string, e moderation.Embed) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeds = append(c.embeds, e)
	return nil
}

func (c *fakeChat) SendTransient(ctx context.Context, channelID, content string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, content)
	return nil
}

func (c *fakeChat) FindRole(guildID, name string) (command.Role, bool) {
	r, ok := c.roles[strings.ToLower(name)]
	return r, ok
}

func (c *fakeChat) ChannelName(channelID string) string { return "#" + channelID }
func (c *fakeChat) UserTag(userID string) string        { return "user#" + userID }
func (c *fakeChat) GuildName(guildID string) string     { return "Guild " + guildID }

func (c *fakeChat) IsAdministrator(guildID, userID string) bool { return c.admins[userID] }

func (c *fakeChat) lastReply() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.replies) == 0 {
		return ""
	}
	return c.replies[len(c.replies)-1]
}

func (c *fakeChat) lastEmbed() moderation.Embed {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.embeds) == 0 {
		return moderation.Embed{}
	}
	return c.embeds[len(c.embeds)-1]
}

type fixture struct {
	router *router.Router
	store  *storage.Storage
	chat   *fakeChat
}

func setup(t *testing.T, extra ...cmd.Command) *fixture {
	t.Helper()
	fs, err := datastore.NewFileStore(datastore.DefaultFileConfig(filepath.Join(t.TempDir(), "bot_data.json")))
	require.NoError(t, err)
	store := storage.New(fs, "?", storage.WithClock(func() time.Time { return t0 }))

	chat := &fakeChat{
		Platform: moderationtest.NewPlatform(),
		admins:   map[string]bool{"admin": true},
		roles: map[string]command.Role{
			"helpers": {ID: "r-help", Name: "Helpers"},
			"member":  {ID: "r-member", Name: "Member"},
		},
	}

	var registry *cmd.Registry
	if len(extra) > 0 {
		registry = cmd.NewRegistry()
		registry.Register(command.Builtins()...)
		registry.Register(extra...)
	}

	services := &command.Services{
		Store:       store,
		Dispatcher:  moderation.NewDispatcher(store, chat, retrylimit.NewAdaptiveLimiter(0)),
		Chat:        chat,
		Registry:    registry,
		InviteLink:  "https://example.invalid/invite",
		DeveloperID: "dev",
	}
	return &fixture{router: router.New(services), store: store, chat: chat}
}

// say sends content as the administrator in g1/c1.
func (f *fixture) say(t *testing.T, content string, mentions ...command.User) bool {
	t.Helper()
	return f.sayAs(t, command.User{ID: "admin", Tag: "admin#0001"}, nil, content, mentions...)
}

func (f *fixture) sayAs(t *testing.T, author command.User, roles []string, content string, mentions ...command.User) bool {
	t.Helper()
	var channels []string
	for _, tok := range strings.Fields(content) {
		if command.IsChannelMention(tok) {
			channels = append(channels, strings.TrimSuffix(strings.TrimPrefix(tok, "<#"), ">"))
		}
	}
	return f.router.Handle(context.Background(), router.Message{
		GuildID:         "g1",
		ChannelID:       "c1",
		MessageID:       "m1",
		Content:         content,
		Author:          author,
		AuthorRoles:     roles,
		Mentions:        mentions,
		ChannelMentions: channels,
	})
}

var target = command.User{ID: "u2", Tag: "user#2"}

func TestNonPrefixedMessageIgnored(t *testing.T) {
	f := setup(t)
	assert.False(t, f.say(t, "hello there"))
	assert.Empty(t, f.chat.replies)
	assert.Empty(t, f.chat.Calls())
}

func TestSetPrefix(t *testing.T) {
	f := setup(t)

	require.True(t, f.say(t, "?setprefix !!"))
	assert.Equal(t, "Server prefix set to: !!", f.chat.lastReply())
	assert.Equal(t, "!!", f.store.Prefix("g1"))

	assert.False(t, f.say(t, "?help"), "old prefix no longer routes")
	assert.True(t, f.say(t, "!!help"))
	assert.Equal(t, "Server prefix: `!!`", f.chat.lastEmbed().Description)
}

func TestSetPrefixTooLong(t *testing.T) {
	f := setup(t)

	f.say(t, "?setprefix abcd")
	assert.Equal(t, "Prefix must be 3 characters or less.", f.chat.lastReply())
	assert.Equal(t, "?", f.store.Prefix("g1"))

	f.say(t, "?setprefix")
	assert.Equal(t, "Please provide a new prefix.", f.chat.lastReply())
}

func TestToggleSetting(t *testing.T) {
	f := setup(t)

	f.say(t, "?togglesetting antiRaid")
	assert.Equal(t, "antiRaid is now disabled.", f.chat.lastReply())
	assert.False(t, f.store.Settings("g1").AntiRaid)

	f.say(t, "?togglesetting antiRaid")
	assert.Equal(t, "antiRaid is now enabled.", f.chat.lastReply())
	assert.True(t, f.store.Settings("g1").AntiRaid)

	f.say(t, "?togglesetting nope")
	assert.Equal(t, "Usage: ?togglesetting <antiSpam|antiCaps|antiInvites|antiMention|antiRaid>", f.chat.lastReply())
}

func TestWhitelist(t *testing.T) {
	f := setup(t)

	f.say(t, "?whitelist add <@u2>", target)
	assert.Equal(t, "Added user#2 to whitelist.", f.chat.lastReply())
	f.say(t, "?whitelist add <@u2>", target)
	assert.Equal(t, "User is already whitelisted.", f.chat.lastReply())
	assert.Equal(t, []string{"u2"}, f.store.Whitelist("g1"))

	f.say(t, "?whitelist list")
	assert.Equal(t, "user#u2", f.chat.lastEmbed().Description)

	f.say(t, "?whitelist remove <@u2>", target)
	assert.Equal(t, "Removed user#2 from whitelist.", f.chat.lastReply())
	f.say(t, "?whitelist remove <@u2>", target)
	assert.Equal(t, "User is not whitelisted.", f.chat.lastReply())

	logs := f.store.RecentAudit("g1", 10)
	require.Len(t, logs, 2)
	assert.Equal(t, "Whitelist", logs[0].Action)
}

func TestPermissionDenied(t *testing.T) {
	f := setup(t)
	pleb := command.User{ID: "u9", Tag: "pleb#9"}

	require.True(t, f.sayAs(t, pleb, nil, "?kick <@u2>", target))
	assert.Equal(t, "You do not have permission to use bot commands.", f.chat.lastReply())
	assert.Empty(t, f.chat.Calls())

	f.say(t, "?restriction helpers")
	assert.Equal(t, "Successfully set command restriction to role Helpers", f.chat.lastReply())

	f.sayAs(t, pleb, []string{"r-help"}, "?kick <@u2> rude", target)
	assert.Equal(t, "Successfully kicked user#2", f.chat.lastReply())

	f.sayAs(t, command.User{ID: "dev", Tag: "dev#1"}, nil, "?warn <@u2>", target)
	assert.Equal(t, "Successfully warned user#2. Total warnings: 1", f.chat.lastReply())
}

func TestKick(t *testing.T) {
	f := setup(t)

	f.say(t, "?kick <@u2> spamming links", target)
	assert.Equal(t, "Successfully kicked user#2", f.chat.lastReply())
	assert.Equal(t, []string{"Kick(g1,u2,spamming links)"}, f.chat.Methods())

	f.chat.Fail["Kick"] = fmt.Errorf("missing permissions")
	f.say(t, "?kick <@u2>", target)
	assert.Equal(t, "Failed to kick user.", f.chat.lastReply())

	f.say(t, "?kick")
	assert.Equal(t, "Please mention a user to kick.", f.chat.lastReply())
}

func TestMuteWithDuration(t *testing.T) {
	f := setup(t)

	f.say(t, "?mute <@u2> 2h too loud", target)
	assert.Equal(t, "Successfully muted user#2 for 2h", f.chat.lastReply())
	assert.Equal(t, t0.Add(2*time.Hour).UnixMilli(), f.store.Get("g1").Mutes["u2"])

	calls := f.chat.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"g1", "u2", "too loud"}, calls[0].Args)
}

func TestSoftbanRejectsBadDuration(t *testing.T) {
	f := setup(t)

	f.say(t, "?softban <@u2> forever", target)
	assert.Equal(t, "Please provide a valid duration (e.g., 1d, 2h, 30m).", f.chat.lastReply())
	assert.Empty(t, f.chat.Calls())
}

func TestPurge(t *testing.T) {
	f := setup(t)

	f.say(t, "?purge 10")
	assert.Equal(t, []string{"BulkDelete(c1,11)"}, f.chat.Methods())
	assert.Equal(t, []string{"Successfully deleted 10 messages."}, f.chat.notices)

	f.say(t, "?purge 101")
	assert.Equal(t, "Please provide a number between 1 and 100.", f.chat.lastReply())
}

func TestSetRole(t *testing.T) {
	f := setup(t)

	f.say(t, "?setrole <@u2> member", target)
	assert.Equal(t, "Successfully gave user#2 the role Member", f.chat.lastReply())
	assert.Equal(t, []string{"AddRole(g1,u2,r-member)"}, f.chat.Methods())

	f.say(t, "?setrole <@u2> ghosts", target)
	assert.Equal(t, "Role not found.", f.chat.lastReply())
}

func TestAutoPurge(t *testing.T) {
	f := setup(t)

	f.say(t, "?autopurge start 1h")
	assert.Equal(t, "Auto purge enabled in #c1 every 1h", f.chat.lastReply())

	f.say(t, "?autopurge start <#c7> 30m")
	rules := f.store.AutoPurgeRules("g1")
	require.Len(t, rules, 2)
	assert.Equal(t, int64(3_600_000), rules["c1"].IntervalMillis)
	assert.Equal(t, int64(1_800_000), rules["c7"].IntervalMillis)

	f.say(t, "?autopurge list")
	assert.Equal(t, "#c1: every 1h\n#c7: every 30m", f.chat.lastEmbed().Description)

	f.say(t, "?autopurge stop <#c7>")
	assert.Equal(t, "Auto purge disabled in #c7", f.chat.lastReply())
	f.say(t, "?autopurge stop <#c7>")
	assert.Equal(t, "Auto purge is not enabled in this channel.", f.chat.lastReply())

	f.say(t, "?autopurge start xyz")
	assert.Equal(t, "Invalid interval format.", f.chat.lastReply())
}

func TestLogs(t *testing.T) {
	f := setup(t)
	f.say(t, "?kick <@u2> a", target)
	f.say(t, "?warn <@u2> b", target)

	f.say(t, "?logs")
	fields := f.chat.lastEmbed().Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "Kick - 2023-11-14 22:13:20", fields[0].Name)
	assert.Equal(t, "admin#0001 kicked user#2: a", fields[0].Value)

	f.say(t, "?logs warn")
	require.Len(t, f.chat.lastEmbed().Fields, 1)

	f.say(t, "?logs ban")
	assert.Equal(t, "No logs found.", f.chat.lastReply())
}

func TestCustomCommand(t *testing.T) {
	f := setup(t)

	f.say(t, "?customcommand add rules Be nice to each other")
	assert.Equal(t, "Custom command rules saved.", f.chat.lastReply())

	f.chat.Reset()
	require.True(t, f.say(t, "?RULES"))
	assert.Equal(t, []string{"SendMessage(c1,Be nice to each other)"}, f.chat.Methods())

	f.say(t, "?customcommand add kick nope")
	assert.Equal(t, "Cannot override built-in command kick.", f.chat.lastReply())

	f.chat.Reset()
	f.say(t, "?unknown")
	assert.Empty(t, f.chat.Calls())
}

func TestCustomCommandNeedsPermission(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.store.SetCustomCommand("g1", "rules", "Be nice"))

	f.sayAs(t, command.User{ID: "u9"}, nil, "?rules")
	assert.Equal(t, "You do not have permission to use bot commands.", f.chat.lastReply())
	assert.Empty(t, f.chat.Calls())
}

type panicky struct{}

func (panicky) Name() string        { return "boom" }
func (panicky) Description() string { return "panics" }
func (panicky) Run(context.Context, *cmd.Invocation) error {
	panic("kaboom")
}

func TestPanicIsRecovered(t *testing.T) {
	f := setup(t, panicky{})

	assert.NotPanics(t, func() { f.say(t, "?boom") })
	assert.Equal(t, "An error occurred while executing the command.", f.chat.lastReply())
}

func TestDirectMessagesIgnored(t *testing.T) {
	f := setup(t)
	handled := f.router.Handle(context.Background(), router.Message{
		ChannelID: "dm",
		Content:   "?kick <@u2>",
		Author:    command.User{ID: "admin"},
		Mentions:  []command.User{target},
	})
	assert.True(t, handled)
	assert.Empty(t, f.chat.Calls())
	assert.Empty(t, f.chat.replies)
}

func TestHelpListsCategories(t *testing.T) {
	f := setup(t)
	f.say(t, "?help")

	e := f.chat.lastEmbed()
	require.NotEmpty(t, e.Fields)
	assert.Equal(t, command.CategoryModeration, e.Fields[0].Name)
	assert.Contains(t, e.Fields[0].Value, "`kick`")
	assert.Equal(t, "Auto Moderation", e.Fields[len(e.Fields)-1].Name)
}
