package discord

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/server-warden/datastore"
	"github.com/keshon/server-warden/internal/command"
	"github.com/keshon/server-warden/internal/config"
	"github.com/keshon/server-warden/internal/moderation"
	"github.com/keshon/server-warden/internal/moderation/moderationtest"
	"github.com/keshon/server-warden/internal/storage"
	st "github.com/keshon/server-warden/internal/storagetypes"
	"github.com/keshon/server-warden/pkg/jobmgr"
)

var t0 = time.UnixMilli(1_700_000_000_000)

type fakeChat struct {
	*moderationtest.Platform

	mu      sync.Mutex
	replies []string
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
	c.replies = append(c.replies, e.Title)
	return nil
}

func (c *fakeChat) SendTransient(ctx context.Context, channelID, content string, ttl time.Duration) error {
	return nil
}

func (c *fakeChat) FindRole(guildID, name string) (command.Role, bool) { return command.Role{}, false }
func (c *fakeChat) ChannelName(channelID string) string                { return "#" + channelID }
func (c *fakeChat) UserTag(userID string) string                       { return "user#" + userID }
func (c *fakeChat) GuildName(guildID string) string                    { return "Guild " + guildID }
func (c *fakeChat) IsAdministrator(guildID, userID string) bool        { return false }

func (c *fakeChat) Replies() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.replies...)
}

func newTestBot(t *testing.T) (*Bot, *fakeChat) {
	t.Helper()
	fs, err := datastore.NewFileStore(datastore.DefaultFileConfig(filepath.Join(t.TempDir(), "bot_data.json")))
	require.NoError(t, err)
	store := storage.New(fs, "?", storage.WithClock(func() time.Time { return t0 }))

	chat := &fakeChat{Platform: moderationtest.NewPlatform()}
	return newBot(&config.Config{}, store, chat, jobmgr.NewManager()), chat
}

func join(guildID, userID string) *discordgo.GuildMemberAdd {
	return &discordgo.GuildMemberAdd{Member: &discordgo.Member{
		GuildID: guildID,
		User:    &discordgo.User{ID: userID, Username: "member" + userID},
	}}
}

func message(id, content string, mentions ...*discordgo.User) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        id,
		GuildID:   "g1",
		ChannelID: "c1",
		Content:   content,
		Author:    &discordgo.User{ID: "u1", Username: "chatty"},
		Mentions:  mentions,
	}}
}

func TestJoinWelcomesAndAssignsAutoRole(t *testing.T) {
	b, chat := newTestBot(t)
	require.NoError(t, b.store.SetAutoRole("g1", "r1"))
	require.NoError(t, b.store.SetChannel("g1", st.ChannelWelcome, "welcome"))

	b.onGuildMemberAdd(nil, join("g1", "u1"))

	assert.Equal(t, []string{
		"AddRole(g1,u1,r1)",
		"SendEmbed(welcome,Welcome!)",
	}, chat.Methods())
	welcome := chat.Embeds("welcome")
	require.Len(t, welcome, 1)
	assert.Equal(t, "Welcome to the server, <@u1>!", welcome[0].Description)
	assert.Contains(t, b.store.Get("g1").JoinTimes, "u1")
}

func TestRaidJoinBansAndSkipsWelcome(t *testing.T) {
	b, chat := newTestBot(t)
	require.NoError(t, b.store.SetAutoRole("g1", "r1"))
	require.NoError(t, b.store.SetChannel("g1", st.ChannelWelcome, "welcome"))

	for i := 1; i < 5; i++ {
		b.onGuildMemberAdd(nil, join("g1", fmt.Sprintf("u%d", i)))
	}
	chat.Reset()

	b.onGuildMemberAdd(nil, join("g1", "u5"))

	assert.Equal(t, []string{"Ban(g1,u5,Anti-raid protection)"}, chat.Methods())
	logs := b.store.RecentAudit("g1", 1)
	require.Len(t, logs, 1)
	assert.Equal(t, "Anti-Raid Ban", logs[0].Action)
}

func TestRaidIgnoredWhenDisabled(t *testing.T) {
	b, chat := newTestBot(t)
	_, err := b.store.ToggleSetting("g1", "antiRaid")
	require.NoError(t, err)

	for i := 1; i <= 6; i++ {
		b.onGuildMemberAdd(nil, join("g1", fmt.Sprintf("u%d", i)))
	}
	assert.Empty(t, chat.Methods())
}

func TestRepeatedMessagesMuteSpammer(t *testing.T) {
	b, chat := newTestBot(t)

	for i := 1; i < 5; i++ {
		b.onMessageCreate(nil, message(fmt.Sprintf("m%d", i), "buy now"))
	}
	assert.Empty(t, chat.Methods())

	b.onMessageCreate(nil, message("m5", "buy now"))

	assert.Equal(t, []string{"Timeout(g1,u1,Anti-spam protection)"}, chat.Methods())
	assert.Contains(t, b.store.Get("g1").Mutes, "u1")
	assert.Equal(t, "Anti-Spam Mute", b.store.RecentAudit("g1", 1)[0].Action)
}

func TestContentFiltersDeleteMessage(t *testing.T) {
	many := []*discordgo.User{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}, {ID: "e"}}

	tests := []struct {
		name string
		msg  *discordgo.MessageCreate
	}{
		{"caps", message("m1", "THIS IS A VERY LOUD MESSAGE")},
		{"invite", message("m1", "join us at discord.gg/abc123")},
		{"mentions", message("m1", "hey all", many...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, chat := newTestBot(t)

			b.onMessageCreate(nil, tt.msg)

			assert.Equal(t, []string{"DeleteMessage(c1,m1)"}, chat.Methods())
			logs := b.store.RecentAudit("g1", 1)
			require.Len(t, logs, 1)
			assert.Equal(t, "Auto Delete", logs[0].Action)
		})
	}
}

func TestWhitelistedAuthorNotModerated(t *testing.T) {
	b, chat := newTestBot(t)
	require.NoError(t, b.store.AddToWhitelist("g1", "u1"))

	b.onMessageCreate(nil, message("m1", "THIS IS A VERY LOUD MESSAGE"))

	assert.Empty(t, chat.Methods())
	assert.Empty(t, b.store.RecentAudit("g1", 10))
}

func TestPrefixedMessageSkipsAutoMod(t *testing.T) {
	b, chat := newTestBot(t)

	b.onMessageCreate(nil, message("m1", "?KICK EVERYONE RIGHT NOW PLEASE"))

	assert.Empty(t, chat.Methods())
	assert.Equal(t, []string{"You do not have permission to use bot commands."}, chat.Replies())
}

func TestBotAndDirectMessagesIgnored(t *testing.T) {
	b, chat := newTestBot(t)

	bot := message("m1", "THIS IS A VERY LOUD MESSAGE")
	bot.Author.Bot = true
	b.onMessageCreate(nil, bot)

	dm := message("m2", "THIS IS A VERY LOUD MESSAGE")
	dm.GuildID = ""
	b.onMessageCreate(nil, dm)

	assert.Empty(t, chat.Methods())
	assert.Empty(t, chat.Replies())
}

func TestLeaveSendsGoodbye(t *testing.T) {
	b, chat := newTestBot(t)
	require.NoError(t, b.store.SetChannel("g1", st.ChannelLeave, "bye"))

	b.onGuildMemberRemove(nil, &discordgo.GuildMemberRemove{Member: &discordgo.Member{
		GuildID: "g1",
		User:    &discordgo.User{ID: "u1", Username: "leaver"},
	}})

	embeds := chat.Embeds("bye")
	require.Len(t, embeds, 1)
	assert.Equal(t, "Goodbye!", embeds[0].Title)
	assert.Contains(t, embeds[0].Description, "has left the server.")
}
