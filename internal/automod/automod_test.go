package automod

import (
	"fmt"
	"testing"
	"time"

	st "github.com/keshon/server-warden/internal/storagetypes"
	"github.com/stretchr/testify/assert"
)

var t0 = time.UnixMilli(1_700_000_000_000)

func TestSpamTriggersOnFifthDuplicate(t *testing.T) {
	d := NewSpamDetector()
	for i := 0; i < 4; i++ {
		assert.False(t, d.Check("g1", "u1", "buy now", t0.Add(time.Duration(i)*500*time.Millisecond)))
	}
	assert.True(t, d.Check("g1", "u1", "buy now", t0.Add(2*time.Second)))
}

func TestSpamDiversifiedContentDoesNotTrigger(t *testing.T) {
	d := NewSpamDetector()
	for i := 0; i < 10; i++ {
		assert.False(t, d.Check("g1", "u1", fmt.Sprintf("msg %d", i), t0.Add(time.Duration(i)*100*time.Millisecond)))
	}
}

func TestSpamWindowIsStrict(t *testing.T) {
	d := NewSpamDetector()
	// first message falls out exactly at the window edge
	d.Check("g1", "u1", "x", t0)
	for i := 1; i <= 3; i++ {
		d.Check("g1", "u1", "x", t0.Add(time.Duration(i)*time.Second))
	}
	assert.False(t, d.Check("g1", "u1", "x", t0.Add(SpamWindow)))
	assert.True(t, d.Check("g1", "u1", "x", t0.Add(SpamWindow+time.Millisecond)))
}

func TestSpamWindowsArePerGuild(t *testing.T) {
	d := NewSpamDetector()
	for i := 0; i < 4; i++ {
		d.Check("g1", "u1", "hi", t0)
	}
	assert.False(t, d.Check("g2", "u1", "hi", t0))
	assert.False(t, d.Check("g1", "u2", "hi", t0))
	assert.True(t, d.Check("g1", "u1", "hi", t0))
}

func TestRaidTriggersOnFifthDistinctJoin(t *testing.T) {
	joins := map[string]int64{}
	for i := 0; i < 4; i++ {
		assert.False(t, CheckRaid(joins, fmt.Sprintf("u%d", i), t0.Add(time.Duration(i)*time.Second)))
	}
	assert.True(t, CheckRaid(joins, "u4", t0.Add(4*time.Second)))
}

func TestRaidRejoinCountsOnce(t *testing.T) {
	joins := map[string]int64{}
	for i := 0; i < 6; i++ {
		assert.False(t, CheckRaid(joins, "same", t0.Add(time.Duration(i)*time.Second)))
	}
	assert.Len(t, joins, 1)
}

func TestRaidSpacedJoinsNeverAccumulate(t *testing.T) {
	joins := map[string]int64{}
	for i := 0; i < 20; i++ {
		at := t0.Add(time.Duration(i) * (RaidWindow + time.Second))
		assert.False(t, CheckRaid(joins, fmt.Sprintf("u%d", i), at))
	}
	assert.Len(t, joins, 1)
}

func TestContentChecks(t *testing.T) {
	assert := assert.New(t)

	assert.True(IsShouting("THIS IS SO LOUD"))
	assert.False(IsShouting("LOUD"))
	assert.False(IsShouting("This Is Mostly Normal Text"))

	assert.True(HasInvite("join discord.gg/abc123"))
	assert.True(HasInvite("https://discord.com/invite/xyz"))
	assert.False(HasInvite("discord is fun"))

	assert.True(IsMentionSpam(5))
	assert.False(IsMentionSpam(4))
}

func TestEngineRespectsFlags(t *testing.T) {
	e := NewEngine()
	flags := st.NewRecord("?").Settings.AutoModFlags

	msg := Message{GuildID: "g1", UserID: "u1", Content: "see discord.gg/abc", Time: t0}
	assert.Equal(t, TriggerInvite, e.CheckMessage(flags, msg))

	flags.AntiInvites = false
	assert.Equal(t, TriggerNone, e.CheckMessage(flags, msg))

	loud := Message{GuildID: "g1", UserID: "u2", Content: "STOP SHOUTING AT ME", Time: t0}
	assert.Equal(t, TriggerCaps, e.CheckMessage(flags, loud))

	pings := Message{GuildID: "g1", UserID: "u3", Content: "hey", Mentions: 6, Time: t0}
	assert.Equal(t, TriggerMention, e.CheckMessage(flags, pings))
}

func TestEngineSpamWins(t *testing.T) {
	e := NewEngine()
	flags := st.NewRecord("?").Settings.AutoModFlags
	msg := Message{GuildID: "g1", UserID: "u1", Content: "discord.gg/abc", Time: t0}

	for i := 0; i < 4; i++ {
		assert.Equal(t, TriggerInvite, e.CheckMessage(flags, msg))
	}
	assert.Equal(t, TriggerSpam, e.CheckMessage(flags, msg))
}

func TestEngineJoinHonoursAntiRaid(t *testing.T) {
	e := NewEngine()
	r := st.NewRecord("?")
	r.Settings.AntiRaid = false

	for i := 0; i < 6; i++ {
		assert.False(t, e.CheckJoin(r, fmt.Sprintf("u%d", i), t0))
	}
	assert.Empty(t, r.JoinTimes)

	r.Settings.AntiRaid = true
	for i := 0; i < 4; i++ {
		assert.False(t, e.CheckJoin(r, fmt.Sprintf("u%d", i), t0))
	}
	assert.True(t, e.CheckJoin(r, "u4", t0))
}
