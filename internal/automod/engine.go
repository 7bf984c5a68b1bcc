// Package automod holds the time-windowed heuristics that decide whether an
// inbound message or join should trigger an automatic moderation action.
// Nothing here talks to the platform or persists anything by itself.
package automod

import (
	"time"

	st "github.com/keshon/server-warden/internal/storagetypes"
)

type Trigger string

const (
	TriggerNone    Trigger = ""
	TriggerSpam    Trigger = "spam"
	TriggerInvite  Trigger = "invite"
	TriggerMention Trigger = "mention"
	TriggerCaps    Trigger = "caps"
)

type Message struct {
	GuildID  string
	UserID   string
	Content  string
	Mentions int // distinct users mentioned
	Time     time.Time
}

type Engine struct {
	spam *SpamDetector
}

func NewEngine() *Engine {
	return &Engine{spam: NewSpamDetector()}
}

// CheckMessage runs the enabled message heuristics. Spam goes first so the
// spam window sees every message while antiSpam is on.
func (e *Engine) CheckMessage(flags st.AutoModFlags, m Message) Trigger {
	if flags.AntiSpam && e.spam.Check(m.GuildID, m.UserID, m.Content, m.Time) {
		return TriggerSpam
	}
	if flags.AntiInvites && HasInvite(m.Content) {
		return TriggerInvite
	}
	if flags.AntiMention && IsMentionSpam(m.Mentions) {
		return TriggerMention
	}
	if flags.AntiCaps && IsShouting(m.Content) {
		return TriggerCaps
	}
	return TriggerNone
}

// CheckJoin runs the raid heuristic against the guild's join times. Call it
// from inside a storage mutation so the recorded join is persisted.
func (e *Engine) CheckJoin(r *st.Record, userID string, now time.Time) bool {
	if !r.Settings.AntiRaid {
		return false
	}
	return CheckRaid(r.JoinTimes, userID, now)
}
