package moderation

import "fmt"

// describe renders the human readable audit summary of an action.
func describe(a Action, res Result) string {
	switch a.Kind {
	case KindKick:
		return fmt.Sprintf("%s kicked %s: %s", a.Moderator, a.Target, a.Reason)
	case KindBan:
		return fmt.Sprintf("%s banned %s: %s", a.Moderator, a.Target, a.Reason)
	case KindSoftban:
		return fmt.Sprintf("%s softbanned %s for %s: %s", a.Moderator, a.Target, a.DurationText, a.Reason)
	case KindUnban:
		return fmt.Sprintf("%s unbanned user %s", a.Moderator, a.UserID)
	case KindMute:
		return fmt.Sprintf("%s muted %s%s: %s", a.Moderator, a.Target, MuteSuffix(a.DurationText), a.Reason)
	case KindUnmute:
		return fmt.Sprintf("%s unmuted %s: %s", a.Moderator, a.Target, a.Reason)
	case KindWarn:
		return fmt.Sprintf("%s warned %s: %s", a.Moderator, a.Target, a.Reason)
	case KindPurge:
		return fmt.Sprintf("%s purged %d messages in %s", a.Moderator, res.Deleted, a.Channel)
	case KindRoleAdd:
		return fmt.Sprintf("%s gave %s the role %s", a.Moderator, a.Target, a.Role)
	case KindRoleRemove:
		return fmt.Sprintf("%s removed the role %s from %s", a.Moderator, a.Role, a.Target)
	case KindChannelCreate:
		return fmt.Sprintf("%s created %s channel %s", a.Moderator, a.Type, a.Name)
	case KindChannelDelete:
		return fmt.Sprintf("%s deleted channel %s", a.Moderator, a.Channel)
	case KindAutoRaidBan:
		return fmt.Sprintf("Banned %s (%s) for potential raid", a.Target, a.UserID)
	case KindAutoSpamMute:
		return fmt.Sprintf("Muted %s (%s) for 10m: repeated messages", a.Target, a.UserID)
	case KindAutoUnban:
		return fmt.Sprintf("User %s temporary ban expired", a.UserID)
	case KindAutoUnmute:
		return fmt.Sprintf("User %s mute expired", a.UserID)
	case KindAutoPurge:
		return fmt.Sprintf("Auto-deleted %d messages in %s", res.Deleted, a.Channel)
	case KindAutoDelete:
		return fmt.Sprintf("Deleted a message from %s in %s: %s", a.Target, a.Channel, a.Reason)
	}
	return a.Reason
}

// MuteSuffix is the duration part of mute summaries and replies.
func MuteSuffix(durationText string) string {
	if durationText == "" {
		return " for 24h"
	}
	return " for " + durationText
}
