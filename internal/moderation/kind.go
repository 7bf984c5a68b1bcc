package moderation

// Kind is one of the closed set of actions the dispatcher knows how to carry
// out and audit.
type Kind string

const (
	KindKick          Kind = "kick"
	KindBan           Kind = "ban"
	KindSoftban       Kind = "softban"
	KindUnban         Kind = "unban"
	KindMute          Kind = "mute"
	KindUnmute        Kind = "unmute"
	KindWarn          Kind = "warn"
	KindPurge         Kind = "purge"
	KindRoleAdd       Kind = "role-add"
	KindRoleRemove    Kind = "role-remove"
	KindChannelCreate Kind = "channel-create"
	KindChannelDelete Kind = "channel-delete"
	KindSettingChange Kind = "setting-change"
	KindWhitelist     Kind = "whitelist"
	KindAutoRaidBan   Kind = "auto-raid-ban"
	KindAutoSpamMute  Kind = "auto-spam-mute"
	KindAutoUnban     Kind = "auto-unban"
	KindAutoUnmute    Kind = "auto-unmute"
	KindAutoPurge     Kind = "auto-purge"
	KindAutoDelete    Kind = "auto-delete"
)

var labels = map[Kind]string{
	KindKick:          "Kick",
	KindBan:           "Ban",
	KindSoftban:       "Softban",
	KindUnban:         "Unban",
	KindMute:          "Mute",
	KindUnmute:        "Unmute",
	KindWarn:          "Warn",
	KindPurge:         "Purge",
	KindRoleAdd:       "Role Assignment",
	KindRoleRemove:    "Role Removal",
	KindChannelCreate: "Channel Create",
	KindChannelDelete: "Channel Delete",
	KindSettingChange: "Settings",
	KindWhitelist:     "Whitelist",
	KindAutoRaidBan:   "Anti-Raid Ban",
	KindAutoSpamMute:  "Anti-Spam Mute",
	KindAutoUnban:     "Auto Unban",
	KindAutoUnmute:    "Auto Unmute",
	KindAutoPurge:     "Auto Purge",
	KindAutoDelete:    "Auto Delete",
}

// Label is the audit log name of the action.
func (k Kind) Label() string {
	if l, ok := labels[k]; ok {
		return l
	}
	return string(k)
}

func (k Kind) Valid() bool {
	_, ok := labels[k]
	return ok
}

// Punitive reports auto-triggered actions aimed at a user. Whitelisted users
// are exempt from these.
func (k Kind) Punitive() bool {
	switch k {
	case KindAutoRaidBan, KindAutoSpamMute, KindAutoDelete:
		return true
	}
	return false
}
