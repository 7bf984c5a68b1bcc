package storage

import (
	"strings"
	"unicode/utf8"

	st "github.com/keshon/server-warden/internal/storagetypes"
)

// Settings names accepted by ToggleSetting, in display order.
var SettingNames = []string{"antiSpam", "antiCaps", "antiInvites", "antiMention", "antiRaid"}

func (s *Storage) Settings(guildID string) st.Settings {
	return s.Get(guildID).Settings
}

// Prefix returns the guild's command prefix, falling back to the default.
func (s *Storage) Prefix(guildID string) string {
	if p := s.Get(guildID).Settings.Prefix; p != "" {
		return p
	}
	return s.prefix
}

func (s *Storage) SetPrefix(guildID, prefix string) error {
	if prefix == "" {
		return ErrEmptyPrefix
	}
	if utf8.RuneCountInString(prefix) > st.MaxPrefixLength {
		return ErrPrefixTooLong
	}
	return s.Mutate(guildID, func(r *st.Record) error {
		r.Settings.Prefix = prefix
		return nil
	})
}

func (s *Storage) SetChannel(guildID string, kind st.ChannelKind, channelID string) error {
	return s.Mutate(guildID, func(r *st.Record) error {
		r.SetChannel(kind, channelID)
		return nil
	})
}

func (s *Storage) SetAutoRole(guildID, roleID string) error {
	return s.Mutate(guildID, func(r *st.Record) error {
		r.Settings.AutoRole = roleID
		return nil
	})
}

func (s *Storage) SetAllowedRole(guildID, roleID string) error {
	return s.Mutate(guildID, func(r *st.Record) error {
		r.Settings.AllowedRole = roleID
		return nil
	})
}

// ToggleSetting flips one auto-mod flag and returns its new value.
func (s *Storage) ToggleSetting(guildID, name string) (bool, error) {
	var enabled bool
	err := s.Mutate(guildID, func(r *st.Record) error {
		flag := autoModFlag(&r.Settings.AutoModFlags, name)
		if flag == nil {
			return ErrUnknownSetting
		}
		*flag = !*flag
		enabled = *flag
		return nil
	})
	return enabled, err
}

// IsValidSetting reports whether name is accepted by ToggleSetting.
func IsValidSetting(name string) bool {
	var f st.AutoModFlags
	return autoModFlag(&f, name) != nil
}

func autoModFlag(f *st.AutoModFlags, name string) *bool {
	switch strings.TrimSpace(name) {
	case "antiSpam":
		return &f.AntiSpam
	case "antiCaps":
		return &f.AntiCaps
	case "antiInvites":
		return &f.AntiInvites
	case "antiMention":
		return &f.AntiMention
	case "antiRaid":
		return &f.AntiRaid
	}
	return nil
}
