package storage

import (
	"slices"

	st "github.com/keshon/server-warden/internal/storagetypes"
)

// AddToWhitelist exempts userID from auto-moderation. Adding a member twice
// returns ErrAlreadyWhitelisted and leaves the set unchanged.
func (s *Storage) AddToWhitelist(guildID, userID string) error {
	return s.Mutate(guildID, func(r *st.Record) error {
		if slices.Contains(r.Whitelist, userID) {
			return ErrAlreadyWhitelisted
		}
		r.Whitelist = append(r.Whitelist, userID)
		return nil
	})
}

// RemoveFromWhitelist returns ErrNotWhitelisted for non-members.
func (s *Storage) RemoveFromWhitelist(guildID, userID string) error {
	return s.Mutate(guildID, func(r *st.Record) error {
		i := slices.Index(r.Whitelist, userID)
		if i < 0 {
			return ErrNotWhitelisted
		}
		r.Whitelist = slices.Delete(r.Whitelist, i, i+1)
		return nil
	})
}

func (s *Storage) IsWhitelisted(guildID, userID string) bool {
	return slices.Contains(s.Get(guildID).Whitelist, userID)
}

func (s *Storage) Whitelist(guildID string) []string {
	return s.Get(guildID).Whitelist
}
