package storage

import (
	"sort"

	st "github.com/keshon/server-warden/internal/storagetypes"
)

// SetTempBan marks userID banned until expiry (epoch millis). Re-issuing
// overwrites the previous expiry.
func (s *Storage) SetTempBan(guildID, userID string, expiry int64) error {
	return s.Mutate(guildID, func(r *st.Record) error {
		r.TempBans[userID] = expiry
		return nil
	})
}

// ClearTempBan removes the entry and reports whether one existed.
func (s *Storage) ClearTempBan(guildID, userID string) (bool, error) {
	return s.clearSanction(guildID, userID, func(r *st.Record) map[string]int64 { return r.TempBans })
}

func (s *Storage) SetMute(guildID, userID string, expiry int64) error {
	return s.Mutate(guildID, func(r *st.Record) error {
		r.Mutes[userID] = expiry
		return nil
	})
}

func (s *Storage) ClearMute(guildID, userID string) (bool, error) {
	return s.clearSanction(guildID, userID, func(r *st.Record) map[string]int64 { return r.Mutes })
}

// ExpiredSanctions are the entries one guild lost in a sweep.
type ExpiredSanctions struct {
	GuildID string
	Bans    []string
	Mutes   []string
}

// TakeExpiredSanctions removes every ban and mute, in every guild, whose
// expiry is at or before now and returns them grouped by guild in guild
// order. The pass ends with a single snapshot write, skipped when nothing
// expired. Entries are removed exactly once; a concurrent explicit unban that
// got there first leaves nothing to take.
func (s *Storage) TakeExpiredSanctions(now int64) []ExpiredSanctions {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []ExpiredSanctions
	for _, guildID := range ids {
		if !hasExpired(s.records[guildID], now) {
			continue
		}
		draft := s.records[guildID].Clone()
		out = append(out, ExpiredSanctions{
			GuildID: guildID,
			Bans:    takeExpired(draft.TempBans, now),
			Mutes:   takeExpired(draft.Mutes, now),
		})
		s.records[guildID] = draft
		s.encodeLocked(guildID)
	}
	if len(out) > 0 {
		s.persistLocked()
	}
	return out
}

func hasExpired(r *st.Record, now int64) bool {
	for _, exp := range r.TempBans {
		if exp <= now {
			return true
		}
	}
	for _, exp := range r.Mutes {
		if exp <= now {
			return true
		}
	}
	return false
}

func (s *Storage) clearSanction(guildID, userID string, pick func(*st.Record) map[string]int64) (bool, error) {
	var existed bool
	err := s.Mutate(guildID, func(r *st.Record) error {
		m := pick(r)
		_, existed = m[userID]
		delete(m, userID)
		return nil
	})
	return existed, err
}

func takeExpired(m map[string]int64, now int64) []string {
	var out []string
	for userID, exp := range m {
		if exp <= now {
			out = append(out, userID)
			delete(m, userID)
		}
	}
	sort.Strings(out)
	return out
}
