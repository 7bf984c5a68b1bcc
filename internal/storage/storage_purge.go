package storage

import (
	"sort"

	st "github.com/keshon/server-warden/internal/storagetypes"
)

// StartAutoPurge schedules a recurring purge of channelID. The first run is
// one interval from now.
func (s *Storage) StartAutoPurge(guildID, channelID string, intervalMillis int64) error {
	now := s.now().UnixMilli()
	return s.Mutate(guildID, func(r *st.Record) error {
		r.Settings.AutoPurge[channelID] = st.AutoPurgeRule{
			IntervalMillis: intervalMillis,
			LastRun:        now,
		}
		return nil
	})
}

func (s *Storage) StopAutoPurge(guildID, channelID string) error {
	return s.Mutate(guildID, func(r *st.Record) error {
		if _, ok := r.Settings.AutoPurge[channelID]; !ok {
			return ErrNoAutoPurge
		}
		delete(r.Settings.AutoPurge, channelID)
		return nil
	})
}

func (s *Storage) AutoPurgeRules(guildID string) map[string]st.AutoPurgeRule {
	return s.Get(guildID).Settings.AutoPurge
}

// TakeDuePurges stamps LastRun = now on every rule with
// now - LastRun >= IntervalMillis and returns those channel IDs, sorted.
func (s *Storage) TakeDuePurges(guildID string, now int64) ([]string, error) {
	if !hasDuePurge(s.AutoPurgeRules(guildID), now) {
		return nil, nil
	}

	var due []string
	err := s.Mutate(guildID, func(r *st.Record) error {
		for channelID, rule := range r.Settings.AutoPurge {
			if now-rule.LastRun >= rule.IntervalMillis {
				rule.LastRun = now
				r.Settings.AutoPurge[channelID] = rule
				due = append(due, channelID)
			}
		}
		sort.Strings(due)
		return nil
	})
	return due, err
}

func hasDuePurge(rules map[string]st.AutoPurgeRule, now int64) bool {
	for _, rule := range rules {
		if now-rule.LastRun >= rule.IntervalMillis {
			return true
		}
	}
	return false
}
