package storage

import (
	"strings"

	st "github.com/keshon/server-warden/internal/storagetypes"
)

// SetCustomCommand stores a static response for name (case-insensitive).
func (s *Storage) SetCustomCommand(guildID, name, response string) error {
	name = strings.ToLower(name)
	return s.Mutate(guildID, func(r *st.Record) error {
		r.CustomCommands[name] = response
		return nil
	})
}

func (s *Storage) RemoveCustomCommand(guildID, name string) error {
	name = strings.ToLower(name)
	return s.Mutate(guildID, func(r *st.Record) error {
		if _, ok := r.CustomCommands[name]; !ok {
			return ErrNoCustomCommand
		}
		delete(r.CustomCommands, name)
		return nil
	})
}

// CustomCommand looks up the exact response text for name.
func (s *Storage) CustomCommand(guildID, name string) (string, bool) {
	resp, ok := s.Get(guildID).CustomCommands[strings.ToLower(name)]
	return resp, ok
}

func (s *Storage) CustomCommands(guildID string) map[string]string {
	return s.Get(guildID).CustomCommands
}
