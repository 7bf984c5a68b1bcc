package storage

import st "github.com/keshon/server-warden/internal/storagetypes"

// AddWarning appends a warning and returns the user's warning count.
// Warnings are never trimmed.
func (s *Storage) AddWarning(guildID, userID string, w st.Warning) (int, error) {
	var total int
	err := s.Mutate(guildID, func(r *st.Record) error {
		r.Warnings[userID] = append(r.Warnings[userID], w)
		total = len(r.Warnings[userID])
		return nil
	})
	return total, err
}

func (s *Storage) Warnings(guildID, userID string) []st.Warning {
	return s.Get(guildID).Warnings[userID]
}
