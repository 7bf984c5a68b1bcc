package storage

import st "github.com/keshon/server-warden/internal/storagetypes"

// AppendAudit adds an entry to the guild's audit log, evicting the oldest
// entries beyond MaxAuditEntries.
func (s *Storage) AppendAudit(guildID, action, details string) error {
	entry := st.AuditEntry{
		Timestamp: s.now().UnixMilli(),
		Action:    action,
		Details:   details,
	}
	return s.Mutate(guildID, func(r *st.Record) error {
		r.Logs = append(r.Logs, entry)
		if len(r.Logs) > st.MaxAuditEntries {
			r.Logs = append([]st.AuditEntry{}, r.Logs[len(r.Logs)-st.MaxAuditEntries:]...)
		}
		return nil
	})
}

// RecentAudit returns up to limit of the newest entries, oldest first.
func (s *Storage) RecentAudit(guildID string, limit int) []st.AuditEntry {
	logs := s.Get(guildID).Logs
	if limit > 0 && len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	return logs
}
