package automod

import "time"

const (
	RaidWindow    = 10 * time.Second
	RaidThreshold = 5
)

// CheckRaid records userID joining at now in joinTimes and reports whether
// at least RaidThreshold joins fall within the trailing RaidWindow. A user
// rejoining overwrites their previous entry, so only distinct users count.
// Entries outside the window can never count again and are dropped.
func CheckRaid(joinTimes map[string]int64, userID string, now time.Time) bool {
	ts := now.UnixMilli()
	joinTimes[userID] = ts

	recent := 0
	for id, at := range joinTimes {
		if ts-at < RaidWindow.Milliseconds() {
			recent++
		} else {
			delete(joinTimes, id)
		}
	}
	return recent >= RaidThreshold
}
