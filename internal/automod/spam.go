package automod

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	SpamWindow    = 5 * time.Second
	SpamThreshold = 5

	spamWindowsCap = 10_000
)

type spamEntry struct {
	content string
	at      int64 // millis
}

// SpamDetector flags a user repeating the same message. Windows are kept per
// guild and user and live only in memory; idle windows expire from the LRU.
type SpamDetector struct {
	mu        sync.Mutex
	windows   *expirable.LRU[string, []spamEntry]
	window    time.Duration
	threshold int
}

func NewSpamDetector() *SpamDetector {
	return &SpamDetector{
		windows:   expirable.NewLRU[string, []spamEntry](spamWindowsCap, nil, SpamWindow),
		window:    SpamWindow,
		threshold: SpamThreshold,
	}
}

// Check records the message and reports whether the user has now sent the
// same content at least threshold times within the trailing window.
func (d *SpamDetector) Check(guildID, userID, content string, now time.Time) bool {
	key := guildID + ":" + userID
	ts := now.UnixMilli()
	windowMillis := d.window.Milliseconds()

	d.mu.Lock()
	defer d.mu.Unlock()

	prev, _ := d.windows.Get(key)
	kept := make([]spamEntry, 0, len(prev)+1)
	for _, e := range append(prev, spamEntry{content: content, at: ts}) {
		if ts-e.at < windowMillis {
			kept = append(kept, e)
		}
	}
	d.windows.Add(key, kept)

	duplicates := 0
	for _, e := range kept {
		if e.content == content {
			duplicates++
		}
	}
	return duplicates >= d.threshold
}
