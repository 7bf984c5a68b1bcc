package automod

import (
	"regexp"
	"unicode"
)

const (
	capsMinLetters = 10
	capsRatio      = 0.7
	mentionLimit   = 5
)

var inviteRe = regexp.MustCompile(`(?i)(discord\.gg|discord(?:app)?\.com/invite)/[a-z0-9-]+`)

// IsShouting reports messages with enough letters that are mostly upper case.
func IsShouting(content string) bool {
	letters, upper := 0, 0
	for _, r := range content {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.IsUpper(r) {
			upper++
		}
	}
	if letters < capsMinLetters {
		return false
	}
	return float64(upper)/float64(letters) >= capsRatio
}

// HasInvite reports a Discord invite link anywhere in content.
func HasInvite(content string) bool {
	return inviteRe.MatchString(content)
}

// IsMentionSpam reports a message pinging too many distinct users.
func IsMentionSpam(distinctMentions int) bool {
	return distinctMentions >= mentionLimit
}
