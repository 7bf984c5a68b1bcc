package util

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var ErrInvalidDuration = errors.New("invalid duration")

var durationRe = regexp.MustCompile(`^(\d+)([dhm])$`)

// IsDurationLiteral reports whether s uses the <digits><d|h|m> grammar.
func IsDurationLiteral(s string) bool {
	return durationRe.MatchString(s)
}

// ParseDuration turns literals like "30m", "2h" or "1d" into milliseconds.
// Zero amounts are rejected.
func ParseDuration(s string) (int64, error) {
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}

	var unit time.Duration
	switch m[2] {
	case "d":
		unit = 24 * time.Hour
	case "h":
		unit = time.Hour
	case "m":
		unit = time.Minute
	}
	if n > int64(1<<62)/unit.Milliseconds() {
		return 0, fmt.Errorf("%w: %q is too long", ErrInvalidDuration, s)
	}
	return n * unit.Milliseconds(), nil
}

// FormatInterval renders millis as whole minutes below an hour, whole hours above.
func FormatInterval(millis int64) string {
	minutes := millis / time.Minute.Milliseconds()
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh", millis/time.Hour.Milliseconds())
}
