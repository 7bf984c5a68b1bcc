package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]int64{
		"10m": 600_000,
		"2h":  7_200_000,
		"1d":  86_400_000,
		"90m": 5_400_000,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseDurationRejects(t *testing.T) {
	for _, in := range []string{"", "10", "1w", "m5", "1.5h", "-1h", "0m", " 1h", "1H", "99999999999999999999d"} {
		_, err := ParseDuration(in)
		assert.ErrorIs(t, err, ErrInvalidDuration, in)
	}
}

func TestIsDurationLiteral(t *testing.T) {
	assert.True(t, IsDurationLiteral("5m"))
	assert.False(t, IsDurationLiteral("spamming"))
}

func TestFormatInterval(t *testing.T) {
	assert.Equal(t, "30m", FormatInterval(1_800_000))
	assert.Equal(t, "59m", FormatInterval(3_599_999))
	assert.Equal(t, "1h", FormatInterval(3_600_000))
	assert.Equal(t, "24h", FormatInterval(86_400_000))
}

func TestFormatDateTpl(t *testing.T) {
	ts := int64(1699603200000) // 2023-11-10 08:00:00 UTC
	assert.Equal(t, "2023.11.10", FormatDateTpl(ts, "YYYY.MM.DD"))
	assert.Equal(t, "10/11/23", FormatDateTpl(ts, "DD/MM/YY"))
	assert.Equal(t, "2023-11-10 08:00:00", FormatDateTpl(ts, "YYYY-MM-DD hh:mm:ss"))
	assert.Equal(t, "", FormatDateTpl(0, "YYYY"))
}
