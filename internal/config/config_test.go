package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "?", cfg.DefaultPrefix)
	assert.Equal(t, "10000", cfg.Port)
	assert.Equal(t, BackendFile, cfg.StorageBackend)
	assert.Equal(t, "bot_data.json", cfg.StoragePath)
	assert.Equal(t, 30*time.Second, cfg.ExpirySweepInterval)
	assert.Equal(t, 60*time.Second, cfg.PurgeSweepInterval)
	assert.Equal(t, 50, cfg.AutoPurgeBatch)
	assert.Equal(t, 5.0, cfg.ActionRate)
	assert.NotEmpty(t, cfg.InviteLink)
}

func TestParseRequiresToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")

	_, err := Parse()
	assert.Error(t, err)
}

func TestParseRejectsLongPrefix(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("BOT_PREFIX", "!!!!")

	_, err := Parse()
	assert.ErrorIs(t, err, ErrPrefixTooLong)
}

func TestParseBackends(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")

	t.Setenv("STORAGE_BACKEND", "postgres")
	_, err := Parse()
	assert.ErrorIs(t, err, ErrMissingURL)

	t.Setenv("DATABASE_URL", "postgres://localhost/warden")
	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)

	t.Setenv("STORAGE_BACKEND", "mongo")
	_, err = Parse()
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestBlacklistAndDeveloper(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DISCORD_GUILD_BLACKLIST", "g1,g2")
	t.Setenv("DEVELOPER_ID", "dev")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.True(t, cfg.IsGuildBlacklisted("g2"))
	assert.False(t, cfg.IsGuildBlacklisted("g3"))
	assert.Equal(t, "dev", cfg.DeveloperID)
}
