package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

const defaultInviteLink = "https://discord.com/oauth2/authorize?scope=bot&permissions=8"

var (
	ErrPrefixTooLong  = errors.New("BOT_PREFIX must be 3 characters or less")
	ErrUnknownBackend = errors.New("unknown STORAGE_BACKEND")
	ErrMissingURL     = errors.New("storage backend needs a connection URL")
)

type Config struct {
	DiscordToken   string   `env:"DISCORD_TOKEN,required,notEmpty"`
	DefaultPrefix  string   `env:"BOT_PREFIX" envDefault:"?"`
	InviteLink     string   `env:"INVITE_LINK"`
	DeveloperID    string   `env:"DEVELOPER_ID"`
	GuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`

	Port string `env:"PORT" envDefault:"10000"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	StoragePath    string `env:"STORAGE_PATH" envDefault:"bot_data.json"`
	StorageBackups int    `env:"STORAGE_BACKUPS" envDefault:"3"`
	DatabaseURL    string `env:"DATABASE_URL"`
	RedisURL       string `env:"REDIS_URL"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	ExpirySweepInterval time.Duration `env:"EXPIRY_SWEEP_INTERVAL" envDefault:"30s"`
	PurgeSweepInterval  time.Duration `env:"PURGE_SWEEP_INTERVAL" envDefault:"60s"`
	AutoPurgeBatch      int           `env:"AUTO_PURGE_BATCH" envDefault:"50"`
	ActionRate          float64       `env:"ACTION_RATE" envDefault:"5"`
}

// New loads .env when present and decodes the environment.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using system environment")
	}
	return Parse()
}

// Parse decodes the process environment without touching .env.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if utf8.RuneCountInString(c.DefaultPrefix) > 3 {
		return ErrPrefixTooLong
	}
	switch c.StorageBackend {
	case BackendFile:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL", ErrMissingURL)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: REDIS_URL", ErrMissingURL)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.StorageBackend)
	}
	if c.InviteLink == "" {
		c.InviteLink = defaultInviteLink
	}
	return nil
}

func (c *Config) IsGuildBlacklisted(guildID string) bool {
	return slices.Contains(c.GuildBlacklist, guildID)
}
