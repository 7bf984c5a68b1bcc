// Package discord connects the moderation core to the Discord gateway.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/server-warden/internal/automod"
	"github.com/keshon/server-warden/internal/command"
	"github.com/keshon/server-warden/internal/config"
	"github.com/keshon/server-warden/internal/moderation"
	"github.com/keshon/server-warden/internal/router"
	"github.com/keshon/server-warden/internal/scheduler"
	"github.com/keshon/server-warden/internal/storage"
	"github.com/keshon/server-warden/pkg/jobmgr"
	"github.com/keshon/server-warden/pkg/retrylimit"
)

const intents = discordgo.IntentGuilds |
	discordgo.IntentGuildMembers |
	discordgo.IntentGuildMessages |
	discordgo.IntentMessageContent |
	discordgo.IntentGuildModeration

// Bot is the gateway side of the bot: it turns events into auto-moderation
// checks and command invocations.
type Bot struct {
	cfg        *config.Config
	dg         *discordgo.Session
	store      *storage.Storage
	chat       command.Chat
	dispatcher *moderation.Dispatcher
	engine     *automod.Engine
	router     *router.Router
	scheduler  *scheduler.Scheduler
	jobs       *jobmgr.Manager

	ctx       context.Context
	startOnce sync.Once
}

func NewBot(cfg *config.Config, store *storage.Storage, jobs *jobmgr.Manager) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = intents

	b := newBot(cfg, store, NewPlatform(dg), jobs)
	b.dg = dg

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onGuildMemberAdd)
	dg.AddHandler(b.onGuildMemberRemove)
	dg.AddHandler(b.onMessageCreate)
	return b, nil
}

// newBot wires the moderation core around chat without touching the gateway.
func newBot(cfg *config.Config, store *storage.Storage, chat command.Chat, jobs *jobmgr.Manager) *Bot {
	dispatcher := moderation.NewDispatcher(store, chat, retrylimit.NewAdaptiveLimiter(cfg.ActionRate))

	return &Bot{
		cfg:        cfg,
		store:      store,
		chat:       chat,
		dispatcher: dispatcher,
		engine:     automod.NewEngine(),
		router: router.New(&command.Services{
			Store:       store,
			Dispatcher:  dispatcher,
			Chat:        chat,
			InviteLink:  cfg.InviteLink,
			DeveloperID: cfg.DeveloperID,
		}),
		scheduler: scheduler.New(store, dispatcher, chat, scheduler.Config{
			ExpiryInterval: cfg.ExpirySweepInterval,
			PurgeInterval:  cfg.PurgeSweepInterval,
			PurgeBatch:     cfg.AutoPurgeBatch,
		}),
		jobs: jobs,
		ctx:  context.Background(),
	}
}

// Run opens the gateway connection and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, closing gateway")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		b.leaveIfBlacklisted(s, g.ID)
	}

	b.startOnce.Do(func() {
		if err := b.scheduler.Start(b.jobs); err != nil {
			log.Error().Err(err).Msg("failed to start sanction sweeps")
		}
	})

	log.Info().Str("user", r.User.String()).Int("guilds", len(r.Guilds)).Msg("discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.leaveIfBlacklisted(s, g.ID) {
		return
	}
	log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) bool {
	if !b.cfg.IsGuildBlacklisted(guildID) {
		return false
	}
	log.Info().Str("guild", guildID).Msg("leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("failed to leave guild")
	}
	return true
}
