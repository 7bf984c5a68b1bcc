// Package scheduler runs the periodic sweeps that lift expired sanctions and
// carry out recurring channel purges.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/keshon/server-warden/internal/moderation"
	"github.com/keshon/server-warden/internal/storage"
	"github.com/keshon/server-warden/pkg/jobmgr"

	"github.com/rs/zerolog/log"
)

const (
	ExpiryJob = "expiry-sweep"
	PurgeJob  = "purge-sweep"
)

type Config struct {
	ExpiryInterval time.Duration
	PurgeInterval  time.Duration
	PurgeBatch     int
}

func DefaultConfig() Config {
	return Config{
		ExpiryInterval: 30 * time.Second,
		PurgeInterval:  60 * time.Second,
		PurgeBatch:     50,
	}
}

// ChannelNamer resolves channel names for audit summaries.
type ChannelNamer interface {
	ChannelName(channelID string) string
}

// Scheduler owns both sweeps. A sweep that is still running when its next
// tick fires is skipped rather than run twice.
type Scheduler struct {
	store      *storage.Storage
	dispatcher *moderation.Dispatcher
	names      ChannelNamer
	cfg        Config

	expiryMu sync.Mutex
	purgeMu  sync.Mutex
}

func New(store *storage.Storage, dispatcher *moderation.Dispatcher, names ChannelNamer, cfg Config) *Scheduler {
	def := DefaultConfig()
	if cfg.ExpiryInterval <= 0 {
		cfg.ExpiryInterval = def.ExpiryInterval
	}
	if cfg.PurgeInterval <= 0 {
		cfg.PurgeInterval = def.PurgeInterval
	}
	if cfg.PurgeBatch <= 0 {
		cfg.PurgeBatch = def.PurgeBatch
	}
	return &Scheduler{store: store, dispatcher: dispatcher, names: names, cfg: cfg}
}

// Start registers both sweeps as jobs on jm.
func (s *Scheduler) Start(jm *jobmgr.Manager) error {
	if err := jm.StartAsync(ExpiryJob, jobmgr.Every(s.cfg.ExpiryInterval, s.ExpirySweep)); err != nil {
		return err
	}
	if err := jm.StartAsync(PurgeJob, jobmgr.Every(s.cfg.PurgeInterval, s.PurgeSweep)); err != nil {
		_ = jm.Stop(ExpiryJob)
		return err
	}
	log.Info().Dur("expiry_interval", s.cfg.ExpiryInterval).Dur("purge_interval", s.cfg.PurgeInterval).Msg("sanction sweeps started")
	return nil
}

// ExpirySweep lifts every temp-ban and mute whose expiry has passed. State
// is cleared for all guilds in one write first, so each entry is lifted once
// even if the platform call then fails.
func (s *Scheduler) ExpirySweep(ctx context.Context) {
	if !s.expiryMu.TryLock() {
		log.Debug().Msg("expiry sweep still running, skipping tick")
		return
	}
	defer s.expiryMu.Unlock()

	for _, exp := range s.store.TakeExpiredSanctions(s.store.Now().UnixMilli()) {
		for _, userID := range exp.Bans {
			s.dispatch(ctx, moderation.Action{Kind: moderation.KindAutoUnban, GuildID: exp.GuildID, UserID: userID})
		}
		for _, userID := range exp.Mutes {
			s.dispatch(ctx, moderation.Action{Kind: moderation.KindAutoUnmute, GuildID: exp.GuildID, UserID: userID})
		}
	}
}

// PurgeSweep runs every auto-purge rule that is due. LastRun is stamped
// before the purge so a failing channel is retried one interval later, not
// on every tick.
func (s *Scheduler) PurgeSweep(ctx context.Context) {
	if !s.purgeMu.TryLock() {
		log.Debug().Msg("purge sweep still running, skipping tick")
		return
	}
	defer s.purgeMu.Unlock()

	now := s.store.Now().UnixMilli()
	for _, guildID := range s.store.Guilds() {
		due, err := s.store.TakeDuePurges(guildID, now)
		if err != nil {
			log.Error().Err(err).Str("guild", guildID).Msg("error collecting due purges")
			continue
		}
		for _, channelID := range due {
			s.dispatch(ctx, moderation.Action{
				Kind:      moderation.KindAutoPurge,
				GuildID:   guildID,
				ChannelID: channelID,
				Channel:   s.names.ChannelName(channelID),
				Count:     s.cfg.PurgeBatch,
			})
		}
	}
}

func (s *Scheduler) dispatch(ctx context.Context, a moderation.Action) {
	_, err := s.dispatcher.Dispatch(ctx, a)
	if err != nil && !errors.Is(err, moderation.ErrExempt) {
		log.Error().Err(err).Str("guild", a.GuildID).Str("action", string(a.Kind)).Msg("sweep action failed")
	}
}
