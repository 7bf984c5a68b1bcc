// Package moderation turns moderation decisions into platform calls and
// keeps the guild's audit trail in step with them.
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keshon/server-warden/internal/storage"
	st "github.com/keshon/server-warden/internal/storagetypes"
	"github.com/keshon/server-warden/pkg/retrylimit"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultMuteDuration is applied to mutes issued without a duration.
	// Such mutes are left to the platform and never tracked.
	DefaultMuteDuration = 24 * time.Hour
	SpamMuteDuration    = 10 * time.Minute

	logsEmbedColor = 0xff0000
	warnEmbedColor = 0xffff00
)

var (
	ErrExempt      = errors.New("user is whitelisted")
	ErrUnknownKind = errors.New("unknown action kind")
)

// Action describes one moderation step. Only the fields relevant to Kind
// need to be set.
type Action struct {
	Kind    Kind
	GuildID string

	UserID    string // subject of the action
	Target    string // subject's display tag
	Moderator string // acting user's tag, empty for automatic actions

	ChannelID string
	Channel   string // channel display name
	MessageID string
	RoleID    string
	Role      string // role display name

	Name string      // channel to create
	Type ChannelType // channel to create

	Reason       string
	Duration     time.Duration
	DurationText string // duration as the moderator typed it
	Count        int
	GuildName    string
}

type Result struct {
	Details   string // audit summary
	Deleted   int    // purges
	Warnings  int    // warnings the user now has
	ChannelID string // created channel
}

// Dispatcher carries out actions against the platform. It is best effort:
// every action is audited, including ones whose platform call failed, and
// guild state is only touched after the call went through. It never checks
// permissions; callers do that before dispatching.
type Dispatcher struct {
	store    *storage.Storage
	platform Platform
	limiter  *retrylimit.AdaptiveLimiter
	policy   retrylimit.Policy
}

func NewDispatcher(store *storage.Storage, platform Platform, limiter *retrylimit.AdaptiveLimiter) *Dispatcher {
	return &Dispatcher{
		store:    store,
		platform: platform,
		limiter:  limiter,
		policy:   retrylimit.DefaultPolicy(),
	}
}

// Dispatch performs a. Punitive automatic actions against whitelisted users
// return ErrExempt without side effects.
func (d *Dispatcher) Dispatch(ctx context.Context, a Action) (Result, error) {
	if !a.Kind.Valid() {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownKind, a.Kind)
	}
	if a.Kind.Punitive() && d.store.IsWhitelisted(a.GuildID, a.UserID) {
		log.Debug().Str("guild", a.GuildID).Str("user", a.UserID).Str("action", string(a.Kind)).Msg("whitelisted user exempt from auto-moderation")
		return Result{}, ErrExempt
	}

	res, err := d.perform(ctx, a)
	res.Details = describe(a, res)
	if err != nil {
		res.Details += " (failed)"
	}
	d.Record(ctx, a.GuildID, a.Kind, res.Details)

	if err != nil {
		log.Warn().Err(err).Str("guild", a.GuildID).Str("user", a.UserID).Str("action", string(a.Kind)).Msg("moderation action failed")
		return res, fmt.Errorf("%s: %w", a.Kind, err)
	}
	log.Info().Str("guild", a.GuildID).Str("user", a.UserID).Str("action", string(a.Kind)).Msg(res.Details)
	return res, nil
}

// Record audits a state-only action and mirrors it to the logs channel.
func (d *Dispatcher) Record(ctx context.Context, guildID string, kind Kind, details string) {
	if err := d.store.AppendAudit(guildID, kind.Label(), details); err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("error appending audit entry")
	}
	d.notify(ctx, guildID, kind, details)
}

func (d *Dispatcher) notify(ctx context.Context, guildID string, kind Kind, details string) {
	channelID := d.store.Settings(guildID).LogsChannel
	if channelID == "" {
		return
	}
	embed := Embed{
		Title:       "Moderation Action: " + kind.Label(),
		Description: details,
		Color:       logsEmbedColor,
		Timestamp:   d.store.Now(),
	}
	err := d.call(ctx, func() error { return d.platform.SendEmbed(ctx, channelID, embed) })
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID).Str("channel", channelID).Msg("failed to notify logs channel")
	}
}

func (d *Dispatcher) call(ctx context.Context, fn func() error) error {
	return retrylimit.Do(ctx, d.limiter, d.policy, fn)
}

func (d *Dispatcher) perform(ctx context.Context, a Action) (Result, error) {
	var res Result
	now := d.store.Now()
	p := d.platform

	switch a.Kind {
	case KindKick:
		return res, d.call(ctx, func() error { return p.Kick(ctx, a.GuildID, a.UserID, a.Reason) })

	case KindBan:
		return res, d.call(ctx, func() error { return p.Ban(ctx, a.GuildID, a.UserID, a.Reason) })

	case KindSoftban:
		if err := d.call(ctx, func() error { return p.Ban(ctx, a.GuildID, a.UserID, a.Reason) }); err != nil {
			return res, err
		}
		return res, d.store.SetTempBan(a.GuildID, a.UserID, now.Add(a.Duration).UnixMilli())

	case KindUnban:
		if err := d.call(ctx, func() error { return p.Unban(ctx, a.GuildID, a.UserID, "Manual unban") }); err != nil {
			return res, err
		}
		_, err := d.store.ClearTempBan(a.GuildID, a.UserID)
		return res, err

	case KindMute:
		length := a.Duration
		if length <= 0 {
			length = DefaultMuteDuration
		}
		until := now.Add(length)
		if err := d.call(ctx, func() error { return p.Timeout(ctx, a.GuildID, a.UserID, &until, a.Reason) }); err != nil {
			return res, err
		}
		if a.Duration > 0 {
			return res, d.store.SetMute(a.GuildID, a.UserID, until.UnixMilli())
		}
		return res, nil

	case KindUnmute:
		if err := d.call(ctx, func() error { return p.Timeout(ctx, a.GuildID, a.UserID, nil, a.Reason) }); err != nil {
			return res, err
		}
		_, err := d.store.ClearMute(a.GuildID, a.UserID)
		return res, err

	case KindWarn:
		total, err := d.store.AddWarning(a.GuildID, a.UserID, st.Warning{
			Reason:    a.Reason,
			Moderator: a.Moderator,
			Timestamp: now.UnixMilli(),
		})
		if err != nil {
			return res, err
		}
		res.Warnings = total
		dm := Embed{
			Title:       "Warning",
			Description: "You have been warned in " + a.GuildName,
			Fields:      []EmbedField{{Name: "Reason", Value: a.Reason}},
			Color:       warnEmbedColor,
		}
		// users with closed DMs still get the warning
		if err := p.SendDM(ctx, a.UserID, dm); err != nil {
			log.Debug().Err(err).Str("user", a.UserID).Msg("could not DM warning")
		}
		return res, nil

	case KindPurge:
		// one extra for the command message itself
		err := d.call(ctx, func() error {
			n, err := p.BulkDelete(ctx, a.ChannelID, a.Count+1)
			res.Deleted = max(n-1, 0)
			return err
		})
		return res, err

	case KindRoleAdd:
		return res, d.call(ctx, func() error { return p.AddRole(ctx, a.GuildID, a.UserID, a.RoleID) })

	case KindRoleRemove:
		return res, d.call(ctx, func() error { return p.RemoveRole(ctx, a.GuildID, a.UserID, a.RoleID) })

	case KindChannelCreate:
		err := d.call(ctx, func() error {
			id, err := p.CreateChannel(ctx, a.GuildID, a.Name, a.Type)
			res.ChannelID = id
			return err
		})
		return res, err

	case KindChannelDelete:
		return res, d.call(ctx, func() error { return p.DeleteChannel(ctx, a.ChannelID) })

	case KindAutoRaidBan:
		return res, d.call(ctx, func() error { return p.Ban(ctx, a.GuildID, a.UserID, "Anti-raid protection") })

	case KindAutoSpamMute:
		until := now.Add(SpamMuteDuration)
		if err := d.call(ctx, func() error { return p.Timeout(ctx, a.GuildID, a.UserID, &until, "Anti-spam protection") }); err != nil {
			return res, err
		}
		return res, d.store.SetMute(a.GuildID, a.UserID, until.UnixMilli())

	case KindAutoUnban:
		return res, d.call(ctx, func() error { return p.Unban(ctx, a.GuildID, a.UserID, "Temporary ban expired") })

	case KindAutoUnmute:
		return res, d.call(ctx, func() error { return p.Timeout(ctx, a.GuildID, a.UserID, nil, "Mute expired") })

	case KindAutoPurge:
		err := d.call(ctx, func() error {
			n, err := p.BulkDelete(ctx, a.ChannelID, a.Count)
			res.Deleted = n
			return err
		})
		return res, err

	case KindAutoDelete:
		return res, d.call(ctx, func() error { return p.DeleteMessage(ctx, a.ChannelID, a.MessageID) })

	case KindSettingChange, KindWhitelist:
		// state-only, nothing to call
		return res, nil
	}
	return res, fmt.Errorf("%w: %q", ErrUnknownKind, a.Kind)
}
