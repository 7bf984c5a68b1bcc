package discord

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/server-warden/internal/automod"
	"github.com/keshon/server-warden/internal/moderation"
	st "github.com/keshon/server-warden/internal/storagetypes"
)

const (
	welcomeColor = 0x00ff00
	leaveColor   = 0xff0000
)

func (b *Bot) onGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil {
		return
	}
	ctx := b.ctx
	now := b.store.Now()

	var raid bool
	err := b.store.Mutate(m.GuildID, func(r *st.Record) error {
		raid = b.engine.CheckJoin(r, m.User.ID, now)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("guild", m.GuildID).Msg("failed to record join")
	}

	if raid {
		_, err := b.dispatcher.Dispatch(ctx, moderation.Action{
			Kind:    moderation.KindAutoRaidBan,
			GuildID: m.GuildID,
			UserID:  m.User.ID,
			Target:  m.User.String(),
		})
		b.logAutoAction(err, moderation.KindAutoRaidBan, m.GuildID, m.User.ID)
		return
	}

	settings := b.store.Settings(m.GuildID)
	if settings.AutoRole != "" {
		if err := b.chat.AddRole(ctx, m.GuildID, m.User.ID, settings.AutoRole); err != nil {
			log.Warn().Err(err).Str("guild", m.GuildID).Str("user", m.User.ID).Msg("failed to assign auto-role")
		}
	}
	if settings.WelcomeChannel != "" {
		err := b.chat.SendEmbed(ctx, settings.WelcomeChannel, moderation.Embed{
			Title:       "Welcome!",
			Description: fmt.Sprintf("Welcome to the server, %s!", m.User.Mention()),
			Color:       welcomeColor,
			Thumbnail:   m.User.AvatarURL(""),
		})
		if err != nil {
			log.Warn().Err(err).Str("guild", m.GuildID).Msg("failed to send welcome message")
		}
	}
}

func (b *Bot) onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	if m.User == nil {
		return
	}
	channel := b.store.Settings(m.GuildID).LeaveChannel
	if channel == "" {
		return
	}
	err := b.chat.SendEmbed(b.ctx, channel, moderation.Embed{
		Title:       "Goodbye!",
		Description: fmt.Sprintf("%s has left the server.", m.User.String()),
		Color:       leaveColor,
	})
	if err != nil {
		log.Warn().Err(err).Str("guild", m.GuildID).Msg("failed to send leave message")
	}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	msg := toRouterMessage(m)
	if strings.HasPrefix(m.Content, b.store.Prefix(m.GuildID)) {
		b.router.Handle(b.ctx, msg)
		return
	}
	b.moderate(m)
}

// moderate runs the message heuristics and acts on the first that fires.
func (b *Bot) moderate(m *discordgo.MessageCreate) {
	flags := b.store.Settings(m.GuildID).AutoModFlags
	trigger := b.engine.CheckMessage(flags, automod.Message{
		GuildID:  m.GuildID,
		UserID:   m.Author.ID,
		Content:  m.Content,
		Mentions: distinctMentions(m.Mentions),
		Time:     b.store.Now(),
	})
	if trigger == automod.TriggerNone {
		return
	}

	a := moderation.Action{
		GuildID: m.GuildID,
		UserID:  m.Author.ID,
		Target:  m.Author.String(),
	}
	if trigger == automod.TriggerSpam {
		a.Kind = moderation.KindAutoSpamMute
	} else {
		a.Kind = moderation.KindAutoDelete
		a.ChannelID, a.MessageID = m.ChannelID, m.ID
		a.Channel = b.chat.ChannelName(m.ChannelID)
		a.Reason = string(trigger)
	}
	_, err := b.dispatcher.Dispatch(b.ctx, a)
	b.logAutoAction(err, a.Kind, m.GuildID, m.Author.ID)
}

func (b *Bot) logAutoAction(err error, kind moderation.Kind, guildID, userID string) {
	switch {
	case err == nil:
		log.Info().Str("guild", guildID).Str("user", userID).Str("action", string(kind)).Msg("auto-moderation action taken")
	case errors.Is(err, moderation.ErrExempt):
		log.Debug().Str("guild", guildID).Str("user", userID).Str("action", string(kind)).Msg("whitelisted user skipped")
	default:
		log.Error().Err(err).Str("guild", guildID).Str("user", userID).Str("action", string(kind)).Msg("auto-moderation action failed")
	}
}
