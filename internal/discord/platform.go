package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/server-warden/internal/command"
	"github.com/keshon/server-warden/internal/moderation"
)

// Messages older than this cannot be bulk deleted.
const bulkDeleteMaxAge = 14 * 24 * time.Hour

// Platform carries out chat and moderation calls over a discordgo session.
type Platform struct {
	s *discordgo.Session
}

func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{s: s}
}

func (p *Platform) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := p.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	return wrapErr(err)
}

func (p *Platform) SendEmbed(ctx context.Context, channelID string, e moderation.Embed) error {
	_, err := p.s.ChannelMessageSendEmbed(channelID, toMessageEmbed(e), discordgo.WithContext(ctx))
	return wrapErr(err)
}

func (p *Platform) SendDM(ctx context.Context, userID string, e moderation.Embed) error {
	ch, err := p.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open DM channel: %w", wrapErr(err))
	}
	return p.SendEmbed(ctx, ch.ID, e)
}

func (p *Platform) Reply(ctx context.Context, channelID, messageID, content string) error {
	ref := &discordgo.MessageReference{ChannelID: channelID, MessageID: messageID}
	_, err := p.s.ChannelMessageSendReply(channelID, content, ref, discordgo.WithContext(ctx))
	return wrapErr(err)
}

func (p *Platform) ReplyEmbed(ctx context.Context, channelID, messageID string, e moderation.Embed) error {
	ref := &discordgo.MessageReference{ChannelID: channelID, MessageID: messageID}
	_, err := p.s.ChannelMessageSendEmbedReply(channelID, toMessageEmbed(e), ref, discordgo.WithContext(ctx))
	return wrapErr(err)
}

func (p *Platform) SendTransient(ctx context.Context, channelID, content string, ttl time.Duration) error {
	msg, err := p.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return wrapErr(err)
	}
	time.AfterFunc(ttl, func() {
		if err := p.s.ChannelMessageDelete(channelID, msg.ID); err != nil {
			log.Debug().Err(err).Str("channel", channelID).Msg("could not remove transient message")
		}
	})
	return nil
}

func (p *Platform) Kick(ctx context.Context, guildID, userID, reason string) error {
	return wrapErr(p.s.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx)))
}

func (p *Platform) Ban(ctx context.Context, guildID, userID, reason string) error {
	return wrapErr(p.s.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx)))
}

func (p *Platform) Unban(ctx context.Context, guildID, userID, reason string) error {
	return wrapErr(p.s.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)))
}

func (p *Platform) Timeout(ctx context.Context, guildID, userID string, until *time.Time, reason string) error {
	return wrapErr(p.s.GuildMemberTimeout(guildID, userID, until, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)))
}

func (p *Platform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return wrapErr(p.s.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)))
}

func (p *Platform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return wrapErr(p.s.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)))
}

func (p *Platform) CreateChannel(ctx context.Context, guildID, name string, kind moderation.ChannelType) (string, error) {
	ctype := discordgo.ChannelTypeGuildText
	switch kind {
	case moderation.ChannelVoice:
		ctype = discordgo.ChannelTypeGuildVoice
	case moderation.ChannelCategory:
		ctype = discordgo.ChannelTypeGuildCategory
	}
	ch, err := p.s.GuildChannelCreate(guildID, name, ctype, discordgo.WithContext(ctx))
	if err != nil {
		return "", wrapErr(err)
	}
	return ch.ID, nil
}

func (p *Platform) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := p.s.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return wrapErr(err)
}

// BulkDelete removes up to count of the channel's latest messages. Messages
// too old for bulk deletion are left alone.
func (p *Platform) BulkDelete(ctx context.Context, channelID string, count int) (int, error) {
	count = min(count, 100)
	msgs, err := p.s.ChannelMessages(channelID, count, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return 0, wrapErr(err)
	}

	cutoff := time.Now().Add(-bulkDeleteMaxAge)
	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.Timestamp.After(cutoff) {
			ids = append(ids, m.ID)
		}
	}

	switch len(ids) {
	case 0:
		return 0, nil
	case 1:
		err = p.s.ChannelMessageDelete(channelID, ids[0], discordgo.WithContext(ctx))
	default:
		err = p.s.ChannelMessagesBulkDelete(channelID, ids, discordgo.WithContext(ctx))
	}
	if err != nil {
		return 0, wrapErr(err)
	}
	return len(ids), nil
}

func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return wrapErr(p.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

// FindRole matches role names case-insensitively, state cache first.
func (p *Platform) FindRole(guildID, name string) (command.Role, bool) {
	var roles []*discordgo.Role
	if g, err := p.s.State.Guild(guildID); err == nil {
		roles = g.Roles
	} else if fetched, err := p.s.GuildRoles(guildID); err == nil {
		roles = fetched
	}
	for _, r := range roles {
		if strings.EqualFold(r.Name, name) {
			return command.Role{ID: r.ID, Name: r.Name}, true
		}
	}
	return command.Role{}, false
}

func (p *Platform) ChannelName(channelID string) string {
	ch, err := p.s.State.Channel(channelID)
	if err != nil {
		if ch, err = p.s.Channel(channelID); err != nil {
			return ""
		}
	}
	return "#" + ch.Name
}

func (p *Platform) UserTag(userID string) string {
	u, err := p.s.User(userID)
	if err != nil {
		return ""
	}
	return u.String()
}

func (p *Platform) GuildName(guildID string) string {
	if g := p.guild(guildID); g != nil {
		return g.Name
	}
	return ""
}

// IsAdministrator reports guild owners and members holding a role with the
// administrator permission.
func (p *Platform) IsAdministrator(guildID, userID string) bool {
	g := p.guild(guildID)
	if g == nil {
		return false
	}
	if g.OwnerID == userID {
		return true
	}

	member, err := p.s.State.Member(guildID, userID)
	if err != nil {
		if member, err = p.s.GuildMember(guildID, userID); err != nil {
			return false
		}
	}
	for _, roleID := range member.Roles {
		if role, err := p.s.State.Role(guildID, roleID); err == nil && role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

func (p *Platform) guild(guildID string) *discordgo.Guild {
	g, err := p.s.State.Guild(guildID)
	if err != nil {
		if g, err = p.s.Guild(guildID); err != nil {
			return nil
		}
	}
	return g
}

var _ command.Chat = (*Platform)(nil)
