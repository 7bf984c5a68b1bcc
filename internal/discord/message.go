package discord

import (
	"regexp"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/server-warden/internal/command"
	"github.com/keshon/server-warden/internal/router"
)

var channelMentionRe = regexp.MustCompile(`<#(\d+)>`)

func toRouterMessage(m *discordgo.MessageCreate) router.Message {
	msg := router.Message{
		GuildID:         m.GuildID,
		ChannelID:       m.ChannelID,
		MessageID:       m.ID,
		Content:         m.Content,
		Author:          command.User{ID: m.Author.ID, Tag: m.Author.String()},
		ChannelMentions: channelMentions(m.Content),
	}
	if m.Member != nil {
		msg.AuthorRoles = m.Member.Roles
	}
	for _, u := range m.Mentions {
		msg.Mentions = append(msg.Mentions, command.User{ID: u.ID, Tag: u.String()})
	}
	return msg
}

// channelMentions lists the channel IDs mentioned in content, in order.
func channelMentions(content string) []string {
	var ids []string
	for _, match := range channelMentionRe.FindAllStringSubmatch(content, -1) {
		ids = append(ids, match[1])
	}
	return ids
}

func distinctMentions(users []*discordgo.User) int {
	seen := make(map[string]struct{}, len(users))
	for _, u := range users {
		seen[u.ID] = struct{}{}
	}
	return len(seen)
}
