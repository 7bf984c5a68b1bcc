package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"

	"github.com/keshon/server-warden/internal/moderation"
)

func toMessageEmbed(e moderation.Embed) *discordgo.MessageEmbed {
	b := embed.NewEmbed().SetColor(e.Color)
	if e.Title != "" {
		b = b.SetTitle(e.Title)
	}
	if e.Description != "" {
		b = b.SetDescription(e.Description)
	}
	for _, f := range e.Fields {
		b = b.AddField(f.Name, f.Value)
	}
	if e.Footer != "" {
		b = b.SetFooter(e.Footer)
	}
	if e.Thumbnail != "" {
		b = b.SetThumbnail(e.Thumbnail)
	}

	msg := b.MessageEmbed
	if !e.Timestamp.IsZero() {
		msg.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
	}
	return msg
}
