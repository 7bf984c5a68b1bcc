// Package moderationtest provides an in-memory moderation.Platform for tests.
package moderationtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/keshon/server-warden/internal/moderation"
)

// Call is one recorded platform call.
type Call struct {
	Method string
	Args   []string
	Until  *time.Time
	Embed  *moderation.Embed
}

func (c Call) String() string {
	return c.Method + "(" + strings.Join(c.Args, ",") + ")"
}

// Platform records every call. Methods listed in Fail return that error.
type Platform struct {
	mu    sync.Mutex
	calls []Call

	Fail      map[string]error
	Available int // messages BulkDelete can find; 0 means unlimited
}

func NewPlatform() *Platform {
	return &Platform{Fail: map[string]error{}}
}

func (p *Platform) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

// Methods lists the recorded calls as "Method(arg,...)".
func (p *Platform) Methods() []string {
	var out []string
	for _, c := range p.Calls() {
		out = append(out, c.String())
	}
	return out
}

// Embeds returns the embeds sent to channelID.
func (p *Platform) Embeds(channelID string) []moderation.Embed {
	var out []moderation.Embed
	for _, c := range p.Calls() {
		if c.Method == "SendEmbed" && c.Args[0] == channelID {
			out = append(out, *c.Embed)
		}
	}
	return out
}

func (p *Platform) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = nil
}

func (p *Platform) record(c Call) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
	return p.Fail[c.Method]
}

func (p *Platform) SendMessage(ctx context.Context, channelID, content string) error {
	return p.record(Call{Method: "SendMessage", Args: []string{channelID, content}})
}

func (p *Platform) SendEmbed(ctx context.Context, channelID string, e moderation.Embed) error {
	return p.record(Call{Method: "SendEmbed", Args: []string{channelID, e.Title}, Embed: &e})
}

func (p *Platform) SendDM(ctx context.Context, userID string, e moderation.Embed) error {
	return p.record(Call{Method: "SendDM", Args: []string{userID, e.Title}, Embed: &e})
}

func (p *Platform) Kick(ctx context.Context, guildID, userID, reason string) error {
	return p.record(Call{Method: "Kick", Args: []string{guildID, userID, reason}})
}

func (p *Platform) Ban(ctx context.Context, guildID, userID, reason string) error {
	return p.record(Call{Method: "Ban", Args: []string{guildID, userID, reason}})
}

func (p *Platform) Unban(ctx context.Context, guildID, userID, reason string) error {
	return p.record(Call{Method: "Unban", Args: []string{guildID, userID, reason}})
}

func (p *Platform) Timeout(ctx context.Context, guildID, userID string, until *time.Time, reason string) error {
	return p.record(Call{Method: "Timeout", Args: []string{guildID, userID, reason}, Until: until})
}

func (p *Platform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.record(Call{Method: "AddRole", Args: []string{guildID, userID, roleID}})
}

func (p *Platform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return p.record(Call{Method: "RemoveRole", Args: []string{guildID, userID, roleID}})
}

func (p *Platform) CreateChannel(ctx context.Context, guildID, name string, kind moderation.ChannelType) (string, error) {
	err := p.record(Call{Method: "CreateChannel", Args: []string{guildID, name, string(kind)}})
	if err != nil {
		return "", err
	}
	return "new-" + name, nil
}

func (p *Platform) DeleteChannel(ctx context.Context, channelID string) error {
	return p.record(Call{Method: "DeleteChannel", Args: []string{channelID}})
}

func (p *Platform) BulkDelete(ctx context.Context, channelID string, count int) (int, error) {
	err := p.record(Call{Method: "BulkDelete", Args: []string{channelID, fmt.Sprint(count)}})
	if err != nil {
		return 0, err
	}
	if p.Available > 0 && p.Available < count {
		return p.Available, nil
	}
	return count, nil
}

func (p *Platform) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return p.record(Call{Method: "DeleteMessage", Args: []string{channelID, messageID}})
}

var _ moderation.Platform = (*Platform)(nil)
