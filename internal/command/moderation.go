package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/keshon/server-warden/internal/moderation"
	"github.com/keshon/server-warden/pkg/cmd"
	"github.com/keshon/server-warden/pkg/util"
)

const purgeNoticeTTL = 5 * time.Second

type KickCommand struct{}

func (c *KickCommand) Name() string        { return "kick" }
func (c *KickCommand) Description() string { return "Kick a member: kick @user [reason]" }
func (c *KickCommand) Category() string    { return CategoryModeration }

func (c *KickCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	target, ok := m.FirstMention()
	if !ok {
		return m.Reply(ctx, "Please mention a user to kick.")
	}

	a := m.action(moderation.KindKick)
	a.UserID, a.Target, a.Reason = target.ID, target.Tag, m.Reason(1)
	if _, err := m.Dispatcher.Dispatch(ctx, a); err != nil {
		return m.Reply(ctx, "Failed to kick user.")
	}
	return m.Reply(ctx, "Successfully kicked %s", target.Tag)
}

type BanCommand struct{}

func (c *BanCommand) Name() string        { return "ban" }
func (c *BanCommand) Description() string { return "Ban a member: ban @user [reason]" }
func (c *BanCommand) Category() string    { return CategoryModeration }

func (c *BanCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	target, ok := m.FirstMention()
	if !ok {
		return m.Reply(ctx, "Please mention a user to ban.")
	}

	a := m.action(moderation.KindBan)
	a.UserID, a.Target, a.Reason = target.ID, target.Tag, m.Reason(1)
	if _, err := m.Dispatcher.Dispatch(ctx, a); err != nil {
		return m.Reply(ctx, "Failed to ban user.")
	}
	return m.Reply(ctx, "Successfully banned %s", target.Tag)
}

type SoftbanCommand struct{}

func (c *SoftbanCommand) Name() string { return "softban" }
func (c *SoftbanCommand) Description() string {
	return "Ban a member for a while: softban @user <1d|2h|30m> [reason]"
}
func (c *SoftbanCommand) Category() string { return CategoryModeration }

func (c *SoftbanCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	target, ok := m.FirstMention()
	if !ok {
		return m.Reply(ctx, "Please mention a user to softban.")
	}
	literal := m.Arg(1)
	millis, err := util.ParseDuration(literal)
	if err != nil {
		return m.Reply(ctx, "Please provide a valid duration (e.g., 1d, 2h, 30m).")
	}

	a := m.action(moderation.KindSoftban)
	a.UserID, a.Target, a.Reason = target.ID, target.Tag, m.Reason(2)
	a.Duration, a.DurationText = time.Duration(millis)*time.Millisecond, literal
	if _, err := m.Dispatcher.Dispatch(ctx, a); err != nil {
		return m.Reply(ctx, "Failed to softban user.")
	}
	return m.Reply(ctx, "Successfully softbanned %s for %s", target.Tag, literal)
}

type UnbanCommand struct{}

func (c *UnbanCommand) Name() string        { return "unban" }
func (c *UnbanCommand) Description() string { return "Lift a ban: unban <userID>" }
func (c *UnbanCommand) Category() string    { return CategoryModeration }

func (c *UnbanCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	userID := m.Arg(0)
	if userID == "" {
		return m.Reply(ctx, "Please provide a user ID to unban.")
	}

	a := m.action(moderation.KindUnban)
	a.UserID = userID
	if _, err := m.Dispatcher.Dispatch(ctx, a); err != nil {
		return m.Reply(ctx, "Failed to unban user.")
	}
	return m.Reply(ctx, "Successfully unbanned user %s", userID)
}

type MuteCommand struct{}

func (c *MuteCommand) Name() string { return "mute" }
func (c *MuteCommand) Description() string {
	return "Time a member out: mute @user [1d|2h|30m] [reason]"
}
func (c *MuteCommand) Category() string { return CategoryModeration }

func (c *MuteCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	target, ok := m.FirstMention()
	if !ok {
		return m.Reply(ctx, "Please mention a user to mute.")
	}

	a := m.action(moderation.KindMute)
	a.UserID, a.Target, a.Reason = target.ID, target.Tag, m.Reason(1)
	if literal := m.Arg(1); util.IsDurationLiteral(literal) {
		millis, err := util.ParseDuration(literal)
		if err != nil {
			return m.Reply(ctx, "Please provide a valid duration (e.g., 1d, 2h, 30m).")
		}
		a.Duration, a.DurationText = time.Duration(millis)*time.Millisecond, literal
		a.Reason = m.Reason(2)
	}

	if _, err := m.Dispatcher.Dispatch(ctx, a); err != nil {
		return m.Reply(ctx, "Failed to mute user.")
	}
	return m.Reply(ctx, "Successfully muted %s%s", target.Tag, moderation.MuteSuffix(a.DurationText))
}

type UnmuteCommand struct{}

func (c *UnmuteCommand) Name() string        { return "unmute" }
func (c *UnmuteCommand) Description() string { return "Lift a timeout: unmute @user [reason]" }
func (c *UnmuteCommand) Category() string    { return CategoryModeration }

func (c *UnmuteCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	target, ok := m.FirstMention()
	if !ok {
		return m.Reply(ctx, "Please mention a user to unmute.")
	}

	a := m.action(moderation.KindUnmute)
	a.UserID, a.Target, a.Reason = target.ID, target.Tag, m.Reason(1)
	if _, err := m.Dispatcher.Dispatch(ctx, a); err != nil {
		return m.Reply(ctx, "Failed to unmute user.")
	}
	return m.Reply(ctx, "Successfully unmuted %s", target.Tag)
}

type WarnCommand struct{}

func (c *WarnCommand) Name() string        { return "warn" }
func (c *WarnCommand) Description() string { return "Warn a member: warn @user [reason]" }
func (c *WarnCommand) Category() string    { return CategoryModeration }

func (c *WarnCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	target, ok := m.FirstMention()
	if !ok {
		return m.Reply(ctx, "Please mention a user to warn.")
	}

	a := m.action(moderation.KindWarn)
	a.UserID, a.Target, a.Reason = target.ID, target.Tag, m.Reason(1)
	res, err := m.Dispatcher.Dispatch(ctx, a)
	if err != nil {
		return err
	}
	return m.Reply(ctx, "Successfully warned %s. Total warnings: %d", target.Tag, res.Warnings)
}

type PurgeCommand struct{}

func (c *PurgeCommand) Name() string        { return "purge" }
func (c *PurgeCommand) Description() string { return "Delete recent messages here: purge <1-100>" }
func (c *PurgeCommand) Category() string    { return CategoryModeration }

func (c *PurgeCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	amount, err := strconv.Atoi(m.Arg(0))
	if err != nil || amount < 1 || amount > 100 {
		return m.Reply(ctx, "Please provide a number between 1 and 100.")
	}

	a := m.action(moderation.KindPurge)
	a.ChannelID, a.Channel, a.Count = m.ChannelID, m.Chat.ChannelName(m.ChannelID), amount
	res, err := m.Dispatcher.Dispatch(ctx, a)
	if err != nil {
		return m.Reply(ctx, "Failed to purge messages.")
	}
	return m.Chat.SendTransient(ctx, m.ChannelID, fmt.Sprintf("Successfully deleted %d messages.", res.Deleted), purgeNoticeTTL)
}
