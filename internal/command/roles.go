package command

import (
	"context"

	"github.com/keshon/server-warden/internal/moderation"
	"github.com/keshon/server-warden/pkg/cmd"
)

type SetRoleCommand struct{}

func (c *SetRoleCommand) Name() string { return "setrole" }
func (c *SetRoleCommand) Description() string {
	return "Give a member a role: setrole @user <role name>"
}
func (c *SetRoleCommand) Category() string { return CategoryRoles }

func (c *SetRoleCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return runRoleChange(ctx, inv, moderation.KindRoleAdd, "Failed to assign role.", "Successfully gave %s the role %s")
}

type RemoveRoleCommand struct{}

func (c *RemoveRoleCommand) Name() string { return "removerole" }
func (c *RemoveRoleCommand) Description() string {
	return "Take a role from a member: removerole @user <role name>"
}
func (c *RemoveRoleCommand) Category() string { return CategoryRoles }

func (c *RemoveRoleCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return runRoleChange(ctx, inv, moderation.KindRoleRemove, "Failed to remove role.", "Successfully removed from %s the role %s")
}

func runRoleChange(ctx context.Context, inv *cmd.Invocation, kind moderation.Kind, failed, done string) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	target, ok := m.FirstMention()
	if !ok {
		return m.Reply(ctx, "Please mention a user.")
	}
	role, ok, err := resolveRole(ctx, m, m.Rest(1))
	if !ok {
		return err
	}

	a := m.action(kind)
	a.UserID, a.Target, a.RoleID, a.Role = target.ID, target.Tag, role.ID, role.Name
	if _, err := m.Dispatcher.Dispatch(ctx, a); err != nil {
		return m.Reply(ctx, "%s", failed)
	}
	return m.Reply(ctx, done, target.Tag, role.Name)
}

type SetAutoRoleCommand struct{}

func (c *SetAutoRoleCommand) Name() string { return "setautorole" }
func (c *SetAutoRoleCommand) Description() string {
	return "Role given to every new member: setautorole <role name>"
}
func (c *SetAutoRoleCommand) Category() string { return CategoryRoles }

func (c *SetAutoRoleCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	role, ok, err := resolveRole(ctx, m, m.Rest(0))
	if !ok {
		return err
	}
	if err := m.Store.SetAutoRole(m.GuildID, role.ID); err != nil {
		return err
	}
	m.Record(ctx, moderation.KindSettingChange, "%s set auto-role to %s", m.Author.Tag, role.Name)
	return m.Reply(ctx, "Successfully set auto-role to %s", role.Name)
}

type RestrictionCommand struct{}

func (c *RestrictionCommand) Name() string { return "restriction" }
func (c *RestrictionCommand) Description() string {
	return "Let a role use bot commands: restriction <role name>"
}
func (c *RestrictionCommand) Category() string { return CategorySettings }

func (c *RestrictionCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	m, err := From(inv)
	if err != nil {
		return err
	}
	role, ok, err := resolveRole(ctx, m, m.Rest(0))
	if !ok {
		return err
	}
	if err := m.Store.SetAllowedRole(m.GuildID, role.ID); err != nil {
		return err
	}
	m.Record(ctx, moderation.KindSettingChange, "%s set command restriction to role %s", m.Author.Tag, role.Name)
	return m.Reply(ctx, "Successfully set command restriction to role %s", role.Name)
}

// resolveRole finds a role by case-insensitive name. When it reports !ok the
// user has already been told why and err is the reply error.
func resolveRole(ctx context.Context, m *MessageContext, name string) (Role, bool, error) {
	if name == "" {
		return Role{}, false, m.Reply(ctx, "Please provide a role name.")
	}
	role, ok := m.Chat.FindRole(m.GuildID, name)
	if !ok {
		return Role{}, false, m.Reply(ctx, "Role not found.")
	}
	return role, true, nil
}
