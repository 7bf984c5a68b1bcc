package command

import "github.com/keshon/server-warden/pkg/cmd"

// Builtins returns every built-in command.
func Builtins() []cmd.Command {
	return []cmd.Command{
		&KickCommand{},
		&BanCommand{},
		&SoftbanCommand{},
		&UnbanCommand{},
		&MuteCommand{},
		&UnmuteCommand{},
		&WarnCommand{},
		&PurgeCommand{},

		&SetRoleCommand{},
		&RemoveRoleCommand{},
		&SetAutoRoleCommand{},

		NewSetWelcomeCommand(),
		NewSetLeaveCommand(),
		NewSetLogsCommand(),
		&CreateChannelCommand{},
		&DeleteChannelCommand{},

		&SetPrefixCommand{},
		&ToggleSettingCommand{},
		&RestrictionCommand{},

		&LogsCommand{},
		&WhitelistCommand{},
		&AutoPurgeCommand{},
		&InviteCommand{},
		&HelpCommand{},
		&CustomCommandCommand{},
	}
}
