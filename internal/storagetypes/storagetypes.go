package storagetypes

// MaxAuditEntries bounds Record.Logs; the oldest entries are evicted first.
const MaxAuditEntries = 1000

// MaxPrefixLength bounds the per-guild command prefix.
const MaxPrefixLength = 3

// ChannelKind names a channel binding of a guild.
type ChannelKind string

const (
	ChannelWelcome ChannelKind = "welcome"
	ChannelLeave   ChannelKind = "leave"
	ChannelLogs    ChannelKind = "logs"
)

// AutoModFlags toggles the auto-moderation heuristics. Every flag defaults
// to true.
type AutoModFlags struct {
	AntiSpam    bool `json:"antiSpam"`
	AntiCaps    bool `json:"antiCaps"`
	AntiInvites bool `json:"antiInvites"`
	AntiMention bool `json:"antiMention"`
	AntiRaid    bool `json:"antiRaid"`
}

// AutoPurgeRule is a recurring purge of one channel.
type AutoPurgeRule struct {
	IntervalMillis int64 `json:"interval"`
	LastRun        int64 `json:"lastPurge"` // epoch millis
}

// Settings is the configuration half of a guild record. The auto-mod flags
// are inlined so the document keeps the flat settings shape.
type Settings struct {
	AutoModFlags

	Prefix         string                   `json:"prefix"`
	WelcomeChannel string                   `json:"welcomeChannel,omitempty"`
	LeaveChannel   string                   `json:"leaveChannel,omitempty"`
	LogsChannel    string                   `json:"logsChannel,omitempty"`
	AutoRole       string                   `json:"autoRole,omitempty"`
	AllowedRole    string                   `json:"allowedRole,omitempty"`
	AutoPurge      map[string]AutoPurgeRule `json:"autoPurge"` // key = channelID
}

type Warning struct {
	Reason    string `json:"reason"`
	Moderator string `json:"moderator"`
	Timestamp int64  `json:"timestamp"`
}

type AuditEntry struct {
	Timestamp int64  `json:"timestamp"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

// Record is everything the bot knows about one guild.
type Record struct {
	Settings       Settings             `json:"settings"`
	Whitelist      []string             `json:"whitelist"`
	Warnings       map[string][]Warning `json:"warnings"`  // key = userID
	TempBans       map[string]int64     `json:"tempBans"`  // userID -> expiry millis
	Mutes          map[string]int64     `json:"mutes"`     // userID -> expiry millis
	Logs           []AuditEntry         `json:"logs"`      // oldest first
	JoinTimes      map[string]int64     `json:"joinTimes"` // userID -> last join millis
	CustomCommands map[string]string    `json:"customCommands"`
}

// NewRecord returns a record with every field in its default shape.
func NewRecord(prefix string) *Record {
	return &Record{
		Settings: Settings{
			Prefix: prefix,
			AutoModFlags: AutoModFlags{
				AntiSpam:    true,
				AntiCaps:    true,
				AntiInvites: true,
				AntiMention: true,
				AntiRaid:    true,
			},
			AutoPurge: map[string]AutoPurgeRule{},
		},
		Whitelist:      []string{},
		Warnings:       map[string][]Warning{},
		TempBans:       map[string]int64{},
		Mutes:          map[string]int64{},
		Logs:           []AuditEntry{},
		JoinTimes:      map[string]int64{},
		CustomCommands: map[string]string{},
	}
}

// Heal restores nil collections after decoding a snapshot that wrote them as
// null or predates them.
func (r *Record) Heal(prefix string) {
	if r.Settings.Prefix == "" {
		r.Settings.Prefix = prefix
	}
	if r.Settings.AutoPurge == nil {
		r.Settings.AutoPurge = map[string]AutoPurgeRule{}
	}
	if r.Whitelist == nil {
		r.Whitelist = []string{}
	}
	if r.Warnings == nil {
		r.Warnings = map[string][]Warning{}
	}
	if r.TempBans == nil {
		r.TempBans = map[string]int64{}
	}
	if r.Mutes == nil {
		r.Mutes = map[string]int64{}
	}
	if r.Logs == nil {
		r.Logs = []AuditEntry{}
	}
	if r.JoinTimes == nil {
		r.JoinTimes = map[string]int64{}
	}
	if r.CustomCommands == nil {
		r.CustomCommands = map[string]string{}
	}
	if len(r.Logs) > MaxAuditEntries {
		r.Logs = r.Logs[len(r.Logs)-MaxAuditEntries:]
	}
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	out := *r

	out.Settings.AutoPurge = make(map[string]AutoPurgeRule, len(r.Settings.AutoPurge))
	for k, v := range r.Settings.AutoPurge {
		out.Settings.AutoPurge[k] = v
	}

	out.Whitelist = append([]string{}, r.Whitelist...)

	out.Warnings = make(map[string][]Warning, len(r.Warnings))
	for k, v := range r.Warnings {
		out.Warnings[k] = append([]Warning{}, v...)
	}

	out.TempBans = copyInt64Map(r.TempBans)
	out.Mutes = copyInt64Map(r.Mutes)
	out.JoinTimes = copyInt64Map(r.JoinTimes)

	out.Logs = append([]AuditEntry{}, r.Logs...)

	out.CustomCommands = make(map[string]string, len(r.CustomCommands))
	for k, v := range r.CustomCommands {
		out.CustomCommands[k] = v
	}

	return &out
}

// Channel returns the channel bound to kind, or "".
func (r *Record) Channel(kind ChannelKind) string {
	switch kind {
	case ChannelWelcome:
		return r.Settings.WelcomeChannel
	case ChannelLeave:
		return r.Settings.LeaveChannel
	case ChannelLogs:
		return r.Settings.LogsChannel
	}
	return ""
}

// SetChannel binds kind to channelID. Unknown kinds are ignored.
func (r *Record) SetChannel(kind ChannelKind, channelID string) {
	switch kind {
	case ChannelWelcome:
		r.Settings.WelcomeChannel = channelID
	case ChannelLeave:
		r.Settings.LeaveChannel = channelID
	case ChannelLogs:
		r.Settings.LogsChannel = channelID
	}
}

func copyInt64Map(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
