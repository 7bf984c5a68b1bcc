package storagetypes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DecodeRecord decodes a stored guild document over a default record one
// field at a time. A field that fails to decode keeps its default and is
// reported in the returned error; the record is still usable. Only a
// document that is not a JSON object yields a nil record.
func DecodeRecord(data []byte, prefix string) (*Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}

	r := NewRecord(prefix)
	var errs []error

	if raw, ok := fields["settings"]; ok && !isNull(raw) {
		if err := decodeSettings(raw, &r.Settings); err != nil {
			errs = append(errs, err)
		}
	}

	targets := map[string]func(json.RawMessage) error{
		"whitelist":      into(&r.Whitelist),
		"warnings":       into(&r.Warnings),
		"tempBans":       into(&r.TempBans),
		"mutes":          into(&r.Mutes),
		"logs":           into(&r.Logs),
		"joinTimes":      into(&r.JoinTimes),
		"customCommands": into(&r.CustomCommands),
	}
	errs = append(errs, decodeFields(fields, targets)...)

	r.Heal(prefix)
	return r, errors.Join(errs...)
}

func decodeSettings(data []byte, s *Settings) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	targets := map[string]func(json.RawMessage) error{
		"prefix":         into(&s.Prefix),
		"welcomeChannel": into(&s.WelcomeChannel),
		"leaveChannel":   into(&s.LeaveChannel),
		"logsChannel":    into(&s.LogsChannel),
		"autoRole":       into(&s.AutoRole),
		"allowedRole":    into(&s.AllowedRole),
		"autoPurge":      into(&s.AutoPurge),
		"antiSpam":       into(&s.AntiSpam),
		"antiCaps":       into(&s.AntiCaps),
		"antiInvites":    into(&s.AntiInvites),
		"antiMention":    into(&s.AntiMention),
		"antiRaid":       into(&s.AntiRaid),
	}
	var errs []error
	for _, err := range decodeFields(fields, targets) {
		errs = append(errs, fmt.Errorf("settings.%w", err))
	}
	return errors.Join(errs...)
}

// decodeFields runs the target of every known field. Unknown fields and
// nulls are skipped so the default stays in place.
func decodeFields(fields map[string]json.RawMessage, targets map[string]func(json.RawMessage) error) []error {
	var errs []error
	for name, decode := range targets {
		raw, ok := fields[name]
		if !ok || isNull(raw) {
			continue
		}
		if err := decode(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errs
}

// into decodes into a fresh value and assigns it only on success, so a
// failed decode never leaves a half-filled field behind.
func into[T any](dst *T) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// UnmarshalJSON accepts the timestamp as epoch millis or as an RFC 3339
// string.
func (w *Warning) UnmarshalJSON(data []byte) error {
	type plain Warning
	aux := struct {
		*plain
		Timestamp json.RawMessage `json:"timestamp"`
	}{plain: (*plain)(w)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	ts, err := parseMillis(aux.Timestamp)
	if err != nil {
		return err
	}
	w.Timestamp = ts
	return nil
}

// UnmarshalJSON accepts the timestamp as epoch millis or as an RFC 3339
// string.
func (e *AuditEntry) UnmarshalJSON(data []byte) error {
	type plain AuditEntry
	aux := struct {
		*plain
		Timestamp json.RawMessage `json:"timestamp"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	ts, err := parseMillis(aux.Timestamp)
	if err != nil {
		return err
	}
	e.Timestamp = ts
	return nil
}

func parseMillis(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return 0, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return 0, fmt.Errorf("timestamp %q: %w", s, err)
		}
		return t.UnixMilli(), nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("timestamp %s: %w", raw, err)
	}
	if ms, err := n.Int64(); err == nil {
		return ms, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("timestamp %s: %w", raw, err)
	}
	return int64(f), nil
}
