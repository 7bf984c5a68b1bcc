// Package datastore persists whole-store snapshots of guild records.
//
// A snapshot maps a guild ID to the JSON document of that guild's record.
// Backends always receive and return the complete snapshot: there is no
// partial or delta persistence, the last Save wins.
package datastore

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("datastore is closed")

// Snapshot is the durable unit: guild ID -> encoded record.
type Snapshot map[string]json.RawMessage

// Backend is a durable home for snapshots.
type Backend interface {
	// Load returns the last saved snapshot. An empty store yields an empty,
	// non-nil snapshot.
	Load(ctx context.Context) (Snapshot, error)
	// Save replaces the stored snapshot with snap.
	Save(ctx context.Context, snap Snapshot) error
	Close() error
}

// Clone returns a copy of the snapshot sharing no maps with s.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		b := make(json.RawMessage, len(v))
		copy(b, v)
		out[k] = b
	}
	return out
}
