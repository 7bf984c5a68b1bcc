// /internal/storage/storage.go
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/keshon/server-warden/datastore"
	st "github.com/keshon/server-warden/internal/storagetypes"

	"github.com/rs/zerolog/log"
)

// Storage owns every guild record. All mutation funnels through Mutate,
// which writes the whole snapshot to the backend before returning, so a
// snapshot always reflects every mutation applied so far.
type Storage struct {
	mu      sync.Mutex
	backend datastore.Backend
	records map[string]*st.Record
	encoded datastore.Snapshot // per-guild JSON cache, kept in step with records
	prefix  string
	now     func() time.Time
}

type Option func(*Storage)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

func New(backend datastore.Backend, defaultPrefix string, opts ...Option) *Storage {
	s := &Storage{
		backend: backend,
		records: make(map[string]*st.Record),
		encoded: make(datastore.Snapshot),
		prefix:  defaultPrefix,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the store's clock.
func (s *Storage) Now() time.Time { return s.now() }

// DefaultPrefix is the prefix new guilds start with.
func (s *Storage) DefaultPrefix() string { return s.prefix }

// Load replaces the in-memory state with the backend's snapshot. Every stored
// guild is decoded over a default record field by field, so fields missing
// from an older snapshot, or that fail to decode, fall back to their defaults. A snapshot that can't be read leaves
// the store empty; the error is logged and returned but is not fatal.
func (s *Storage) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*st.Record)
	s.encoded = make(datastore.Snapshot)

	snap, err := s.backend.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("error loading data, starting with an empty store")
		return fmt.Errorf("load snapshot: %w", err)
	}

	for guildID, raw := range snap {
		record, err := st.DecodeRecord(raw, s.prefix)
		if record == nil {
			log.Error().Err(err).Str("guild", guildID).Msg("skipping undecodable guild record")
			continue
		}
		if err != nil {
			log.Warn().Err(err).Str("guild", guildID).Msg("guild record fields reset to defaults")
		}
		s.records[guildID] = record
		s.encodeLocked(guildID)
	}

	log.Info().Int("guilds", len(s.records)).Msg("guild records loaded")
	return nil
}

// Get returns a copy of the guild's record, creating and persisting the
// default record on first use.
func (s *Storage) Get(guildID string) st.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	return *s.getOrCreateLocked(guildID).Clone()
}

// Mutate applies fn to a copy of the guild's record. When fn succeeds the copy
// replaces the record and the whole store is written out; when fn fails
// nothing changes and its error is returned. Persistence errors are logged
// only: memory stays authoritative until the next successful write.
func (s *Storage) Mutate(guildID string, fn func(*st.Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.getOrCreateLocked(guildID).Clone()
	if err := fn(draft); err != nil {
		return err
	}

	s.records[guildID] = draft
	s.encodeLocked(guildID)
	s.persistLocked()
	return nil
}

// Guilds lists every known guild ID in sorted order.
func (s *Storage) Guilds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Flush forces a snapshot write and reports its error.
func (s *Storage) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.backend.Save(ctx, s.encoded.Clone())
}

func (s *Storage) Close() error {
	if err := s.Flush(context.Background()); err != nil {
		log.Error().Err(err).Msg("final snapshot write failed")
	}
	return s.backend.Close()
}

func (s *Storage) getOrCreateLocked(guildID string) *st.Record {
	if record, ok := s.records[guildID]; ok {
		return record
	}

	record := st.NewRecord(s.prefix)
	s.records[guildID] = record
	s.encodeLocked(guildID)
	s.persistLocked()
	log.Debug().Str("guild", guildID).Msg("created guild record")
	return record
}

func (s *Storage) encodeLocked(guildID string) {
	data, err := json.Marshal(s.records[guildID])
	if err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("error encoding guild record")
		return
	}
	s.encoded[guildID] = data
}

func (s *Storage) persistLocked() {
	if err := s.backend.Save(context.Background(), s.encoded.Clone()); err != nil {
		log.Error().Err(err).Msg("error saving data")
	}
}
