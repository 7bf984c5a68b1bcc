package datastore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const createGuildRecordsTable = `
	CREATE TABLE IF NOT EXISTS guild_records (
		guild_id   TEXT PRIMARY KEY,
		record     JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

// PostgresStore keeps one row per guild in the guild_records table. A Save
// rewrites the whole table inside one transaction.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Backend = (*PostgresStore)(nil)

// NewPostgresStore connects to databaseURL, verifies the connection and
// makes sure the guild_records table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 20 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping DB: %w", err)
	}

	if _, err := pool.Exec(ctx, createGuildRecordsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create guild_records table: %w", err)
	}

	log.Info().Int32("max_conns", poolConfig.MaxConns).Msg("postgres snapshot store ready")
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context) (Snapshot, error) {
	rows, err := s.pool.Query(ctx, `SELECT guild_id, record FROM guild_records`)
	if err != nil {
		return nil, fmt.Errorf("list guild records: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var (
			guildID string
			record  []byte
		)
		if err := rows.Scan(&guildID, &record); err != nil {
			return nil, fmt.Errorf("scan guild record: %w", err)
		}
		snap[guildID] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate guild records: %w", err)
	}
	return snap, nil
}

func (s *PostgresStore) Save(ctx context.Context, snap Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	ids := make([]string, 0, len(snap))
	batch := &pgx.Batch{}
	for guildID, record := range snap {
		ids = append(ids, guildID)
		batch.Queue(`
			INSERT INTO guild_records (guild_id, record, updated_at)
			VALUES ($1, $2, now())
			ON CONFLICT (guild_id) DO UPDATE
			SET record = EXCLUDED.record, updated_at = EXCLUDED.updated_at`,
			guildID, []byte(record))
	}

	if _, err := tx.Exec(ctx, `DELETE FROM guild_records WHERE NOT (guild_id = ANY($1))`, ids); err != nil {
		return fmt.Errorf("delete stale guild records: %w", err)
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert guild records: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	log.Info().Msg("closing postgres snapshot store")
	s.pool.Close()
	return nil
}
