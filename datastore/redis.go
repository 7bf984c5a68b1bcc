package datastore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding one field per guild.
const DefaultRedisKey = "warden:guilds"

// RedisStore keeps the snapshot in a single redis hash.
type RedisStore struct {
	rdb *redis.Client
	key string
}

var _ Backend = (*RedisStore)(nil)

// NewRedisStore parses redisURL and checks the connection.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{rdb: rdb, key: DefaultRedisKey}, nil
}

func (s *RedisStore) Load(ctx context.Context) (Snapshot, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", s.key, err)
	}
	snap := make(Snapshot, len(fields))
	for guildID, record := range fields {
		snap[guildID] = []byte(record)
	}
	return snap, nil
}

// Save replaces the hash atomically with MULTI/EXEC.
func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	values := make(map[string]any, len(snap))
	for guildID, record := range snap {
		values[guildID] = string(record)
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.HSet(ctx, s.key, values)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
