package datastore

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("live test, need TEST_DATABASE_URL pointing at postgres")
	}
	ctx := context.Background()

	s, err := NewPostgresStore(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(ctx, Snapshot{"g1": json.RawMessage(`{"x":1}`), "g2": json.RawMessage(`{"y":2}`)}))
	require.NoError(t, s.Save(ctx, Snapshot{"g1": json.RawMessage(`{"x":3}`)}))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 1)
	assert.JSONEq(t, `{"x":3}`, string(snap["g1"]))
}

func TestRedisStoreRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("live test, need TEST_REDIS_URL pointing at redis")
	}
	ctx := context.Background()

	s, err := NewRedisStore(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(ctx, Snapshot{"g1": json.RawMessage(`{"x":1}`), "g2": json.RawMessage(`{"y":2}`)}))
	require.NoError(t, s.Save(ctx, Snapshot{"g2": json.RawMessage(`{"y":5}`)}))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 1)
	assert.JSONEq(t, `{"y":5}`, string(snap["g2"]))
}
