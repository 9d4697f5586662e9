package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/pdasim/pkg/adapters/redis"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err, "Failed to start miniredis")
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)

	store := redis.NewFromClient(client)
	ports.RunSnapshotStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := setup(t)

	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	sessionID := "session-ttl"
	snap := domain.NewSnapshot(sessionID, domain.Blueprint{ID: "anbn"}, "ab")

	err := store.Save(ctx, sessionID, snap)
	assert.NoError(t, err)

	sessions, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, sessions, sessionID)

	// Key expiration is driven by miniredis time.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, sessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// Index pruning is driven by wall-clock time.
	time.Sleep(1200 * time.Millisecond)

	sessions, err = store.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := setup(t)

	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()
	sessionID := "my-session"

	err := store.Save(ctx, sessionID, domain.NewSnapshot(sessionID, domain.Blueprint{ID: "x"}, ""))
	assert.NoError(t, err)

	assert.True(t, mr.Exists("custom:app:my-session"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")
	assert.Equal(t, "custom:app:", store.Prefix())

	list, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Contains(t, list, sessionID)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client)

	require.NoError(t, mr.Set(redis.DefaultPrefix+"broken", "{not json"))

	_, err := store.Load(context.Background(), "broken")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
