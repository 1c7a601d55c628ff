package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// storeContract runs the behaviour every Store must share.
func storeContract(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Now()

	s := &Session{
		ID:        "sess-1",
		GroupID:   "proj-123",
		APIKey:    "key-1",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}

	_, err := store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "proj-123", got.GroupID)
	assert.Equal(t, "key-1", got.APIKey)
	assert.NotSame(t, s, got, "stores hand out copies")

	got.GroupID = "mutated"
	again, err := store.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "proj-123", again.GroupID)

	require.NoError(t, store.Delete(ctx, "sess-1"))
	_, err = store.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, store.Delete(ctx, "missing"))
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	_, client := setupTestRedis(t)
	storeContract(t, NewRedisStoreFromClient(client))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), &Session{ID: "s1", ExpiresAt: now.Add(time.Minute)}))
	_, err := store.Get(context.Background(), "s1")
	require.NoError(t, err)

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = store.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, store.Len(), "expired sessions are evicted on read")
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStoreFromClient(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Session{ID: "s1", GroupID: "g", ExpiresAt: time.Now().Add(30 * time.Minute)}))
	assert.True(t, mr.Exists(sessionKey("s1")))

	ttl := mr.TTL(sessionKey("s1"))
	assert.Greater(t, ttl, 29*time.Minute)
	assert.LessOrEqual(t, ttl, 30*time.Minute)

	mr.FastForward(31 * time.Minute)
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStores_RejectExpiredSave(t *testing.T) {
	_, client := setupTestRedis(t)
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStoreFromClient(client),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			err := store.Save(context.Background(), &Session{ID: "s1", ExpiresAt: time.Now().Add(-time.Second)})
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = store.Get(context.Background(), "s1")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRedisStore_CorruptValue(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStoreFromClient(client)

	require.NoError(t, mr.Set(sessionKey("s1"), "{not json"))
	_, err := store.Get(context.Background(), "s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisStore("redis://" + mr.Addr())
	require.NoError(t, err)
	defer store.Close()

	_, err = NewRedisStore("not a url")
	assert.Error(t, err)
}
