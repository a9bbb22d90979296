package cache

import (
	"context"
	"testing"
	"time"

	"github.com/RangerDjanger/BetterDay/internal/domain/events"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.Addr = mr.Addr()
	cfg.HealthInterval = 0

	client, err := NewRedisClient(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestNewRedisClientRequiresAddr(t *testing.T) {
	_, err := NewRedisClient(&Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestGetSetPrefixesKeys(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "greeting", "hello", time.Minute))
	assert.True(t, mr.Exists("betterday:greeting"))

	val, err := client.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", val)

	_, err = client.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheNotFound)

	require.NoError(t, client.Delete(ctx, "greeting"))
	assert.False(t, mr.Exists("betterday:greeting"))
}

func TestJSONRoundTripAndMiss(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	type payload struct {
		Count int `json:"count"`
	}

	var out payload
	hit, err := client.GetJSON(ctx, "stats:u1", "stats", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, client.SetJSON(ctx, "stats:u1", payload{Count: 4}, time.Minute))
	hit, err = client.GetJSON(ctx, "stats:u1", "stats", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 4, out.Count)
}

func TestClearByPattern(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "stats:u1:h1", "a", 0))
	require.NoError(t, client.Set(ctx, "stats:u1:h2", "b", 0))
	require.NoError(t, client.Set(ctx, "stats:u2:h1", "c", 0))

	require.NoError(t, client.ClearByPattern(ctx, "stats:u1:*"))

	assert.False(t, mr.Exists("betterday:stats:u1:h1"))
	assert.False(t, mr.Exists("betterday:stats:u1:h2"))
	assert.True(t, mr.Exists("betterday:stats:u2:h1"))
}

func TestSAddReportsFirstInsertOnly(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	added, err := client.SAdd(ctx, "milestones:u1:h1", "7")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = client.SAdd(ctx, "milestones:u1:h1", "7")
	require.NoError(t, err)
	assert.False(t, added)

	members, err := client.SMembers(ctx, "milestones:u1:h1")
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, members)
}

func TestGenerateCacheKey(t *testing.T) {
	assert.Equal(t, "stats:u1:h1:2024-06-12", GenerateCacheKey("stats", "u1", "h1", "2024-06-12"))
	assert.Equal(t, "settings", GenerateCacheKey("settings"))
}

func TestPublishAndSubscribeDomainEvents(t *testing.T) {
	client, _ := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan *events.Event, 1)
	go func() {
		_ = client.SubscribeToEvents(ctx, func(e *events.Event) error {
			received <- e
			return nil
		})
	}()

	// Publish until the subscriber is attached.
	event := events.New(events.EventTypeMilestoneAchieved, "u1", "h1", map[string]interface{}{"days": 7})
	require.Eventually(t, func() bool {
		require.NoError(t, client.PublishDomainEvent(ctx, event))
		select {
		case got := <-received:
			assert.Equal(t, events.EventTypeMilestoneAchieved, got.EventType)
			assert.Equal(t, "u1", got.UserID)
			assert.Equal(t, "h1", got.EntityID)
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}
