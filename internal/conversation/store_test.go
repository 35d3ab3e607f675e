package conversation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cropweather-ai/cropweather/internal/llm"
)

func setupStore(t *testing.T, limit int, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, limit, ttl), mr
}

func TestRedisStore_AppendAndHistory(t *testing.T) {
	store, _ := setupStore(t, 10, time.Hour)
	ctx := context.Background()

	err := store.Append(ctx, "s1",
		llm.Message{Role: llm.RoleUser, Content: "how much rain this week?"},
		llm.Message{Role: llm.RoleAssistant, Content: "around 12mm expected"},
	)
	require.NoError(t, err)

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, llm.RoleUser, history[0].Role)
	assert.Equal(t, "how much rain this week?", history[0].Content)
	assert.Equal(t, llm.RoleAssistant, history[1].Role)
}

func TestRedisStore_TrimsToWindowOldestFirst(t *testing.T) {
	store, _ := setupStore(t, 10, time.Hour)
	ctx := context.Background()

	for i := 0; i < 14; i++ {
		err := store.Append(ctx, "s1", llm.Message{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 10)

	// The retained window is the most recent suffix of everything appended.
	assert.Equal(t, "message 4", history[0].Content)
	assert.Equal(t, "message 13", history[9].Content)
}

func TestRedisStore_SessionsAreIsolated(t *testing.T) {
	store, _ := setupStore(t, 10, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "alice", llm.Message{Role: llm.RoleUser, Content: "wheat"}))
	require.NoError(t, store.Append(ctx, "bob", llm.Message{Role: llm.RoleUser, Content: "rice"}))

	aliceHistory, err := store.History(ctx, "alice")
	require.NoError(t, err)
	bobHistory, err := store.History(ctx, "bob")
	require.NoError(t, err)

	require.Len(t, aliceHistory, 1)
	require.Len(t, bobHistory, 1)
	assert.Equal(t, "wheat", aliceHistory[0].Content)
	assert.Equal(t, "rice", bobHistory[0].Content)
}

func TestRedisStore_EmptySessionFallsBackToDefault(t *testing.T) {
	store, _ := setupStore(t, 10, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "", llm.Message{Role: llm.RoleUser, Content: "hello"}))

	history, err := store.History(ctx, DefaultSession)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hello", history[0].Content)
}

func TestRedisStore_IdleSessionExpires(t *testing.T) {
	store, mr := setupStore(t, 10, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", llm.Message{Role: llm.RoleUser, Content: "hi"}))

	mr.FastForward(2 * time.Minute)

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRedisStore_Clear(t *testing.T) {
	store, _ := setupStore(t, 10, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", llm.Message{Role: llm.RoleUser, Content: "hi"}))
	require.NoError(t, store.Clear(ctx, "s1"))

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}
