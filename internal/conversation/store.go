package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cropweather-ai/cropweather/internal/llm"
)

// DefaultSession is used when a chat request carries no session identifier.
const DefaultSession = "default"

// Store keeps a rolling window of conversation entries per session.
type Store interface {
	Append(ctx context.Context, sessionID string, entries ...llm.Message) error
	History(ctx context.Context, sessionID string) ([]llm.Message, error)
	Clear(ctx context.Context, sessionID string) error
}

// RedisStore manages conversation context in Redis lists. Each session maps
// to its own list, trimmed to the configured window on every append.
type RedisStore struct {
	client *redis.Client
	limit  int
	ttl    time.Duration
}

// NewRedisStore creates a conversation store keeping at most limit entries
// per session, expiring idle sessions after ttl.
func NewRedisStore(client *redis.Client, limit int, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, limit: limit, ttl: ttl}
}

func convKey(sessionID string) string {
	if sessionID == "" {
		sessionID = DefaultSession
	}
	return "conv:" + sessionID
}

// Append adds entries to the session's list and trims to the window. The
// oldest entries fall off first.
func (s *RedisStore) Append(ctx context.Context, sessionID string, entries ...llm.Message) error {
	if len(entries) == 0 {
		return nil
	}
	key := convKey(sessionID)

	values := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshaling entry: %w", err)
		}
		values = append(values, string(data))
	}

	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-s.limit), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec for %s: %w", key, err)
	}
	return nil
}

// History returns the session's retained entries, oldest first.
func (s *RedisStore) History(ctx context.Context, sessionID string) ([]llm.Message, error) {
	key := convKey(sessionID)

	vals, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	entries := make([]llm.Message, 0, len(vals))
	for _, v := range vals {
		var entry llm.Message
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			continue // skip malformed entries
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Clear deletes the session's history.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, convKey(sessionID)).Err()
}
