package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PendingRedirectStore parks one redirect path per session under "redirect:<session>".
type PendingRedirectStore struct {
	client redis.UniversalClient
	keys   keyspace
	ttl    time.Duration
}

// NewPendingRedirectStore creates a store whose entries expire after ttl (no expiry when ttl <= 0).
func NewPendingRedirectStore(client redis.UniversalClient, ttl time.Duration) *PendingRedirectStore {
	return &PendingRedirectStore{client: client, keys: keyspace("redirect"), ttl: ttl}
}

func (s *PendingRedirectStore) Set(ctx context.Context, sessionID, path string) error {
	if sessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.keys.key(sessionID), path, ttl).Err(); err != nil {
		return fmt.Errorf("redis set redirect: %w", err)
	}
	return nil
}

func (s *PendingRedirectStore) Take(ctx context.Context, sessionID string) (string, bool, error) {
	if sessionID == "" {
		return "", false, nil
	}
	path, err := s.client.GetDel(ctx, s.keys.key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis take redirect: %w", err)
	}
	return path, true, nil
}

func (s *PendingRedirectStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.client.Del(ctx, s.keys.key(sessionID)).Err()
}
