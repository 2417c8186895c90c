// Package session persists conversation state in redis and provides
// per-session locking so concurrent requests for the same session are
// serialized.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abuzarsid7/Agentic-Honeypot/internal/domain"
)

// ErrNotFound is returned when no session exists under the given id.
var ErrNotFound = errors.New("session: not found")

// Store reads and writes sessions.
type Store interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Put(ctx context.Context, sess *domain.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions as JSON values under session:<id>, each
// with a sliding TTL refreshed on every write.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func sessionKey(id string) string {
	return "session:" + id
}

// Get loads a session, migrating any fields older writes may lack.
func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	sess.Migrate()
	return &sess, nil
}

func (s *RedisStore) Put(ctx context.Context, sess *domain.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// Healthy reports whether redis is reachable.
func (s *RedisStore) Healthy(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
