// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// touchScript only sets lastActivity while the token field is present.
var touchScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
  redis.call('HSET', KEYS[1], ARGV[2], ARGV[3])
  return 1
end
return 0
`)

// =============================================================================
// REDIS STORE
// =============================================================================

// RedisStore keeps the session in a Redis hash so several front-desk
// terminals can share one login.
type RedisStore struct {
	client *redis.Client
	key    string
	owned  bool
}

// NewRedisStore connects to addr and stores the session under
// "<namespace>:session".
func NewRedisStore(addr, namespace string) *RedisStore {
	client := redis.NewClient(&redis.Options{Addr: addr})
	s := NewRedisStoreWithClient(client, namespace)
	s.owned = true
	return s
}

// NewRedisStoreWithClient uses an existing client. Close does not close it.
func NewRedisStoreWithClient(client *redis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = "templeadmin"
	}
	return &RedisStore{client: client, key: namespace + ":session"}
}

func (s *RedisStore) Load(ctx context.Context) (Record, error) {
	m, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return Record{}, unavailable("load", err)
	}
	return recordFromMap(m), nil
}

func (s *RedisStore) Save(ctx context.Context, rec Record) error {
	fields := make(map[string]interface{}, len(Keys))
	for k, v := range recordToMap(rec) {
		fields[k] = v
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, fields)
		return nil
	})
	if err != nil {
		return unavailable("save", err)
	}
	return nil
}

func (s *RedisStore) Touch(ctx context.Context, at time.Time) error {
	n, err := touchScript.Run(ctx, s.client, []string{s.key},
		KeyAuthToken, KeyLastActivity, FormatMillis(at)).Int()
	if err != nil {
		return unavailable("touch", err)
	}
	if n == 0 {
		return ErrNoSession
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return unavailable("clear", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

func (s *RedisStore) Describe() string {
	return "redis:" + s.client.Options().Addr + "/" + s.key
}
