package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	maxCreateRetries = 3
)

// RedisStore は Redis にセッションを保存します。複数インスタンスで共有できます。
// 期限切れは Redis のキーTTLに任せます。
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisStore は RedisStore を作成します。
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		now: time.Now,
	}
}

// Create はセッションを作成します。IDの衝突時は作り直します。
func (s *RedisStore) Create(ctx context.Context, username string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	now := s.now().UTC()
	payload, err := json.Marshal(&Record{
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return "", err
	}

	for i := 0; i < maxCreateRetries; i++ {
		id, err := NewID()
		if err != nil {
			return "", err
		}
		ok, err := s.rdb.SetNX(ctx, sessionKey(id), payload, ttl).Result()
		if err != nil {
			return "", fmt.Errorf("redis error: %w", err)
		}
		if ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to allocate session id after %d attempts", maxCreateRetries)
}

// Get はセッションを取得します。
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	if !validID(id) {
		return nil, nil
	}
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt session record: %w", err)
	}
	if record.Expired(s.now()) {
		return nil, nil
	}
	return &record, nil
}

// Delete はセッションを削除します。
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

// Ping は Redis への疎通を確認します。
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
