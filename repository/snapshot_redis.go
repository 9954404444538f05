package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-kit/log/level"
	"github.com/redis/go-redis/v9"
	"github.com/t-hirai03/webmaka/global"
	"github.com/t-hirai03/webmaka/types"
)

const redisKeyPrefix = "webmaka:session:"

// RedisSnapshotStore keeps snapshots in redis as JSON with a TTL, so several
// page servers can share sessions
type RedisSnapshotStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisSnapshotStore(client redis.Cmdable, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

func snapshotRedisKey(sessionID string) string {
	return redisKeyPrefix + sessionID + ":" + SnapshotKey
}

func (r *RedisSnapshotStore) Get(ctx context.Context, sessionID string) (*types.ContactFormData, error) {
	val, err := r.client.Get(ctx, snapshotRedisKey(sessionID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, types.ErrNotFound
		}
		level.Error(global.Logger).Log("msg", "failed to read snapshot", "error", err)
		return nil, err
	}
	var data types.ContactFormData
	if err := json.Unmarshal([]byte(val), &data); err != nil {
		// unreadable snapshot is the same as no snapshot
		level.Warn(global.Logger).Log("msg", "discarding malformed snapshot", "error", err)
		return nil, types.ErrNotFound
	}
	return &data, nil
}

func (r *RedisSnapshotStore) Save(ctx context.Context, sessionID string, data *types.ContactFormData) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, snapshotRedisKey(sessionID), string(b), r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}
