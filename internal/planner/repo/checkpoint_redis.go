package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	errx "github.com/tripplanner-poc/server/internal/core/error"
	"github.com/tripplanner-poc/server/internal/planner/model"
	logx "github.com/tripplanner-poc/server/pkg/logger"
)

// RedisCheckpointStore persists one checkpoint record per session id as a
// JSON blob. SET replaces the value atomically, so a reader never observes a
// partially written checkpoint.
type RedisCheckpointStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisCheckpointStore(rdb redis.Cmdable, ttl time.Duration) *RedisCheckpointStore {
	return &RedisCheckpointStore{rdb: rdb, ttl: ttl}
}

func (r *RedisCheckpointStore) checkpointKey(sessionID string) string {
	return fmt.Sprintf("session:%s:checkpoint", sessionID)
}

func (r *RedisCheckpointStore) Save(ctx context.Context, s *model.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		logx.Error().Err(err).Str("session_id", s.ID).Msg("failed to marshal session checkpoint")
		return fmt.Errorf("marshal session: %w", err)
	}
	key := r.checkpointKey(s.ID)

	// TTL refresh on every save keeps live sessions alive while abandoned
	// checkpoints eventually expire.
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write session checkpoint to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisCheckpointStore) Load(ctx context.Context, sessionID string) (*model.Session, error) {
	key := r.checkpointKey(sessionID)

	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errx.New(errx.ErrSessionNotFound, http.StatusNotFound, errx.SessionNotFoundMessage)
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session checkpoint from redis")
		return nil, errx.WrapRedis(err)
	}

	var s model.Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to unmarshal session checkpoint")
		return nil, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	return &s, nil
}

func (r *RedisCheckpointStore) Delete(ctx context.Context, sessionID string) error {
	key := r.checkpointKey(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session checkpoint from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.CheckpointStore = (*RedisCheckpointStore)(nil)
