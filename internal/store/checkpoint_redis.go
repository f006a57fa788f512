package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openchess/tuner-api/internal/models"
)

// checkpointTTL bounds how long partial searches survive; keys are
// content-addressed so stale entries are never read by a changed run.
const checkpointTTL = 7 * 24 * time.Hour

// RedisCheckpoint stores partial per-family tuning tables in a Redis
// hash keyed by the search's content hash.
type RedisCheckpoint struct {
	client *redis.Client
	logger *zap.SugaredLogger
}

func NewRedisCheckpoint(client *redis.Client, logger *zap.Logger) *RedisCheckpoint {
	return &RedisCheckpoint{client: client, logger: logger.Sugar()}
}

func checkpointKey(key string) string { return "tuner:checkpoint:" + key }

// Load returns the saved table for a family, or nil when the family has
// not completed under this key.
func (c *RedisCheckpoint) Load(ctx context.Context, key, family string) (*models.TuningResult, error) {
	data, err := c.client.HGet(ctx, checkpointKey(key), family).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result models.TuningResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Save writes a family's completed table under the search key.
func (c *RedisCheckpoint) Save(ctx context.Context, key, family string, result *models.TuningResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	rkey := checkpointKey(key)
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, rkey, family, data)
	pipe.Expire(ctx, rkey, checkpointTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	c.logger.Infow("Checkpoint saved", "key", key, "family", family, "entries", len(result.Entries))
	return nil
}
