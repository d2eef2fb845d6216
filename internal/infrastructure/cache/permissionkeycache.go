package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"warden/internal/domain/permission"
	"warden/internal/shared/logger"
)

const (
	permissionKeysPrefix = "warden:role:keys:"
	// Generation counters never expire.
	keysGenerationPrefix = "warden:role:keysgen:"
	defaultKeysTTL       = 30 * time.Minute
)

var (
	_ permission.PermissionKeyCache = (*RedisPermissionKeyCache)(nil)
	_ permission.PermissionKeyCache = NopPermissionKeyCache{}
)

// setIfGenerationLua writes the key list only when the generation counter
// still holds the value the caller read before loading from storage.
//
// KEYS[1] = entry key, KEYS[2] = generation key
// ARGV[1] = expected generation, ARGV[2] = JSON keys, ARGV[3] = ttl in ms
var setIfGenerationLua = redis.NewScript(`
local gen = redis.call('GET', KEYS[2])
if (gen or '0') ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// RedisPermissionKeyCache stores a role's persisted key list as a JSON
// array under one string key per role.
type RedisPermissionKeyCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Interface
}

func NewRedisPermissionKeyCache(client *redis.Client, ttl time.Duration, logger logger.Interface) *RedisPermissionKeyCache {
	if ttl <= 0 {
		ttl = defaultKeysTTL
	}
	return &RedisPermissionKeyCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *RedisPermissionKeyCache) key(roleID uint) string {
	return fmt.Sprintf("%s%d", permissionKeysPrefix, roleID)
}

func (c *RedisPermissionKeyCache) generationKey(roleID uint) string {
	return fmt.Sprintf("%s%d", keysGenerationPrefix, roleID)
}

// jitteredTTL returns a TTL in [ttl, 1.25*ttl).
func (c *RedisPermissionKeyCache) jitteredTTL() time.Duration {
	jitter := c.ttl / 4
	if jitter <= 0 {
		return c.ttl
	}
	return c.ttl + time.Duration(rand.Int64N(int64(jitter)))
}

func (c *RedisPermissionKeyCache) Get(ctx context.Context, roleID uint) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, c.key(roleID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get permission keys from cache: %w", err)
	}

	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		// Corrupt entry: drop it and report a miss.
		c.logger.Warnw("discarding unreadable permission key cache entry", "role_id", roleID, "error", err)
		_ = c.client.Del(ctx, c.key(roleID)).Err()
		return nil, false, nil
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, true, nil
}

// Generation returns the role's invalidation counter; a missing counter is 0.
func (c *RedisPermissionKeyCache) Generation(ctx context.Context, roleID uint) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey(roleID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get permission key generation: %w", err)
	}
	return gen, nil
}

// Set stores keys only while the role's generation still equals generation.
// A writer that loaded its keys before an Invalidate therefore stores nothing.
func (c *RedisPermissionKeyCache) Set(ctx context.Context, roleID uint, generation int64, keys []string) error {
	if keys == nil {
		keys = []string{}
	}
	raw, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to encode permission keys: %w", err)
	}

	stored, err := setIfGenerationLua.Run(ctx, c.client,
		[]string{c.key(roleID), c.generationKey(roleID)},
		strconv.FormatInt(generation, 10),
		raw,
		c.jitteredTTL().Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to set permission keys in cache: %w", err)
	}

	if stored == 0 {
		c.logger.Debugw("skipped stale permission key cache write", "role_id", roleID, "generation", generation)
		return nil
	}
	c.logger.Debugw("permission keys cached", "role_id", roleID, "count", len(keys))
	return nil
}

// Invalidate drops the entry and bumps the generation in one transaction.
func (c *RedisPermissionKeyCache) Invalidate(ctx context.Context, roleID uint) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey(roleID))
		pipe.Del(ctx, c.key(roleID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate permission keys: %w", err)
	}
	return nil
}

// NopPermissionKeyCache is used when Redis is disabled; every Get is a miss.
type NopPermissionKeyCache struct{}

func (NopPermissionKeyCache) Get(context.Context, uint) ([]string, bool, error) {
	return nil, false, nil
}

func (NopPermissionKeyCache) Generation(context.Context, uint) (int64, error) {
	return 0, nil
}

func (NopPermissionKeyCache) Set(context.Context, uint, int64, []string) error {
	return nil
}

func (NopPermissionKeyCache) Invalidate(context.Context, uint) error {
	return nil
}
