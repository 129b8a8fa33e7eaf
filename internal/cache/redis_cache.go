package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/arb-scanner-service/internal/models"
)

const (
	keyPrefix = "opp"
	recentKey = "opp:recent"

	defaultMaxRecent = 500
)

// RedisCache caches recently alerted opportunities in Redis
type RedisCache struct {
	client    *redis.Client
	ttl       time.Duration
	maxRecent int64
	logger    zerolog.Logger
}

// RedisCacheConfig holds Redis cache configuration
type RedisCacheConfig struct {
	Addr      string        // e.g., "localhost:6379"
	Password  string
	DB        int
	TTL       time.Duration // e.g., 24 * time.Hour
	MaxRecent int           // Size of the recent-opportunity index
}

// NewRedisCache creates a new Redis cache
func NewRedisCache(config RedisCacheConfig, logger zerolog.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	maxRecent := config.MaxRecent
	if maxRecent <= 0 {
		maxRecent = defaultMaxRecent
	}

	return &RedisCache{
		client:    client,
		ttl:       config.TTL,
		maxRecent: int64(maxRecent),
		logger:    logger.With().Str("component", "redis_cache").Logger(),
	}
}

// opportunityKey builds the key opp:{event_id}:{opportunity_id}
func opportunityKey(opp *models.Opportunity) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, opp.EventID, opp.ID.String())
}

// escapePattern escapes glob metacharacters for SCAN MATCH
func escapePattern(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return replacer.Replace(s)
}

// Set caches an opportunity and indexes it by detection time
func (c *RedisCache) Set(ctx context.Context, opp *models.Opportunity) error {
	key := opportunityKey(opp)

	// Serialize to JSON
	data, err := json.Marshal(opp)
	if err != nil {
		return fmt.Errorf("failed to marshal opportunity: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.ZAdd(ctx, recentKey, redis.Z{
		Score:  float64(opp.DetectedAt.UnixMilli()),
		Member: key,
	})
	// Keep only the newest maxRecent entries in the index
	pipe.ZRemRangeByRank(ctx, recentKey, 0, -c.maxRecent-1)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set in Redis: %w", err)
	}

	c.logger.Debug().
		Str("key", key).
		Dur("ttl", c.ttl).
		Msg("cached opportunity")

	return nil
}

// GetByEvent retrieves all cached opportunities for an event
func (c *RedisCache) GetByEvent(ctx context.Context, eventID string) ([]*models.Opportunity, error) {
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, escapePattern(eventID))

	// Scan for keys matching pattern
	var cursor uint64
	var keys []string

	for {
		var scanKeys []string
		var err error
		scanKeys, cursor, err = c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, scanKeys...)

		if cursor == 0 {
			break
		}
	}

	opps, _, err := c.load(ctx, keys)
	return opps, err
}

// ListRecent returns up to limit cached opportunities, newest first. Index
// entries whose opportunity has expired are pruned and the scan moves on to
// older entries until limit is reached or the index is exhausted.
func (c *RedisCache) ListRecent(ctx context.Context, limit int) ([]*models.Opportunity, error) {
	if limit <= 0 {
		limit = int(c.maxRecent)
	}

	opps := make([]*models.Opportunity, 0, limit)
	var offset int64
	for len(opps) < limit {
		need := int64(limit - len(opps))
		keys, err := c.client.ZRevRange(ctx, recentKey, offset, offset+need-1).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read recent index: %w", err)
		}
		if len(keys) == 0 {
			break
		}

		batch, pruned, err := c.load(ctx, keys)
		if err != nil {
			return nil, err
		}
		opps = append(opps, batch...)

		// Pruned members no longer hold a rank
		offset += int64(len(keys) - pruned)
	}

	return opps, nil
}

// load fetches and decodes keys, skipping expired or undecodable entries.
// It reports how many expired keys were removed from the recent index.
func (c *RedisCache) load(ctx context.Context, keys []string) ([]*models.Opportunity, int, error) {
	if len(keys) == 0 {
		return []*models.Opportunity{}, 0, nil
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get from Redis: %w", err)
	}

	opps := make([]*models.Opportunity, 0, len(keys))
	var expired []any
	for i, value := range values {
		data, ok := value.(string)
		if !ok {
			expired = append(expired, keys[i])
			continue
		}

		var opp models.Opportunity
		if err := json.Unmarshal([]byte(data), &opp); err != nil {
			c.logger.Warn().Err(err).Str("key", keys[i]).Msg("failed to unmarshal opportunity")
			continue
		}
		opps = append(opps, &opp)
	}

	if len(expired) == 0 {
		return opps, 0, nil
	}

	removed, err := c.client.ZRem(ctx, recentKey, expired...).Result()
	if err != nil {
		c.logger.Warn().Err(err).Int("count", len(expired)).Msg("failed to prune recent index")
		return opps, 0, nil
	}
	return opps, int(removed), nil
}

// Ping checks Redis connection
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
