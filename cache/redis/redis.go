package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zlnvch/seodash/cache"
)

type RedisDashboardCache struct {
	client redis.UniversalClient
}

func NewRedisDashboardCache(ctx context.Context, devMode bool, redisEndpoint string) (*RedisDashboardCache, error) {
	var client redis.UniversalClient
	if devMode {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: redisEndpoint,
			// AWS elasticache endpoints require TLS
			TLSConfig: &tls.Config{},
		})
	}

	err := client.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return &RedisDashboardCache{client: client}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client redis.UniversalClient) *RedisDashboardCache {
	return &RedisDashboardCache{client: client}
}

func (redisCache *RedisDashboardCache) Close() error {
	return redisCache.client.Close()
}

func (redisCache *RedisDashboardCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := redisCache.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrCacheMiss
		}
		return nil, err
	}
	return val, nil
}

func (redisCache *RedisDashboardCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return redisCache.client.Set(ctx, key, value, ttl).Err()
}

const dailyCountTTL = 48 * time.Hour

func buildDailyCountKey(userId string, metric string, day string) string {
	return cache.UserKey(userId, "quota", metric, day)
}

func (redisCache *RedisDashboardCache) IncrementDailyCount(ctx context.Context, userId string, metric string, day string) (int64, error) {
	key := buildDailyCountKey(userId, metric, day)

	pipe := redisCache.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, dailyCountTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (redisCache *RedisDashboardCache) DecrementDailyCount(ctx context.Context, userId string, metric string, day string) error {
	return redisCache.client.Decr(ctx, buildDailyCountKey(userId, metric, day)).Err()
}

// InvalidateUser scans rather than using KEYS so a large keyspace never blocks the server.
func (redisCache *RedisDashboardCache) InvalidateUser(ctx context.Context, userId string) error {
	pattern := cache.UserKey(userId) + ":*"

	var cursor uint64
	for {
		keys, next, err := redisCache.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}

		// All keys share the user's hash tag, so one DEL is cluster-safe
		if len(keys) > 0 {
			if err := redisCache.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
