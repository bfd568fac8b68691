package cache

import (
	"context"
	"errors"
	"time"
)

var ErrCacheMiss = errors.New("cache miss")

type DashboardCache interface {
	// Get returns ErrCacheMiss when key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// IncrementDailyCount bumps the user's counter for metric on day and
	// returns the new value. Counters expire on their own after two days.
	IncrementDailyCount(ctx context.Context, userId string, metric string, day string) (int64, error)
	DecrementDailyCount(ctx context.Context, userId string, metric string, day string) error

	// InvalidateUser drops every key scoped to the user.
	InvalidateUser(ctx context.Context, userId string) error
}

// UserKey builds a key scoped to one user so InvalidateUser can find it.
func UserKey(userId string, parts ...string) string {
	key := "user:{" + userId + "}"
	for _, p := range parts {
		key += ":" + p
	}
	return key
}
