package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) IncrementDailyCount(ctx context.Context, userId string, metric string, day string) (int64, error) {
	args := m.Called(ctx, userId, metric, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCache) DecrementDailyCount(ctx context.Context, userId string, metric string, day string) error {
	args := m.Called(ctx, userId, metric, day)
	return args.Error(0)
}

func (m *MockCache) InvalidateUser(ctx context.Context, userId string) error {
	args := m.Called(ctx, userId)
	return args.Error(0)
}
