package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zlnvch/seodash/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) SetSecret(ctx context.Context, secret models.Secret) error {
	args := m.Called(ctx, secret)
	return args.Error(0)
}

func (m *MockStore) GetSecret(ctx context.Context, userId string, keyName string) (models.Secret, error) {
	args := m.Called(ctx, userId, keyName)
	return args.Get(0).(models.Secret), args.Error(1)
}

func (m *MockStore) ListSecrets(ctx context.Context, userId string) ([]models.Secret, error) {
	args := m.Called(ctx, userId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Secret), args.Error(1)
}

func (m *MockStore) DeleteSecret(ctx context.Context, userId string, keyName string) error {
	args := m.Called(ctx, userId, keyName)
	return args.Error(0)
}

func (m *MockStore) SaveArticle(ctx context.Context, article models.Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *MockStore) GetArticle(ctx context.Context, userId string, id string) (models.Article, error) {
	args := m.Called(ctx, userId, id)
	return args.Get(0).(models.Article), args.Error(1)
}

func (m *MockStore) ListArticles(ctx context.Context, userId string, limit int) ([]models.Article, error) {
	args := m.Called(ctx, userId, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Article), args.Error(1)
}

func (m *MockStore) SaveAudit(ctx context.Context, run models.AuditRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockStore) GetAudit(ctx context.Context, userId string, id string) (models.AuditRun, error) {
	args := m.Called(ctx, userId, id)
	return args.Get(0).(models.AuditRun), args.Error(1)
}

func (m *MockStore) ListAudits(ctx context.Context, userId string, limit int) ([]models.AuditRun, error) {
	args := m.Called(ctx, userId, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AuditRun), args.Error(1)
}

func (m *MockStore) SaveKeywordResearch(ctx context.Context, research models.KeywordResearch) error {
	args := m.Called(ctx, research)
	return args.Error(0)
}

func (m *MockStore) ListKeywordResearch(ctx context.Context, userId string, limit int) ([]models.KeywordResearch, error) {
	args := m.Called(ctx, userId, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.KeywordResearch), args.Error(1)
}

func (m *MockStore) GetSettings(ctx context.Context, userId string) (models.SettingsOverrides, error) {
	args := m.Called(ctx, userId)
	return args.Get(0).(models.SettingsOverrides), args.Error(1)
}

func (m *MockStore) SaveSettings(ctx context.Context, userId string, overrides models.SettingsOverrides) error {
	args := m.Called(ctx, userId, overrides)
	return args.Error(0)
}

func (m *MockStore) DeleteSettings(ctx context.Context, userId string) error {
	args := m.Called(ctx, userId)
	return args.Error(0)
}

func (m *MockStore) IncrementUsage(ctx context.Context, userId string, day string, metric string, count int) error {
	args := m.Called(ctx, userId, day, metric, count)
	return args.Error(0)
}

func (m *MockStore) GetUsage(ctx context.Context, userId string, day string) (map[string]int, error) {
	args := m.Called(ctx, userId, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockStore) DeleteUserData(ctx context.Context, userId string) error {
	args := m.Called(ctx, userId)
	return args.Error(0)
}
