package store

import (
	"context"
	"errors"

	"github.com/zlnvch/seodash/models"
)

// DashboardStore persists everything a user owns. Every read is scoped by
// userId; a record owned by someone else is reported as ErrItemNotFound.
type DashboardStore interface {
	SetSecret(ctx context.Context, secret models.Secret) error
	GetSecret(ctx context.Context, userId string, keyName string) (models.Secret, error)
	ListSecrets(ctx context.Context, userId string) ([]models.Secret, error)
	DeleteSecret(ctx context.Context, userId string, keyName string) error

	SaveArticle(ctx context.Context, article models.Article) error
	GetArticle(ctx context.Context, userId string, id string) (models.Article, error)
	ListArticles(ctx context.Context, userId string, limit int) ([]models.Article, error)

	SaveAudit(ctx context.Context, run models.AuditRun) error
	GetAudit(ctx context.Context, userId string, id string) (models.AuditRun, error)
	// ListAudits returns summaries only; Issues, Pages and Similarity are nil.
	ListAudits(ctx context.Context, userId string, limit int) ([]models.AuditRun, error)

	SaveKeywordResearch(ctx context.Context, research models.KeywordResearch) error
	ListKeywordResearch(ctx context.Context, userId string, limit int) ([]models.KeywordResearch, error)

	// GetSettings returns empty overrides when the user never saved any.
	GetSettings(ctx context.Context, userId string) (models.SettingsOverrides, error)
	SaveSettings(ctx context.Context, userId string, overrides models.SettingsOverrides) error
	DeleteSettings(ctx context.Context, userId string) error

	IncrementUsage(ctx context.Context, userId string, day string, metric string, count int) error
	GetUsage(ctx context.Context, userId string, day string) (map[string]int, error)

	// DeleteUserData removes every remaining record for the user.
	DeleteUserData(ctx context.Context, userId string) error
}

var (
	ErrItemNotFound    = errors.New("item does not exist")
	ErrConditionFailed = errors.New("condition not met")
)
