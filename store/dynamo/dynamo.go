package dynamo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/store"
)

// DynamoDashboardStore keeps every record of a user under one partition,
// PK "USER#<id>", with the record kind encoded in the sort key.
type DynamoDashboardStore struct {
	client    dynamoAPI
	tableName string
}

func NewDynamoDashboardStore(ctx context.Context, devMode bool, dynamodbEndpoint string, tableName string) (*DynamoDashboardStore, error) {
	client, err := newDynamoDBClient(ctx, devMode, dynamodbEndpoint)
	if err != nil {
		return nil, err
	}

	tables, err := getTables(client, ctx)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(tables, tableName) {
		return nil, fmt.Errorf("given table name '%s' not found in dynamodb", tableName)
	}

	return &DynamoDashboardStore{client: client, tableName: tableName}, nil
}

func (dynamoStore *DynamoDashboardStore) SetSecret(ctx context.Context, secret models.Secret) error {
	return putItem(dynamoStore, ctx, secretToDynamo(secret))
}

func (dynamoStore *DynamoDashboardStore) GetSecret(ctx context.Context, userId string, keyName string) (models.Secret, error) {
	ds, err := getItem[dynamoSecret](dynamoStore, ctx, userPK(userId), skSecret+keyName, true)
	if err != nil {
		return models.Secret{}, err
	}
	return secretFromDynamo(ds), nil
}

func (dynamoStore *DynamoDashboardStore) ListSecrets(ctx context.Context, userId string) ([]models.Secret, error) {
	items, err := queryByPrefix[dynamoSecret](dynamoStore, ctx, userPK(userId), skSecret, nil, 0)
	if err != nil {
		return nil, err
	}

	secrets := make([]models.Secret, 0, len(items))
	for _, ds := range items {
		secrets = append(secrets, secretFromDynamo(ds))
	}
	slices.SortFunc(secrets, func(a, b models.Secret) int {
		if a.KeyName < b.KeyName {
			return -1
		}
		if a.KeyName > b.KeyName {
			return 1
		}
		return 0
	})
	return secrets, nil
}

func (dynamoStore *DynamoDashboardStore) DeleteSecret(ctx context.Context, userId string, keyName string) error {
	return deleteExistingItem(dynamoStore, ctx, userPK(userId), skSecret+keyName)
}

func (dynamoStore *DynamoDashboardStore) SaveArticle(ctx context.Context, article models.Article) error {
	return insertItem(dynamoStore, ctx, articleToDynamo(article))
}

func (dynamoStore *DynamoDashboardStore) GetArticle(ctx context.Context, userId string, id string) (models.Article, error) {
	da, err := getItem[dynamoArticle](dynamoStore, ctx, userPK(userId), skArticle+id, false)
	if err != nil {
		return models.Article{}, err
	}
	return articleFromDynamo(da), nil
}

func (dynamoStore *DynamoDashboardStore) ListArticles(ctx context.Context, userId string, limit int) ([]models.Article, error) {
	items, err := queryByPrefix[dynamoArticle](dynamoStore, ctx, userPK(userId), skArticle, nil, int32(limit))
	if err != nil {
		return nil, err
	}

	articles := make([]models.Article, 0, len(items))
	for _, da := range items {
		articles = append(articles, articleFromDynamo(da))
	}
	return articles, nil
}

func (dynamoStore *DynamoDashboardStore) SaveAudit(ctx context.Context, run models.AuditRun) error {
	da, err := auditToDynamo(run)
	if err != nil {
		return fmt.Errorf("marshal audit: %w", err)
	}
	return insertItem(dynamoStore, ctx, da)
}

func (dynamoStore *DynamoDashboardStore) GetAudit(ctx context.Context, userId string, id string) (models.AuditRun, error) {
	da, err := getItem[dynamoAudit](dynamoStore, ctx, userPK(userId), skAudit+id, false)
	if err != nil {
		return models.AuditRun{}, err
	}
	return auditFromDynamo(da)
}

func (dynamoStore *DynamoDashboardStore) ListAudits(ctx context.Context, userId string, limit int) ([]models.AuditRun, error) {
	projection := []string{"PK", "SK", "SiteURL", "HealthScore", "Created"}
	items, err := queryByPrefix[dynamoAudit](dynamoStore, ctx, userPK(userId), skAudit, projection, int32(limit))
	if err != nil {
		return nil, err
	}

	runs := make([]models.AuditRun, 0, len(items))
	for _, da := range items {
		run, err := auditFromDynamo(da)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func (dynamoStore *DynamoDashboardStore) SaveKeywordResearch(ctx context.Context, research models.KeywordResearch) error {
	return insertItem(dynamoStore, ctx, researchToDynamo(research))
}

func (dynamoStore *DynamoDashboardStore) ListKeywordResearch(ctx context.Context, userId string, limit int) ([]models.KeywordResearch, error) {
	items, err := queryByPrefix[dynamoResearch](dynamoStore, ctx, userPK(userId), skResearch, nil, int32(limit))
	if err != nil {
		return nil, err
	}

	history := make([]models.KeywordResearch, 0, len(items))
	for _, dr := range items {
		history = append(history, researchFromDynamo(dr))
	}
	return history, nil
}

func (dynamoStore *DynamoDashboardStore) GetSettings(ctx context.Context, userId string) (models.SettingsOverrides, error) {
	ds, err := getItem[dynamoSettings](dynamoStore, ctx, userPK(userId), skSettings, true)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.SettingsOverrides{}, nil
		}
		return models.SettingsOverrides{}, err
	}

	var o models.SettingsOverrides
	if err := json.Unmarshal([]byte(ds.Overrides), &o); err != nil {
		return models.SettingsOverrides{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	return o, nil
}

func (dynamoStore *DynamoDashboardStore) SaveSettings(ctx context.Context, userId string, overrides models.SettingsOverrides) error {
	raw, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	return putItem(dynamoStore, ctx, dynamoSettings{
		PK:        userPK(userId),
		SK:        skSettings,
		Overrides: string(raw),
		Updated:   time.Now().Unix(),
	})
}

func (dynamoStore *DynamoDashboardStore) DeleteSettings(ctx context.Context, userId string) error {
	err := deleteExistingItem(dynamoStore, ctx, userPK(userId), skSettings)
	if errors.Is(err, store.ErrItemNotFound) {
		return nil
	}
	return err
}

func (dynamoStore *DynamoDashboardStore) IncrementUsage(ctx context.Context, userId string, day string, metric string, count int) error {
	return incrementCounter(dynamoStore, ctx, userPK(userId), skUsage+day, metric, count)
}

func (dynamoStore *DynamoDashboardStore) GetUsage(ctx context.Context, userId string, day string) (map[string]int, error) {
	item, err := getItem[map[string]any](dynamoStore, ctx, userPK(userId), skUsage+day, true)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return map[string]int{}, nil
		}
		return nil, err
	}

	usage := map[string]int{}
	for field, value := range item {
		if n, ok := value.(float64); ok {
			usage[field] = int(n)
		}
	}
	return usage, nil
}

func (dynamoStore *DynamoDashboardStore) DeleteUserData(ctx context.Context, userId string) error {
	return batchDeleteByPKThrottled(dynamoStore, ctx, userPK(userId), 50*time.Millisecond)
}
