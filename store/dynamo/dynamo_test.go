package dynamo

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/store"
)

type mockDynamo struct {
	mock.Mock
}

func (m *mockDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.QueryOutput), args.Error(1)
}

func (m *mockDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.GetItemOutput), args.Error(1)
}

func (m *mockDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.PutItemOutput), args.Error(1)
}

func (m *mockDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DeleteItemOutput), args.Error(1)
}

func (m *mockDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.UpdateItemOutput), args.Error(1)
}

func (m *mockDynamo) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.BatchWriteItemOutput), args.Error(1)
}

func (m *mockDynamo) ListTables(ctx context.Context, in *dynamodb.ListTablesInput, _ ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.ListTablesOutput), args.Error(1)
}

func newTestStore() (*DynamoDashboardStore, *mockDynamo) {
	client := new(mockDynamo)
	return &DynamoDashboardStore{client: client, tableName: "SeoDashboard"}, client
}

func keyValue(item map[string]types.AttributeValue, field string) string {
	if s, ok := item[field].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func TestGetSecret_NotFound(t *testing.T) {
	s, client := newTestStore()
	ctx := context.Background()

	client.On("GetItem", ctx, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		return keyValue(in.Key, "PK") == "USER#u1" && keyValue(in.Key, "SK") == "SECRET#openai_api_key"
	})).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := s.GetSecret(ctx, "u1", "openai_api_key")
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestGetSecret_Found(t *testing.T) {
	s, client := newTestStore()
	ctx := context.Background()

	client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"PK":               &types.AttributeValueMemberS{Value: "USER#u1"},
		"SK":               &types.AttributeValueMemberS{Value: "SECRET#openai_api_key"},
		"EncryptedPayload": &types.AttributeValueMemberS{Value: "n:c"},
		"Updated":          &types.AttributeValueMemberN{Value: "42"},
	}}, nil)

	secret, err := s.GetSecret(ctx, "u1", "openai_api_key")
	require.NoError(t, err)
	assert.Equal(t, models.Secret{UserId: "u1", KeyName: "openai_api_key", EncryptedPayload: "n:c", Updated: 42}, secret)
}

func TestDeleteSecret_Missing(t *testing.T) {
	s, client := newTestStore()
	ctx := context.Background()

	client.On("DeleteItem", ctx, mock.MatchedBy(func(in *dynamodb.DeleteItemInput) bool {
		return aws.ToString(in.ConditionExpression) == "attribute_exists(PK)"
	})).Return(nil, &types.ConditionalCheckFailedException{})

	err := s.DeleteSecret(ctx, "u1", "openai_api_key")
	assert.ErrorIs(t, err, store.ErrItemNotFound)
}

func TestSaveArticle_Conflict(t *testing.T) {
	s, client := newTestStore()
	ctx := context.Background()

	client.On("PutItem", ctx, mock.MatchedBy(func(in *dynamodb.PutItemInput) bool {
		return keyValue(in.Item, "SK") == "ARTICLE#a1" && aws.ToString(in.ConditionExpression) == "attribute_not_exists(PK)"
	})).Return(nil, &types.ConditionalCheckFailedException{})

	err := s.SaveArticle(ctx, models.Article{Id: "a1", UserId: "u1"})
	assert.ErrorIs(t, err, store.ErrConditionFailed)
}

func TestIncrementUsage_CreatesCounter(t *testing.T) {
	s, client := newTestStore()
	ctx := context.Background()

	client.On("UpdateItem", ctx, mock.MatchedBy(func(in *dynamodb.UpdateItemInput) bool {
		val, _ := in.ExpressionAttributeValues[":val"].(*types.AttributeValueMemberN)
		return keyValue(in.Key, "SK") == "USAGE#2026-10-15" &&
			in.ExpressionAttributeNames["#c"] == models.UsageKeywordLookups &&
			val != nil && val.Value == "3"
	})).Return(&dynamodb.UpdateItemOutput{}, nil)

	err := s.IncrementUsage(ctx, "u1", "2026-10-15", models.UsageKeywordLookups, 3)
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestGetUsage_SkipsKeys(t *testing.T) {
	s, client := newTestStore()
	ctx := context.Background()

	client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{Item: map[string]types.AttributeValue{
		"PK":                         &types.AttributeValueMemberS{Value: "USER#u1"},
		"SK":                         &types.AttributeValueMemberS{Value: "USAGE#2026-10-15"},
		models.UsageContentGenerated: &types.AttributeValueMemberN{Value: "7"},
	}}, nil)

	usage, err := s.GetUsage(ctx, "u1", "2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{models.UsageContentGenerated: 7}, usage)
}

func TestGetSettings_Missing(t *testing.T) {
	s, client := newTestStore()
	ctx := context.Background()

	client.On("GetItem", ctx, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	o, err := s.GetSettings(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, o.Tone)
}

func TestListAudits_ProjectsSummary(t *testing.T) {
	s, client := newTestStore()
	ctx := context.Background()

	client.On("Query", ctx, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return aws.ToString(in.ProjectionExpression) == "#PK, #SK, #SiteURL, #HealthScore, #Created" &&
			!aws.ToBool(in.ScanIndexForward)
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{{
		"PK":          &types.AttributeValueMemberS{Value: "USER#u1"},
		"SK":          &types.AttributeValueMemberS{Value: "AUDIT#r1"},
		"SiteURL":     &types.AttributeValueMemberS{Value: "https://example.com"},
		"HealthScore": &types.AttributeValueMemberN{Value: "68"},
		"Created":     &types.AttributeValueMemberN{Value: "10"},
	}}}, nil)

	runs, err := s.ListAudits(ctx, "u1", 20)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "r1", runs[0].Id)
	assert.Equal(t, 68, runs[0].HealthScore)
	assert.Nil(t, runs[0].Issues)
}

func TestDeleteUserData_BatchesKeys(t *testing.T) {
	s, client := newTestStore()
	ctx := context.Background()

	items := make([]map[string]types.AttributeValue, 0, 30)
	for i := 0; i < 30; i++ {
		items = append(items, itemKey("USER#u1", "ARTICLE#"+string(rune('a'+i))))
	}

	client.On("Query", ctx, mock.Anything).Return(&dynamodb.QueryOutput{Items: items}, nil)
	client.On("BatchWriteItem", ctx, mock.MatchedBy(func(in *dynamodb.BatchWriteItemInput) bool {
		return len(in.RequestItems["SeoDashboard"]) == 25
	})).Return(&dynamodb.BatchWriteItemOutput{}, nil).Once()
	client.On("BatchWriteItem", ctx, mock.MatchedBy(func(in *dynamodb.BatchWriteItemInput) bool {
		return len(in.RequestItems["SeoDashboard"]) == 5
	})).Return(&dynamodb.BatchWriteItemOutput{}, nil).Once()

	err := s.DeleteUserData(ctx, "u1")
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestAuditMapping_KeepsDetail(t *testing.T) {
	run := models.AuditRun{
		Id:          "r1",
		UserId:      "u1",
		SiteURL:     "https://example.com",
		HealthScore: 74,
		Issues:      []models.AuditIssue{{Title: "Missing title", Priority: models.PriorityHigh, ScoreImpact: 12}},
		Similarity:  []models.SimilarityResult{{PageSlug: "a", MatchedSlug: "b", Score: 0.8, Status: models.SimilarityFail}},
	}

	da, err := auditToDynamo(run)
	require.NoError(t, err)
	assert.Equal(t, "USER#u1", da.PK)
	assert.Equal(t, "AUDIT#r1", da.SK)

	back, err := auditFromDynamo(da)
	require.NoError(t, err)
	assert.Equal(t, run.Issues, back.Issues)
	assert.Equal(t, run.Similarity, back.Similarity)
	assert.Equal(t, "u1", back.UserId)
}
