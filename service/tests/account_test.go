package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/mq"
	"github.com/zlnvch/seodash/service"
)

func TestGetAccount(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()

	deps.store.On("GetUsage", ctx, "user1", testDay).Return(map[string]int{models.UsageContentGenerated: 3}, nil)
	deps.store.On("ListSecrets", ctx, "user1").Return([]models.Secret{{KeyName: service.SecretOpenAIKey}}, nil)

	account, err := svc.GetAccount(ctx, models.User{Id: "user1", Email: "a@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 3, account.Usage[models.UsageContentGenerated])
	assert.Equal(t, 5, account.DailyGenerationLimit)
	assert.Equal(t, []string{service.SecretOpenAIKey}, account.ConfiguredSecrets)
	assert.Equal(t, testDay, account.Day)
}

func TestDeleteAccount_Success(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()

	deps.store.On("ListSecrets", ctx, "user1").Return([]models.Secret{
		{KeyName: service.SecretOpenAIKey},
		{KeyName: service.SecretCloudflareToken},
	}, nil)
	deps.store.On("DeleteSecret", ctx, "user1", service.SecretOpenAIKey).Return(nil)
	deps.store.On("DeleteSecret", ctx, "user1", service.SecretCloudflareToken).Return(nil)
	deps.store.On("DeleteSettings", ctx, "user1").Return(nil)

	deps.mq.On("Send", mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return hasDeadline
	}), mock.MatchedBy(func(body string) bool {
		req, err := mq.DecodePurgeRequest(body)
		return err == nil && req.UserId == "user1" && req.RequestedAt == fixedNow.Unix()
	})).Return(nil).Once()

	err := svc.DeleteAccount(ctx, models.User{Id: "user1"})
	assert.NoError(t, err)

	deps.store.AssertExpectations(t)
	deps.mq.AssertExpectations(t)
}

func TestDeleteAccount_StoreFailure(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()

	deps.store.On("ListSecrets", ctx, "user1").Return([]models.Secret{}, nil)
	deps.store.On("DeleteSettings", ctx, "user1").Return(errors.New("db unavailable"))

	err := svc.DeleteAccount(ctx, models.User{Id: "user1"})
	assert.Error(t, err)

	deps.mq.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDeleteAccount_QueueSendFails(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()

	deps.store.On("ListSecrets", ctx, "user1").Return([]models.Secret{}, nil)
	deps.store.On("DeleteSettings", ctx, "user1").Return(nil)
	deps.mq.On("Send", mock.Anything, mock.Anything).Return(errors.New("mq failed"))

	err := svc.DeleteAccount(ctx, models.User{Id: "user1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue account purge")
	deps.mq.AssertNumberOfCalls(t, "Send", 1)
}
