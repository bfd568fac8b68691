package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/service"
	"github.com/zlnvch/seodash/store"
	"github.com/zlnvch/seodash/vault"
)

func TestSetSecret_EncryptsAndMasks(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()
	user := models.User{Id: "user1"}

	var stored models.Secret
	deps.store.On("SetSecret", ctx, mock.MatchedBy(func(s models.Secret) bool {
		stored = s
		return s.UserId == "user1" && s.KeyName == service.SecretOpenAIKey
	})).Return(nil)

	view, err := svc.SetSecret(ctx, user, service.SecretOpenAIKey, "sk-test-abcd1234")
	require.NoError(t, err)
	assert.Equal(t, "••••1234", view.Masked)
	assert.Equal(t, fixedNow.Unix(), view.Updated)

	// The stored payload must not contain the plaintext and must round-trip.
	assert.NotContains(t, stored.EncryptedPayload, "sk-test-abcd1234")
	plaintext, err := deps.vault.Decrypt(stored.EncryptedPayload)
	assert.NoError(t, err)
	assert.Equal(t, "sk-test-abcd1234", plaintext)
}

func TestSetSecret_Validation(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()
	user := models.User{Id: "user1"}

	_, err := svc.SetSecret(ctx, user, "aws_root_key", "value")
	var verr *service.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "keyName", verr.Field)

	_, err = svc.SetSecret(ctx, user, service.SecretOpenAIKey, "")
	assert.ErrorContains(t, err, "value: is required")

	_, err = svc.SetSecret(ctx, user, service.SecretOpenAIKey, strings.Repeat("a", 4097))
	assert.ErrorContains(t, err, "value: is too long")

	deps.store.AssertNotCalled(t, "SetSecret", mock.Anything, mock.Anything)
}

func TestListSecrets_MasksEveryValue(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()
	user := models.User{Id: "user1"}

	corrupt := models.Secret{UserId: "user1", KeyName: service.SecretDataForSEOPassword, EncryptedPayload: "not-a-payload"}
	deps.store.On("ListSecrets", ctx, "user1").Return([]models.Secret{
		encryptedSecret(t, deps, "user1", service.SecretCloudflareToken, "cf-token-9876"),
		corrupt,
	}, nil)

	views, err := svc.ListSecrets(ctx, user)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "••••9876", views[0].Masked)
	assert.Equal(t, vault.MaskPlaceholder, views[1].Masked)
}

func TestDescribeSecret_NotFound(t *testing.T) {
	svc, deps := setupService(t)
	withoutSecret(deps, "user1", service.SecretOpenAIKey)

	_, err := svc.DescribeSecret(context.Background(), models.User{Id: "user1"}, service.SecretOpenAIKey)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRevealSecret(t *testing.T) {
	svc, deps := setupService(t)
	withSecret(t, deps, "user1", service.SecretOpenAIKey, "sk-live-key")

	plaintext, err := svc.RevealSecret(context.Background(), models.User{Id: "user1"}, service.SecretOpenAIKey)
	assert.NoError(t, err)
	assert.Equal(t, "sk-live-key", plaintext)
}

func TestRevealSecret_MissingIsInvalidSecret(t *testing.T) {
	svc, deps := setupService(t)
	withoutSecret(deps, "user1", service.SecretOpenAIKey)

	_, err := svc.RevealSecret(context.Background(), models.User{Id: "user1"}, service.SecretOpenAIKey)
	assert.ErrorIs(t, err, vault.ErrInvalidSecret)
}

func TestRevealSecret_WrongMasterKey(t *testing.T) {
	svc, deps := setupService(t)

	other, err := vault.New("another-master-secret")
	require.NoError(t, err)
	payload, err := other.Encrypt("sk-live-key")
	require.NoError(t, err)
	deps.store.On("GetSecret", mock.Anything, "user1", service.SecretOpenAIKey).
		Return(models.Secret{UserId: "user1", KeyName: service.SecretOpenAIKey, EncryptedPayload: payload}, nil)

	_, err = svc.RevealSecret(context.Background(), models.User{Id: "user1"}, service.SecretOpenAIKey)
	assert.ErrorIs(t, err, vault.ErrInvalidSecret)
	assert.Equal(t, "invalid secret", err.Error())
}

func TestRevealSecret_StoreFailure(t *testing.T) {
	svc, deps := setupService(t)
	deps.store.On("GetSecret", mock.Anything, "user1", service.SecretOpenAIKey).
		Return(models.Secret{}, errors.New("connection reset"))

	_, err := svc.RevealSecret(context.Background(), models.User{Id: "user1"}, service.SecretOpenAIKey)
	assert.ErrorContains(t, err, "connection reset")
	assert.NotErrorIs(t, err, vault.ErrInvalidSecret)
}

func TestDeleteSecret_NotFound(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()
	deps.store.On("DeleteSecret", ctx, "user1", service.SecretOpenAIKey).Return(store.ErrItemNotFound)

	err := svc.DeleteSecret(ctx, models.User{Id: "user1"}, service.SecretOpenAIKey)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestGetSecret_NotSet(t *testing.T) {
	svc, deps := setupService(t)
	withoutSecret(deps, "user1", service.SecretCloudflareToken)

	plaintext, ok, err := svc.GetSecret(context.Background(), "user1", service.SecretCloudflareToken)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, plaintext)
}
