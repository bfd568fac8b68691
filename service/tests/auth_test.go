package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlnvch/seodash/service"
)

func TestCreateAndVerifyJWT(t *testing.T) {
	svc, _ := setupService(t)

	// 1. Create
	token, err := svc.CreateJWT("user123", "owner@example.com", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// 2. Verify
	user, expiry, err := svc.VerifyJWT(token)
	assert.NoError(t, err)
	assert.Equal(t, "user123", user.Id)
	assert.Equal(t, "owner@example.com", user.Email)
	assert.Equal(t, fixedNow.Add(time.Hour).Unix(), expiry.Unix())
}

func TestVerifyJWT_Invalid(t *testing.T) {
	svc, _ := setupService(t)

	_, _, err := svc.VerifyJWT("invalid.token.string")
	assert.Error(t, err)
}

func TestVerifyJWT_Empty(t *testing.T) {
	svc, _ := setupService(t)

	_, _, err := svc.VerifyJWT("")
	assert.Error(t, err)
}

func TestVerifyJWT_Expired(t *testing.T) {
	svc, _ := setupService(t)

	token, err := svc.CreateJWT("user123", "", -time.Minute)
	require.NoError(t, err)

	_, _, err = svc.VerifyJWT(token)
	assert.Error(t, err)
}

func TestVerifyJWT_WrongSecret(t *testing.T) {
	svc, _ := setupService(t)

	claims := jwt.MapClaims{"sub": "user123", "exp": fixedNow.Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, _, err = svc.VerifyJWT(token)
	assert.Error(t, err)
}

func TestVerifyJWT_RejectsOtherAlgorithms(t *testing.T) {
	svc, _ := setupService(t)

	claims := jwt.MapClaims{"sub": "user123", "exp": fixedNow.Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, _, err = svc.VerifyJWT(token)
	assert.Error(t, err)
}

func TestVerifyJWT_MissingSubject(t *testing.T) {
	svc, _ := setupService(t)

	claims := jwt.MapClaims{"email": "a@example.com", "exp": fixedNow.Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, _, err = svc.VerifyJWT(token)
	assert.ErrorContains(t, err, "missing sub")
}

func TestVerifyJWT_MissingExpiry(t *testing.T) {
	svc, _ := setupService(t)

	claims := jwt.MapClaims{"sub": "user123"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, _, err = svc.VerifyJWT(token)
	assert.Error(t, err)
}

func TestAuthenticateToken_Success(t *testing.T) {
	svc, _ := setupService(t)

	token, err := svc.CreateJWT("user1", "user1@example.com", time.Hour)
	require.NoError(t, err)

	user, err := svc.AuthenticateToken(context.Background(), token)
	assert.NoError(t, err)
	assert.Equal(t, "user1", user.Id)
	assert.Equal(t, "user1@example.com", user.Email)
}

func TestAuthenticateToken_NoToken(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.AuthenticateToken(context.Background(), "")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestAuthenticateToken_BadToken(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.AuthenticateToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
