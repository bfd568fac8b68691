package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zlnvch/seodash/models"
)

// CreateJWT mints a token in the hosted auth provider's format. Used by tests;
// production tokens come from the provider.
func (s *Service) CreateJWT(userId string, email string, ttl time.Duration) (string, error) {
	return IssueToken(s.JWTSecret, s.now(), userId, email, ttl)
}

// IssueToken signs an HS256 token with the provider's claim layout.
func IssueToken(secret []byte, now time.Time, userId string, email string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userId,
		"email": email,
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

func (s *Service) VerifyJWT(tokenString string) (models.User, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return s.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return models.User{}, time.Time{}, err
	}

	if !token.Valid {
		return models.User{}, time.Time{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.User{}, time.Time{}, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return models.User{}, time.Time{}, errors.New("missing sub claim")
	}

	// email is optional
	email, _ := claims["email"].(string)

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return models.User{}, time.Time{}, errors.New("missing exp claim")
	}

	return models.User{Id: sub, Email: email}, expiry.Time, nil
}

// AuthenticateToken resolves the caller from a bearer token. Every failure is
// reported as ErrUnauthorized.
func (s *Service) AuthenticateToken(ctx context.Context, token string) (models.User, error) {
	if len(token) == 0 {
		return models.User{}, fmt.Errorf("%w: token not provided", ErrUnauthorized)
	}

	user, _, err := s.VerifyJWT(token)
	if err != nil {
		s.log(ctx).Debug(ctx, "token rejected", "error", err)
		return models.User{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	return user, nil
}
