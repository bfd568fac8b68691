package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/store"
	"github.com/zlnvch/seodash/upstream"
	"github.com/zlnvch/seodash/vault"
)

const (
	SecretOpenAIKey          = "openai_api_key"
	SecretDataForSEOLogin    = "dataforseo_login"
	SecretDataForSEOPassword = "dataforseo_password"
	SecretCloudflareToken    = "cloudflare_api_token"
	SecretGSCRefreshToken    = "gsc_refresh_token"

	maxSecretBytes = 4096
)

var allowedSecretKeys = map[string]struct{}{
	SecretOpenAIKey:          {},
	SecretDataForSEOLogin:    {},
	SecretDataForSEOPassword: {},
	SecretCloudflareToken:    {},
	SecretGSCRefreshToken:    {},
}

// SecretView is what clients see of a stored credential.
type SecretView struct {
	KeyName string `json:"keyName"`
	Masked  string `json:"masked"`
	Updated int64  `json:"updated"`
}

func validateSecretKey(keyName string) error {
	if _, ok := allowedSecretKeys[keyName]; !ok {
		return invalid("keyName", "unknown secret key")
	}
	return nil
}

func (s *Service) SetSecret(ctx context.Context, user models.User, keyName string, value string) (SecretView, error) {
	if err := validateSecretKey(keyName); err != nil {
		return SecretView{}, err
	}
	if value == "" {
		return SecretView{}, invalid("value", "is required")
	}
	if len(value) > maxSecretBytes {
		return SecretView{}, invalid("value", "is too long")
	}

	payload, err := s.Vault.Encrypt(value)
	if err != nil {
		return SecretView{}, fmt.Errorf("encrypt secret: %w", err)
	}

	secret := models.Secret{
		UserId:           user.Id,
		KeyName:          keyName,
		EncryptedPayload: payload,
		Updated:          s.now().Unix(),
	}
	if err := s.Store.SetSecret(ctx, secret); err != nil {
		return SecretView{}, err
	}

	s.log(ctx).Info(ctx, "secret stored", "user_id", user.Id, "key", keyName)
	return SecretView{KeyName: keyName, Masked: vault.Mask(value), Updated: secret.Updated}, nil
}

// GetSecret returns the decrypted credential; ok is false when it was never set.
func (s *Service) GetSecret(ctx context.Context, userId string, keyName string) (string, bool, error) {
	secret, err := s.Store.GetSecret(ctx, userId, keyName)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return "", false, nil
		}
		return "", false, err
	}

	plaintext, err := s.Vault.Decrypt(secret.EncryptedPayload)
	if err != nil {
		return "", false, err
	}
	return plaintext, true, nil
}

// DescribeSecret returns the masked view of one credential.
func (s *Service) DescribeSecret(ctx context.Context, user models.User, keyName string) (SecretView, error) {
	if err := validateSecretKey(keyName); err != nil {
		return SecretView{}, err
	}

	secret, err := s.Store.GetSecret(ctx, user.Id, keyName)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return SecretView{}, ErrNotFound
		}
		return SecretView{}, err
	}
	return s.view(secret), nil
}

func (s *Service) ListSecrets(ctx context.Context, user models.User) ([]SecretView, error) {
	secrets, err := s.Store.ListSecrets(ctx, user.Id)
	if err != nil {
		return nil, err
	}

	views := make([]SecretView, 0, len(secrets))
	for _, secret := range secrets {
		views = append(views, s.view(secret))
	}
	return views, nil
}

// view masks a stored secret. An undecryptable payload shows the placeholder.
func (s *Service) view(secret models.Secret) SecretView {
	masked := vault.MaskPlaceholder
	if plaintext, err := s.Vault.Decrypt(secret.EncryptedPayload); err == nil {
		masked = vault.Mask(plaintext)
	}
	return SecretView{KeyName: secret.KeyName, Masked: masked, Updated: secret.Updated}
}

// RevealSecret returns the plaintext. Missing, corrupt and wrong-key
// payloads all come back as vault.ErrInvalidSecret.
func (s *Service) RevealSecret(ctx context.Context, user models.User, keyName string) (string, error) {
	if err := validateSecretKey(keyName); err != nil {
		return "", err
	}

	plaintext, ok, err := s.GetSecret(ctx, user.Id, keyName)
	if err != nil {
		if errors.Is(err, vault.ErrInvalidSecret) {
			return "", vault.ErrInvalidSecret
		}
		return "", err
	}
	if !ok {
		return "", vault.ErrInvalidSecret
	}

	s.log(ctx).Info(ctx, "secret revealed", "user_id", user.Id, "key", keyName)
	return plaintext, nil
}

func (s *Service) DeleteSecret(ctx context.Context, user models.User, keyName string) error {
	if err := validateSecretKey(keyName); err != nil {
		return err
	}

	if err := s.Store.DeleteSecret(ctx, user.Id, keyName); err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// requireSecret is used by operations that cannot run without a credential.
func (s *Service) requireSecret(ctx context.Context, userId string, keyName string) (string, error) {
	plaintext, ok, err := s.GetSecret(ctx, userId, keyName)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", invalid(keyName, "is not configured; add it under secrets")
	}
	return plaintext, nil
}

func (s *Service) dataForSEOCredentials(ctx context.Context, userId string) (upstream.DataForSEOCredentials, error) {
	login, err := s.requireSecret(ctx, userId, SecretDataForSEOLogin)
	if err != nil {
		return upstream.DataForSEOCredentials{}, err
	}
	password, err := s.requireSecret(ctx, userId, SecretDataForSEOPassword)
	if err != nil {
		return upstream.DataForSEOCredentials{}, err
	}
	return upstream.DataForSEOCredentials{Login: login, Password: password}, nil
}
