// Package vault encrypts small per-user credentials at rest with AES-256-GCM.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	nonceSize = 12
	delimiter = ":"

	maskPrefix      = "••••"
	MaskPlaceholder = "••••••••"
)

// ErrInvalidSecret is the only error callers ever see for a payload that
// cannot be decrypted.
var ErrInvalidSecret = errors.New("invalid secret")

var (
	ErrInvalidPayload        error = &cryptoError{kind: "invalid payload"}
	ErrAuthenticationFailure error = &cryptoError{kind: "authentication failure"}
)

var ErrMissingMasterKey = errors.New("vault master key is not configured")

// cryptoError keeps the failure kind for errors.Is while always printing the
// generic message.
type cryptoError struct {
	kind string
}

func (e *cryptoError) Error() string {
	return ErrInvalidSecret.Error()
}

func (e *cryptoError) Is(target error) bool {
	return target == ErrInvalidSecret
}

type Vault struct {
	aead cipher.AEAD
}

func New(masterSecret string) (*Vault, error) {
	if masterSecret == "" {
		return nil, ErrMissingMasterKey
	}

	key := sha256.Sum256([]byte(masterSecret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Vault{aead: aead}, nil
}

// Encrypt returns base64(nonce) + ":" + base64(ciphertext). A fresh nonce is
// drawn for every call.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	ciphertext := v.aead.Seal(nil, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(nonce) + delimiter + base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (v *Vault) Decrypt(payload string) (string, error) {
	noncePart, cipherPart, ok := strings.Cut(payload, delimiter)
	if !ok {
		return "", ErrInvalidPayload
	}

	nonce, err := base64.StdEncoding.DecodeString(noncePart)
	if err != nil || len(nonce) != nonceSize {
		return "", ErrInvalidPayload
	}
	ciphertext, err := base64.StdEncoding.DecodeString(cipherPart)
	if err != nil {
		return "", ErrInvalidPayload
	}

	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrAuthenticationFailure
	}

	return string(plaintext), nil
}

// Mask shows at most the last four characters of a secret.
func Mask(plaintext string) string {
	n := utf8.RuneCountInString(plaintext)
	if n <= 4 {
		return MaskPlaceholder
	}

	runes := []rune(plaintext)
	return maskPrefix + string(runes[n-4:])
}
