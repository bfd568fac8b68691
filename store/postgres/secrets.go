package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/store"
)

func (s *PostgresDashboardStore) SetSecret(ctx context.Context, secret models.Secret) error {
	query :=
		`INSERT INTO secrets (user_id, key_name, encrypted_payload, updated)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, key_name)
		 DO UPDATE SET encrypted_payload = EXCLUDED.encrypted_payload, updated = EXCLUDED.updated`

	_, err := s.db.ExecContext(ctx, query, secret.UserId, secret.KeyName, secret.EncryptedPayload, secret.Updated)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (s *PostgresDashboardStore) GetSecret(ctx context.Context, userId string, keyName string) (models.Secret, error) {
	query :=
		`SELECT user_id, key_name, encrypted_payload, updated FROM secrets
		 WHERE user_id = $1 AND key_name = $2`

	var secret models.Secret
	err := s.db.QueryRowContext(ctx, query, userId, keyName).
		Scan(&secret.UserId, &secret.KeyName, &secret.EncryptedPayload, &secret.Updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Secret{}, store.ErrItemNotFound
		}
		return models.Secret{}, fmt.Errorf("error performing sql request: %w", err)
	}
	return secret, nil
}

func (s *PostgresDashboardStore) ListSecrets(ctx context.Context, userId string) ([]models.Secret, error) {
	query :=
		`SELECT user_id, key_name, encrypted_payload, updated FROM secrets
		 WHERE user_id = $1 ORDER BY key_name`

	rows, err := s.db.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	secrets := []models.Secret{}
	for rows.Next() {
		var secret models.Secret
		if err := rows.Scan(&secret.UserId, &secret.KeyName, &secret.EncryptedPayload, &secret.Updated); err != nil {
			return nil, fmt.Errorf("scan secret: %w", err)
		}
		secrets = append(secrets, secret)
	}
	return secrets, rows.Err()
}

func (s *PostgresDashboardStore) DeleteSecret(ctx context.Context, userId string, keyName string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM secrets WHERE user_id = $1 AND key_name = $2`, userId, keyName)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrItemNotFound
	}
	return nil
}
