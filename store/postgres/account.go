package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zlnvch/seodash/models"
)

func (s *PostgresDashboardStore) GetSettings(ctx context.Context, userId string) (models.SettingsOverrides, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT overrides FROM user_settings WHERE user_id = $1`, userId).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SettingsOverrides{}, nil
		}
		return models.SettingsOverrides{}, fmt.Errorf("error performing sql request: %w", err)
	}

	var o models.SettingsOverrides
	if err := json.Unmarshal(raw, &o); err != nil {
		return models.SettingsOverrides{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	return o, nil
}

func (s *PostgresDashboardStore) SaveSettings(ctx context.Context, userId string, overrides models.SettingsOverrides) error {
	raw, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	query :=
		`INSERT INTO user_settings (user_id, overrides, updated)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET overrides = EXCLUDED.overrides, updated = EXCLUDED.updated`

	if _, err := s.db.ExecContext(ctx, query, userId, raw, time.Now().Unix()); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (s *PostgresDashboardStore) DeleteSettings(ctx context.Context, userId string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_settings WHERE user_id = $1`, userId); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (s *PostgresDashboardStore) IncrementUsage(ctx context.Context, userId string, day string, metric string, count int) error {
	query :=
		`INSERT INTO usage_counters (user_id, day, metric, count)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, day, metric) DO UPDATE SET count = usage_counters.count + EXCLUDED.count`

	if _, err := s.db.ExecContext(ctx, query, userId, day, metric, count); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (s *PostgresDashboardStore) GetUsage(ctx context.Context, userId string, day string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT metric, count FROM usage_counters WHERE user_id = $1 AND day = $2`, userId, day)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	usage := map[string]int{}
	for rows.Next() {
		var metric string
		var count int
		if err := rows.Scan(&metric, &count); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		usage[metric] = count
	}
	return usage, rows.Err()
}

var userTables = []string{"articles", "audit_runs", "keyword_research", "usage_counters", "user_settings", "secrets"}

func (s *PostgresDashboardStore) DeleteUserData(ctx context.Context, userId string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range userTables {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE user_id = $1`, userId); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return tx.Commit()
}
