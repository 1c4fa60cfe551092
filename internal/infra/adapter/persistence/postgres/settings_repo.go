package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"newshub/internal/domain/entity"
	"newshub/internal/repository"
)

type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) repository.SettingsRepository {
	return &SettingsRepo{db: db}
}

func (repo *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM settings WHERE key = $1 LIMIT 1`
	var value string
	err := repo.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("Get %q: %w", key, entity.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("Get %q: %w", key, err)
	}
	return value, nil
}

func (repo *SettingsRepo) Put(ctx context.Context, key, value string) error {
	const query = `
INSERT INTO settings (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	if _, err := repo.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("Put %q: %w", key, err)
	}
	return nil
}
