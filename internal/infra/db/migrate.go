package db

import (
	"database/sql"
)

// MigrateUp creates the application schema if it does not exist.
//
// The UNIQUE constraint on articles.source_url is load-bearing: it is the
// authoritative deduplication guard for concurrent ingestion (the pipeline's
// pre-check is an optimization only).
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    id           SERIAL PRIMARY KEY,
    title        VARCHAR(512) NOT NULL,
    summary      VARCHAR(255),
    content      TEXT,
    source_url   TEXT NOT NULL UNIQUE,
    source_name  TEXT,
    category_id  INTEGER,
    publish_time TIMESTAMPTZ,
    views        BIGINT NOT NULL DEFAULT 0,
    status       VARCHAR(20) NOT NULL DEFAULT 'PUBLISHED',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS notifications (
    id         SERIAL PRIMARY KEY,
    user_id    BIGINT NOT NULL,
    title      TEXT NOT NULL,
    content    TEXT,
    type       VARCHAR(20) NOT NULL,
    is_read    BOOLEAN NOT NULL DEFAULT FALSE,
    related_id BIGINT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS settings (
    key        VARCHAR(100) PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	// パフォーマンス最適化: 読み取りクエリ用インデックス
	indexes := []string{
		// ORDER BY publish_time DESC (latest/highlights queries)
		`CREATE INDEX IF NOT EXISTS idx_articles_publish_time ON articles(publish_time DESC)`,
		// ORDER BY views DESC (trending query)
		`CREATE INDEX IF NOT EXISTS idx_articles_views ON articles(views DESC)`,
		// Category listing
		`CREATE INDEX IF NOT EXISTS idx_articles_category_id ON articles(category_id)`,
		// Retention sweep (created_at < cutoff)
		`CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at)`,
		// Per-user notification pull
		`CREATE INDEX IF NOT EXISTS idx_notifications_user_id ON notifications(user_id, created_at DESC)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}
