package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"newshub/internal/domain/entity"
	"newshub/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

const articleColumns = `id, title, summary, content, source_url, source_name,
       category_id, publish_time, views, status, created_at, updated_at`

type ArticleRepo struct {
	db *sql.DB
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{db: db}
}

// isDuplicateKey reports whether err is a unique constraint violation.
// Both pgx (pgconn.PgError) and lib/pq (pq.Error) shapes are recognized so
// the mapping does not depend on which driver opened the pool.
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) error {
	const query = `
INSERT INTO articles
       (title, summary, content, source_url, source_name, category_id,
        publish_time, views, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
RETURNING id`
	err := repo.db.QueryRowContext(ctx, query,
		article.Title, article.Summary, article.Content,
		article.SourceURL, article.SourceName, article.CategoryID,
		article.PublishTime, article.Views, article.Status,
	).Scan(&article.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("Create: %w", entity.ErrDuplicateURL)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE id = $1
LIMIT 1`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) CountBySourceURL(ctx context.Context, url string) (int64, error) {
	const query = `SELECT COUNT(*) FROM articles WHERE source_url = $1`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query, url).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountBySourceURL: %w", err)
	}
	return count, nil
}

// ExistsBySourceURLBatch はバッチでURL存在チェックを行い、N+1問題を解消する
func (repo *ArticleRepo) ExistsBySourceURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	if len(urls) == 0 {
		return make(map[string]bool), nil
	}

	const query = `SELECT source_url FROM articles WHERE source_url = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, pq.Array(urls))
	if err != nil {
		return nil, fmt.Errorf("ExistsBySourceURLBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("ExistsBySourceURLBatch: Scan: %w", err)
		}
		result[url] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ExistsBySourceURLBatch: rows.Err: %w", err)
	}

	return result, nil
}

func (repo *ArticleRepo) Update(ctx context.Context, article *entity.Article) error {
	const query = `
UPDATE articles SET
       title        = $1,
       summary      = $2,
       content      = $3,
       category_id  = $4,
       publish_time = $5,
       status       = $6,
       updated_at   = now()
WHERE id = $7`
	res, err := repo.db.ExecContext(ctx, query,
		article.Title, article.Summary, article.Content,
		article.CategoryID, article.PublishTime, article.Status, article.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ArticleRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM articles WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ArticleRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM articles WHERE created_at < $1`
	res, err := repo.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteOlderThan: RowsAffected: %w", err)
	}
	return deleted, nil
}

func (repo *ArticleRepo) FindLatest(ctx context.Context, limit, offset int) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE status = 'PUBLISHED'
ORDER BY publish_time DESC
LIMIT $1 OFFSET $2`
	return repo.queryArticles(ctx, "FindLatest", query, limit, offset)
}

func (repo *ArticleRepo) FindTrending(ctx context.Context, limit int) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE status = 'PUBLISHED'
ORDER BY views DESC, publish_time DESC
LIMIT $1`
	return repo.queryArticles(ctx, "FindTrending", query, limit)
}

func (repo *ArticleRepo) FindDailyHighlights(ctx context.Context, limit int) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE status = 'PUBLISHED'
  AND publish_time >= date_trunc('day', now())
ORDER BY publish_time DESC
LIMIT $1`
	return repo.queryArticles(ctx, "FindDailyHighlights", query, limit)
}

func (repo *ArticleRepo) FindByCategory(ctx context.Context, categoryID int64, limit int) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE status = 'PUBLISHED'
  AND category_id = $1
ORDER BY publish_time DESC
LIMIT $2`
	return repo.queryArticles(ctx, "FindByCategory", query, categoryID, limit)
}

func (repo *ArticleRepo) FindRelated(ctx context.Context, categoryID, excludeID int64, limit int) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE status = 'PUBLISHED'
  AND category_id = $1
  AND id <> $2
ORDER BY publish_time DESC
LIMIT $3`
	return repo.queryArticles(ctx, "FindRelated", query, categoryID, excludeID, limit)
}

func (repo *ArticleRepo) Search(ctx context.Context, keyword string, limit int) ([]*entity.Article, error) {
	const query = `
SELECT ` + articleColumns + `
FROM articles
WHERE status = 'PUBLISHED'
  AND (title ILIKE $1 OR summary ILIKE $1)
ORDER BY publish_time DESC
LIMIT $2`
	param := "%" + keyword + "%"
	return repo.queryArticles(ctx, "Search", query, param, limit)
}

func (repo *ArticleRepo) IncrementViews(ctx context.Context, id int64) error {
	const query = `UPDATE articles SET views = views + 1 WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("IncrementViews: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) CountArticles(ctx context.Context) (int64, error) {
	return repo.count(ctx, "CountArticles", `SELECT COUNT(*) FROM articles`)
}

func (repo *ArticleRepo) CountPublished(ctx context.Context) (int64, error) {
	return repo.count(ctx, "CountPublished", `SELECT COUNT(*) FROM articles WHERE status = 'PUBLISHED'`)
}

func (repo *ArticleRepo) SumViews(ctx context.Context) (int64, error) {
	return repo.count(ctx, "SumViews", `SELECT COALESCE(SUM(views), 0) FROM articles`)
}

func (repo *ArticleRepo) CountByCategory(ctx context.Context) ([]repository.CategoryCount, error) {
	const query = `
SELECT COALESCE(category_id, 0), COUNT(*)
FROM articles
GROUP BY category_id
ORDER BY category_id`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("CountByCategory: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make([]repository.CategoryCount, 0, 16)
	for rows.Next() {
		var c repository.CategoryCount
		if err := rows.Scan(&c.CategoryID, &c.Count); err != nil {
			return nil, fmt.Errorf("CountByCategory: Scan: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (repo *ArticleRepo) count(ctx context.Context, op, query string) (int64, error) {
	var n int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

func (repo *ArticleRepo) queryArticles(ctx context.Context, op, query string, args ...any) ([]*entity.Article, error) {
	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	// パフォーマンス最適化: メモリ再割り当てを削減するため事前割り当て
	articles := make([]*entity.Article, 0, 50)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: Scan: %w", op, err)
		}
		articles = append(articles, article)
	}
	return articles, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*entity.Article, error) {
	var article entity.Article
	err := row.Scan(&article.ID, &article.Title, &article.Summary, &article.Content,
		&article.SourceURL, &article.SourceName, &article.CategoryID,
		&article.PublishTime, &article.Views, &article.Status,
		&article.CreatedAt, &article.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &article, nil
}
