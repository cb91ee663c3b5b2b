// Package storage provides the Postgres article store and the in-memory
// job store.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"RegCollector/internal/domain"
	"RegCollector/internal/ports"
)

// ArticleStore persists articles and their attachments in Postgres.
type ArticleStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ArticleStore = (*ArticleStore)(nil)

// NewArticleStore wraps an open database handle.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Exists reports whether an article with the given URL is already collected.
func (s *ArticleStore) Exists(ctx context.Context, url string) (bool, error) {
	query, args, err := s.builder.
		Select("1").
		From("articles").
		Where(sq.Eq{"url": url}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// ExistingURLs returns the subset of urls already present, as a set.
func (s *ArticleStore) ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(urls) == 0 {
		return existing, nil
	}

	query, args, err := s.builder.
		Select("url").
		From("articles").
		Where(sq.Expr("url = ANY(?)", pq.Array(urls))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build existing urls query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query existing urls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan existing url: %w", err)
		}
		existing[url] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate existing urls: %w", err)
	}
	return existing, nil
}

// Save inserts the article and returns its id. A concurrent insert of the
// same URL updates the row instead; URL uniqueness is the dedup invariant.
func (s *ArticleStore) Save(ctx context.Context, article domain.Article) (string, error) {
	query, args, err := s.buildSave(article).ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert: %w", err)
	}

	var id string
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return "", fmt.Errorf("insert article: %w", err)
	}
	return id, nil
}

func (s *ArticleStore) buildSave(article domain.Article) sq.InsertBuilder {
	return s.builder.
		Insert("articles").
		Columns("url", "title", "source", "country_code", "published_date",
			"content", "translated_title", "translated_body", "collected_at").
		Values(article.URL, article.Title, article.Source, article.CountryCode,
			article.PublishedDate, article.Content, article.TranslatedTitle,
			article.TranslatedBody, article.CollectedAt).
		Suffix(`ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			source = EXCLUDED.source,
			country_code = EXCLUDED.country_code,
			published_date = EXCLUDED.published_date,
			content = EXCLUDED.content,
			translated_title = EXCLUDED.translated_title,
			translated_body = EXCLUDED.translated_body,
			collected_at = EXCLUDED.collected_at
			RETURNING id`)
}

// SaveAttachments records downloaded documents for an article.
func (s *ArticleStore) SaveAttachments(ctx context.Context, articleID string, attachments []domain.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}

	insert := s.builder.
		Insert("attachments").
		Columns("article_id", "url", "filename", "path")
	for _, a := range attachments {
		insert = insert.Values(articleID, a.URL, a.Filename, a.Path)
	}

	query, args, err := insert.
		Suffix("ON CONFLICT (article_id, url) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build attachments insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert attachments: %w", err)
	}
	return nil
}

// Query returns collected articles matching the filter, newest first.
func (s *ArticleStore) Query(ctx context.Context, filter ports.ArticleFilter) ([]domain.Article, error) {
	query, args, err := s.buildQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		err := rows.Scan(&a.ID, &a.URL, &a.Title, &a.Source, &a.CountryCode,
			&a.PublishedDate, &a.Content, &a.TranslatedTitle, &a.TranslatedBody,
			&a.CollectedAt)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}

func (s *ArticleStore) buildQuery(filter ports.ArticleFilter) sq.SelectBuilder {
	query := s.builder.
		Select("id", "url", "title", "source", "country_code", "published_date",
			"content", "translated_title", "translated_body", "collected_at").
		From("articles").
		OrderBy("collected_at DESC")

	if len(filter.Sources) > 0 {
		query = query.Where(sq.Eq{"source": filter.Sources})
	}
	if filter.CountryCode != "" {
		query = query.Where(sq.Eq{"country_code": filter.CountryCode})
	}
	if filter.From != nil {
		query = query.Where(sq.GtOrEq{"published_date": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(sq.Lt{"published_date": *filter.To})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	return query
}
