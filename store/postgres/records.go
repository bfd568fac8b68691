package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/store"
)

func (s *PostgresDashboardStore) SaveArticle(ctx context.Context, a models.Article) error {
	analysis, err := json.Marshal(a.SeoAnalysis)
	if err != nil {
		return fmt.Errorf("marshal seo analysis: %w", err)
	}

	query :=
		`INSERT INTO articles (id, user_id, keyword, title, content, word_count, seo_score, seo_analysis, model, created)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = s.db.ExecContext(ctx, query, a.Id, a.UserId, a.Keyword, a.Title, a.Content, a.WordCount, a.SeoScore, analysis, a.Model, a.Created)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

const articleColumns = `id, user_id, keyword, title, content, word_count, seo_score, seo_analysis, model, created`

func scanArticle(row interface{ Scan(...any) error }) (models.Article, error) {
	var a models.Article
	var analysis []byte
	if err := row.Scan(&a.Id, &a.UserId, &a.Keyword, &a.Title, &a.Content, &a.WordCount, &a.SeoScore, &analysis, &a.Model, &a.Created); err != nil {
		return models.Article{}, err
	}
	if err := json.Unmarshal(analysis, &a.SeoAnalysis); err != nil {
		return models.Article{}, fmt.Errorf("unmarshal seo analysis: %w", err)
	}
	return a, nil
}

func (s *PostgresDashboardStore) GetArticle(ctx context.Context, userId string, id string) (models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1 AND user_id = $2`

	a, err := scanArticle(s.db.QueryRowContext(ctx, query, id, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Article{}, store.ErrItemNotFound
		}
		return models.Article{}, fmt.Errorf("error performing sql request: %w", err)
	}
	return a, nil
}

func (s *PostgresDashboardStore) ListArticles(ctx context.Context, userId string, limit int) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE user_id = $1 ORDER BY created DESC, id DESC LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userId, limit)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	articles := []models.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

func (s *PostgresDashboardStore) SaveAudit(ctx context.Context, run models.AuditRun) error {
	issues, err := json.Marshal(run.Issues)
	if err != nil {
		return fmt.Errorf("marshal issues: %w", err)
	}
	pages, err := json.Marshal(run.Pages)
	if err != nil {
		return fmt.Errorf("marshal pages: %w", err)
	}
	similarity, err := json.Marshal(run.Similarity)
	if err != nil {
		return fmt.Errorf("marshal similarity: %w", err)
	}

	query :=
		`INSERT INTO audit_runs (id, user_id, site_url, health_score, issues, pages, similarity, created)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = s.db.ExecContext(ctx, query, run.Id, run.UserId, run.SiteURL, run.HealthScore, issues, pages, similarity, run.Created)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (s *PostgresDashboardStore) GetAudit(ctx context.Context, userId string, id string) (models.AuditRun, error) {
	query :=
		`SELECT id, user_id, site_url, health_score, issues, pages, similarity, created
		 FROM audit_runs WHERE id = $1 AND user_id = $2`

	var run models.AuditRun
	var issues, pages, similarity []byte
	err := s.db.QueryRowContext(ctx, query, id, userId).
		Scan(&run.Id, &run.UserId, &run.SiteURL, &run.HealthScore, &issues, &pages, &similarity, &run.Created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AuditRun{}, store.ErrItemNotFound
		}
		return models.AuditRun{}, fmt.Errorf("error performing sql request: %w", err)
	}

	if err := json.Unmarshal(issues, &run.Issues); err != nil {
		return models.AuditRun{}, fmt.Errorf("unmarshal issues: %w", err)
	}
	if err := json.Unmarshal(pages, &run.Pages); err != nil {
		return models.AuditRun{}, fmt.Errorf("unmarshal pages: %w", err)
	}
	if err := json.Unmarshal(similarity, &run.Similarity); err != nil {
		return models.AuditRun{}, fmt.Errorf("unmarshal similarity: %w", err)
	}
	return run, nil
}

func (s *PostgresDashboardStore) ListAudits(ctx context.Context, userId string, limit int) ([]models.AuditRun, error) {
	query :=
		`SELECT id, user_id, site_url, health_score, created
		 FROM audit_runs WHERE user_id = $1 ORDER BY created DESC, id DESC LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userId, limit)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	runs := []models.AuditRun{}
	for rows.Next() {
		var run models.AuditRun
		if err := rows.Scan(&run.Id, &run.UserId, &run.SiteURL, &run.HealthScore, &run.Created); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *PostgresDashboardStore) SaveKeywordResearch(ctx context.Context, r models.KeywordResearch) error {
	query :=
		`INSERT INTO keyword_research (id, user_id, kind, query, location_code, language_code, result, created)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.ExecContext(ctx, query, r.Id, r.UserId, string(r.Kind), r.Query, r.LocationCode, r.LanguageCode, []byte(r.Result), r.Created)
	if err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (s *PostgresDashboardStore) ListKeywordResearch(ctx context.Context, userId string, limit int) ([]models.KeywordResearch, error) {
	query :=
		`SELECT id, user_id, kind, query, location_code, language_code, result, created
		 FROM keyword_research WHERE user_id = $1 ORDER BY created DESC, id DESC LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userId, limit)
	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %w", err)
	}
	defer rows.Close()

	history := []models.KeywordResearch{}
	for rows.Next() {
		var r models.KeywordResearch
		var kind string
		var result []byte
		if err := rows.Scan(&r.Id, &r.UserId, &kind, &r.Query, &r.LocationCode, &r.LanguageCode, &result, &r.Created); err != nil {
			return nil, fmt.Errorf("scan keyword research: %w", err)
		}
		r.Kind = models.ResearchKind(kind)
		r.Result = json.RawMessage(result)
		history = append(history, r)
	}
	return history, rows.Err()
}
