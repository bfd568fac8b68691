package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zlnvch/seodash/analysis"
	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/store"
	"github.com/zlnvch/seodash/upstream"
)

const (
	maxKeywordLength = 100
	maxTopicLength   = 500
	maxContentLength = 200000
	maxDraftBatch    = 50
)

type ContentRequest struct {
	Keyword   string `json:"keyword"`
	Topic     string `json:"topic"`
	Tone      string `json:"tone"`
	WordCount int    `json:"wordCount"`
}

type ScoreRequest struct {
	Keyword string `json:"keyword"`
	Title   string `json:"title"`
	Content string `json:"content"`
	// URL, when set, scores the live page instead of Title and Content.
	URL string `json:"url"`
}

func (req *ContentRequest) normalize() error {
	keyword, err := validateText("keyword", req.Keyword, maxKeywordLength)
	if err != nil {
		return err
	}
	req.Keyword = keyword
	if req.Topic != "" {
		topic, err := validateText("topic", req.Topic, maxTopicLength)
		if err != nil {
			return err
		}
		req.Topic = topic
	}
	if req.Tone != "" && len(req.Tone) > 50 {
		return invalid("tone", "must be at most 50 characters")
	}
	if req.WordCount != 0 && (req.WordCount < 300 || req.WordCount > 5000) {
		return invalid("wordCount", "must be between 300 and 5000")
	}
	return nil
}

// reserveGeneration counts one generation against today's quota. It fails
// open when the counter store is unavailable.
func (s *Service) reserveGeneration(ctx context.Context, userId string) (bool, error) {
	if s.DailyGenerationLimit <= 0 {
		return false, nil
	}

	count, err := s.Cache.IncrementDailyCount(ctx, userId, models.UsageContentGenerated, s.today())
	if err != nil {
		s.log(ctx).Warn(ctx, "generation quota unavailable", "user_id", userId, "error", err)
		return false, nil
	}
	if count > int64(s.DailyGenerationLimit) {
		s.releaseGeneration(ctx, userId)
		return false, ErrQuotaExceeded
	}
	return true, nil
}

func (s *Service) releaseGeneration(ctx context.Context, userId string) {
	if err := s.Cache.DecrementDailyCount(ctx, userId, models.UsageContentGenerated, s.today()); err != nil {
		s.log(ctx).Warn(ctx, "failed to release generation quota", "user_id", userId, "error", err)
	}
}

func buildPrompt(req ContentRequest, settings models.Settings) string {
	tone := settings.Tone
	if req.Tone != "" {
		tone = req.Tone
	}
	words := settings.TargetWordCount
	if req.WordCount != 0 {
		words = req.WordCount
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write an SEO article targeting the keyword %q.\n", req.Keyword)
	if req.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	}
	fmt.Fprintf(&b, "Tone: %s\n", tone)
	fmt.Fprintf(&b, "Length: about %d words.\n", words)
	b.WriteString("Format the article as markdown. Start with a single '# ' title line and use '##' and '###' subheadings.")
	return b.String()
}

// splitTitle takes the first "# " line as the title. Without one the
// keyword is used.
func splitTitle(markdown string, fallback string) (string, string) {
	lines := strings.Split(strings.TrimSpace(markdown), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			title := strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			body := strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
			return title, body
		}
		break
	}
	return fallback, strings.TrimSpace(markdown)
}

// GenerateContent writes an article with the user's own LLM key, scores it
// and stores it.
func (s *Service) GenerateContent(ctx context.Context, user models.User, req ContentRequest) (models.Article, error) {
	if err := req.normalize(); err != nil {
		return models.Article{}, err
	}

	apiKey, err := s.requireSecret(ctx, user.Id, SecretOpenAIKey)
	if err != nil {
		return models.Article{}, err
	}

	settings, err := s.EffectiveSettings(ctx, user.Id)
	if err != nil {
		return models.Article{}, err
	}

	reserved, err := s.reserveGeneration(ctx, user.Id)
	if err != nil {
		generationsTotal.WithLabelValues("quota_exceeded").Inc()
		return models.Article{}, err
	}

	completion, err := s.LLM.Complete(ctx, apiKey, upstream.CompletionRequest{
		Model:        settings.ContentModel,
		SystemPrompt: settings.SystemPrompt,
		UserPrompt:   buildPrompt(req, settings),
		MaxTokens:    settings.ContentMaxTokens,
		Temperature:  settings.Temperature,
	})
	if err != nil {
		if reserved {
			s.releaseGeneration(ctx, user.Id)
		}
		generationsTotal.WithLabelValues("error").Inc()
		return models.Article{}, err
	}

	title, body := splitTitle(completion.Content, req.Keyword)
	result := analysis.ScoreContent(title, body, req.Keyword)

	id, err := newRecordId()
	if err != nil {
		return models.Article{}, err
	}
	model := completion.Model
	if model == "" {
		model = settings.ContentModel
	}
	article := models.Article{
		Id:          id,
		UserId:      user.Id,
		Keyword:     req.Keyword,
		Title:       result.Title,
		Content:     result.Content,
		WordCount:   result.WordCount,
		SeoScore:    result.SeoScore,
		SeoAnalysis: result.SeoAnalysis,
		Model:       model,
		Created:     s.now().Unix(),
	}
	if err := s.Store.SaveArticle(ctx, article); err != nil {
		return models.Article{}, err
	}

	generationsTotal.WithLabelValues("ok").Inc()
	s.recordUsage(ctx, user.Id, models.UsageContentGenerated)
	s.log(ctx).Info(ctx, "article generated", "user_id", user.Id, "article_id", article.Id, "seo_score", article.SeoScore, "tokens", completion.TotalTokens)
	return article, nil
}

// ScoreContent grades supplied text, or a live page when URL is set.
func (s *Service) ScoreContent(ctx context.Context, req ScoreRequest) (models.ContentSeoResult, error) {
	keyword, err := validateText("keyword", req.Keyword, maxKeywordLength)
	if err != nil {
		return models.ContentSeoResult{}, err
	}

	if req.URL == "" {
		if _, err := validateText("content", req.Content, maxContentLength); err != nil {
			return models.ContentSeoResult{}, err
		}
		return analysis.ScoreContent(req.Title, req.Content, keyword), nil
	}

	u, err := ValidateSiteURL("url", req.URL)
	if err != nil {
		return models.ContentSeoResult{}, err
	}
	page, err := s.Fetcher.FetchPage(ctx, u.String())
	if err != nil {
		return models.ContentSeoResult{}, err
	}
	markdown, err := s.Fetcher.ToMarkdown(page.HTML)
	if err != nil {
		return models.ContentSeoResult{}, err
	}

	title := req.Title
	if title == "" {
		title = analysis.ExtractSignals(page.HTML, u.String()).Title
	}
	return analysis.ScoreContent(title, markdown, keyword), nil
}

// CheckSimilarity compares a batch of drafts against each other.
func (s *Service) CheckSimilarity(pages []models.PageDraft) ([]models.SimilarityResult, error) {
	if len(pages) == 0 {
		return nil, invalid("pages", "must not be empty")
	}
	if len(pages) > maxDraftBatch {
		return nil, invalid("pages", fmt.Sprintf("must contain at most %d drafts", maxDraftBatch))
	}

	seen := make(map[string]struct{}, len(pages))
	for i, p := range pages {
		field := fmt.Sprintf("pages[%d].slug", i)
		if strings.TrimSpace(p.Slug) == "" {
			return nil, invalid(field, "is required")
		}
		if _, ok := seen[p.Slug]; ok {
			return nil, invalid(field, "is duplicated")
		}
		seen[p.Slug] = struct{}{}
	}

	return analysis.CompareDrafts(pages), nil
}

func (s *Service) ListArticles(ctx context.Context, user models.User, limit int) ([]models.Article, error) {
	return s.Store.ListArticles(ctx, user.Id, clampLimit(limit))
}

func (s *Service) GetArticle(ctx context.Context, user models.User, id string) (models.Article, error) {
	article, err := s.Store.GetArticle(ctx, user.Id, id)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.Article{}, ErrNotFound
		}
		return models.Article{}, err
	}
	return article, nil
}
