package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zlnvch/seodash/cache"
	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/upstream"
)

const (
	researchCacheTTL = 24 * time.Hour
	maxResearchBatch = 100
	defaultSerpDepth = 10
	maxSerpDepth     = 100
)

type KeywordResearchRequest struct {
	Keywords     []string `json:"keywords"`
	LocationCode int      `json:"locationCode"`
	LanguageCode string   `json:"languageCode"`
}

type SerpRequest struct {
	Keyword      string `json:"keyword"`
	LocationCode int    `json:"locationCode"`
	LanguageCode string `json:"languageCode"`
	Depth        int    `json:"depth"`
}

type DomainRequest struct {
	Domain string `json:"domain"`
}

// ResearchResult is one lookup, served either from the provider or from the
// per-user cache.
type ResearchResult struct {
	models.KeywordResearch
	Cached bool `json:"cached"`
}

// locale fills unset location and language from the user's settings.
func (s *Service) locale(ctx context.Context, userId string, location int, language string) (int, string, error) {
	settings, err := s.EffectiveSettings(ctx, userId)
	if err != nil {
		return 0, "", err
	}
	if location == 0 {
		location = settings.DefaultLocationCode
	}
	if language == "" {
		language = settings.DefaultLanguageCode
	}
	if location < 0 {
		return 0, "", invalid("locationCode", "must be positive")
	}
	if err := validateLanguageCode("languageCode", language); err != nil {
		return 0, "", err
	}
	return location, language, nil
}

func researchCacheKey(userId string, kind models.ResearchKind, query any) string {
	raw, _ := json.Marshal(query)
	sum := sha256.Sum256(raw)
	return cache.UserKey(userId, "research", string(kind), hex.EncodeToString(sum[:]))
}

// cachedResearch runs fetch unless an identical lookup is cached, then
// persists the fresh result to the user's history.
func (s *Service) cachedResearch(
	ctx context.Context,
	user models.User,
	record models.KeywordResearch,
	cacheQuery any,
	fetch func(creds upstream.DataForSEOCredentials) (any, error),
) (ResearchResult, error) {
	key := researchCacheKey(user.Id, record.Kind, cacheQuery)

	cached, err := s.Cache.Get(ctx, key)
	if err == nil {
		var hit models.KeywordResearch
		if err := json.Unmarshal(cached, &hit); err == nil {
			researchCache.WithLabelValues("hit").Inc()
			return ResearchResult{KeywordResearch: hit, Cached: true}, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log(ctx).Warn(ctx, "research cache read failed", "user_id", user.Id, "error", err)
	}
	researchCache.WithLabelValues("miss").Inc()

	creds, err := s.dataForSEOCredentials(ctx, user.Id)
	if err != nil {
		return ResearchResult{}, err
	}

	data, err := fetch(creds)
	if err != nil {
		return ResearchResult{}, err
	}
	result, err := json.Marshal(data)
	if err != nil {
		return ResearchResult{}, fmt.Errorf("encode research result: %w", err)
	}

	id, err := newRecordId()
	if err != nil {
		return ResearchResult{}, err
	}
	record.Id = id
	record.UserId = user.Id
	record.Result = result
	record.Created = s.now().Unix()

	if err := s.Store.SaveKeywordResearch(ctx, record); err != nil {
		return ResearchResult{}, err
	}
	s.recordUsage(ctx, user.Id, models.UsageKeywordLookups)

	if encoded, err := json.Marshal(record); err == nil {
		if err := s.Cache.Set(ctx, key, encoded, researchCacheTTL); err != nil {
			s.log(ctx).Warn(ctx, "research cache write failed", "user_id", user.Id, "error", err)
		}
	}

	return ResearchResult{KeywordResearch: record}, nil
}

// ResearchKeywords looks up search volume, CPC and competition.
func (s *Service) ResearchKeywords(ctx context.Context, user models.User, req KeywordResearchRequest) (ResearchResult, error) {
	if len(req.Keywords) == 0 {
		return ResearchResult{}, invalid("keywords", "must not be empty")
	}
	if len(req.Keywords) > maxResearchBatch {
		return ResearchResult{}, invalid("keywords", fmt.Sprintf("must contain at most %d keywords", maxResearchBatch))
	}
	keywords := make([]string, 0, len(req.Keywords))
	for i, k := range req.Keywords {
		keyword, err := validateText(fmt.Sprintf("keywords[%d]", i), k, maxKeywordLength)
		if err != nil {
			return ResearchResult{}, err
		}
		keywords = append(keywords, strings.ToLower(keyword))
	}

	location, language, err := s.locale(ctx, user.Id, req.LocationCode, req.LanguageCode)
	if err != nil {
		return ResearchResult{}, err
	}
	q := upstream.KeywordQuery{Keywords: keywords, LocationCode: location, LanguageCode: language}

	record := models.KeywordResearch{
		Kind:         models.ResearchVolume,
		Query:        strings.Join(keywords, ", "),
		LocationCode: location,
		LanguageCode: language,
	}
	return s.cachedResearch(ctx, user, record, q, func(creds upstream.DataForSEOCredentials) (any, error) {
		return s.KeywordData.SearchVolume(ctx, creds, q)
	})
}

// SERPSnapshot records the organic results for one keyword.
func (s *Service) SERPSnapshot(ctx context.Context, user models.User, req SerpRequest) (ResearchResult, error) {
	keyword, err := validateText("keyword", req.Keyword, maxKeywordLength)
	if err != nil {
		return ResearchResult{}, err
	}
	depth := req.Depth
	if depth == 0 {
		depth = defaultSerpDepth
	}
	if depth < 1 || depth > maxSerpDepth {
		return ResearchResult{}, invalid("depth", fmt.Sprintf("must be between 1 and %d", maxSerpDepth))
	}

	location, language, err := s.locale(ctx, user.Id, req.LocationCode, req.LanguageCode)
	if err != nil {
		return ResearchResult{}, err
	}
	q := upstream.SerpQuery{Keyword: strings.ToLower(keyword), LocationCode: location, LanguageCode: language, Depth: depth}

	record := models.KeywordResearch{
		Kind:         models.ResearchSERP,
		Query:        q.Keyword,
		LocationCode: location,
		LanguageCode: language,
	}
	return s.cachedResearch(ctx, user, record, q, func(creds upstream.DataForSEOCredentials) (any, error) {
		return s.KeywordData.SERP(ctx, creds, q)
	})
}

// DomainOverview fetches rank and backlink totals for a domain.
func (s *Service) DomainOverview(ctx context.Context, user models.User, req DomainRequest) (ResearchResult, error) {
	domain, err := ValidateDomain("domain", req.Domain)
	if err != nil {
		return ResearchResult{}, err
	}

	record := models.KeywordResearch{Kind: models.ResearchDomain, Query: domain}
	return s.cachedResearch(ctx, user, record, domain, func(creds upstream.DataForSEOCredentials) (any, error) {
		return s.KeywordData.DomainMetrics(ctx, creds, domain)
	})
}

func (s *Service) ListKeywordHistory(ctx context.Context, user models.User, limit int) ([]models.KeywordResearch, error) {
	return s.Store.ListKeywordResearch(ctx, user.Id, clampLimit(limit))
}
