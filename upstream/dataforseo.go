package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zlnvch/seodash/models"
)

const (
	DefaultDataForSEOBaseURL = "https://api.dataforseo.com/v3"
	dataForSEOTimeout        = 60 * time.Second
	dataForSEOOK             = 20000
	providerDataForSEO       = "dataforseo"
)

type DataForSEOClient struct {
	client  *http.Client
	baseURL string
	limiter *RateLimiter
}

func NewDataForSEOClient(baseURL string) *DataForSEOClient {
	if baseURL == "" {
		baseURL = DefaultDataForSEOBaseURL
	}
	return &DataForSEOClient{
		client:  &http.Client{Timeout: dataForSEOTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: NewRateLimiter(2, 5),
	}
}

// dataForSEOEnvelope is shared by every endpoint: a status plus one task per
// posted request.
type dataForSEOEnvelope[T any] struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Tasks         []struct {
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
		Result        []T    `json:"result"`
	} `json:"tasks"`
}

// taskError converts a DataForSEO status (e.g. 40501) into an *Error. Codes
// in the 40000-59999 range carry an HTTP status in their first three digits.
func taskError(code int, message string) error {
	status := code / 100
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}
	return &Error{Provider: providerDataForSEO, StatusCode: status, Body: message}
}

func postTask[T any](ctx context.Context, c *DataForSEOClient, creds DataForSEOCredentials, path string, task any) ([]T, error) {
	payload, err := json.Marshal([]any{task})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(creds.Login, creds.Password)
	req.Header.Set("Content-Type", "application/json")

	var env dataForSEOEnvelope[T]
	if err := doJSON(ctx, c.client, c.limiter, providerDataForSEO, req, &env); err != nil {
		return nil, err
	}
	if env.StatusCode != dataForSEOOK {
		return nil, taskError(env.StatusCode, env.StatusMessage)
	}
	if len(env.Tasks) == 0 {
		return nil, &Error{Provider: providerDataForSEO, StatusCode: http.StatusBadGateway, Body: "no task in response"}
	}
	task0 := env.Tasks[0]
	if task0.StatusCode != dataForSEOOK {
		return nil, taskError(task0.StatusCode, task0.StatusMessage)
	}
	return task0.Result, nil
}

type searchVolumeResult struct {
	Keyword          string   `json:"keyword"`
	SearchVolume     *int     `json:"search_volume"`
	CPC              *float64 `json:"cpc"`
	Competition      string   `json:"competition"`
	CompetitionIndex *int     `json:"competition_index"`
}

func (c *DataForSEOClient) SearchVolume(ctx context.Context, creds DataForSEOCredentials, q KeywordQuery) ([]models.KeywordMetric, error) {
	task := map[string]any{
		"keywords":      q.Keywords,
		"location_code": q.LocationCode,
		"language_code": q.LanguageCode,
	}
	results, err := postTask[searchVolumeResult](ctx, c, creds, "/keywords_data/google_ads/search_volume/live", task)
	if err != nil {
		return nil, err
	}

	metrics := make([]models.KeywordMetric, 0, len(results))
	for _, r := range results {
		m := models.KeywordMetric{Keyword: r.Keyword, CompetitionLevel: r.Competition}
		if r.SearchVolume != nil {
			m.SearchVolume = *r.SearchVolume
		}
		if r.CPC != nil {
			m.CPC = *r.CPC
		}
		if r.CompetitionIndex != nil {
			m.Competition = float64(*r.CompetitionIndex) / 100
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

type serpResult struct {
	Items []struct {
		Type         string `json:"type"`
		RankAbsolute int    `json:"rank_absolute"`
		Domain       string `json:"domain"`
		URL          string `json:"url"`
		Title        string `json:"title"`
		Description  string `json:"description"`
	} `json:"items"`
}

func (c *DataForSEOClient) SERP(ctx context.Context, creds DataForSEOCredentials, q SerpQuery) ([]models.SerpItem, error) {
	task := map[string]any{
		"keyword":       q.Keyword,
		"location_code": q.LocationCode,
		"language_code": q.LanguageCode,
		"depth":         q.Depth,
	}
	results, err := postTask[serpResult](ctx, c, creds, "/serp/google/organic/live/advanced", task)
	if err != nil {
		return nil, err
	}

	items := []models.SerpItem{}
	for _, r := range results {
		for _, it := range r.Items {
			items = append(items, models.SerpItem{
				Rank:        it.RankAbsolute,
				Type:        it.Type,
				Domain:      it.Domain,
				URL:         it.URL,
				Title:       it.Title,
				Description: it.Description,
			})
		}
	}
	return items, nil
}

type backlinksSummary struct {
	Target           string `json:"target"`
	Rank             int    `json:"rank"`
	Backlinks        int64  `json:"backlinks"`
	ReferringDomains int64  `json:"referring_domains"`
}

func (c *DataForSEOClient) DomainMetrics(ctx context.Context, creds DataForSEOCredentials, domain string) (models.DomainMetrics, error) {
	results, err := postTask[backlinksSummary](ctx, c, creds, "/backlinks/summary/live", map[string]any{"target": domain})
	if err != nil {
		return models.DomainMetrics{}, err
	}
	if len(results) == 0 {
		return models.DomainMetrics{Domain: domain}, nil
	}
	r := results[0]
	return models.DomainMetrics{
		Domain:          domain,
		Rank:            r.Rank,
		Backlinks:       r.Backlinks,
		ReferringDomain: r.ReferringDomains,
	}, nil
}
