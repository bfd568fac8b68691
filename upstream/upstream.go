// Package upstream holds the HTTP clients for every third-party provider the
// dashboard talks to. Clients never store user credentials; they are passed
// per call and come from the secret vault.
package upstream

import (
	"context"

	"github.com/zlnvch/seodash/models"
	"golang.org/x/oauth2"
)

type DataForSEOCredentials struct {
	Login    string
	Password string
}

type KeywordQuery struct {
	Keywords     []string
	LocationCode int
	LanguageCode string
}

type SerpQuery struct {
	Keyword      string
	LocationCode int
	LanguageCode string
	Depth        int
}

type KeywordData interface {
	SearchVolume(ctx context.Context, creds DataForSEOCredentials, q KeywordQuery) ([]models.KeywordMetric, error)
	SERP(ctx context.Context, creds DataForSEOCredentials, q SerpQuery) ([]models.SerpItem, error)
	DomainMetrics(ctx context.Context, creds DataForSEOCredentials, domain string) (models.DomainMetrics, error)
}

type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

type Completion struct {
	Content     string
	Model       string
	TotalTokens int
}

type LLM interface {
	Complete(ctx context.Context, apiKey string, req CompletionRequest) (Completion, error)
}

type PerformanceQuery struct {
	SiteURL    string
	StartDate  string
	EndDate    string
	Dimensions []string
	RowLimit   int64
}

type SearchConsole interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Query(ctx context.Context, refreshToken string, q PerformanceQuery) ([]models.PerformanceRow, error)
	ListSites(ctx context.Context, refreshToken string) ([]models.GSCSite, error)
}

type CDN interface {
	ListZones(ctx context.Context, apiToken string) ([]models.Zone, error)
	ListDNSRecords(ctx context.Context, apiToken string, zoneID string) ([]models.DNSRecord, error)
	PurgeCache(ctx context.Context, apiToken string, zoneID string) error
}

// Page is one fetched HTML document.
type Page struct {
	URL        string
	StatusCode int
	HTML       string
}

type SiteFetcher interface {
	FetchPage(ctx context.Context, url string) (Page, error)
	ToMarkdown(html string) (string, error)
	CheckAvailability(ctx context.Context, url string) models.AvailabilityReport
}
