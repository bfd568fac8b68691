package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/upstream"
	"golang.org/x/oauth2"
)

type MockKeywordData struct {
	mock.Mock
}

func (m *MockKeywordData) SearchVolume(ctx context.Context, creds upstream.DataForSEOCredentials, q upstream.KeywordQuery) ([]models.KeywordMetric, error) {
	args := m.Called(ctx, creds, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.KeywordMetric), args.Error(1)
}

func (m *MockKeywordData) SERP(ctx context.Context, creds upstream.DataForSEOCredentials, q upstream.SerpQuery) ([]models.SerpItem, error) {
	args := m.Called(ctx, creds, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SerpItem), args.Error(1)
}

func (m *MockKeywordData) DomainMetrics(ctx context.Context, creds upstream.DataForSEOCredentials, domain string) (models.DomainMetrics, error) {
	args := m.Called(ctx, creds, domain)
	return args.Get(0).(models.DomainMetrics), args.Error(1)
}

type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Complete(ctx context.Context, apiKey string, req upstream.CompletionRequest) (upstream.Completion, error) {
	args := m.Called(ctx, apiKey, req)
	return args.Get(0).(upstream.Completion), args.Error(1)
}

type MockSearchConsole struct {
	mock.Mock
}

func (m *MockSearchConsole) AuthCodeURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockSearchConsole) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

func (m *MockSearchConsole) Query(ctx context.Context, refreshToken string, q upstream.PerformanceQuery) ([]models.PerformanceRow, error) {
	args := m.Called(ctx, refreshToken, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PerformanceRow), args.Error(1)
}

func (m *MockSearchConsole) ListSites(ctx context.Context, refreshToken string) ([]models.GSCSite, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GSCSite), args.Error(1)
}

type MockCDN struct {
	mock.Mock
}

func (m *MockCDN) ListZones(ctx context.Context, apiToken string) ([]models.Zone, error) {
	args := m.Called(ctx, apiToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Zone), args.Error(1)
}

func (m *MockCDN) ListDNSRecords(ctx context.Context, apiToken string, zoneID string) ([]models.DNSRecord, error) {
	args := m.Called(ctx, apiToken, zoneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DNSRecord), args.Error(1)
}

func (m *MockCDN) PurgeCache(ctx context.Context, apiToken string, zoneID string) error {
	args := m.Called(ctx, apiToken, zoneID)
	return args.Error(0)
}

type MockSiteFetcher struct {
	mock.Mock
}

func (m *MockSiteFetcher) FetchPage(ctx context.Context, url string) (upstream.Page, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(upstream.Page), args.Error(1)
}

func (m *MockSiteFetcher) ToMarkdown(html string) (string, error) {
	args := m.Called(html)
	return args.String(0), args.Error(1)
}

func (m *MockSiteFetcher) CheckAvailability(ctx context.Context, url string) models.AvailabilityReport {
	args := m.Called(ctx, url)
	return args.Get(0).(models.AvailabilityReport)
}
