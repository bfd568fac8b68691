package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/service"
	"github.com/zlnvch/seodash/upstream"
	"golang.org/x/oauth2"
)

const testZoneId = "023e105f4ecef8ad9ca31a8372d0c353"

func TestConnectSearchConsole_StoresRefreshToken(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()

	deps.searchConsole.On("Exchange", ctx, "auth-code").Return(&oauth2.Token{AccessToken: "at", RefreshToken: "1//refresh"}, nil)
	deps.store.On("SetSecret", ctx, mock.MatchedBy(func(s models.Secret) bool {
		plaintext, err := deps.vault.Decrypt(s.EncryptedPayload)
		return err == nil && plaintext == "1//refresh" && s.KeyName == service.SecretGSCRefreshToken
	})).Return(nil)

	err := svc.ConnectSearchConsole(ctx, models.User{Id: "user1"}, " auth-code ")
	assert.NoError(t, err)
	deps.store.AssertExpectations(t)
}

func TestConnectSearchConsole_NoOfflineAccess(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()
	deps.searchConsole.On("Exchange", ctx, "auth-code").Return(&oauth2.Token{AccessToken: "at"}, nil)

	err := svc.ConnectSearchConsole(ctx, models.User{Id: "user1"}, "auth-code")
	assert.ErrorContains(t, err, "did not grant offline access")
}

func TestSearchConsole_Disabled(t *testing.T) {
	svc, _ := setupService(t)
	svc.SearchConsole = nil
	ctx := context.Background()
	user := models.User{Id: "user1"}

	assert.ErrorIs(t, svc.ConnectSearchConsole(ctx, user, "code"), service.ErrFeatureDisabled)
	_, err := svc.SearchPerformance(ctx, user, service.PerformanceRequest{})
	assert.ErrorIs(t, err, service.ErrFeatureDisabled)
	_, err = svc.SearchConsoleAuthURL()
	assert.ErrorIs(t, err, service.ErrFeatureDisabled)
}

func TestSearchConsoleAuthURL(t *testing.T) {
	svc, deps := setupService(t)
	deps.searchConsole.On("AuthCodeURL", mock.AnythingOfType("string")).Return("https://accounts.google.com/o/oauth2/auth?state=x")

	connect, err := svc.SearchConsoleAuthURL()
	require.NoError(t, err)
	assert.Len(t, connect.State, 32)
	assert.Contains(t, connect.URL, "accounts.google.com")
}

func TestSearchPerformance(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()

	withSecret(t, deps, "user1", service.SecretGSCRefreshToken, "1//refresh")
	rows := []models.PerformanceRow{{Keys: []string{"boiler repair"}, Clicks: 12, Impressions: 340}}
	deps.searchConsole.On("Query", ctx, "1//refresh", upstream.PerformanceQuery{
		SiteURL:    "sc-domain:example.com",
		StartDate:  "2026-02-01",
		EndDate:    "2026-02-28",
		Dimensions: []string{"query"},
		RowLimit:   1000,
	}).Return(rows, nil)

	got, err := svc.SearchPerformance(ctx, models.User{Id: "user1"}, service.PerformanceRequest{
		SiteURL:   "sc-domain:example.com",
		StartDate: "2026-02-01",
		EndDate:   "2026-02-28",
	})
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestSearchPerformance_Validation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	user := models.User{Id: "user1"}

	_, err := svc.SearchPerformance(ctx, user, service.PerformanceRequest{SiteURL: "https://example.com/", StartDate: "2026-02-10", EndDate: "2026-02-01"})
	assert.ErrorContains(t, err, "endDate: must not be before startDate")

	_, err = svc.SearchPerformance(ctx, user, service.PerformanceRequest{SiteURL: "https://example.com/", StartDate: "02/01/2026", EndDate: "2026-02-01"})
	assert.ErrorContains(t, err, "startDate")

	_, err = svc.SearchPerformance(ctx, user, service.PerformanceRequest{
		SiteURL: "https://example.com/", StartDate: "2026-02-01", EndDate: "2026-02-02", Dimensions: []string{"searchAppearance"},
	})
	assert.ErrorContains(t, err, "dimensions[0]")
}

func TestPurgeCloudflareCache(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()

	withSecret(t, deps, "user1", service.SecretCloudflareToken, "cf-token")
	deps.cdn.On("PurgeCache", ctx, "cf-token", testZoneId).Return(nil)

	assert.NoError(t, svc.PurgeCloudflareCache(ctx, models.User{Id: "user1"}, testZoneId))

	err := svc.PurgeCloudflareCache(ctx, models.User{Id: "user1"}, "../zones")
	assert.ErrorContains(t, err, "zoneId")
	deps.cdn.AssertNumberOfCalls(t, "PurgeCache", 1)
}

func TestListCloudflareZones_ProviderError(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()

	withSecret(t, deps, "user1", service.SecretCloudflareToken, "cf-token")
	deps.cdn.On("ListZones", ctx, "cf-token").Return(nil, &upstream.Error{Provider: "cloudflare", StatusCode: 403})

	_, err := svc.ListCloudflareZones(ctx, models.User{Id: "user1"})
	var upErr *upstream.Error
	assert.True(t, errors.As(err, &upErr))
}

func TestListDNSRecords(t *testing.T) {
	svc, deps := setupService(t)
	ctx := context.Background()

	withSecret(t, deps, "user1", service.SecretCloudflareToken, "cf-token")
	records := []models.DNSRecord{{Id: "r1", Type: "A", Name: "example.com", Content: "203.0.113.10", Proxied: true}}
	deps.cdn.On("ListDNSRecords", ctx, "cf-token", testZoneId).Return(records, nil)

	got, err := svc.ListDNSRecords(ctx, models.User{Id: "user1"}, testZoneId)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}
