package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zlnvch/seodash/models"
)

func TestFetcher_FetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			assert.Contains(t, r.Header.Get("User-Agent"), "SeoDashBot")
			w.Write([]byte("<html><title>Home</title></html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	f := NewFetcher()

	page, err := f.FetchPage(context.Background(), server.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.HTML, "<title>Home</title>")

	_, err = f.FetchPage(context.Background(), server.URL+"/missing")
	assert.True(t, errors.Is(err, ErrFetchFailed))
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Equal(t, "could not fetch "+server.URL+"/missing", err.Error())
}

func TestFetcher_FetchPageTransportError(t *testing.T) {
	_, err := NewFetcher().FetchPage(context.Background(), "http://127.0.0.1:1/")
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetcher_ToMarkdown(t *testing.T) {
	out, err := NewFetcher().ToMarkdown("<h2>Our Services</h2><p>Emergency <strong>plumbing</strong></p>")
	require.NoError(t, err)
	assert.Contains(t, out, "## Our Services")
	assert.Contains(t, out, "**plumbing**")
}

func TestFetcher_CheckAvailability(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/", "/robots.txt":
			w.Write([]byte("ok"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	f := NewFetcher()
	f.client = server.Client()

	report := f.CheckAvailability(context.Background(), server.URL+"/")
	assert.True(t, report.Reachable)
	assert.Equal(t, http.StatusOK, report.StatusCode)
	assert.True(t, report.HasRobotsTxt)
	assert.False(t, report.HasSitemap)
	assert.True(t, report.SSLValid)
	assert.GreaterOrEqual(t, report.ResponseTimeMs, int64(0))
	assert.Nil(t, report.SSLIssuer)
	assert.Nil(t, report.SSLExpiresAt)
	assert.Nil(t, report.SSLDaysRemaining)
}

func TestAvailabilityReport_SSLKeys(t *testing.T) {
	raw, err := json.Marshal(models.AvailabilityReport{URL: "https://example.com/", Reachable: true, SSLValid: true})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, true, fields["ssl_valid"])
	for _, key := range []string{"ssl_issuer", "ssl_expires_at", "ssl_days_remaining"} {
		value, ok := fields[key]
		assert.True(t, ok, key)
		assert.Nil(t, value, key)
	}
	assert.NotContains(t, fields, "sslValid")
}

func TestFetcher_CheckAvailabilityUnreachable(t *testing.T) {
	report := NewFetcher().CheckAvailability(context.Background(), "http://127.0.0.1:1/")
	assert.False(t, report.Reachable)
	assert.False(t, report.HasRobotsTxt)
	assert.False(t, report.HasSitemap)
	assert.False(t, report.SSLValid)
	assert.Equal(t, 0, report.StatusCode)
}
