package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoogleServer(t *testing.T, api http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			require.NoError(t, r.ParseForm())
			w.Header().Set("Content-Type", "application/json")
			if r.Form.Get("code") == "bad-code" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant"}`))
				return
			}
			w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600,"refresh_token":"rt"}`))
			return
		}
		api(w, r)
	}))
}

func TestSearchConsole_Exchange(t *testing.T) {
	server := newGoogleServer(t, nil)
	defer server.Close()
	client := NewSearchConsoleClient("id", "secret", "https://app/callback").WithEndpoints(server.URL+"/token", server.URL+"/")

	tok, err := client.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "rt", tok.RefreshToken)

	_, err = client.Exchange(context.Background(), "bad-code")
	var upErr *Error
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusBadRequest, upErr.StatusCode)
	assert.Contains(t, upErr.Body, "invalid_grant")
}

func TestSearchConsole_Query(t *testing.T) {
	server := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/searchAnalytics/query"), r.URL.Path)
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"rows":[{"keys":["plumber leeds"],"clicks":12,"impressions":300,"ctr":0.04,"position":6.2}]}`))
	})
	defer server.Close()
	client := NewSearchConsoleClient("id", "secret", "").WithEndpoints(server.URL+"/token", server.URL+"/")

	rows, err := client.Query(context.Background(), "rt", PerformanceQuery{
		SiteURL:    "https://example.co.uk/",
		StartDate:  "2026-09-01",
		EndDate:    "2026-09-30",
		Dimensions: []string{"query"},
		RowLimit:   100,
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"plumber leeds"}, rows[0].Keys)
	assert.Equal(t, float64(12), rows[0].Clicks)
	assert.InDelta(t, 6.2, rows[0].Position, 1e-9)
}

func TestSearchConsole_ListSitesForbidden(t *testing.T) {
	server := newGoogleServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"User does not have sufficient permission"}}`))
	})
	defer server.Close()
	client := NewSearchConsoleClient("id", "secret", "").WithEndpoints(server.URL+"/token", server.URL+"/")

	_, err := client.ListSites(context.Background(), "rt")
	var upErr *Error
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusForbidden, upErr.StatusCode)
	assert.Equal(t, "google", upErr.Provider)
}

func TestSearchConsole_AuthCodeURLRequestsOfflineAccess(t *testing.T) {
	u := NewSearchConsoleClient("id", "secret", "https://app/callback").AuthCodeURL("state-1")
	assert.Contains(t, u, "access_type=offline")
	assert.Contains(t, u, "state=state-1")
	assert.Contains(t, u, "webmasters.readonly")
}

func newStalledServer(t *testing.T, stallToken bool) *httptest.Server {
	t.Helper()
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" && !stallToken {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at","token_type":"Bearer","expires_in":3600}`))
			return
		}
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})
	return server
}

func TestSearchConsole_Timeouts(t *testing.T) {
	tests := []struct {
		name       string
		stallToken bool
		call       func(c *SearchConsoleClient) error
	}{
		{"Exchange", true, func(c *SearchConsoleClient) error {
			_, err := c.Exchange(context.Background(), "good-code")
			return err
		}},
		{"Token refresh", true, func(c *SearchConsoleClient) error {
			_, err := c.ListSites(context.Background(), "rt")
			return err
		}},
		{"Query", false, func(c *SearchConsoleClient) error {
			_, err := c.Query(context.Background(), "rt", PerformanceQuery{SiteURL: "https://example.co.uk/", StartDate: "2026-09-01", EndDate: "2026-09-30"})
			return err
		}},
		{"ListSites", false, func(c *SearchConsoleClient) error {
			_, err := c.ListSites(context.Background(), "rt")
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newStalledServer(t, tt.stallToken)
			client := NewSearchConsoleClient("id", "secret", "").
				WithEndpoints(server.URL+"/token", server.URL+"/").
				WithTimeout(100 * time.Millisecond)

			start := time.Now()
			err := tt.call(client)

			require.Error(t, err)
			assert.Less(t, time.Since(start), 5*time.Second)
		})
	}
}

func TestSearchConsole_DefaultTimeout(t *testing.T) {
	client := NewSearchConsoleClient("id", "secret", "")
	assert.Equal(t, googleTimeout, client.timeout)
	assert.Equal(t, googleTimeout, client.WithEndpoints("https://token", "https://api/").timeout)
}
