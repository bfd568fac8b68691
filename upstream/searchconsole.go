package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/zlnvch/seodash/models"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/searchconsole/v1"
)

const (
	providerGoogle = "google"
	googleTimeout  = 30 * time.Second
)

var GoogleEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL: "https://oauth2.googleapis.com/token",
}

type SearchConsoleClient struct {
	conf *oauth2.Config
	// endpoint overrides the API base URL; empty means Google's default.
	endpoint string
	timeout  time.Duration
}

func NewSearchConsoleClient(clientID, clientSecret, redirectURL string) *SearchConsoleClient {
	return &SearchConsoleClient{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     GoogleEndpoint,
			Scopes:       []string{searchconsole.WebmastersReadonlyScope},
		},
		timeout: googleTimeout,
	}
}

// WithEndpoints points the client at alternative token and API hosts.
func (c *SearchConsoleClient) WithEndpoints(tokenURL, apiEndpoint string) *SearchConsoleClient {
	conf := *c.conf
	conf.Endpoint.TokenURL = tokenURL
	return &SearchConsoleClient{conf: &conf, endpoint: apiEndpoint, timeout: c.timeout}
}

// WithTimeout bounds every token and API call made by the client.
func (c *SearchConsoleClient) WithTimeout(timeout time.Duration) *SearchConsoleClient {
	clone := *c
	clone.timeout = timeout
	return &clone
}

// withDeadline bounds ctx and makes oauth2 use a client with the same limit
// for token exchange and refresh.
func (c *SearchConsoleClient) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: c.timeout}), cancel
}

// AuthCodeURL returns the consent URL that yields an offline refresh token.
func (c *SearchConsoleClient) AuthCodeURL(state string) string {
	return c.conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (c *SearchConsoleClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	tok, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, wrapGoogleError(err)
	}
	if tok.RefreshToken == "" {
		return nil, &Error{Provider: providerGoogle, StatusCode: http.StatusBadRequest, Body: "no refresh token granted"}
	}
	return tok, nil
}

func (c *SearchConsoleClient) service(ctx context.Context, refreshToken string) (*searchconsole.Service, error) {
	ts := c.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = c.timeout
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	svc, err := searchconsole.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create search console service: %w", err)
	}
	return svc, nil
}

func (c *SearchConsoleClient) Query(ctx context.Context, refreshToken string, q PerformanceQuery) ([]models.PerformanceRow, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	svc, err := c.service(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Searchanalytics.Query(q.SiteURL, &searchconsole.SearchAnalyticsQueryRequest{
		StartDate:  q.StartDate,
		EndDate:    q.EndDate,
		Dimensions: q.Dimensions,
		RowLimit:   q.RowLimit,
	}).Context(ctx).Do()
	if err != nil {
		return nil, wrapGoogleError(err)
	}

	rows := make([]models.PerformanceRow, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		rows = append(rows, models.PerformanceRow{
			Keys:        r.Keys,
			Clicks:      r.Clicks,
			Impressions: r.Impressions,
			CTR:         r.Ctr,
			Position:    r.Position,
		})
	}
	return rows, nil
}

func (c *SearchConsoleClient) ListSites(ctx context.Context, refreshToken string) ([]models.GSCSite, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	svc, err := c.service(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Sites.List().Context(ctx).Do()
	if err != nil {
		return nil, wrapGoogleError(err)
	}

	sites := make([]models.GSCSite, 0, len(resp.SiteEntry))
	for _, s := range resp.SiteEntry {
		sites = append(sites, models.GSCSite{SiteURL: s.SiteUrl, PermissionLevel: s.PermissionLevel})
	}
	return sites, nil
}

// wrapGoogleError keeps the provider status of API and token errors.
func wrapGoogleError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &Error{Provider: providerGoogle, StatusCode: gerr.Code, Body: gerr.Message}
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		status := http.StatusBadGateway
		if rerr.Response != nil {
			status = rerr.Response.StatusCode
		}
		return &Error{Provider: providerGoogle, StatusCode: status, Body: string(rerr.Body)}
	}
	return err
}
