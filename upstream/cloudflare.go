package upstream

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zlnvch/seodash/models"
)

const (
	DefaultCloudflareBaseURL = "https://api.cloudflare.com/client/v4"
	cloudflareTimeout        = 30 * time.Second
	providerCloudflare       = "cloudflare"
)

type CloudflareClient struct {
	client  *http.Client
	baseURL string
	limiter *RateLimiter
}

func NewCloudflareClient(baseURL string) *CloudflareClient {
	if baseURL == "" {
		baseURL = DefaultCloudflareBaseURL
	}
	return &CloudflareClient{
		client:  &http.Client{Timeout: cloudflareTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: NewRateLimiter(4, 8),
	}
}

type cloudflareEnvelope[T any] struct {
	Success bool `json:"success"`
	Errors  []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
	Result T `json:"result"`
}

func cloudflareCall[T any](ctx context.Context, c *CloudflareClient, apiToken, method, path string, body []byte) (T, error) {
	var zero T

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiToken)
	req.Header.Set("Content-Type", "application/json")

	var env cloudflareEnvelope[T]
	if err := doJSON(ctx, c.client, c.limiter, providerCloudflare, req, &env); err != nil {
		return zero, err
	}
	if !env.Success {
		msg := "request unsuccessful"
		if len(env.Errors) > 0 {
			msg = env.Errors[0].Message
		}
		return zero, &Error{Provider: providerCloudflare, StatusCode: http.StatusBadGateway, Body: msg}
	}
	return env.Result, nil
}

type cloudflareZone struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
	Paused bool   `json:"paused"`
}

func (c *CloudflareClient) ListZones(ctx context.Context, apiToken string) ([]models.Zone, error) {
	zones, err := cloudflareCall[[]cloudflareZone](ctx, c, apiToken, http.MethodGet, "/zones?per_page=50", nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.Zone, 0, len(zones))
	for _, z := range zones {
		out = append(out, models.Zone{Id: z.Id, Name: z.Name, Status: z.Status, Paused: z.Paused})
	}
	return out, nil
}

type cloudflareDNSRecord struct {
	Id      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Proxied bool   `json:"proxied"`
	TTL     int    `json:"ttl"`
}

func (c *CloudflareClient) ListDNSRecords(ctx context.Context, apiToken string, zoneID string) ([]models.DNSRecord, error) {
	path := "/zones/" + url.PathEscape(zoneID) + "/dns_records?per_page=100"
	records, err := cloudflareCall[[]cloudflareDNSRecord](ctx, c, apiToken, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	out := make([]models.DNSRecord, 0, len(records))
	for _, r := range records {
		out = append(out, models.DNSRecord{Id: r.Id, Type: r.Type, Name: r.Name, Content: r.Content, Proxied: r.Proxied, TTL: r.TTL})
	}
	return out, nil
}

func (c *CloudflareClient) PurgeCache(ctx context.Context, apiToken string, zoneID string) error {
	path := "/zones/" + url.PathEscape(zoneID) + "/purge_cache"
	_, err := cloudflareCall[struct {
		Id string `json:"id"`
	}](ctx, c, apiToken, http.MethodPost, path, []byte(`{"purge_everything":true}`))
	return err
}
