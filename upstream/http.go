package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const maxResponseBytes = 10 << 20

var upstreamRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "seodash_upstream_requests_total",
		Help: "Outbound provider requests by provider and status.",
	},
	[]string{"provider", "status"},
)

var upstreamDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "seodash_upstream_request_duration_seconds",
		Help:    "Outbound provider latency in seconds.",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"provider"},
)

// Collectors returns the metrics this package records, for registration.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{upstreamRequests, upstreamDuration}
}

// doJSON sends req, maps non-2xx responses to *Error and decodes the body
// into out when out is non-nil.
func doJSON(ctx context.Context, client *http.Client, limiter *RateLimiter, provider string, req *http.Request, out any) error {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
	}

	start := time.Now()
	resp, err := client.Do(req.WithContext(ctx))
	upstreamDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		upstreamRequests.WithLabelValues(provider, "error").Inc()
		return fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer resp.Body.Close()
	upstreamRequests.WithLabelValues(provider, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s read response: %w", provider, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests && limiter != nil {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		limiter.RecordRateLimitError(retryAfter)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Provider: provider, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s decode response: %w", provider, err)
	}
	return nil
}
