package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/zlnvch/seodash/models"
	"golang.org/x/sync/errgroup"
)

const (
	pageFetchTimeout = 25 * time.Second
	probeTimeout     = 10 * time.Second
	maxPageBytes     = 5 << 20
	userAgent        = "SeoDashBot/1.0 (+https://seodash.app/bot)"
)

type Fetcher struct {
	client    *http.Client
	converter *md.Converter
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: pageFetchTimeout},
		converter: md.NewConverter("", true, nil),
	}
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	return f.client.Do(req)
}

// FetchPage downloads one HTML document. Any transport failure or non-2xx
// status is reported as a *FetchError.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string) (Page, error) {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return Page{}, &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Page{}, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Page{}, &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: err}
	}

	return Page{URL: rawURL, StatusCode: resp.StatusCode, HTML: string(body)}, nil
}

// ToMarkdown renders fetched HTML as markdown so it can be scored like a
// generated article.
func (f *Fetcher) ToMarkdown(html string) (string, error) {
	out, err := f.converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return out, nil
}

// CheckAvailability probes the page, robots.txt and sitemap.xml concurrently.
// Probe failures are reported as false fields, never as errors. Certificate
// details are not inspected.
func (f *Fetcher) CheckAvailability(ctx context.Context, rawURL string) models.AvailabilityReport {
	report := models.AvailabilityReport{URL: rawURL}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return report
	}
	origin := u.Scheme + "://" + u.Host

	var g errgroup.Group

	g.Go(func() error {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		defer cancel()

		start := time.Now()
		resp, err := f.get(probeCtx, rawURL)
		if err != nil {
			return nil
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))

		report.ResponseTimeMs = time.Since(start).Milliseconds()
		report.StatusCode = resp.StatusCode
		report.Reachable = resp.StatusCode < http.StatusInternalServerError
		report.SSLValid = strings.EqualFold(u.Scheme, "https") && resp.TLS != nil
		return nil
	})

	g.Go(func() error {
		report.HasRobotsTxt = f.exists(ctx, origin+"/robots.txt")
		return nil
	})

	g.Go(func() error {
		report.HasSitemap = f.exists(ctx, origin+"/sitemap.xml")
		return nil
	})

	_ = g.Wait()
	return report
}

func (f *Fetcher) exists(ctx context.Context, rawURL string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	resp, err := f.get(probeCtx, rawURL)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode == http.StatusOK
}
