package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/zlnvch/seodash/analysis"
	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/reports"
	"github.com/zlnvch/seodash/store"
	"golang.org/x/sync/errgroup"
)

const (
	auditFetchConcurrency = 4
	defaultListLimit      = 50
	maxListLimit          = 200
)

type AuditRequest struct {
	SiteURL string   `json:"siteUrl"`
	Pages   []string `json:"pages"`
}

// auditTargets resolves the homepage plus any extra pages on the same host,
// deduplicated, homepage first, capped at maxPages.
func auditTargets(req AuditRequest, maxPages int) ([]string, error) {
	home, err := ValidateSiteURL("siteUrl", req.SiteURL)
	if err != nil {
		return nil, err
	}
	home.Path = "/"
	home.RawQuery = ""

	targets := []string{home.String()}
	seen := map[string]struct{}{home.String(): {}}

	for i, raw := range req.Pages {
		if len(targets) >= maxPages {
			break
		}
		ref, err := url.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, invalid(fmt.Sprintf("pages[%d]", i), "is not a valid url")
		}
		page := home.ResolveReference(ref)
		page.Fragment = ""
		if !strings.EqualFold(page.Hostname(), home.Hostname()) {
			return nil, invalid(fmt.Sprintf("pages[%d]", i), "must be on the audited site")
		}
		if _, ok := seen[page.String()]; ok {
			continue
		}
		seen[page.String()] = struct{}{}
		targets = append(targets, page.String())
	}
	return targets, nil
}

// RunSiteAudit fetches the site's pages, extracts signals, applies the rule
// list, scores the homepage and compares page signatures for duplication.
func (s *Service) RunSiteAudit(ctx context.Context, user models.User, req AuditRequest) (models.AuditRun, error) {
	settings, err := s.EffectiveSettings(ctx, user.Id)
	if err != nil {
		return models.AuditRun{}, err
	}

	targets, err := auditTargets(req, settings.AuditMaxPages)
	if err != nil {
		return models.AuditRun{}, err
	}

	// The homepage is mandatory; if it cannot be fetched the audit fails.
	home, err := s.Fetcher.FetchPage(ctx, targets[0])
	if err != nil {
		auditsRun.WithLabelValues("fetch_failed").Inc()
		return models.AuditRun{}, err
	}

	signals := make([]*models.PageSignal, len(targets))
	homeSignal := analysis.ExtractSignals(home.HTML, targets[0])
	signals[0] = &homeSignal

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(auditFetchConcurrency)
	for i := 1; i < len(targets); i++ {
		g.Go(func() error {
			page, err := s.Fetcher.FetchPage(gctx, targets[i])
			if err != nil {
				s.log(ctx).Warn(ctx, "audit page skipped", "url", targets[i], "error", err)
				return nil
			}
			signal := analysis.ExtractSignals(page.HTML, targets[i])
			signals[i] = &signal
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.AuditRun{}, err
	}

	pages := make([]models.PageSignal, 0, len(signals))
	signed := make([]analysis.SignedPage, 0, len(signals))
	for _, signal := range signals {
		if signal == nil {
			continue
		}
		pages = append(pages, *signal)
		signed = append(signed, analysis.SignedPage{Slug: signal.URL, Signature: signal.TextSignature})
	}

	issues := analysis.EvaluateRules(homeSignal, pages)

	id, err := newRecordId()
	if err != nil {
		return models.AuditRun{}, err
	}
	run := models.AuditRun{
		Id:          id,
		UserId:      user.Id,
		SiteURL:     targets[0],
		HealthScore: analysis.HealthScore(issues),
		Issues:      issues,
		Pages:       pages,
		Similarity:  analysis.CompareSignatures(signed),
		Created:     s.now().Unix(),
	}

	if err := s.Store.SaveAudit(ctx, run); err != nil {
		auditsRun.WithLabelValues("error").Inc()
		return models.AuditRun{}, err
	}

	auditsRun.WithLabelValues("ok").Inc()
	auditPages.Observe(float64(len(pages)))
	s.recordUsage(ctx, user.Id, models.UsageAuditsRun)
	s.log(ctx).Info(ctx, "audit completed", "user_id", user.Id, "audit_id", run.Id, "pages", len(pages), "health_score", run.HealthScore)
	return run, nil
}

func (s *Service) GetAudit(ctx context.Context, user models.User, id string) (models.AuditRun, error) {
	run, err := s.Store.GetAudit(ctx, user.Id, id)
	if err != nil {
		if errors.Is(err, store.ErrItemNotFound) {
			return models.AuditRun{}, ErrNotFound
		}
		return models.AuditRun{}, err
	}
	return run, nil
}

func (s *Service) ListAudits(ctx context.Context, user models.User, limit int) ([]models.AuditRun, error) {
	return s.Store.ListAudits(ctx, user.Id, clampLimit(limit))
}

// ExportAudit writes the audit as a JSON report to object storage and
// returns a short-lived download link.
func (s *Service) ExportAudit(ctx context.Context, user models.User, id string) (reports.Export, error) {
	if s.Reports == nil {
		return reports.Export{}, ErrFeatureDisabled
	}

	run, err := s.GetAudit(ctx, user, id)
	if err != nil {
		return reports.Export{}, err
	}

	export, err := s.Reports.ExportAudit(ctx, run)
	if err != nil {
		return reports.Export{}, fmt.Errorf("export audit: %w", err)
	}
	return export, nil
}

// CheckAvailability probes a site's reachability, robots.txt and sitemap.
func (s *Service) CheckAvailability(ctx context.Context, rawURL string) (models.AvailabilityReport, error) {
	u, err := ValidateSiteURL("url", rawURL)
	if err != nil {
		return models.AvailabilityReport{}, err
	}
	return s.Fetcher.CheckAvailability(ctx, u.String()), nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
