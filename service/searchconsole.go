package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/upstream"
)

const (
	maxGSCRowLimit     = 25000
	defaultGSCRowLimit = 1000
)

var allowedGSCDimensions = map[string]struct{}{
	"query":   {},
	"page":    {},
	"country": {},
	"device":  {},
	"date":    {},
}

type PerformanceRequest struct {
	SiteURL    string   `json:"siteUrl"`
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions"`
	RowLimit   int64    `json:"rowLimit"`
}

type ConnectURL struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// SearchConsoleAuthURL returns the Google consent URL the browser should
// open to grant offline Search Console access.
func (s *Service) SearchConsoleAuthURL() (ConnectURL, error) {
	if s.SearchConsole == nil {
		return ConnectURL{}, ErrFeatureDisabled
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ConnectURL{}, err
	}
	state := hex.EncodeToString(b)
	return ConnectURL{URL: s.SearchConsole.AuthCodeURL(state), State: state}, nil
}

// ConnectSearchConsole exchanges an authorization code and keeps only the
// refresh token, encrypted like any other secret.
func (s *Service) ConnectSearchConsole(ctx context.Context, user models.User, code string) error {
	if s.SearchConsole == nil {
		return ErrFeatureDisabled
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return invalid("code", "is required")
	}

	token, err := s.SearchConsole.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("search console exchange: %w", err)
	}
	if token.RefreshToken == "" {
		return invalid("code", "did not grant offline access")
	}

	if _, err := s.SetSecret(ctx, user, SecretGSCRefreshToken, token.RefreshToken); err != nil {
		return err
	}
	s.log(ctx).Info(ctx, "search console connected", "user_id", user.Id)
	return nil
}

func (s *Service) SearchPerformance(ctx context.Context, user models.User, req PerformanceRequest) ([]models.PerformanceRow, error) {
	if s.SearchConsole == nil {
		return nil, ErrFeatureDisabled
	}
	if strings.TrimSpace(req.SiteURL) == "" {
		return nil, invalid("siteUrl", "is required")
	}
	// Domain properties look like "sc-domain:example.com".
	if domain, ok := strings.CutPrefix(req.SiteURL, "sc-domain:"); ok {
		if _, err := ValidateDomain("siteUrl", domain); err != nil {
			return nil, err
		}
	} else if _, err := ValidateSiteURL("siteUrl", req.SiteURL); err != nil {
		return nil, err
	}

	start, err := validateDate("startDate", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := validateDate("endDate", req.EndDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, invalid("endDate", "must not be before startDate")
	}

	dimensions := req.Dimensions
	if len(dimensions) == 0 {
		dimensions = []string{"query"}
	}
	for i, d := range dimensions {
		if _, ok := allowedGSCDimensions[d]; !ok {
			return nil, invalid(fmt.Sprintf("dimensions[%d]", i), "is not a supported dimension")
		}
	}

	rowLimit := req.RowLimit
	if rowLimit == 0 {
		rowLimit = defaultGSCRowLimit
	}
	if rowLimit < 1 || rowLimit > maxGSCRowLimit {
		return nil, invalid("rowLimit", fmt.Sprintf("must be between 1 and %d", maxGSCRowLimit))
	}

	refreshToken, err := s.requireSecret(ctx, user.Id, SecretGSCRefreshToken)
	if err != nil {
		return nil, err
	}

	return s.SearchConsole.Query(ctx, refreshToken, upstream.PerformanceQuery{
		SiteURL:    req.SiteURL,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Dimensions: dimensions,
		RowLimit:   rowLimit,
	})
}

func (s *Service) ListSearchConsoleSites(ctx context.Context, user models.User) ([]models.GSCSite, error) {
	if s.SearchConsole == nil {
		return nil, ErrFeatureDisabled
	}
	refreshToken, err := s.requireSecret(ctx, user.Id, SecretGSCRefreshToken)
	if err != nil {
		return nil, err
	}
	return s.SearchConsole.ListSites(ctx, refreshToken)
}
