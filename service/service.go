package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/zlnvch/seodash/cache"
	"github.com/zlnvch/seodash/logging"
	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/mq"
	"github.com/zlnvch/seodash/reports"
	"github.com/zlnvch/seodash/store"
	"github.com/zlnvch/seodash/upstream"
	"github.com/zlnvch/seodash/vault"
	"github.com/zlnvch/seodash/worker"
)

// Deps is everything the service needs. SearchConsole and Reports may be nil
// when the server runs without Google OAuth or an export bucket; the matching
// operations then fail with ErrFeatureDisabled.
type Deps struct {
	Store         store.DashboardStore
	Cache         cache.DashboardCache
	PurgeQueue    mq.MessageQueue
	UsageBatcher  *worker.UsageBatcher
	Vault         *vault.Vault
	KeywordData   upstream.KeywordData
	LLM           upstream.LLM
	SearchConsole upstream.SearchConsole
	CDN           upstream.CDN
	Fetcher       upstream.SiteFetcher
	Reports       reports.Exporter
	Defaults      models.Settings
	Logger        logging.Logger

	JWTSecret            []byte
	DailyGenerationLimit int
}

type Service struct {
	Store         store.DashboardStore
	Cache         cache.DashboardCache
	PurgeQueue    mq.MessageQueue
	UsageBatcher  *worker.UsageBatcher
	Vault         *vault.Vault
	KeywordData   upstream.KeywordData
	LLM           upstream.LLM
	SearchConsole upstream.SearchConsole
	CDN           upstream.CDN
	Fetcher       upstream.SiteFetcher
	Reports       reports.Exporter
	Defaults      models.Settings
	Logger        logging.Logger

	JWTSecret            []byte
	DailyGenerationLimit int

	now func() time.Time
}

func NewService(deps Deps) (*Service, error) {
	if deps.Vault == nil {
		return nil, vault.ErrMissingMasterKey
	}
	if len(deps.JWTSecret) == 0 {
		return nil, errors.New("auth jwt secret is not configured")
	}
	if deps.Store == nil || deps.Cache == nil || deps.PurgeQueue == nil || deps.UsageBatcher == nil {
		return nil, errors.New("store, cache, purge queue and usage batcher are required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}

	return &Service{
		Store:                deps.Store,
		Cache:                deps.Cache,
		PurgeQueue:           deps.PurgeQueue,
		UsageBatcher:         deps.UsageBatcher,
		Vault:                deps.Vault,
		KeywordData:          deps.KeywordData,
		LLM:                  deps.LLM,
		SearchConsole:        deps.SearchConsole,
		CDN:                  deps.CDN,
		Fetcher:              deps.Fetcher,
		Reports:              deps.Reports,
		Defaults:             deps.Defaults,
		Logger:               deps.Logger,
		JWTSecret:            deps.JWTSecret,
		DailyGenerationLimit: deps.DailyGenerationLimit,
		now:                  time.Now,
	}, nil
}

// SetClock replaces the time source. Tests only.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// today is the UTC calendar day used for quotas and usage counters.
func (s *Service) today() string {
	return s.now().UTC().Format("2006-01-02")
}

// newRecordId returns a time-ordered id so store listings sort by creation.
func newRecordId() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *Service) recordUsage(ctx context.Context, userId, metric string) {
	s.UsageBatcher.Record(ctx, worker.UsageUpdate{UserId: userId, Day: s.today(), Metric: metric, Delta: 1})
}

// log prefers the request-scoped logger so lines carry the request id.
func (s *Service) log(ctx context.Context) logging.Logger {
	return logging.FromContext(ctx, s.Logger)
}
