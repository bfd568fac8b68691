package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	cachemocks "github.com/zlnvch/seodash/cache/mocks"
	"github.com/zlnvch/seodash/config"
	"github.com/zlnvch/seodash/logging"
	"github.com/zlnvch/seodash/models"
	mqmocks "github.com/zlnvch/seodash/mq/mocks"
	reportsmocks "github.com/zlnvch/seodash/reports/mocks"
	"github.com/zlnvch/seodash/service"
	"github.com/zlnvch/seodash/store"
	storemocks "github.com/zlnvch/seodash/store/mocks"
	upstreammocks "github.com/zlnvch/seodash/upstream/mocks"
	"github.com/zlnvch/seodash/vault"
	"github.com/zlnvch/seodash/worker"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const testDay = "2026-03-01"

type testDeps struct {
	store         *storemocks.MockStore
	cache         *cachemocks.MockCache
	mq            *mqmocks.MockMQ
	usage         *worker.UsageBatcher
	vault         *vault.Vault
	keywordData   *upstreammocks.MockKeywordData
	llm           *upstreammocks.MockLLM
	searchConsole *upstreammocks.MockSearchConsole
	cdn           *upstreammocks.MockCDN
	fetcher       *upstreammocks.MockSiteFetcher
	reports       *reportsmocks.MockExporter
}

func setupService(t *testing.T) (*service.Service, *testDeps) {
	v, err := vault.New("test-master-secret")
	require.NoError(t, err)

	defaults, err := config.DefaultSettings()
	require.NoError(t, err)

	deps := &testDeps{
		store:         new(storemocks.MockStore),
		cache:         new(cachemocks.MockCache),
		mq:            new(mqmocks.MockMQ),
		vault:         v,
		keywordData:   new(upstreammocks.MockKeywordData),
		llm:           new(upstreammocks.MockLLM),
		searchConsole: new(upstreammocks.MockSearchConsole),
		cdn:           new(upstreammocks.MockCDN),
		fetcher:       new(upstreammocks.MockSiteFetcher),
		reports:       new(reportsmocks.MockExporter),
	}
	// The batcher is real but never run; tests read updates off its channel.
	deps.usage = worker.NewUsageBatcher(deps.store, logging.Discard(), 1000)

	svc, err := service.NewService(service.Deps{
		Store:                deps.store,
		Cache:                deps.cache,
		PurgeQueue:           deps.mq,
		UsageBatcher:         deps.usage,
		Vault:                v,
		KeywordData:          deps.keywordData,
		LLM:                  deps.llm,
		SearchConsole:        deps.searchConsole,
		CDN:                  deps.cdn,
		Fetcher:              deps.fetcher,
		Reports:              deps.reports,
		Defaults:             defaults,
		JWTSecret:            []byte("secret"),
		DailyGenerationLimit: 5,
	})
	require.NoError(t, err)
	svc.SetClock(func() time.Time { return fixedNow })

	return svc, deps
}

// encryptedSecret builds the stored form of a credential.
func encryptedSecret(t *testing.T, deps *testDeps, userId, keyName, plaintext string) models.Secret {
	payload, err := deps.vault.Encrypt(plaintext)
	require.NoError(t, err)
	return models.Secret{UserId: userId, KeyName: keyName, EncryptedPayload: payload, Updated: fixedNow.Unix()}
}

func withSecret(t *testing.T, deps *testDeps, userId, keyName, plaintext string) {
	deps.store.On("GetSecret", mock.Anything, userId, keyName).Return(encryptedSecret(t, deps, userId, keyName, plaintext), nil)
}

func withoutSecret(deps *testDeps, userId, keyName string) {
	deps.store.On("GetSecret", mock.Anything, userId, keyName).Return(models.Secret{}, store.ErrItemNotFound)
}

func withDefaultSettings(deps *testDeps, userId string) {
	deps.store.On("GetSettings", mock.Anything, userId).Return(models.SettingsOverrides{}, nil)
}

// nextUsage returns the next queued usage update, failing if none arrives.
func nextUsage(t *testing.T, deps *testDeps) worker.UsageUpdate {
	select {
	case u := <-deps.usage.UpdateCh:
		return u
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for usage update")
		return worker.UsageUpdate{}
	}
}
