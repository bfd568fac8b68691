package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zlnvch/seodash/api/rest"
	"github.com/zlnvch/seodash/logging"
	"github.com/zlnvch/seodash/service"
	"github.com/zlnvch/seodash/upstream"
	"github.com/zlnvch/seodash/worker"
)

const usageFlushMilliseconds = 30000

type Options struct {
	AllowedOrigin      string
	RateLimitPerSecond int
	RateLimitBurst     int
	// TrustedProxies lists proxy IPs or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string
}

type DashboardAPI struct {
	restHandler *rest.Handler
	registry    *prometheus.Registry
	metrics     *httpMetrics
	limiter     *ipLimiter
	proxies     trustedProxies
	logger      logging.Logger
	options     Options
}

// NewDashboardAPI starts the background workers, builds the service and
// returns the HTTP surface. Workers stop when shutdownCtx is cancelled.
func NewDashboardAPI(deps service.Deps, options Options, shutdownCtx context.Context) (*DashboardAPI, error) {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}

	proxies, err := parseTrustedProxies(options.TrustedProxies)
	if err != nil {
		return nil, err
	}

	if deps.UsageBatcher == nil {
		deps.UsageBatcher = worker.NewUsageBatcher(deps.Store, deps.Logger, usageFlushMilliseconds)
		go deps.UsageBatcher.Run(shutdownCtx)
	}

	if deps.PurgeQueue != nil {
		mqConsumer := worker.NewMQConsumer(deps.PurgeQueue, deps.Store, deps.Cache, deps.Logger)
		go mqConsumer.Run(shutdownCtx)
	}

	svc, err := service.NewService(deps)
	if err != nil {
		deps.Logger.Error(shutdownCtx, "failed to create service", "error", err)
		return nil, err
	}

	registry := prometheus.NewRegistry()
	metrics := newHTTPMetrics()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	registry.MustRegister(metrics.collectors()...)
	registry.MustRegister(upstream.Collectors()...)
	registry.MustRegister(service.Collectors()...)

	limiter := newIPLimiter(options.RateLimitPerSecond, options.RateLimitBurst)
	go limiter.sweep(shutdownCtx)

	return &DashboardAPI{
		restHandler: rest.NewHandler(svc),
		registry:    registry,
		metrics:     metrics,
		limiter:     limiter,
		proxies:     proxies,
		logger:      deps.Logger,
		options:     options,
	}, nil
}

// Service exposes the wired service, for the CLI's dev helpers.
func (a *DashboardAPI) Service() *service.Service {
	return a.restHandler.Service
}

func (a *DashboardAPI) RegisterRoutes(mux *http.ServeMux) {
	// Health check endpoint (no auth required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	h := a.restHandler
	mux.HandleFunc("/api/me", h.HandleMe)

	mux.HandleFunc("/api/secrets", h.HandleSecrets)
	mux.HandleFunc("/api/secrets/{key}", h.HandleSecret)
	mux.HandleFunc("/api/secrets/{key}/reveal", h.HandleRevealSecret)

	mux.HandleFunc("/api/audits", h.HandleAudits)
	mux.HandleFunc("/api/audits/{id}", h.HandleAudit)
	mux.HandleFunc("/api/audits/{id}/export", h.HandleExportAudit)
	mux.HandleFunc("/api/availability", h.HandleAvailability)

	mux.HandleFunc("/api/content/generate", h.HandleGenerateContent)
	mux.HandleFunc("/api/content/score", h.HandleScoreContent)
	mux.HandleFunc("/api/content/similarity", h.HandleSimilarity)
	mux.HandleFunc("/api/content/articles", h.HandleArticles)
	mux.HandleFunc("/api/content/articles/{id}", h.HandleArticle)

	mux.HandleFunc("/api/keywords/research", h.HandleKeywordResearch)
	mux.HandleFunc("/api/keywords/serp", h.HandleSERP)
	mux.HandleFunc("/api/keywords/domain", h.HandleDomainOverview)
	mux.HandleFunc("/api/keywords/history", h.HandleKeywordHistory)

	mux.HandleFunc("/api/gsc/connect", h.HandleGSCConnect)
	mux.HandleFunc("/api/gsc/performance", h.HandleGSCPerformance)
	mux.HandleFunc("/api/gsc/sites", h.HandleGSCSites)

	mux.HandleFunc("/api/cloudflare/zones", h.HandleCloudflareZones)
	mux.HandleFunc("/api/cloudflare/zones/{id}/dns", h.HandleCloudflareDNS)
	mux.HandleFunc("/api/cloudflare/zones/{id}/purge", h.HandleCloudflarePurge)

	mux.HandleFunc("/api/settings", h.HandleSettings)
}

// Handler wraps mux in the middleware chain: request id, logging, metrics,
// CORS, body limit, then the per-IP rate limit.
func (a *DashboardAPI) Handler(mux *http.ServeMux) http.Handler {
	var handler http.Handler = mux
	handler = RateLimit(handler, a.limiter, a.proxies)
	handler = MaxBodyBytes(handler, maxBodyBytes)
	handler = CORS(handler, a.options.AllowedOrigin)
	handler = Metrics(handler, a.metrics, mux)
	handler = Logging(handler, a.logger)
	handler = RequestID(handler, a.logger)
	return handler
}
