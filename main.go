package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zlnvch/seodash/api"
	"github.com/zlnvch/seodash/cache/redis"
	"github.com/zlnvch/seodash/config"
	"github.com/zlnvch/seodash/logging"
	"github.com/zlnvch/seodash/mq/sqsmq"
	"github.com/zlnvch/seodash/reports"
	"github.com/zlnvch/seodash/service"
	"github.com/zlnvch/seodash/store"
	"github.com/zlnvch/seodash/store/dynamo"
	"github.com/zlnvch/seodash/store/postgres"
	"github.com/zlnvch/seodash/upstream"
	"github.com/zlnvch/seodash/vault"
)

const shutdownTimeout = 15 * time.Second

var (
	hostPort      string
	storeBackend  string
	allowedOrigin string
	devMode       bool

	tokenUserId string
	tokenEmail  string
	tokenTTL    time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "seodash",
	Short:         "SEO dashboard backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply postgres schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.FromEnv()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		pgStore, err := postgres.NewPostgresDashboardStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer pgStore.Close()

		if err := pgStore.Migrate(ctx); err != nil {
			return err
		}
		cmd.Println("migrations applied")
		return nil
	},
}

var devTokenCmd = &cobra.Command{
	Use:   "dev-token",
	Short: "Mint a bearer token signed with AUTH_JWT_SECRET for local testing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.FromEnv()
		if err != nil {
			return err
		}
		if len(cfg.AuthJWTSecret) == 0 {
			return errors.New("AUTH_JWT_SECRET is required")
		}

		token, err := service.IssueToken(cfg.AuthJWTSecret, time.Now(), tokenUserId, tokenEmail, tokenTTL)
		if err != nil {
			return err
		}
		cmd.Println(token)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&hostPort, "port", "", "Port to listen on (overrides HOST_PORT)")
	serveCmd.Flags().StringVar(&storeBackend, "store", "", "Store backend: postgres or dynamodb (overrides STORE_BACKEND)")
	serveCmd.Flags().StringVar(&allowedOrigin, "allowed-origin", "", "Dashboard origin allowed by CORS (overrides ALLOWED_ORIGIN)")
	serveCmd.Flags().BoolVar(&devMode, "dev", false, "Use local endpoints and text logs")

	devTokenCmd.Flags().StringVar(&tokenUserId, "user", "dev-user", "Subject of the token")
	devTokenCmd.Flags().StringVar(&tokenEmail, "email", "dev@example.com", "Email claim of the token")
	devTokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")

	rootCmd.AddCommand(serveCmd, migrateCmd, devTokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.HostPort = hostPort
	}
	if flags.Changed("store") {
		cfg.StoreBackend = storeBackend
	}
	if flags.Changed("allowed-origin") {
		cfg.AllowedOrigin = allowedOrigin
	}
	if flags.Changed("dev") {
		cfg.DevMode = devMode
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.DashboardStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendDynamoDB:
		dynamoStore, err := dynamo.NewDynamoDashboardStore(ctx, cfg.DevMode, cfg.DynamoDBEndpoint, cfg.DynamoDBTable)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create dynamodb store: %w", err)
		}
		return dynamoStore, func() {}, nil
	default:
		pgStore, err := postgres.NewPostgresDashboardStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create postgres store: %w", err)
		}
		return pgStore, func() { pgStore.Close() }, nil
	}
}

func serve(cfg *config.Config) error {
	ctx := context.Background()
	logger := logging.New(os.Stdout, cfg.DevMode)

	dashboardStore, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	purgeQueue, err := sqsmq.NewSQSMessageQueue(ctx, cfg.DevMode, cfg.SQSEndpoint, cfg.SQSPurgeQueue)
	if err != nil {
		return fmt.Errorf("failed to create SQS MQ: %w", err)
	}

	dashboardCache, err := redis.NewRedisDashboardCache(ctx, cfg.DevMode, cfg.RedisEndpoint)
	if err != nil {
		return fmt.Errorf("failed to create redis cache: %w", err)
	}
	defer dashboardCache.Close()

	secretVault, err := vault.New(cfg.VaultMasterKey)
	if err != nil {
		return err
	}

	defaults, err := config.DefaultSettings()
	if err != nil {
		return err
	}

	deps := service.Deps{
		Store:                dashboardStore,
		Cache:                dashboardCache,
		PurgeQueue:           purgeQueue,
		Vault:                secretVault,
		KeywordData:          upstream.NewDataForSEOClient(cfg.DataForSEOBaseURL),
		LLM:                  upstream.NewOpenAIClient(cfg.OpenAIBaseURL),
		CDN:                  upstream.NewCloudflareClient(cfg.CloudflareBaseURL),
		Fetcher:              upstream.NewFetcher(),
		Defaults:             defaults,
		Logger:               logger,
		JWTSecret:            cfg.AuthJWTSecret,
		DailyGenerationLimit: cfg.DailyGenerationLimit,
	}

	if cfg.GoogleClientID != "" {
		deps.SearchConsole = upstream.NewSearchConsoleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GSCRedirectURL)
	} else {
		logger.Warn(ctx, "GOOGLE_CLIENT_ID not set, search console disabled")
	}

	if cfg.ReportsBucket != "" {
		exporter, err := reports.NewS3Exporter(ctx, cfg.DevMode, cfg.S3Endpoint, cfg.S3Region, cfg.ReportsBucket)
		if err != nil {
			return fmt.Errorf("failed to create report exporter: %w", err)
		}
		deps.Reports = exporter
	}

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	dashboardAPI, err := api.NewDashboardAPI(deps, api.Options{
		AllowedOrigin:      cfg.AllowedOrigin,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
		TrustedProxies:     cfg.TrustedProxies,
	}, shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to create dashboard api: %w", err)
	}

	mux := http.NewServeMux()
	dashboardAPI.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + cfg.HostPort,
		Handler:           dashboardAPI.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info(ctx, "starting server", "port", cfg.HostPort, "store", cfg.StoreBackend)
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-shutdownCtx.Done():
	}

	logger.Info(ctx, "server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(ctx)
}
