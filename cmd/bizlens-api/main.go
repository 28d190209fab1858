package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bizlens/bizlens/internal/api"
	"github.com/bizlens/bizlens/internal/api/uistatic"
	"github.com/bizlens/bizlens/internal/assistant"
	"github.com/bizlens/bizlens/internal/auth"
	"github.com/bizlens/bizlens/internal/config"
	"github.com/bizlens/bizlens/internal/demo/seed"
	"github.com/bizlens/bizlens/internal/nl2sql"
	"github.com/bizlens/bizlens/internal/observability"
	"github.com/bizlens/bizlens/internal/prompt"
	"github.com/bizlens/bizlens/internal/query"
	duckdbengine "github.com/bizlens/bizlens/internal/query/duckdb"
	"github.com/bizlens/bizlens/internal/query/postgres"
	s3store "github.com/bizlens/bizlens/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("bizlens-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	ctx := context.Background()

	executor, readiness, closeWarehouse, err := openWarehouse(ctx, cfg)
	if err != nil {
		logger.Error("failed to open warehouse", slog.String("backend", string(cfg.Warehouse.Backend)), slog.Any("error", err))
		os.Exit(1)
	}
	defer closeWarehouse()

	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize sql generator", slog.Any("error", err))
		os.Exit(1)
	}

	coordinator, err := assistant.NewCoordinator(executor, logger)
	if err != nil {
		logger.Error("failed to initialize execution coordinator", slog.Any("error", err))
		os.Exit(1)
	}
	var cache assistant.OutcomeCache
	if cfg.Cache.Enabled {
		cache = assistant.NewMemoryCache(cfg.Cache.MaxEntries)
	}
	pipeline, err := assistant.NewPipeline(prompt.NewBuilder(), generator, coordinator, cache, logger)
	if err != nil {
		logger.Error("failed to initialize query pipeline", slog.Any("error", err))
		os.Exit(1)
	}

	examples := api.DefaultExamples()
	deps := api.Dependencies{
		Logger:    logger,
		Assistant: pipeline,
		Examples:  examples,
		UI:        uistatic.Handler(examples),
		Readiness: api.CombineReadinessChecks(
			api.CheckWarehouseConfig(cfg),
			readiness,
		),
		DependencyTimeout: 2 * time.Second,
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("warehouse", string(cfg.Warehouse.Backend)),
			slog.String("ai_provider", string(cfg.AI.Provider)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}

func openWarehouse(ctx context.Context, cfg config.Config) (query.Executor, api.ReadinessCheck, func(), error) {
	switch cfg.Warehouse.Backend {
	case config.BackendDuckDB:
		store, err := s3store.New(ctx, s3store.Config{
			Endpoint:         cfg.ObjectStore.Endpoint,
			Region:           cfg.ObjectStore.Region,
			Bucket:           cfg.ObjectStore.Bucket,
			AccessKeyID:      cfg.ObjectStore.AccessKeyID,
			SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
			UseSSL:           cfg.ObjectStore.UseSSL,
			Prefix:           cfg.ObjectStore.Prefix,
			AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		tables, err := duckdbengine.DatasetTables(cfg.ObjectStore.Dataset, seed.TableProducts, seed.TableCustomers, seed.TableSales)
		if err != nil {
			return nil, nil, nil, err
		}
		keys := make([]string, 0, len(tables))
		for _, table := range tables {
			keys = append(keys, table.ObjectPath)
		}
		readiness := func(ctx context.Context) error { return store.CheckObjects(ctx, keys...) }
		return duckdbengine.NewExecutor(store, tables), readiness, func() {}, nil
	default:
		db, err := postgres.Open(ctx, postgres.DBConfig{
			DSN:             cfg.Warehouse.DSN,
			MaxOpenConns:    cfg.Warehouse.MaxOpenConns,
			MaxIdleConns:    cfg.Warehouse.MaxIdleConns,
			ConnMaxIdleTime: cfg.Warehouse.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Warehouse.ConnMaxLifetime,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		executor := postgres.NewExecutor(db)
		return executor, executor.HealthCheck, func() { _ = db.Close() }, nil
	}
}

func newGenerator(ctx context.Context, cfg config.Config) (nl2sql.Generator, error) {
	var generator nl2sql.Generator
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		gemini, err := nl2sql.NewGeminiGenerator(ctx, nl2sql.GeminiConfig{
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
			BaseURL:     cfg.AI.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		generator = gemini
	case config.ProviderOpenAI:
		openAI, err := nl2sql.NewOpenAIGenerator(nl2sql.OpenAIConfig{
			BaseURL:     cfg.AI.BaseURL,
			APIKey:      cfg.AI.APIKey,
			Model:       cfg.AI.Model,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		})
		if err != nil {
			return nil, err
		}
		generator = openAI
	default:
		return nil, fmt.Errorf("unsupported ai provider %q", cfg.AI.Provider)
	}
	return nl2sql.NewRateLimited(generator, cfg.AI.RateLimit, cfg.AI.Burst), nil
}
