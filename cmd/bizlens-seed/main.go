package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bizlens/bizlens/internal/config"
	"github.com/bizlens/bizlens/internal/demo/seed"
	"github.com/bizlens/bizlens/internal/observability"
	"github.com/bizlens/bizlens/internal/query/postgres"
	s3store "github.com/bizlens/bizlens/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("bizlens-seed")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stdout)

	seedCfg, err := seed.LoadConfigFromEnv(os.LookupEnv)
	if err != nil {
		logger.Error("failed to load seed config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dataset := seed.NewGenerator(seedCfg.Seed).Generate(seedCfg)
	logger.Info("generated demo dataset",
		slog.Int64("seed", seedCfg.Seed),
		slog.Int("products", len(dataset.Products)),
		slog.Int("customers", len(dataset.Customers)),
		slog.Int("sales", len(dataset.Sales)),
	)

	if seedCfg.HasTarget(seed.TargetPostgres) {
		if err := seedPostgres(ctx, cfg, dataset); err != nil {
			logger.Error("failed to seed postgres warehouse", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("seeded postgres warehouse")
	}

	if seedCfg.HasTarget(seed.TargetParquet) {
		if err := seedParquet(ctx, cfg, dataset, logger); err != nil {
			logger.Error("failed to publish parquet dataset", slog.Any("error", err))
			os.Exit(1)
		}
	}
}

func seedPostgres(ctx context.Context, cfg config.Config, dataset seed.Dataset) error {
	db, err := postgres.Open(ctx, postgres.DBConfig{DSN: cfg.Warehouse.DSN})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return seed.WritePostgres(ctx, db, dataset)
}

func seedParquet(ctx context.Context, cfg config.Config, dataset seed.Dataset, logger *slog.Logger) error {
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
		return err
	}
	files, err := seed.EncodeParquet(dataset)
	if err != nil {
		return err
	}
	written, err := seed.Publish(ctx, store, cfg.ObjectStore.Dataset, files)
	if err != nil {
		return err
	}
	for _, object := range written {
		logger.Info("published table snapshot", slog.String("key", object.Key), slog.Int64("size_bytes", object.Size))
	}
	return nil
}
