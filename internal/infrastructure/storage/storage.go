package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/orderdesk/internal/config"
	"github.com/fastygo/orderdesk/internal/infrastructure/postgres"
	"github.com/fastygo/orderdesk/internal/infrastructure/redis"
	"github.com/fastygo/orderdesk/repository"
	"github.com/fastygo/orderdesk/repository/boltdb"
	pgsink "github.com/fastygo/orderdesk/repository/postgres"
	redissink "github.com/fastygo/orderdesk/repository/redis"
	s3sink "github.com/fastygo/orderdesk/repository/s3"
	"github.com/fastygo/orderdesk/repository/sqlite"
)

// Open connects the sink selected by cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Sink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver := cfg.Storage.Driver
	logger = logger.With(zap.String("driver", driver))

	var (
		sink repository.Sink
		err  error
	)
	switch driver {
	case config.DriverSQLite:
		sink, err = sqlite.Open(cfg.Storage.SQLitePath)
	case config.DriverBolt:
		sink, err = boltdb.Open(cfg.Storage.BoltPath)
	case config.DriverPostgres:
		sink, err = openPostgres(ctx, cfg, logger)
	case config.DriverRedis:
		client, cerr := redis.NewClient(ctx, cfg.Redis)
		if cerr != nil {
			return nil, fmt.Errorf("open redis sink: %w", cerr)
		}
		sink = redissink.NewSink(client, cfg.Redis.KeyPrefix)
	case config.DriverS3:
		sink, err = s3sink.New(ctx, s3sink.Config{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKey,
			SecretAccessKey: cfg.S3.SecretKey,
			PathStyle:       cfg.S3.UsePathStyle,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s sink: %w", driver, err)
	}

	logger.Info("storage sink ready")
	return sink, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.Sink, error) {
	if err := postgres.RunMigrations(cfg, logger); err != nil {
		return nil, err
	}
	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return pgsink.NewSink(pool, cfg.Storage.BatchSize), nil
}
