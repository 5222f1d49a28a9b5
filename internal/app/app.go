// Package app wires configuration into stores, locks and services for the binaries.
package app

import (
	"context"
	"fmt"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/archive"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/config"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/lock"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories/memory"
	mongorepo "github.com/Aaditya88888/netwin-tournament-sub001/internal/repositories/mongodb"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/services"
	mongodb "github.com/Aaditya88888/netwin-tournament-sub001/pkg/mongodb"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"
)

// CloseFunc releases a resource opened during startup
type CloseFunc func(ctx context.Context) error

// Services holds every settlement service built from one store
type Services struct {
	Settings     services.SettlementSettingsService
	Wallet       services.WalletService
	Reconciler   services.ReconciliationService
	Funding      services.FundingService
	Distribution services.PrizeDistributionService
}

// OpenStore connects the configured store and returns its repositories
func OpenStore(ctx context.Context, cfg *config.Config) (*repositories.Repositories, CloseFunc, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		slog.Warn("Using in-memory store; data is lost on restart")
		return memory.NewStore().Repositories(), func(context.Context) error { return nil }, nil
	}

	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.ConnectTimeout)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	db := client.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}
	slog.Info("Connected to MongoDB", "database", cfg.MongoDB.Database)
	return mongorepo.NewRepositories(client.Mongo(), db), client.Disconnect, nil
}

// NewLocker returns a Redis locker when Redis is configured and an in-process one otherwise
func NewLocker(ctx context.Context, cfg *config.Config) (lock.Locker, CloseFunc, error) {
	if cfg.Redis.Addr == "" {
		slog.Warn("Redis not configured; settlement locks only cover this process")
		return lock.WithWait(lock.NewLocalLocker(), cfg.Settlement.LockWait), func(context.Context) error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	slog.Info("Connected to Redis", "addr", cfg.Redis.Addr)
	locker := lock.NewRedisLocker(client, cfg.Redis.KeyPrefix, cfg.Settlement.LockTTL)
	return lock.WithWait(locker, cfg.Settlement.LockWait), func(context.Context) error { return client.Close() }, nil
}

// NewArchiver returns the receipt archiver selected by config
func NewArchiver(ctx context.Context, cfg *config.Config) (services.ReceiptArchiver, error) {
	if !cfg.Archive.Enabled {
		return archive.NoopArchiver{}, nil
	}
	archiver, err := archive.NewS3Archiver(ctx, archive.Options{
		Bucket:          cfg.Archive.Bucket,
		Region:          cfg.Archive.Region,
		Endpoint:        cfg.Archive.Endpoint,
		AccessKeyID:     cfg.Archive.AccessKeyID,
		SecretAccessKey: cfg.Archive.SecretAccessKey,
		Prefix:          cfg.Archive.Prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create receipt archiver: %w", err)
	}
	return archiver, nil
}

// NewServices builds the settlement services over repos
func NewServices(cfg *config.Config, repos *repositories.Repositories, locker lock.Locker, archiver services.ReceiptArchiver) *Services {
	s := &Services{}
	s.Settings = services.NewSettlementSettingsService(repos.SettlementSettings, cfg.DefaultPolicy())
	s.Wallet = services.NewWalletService(repos.Users, repos.Transactions, repos.TxManager, locker)
	s.Reconciler = services.NewReconciliationService(
		repos.Deposits, repos.Withdrawals, repos.Transactions, repos.TxManager, locker,
		cfg.Reconciliation.GracePeriod, cfg.Reconciliation.BatchSize,
	)
	s.Funding = services.NewFundingService(repos.Deposits, repos.Withdrawals, s.Wallet, s.Reconciler, repos.TxManager, locker)
	s.Distribution = services.NewPrizeDistributionService(repos, s.Wallet, s.Settings, locker, archiver)
	return s
}
