// Command reconcile runs one ledger reconciliation pass and exits.
//
//	reconcile                       repair every unsynced deposit and withdrawal
//	reconcile -kind deposit -id X   sync a single request
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/internal/app"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/archive"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/config"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/models"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

func main() {
	kind := flag.String("kind", "", "request kind to sync: deposit or withdrawal")
	id := flag.String("id", "", "request ID to sync")
	timeout := flag.Duration("timeout", 5*time.Minute, "maximum run time")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := run(ctx, cfg, *kind, *id)
	if err != nil {
		slog.Error("Reconciliation failed", "error", err)
		os.Exit(1)
	}
	if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
		slog.Error("Failed to write result", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, kind, id string) (interface{}, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		return nil, errors.New("reconcile needs a persistent store; set STOREDRIVER=mongodb")
	}

	repos, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeStore(context.Background()) }()

	locker, closeLocker, err := app.NewLocker(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeLocker(context.Background()) }()

	svc := app.NewServices(cfg, repos, locker, archive.NoopArchiver{})

	if id == "" {
		return svc.Reconciler.RepairUnsynced(ctx)
	}

	requestID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid request ID %q: %w", id, err)
	}
	fundingKind := models.FundingKind(kind)
	if fundingKind != models.FundingKindDeposit && fundingKind != models.FundingKindWithdrawal {
		return nil, fmt.Errorf("unknown kind %q, expected deposit or withdrawal", kind)
	}
	result, err := svc.Reconciler.SyncTransactionStatus(ctx, fundingKind, requestID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"kind": fundingKind, "id": id, "result": result}, nil
}
