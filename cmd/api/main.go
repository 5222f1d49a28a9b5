package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aaditya88888/netwin-tournament-sub001/api/routes"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/app"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/config"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/handlers"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/middleware"
	"github.com/Aaditya88888/netwin-tournament-sub001/internal/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
)

func main() {
	// A missing .env is fine; the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	if cfg.SlogLevel() > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
	slog.Info("Server exiting")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeWithTimeout("store", closeStore)

	locker, closeLocker, err := app.NewLocker(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeWithTimeout("locker", closeLocker)

	archiver, err := app.NewArchiver(ctx, cfg)
	if err != nil {
		return err
	}

	svc := app.NewServices(cfg, repos, locker, archiver)

	if cfg.Reconciliation.Enabled {
		sched, err := scheduler.New(svc.Reconciler, cfg.Reconciliation.Interval)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			if err := sched.Shutdown(); err != nil {
				slog.Error("Failed to stop reconciliation scheduler", "error", err)
			}
		}()
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, 3*time.Minute)
	go limiter.RunCleanup(ctx, time.Minute)

	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		PrizeHandler:              handlers.NewPrizeHandler(svc.Distribution),
		FundingHandler:            handlers.NewFundingHandler(svc.Funding),
		WalletHandler:             handlers.NewWalletHandler(svc.Wallet, svc.Reconciler),
		SettlementSettingsHandler: handlers.NewSettlementSettingsHandler(svc.Settings),
		RateLimiter:               limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func closeWithTimeout(name string, closeFn app.CloseFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := closeFn(ctx); err != nil {
		slog.Error("Failed to close "+name, "error", err)
	}
}
