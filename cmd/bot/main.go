package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/maktab-bot/internal/bot"
	"github.com/noah-isme/maktab-bot/internal/excel"
	"github.com/noah-isme/maktab-bot/internal/metrics"
	"github.com/noah-isme/maktab-bot/internal/repository"
	"github.com/noah-isme/maktab-bot/internal/scheduler"
	"github.com/noah-isme/maktab-bot/internal/service"
	"github.com/noah-isme/maktab-bot/pkg/config"
	"github.com/noah-isme/maktab-bot/pkg/database"
	"github.com/noah-isme/maktab-bot/pkg/export"
	"github.com/noah-isme/maktab-bot/pkg/logger"
	"github.com/noah-isme/maktab-bot/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewSQLite(cfg.Files.Database)
	if err != nil {
		logr.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck
	if err := database.Migrate(db); err != nil {
		logr.Fatal("failed to migrate database", zap.Error(err))
	}

	tempStore, err := storage.NewLocalStorage(cfg.Files.TempDir)
	if err != nil {
		logr.Fatal("failed to prepare temp storage", zap.Error(err))
	}

	m := metrics.New()

	bindings := repository.NewBindingRepository(cfg.Files.Bindings, logr)
	weeklyResults := repository.NewWeeklyResultRepository(db, logr)
	monthlyResults := repository.NewMonthlyResultRepository(db, logr)

	weeklyLoader := excel.NewWeeklyLoader(cfg.Files.Weekly)
	monthlyLoader := excel.NewMonthlyLoader(cfg.Files.Monthly)
	pdf := export.NewProgressPDF(cfg.Files.Font)

	validate := validator.New()
	resultsSvc := service.NewResultsService(bindings, weeklyLoader, validate, logr)
	ingestSvc := service.NewIngestService(cfg.Files.Weekly, cfg.Files.Monthly, tempStore,
		weeklyLoader, monthlyLoader, weeklyResults, monthlyResults, logr, m)
	progressSvc := service.NewProgressService(weeklyResults, monthlyResults, pdf, tempStore, logr, m)

	b, err := bot.New(cfg, resultsSvc, ingestSvc, progressSvc, tempStore, logr)
	if err != nil {
		logr.Fatal("failed to start bot", zap.Error(err))
	}

	broadcastSvc := service.NewBroadcastService(bindings, weeklyLoader, monthlyLoader,
		weeklyResults, b, logr, m)
	b.SetBroadcast(broadcastSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(logr)
	if err := sched.Add(cfg.Broadcast.Cron, "weekly_broadcast", func() error {
		_, err := broadcastSvc.Weekly(ctx)
		return err
	}); err != nil {
		logr.Fatal("failed to schedule broadcast", zap.Error(err))
	}
	if err := sched.Add("30 3 * * *", "temp_cleanup", func() error {
		deleted, err := tempStore.CleanupOlderThan(cfg.Broadcast.CleanupTTL)
		if err != nil {
			return err
		}
		if len(deleted) > 0 {
			logr.Info("temp files cleaned", zap.Int("deleted", len(deleted)))
		}
		return nil
	}); err != nil {
		logr.Fatal("failed to schedule cleanup", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	srv := metrics.NewServer(cfg, m, logr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("health server failed", zap.Error(err))
		}
	}()
	defer srv.Shutdown(context.Background()) //nolint:errcheck

	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Fatal("bot stopped", zap.Error(err))
	}
	logr.Info("shutdown complete")
}
