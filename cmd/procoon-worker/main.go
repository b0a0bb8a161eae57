package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"procoon/internal/config"
	"procoon/internal/game"
	"procoon/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	saves, err := store.NewPostgres(ctx, pool)
	if err != nil {
		logger.Error("save store init failed", "err", err)
		os.Exit(1)
	}
	svc := game.NewService(saves, logger, cfg.TimeRatio)

	if cfg.RunOnce {
		if err := tick(ctx, svc, cfg, logger); err != nil {
			logger.Error("tick failed", "err", err)
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	ticker := time.NewTicker(cfg.TickEvery)
	defer ticker.Stop()

	logger.Info("worker started", "tick_every", cfg.TickEvery.String(), "slot", cfg.DefaultSlot, "time_ratio", cfg.TimeRatio)
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-ticker.C:
			if err := tick(ctx, svc, cfg, logger); err != nil {
				logger.Error("tick failed", "err", err)
			}
		}
	}
}

func tick(ctx context.Context, svc *game.Service, cfg config.APIConfig, logger *slog.Logger) error {
	result, err := svc.AdvanceTime(ctx, cfg.DefaultSlot, cfg.TickEvery)
	if errors.Is(err, game.ErrSaveNotFound) {
		// Nothing to drive until a game exists in the slot.
		return nil
	}
	if err != nil {
		return err
	}
	if result.DayProcessed {
		logger.Info("day processed", "day", result.Day, "cash", result.Cash)
	}
	return nil
}
