package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"citizenpulse/backend/internal/api"
	"citizenpulse/backend/internal/api/handler"
	"citizenpulse/backend/internal/auth"
	"citizenpulse/backend/internal/catalog"
	"citizenpulse/backend/internal/config"
	"citizenpulse/backend/internal/events"
	"citizenpulse/backend/internal/localization"
	"citizenpulse/backend/internal/logger"
	"citizenpulse/backend/internal/report"
	"citizenpulse/backend/internal/storage"
	"citizenpulse/backend/internal/telegram"
	"citizenpulse/backend/internal/workflow"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Setup(logger.Config{Level: cfg.Log.Level})

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting Citizen Pulse backend", "env", cfg.App.Env)

	db, err := storage.Open(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := storage.Migrate(ctx, db); err != nil {
		return err
	}

	rdb, err := storage.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		// Views still count without per-session de-duplication, and NewBroker
		// keeps change events in-process.
		slog.Warn("Redis unavailable, view de-duplication disabled", "error", err)
	} else {
		defer rdb.Close()
	}
	store := storage.NewStorageService(db, rdb)
	slog.Info("Database connections established, migrations complete")

	broker, err := events.NewBroker(cfg.Events, rdb)
	if err != nil {
		return err
	}
	defer broker.Close()

	hub := events.NewHub()
	stream, err := broker.Subscribe(ctx)
	if err != nil {
		return err
	}
	go hub.Run(ctx, stream)

	cat := catalog.Default()
	if cfg.Telegram.Enabled() {
		if err := startNotifier(ctx, cfg.Telegram, broker, store, cat); err != nil {
			slog.Warn("Telegram notifier disabled", "error", err)
		}
	}

	tokens := auth.NewTokenService(cfg.JWT)
	h := handler.NewHandler(
		auth.NewService(store, tokens),
		report.NewService(store, cat, broker, cfg.Session.ViewTTL),
		workflow.NewAuthority(store, broker),
		cat,
		hub,
		handler.NewSessionStore(cfg.Session),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &http.Server{
		Addr:           cfg.Server.Addr(),
		Handler:        api.NewRouter(h, cfg.CORS),
		ReadTimeout:    cfg.Server.TimeoutRead,
		WriteTimeout:   cfg.Server.TimeoutWrite,
		IdleTimeout:    cfg.Server.TimeoutIdle,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func startNotifier(ctx context.Context, cfg config.TelegramConfig, broker events.Broker, store storage.Storage, cat *catalog.Catalog) error {
	bot, err := telegram.NewBotAPI(cfg.BotToken)
	if err != nil {
		return err
	}
	loc, err := localization.Embedded()
	if err != nil {
		return err
	}
	if !loc.HasLanguage(cfg.Language) {
		slog.Warn("No translations for notifier language, using fallback",
			"language", cfg.Language, "fallback", localization.DefaultLanguage)
	}
	stream, err := broker.Subscribe(ctx)
	if err != nil {
		return err
	}

	n := &telegram.Notifier{
		Bot:       bot,
		Reports:   store,
		Catalog:   cat,
		Localizer: loc,
		ChatID:    cfg.StaffChatID,
		Language:  cfg.Language,
	}
	go n.Run(ctx, stream)
	slog.Info("Telegram notifier started", "chat_id", cfg.StaffChatID)
	return nil
}
