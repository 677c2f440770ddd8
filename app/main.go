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

	"github.com/lysyi3m/rss-relay/app/api"
	"github.com/lysyi3m/rss-relay/app/cfg"
	"github.com/lysyi3m/rss-relay/app/config"
	"github.com/lysyi3m/rss-relay/app/database"
	"github.com/lysyi3m/rss-relay/app/feed"
	"github.com/lysyi3m/rss-relay/app/relay"
	"github.com/lysyi3m/rss-relay/app/tasks"
	"github.com/lysyi3m/rss-relay/app/telegram"
)

func main() {
	appConfig, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appConfig == nil {
		// Help was shown
		return
	}

	setupLogger(appConfig.Debug)

	if err := run(appConfig); err != nil {
		slog.Error("RSS Relay stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(appConfig *cfg.Cfg) error {
	slog.Info("Starting RSS Relay", "version", appConfig.Version)

	db, err := database.NewConnection(appConfig.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Debug("Database ready", "path", appConfig.DBPath, "schema_version", version, "dirty", dirty)

	loader := config.NewLoader(appConfig.ConfigPath)
	relayConfig, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load relay configuration: %w", err)
	}
	slog.Info("Relay configuration loaded", "feeds", len(relayConfig.Feeds), "categories", len(relayConfig.Categories), "destinations", relayConfig.Destinations(), "match_mode", relayConfig.MatchMode)

	ledger := database.NewLedgerRepository(db)
	stats := database.NewStatsRepository(db)

	httpClient := &http.Client{Timeout: relayConfig.Settings.GetTimeout()}
	retriever := feed.NewRetriever(httpClient, feed.NewParser(), appConfig.UserAgent, relayConfig.Settings.GetTimeout())

	bot := telegram.New(telegram.Config{
		Token:           appConfig.TelegramToken,
		UserAgent:       appConfig.UserAgent,
		HTTPClient:      &http.Client{Timeout: 30 * time.Second},
		PerChatInterval: time.Second,
	})

	router := relay.NewRouter(ledger, stats, bot, feed.NewClassifier(relayConfig.MatchMode), relayConfig.Categories, relay.Options{
		SummaryMaxLength: appConfig.SummaryMaxLength,
		SendDelay:        appConfig.GetSendDelay(),
	})

	newPollTask := func() tasks.TaskInterface {
		return tasks.NewPollFeedsTask(loader.Current().Feeds, retriever, router)
	}
	newCleanupTask := func() tasks.TaskInterface {
		return tasks.NewCleanupTask(ledger, appConfig.GetRetention())
	}

	scheduler := tasks.NewScheduler(tasks.SchedulerOptions{
		PollInterval:    appConfig.GetSchedulerInterval(),
		CleanupInterval: appConfig.GetCleanupInterval(),
		WorkerCount:     appConfig.WorkerCount,
	}, newPollTask, newCleanupTask)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(ledger, stats, loader, scheduler, newPollTask, appConfig.GetRetention())
	httpServer := &http.Server{
		Addr:         ":" + appConfig.Port,
		Handler:      api.NewServer(handler, appConfig.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appConfig.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("RSS Relay started", "poll_interval", appConfig.GetSchedulerInterval(), "cleanup_interval", appConfig.GetCleanupInterval(), "retention", appConfig.GetRetention())

	var runErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case runErr = <-serverErrChan:
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	return runErr
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
