package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/lowlimit/podbot/app/announce"
	"github.com/lowlimit/podbot/app/api"
	"github.com/lowlimit/podbot/app/bot"
	"github.com/lowlimit/podbot/app/cfg"
	"github.com/lowlimit/podbot/app/checker"
	"github.com/lowlimit/podbot/app/database"
	"github.com/lowlimit/podbot/app/episode"
	"github.com/lowlimit/podbot/app/feed"
	"github.com/lowlimit/podbot/app/ledger"
	"github.com/lowlimit/podbot/app/page"
	"github.com/lowlimit/podbot/app/scheduler"
	"github.com/lowlimit/podbot/app/show"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting podbot", "version", appCfg.Version)

	showCfg, err := show.Load(appCfg.ShowConfig)
	if err != nil {
		slog.Error("Failed to load show profile", "error", err)
		os.Exit(1)
	}

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "migration_version", version, "dirty", dirty)

	session, err := discordgo.New("Bot " + appCfg.DiscordToken)
	if err != nil {
		slog.Error("Failed to create Discord session", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	normalizer := episode.NewNormalizer(showCfg.PlaceholderTitle)

	feedAdapter := feed.NewAdapter(httpClient, normalizer, appCfg.UserAgent, showCfg.Links.Apple)
	pageExtractor := page.NewExtractor(httpClient, appCfg.UserAgent, showCfg.Thresholds)
	dispatcher := announce.NewDispatcher(announce.NewDiscordClient(session), appCfg.ChannelID, showCfg)

	ledgerStore := ledger.NewStore(appCfg.LedgerPath)
	announcementRepo := database.NewAnnouncementRepository(db)

	contentChecker := checker.NewChecker(ledgerStore, feedAdapter, pageExtractor,
		normalizer, dispatcher, announcementRepo, appCfg.FeedURL, appCfg.PageURL)

	discordBot := bot.New(session, contentChecker, appCfg.ChannelID)
	if err := discordBot.Start(); err != nil {
		slog.Error("Failed to connect to Discord", "error", err)
		os.Exit(1)
	}
	defer discordBot.Stop()

	checkScheduler := scheduler.NewScheduler(contentChecker, appCfg.CheckIntervalMinutes)
	if err := checkScheduler.Start(); err != nil {
		slog.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer checkScheduler.Stop()

	apiHandler := api.NewHandler(contentChecker, announcementRepo, appCfg.Version)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(apiHandler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Podbot started", "channel", appCfg.ChannelID, "interval_minutes", appCfg.CheckIntervalMinutes)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("HTTP server error, shutting down", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Podbot shutdown complete")
}
