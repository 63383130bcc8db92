package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/kthorson/sidepotbot/internal/api/espn"
	"github.com/kthorson/sidepotbot/internal/bot"
	"github.com/kthorson/sidepotbot/internal/config"
	"github.com/kthorson/sidepotbot/internal/repository/memory"
	"github.com/kthorson/sidepotbot/internal/runlock"
	"github.com/kthorson/sidepotbot/internal/scheduler"
	"github.com/kthorson/sidepotbot/internal/service"
	"github.com/kthorson/sidepotbot/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Error running application", "error", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		mode       = flag.String("mode", "all", "report to run: all, pir, efficiency, survivor")
		weeks      = flag.String("weeks", "auto", "weeks to include: auto, a week, a range like 1-5, or a list like 1,3,5")
		leagueFile = flag.String("config", "config/league.yaml", "path to the league configuration file")
		dryRun     = flag.Bool("dry-run", false, "build reports without posting them")
		serve      = flag.Bool("serve", false, "run the bot and weekly scheduler instead of a one-shot report run")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	league, err := config.LoadLeague(*leagueFile)
	if err != nil {
		return err
	}
	if err := cfg.Resolve(league); err != nil {
		return err
	}

	slog.Info("Starting sidepotbot",
		"run_id", uuid.NewString(),
		"league_id", cfg.ESPNAPI.LeagueID,
		"season", cfg.ESPNAPI.Season,
		"swid", config.MaskSecret(cfg.ESPNAPI.SWID),
		"espn_s2", config.MaskSecret(cfg.ESPNAPI.ESPNS2),
	)

	espnClient := espn.NewClient(cfg.ESPNAPI)
	espnAPI := espn.NewAPI(espnClient)
	if err := espnAPI.PreflightLeague(); err != nil {
		return err
	}

	repo := memory.NewRepository()
	hooks := webhook.NewDiscord(league.Webhooks)
	sidePotService := service.NewSidePotService(espnAPI, repo, league, hooks)

	if *serve {
		return runServe(cfg, league, sidePotService)
	}
	return runOnce(sidePotService, *mode, *weeks, *dryRun)
}

// runOnce executes one report run under the run lock so a manual invocation
// cannot race the scheduled one.
func runOnce(sidePotService *service.SidePotService, mode, weeks string, dryRun bool) error {
	lock := runlock.New(filepath.Join(os.TempDir(), "sidepotbot.lock"))
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return sidePotService.RunReports(ctx, mode, weeks, dryRun)
}

func runServe(cfg *config.Config, league *config.League, sidePotService *service.SidePotService) error {
	var sendMessage func(string) error
	var telegramBot *bot.TelegramBot

	if cfg.TelegramBot.Token != "" {
		var err error
		telegramBot, err = bot.NewTelegramBot(cfg.TelegramBot.Token, cfg.TelegramBot.ChatID, sidePotService)
		if err != nil {
			return err
		}
		sendMessage = telegramBot.SendMessage
	} else {
		slog.Info("No Telegram token configured, running scheduler only")
	}

	sched, err := scheduler.NewScheduler(sidePotService, league.Schedule, sendMessage)
	if err != nil {
		return err
	}
	if err := sched.Start(); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			slog.Error("Error stopping scheduler", "error", err)
		}
	}()

	http.HandleFunc("/", healthCheckHandler)
	go func() {
		if err := http.ListenAndServe(":8080", nil); err != nil {
			slog.Error("Error starting HTTP server", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if telegramBot != nil {
		go func() {
			if err := telegramBot.Start(ctx); err != nil {
				slog.Error("Error running telegram bot", "error", err)
			}
		}()
	}

	<-ctx.Done()
	slog.Info("Shutting down gracefully...")
	return nil
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
