package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"log/slog"

	"github.com/m3rciful/marybot/bot/directory"
	"github.com/m3rciful/marybot/bot/handlers"
	coreconfig "github.com/m3rciful/marybot/core/config"
	coredatabase "github.com/m3rciful/marybot/core/database"
	"github.com/m3rciful/marybot/core/logger"
	coretelegram "github.com/m3rciful/marybot/core/telegram"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := run(); err != nil {
		log.Fatalf("bot: %v", err)
	}
}

func run() error {
	// Local development keeps secrets in .env; production injects real env.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}
	cfg, err := coreconfig.Load(cfgPath)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.LoggingSettings{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Dir:     cfg.Logging.Dir,
		BotFile: cfg.Logging.BotFile,
		Profile: cfg.Logging.Profile,
	}); err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	db, err := coredatabase.Connect(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := coredatabase.RunMigrations(cfg.Database); err != nil {
		return err
	}

	reg := coretelegram.NewRegistry()
	app := handlers.New(cfg, reg, directory.NewPostgres(db))

	startedAt := time.Now()
	runOpts := coretelegram.RunOptions{
		Config:   cfg,
		Registry: reg,
		Build:    app.Build,
		OnStart: func(ctx context.Context, _ coretelegram.Runtime) error {
			logger.L.With("component", "app").Info("app ready",
				slog.String("event", "ready"),
				slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
			)
			return nil
		},
		OnStop: func(ctx context.Context, _ coretelegram.Runtime) error {
			logger.L.With("component", "app").Info("shutting down...",
				slog.String("event", "shutdown"),
			)
			app.Shutdown()
			return nil
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return coretelegram.RunTelegram(ctx, runOpts)
}
