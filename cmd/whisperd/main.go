package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ekisa-team/whisperd/internal/config"
	"github.com/ekisa-team/whisperd/internal/engine/whisper"
	"github.com/ekisa-team/whisperd/internal/env"
	"github.com/ekisa-team/whisperd/internal/logger"
	"github.com/ekisa-team/whisperd/internal/models"
	"github.com/ekisa-team/whisperd/internal/requestlog"
	serverhttp "github.com/ekisa-team/whisperd/internal/server/http"
	"github.com/ekisa-team/whisperd/internal/service"
	"github.com/ekisa-team/whisperd/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var (
		flagConfigPath = flag.String("config", "whisperd.yaml", "Path to config file")
		flagHost       = flag.String("host", "", "Override the configured listen host")
		flagPort       = flag.Int("port", 0, "Override the configured listen port")
		flagCheck      = flag.Bool("check", false, "Validate the configuration, print the effective settings and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*flagConfigPath)
	if err == nil {
		if *flagHost != "" {
			cfg.Server.Host = *flagHost
		}
		if *flagPort != 0 {
			cfg.Server.Port = *flagPort
		}
	}
	if *flagCheck {
		if err != nil {
			fmt.Fprintln(os.Stderr, "configuration invalid:", err)
			os.Exit(1)
		}
		fmt.Println("configuration OK")
		fmt.Printf("  listen          %s:%d\n", cfg.Server.Host, cfg.Server.Port)
		fmt.Printf("  default model   %s (%s, %s)\n", cfg.Whisper.DefaultModel, cfg.Whisper.Device, cfg.Whisper.ComputeType)
		fmt.Printf("  engine binary   %s\n", cfg.Engine.BinPath)
		if dir := cfg.Storage.View().Effective(); dir != "" {
			fmt.Printf("  model cache     %s\n", dir)
		} else {
			fmt.Println("  model cache     default huggingface cache")
		}
		fmt.Printf("  log level       %s\n", cfg.Logging.Level)
		return
	}
	if err != nil {
		slog.Error("Failed to load config", "path", *flagConfigPath, "error", err)
		os.Exit(1)
	}

	environment := env.FromEnv()
	levelVar := new(slog.LevelVar)
	levelVar.Set(logger.ParseLevel(cfg.Logging.Level))

	slog.SetDefault(
		logger.New(environment,
			logger.WithLevel(levelVar),
			logger.WithConsoleFormat(cfg.Logging.Format),
			logger.WithLogToFile(cfg.Logging.File != ""),
			logger.WithLogFile(cfg.Logging.File),
			logger.WithRotation(cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups, cfg.Logging.MaxAgeDays),
		),
	)

	// Only the log level is applied live; the server, storage and
	// engine sections are fixed at startup.
	if _, err := config.NewWatcher(*flagConfigPath, func(next *config.Config, err error) {
		if err != nil {
			return
		}
		levelVar.Set(logger.ParseLevel(next.Logging.Level))
		slog.Info("Log level applied", "level", next.Logging.Level)
	}); err != nil {
		slog.Error("Failed to create config watcher", "error", err)
		os.Exit(1)
	}

	slog.Info("Config loaded successfully", "config", *flagConfigPath)

	locator := storage.NewLocator(cfg.Storage.View())
	loader := whisper.NewLoader(whisper.LoaderConfig{
		BinPath:        cfg.Engine.BinPath,
		Port:           cfg.Engine.Port,
		ReadyTimeout:   cfg.Engine.ReadyTimeout(),
		RequestTimeout: cfg.Engine.RequestTimeout(),
	}, locator)
	manager := models.NewManager(locator, loader)

	transcriber, err := service.NewTranscriber(context.Background(), loader, service.Defaults{
		Model:       cfg.Whisper.DefaultModel,
		Language:    cfg.Whisper.DefaultLanguage,
		Device:      cfg.Whisper.Device,
		ComputeType: cfg.Whisper.ComputeType,
		TempSuffix:  cfg.Whisper.TempFileSuffix,
	})
	if err != nil {
		slog.Error("Failed to bind default model", "model", cfg.Whisper.DefaultModel, "error", err)
		os.Exit(1)
	}

	srv := serverhttp.New(cfg, serverhttp.Deps{
		Transcriber: transcriber,
		Models:      manager,
		Audit:       requestlog.New(requestlog.DefaultCapacity),
	})
	if err := srv.Start(); err != nil {
		slog.Error("Failed to start HTTP server", "error", err)
		if closeErr := transcriber.Close(); closeErr != nil {
			slog.Warn("Failed to release model binding", "error", closeErr)
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown did not drain cleanly", "error", err)
	}
	if err := transcriber.Close(); err != nil {
		slog.Warn("Failed to release model binding", "error", err)
	}
}
