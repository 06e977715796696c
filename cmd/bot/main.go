package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JorisHartog/svetlana/internal/bot"
	"github.com/JorisHartog/svetlana/internal/config"
	"github.com/JorisHartog/svetlana/internal/storage"
	"github.com/JorisHartog/svetlana/internal/webdiplomacy"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Set up logging
	setupLogging(cfg.LogLevel)

	slog.Info("Starting Svetlana, the WebDiplomacy notification bot")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize storage
	repo, err := storage.NewRepository(cfg.DatabasePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Create the WebDiplomacy client
	client := webdiplomacy.NewClient(webdiplomacy.ClientConfig{
		BaseURL:          cfg.WebDiplomacyURL,
		BackoffBase:      time.Duration(cfg.FetchBackoffSeconds) * time.Second,
		BackoffMax:       time.Duration(cfg.FetchBackoffMaxSeconds) * time.Second,
		BackoffThreshold: time.Duration(cfg.FetchBackoffThresholdSeconds) * time.Second,
		MaxAttempts:      cfg.FetchMaxAttempts,
	})

	// Create and start the bot
	b, err := bot.New(cfg, repo, client)
	if err != nil {
		slog.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	// Start the bot
	if err := b.Start(ctx); err != nil {
		slog.Error("Failed to start bot", "error", err)
		os.Exit(1)
	}

	slog.Info("Bot is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
	cancel()

	// Stop the bot gracefully
	if err := b.Stop(); err != nil {
		slog.Error("Error during shutdown", "error", err)
	}

	slog.Info("Bot stopped")
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
