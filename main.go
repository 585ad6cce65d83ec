package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/S-Foxx/VN-Bot/bot"
	"github.com/S-Foxx/VN-Bot/logging"
	"github.com/S-Foxx/VN-Bot/metrics"
	"github.com/S-Foxx/VN-Bot/nickname"
	"github.com/S-Foxx/VN-Bot/storage"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	verbose := flag.Bool("v", false, "Enable verbose logging (LevelInfo)")
	veryVerbose := flag.Bool("vv", false, "Enable very verbose logging (LevelDebug)")
	flag.Parse()

	// Set up logging
	logging.Setup(*verbose, *veryVerbose)

	slog.Debug("main: Command-line flags parsed", "verbose", *verbose, "very_verbose", *veryVerbose)

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		slog.Warn("main: Failed to load .env file", "error", err)
	} else {
		slog.Debug("main: Environment variables loaded from .env file")
	}

	// Get configuration from environment
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		slog.Error("main: TELEGRAM_BOT_TOKEN environment variable is required")
		os.Exit(1)
	}

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "data.sqlite"
		slog.Debug("main: Using default database path", "path", dbPath)
	} else {
		slog.Debug("main: Using custom database path", "path", dbPath)
	}

	// Initialize storage
	slog.Debug("main: Initializing storage", "db_path", dbPath)
	store, err := storage.New(dbPath)
	if err != nil {
		slog.Error("main: Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	slog.Debug("main: Storage initialized successfully")

	// Initialize bot with the nickname generator backed by the store
	slog.Debug("main: Initializing bot")
	b, err := bot.New(token, store, nickname.NewGenerator(store))
	if err != nil {
		slog.Error("main: Failed to initialize bot", "error", err)
		os.Exit(1)
	}
	slog.Debug("main: Bot initialized successfully")

	// Optional Prometheus listener
	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		slog.Debug("main: Starting metrics listener", "addr", addr)
		go func() {
			if err := metrics.Serve(addr); err != nil {
				slog.Error("main: Metrics listener stopped", "error", err)
			}
		}()
	}

	// Start bot
	slog.Info("main: Starting bot...")
	if err := b.Start(); err != nil {
		slog.Error("main: Failed to start bot", "error", err)
		os.Exit(1)
	}
	slog.Info("main: Bot started successfully")

	// Wait for interrupt signal
	slog.Debug("main: Bot is running, waiting for interrupt signal")
	select {}
}
