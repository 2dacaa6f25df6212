package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iudanet/clipsync/internal/server"
	"github.com/iudanet/clipsync/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// tokenSecretEnv переменная окружения с общим секретом токенов устройств
const tokenSecretEnv = "CLIPSYNC_TOKEN_SECRET"

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	dbPath := flag.String("db", "clipsync-relay.db", "Path to SQLite database")
	secret := flag.String("token-secret", "", "Shared device token secret (or "+tokenSecretEnv+")")
	rate := flag.Int("rate", 600, "Max requests per client in rate window")
	rateWindow := flag.Duration("rate-window", time.Minute, "Rate limit window")
	retention := flag.Duration("retention", 30*24*time.Hour, "How long relayed items are kept (0 keeps forever)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))

	if *secret == "" {
		*secret = os.Getenv(tokenSecretEnv)
	}

	if err := run(logger, server.Config{
		Addr:        *addr,
		TokenSecret: *secret,
		RateLimit:   *rate,
		RateWindow:  *rateWindow,
		Retention:   *retention,
	}, *dbPath); err != nil {
		logger.Error("Relay server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg server.Config, dbPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	if version, err := store.SchemaVersion(ctx); err == nil {
		logger.Info("Storage ready", "path", dbPath, "schema_version", version)
	}

	srv, err := server.New(cfg, store, clockwork.NewRealClock(), logger)
	if err != nil {
		return err
	}

	logger.Info("Starting ClipSync relay server", "version", Version, "db", dbPath)
	return srv.Run(ctx)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printVersion() {
	fmt.Printf("ClipSync Relay Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
