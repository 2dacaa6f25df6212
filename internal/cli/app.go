package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/iudanet/clipsync/internal/config"
	"github.com/iudanet/clipsync/internal/crypto"
	"github.com/iudanet/clipsync/internal/engine"
	"github.com/iudanet/clipsync/internal/iocli"
	"github.com/iudanet/clipsync/internal/provider/builtin"
	"github.com/iudanet/clipsync/internal/storage/boltdb"
	"github.com/iudanet/clipsync/internal/tracing"
)

// AppOptions параметры сборки приложения
type AppOptions struct {
	FS         afero.Fs // файловая система для config.yaml, nil - OS
	Clock      clockwork.Clock
	LogOutput  io.Writer
	ConfigPath string
	LogLevel   string // переопределяет log_level из файла
}

// App - собранные зависимости команды
type App struct {
	Config     *config.Config
	Loader     *config.Loader
	Engine     *engine.Engine
	Logger     *slog.Logger
	store      *boltdb.Storage
	tracer     *tracing.Tracer
	ConfigPath string
}

// NewApp загружает конфигурацию и собирает движок. Пароль шифрования
// берется из файла, CLIPSYNC_PASSPHRASE или запрашивается через term.
func NewApp(ctx context.Context, opts AppOptions, cliIO iocli.IO) (*App, error) {
	loader := config.NewLoader(opts.FS)
	cfg, path, err := loader.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if cfg.EncryptionEnabled && cfg.EncryptionPassphrase == "" && cliIO != nil {
		passphrase, err := cliIO.ReadPassword("Encryption passphrase: ")
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		cfg.EncryptionPassphrase = passphrase
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: ParseLevel(level)}))

	if err := os.MkdirAll(filepath.Dir(cfg.StatePath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	store, err := boltdb.New(ctx, cfg.StatePath, cfg.MaxHistoryItems)
	if err != nil {
		return nil, fmt.Errorf("failed to open state %s (is another clipsync running?): %w", cfg.StatePath, err)
	}

	app := &App{
		Config:     cfg,
		Loader:     loader,
		Logger:     logger,
		ConfigPath: path,
		store:      store,
	}

	if err := app.build(ctx, opts.Clock); err != nil {
		_ = app.Close(ctx)
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context, clock clockwork.Clock) error {
	registry, err := builtin.NewRegistry(a.Config, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to register providers: %w", err)
	}

	sealer, err := crypto.NewSealer(a.Config.EncryptionEnabled, a.Config.EncryptionPassphrase, a.Config.EncryptionSalt)
	if err != nil {
		return err
	}

	a.tracer, err = tracing.New(ctx, a.Config.Tracing)
	if err != nil {
		return fmt.Errorf("failed to init tracing: %w", err)
	}

	a.Engine, err = engine.New(ctx, engine.Options{
		Store:    a.store,
		Registry: registry,
		Sealer:   sealer,
		Tracer:   a.tracer,
		Clock:    clock,
		Logger:   a.Logger,
		Settings: a.Config.EngineSettings(),
	})
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	return nil
}

// Close flushes traces and closes the state database.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close state: %w", err))
		}
	}
	return errors.Join(errs...)
}

// WatchConfig перечитывает config.yaml и применяет настройки к движку
func (a *App) WatchConfig(ctx context.Context) (*config.Watcher, error) {
	w, err := config.NewWatcher(a.Loader, a.ConfigPath, func(ctx context.Context, cfg *config.Config) error {
		return a.Engine.UpdateConfig(ctx, cfg.EngineSettings())
	}, a.Logger)
	if err != nil {
		return nil, err
	}
	w.Start(ctx)
	return w, nil
}

// ParseLevel converts a level name; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
