package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// ReloadFunc получает перечитанную и проверенную конфигурацию
type ReloadFunc func(ctx context.Context, cfg *Config) error

// Watcher перечитывает config.yaml при изменении файла.
// Следит за каталогом, потому что редакторы часто заменяют файл целиком.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	loader    *Loader
	logger    *slog.Logger
	onReload  ReloadFunc
	path      string
	debounce  time.Duration
	wg        sync.WaitGroup
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(loader *Loader, path string, onReload ReloadFunc, logger *slog.Logger) (*Watcher, error) {
	path, err := loader.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		_ = fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		loader:    loader,
		logger:    logger,
		onReload:  onReload,
		path:      filepath.Clean(path),
		debounce:  defaultDebounce,
	}, nil
}

// Start запускает обработку событий до отмены ctx или Close.
func (w *Watcher) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			// серия записей от редактора дает одну перезагрузку
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", "error", err)
		case <-fire:
			fire = nil
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	cfg, _, err := w.loader.Load(w.path)
	if err != nil {
		w.logger.Error("Failed to reload config", "path", w.path, "error", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		w.logger.Error("Reloaded config is invalid, keeping current settings", "error", err)
		return
	}
	if err := w.onReload(ctx, cfg); err != nil {
		w.logger.Error("Failed to apply reloaded config", "error", err)
		return
	}
	w.logger.Info("Config reloaded", "path", w.path)
}

// Close stops watching and waits for the event loop.
func (w *Watcher) Close() error {
	err := w.fsWatcher.Close()
	w.wg.Wait()
	return err
}
