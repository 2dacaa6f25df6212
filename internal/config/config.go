// Package config загружает настройки клиента из YAML файла.
package config

import (
	"fmt"
	"time"

	"github.com/iudanet/clipsync/internal/engine"
	"github.com/iudanet/clipsync/internal/models"
	"github.com/iudanet/clipsync/internal/outbox"
	"github.com/iudanet/clipsync/internal/provider"
	"github.com/iudanet/clipsync/internal/provider/cloud"
	"github.com/iudanet/clipsync/internal/provider/httpapi"
	"github.com/iudanet/clipsync/internal/provider/lan"
	"github.com/iudanet/clipsync/internal/syncerr"
	"github.com/iudanet/clipsync/internal/tracing"
)

const (
	// DefaultPath путь к файлу конфигурации по умолчанию
	DefaultPath = "~/.clipsync/config.yaml"

	// DefaultStatePath путь к базе состояния по умолчанию
	DefaultStatePath = "~/.clipsync/state.db"

	// PassphraseEnv переменная окружения с паролем шифрования
	PassphraseEnv = "CLIPSYNC_PASSPHRASE"
)

// Config - содержимое config.yaml
type Config struct {
	Filters              map[models.ItemType]outbox.Filter `yaml:"filters"`
	DevicePriorities     map[string]int                    `yaml:"device_priorities"`
	Cloud                cloud.Config                      `yaml:"cloud"`
	Custom               httpapi.Config                    `yaml:"custom"`
	Tracing              tracing.Config                    `yaml:"tracing"`
	DeviceID             string                            `yaml:"device_id"`
	Platform             string                            `yaml:"platform"`
	Provider             string                            `yaml:"provider"`
	ConflictStrategy     string                            `yaml:"conflict_strategy"`
	EncryptionPassphrase string                            `yaml:"encryption_passphrase"`
	EncryptionSalt       string                            `yaml:"encryption_salt"` // base64, генерируется при первом запуске
	StatePath            string                            `yaml:"state_path"`
	LogLevel             string                            `yaml:"log_level"`
	Local                lan.Config                        `yaml:"local"`
	ConflictWindowMs     int64                             `yaml:"conflict_window_ms"`
	SyncInterval         int                               `yaml:"sync_interval"` // секунды
	MaxHistoryItems      int                               `yaml:"max_history_items"`
	MaxRetries           int                               `yaml:"max_retries"`
	Enabled              bool                              `yaml:"enabled"`
	AutoSync             bool                              `yaml:"auto_sync"`
	EncryptionEnabled    bool                              `yaml:"encryption_enabled"`
}

// Default returns the configuration used when keys are absent.
func Default() *Config {
	return &Config{
		Enabled:          true,
		Platform:         "desktop",
		Provider:         string(provider.KindCloud),
		AutoSync:         true,
		SyncInterval:     int(engine.DefaultSyncInterval / time.Second),
		MaxHistoryItems:  engine.DefaultMaxHistoryItems,
		ConflictStrategy: string(models.StrategyLastWriterWins),
		ConflictWindowMs: 5000,
		MaxRetries:       outbox.DefaultMaxRetries,
		StatePath:        DefaultStatePath,
		LogLevel:         "info",
		Filters: map[models.ItemType]outbox.Filter{
			models.ItemTypeClipboard: {Enabled: true, MaxSize: 1 << 20},
		},
		Cloud: cloud.Config{
			Region:         "us-east-1",
			Prefix:         "changes/",
			ForcePathStyle: true,
		},
		Custom: httpapi.Config{
			Timeout: 30 * time.Second,
		},
		Local: lan.Config{
			ListenAddr:     ":47800",
			DiscoveryPort:  47801,
			BeaconInterval: 5 * time.Second,
			PeerTTL:        30 * time.Second,
		},
		Tracing: tracing.Config{Exporter: tracing.ExporterStdout},
	}
}

// Validate проверяет значения, которые иначе всплыли бы только при старте движка.
func (c *Config) Validate() error {
	configErr := func(format string, args ...any) error {
		return syncerr.New(syncerr.ConfigurationError, "config", fmt.Errorf(format, args...))
	}

	kind, err := provider.ParseKind(c.Provider)
	if err != nil {
		return err
	}
	if _, err := models.ParseConflictStrategy(c.ConflictStrategy); err != nil {
		return syncerr.New(syncerr.ConfigurationError, "config",
			fmt.Errorf("%w: %q", syncerr.ErrUnknownStrategy, c.ConflictStrategy))
	}
	if c.SyncInterval <= 0 {
		return configErr("sync_interval must be positive, got %d", c.SyncInterval)
	}
	if c.MaxHistoryItems < 0 {
		return configErr("max_history_items cannot be negative")
	}
	if c.MaxRetries < 0 {
		return configErr("max_retries cannot be negative")
	}
	if c.ConflictWindowMs < 0 {
		return configErr("conflict_window_ms cannot be negative")
	}
	if _, err := outbox.CompileFilters(c.Filters); err != nil {
		return configErr("%w", err)
	}

	switch kind {
	case provider.KindCloud:
		if c.Cloud.Bucket == "" {
			return configErr("cloud.bucket is required for provider %q", kind)
		}
	case provider.KindCustom:
		if c.Custom.URL == "" {
			return configErr("custom.url is required for provider %q", kind)
		}
	}

	if c.EncryptionEnabled && c.EncryptionPassphrase == "" {
		return configErr("encryption is enabled but no passphrase is set (use %s)", PassphraseEnv)
	}
	return nil
}

// EngineSettings converts the file into engine settings.
func (c *Config) EngineSettings() engine.Settings {
	return engine.Settings{
		Filters:          c.Filters,
		DevicePriorities: c.DevicePriorities,
		DeviceID:         c.DeviceID,
		Platform:         c.Platform,
		Provider:         provider.Kind(c.Provider),
		ConflictStrategy: models.ConflictStrategy(c.ConflictStrategy),
		SyncInterval:     time.Duration(c.SyncInterval) * time.Second,
		ConflictWindowMs: c.ConflictWindowMs,
		MaxRetries:       c.MaxRetries,
		MaxHistoryItems:  c.MaxHistoryItems,
		Enabled:          c.Enabled,
		AutoSync:         c.AutoSync,
	}
}
