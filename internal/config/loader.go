package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/iudanet/clipsync/internal/crypto"
)

// Loader читает и записывает config.yaml. Файловая система подменяется
// в тестах через afero.NewMemMapFs().
type Loader struct {
	fs     afero.Fs
	getenv func(string) string
	expand func(string) (string, error)
}

// NewLoader creates a loader on top of fs. nil means the OS file system.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs, getenv: os.Getenv, expand: homedir.Expand}
}

// ResolvePath раскрывает ~ в пути
func (l *Loader) ResolvePath(path string) (string, error) {
	if path == "" {
		path = DefaultPath
	}
	expanded, err := l.expand(path)
	if err != nil {
		return "", fmt.Errorf("failed to expand path %q: %w", path, err)
	}
	return expanded, nil
}

// Load читает конфигурацию. Отсутствующий файл создается со значениями по
// умолчанию. Пустой device_id и соль шифрования генерируются и записываются обратно.
func (l *Loader) Load(path string) (*Config, string, error) {
	path, err := l.ResolvePath(path)
	if err != nil {
		return nil, "", err
	}

	cfg := Default()
	dirty := false
	data, err := afero.ReadFile(l.fs, path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		dirty = true
	case err != nil:
		return nil, "", fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, "", fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if cfg.DeviceID == "" {
		cfg.DeviceID = uuid.New().String()
		dirty = true
	}
	if cfg.EncryptionEnabled && cfg.EncryptionSalt == "" {
		salt, err := crypto.GenerateSaltBase64()
		if err != nil {
			return nil, "", err
		}
		cfg.EncryptionSalt = salt
		dirty = true
	}
	if dirty {
		if err := l.Save(path, cfg); err != nil {
			return nil, "", err
		}
	}

	// пароль из окружения не записывается в файл
	if pass := l.getenv(PassphraseEnv); pass != "" {
		cfg.EncryptionPassphrase = pass
	}

	cfg.StatePath, err = l.ResolvePath(cfg.StatePath)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// Save записывает конфигурацию (права 0600: файл может содержать секреты)
func (l *Loader) Save(path string, cfg *Config) error {
	path, err := l.ResolvePath(path)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := l.fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := afero.WriteFile(l.fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
