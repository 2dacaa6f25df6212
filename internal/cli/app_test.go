package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/clipsync/internal/config"
	"github.com/iudanet/clipsync/internal/iocli"
	"github.com/iudanet/clipsync/internal/provider"
	"github.com/iudanet/clipsync/internal/syncerr"
)

const testConfigPath = "/cfg/config.yaml"

// writeTestConfig кладет config.yaml в память, state.db во временный каталог
func writeTestConfig(t *testing.T, fs afero.Fs, extra string) string {
	t.Helper()
	statePath := filepath.Join(t.TempDir(), "state", "state.db")
	content := "device_id: dev-test\n" +
		"provider: custom\n" +
		"custom:\n  url: http://127.0.0.1:1\n" +
		"state_path: " + statePath + "\n" + extra
	require.NoError(t, afero.WriteFile(fs, testConfigPath, []byte(content), 0o600))
	return statePath
}

func TestNewApp(t *testing.T) {
	t.Setenv(config.PassphraseEnv, "")

	t.Run("builds engine from config", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		statePath := writeTestConfig(t, fs, "")
		logs := &bytes.Buffer{}

		app, err := NewApp(context.Background(), AppOptions{
			FS:         fs,
			ConfigPath: testConfigPath,
			LogOutput:  logs,
			LogLevel:   "debug",
		}, nil)
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, app.Close(context.Background()))
		}()

		assert.Equal(t, testConfigPath, app.ConfigPath)
		assert.Equal(t, statePath, app.Config.StatePath)
		st := app.Engine.Status()
		assert.Equal(t, "dev-test", st.DeviceID)
		assert.Equal(t, provider.KindCustom, st.Provider)
		assert.True(t, app.Logger.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("prompts for passphrase", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTestConfig(t, fs, "encryption_enabled: true\n")
		out := &bytes.Buffer{}

		app, err := NewApp(context.Background(), AppOptions{
			FS:         fs,
			ConfigPath: testConfigPath,
			LogOutput:  &bytes.Buffer{},
		}, iocli.New(strings.NewReader("secret pass\n"), out))
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, app.Close(context.Background()))
		}()

		assert.Contains(t, out.String(), "Encryption passphrase: ")
		assert.Equal(t, "secret pass", app.Config.EncryptionPassphrase)
		assert.NotEmpty(t, app.Config.EncryptionSalt)

		saved, err := afero.ReadFile(fs, testConfigPath)
		require.NoError(t, err)
		assert.NotContains(t, string(saved), "secret pass")
	})

	t.Run("passphrase prompt fails", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTestConfig(t, fs, "encryption_enabled: true\n")
		mockIO := &iocli.IOMock{
			ReadPasswordFunc: func(prompt string) (string, error) {
				return "", errors.New("not a terminal")
			},
		}

		_, err := NewApp(context.Background(), AppOptions{FS: fs, ConfigPath: testConfigPath}, mockIO)
		require.ErrorContains(t, err, "failed to read passphrase: not a terminal")
		require.Len(t, mockIO.ReadPasswordCalls(), 1)
		assert.Equal(t, "Encryption passphrase: ", mockIO.ReadPasswordCalls()[0].Prompt)
	})

	t.Run("invalid config", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, testConfigPath, []byte("provider: custom\n"), 0o600))

		_, err := NewApp(context.Background(), AppOptions{FS: fs, ConfigPath: testConfigPath}, nil)
		var syncErr *syncerr.Error
		require.ErrorAs(t, err, &syncErr)
		assert.Equal(t, syncerr.ConfigurationError, syncErr.Kind)
	})

	t.Run("state is locked by another instance", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeTestConfig(t, fs, "")
		opts := AppOptions{FS: fs, ConfigPath: testConfigPath, LogOutput: &bytes.Buffer{}}

		first, err := NewApp(context.Background(), opts, nil)
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, first.Close(context.Background()))
		}()

		_, err = NewApp(context.Background(), opts, nil)
		require.ErrorContains(t, err, "is another clipsync running?")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "warn", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
