// Package httpapi - провайдер для пользовательского HTTP endpoint (relay-сервер).
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/iudanet/clipsync/internal/auth"
	"github.com/iudanet/clipsync/internal/provider"
	"github.com/iudanet/clipsync/pkg/api"
)

// Config настройки провайдера custom
type Config struct {
	URL             string        `yaml:"url"`
	TokenSecret     string        `yaml:"token_secret"`
	DeviceID        string        `yaml:"-"`
	Platform        string        `yaml:"-"`
	Timeout         time.Duration `yaml:"timeout"`
	InitMaxElapsed  time.Duration `yaml:"init_max_elapsed"` // общее время повторов в Initialize
	TokenTTL        time.Duration `yaml:"-"`
	InitialInterval time.Duration `yaml:"-"`
}

// StatusError ошибка HTTP ответа сервера
type StatusError struct {
	Message string
	Code    int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Code, e.Message)
}

// Provider представляет HTTP клиент relay-сервера
type Provider struct {
	logger     *slog.Logger
	httpClient *http.Client
	cfg        Config
	baseURL    string
}

var _ provider.Provider = (*Provider)(nil)

// New создает провайдер. URL обязателен.
func New(cfg Config, logger *slog.Logger) (*Provider, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("custom provider url is required")
	}
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid custom provider url %q", cfg.URL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.InitMaxElapsed <= 0 {
		cfg.InitMaxElapsed = 30 * time.Second
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Provider{
		logger:  logger,
		cfg:     cfg,
		baseURL: u.String(),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// Kind returns provider.KindCustom.
func (p *Provider) Kind() provider.Kind {
	return provider.KindCustom
}

// Initialize проверяет доступность сервера через health endpoint.
// Временные ошибки повторяются с экспоненциальной задержкой, ошибки
// авторизации - нет.
func (p *Provider) Initialize(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.InitialInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		var resp api.HealthResponse
		err := p.doRequest(ctx, http.MethodGet, "/api/v1/health", nil, &resp)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && (se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxElapsedTime(p.cfg.InitMaxElapsed),
		backoff.WithNotify(func(err error, next time.Duration) {
			p.logger.Warn("Relay server not reachable, retrying",
				"url", p.baseURL,
				"retry_in", next,
				"error", err)
		}),
	)
	if err != nil {
		return provider.Unavailable(provider.KindCustom, err)
	}

	p.logger.Info("Relay server reachable", "url", p.baseURL)
	return nil
}

// SyncItem загружает элемент на сервер (PUT, идемпотентно по ID)
func (p *Provider) SyncItem(ctx context.Context, item *api.SyncItem) error {
	var resp api.PutItemResponse
	path := "/api/v1/items/" + url.PathEscape(item.ID)
	if err := p.doRequest(ctx, http.MethodPut, path, item, &resp); err != nil {
		return fmt.Errorf("put item request failed: %w", err)
	}
	if !resp.Applied {
		p.logger.Debug("Server kept newer copy", "item_id", item.ID, "server_version", resp.Version)
	}
	return nil
}

// PullChanges получает изменения после since
func (p *Provider) PullChanges(ctx context.Context, since int64) ([]*api.SyncItem, error) {
	var resp api.ChangesResponse
	path := "/api/v1/changes?since=" + strconv.FormatInt(since, 10)
	if err := p.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("changes request failed: %w", err)
	}

	items := make([]*api.SyncItem, 0, len(resp.Items))
	for i := range resp.Items {
		if resp.Items[i].Timestamp > since {
			items = append(items, &resp.Items[i])
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Timestamp < items[j].Timestamp })
	return items, nil
}

// Cleanup закрывает простаивающие соединения
func (p *Provider) Cleanup(ctx context.Context) error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// doRequest выполняет HTTP запрос
func (p *Provider) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.cfg.TokenSecret != "" {
		token, err := auth.IssueDeviceToken(auth.TokenConfig{
			Secret: []byte(p.cfg.TokenSecret),
			TTL:    p.cfg.TokenTTL,
		}, p.cfg.DeviceID, p.cfg.Platform)
		if err != nil {
			return fmt.Errorf("failed to issue device token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			msg := errResp.Error
			if errResp.Message != "" {
				msg += ": " + errResp.Message
			}
			return &StatusError{Code: resp.StatusCode, Message: msg}
		}
		return &StatusError{Code: resp.StatusCode, Message: string(bytes.TrimSpace(respBody))}
	}

	// Декодируем успешный ответ
	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
