// Package server собирает relay-сервер для провайдера custom:
// маршруты, цепочку middleware и фоновую очистку старых элементов.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iudanet/clipsync/internal/auth"
	"github.com/iudanet/clipsync/internal/server/handlers"
	"github.com/iudanet/clipsync/internal/server/middleware"
	"github.com/iudanet/clipsync/internal/server/storage"
)

// Config настройки relay-сервера
type Config struct {
	Addr            string
	TokenSecret     string
	RateLimit       int
	RateWindow      time.Duration
	Retention       time.Duration // 0 - хранить элементы бессрочно
	PruneInterval   time.Duration
	ShutdownTimeout time.Duration
}

// Storage объединяет хранилища элементов и устройств
type Storage interface {
	storage.ItemStorage
	storage.DeviceStorage
}

// Server представляет relay-сервер
type Server struct {
	logger   *slog.Logger
	clock    clockwork.Clock
	store    Storage
	limiter  *middleware.RateLimiter
	handler  http.Handler
	http     *http.Server
	cfg      Config
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New создает сервер. Секрет токенов обязателен.
func New(cfg Config, store Storage, clock clockwork.Clock, logger *slog.Logger) (*Server, error) {
	if cfg.TokenSecret == "" {
		return nil, errors.New("token secret is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 600
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = time.Hour
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		logger:  logger,
		clock:   clock,
		store:   store,
		cfg:     cfg,
		limiter: middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, clock, logger),
	}
	s.handler = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	items := handlers.NewItemsHandler(s.logger, s.store, s.store, s.clock)
	devices := handlers.NewDevicesHandler(s.logger, s.store)
	health := handlers.NewHealthHandler(s.logger, s.clock)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/health", health.Health)
	mux.HandleFunc("PUT /api/v1/items/{id}", items.PutItem)
	mux.HandleFunc("GET /api/v1/changes", items.Changes)
	mux.HandleFunc("GET /api/v1/devices", devices.List)

	return middleware.Chain(mux,
		middleware.RecoveryMiddleware(s.logger),
		middleware.LoggingWithSkip(s.logger, []string{"/api/v1/health"}),
		middleware.RateLimitMiddleware(s.limiter, s.logger),
		middleware.AuthMiddleware(s.logger, auth.TokenConfig{Secret: []byte(s.cfg.TokenSecret)}),
	)
}

// Handler возвращает http.Handler со всей цепочкой middleware
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run слушает адрес и обслуживает запросы до отмены ctx
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln до отмены ctx, затем корректно завершается
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.http = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cfg.Retention > 0 {
		s.wg.Add(1)
		go s.pruneLoop(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Relay server listening", "addr", ln.Addr().String())
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		cancel()
		s.stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)
	s.stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("Relay server stopped")
	return nil
}

func (s *Server) stop() {
	s.stopOnce.Do(func() {
		s.limiter.Stop()
	})
	s.wg.Wait()
}

// pruneLoop периодически удаляет элементы старше Retention
func (s *Server) pruneLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := s.clock.NewTicker(s.cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.Prune(ctx)
		}
	}
}

// Prune удаляет элементы, полученные раньше now - Retention
func (s *Server) Prune(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.cfg.Retention).UnixMilli()
	n, err := s.store.PruneReceivedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("Failed to prune items", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("Pruned expired items", "count", n)
	}
}
