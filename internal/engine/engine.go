// Package engine - движок синхронизации: очередь исходящих изменений,
// получение удаленных изменений, обнаружение и разрешение конфликтов.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"

	"github.com/iudanet/clipsync/internal/clock"
	"github.com/iudanet/clipsync/internal/conflict"
	"github.com/iudanet/clipsync/internal/crypto"
	"github.com/iudanet/clipsync/internal/devices"
	"github.com/iudanet/clipsync/internal/events"
	"github.com/iudanet/clipsync/internal/models"
	"github.com/iudanet/clipsync/internal/outbox"
	"github.com/iudanet/clipsync/internal/provider"
	"github.com/iudanet/clipsync/internal/storage"
	"github.com/iudanet/clipsync/internal/syncerr"
	"github.com/iudanet/clipsync/internal/tracing"
)

const (
	// DefaultSyncInterval период планировщика
	DefaultSyncInterval = 300 * time.Second

	// DefaultMaxHistoryItems лимит локальных копий элементов
	DefaultMaxHistoryItems = 500

	// resolvedConflictHistory сколько разрешенных конфликтов хранится в состоянии
	resolvedConflictHistory = 100

	appliedCacheSize = 1024
)

// Settings - параметры движка, которые можно менять на лету через UpdateConfig.
type Settings struct {
	Filters            map[models.ItemType]outbox.Filter
	DevicePriorities   map[string]int
	DeviceID           string
	Platform           string
	Provider           provider.Kind
	ConflictStrategy   models.ConflictStrategy
	ProtocolConstraint string
	SyncInterval       time.Duration
	ConflictWindowMs   int64
	MaxRetries         int
	MaxHistoryItems    int
	Enabled            bool
	AutoSync           bool
}

// DefaultSettings returns settings with every default filled in.
func DefaultSettings(deviceID string) Settings {
	return Settings{
		DeviceID:         deviceID,
		Provider:         provider.KindCloud,
		ConflictStrategy: models.StrategyLastWriterWins,
		SyncInterval:     DefaultSyncInterval,
		ConflictWindowMs: conflict.DefaultWindowMs,
		MaxRetries:       outbox.DefaultMaxRetries,
		MaxHistoryItems:  DefaultMaxHistoryItems,
		Enabled:          true,
		AutoSync:         true,
	}
}

func (s *Settings) applyDefaults() {
	if s.SyncInterval <= 0 {
		s.SyncInterval = DefaultSyncInterval
	}
	if s.ConflictWindowMs <= 0 {
		s.ConflictWindowMs = conflict.DefaultWindowMs
	}
	if s.MaxRetries <= 0 {
		s.MaxRetries = outbox.DefaultMaxRetries
	}
	if s.MaxHistoryItems <= 0 {
		s.MaxHistoryItems = DefaultMaxHistoryItems
	}
	if s.ConflictStrategy == "" {
		s.ConflictStrategy = models.StrategyLastWriterWins
	}
}

// Options - зависимости движка.
type Options struct {
	Store    storage.Store
	Registry *provider.Registry
	Sealer   crypto.Sealer   // nil - без шифрования
	Tracer   *tracing.Tracer // nil - noop
	Clock    clockwork.Clock // nil - системные часы
	Logger   *slog.Logger
	Settings Settings
}

// Status - снимок состояния для вызывающей стороны.
type Status struct {
	DeviceID       string        `json:"device_id"`
	Provider       provider.Kind `json:"provider"`
	LastSyncAt     int64         `json:"last_sync_at"`
	PullCursor     int64         `json:"pull_cursor"`
	Pending        int           `json:"pending"`
	Conflicts      int           `json:"conflicts"`
	Devices        int           `json:"devices"`
	Online         bool          `json:"online"`
	Syncing        bool          `json:"syncing"`
	ProviderUsable bool          `json:"provider_usable"`
	Running        bool          `json:"running"`
}

// Engine владеет EngineState и всеми компонентами синхронизации.
// Публичные методы безопасны для вызова из нескольких горутин.
type Engine struct {
	store    storage.Store
	registry *provider.Registry
	sealer   crypto.Sealer
	tracer   *tracing.Tracer
	wall     clockwork.Clock
	logger   *slog.Logger

	clock   *clock.Clock
	bus     *events.Bus
	outbox  *outbox.Outbox
	devices *devices.Tracker
	applied *lru.Cache[string, struct{}] // недавно примененные (id, checksum)

	providers map[provider.Kind]provider.Provider
	state     *models.EngineState
	resolver  *conflict.Resolver
	cancel    context.CancelFunc // останавливает планировщик
	abort     context.CancelFunc // прерывает текущий цикл
	kick      chan struct{}
	reconfig  chan time.Duration
	settings  Settings

	inflight sync.WaitGroup
	loop     sync.WaitGroup
	mu       sync.Mutex
	syncing  bool
	rerun    cycleKind
	started  bool
	stopped  bool
}

// New создает движок и загружает сохраненное состояние.
// Неизвестная стратегия конфликтов или провайдер - ConfigurationError.
func New(ctx context.Context, opts Options) (*Engine, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("provider registry is required")
	}
	if opts.Settings.DeviceID == "" {
		return nil, syncerr.New(syncerr.ConfigurationError, "engine", fmt.Errorf("device id is required"))
	}
	if _, err := provider.ParseKind(string(opts.Settings.Provider)); err != nil {
		return nil, err
	}
	if opts.Sealer == nil {
		opts.Sealer = crypto.NoopSealer{}
	}
	if opts.Tracer == nil {
		opts.Tracer = tracing.Noop()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	settings := opts.Settings
	settings.applyDefaults()

	e := &Engine{
		store:     opts.Store,
		registry:  opts.Registry,
		sealer:    opts.Sealer,
		tracer:    opts.Tracer,
		wall:      opts.Clock,
		logger:    opts.Logger,
		clock:     clock.New(opts.Clock),
		bus:       events.NewBus(opts.Logger),
		providers: make(map[provider.Kind]provider.Provider),
		kick:      make(chan struct{}, 1),
		reconfig:  make(chan time.Duration, 1),
		settings:  settings,
	}

	filters, err := outbox.CompileFilters(settings.Filters)
	if err != nil {
		return nil, syncerr.New(syncerr.ConfigurationError, "filters", err)
	}
	e.outbox = outbox.New(filters, settings.MaxRetries)

	e.devices, err = devices.NewTracker(settings.DevicePriorities, settings.ProtocolConstraint)
	if err != nil {
		return nil, syncerr.New(syncerr.ConfigurationError, "devices", err)
	}

	e.resolver, err = conflict.NewResolver(settings.ConflictStrategy, e.devices.Rank, opts.Logger)
	if err != nil {
		return nil, err
	}

	e.applied, err = lru.New[string, struct{}](appliedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create applied cache: %w", err)
	}

	if err := e.load(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// load восстанавливает состояние из хранилища
func (e *Engine) load(ctx context.Context) error {
	state, err := e.store.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("failed to load engine state: %w", err)
	}

	e.outbox.Restore(state.Outbox)
	e.devices.Load(state.Devices)

	last := state.PullCursor
	for _, item := range state.Outbox {
		last = max(last, item.Timestamp)
	}
	e.clock.Restore(last)

	// сетевое состояние сообщает вызывающая сторона после старта
	state.Online = false
	state.Syncing = false
	state.Outbox = nil
	state.Devices = nil
	e.state = state

	e.logger.Debug("Engine state loaded",
		"pending", e.outbox.Len(),
		"conflicts", len(state.UnresolvedConflicts()),
		"pull_cursor", state.PullCursor)
	return nil
}

// Subscribe регистрирует обработчик событий
func (e *Engine) Subscribe(handler events.Handler, kinds ...events.Kind) func() {
	return e.bus.Subscribe(handler, kinds...)
}

func (e *Engine) emit(ev events.Event) {
	if ev.Time == 0 {
		ev.Time = e.wall.Now().UnixMilli()
	}
	e.bus.Publish(ev)
}

func (e *Engine) emitError(kind syncerr.Kind, itemID string, err error, dropped bool) {
	e.emit(events.Event{
		Kind:   events.KindError,
		ItemID: itemID,
		Error:  &events.ErrorInfo{Type: kind, Detail: err.Error(), Dropped: dropped},
	})
}

// Start инициализирует активный провайдер и запускает планировщик.
// Ошибка инициализации провайдера не останавливает движок: провайдер
// помечается непригодным, а ошибка публикуется событием.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return syncerr.ErrEngineStopped
	}
	if e.started {
		e.mu.Unlock()
		return fmt.Errorf("engine already started")
	}
	e.started = true
	settings := e.settings
	e.mu.Unlock()

	if _, err := e.ensureProvider(ctx, settings.Provider); err != nil && syncerr.IsKind(err, syncerr.ConfigurationError) {
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	// цикл не прерывается вместе с планировщиком: Stop дожидается его
	cycleCtx, abort := context.WithCancel(context.WithoutCancel(loopCtx))
	e.mu.Lock()
	e.cancel = cancel
	e.abort = abort
	e.mu.Unlock()

	e.loop.Add(1)
	go e.schedule(loopCtx, cycleCtx, settings.SyncInterval)

	e.emit(events.Event{Kind: events.KindInitialized, DeviceID: settings.DeviceID})
	e.logger.Info("Sync engine started",
		"device_id", settings.DeviceID,
		"provider", settings.Provider,
		"auto_sync", settings.AutoSync,
		"interval", settings.SyncInterval)

	return e.persist(ctx)
}

// Stop останавливает планировщик, дожидается текущего цикла, освобождает
// провайдеров, сохраняет состояние и публикует stopped. Повторный вызов ничего не делает.
// Если ctx истекает раньше, чем закончится цикл, цикл прерывается; прерванная
// доставка не считается неудачной попыткой.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil
	}
	e.stopped = true
	cancel, abort := e.cancel, e.abort
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	idle := make(chan struct{})
	go func() {
		e.loop.Wait()
		e.inflight.Wait()
		close(idle)
	}()
	select {
	case <-idle:
	case <-ctx.Done():
		e.logger.Warn("Sync cycle did not finish in time, aborting", "error", ctx.Err())
		if abort != nil {
			abort()
		}
		<-idle
	}
	if abort != nil {
		abort()
	}
	// ctx мог истечь, а состояние сохранить нужно
	ctx = context.WithoutCancel(ctx)

	e.mu.Lock()
	providers := make([]provider.Provider, 0, len(e.providers))
	for _, p := range e.providers {
		providers = append(providers, p)
	}
	e.mu.Unlock()

	var errs []error
	for _, p := range providers {
		if err := p.Cleanup(ctx); err != nil {
			e.logger.Warn("Provider cleanup failed", "provider", p.Kind(), "error", err)
			errs = append(errs, fmt.Errorf("cleanup %s: %w", p.Kind(), err))
		}
	}

	if err := e.persist(ctx); err != nil {
		errs = append(errs, err)
	}

	e.emit(events.Event{Kind: events.KindStopped})
	e.logger.Info("Sync engine stopped")
	return errors.Join(errs...)
}

// ensureProvider создает и инициализирует провайдер при первом обращении.
// Непригодный провайдер инициализируется повторно.
func (e *Engine) ensureProvider(ctx context.Context, kind provider.Kind) (provider.Provider, error) {
	e.mu.Lock()
	p, ok := e.providers[kind]
	status := e.state.Providers[string(kind)]
	e.mu.Unlock()

	if ok && status != nil && status.Usable {
		return p, nil
	}

	if !ok {
		var err error
		p, err = e.registry.New(kind, provider.Env{Source: e})
		if err != nil {
			e.logger.Error("Failed to create provider", "provider", kind, "error", err)
			e.emitError(syncerr.ConfigurationError, "", err, false)
			return nil, err
		}
		e.mu.Lock()
		e.providers[kind] = p
		e.mu.Unlock()
	}

	err := p.Initialize(ctx)
	e.mu.Lock()
	if err != nil {
		e.state.Providers[string(kind)] = &models.ProviderStatus{Usable: false, LastError: err.Error()}
	} else {
		e.state.Providers[string(kind)] = &models.ProviderStatus{Usable: true}
	}
	e.mu.Unlock()

	if err != nil {
		if !syncerr.IsKind(err, syncerr.ProviderUnavailable) {
			err = provider.Unavailable(kind, err)
		}
		e.logger.Warn("Provider unavailable", "provider", kind, "error", err)
		e.emitError(syncerr.ProviderUnavailable, "", err, false)
		return nil, err
	}

	e.logger.Info("Provider initialized", "provider", kind)
	return p, nil
}

// SetOnline сообщает движку о состоянии сети. Переход offline -> online
// запускает внеочередную отправку очереди.
func (e *Engine) SetOnline(ctx context.Context, online bool) error {
	e.mu.Lock()
	was := e.state.Online
	e.state.Online = online
	e.mu.Unlock()

	if was == online {
		return nil
	}
	e.logger.Info("Network state changed", "online", online)

	if online {
		// неудачи доставки уже опубликованы событиями и остаются в очереди
		if err := e.Flush(ctx); err != nil {
			e.logger.Warn("Flush after going online finished with errors", "error", err)
		}
		return nil
	}
	return e.persist(ctx)
}

// UpdateConfig применяет новые настройки. Неверные настройки отклоняются
// целиком, текущие остаются в силе.
func (e *Engine) UpdateConfig(ctx context.Context, s Settings) error {
	s.applyDefaults()

	e.mu.Lock()
	if s.DeviceID == "" {
		s.DeviceID = e.settings.DeviceID
	}
	e.mu.Unlock()

	if _, err := provider.ParseKind(string(s.Provider)); err != nil {
		return err
	}
	filters, err := outbox.CompileFilters(s.Filters)
	if err != nil {
		return syncerr.New(syncerr.ConfigurationError, "filters", err)
	}
	resolver, err := conflict.NewResolver(s.ConflictStrategy, e.devices.Rank, e.logger)
	if err != nil {
		return err
	}

	e.mu.Lock()
	prev := e.settings
	e.settings = s
	e.resolver = resolver
	e.mu.Unlock()

	e.outbox.SetFilters(filters)
	e.outbox.SetMaxRetries(s.MaxRetries)
	e.devices.SetPriorities(s.DevicePriorities)
	if limiter, ok := e.store.(interface{ SetMaxItems(n int) }); ok {
		limiter.SetMaxItems(s.MaxHistoryItems)
	}

	if s.SyncInterval != prev.SyncInterval {
		e.setInterval(s.SyncInterval)
	}

	if s.Provider != prev.Provider {
		e.releaseProvider(ctx, prev.Provider)
		if e.isRunning() {
			// ошибка инициализации уже опубликована событием
			_, _ = e.ensureProvider(ctx, s.Provider)
		}
	}

	e.emit(events.Event{Kind: events.KindConfigUpdated})
	e.logger.Info("Configuration updated",
		"provider", s.Provider,
		"strategy", s.ConflictStrategy,
		"interval", s.SyncInterval)

	return e.persist(ctx)
}

// setInterval передает планировщику новый период. Устаревшее значение,
// которое планировщик еще не забрал, заменяется; вызов никогда не блокируется.
func (e *Engine) setInterval(d time.Duration) {
	for {
		select {
		case e.reconfig <- d:
			return
		default:
		}
		select {
		case <-e.reconfig:
		default:
		}
	}
}

// releaseProvider освобождает провайдер, который перестал быть активным.
// Повторное переключение на него создаст и инициализирует новый экземпляр.
func (e *Engine) releaseProvider(ctx context.Context, kind provider.Kind) {
	e.mu.Lock()
	p, ok := e.providers[kind]
	delete(e.providers, kind)
	delete(e.state.Providers, string(kind))
	e.mu.Unlock()

	if !ok {
		return
	}
	if err := p.Cleanup(ctx); err != nil {
		e.logger.Warn("Provider cleanup failed", "provider", kind, "error", err)
		return
	}
	e.logger.Info("Provider released", "provider", kind)
}

func (e *Engine) isRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started && !e.stopped
}

// Settings returns a copy of the current settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.settings
	s.Filters = maps.Clone(s.Filters)
	s.DevicePriorities = maps.Clone(s.DevicePriorities)
	return s
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{
		DeviceID:   e.settings.DeviceID,
		Provider:   e.settings.Provider,
		LastSyncAt: e.state.LastSyncAt,
		PullCursor: e.state.PullCursor,
		Pending:    e.outbox.Len(),
		Conflicts:  len(e.state.UnresolvedConflicts()),
		Devices:    len(e.devices.List()),
		Online:     e.state.Online,
		Syncing:    e.syncing,
		Running:    e.started && !e.stopped,
	}
	if ps := e.state.Providers[string(e.settings.Provider)]; ps != nil {
		st.ProviderUsable = ps.Usable
	}
	return st
}

// Pending returns the queued items in delivery order.
func (e *Engine) Pending() []*models.SyncItem {
	return e.outbox.Snapshot()
}

// Conflicts returns unresolved conflicts ordered by detection time.
func (e *Engine) Conflicts() []*models.ConflictItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	pending := e.state.UnresolvedConflicts()
	result := make([]*models.ConflictItem, 0, len(pending))
	for _, c := range pending {
		result = append(result, c.Clone())
	}
	return result
}

// Devices returns every known device.
func (e *Engine) Devices() []*models.DeviceInfo {
	return e.devices.List()
}

// SetDeviceEnabled включает или отключает прием изменений от устройства
func (e *Engine) SetDeviceEnabled(ctx context.Context, deviceID string, enabled bool) error {
	if err := e.devices.SetEnabled(deviceID, enabled); err != nil {
		return err
	}
	return e.persist(ctx)
}

// persist сохраняет состояние целиком
func (e *Engine) persist(ctx context.Context) error {
	e.mu.Lock()
	snapshot := e.state.Clone()
	snapshot.Syncing = e.syncing
	e.mu.Unlock()

	snapshot.Outbox = e.outbox.Snapshot()
	snapshot.Devices = e.devices.Snapshot()

	if err := e.store.SaveState(ctx, snapshot); err != nil {
		e.logger.Error("Failed to persist engine state", "error", err)
		return fmt.Errorf("failed to persist engine state: %w", err)
	}
	return nil
}
