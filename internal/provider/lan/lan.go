// Package lan - провайдер local: устройства находят друг друга UDP beacon'ами
// и обмениваются элементами напрямую по HTTP.
package lan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iudanet/clipsync/internal/auth"
	"github.com/iudanet/clipsync/internal/provider"
	"github.com/iudanet/clipsync/pkg/api"
)

// Config настройки провайдера local
type Config struct {
	ListenAddr      string        `yaml:"listen_addr"`
	TokenSecret     string        `yaml:"token_secret"`
	DeviceID        string        `yaml:"-"`
	Platform        string        `yaml:"-"`
	ProtocolVersion string        `yaml:"-"`
	StaticPeers     []string      `yaml:"static_peers"`
	BeaconInterval  time.Duration `yaml:"beacon_interval"`
	PeerTTL         time.Duration `yaml:"peer_ttl"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	DiscoveryPort   int           `yaml:"discovery_port"` // 0 отключает broadcast
}

// ErrAllPeersFailed возвращается, когда ни один пир не принял запрос
var ErrAllPeersFailed = errors.New("all peers failed")

// ErrPeerPullFailed возвращается, когда часть пиров не отдала изменения.
// Курсор в этом случае сдвигать нельзя.
var ErrPeerPullFailed = errors.New("failed to pull from some peers")

// Provider реализует provider.Provider поверх локальной сети
type Provider struct {
	clock     clockwork.Clock
	logger    *slog.Logger
	source    provider.ItemSource
	accept    func(string) bool
	peers     *PeerTable
	inbox     *inbox
	server    *http.Server
	discovery *Discovery
	client    *http.Client
	cancel    context.CancelFunc
	addr      string
	cfg       Config
	wg        sync.WaitGroup
}

var _ provider.Provider = (*Provider)(nil)

// Option настраивает Provider
type Option func(*Provider)

// WithClock подменяет часы (для тестов)
func WithClock(c clockwork.Clock) Option {
	return func(p *Provider) { p.clock = c }
}

// WithProtocolFilter задает проверку версии протокола пиров
func WithProtocolFilter(accept func(string) bool) Option {
	return func(p *Provider) { p.accept = accept }
}

// New создает провайдер. source отдает пирам элементы этого устройства.
func New(cfg Config, source provider.ItemSource, logger *slog.Logger, opts ...Option) (*Provider, error) {
	if cfg.DeviceID == "" {
		return nil, fmt.Errorf("device id is required for local provider")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":0"
	}
	if cfg.BeaconInterval <= 0 {
		cfg.BeaconInterval = 5 * time.Second
	}
	if cfg.PeerTTL <= 0 {
		cfg.PeerTTL = 3 * cfg.BeaconInterval
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Provider{
		clock:  clockwork.NewRealClock(),
		logger: logger,
		source: source,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.inbox = newInbox(p.logger, maxInboxSize)
	p.peers = NewPeerTable(p.clock, cfg.PeerTTL)
	for _, u := range cfg.StaticPeers {
		p.peers.AddStatic(u)
	}
	return p, nil
}

// Kind returns provider.KindLocal.
func (p *Provider) Kind() provider.Kind {
	return provider.KindLocal
}

// Peers returns the currently reachable peers.
func (p *Provider) Peers() []Peer {
	return p.peers.Alive()
}

// Addr returns the peer server address after Initialize.
func (p *Provider) Addr() string {
	return p.addr
}

// Initialize поднимает HTTP сервер для пиров и запускает обнаружение.
func (p *Provider) Initialize(ctx context.Context) error {
	ln, err := net.Listen("tcp", p.cfg.ListenAddr)
	if err != nil {
		return provider.Unavailable(provider.KindLocal, fmt.Errorf("failed to listen %s: %w", p.cfg.ListenAddr, err))
	}

	h := newPeerHandler(p.logger, p.source, p.inbox, p.clock)
	if p.cfg.TokenSecret != "" {
		h.tokens = &auth.TokenConfig{Secret: []byte(p.cfg.TokenSecret)}
	}
	p.server = &http.Server{
		Handler:           h.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("Peer server stopped", "error", err)
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	p.addr = ln.Addr().String()
	p.logger.Info("Peer server listening", "addr", p.addr)

	if p.cfg.DiscoveryPort > 0 {
		beacon := api.Beacon{
			DeviceID:        p.cfg.DeviceID,
			Platform:        p.cfg.Platform,
			ProtocolVersion: p.cfg.ProtocolVersion,
			Port:            port,
		}
		p.discovery = NewDiscovery(beacon, p.cfg.DiscoveryPort, p.cfg.BeaconInterval, p.peers, p.accept, p.clock, p.logger)
		if err := p.discovery.Start(runCtx); err != nil {
			p.discovery = nil
			_ = p.Cleanup(ctx)
			return provider.Unavailable(provider.KindLocal, err)
		}
	}

	return nil
}

// SyncItem рассылает элемент всем известным пирам. Ошибка возвращается,
// только если не удалось доставить ни одному пиру; без пиров доставлять некому.
func (p *Provider) SyncItem(ctx context.Context, item *api.SyncItem) error {
	peers := p.peers.Alive()
	if len(peers) == 0 {
		p.logger.Debug("No LAN peers, item kept locally", "item_id", item.ID)
		return nil
	}

	var errs []error
	for _, peer := range peers {
		var resp api.PutItemResponse
		if err := p.doRequest(ctx, http.MethodPost, peer.BaseURL+"/peer/v1/items", item, &resp); err != nil {
			p.logger.Warn("Failed to push item to peer",
				"item_id", item.ID,
				"peer", peer.DeviceID,
				"error", err)
			errs = append(errs, fmt.Errorf("%s: %w", peer.DeviceID, err))
		}
	}
	if len(errs) == len(peers) {
		return fmt.Errorf("%w: %w", ErrAllPeersFailed, errors.Join(errs...))
	}
	return nil
}

// PullChanges собирает изменения всех пиров и входящие элементы.
// Если хотя бы один живой пир не ответил, возвращается ошибка и ничего
// не применяется: иначе курсор уйдет дальше его элементов.
func (p *Provider) PullChanges(ctx context.Context, since int64) ([]*api.SyncItem, error) {
	byKey := make(map[string]*api.SyncItem)
	add := func(it *api.SyncItem) {
		if it.Timestamp <= since || it.DeviceID == p.cfg.DeviceID {
			return
		}
		byKey[it.ID+"/"+it.Checksum] = it
	}

	for _, it := range p.inbox.after(since) {
		add(it)
	}

	peers := p.peers.Alive()
	var errs []error
	for _, peer := range peers {
		var resp api.ChangesResponse
		url := peer.BaseURL + "/peer/v1/changes?since=" + strconv.FormatInt(since, 10)
		if err := p.doRequest(ctx, http.MethodGet, url, nil, &resp); err != nil {
			p.logger.Warn("Failed to pull from peer", "peer", peer.DeviceID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", peer.DeviceID, err))
			continue
		}
		for i := range resp.Items {
			add(&resp.Items[i])
		}
	}
	switch {
	case len(errs) == 0:
	case len(errs) == len(peers):
		return nil, fmt.Errorf("%w: %w", ErrAllPeersFailed, errors.Join(errs...))
	default:
		return nil, fmt.Errorf("%w: %w", ErrPeerPullFailed, errors.Join(errs...))
	}

	items := make([]*api.SyncItem, 0, len(byKey))
	for _, it := range byKey {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Timestamp != items[j].Timestamp {
			return items[i].Timestamp < items[j].Timestamp
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// Cleanup останавливает сервер и обнаружение
func (p *Provider) Cleanup(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	if p.discovery != nil {
		p.discovery.Stop()
	}

	var err error
	if p.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		err = p.server.Shutdown(shutdownCtx)
	}
	p.wg.Wait()
	p.client.CloseIdleConnections()
	return err
}

func (p *Provider) doRequest(ctx context.Context, method, url string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.cfg.TokenSecret != "" {
		token, err := auth.IssueDeviceToken(auth.TokenConfig{Secret: []byte(p.cfg.TokenSecret)}, p.cfg.DeviceID, p.cfg.Platform)
		if err != nil {
			return fmt.Errorf("failed to issue device token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("peer returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
