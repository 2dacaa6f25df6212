package lan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/iudanet/clipsync/pkg/api"
)

const maxBeaconSize = 1024

// Discovery рассылает UDP broadcast beacon и слушает beacon других устройств.
type Discovery struct {
	clock    clockwork.Clock
	logger   *slog.Logger
	peers    *PeerTable
	conn     *net.UDPConn
	accept   func(protocolVersion string) bool
	self     api.Beacon
	target   *net.UDPAddr
	interval time.Duration
	wg       sync.WaitGroup
}

// NewDiscovery prepares discovery on the given UDP port. accept filters
// peers by protocol version; nil accepts all.
func NewDiscovery(self api.Beacon, port int, interval time.Duration, peers *PeerTable,
	accept func(string) bool, clock clockwork.Clock, logger *slog.Logger) *Discovery {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if accept == nil {
		accept = func(string) bool { return true }
	}
	return &Discovery{
		clock:    clock,
		logger:   logger,
		peers:    peers,
		accept:   accept,
		self:     self,
		target:   &net.UDPAddr{IP: net.IPv4bcast, Port: port},
		interval: interval,
	}
}

// Start opens the UDP socket and launches the beacon and listen loops.
func (d *Discovery) Start(ctx context.Context) error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: d.target.Port})
	if err != nil {
		return fmt.Errorf("failed to listen udp :%d: %w", d.target.Port, err)
	}
	d.conn = conn

	d.wg.Add(2)
	go d.listenLoop()
	go d.beaconLoop(ctx)
	return nil
}

// Stop closes the socket and waits for the loops.
func (d *Discovery) Stop() {
	if d.conn != nil {
		_ = d.conn.Close()
	}
	d.wg.Wait()
}

func (d *Discovery) beaconLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := d.clock.NewTicker(d.interval)
	defer ticker.Stop()

	d.sendBeacon()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			d.sendBeacon()
			if n := d.peers.Prune(); n > 0 {
				d.logger.Debug("Expired LAN peers removed", "count", n)
			}
		}
	}
}

func (d *Discovery) sendBeacon() {
	data, err := json.Marshal(d.self)
	if err != nil {
		d.logger.Error("Failed to marshal beacon", "error", err)
		return
	}
	if _, err := d.conn.WriteToUDP(data, d.target); err != nil {
		d.logger.Debug("Failed to send beacon", "error", err)
	}
}

func (d *Discovery) listenLoop() {
	defer d.wg.Done()

	buf := make([]byte, maxBeaconSize)
	for {
		n, addr, err := d.conn.ReadFromUDP(buf)
		if err != nil {
			// сокет закрыт в Stop
			return
		}
		d.HandleBeacon(buf[:n], addr.IP)
	}
}

// HandleBeacon разбирает beacon и обновляет таблицу пиров.
// Собственные и несовместимые beacon игнорируются.
func (d *Discovery) HandleBeacon(data []byte, from net.IP) {
	var b api.Beacon
	if err := json.Unmarshal(data, &b); err != nil {
		d.logger.Debug("Malformed beacon", "from", from, "error", err)
		return
	}
	if b.DeviceID == "" || b.DeviceID == d.self.DeviceID || b.Port <= 0 {
		return
	}
	if !d.accept(b.ProtocolVersion) {
		d.logger.Warn("Ignoring peer with incompatible protocol",
			"device_id", b.DeviceID,
			"protocol_version", b.ProtocolVersion)
		return
	}

	baseURL := "http://" + net.JoinHostPort(from.String(), strconv.Itoa(b.Port))
	if d.peers.Upsert(b.DeviceID, baseURL, b.ProtocolVersion) {
		d.logger.Info("LAN peer discovered", "device_id", b.DeviceID, "url", baseURL)
	}
}
