package lan

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Peer устройство в локальной сети
type Peer struct {
	LastSeen        time.Time
	DeviceID        string
	BaseURL         string // http://host:port
	ProtocolVersion string
	Static          bool // задан в конфигурации, не устаревает
}

// PeerTable хранит пиров, найденных по beacon. Пир исчезает из Alive,
// если от него не было beacon дольше ttl.
type PeerTable struct {
	clock clockwork.Clock
	peers map[string]*Peer
	ttl   time.Duration
	mu    sync.RWMutex
}

// NewPeerTable creates an empty table.
func NewPeerTable(clock clockwork.Clock, ttl time.Duration) *PeerTable {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PeerTable{clock: clock, ttl: ttl, peers: make(map[string]*Peer)}
}

// Upsert records a beacon from a peer. Returns true for a new peer.
func (t *PeerTable) Upsert(deviceID, baseURL, protocolVersion string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.peers[deviceID]
	if !ok {
		p = &Peer{DeviceID: deviceID}
		t.peers[deviceID] = p
	}
	p.BaseURL = baseURL
	p.ProtocolVersion = protocolVersion
	p.LastSeen = t.clock.Now()
	return !ok
}

// AddStatic registers a peer that never expires.
func (t *PeerTable) AddStatic(baseURL string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.peers["static:"+baseURL] = &Peer{DeviceID: "static:" + baseURL, BaseURL: baseURL, Static: true}
}

// Alive returns peers seen within ttl, ordered by device ID.
func (t *PeerTable) Alive() []Peer {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.clock.Now()
	result := make([]Peer, 0, len(t.peers))
	for _, p := range t.peers {
		if p.Static || t.ttl <= 0 || now.Sub(p.LastSeen) <= t.ttl {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DeviceID < result[j].DeviceID })
	return result
}

// Prune removes expired peers and returns how many were removed.
func (t *PeerTable) Prune() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ttl <= 0 {
		return 0
	}
	now := t.clock.Now()
	removed := 0
	for id, p := range t.peers {
		if !p.Static && now.Sub(p.LastSeen) > t.ttl {
			delete(t.peers, id)
			removed++
		}
	}
	return removed
}
