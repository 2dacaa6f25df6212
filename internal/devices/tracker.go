// Package devices ведет таблицу устройств-участников синхронизации.
package devices

import (
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/hashicorp/go-version"

	"github.com/iudanet/clipsync/internal/models"
)

// ProtocolVersion версия протокола синхронизации этого устройства.
const ProtocolVersion = "1.0"

// DefaultCompatibility принимаемые версии протокола удаленных устройств.
const DefaultCompatibility = ">= 1.0, < 2.0"

var (
	// ErrDeviceNotFound indicates that the device has never been seen
	ErrDeviceNotFound = errors.New("device not found")

	// ErrIncompatibleProtocol indicates that a device speaks an unsupported protocol version
	ErrIncompatibleProtocol = errors.New("incompatible protocol version")
)

// Sighting описывает один входящий элемент от устройства.
type Sighting struct {
	DeviceID        string
	Platform        string
	ProtocolVersion string
	LastSeen        int64
	Version         int
}

// Tracker хранит DeviceInfo по ID. Записи создаются при первом контакте
// и никогда не удаляются автоматически.
type Tracker struct {
	devices    map[string]*models.DeviceInfo
	priorities map[string]int
	constraint version.Constraints
	mu         sync.RWMutex
}

// NewTracker создает трекер. constraint - ограничение на версию протокола
// в синтаксисе go-version; пустая строка означает DefaultCompatibility.
func NewTracker(priorities map[string]int, constraint string) (*Tracker, error) {
	if constraint == "" {
		constraint = DefaultCompatibility
	}
	c, err := version.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid protocol constraint %q: %w", constraint, err)
	}
	return &Tracker{
		devices:    make(map[string]*models.DeviceInfo),
		priorities: maps.Clone(priorities),
		constraint: c,
	}, nil
}

// Load replaces the table with persisted records.
func (t *Tracker) Load(devices map[string]*models.DeviceInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.devices = make(map[string]*models.DeviceInfo, len(devices))
	for id, d := range devices {
		t.devices[id] = d.Clone()
	}
}

// Update записывает факт получения элемента от устройства.
// LastSeen и LastVersion только растут.
func (t *Tracker) Update(s Sighting) *models.DeviceInfo {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.devices[s.DeviceID]
	if !ok {
		d = &models.DeviceInfo{ID: s.DeviceID, SyncEnabled: true}
		t.devices[s.DeviceID] = d
	}
	if s.Platform != "" {
		d.Platform = s.Platform
	}
	if s.ProtocolVersion != "" {
		d.ProtocolVersion = s.ProtocolVersion
	}
	if s.LastSeen > d.LastSeen {
		d.LastSeen = s.LastSeen
	}
	if s.Version > d.LastVersion {
		d.LastVersion = s.Version
	}
	if rank, ok := t.priorities[s.DeviceID]; ok {
		d.PriorityRank = rank
	}
	return d.Clone()
}

// Get returns a copy of a device record.
func (t *Tracker) Get(id string) (*models.DeviceInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d, ok := t.devices[id]
	return d.Clone(), ok
}

// Rank returns the configured priority of a device; unknown devices rank 0.
func (t *Tracker) Rank(id string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if rank, ok := t.priorities[id]; ok {
		return rank
	}
	if d, ok := t.devices[id]; ok {
		return d.PriorityRank
	}
	return 0
}

// SetPriorities replaces configured ranks and applies them to known devices.
func (t *Tracker) SetPriorities(priorities map[string]int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.priorities = maps.Clone(priorities)
	for id, d := range t.devices {
		if rank, ok := t.priorities[id]; ok {
			d.PriorityRank = rank
		}
	}
}

// SetEnabled toggles whether changes from a device are accepted.
func (t *Tracker) SetEnabled(id string, enabled bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	d, ok := t.devices[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
	}
	d.SyncEnabled = enabled
	return nil
}

// Accepts reports whether changes from the device should be applied.
// Devices never seen before are accepted.
func (t *Tracker) Accepts(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d, ok := t.devices[id]
	return !ok || d.SyncEnabled
}

// Compatible проверяет версию протокола удаленного устройства.
// Пустая версия считается совместимой (устройства без заголовка версии).
func (t *Tracker) Compatible(protocolVersion string) error {
	if protocolVersion == "" {
		return nil
	}
	v, err := version.NewVersion(protocolVersion)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrIncompatibleProtocol, protocolVersion, err)
	}
	if !t.constraint.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrIncompatibleProtocol, v, t.constraint)
	}
	return nil
}

// List returns copies of all devices ordered by ID.
func (t *Tracker) List() []*models.DeviceInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]*models.DeviceInfo, 0, len(t.devices))
	for _, d := range t.devices {
		result = append(result, d.Clone())
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Snapshot returns a copy of the table for persistence.
func (t *Tracker) Snapshot() map[string]*models.DeviceInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]*models.DeviceInfo, len(t.devices))
	for id, d := range t.devices {
		result[id] = d.Clone()
	}
	return result
}
