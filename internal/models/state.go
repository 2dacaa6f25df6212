package models

import (
	"slices"
	"sort"
)

// ProviderStatus records whether a transport could be initialized.
type ProviderStatus struct {
	LastError string `json:"last_error,omitempty"`
	Usable    bool   `json:"usable"`
}

// EngineState агрегирует все состояние движка синхронизации.
// Загружается из хранилища при старте и сохраняется целиком после каждой
// серии изменений.
type EngineState struct {
	Conflicts  map[string]*ConflictItem   `json:"conflicts"`   // Conflicts конфликты по ID (разрешенные хранятся как история)
	Devices    map[string]*DeviceInfo     `json:"devices"`     // Devices таблица устройств
	Providers  map[string]*ProviderStatus `json:"providers"`   // Providers состояние транспортов
	Outbox     []*SyncItem                `json:"outbox"`      // Outbox элементы, ожидающие доставки
	LastSyncAt int64                      `json:"last_sync_at"` // LastSyncAt время последней успешной синхронизации (unix ms)
	PullCursor int64                      `json:"pull_cursor"` // PullCursor максимальный timestamp среди полученных элементов
	Online     bool                       `json:"online"`
	Syncing    bool                       `json:"syncing"`
}

// NewEngineState returns an empty state with initialized maps.
func NewEngineState() *EngineState {
	return &EngineState{
		Conflicts: make(map[string]*ConflictItem),
		Devices:   make(map[string]*DeviceInfo),
		Providers: make(map[string]*ProviderStatus),
	}
}

// Normalize fills nil maps after decoding an older or partial blob.
func (s *EngineState) Normalize() {
	if s.Conflicts == nil {
		s.Conflicts = make(map[string]*ConflictItem)
	}
	if s.Devices == nil {
		s.Devices = make(map[string]*DeviceInfo)
	}
	if s.Providers == nil {
		s.Providers = make(map[string]*ProviderStatus)
	}
}

// Clone создает глубокую копию состояния
func (s *EngineState) Clone() *EngineState {
	clone := &EngineState{
		Conflicts:  make(map[string]*ConflictItem, len(s.Conflicts)),
		Devices:    make(map[string]*DeviceInfo, len(s.Devices)),
		Providers:  make(map[string]*ProviderStatus, len(s.Providers)),
		Outbox:     make([]*SyncItem, 0, len(s.Outbox)),
		LastSyncAt: s.LastSyncAt,
		PullCursor: s.PullCursor,
		Online:     s.Online,
		Syncing:    s.Syncing,
	}
	for id, c := range s.Conflicts {
		clone.Conflicts[id] = c.Clone()
	}
	for id, d := range s.Devices {
		clone.Devices[id] = d.Clone()
	}
	for kind, p := range s.Providers {
		status := *p
		clone.Providers[kind] = &status
	}
	for _, item := range s.Outbox {
		clone.Outbox = append(clone.Outbox, item.Clone())
	}
	return clone
}

// UnresolvedConflicts returns pending conflicts ordered by detection time.
func (s *EngineState) UnresolvedConflicts() []*ConflictItem {
	result := make([]*ConflictItem, 0)
	for _, c := range s.Conflicts {
		if !c.Resolved {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DetectedAt != result[j].DetectedAt {
			return result[i].DetectedAt < result[j].DetectedAt
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// PruneResolvedConflicts drops the oldest resolved conflicts so that at most
// keep of them remain. Unresolved conflicts are never dropped.
func (s *EngineState) PruneResolvedConflicts(keep int) {
	resolved := make([]*ConflictItem, 0)
	for _, c := range s.Conflicts {
		if c.Resolved {
			resolved = append(resolved, c)
		}
	}
	if len(resolved) <= keep {
		return
	}
	slices.SortFunc(resolved, func(a, b *ConflictItem) int {
		if a.ResolvedAt != b.ResolvedAt {
			if a.ResolvedAt < b.ResolvedAt {
				return -1
			}
			return 1
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	for _, c := range resolved[:len(resolved)-keep] {
		delete(s.Conflicts, c.ID)
	}
}
