// Package events - синхронная шина событий движка синхронизации.
package events

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/iudanet/clipsync/internal/syncerr"
)

// Kind тип события.
type Kind string

const (
	KindInitialized      Kind = "initialized"
	KindSyncStarted      Kind = "sync_started"
	KindItemQueued       Kind = "item_queued"
	KindItemSynced       Kind = "item_synced"
	KindSyncCompleted    Kind = "sync_completed"
	KindChangeApplied    Kind = "change_applied"
	KindConflictDetected Kind = "conflict_detected"
	KindConflictResolved Kind = "conflict_resolved"
	KindConfigUpdated    Kind = "config_updated"
	KindStopped          Kind = "stopped"
	KindError            Kind = "error"
)

// ErrorInfo описывает событие error.
type ErrorInfo struct {
	Type    syncerr.Kind `json:"type"`
	Detail  string       `json:"detail"`
	Dropped bool         `json:"dropped,omitempty"` // Dropped элемент потерян после исчерпания повторов
}

// Event is one notification. Fields not relevant to Kind are zero.
type Event struct {
	Error      *ErrorInfo `json:"error,omitempty"`
	Kind       Kind       `json:"kind"`
	ItemID     string     `json:"item_id,omitempty"`
	ConflictID string     `json:"conflict_id,omitempty"`
	DeviceID   string     `json:"device_id,omitempty"`
	Time       int64      `json:"time"`
	Synced     int        `json:"synced,omitempty"`
	Pending    int        `json:"pending,omitempty"`
}

// Handler receives events on the emitting goroutine and must return quickly.
type Handler func(Event)

type subscription struct {
	handler Handler
	kinds   []Kind
	id      uint64
}

// Bus dispatches events to subscribers synchronously.
type Bus struct {
	logger *slog.Logger
	subs   []subscription
	nextID uint64
	mu     sync.RWMutex
}

// NewBus creates an event bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{logger: logger}
}

// Subscribe registers handler for the given kinds, or for every kind when
// none are given. The returned function removes the subscription.
func (b *Bus) Subscribe(handler Handler, kinds ...Kind) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, handler: handler, kinds: slices.Clone(kinds)})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(id) })
	}
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool { return s.id == id })
}

// Publish delivers ev to every matching subscriber. A panicking subscriber is
// recovered and logged; the remaining subscribers still receive the event.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	targets := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if len(s.kinds) == 0 || slices.Contains(s.kinds, ev.Kind) {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range targets {
		b.deliver(s, ev)
	}
}

func (b *Bus) deliver(s subscription, ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("Event subscriber panicked",
				"kind", ev.Kind,
				"subscription", s.id,
				"panic", rec)
		}
	}()
	s.handler(ev)
}
