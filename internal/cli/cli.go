// Package cli реализует команды clipsync поверх движка синхронизации.
package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/iudanet/clipsync/internal/conflict"
	"github.com/iudanet/clipsync/internal/engine"
	"github.com/iudanet/clipsync/internal/events"
	"github.com/iudanet/clipsync/internal/iocli"
	"github.com/iudanet/clipsync/internal/models"
)

//go:generate moq -out engine_mock_test.go . Engine

// Engine - операции движка, которые использует CLI
type Engine interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	SetOnline(ctx context.Context, online bool) error
	CreateItem(ctx context.Context, itemType models.ItemType, action models.Action, payload models.Payload, priority int) (*models.SyncItem, bool, error)
	Flush(ctx context.Context) error
	SyncNow(ctx context.Context) error
	Status() engine.Status
	Conflicts() []*models.ConflictItem
	Devices() []*models.DeviceInfo
	ResolveConflict(ctx context.Context, conflictID string, keep conflict.Side) error
	Subscribe(handler events.Handler, kinds ...events.Kind) func()
}

var _ Engine = (*engine.Engine)(nil)

// stopTimeout ограничивает корректную остановку движка
const stopTimeout = 10 * time.Second

// Cli выполняет команды пользователя
type Cli struct {
	io     iocli.IO
	engine Engine
	mu     sync.Mutex // сериализует вывод событий
}

// New creates a Cli on top of an engine.
func New(io iocli.IO, eng Engine) *Cli {
	return &Cli{io: io, engine: eng}
}

// printEvent выводит событие движка одной строкой
func (c *Cli) printEvent(ev events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", time.UnixMilli(ev.Time).UTC().Format(time.RFC3339), ev.Kind)
	if ev.ItemID != "" {
		fmt.Fprintf(&b, " item=%s", ev.ItemID)
	}
	if ev.ConflictID != "" {
		fmt.Fprintf(&b, " conflict=%s", ev.ConflictID)
	}
	if ev.DeviceID != "" {
		fmt.Fprintf(&b, " device=%s", ev.DeviceID)
	}
	if ev.Kind == events.KindSyncCompleted {
		fmt.Fprintf(&b, " synced=%d pending=%d", ev.Synced, ev.Pending)
	}
	if ev.Error != nil {
		fmt.Fprintf(&b, " type=%s detail=%q", ev.Error.Type, ev.Error.Detail)
		if ev.Error.Dropped {
			b.WriteString(" dropped")
		}
	}
	c.io.Println(b.String())
}

// stop останавливает движок с ограничением по времени
func (c *Cli) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := c.engine.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop engine: %w", err)
	}
	return nil
}

func formatTime(ms int64) string {
	if ms == 0 {
		return "never"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
