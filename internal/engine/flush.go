package engine

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/iudanet/clipsync/internal/events"
	"github.com/iudanet/clipsync/internal/models"
	"github.com/iudanet/clipsync/internal/syncerr"
	"github.com/iudanet/clipsync/internal/tracing"
	"github.com/iudanet/clipsync/pkg/api"
)

// CreateItem создает элемент от имени этого устройства и ставит его в очередь.
// Возвращает элемент и признак того, что фильтры его пропустили.
func (e *Engine) CreateItem(ctx context.Context, itemType models.ItemType, action models.Action, payload models.Payload, priority int) (*models.SyncItem, bool, error) {
	e.mu.Lock()
	deviceID := e.settings.DeviceID
	e.mu.Unlock()

	item, err := models.NewSyncItem(itemType, action, payload, priority, deviceID, e.clock.Tick())
	if err != nil {
		return nil, false, err
	}
	accepted, err := e.Enqueue(ctx, item)
	if err != nil {
		return nil, false, err
	}
	return item, accepted, nil
}

// Enqueue ставит элемент в очередь отправки и сохраняет локальную копию.
// Элемент, отклоненный фильтрами, молча пропускается (false, nil).
func (e *Engine) Enqueue(ctx context.Context, item *models.SyncItem) (bool, error) {
	e.mu.Lock()
	stopped, enabled := e.stopped, e.settings.Enabled
	online, autoSync, running := e.state.Online, e.settings.AutoSync, e.started && !e.stopped
	e.mu.Unlock()

	if stopped {
		return false, syncerr.ErrEngineStopped
	}
	if !enabled {
		e.logger.Debug("Sync disabled, item not queued", "item_id", item.ID)
		return false, nil
	}

	if !e.outbox.Enqueue(item) {
		e.logger.Debug("Item rejected by filters", "item_id", item.ID, "type", item.Type)
		return false, nil
	}
	e.clock.Update(item.Timestamp)

	if err := e.store.PutItem(ctx, item); err != nil {
		return true, fmt.Errorf("failed to store local copy: %w", err)
	}

	e.emit(events.Event{Kind: events.KindItemQueued, ItemID: item.ID, DeviceID: item.DeviceID})
	e.logger.Debug("Item queued", "item_id", item.ID, "type", item.Type, "priority", item.Priority)

	if err := e.persist(ctx); err != nil {
		return true, err
	}
	if online && autoSync && running {
		e.trigger()
	}
	return true, nil
}

// flush доставляет элементы по одному в порядке очереди. Элементы,
// поставленные во время цикла, ждут следующего.
func (e *Engine) flush(ctx context.Context) (int, error) {
	items := e.outbox.Snapshot()
	if len(items) == 0 {
		return 0, nil
	}

	e.mu.Lock()
	kind := e.settings.Provider
	e.mu.Unlock()

	ctx, span := e.tracer.Start(ctx, "engine.flush",
		attribute.Int("outbox.size", len(items)),
		attribute.String("provider", string(kind)))

	p, err := e.ensureProvider(ctx, kind)
	if err != nil {
		tracing.End(span, err)
		return 0, err
	}

	synced, failed := 0, 0
	var interrupted error
	for _, item := range items {
		if ctx.Err() != nil {
			interrupted = ctx.Err()
			break
		}

		err := e.deliver(ctx, p.SyncItem, item)
		if err == nil {
			if !e.outbox.Ack(item) {
				e.logger.Debug("Item re-queued during delivery, keeping newer copy", "item_id", item.ID)
			}
			synced++
			e.emit(events.Event{Kind: events.KindItemSynced, ItemID: item.ID, DeviceID: item.DeviceID})
			continue
		}

		// прерванная доставка не расходует попытку
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			e.logger.Info("Delivery interrupted, item stays queued", "item_id", item.ID, "error", err)
			interrupted = err
			break
		}

		failed++
		updated, dropped := e.outbox.Fail(item)
		if dropped {
			e.logger.Error("Item dropped after exhausting retries",
				"item_id", item.ID,
				"attempts", item.Version,
				"error", err)
			e.emitError(syncerr.DeliveryFailure, item.ID,
				syncerr.New(syncerr.DeliveryFailure, "sync "+item.ID, err), true)
			continue
		}
		if updated != nil {
			e.logger.Warn("Delivery failed, will retry",
				"item_id", item.ID,
				"version", updated.Version,
				"error", err)
		}
	}

	span.SetAttributes(attribute.Int("synced", synced), attribute.Int("failed", failed))
	e.logger.Info("Flush completed", "synced", synced, "failed", failed, "pending", e.outbox.Len())

	switch {
	case failed > 0:
		err = syncerr.New(syncerr.DeliveryFailure, "flush", fmt.Errorf("%d of %d items failed", failed, len(items)))
	case interrupted != nil:
		err = fmt.Errorf("flush interrupted: %w", interrupted)
	}
	tracing.End(span, err)
	return synced, err
}

type syncFunc func(ctx context.Context, item *api.SyncItem) error

// deliver кодирует элемент и отправляет его в отдельном span
func (e *Engine) deliver(ctx context.Context, send syncFunc, item *models.SyncItem) error {
	ctx, span := e.tracer.Start(ctx, "provider.sync_item",
		attribute.String("item.id", item.ID),
		attribute.Int("item.version", item.Version))

	wire, err := e.toWire(item)
	if err == nil {
		err = send(ctx, wire)
	}
	tracing.End(span, err)
	return err
}
