package engine

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/iudanet/clipsync/internal/conflict"
	"github.com/iudanet/clipsync/internal/devices"
	"github.com/iudanet/clipsync/internal/events"
	"github.com/iudanet/clipsync/internal/models"
	"github.com/iudanet/clipsync/internal/storage"
	"github.com/iudanet/clipsync/internal/syncerr"
	"github.com/iudanet/clipsync/internal/tracing"
	"github.com/iudanet/clipsync/pkg/api"
)

// pullOutcome - результат обработки одного полученного элемента
type pullOutcome int

const (
	outcomeSkipped pullOutcome = iota
	outcomeApplied
	outcomeConflict
	outcomeRejected
)

// pull получает изменения после PullCursor и применяет их по порядку.
func (e *Engine) pull(ctx context.Context) error {
	e.mu.Lock()
	kind := e.settings.Provider
	since := e.state.PullCursor
	e.mu.Unlock()

	ctx, span := e.tracer.Start(ctx, "engine.pull",
		attribute.String("provider", string(kind)),
		attribute.Int64("since", since))

	p, err := e.ensureProvider(ctx, kind)
	if err != nil {
		tracing.End(span, err)
		return err
	}

	items, err := p.PullChanges(ctx, since)
	if err != nil {
		err = syncerr.New(syncerr.DeliveryFailure, "pull", err)
		e.logger.Warn("Failed to pull changes", "provider", kind, "error", err)
		e.emitError(syncerr.DeliveryFailure, "", err, false)
		tracing.End(span, err)
		return err
	}

	counts := make(map[pullOutcome]int)
	cursor := since
	blocked := false
	for _, w := range items {
		if ctx.Err() != nil {
			break
		}
		outcome, err := e.processRemote(ctx, w)
		if err != nil {
			e.logger.Warn("Failed to process pulled item", "item_id", w.ID, "error", err)
		}
		counts[outcome]++

		// отклоненные элементы (syncerr) не запрашиваются повторно;
		// после локального сбоя курсор стоит, чтобы элемент пришел снова
		if err != nil && syncerr.KindOf(err) == "" {
			blocked = true
		}
		if !blocked {
			cursor = max(cursor, w.Timestamp)
		}
	}

	e.mu.Lock()
	e.state.PullCursor = cursor
	e.state.PruneResolvedConflicts(resolvedConflictHistory)
	e.mu.Unlock()

	span.SetAttributes(
		attribute.Int("pulled", len(items)),
		attribute.Int("applied", counts[outcomeApplied]),
		attribute.Int("conflicts", counts[outcomeConflict]))
	tracing.End(span, nil)

	e.logger.Info("Pull completed",
		"pulled", len(items),
		"applied", counts[outcomeApplied],
		"skipped", counts[outcomeSkipped],
		"conflicts", counts[outcomeConflict],
		"rejected", counts[outcomeRejected],
		"cursor", cursor)
	return nil
}

// processRemote применяет один полученный элемент:
// эхо своего устройства - пропуск; нет локальной копии - применить;
// тот же checksum - дубликат; разница во времени меньше окна - конфликт;
// иначе применить, только если удаленная версия новее.
func (e *Engine) processRemote(ctx context.Context, w *api.SyncItem) (pullOutcome, error) {
	e.mu.Lock()
	self := e.settings.DeviceID
	window := e.settings.ConflictWindowMs
	e.mu.Unlock()

	if w.DeviceID == self {
		return outcomeSkipped, nil
	}
	if _, seen := e.applied.Get(appliedKey(w.ID, w.Checksum)); seen {
		return outcomeSkipped, nil
	}

	if err := e.devices.Compatible(w.Origin.ProtocolVersion); err != nil {
		err = syncerr.New(syncerr.ConfigurationError, "pull "+w.ID, err)
		e.emitError(syncerr.ConfigurationError, w.ID, err, false)
		return outcomeRejected, err
	}

	remote, err := e.fromWire(w)
	if err != nil {
		e.logger.Error("Rejecting corrupted item", "item_id", w.ID, "device_id", w.DeviceID, "error", err)
		e.emitError(syncerr.IntegrityMismatch, w.ID, err, false)
		return outcomeRejected, err
	}

	e.devices.Update(devices.Sighting{
		DeviceID:        remote.DeviceID,
		Platform:        w.Origin.Platform,
		ProtocolVersion: w.Origin.ProtocolVersion,
		LastSeen:        remote.Timestamp,
		Version:         remote.Version,
	})
	if !e.devices.Accepts(remote.DeviceID) {
		return outcomeSkipped, nil
	}
	e.clock.Update(remote.Timestamp)

	local, err := e.store.GetItem(ctx, remote.ID)
	switch {
	case errors.Is(err, storage.ErrItemNotFound):
		return outcomeApplied, e.apply(ctx, remote)
	case err != nil:
		return outcomeSkipped, fmt.Errorf("failed to read local copy: %w", err)
	}

	if local.Checksum == remote.Checksum {
		e.applied.Add(appliedKey(remote.ID, remote.Checksum), struct{}{})
		return outcomeSkipped, nil
	}

	if c := conflict.Detect(local, remote, window); c != nil {
		return outcomeConflict, e.handleConflict(ctx, c)
	}

	if remote.IsNewerThan(local) {
		return outcomeApplied, e.apply(ctx, remote)
	}
	e.logger.Debug("Keeping newer local copy",
		"item_id", remote.ID,
		"local_timestamp", local.Timestamp,
		"remote_timestamp", remote.Timestamp)
	return outcomeSkipped, nil
}

// apply записывает удаленную версию в локальное хранилище
func (e *Engine) apply(ctx context.Context, item *models.SyncItem) error {
	if err := e.store.PutItem(ctx, item); err != nil {
		return fmt.Errorf("failed to apply %s: %w", item.ID, err)
	}
	e.applied.Add(appliedKey(item.ID, item.Checksum), struct{}{})
	e.emit(events.Event{Kind: events.KindChangeApplied, ItemID: item.ID, DeviceID: item.DeviceID})
	return nil
}

func appliedKey(id, checksum string) string {
	return id + "/" + checksum
}
