package engine

import (
	"context"
	"fmt"

	"github.com/iudanet/clipsync/internal/conflict"
	"github.com/iudanet/clipsync/internal/events"
	"github.com/iudanet/clipsync/internal/models"
	"github.com/iudanet/clipsync/internal/syncerr"
)

// handleConflict сохраняет конфликт и, если стратегия автоматическая,
// сразу применяет победителя. Конфликт manual ждет ResolveConflict.
func (e *Engine) handleConflict(ctx context.Context, c *models.ConflictItem) error {
	e.mu.Lock()
	for _, existing := range e.state.Conflicts {
		if !existing.Resolved && existing.ItemID == c.ItemID && existing.Remote.Checksum == c.Remote.Checksum {
			// та же пара версий уже ждет решения
			e.mu.Unlock()
			return nil
		}
	}
	resolver := e.resolver
	c.Strategy = resolver.Strategy()
	c.Mode = resolver.Mode()
	c.DetectedAt = e.wall.Now().UnixMilli()
	e.state.Conflicts[c.ID] = c
	e.mu.Unlock()

	e.logger.Info("Conflict detected",
		"conflict_id", c.ID,
		"item_id", c.ItemID,
		"strategy", c.Strategy,
		"local_device", c.Local.DeviceID,
		"remote_device", c.Remote.DeviceID)
	e.emit(events.Event{
		Kind:       events.KindConflictDetected,
		ItemID:     c.ItemID,
		ConflictID: c.ID,
		DeviceID:   c.Remote.DeviceID,
	})

	winner, auto, err := resolver.Resolve(c)
	if err != nil {
		err = syncerr.New(syncerr.ConflictUnresolved, "resolve "+c.ID, err)
		e.emitError(syncerr.ConflictUnresolved, c.ItemID, err, false)
		return err
	}
	if !auto {
		return nil
	}
	return e.applyResolution(ctx, c.ID, winner)
}

// ResolveConflict применяет решение пользователя. Конфликт разрешается
// ровно один раз: повторный вызов возвращает ErrConflictResolved и ничего не меняет.
func (e *Engine) ResolveConflict(ctx context.Context, conflictID string, keep conflict.Side) error {
	e.mu.Lock()
	c, ok := e.state.Conflicts[conflictID]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", syncerr.ErrConflictNotFound, conflictID)
	}
	if c.Resolved {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", syncerr.ErrConflictResolved, conflictID)
	}
	winner, err := conflict.Pick(c, keep)
	e.mu.Unlock()
	if err != nil {
		return err
	}

	if err := e.applyResolution(ctx, conflictID, winner); err != nil {
		return err
	}
	return e.persist(ctx)
}

// applyResolution записывает победителя и помечает конфликт разрешенным.
// Победитель, которого нет у другой стороны (слияние, приоритет устройства,
// ручной выбор своей версии), получает новый timestamp и уходит в очередь
// отправки: relay хранит одну копию на ID, и без повторной отправки
// устройства разойдутся. Победитель LWW у обеих сторон совпадает сам.
func (e *Engine) applyResolution(ctx context.Context, conflictID string, winner *models.SyncItem) error {
	e.mu.Lock()
	c, ok := e.state.Conflicts[conflictID]
	if !ok {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", syncerr.ErrConflictNotFound, conflictID)
	}
	if c.Resolved {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", syncerr.ErrConflictResolved, conflictID)
	}
	republish := c.Strategy != models.StrategyLastWriterWins && winner.Checksum != c.Remote.Checksum
	if republish {
		winner = winner.Clone()
		winner.DeviceID = e.settings.DeviceID
		winner.Timestamp = e.clock.Tick()
		winner.Version = 1
	}
	c.Resolved = true
	c.ResolvedAt = e.wall.Now().UnixMilli()
	c.Winner = winner.Clone()
	localChecksum := c.Local.Checksum
	itemID := c.ItemID
	e.mu.Unlock()

	if err := e.store.PutItem(ctx, winner); err != nil {
		e.mu.Lock()
		c.Resolved = false
		c.ResolvedAt = 0
		c.Winner = nil
		e.mu.Unlock()
		return fmt.Errorf("failed to store resolution of %s: %w", conflictID, err)
	}
	e.applied.Add(appliedKey(winner.ID, winner.Checksum), struct{}{})

	e.logger.Info("Conflict resolved",
		"conflict_id", conflictID,
		"item_id", itemID,
		"winner_device", winner.DeviceID,
		"republish", republish)
	e.emit(events.Event{
		Kind:       events.KindConflictResolved,
		ItemID:     itemID,
		ConflictID: conflictID,
		DeviceID:   winner.DeviceID,
	})
	if winner.Checksum != localChecksum {
		e.emit(events.Event{Kind: events.KindChangeApplied, ItemID: itemID, DeviceID: winner.DeviceID})
	}
	if republish {
		e.queueResolution(winner)
	}
	return nil
}

// queueResolution ставит победителя в очередь, минуя локальное сохранение
func (e *Engine) queueResolution(winner *models.SyncItem) {
	if !e.outbox.Enqueue(winner) {
		e.logger.Debug("Resolution rejected by filters", "item_id", winner.ID, "type", winner.Type)
		return
	}
	e.emit(events.Event{Kind: events.KindItemQueued, ItemID: winner.ID, DeviceID: winner.DeviceID})

	e.mu.Lock()
	kick := e.state.Online && e.settings.AutoSync && e.started && !e.stopped
	e.mu.Unlock()
	if kick {
		e.trigger()
	}
}
