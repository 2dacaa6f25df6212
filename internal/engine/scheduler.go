package engine

import (
	"context"
	"errors"
	"time"

	"github.com/iudanet/clipsync/internal/events"
)

// cycleKind - какие фазы выполнить в цикле синхронизации
type cycleKind uint8

const (
	cycleFlush cycleKind = 1 << iota
	cyclePull

	cycleFull = cycleFlush | cyclePull
)

// Flush отправляет очередь активному провайдеру. Ничего не делает, если
// движок выключен или нет сети. Если цикл уже идет, запрос выполнится
// сразу после него.
func (e *Engine) Flush(ctx context.Context) error {
	return e.run(ctx, cycleFlush)
}

// Pull получает удаленные изменения и применяет их.
func (e *Engine) Pull(ctx context.Context) error {
	return e.run(ctx, cyclePull)
}

// SyncNow выполняет отправку и затем получение изменений.
func (e *Engine) SyncNow(ctx context.Context) error {
	return e.run(ctx, cycleFull)
}

// run - единственный вход в цикл синхронизации. Одновременно выполняется
// не более одного цикла; запрос во время цикла ставит флаг повтора.
func (e *Engine) run(ctx context.Context, kind cycleKind) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil
	}
	if !e.settings.Enabled || !e.state.Online {
		e.mu.Unlock()
		return nil
	}
	if e.syncing {
		e.rerun |= kind
		e.mu.Unlock()
		return nil
	}
	e.syncing = true
	e.inflight.Add(1)
	e.mu.Unlock()
	defer e.inflight.Done()

	var errs []error
	for {
		if err := e.cycle(ctx, kind); err != nil {
			errs = append(errs, err)
		}

		e.mu.Lock()
		kind = e.rerun
		e.rerun = 0
		if kind == 0 || e.stopped || !e.state.Online || ctx.Err() != nil {
			e.syncing = false
			e.mu.Unlock()
			break
		}
		e.mu.Unlock()
	}

	if err := e.persist(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (e *Engine) cycle(ctx context.Context, kind cycleKind) error {
	e.emit(events.Event{Kind: events.KindSyncStarted})

	var (
		synced int
		errs   []error
	)
	if kind&cycleFlush != 0 {
		n, err := e.flush(ctx)
		synced += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	if kind&cyclePull != 0 {
		if err := e.pull(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		e.mu.Lock()
		e.state.LastSyncAt = e.wall.Now().UnixMilli()
		e.mu.Unlock()
	}

	e.emit(events.Event{
		Kind:    events.KindSyncCompleted,
		Synced:  synced,
		Pending: e.outbox.Len(),
	})
	return errors.Join(errs...)
}

// trigger просит планировщик выполнить отправку вне расписания
func (e *Engine) trigger() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// schedule - цикл планировщика: по таймеру flush+pull, по trigger только flush.
// Отмена ctx останавливает планировщик; циклы идут под cycleCtx, который
// отменяется, только если Stop не дождался их завершения.
func (e *Engine) schedule(ctx, cycleCtx context.Context, interval time.Duration) {
	defer e.loop.Done()

	ticker := e.wall.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case d := <-e.reconfig:
			ticker.Reset(d)
			e.logger.Debug("Sync interval changed", "interval", d)
		case <-ticker.Chan():
			if !e.autoSync() {
				continue
			}
			if err := e.SyncNow(cycleCtx); err != nil {
				e.logger.Warn("Scheduled sync finished with errors", "error", err)
			}
		case <-e.kick:
			if err := e.Flush(cycleCtx); err != nil {
				e.logger.Warn("Triggered flush finished with errors", "error", err)
			}
		}
	}
}

func (e *Engine) autoSync() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings.AutoSync
}
