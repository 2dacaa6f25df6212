// Package outbox хранит элементы, ожидающие доставки провайдеру.
package outbox

import (
	"sort"
	"sync"

	"github.com/iudanet/clipsync/internal/models"
)

// DefaultMaxRetries лимит повторных попыток доставки по умолчанию.
const DefaultMaxRetries = 3

// Outbox - потокобезопасная очередь исходящих изменений.
// Enqueue может вызываться из любых горутин одновременно с flush.
type Outbox struct {
	items      map[string]*models.SyncItem
	filters    *FilterSet
	maxRetries int
	mu         sync.Mutex
}

// New creates an empty outbox.
func New(filters *FilterSet, maxRetries int) *Outbox {
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Outbox{
		items:      make(map[string]*models.SyncItem),
		filters:    filters,
		maxRetries: maxRetries,
	}
}

// Enqueue добавляет копию элемента, если он проходит фильтры.
// Отклоненный элемент молча отбрасывается (возвращается false).
// Повторная постановка того же ID заменяет ожидающую копию.
func (o *Outbox) Enqueue(item *models.SyncItem) bool {
	if item == nil {
		return false
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.filters.Allow(item) {
		return false
	}
	o.items[item.ID] = item.Clone()
	return true
}

// Restore loads persisted items without filtering.
func (o *Outbox) Restore(items []*models.SyncItem) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, item := range items {
		if item == nil {
			continue
		}
		o.items[item.ID] = item.Clone()
	}
}

// Snapshot returns copies of pending items ordered by
// (priority asc, timestamp asc, id asc).
func (o *Outbox) Snapshot() []*models.SyncItem {
	o.mu.Lock()
	defer o.mu.Unlock()

	result := make([]*models.SyncItem, 0, len(o.items))
	for _, item := range o.items {
		result = append(result, item.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return a.ID < b.ID
	})
	return result
}

// Ack снимает доставленный элемент с очереди. Если за время доставки
// элемент поставили заново, ожидающая копия остается. Возвращает false,
// если удалять нечего.
func (o *Outbox) Ack(delivered *models.SyncItem) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	item, ok := o.items[delivered.ID]
	if !ok || !sameAttempt(item, delivered) {
		return false
	}
	delete(o.items, delivered.ID)
	return true
}

// Fail регистрирует неудачную доставку. Пока Version <= maxRetries элемент
// остается в очереди с Version+1, иначе удаляется (dropped = true).
// Возвращает копию элемента после изменения или nil, если его нет в очереди
// или ожидающая копия уже заменена новой.
func (o *Outbox) Fail(delivered *models.SyncItem) (*models.SyncItem, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	item, ok := o.items[delivered.ID]
	if !ok || !sameAttempt(item, delivered) {
		return nil, false
	}
	if item.Version <= o.maxRetries {
		item.Version++
		return item.Clone(), false
	}
	delete(o.items, delivered.ID)
	return item.Clone(), true
}

// sameAttempt - ожидающая копия та же, что ушла в доставку
func sameAttempt(pending, delivered *models.SyncItem) bool {
	return pending.Checksum == delivered.Checksum &&
		pending.Version == delivered.Version &&
		pending.Timestamp == delivered.Timestamp
}

// Len returns the number of pending items.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.items)
}

// SetFilters replaces the filter set for future Enqueue calls.
func (o *Outbox) SetFilters(filters *FilterSet) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.filters = filters
}

// SetMaxRetries changes the retry cap.
func (o *Outbox) SetMaxRetries(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if n >= 0 {
		o.maxRetries = n
	}
}
