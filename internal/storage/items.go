package storage

import (
	"context"

	"github.com/iudanet/clipsync/internal/models"
)

// ItemStore хранит последнюю локальную копию каждого элемента.
// Используется для обнаружения конфликтов и для раздачи элементов пирам.
type ItemStore interface {
	// PutItem stores the item, replacing any previous copy with the same ID
	PutItem(ctx context.Context, item *models.SyncItem) error

	// GetItem returns the local copy of an item
	// Returns ErrItemNotFound if the item doesn't exist
	GetItem(ctx context.Context, id string) (*models.SyncItem, error)

	// ListItems returns every stored item ordered by timestamp
	ListItems(ctx context.Context) ([]*models.SyncItem, error)

	// ItemsAfter returns items with Timestamp > since ordered by timestamp
	ItemsAfter(ctx context.Context, since int64) ([]*models.SyncItem, error)

	// DeleteItem removes the local copy
	DeleteItem(ctx context.Context, id string) error
}

// Store combines everything the engine keeps on disk.
type Store interface {
	StateStore
	ItemStore
	Close() error
}
