package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/iudanet/clipsync/internal/models"
	"github.com/iudanet/clipsync/internal/storage"
)

// PutItem stores or replaces the local copy of an item and prunes the oldest
// items beyond the history limit.
func (s *Storage) PutItem(ctx context.Context, item *models.SyncItem) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	// Сериализуем item в JSON
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketItems)
		if bucket == nil {
			return fmt.Errorf("items bucket not found")
		}

		if err := bucket.Put([]byte(item.ID), data); err != nil {
			return fmt.Errorf("failed to save item: %w", err)
		}

		if s.maxItems > 0 {
			return pruneOldest(bucket, s.maxItems)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

type itemKey struct {
	id        string
	timestamp int64
}

// pruneOldest удаляет самые старые элементы, оставляя keep штук
func pruneOldest(bucket *bbolt.Bucket, keep int) error {
	var keys []itemKey
	err := bucket.ForEach(func(k, v []byte) error {
		var header struct {
			Timestamp int64 `json:"timestamp"`
		}
		if err := json.Unmarshal(v, &header); err != nil {
			return fmt.Errorf("failed to unmarshal item %s: %w", k, err)
		}
		keys = append(keys, itemKey{id: string(k), timestamp: header.Timestamp})
		return nil
	})
	if err != nil {
		return err
	}
	if len(keys) <= keep {
		return nil
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].timestamp != keys[j].timestamp {
			return keys[i].timestamp < keys[j].timestamp
		}
		return keys[i].id < keys[j].id
	})
	for _, k := range keys[:len(keys)-keep] {
		if err := bucket.Delete([]byte(k.id)); err != nil {
			return fmt.Errorf("failed to prune item %s: %w", k.id, err)
		}
	}
	return nil
}

// GetItem retrieves the local copy of an item by ID
func (s *Storage) GetItem(ctx context.Context, id string) (*models.SyncItem, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	var item *models.SyncItem

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketItems)
		if bucket == nil {
			return storage.ErrItemNotFound
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrItemNotFound
		}

		item = &models.SyncItem{}
		if err := json.Unmarshal(data, item); err != nil {
			return fmt.Errorf("failed to unmarshal item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

// ListItems returns all stored items ordered by timestamp
func (s *Storage) ListItems(ctx context.Context) ([]*models.SyncItem, error) {
	return s.ItemsAfter(ctx, -1)
}

// ItemsAfter returns items with Timestamp > since ordered by timestamp
func (s *Storage) ItemsAfter(ctx context.Context, since int64) ([]*models.SyncItem, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	items := make([]*models.SyncItem, 0)

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketItems)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			var item models.SyncItem
			if err := json.Unmarshal(v, &item); err != nil {
				return fmt.Errorf("failed to unmarshal item: %w", err)
			}

			// Фильтруем по timestamp
			if item.Timestamp > since {
				items = append(items, &item)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get items after timestamp: %w", err)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Timestamp != items[j].Timestamp {
			return items[i].Timestamp < items[j].Timestamp
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}

// DeleteItem removes the local copy of an item
func (s *Storage) DeleteItem(ctx context.Context, id string) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketItems)
		if bucket == nil {
			return storage.ErrItemNotFound
		}
		if bucket.Get([]byte(id)) == nil {
			return storage.ErrItemNotFound
		}
		return bucket.Delete([]byte(id))
	})
	if err != nil {
		return fmt.Errorf("delete transaction failed: %w", err)
	}

	return nil
}
