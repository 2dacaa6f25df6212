package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/clipsync/internal/models"
	"github.com/iudanet/clipsync/internal/storage"
)

var keyEngineState = []byte("engine")

// LoadState reads the engine state blob.
// Returns an empty state if nothing has been saved yet.
func (s *Storage) LoadState(ctx context.Context) (*models.EngineState, error) {
	if s.db == nil {
		return nil, storage.ErrStorageClosed
	}

	state := models.NewEngineState()

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketState)
		if bucket == nil {
			return fmt.Errorf("state bucket not found")
		}

		data := bucket.Get(keyEngineState)
		if data == nil {
			// Первый запуск
			return nil
		}

		if err := json.Unmarshal(data, state); err != nil {
			return fmt.Errorf("failed to unmarshal engine state: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	state.Normalize()
	return state, nil
}

// SaveState overwrites the engine state blob
func (s *Storage) SaveState(ctx context.Context, state *models.EngineState) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal engine state: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketState)
		if bucket == nil {
			return fmt.Errorf("state bucket not found")
		}
		return bucket.Put(keyEngineState, data)
	})
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}

	return nil
}
