package storage

import (
	"context"

	"github.com/iudanet/clipsync/internal/models"
)

// StateStore persists the engine state as a single blob.
type StateStore interface {
	// LoadState returns the persisted state or an empty one on first start
	LoadState(ctx context.Context) (*models.EngineState, error)

	// SaveState overwrites the persisted state
	SaveState(ctx context.Context, state *models.EngineState) error
}
