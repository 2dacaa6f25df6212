package storage

import (
	"context"

	"github.com/iudanet/clipsync/pkg/api"
)

// ItemStorage defines interface for relayed items persistence.
// Items are stored as received: payload may be ciphertext and is never parsed.
type ItemStorage interface {
	// PutItem upserts an item keeping the newest copy per ID.
	// Returns applied=false and the stored copy when the existing one is newer.
	PutItem(ctx context.Context, item *api.SyncItem, receivedAt int64) (bool, *api.SyncItem, error)

	// GetItem retrieves the current copy of an item
	// Returns ErrItemNotFound if item doesn't exist
	GetItem(ctx context.Context, id string) (*api.SyncItem, error)

	// ItemsSince returns items with timestamp > since ordered by (timestamp, id)
	// Returns empty slice if no items found
	ItemsSince(ctx context.Context, since int64) ([]api.SyncItem, error)

	// PruneReceivedBefore removes items received before the given server time
	PruneReceivedBefore(ctx context.Context, receivedBefore int64) (int64, error)
}

// DeviceStorage defines interface for devices seen by the relay
type DeviceStorage interface {
	// TouchDevice creates or refreshes a device record
	TouchDevice(ctx context.Context, device api.DeviceInfo) error

	// GetDevice returns ErrDeviceNotFound if device was never seen
	GetDevice(ctx context.Context, id string) (*api.DeviceInfo, error)

	// ListDevices returns all devices ordered by id
	ListDevices(ctx context.Context) ([]api.DeviceInfo, error)
}

// Supersedes reports whether incoming should replace existing on the relay:
// newer timestamp wins, then the greater device id, then the higher version.
// An identical re-put supersedes so that retries stay idempotent.
func Supersedes(incoming, existing *api.SyncItem) bool {
	if incoming.Timestamp != existing.Timestamp {
		return incoming.Timestamp > existing.Timestamp
	}
	if incoming.DeviceID != existing.DeviceID {
		return incoming.DeviceID > existing.DeviceID
	}
	return incoming.Version >= existing.Version
}
