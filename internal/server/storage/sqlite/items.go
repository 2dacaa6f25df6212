package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/clipsync/internal/server/storage"
	"github.com/iudanet/clipsync/pkg/api"
)

const itemColumns = `id, type, action, device_id, checksum, payload, timestamp, version,
	priority, encrypted, origin_device_id, origin_platform, origin_protocol_version`

type rowScanner interface {
	Scan(dest ...any) error
}

// PutItem upserts an item inside a transaction.
// Returns true if item was stored, false and the stored copy if existing is newer.
func (s *Storage) PutItem(ctx context.Context, item *api.SyncItem, receivedAt int64) (bool, *api.SyncItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	existing, err := scanItem(tx.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, item.ID))
	if err != nil && !errors.Is(err, storage.ErrItemNotFound) {
		return false, nil, fmt.Errorf("failed to check existing item: %w", err)
	}

	// Если существующая копия новее - не сохраняем
	if existing != nil && !storage.Supersedes(item, existing) {
		return false, existing, nil
	}

	query := `
		INSERT INTO items (` + itemColumns + `, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			action = excluded.action,
			device_id = excluded.device_id,
			checksum = excluded.checksum,
			payload = excluded.payload,
			timestamp = excluded.timestamp,
			version = excluded.version,
			priority = excluded.priority,
			encrypted = excluded.encrypted,
			origin_device_id = excluded.origin_device_id,
			origin_platform = excluded.origin_platform,
			origin_protocol_version = excluded.origin_protocol_version,
			received_at = excluded.received_at
	`
	_, err = tx.ExecContext(ctx, query,
		item.ID,
		item.Type,
		item.Action,
		item.DeviceID,
		item.Checksum,
		item.Payload,
		item.Timestamp,
		item.Version,
		item.Priority,
		boolToInt(item.Encrypted),
		item.Origin.DeviceID,
		item.Origin.Platform,
		item.Origin.ProtocolVersion,
		receivedAt,
	)
	if err != nil {
		return false, nil, fmt.Errorf("failed to upsert item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, nil, fmt.Errorf("failed to commit item: %w", err)
	}

	stored := *item
	return true, &stored, nil
}

// GetItem retrieves a single item by ID
func (s *Storage) GetItem(ctx context.Context, id string) (*api.SyncItem, error) {
	return scanItem(s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
}

// ItemsSince retrieves items with timestamp greater than since, oldest first
func (s *Storage) ItemsSince(ctx context.Context, since int64) ([]api.SyncItem, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE timestamp > ? ORDER BY timestamp ASC, id ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	items := make([]api.SyncItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

// PruneReceivedBefore deletes items received before the given server time
func (s *Storage) PruneReceivedBefore(ctx context.Context, receivedBefore int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE received_at < ?`, receivedBefore)
	if err != nil {
		return 0, fmt.Errorf("failed to prune items: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func scanItem(row rowScanner) (*api.SyncItem, error) {
	var (
		item      api.SyncItem
		encrypted int
	)
	err := row.Scan(
		&item.ID,
		&item.Type,
		&item.Action,
		&item.DeviceID,
		&item.Checksum,
		&item.Payload,
		&item.Timestamp,
		&item.Version,
		&item.Priority,
		&encrypted,
		&item.Origin.DeviceID,
		&item.Origin.Platform,
		&item.Origin.ProtocolVersion,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to scan item: %w", err)
	}
	item.Encrypted = encrypted != 0
	return &item, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
