package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/clipsync/internal/server/storage"
	"github.com/iudanet/clipsync/pkg/api"
)

// TouchDevice creates or refreshes a device.
// Empty platform/protocol keep the previous values, last_seen never goes back.
func (s *Storage) TouchDevice(ctx context.Context, device api.DeviceInfo) error {
	query := `
		INSERT INTO devices (id, platform, protocol_version, last_seen, last_version)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			platform = CASE WHEN excluded.platform != '' THEN excluded.platform ELSE devices.platform END,
			protocol_version = CASE WHEN excluded.protocol_version != '' THEN excluded.protocol_version ELSE devices.protocol_version END,
			last_seen = MAX(devices.last_seen, excluded.last_seen),
			last_version = CASE WHEN excluded.last_version > 0 THEN excluded.last_version ELSE devices.last_version END
	`
	_, err := s.db.ExecContext(ctx, query,
		device.ID,
		device.Platform,
		device.ProtocolVersion,
		device.LastSeen,
		device.LastVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert device: %w", err)
	}
	return nil
}

// GetDevice retrieves a device by ID
func (s *Storage) GetDevice(ctx context.Context, id string) (*api.DeviceInfo, error) {
	var d api.DeviceInfo
	err := s.db.QueryRowContext(ctx,
		`SELECT id, platform, protocol_version, last_seen, last_version FROM devices WHERE id = ?`, id,
	).Scan(&d.ID, &d.Platform, &d.ProtocolVersion, &d.LastSeen, &d.LastVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return &d, nil
}

// ListDevices returns all known devices ordered by id
func (s *Storage) ListDevices(ctx context.Context) ([]api.DeviceInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, platform, protocol_version, last_seen, last_version FROM devices ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	devices := make([]api.DeviceInfo, 0)
	for rows.Next() {
		var d api.DeviceInfo
		if err := rows.Scan(&d.ID, &d.Platform, &d.ProtocolVersion, &d.LastSeen, &d.LastVersion); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}
	return devices, nil
}
