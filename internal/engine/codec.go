package engine

import (
	"context"
	"fmt"

	"github.com/iudanet/clipsync/internal/devices"
	"github.com/iudanet/clipsync/internal/models"
	"github.com/iudanet/clipsync/internal/syncerr"
	"github.com/iudanet/clipsync/pkg/api"
)

// toWire кодирует элемент для провайдера: payload сериализуется в JSON и,
// если включено шифрование, запечатывается с ID элемента в качестве AAD.
// Checksum всегда считается по открытому payload.
func (e *Engine) toWire(item *models.SyncItem) (*api.SyncItem, error) {
	raw, err := models.EncodePayload(item.Payload)
	if err != nil {
		return nil, err
	}
	sealed, err := e.sealer.Seal(raw, []byte(item.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to seal payload of %s: %w", item.ID, err)
	}

	e.mu.Lock()
	origin := api.Origin{
		DeviceID:        e.settings.DeviceID,
		Platform:        e.settings.Platform,
		ProtocolVersion: devices.ProtocolVersion,
	}
	e.mu.Unlock()
	if item.DeviceID != origin.DeviceID {
		// элемент другого устройства, который раздаем пирам
		origin = api.Origin{DeviceID: item.DeviceID, ProtocolVersion: devices.ProtocolVersion}
	}

	return &api.SyncItem{
		Origin:    origin,
		ID:        item.ID,
		Type:      string(item.Type),
		Action:    string(item.Action),
		DeviceID:  item.DeviceID,
		Checksum:  item.Checksum,
		Payload:   sealed,
		Timestamp: item.Timestamp,
		Version:   item.Version,
		Priority:  item.Priority,
		Encrypted: e.sealer.Enabled(),
	}, nil
}

// fromWire восстанавливает элемент и проверяет checksum.
// Любое расхождение возвращается как IntegrityMismatch.
func (e *Engine) fromWire(w *api.SyncItem) (*models.SyncItem, error) {
	integrity := func(err error) error {
		return syncerr.New(syncerr.IntegrityMismatch, "decode "+w.ID, err)
	}

	itemType, err := models.ParseItemType(w.Type)
	if err != nil {
		return nil, integrity(err)
	}
	action, err := models.ParseAction(w.Action)
	if err != nil {
		return nil, integrity(err)
	}

	raw := w.Payload
	if w.Encrypted {
		if !e.sealer.Enabled() {
			return nil, integrity(fmt.Errorf("item is encrypted but encryption is disabled"))
		}
		raw, err = e.sealer.Open(w.Payload, []byte(w.ID))
		if err != nil {
			return nil, integrity(err)
		}
	}

	payload, err := models.DecodePayload(itemType, raw)
	if err != nil {
		return nil, integrity(err)
	}

	item := &models.SyncItem{
		ID:        w.ID,
		Type:      itemType,
		Action:    action,
		Payload:   payload,
		DeviceID:  w.DeviceID,
		Checksum:  w.Checksum,
		Timestamp: w.Timestamp,
		Version:   w.Version,
		Priority:  w.Priority,
	}
	ok, err := item.VerifyChecksum()
	if err != nil {
		return nil, integrity(err)
	}
	if !ok {
		return nil, integrity(syncerr.ErrChecksumMismatch)
	}
	return item, nil
}

// WireItemsAfter отдает пирам локальные копии элементов с Timestamp > since.
func (e *Engine) WireItemsAfter(ctx context.Context, since int64) ([]*api.SyncItem, error) {
	items, err := e.store.ItemsAfter(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	result := make([]*api.SyncItem, 0, len(items))
	for _, item := range items {
		w, err := e.toWire(item)
		if err != nil {
			e.logger.Warn("Skipping item that cannot be encoded", "item_id", item.ID, "error", err)
			continue
		}
		result = append(result, w)
	}
	return result, nil
}
