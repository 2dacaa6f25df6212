package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jonboulle/clockwork"

	"github.com/iudanet/clipsync/internal/validation"
	"github.com/iudanet/clipsync/pkg/api"
)

//go:generate moq -out items_mock_test.go . ItemStorage DeviceStorage

// ItemStorage определяет операции с элементами, нужные обработчикам
type ItemStorage interface {
	PutItem(ctx context.Context, item *api.SyncItem, receivedAt int64) (bool, *api.SyncItem, error)
	ItemsSince(ctx context.Context, since int64) ([]api.SyncItem, error)
}

// DeviceStorage определяет операции с устройствами, нужные обработчикам
type DeviceStorage interface {
	TouchDevice(ctx context.Context, device api.DeviceInfo) error
	ListDevices(ctx context.Context) ([]api.DeviceInfo, error)
}

// maxBodySize ограничивает размер тела PUT запроса (payload + метаданные)
const maxBodySize = validation.MaxPayloadSize*2 + 64*1024

// ItemsHandler обрабатывает загрузку элементов и выдачу изменений
type ItemsHandler struct {
	logger  *slog.Logger
	items   ItemStorage
	devices DeviceStorage
	clock   clockwork.Clock
}

// NewItemsHandler создает новый handler элементов
func NewItemsHandler(logger *slog.Logger, items ItemStorage, devices DeviceStorage, clock clockwork.Clock) *ItemsHandler {
	return &ItemsHandler{
		logger:  logger,
		items:   items,
		devices: devices,
		clock:   clock,
	}
}

// PutItem обрабатывает PUT /api/v1/items/{id}
// Идемпотентный upsert: сервер хранит самую новую копию каждого элемента
func (h *ItemsHandler) PutItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deviceID, ok := GetDeviceID(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "device id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id := r.PathValue("id")
	if err := validation.ValidateItemID(id); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	var item api.SyncItem
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&item); err != nil {
		h.logger.WarnContext(ctx, "failed to decode item", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if item.ID != id {
		sendError(h.logger, w, "item id does not match path", http.StatusBadRequest)
		return
	}
	if err := validation.ValidateItem(&item); err != nil {
		h.logger.WarnContext(ctx, "invalid item", slog.String("item_id", id), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	// Устройство может загружать только свои элементы
	if item.DeviceID != deviceID {
		h.logger.WarnContext(ctx, "item device mismatch",
			slog.String("expected", deviceID),
			slog.String("got", item.DeviceID),
			slog.String("item_id", id))
		sendError(h.logger, w, "item device_id mismatch", http.StatusForbidden)
		return
	}

	now := h.clock.Now().UnixMilli()
	applied, stored, err := h.items.PutItem(ctx, &item, now)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to store item", slog.String("item_id", id), slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	platform := GetPlatform(ctx)
	if platform == "" {
		platform = item.Origin.Platform
	}
	h.touch(ctx, api.DeviceInfo{
		ID:              deviceID,
		Platform:        platform,
		ProtocolVersion: item.Origin.ProtocolVersion,
		LastSeen:        now,
		LastVersion:     item.Version,
	})

	if !applied {
		h.logger.DebugContext(ctx, "item not stored (existing is newer)",
			slog.String("item_id", id),
			slog.Int("stored_version", stored.Version))
	}

	sendJSON(h.logger, w, api.PutItemResponse{
		ID:      id,
		Version: stored.Version,
		Applied: applied,
	}, http.StatusOK)
}

// Changes обрабатывает GET /api/v1/changes?since=timestamp
// Возвращает элементы с timestamp > since по возрастанию
func (h *ItemsHandler) Changes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	deviceID, ok := GetDeviceID(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "device id not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var since int64
	if s := r.URL.Query().Get("since"); s != "" {
		var err error
		since, err = strconv.ParseInt(s, 10, 64)
		if err != nil || since < 0 {
			h.logger.WarnContext(ctx, "invalid since parameter", slog.String("since", s))
			sendError(h.logger, w, "invalid since parameter", http.StatusBadRequest)
			return
		}
	}

	items, err := h.items.ItemsSince(ctx, since)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get items", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	cursor := since
	for _, item := range items {
		if item.Timestamp > cursor {
			cursor = item.Timestamp
		}
	}

	h.touch(ctx, api.DeviceInfo{
		ID:       deviceID,
		Platform: GetPlatform(ctx),
		LastSeen: h.clock.Now().UnixMilli(),
	})

	h.logger.DebugContext(ctx, "changes served",
		slog.String("device_id", deviceID),
		slog.Int64("since", since),
		slog.Int("items_count", len(items)))

	sendJSON(h.logger, w, api.ChangesResponse{
		Items:  items,
		Cursor: cursor,
	}, http.StatusOK)
}

// touch обновляет last_seen устройства; ошибка не влияет на ответ
func (h *ItemsHandler) touch(ctx context.Context, device api.DeviceInfo) {
	if err := h.devices.TouchDevice(ctx, device); err != nil {
		h.logger.WarnContext(ctx, "failed to touch device",
			slog.String("device_id", device.ID),
			slog.Any("error", err))
	}
}
