package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/clipsync/pkg/api"
)

// DevicesHandler отдает список устройств, известных серверу
type DevicesHandler struct {
	logger  *slog.Logger
	devices DeviceStorage
}

// NewDevicesHandler создает новый handler устройств
func NewDevicesHandler(logger *slog.Logger, devices DeviceStorage) *DevicesHandler {
	return &DevicesHandler{
		logger:  logger,
		devices: devices,
	}
}

// List обрабатывает GET /api/v1/devices
func (h *DevicesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	devices, err := h.devices.ListDevices(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list devices", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.DevicesResponse{Devices: devices}, http.StatusOK)
}
