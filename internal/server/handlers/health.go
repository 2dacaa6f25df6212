package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jonboulle/clockwork"

	"github.com/iudanet/clipsync/pkg/api"
)

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	logger *slog.Logger
	clock  clockwork.Clock
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, clock clockwork.Clock) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		clock:  clock,
	}
}

// Health обрабатывает GET /api/v1/health
// Отдает время сервера, клиент использует запрос для проверки токена
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	sendJSON(h.logger, w, api.HealthResponse{
		Status:    "ok",
		Timestamp: h.clock.Now().UnixMilli(),
	}, http.StatusOK)
}
