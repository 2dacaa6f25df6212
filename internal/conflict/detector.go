// Package conflict обнаруживает конкурирующие изменения одного элемента и
// выбирает версию-победителя по глобально настроенной стратегии.
package conflict

import (
	"github.com/google/uuid"

	"github.com/iudanet/clipsync/internal/models"
)

// DefaultWindowMs окно конфликта по умолчанию (мс).
const DefaultWindowMs int64 = 5000

// Detect reports a conflict between the locally stored copy and a pulled
// item: same ID, different checksum and |Δtimestamp| < windowMs. Returns nil
// when there is no conflict. The caller fills Strategy, Mode and DetectedAt.
func Detect(local, remote *models.SyncItem, windowMs int64) *models.ConflictItem {
	if local == nil || remote == nil {
		return nil
	}
	if local.ID != remote.ID {
		return nil
	}
	if local.Checksum == remote.Checksum {
		return nil
	}

	delta := local.Timestamp - remote.Timestamp
	if delta < 0 {
		delta = -delta
	}
	if delta >= windowMs {
		return nil
	}

	return &models.ConflictItem{
		ID:     uuid.New().String(),
		ItemID: local.ID,
		Local:  local.Clone(),
		Remote: remote.Clone(),
	}
}
