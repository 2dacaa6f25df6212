package conflict

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/clipsync/internal/models"
	"github.com/iudanet/clipsync/internal/syncerr"
)

var (
	// ErrInvalidConflict indicates that a conflict is missing one of its sides
	ErrInvalidConflict = errors.New("conflict must have both local and remote items")

	// ErrItemIDMismatch indicates that the two sides do not share an ID
	ErrItemIDMismatch = errors.New("conflicting items have different IDs")

	// ErrUnknownSide indicates that a manual choice names neither side
	ErrUnknownSide = errors.New("side must be local or remote")
)

// RankFunc returns the priority rank configured for a device.
type RankFunc func(deviceID string) int

// Resolver applies one conflict strategy to every conflict.
type Resolver struct {
	logger   *slog.Logger
	rank     RankFunc
	strategy models.ConflictStrategy
}

// NewResolver создает резолвер. Неизвестная стратегия - ошибка конфигурации.
func NewResolver(strategy models.ConflictStrategy, rank RankFunc, logger *slog.Logger) (*Resolver, error) {
	if _, err := models.ParseConflictStrategy(string(strategy)); err != nil {
		return nil, syncerr.New(syncerr.ConfigurationError, "conflict strategy",
			fmt.Errorf("%w: %q", syncerr.ErrUnknownStrategy, strategy))
	}
	if rank == nil {
		rank = func(string) int { return 0 }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{strategy: strategy, rank: rank, logger: logger}, nil
}

// Strategy returns the configured strategy.
func (r *Resolver) Strategy() models.ConflictStrategy {
	return r.strategy
}

// Mode returns whether conflicts are decided automatically or queued.
func (r *Resolver) Mode() models.ResolutionMode {
	if r.strategy == models.StrategyManual {
		return models.ResolutionManual
	}
	return models.ResolutionAuto
}

// Resolve выбирает победителя. Для стратегии manual возвращает (nil, false, nil):
// конфликт должен дождаться решения вызывающей стороны.
func (r *Resolver) Resolve(c *models.ConflictItem) (*models.SyncItem, bool, error) {
	if c == nil || c.Local == nil || c.Remote == nil {
		return nil, false, ErrInvalidConflict
	}
	if c.Local.ID != c.Remote.ID {
		return nil, false, ErrItemIDMismatch
	}

	var (
		winner *models.SyncItem
		err    error
	)

	switch r.strategy {
	case models.StrategyManual:
		r.logger.Info("Conflict queued for manual review",
			"conflict_id", c.ID,
			"item_id", c.ItemID,
			"local_timestamp", c.Local.Timestamp,
			"remote_timestamp", c.Remote.Timestamp)
		return nil, false, nil
	case models.StrategyDevicePriority:
		winner = r.resolveDevicePriority(c.Local, c.Remote)
	case models.StrategyMerge:
		winner, err = resolveMerge(c.Local, c.Remote)
		if err != nil {
			return nil, false, err
		}
	default:
		winner = LastWriterWins(c.Local, c.Remote)
	}

	r.logger.Info("Conflict resolved",
		"conflict_id", c.ID,
		"item_id", c.ItemID,
		"strategy", r.strategy,
		"winner_device", winner.DeviceID,
		"winner_timestamp", winner.Timestamp)

	return winner, true, nil
}

// LastWriterWins возвращает копию версии с большим timestamp
// (при равенстве - с большим DeviceID).
func LastWriterWins(local, remote *models.SyncItem) *models.SyncItem {
	if remote.IsNewerThan(local) {
		return remote.Clone()
	}
	return local.Clone()
}

func (r *Resolver) resolveDevicePriority(local, remote *models.SyncItem) *models.SyncItem {
	localRank := r.rank(local.DeviceID)
	remoteRank := r.rank(remote.DeviceID)

	switch {
	case localRank > remoteRank:
		return local.Clone()
	case remoteRank > localRank:
		return remote.Clone()
	default:
		return LastWriterWins(local, remote)
	}
}

// resolveMerge объединяет map-payload (локальные ключи важнее удаленных).
// Немерджируемые payload разрешаются по LWW.
func resolveMerge(local, remote *models.SyncItem) (*models.SyncItem, error) {
	merged, ok := models.MergePayloads(local.Payload, remote.Payload)
	if !ok {
		return LastWriterWins(local, remote), nil
	}

	result := local.Clone()
	result.Payload = merged
	result.Action = models.ActionUpdate
	if remote.Timestamp > result.Timestamp {
		result.Timestamp = remote.Timestamp
	}
	if err := result.UpdateChecksum(); err != nil {
		return nil, fmt.Errorf("failed to checksum merged payload: %w", err)
	}
	return result, nil
}

// Side names one version of a conflict.
type Side string

const (
	SideLocal  Side = "local"
	SideRemote Side = "remote"
)

// Pick returns a copy of the chosen side of a conflict for manual resolution.
func Pick(c *models.ConflictItem, side Side) (*models.SyncItem, error) {
	if c == nil || c.Local == nil || c.Remote == nil {
		return nil, ErrInvalidConflict
	}
	switch side {
	case SideLocal:
		return c.Local.Clone(), nil
	case SideRemote:
		return c.Remote.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSide, side)
}
