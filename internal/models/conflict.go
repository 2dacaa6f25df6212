package models

import "fmt"

// ConflictStrategy selects how competing edits are resolved. It is chosen
// globally, not per item.
type ConflictStrategy string

const (
	StrategyLastWriterWins ConflictStrategy = "last_writer_wins"
	StrategyDevicePriority ConflictStrategy = "device_priority"
	StrategyMerge          ConflictStrategy = "merge"
	StrategyManual         ConflictStrategy = "manual"
)

// ParseConflictStrategy converts a configuration value into a ConflictStrategy.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(s) {
	case StrategyLastWriterWins, StrategyDevicePriority, StrategyMerge, StrategyManual:
		return ConflictStrategy(s), nil
	}
	return "", fmt.Errorf("unknown conflict strategy %q", s)
}

// ResolutionMode tells whether a conflict waits for the caller or was decided automatically.
type ResolutionMode string

const (
	ResolutionManual ResolutionMode = "manual"
	ResolutionAuto   ResolutionMode = "auto"
)

// ConflictItem связывает локальную и удаленную версии одного элемента,
// у которых различаются checksum, а timestamps попадают в окно конфликта.
type ConflictItem struct {
	Local      *SyncItem        `json:"local"`       // Local локальная версия
	Remote     *SyncItem        `json:"remote"`      // Remote версия, полученная при pull
	Winner     *SyncItem        `json:"winner"`      // Winner выбранная версия (nil пока не разрешен)
	ID         string           `json:"id"`          // ID идентификатор конфликта
	ItemID     string           `json:"item_id"`     // ItemID общий ID элементов
	Strategy   ConflictStrategy `json:"strategy"`    // Strategy стратегия, действовавшая при обнаружении
	Mode       ResolutionMode   `json:"mode"`        // Mode manual или auto
	DetectedAt int64            `json:"detected_at"` // DetectedAt время обнаружения (unix ms)
	ResolvedAt int64            `json:"resolved_at"` // ResolvedAt время разрешения (unix ms)
	Resolved   bool             `json:"resolved"`    // Resolved флаг разрешения
}

// Clone создает глубокую копию конфликта
func (c *ConflictItem) Clone() *ConflictItem {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Local = c.Local.Clone()
	clone.Remote = c.Remote.Clone()
	clone.Winner = c.Winner.Clone()
	return &clone
}
