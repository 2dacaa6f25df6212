package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/clipsync/internal/crypto"
)

// ItemType определяет, к какой подсистеме относится изменение.
type ItemType string

const (
	ItemTypeClipboard  ItemType = "clipboard"
	ItemTypeSettings   ItemType = "settings"
	ItemTypeCache      ItemType = "cache"
	ItemTypeConfig     ItemType = "config"
	ItemTypeAutomation ItemType = "automation"
)

// ItemTypes lists every recognized item type in a stable order.
var ItemTypes = []ItemType{
	ItemTypeClipboard,
	ItemTypeSettings,
	ItemTypeCache,
	ItemTypeConfig,
	ItemTypeAutomation,
}

// Action описывает вид изменения.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ParseItemType converts a name into an ItemType.
func ParseItemType(s string) (ItemType, error) {
	for _, t := range ItemTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown item type %q", s)
}

// ParseAction converts a name into an Action.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionCreate, ActionUpdate, ActionDelete:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// SyncItem представляет одно изменение, которое распространяется между устройствами.
// ID стабилен между повторными отправками, при ретраях меняется только Version.
type SyncItem struct {
	Payload   Payload  `json:"-"`         // Payload типизированные данные изменения (схема определяется Type)
	ID        string   `json:"id"`        // ID уникальный идентификатор (UUID), никогда не переиспользуется
	Type      ItemType `json:"type"`      // Type подсистема: clipboard, settings, cache, config, automation
	Action    Action   `json:"action"`    // Action create, update или delete
	DeviceID  string   `json:"device_id"` // DeviceID устройство-источник
	Checksum  string   `json:"checksum"`  // Checksum SHA-256 канонического JSON payload
	Timestamp int64    `json:"timestamp"` // Timestamp время создания на устройстве-источнике (unix ms)
	Version   int      `json:"version"`   // Version счетчик попыток доставки, начинается с 1
	Priority  int      `json:"priority"`  // Priority меньшее значение доставляется раньше
}

// NewSyncItem builds a well-formed item: fresh ID, version 1 and a checksum
// computed over the payload. Fails when type or action is not recognized or
// the payload variant does not belong to the type.
func NewSyncItem(itemType ItemType, action Action, payload Payload, priority int, deviceID string, timestamp int64) (*SyncItem, error) {
	if _, err := ParseItemType(string(itemType)); err != nil {
		return nil, err
	}
	if _, err := ParseAction(string(action)); err != nil {
		return nil, err
	}
	if payload == nil && action != ActionDelete {
		return nil, fmt.Errorf("payload is required for %s", action)
	}
	if payload != nil && payload.Kind() != itemType {
		return nil, fmt.Errorf("payload of kind %q does not match item type %q", payload.Kind(), itemType)
	}

	item := &SyncItem{
		ID:        uuid.New().String(),
		Type:      itemType,
		Action:    action,
		Payload:   payload,
		Timestamp: timestamp,
		DeviceID:  deviceID,
		Version:   1,
		Priority:  priority,
	}
	if err := item.UpdateChecksum(); err != nil {
		return nil, err
	}

	return item, nil
}

// UpdateChecksum recomputes Checksum from the current payload.
// Must be called whenever Payload is replaced.
func (i *SyncItem) UpdateChecksum() error {
	sum, err := PayloadChecksum(i.Payload)
	if err != nil {
		return err
	}
	i.Checksum = sum
	return nil
}

// VerifyChecksum reports whether the stored checksum matches the payload.
func (i *SyncItem) VerifyChecksum() (bool, error) {
	sum, err := PayloadChecksum(i.Payload)
	if err != nil {
		return false, err
	}
	return sum == i.Checksum, nil
}

// PayloadChecksum returns the fingerprint of a payload. A nil payload
// (delete without body) hashes as JSON null.
func PayloadChecksum(p Payload) (string, error) {
	raw, err := EncodePayload(p)
	if err != nil {
		return "", err
	}
	sum, err := crypto.Checksum(raw)
	if err != nil {
		return "", fmt.Errorf("failed to compute checksum: %w", err)
	}
	return sum, nil
}

// IsNewerThan сравнивает две версии одного элемента по правилу LWW:
// сначала Timestamp (больший выигрывает), при равенстве DeviceID (лексикографически).
func (i *SyncItem) IsNewerThan(other *SyncItem) bool {
	if i.Timestamp > other.Timestamp {
		return true
	}
	if i.Timestamp < other.Timestamp {
		return false
	}
	// Timestamps равны - сравниваем DeviceID для детерминизма
	return i.DeviceID > other.DeviceID
}

// Clone создает глубокую копию элемента
func (i *SyncItem) Clone() *SyncItem {
	if i == nil {
		return nil
	}
	clone := *i
	if i.Payload != nil {
		clone.Payload = i.Payload.clone()
	}
	return &clone
}

// MarshalJSON stores the payload next to the item fields so that the item can
// be persisted and restored without losing the variant.
func (i SyncItem) MarshalJSON() ([]byte, error) {
	type alias SyncItem
	raw, err := EncodePayload(i.Payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		alias
		Payload json.RawMessage `json:"payload"`
	}{alias: alias(i), Payload: json.RawMessage(raw)})
}

// UnmarshalJSON restores the payload variant using the Type field.
func (i *SyncItem) UnmarshalJSON(data []byte) error {
	type alias SyncItem
	var aux struct {
		alias
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*i = SyncItem(aux.alias)
	payload, err := DecodePayload(i.Type, []byte(aux.Payload))
	if err != nil {
		return err
	}
	i.Payload = payload
	return nil
}
