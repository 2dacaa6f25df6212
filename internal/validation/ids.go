// Package validation проверяет идентификаторы и элементы, приходящие по сети.
package validation

import (
	"fmt"
	"regexp"

	"github.com/iudanet/clipsync/internal/models"
	"github.com/iudanet/clipsync/pkg/api"
)

// IDPattern определяет допустимый формат device id и item id:
// латинские буквы, цифры и символы . _ : -
var IDPattern = regexp.MustCompile(`^[a-zA-Z0-9._:-]+$`)

// checksumPattern hex SHA-256
var checksumPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

const (
	// MaxIDLen максимальная длина идентификатора
	MaxIDLen = 128
	// MaxPayloadSize максимальный размер payload элемента (байт)
	MaxPayloadSize = 1 << 20
)

// ValidateDeviceID проверяет идентификатор устройства
func ValidateDeviceID(id string) error {
	return validateID("device id", id)
}

// ValidateItemID проверяет идентификатор элемента
func ValidateItemID(id string) error {
	return validateID("item id", id)
}

func validateID(what, id string) error {
	if id == "" {
		return fmt.Errorf("%s cannot be empty", what)
	}
	if len(id) > MaxIDLen {
		return fmt.Errorf("%s must not exceed %d characters", what, MaxIDLen)
	}
	if !IDPattern.MatchString(id) {
		return fmt.Errorf("%s can only contain letters, numbers, '.', '_', ':' and '-'", what)
	}
	return nil
}

// ValidateItem проверяет wire-элемент перед сохранением на relay-сервере.
// Payload не разбирается: он может быть зашифрован.
func ValidateItem(item *api.SyncItem) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil")
	}
	if err := ValidateItemID(item.ID); err != nil {
		return err
	}
	if err := ValidateDeviceID(item.DeviceID); err != nil {
		return err
	}
	if _, err := models.ParseItemType(item.Type); err != nil {
		return err
	}
	if _, err := models.ParseAction(item.Action); err != nil {
		return err
	}
	if !checksumPattern.MatchString(item.Checksum) {
		return fmt.Errorf("checksum must be a hex encoded SHA-256")
	}
	if item.Timestamp <= 0 {
		return fmt.Errorf("timestamp must be positive")
	}
	if item.Version < 1 {
		return fmt.Errorf("version must be at least 1")
	}
	if len(item.Payload) > MaxPayloadSize {
		return fmt.Errorf("payload must not exceed %d bytes", MaxPayloadSize)
	}
	return nil
}
