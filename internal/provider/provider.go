// Package provider описывает транспорт, через который движок обменивается
// элементами с другими устройствами.
package provider

import (
	"context"
	"fmt"

	"github.com/iudanet/clipsync/internal/syncerr"
	"github.com/iudanet/clipsync/pkg/api"
)

// Kind имя семейства транспортов в конфигурации.
type Kind string

const (
	KindCloud  Kind = "cloud"
	KindLocal  Kind = "local"
	KindCustom Kind = "custom"
)

// ParseKind converts a configuration value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCloud, KindLocal, KindCustom:
		return Kind(s), nil
	}
	return "", syncerr.New(syncerr.ConfigurationError, "provider",
		fmt.Errorf("%w: %q", syncerr.ErrUnknownProvider, s))
}

//go:generate moq -out provider_mock.go . Provider

// Provider - транспорт синхронизации. Реализации не хранят состояние движка
// между вызовами: получают элементы, возвращают элементы.
type Provider interface {
	// Kind returns the transport family
	Kind() Kind

	// Initialize устанавливает соединение и проверяет доступ.
	// Ошибка оборачивается в syncerr.ProviderUnavailable
	Initialize(ctx context.Context) error

	// SyncItem отправляет один элемент. Повторная отправка того же ID
	// перезаписывает копию (идемпотентный upsert)
	SyncItem(ctx context.Context, item *api.SyncItem) error

	// PullChanges возвращает элементы с Timestamp > since по возрастанию timestamp.
	// Дубликаты допустимы, пропуски нет
	PullChanges(ctx context.Context, since int64) ([]*api.SyncItem, error)

	// Cleanup освобождает сокеты, таймеры и подписки
	Cleanup(ctx context.Context) error
}

// ItemSource exposes this device's stored items in wire form. Peer
// transports serve it to other devices.
type ItemSource interface {
	WireItemsAfter(ctx context.Context, since int64) ([]*api.SyncItem, error)
}

// Env carries what the engine lends to a provider at construction time.
type Env struct {
	Source ItemSource
}

// Unavailable wraps an initialization failure.
func Unavailable(kind Kind, err error) error {
	return syncerr.New(syncerr.ProviderUnavailable, "initialize "+string(kind), err)
}
