// Package builtin регистрирует встроенные транспорты.
package builtin

import (
	"log/slog"

	"github.com/iudanet/clipsync/internal/config"
	"github.com/iudanet/clipsync/internal/devices"
	"github.com/iudanet/clipsync/internal/provider"
	"github.com/iudanet/clipsync/internal/provider/cloud"
	"github.com/iudanet/clipsync/internal/provider/httpapi"
	"github.com/iudanet/clipsync/internal/provider/lan"
)

// NewRegistry returns a registry with the cloud, local and custom transports
// configured from cfg.
func NewRegistry(cfg *config.Config, logger *slog.Logger) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	if err := registry.Register(provider.KindCloud, func(env provider.Env) (provider.Provider, error) {
		return cloud.New(cfg.Cloud, logger.With("provider", provider.KindCloud))
	}); err != nil {
		return nil, err
	}

	if err := registry.Register(provider.KindCustom, func(env provider.Env) (provider.Provider, error) {
		c := cfg.Custom
		c.DeviceID = cfg.DeviceID
		c.Platform = cfg.Platform
		return httpapi.New(c, logger.With("provider", provider.KindCustom))
	}); err != nil {
		return nil, err
	}

	if err := registry.Register(provider.KindLocal, func(env provider.Env) (provider.Provider, error) {
		tracker, err := devices.NewTracker(nil, "")
		if err != nil {
			return nil, err
		}
		c := cfg.Local
		c.DeviceID = cfg.DeviceID
		c.Platform = cfg.Platform
		c.ProtocolVersion = devices.ProtocolVersion
		return lan.New(c, env.Source, logger.With("provider", provider.KindLocal),
			lan.WithProtocolFilter(func(v string) bool { return tracker.Compatible(v) == nil }))
	}); err != nil {
		return nil, err
	}

	return registry, nil
}
