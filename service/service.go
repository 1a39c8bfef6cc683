// Package service wires the suffix list registry and the API server into a daemon.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/database64128/regdomain"
	"github.com/database64128/regdomain/api"
	"github.com/database64128/regdomain/jsoncfg"
	"github.com/database64128/regdomain/registry"
	"github.com/database64128/regdomain/stats"
	"go.uber.org/zap"
)

// Config is the main configuration structure.
// It may be marshaled as or unmarshaled from JSON or TOML.
type Config struct {
	// Registry configures the suffix list file.
	Registry registry.Config `json:"registry" toml:"registry"`

	// ReloadInterval, if positive, reloads the suffix list periodically.
	ReloadInterval jsoncfg.Duration `json:"reloadInterval,omitempty" toml:"reloadInterval,omitempty"`

	// Stats configures lookup statistics.
	// Statistics are always collected when the API is enabled.
	Stats stats.Config `json:"stats" toml:"stats"`

	// API configures the RESTful API server.
	API api.Config `json:"api" toml:"api"`
}

func isTOML(path string) bool {
	return filepath.Ext(path) == ".toml"
}

// LoadConfig reads the configuration file at path.
// Files with the .toml extension are decoded as TOML, everything else as JSON.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if !isTOML(path) {
		err := jsoncfg.Open(path, &cfg)
		return cfg, err
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown configuration key %q", undecoded[0].String())
	}
	return cfg, nil
}

// SaveConfig writes the configuration to path in the format selected by its extension.
func SaveConfig(path string, cfg Config) error {
	if !isTOML(path) {
		return jsoncfg.Save(path, cfg)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if err = toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Manager returns a service manager from the config.
func (sc *Config) Manager(logger *zap.Logger) (*Manager, error) {
	if sc.Registry.Path == "" {
		return nil, errors.New("no suffix list path specified")
	}
	if sc.Registry.Name == "" {
		sc.Registry.Name = filepath.Base(sc.Registry.Path)
	}
	if sc.ReloadInterval < 0 {
		return nil, fmt.Errorf("negative reload interval: %s", sc.ReloadInterval.Value())
	}

	holder := registry.NewHolder(sc.Registry)
	services := make([]regdomain.Service, 0, 2)
	services = append(services, newRegistryService(logger, holder, sc.ReloadInterval.Value()))

	statsConfig := sc.Stats
	if sc.API.Enabled {
		statsConfig.Enabled = true
	}
	collector := statsConfig.Collector()

	if sc.API.Enabled {
		apiServer, err := sc.API.NewServer(logger, holder, collector)
		if err != nil {
			return nil, fmt.Errorf("failed to create API server: %w", err)
		}
		services = append(services, apiServer)
	}

	return &Manager{
		services:  services,
		holder:    holder,
		collector: collector,
		reloader:  newReloadNotifier(logger, holder),
		logger:    logger,
	}, nil
}

// Manager manages the services.
type Manager struct {
	services  []regdomain.Service
	holder    *registry.Holder
	collector stats.Collector
	reloader  reloadNotifier
	logger    *zap.Logger
}

// Holder returns the registry holder shared by the services.
func (m *Manager) Holder() *registry.Holder {
	return m.holder
}

// Collector returns the lookup statistics collector.
func (m *Manager) Collector() stats.Collector {
	return m.collector
}

// Start starts all configured services.
func (m *Manager) Start(ctx context.Context) error {
	for _, s := range m.services {
		if err := s.Start(ctx); err != nil {
			kv := s.ZapField()
			return fmt.Errorf("failed to start %s=%q: %w", kv.Key, kv.String, err)
		}
	}
	m.reloader.start()
	return nil
}

// Stop stops all running services.
func (m *Manager) Stop() {
	m.reloader.stop()
	for _, s := range m.services {
		kv := s.ZapField()
		if err := s.Stop(); err != nil {
			m.logger.Warn("Failed to stop service", kv, zap.Error(err))
			continue
		}
		m.logger.Info("Stopped service", kv)
	}
}
