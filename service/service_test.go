package service

import (
	"context"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/database64128/regdomain/api"
	"github.com/database64128/regdomain/jsoncfg"
	"github.com/database64128/regdomain/registry"
	"github.com/database64128/regdomain/resolver"
	"github.com/database64128/regdomain/stats"
	"go.uber.org/zap"
)

const testJSONConfig = `{
    "registry": {
        "name": "psl",
        "path": "/etc/regdomain/suffixes.txt",
        "hash": "xxh3"
    },
    "reloadInterval": "1h",
    "api": {
        "enabled": true,
        "secretPath": "/hunter2",
        "allowedClients": ["127.0.0.0/8", "::1/128"],
        "listeners": [
            {"network": "tcp", "address": "127.0.0.1:20221", "fastOpen": true}
        ]
    }
}`

const testTOMLConfig = `reloadInterval = "1h"

[registry]
name = "psl"
path = "/etc/regdomain/suffixes.txt"
hash = "xxh3"

[api]
enabled = true
secretPath = "/hunter2"
allowedClients = ["127.0.0.0/8", "::1/128"]

[[api.listeners]]
network = "tcp"
address = "127.0.0.1:20221"
fastOpen = true
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func checkTestConfig(t *testing.T, cfg Config) {
	t.Helper()

	if cfg.Registry != (registry.Config{Name: "psl", Path: "/etc/regdomain/suffixes.txt", Hash: "xxh3"}) {
		t.Errorf("unexpected registry config: %+v", cfg.Registry)
	}
	if cfg.ReloadInterval.Value() != time.Hour {
		t.Errorf("ReloadInterval = %v, want 1h", cfg.ReloadInterval.Value())
	}
	if !cfg.API.Enabled || cfg.API.SecretPath != "/hunter2" {
		t.Errorf("unexpected API config: %+v", cfg.API)
	}
	expectedClients := []netip.Prefix{netip.MustParsePrefix("127.0.0.0/8"), netip.MustParsePrefix("::1/128")}
	if len(cfg.API.AllowedClients) != 2 || cfg.API.AllowedClients[0] != expectedClients[0] || cfg.API.AllowedClients[1] != expectedClients[1] {
		t.Errorf("AllowedClients = %v, want %v", cfg.API.AllowedClients, expectedClients)
	}
	if len(cfg.API.Listeners) != 1 || cfg.API.Listeners[0] != (api.ListenerConfig{Network: "tcp", Address: "127.0.0.1:20221", FastOpen: true}) {
		t.Errorf("unexpected listeners: %+v", cfg.API.Listeners)
	}
}

func TestLoadConfig(t *testing.T) {
	for _, c := range []struct {
		name    string
		content string
	}{
		{"config.json", testJSONConfig},
		{"config.toml", testTOMLConfig},
	} {
		t.Run(c.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeFile(t, c.name, c.content))
			if err != nil {
				t.Fatal(err)
			}
			checkTestConfig(t, cfg)
		})
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	if _, err := LoadConfig(writeFile(t, "config.json", `{"registry": {"path": "a", "colour": "red"}}`)); err == nil {
		t.Error("JSON: expected error for unknown key")
	}
	if _, err := LoadConfig(writeFile(t, "config.toml", "[registry]\npath = \"a\"\ncolour = \"red\"\n")); err == nil {
		t.Error("TOML: expected error for unknown key")
	}
}

func TestSaveConfig(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "config.json", testJSONConfig))
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	for _, name := range []string{"saved.json", "saved.toml"} {
		path := filepath.Join(dir, name)
		if err = SaveConfig(path, cfg); err != nil {
			t.Fatalf("SaveConfig(%q) failed: %v", name, err)
		}
		loaded, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig(%q) failed: %v", name, err)
		}
		checkTestConfig(t, loaded)
	}
}

func TestManagerErrors(t *testing.T) {
	logger := zap.NewNop()

	if _, err := (&Config{}).Manager(logger); err == nil {
		t.Error("expected error for missing path")
	}

	cfg := Config{
		Registry:       registry.Config{Path: "suffixes.txt"},
		ReloadInterval: jsoncfg.Duration(-time.Second),
	}
	if _, err := cfg.Manager(logger); err == nil {
		t.Error("expected error for negative reload interval")
	}

	cfg = Config{
		Registry: registry.Config{Path: "suffixes.txt"},
		API:      api.Config{Enabled: true},
	}
	if _, err := cfg.Manager(logger); err == nil {
		t.Error("expected error for API without listeners")
	}
}

func TestManagerStartStop(t *testing.T) {
	path := writeFile(t, "suffixes.txt", "com\ncom.cn\n")
	cfg := Config{
		Registry: registry.Config{Path: path},
		Stats:    stats.Config{Enabled: true},
		API: api.Config{
			Enabled:   true,
			Listeners: []api.ListenerConfig{{Address: "127.0.0.1:0"}},
		},
	}

	m, err := cfg.Manager(zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Registry.Name != "suffixes.txt" {
		t.Errorf("default registry name = %q", cfg.Registry.Name)
	}
	if r := m.Holder().Load(); r != nil {
		t.Fatal("registry loaded before start")
	}

	if err = m.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer m.Stop()

	domain, err := resolver.Resolve("www.example.com.cn", m.Holder().Load())
	if err != nil {
		t.Fatal(err)
	}
	if domain != "example.com.cn" {
		t.Errorf("Resolve() = %q, want %q", domain, "example.com.cn")
	}
}

func TestManagerStartMissingFile(t *testing.T) {
	cfg := Config{Registry: registry.Config{Path: filepath.Join(t.TempDir(), "missing.txt")}}
	m, err := cfg.Manager(zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if err = m.Start(context.Background()); err == nil {
		m.Stop()
		t.Fatal("expected start to fail")
	}
}

func TestRegistryServicePeriodicReload(t *testing.T) {
	path := writeFile(t, "suffixes.txt", "com\n")
	holder := registry.NewHolder(registry.Config{Name: "test", Path: path})
	s := newRegistryService(zap.NewNop(), holder, 10*time.Millisecond)

	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if err := os.WriteFile(path, []byte("com\ncom.cn\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !holder.Load().Contains("com.cn") {
		if time.Now().After(deadline) {
			t.Fatal("suffix list was not reloaded")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
