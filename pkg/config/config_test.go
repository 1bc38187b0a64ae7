package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
environment: test
server:
  port: 8080
  read_timeout: 5s
  write_timeout: 5s
  shutdown_timeout: 5s
logging:
  level: error
  format: json
  output: stderr
ratelimit:
  quota: 10
  window: 60s
cache:
  backend: memory
  snapshot_ttl: 5m
sources:
  default_zip: "10001"
  fetch_timeout: 20s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Environment != "test" {
		t.Errorf("environment = %q", cfg.Environment)
	}
	if cfg.RateLimit.Quota != 10 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("ratelimit = %d/%v", cfg.RateLimit.Quota, cfg.RateLimit.Window)
	}
	if cfg.Cache.SnapshotTTL != 5*time.Minute {
		t.Errorf("snapshot ttl = %v", cfg.Cache.SnapshotTTL)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing environment", "server:\n  port: 1\n"},
		{"bad cache backend", "environment: x\ncache:\n  backend: tape\nratelimit:\n  quota: 1\n  window: 1s\nsources:\n  default_zip: \"10001\"\n"},
		{"bad zip", "environment: x\ncache:\n  backend: memory\nratelimit:\n  quota: 1\n  window: 1s\nsources:\n  default_zip: \"123\"\n"},
		{"zero quota", "environment: x\ncache:\n  backend: memory\nratelimit:\n  quota: 0\n  window: 1s\nsources:\n  default_zip: \"10001\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("DEALPULL_CACHE_BACKEND", "memory")
	t.Setenv("DEALPULL_DEFAULT_ZIP", "94103")
	t.Setenv("DEALPULL_RATE_QUOTA", "25")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Sources.DefaultZip != "94103" {
		t.Errorf("zip override not applied: %q", cfg.Sources.DefaultZip)
	}
	if cfg.RateLimit.Quota != 25 {
		t.Errorf("quota override not applied: %d", cfg.RateLimit.Quota)
	}
}
