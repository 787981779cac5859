package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TriggerIntervalMs != DefaultTriggerInterval {
		t.Errorf("TriggerIntervalMs = %d, want %d", cfg.TriggerIntervalMs, DefaultTriggerInterval)
	}
	if cfg.MaxKeys != DefaultMaxKeys {
		t.Errorf("MaxKeys = %d, want %d", cfg.MaxKeys, DefaultMaxKeys)
	}
	if cfg.AsyncDispatch || cfg.RawInput || cfg.Logging.Enabled {
		t.Errorf("unexpected non-default flags: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kmhook.yaml")
	data := []byte("trigger_interval_ms: 250\nraw_input: true\nlogging:\n  enabled: true\n  level: INFO\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TriggerIntervalMs != 250 {
		t.Errorf("TriggerIntervalMs = %d, want 250", cfg.TriggerIntervalMs)
	}
	if !cfg.RawInput {
		t.Error("RawInput not read from file")
	}
	if !cfg.Logging.Enabled || cfg.Logging.Level != "INFO" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.MaxKeys != DefaultMaxKeys {
		t.Errorf("unset key lost its default: MaxKeys = %d", cfg.MaxKeys)
	}
}
