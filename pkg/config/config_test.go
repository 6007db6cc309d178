package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "morph.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
threshold = 0.8
privacy = 0.3
privacy-dir = "above"
singletons = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Threshold == nil || *cfg.Threshold != 0.8 {
		t.Errorf("Threshold = %v, want 0.8", cfg.Threshold)
	}
	if cfg.Privacy == nil || *cfg.Privacy != 0.3 {
		t.Errorf("Privacy = %v, want 0.3", cfg.Privacy)
	}
	if cfg.PrivacyDir == nil || *cfg.PrivacyDir != "above" {
		t.Errorf("PrivacyDir = %v, want above", cfg.PrivacyDir)
	}
	if cfg.Singletons == nil || *cfg.Singletons != false {
		t.Errorf("Singletons = %v, want false", cfg.Singletons)
	}
}

func TestLoadPartial(t *testing.T) {
	cfg, err := Load(writeConfig(t, `threshold = 0.5`))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Threshold == nil || *cfg.Threshold != 0.5 {
		t.Errorf("Threshold = %v, want 0.5", cfg.Threshold)
	}
	if cfg.Privacy != nil || cfg.PrivacyDir != nil || cfg.Singletons != nil {
		t.Error("absent keys must stay nil")
	}
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, `treshold = 0.5`))
	if err == nil || !strings.Contains(err.Error(), "unknown key") {
		t.Errorf("Load() error = %v, want unknown key", err)
	}
}

func TestLoadRejectsBadPrivacyDir(t *testing.T) {
	_, err := Load(writeConfig(t, `privacy-dir = "sideways"`))
	if err == nil || !strings.Contains(err.Error(), "privacy-dir") {
		t.Errorf("Load() error = %v, want privacy-dir validation", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Load() on a missing file must fail")
	}
}
