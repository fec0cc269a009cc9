package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	vars := []string{
		"TUFF_WAL_PATH", "TUFF_HISTORY_OUT", "TUFF_LIGHTWEIGHT_ADDR",
		"TUFF_LIGHTWEIGHT_MEANING_PATH", "TUFF_LIGHTWEIGHT_COALESCE",
		"TUFF_HISTORY_ADDR", "TUFF_STOP_CONFIDENCE", "TARGET_URL",
		"TUFF_INTERNAL_STATE", "TUFF_WAL_RECOVERY_MODE", "TUFF_FAST_PATH",
		"OPENAI_API_KEY", "OPENAI_API_BASE", "OPENAI_MODEL", "TUFF_HISTORY_AUTH",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StopConfidence != 0.35 {
		t.Fatalf("expected default stop confidence 0.35, got %v", cfg.StopConfidence)
	}
	if cfg.WALPath == "" {
		t.Fatal("expected a non-empty default WAL path")
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("wal_path: /from/yaml\nstop_confidence: 0.5\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	os.Setenv("TUFF_WAL_PATH", "/from/env")
	defer os.Unsetenv("TUFF_WAL_PATH")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WALPath != "/from/env" {
		t.Fatalf("expected env to win over YAML, got %q", cfg.WALPath)
	}
	if cfg.StopConfidence != 0.5 {
		t.Fatalf("expected YAML value to apply where env is unset, got %v", cfg.StopConfidence)
	}
}

func TestLoadMissingYAMLIsNotAnError(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err != nil {
		t.Fatalf("expected a missing optional config file to be tolerated, got %v", err)
	}
}

func TestHistoryAuthSplit(t *testing.T) {
	clearEnv(t)
	os.Setenv("TUFF_HISTORY_AUTH", "admin:$2a$hash")
	defer os.Unsetenv("TUFF_HISTORY_AUTH")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HistoryAuthUser != "admin" || cfg.HistoryAuthHash != "$2a$hash" {
		t.Fatalf("unexpected split: user=%q hash=%q", cfg.HistoryAuthUser, cfg.HistoryAuthHash)
	}
}

func TestValidAPIKey(t *testing.T) {
	cases := map[string]bool{
		"":                  false,
		"   ":                false,
		"sk-real-looking-key": true,
		"sk-...":              false,
	}
	for key, want := range cases {
		if got := ValidAPIKey(key); got != want {
			t.Fatalf("ValidAPIKey(%q) = %v, want %v", key, got, want)
		}
	}
}
