// Package config loads tuffd's runtime configuration: code defaults,
// optionally overlaid by a YAML file, with environment variables always
// taking precedence over both.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable the process reads at startup.
type Config struct {
	WALPath              string        `yaml:"wal_path"`
	HistoryOutDir        string        `yaml:"history_out_dir"`
	SessionAddr          string        `yaml:"session_addr"`
	LightweightAddr      string        `yaml:"lightweight_addr"`
	LightweightMeaningPath string      `yaml:"lightweight_meaning_path"`
	LightweightCoalesce  bool          `yaml:"lightweight_coalesce"`
	HistoryAddr          string        `yaml:"history_addr"`
	StopConfidence       float32       `yaml:"stop_confidence"`
	TargetURL            string        `yaml:"target_url"`
	InternalState        string        `yaml:"internal_state"`
	WALRecoveryStrict    bool          `yaml:"wal_recovery_strict"`
	FastPathEnabled      bool          `yaml:"fast_path_enabled"`
	OpenAIAPIKey         string        `yaml:"-"` // never read from file
	OpenAIAPIBase        string        `yaml:"-"`
	OpenAIModel          string        `yaml:"openai_model"`
	HistoryAuthUser      string        `yaml:"-"`
	HistoryAuthHash      string        `yaml:"-"`
	FetchTimeout         time.Duration `yaml:"fetch_timeout"`
}

func defaults() Config {
	return Config{
		WALPath:         "_tuffdb/tuff.wal",
		HistoryOutDir:   "_tuffdb/history",
		SessionAddr:     "127.0.0.1:8787",
		LightweightAddr: "127.0.0.1:8788",
		LightweightCoalesce: true,
		StopConfidence:  0.35,
		TargetURL:       "https://www.kantei.go.jp/jp/rekidai/index.html",
		OpenAIModel:     "gpt-4o",
		FastPathEnabled: true,
		FetchTimeout:    30 * time.Second,
	}
}

// Load builds a Config: code defaults, overlaid by yamlPath if non-empty and
// present, overlaid by environment variables. Env vars always win.
func Load(yamlPath string) (Config, error) {
	cfg := defaults()

	if yamlPath != "" {
		if data, err := os.ReadFile(yamlPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", yamlPath, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: read %s: %w", yamlPath, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TUFF_WAL_PATH"); v != "" {
		cfg.WALPath = v
	}
	if v := os.Getenv("TUFF_HISTORY_OUT"); v != "" {
		cfg.HistoryOutDir = v
	}
	if v := os.Getenv("TUFF_LIGHTWEIGHT_ADDR"); v != "" {
		cfg.LightweightAddr = v
	}
	if v := os.Getenv("TUFF_LIGHTWEIGHT_MEANING_PATH"); v != "" {
		cfg.LightweightMeaningPath = v
	}
	if v := os.Getenv("TUFF_LIGHTWEIGHT_COALESCE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.LightweightCoalesce = b
		}
	}
	if v := os.Getenv("TUFF_HISTORY_ADDR"); v != "" {
		cfg.HistoryAddr = v
	}
	if v := os.Getenv("TUFF_STOP_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.StopConfidence = float32(f)
		}
	}
	if v := os.Getenv("TARGET_URL"); v != "" {
		cfg.TargetURL = v
	}
	if v := os.Getenv("TUFF_INTERNAL_STATE"); v != "" {
		cfg.InternalState = v
	}
	if v := os.Getenv("TUFF_WAL_RECOVERY_MODE"); v != "" {
		cfg.WALRecoveryStrict = v == "strict"
	}
	if v := os.Getenv("TUFF_FAST_PATH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.FastPathEnabled = b
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_API_BASE"); v != "" {
		cfg.OpenAIAPIBase = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.OpenAIModel = v
	}
	if v := os.Getenv("TUFF_HISTORY_AUTH"); v != "" {
		if user, hash, ok := splitAuth(v); ok {
			cfg.HistoryAuthUser = user
			cfg.HistoryAuthHash = hash
		}
	}
}

func splitAuth(v string) (user, hash string, ok bool) {
	for i := 0; i < len(v); i++ {
		if v[i] == ':' {
			return v[:i], v[i+1:], true
		}
	}
	return "", "", false
}

// ValidAPIKey reports whether key looks like a usable, non-placeholder
// OpenAI API key (mirroring the pipeline bootstrap's own heuristic: a
// trimmed, non-empty key that isn't an obviously redacted "..." placeholder).
func ValidAPIKey(key string) bool {
	trimmed := strings.TrimSpace(key)
	return trimmed != "" && !strings.Contains(trimmed, "...")
}
