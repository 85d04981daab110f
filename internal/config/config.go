package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/janekbaraniewski/tokentrack/internal/core"
)

type UIConfig struct {
	RefreshIntervalSeconds int `json:"refresh_interval_seconds"`
}

// ProviderConfig holds the non-secret per-provider settings. Credentials
// live in the separate credentials file.
type ProviderConfig struct {
	Model   string   `json:"model,omitempty"`
	Budget  *float64 `json:"budget,omitempty"`
	BaseURL string   `json:"base_url,omitempty"`
}

type Config struct {
	UI             UIConfig                               `json:"ui"`
	HistoryBackend string                                 `json:"history_backend"` // "file" or "sqlite"
	RetentionDays  int                                    `json:"retention_days"`
	Providers      map[core.ProviderID]ProviderConfig     `json:"providers,omitempty"`
	QwenMonitoring QwenMonitoringConfig                   `json:"qwen_monitoring"`
}

// QwenMonitoringConfig points at the Prometheus-compatible endpoint the qwen
// client queries. The access key pair lives in the credentials file.
type QwenMonitoringConfig struct {
	BaseURL string `json:"base_url,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		UI:             UIConfig{RefreshIntervalSeconds: 60},
		HistoryBackend: "file",
		RetentionDays:  7,
		Providers:      make(map[core.ProviderID]ProviderConfig),
	}
}

// Provider returns the settings block for a provider, falling back to
// catalog defaults for the model.
func (c Config) Provider(id core.ProviderID) ProviderConfig {
	pc := c.Providers[id]
	if pc.Model == "" {
		pc.Model = core.DefaultModel(id)
	}
	return pc
}

// Budget returns the configured budget for a provider, or 0 when unset.
func (c Config) Budget(id core.ProviderID) float64 {
	if pc, ok := c.Providers[id]; ok && pc.Budget != nil && *pc.Budget > 0 {
		return *pc.Budget
	}
	return 0
}

func ConfigDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "tokentrack")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tokentrack")
}

func ConfigPath() string {
	return filepath.Join(ConfigDir(), "settings.json")
}

func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.UI.RefreshIntervalSeconds <= 0 {
		cfg.UI.RefreshIntervalSeconds = 60
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 7
	}
	if cfg.HistoryBackend != "sqlite" {
		cfg.HistoryBackend = "file"
	}
	if cfg.Providers == nil {
		cfg.Providers = make(map[core.ProviderID]ProviderConfig)
	}

	return cfg, nil
}

func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

func SaveTo(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
