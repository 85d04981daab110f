package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/janekbaraniewski/tokentrack/internal/core"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if cfg.UI.RefreshIntervalSeconds != 60 {
		t.Errorf("refresh interval = %d, want 60", cfg.UI.RefreshIntervalSeconds)
	}
	if cfg.RetentionDays != 7 {
		t.Errorf("retention days = %d, want 7", cfg.RetentionDays)
	}
	if cfg.HistoryBackend != "file" {
		t.Errorf("history backend = %q, want file", cfg.HistoryBackend)
	}
}

func TestLoadFromCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err == nil {
		t.Error("LoadFrom() expected parse error")
	}
	if cfg.UI.RefreshIntervalSeconds != 60 {
		t.Errorf("corrupt file must yield defaults, got %+v", cfg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	budget := 250.0
	cfg := DefaultConfig()
	cfg.HistoryBackend = "sqlite"
	cfg.RetentionDays = 3
	cfg.Providers[core.ProviderDeepSeek] = ProviderConfig{Model: "deepseek-reasoner", Budget: &budget}
	cfg.QwenMonitoring.BaseURL = "http://prom.example:9090"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	back, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}

	if back.HistoryBackend != "sqlite" || back.RetentionDays != 3 {
		t.Errorf("round trip lost fields: %+v", back)
	}
	if got := back.Provider(core.ProviderDeepSeek).Model; got != "deepseek-reasoner" {
		t.Errorf("model = %q, want deepseek-reasoner", got)
	}
	if got := back.Budget(core.ProviderDeepSeek); got != 250 {
		t.Errorf("budget = %v, want 250", got)
	}
	if back.QwenMonitoring.BaseURL != "http://prom.example:9090" {
		t.Errorf("qwen monitoring URL lost: %+v", back.QwenMonitoring)
	}
}

func TestProviderFallsBackToCatalogModel(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Provider(core.ProviderDeepSeek).Model; got != "deepseek-chat" {
		t.Errorf("model = %q, want catalog default deepseek-chat", got)
	}
}

func TestBudgetUnsetIsZero(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.Budget(core.ProviderOpenAI); got != 0 {
		t.Errorf("Budget() = %v, want 0 when unset", got)
	}

	zero := 0.0
	cfg.Providers[core.ProviderOpenAI] = ProviderConfig{Budget: &zero}
	if got := cfg.Budget(core.ProviderOpenAI); got != 0 {
		t.Errorf("Budget() = %v, want 0 for zero budget", got)
	}
}
