// Package providers is the provider directory: it binds each configured
// provider ID to its usage client. Configuration and credentials are read
// on every call, so adding or removing a key takes effect on the next
// refresh without restarting.
package providers

import (
	"github.com/janekbaraniewski/tokentrack/internal/config"
	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/janekbaraniewski/tokentrack/internal/providers/deepseek"
	"github.com/janekbaraniewski/tokentrack/internal/providers/openai"
	"github.com/janekbaraniewski/tokentrack/internal/providers/qwen"
	"github.com/janekbaraniewski/tokentrack/internal/providers/zhipu"
	"github.com/rs/zerolog"
)

type Registry struct {
	loadConfig      func() (config.Config, error)
	loadCredentials func() (config.Credentials, error)
	logger          zerolog.Logger
}

// NewRegistry builds the default registry backed by the on-disk config and
// credentials files.
func NewRegistry(logger zerolog.Logger) *Registry {
	return NewRegistryFrom(config.Load, config.LoadCredentials, logger)
}

// NewRegistryFrom builds a registry with injected configuration sources.
func NewRegistryFrom(loadConfig func() (config.Config, error), loadCredentials func() (config.Credentials, error), logger zerolog.Logger) *Registry {
	return &Registry{
		loadConfig:      loadConfig,
		loadCredentials: loadCredentials,
		logger:          logger,
	}
}

// Active returns the providers whose required credentials are present.
// Unconfigured providers are excluded from refresh entirely.
func (r *Registry) Active() []core.ProviderID {
	creds, err := r.loadCredentials()
	if err != nil {
		r.logger.Warn().Err(err).Msg("loading credentials")
		return nil
	}

	var active []core.ProviderID
	for _, id := range core.AllProviderIDs() {
		if creds.HasCredentials(id) {
			active = append(active, id)
		}
	}
	return active
}

// Client returns the usage client bound to a provider's current
// configuration, or false when the provider is unconfigured.
func (r *Registry) Client(id core.ProviderID) (core.UsageClient, bool) {
	creds, err := r.loadCredentials()
	if err != nil {
		r.logger.Warn().Err(err).Msg("loading credentials")
		return nil, false
	}
	if !creds.HasCredentials(id) {
		return nil, false
	}

	cfg, err := r.loadConfig()
	if err != nil {
		r.logger.Warn().Err(err).Msg("loading config, using defaults")
		cfg = config.DefaultConfig()
	}
	pc := cfg.Provider(id)
	budget := cfg.Budget(id)

	switch id {
	case core.ProviderOpenAI:
		return openai.New(creds.APIKey(id), pc.BaseURL, pc.Model, budget), true
	case core.ProviderDeepSeek:
		return deepseek.New(creds.APIKey(id), pc.BaseURL, budget), true
	case core.ProviderQwen:
		return qwen.New(creds.QwenAccessKey(), creds.QwenAccessSecret(), cfg.QwenMonitoring.BaseURL, pc.Model, budget), true
	case core.ProviderZhipu:
		return zhipu.New(creds.APIKey(id), pc.BaseURL, budget), true
	default:
		return nil, false
	}
}
