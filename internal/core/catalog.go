package core

// Static per-provider catalog facts: display names, known model names and
// default endpoints. Pure lookup, no side effects.

var displayNames = map[ProviderID]string{
	ProviderOpenAI:   "OpenAI",
	ProviderDeepSeek: "DeepSeek",
	ProviderQwen:     "Qwen",
	ProviderZhipu:    "Zhipu",
}

var catalogModels = map[ProviderID][]string{
	ProviderDeepSeek: {"deepseek-chat", "deepseek-reasoner"},
}

var defaultBaseURLs = map[ProviderID]string{
	ProviderDeepSeek: "https://api.deepseek.com",
	ProviderZhipu:    "https://open.bigmodel.cn",
}

// DisplayName returns the human-readable provider name.
func DisplayName(id ProviderID) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	return string(id)
}

// CatalogModels lists the models selectable for a provider. Providers
// without a fixed model list return nil.
func CatalogModels(id ProviderID) []string {
	return catalogModels[id]
}

// DefaultModel returns the first catalog model, or "" when the provider has
// no fixed model list.
func DefaultModel(id ProviderID) string {
	if models := catalogModels[id]; len(models) > 0 {
		return models[0]
	}
	return ""
}

// DefaultBaseURL returns the provider's standard API base URL, or "" when
// the endpoint must come from configuration.
func DefaultBaseURL(id ProviderID) string {
	return defaultBaseURLs[id]
}

// DefaultUnit returns the unit a provider reports in before any real data
// has been observed.
func DefaultUnit(id ProviderID) UsageUnit {
	switch id {
	case ProviderDeepSeek, ProviderZhipu:
		return CurrencyUnit("USD")
	default:
		return TokensUnit()
	}
}
