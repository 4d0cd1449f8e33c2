package providers

import (
	"fmt"
	"strings"

	"github.com/dotsetgreg/kumpel/pkg/config"
)

const (
	defaultOpenRouterAPIBase = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "openai/gpt-4o-mini"
	openRouterFieldAPIKey    = "providers.openrouter.api_key"
)

func init() {
	RegisterFactory(ProviderOpenRouter, newOpenRouterProviderFromConfig, validateOpenRouterConfig, openRouterCredentialStatus)
}

// OpenRouter runs on a single API key; there is no OAuth variant.
func validateOpenRouterConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if strings.TrimSpace(cfg.Providers.OpenRouter.APIKey) == "" {
		return fmt.Errorf("OpenRouter API key is required (set %s or KUMPEL_PROVIDERS_OPENROUTER_API_KEY)", openRouterFieldAPIKey)
	}
	return nil
}

func openRouterCredentialStatus(cfg *config.Config) (bool, string) {
	if cfg != nil && strings.TrimSpace(cfg.Providers.OpenRouter.APIKey) != "" {
		return true, authModeAPIKey
	}
	return false, ""
}

func newOpenRouterProviderFromConfig(cfg *config.Config) (LLMProvider, error) {
	if err := validateOpenRouterConfig(cfg); err != nil {
		return nil, err
	}

	apiBase := strings.TrimSpace(cfg.Providers.OpenRouter.APIBase)
	if apiBase == "" {
		apiBase = defaultOpenRouterAPIBase
	}
	auth := NewAPIKeyAuth(NewStaticTokenSource(cfg.Providers.OpenRouter.APIKey, openRouterFieldAPIKey))
	return newChatClient(ProviderOpenRouter, apiBase, defaultOpenRouterModel,
		strings.TrimSpace(cfg.Providers.OpenRouter.Proxy), auth, nil)
}
