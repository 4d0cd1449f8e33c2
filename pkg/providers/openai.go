package providers

import (
	"fmt"
	"os"
	"strings"

	"github.com/dotsetgreg/kumpel/pkg/config"
)

const (
	defaultOpenAIAPIBase = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// Accepted credential fields, in the order they are reported.
const (
	openAIFieldAPIKey    = "providers.openai.api_key"
	openAIFieldOAuth     = "providers.openai.oauth_access_token"
	openAIFieldTokenFile = "providers.openai.oauth_token_file"
)

func init() {
	RegisterFactory(ProviderOpenAI, newOpenAIProviderFromConfig, validateOpenAIConfig, openAICredentialStatus)
}

// resolveOpenAIAuthConfig picks the configured credential. Exactly one
// of api_key, oauth_access_token and oauth_token_file may be set.
func resolveOpenAIAuthConfig(cfg *config.Config) (mode string, source string, err error) {
	if cfg == nil {
		return "", "", fmt.Errorf("config is required")
	}

	type candidate struct {
		mode, value, field string
	}
	var found []candidate
	if v := strings.TrimSpace(cfg.Providers.OpenAI.APIKey); v != "" {
		found = append(found, candidate{"api_key", v, openAIFieldAPIKey})
	}
	if v := strings.TrimSpace(cfg.Providers.OpenAI.OAuthAccessToken); v != "" {
		found = append(found, candidate{"oauth_access_token", v, openAIFieldOAuth})
	}
	if v := strings.TrimSpace(cfg.Providers.OpenAI.OAuthTokenFile); v != "" {
		found = append(found, candidate{"oauth_token_file", v, openAIFieldTokenFile})
	}

	switch len(found) {
	case 0:
		return "", "", fmt.Errorf("OpenAI credentials are required (set %s, %s, or %s)",
			openAIFieldAPIKey, openAIFieldOAuth, openAIFieldTokenFile)
	case 1:
		return found[0].mode, found[0].value, nil
	}

	fields := make([]string, len(found))
	for i, c := range found {
		fields[i] = c.field
	}
	return "", "", fmt.Errorf("multiple OpenAI credential sources configured (%s); set exactly one",
		strings.Join(fields, ", "))
}

func validateOpenAIConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	mode, source, err := resolveOpenAIAuthConfig(cfg)
	if err != nil {
		return err
	}
	if mode == "oauth_token_file" {
		path := expandHome(source)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("OpenAI OAuth token file not accessible at %s: %w", path, err)
		}
	}
	return nil
}

func openAICredentialStatus(cfg *config.Config) (bool, string) {
	if cfg == nil {
		return false, ""
	}
	mode, _, err := resolveOpenAIAuthConfig(cfg)
	if err != nil {
		return false, ""
	}
	if mode == "api_key" {
		return true, authModeAPIKey
	}
	return true, mode
}

func newOpenAIProviderFromConfig(cfg *config.Config) (LLMProvider, error) {
	if err := validateOpenAIConfig(cfg); err != nil {
		return nil, err
	}
	mode, source, err := resolveOpenAIAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	var auth AuthStrategy
	switch mode {
	case "api_key":
		auth = NewAPIKeyAuth(NewStaticTokenSource(source, openAIFieldAPIKey))
	case "oauth_access_token":
		auth = NewBearerTokenAuth(NewStaticTokenSource(source, openAIFieldOAuth))
	case "oauth_token_file":
		auth = NewBearerTokenAuth(NewFileTokenSource(source))
	default:
		return nil, fmt.Errorf("unsupported OpenAI auth mode %q", mode)
	}

	apiBase := strings.TrimSpace(cfg.Providers.OpenAI.APIBase)
	if apiBase == "" {
		apiBase = defaultOpenAIAPIBase
	}
	headers := map[string]string{}
	if org := strings.TrimSpace(cfg.Providers.OpenAI.Organization); org != "" {
		headers["OpenAI-Organization"] = org
	}
	if project := strings.TrimSpace(cfg.Providers.OpenAI.Project); project != "" {
		headers["OpenAI-Project"] = project
	}

	return newChatClient(ProviderOpenAI, apiBase, defaultOpenAIModel,
		strings.TrimSpace(cfg.Providers.OpenAI.Proxy), auth, headers)
}
