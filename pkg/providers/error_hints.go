package providers

import "strings"

// credentialHints maps known auth failure fragments per provider to a
// hint naming the config field to fix.
var credentialHints = map[string][]struct {
	fragment string
	hint     string
}{
	ProviderOpenAI: {
		{
			fragment: "incorrect api key provided",
			hint:     "Hint: provider openai expects a Platform API credential; check providers.openai.api_key or KUMPEL_PROVIDERS_OPENAI_API_KEY.",
		},
	},
	ProviderOpenRouter: {
		{
			fragment: "no auth credentials",
			hint:     "Hint: check providers.openrouter.api_key or KUMPEL_PROVIDERS_OPENROUTER_API_KEY.",
		},
		{
			fragment: "invalid api key",
			hint:     "Hint: check providers.openrouter.api_key or KUMPEL_PROVIDERS_OPENROUTER_API_KEY.",
		},
	},
}

// augmentProviderError appends a credential hint when the API error
// message matches a known auth failure for the given provider.
func augmentProviderError(providerName, message string) string {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return msg
	}
	lower := strings.ToLower(msg)
	for _, entry := range credentialHints[NormalizeProviderName(providerName)] {
		if strings.Contains(lower, entry.fragment) {
			return msg + " " + entry.hint
		}
	}
	return msg
}
