package providers

import (
	"strings"
	"testing"
)

func TestAugmentProviderError(t *testing.T) {
	cases := []struct {
		name     string
		provider string
		message  string
		wantHint string
	}{
		{
			name:     "openai incorrect api key",
			provider: ProviderOpenAI,
			message:  "Incorrect API key provided: sk-xxx",
			wantHint: "Platform API credential",
		},
		{
			name:     "openrouter missing credentials",
			provider: ProviderOpenRouter,
			message:  "No auth credentials found",
			wantHint: "providers.openrouter.api_key",
		},
		{
			name:     "openrouter invalid key",
			provider: ProviderOpenRouter,
			message:  "Invalid API key",
			wantHint: "KUMPEL_PROVIDERS_OPENROUTER_API_KEY",
		},
		{
			name:     "unknown message passes through",
			provider: ProviderOpenRouter,
			message:  "model is overloaded, try again later",
		},
		{
			name:     "hint is provider specific",
			provider: ProviderOpenAI,
			message:  "No auth credentials found",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := augmentProviderError(tc.provider, tc.message)
			if tc.wantHint == "" {
				if got != tc.message {
					t.Fatalf("message changed: %q", got)
				}
				return
			}
			if !strings.Contains(got, tc.wantHint) {
				t.Fatalf("augment(%q) = %q, want hint %q", tc.message, got, tc.wantHint)
			}
			if !strings.HasPrefix(got, tc.message) {
				t.Fatalf("original message lost: %q", got)
			}
		})
	}
}
