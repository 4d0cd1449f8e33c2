package providers

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dotsetgreg/kumpel/pkg/config"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
)

// providerFactory bundles what the registry knows about one backend.
type providerFactory struct {
	build    func(cfg *config.Config) (LLMProvider, error)
	validate func(cfg *config.Config) error
	creds    func(cfg *config.Config) (configured bool, mode string)
}

// factoryRegistry collects the providers registered from init funcs.
// Registration mistakes are remembered and surfaced on first use
// instead of panicking during package init.
type factoryRegistry struct {
	mu      sync.RWMutex
	entries map[string]providerFactory
	initErr error
}

var registry = &factoryRegistry{entries: map[string]providerFactory{}}

func RegisterFactory(name string, build func(cfg *config.Config) (LLMProvider, error), validate func(cfg *config.Config) error, creds func(cfg *config.Config) (bool, string)) {
	name = strings.ToLower(strings.TrimSpace(name))
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if name == "" {
		registry.initErr = errors.Join(registry.initErr, fmt.Errorf("providers: factory name is required"))
		return
	}
	if build == nil {
		registry.initErr = errors.Join(registry.initErr, fmt.Errorf("providers: factory build func is required"))
		return
	}
	registry.entries[name] = providerFactory{build: build, validate: validate, creds: creds}
}

func (r *factoryRegistry) lookup(name string) (providerFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.initErr != nil {
		return providerFactory{}, fmt.Errorf("provider registration failed: %w", r.initErr)
	}
	entry, ok := r.entries[name]
	if !ok {
		names := make([]string, 0, len(r.entries))
		for n := range r.entries {
			names = append(names, n)
		}
		sort.Strings(names)
		return providerFactory{}, fmt.Errorf("unsupported provider %q: supported providers are %s", name, strings.Join(names, ", "))
	}
	return entry, nil
}

// SupportedProviders lists the registered provider names, sorted.
func SupportedProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.entries))
	for name := range registry.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizeProviderName lower-cases a configured provider name and maps
// the empty string to the default provider.
func NormalizeProviderName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ProviderOpenRouter
	}
	return name
}

func ActiveProviderName(cfg *config.Config) string {
	if cfg == nil {
		return ProviderOpenRouter
	}
	return NormalizeProviderName(cfg.Agents.Defaults.Provider)
}

func ValidateProviderConfig(cfg *config.Config) error {
	entry, err := registry.lookup(ActiveProviderName(cfg))
	if err != nil {
		return err
	}
	if entry.validate == nil {
		return nil
	}
	return entry.validate(cfg)
}

func ProviderCredentialStatus(cfg *config.Config) (provider string, configured bool, mode string, err error) {
	provider = ActiveProviderName(cfg)
	entry, err := registry.lookup(provider)
	if err != nil {
		return "", false, "", err
	}
	if entry.creds != nil {
		configured, mode = entry.creds(cfg)
		return provider, configured, mode, nil
	}
	configured = entry.validate == nil || entry.validate(cfg) == nil
	return provider, configured, "", nil
}

func CreateProvider(cfg *config.Config) (LLMProvider, error) {
	entry, err := registry.lookup(ActiveProviderName(cfg))
	if err != nil {
		return nil, err
	}
	return entry.build(cfg)
}
