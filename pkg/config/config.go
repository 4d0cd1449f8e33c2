package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	// Try []interface{} to handle mixed types
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Agents    AgentsConfig    `json:"agents"`
	Channels  ChannelsConfig  `json:"channels"`
	Providers ProvidersConfig `json:"providers"`
	Gateway   GatewayConfig   `json:"gateway"`
	Memory    MemoryConfig    `json:"memory"`
	Style     StyleConfig     `json:"style"`
	Speech    SpeechConfig    `json:"speech"`
	Capture   CaptureConfig   `json:"capture"`
	Screenlog ScreenlogConfig `json:"screenlog"`
	mu        sync.RWMutex
}

type AgentsConfig struct {
	Defaults AgentDefaults `json:"defaults"`
}

type AgentDefaults struct {
	Workspace     string  `json:"workspace" env:"KUMPEL_AGENTS_DEFAULTS_WORKSPACE"`
	Provider      string  `json:"provider" env:"KUMPEL_AGENTS_DEFAULTS_PROVIDER"`
	TextModel     string  `json:"text_model" env:"KUMPEL_AGENTS_DEFAULTS_TEXT_MODEL"`
	VisionModel   string  `json:"vision_model" env:"KUMPEL_AGENTS_DEFAULTS_VISION_MODEL"`
	MaxTokens     int     `json:"max_tokens" env:"KUMPEL_AGENTS_DEFAULTS_MAX_TOKENS"`
	Temperature   float64 `json:"temperature" env:"KUMPEL_AGENTS_DEFAULTS_TEMPERATURE"`
	AnswerTimeout int     `json:"answer_timeout" env:"KUMPEL_AGENTS_DEFAULTS_ANSWER_TIMEOUT"` // seconds
}

type ChannelsConfig struct {
	Discord DiscordConfig `json:"discord"`
}

type DiscordConfig struct {
	Enabled   bool                `json:"enabled" env:"KUMPEL_CHANNELS_DISCORD_ENABLED"`
	Token     string              `json:"token" env:"KUMPEL_CHANNELS_DISCORD_TOKEN"`
	AllowFrom FlexibleStringSlice `json:"allow_from" env:"KUMPEL_CHANNELS_DISCORD_ALLOW_FROM"`
}

type ProvidersConfig struct {
	OpenRouter OpenRouterConfig `json:"openrouter"`
	OpenAI     OpenAIConfig     `json:"openai"`
}

type OpenRouterConfig struct {
	APIKey  string `json:"api_key" env:"KUMPEL_PROVIDERS_OPENROUTER_API_KEY"`
	APIBase string `json:"api_base" env:"KUMPEL_PROVIDERS_OPENROUTER_API_BASE"`
	Proxy   string `json:"proxy,omitempty" env:"KUMPEL_PROVIDERS_OPENROUTER_PROXY"`
}

type OpenAIConfig struct {
	APIKey           string `json:"api_key" env:"KUMPEL_PROVIDERS_OPENAI_API_KEY"`
	APIBase          string `json:"api_base" env:"KUMPEL_PROVIDERS_OPENAI_API_BASE"`
	OAuthAccessToken string `json:"oauth_access_token,omitempty" env:"KUMPEL_PROVIDERS_OPENAI_OAUTH_ACCESS_TOKEN"`
	OAuthTokenFile   string `json:"oauth_token_file,omitempty" env:"KUMPEL_PROVIDERS_OPENAI_OAUTH_TOKEN_FILE"`
	Organization     string `json:"organization,omitempty" env:"KUMPEL_PROVIDERS_OPENAI_ORGANIZATION"`
	Project          string `json:"project,omitempty" env:"KUMPEL_PROVIDERS_OPENAI_PROJECT"`
	Proxy            string `json:"proxy,omitempty" env:"KUMPEL_PROVIDERS_OPENAI_PROXY"`
}

type GatewayConfig struct {
	Host string `json:"host" env:"KUMPEL_GATEWAY_HOST"`
	Port int    `json:"port" env:"KUMPEL_GATEWAY_PORT"`
}

type MemoryConfig struct {
	ContextWindow int `json:"context_window" env:"KUMPEL_MEMORY_CONTEXT_WINDOW"` // interactions per prompt
	RankLimit     int `json:"rank_limit" env:"KUMPEL_MEMORY_RANK_LIMIT"`
	MinImportance int `json:"min_importance" env:"KUMPEL_MEMORY_MIN_IMPORTANCE"`
}

type StyleConfig struct {
	SampleDir string `json:"sample_dir" env:"KUMPEL_STYLE_SAMPLE_DIR"`
	Author    string `json:"author" env:"KUMPEL_STYLE_AUTHOR"`
}

type SpeechConfig struct {
	Enabled bool   `json:"enabled" env:"KUMPEL_SPEECH_ENABLED"`
	Command string `json:"command" env:"KUMPEL_SPEECH_COMMAND"`
}

type CaptureConfig struct {
	Command string `json:"command" env:"KUMPEL_CAPTURE_COMMAND"`
	Dir     string `json:"dir" env:"KUMPEL_CAPTURE_DIR"`
}

type ScreenlogConfig struct {
	Enabled  bool   `json:"enabled" env:"KUMPEL_SCREENLOG_ENABLED"`
	Interval int    `json:"interval" env:"KUMPEL_SCREENLOG_INTERVAL"` // seconds, min 30
	Cron     string `json:"cron" env:"KUMPEL_SCREENLOG_CRON"`         // overrides interval when set
	Deliver  bool   `json:"deliver" env:"KUMPEL_SCREENLOG_DELIVER"`
}

func DefaultConfig() *Config {
	return &Config{
		Agents: AgentsConfig{
			Defaults: AgentDefaults{
				Workspace:     "~/.kumpel/workspace",
				Provider:      "openrouter",
				TextModel:     "openai/gpt-4o-mini",
				VisionModel:   "openai/gpt-4o-mini",
				MaxTokens:     2048,
				Temperature:   0.3,
				AnswerTimeout: 120,
			},
		},
		Channels: ChannelsConfig{
			Discord: DiscordConfig{
				Enabled:   false,
				Token:     "",
				AllowFrom: FlexibleStringSlice{},
			},
		},
		Providers: ProvidersConfig{
			OpenRouter: OpenRouterConfig{},
			OpenAI:     OpenAIConfig{},
		},
		Gateway: GatewayConfig{
			Host: "127.0.0.1",
			Port: 18890,
		},
		Memory: MemoryConfig{
			ContextWindow: 30,
			RankLimit:     5,
			MinImportance: 1,
		},
		Style: StyleConfig{
			SampleDir: "~/.kumpel/style_samples",
			Author:    "Eren",
		},
		Speech: SpeechConfig{
			Enabled: false,
			Command: "",
		},
		Capture: CaptureConfig{
			Command: "",
			Dir:     "",
		},
		Screenlog: ScreenlogConfig{
			Enabled:  false,
			Interval: 120, // seconds between desktop snapshots
			Cron:     "",
			Deliver:  false,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) WorkspacePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Agents.Defaults.Workspace)
}

// MemoryDBPath is where the interaction and fact store lives.
func (c *Config) MemoryDBPath() string {
	return filepath.Join(c.WorkspacePath(), "memory", "kumpel.db")
}

// StyleSampleDir resolves the directory holding the user's writing samples.
func (c *Config) StyleSampleDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Style.SampleDir)
}

// CaptureDir resolves where screenshots land. Defaults to a
// screenshots folder inside the workspace.
func (c *Config) CaptureDir() string {
	c.mu.RLock()
	dir := c.Capture.Dir
	c.mu.RUnlock()
	if dir != "" {
		return expandHome(dir)
	}
	return filepath.Join(c.WorkspacePath(), "screenshots")
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
