// Package config reads astral settings from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/leofalp/astral/providers/ai"
	"github.com/leofalp/astral/providers/ai/anthropic"
	"github.com/leofalp/astral/providers/ai/deepseek"
	"github.com/leofalp/astral/providers/ai/gemini"
	"github.com/leofalp/astral/providers/ai/openai"
	"github.com/leofalp/astral/providers/observability/slogobs"
)

// Credentials of a provider reached with an API key.
type Credentials struct {
	APIKey  string `env:"API_KEY"`
	BaseURL string `env:"BASE_URL"`
}

// AzureCredentials of an Azure OpenAI resource.
type AzureCredentials struct {
	APIKey     string `env:"API_KEY"`
	Endpoint   string `env:"ENDPOINT"`
	APIVersion string `env:"API_VERSION" envDefault:"2024-10-21"`
}

type Config struct {
	// Files overriding the embedded catalog and registry
	CatalogPath  string `env:"ASTRAL_CATALOG_PATH"`
	RegistryPath string `env:"ASTRAL_REGISTRY_PATH"`

	// Logging
	LogLevel  string `env:"ASTRAL_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"ASTRAL_LOG_FORMAT" envDefault:"compact"`

	// Providers
	OpenAI    Credentials      `envPrefix:"OPENAI_"`
	Azure     AzureCredentials `envPrefix:"AZURE_OPENAI_"`
	Anthropic Credentials      `envPrefix:"ANTHROPIC_"`
	DeepSeek  Credentials      `envPrefix:"DEEPSEEK_"`
	Gemini    Credentials      `envPrefix:"GEMINI_"`
}

// Load reads the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Parse reads environ instead of the process environment.
func Parse(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ClientConfig returns the connection settings of provider. Unknown
// providers get an empty configuration.
func (c *Config) ClientConfig(provider string) ai.ClientConfig {
	switch provider {
	case openai.ProviderOpenAI:
		return ai.ClientConfig{APIKey: c.OpenAI.APIKey, BaseURL: c.OpenAI.BaseURL}
	case openai.ProviderAzure:
		return ai.ClientConfig{APIKey: c.Azure.APIKey, BaseURL: c.Azure.Endpoint, APIVersion: c.Azure.APIVersion}
	case anthropic.Provider:
		return ai.ClientConfig{APIKey: c.Anthropic.APIKey, BaseURL: c.Anthropic.BaseURL}
	case deepseek.Provider:
		return ai.ClientConfig{APIKey: c.DeepSeek.APIKey, BaseURL: c.DeepSeek.BaseURL}
	case gemini.Provider:
		return ai.ClientConfig{APIKey: c.Gemini.APIKey, BaseURL: c.Gemini.BaseURL}
	}
	return ai.ClientConfig{}
}

// HasCredentials reports whether an API key is configured for provider.
func (c *Config) HasCredentials(provider string) bool {
	return c.ClientConfig(provider).APIKey != ""
}

// ObserverOptions returns the slogobs options matching the log settings.
func (c *Config) ObserverOptions() []slogobs.Option {
	return []slogobs.Option{
		slogobs.WithLevel(slogobs.ParseLogLevel(c.LogLevel)),
		slogobs.WithFormat(slogobs.ParseFormat(c.LogFormat)),
	}
}
