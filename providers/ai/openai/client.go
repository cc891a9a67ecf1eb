package openai

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/ai"
)

const (
	ProviderOpenAI = "openai"
	ProviderAzure  = "azureOpenAI"

	// DefaultAzureAPIVersion is used when the configuration leaves APIVersion empty.
	DefaultAzureAPIVersion = "2024-10-21"
)

// ErrAzureEndpointRequired is returned by the Azure constructors when no
// endpoint is configured.
var ErrAzureEndpointRequired = errors.New("astral: Azure OpenAI endpoint (base URL) is not set")

// Client wraps a go-openai client together with the provider and mode it was
// built for.
type Client struct {
	provider string
	mode     ai.ClientMode
	config   goopenai.ClientConfig
	sdk      *goopenai.Client
}

var _ ai.Client = (*Client)(nil)

func (c *Client) Provider() string      { return c.provider }
func (c *Client) Mode() ai.ClientMode   { return c.mode }
func (c *Client) SDK() *goopenai.Client { return c.sdk }

// BaseURL returns the endpoint requests are sent to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// NewClient builds a blocking OpenAI client.
func NewClient(_ context.Context, cfg ai.ClientConfig) (ai.Client, error) {
	return asClient(NewCompatibleClient(ProviderOpenAI, ai.ClientModeSync, "", cfg))
}

// NewAsyncClient builds an OpenAI client meant for streaming use.
func NewAsyncClient(_ context.Context, cfg ai.ClientConfig) (ai.Client, error) {
	return asClient(NewCompatibleClient(ProviderOpenAI, ai.ClientModeAsync, "", cfg))
}

// NewAzureClient builds a blocking Azure OpenAI client. cfg.BaseURL is the
// resource endpoint.
func NewAzureClient(_ context.Context, cfg ai.ClientConfig) (ai.Client, error) {
	return asClient(newAzureClient(ai.ClientModeSync, cfg))
}

// NewAsyncAzureClient builds an Azure OpenAI client meant for streaming use.
func NewAsyncAzureClient(_ context.Context, cfg ai.ClientConfig) (ai.Client, error) {
	return asClient(newAzureClient(ai.ClientModeAsync, cfg))
}

// NewCompatibleClient builds a client for any endpoint speaking the OpenAI
// wire format. defaultBaseURL applies when cfg.BaseURL is empty; an empty
// default keeps go-openai's own.
func NewCompatibleClient(provider string, mode ai.ClientMode, defaultBaseURL string, cfg ai.ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for provider %q", errs.ErrMissingCredentials, provider)
	}

	config := goopenai.DefaultConfig(cfg.APIKey)
	switch {
	case cfg.BaseURL != "":
		config.BaseURL = cfg.BaseURL
	case defaultBaseURL != "":
		config.BaseURL = defaultBaseURL
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	return &Client{
		provider: provider,
		mode:     mode,
		config:   config,
		sdk:      goopenai.NewClientWithConfig(config),
	}, nil
}

func newAzureClient(mode ai.ClientMode, cfg ai.ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for provider %q", errs.ErrMissingCredentials, ProviderAzure)
	}
	if cfg.BaseURL == "" {
		return nil, ErrAzureEndpointRequired
	}

	config := goopenai.DefaultAzureConfig(cfg.APIKey, cfg.BaseURL)
	config.APIVersion = DefaultAzureAPIVersion
	if cfg.APIVersion != "" {
		config.APIVersion = cfg.APIVersion
	}
	if cfg.HTTPClient != nil {
		config.HTTPClient = cfg.HTTPClient
	}

	return &Client{
		provider: ProviderAzure,
		mode:     mode,
		config:   config,
		sdk:      goopenai.NewClientWithConfig(config),
	}, nil
}

// asClient keeps a failed construction from leaking a typed nil into the
// ai.Client interface.
func asClient(c *Client, err error) (ai.Client, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

// APIVersion returns the Azure API version, empty for plain OpenAI clients.
func (c *Client) APIVersion() string {
	if c.config.APIType != goopenai.APITypeAzure && c.config.APIType != goopenai.APITypeAzureAD {
		return ""
	}
	return c.config.APIVersion
}
