package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/ai"
)

const Provider = "gemini"

// Client wraps a genai client together with the mode it was built for.
type Client struct {
	mode ai.ClientMode
	sdk  *genai.Client
}

var _ ai.Client = (*Client)(nil)

func (c *Client) Provider() string    { return Provider }
func (c *Client) Mode() ai.ClientMode { return c.mode }
func (c *Client) SDK() *genai.Client  { return c.sdk }

// NewClient builds a Gemini API client for blocking generate calls.
func NewClient(ctx context.Context, cfg ai.ClientConfig) (ai.Client, error) {
	return newClient(ctx, ai.ClientModeSync, cfg)
}

// NewAsyncClient builds a Gemini API client for streaming generate calls.
func NewAsyncClient(ctx context.Context, cfg ai.ClientConfig) (ai.Client, error) {
	return newClient(ctx, ai.ClientModeAsync, cfg)
}

func newClient(ctx context.Context, mode ai.ClientMode, cfg ai.ClientConfig) (ai.Client, error) {
	// genai falls back to GOOGLE_API_KEY on its own; credentials here come
	// only from the configuration so every provider behaves the same.
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for provider %q", errs.ErrMissingCredentials, Provider)
	}

	sdkConfig := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.BaseURL,
			APIVersion: cfg.APIVersion,
		},
	}

	sdk, err := genai.NewClient(ctx, sdkConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{mode: mode, sdk: sdk}, nil
}
