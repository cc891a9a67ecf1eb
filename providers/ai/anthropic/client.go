package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/ai"
)

const (
	Provider = "anthropic"

	// DefaultBaseURL is the canonical base URL for Anthropic's Messages API.
	DefaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// APIVersion pins the wire format through the anthropic-version header.
	APIVersion = "2023-06-01"
)

// Client holds what a Messages API call needs: credentials, endpoint and
// the HTTP client to send with.
type Client struct {
	mode       ai.ClientMode
	apiKey     string
	baseURL    string
	version    string
	httpClient *http.Client
}

var _ ai.Client = (*Client)(nil)

func (c *Client) Provider() string         { return Provider }
func (c *Client) Mode() ai.ClientMode      { return c.mode }
func (c *Client) BaseURL() string          { return c.baseURL }
func (c *Client) HTTPClient() *http.Client { return c.httpClient }

// MessagesURL returns the full URL of the Messages endpoint.
func (c *Client) MessagesURL() string {
	return strings.TrimRight(c.baseURL, "/") + messagesEndpoint
}

// Headers returns the headers every Messages request carries. Anthropic
// authenticates with x-api-key rather than a bearer token.
func (c *Client) Headers() http.Header {
	h := make(http.Header)
	h.Set("x-api-key", c.apiKey)
	h.Set("anthropic-version", c.version)
	h.Set("content-type", "application/json")
	if c.mode == ai.ClientModeAsync {
		h.Set("accept", "text/event-stream")
	}
	return h
}

// NewClient builds a blocking Anthropic client.
func NewClient(_ context.Context, cfg ai.ClientConfig) (ai.Client, error) {
	return newClient(ai.ClientModeSync, cfg)
}

// NewAsyncClient builds an Anthropic client for server-sent event streams.
func NewAsyncClient(_ context.Context, cfg ai.ClientConfig) (ai.Client, error) {
	return newClient(ai.ClientModeAsync, cfg)
}

func newClient(mode ai.ClientMode, cfg ai.ClientConfig) (ai.Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for provider %q", errs.ErrMissingCredentials, Provider)
	}

	c := &Client{
		mode:       mode,
		apiKey:     cfg.APIKey,
		baseURL:    DefaultBaseURL,
		version:    APIVersion,
		httpClient: http.DefaultClient,
	}
	if cfg.BaseURL != "" {
		c.baseURL = cfg.BaseURL
	}
	if cfg.APIVersion != "" {
		c.version = cfg.APIVersion
	}
	if cfg.HTTPClient != nil {
		c.httpClient = cfg.HTTPClient
	}
	return c, nil
}
