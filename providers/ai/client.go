package ai

import (
	"context"
	"net/http"
)

// ClientMode selects between the blocking and the streaming flavour of a
// provider client.
type ClientMode string

const (
	ClientModeSync  ClientMode = "sync"
	ClientModeAsync ClientMode = "async"
)

// ClientConfig holds the connection settings handed to a ClientFactory.
// Fields a provider has no use for are ignored.
type ClientConfig struct {
	APIKey     string `json:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty"`
	APIVersion string `json:"api_version,omitempty"` // Azure OpenAI only

	HTTPClient *http.Client `json:"-"`
}

// IsZero reports whether no setting was provided.
func (c ClientConfig) IsZero() bool {
	return c.APIKey == "" && c.BaseURL == "" && c.APIVersion == "" && c.HTTPClient == nil
}

// Client is a constructed provider client. The concrete type exposes the
// underlying SDK handle.
type Client interface {
	Provider() string
	Mode() ClientMode
}

// ClientFactory builds a provider client from cfg.
type ClientFactory func(ctx context.Context, cfg ClientConfig) (Client, error)
