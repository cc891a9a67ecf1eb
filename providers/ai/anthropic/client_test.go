package anthropic

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/ai"
)

func TestNewClient(t *testing.T) {
	got, err := NewClient(context.Background(), ai.ClientConfig{APIKey: "sk-ant"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	client := got.(*Client)

	if client.Provider() != Provider || client.Mode() != ai.ClientModeSync {
		t.Errorf("Provider()/Mode() = %q/%q", client.Provider(), client.Mode())
	}
	if client.MessagesURL() != "https://api.anthropic.com/v1/messages" {
		t.Errorf("MessagesURL() = %q", client.MessagesURL())
	}
	h := client.Headers()
	if h.Get("x-api-key") != "sk-ant" || h.Get("anthropic-version") != APIVersion || h.Get("accept") != "" {
		t.Errorf("Headers() = %v", h)
	}
	if client.HTTPClient() != http.DefaultClient {
		t.Error("HTTPClient() is not the default client")
	}
}

func TestNewAsyncClientOverrides(t *testing.T) {
	httpClient := &http.Client{}
	got, err := NewAsyncClient(context.Background(), ai.ClientConfig{
		APIKey:     "sk-ant",
		BaseURL:    "http://localhost:9000/v1/",
		APIVersion: "2024-01-01",
		HTTPClient: httpClient,
	})
	if err != nil {
		t.Fatalf("NewAsyncClient() error = %v", err)
	}
	client := got.(*Client)

	if client.Mode() != ai.ClientModeAsync {
		t.Errorf("Mode() = %q", client.Mode())
	}
	if client.MessagesURL() != "http://localhost:9000/v1/messages" {
		t.Errorf("MessagesURL() = %q", client.MessagesURL())
	}
	h := client.Headers()
	if h.Get("anthropic-version") != "2024-01-01" || h.Get("accept") != "text/event-stream" {
		t.Errorf("Headers() = %v", h)
	}
	if client.HTTPClient() != httpClient {
		t.Error("HTTPClient() override ignored")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	got, err := NewClient(context.Background(), ai.ClientConfig{})
	if !errors.Is(err, errs.ErrMissingCredentials) {
		t.Errorf("NewClient() error = %v, want ErrMissingCredentials", err)
	}
	if got != nil {
		t.Errorf("NewClient() = %v, want nil", got)
	}
}
