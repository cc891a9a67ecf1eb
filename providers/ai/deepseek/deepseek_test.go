package deepseek

import (
	"context"
	"errors"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/ai"
	"github.com/leofalp/astral/providers/ai/openai"
)

func TestClients(t *testing.T) {
	tests := []struct {
		name    string
		factory ai.ClientFactory
		cfg     ai.ClientConfig
		mode    ai.ClientMode
		baseURL string
	}{
		{"sync default endpoint", NewClient, ai.ClientConfig{APIKey: "k"}, ai.ClientModeSync, DefaultBaseURL},
		{"async custom endpoint", NewAsyncClient, ai.ClientConfig{APIKey: "k", BaseURL: "http://proxy/v1"}, ai.ClientModeAsync, "http://proxy/v1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.factory(context.Background(), tt.cfg)
			if err != nil {
				t.Fatalf("factory() error = %v", err)
			}
			client := got.(*openai.Client)
			if client.Provider() != Provider || client.Mode() != tt.mode || client.BaseURL() != tt.baseURL {
				t.Errorf("client = %s/%s at %s", client.Provider(), client.Mode(), client.BaseURL())
			}
		})
	}

	got, err := NewClient(context.Background(), ai.ClientConfig{})
	if !errors.Is(err, errs.ErrMissingCredentials) || got != nil {
		t.Errorf("NewClient() without key = %v, %v", got, err)
	}
}

func TestConvertLLMMessages(t *testing.T) {
	opts := ai.ConvertOptions{Model: "deepseek-chat", SystemMessage: true, DeveloperMessage: true, FunctionCall: true}

	got, err := ConvertLLMMessages([]ai.Message{
		{Role: ai.RoleDeveloper, Content: "be brief"},
		{Role: ai.RoleUser, Content: "2+2?"},
		{Role: ai.RoleAssistant, Content: "4", Reasoning: "two plus two"},
	}, opts)
	if err != nil {
		t.Fatalf("ConvertLLMMessages() error = %v", err)
	}
	if got[0].Role != goopenai.ChatMessageRoleSystem {
		t.Errorf("developer sent as %q, want system", got[0].Role)
	}
	if got[2].Content != "4" || got[2].Role != goopenai.ChatMessageRoleAssistant {
		t.Errorf("assistant = %+v", got[2])
	}
}

func TestConvertLLMMessagesReportsDeepSeek(t *testing.T) {
	opts := ai.ConvertOptions{Model: "deepseek-reasoner", SystemMessage: true}

	_, err := ConvertLLMMessages([]ai.Message{{Role: ai.RoleTool, ToolCallID: "x", Content: "1"}}, opts)
	var fe *errs.FeatureNotSupportedError
	if !errors.As(err, &fe) || fe.Provider != Provider || fe.Model != "deepseek-reasoner" {
		t.Errorf("error = %v, want FeatureNotSupportedError for deepseek", err)
	}
}

func TestLLMConverterOutputType(t *testing.T) {
	if LLMConverter.OutputType() != "github.com/sashabaranov/go-openai.ChatCompletionMessage" {
		t.Errorf("OutputType() = %q", LLMConverter.OutputType())
	}
}
