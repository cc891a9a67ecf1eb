package openai

import (
	"errors"
	"testing"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/ai"
)

var gpt4o = ai.ConvertOptions{
	Model:            "gpt-4o-2024-11-20",
	SystemMessage:    true,
	DeveloperMessage: true,
	ImageIngestion:   true,
	FunctionCall:     true,
}

func TestConvertLLMMessagesInstructionRole(t *testing.T) {
	tests := []struct {
		name     string
		role     ai.MessageRole
		opts     ai.ConvertOptions
		wantRole string
		wantErr  bool
	}{
		{"system kept when both supported", ai.RoleSystem, gpt4o, goopenai.ChatMessageRoleSystem, false},
		{"developer kept when both supported", ai.RoleDeveloper, gpt4o, "developer", false},
		{"system mapped to developer", ai.RoleSystem, ai.ConvertOptions{DeveloperMessage: true}, "developer", false},
		{"developer mapped to system", ai.RoleDeveloper, ai.ConvertOptions{SystemMessage: true}, goopenai.ChatMessageRoleSystem, false},
		{"no instruction role", ai.RoleSystem, ai.ConvertOptions{Model: "o1-mini-2024-09-12"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ConvertLLMMessages([]ai.Message{
				{Role: tt.role, Content: "be terse"},
				{Role: ai.RoleUser, Content: "hi"},
			}, tt.opts)

			if tt.wantErr {
				var fe *errs.FeatureNotSupportedError
				if !errors.As(err, &fe) {
					t.Fatalf("ConvertLLMMessages() error = %v, want FeatureNotSupportedError", err)
				}
				if fe.Feature != "system_message" || fe.Model != tt.opts.Model || fe.Provider != ProviderOpenAI {
					t.Errorf("FeatureNotSupportedError = %+v", fe)
				}
				return
			}
			if err != nil {
				t.Fatalf("ConvertLLMMessages() error = %v", err)
			}
			if got[0].Role != tt.wantRole || got[0].Content != "be terse" {
				t.Errorf("instruction = %+v, want role %q", got[0], tt.wantRole)
			}
			if got[1].Role != goopenai.ChatMessageRoleUser {
				t.Errorf("user role = %q", got[1].Role)
			}
		})
	}
}

func TestConvertLLMMessagesImages(t *testing.T) {
	messages := []ai.Message{{
		Role: ai.RoleUser,
		ContentParts: []ai.ContentPart{
			ai.NewTextPart("what is this?"),
			ai.NewImageURIPart("https://example.com/cat.png", "image/png"),
			ai.NewImageDataPart("aGVsbG8=", "image/jpeg"),
		},
	}}

	got, err := ConvertLLMMessages(messages, gpt4o)
	if err != nil {
		t.Fatalf("ConvertLLMMessages() error = %v", err)
	}
	parts := got[0].MultiContent
	if got[0].Content != "" || len(parts) != 3 {
		t.Fatalf("message = %+v, want 3 parts and no plain content", got[0])
	}
	if parts[0].Type != goopenai.ChatMessagePartTypeText || parts[0].Text != "what is this?" {
		t.Errorf("part 0 = %+v", parts[0])
	}
	if parts[1].ImageURL == nil || parts[1].ImageURL.URL != "https://example.com/cat.png" {
		t.Errorf("part 1 = %+v", parts[1])
	}
	if parts[2].ImageURL == nil || parts[2].ImageURL.URL != "data:image/jpeg;base64,aGVsbG8=" {
		t.Errorf("part 2 = %+v", parts[2])
	}

	noImages := gpt4o
	noImages.ImageIngestion = false
	_, err = ConvertLLMMessages(messages, noImages)
	var fe *errs.FeatureNotSupportedError
	if !errors.As(err, &fe) || fe.Feature != "image_ingestion" {
		t.Errorf("error = %v, want image_ingestion not supported", err)
	}
}

func TestConvertLLMMessagesTools(t *testing.T) {
	messages := []ai.Message{
		{Role: ai.RoleUser, Content: "weather in Rome?"},
		{Role: ai.RoleAssistant, ToolCalls: []ai.ToolCall{{
			ID:       "call_1",
			Type:     "function",
			Function: ai.ToolCallFunction{Name: "get_weather", Arguments: `{"city":"Rome"}`},
		}}},
		{Role: ai.RoleTool, ToolCallID: "call_1", Name: "get_weather", Content: `{"temp":21}`},
		{Role: ai.RoleAssistant, Content: "21 degrees"},
	}

	got, err := ConvertLLMMessages(messages, gpt4o)
	if err != nil {
		t.Fatalf("ConvertLLMMessages() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("got %d messages, want 4", len(got))
	}
	call := got[1].ToolCalls[0]
	if call.ID != "call_1" || call.Type != goopenai.ToolTypeFunction || call.Function.Arguments != `{"city":"Rome"}` {
		t.Errorf("tool call = %+v", call)
	}
	if got[2].Role != goopenai.ChatMessageRoleTool || got[2].ToolCallID != "call_1" || got[2].Content != `{"temp":21}` {
		t.Errorf("tool result = %+v", got[2])
	}

	noTools := gpt4o
	noTools.FunctionCall = false
	_, err = ConvertLLMMessages(messages, noTools)
	var fe *errs.FeatureNotSupportedError
	if !errors.As(err, &fe) || fe.Feature != "function_call" {
		t.Errorf("error = %v, want function_call not supported", err)
	}
}

func TestConvertLLMMessagesRejectsBadInput(t *testing.T) {
	if _, err := ConvertLLMMessages(nil, gpt4o); !errors.Is(err, errs.ErrMessagesRequired) {
		t.Errorf("empty conversation error = %v", err)
	}
	if _, err := ConvertLLMMessages([]ai.Message{{Role: "critic"}}, gpt4o); !errors.Is(err, errs.ErrInvalidMessageRole) {
		t.Errorf("unknown role error = %v", err)
	}
	bad := []ai.Message{{Role: ai.RoleUser, ContentParts: []ai.ContentPart{{Type: "audio"}}}}
	if _, err := ConvertLLMMessages(bad, gpt4o); err == nil {
		t.Error("audio part accepted")
	}
}

func TestLLMConverter(t *testing.T) {
	if LLMConverter.Name() != ConverterName || LLMConverter.OutputType() != OutputType {
		t.Fatalf("LLMConverter = %q/%q", LLMConverter.Name(), LLMConverter.OutputType())
	}
	out, err := LLMConverter.ConvertMessages([]ai.Message{{Role: ai.RoleUser, Content: "hi"}}, gpt4o)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.([]goopenai.ChatCompletionMessage); !ok {
		t.Errorf("ConvertMessages() returned %T", out)
	}
}

func TestImageURL(t *testing.T) {
	if _, err := ImageURL(nil); err == nil {
		t.Error("ImageURL(nil) error = nil")
	}
	if _, err := ImageURL(&ai.ImageData{}); err == nil {
		t.Error("ImageURL(empty) error = nil")
	}
	got, err := ImageURL(&ai.ImageData{Data: "AAAA"})
	if err != nil || got != "data:image/png;base64,AAAA" {
		t.Errorf("ImageURL(data) = %q, %v", got, err)
	}
}
