package ai

import (
	"errors"
	"testing"

	"github.com/leofalp/astral/core/errs"
)

func TestValidateMessages(t *testing.T) {
	tests := []struct {
		name     string
		messages []Message
		wantErr  error
	}{
		{
			name:    "empty conversation",
			wantErr: errs.ErrMessagesRequired,
		},
		{
			name: "unknown role",
			messages: []Message{
				{Role: RoleUser, Content: "hi"},
				{Role: "narrator", Content: "meanwhile"},
			},
			wantErr: errs.ErrInvalidMessageRole,
		},
		{
			name: "every known role",
			messages: []Message{
				{Role: RoleSystem, Content: "be brief"},
				{Role: RoleDeveloper, Content: "answer in French"},
				{Role: RoleUser, Content: "hello"},
				{Role: RoleAssistant, Content: "bonjour"},
				{Role: RoleTool, Content: "{}", ToolCallID: "call_1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessages(tt.messages)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateMessages() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateMessages() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessageText(t *testing.T) {
	msg := Message{
		Role: RoleUser,
		ContentParts: []ContentPart{
			NewTextPart("first"),
			NewImageURIPart("https://example.com/cat.png", "image/png"),
			NewTextPart("second"),
		},
	}

	if got, want := msg.Text(), "first\nsecond"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if !msg.HasImages() {
		t.Error("HasImages() = false, want true")
	}

	plain := Message{Role: RoleUser, Content: "plain"}
	if plain.Text() != "plain" || plain.HasImages() {
		t.Errorf("plain message: Text() = %q, HasImages() = %v", plain.Text(), plain.HasImages())
	}
}

func TestNewConverter(t *testing.T) {
	var seen ConvertOptions
	conv := NewConverter("Echo", "example.com/echo.Messages", func(messages []Message, opts ConvertOptions) (any, error) {
		seen = opts
		return len(messages), nil
	})

	if conv.Name() != "Echo" || conv.OutputType() != "example.com/echo.Messages" {
		t.Fatalf("Name()/OutputType() = %q/%q", conv.Name(), conv.OutputType())
	}

	out, err := conv.ConvertMessages([]Message{{Role: RoleUser}}, ConvertOptions{Model: "m-1", ImageIngestion: true})
	if err != nil {
		t.Fatalf("ConvertMessages() error = %v", err)
	}
	if out.(int) != 1 {
		t.Errorf("ConvertMessages() = %v, want 1", out)
	}
	if seen.Model != "m-1" || !seen.ImageIngestion {
		t.Errorf("options not forwarded: %+v", seen)
	}
}

func TestClientConfigIsZero(t *testing.T) {
	if !(ClientConfig{}).IsZero() {
		t.Error("zero ClientConfig.IsZero() = false")
	}
	if (ClientConfig{BaseURL: "http://localhost"}).IsZero() {
		t.Error("ClientConfig with BaseURL reported zero")
	}
}
