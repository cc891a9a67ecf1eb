package ai

import (
	"fmt"
	"strings"

	"github.com/leofalp/astral/core/errs"
)

/*
	##### CONVERSATION #####
*/

// Message is a single turn of a conversation, independent of any provider.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	// ContentParts carries multimodal input. When set it takes precedence over Content.
	ContentParts []ContentPart `json:"content_parts,omitempty"`

	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`   // For role=assistant requesting tools
	ToolCallID string     `json:"tool_call_id,omitempty"` // For role=tool, links to the tool call being responded to
	Name       string     `json:"name,omitempty"`         // For role=tool, name of the tool that produced the content

	Reasoning string `json:"reasoning,omitempty"` // Chain-of-thought returned by reasoning models
}

// HasImages reports whether any content part of m is an image.
func (m Message) HasImages() bool {
	for _, part := range m.ContentParts {
		if part.Type == ContentTypeImage {
			return true
		}
	}
	return false
}

// Text returns the textual content of m, joining text parts when the
// message is multimodal.
func (m Message) Text() string {
	if len(m.ContentParts) == 0 {
		return m.Content
	}
	var texts []string
	for _, part := range m.ContentParts {
		if part.Type == ContentTypeText {
			texts = append(texts, part.Text)
		}
	}
	return strings.Join(texts, "\n")
}

type ContentPartType string

const (
	ContentTypeText  ContentPartType = "text"
	ContentTypeImage ContentPartType = "image"
)

// ContentPart is one element of a multimodal message.
type ContentPart struct {
	Type  ContentPartType `json:"type"`
	Text  string          `json:"text,omitempty"`
	Image *ImageData      `json:"image,omitempty"`
}

// ImageData references an image either by URI or by inline base64 data.
type ImageData struct {
	URI      string `json:"uri,omitempty"`
	Data     string `json:"data,omitempty"` // base64, used when URI is empty
	MimeType string `json:"mime_type,omitempty"`
	Detail   string `json:"detail,omitempty"` // "low", "high" or "auto"; ignored by providers without the knob
}

// NewTextPart returns a text content part.
func NewTextPart(text string) ContentPart {
	return ContentPart{Type: ContentTypeText, Text: text}
}

// NewImageURIPart returns an image content part pointing at uri.
func NewImageURIPart(uri, mimeType string) ContentPart {
	return ContentPart{Type: ContentTypeImage, Image: &ImageData{URI: uri, MimeType: mimeType}}
}

// NewImageDataPart returns an image content part carrying base64 data inline.
func NewImageDataPart(data, mimeType string) ContentPart {
	return ContentPart{Type: ContentTypeImage, Image: &ImageData{Data: data, MimeType: mimeType}}
}

type ToolCall struct {
	ID       string           `json:"id,omitempty"`
	Type     string           `json:"type"` // "function"
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

/*
	##### ACCOUNTING #####
*/

// Usage reports token consumption of a completed request. CachedTokens is a
// subset of PromptTokens.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	ReasoningTokens int `json:"reasoning_tokens,omitempty"`
	CachedTokens    int `json:"cached_tokens,omitempty"`
}

/*
	##### ENUMS #####
*/

type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions
	RoleDeveloper MessageRole = "developer" // Developer instructions, the successor of system on newer OpenAI models
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
	RoleTool      MessageRole = "tool"      // Tool/function output
)

// Valid reports whether r is one of the known roles.
func (r MessageRole) Valid() bool {
	switch r {
	case RoleSystem, RoleDeveloper, RoleUser, RoleAssistant, RoleTool:
		return true
	}
	return false
}

// IsInstruction reports whether r carries instructions rather than dialogue.
func (r MessageRole) IsInstruction() bool {
	return r == RoleSystem || r == RoleDeveloper
}

// ValidateMessages checks the preconditions every converter shares: the
// conversation is not empty and every role is known.
func ValidateMessages(messages []Message) error {
	if len(messages) == 0 {
		return errs.ErrMessagesRequired
	}
	for i, msg := range messages {
		if !msg.Role.Valid() {
			return fmt.Errorf("%w: %q at index %d", errs.ErrInvalidMessageRole, msg.Role, i)
		}
	}
	return nil
}
