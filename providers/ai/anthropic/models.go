package anthropic

import "encoding/json"

/*
	ANTHROPIC MESSAGES API - REQUEST TYPES
*/

// MessagesPayload is the conversation part of a Messages API request body.
// Model, max_tokens and sampling settings are added by the caller.
type MessagesPayload struct {
	System   string    `json:"system,omitempty"`
	Messages []Message `json:"messages"`
}

// Message is a single turn. Anthropic requires turns to alternate between
// user and assistant.
type Message struct {
	Role    string         `json:"role"`    // "user" or "assistant"
	Content []ContentBlock `json:"content"` // Array of content blocks
}

// ContentBlock is a discriminated union via the Type field:
//   - "text": Text
//   - "image": Source (base64 or url)
//   - "tool_use": ID, Name, Input
//   - "tool_result": ToolUseID, Content
//   - "thinking": Thinking
type ContentBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Source    *Source         `json:"source,omitempty"`      // For image
	ID        string          `json:"id,omitempty"`          // For tool_use
	Name      string          `json:"name,omitempty"`        // For tool_use
	Input     json.RawMessage `json:"input,omitempty"`       // For tool_use (arbitrary JSON)
	ToolUseID string          `json:"tool_use_id,omitempty"` // For tool_result
	Content   string          `json:"content,omitempty"`     // For tool_result
	Thinking  string          `json:"thinking,omitempty"`    // For thinking blocks
}

// Source represents a media source (base64 inline or URL reference).
type Source struct {
	Type      string `json:"type"`                 // "base64" or "url"
	MediaType string `json:"media_type,omitempty"` // MIME type (for base64)
	Data      string `json:"data,omitempty"`       // Base64-encoded data
	URL       string `json:"url,omitempty"`        // URL reference
}

const (
	roleUser      = "user"
	roleAssistant = "assistant"

	blockText       = "text"
	blockImage      = "image"
	blockToolUse    = "tool_use"
	blockToolResult = "tool_result"
	blockThinking   = "thinking"
)
