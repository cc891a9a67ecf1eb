package anthropic

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/leofalp/astral/core/catalog"
	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/core/parse"
	"github.com/leofalp/astral/providers/ai"
)

const (
	// ConverterName is the registry name of the LLM message converter.
	ConverterName = "ConvertLLMMessages"

	// OutputType is the qualified type name of a converted conversation.
	OutputType = "github.com/leofalp/astral/providers/ai/anthropic.MessagesPayload"

	defaultImageMimeType = "image/png"
)

// LLMConverter is the ai.MessageConverter registered for the llm model type.
var LLMConverter = ai.NewConverter(ConverterName, OutputType, func(messages []ai.Message, opts ai.ConvertOptions) (any, error) {
	return ConvertLLMMessages(messages, opts)
})

// ConvertLLMMessages converts messages into a Messages API payload.
//
// System and developer messages are joined into the top-level system field,
// which needs the model to accept system messages. Consecutive tool results
// and user messages are merged into a single user turn, the only layout the
// API accepts.
func ConvertLLMMessages(messages []ai.Message, opts ai.ConvertOptions) (MessagesPayload, error) {
	if err := ai.ValidateMessages(messages); err != nil {
		return MessagesPayload{}, err
	}

	unsupported := func(feature catalog.Feature) error {
		return &errs.FeatureNotSupportedError{Provider: Provider, Model: opts.Model, Feature: string(feature)}
	}

	var (
		payload MessagesPayload
		system  []string
	)
	for i, msg := range messages {
		if msg.HasImages() && !opts.ImageIngestion {
			return MessagesPayload{}, unsupported(catalog.FeatureImageIngestion)
		}
		if (len(msg.ToolCalls) > 0 || msg.Role == ai.RoleTool) && !opts.FunctionCall {
			return MessagesPayload{}, unsupported(catalog.FeatureFunctionCall)
		}

		switch msg.Role {
		case ai.RoleSystem, ai.RoleDeveloper:
			if !opts.SystemMessage {
				return MessagesPayload{}, unsupported(catalog.FeatureSystemMessage)
			}
			if text := msg.Text(); text != "" {
				system = append(system, text)
			}

		case ai.RoleUser:
			blocks, err := contentBlocks(msg)
			if err != nil {
				return MessagesPayload{}, fmt.Errorf("message %d: %w", i, err)
			}
			payload.Messages = appendUserTurn(payload.Messages, blocks...)

		case ai.RoleAssistant:
			out, err := assistantMessage(msg)
			if err != nil {
				return MessagesPayload{}, fmt.Errorf("message %d: %w", i, err)
			}
			if len(out.Content) > 0 {
				payload.Messages = append(payload.Messages, out)
			}

		case ai.RoleTool:
			block := ContentBlock{
				Type:      blockToolResult,
				ToolUseID: msg.ToolCallID,
				Content:   msg.Text(),
			}
			payload.Messages = appendUserTurn(payload.Messages, block)
		}
	}

	payload.System = strings.Join(system, "\n\n")
	return payload, nil
}

func assistantMessage(msg ai.Message) (Message, error) {
	out := Message{Role: roleAssistant}

	// Thinking blocks must come before any text or tool_use blocks.
	if msg.Reasoning != "" {
		out.Content = append(out.Content, ContentBlock{Type: blockThinking, Thinking: msg.Reasoning})
	}

	if len(msg.ContentParts) > 0 || msg.Content != "" {
		blocks, err := contentBlocks(msg)
		if err != nil {
			return Message{}, err
		}
		out.Content = append(out.Content, blocks...)
	}

	for _, call := range msg.ToolCalls {
		input, err := parse.Arguments(call.Function.Arguments)
		if err != nil {
			return Message{}, fmt.Errorf("tool call %q: %w", call.ID, err)
		}
		out.Content = append(out.Content, ContentBlock{
			Type:  blockToolUse,
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: input,
		})
	}
	return out, nil
}

// appendUserTurn adds blocks as a user turn, merging them into the last
// turn when that one is already a user turn, since Anthropic forbids two
// consecutive user turns. tool_result blocks stay ahead of other content.
func appendUserTurn(messages []Message, blocks ...ContentBlock) []Message {
	n := len(messages)
	if n == 0 || messages[n-1].Role != roleUser {
		return append(messages, Message{Role: roleUser, Content: blocks})
	}
	merged := append(messages[n-1].Content, blocks...)
	slices.SortStableFunc(merged, func(a, b ContentBlock) int {
		return toolResultRank(a) - toolResultRank(b)
	})
	messages[n-1].Content = merged
	return messages
}

func toolResultRank(block ContentBlock) int {
	if block.Type == blockToolResult {
		return 0
	}
	return 1
}

func contentBlocks(msg ai.Message) ([]ContentBlock, error) {
	if len(msg.ContentParts) == 0 {
		return []ContentBlock{{Type: blockText, Text: msg.Content}}, nil
	}

	blocks := make([]ContentBlock, 0, len(msg.ContentParts))
	for _, part := range msg.ContentParts {
		switch part.Type {
		case ai.ContentTypeText:
			blocks = append(blocks, ContentBlock{Type: blockText, Text: part.Text})
		case ai.ContentTypeImage:
			source, err := imageSource(part.Image)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, ContentBlock{Type: blockImage, Source: source})
		default:
			return nil, fmt.Errorf("unsupported content part type %q", part.Type)
		}
	}
	return blocks, nil
}

func imageSource(img *ai.ImageData) (*Source, error) {
	switch {
	case img == nil:
		return nil, errors.New("image part without image data")
	case img.URI != "":
		return &Source{Type: "url", URL: img.URI}, nil
	case img.Data != "":
		mime := img.MimeType
		if mime == "" {
			mime = defaultImageMimeType
		}
		return &Source{Type: "base64", MediaType: mime, Data: img.Data}, nil
	}
	return nil, errors.New("image part has neither URI nor data")
}
