package openai

import (
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/leofalp/astral/core/catalog"
	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/ai"
)

const (
	// ConverterName is the registry name of the LLM message converter.
	ConverterName = "ConvertLLMMessages"

	// OutputType is the qualified type name of a converted message.
	OutputType = "github.com/sashabaranov/go-openai.ChatCompletionMessage"

	// roleDeveloper is the instruction role of newer OpenAI models.
	roleDeveloper = "developer"
)

// LLMConverter is the ai.MessageConverter registered for the llm model type
// of both openai and azureOpenAI.
var LLMConverter = ai.NewConverter(ConverterName, OutputType, func(messages []ai.Message, opts ai.ConvertOptions) (any, error) {
	return ConvertLLMMessages(messages, opts)
})

// ConvertLLMMessages converts messages for an OpenAI chat completion.
//
// System and developer messages are sent under whichever instruction role
// the model accepts; a model that takes neither rejects them. Image parts
// need image ingestion, tool calls and tool results need function calling.
func ConvertLLMMessages(messages []ai.Message, opts ai.ConvertOptions) ([]goopenai.ChatCompletionMessage, error) {
	return ConvertMessages(ProviderOpenAI, messages, opts)
}

// ConvertMessages is ConvertLLMMessages with the provider reported in errors
// made explicit, for providers reusing the OpenAI wire format.
func ConvertMessages(provider string, messages []ai.Message, opts ai.ConvertOptions) ([]goopenai.ChatCompletionMessage, error) {
	if err := ai.ValidateMessages(messages); err != nil {
		return nil, err
	}

	unsupported := func(feature catalog.Feature) error {
		return &errs.FeatureNotSupportedError{Provider: provider, Model: opts.Model, Feature: string(feature)}
	}

	result := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for i, msg := range messages {
		if msg.HasImages() && !opts.ImageIngestion {
			return nil, unsupported(catalog.FeatureImageIngestion)
		}
		if (len(msg.ToolCalls) > 0 || msg.Role == ai.RoleTool) && !opts.FunctionCall {
			return nil, unsupported(catalog.FeatureFunctionCall)
		}

		switch msg.Role {
		case ai.RoleSystem, ai.RoleDeveloper:
			role, err := instructionRole(msg.Role, opts)
			if err != nil {
				return nil, unsupported(catalog.FeatureSystemMessage)
			}
			result = append(result, goopenai.ChatCompletionMessage{
				Role:    role,
				Content: msg.Text(),
			})

		case ai.RoleUser:
			out := goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Name: msg.Name}
			if len(msg.ContentParts) > 0 {
				parts, err := contentParts(msg.ContentParts)
				if err != nil {
					return nil, fmt.Errorf("message %d: %w", i, err)
				}
				out.MultiContent = parts
			} else {
				out.Content = msg.Content
			}
			result = append(result, out)

		case ai.RoleAssistant:
			out := goopenai.ChatCompletionMessage{
				Role:    goopenai.ChatMessageRoleAssistant,
				Content: msg.Text(),
			}
			for _, call := range msg.ToolCalls {
				out.ToolCalls = append(out.ToolCalls, goopenai.ToolCall{
					ID:   call.ID,
					Type: goopenai.ToolTypeFunction,
					Function: goopenai.FunctionCall{
						Name:      call.Function.Name,
						Arguments: call.Function.Arguments,
					},
				})
			}
			result = append(result, out)

		case ai.RoleTool:
			result = append(result, goopenai.ChatCompletionMessage{
				Role:       goopenai.ChatMessageRoleTool,
				Content:    msg.Text(),
				Name:       msg.Name,
				ToolCallID: msg.ToolCallID,
			})
		}
	}
	return result, nil
}

// instructionRole picks the wire role for a system or developer message.
// When the model accepts both, the message keeps its own role.
func instructionRole(role ai.MessageRole, opts ai.ConvertOptions) (string, error) {
	switch {
	case opts.SystemMessage && opts.DeveloperMessage:
		if role == ai.RoleDeveloper {
			return roleDeveloper, nil
		}
		return goopenai.ChatMessageRoleSystem, nil
	case opts.DeveloperMessage:
		return roleDeveloper, nil
	case opts.SystemMessage:
		return goopenai.ChatMessageRoleSystem, nil
	}
	return "", errs.ErrFeatureNotSupported
}

func contentParts(parts []ai.ContentPart) ([]goopenai.ChatMessagePart, error) {
	out := make([]goopenai.ChatMessagePart, 0, len(parts))
	for _, part := range parts {
		switch part.Type {
		case ai.ContentTypeText:
			out = append(out, goopenai.ChatMessagePart{
				Type: goopenai.ChatMessagePartTypeText,
				Text: part.Text,
			})
		case ai.ContentTypeImage:
			url, err := ImageURL(part.Image)
			if err != nil {
				return nil, err
			}
			out = append(out, goopenai.ChatMessagePart{
				Type: goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{
					URL:    url,
					Detail: goopenai.ImageURLDetail(part.Image.Detail),
				},
			})
		default:
			return nil, fmt.Errorf("unsupported content part type %q", part.Type)
		}
	}
	return out, nil
}

// ImageURL returns the URL form of img, encoding inline data as a data URL.
func ImageURL(img *ai.ImageData) (string, error) {
	switch {
	case img == nil:
		return "", errors.New("image part without image data")
	case img.URI != "":
		return img.URI, nil
	case img.Data != "":
		mime := img.MimeType
		if mime == "" {
			mime = "image/png"
		}
		return "data:" + mime + ";base64," + img.Data, nil
	}
	return "", errors.New("image part has neither URI nor data")
}
