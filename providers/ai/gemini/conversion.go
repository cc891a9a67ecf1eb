package gemini

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/leofalp/astral/core/catalog"
	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/core/parse"
	"github.com/leofalp/astral/providers/ai"
)

const (
	// ConverterName is the registry name of the LLM message converter.
	ConverterName = "ConvertLLMMessages"

	// OutputType is the qualified type name of a converted conversation.
	OutputType = "github.com/leofalp/astral/providers/ai/gemini.Contents"

	roleUser  = "user"
	roleModel = "model"
)

// Contents is a conversation in genai form. System is passed as the
// SystemInstruction of a genai.GenerateContentConfig.
type Contents struct {
	System   *genai.Content
	Contents []*genai.Content
}

// LLMConverter is the ai.MessageConverter registered for the llm model type.
var LLMConverter = ai.NewConverter(ConverterName, OutputType, func(messages []ai.Message, opts ai.ConvertOptions) (any, error) {
	return ConvertLLMMessages(messages, opts)
})

// ConvertLLMMessages converts messages into genai contents.
//
// System and developer messages become parts of the system instruction.
// Tool results are sent as user turns carrying a function response; the
// function name is taken from the matching tool call when the result does
// not name it.
func ConvertLLMMessages(messages []ai.Message, opts ai.ConvertOptions) (Contents, error) {
	if err := ai.ValidateMessages(messages); err != nil {
		return Contents{}, err
	}

	unsupported := func(feature catalog.Feature) error {
		return &errs.FeatureNotSupportedError{Provider: Provider, Model: opts.Model, Feature: string(feature)}
	}

	var out Contents
	callNames := make(map[string]string)

	for i, msg := range messages {
		if msg.HasImages() && !opts.ImageIngestion {
			return Contents{}, unsupported(catalog.FeatureImageIngestion)
		}
		if (len(msg.ToolCalls) > 0 || msg.Role == ai.RoleTool) && !opts.FunctionCall {
			return Contents{}, unsupported(catalog.FeatureFunctionCall)
		}

		switch msg.Role {
		case ai.RoleSystem, ai.RoleDeveloper:
			if !opts.SystemMessage {
				return Contents{}, unsupported(catalog.FeatureSystemMessage)
			}
			if out.System == nil {
				out.System = &genai.Content{Role: roleUser}
			}
			out.System.Parts = append(out.System.Parts, &genai.Part{Text: msg.Text()})

		case ai.RoleUser:
			parts, err := contentParts(msg)
			if err != nil {
				return Contents{}, fmt.Errorf("message %d: %w", i, err)
			}
			out.Contents = append(out.Contents, &genai.Content{Role: roleUser, Parts: parts})

		case ai.RoleAssistant:
			c := &genai.Content{Role: roleModel}
			if len(msg.ContentParts) > 0 || msg.Content != "" {
				parts, err := contentParts(msg)
				if err != nil {
					return Contents{}, fmt.Errorf("message %d: %w", i, err)
				}
				c.Parts = parts
			}
			for _, call := range msg.ToolCalls {
				args, err := parse.ArgumentsMap(call.Function.Arguments)
				if err != nil {
					return Contents{}, fmt.Errorf("message %d: tool call %q: %w", i, call.ID, err)
				}
				callNames[call.ID] = call.Function.Name
				c.Parts = append(c.Parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   call.ID,
					Name: call.Function.Name,
					Args: args,
				}})
			}
			if len(c.Parts) > 0 {
				out.Contents = append(out.Contents, c)
			}

		case ai.RoleTool:
			name := msg.Name
			if name == "" {
				name = callNames[msg.ToolCallID]
			}
			if name == "" {
				return Contents{}, fmt.Errorf("message %d: tool result %q names no function", i, msg.ToolCallID)
			}
			out.Contents = append(out.Contents, &genai.Content{
				Role: roleUser,
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
					ID:       msg.ToolCallID,
					Name:     name,
					Response: toolResponse(msg.Text()),
				}}},
			})
		}
	}
	return out, nil
}

// toolResponse wraps a tool result in the object genai expects. A result
// that already is a JSON object is passed through.
func toolResponse(result string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(result), &obj); err == nil && obj != nil {
		return obj
	}
	return map[string]any{"output": result}
}

func contentParts(msg ai.Message) ([]*genai.Part, error) {
	if len(msg.ContentParts) == 0 {
		return []*genai.Part{{Text: msg.Content}}, nil
	}

	parts := make([]*genai.Part, 0, len(msg.ContentParts))
	for _, p := range msg.ContentParts {
		switch p.Type {
		case ai.ContentTypeText:
			parts = append(parts, &genai.Part{Text: p.Text})
		case ai.ContentTypeImage:
			part, err := imagePart(p.Image)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
		default:
			return nil, fmt.Errorf("unsupported content part type %q", p.Type)
		}
	}
	return parts, nil
}

func imagePart(img *ai.ImageData) (*genai.Part, error) {
	switch {
	case img == nil:
		return nil, errors.New("image part without image data")
	case img.URI != "":
		return &genai.Part{FileData: &genai.FileData{FileURI: img.URI, MIMEType: img.MimeType}}, nil
	case img.Data != "":
		data, err := base64.StdEncoding.DecodeString(img.Data)
		if err != nil {
			return nil, fmt.Errorf("decode inline image: %w", err)
		}
		mime := img.MimeType
		if mime == "" {
			mime = "image/png"
		}
		return &genai.Part{InlineData: &genai.Blob{Data: data, MIMEType: mime}}, nil
	}
	return nil, errors.New("image part has neither URI nor data")
}
