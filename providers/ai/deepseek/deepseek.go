package deepseek

import (
	"context"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/leofalp/astral/providers/ai"
	"github.com/leofalp/astral/providers/ai/openai"
)

const (
	Provider = "deepseek"

	// DefaultBaseURL is used when the configuration leaves BaseURL empty.
	DefaultBaseURL = "https://api.deepseek.com"

	// ConverterName is the registry name of the LLM message converter.
	ConverterName = "ConvertLLMMessages"

	// OutputType is the same go-openai message type the openai package produces.
	OutputType = openai.OutputType
)

// NewClient builds a blocking DeepSeek client.
func NewClient(_ context.Context, cfg ai.ClientConfig) (ai.Client, error) {
	return newClient(ai.ClientModeSync, cfg)
}

// NewAsyncClient builds a DeepSeek client meant for streaming use.
func NewAsyncClient(_ context.Context, cfg ai.ClientConfig) (ai.Client, error) {
	return newClient(ai.ClientModeAsync, cfg)
}

func newClient(mode ai.ClientMode, cfg ai.ClientConfig) (ai.Client, error) {
	c, err := openai.NewCompatibleClient(Provider, mode, DefaultBaseURL, cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LLMConverter is the ai.MessageConverter registered for the llm model type.
var LLMConverter = ai.NewConverter(ConverterName, OutputType, func(messages []ai.Message, opts ai.ConvertOptions) (any, error) {
	return ConvertLLMMessages(messages, opts)
})

// ConvertLLMMessages converts messages for a DeepSeek chat completion.
//
// DeepSeek has no developer role, so developer messages are sent as system
// messages. Reasoning returned by deepseek-reasoner must not be sent back,
// and is dropped from assistant turns.
func ConvertLLMMessages(messages []ai.Message, opts ai.ConvertOptions) ([]goopenai.ChatCompletionMessage, error) {
	opts.DeveloperMessage = false

	cleaned := make([]ai.Message, len(messages))
	for i, msg := range messages {
		msg.Reasoning = ""
		cleaned[i] = msg
	}
	return openai.ConvertMessages(Provider, cleaned, opts)
}
