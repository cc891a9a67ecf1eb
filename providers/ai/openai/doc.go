// Package openai binds OpenAI and Azure OpenAI into the adapter registry.
//
// It provides the client constructors named in the registry (NewClient,
// NewAsyncClient, NewAzureClient, NewAsyncAzureClient), all built on
// github.com/sashabaranov/go-openai, and [ConvertLLMMessages], which turns an
// ai.Message conversation into []goopenai.ChatCompletionMessage while
// honouring the model's instruction-role and image capabilities.
//
// DeepSeek speaks the same wire format and reuses [NewCompatibleClient] and
// [ConvertMessages] from its own package.
package openai
