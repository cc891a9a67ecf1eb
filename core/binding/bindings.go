package binding

import (
	"github.com/leofalp/astral/core/registry"
	"github.com/leofalp/astral/providers/ai/anthropic"
	"github.com/leofalp/astral/providers/ai/deepseek"
	"github.com/leofalp/astral/providers/ai/gemini"
	"github.com/leofalp/astral/providers/ai/openai"
)

// Import paths of the built-in provider packages, as written in the
// registry file.
const (
	openaiImport    = "github.com/leofalp/astral/providers/ai/openai"
	anthropicImport = "github.com/leofalp/astral/providers/ai/anthropic"
	deepseekImport  = "github.com/leofalp/astral/providers/ai/deepseek"
	geminiImport    = "github.com/leofalp/astral/providers/ai/gemini"
)

// DefaultBindings returns the binding table of every provider package
// shipped with astral. Callers may add entries before passing it to
// WithBindings.
func DefaultBindings() *registry.Bindings {
	return registry.NewBindings().
		Client(openaiImport, "NewClient", openai.NewClient).
		Client(openaiImport, "NewAsyncClient", openai.NewAsyncClient).
		Client(openaiImport, "NewAzureClient", openai.NewAzureClient).
		Client(openaiImport, "NewAsyncAzureClient", openai.NewAsyncAzureClient).
		Converter(openaiImport, openai.LLMConverter).
		Client(anthropicImport, "NewClient", anthropic.NewClient).
		Client(anthropicImport, "NewAsyncClient", anthropic.NewAsyncClient).
		Converter(anthropicImport, anthropic.LLMConverter).
		Client(deepseekImport, "NewClient", deepseek.NewClient).
		Client(deepseekImport, "NewAsyncClient", deepseek.NewAsyncClient).
		Converter(deepseekImport, deepseek.LLMConverter).
		Client(geminiImport, "NewClient", gemini.NewClient).
		Client(geminiImport, "NewAsyncClient", gemini.NewAsyncClient).
		Converter(geminiImport, gemini.LLMConverter)
}
