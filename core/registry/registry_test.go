package registry

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/leofalp/astral/core/catalog"
	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/ai"
	"github.com/leofalp/astral/providers/observability"
	"github.com/leofalp/astral/providers/observability/slogobs"
)

type fakeClient struct {
	provider string
	mode     ai.ClientMode
}

func (c *fakeClient) Provider() string    { return c.provider }
func (c *fakeClient) Mode() ai.ClientMode { return c.mode }

func fakeFactory(provider string, mode ai.ClientMode) ai.ClientFactory {
	return func(context.Context, ai.ClientConfig) (ai.Client, error) {
		return &fakeClient{provider: provider, mode: mode}, nil
	}
}

func fakeConverter(name, outputType string) ai.MessageConverter {
	return ai.NewConverter(name, outputType, func(messages []ai.Message, _ ai.ConvertOptions) (any, error) {
		return messages, nil
	})
}

// tableFor binds every name reg mentions to a fake value.
func tableFor(reg *Registry) *Bindings {
	table := NewBindings()
	for _, provider := range reg.Providers() {
		adapter, _ := reg.Adapter(provider)
		table.Client(adapter.ClientImport, adapter.Clients.Sync, fakeFactory(provider, ai.ClientModeSync))
		table.Client(adapter.ClientImport, adapter.Clients.Async, fakeFactory(provider, ai.ClientModeAsync))
		for _, desc := range adapter.ModelTypes {
			table.Converter(desc.ConverterImport, fakeConverter(desc.MessageConverter, desc.QualifiedType()))
		}
	}
	return table
}

func mustLoad(t *testing.T) (*Registry, *catalog.Catalog) {
	t.Helper()
	reg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault() error = %v", err)
	}
	cat, err := catalog.LoadDefault()
	if err != nil {
		t.Fatalf("catalog.LoadDefault() error = %v", err)
	}
	return reg, cat
}

func TestDefaultRegistryCoversCatalog(t *testing.T) {
	reg, cat := mustLoad(t)

	if err := reg.Validate(cat); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	for _, provider := range cat.Providers() {
		for _, mt := range cat.ModelTypes(provider) {
			desc, err := reg.Converter(provider, mt)
			if err != nil {
				t.Errorf("Converter(%q, %q) error = %v", provider, mt, err)
				continue
			}
			if desc.MessageConverter == "" || desc.MessageConverterType == "" {
				t.Errorf("Converter(%q, %q) = %+v", provider, mt, desc)
			}
		}
	}
}

func TestAdapter(t *testing.T) {
	reg, _ := mustLoad(t)

	want := []string{"anthropic", "azureOpenAI", "deepseek", "gemini", "openai"}
	if got := reg.Providers(); !slices.Equal(got, want) {
		t.Errorf("Providers() = %v, want %v", got, want)
	}

	adapter, err := reg.Adapter("azureOpenAI")
	if err != nil {
		t.Fatal(err)
	}
	if adapter.Clients.Sync != "NewAzureClient" || adapter.Clients.Async != "NewAsyncAzureClient" {
		t.Errorf("Clients = %+v", adapter.Clients)
	}
	if got := adapter.QualifiedClient(ai.ClientModeAsync); got != "github.com/leofalp/astral/providers/ai/openai.NewAsyncAzureClient" {
		t.Errorf("QualifiedClient(async) = %q", got)
	}

	delete(adapter.ModelTypes, catalog.ModelTypeLLM)
	again, _ := reg.Adapter("azureOpenAI")
	if _, ok := again.ModelTypes[catalog.ModelTypeLLM]; !ok {
		t.Error("mutating a returned adapter changed the registry")
	}

	desc, err := reg.Converter("openai", catalog.ModelTypeLLM)
	if err != nil {
		t.Fatal(err)
	}
	if got := desc.QualifiedType(); got != "github.com/sashabaranov/go-openai.ChatCompletionMessage" {
		t.Errorf("QualifiedType() = %q", got)
	}
}

func TestLookupMisses(t *testing.T) {
	reg, _ := mustLoad(t)

	tests := []struct {
		name     string
		call     func() error
		wantKind errs.Kind
	}{
		{"unknown adapter", func() error { _, err := reg.Adapter("mistral"); return err }, errs.KindProvider},
		{"converter of unknown provider", func() error { _, err := reg.Converter("mistral", catalog.ModelTypeLLM); return err }, errs.KindProvider},
		{"unknown model type", func() error { _, err := reg.Converter("openai", "embedding"); return err }, errs.KindModelType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var nf *errs.NotFoundError
			if err := tt.call(); !errors.As(err, &nf) || nf.Kind != tt.wantKind {
				t.Errorf("error = %v, want NotFoundError of kind %q", err, tt.wantKind)
			}
		})
	}
}

func TestBind(t *testing.T) {
	reg, cat := mustLoad(t)

	bound, err := reg.Bind(cat, tableFor(reg))
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if bound.Registry() != reg {
		t.Error("Registry() did not return the source registry")
	}

	factory, err := bound.ClientFactory("gemini", ai.ClientModeAsync)
	if err != nil {
		t.Fatal(err)
	}
	client, err := factory(context.Background(), ai.ClientConfig{})
	if err != nil || client.Provider() != "gemini" || client.Mode() != ai.ClientModeAsync {
		t.Errorf("factory() = %+v, %v", client, err)
	}

	conv, err := bound.MessageConverter("anthropic", catalog.ModelTypeLLM)
	if err != nil {
		t.Fatal(err)
	}
	if conv.Name() != "ConvertLLMMessages" {
		t.Errorf("converter name = %q", conv.Name())
	}

	if _, err := bound.ClientFactory("mistral", ai.ClientModeSync); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("ClientFactory(mistral) error = %v", err)
	}
	if _, err := bound.ClientFactory("openai", "batch"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("ClientFactory(openai, batch) error = %v", err)
	}
	if _, err := bound.MessageConverter("openai", "embedding"); !errors.Is(err, errs.ErrNotFound) {
		t.Errorf("MessageConverter(openai, embedding) error = %v", err)
	}
}

func TestBindReportsUnresolvedNames(t *testing.T) {
	reg, cat := mustLoad(t)

	table := tableFor(reg)
	delete(table.clients, "github.com/leofalp/astral/providers/ai/deepseek.NewAsyncClient")
	delete(table.converters, "github.com/leofalp/astral/providers/ai/gemini.ConvertLLMMessages")
	table.Converter("github.com/leofalp/astral/providers/ai/anthropic", fakeConverter("ConvertLLMMessages", "wrong.Type"))

	_, err := reg.Bind(cat, table)
	var verr *errs.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Bind() error = %v, want ValidationError", err)
	}
	for _, want := range []string{
		`deepseek: async client constructor "github.com/leofalp/astral/providers/ai/deepseek.NewAsyncClient" is not bound`,
		`gemini: message converter "github.com/leofalp/astral/providers/ai/gemini.ConvertLLMMessages" for model type "llm" is not bound`,
		`produces "wrong.Type"`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error does not mention %q:\n%v", want, err)
		}
	}
	if len(verr.Problems) != 3 {
		t.Errorf("got %d problems, want 3: %v", len(verr.Problems), verr.Problems)
	}
}

const smallRegistry = `
providers:
  acme:
    clients: {sync: NewClient, async: NewAsyncClient}
    imports: {clients: example.com/acme}
    model_types:
      llm:
        message_converter: Convert
        message_converter_type: Message
        imports: {converter: example.com/acme, types: example.com/acme}
`

const smallCatalog = `
providers:
  acme:
    models:
      - model_type: llm
        alias: rocket
        alias_mapped_model: rocket-1
        model_names: [rocket-1]
        supported_features: {reasoning_effort: false, developer_message: false, system_message: true, structured_output: false, image_ingestion: false, function_call: false}
        pricing: {prompt_tokens: 0, cached_prompt_tokens: 0, output_tokens: 0}
  zeta:
    models:
      - model_type: llm
        alias: z
        alias_mapped_model: z-1
        model_names: [z-1]
        supported_features: {reasoning_effort: false, developer_message: false, system_message: true, structured_output: false, image_ingestion: false, function_call: false}
        pricing: {prompt_tokens: 0, cached_prompt_tokens: 0, output_tokens: 0}
`

func TestValidateMissingAdapter(t *testing.T) {
	reg, err := Parse([]byte(smallRegistry))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cat, err := catalog.Parse([]byte(smallCatalog))
	if err != nil {
		t.Fatalf("catalog.Parse() error = %v", err)
	}

	err = reg.Validate(cat)
	if !errors.Is(err, errs.ErrValidation) || !strings.Contains(err.Error(), `catalog provider "zeta" has no adapter`) {
		t.Errorf("Validate() error = %v", err)
	}

	// Without a catalog only the names are checked.
	table := NewBindings().
		Client("example.com/acme", "NewClient", fakeFactory("acme", ai.ClientModeSync)).
		Client("example.com/acme", "NewAsyncClient", fakeFactory("acme", ai.ClientModeAsync)).
		Converter("example.com/acme", fakeConverter("Convert", "example.com/acme.Message"))
	if _, err := reg.Bind(nil, table); err != nil {
		t.Errorf("Bind(nil, table) error = %v", err)
	}
	if _, err := reg.Bind(cat, table); err == nil {
		t.Error("Bind(cat, table) error = nil, want missing adapter")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{"empty document", "", []string{"document is empty"}},
		{"no providers", "providers: {}\n", []string{"no providers defined"}},
		{"unknown key", strings.Replace(smallRegistry, "    clients:", "    retries: 3\n    clients:", 1), []string{"field retries not found"}},
		{"missing async constructor", strings.Replace(smallRegistry, ", async: NewAsyncClient", "", 1), []string{"acme.clients.async is required"}},
		{"missing client import", strings.Replace(smallRegistry, "{clients: example.com/acme}", "{}", 1), []string{"acme.imports.clients is required"}},
		{"missing converter fields", strings.Replace(strings.Replace(smallRegistry, "        message_converter: Convert\n", "", 1), "types: example.com/acme", "types: ''", 1),
			[]string{"acme.model_types.llm.message_converter is required", "acme.model_types.llm.imports.types is required"}},
		{"unknown model type", strings.Replace(smallRegistry, "      llm:", "      embedding:", 1), []string{`unsupported model type "embedding"`}},
		{"no model types", strings.SplitN(smallRegistry, "    model_types:", 2)[0], []string{"acme: no model_types defined"}},
		{"second document", smallRegistry + "---\nproviders: {bogus: 1}\n", []string{"only one YAML document is allowed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, errs.ErrValidation) {
				t.Fatalf("Parse() error = %v, want ValidationError", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error %q does not mention %q", err, want)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	if err := os.WriteFile(path, []byte(smallRegistry), 0o600); err != nil {
		t.Fatal(err)
	}
	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if reg.Source() != path {
		t.Errorf("Source() = %q, want %q", reg.Source(), path)
	}
	if _, err := Load(path + ".missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v", err)
	}
}

func TestParseReportsToObserver(t *testing.T) {
	var buf bytes.Buffer
	observer := slogobs.New(slogobs.WithOutput(&buf), slogobs.WithLevel(slogobs.LevelTrace))

	if _, err := LoadDefault(WithObserver(observer)); err != nil {
		t.Fatal(err)
	}
	if got := observer.CounterValue(observability.MetricRegistryProvidersLoaded); got != 5 {
		t.Errorf("%s = %d, want 5", observability.MetricRegistryProvidersLoaded, got)
	}
	if !strings.Contains(buf.String(), "registry loaded") {
		t.Errorf("missing summary log:\n%s", buf.String())
	}
}
