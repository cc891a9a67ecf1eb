package registry

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leofalp/astral/core/catalog"
	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/observability"
)

//go:embed data/providers.yaml
var defaultRegistry []byte

// DefaultSource is the source name reported for the embedded registry.
const DefaultSource = "embedded:providers.yaml"

// Registry is the validated, read-only adapter registry.
type Registry struct {
	source    string
	providers []string // sorted
	adapters  map[string]ProviderAdapter
}

type registryFile struct {
	Providers map[string]rawAdapter `yaml:"providers"`
}

type rawAdapter struct {
	Clients struct {
		Sync  string `yaml:"sync"`
		Async string `yaml:"async"`
	} `yaml:"clients"`
	Imports struct {
		Clients string `yaml:"clients"`
	} `yaml:"imports"`
	ModelTypes map[string]rawConverter `yaml:"model_types"`
}

type rawConverter struct {
	MessageConverter     string `yaml:"message_converter"`
	MessageConverterType string `yaml:"message_converter_type"`
	Imports              struct {
		Converter string `yaml:"converter"`
		Types     string `yaml:"types"`
	} `yaml:"imports"`
}

// Option configures Parse, Load and LoadDefault.
type Option func(*options)

type options struct {
	observer observability.Provider
	source   string
}

// WithObserver reports loading through observer.
func WithObserver(observer observability.Provider) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithSource overrides the name used for the document in errors and logs.
func WithSource(source string) Option {
	return func(o *options) {
		o.source = source
	}
}

// Parse decodes and validates a registry document.
func Parse(data []byte, opts ...Option) (*Registry, error) {
	o := &options{source: "registry"}
	for _, opt := range opts {
		opt(o)
	}

	ctx := context.Background()
	var span observability.Span
	if o.observer != nil {
		ctx, span = o.observer.StartSpan(ctx, observability.SpanRegistryLoad,
			observability.String(observability.AttrSource, o.source))
		defer span.End()
	}

	reg, err := parse(data, o.source)
	if err != nil {
		if o.observer != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, "registry validation failed")
			o.observer.Error(ctx, "registry rejected",
				observability.String(observability.AttrSource, o.source),
				observability.Error(err),
			)
		}
		return nil, err
	}

	if o.observer != nil {
		for _, provider := range reg.providers {
			o.observer.Debug(ctx, "registry provider loaded",
				observability.String(observability.AttrProvider, provider),
				observability.String(observability.AttrClientImport, reg.adapters[provider].ClientImport),
			)
		}
		o.observer.Counter(observability.MetricRegistryProvidersLoaded).Add(ctx, int64(len(reg.providers)),
			observability.String(observability.AttrSource, o.source))
		o.observer.Info(ctx, "registry loaded",
			observability.String(observability.AttrSource, o.source),
			observability.Int(observability.AttrProvidersCount, len(reg.providers)),
		)
		span.SetStatus(observability.StatusOK, "")
	}
	return reg, nil
}

var errMultipleDocuments = errors.New("only one YAML document is allowed")

func parse(data []byte, source string) (*Registry, error) {
	verr := &errs.ValidationError{Source: source}

	var file registryFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(&file)
	if err == nil {
		var extra yaml.Node
		if extraErr := dec.Decode(&extra); extraErr == nil {
			err = errMultipleDocuments
		} else if !errors.Is(extraErr, io.EOF) {
			err = extraErr
		}
	}
	if err != nil {
		var typeErr *yaml.TypeError
		switch {
		case errors.Is(err, io.EOF):
			verr.Addf("document is empty")
		case errors.As(err, &typeErr):
			for _, msg := range typeErr.Errors {
				verr.Addf("%s", msg)
			}
		case errors.Is(err, errMultipleDocuments):
			verr.Addf("%v", err)
		default:
			verr.Addf("malformed YAML: %v", err)
		}
		return nil, verr
	}

	reg := &Registry{
		source:   source,
		adapters: make(map[string]ProviderAdapter, len(file.Providers)),
	}
	if len(file.Providers) == 0 {
		verr.Addf("no providers defined")
	}
	for provider := range file.Providers {
		reg.providers = append(reg.providers, provider)
	}
	slices.Sort(reg.providers)

	for _, provider := range reg.providers {
		raw := file.Providers[provider]
		if strings.TrimSpace(provider) == "" {
			verr.Addf("provider key must not be empty")
			continue
		}

		adapter := ProviderAdapter{
			Provider:     provider,
			Clients:      ClientConstructors{Sync: raw.Clients.Sync, Async: raw.Clients.Async},
			ClientImport: raw.Imports.Clients,
			ModelTypes:   make(map[catalog.ModelType]ConverterDescriptor, len(raw.ModelTypes)),
		}
		required(verr, provider+".clients.sync", raw.Clients.Sync)
		required(verr, provider+".clients.async", raw.Clients.Async)
		required(verr, provider+".imports.clients", raw.Imports.Clients)

		if len(raw.ModelTypes) == 0 {
			verr.Addf("%s: no model_types defined", provider)
		}
		modelTypes := make([]string, 0, len(raw.ModelTypes))
		for mt := range raw.ModelTypes {
			modelTypes = append(modelTypes, mt)
		}
		slices.Sort(modelTypes)

		for _, mt := range modelTypes {
			conv := raw.ModelTypes[mt]
			label := provider + ".model_types." + mt
			if !catalog.ModelType(mt).Valid() {
				verr.Addf("%s: unsupported model type %q", label, mt)
			}
			required(verr, label+".message_converter", conv.MessageConverter)
			required(verr, label+".message_converter_type", conv.MessageConverterType)
			required(verr, label+".imports.converter", conv.Imports.Converter)
			required(verr, label+".imports.types", conv.Imports.Types)

			adapter.ModelTypes[catalog.ModelType(mt)] = ConverterDescriptor{
				Provider:             provider,
				ModelType:            catalog.ModelType(mt),
				MessageConverter:     conv.MessageConverter,
				MessageConverterType: conv.MessageConverterType,
				ConverterImport:      conv.Imports.Converter,
				TypesImport:          conv.Imports.Types,
			}
		}
		reg.adapters[provider] = adapter
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return reg, nil
}

func required(verr *errs.ValidationError, field, value string) {
	if strings.TrimSpace(value) == "" {
		verr.Addf("%s is required", field)
	}
}

// Load reads and parses the registry file at path.
func Load(path string, opts ...Option) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	return Parse(data, append([]Option{WithSource(path)}, opts...)...)
}

// LoadDefault parses the registry embedded in the binary.
func LoadDefault(opts ...Option) (*Registry, error) {
	return Parse(defaultRegistry, append([]Option{WithSource(DefaultSource)}, opts...)...)
}

// Source names the document the registry was loaded from.
func (r *Registry) Source() string {
	return r.source
}

// Providers returns the provider keys in sorted order.
func (r *Registry) Providers() []string {
	return slices.Clone(r.providers)
}

// Adapter returns the registry entry of provider.
func (r *Registry) Adapter(provider string) (ProviderAdapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return ProviderAdapter{}, errs.NotFound(errs.KindProvider, "", provider)
	}
	return adapter.clone(), nil
}

// Converter returns the converter descriptor of provider for modelType.
func (r *Registry) Converter(provider string, modelType catalog.ModelType) (ConverterDescriptor, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return ConverterDescriptor{}, errs.NotFound(errs.KindProvider, "", provider)
	}
	desc, ok := adapter.ModelTypes[modelType]
	if !ok {
		return ConverterDescriptor{}, errs.NotFound(errs.KindModelType, provider, string(modelType))
	}
	return desc, nil
}

// Validate checks that every provider of cat has an adapter and that every
// model type its entries use has a converter.
func (r *Registry) Validate(cat *catalog.Catalog) error {
	verr := &errs.ValidationError{Source: r.source + " against " + cat.Source()}
	r.crossCheck(cat, verr)
	return verr.Err()
}

func (r *Registry) crossCheck(cat *catalog.Catalog, verr *errs.ValidationError) {
	for _, provider := range cat.Providers() {
		adapter, ok := r.adapters[provider]
		if !ok {
			verr.Addf("catalog provider %q has no adapter", provider)
			continue
		}
		for _, mt := range cat.ModelTypes(provider) {
			if _, ok := adapter.ModelTypes[mt]; !ok {
				verr.Addf("%s: catalog uses model type %q but no converter is registered", provider, mt)
			}
		}
	}
}
