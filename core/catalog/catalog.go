package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/observability"
)

//go:embed data/models.yaml
var defaultCatalog []byte

// DefaultSource is the source name reported for the embedded catalog.
const DefaultSource = "embedded:models.yaml"

// Catalog is the validated, read-only model catalog.
type Catalog struct {
	source    string
	providers []string // sorted
	entries   map[string]*providerEntries
}

type providerEntries struct {
	models []ModelDescriptor // file order
	index  map[string]int    // alias and every model name -> position in models
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

// Parse decodes and validates a catalog document.
func Parse(data []byte, opts ...Option) (*Catalog, error) {
	o := &options{source: "catalog"}
	for _, opt := range opts {
		opt(o)
	}

	ctx := context.Background()
	var span observability.Span
	if o.observer != nil {
		ctx, span = o.observer.StartSpan(ctx, observability.SpanCatalogLoad,
			observability.String(observability.AttrSource, o.source))
		defer span.End()
	}

	file, err := decode(data, o.source)
	if err == nil {
		var cat *Catalog
		cat, err = build(file, o.source)
		if err == nil {
			cat.report(ctx, o.observer, span)
			return cat, nil
		}
	}

	if o.observer != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, "catalog validation failed")
		o.observer.Error(ctx, "catalog rejected",
			observability.String(observability.AttrSource, o.source),
			observability.Error(err),
		)
	}
	return nil, err
}

func (c *Catalog) report(ctx context.Context, observer observability.Provider, span observability.Span) {
	if observer == nil {
		return
	}
	total := 0
	for _, provider := range c.providers {
		n := len(c.entries[provider].models)
		total += n
		observer.Debug(ctx, "catalog provider loaded",
			observability.String(observability.AttrProvider, provider),
			observability.Int(observability.AttrModelsCount, n),
		)
	}
	observer.Counter(observability.MetricCatalogModelsLoaded).Add(ctx, int64(total),
		observability.String(observability.AttrSource, c.source))
	observer.Info(ctx, "catalog loaded",
		observability.String(observability.AttrSource, c.source),
		observability.Int(observability.AttrProvidersCount, len(c.providers)),
		observability.Int(observability.AttrModelsCount, total),
	)
	span.SetAttributes(observability.Int(observability.AttrModelsCount, total))
	span.SetStatus(observability.StatusOK, "")
}

// Load reads and parses the catalog file at path.
func Load(path string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data, append([]Option{WithSource(path)}, opts...)...)
}

// LoadDefault parses the catalog embedded in the binary.
func LoadDefault(opts ...Option) (*Catalog, error) {
	return Parse(defaultCatalog, append([]Option{WithSource(DefaultSource)}, opts...)...)
}

// Source names the document the catalog was loaded from.
func (c *Catalog) Source() string {
	return c.source
}

// Providers returns the provider keys in sorted order.
func (c *Catalog) Providers() []string {
	return slices.Clone(c.providers)
}

// Resolve returns the descriptor whose alias or one of whose model names
// equals identifier.
func (c *Catalog) Resolve(provider, identifier string) (ModelDescriptor, error) {
	entries, ok := c.entries[provider]
	if !ok {
		return ModelDescriptor{}, errs.NotFound(errs.KindProvider, "", provider)
	}
	i, ok := entries.index[identifier]
	if !ok {
		return ModelDescriptor{}, errs.NotFound(errs.KindModel, provider, identifier)
	}
	return entries.models[i].clone(), nil
}

// Canonical returns the version string identifier resolves to.
func (c *Catalog) Canonical(provider, identifier string) (string, error) {
	d, err := c.Resolve(provider, identifier)
	if err != nil {
		return "", err
	}
	return d.AliasMappedModel, nil
}

// Has reports whether identifier resolves under provider.
func (c *Catalog) Has(provider, identifier string) bool {
	entries, ok := c.entries[provider]
	if !ok {
		return false
	}
	_, ok = entries.index[identifier]
	return ok
}

// Models returns the descriptors of provider in file order.
func (c *Catalog) Models(provider string) ([]ModelDescriptor, error) {
	entries, ok := c.entries[provider]
	if !ok {
		return nil, errs.NotFound(errs.KindProvider, "", provider)
	}
	out := make([]ModelDescriptor, len(entries.models))
	for i, d := range entries.models {
		out[i] = d.clone()
	}
	return out, nil
}

// All returns every descriptor, grouped by provider in sorted provider order.
func (c *Catalog) All() []ModelDescriptor {
	var out []ModelDescriptor
	for _, provider := range c.providers {
		for _, d := range c.entries[provider].models {
			out = append(out, d.clone())
		}
	}
	return out
}

// ModelTypes returns the distinct model types used by provider's entries.
func (c *Catalog) ModelTypes(provider string) []ModelType {
	entries, ok := c.entries[provider]
	if !ok {
		return nil
	}
	var types []ModelType
	for _, d := range entries.models {
		if !slices.Contains(types, d.ModelType) {
			types = append(types, d.ModelType)
		}
	}
	return types
}

// ProvidersForModel lists, in sorted order, the providers under which
// identifier resolves.
func (c *Catalog) ProvidersForModel(identifier string) []string {
	var out []string
	for _, provider := range c.providers {
		if _, ok := c.entries[provider].index[identifier]; ok {
			out = append(out, provider)
		}
	}
	return out
}

// ProviderForModel returns the only provider serving identifier. It fails
// with errs.ErrAmbiguousModel when several providers list it.
func (c *Catalog) ProviderForModel(identifier string) (string, error) {
	providers := c.ProvidersForModel(identifier)
	switch len(providers) {
	case 0:
		return "", errs.NotFound(errs.KindModel, "", identifier)
	case 1:
		return providers[0], nil
	default:
		return "", fmt.Errorf("%w: %q is listed by %v", errs.ErrAmbiguousModel, identifier, providers)
	}
}
