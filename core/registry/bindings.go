package registry

import (
	"maps"
	"slices"

	"github.com/leofalp/astral/core/catalog"
	"github.com/leofalp/astral/core/errs"
	"github.com/leofalp/astral/providers/ai"
)

// Bindings maps the qualified names used in a registry file to the Go
// values they stand for. Names are qualified with their import path, so two
// providers may both export a "NewClient".
type Bindings struct {
	clients    map[string]ai.ClientFactory
	converters map[string]ai.MessageConverter
}

// NewBindings returns an empty table.
func NewBindings() *Bindings {
	return &Bindings{
		clients:    make(map[string]ai.ClientFactory),
		converters: make(map[string]ai.MessageConverter),
	}
}

// Client registers factory under importPath.name. Registering the same name
// twice keeps the last factory.
func (b *Bindings) Client(importPath, name string, factory ai.ClientFactory) *Bindings {
	b.clients[qualify(importPath, name)] = factory
	return b
}

// Converter registers conv under importPath.conv.Name().
func (b *Bindings) Converter(importPath string, conv ai.MessageConverter) *Bindings {
	b.converters[qualify(importPath, conv.Name())] = conv
	return b
}

// Bound is a registry whose names have all been resolved. It is read-only
// and safe for concurrent use.
type Bound struct {
	registry   *Registry
	clients    map[string]map[ai.ClientMode]ai.ClientFactory
	converters map[string]map[catalog.ModelType]ai.MessageConverter
}

// Bind resolves every constructor and converter name of r in table and,
// when cat is not nil, cross-checks r against the catalog. All problems are
// returned together in one *errs.ValidationError.
func (r *Registry) Bind(cat *catalog.Catalog, table *Bindings) (*Bound, error) {
	source := r.source
	if cat != nil {
		source += " against " + cat.Source()
	}
	verr := &errs.ValidationError{Source: source}
	if cat != nil {
		r.crossCheck(cat, verr)
	}

	bound := &Bound{
		registry:   r,
		clients:    make(map[string]map[ai.ClientMode]ai.ClientFactory, len(r.providers)),
		converters: make(map[string]map[catalog.ModelType]ai.MessageConverter, len(r.providers)),
	}

	for _, provider := range r.providers {
		adapter := r.adapters[provider]

		factories := make(map[ai.ClientMode]ai.ClientFactory, 2)
		for _, mode := range []ai.ClientMode{ai.ClientModeSync, ai.ClientModeAsync} {
			name := adapter.QualifiedClient(mode)
			factory, ok := table.clients[name]
			if !ok || factory == nil {
				verr.Addf("%s: %s client constructor %q is not bound", provider, mode, name)
				continue
			}
			factories[mode] = factory
		}
		bound.clients[provider] = factories

		converters := make(map[catalog.ModelType]ai.MessageConverter, len(adapter.ModelTypes))
		for _, mt := range slices.Sorted(maps.Keys(adapter.ModelTypes)) {
			desc := adapter.ModelTypes[mt]
			name := desc.QualifiedConverter()
			conv, ok := table.converters[name]
			if !ok {
				verr.Addf("%s: message converter %q for model type %q is not bound", provider, name, mt)
				continue
			}
			if got, want := conv.OutputType(), desc.QualifiedType(); got != want {
				verr.Addf("%s: message converter %q produces %q, registry declares %q", provider, name, got, want)
				continue
			}
			converters[mt] = conv
		}
		bound.converters[provider] = converters
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return bound, nil
}

// Registry returns the registry b was bound from.
func (b *Bound) Registry() *Registry {
	return b.registry
}

// ClientFactory returns the constructor of provider for mode.
func (b *Bound) ClientFactory(provider string, mode ai.ClientMode) (ai.ClientFactory, error) {
	factories, ok := b.clients[provider]
	if !ok {
		return nil, errs.NotFound(errs.KindProvider, "", provider)
	}
	factory, ok := factories[mode]
	if !ok {
		return nil, errs.NotFound(errs.KindClientFactory, provider, string(mode))
	}
	return factory, nil
}

// MessageConverter returns the converter of provider for modelType.
func (b *Bound) MessageConverter(provider string, modelType catalog.ModelType) (ai.MessageConverter, error) {
	converters, ok := b.converters[provider]
	if !ok {
		return nil, errs.NotFound(errs.KindProvider, "", provider)
	}
	conv, ok := converters[modelType]
	if !ok {
		return nil, errs.NotFound(errs.KindConverter, provider, string(modelType))
	}
	return conv, nil
}
