package registry

import (
	"maps"

	"github.com/leofalp/astral/core/catalog"
	"github.com/leofalp/astral/providers/ai"
)

// ClientConstructors names the two client constructors of a provider.
type ClientConstructors struct {
	Sync  string `json:"sync"`
	Async string `json:"async"`
}

// For returns the constructor name for mode.
func (c ClientConstructors) For(mode ai.ClientMode) string {
	if mode == ai.ClientModeAsync {
		return c.Async
	}
	return c.Sync
}

// ConverterDescriptor describes the message converter of one provider and
// model type.
type ConverterDescriptor struct {
	Provider             string            `json:"provider"`
	ModelType            catalog.ModelType `json:"model_type"`
	MessageConverter     string            `json:"message_converter"`
	MessageConverterType string            `json:"message_converter_type"`
	ConverterImport      string            `json:"converter_import"`
	TypesImport          string            `json:"types_import"`
}

// QualifiedConverter is the converter name prefixed with its import path.
func (d ConverterDescriptor) QualifiedConverter() string {
	return qualify(d.ConverterImport, d.MessageConverter)
}

// QualifiedType is the output type name prefixed with its import path.
func (d ConverterDescriptor) QualifiedType() string {
	return qualify(d.TypesImport, d.MessageConverterType)
}

// ProviderAdapter is one registry entry.
type ProviderAdapter struct {
	Provider     string                                    `json:"provider"`
	Clients      ClientConstructors                        `json:"clients"`
	ClientImport string                                    `json:"client_import"`
	ModelTypes   map[catalog.ModelType]ConverterDescriptor `json:"model_types"`
}

// QualifiedClient is the constructor name for mode prefixed with its import path.
func (a ProviderAdapter) QualifiedClient(mode ai.ClientMode) string {
	return qualify(a.ClientImport, a.Clients.For(mode))
}

func (a ProviderAdapter) clone() ProviderAdapter {
	a.ModelTypes = maps.Clone(a.ModelTypes)
	return a
}

func qualify(importPath, name string) string {
	if importPath == "" {
		return name
	}
	return importPath + "." + name
}
