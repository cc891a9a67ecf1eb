package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leofalp/astral/core/errs"
)

type catalogFile struct {
	Providers map[string]providerSection `yaml:"providers"`
}

type providerSection struct {
	Models []rawDescriptor `yaml:"models"`
}

// rawDescriptor keeps flags and prices as pointer maps so that missing and
// null entries can be told apart from false and zero.
type rawDescriptor struct {
	ModelType         string              `yaml:"model_type"`
	Alias             string              `yaml:"alias"`
	AliasMappedModel  string              `yaml:"alias_mapped_model"`
	ModelNames        []string            `yaml:"model_names"`
	SupportedFeatures map[string]*bool    `yaml:"supported_features"`
	Pricing           map[string]*float64 `yaml:"pricing"`
}

var pricingFields = []string{"prompt_tokens", "cached_prompt_tokens", "output_tokens"}

// decode parses data strictly: unknown keys and mistyped values are problems.
func decode(data []byte, source string) (catalogFile, error) {
	var file catalogFile

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(&file)
	if err == nil {
		err = trailingDocument(dec)
	}
	if err == nil {
		return file, nil
	}

	verr := &errs.ValidationError{Source: source}
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
	return catalogFile{}, verr
}

var errMultipleDocuments = errors.New("only one YAML document is allowed")

// trailingDocument reports anything the decoder still holds after the
// first document.
func trailingDocument(dec *yaml.Decoder) error {
	var extra yaml.Node
	err := dec.Decode(&extra)
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errMultipleDocuments
	}
}

// build validates file and turns it into a Catalog. Every problem is
// collected before returning.
func build(file catalogFile, source string) (*Catalog, error) {
	verr := &errs.ValidationError{Source: source}
	cat := &Catalog{
		source:  source,
		entries: make(map[string]*providerEntries, len(file.Providers)),
	}

	if len(file.Providers) == 0 {
		verr.Addf("no providers defined")
	}

	for provider := range file.Providers {
		cat.providers = append(cat.providers, provider)
	}
	slices.Sort(cat.providers)

	for _, provider := range cat.providers {
		section := file.Providers[provider]
		if strings.TrimSpace(provider) == "" {
			verr.Addf("provider key must not be empty")
			continue
		}
		if len(section.Models) == 0 {
			verr.Addf("%s: no models defined", provider)
			continue
		}

		entries := &providerEntries{index: make(map[string]int)}
		aliases := make(map[string]int)  // alias -> position
		versions := make(map[string]int) // model name -> position

		for i, raw := range section.Models {
			label := fmt.Sprintf("%s.models[%d]", provider, i)
			if raw.Alias != "" {
				label += " (" + raw.Alias + ")"
			}

			d := ModelDescriptor{
				Provider:         provider,
				ModelType:        ModelType(raw.ModelType),
				Alias:            raw.Alias,
				AliasMappedModel: raw.AliasMappedModel,
				ModelNames:       raw.ModelNames,
			}

			switch {
			case raw.ModelType == "":
				verr.Addf("%s: model_type is required", label)
			case !d.ModelType.Valid():
				verr.Addf("%s: unsupported model_type %q", label, raw.ModelType)
			}

			if strings.TrimSpace(raw.Alias) == "" {
				verr.Addf("%s: alias is required", label)
			} else if prev, dup := aliases[raw.Alias]; dup {
				verr.Addf("%s: alias %q already used by %s.models[%d]", label, raw.Alias, provider, prev)
			} else {
				aliases[raw.Alias] = i
			}

			if len(raw.ModelNames) == 0 {
				verr.Addf("%s: model_names must not be empty", label)
			}
			for _, name := range raw.ModelNames {
				if strings.TrimSpace(name) == "" {
					verr.Addf("%s: model_names contains an empty entry", label)
					continue
				}
				if prev, dup := versions[name]; dup {
					if prev == i {
						verr.Addf("%s: model name %q listed twice", label, name)
					} else {
						verr.Addf("%s: model name %q already used by %s.models[%d]", label, name, provider, prev)
					}
					continue
				}
				versions[name] = i
			}

			if raw.AliasMappedModel == "" {
				verr.Addf("%s: alias_mapped_model is required", label)
			} else if !slices.Contains(raw.ModelNames, raw.AliasMappedModel) {
				verr.Addf("%s: alias_mapped_model %q is not listed in model_names", label, raw.AliasMappedModel)
			}

			d.SupportedFeatures = decodeFeatures(raw.SupportedFeatures, label, verr)
			d.Pricing = decodePricing(raw.Pricing, label, verr)

			entries.models = append(entries.models, d)
		}

		// An alias may not shadow a version string of another descriptor,
		// otherwise the same identifier would resolve to two models.
		for _, alias := range sortedKeys(aliases) {
			owner := aliases[alias]
			if other, ok := versions[alias]; ok && other != owner {
				verr.Addf("%s: alias %q of models[%d] is a model name of models[%d]", provider, alias, owner, other)
			}
		}

		for i, d := range entries.models {
			entries.index[d.Alias] = i
			for _, name := range d.ModelNames {
				if _, taken := entries.index[name]; !taken {
					entries.index[name] = i
				}
			}
		}
		cat.entries[provider] = entries
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return cat, nil
}

func decodeFeatures(raw map[string]*bool, label string, verr *errs.ValidationError) Features {
	var features Features
	for _, feature := range AllFeatures {
		value, ok := raw[string(feature)]
		if !ok || value == nil {
			verr.Addf("%s: supported_features.%s is required", label, feature)
			continue
		}
		features.set(feature, *value)
	}
	for _, key := range sortedKeys(raw) {
		if !slices.Contains(AllFeatures, Feature(key)) {
			verr.Addf("%s: unknown feature %q", label, key)
		}
	}
	return features
}

func decodePricing(raw map[string]*float64, label string, verr *errs.ValidationError) Pricing {
	values := make(map[string]float64, len(pricingFields))
	for _, field := range pricingFields {
		value, ok := raw[field]
		if !ok || value == nil {
			verr.Addf("%s: pricing.%s is required", label, field)
			continue
		}
		if math.IsNaN(*value) || math.IsInf(*value, 0) {
			verr.Addf("%s: pricing.%s must be a finite number", label, field)
			continue
		}
		if *value < 0 {
			verr.Addf("%s: pricing.%s must be >= 0, got %v", label, field, *value)
			continue
		}
		values[field] = *value
	}
	for _, key := range sortedKeys(raw) {
		if !slices.Contains(pricingFields, key) {
			verr.Addf("%s: unknown pricing field %q", label, key)
		}
	}
	return Pricing{
		PromptTokens:       values["prompt_tokens"],
		CachedPromptTokens: values["cached_prompt_tokens"],
		OutputTokens:       values["output_tokens"],
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
