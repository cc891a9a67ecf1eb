package catalog

import (
	"slices"

	"github.com/leofalp/astral/core/cost"
)

// ModelType groups models that share a request shape. Only ModelTypeLLM exists today.
type ModelType string

const ModelTypeLLM ModelType = "llm"

// KnownModelTypes lists every model type the catalog accepts.
var KnownModelTypes = []ModelType{ModelTypeLLM}

// Valid reports whether t is a known model type.
func (t ModelType) Valid() bool {
	return slices.Contains(KnownModelTypes, t)
}

// Feature names one capability flag of a model.
type Feature string

const (
	FeatureReasoningEffort  Feature = "reasoning_effort"
	FeatureDeveloperMessage Feature = "developer_message"
	FeatureSystemMessage    Feature = "system_message"
	FeatureStructuredOutput Feature = "structured_output"
	FeatureImageIngestion   Feature = "image_ingestion"
	FeatureFunctionCall     Feature = "function_call"
)

// AllFeatures lists every flag a descriptor must declare, in file order.
var AllFeatures = []Feature{
	FeatureReasoningEffort,
	FeatureDeveloperMessage,
	FeatureSystemMessage,
	FeatureStructuredOutput,
	FeatureImageIngestion,
	FeatureFunctionCall,
}

// Features holds the capability flags of a model.
type Features struct {
	ReasoningEffort  bool `json:"reasoning_effort" yaml:"reasoning_effort"`
	DeveloperMessage bool `json:"developer_message" yaml:"developer_message"`
	SystemMessage    bool `json:"system_message" yaml:"system_message"`
	StructuredOutput bool `json:"structured_output" yaml:"structured_output"`
	ImageIngestion   bool `json:"image_ingestion" yaml:"image_ingestion"`
	FunctionCall     bool `json:"function_call" yaml:"function_call"`
}

// Supports reports the flag for f. Unknown features are unsupported.
func (f Features) Supports(feature Feature) bool {
	switch feature {
	case FeatureReasoningEffort:
		return f.ReasoningEffort
	case FeatureDeveloperMessage:
		return f.DeveloperMessage
	case FeatureSystemMessage:
		return f.SystemMessage
	case FeatureStructuredOutput:
		return f.StructuredOutput
	case FeatureImageIngestion:
		return f.ImageIngestion
	case FeatureFunctionCall:
		return f.FunctionCall
	}
	return false
}

func (f *Features) set(feature Feature, value bool) {
	switch feature {
	case FeatureReasoningEffort:
		f.ReasoningEffort = value
	case FeatureDeveloperMessage:
		f.DeveloperMessage = value
	case FeatureSystemMessage:
		f.SystemMessage = value
	case FeatureStructuredOutput:
		f.StructuredOutput = value
	case FeatureImageIngestion:
		f.ImageIngestion = value
	case FeatureFunctionCall:
		f.FunctionCall = value
	}
}

// Pricing is expressed in USD per one million tokens. Zero means unknown or free tier.
type Pricing struct {
	PromptTokens       float64 `json:"prompt_tokens" yaml:"prompt_tokens"`
	CachedPromptTokens float64 `json:"cached_prompt_tokens" yaml:"cached_prompt_tokens"`
	OutputTokens       float64 `json:"output_tokens" yaml:"output_tokens"`
}

// ModelCost converts p for use with the cost package.
func (p Pricing) ModelCost() cost.ModelCost {
	return cost.ModelCost{
		InputCostPerMillion:       p.PromptTokens,
		CachedInputCostPerMillion: p.CachedPromptTokens,
		OutputCostPerMillion:      p.OutputTokens,
	}
}

// ModelDescriptor is one catalog entry.
type ModelDescriptor struct {
	Provider          string    `json:"provider"`
	ModelType         ModelType `json:"model_type"`
	Alias             string    `json:"alias"`
	AliasMappedModel  string    `json:"alias_mapped_model"`
	ModelNames        []string  `json:"model_names"`
	SupportedFeatures Features  `json:"supported_features"`
	Pricing           Pricing   `json:"pricing"`
}

// Supports reports whether the model declares feature.
func (d ModelDescriptor) Supports(feature Feature) bool {
	return d.SupportedFeatures.Supports(feature)
}

// Accepts reports whether identifier is the alias or one of the model names.
func (d ModelDescriptor) Accepts(identifier string) bool {
	return identifier == d.Alias || slices.Contains(d.ModelNames, identifier)
}

// Cost returns the pricing of d as a cost.ModelCost.
func (d ModelDescriptor) Cost() cost.ModelCost {
	return d.Pricing.ModelCost()
}

func (d ModelDescriptor) clone() ModelDescriptor {
	d.ModelNames = slices.Clone(d.ModelNames)
	return d
}
