package binding

import (
	"fmt"
	"time"

	"github.com/leofalp/astral/core/catalog"
	"github.com/leofalp/astral/core/cost"
	"github.com/leofalp/astral/core/registry"
	"github.com/leofalp/astral/providers/ai"
)

// Binding is everything known about one provider and model pair.
type Binding struct {
	Model     catalog.ModelDescriptor
	Adapter   registry.ProviderAdapter
	Converter registry.ConverterDescriptor

	// MessageConverter is the bound implementation of Converter.
	MessageConverter ai.MessageConverter
}

// ConvertOptions derives the converter options from the catalog entry.
func (b Binding) ConvertOptions() ai.ConvertOptions {
	f := b.Model.SupportedFeatures
	return ai.ConvertOptions{
		Model:            b.Model.AliasMappedModel,
		SystemMessage:    f.SystemMessage,
		DeveloperMessage: f.DeveloperMessage,
		ImageIngestion:   f.ImageIngestion,
		FunctionCall:     f.FunctionCall,
	}
}

// ReasoningEffort is how much thinking a reasoning model should spend.
type ReasoningEffort string

const (
	ReasoningEffortLow    ReasoningEffort = "low"
	ReasoningEffortMedium ReasoningEffort = "medium"
	ReasoningEffortHigh   ReasoningEffort = "high"
)

// Valid reports whether e is one of the known levels.
func (e ReasoningEffort) Valid() bool {
	switch e {
	case ReasoningEffortLow, ReasoningEffortMedium, ReasoningEffortHigh:
		return true
	}
	return false
}

// ParseReasoningEffort returns the level named by s.
func ParseReasoningEffort(s string) (ReasoningEffort, error) {
	e := ReasoningEffort(s)
	if !e.Valid() {
		return "", fmt.Errorf("invalid reasoning effort %q: want low, medium or high", s)
	}
	return e, nil
}

// PrepareOptions lists the request features beyond plain messages.
type PrepareOptions struct {
	ReasoningEffort  ReasoningEffort // empty leaves the provider default
	StructuredOutput bool
	Tools            bool
}

// PreparedRequest is a conversation ready to hand to a provider client.
type PreparedRequest struct {
	ID         string            `json:"id"`
	Provider   string            `json:"provider"`
	Alias      string            `json:"alias"`
	Model      string            `json:"model"` // canonical version sent on the wire
	ModelType  catalog.ModelType `json:"model_type"`
	OutputType string            `json:"output_type"`

	// Messages holds the converted conversation; its dynamic type is named by OutputType.
	Messages any `json:"messages"`

	ReasoningEffort  ReasoningEffort  `json:"reasoning_effort,omitempty"`
	StructuredOutput bool             `json:"structured_output,omitempty"`
	Features         catalog.Features `json:"features"`
	Cost             cost.ModelCost   `json:"cost"`
	CreatedAt        time.Time        `json:"created_at"`
}
