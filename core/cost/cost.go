package cost

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is the unit every catalog price is expressed in.
const Currency = "USD"

var perMillion = decimal.NewFromInt(1_000_000)

// ModelCost holds per-token pricing for a model, in USD per one million
// tokens. A zero rate means the price is unknown or the tier is free.
//
// Example:
//
//	cost := ModelCost{
//	    InputCostPerMillion:       2.50,
//	    CachedInputCostPerMillion: 1.25,
//	    OutputCostPerMillion:      10.00,
//	}
type ModelCost struct {
	// InputCostPerMillion is the cost in USD per 1 million uncached prompt tokens
	InputCostPerMillion float64 `json:"input_cost_per_million"`

	// CachedInputCostPerMillion is the cost in USD per 1 million prompt tokens
	// served from the provider's prompt cache
	CachedInputCostPerMillion float64 `json:"cached_input_cost_per_million"`

	// OutputCostPerMillion is the cost in USD per 1 million output tokens
	OutputCostPerMillion float64 `json:"output_cost_per_million"`
}

// Breakdown is the itemised cost of one request.
type Breakdown struct {
	Prompt   decimal.Decimal `json:"prompt"`
	Cached   decimal.Decimal `json:"cached"`
	Output   decimal.Decimal `json:"output"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`

	// Unpriced lists the components that consumed tokens at a zero rate,
	// so callers can tell "free" from "not billed because unknown".
	Unpriced []string `json:"unpriced,omitempty"`
}

// String formats the total with six decimal places.
func (b Breakdown) String() string {
	return b.Total.StringFixed(6) + " " + b.Currency
}

func tokenCost(tokens int, ratePerMillion float64) decimal.Decimal {
	if tokens <= 0 || ratePerMillion == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(tokens)).
		Mul(decimal.NewFromFloat(ratePerMillion)).
		Div(perMillion)
}

// Calculate prices a request. cachedTokens is the part of promptTokens that
// was served from cache; it is billed at the cached rate and the remainder
// at the input rate. cachedTokens larger than promptTokens is clamped.
func (mc ModelCost) Calculate(promptTokens, cachedTokens, outputTokens int) Breakdown {
	if cachedTokens > promptTokens {
		cachedTokens = promptTokens
	}
	uncached := promptTokens - cachedTokens

	b := Breakdown{
		Prompt:   tokenCost(uncached, mc.InputCostPerMillion),
		Cached:   tokenCost(cachedTokens, mc.CachedInputCostPerMillion),
		Output:   tokenCost(outputTokens, mc.OutputCostPerMillion),
		Currency: Currency,
	}
	b.Total = b.Prompt.Add(b.Cached).Add(b.Output)

	if uncached > 0 && mc.InputCostPerMillion == 0 {
		b.Unpriced = append(b.Unpriced, "prompt")
	}
	if cachedTokens > 0 && mc.CachedInputCostPerMillion == 0 {
		b.Unpriced = append(b.Unpriced, "cached")
	}
	if outputTokens > 0 && mc.OutputCostPerMillion == 0 {
		b.Unpriced = append(b.Unpriced, "output")
	}
	return b
}

// CalculateInputCost calculates the cost for the given number of uncached prompt tokens.
func (mc ModelCost) CalculateInputCost(tokens int) float64 {
	return tokenCost(tokens, mc.InputCostPerMillion).InexactFloat64()
}

// CalculateCachedCost calculates the cost for the given number of cached prompt tokens.
func (mc ModelCost) CalculateCachedCost(tokens int) float64 {
	return tokenCost(tokens, mc.CachedInputCostPerMillion).InexactFloat64()
}

// CalculateOutputCost calculates the cost for the given number of output tokens.
func (mc ModelCost) CalculateOutputCost(tokens int) float64 {
	return tokenCost(tokens, mc.OutputCostPerMillion).InexactFloat64()
}

// IsFree reports whether every rate is zero.
func (mc ModelCost) IsFree() bool {
	return mc.InputCostPerMillion == 0 && mc.CachedInputCostPerMillion == 0 && mc.OutputCostPerMillion == 0
}

// String returns a formatted string representation of the model costs.
func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.6f/M, Cached: $%.6f/M, Output: $%.6f/M",
		mc.InputCostPerMillion, mc.CachedInputCostPerMillion, mc.OutputCostPerMillion)
}
