// Package llm resolves the active text-generation provider and talks to it
// over the OpenAI-compatible chat-completions protocol.
package llm

import (
	"time"

	"github.com/findosh/slideomni/internal/models"
	"github.com/shopspring/decimal"
)

// ClientConfig holds HTTP client settings shared by every provider
type ClientConfig struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration // multiplied by the attempt number
	MaxTokens    int
	Temperature  float64
}

// DefaultClientConfig returns production defaults
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:      60 * time.Second,
		MaxRetries:   2,
		RetryBackoff: time.Second,
		MaxTokens:    4096,
		Temperature:  0.7,
	}
}

// TokenCost is the price per million tokens in USD
type TokenCost struct {
	Input  decimal.Decimal
	Output decimal.Decimal
}

// ProviderCosts are rough list prices used for spend estimates only.
// OpenRouter routes to many models; the figure is a blended average.
var ProviderCosts = map[models.ProviderKind]TokenCost{
	models.ProviderAzure:      {Input: decimal.RequireFromString("2.50"), Output: decimal.RequireFromString("10.00")},
	models.ProviderOpenRouter: {Input: decimal.RequireFromString("1.00"), Output: decimal.RequireFromString("3.00")},
}

var perMillion = decimal.NewFromInt(1_000_000)

// EstimateCost prices usage with the table for kind
func EstimateCost(kind models.ProviderKind, usage TokenUsage) decimal.Decimal {
	cost, ok := ProviderCosts[kind]
	if !ok {
		return decimal.Zero
	}
	in := cost.Input.Mul(decimal.NewFromInt(int64(usage.Input))).Div(perMillion)
	out := cost.Output.Mul(decimal.NewFromInt(int64(usage.Output))).Div(perMillion)
	return in.Add(out)
}
