// Package metrics declares the domain Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CreditCharges counts charge attempts by counter and outcome
	CreditCharges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slideomni_credit_charges_total",
			Help: "Credit charge attempts by counter and outcome",
		},
		[]string{"counter", "outcome"},
	)

	// Generations counts orchestrator runs by final outcome
	Generations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slideomni_generations_total",
			Help: "Presentation generation runs by outcome",
		},
		[]string{"outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slideomni_generation_duration_seconds",
			Help:    "End-to-end generation duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	// ProviderRequests counts upstream calls by provider kind and result
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slideomni_provider_requests_total",
			Help: "Text-generation provider calls by provider and result",
		},
		[]string{"provider", "result"},
	)

	ProviderTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slideomni_provider_tokens_total",
			Help: "Tokens reported by providers",
		},
		[]string{"provider", "direction"},
	)

	ProviderCostUSD = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slideomni_provider_cost_usd_total",
			Help: "Estimated provider spend in USD",
		},
		[]string{"provider"},
	)

	// PresentationsNormalized counts legacy records converted on read
	PresentationsNormalized = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slideomni_presentations_normalized_total",
			Help: "Legacy presentation records normalized on read",
		},
	)
)
